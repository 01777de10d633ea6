package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"

	"github.com/weisyn/sigcollect/internal/core/signing/collector"
	"github.com/weisyn/sigcollect/internal/core/signing/interactor/simulated"
	"github.com/weisyn/sigcollect/pkg/types"
)

// report 一次运行的可输出视图
type report struct {
	Scenario     string          `json:"scenario"`
	KindOrder    []string        `json:"kind_order"`
	Payloads     []payloadRow    `json:"payloads"`
	Neglected    []neglectRow    `json:"neglected"`
	Dispatches   []dispatchRow   `json:"dispatches"`
	EarlyReports []payloadRow    `json:"early_reports,omitempty"`
	Signatures   int             `json:"signatures"`
	Events       []timelineEntry `json:"events,omitempty"`
}

type payloadRow struct {
	PayloadID  string   `json:"payload_id"`
	Result     string   `json:"result"`
	Signatures int      `json:"signatures"`
	Entities   []string `json:"failed_entities,omitempty"`
}

type neglectRow struct {
	FactorSource string `json:"factor_source"`
	Label        string `json:"label"`
	Reason       string `json:"reason"`
}

type dispatchRow struct {
	Kind          string   `json:"kind"`
	Mode          string   `json:"mode"`
	FactorSources []string `json:"factor_sources"`
}

type timelineEntry struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

func newReport(scenario *Scenario, built *builtScenario, c *collector.SignaturesCollector, outcome *collector.SignaturesOutcome, calls []simulated.Call) *report {
	r := &report{Scenario: scenario.Name, Signatures: len(outcome.AllSignatures)}
	for _, kind := range c.KindOrder() {
		r.KindOrder = append(r.KindOrder, kind.String())
	}

	entityNames := func(addrs []types.EntityAddress) []string {
		out := make([]string, 0, len(addrs))
		for _, a := range addrs {
			if name, ok := built.Names[a]; ok {
				out = append(out, name)
				continue
			}
			out = append(out, a.String())
		}
		return out
	}

	for _, signed := range outcome.Successful {
		r.Payloads = append(r.Payloads, payloadRow{
			PayloadID:  signed.PayloadID.String(),
			Result:     "successful",
			Signatures: len(signed.Signatures),
		})
	}
	for _, failed := range outcome.Failed {
		r.Payloads = append(r.Payloads, payloadRow{
			PayloadID: failed.PayloadID.String(),
			Result:    "failed",
			Entities:  entityNames(failed.EntitiesWhichWouldFailAuth),
		})
	}
	for _, early := range outcome.EarlyReports {
		r.EarlyReports = append(r.EarlyReports, payloadRow{
			PayloadID: early.PayloadID.String(),
			Result:    "irrecoverable",
			Entities:  entityNames(early.EntitiesWhichWouldFailAuth),
		})
	}
	for _, n := range outcome.NeglectedFactors {
		r.Neglected = append(r.Neglected, neglectRow{
			FactorSource: n.FactorSourceID.String(),
			Label:        built.Labels[n.FactorSourceID],
			Reason:       n.Reason.String(),
		})
	}
	for _, call := range calls {
		labels := make([]string, 0, len(call.FactorSources))
		for _, id := range call.FactorSources {
			labels = append(labels, built.Labels[id])
		}
		r.Dispatches = append(r.Dispatches, dispatchRow{Kind: call.Kind.String(), Mode: call.Mode, FactorSources: labels})
	}
	return r
}

func renderJSON(w io.Writer, r *report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func renderTables(r *report) error {
	if r.Scenario != "" {
		pterm.DefaultSection.Println(r.Scenario)
	}
	pterm.Info.Printf("摩擦顺序: %s\n", strings.Join(r.KindOrder, " → "))

	payloads := [][]string{{"载荷", "结果", "签名数", "未授权实体"}}
	for _, p := range r.Payloads {
		result := pterm.Green(p.Result)
		if p.Result != "successful" {
			result = pterm.Red(p.Result)
		}
		payloads = append(payloads, []string{p.PayloadID, result, fmt.Sprint(p.Signatures), strings.Join(p.Entities, ", ")})
	}
	if err := pterm.DefaultTable.WithHasHeader(true).WithData(payloads).Render(); err != nil {
		return err
	}

	if len(r.Dispatches) > 0 {
		pterm.DefaultSection.Println("交互器调用")
		rows := [][]string{{"类别", "形态", "因子源"}}
		for _, d := range r.Dispatches {
			rows = append(rows, []string{d.Kind, d.Mode, strings.Join(d.FactorSources, ", ")})
		}
		if err := pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render(); err != nil {
			return err
		}
	}

	if len(r.Neglected) > 0 {
		pterm.DefaultSection.Println("被忽略的因子源")
		rows := [][]string{{"标签", "因子源", "原因"}}
		for _, n := range r.Neglected {
			rows = append(rows, []string{n.Label, n.FactorSource, n.Reason})
		}
		if err := pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render(); err != nil {
			return err
		}
	}

	if len(r.EarlyReports) > 0 {
		pterm.DefaultSection.Println("提前报告")
		rows := [][]string{{"载荷", "实体"}}
		for _, e := range r.EarlyReports {
			rows = append(rows, []string{e.PayloadID, strings.Join(e.Entities, ", ")})
		}
		if err := pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render(); err != nil {
			return err
		}
	}

	if len(r.Metrics) > 0 {
		pterm.DefaultSection.Println("指标")
		rows := [][]string{{"指标", "标签", "值"}}
		for _, m := range r.Metrics {
			rows = append(rows, []string{m.Name, m.Labels, fmt.Sprint(m.Value)})
		}
		if err := pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render(); err != nil {
			return err
		}
	}

	for _, e := range r.Events {
		pterm.Debug.Printf("%s %+v\n", e.Topic, e.Payload)
	}

	failed := 0
	for _, p := range r.Payloads {
		if p.Result != "successful" {
			failed++
		}
	}
	if failed == 0 {
		pterm.Success.Printf("全部 %d 个载荷可提交，共 %d 个签名\n", len(r.Payloads), r.Signatures)
	} else {
		pterm.Warning.Printf("%d/%d 个载荷无法提交\n", failed, len(r.Payloads))
	}
	return nil
}

// gatherMetrics 收集本进程的 sigcollect_ 指标；直方图取样本数
func gatherMetrics(gatherer prometheus.Gatherer) ([]metricRow, error) {
	families, err := gatherer.Gather()
	if err != nil {
		return nil, err
	}
	var rows []metricRow
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "sigcollect_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			row := metricRow{Name: mf.GetName(), Labels: strings.Join(labels, ",")}
			switch {
			case m.GetCounter() != nil:
				row.Value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				row.Value = float64(m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				row.Value = m.GetGauge().GetValue()
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
