package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/weisyn/sigcollect/configs"
	"github.com/weisyn/sigcollect/internal/app"
	"github.com/weisyn/sigcollect/internal/core/signing/collector"
	"github.com/weisyn/sigcollect/internal/core/signing/interactor/simulated"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
)

var runFlags struct {
	scenario      string
	finishEarly   bool
	stopOnInvalid bool
	analyzer      string
	showEvents    bool
	monoOnly      bool
	showMetrics   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "运行签名收集场景",
	Example: `  sigsim run --scenario configs/sigsim/scenario.yaml
  sigsim run --scenario scenario.yaml --finish-early=false -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runFlags.scenario == "" {
			return fmt.Errorf("需要 --scenario")
		}
		scenario, err := LoadScenario(runFlags.scenario)
		if err != nil {
			return err
		}

		application, err := app.Start(appOptions()...)
		if err != nil {
			return err
		}
		defer func() { _ = application.Stop() }()

		built, err := scenario.Build(application.Logger().With("module", "profile"))
		if err != nil {
			return err
		}

		opts := application.Factory().Options()
		applyRunOverrides(cmd, scenario, built, &opts)

		provider := simulated.NewProvider(built.User, application.Logger().With("module", "simulated"))
		provider.MonoOnly = runFlags.monoOnly

		c, err := collector.New(built.Signables, built.Profile, provider, opts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		outcome, err := c.Sign(ctx)
		if err != nil {
			return err
		}

		report := newReport(scenario, built, c, outcome, provider.Interactor.Calls())
		if runFlags.showEvents {
			report.Events = eventTimeline(application.EventBus())
		}
		if runFlags.showMetrics {
			if report.Metrics, err = gatherMetrics(prometheus.DefaultGatherer); err != nil {
				return err
			}
		}
		if globalFlags.OutputFormat == "json" {
			return renderJSON(cmd.OutOrStdout(), report)
		}
		return renderTables(report)
	},
}

// appOptions --config > SIGSIM_CONFIG_PATH > 内嵌默认配置
func appOptions() []app.Option {
	if globalFlags.ConfigFile != "" {
		return []app.Option{app.WithConfigFile(globalFlags.ConfigFile)}
	}
	if os.Getenv("SIGSIM_CONFIG_PATH") != "" {
		return nil
	}
	return []app.Option{app.WithEmbeddedConfig(configs.GetDefaultConfig())}
}

// applyRunOverrides 场景与命令行对收集器选项的覆盖（命令行优先）
func applyRunOverrides(cmd *cobra.Command, scenario *Scenario, built *builtScenario, opts *collector.Options) {
	if len(built.Roles) > 0 {
		opts.Purpose = collector.PurposeFromRoles(built.Roles)
	}
	if fe := scenario.FinishEarly; fe != nil {
		if fe.WhenAllValid != nil {
			opts.FinishEarly.WhenAllTransactionsAreValid = *fe.WhenAllValid
		}
		if fe.WhenSomeInvalid != nil {
			opts.FinishEarly.WhenSomeTransactionIsInvalid = *fe.WhenSomeInvalid
		}
	}
	if cmd.Flags().Changed("finish-early") {
		opts.FinishEarly.WhenAllTransactionsAreValid = runFlags.finishEarly
	}
	if cmd.Flags().Changed("stop-on-invalid") {
		opts.FinishEarly.WhenSomeTransactionIsInvalid = runFlags.stopOnInvalid
	}
	if runFlags.analyzer == "entity-failure" {
		opts.Analyzer = collector.EntityFailureAnalyzer{}
	}
}

// eventTimeline 从事件历史中按运行顺序取出进度事件
func eventTimeline(bus event.EventBus) []timelineEntry {
	var out []timelineEntry
	for _, topic := range []event.EventType{
		collector.EventRunStarted,
		collector.EventGroupDispatched,
		collector.EventFactorNeglected,
		collector.EventTransactionInvalid,
		collector.EventRunFinished,
	} {
		for _, payload := range bus.GetEventHistory(topic) {
			out = append(out, timelineEntry{Topic: string(topic), Payload: payload})
		}
	}
	return out
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.scenario, "scenario", "s", "", "YAML 场景文件")
	runCmd.Flags().BoolVar(&runFlags.finishEarly, "finish-early", true, "全部载荷有效后停止询问")
	runCmd.Flags().BoolVar(&runFlags.stopOnInvalid, "stop-on-invalid", false, "任一载荷失效即停止询问")
	runCmd.Flags().StringVar(&runFlags.analyzer, "analyzer", "none", "跨角色分析器: none|entity-failure")
	runCmd.Flags().BoolVar(&runFlags.showEvents, "events", false, "输出进度事件")
	runCmd.Flags().BoolVar(&runFlags.showMetrics, "metrics", false, "输出本次运行的指标")
	runCmd.Flags().BoolVar(&runFlags.monoOnly, "mono-only", false, "所有类别逐个因子源询问")
}
