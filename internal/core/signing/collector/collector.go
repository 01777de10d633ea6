// Package collector 实现多因子签名收集器
//
// ✍️ **签名收集器 (Signatures Collector)**
//
// 给定一组可签名载荷，收集器解析每个载荷需要授权的实体与角色，
// 按摩擦顺序（硬件/联系人在前，本机设备在后）逐组询问因子源，
// 把签名与忽略折叠进请愿树，并在满足提前结束条件时停止。
//
// 🔄 **运行流程**
// 1. 预处理：解析实体、收集因子源、按类别分组并按摩擦排序、建立请愿树
// 2. 逐组处理：剔除无关因子源 → 构造请求 → 派发到 poly/mono 交互器 → 折叠结果
// 3. 每次忽略后调用跨角色分析器，结果仅作为附加报告
// 4. 全部分组处理完或提前结束后，由最终状态构造结果
//
// ⚠️ **错误语义**
// - 构造错误（无载荷、未知实体、未知因子源）在签名前返回
// - 不变量破坏（签名与槽位不符、签名输入缺失或多余）使 Sign 直接失败
// - 用户拒绝与设备失败只会变为"忽略"，不会使 Sign 失败
// - 上下文取消会中止运行并返回上下文错误
package collector

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/weisyn/sigcollect/internal/core/profile"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// Options 收集器选项
type Options struct {
	FinishEarly FinishEarlyStrategy
	Purpose     Purpose

	// Analyzer 跨角色分析器，为空时使用 NoOpAnalyzer
	Analyzer signing.CrossRoleSkipOutcomeAnalyzer
	// Extractor 授权实体解析器，为空时按清单摘要解析
	Extractor signing.EntitiesRequiringAuthExtractor

	Logger   log.Logger     // 可选
	EventBus event.EventBus // 可选
}

// DefaultOptions 普通交易签名、全部有效即结束
func DefaultOptions() Options {
	return Options{
		FinishEarly: DefaultFinishEarlyStrategy(),
		Purpose:     PurposeSignTransaction(),
	}
}

// SignaturesCollector 签名收集器，只能运行一次
type SignaturesCollector struct {
	deps     dependencies
	state    *state
	analyzer signing.CrossRoleSkipOutcomeAnalyzer
	logger   log.Logger
	events   publisher
	used     atomic.Bool
}

// New 预处理输入并创建收集器
func New(
	signables []types.Signable,
	resolver signing.EntityResolver,
	interactors signing.InteractorProvider,
	opts Options,
) (*SignaturesCollector, error) {
	if resolver == nil {
		return nil, fmt.Errorf("collector: entity resolver is required")
	}
	if len(opts.Purpose.Roles) == 0 {
		opts.Purpose = PurposeSignTransaction()
	}
	if opts.Analyzer == nil {
		opts.Analyzer = NoOpAnalyzer{}
	}
	if opts.Extractor == nil {
		opts.Extractor = profile.ManifestExtractor{}
	}

	pre := &preprocessor{
		signables: signables,
		profile:   resolver,
		extractor: opts.Extractor,
		purpose:   opts.Purpose,
	}
	groups, petitions, err := pre.preprocess()
	if err != nil {
		return nil, err
	}

	capabilities := make([]SigningCapability, 0, len(groups))
	for _, g := range groups {
		c, err := CapabilityFor(g.Kind, interactors, opts.Logger)
		if err != nil {
			return nil, err
		}
		capabilities = append(capabilities, c)
	}

	return &SignaturesCollector{
		deps: dependencies{
			finishEarly:  opts.FinishEarly,
			purpose:      opts.Purpose,
			groups:       groups,
			capabilities: capabilities,
		},
		state:    newState(petitions),
		analyzer: opts.Analyzer,
		logger:   opts.Logger,
		events:   publisher{bus: opts.EventBus},
	}, nil
}

// KindOrder 分组的处理顺序
func (c *SignaturesCollector) KindOrder() []types.FactorSourceKind {
	out := make([]types.FactorSourceKind, 0, len(c.deps.groups))
	for _, g := range c.deps.groups {
		out = append(out, g.Kind)
	}
	return out
}

// run 单次运行的上下文
type run struct {
	id     string
	logger log.Logger
}

func (r run) debugf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debugf(format, args...)
	}
}

func (r run) infof(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Infof(format, args...)
	}
}

func (r run) warnf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warnf(format, args...)
	}
}

// Sign 按摩擦顺序逐组收集签名并返回结果
func (c *SignaturesCollector) Sign(ctx context.Context) (*SignaturesOutcome, error) {
	if !c.used.CompareAndSwap(false, true) {
		return nil, ErrAlreadyUsed
	}

	r := run{id: uuid.NewString()}
	if c.logger != nil {
		r.logger = c.logger.With("run_id", r.id)
	}
	start := time.Now()

	r.infof("开始签名收集: purpose=%s payloads=%d groups=%d", c.deps.purpose.Name, c.state.petitions.Len(), len(c.deps.groups))
	c.events.publish(EventRunStarted, RunStarted{
		RunID:     r.id,
		Purpose:   c.deps.purpose.Name,
		Payloads:  c.state.petitions.Len(),
		KindOrder: c.KindOrder(),
		StartedAt: start,
	})

	finishedEarly := false
	for i, group := range c.deps.groups {
		if c.shouldFinishEarly() {
			finishedEarly = true
			r.infof("提前结束，跳过剩余 %d 个分组: %s", len(c.deps.groups)-i, c.state)
			break
		}
		if err := c.processGroup(ctx, r, group, c.deps.capabilities[i]); err != nil {
			return nil, err
		}
	}

	outcome := c.state.outcome()
	elapsed := time.Since(start)

	RunDuration.Observe(elapsed.Seconds())
	TransactionsTotal.WithLabelValues("successful").Add(float64(len(outcome.Successful)))
	TransactionsTotal.WithLabelValues("failed").Add(float64(len(outcome.Failed)))

	r.infof("签名收集完成: successful=%d failed=%d neglected=%d signatures=%d elapsed=%s",
		len(outcome.Successful), len(outcome.Failed), len(outcome.NeglectedFactors), len(outcome.AllSignatures), elapsed)
	c.events.publish(EventRunFinished, RunFinished{
		RunID:         r.id,
		Successful:    len(outcome.Successful),
		Failed:        len(outcome.Failed),
		Neglected:     len(outcome.NeglectedFactors),
		FinishedEarly: finishedEarly,
		Duration:      elapsed,
	})
	return outcome, nil
}

func (c *SignaturesCollector) shouldFinishEarly() bool {
	sum := c.state.summary()
	if c.deps.finishEarly.WhenAllTransactionsAreValid && sum.AllValid() {
		return true
	}
	return c.deps.finishEarly.WhenSomeTransactionIsInvalid && sum.Invalid > 0
}

// buildRequest 构造分组请求；引用它的载荷已全部无效的因子源以 Irrelevant 忽略
func (c *SignaturesCollector) buildRequest(r run, group FactorSourcesOfKind) *types.SignRequest {
	includeFinished := !c.deps.finishEarly.WhenAllTransactionsAreValid
	request := &types.SignRequest{FactorSourceKind: group.Kind}
	for _, fs := range group.FactorSources {
		if c.state.isNeglected(fs.ID) {
			continue
		}
		if c.state.isIrrelevant(fs.ID) {
			r.debugf("因子源与剩余载荷无关: %s", fs.ID)
			c.neglect(r, fs.ID, types.NeglectIrrelevant)
			continue
		}
		input := c.state.inputFor(fs.ID, includeFinished)
		if input == nil {
			r.debugf("因子源无需签名: %s", fs.ID)
			continue
		}
		request.PerFactorSource = append(request.PerFactorSource, *input)
	}
	return request
}

func (c *SignaturesCollector) processGroup(ctx context.Context, r run, group FactorSourcesOfKind, capability SigningCapability) error {
	request := c.buildRequest(r, group)
	if len(request.PerFactorSource) == 0 {
		r.debugf("分组无需派发: kind=%s", group.Kind)
		return nil
	}

	slots := 0
	for i := range request.PerFactorSource {
		slots += len(request.PerFactorSource[i].SignatureInputs())
	}
	DispatchTotal.WithLabelValues(group.Kind.String(), string(capability.Mode())).Inc()
	r.infof("派发签名请求: kind=%s mode=%s factor_sources=%d slots=%d",
		group.Kind, capability.Mode(), len(request.PerFactorSource), slots)
	c.events.publish(EventGroupDispatched, GroupDispatched{
		RunID:          r.id,
		Kind:           group.Kind,
		Mode:           capability.Mode(),
		FactorSources:  request.FactorSourceIDs(),
		SignatureSlots: slots,
	})

	resp, err := capability.Sign(ctx, request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("sign %s group: %w", group.Kind, ctxErr)
		}
		r.warnf("交互器失败，整组按失败忽略: kind=%s err=%v", group.Kind, err)
		resp = types.NeglectAll(request, types.NeglectFailure)
	}
	return c.fold(r, request, resp)
}

// fold 把交互器响应折叠进状态
func (c *SignaturesCollector) fold(r run, request *types.SignRequest, resp *types.SignResponse) error {
	for id := range resp.PerFactorSource {
		if _, ok := request.ForFactorSource(id); !ok {
			return fmt.Errorf("%w: response contains unrequested factor source %s", ErrInvariantViolation, id)
		}
	}

	for i := range request.PerFactorSource {
		input := &request.PerFactorSource[i]
		outcome, ok := resp.PerFactorSource[input.FactorSourceID]
		if !ok {
			r.warnf("响应缺少因子源，按失败忽略: %s", input.FactorSourceID)
			c.neglect(r, input.FactorSourceID, types.NeglectFailure)
			continue
		}
		if outcome.FactorSourceID != input.FactorSourceID {
			return fmt.Errorf("%w: outcome for %s declares factor source %s",
				ErrInvariantViolation, input.FactorSourceID, outcome.FactorSourceID)
		}
		if err := outcome.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
		}
		if outcome.IsNeglected() {
			c.neglect(r, input.FactorSourceID, *outcome.Neglected)
			continue
		}
		if err := checkSignaturesCoverInput(input, outcome.Signatures); err != nil {
			return err
		}
		if err := c.state.addSignatures(outcome.Signatures); err != nil {
			return err
		}
		r.debugf("因子源已签名: %s signatures=%d", input.FactorSourceID, len(outcome.Signatures))
	}
	return nil
}

// checkSignaturesCoverInput 签名必须与请求的槽位一一对应
func checkSignaturesCoverInput(input *types.PerFactorSourceInput, signatures []types.HDSignature) error {
	requested := make(map[string]bool)
	for _, in := range input.SignatureInputs() {
		requested[in.Key()] = false
	}
	for _, sig := range signatures {
		if sig.FactorSourceID() != input.FactorSourceID {
			return fmt.Errorf("%w: signature from %s in outcome of %s",
				ErrInvariantViolation, sig.FactorSourceID(), input.FactorSourceID)
		}
		key := sig.Input.Key()
		done, ok := requested[key]
		if !ok {
			return fmt.Errorf("%w: signature for unrequested input %s", ErrInvariantViolation, key)
		}
		if done {
			return fmt.Errorf("%w: duplicate signature for %s", ErrInvariantViolation, key)
		}
		requested[key] = true
	}
	for key, done := range requested {
		if !done {
			return fmt.Errorf("%w: signed outcome of %s misses input %s", ErrInvariantViolation, input.FactorSourceID, key)
		}
	}
	return nil
}

// neglect 记录忽略并调用跨角色分析器
func (c *SignaturesCollector) neglect(r run, id types.FactorSourceID, reason types.NeglectFactorReason) {
	res := c.state.neglect(id, reason)
	NeglectedFactorsTotal.WithLabelValues(reason.String()).Inc()
	r.infof("因子源被忽略: %s reason=%s payloads=%d", id, reason, len(res.affected))

	payloads := make([]types.PayloadID, 0, len(res.affected))
	for _, tx := range res.affected {
		payloads = append(payloads, tx.PayloadID())
	}
	c.events.publish(EventFactorNeglected, FactorNeglected{
		RunID:          r.id,
		FactorSourceID: id,
		Reason:         reason,
		Payloads:       payloads,
	})

	neglected := []types.FactorSourceID{id}
	for _, tx := range res.affected {
		report := c.analyzer.InvalidTransactionIfNeglected(tx.PayloadID(), neglected, tx.EntityViews())
		if report != nil && c.state.recordEarlyReport(*report) {
			r.warnf("跨角色分析报告载荷无效: %s entities=%d", report.PayloadID, len(report.EntitiesWhichWouldFailAuth))
		}
	}
	for _, tx := range res.newlyInvalid {
		c.events.publish(EventTransactionInvalid, TransactionInvalid{
			RunID:     r.id,
			PayloadID: tx.PayloadID(),
			Entities:  tx.FailedEntities(),
		})
	}
}
