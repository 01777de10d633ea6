package collector

import (
	"github.com/weisyn/sigcollect/pkg/types"
)

// SignedTransaction 可提交的载荷及其签名
type SignedTransaction struct {
	PayloadID  types.PayloadID     `json:"payload_id"`
	Payload    types.Signable      `json:"-"`
	Signatures []types.HDSignature `json:"signatures"`
}

// SignaturesOutcome 一次收集的最终结果
//
// 每个输入载荷恰好出现在 Successful 或 Failed 之一中。
type SignaturesOutcome struct {
	// Successful 全部所需实体授权满足的载荷（按输入顺序）
	Successful []SignedTransaction `json:"successful"`
	// Failed 无法提交的载荷及导致失败的实体
	Failed []types.InvalidTransactionIfNeglected `json:"failed"`
	// NeglectedFactors 本次被忽略的全部因子源（按忽略顺序）
	NeglectedFactors []types.NeglectedFactor `json:"neglected_factors"`
	// AllSignatures 本次产出的全部签名，包括失败载荷上的签名
	AllSignatures []types.HDSignature `json:"all_signatures"`
	// EarlyReports 跨角色分析器在运行中给出的提前报告
	EarlyReports []types.InvalidTransactionIfNeglected `json:"early_reports,omitempty"`
}

// SuccessfulPayloadIDs 成功载荷ID
func (o *SignaturesOutcome) SuccessfulPayloadIDs() []types.PayloadID {
	out := make([]types.PayloadID, 0, len(o.Successful))
	for _, s := range o.Successful {
		out = append(out, s.PayloadID)
	}
	return out
}

// FailedPayloadIDs 失败载荷ID
func (o *SignaturesOutcome) FailedPayloadIDs() []types.PayloadID {
	out := make([]types.PayloadID, 0, len(o.Failed))
	for _, f := range o.Failed {
		out = append(out, f.PayloadID)
	}
	return out
}

// AllSuccessful 全部载荷均可提交
func (o *SignaturesOutcome) AllSuccessful() bool {
	return len(o.Failed) == 0
}

// SignaturesFor 成功载荷的签名；载荷失败或不存在时返回 false
func (o *SignaturesOutcome) SignaturesFor(id types.PayloadID) ([]types.HDSignature, bool) {
	for _, s := range o.Successful {
		if s.PayloadID == id {
			return s.Signatures, true
		}
	}
	return nil, false
}

// FailureFor 失败载荷的详情
func (o *SignaturesOutcome) FailureFor(id types.PayloadID) (*types.InvalidTransactionIfNeglected, bool) {
	for i := range o.Failed {
		if o.Failed[i].PayloadID == id {
			return &o.Failed[i], true
		}
	}
	return nil, false
}

// NeglectedFactorSourceIDs 被忽略的因子源ID
func (o *SignaturesOutcome) NeglectedFactorSourceIDs() []types.FactorSourceID {
	out := make([]types.FactorSourceID, 0, len(o.NeglectedFactors))
	for _, n := range o.NeglectedFactors {
		out = append(out, n.FactorSourceID)
	}
	return out
}

// NeglectReason 因子源被忽略的原因
func (o *SignaturesOutcome) NeglectReason(id types.FactorSourceID) (types.NeglectFactorReason, bool) {
	for _, n := range o.NeglectedFactors {
		if n.FactorSourceID == id {
			return n.Reason, true
		}
	}
	return 0, false
}
