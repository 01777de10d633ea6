package types

import "fmt"

// NeglectFactorReason 因子未产生签名的原因
type NeglectFactorReason uint8

const (
	// NeglectUserExplicitlySkipped 用户主动跳过
	NeglectUserExplicitlySkipped NeglectFactorReason = iota
	// NeglectFailure 交互器或设备失败
	NeglectFailure
	// NeglectIrrelevant 所有引用该因子的载荷都已因其他原因失败
	NeglectIrrelevant
	// NeglectSimulation 模拟运行（不产生真实签名）
	NeglectSimulation
)

// String 返回原因名称
func (r NeglectFactorReason) String() string {
	switch r {
	case NeglectUserExplicitlySkipped:
		return "user_explicitly_skipped"
	case NeglectFailure:
		return "failure"
	case NeglectIrrelevant:
		return "irrelevant"
	case NeglectSimulation:
		return "simulation"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// MarshalText 以名称编码
func (r NeglectFactorReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText 从名称解码
func (r *NeglectFactorReason) UnmarshalText(text []byte) error {
	for _, candidate := range []NeglectFactorReason{NeglectUserExplicitlySkipped, NeglectFailure, NeglectIrrelevant, NeglectSimulation} {
		if candidate.String() == string(text) {
			*r = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown neglect reason: %q", string(text))
}

// NeglectedFactor 被忽略的因子源及原因
type NeglectedFactor struct {
	Reason         NeglectFactorReason `json:"reason"`
	FactorSourceID FactorSourceID      `json:"factor_source_id"`
}

// String 用于日志
func (n NeglectedFactor) String() string {
	return fmt.Sprintf("%s(%s)", n.FactorSourceID, n.Reason)
}

// NeglectedFactorInstance 被忽略的具体因子实例
type NeglectedFactorInstance struct {
	Reason   NeglectFactorReason `json:"reason"`
	Instance HDFactorInstance    `json:"instance"`
}

// InvalidTransactionIfNeglected 若忽略某些因子将导致失败的载荷及其授权失败的实体
type InvalidTransactionIfNeglected struct {
	PayloadID                  PayloadID       `json:"payload_id"`
	EntitiesWhichWouldFailAuth []EntityAddress `json:"entities_which_would_fail_auth"`
}
