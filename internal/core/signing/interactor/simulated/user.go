// Package simulated 提供脚本化的签名交互器
//
// 🧪 **模拟用户 (Simulated Users)**
//
// 模拟交互器按预设的"用户行为"回答签名请求，不需要任何真实密钥材料：
// - Prudent：对所有请求签名
// - Lazy：跳过所有请求
// - Simulation：以 Simulation 原因忽略所有请求（手续费预估等空跑）
// - 按因子源覆盖：指定某些因子源跳过、失败或直接返回交互器错误
//
// 签名使用由因子实例确定性派生的 secp256k1 私钥，可用 Verify 校验。
package simulated

import (
	"fmt"
	"strings"

	"github.com/weisyn/sigcollect/pkg/types"
)

// Decision 模拟用户对单个因子源的决定
type Decision uint8

const (
	DecisionSign Decision = iota
	DecisionSkip
	DecisionFail
	DecisionSimulate
	// DecisionError 交互器直接返回错误
	DecisionError
)

// String 返回决定名称
func (d Decision) String() string {
	switch d {
	case DecisionSign:
		return "sign"
	case DecisionSkip:
		return "skip"
	case DecisionFail:
		return "fail"
	case DecisionSimulate:
		return "simulate"
	case DecisionError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
}

// ParseDecision 从名称解析决定
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sign", "":
		return DecisionSign, nil
	case "skip":
		return DecisionSkip, nil
	case "fail":
		return DecisionFail, nil
	case "simulate":
		return DecisionSimulate, nil
	case "error":
		return DecisionError, nil
	default:
		return 0, fmt.Errorf("unknown decision: %q", s)
	}
}

// User 模拟用户行为
type User struct {
	Default   Decision
	PerFactor map[types.FactorSourceID]Decision
}

// Prudent 对所有请求签名
func Prudent() User {
	return User{Default: DecisionSign}
}

// Lazy 跳过所有请求
func Lazy() User {
	return User{Default: DecisionSkip}
}

// SimulationUser 以 Simulation 原因忽略所有请求
func SimulationUser() User {
	return User{Default: DecisionSimulate}
}

// With 为指定因子源设置决定
func (u User) With(decision Decision, ids ...types.FactorSourceID) User {
	per := make(map[types.FactorSourceID]Decision, len(u.PerFactor)+len(ids))
	for k, v := range u.PerFactor {
		per[k] = v
	}
	for _, id := range ids {
		per[id] = decision
	}
	return User{Default: u.Default, PerFactor: per}
}

// Skipping 跳过指定因子源
func (u User) Skipping(ids ...types.FactorSourceID) User {
	return u.With(DecisionSkip, ids...)
}

// Failing 指定因子源设备失败
func (u User) Failing(ids ...types.FactorSourceID) User {
	return u.With(DecisionFail, ids...)
}

// Erroring 指定因子源的交互器返回错误
func (u User) Erroring(ids ...types.FactorSourceID) User {
	return u.With(DecisionError, ids...)
}

// Decide 对因子源的决定
func (u User) Decide(id types.FactorSourceID) Decision {
	if d, ok := u.PerFactor[id]; ok {
		return d
	}
	return u.Default
}
