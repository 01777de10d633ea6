// Package petition 实现多因子签名收集中的请愿（Petition）数据模型
//
// 📋 **请愿模型 (Petition Model)**
//
// 请愿按"载荷 → 实体 → 角色 → 因子列表"逐层聚合签名进度：
// - ForFactors：单个因子列表（门限列表或覆盖列表）的签名/忽略/待定状态
// - ForRole：单个角色，门限满足或任一覆盖因子签名即满足
// - ForEntity：单个实体在本次流程所需的全部角色
// - ForTransaction：单个载荷需要的全部实体
// - Petitions：一次收集中全部载荷，以及因子源到载荷的反向索引
//
// 🎯 **不变量**
// - 每个因子实例在每个请愿中恰处于 待定/已签名/已忽略 之一
// - 已签名或已忽略的状态不会回退
// - 满足（Succeeded）与不可满足（Failed）一旦达到即永久保持
package petition

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/weisyn/sigcollect/pkg/types"
)

// ErrInvariantViolation 请愿不变量被破坏（程序错误或数据损坏，不可恢复）
var ErrInvariantViolation = errors.New("petition invariant violation")

// Status 请愿状态
type Status uint8

const (
	StatusInProgress Status = iota
	StatusSucceeded
	StatusFailed
)

// String 返回状态名称
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// IsFinished 是否已达到终态
func (s Status) IsFinished() bool {
	return s != StatusInProgress
}

// FactorListKind 因子列表类别
type FactorListKind uint8

const (
	FactorListThreshold FactorListKind = iota
	FactorListOverride
)

// String 返回列表类别名称
func (k FactorListKind) String() string {
	if k == FactorListOverride {
		return "override"
	}
	return "threshold"
}

// slotState 单个因子实例的状态
type slotState uint8

const (
	slotPending slotState = iota
	slotSigned
	slotNeglected
)

// slot 因子实例槽位
type slot struct {
	instance  types.HDFactorInstance
	state     slotState
	signature *types.HDSignature
	reason    types.NeglectFactorReason
}

// ForFactors 单个因子列表的请愿
type ForFactors struct {
	listKind FactorListKind
	required int
	slots    []*slot
}

// NewThreshold 创建门限列表请愿，需要 threshold 个签名
func NewThreshold(factors []types.HDFactorInstance, threshold uint8) *ForFactors {
	return newForFactors(FactorListThreshold, factors, int(threshold))
}

// NewOverride 创建覆盖列表请愿，任一签名即满足
func NewOverride(factors []types.HDFactorInstance) *ForFactors {
	return newForFactors(FactorListOverride, factors, 1)
}

func newForFactors(kind FactorListKind, factors []types.HDFactorInstance, required int) *ForFactors {
	p := &ForFactors{listKind: kind, required: required, slots: make([]*slot, 0, len(factors))}
	for _, f := range factors {
		p.slots = append(p.slots, &slot{instance: f})
	}
	return p
}

// ListKind 列表类别
func (p *ForFactors) ListKind() FactorListKind {
	return p.listKind
}

// Required 满足所需的签名数
func (p *ForFactors) Required() int {
	return p.required
}

// Status 计算当前状态
//
// 已签名数 ≥ 所需数时满足；已签名数 + 待定数 < 所需数时不可满足。
func (p *ForFactors) Status() Status {
	return p.statusExcluding(nil)
}

// StatusIfNeglected 若再忽略给定因子源，状态将变为何值（不修改请愿）
func (p *ForFactors) StatusIfNeglected(factorSourceIDs []types.FactorSourceID) Status {
	excluded := make(map[types.FactorSourceID]bool, len(factorSourceIDs))
	for _, id := range factorSourceIDs {
		excluded[id] = true
	}
	return p.statusExcluding(excluded)
}

func (p *ForFactors) statusExcluding(excluded map[types.FactorSourceID]bool) Status {
	signed, pending := 0, 0
	for _, s := range p.slots {
		switch s.state {
		case slotSigned:
			signed++
		case slotPending:
			if !excluded[s.instance.FactorSourceID] {
				pending++
			}
		}
	}
	if signed >= p.required {
		return StatusSucceeded
	}
	if signed+pending < p.required {
		return StatusFailed
	}
	return StatusInProgress
}

// ReferencesFactorSource 列表是否引用给定因子源
func (p *ForFactors) ReferencesFactorSource(id types.FactorSourceID) bool {
	for _, s := range p.slots {
		if s.instance.FactorSourceID == id {
			return true
		}
	}
	return false
}

// PendingInstancesOf 给定因子源仍待签名的实例
func (p *ForFactors) PendingInstancesOf(id types.FactorSourceID) []types.HDFactorInstance {
	var out []types.HDFactorInstance
	for _, s := range p.slots {
		if s.state == slotPending && s.instance.FactorSourceID == id {
			out = append(out, s.instance)
		}
	}
	return out
}

// FactorSourceIDs 列表引用的全部因子源（去重，保持顺序）
func (p *ForFactors) FactorSourceIDs() []types.FactorSourceID {
	seen := make(map[types.FactorSourceID]bool)
	var out []types.FactorSourceID
	for _, s := range p.slots {
		if !seen[s.instance.FactorSourceID] {
			seen[s.instance.FactorSourceID] = true
			out = append(out, s.instance.FactorSourceID)
		}
	}
	return out
}

// AddSignature 把签名写入匹配的待定槽位
//
// 槽位按公钥与派生路径定位；声明的因子源与槽位不一致、槽位已签名或已忽略
// 都属于不变量破坏。返回是否找到了匹配槽位。
func (p *ForFactors) AddSignature(sig types.HDSignature) (bool, error) {
	target := sig.Input.OwnedFactorInstance.Instance
	for _, s := range p.slots {
		if s.instance.DerivationPath != target.DerivationPath || !bytes.Equal(s.instance.PublicKey, target.PublicKey) {
			continue
		}
		if s.instance.FactorSourceID != target.FactorSourceID {
			return true, fmt.Errorf("%w: signature declares factor source %s but slot %s belongs to %s",
				ErrInvariantViolation, target.FactorSourceID, s.instance.DerivationPath, s.instance.FactorSourceID)
		}
		switch s.state {
		case slotSigned:
			return true, fmt.Errorf("%w: slot %s already signed", ErrInvariantViolation, s.instance.Key())
		case slotNeglected:
			return true, fmt.Errorf("%w: slot %s already neglected (%s)", ErrInvariantViolation, s.instance.Key(), s.reason)
		}
		stored := sig
		s.signature = &stored
		s.state = slotSigned
		return true, nil
	}
	return false, nil
}

// Neglect 把给定因子源的全部待定槽位标记为忽略，返回被改变的实例数
func (p *ForFactors) Neglect(id types.FactorSourceID, reason types.NeglectFactorReason) int {
	changed := 0
	for _, s := range p.slots {
		if s.state == slotPending && s.instance.FactorSourceID == id {
			s.state = slotNeglected
			s.reason = reason
			changed++
		}
	}
	return changed
}

// Signatures 已收集的签名
func (p *ForFactors) Signatures() []types.HDSignature {
	var out []types.HDSignature
	for _, s := range p.slots {
		if s.state == slotSigned {
			out = append(out, *s.signature)
		}
	}
	return out
}

// NeglectedInstances 已忽略的实例
func (p *ForFactors) NeglectedInstances() []types.NeglectedFactorInstance {
	var out []types.NeglectedFactorInstance
	for _, s := range p.slots {
		if s.state == slotNeglected {
			out = append(out, types.NeglectedFactorInstance{Reason: s.reason, Instance: s.instance})
		}
	}
	return out
}

// Counts 返回 已签名/已忽略/待定 数量
func (p *ForFactors) Counts() (signed, neglected, pending int) {
	for _, s := range p.slots {
		switch s.state {
		case slotSigned:
			signed++
		case slotNeglected:
			neglected++
		default:
			pending++
		}
	}
	return signed, neglected, pending
}
