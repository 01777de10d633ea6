package petition

import (
	"fmt"

	"github.com/weisyn/sigcollect/pkg/types"
)

// ForRole 单个角色的请愿
//
// 门限列表满足或覆盖列表满足即角色满足；两者都不可满足时角色失败。
type ForRole struct {
	role      types.RoleKind
	threshold *ForFactors
	override  *ForFactors
}

// NewForRole 由角色配置创建请愿，空列表不创建对应子请愿
func NewForRole(cfg types.RoleWithFactorInstances) *ForRole {
	r := &ForRole{role: cfg.Role}
	if len(cfg.ThresholdFactors) > 0 {
		r.threshold = NewThreshold(cfg.ThresholdFactors, cfg.Threshold)
	}
	if len(cfg.OverrideFactors) > 0 {
		r.override = NewOverride(cfg.OverrideFactors)
	}
	return r
}

// Role 角色
func (r *ForRole) Role() types.RoleKind {
	return r.role
}

func (r *ForRole) lists() []*ForFactors {
	out := make([]*ForFactors, 0, 2)
	if r.threshold != nil {
		out = append(out, r.threshold)
	}
	if r.override != nil {
		out = append(out, r.override)
	}
	return out
}

// Status 角色当前状态
func (r *ForRole) Status() Status {
	return r.combine(func(p *ForFactors) Status { return p.Status() })
}

// StatusIfNeglected 模拟忽略后的角色状态
func (r *ForRole) StatusIfNeglected(ids []types.FactorSourceID) Status {
	return r.combine(func(p *ForFactors) Status { return p.StatusIfNeglected(ids) })
}

func (r *ForRole) combine(status func(*ForFactors) Status) Status {
	lists := r.lists()
	if len(lists) == 0 {
		return StatusFailed
	}
	failed := 0
	for _, p := range lists {
		switch status(p) {
		case StatusSucceeded:
			return StatusSucceeded
		case StatusFailed:
			failed++
		}
	}
	if failed == len(lists) {
		return StatusFailed
	}
	return StatusInProgress
}

// ForEntity 单个实体在单个载荷上的请愿，要求全部所需角色满足
type ForEntity struct {
	payloadID types.PayloadID
	entity    types.EntityAddress
	roles     []*ForRole
}

// NewForEntity 为实体创建请愿
func NewForEntity(payloadID types.PayloadID, entity *types.Entity, roles []types.RoleKind) (*ForEntity, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("entity %s: no roles required", entity.Address)
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	p := &ForEntity{payloadID: payloadID, entity: entity.Address}
	for _, role := range roles {
		p.roles = append(p.roles, NewForRole(entity.RoleFactors(role)))
	}
	return p, nil
}

// Entity 实体地址
func (p *ForEntity) Entity() types.EntityAddress {
	return p.entity
}

// PayloadID 所属载荷
func (p *ForEntity) PayloadID() types.PayloadID {
	return p.payloadID
}

// Status 实体请愿状态
func (p *ForEntity) Status() Status {
	return p.combine(func(r *ForRole) Status { return r.Status() })
}

// StatusIfNeglected 模拟忽略后的实体状态
func (p *ForEntity) StatusIfNeglected(ids []types.FactorSourceID) Status {
	return p.combine(func(r *ForRole) Status { return r.StatusIfNeglected(ids) })
}

func (p *ForEntity) combine(status func(*ForRole) Status) Status {
	succeeded := 0
	for _, r := range p.roles {
		switch status(r) {
		case StatusFailed:
			return StatusFailed
		case StatusSucceeded:
			succeeded++
		}
	}
	if succeeded == len(p.roles) {
		return StatusSucceeded
	}
	return StatusInProgress
}

// HasFailed 实体授权是否已不可满足
func (p *ForEntity) HasFailed() bool {
	return p.Status() == StatusFailed
}

// WouldFailIfNeglected 再忽略给定因子源后实体授权是否失败
func (p *ForEntity) WouldFailIfNeglected(ids []types.FactorSourceID) bool {
	return p.StatusIfNeglected(ids) == StatusFailed
}

func (p *ForEntity) allLists() []*ForFactors {
	var out []*ForFactors
	for _, r := range p.roles {
		out = append(out, r.lists()...)
	}
	return out
}

// ReferencesFactorSource 实体请愿是否引用给定因子源
func (p *ForEntity) ReferencesFactorSource(id types.FactorSourceID) bool {
	for _, l := range p.allLists() {
		if l.ReferencesFactorSource(id) {
			return true
		}
	}
	return false
}

// FactorSourceIDs 实体请愿引用的全部因子源
func (p *ForEntity) FactorSourceIDs() []types.FactorSourceID {
	seen := make(map[types.FactorSourceID]bool)
	var out []types.FactorSourceID
	for _, l := range p.allLists() {
		for _, id := range l.FactorSourceIDs() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// PendingInstancesOf 给定因子源在本实体下仍待签名的实例（跨角色去重）
func (p *ForEntity) PendingInstancesOf(id types.FactorSourceID) []types.HDFactorInstance {
	seen := make(map[string]bool)
	var out []types.HDFactorInstance
	for _, l := range p.allLists() {
		for _, inst := range l.PendingInstancesOf(id) {
			if !seen[inst.Key()] {
				seen[inst.Key()] = true
				out = append(out, inst)
			}
		}
	}
	return out
}

// AddSignature 把签名写入所有匹配槽位，同一实例出现在多个角色时一次签名满足全部
func (p *ForEntity) AddSignature(sig types.HDSignature) error {
	if sig.Owner() != p.entity {
		return fmt.Errorf("%w: signature owner %s does not match entity %s", ErrInvariantViolation, sig.Owner(), p.entity)
	}
	matched := false
	for _, l := range p.allLists() {
		found, err := l.AddSignature(sig)
		if err != nil {
			return fmt.Errorf("entity %s: %w", p.entity, err)
		}
		matched = matched || found
	}
	if !matched {
		return fmt.Errorf("%w: no slot for %s in entity %s", ErrInvariantViolation,
			sig.Input.OwnedFactorInstance.Instance.Key(), p.entity)
	}
	return nil
}

// Neglect 忽略给定因子源的全部待定槽位，返回被改变的槽位数
func (p *ForEntity) Neglect(id types.FactorSourceID, reason types.NeglectFactorReason) int {
	changed := 0
	for _, l := range p.allLists() {
		changed += l.Neglect(id, reason)
	}
	return changed
}

// Signatures 实体已收集的签名（跨角色按实例去重）
func (p *ForEntity) Signatures() []types.HDSignature {
	seen := make(map[string]bool)
	var out []types.HDSignature
	for _, l := range p.allLists() {
		for _, sig := range l.Signatures() {
			key := sig.Input.Key()
			if !seen[key] {
				seen[key] = true
				out = append(out, sig)
			}
		}
	}
	return out
}

// NeglectedInstances 实体下被忽略的实例（按实例去重）
func (p *ForEntity) NeglectedInstances() []types.NeglectedFactorInstance {
	seen := make(map[string]bool)
	var out []types.NeglectedFactorInstance
	for _, l := range p.allLists() {
		for _, n := range l.NeglectedInstances() {
			if !seen[n.Instance.Key()] {
				seen[n.Instance.Key()] = true
				out = append(out, n)
			}
		}
	}
	return out
}
