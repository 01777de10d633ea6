package petition

import (
	"fmt"
	"slices"

	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// TransactionStatus 载荷请愿状态
type TransactionStatus uint8

const (
	TransactionPending TransactionStatus = iota
	TransactionValid
	TransactionInvalid
)

// String 返回状态名称
func (s TransactionStatus) String() string {
	switch s {
	case TransactionPending:
		return "pending"
	case TransactionValid:
		return "valid"
	case TransactionInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ForTransaction 单个载荷的请愿：全部所需实体授权满足即有效，任一失败即无效
type ForTransaction struct {
	payload  types.Signable
	id       types.PayloadID
	entities []*ForEntity
	byEntity map[types.EntityAddress]*ForEntity
}

// NewForTransaction 为载荷与其所需实体创建请愿，实体按地址排序
func NewForTransaction(payload types.Signable, entities []*types.Entity, roles []types.RoleKind) (*ForTransaction, error) {
	id := payload.ID()
	p := &ForTransaction{
		payload:  payload,
		id:       id,
		byEntity: make(map[types.EntityAddress]*ForEntity, len(entities)),
	}
	for _, e := range entities {
		if _, dup := p.byEntity[e.Address]; dup {
			continue
		}
		ep, err := NewForEntity(id, e, roles)
		if err != nil {
			return nil, fmt.Errorf("payload %s: %w", id, err)
		}
		p.entities = append(p.entities, ep)
		p.byEntity[e.Address] = ep
	}
	if len(p.entities) == 0 {
		return nil, fmt.Errorf("payload %s: no entities require authorization", id)
	}
	slices.SortFunc(p.entities, func(a, b *ForEntity) int { return a.entity.Compare(b.entity) })
	return p, nil
}

// PayloadID 载荷ID
func (p *ForTransaction) PayloadID() types.PayloadID {
	return p.id
}

// Payload 载荷
func (p *ForTransaction) Payload() types.Signable {
	return p.payload
}

// Entities 实体请愿（按地址排序）
func (p *ForTransaction) Entities() []*ForEntity {
	return p.entities
}

// EntityViews 供跨角色分析器使用的只读视图
func (p *ForTransaction) EntityViews() []signing.EntityPetitionView {
	out := make([]signing.EntityPetitionView, 0, len(p.entities))
	for _, e := range p.entities {
		out = append(out, e)
	}
	return out
}

// Status 载荷状态
func (p *ForTransaction) Status() TransactionStatus {
	valid := 0
	for _, e := range p.entities {
		switch e.Status() {
		case StatusFailed:
			return TransactionInvalid
		case StatusSucceeded:
			valid++
		}
	}
	if valid == len(p.entities) {
		return TransactionValid
	}
	return TransactionPending
}

// FailedEntities 授权已失败的实体
func (p *ForTransaction) FailedEntities() []types.EntityAddress {
	var out []types.EntityAddress
	for _, e := range p.entities {
		if e.HasFailed() {
			out = append(out, e.entity)
		}
	}
	return out
}

// ReferencesFactorSource 载荷是否引用给定因子源
func (p *ForTransaction) ReferencesFactorSource(id types.FactorSourceID) bool {
	for _, e := range p.entities {
		if e.ReferencesFactorSource(id) {
			return true
		}
	}
	return false
}

// FactorSourceIDs 载荷引用的全部因子源
func (p *ForTransaction) FactorSourceIDs() []types.FactorSourceID {
	seen := make(map[types.FactorSourceID]bool)
	var out []types.FactorSourceID
	for _, e := range p.entities {
		for _, id := range e.FactorSourceIDs() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// InputForFactorSource 构造给定因子源在本载荷上的签名输入
//
// includeFinished 为 false 时跳过已满足或已失败实体的槽位。
// 没有任何待签名槽位时返回 nil。
func (p *ForTransaction) InputForFactorSource(id types.FactorSourceID, includeFinished bool) *types.TransactionSignRequestInput {
	var owned []types.OwnedFactorInstance
	for _, e := range p.entities {
		if !includeFinished && e.Status().IsFinished() {
			continue
		}
		for _, inst := range e.PendingInstancesOf(id) {
			owned = append(owned, types.OwnedFactorInstance{Owner: e.entity, Instance: inst})
		}
	}
	if len(owned) == 0 {
		return nil
	}
	return &types.TransactionSignRequestInput{
		PayloadID:      p.id,
		Payload:        p.payload,
		FactorSourceID: id,
		OwnedInstances: owned,
	}
}

// AddSignature 把签名写入对应实体
func (p *ForTransaction) AddSignature(sig types.HDSignature) error {
	if sig.PayloadID() != p.id {
		return fmt.Errorf("%w: signature for %s routed to payload %s", ErrInvariantViolation, sig.PayloadID(), p.id)
	}
	e, ok := p.byEntity[sig.Owner()]
	if !ok {
		return fmt.Errorf("%w: payload %s does not require entity %s", ErrInvariantViolation, p.id, sig.Owner())
	}
	return e.AddSignature(sig)
}

// Neglect 忽略给定因子源在本载荷上的全部待定槽位，返回被改变的槽位数
func (p *ForTransaction) Neglect(id types.FactorSourceID, reason types.NeglectFactorReason) int {
	changed := 0
	for _, e := range p.entities {
		changed += e.Neglect(id, reason)
	}
	return changed
}

// InvalidIfNeglected 若再忽略给定因子源，载荷是否会无效以及哪些实体将失败
//
// 已无效的载荷不计入（其失败与此次忽略无关）；不会因此失败时返回 nil。
func (p *ForTransaction) InvalidIfNeglected(ids []types.FactorSourceID) *types.InvalidTransactionIfNeglected {
	if p.Status() == TransactionInvalid {
		return nil
	}
	var failing []types.EntityAddress
	for _, e := range p.entities {
		if e.WouldFailIfNeglected(ids) {
			failing = append(failing, e.entity)
		}
	}
	if len(failing) == 0 {
		return nil
	}
	return &types.InvalidTransactionIfNeglected{PayloadID: p.id, EntitiesWhichWouldFailAuth: failing}
}

// Signatures 载荷已收集的全部签名
func (p *ForTransaction) Signatures() []types.HDSignature {
	var out []types.HDSignature
	for _, e := range p.entities {
		out = append(out, e.Signatures()...)
	}
	return out
}
