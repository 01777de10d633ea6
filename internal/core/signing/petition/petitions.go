package petition

import (
	"fmt"
	"slices"

	"github.com/weisyn/sigcollect/pkg/types"
)

// Petitions 一次收集中全部载荷的请愿，附带因子源到载荷的反向索引
type Petitions struct {
	order     []types.PayloadID
	byPayload map[types.PayloadID]*ForTransaction
	byFactor  map[types.FactorSourceID][]types.PayloadID
}

// NewPetitions 组装请愿集合，载荷ID重复视为同一载荷
func NewPetitions(txs []*ForTransaction) *Petitions {
	p := &Petitions{
		byPayload: make(map[types.PayloadID]*ForTransaction, len(txs)),
		byFactor:  make(map[types.FactorSourceID][]types.PayloadID),
	}
	for _, tx := range txs {
		if _, dup := p.byPayload[tx.id]; dup {
			continue
		}
		p.order = append(p.order, tx.id)
		p.byPayload[tx.id] = tx
		for _, id := range tx.FactorSourceIDs() {
			p.byFactor[id] = append(p.byFactor[id], tx.id)
		}
	}
	return p
}

// Len 载荷数量
func (p *Petitions) Len() int {
	return len(p.order)
}

// Transactions 按输入顺序返回全部载荷请愿
func (p *Petitions) Transactions() []*ForTransaction {
	out := make([]*ForTransaction, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byPayload[id])
	}
	return out
}

// Transaction 按ID取载荷请愿
func (p *Petitions) Transaction(id types.PayloadID) (*ForTransaction, bool) {
	tx, ok := p.byPayload[id]
	return tx, ok
}

// PayloadsReferencing 引用给定因子源的载荷
func (p *Petitions) PayloadsReferencing(id types.FactorSourceID) []*ForTransaction {
	ids := p.byFactor[id]
	out := make([]*ForTransaction, 0, len(ids))
	for _, pid := range ids {
		out = append(out, p.byPayload[pid])
	}
	return out
}

// FactorSourceIDs 全部载荷引用的因子源（排序）
func (p *Petitions) FactorSourceIDs() []types.FactorSourceID {
	out := make([]types.FactorSourceID, 0, len(p.byFactor))
	for id := range p.byFactor {
		out = append(out, id)
	}
	types.SortFactorSourceIDs(out)
	return out
}

// IsIrrelevant 引用该因子源的载荷已全部无效
func (p *Petitions) IsIrrelevant(id types.FactorSourceID) bool {
	ids := p.byFactor[id]
	if len(ids) == 0 {
		return true
	}
	for _, pid := range ids {
		if p.byPayload[pid].Status() != TransactionInvalid {
			return false
		}
	}
	return true
}

// InputForFactorSource 构造给定因子源的请求输入
//
// 已无效载荷不再请求；includeFinished 为 false 时已完结实体的槽位也不请求。
// 没有任何待签名槽位时返回 nil。
func (p *Petitions) InputForFactorSource(id types.FactorSourceID, includeFinished bool) *types.PerFactorSourceInput {
	var perTx []types.TransactionSignRequestInput
	for _, tx := range p.PayloadsReferencing(id) {
		if tx.Status() == TransactionInvalid {
			continue
		}
		if in := tx.InputForFactorSource(id, includeFinished); in != nil {
			perTx = append(perTx, *in)
		}
	}
	if len(perTx) == 0 {
		return nil
	}
	return &types.PerFactorSourceInput{
		FactorSourceID:                 id,
		PerTransaction:                 perTx,
		InvalidTransactionsIfNeglected: p.InvalidIfNeglected([]types.FactorSourceID{id}),
	}
}

// InvalidIfNeglected 若忽略给定因子源将变为无效的载荷
func (p *Petitions) InvalidIfNeglected(ids []types.FactorSourceID) []types.InvalidTransactionIfNeglected {
	seen := make(map[types.PayloadID]bool)
	var out []types.InvalidTransactionIfNeglected
	for _, id := range ids {
		for _, tx := range p.PayloadsReferencing(id) {
			if seen[tx.id] {
				continue
			}
			seen[tx.id] = true
			if inv := tx.InvalidIfNeglected(ids); inv != nil {
				out = append(out, *inv)
			}
		}
	}
	slices.SortFunc(out, func(a, b types.InvalidTransactionIfNeglected) int { return a.PayloadID.Compare(b.PayloadID) })
	return out
}

// AddSignature 把签名路由到所属载荷
func (p *Petitions) AddSignature(sig types.HDSignature) error {
	tx, ok := p.byPayload[sig.PayloadID()]
	if !ok {
		return fmt.Errorf("%w: signature for unknown payload %s", ErrInvariantViolation, sig.PayloadID())
	}
	return tx.AddSignature(sig)
}

// Neglect 在所有引用该因子源的载荷上忽略其待定槽位，返回受影响的载荷
func (p *Petitions) Neglect(id types.FactorSourceID, reason types.NeglectFactorReason) []*ForTransaction {
	var affected []*ForTransaction
	for _, tx := range p.PayloadsReferencing(id) {
		if tx.Neglect(id, reason) > 0 {
			affected = append(affected, tx)
		}
	}
	return affected
}

// Summary 载荷状态计数
type Summary struct {
	Valid   int
	Invalid int
	Pending int
}

// AllValid 全部载荷有效
func (s Summary) AllValid() bool {
	return s.Invalid == 0 && s.Pending == 0
}

// Finished 没有待定载荷
func (s Summary) Finished() bool {
	return s.Pending == 0
}

// Summary 统计载荷状态
func (p *Petitions) Summary() Summary {
	var s Summary
	for _, id := range p.order {
		switch p.byPayload[id].Status() {
		case TransactionValid:
			s.Valid++
		case TransactionInvalid:
			s.Invalid++
		default:
			s.Pending++
		}
	}
	return s
}
