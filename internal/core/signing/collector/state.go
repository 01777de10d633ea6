package collector

import (
	"fmt"
	"sync"

	"github.com/weisyn/sigcollect/internal/core/signing/petition"
	"github.com/weisyn/sigcollect/pkg/types"
)

// state 收集器状态
//
// 只有编排循环写入；状态评估与结果构造在两次写入之间读取。
type state struct {
	mu        sync.RWMutex
	petitions *petition.Petitions

	neglected    []types.NeglectedFactor
	neglectedSet map[types.FactorSourceID]bool

	// earlyReports 跨角色分析器报告，按载荷去重
	earlyReports    []types.InvalidTransactionIfNeglected
	earlyReportSeen map[types.PayloadID]bool
}

func newState(petitions *petition.Petitions) *state {
	return &state{
		petitions:       petitions,
		neglectedSet:    make(map[types.FactorSourceID]bool),
		earlyReportSeen: make(map[types.PayloadID]bool),
	}
}

func (s *state) summary() petition.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.petitions.Summary()
}

func (s *state) isIrrelevant(id types.FactorSourceID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.petitions.IsIrrelevant(id)
}

func (s *state) inputFor(id types.FactorSourceID, includeFinished bool) *types.PerFactorSourceInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.petitions.InputForFactorSource(id, includeFinished)
}

func (s *state) isNeglected(id types.FactorSourceID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.neglectedSet[id]
}

// addSignatures 写入一个因子源产出的签名
func (s *state) addSignatures(signatures []types.HDSignature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sig := range signatures {
		if err := s.petitions.AddSignature(sig); err != nil {
			return err
		}
	}
	return nil
}

// neglectResult 一次忽略的影响
type neglectResult struct {
	affected     []*petition.ForTransaction
	newlyInvalid []*petition.ForTransaction
}

// neglect 在所有引用该因子源的载荷上记录忽略
func (s *state) neglect(id types.FactorSourceID, reason types.NeglectFactorReason) neglectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := make(map[types.PayloadID]petition.TransactionStatus)
	for _, tx := range s.petitions.PayloadsReferencing(id) {
		before[tx.PayloadID()] = tx.Status()
	}

	var res neglectResult
	res.affected = s.petitions.Neglect(id, reason)
	for _, tx := range res.affected {
		if before[tx.PayloadID()] != petition.TransactionInvalid && tx.Status() == petition.TransactionInvalid {
			res.newlyInvalid = append(res.newlyInvalid, tx)
		}
	}
	if !s.neglectedSet[id] {
		s.neglectedSet[id] = true
		s.neglected = append(s.neglected, types.NeglectedFactor{Reason: reason, FactorSourceID: id})
	}
	return res
}

func (s *state) recordEarlyReport(report types.InvalidTransactionIfNeglected) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.earlyReportSeen[report.PayloadID] {
		return false
	}
	s.earlyReportSeen[report.PayloadID] = true
	s.earlyReports = append(s.earlyReports, report)
	return true
}

// outcome 由最终状态构造结果，不修改状态
func (s *state) outcome() *SignaturesOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &SignaturesOutcome{
		NeglectedFactors: append([]types.NeglectedFactor(nil), s.neglected...),
		EarlyReports:     append([]types.InvalidTransactionIfNeglected(nil), s.earlyReports...),
	}
	for _, tx := range s.petitions.Transactions() {
		signatures := tx.Signatures()
		out.AllSignatures = append(out.AllSignatures, signatures...)
		if tx.Status() == petition.TransactionValid {
			out.Successful = append(out.Successful, SignedTransaction{
				PayloadID:  tx.PayloadID(),
				Payload:    tx.Payload(),
				Signatures: signatures,
			})
			continue
		}
		out.Failed = append(out.Failed, types.InvalidTransactionIfNeglected{
			PayloadID:                  tx.PayloadID(),
			EntitiesWhichWouldFailAuth: failingEntities(tx),
		})
	}
	return out
}

// failingEntities 已失败的实体；载荷因提前结束仍待定时为尚未满足的实体
func failingEntities(tx *petition.ForTransaction) []types.EntityAddress {
	if failed := tx.FailedEntities(); len(failed) > 0 {
		return failed
	}
	var out []types.EntityAddress
	for _, e := range tx.Entities() {
		if e.Status() != petition.StatusSucceeded {
			out = append(out, e.Entity())
		}
	}
	return out
}

func (s *state) String() string {
	sum := s.summary()
	return fmt.Sprintf("valid=%d invalid=%d pending=%d", sum.Valid, sum.Invalid, sum.Pending)
}
