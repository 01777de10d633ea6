package collector

import (
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// NoOpAnalyzer 不做跨角色分析
type NoOpAnalyzer struct{}

// InvalidTransactionIfNeglected 总是返回 nil
func (NoOpAnalyzer) InvalidTransactionIfNeglected(types.PayloadID, []types.FactorSourceID, []signing.EntityPetitionView) *types.InvalidTransactionIfNeglected {
	return nil
}

// EntityFailureAnalyzer 报告因本次忽略而已不可满足的实体
type EntityFailureAnalyzer struct{}

// InvalidTransactionIfNeglected 载荷中任一实体已失败时返回报告
func (EntityFailureAnalyzer) InvalidTransactionIfNeglected(
	payloadID types.PayloadID,
	neglected []types.FactorSourceID,
	petitions []signing.EntityPetitionView,
) *types.InvalidTransactionIfNeglected {
	var failing []types.EntityAddress
	for _, p := range petitions {
		if p.HasFailed() || p.WouldFailIfNeglected(neglected) {
			failing = append(failing, p.Entity())
		}
	}
	if len(failing) == 0 {
		return nil
	}
	return &types.InvalidTransactionIfNeglected{PayloadID: payloadID, EntitiesWhichWouldFailAuth: failing}
}

var (
	_ signing.CrossRoleSkipOutcomeAnalyzer = NoOpAnalyzer{}
	_ signing.CrossRoleSkipOutcomeAnalyzer = EntityFailureAnalyzer{}
)
