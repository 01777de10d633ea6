package signing

import "github.com/weisyn/sigcollect/pkg/types"

// EntityPetitionView 供跨角色分析使用的单实体请愿只读视图
type EntityPetitionView interface {
	// Entity 请愿所属实体
	Entity() types.EntityAddress

	// HasFailed 请愿是否已不可能满足（任一所需角色不可恢复）
	HasFailed() bool

	// WouldFailIfNeglected 若再忽略给定因子源，请愿是否会不可满足
	WouldFailIfNeglected(factorSourceIDs []types.FactorSourceID) bool
}

// CrossRoleSkipOutcomeAnalyzer 跨角色跳过结果分析器
//
// 在任何忽略被记录后立即调用；返回值仅作为附加报告，不影响最终结果，
// 也不会中止收集循环。实现必须无副作用。
type CrossRoleSkipOutcomeAnalyzer interface {
	InvalidTransactionIfNeglected(
		payloadID types.PayloadID,
		neglectedFactorSourceIDs []types.FactorSourceID,
		petitions []EntityPetitionView,
	) *types.InvalidTransactionIfNeglected
}
