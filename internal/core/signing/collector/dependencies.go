package collector

import (
	"cmp"
	"slices"

	"github.com/weisyn/sigcollect/pkg/types"
)

// FinishEarlyStrategy 提前结束策略
type FinishEarlyStrategy struct {
	// WhenAllTransactionsAreValid 全部载荷有效后不再询问剩余分组
	WhenAllTransactionsAreValid bool
	// WhenSomeTransactionIsInvalid 任一载荷无效后立即停止询问
	WhenSomeTransactionIsInvalid bool
}

// DefaultFinishEarlyStrategy 全部有效即结束，出现无效仍继续
func DefaultFinishEarlyStrategy() FinishEarlyStrategy {
	return FinishEarlyStrategy{WhenAllTransactionsAreValid: true}
}

// Purpose 签名目的，决定每个实体需要满足哪些角色
type Purpose struct {
	Name  string
	Roles []types.RoleKind
}

// PurposeSignTransaction 普通交易签名，只需 Primary
func PurposeSignTransaction() Purpose {
	return Purpose{Name: "sign_transaction", Roles: []types.RoleKind{types.RolePrimary}}
}

// PurposeRecovery 恢复流程，需 Recovery 与 Confirmation
func PurposeRecovery() Purpose {
	return Purpose{Name: "recovery", Roles: []types.RoleKind{types.RoleRecovery, types.RoleConfirmation}}
}

// PurposeFromRoles 由角色列表构造签名目的，空列表退化为普通交易签名
func PurposeFromRoles(roles []types.RoleKind) Purpose {
	if len(roles) == 0 {
		return PurposeSignTransaction()
	}
	return Purpose{Name: "custom", Roles: slices.Clone(roles)}
}

// FactorSourcesOfKind 同一类别的一组因子源
type FactorSourcesOfKind struct {
	Kind          types.FactorSourceKind
	FactorSources []types.FactorSource
}

// IDs 分组内因子源ID
func (g FactorSourcesOfKind) IDs() []types.FactorSourceID {
	out := make([]types.FactorSourceID, 0, len(g.FactorSources))
	for _, fs := range g.FactorSources {
		out = append(out, fs.ID)
	}
	return out
}

// groupByKind 按类别分组，分组按摩擦顺序排列，组内按最近使用时间倒序、再按ID
func groupByKind(sources []types.FactorSource) []FactorSourcesOfKind {
	byKind := make(map[types.FactorSourceKind][]types.FactorSource)
	for _, fs := range sources {
		byKind[fs.Kind()] = append(byKind[fs.Kind()], fs)
	}
	groups := make([]FactorSourcesOfKind, 0, len(byKind))
	for kind, list := range byKind {
		slices.SortFunc(list, func(a, b types.FactorSource) int {
			if c := b.LastUsedOn.Compare(a.LastUsedOn); c != 0 {
				return c
			}
			return a.ID.Compare(b.ID)
		})
		groups = append(groups, FactorSourcesOfKind{Kind: kind, FactorSources: list})
	}
	slices.SortFunc(groups, func(a, b FactorSourcesOfKind) int {
		return cmp.Compare(a.Kind.FrictionRank(), b.Kind.FrictionRank())
	})
	return groups
}

// dependencies 一次运行中不变的依赖
type dependencies struct {
	finishEarly FinishEarlyStrategy
	purpose     Purpose
	groups      []FactorSourcesOfKind
	// capabilities 与 groups 一一对应
	capabilities []SigningCapability
}
