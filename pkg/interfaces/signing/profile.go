package signing

import (
	"errors"

	"github.com/weisyn/sigcollect/pkg/types"
)

var (
	// ErrUnknownEntity 载荷引用了档案中不存在的实体
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownFactorSource 实体引用了档案中不存在的因子源
	ErrUnknownFactorSource = errors.New("unknown factor source")
)

// EntityResolver 档案快照：按地址查找实体与因子源
type EntityResolver interface {
	// Entity 查找实体，未找到时返回 false
	Entity(address types.EntityAddress) (*types.Entity, bool)

	// FactorSource 查找因子源元数据，未找到时返回 false
	FactorSource(id types.FactorSourceID) (*types.FactorSource, bool)
}

// EntitiesRequiringAuthExtractor 计算载荷需要哪些实体授权
//
// 实现通常委托给清单分析器；查找失败（如未知身份）应返回错误，
// 收集器会在发起任何签名前中止。
type EntitiesRequiringAuthExtractor interface {
	EntitiesRequiringAuth(signable types.Signable, profile EntityResolver) ([]*types.Entity, error)
}
