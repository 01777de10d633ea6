package collector

import (
	"errors"

	"github.com/weisyn/sigcollect/internal/core/signing/petition"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// 构造阶段错误：在发起任何签名前返回，不产生任何部分状态
var (
	// ErrNoSignables 没有可签名载荷
	ErrNoSignables = errors.New("no signables to collect signatures for")

	// ErrNoEntities 载荷不需要任何实体授权
	ErrNoEntities = errors.New("signable requires no entities")

	// ErrUnknownEntity 载荷引用了未知实体
	ErrUnknownEntity = signing.ErrUnknownEntity

	// ErrUnknownFactorSource 实体引用了未知因子源
	ErrUnknownFactorSource = signing.ErrUnknownFactorSource

	// ErrInvalidSecurityStructure 实体安全结构不合法
	ErrInvalidSecurityStructure = types.ErrInvalidSecurityStructure

	// ErrNoInteractor 某个因子源类别没有可用的交互器
	ErrNoInteractor = errors.New("no sign interactor for factor source kind")
)

// 运行阶段的致命错误
var (
	// ErrInvariantViolation 签名与请愿槽位不一致等不变量破坏
	ErrInvariantViolation = petition.ErrInvariantViolation

	// ErrAlreadyUsed 收集器只能运行一次
	ErrAlreadyUsed = errors.New("signatures collector already used")
)
