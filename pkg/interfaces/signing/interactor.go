// Package signing 定义多因子签名收集核心所依赖的外部能力接口
//
// ✍️ **签名交互能力 (Sign Interactor Capabilities)**
//
// 本包定义签名收集器与外部协作者之间的边界，专注于：
// - 签名交互器：真正执行签名（等待用户确认或设备 I/O）的能力
// - 实体解析：从档案快照中查找实体的安全结构
// - 授权分析：计算载荷需要哪些实体授权
// - 跨角色分析：忽略某因子后是否已有载荷注定无效
//
// 🎯 **设计原则**
// - 交互器分为 poly（一次交互签多个同类因子源）与 mono（每次只签一个因子源）两种形态
// - 交互器自行负责超时；收集器不做任何超时控制
// - 用户拒绝与设备失败以"忽略"结果返回，而不是错误
package signing

import (
	"context"

	"github.com/weisyn/sigcollect/pkg/types"
)

// PolySignInteractor 一次交互内为多个同类因子源签名
//
// 适用于本机助记词等可批量确认的类别。响应中每个请求的因子源都应有结果；
// 缺失的因子源按失败处理。
type PolySignInteractor interface {
	SignPoly(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error)
}

// MonoSignInteractor 每次交互只为一个因子源签名
//
// 适用于硬件钱包、可信联系人等需要独占物理交互的类别。
type MonoSignInteractor interface {
	SignMono(ctx context.Context, kind types.FactorSourceKind, input *types.PerFactorSourceInput) (types.FactorOutcome, error)
}

// InteractorProvider 按因子源类别提供交互器
//
// 对每个类别，PolyInteractor 与 MonoInteractor 至少其一非空；
// 类别支持 poly 时优先使用 poly 交互器。
type InteractorProvider interface {
	PolyInteractor(kind types.FactorSourceKind) PolySignInteractor
	MonoInteractor(kind types.FactorSourceKind) MonoSignInteractor
}
