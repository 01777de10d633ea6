package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// ApproveFunc 签名前向用户确认；返回 false 表示用户跳过该因子源
type ApproveFunc func(ctx context.Context, kind types.FactorSourceKind, input *types.PerFactorSourceInput) (bool, error)

// AlwaysApprove 不询问直接签名
func AlwaysApprove(context.Context, types.FactorSourceKind, *types.PerFactorSourceInput) (bool, error) {
	return true, nil
}

// Interactor 本机助记词交互器（poly 形态）
type Interactor struct {
	mu       sync.RWMutex
	keyrings map[types.FactorSourceID]*Keyring
	approve  ApproveFunc
	logger   log.Logger
}

// NewInteractor 创建交互器；approve 为空时不询问
func NewInteractor(approve ApproveFunc, logger log.Logger, keyrings ...*Keyring) *Interactor {
	if approve == nil {
		approve = AlwaysApprove
	}
	i := &Interactor{
		keyrings: make(map[types.FactorSourceID]*Keyring, len(keyrings)),
		approve:  approve,
		logger:   logger,
	}
	for _, k := range keyrings {
		i.keyrings[k.FactorSourceID()] = k
	}
	return i
}

// AddKeyring 添加密钥环
func (i *Interactor) AddKeyring(k *Keyring) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keyrings[k.FactorSourceID()] = k
}

func (i *Interactor) keyring(id types.FactorSourceID) (*Keyring, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	k, ok := i.keyrings[id]
	return k, ok
}

// SignPoly 为请求中的每个因子源签名
//
// 缺少助记词或公钥不一致的因子源按失败忽略；用户拒绝按跳过忽略。
func (i *Interactor) SignPoly(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error) {
	resp := types.NewSignResponse()
	for idx := range request.PerFactorSource {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		input := &request.PerFactorSource[idx]
		outcome, err := i.signOne(ctx, request.FactorSourceKind, input)
		if err != nil {
			return nil, err
		}
		resp.PerFactorSource[input.FactorSourceID] = outcome
	}
	return resp, nil
}

// SignMono 为单个因子源签名
func (i *Interactor) SignMono(ctx context.Context, kind types.FactorSourceKind, input *types.PerFactorSourceInput) (types.FactorOutcome, error) {
	return i.signOne(ctx, kind, input)
}

func (i *Interactor) signOne(ctx context.Context, kind types.FactorSourceKind, input *types.PerFactorSourceInput) (types.FactorOutcome, error) {
	keyring, ok := i.keyring(input.FactorSourceID)
	if !ok {
		i.warnf("没有因子源 %s 的助记词", input.FactorSourceID)
		return types.NeglectedOutcome(input.FactorSourceID, types.NeglectFailure), nil
	}

	approved, err := i.approve(ctx, kind, input)
	if err != nil {
		if ctx.Err() != nil {
			return types.FactorOutcome{}, ctx.Err()
		}
		return types.FactorOutcome{}, fmt.Errorf("approve %s: %w", input.FactorSourceID, err)
	}
	if !approved {
		return types.NeglectedOutcome(input.FactorSourceID, types.NeglectUserExplicitlySkipped), nil
	}

	inputs := input.SignatureInputs()
	signatures := make([]types.HDSignature, 0, len(inputs))
	for _, in := range inputs {
		sig, err := keyring.Sign(in)
		if err != nil {
			i.warnf("本机签名失败: %s %v", input.FactorSourceID, err)
			return types.NeglectedOutcome(input.FactorSourceID, types.NeglectFailure), nil
		}
		signatures = append(signatures, sig)
	}
	if i.logger != nil {
		i.logger.Debugf("本机签名完成: %s signatures=%d", input.FactorSourceID, len(signatures))
	}
	return types.SignedOutcome(input.FactorSourceID, signatures), nil
}

func (i *Interactor) warnf(format string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Warnf(format, args...)
	}
}

var (
	_ signing.PolySignInteractor = (*Interactor)(nil)
	_ signing.MonoSignInteractor = (*Interactor)(nil)
)
