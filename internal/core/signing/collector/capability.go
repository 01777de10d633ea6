package collector

import (
	"context"
	"fmt"

	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// Mode 交互形态
type Mode string

const (
	ModePoly Mode = "poly"
	ModeMono Mode = "mono"
)

// SigningCapability 对某一类别分组执行签名的能力
//
// 返回错误仅表示整组请求失败；单个因子源的失败以忽略结果体现在响应中。
type SigningCapability interface {
	Mode() Mode
	Sign(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error)
}

// CapabilityFor 按类别选择签名能力
//
// 支持批量签名的类别优先使用 poly 交互器，其余类别使用 mono 交互器。
func CapabilityFor(kind types.FactorSourceKind, provider signing.InteractorProvider, logger log.Logger) (SigningCapability, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: %s (no provider)", ErrNoInteractor, kind)
	}
	if kind.SupportsPolySign() {
		if poly := provider.PolyInteractor(kind); poly != nil {
			return &polyCapability{interactor: poly}, nil
		}
	}
	if mono := provider.MonoInteractor(kind); mono != nil {
		return &monoCapability{interactor: mono, logger: logger}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoInteractor, kind)
}

type polyCapability struct {
	interactor signing.PolySignInteractor
}

func (c *polyCapability) Mode() Mode { return ModePoly }

func (c *polyCapability) Sign(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error) {
	resp, err := c.interactor.SignPoly(ctx, request)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("poly interactor for %s returned no response", request.FactorSourceKind)
	}
	return resp, nil
}

// monoCapability 逐个因子源调用 mono 交互器
type monoCapability struct {
	interactor signing.MonoSignInteractor
	logger     log.Logger
}

func (c *monoCapability) Mode() Mode { return ModeMono }

func (c *monoCapability) Sign(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error) {
	resp := types.NewSignResponse()
	for i := range request.PerFactorSource {
		input := &request.PerFactorSource[i]
		outcome, err := c.interactor.SignMono(ctx, request.FactorSourceKind, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if c.logger != nil {
				c.logger.Warnf("mono interactor failed for %s: %v", input.FactorSourceID, err)
			}
			outcome = types.NeglectedOutcome(input.FactorSourceID, types.NeglectFailure)
		}
		resp.PerFactorSource[input.FactorSourceID] = outcome
	}
	return resp, nil
}
