package simulated

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// ErrSimulatedInteractor 模拟的交互器错误
var ErrSimulatedInteractor = errors.New("simulated interactor error")

// Call 一次交互器调用记录
type Call struct {
	Kind          types.FactorSourceKind
	Mode          string
	FactorSources []types.FactorSourceID
}

// Interactor 模拟交互器，同时实现 poly 与 mono 两种形态
type Interactor struct {
	user   User
	logger log.Logger

	mu    sync.Mutex
	calls []Call
}

// New 创建模拟交互器
func New(user User, logger log.Logger) *Interactor {
	return &Interactor{user: user, logger: logger}
}

// Calls 返回调用记录副本
func (i *Interactor) Calls() []Call {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Call(nil), i.calls...)
}

// CallsForKind 某类别的调用次数
func (i *Interactor) CallsForKind(kind types.FactorSourceKind) int {
	n := 0
	for _, c := range i.Calls() {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func (i *Interactor) record(c Call) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls = append(i.calls, c)
}

// SignPoly 一次交互内处理多个因子源
//
// 任一因子源的决定为 DecisionError 时整组返回错误。
func (i *Interactor) SignPoly(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.record(Call{Kind: request.FactorSourceKind, Mode: "poly", FactorSources: request.FactorSourceIDs()})

	resp := types.NewSignResponse()
	for idx := range request.PerFactorSource {
		input := &request.PerFactorSource[idx]
		outcome, err := i.answer(input)
		if err != nil {
			return nil, err
		}
		resp.PerFactorSource[input.FactorSourceID] = outcome
	}
	return resp, nil
}

// SignMono 处理单个因子源
func (i *Interactor) SignMono(ctx context.Context, kind types.FactorSourceKind, input *types.PerFactorSourceInput) (types.FactorOutcome, error) {
	if err := ctx.Err(); err != nil {
		return types.FactorOutcome{}, err
	}
	i.record(Call{Kind: kind, Mode: "mono", FactorSources: []types.FactorSourceID{input.FactorSourceID}})
	return i.answer(input)
}

func (i *Interactor) answer(input *types.PerFactorSourceInput) (types.FactorOutcome, error) {
	decision := i.user.Decide(input.FactorSourceID)
	if i.logger != nil {
		i.logger.Debugf("模拟用户决定: %s -> %s (invalid_if_neglected=%d)",
			input.FactorSourceID, decision, len(input.InvalidTransactionsIfNeglected))
	}
	switch decision {
	case DecisionSkip:
		return types.NeglectedOutcome(input.FactorSourceID, types.NeglectUserExplicitlySkipped), nil
	case DecisionFail:
		return types.NeglectedOutcome(input.FactorSourceID, types.NeglectFailure), nil
	case DecisionSimulate:
		return types.NeglectedOutcome(input.FactorSourceID, types.NeglectSimulation), nil
	case DecisionError:
		return types.FactorOutcome{}, fmt.Errorf("%w: %s", ErrSimulatedInteractor, input.FactorSourceID)
	}

	inputs := input.SignatureInputs()
	signatures := make([]types.HDSignature, 0, len(inputs))
	for _, in := range inputs {
		signatures = append(signatures, types.HDSignature{Input: in, Signature: Sign(in)})
	}
	return types.SignedOutcome(input.FactorSourceID, signatures), nil
}

// privateKeyFor 由因子实例确定性派生的私钥
func privateKeyFor(instance types.HDFactorInstance) *btcec.PrivateKey {
	seed := types.HashOf([]byte("simulated-key"), []byte(instance.Key()))
	priv, _ := btcec.PrivKeyFromBytes(seed[:])
	return priv
}

// PublicKeyFor 模拟因子实例对应的压缩公钥
func PublicKeyFor(instance types.HDFactorInstance) []byte {
	return privateKeyFor(instance).PubKey().SerializeCompressed()
}

// Sign 对槽位签名（DER 编码）
func Sign(in types.HDSignatureInput) []byte {
	priv := privateKeyFor(in.OwnedFactorInstance.Instance)
	hash := in.PayloadID.Hash
	return ecdsa.Sign(priv, hash[:]).Serialize()
}

// Verify 校验模拟签名
func Verify(sig types.HDSignature) bool {
	parsed, err := ecdsa.ParseDERSignature(sig.Signature)
	if err != nil {
		return false
	}
	hash := sig.Input.PayloadID.Hash
	return parsed.Verify(hash[:], privateKeyFor(sig.Input.OwnedFactorInstance.Instance).PubKey())
}

// Provider 为所有类别提供同一个模拟交互器
type Provider struct {
	Interactor *Interactor
	// MonoOnly 为 true 时即使支持批量的类别也走 mono
	MonoOnly bool
}

// NewProvider 创建模拟交互器提供者
func NewProvider(user User, logger log.Logger) *Provider {
	return &Provider{Interactor: New(user, logger)}
}

// PolyInteractor 实现 signing.InteractorProvider
func (p *Provider) PolyInteractor(kind types.FactorSourceKind) signing.PolySignInteractor {
	if p.MonoOnly || !kind.SupportsPolySign() {
		return nil
	}
	return p.Interactor
}

// MonoInteractor 实现 signing.InteractorProvider
func (p *Provider) MonoInteractor(types.FactorSourceKind) signing.MonoSignInteractor {
	return p.Interactor
}

var (
	_ signing.PolySignInteractor = (*Interactor)(nil)
	_ signing.MonoSignInteractor = (*Interactor)(nil)
	_ signing.InteractorProvider = (*Provider)(nil)
)
