package types

import (
	"errors"
	"fmt"
)

// ErrEmptySignedOutcome 签名结果中没有任何签名
var ErrEmptySignedOutcome = errors.New("signed outcome carries no signatures")

// TransactionSignRequestInput 单个因子源对单个载荷需要完成的签名槽位
type TransactionSignRequestInput struct {
	PayloadID      PayloadID             `json:"payload_id"`
	Payload        Signable              `json:"-"`
	FactorSourceID FactorSourceID        `json:"factor_source_id"`
	OwnedInstances []OwnedFactorInstance `json:"owned_instances"`
}

// SignatureInputs 展开为签名槽位
func (in *TransactionSignRequestInput) SignatureInputs() []HDSignatureInput {
	out := make([]HDSignatureInput, 0, len(in.OwnedInstances))
	for _, owned := range in.OwnedInstances {
		out = append(out, HDSignatureInput{PayloadID: in.PayloadID, OwnedFactorInstance: owned})
	}
	return out
}

// PerFactorSourceInput 某个因子源在本次分组请求中的全部输入
type PerFactorSourceInput struct {
	FactorSourceID FactorSourceID                `json:"factor_source_id"`
	PerTransaction []TransactionSignRequestInput `json:"per_transaction"`
	// InvalidTransactionsIfNeglected 若跳过该因子源将失败的载荷，供界面在跳过前提示
	InvalidTransactionsIfNeglected []InvalidTransactionIfNeglected `json:"invalid_transactions_if_neglected"`
}

// SignatureInputs 展开为签名槽位
func (in *PerFactorSourceInput) SignatureInputs() []HDSignatureInput {
	var out []HDSignatureInput
	for i := range in.PerTransaction {
		out = append(out, in.PerTransaction[i].SignatureInputs()...)
	}
	return out
}

// SignRequest 针对同一类别一组因子源的签名请求
type SignRequest struct {
	FactorSourceKind FactorSourceKind       `json:"factor_source_kind"`
	PerFactorSource  []PerFactorSourceInput `json:"per_factor_source"`
}

// FactorSourceIDs 请求涉及的因子源
func (r *SignRequest) FactorSourceIDs() []FactorSourceID {
	out := make([]FactorSourceID, 0, len(r.PerFactorSource))
	for _, in := range r.PerFactorSource {
		out = append(out, in.FactorSourceID)
	}
	return out
}

// ForFactorSource 取出单个因子源的输入
func (r *SignRequest) ForFactorSource(id FactorSourceID) (*PerFactorSourceInput, bool) {
	for i := range r.PerFactorSource {
		if r.PerFactorSource[i].FactorSourceID == id {
			return &r.PerFactorSource[i], true
		}
	}
	return nil, false
}

// FactorOutcome 单个因子源的交互结果：已签名或被忽略
type FactorOutcome struct {
	FactorSourceID FactorSourceID       `json:"factor_source_id"`
	Signatures     []HDSignature        `json:"signatures,omitempty"`
	Neglected      *NeglectFactorReason `json:"neglected,omitempty"`
}

// SignedOutcome 创建已签名结果
func SignedOutcome(id FactorSourceID, signatures []HDSignature) FactorOutcome {
	return FactorOutcome{FactorSourceID: id, Signatures: signatures}
}

// NeglectedOutcome 创建被忽略结果
func NeglectedOutcome(id FactorSourceID, reason NeglectFactorReason) FactorOutcome {
	r := reason
	return FactorOutcome{FactorSourceID: id, Neglected: &r}
}

// IsNeglected 是否被忽略
func (o FactorOutcome) IsNeglected() bool {
	return o.Neglected != nil
}

// Validate 结果必须是二者之一
func (o FactorOutcome) Validate() error {
	if o.Neglected != nil {
		if len(o.Signatures) > 0 {
			return fmt.Errorf("outcome for %s is both neglected and signed", o.FactorSourceID)
		}
		return nil
	}
	if len(o.Signatures) == 0 {
		return fmt.Errorf("%s: %w", o.FactorSourceID, ErrEmptySignedOutcome)
	}
	return nil
}

// SignResponse 交互器对签名请求的响应
type SignResponse struct {
	PerFactorSource map[FactorSourceID]FactorOutcome `json:"per_factor_source"`
}

// NewSignResponse 由若干结果组装响应
func NewSignResponse(outcomes ...FactorOutcome) *SignResponse {
	resp := &SignResponse{PerFactorSource: make(map[FactorSourceID]FactorOutcome, len(outcomes))}
	for _, o := range outcomes {
		resp.PerFactorSource[o.FactorSourceID] = o
	}
	return resp
}

// NeglectAll 创建将请求中所有因子源标记为忽略的响应
func NeglectAll(request *SignRequest, reason NeglectFactorReason) *SignResponse {
	resp := NewSignResponse()
	for _, id := range request.FactorSourceIDs() {
		resp.PerFactorSource[id] = NeglectedOutcome(id, reason)
	}
	return resp
}
