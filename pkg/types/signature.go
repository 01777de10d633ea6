package types

import "fmt"

// HDSignatureInput 一个待签名槽位：载荷 + 带归属的因子实例
type HDSignatureInput struct {
	PayloadID           PayloadID           `json:"payload_id"`
	OwnedFactorInstance OwnedFactorInstance `json:"owned_factor_instance"`
}

// FactorSourceID 返回槽位所需的因子源
func (in HDSignatureInput) FactorSourceID() FactorSourceID {
	return in.OwnedFactorInstance.FactorSourceID()
}

// Key 槽位比较键
func (in HDSignatureInput) Key() string {
	return in.PayloadID.String() + "/" + in.OwnedFactorInstance.Owner.String() + "/" + in.OwnedFactorInstance.Instance.Key()
}

// HDSignature 某个因子实例对某个载荷产生的签名，创建后不可变
type HDSignature struct {
	Input     HDSignatureInput `json:"input"`
	Signature []byte           `json:"signature"`
}

// PayloadID 返回签名所属载荷
func (s HDSignature) PayloadID() PayloadID {
	return s.Input.PayloadID
}

// FactorSourceID 返回签名声明的因子源
func (s HDSignature) FactorSourceID() FactorSourceID {
	return s.Input.FactorSourceID()
}

// Owner 返回签名归属实体
func (s HDSignature) Owner() EntityAddress {
	return s.Input.OwnedFactorInstance.Owner
}

// String 用于日志
func (s HDSignature) String() string {
	return fmt.Sprintf("sig(%s by %s for %s)", s.Input.PayloadID.Hash.Short(), s.FactorSourceID(), s.Owner())
}
