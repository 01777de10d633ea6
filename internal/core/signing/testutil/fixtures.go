// Package testutil 提供签名收集模块测试的辅助工具
//
// 🧪 **测试辅助工具包**
//
// 提供确定性的因子源、因子实例、实体与载荷构造函数，以及日志 Mock。
// 同一组参数总是得到相同的ID与公钥，便于在断言中直接比较。
package testutil

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/weisyn/sigcollect/pkg/types"
)

// NetworkID 测试使用的网络ID
const NetworkID uint32 = 2

// FactorSource 按类别与标签构造确定性的因子源
func FactorSource(kind types.FactorSourceKind, label string) types.FactorSource {
	body := types.HashOf([]byte("factor-source"), []byte(kind.String()), []byte(label))
	return types.FactorSource{
		ID:         types.NewFactorSourceID(kind, body),
		Label:      label,
		AddedOn:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastUsedOn: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Instance 由因子源在给定索引处派生一个因子实例
func Instance(fs types.FactorSource, index uint32) types.HDFactorInstance {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	pk := types.HashOf([]byte("public-key"), fs.ID.Body[:], idx[:])
	return types.HDFactorInstance{
		FactorSourceID: fs.ID,
		PublicKey:      pk[:],
		DerivationPath: types.NewDerivationPath(NetworkID, types.EntityKindAccount, index),
	}
}

// Address 按名称构造确定性的账户地址
func Address(name string) types.EntityAddress {
	return types.NewEntityAddress(types.EntityKindAccount, NetworkID, []byte(name))
}

// UnsecuredAccount 由单个因子实例控制的账户
func UnsecuredAccount(name string, fs types.FactorSource, index uint32) *types.Entity {
	inst := Instance(fs, index)
	return &types.Entity{
		Address:     Address(name),
		DisplayName: name,
		Unsecured:   &inst,
	}
}

// SecurifiedAccount 三个角色使用相同因子配置的已加固账户
func SecurifiedAccount(name string, threshold uint8, thresholdFactors, overrideFactors []types.HDFactorInstance) *types.Entity {
	role := func(kind types.RoleKind) types.RoleWithFactorInstances {
		return types.RoleWithFactorInstances{
			Role:             kind,
			Threshold:        threshold,
			ThresholdFactors: append([]types.HDFactorInstance(nil), thresholdFactors...),
			OverrideFactors:  append([]types.HDFactorInstance(nil), overrideFactors...),
		}
	}
	return &types.Entity{
		Address:     Address(name),
		DisplayName: name,
		Securified: &types.SecurityStructure{
			Primary:      role(types.RolePrimary),
			Recovery:     role(types.RoleRecovery),
			Confirmation: role(types.RoleConfirmation),
		},
	}
}

// Transaction 需要给定实体授权的交易意图，nonce 用于区分载荷
func Transaction(nonce uint32, entities ...*types.Entity) *types.TransactionIntent {
	summary := types.ManifestSummary{}
	for _, e := range entities {
		if e.Address.Kind == types.EntityKindPersona {
			summary.PersonasRequiringAuth = append(summary.PersonasRequiringAuth, e.Address)
			continue
		}
		summary.AccountsRequiringAuth = append(summary.AccountsRequiringAuth, e.Address)
	}
	return &types.TransactionIntent{
		NetworkID:  NetworkID,
		StartEpoch: 100,
		EndEpoch:   110,
		Nonce:      nonce,
		Message:    fmt.Sprintf("tx-%d", nonce),
		Manifest:   types.Manifest{Instructions: "CALL_METHOD", Summary: summary},
	}
}

// Sign 为槽位构造一个确定性的假签名
func Sign(input types.HDSignatureInput) types.HDSignature {
	sig := types.HashOf([]byte("signature"), []byte(input.Key()))
	return types.HDSignature{Input: input, Signature: sig[:]}
}

// SignAll 为输入中的全部槽位构造假签名
func SignAll(input *types.PerFactorSourceInput) []types.HDSignature {
	inputs := input.SignatureInputs()
	out := make([]types.HDSignature, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, Sign(in))
	}
	return out
}
