package types

import (
	"fmt"
	"strconv"
	"strings"
)

// CAP26 派生路径相关常量
const (
	// CoinType Radix 风格链的 SLIP-0044 coin type
	CoinType uint32 = 1022

	// BIP44Purpose BIP44 标准的 purpose 值
	BIP44Purpose uint32 = 44

	// HardenedOffset 硬化派生偏移量
	HardenedOffset uint32 = 0x80000000

	// pathComponents 路径组件数量
	pathComponents = 6
)

// KeyKind 派生出的密钥用途
type KeyKind uint32

const (
	KeyKindTransactionSigning    KeyKind = 1460
	KeyKindAuthenticationSigning KeyKind = 1678
)

// DerivationPath CAP26 派生路径
//
// 格式：m/44'/1022'/network'/entityKind'/keyKind'/index'，所有组件均为硬化派生。
type DerivationPath struct {
	NetworkID  uint32     `json:"network_id"`
	EntityKind EntityKind `json:"entity_kind"`
	KeyKind    KeyKind    `json:"key_kind"`
	Index      uint32     `json:"index"`
}

// NewDerivationPath 创建交易签名用途的派生路径
func NewDerivationPath(networkID uint32, entityKind EntityKind, index uint32) DerivationPath {
	return DerivationPath{
		NetworkID:  networkID,
		EntityKind: entityKind,
		KeyKind:    KeyKindTransactionSigning,
		Index:      index,
	}
}

// ParseDerivationPath 解析派生路径字符串
// 支持格式: m/44'/1022'/1'/525'/1460'/0' 或省略 m/ 前缀
func ParseDerivationPath(path string) (DerivationPath, error) {
	path = strings.TrimPrefix(path, "m/")
	path = strings.TrimPrefix(path, "M/")

	parts := strings.Split(path, "/")
	if len(parts) != pathComponents {
		return DerivationPath{}, fmt.Errorf("invalid derivation path: expected %d components, got %d", pathComponents, len(parts))
	}

	values := make([]uint32, pathComponents)
	for i, part := range parts {
		v, err := parsePathComponent(part)
		if err != nil {
			return DerivationPath{}, fmt.Errorf("invalid component %d: %w", i, err)
		}
		values[i] = v
	}

	if values[0] != BIP44Purpose {
		return DerivationPath{}, fmt.Errorf("invalid purpose: expected %d, got %d", BIP44Purpose, values[0])
	}
	if values[1] != CoinType {
		return DerivationPath{}, fmt.Errorf("invalid coin type: expected %d, got %d", CoinType, values[1])
	}

	entityKind := EntityKind(values[3])
	if entityKind != EntityKindAccount && entityKind != EntityKindPersona {
		return DerivationPath{}, fmt.Errorf("invalid entity kind: %d", values[3])
	}
	keyKind := KeyKind(values[4])
	if keyKind != KeyKindTransactionSigning && keyKind != KeyKindAuthenticationSigning {
		return DerivationPath{}, fmt.Errorf("invalid key kind: %d", values[4])
	}

	return DerivationPath{
		NetworkID:  values[2],
		EntityKind: entityKind,
		KeyKind:    keyKind,
		Index:      values[5],
	}, nil
}

// parsePathComponent 解析硬化路径组件
func parsePathComponent(component string) (uint32, error) {
	isHardened := strings.HasSuffix(component, "'") || strings.HasSuffix(component, "H") || strings.HasSuffix(component, "h")
	if !isHardened {
		return 0, fmt.Errorf("hardened derivation required for %s", component)
	}
	component = strings.TrimRight(component, "'Hh")

	value, err := strconv.ParseUint(component, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", component)
	}
	if uint32(value) >= HardenedOffset {
		return 0, fmt.Errorf("component out of range: %s", component)
	}
	return uint32(value), nil
}

// String 返回路径字符串表示
func (dp DerivationPath) String() string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d'/%d'/%d'",
		BIP44Purpose,
		CoinType,
		dp.NetworkID,
		uint32(dp.EntityKind),
		uint32(dp.KeyKind),
		dp.Index,
	)
}

// ToUint32Array 转换为 uint32 数组（用于 hdkeychain），每个组件都带硬化标记
func (dp DerivationPath) ToUint32Array() []uint32 {
	return []uint32{
		BIP44Purpose + HardenedOffset,
		CoinType + HardenedOffset,
		dp.NetworkID + HardenedOffset,
		uint32(dp.EntityKind) + HardenedOffset,
		uint32(dp.KeyKind) + HardenedOffset,
		dp.Index + HardenedOffset,
	}
}

// WithIndex 返回使用指定索引的新路径
func (dp DerivationPath) WithIndex(index uint32) DerivationPath {
	dp.Index = index
	return dp
}

// MarshalText 以路径字符串编码
func (dp DerivationPath) MarshalText() ([]byte, error) {
	return []byte(dp.String()), nil
}

// UnmarshalText 从路径字符串解码
func (dp *DerivationPath) UnmarshalText(text []byte) error {
	parsed, err := ParseDerivationPath(string(text))
	if err != nil {
		return err
	}
	*dp = parsed
	return nil
}
