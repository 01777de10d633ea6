package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FactorSourceKind 因子源类别
//
// 类别之间存在按交互摩擦排序的全序：需要物理设备/他人参与的类别排在前面，
// 驻留在本机的 Device 排在最后（交互成本最低）。
type FactorSourceKind uint8

const (
	FactorSourceKindLedgerHardwareWallet FactorSourceKind = iota
	FactorSourceKindArculusCard
	FactorSourceKindTrustedContact
	FactorSourceKindOffDeviceMnemonic
	FactorSourceKindSecurityQuestions
	FactorSourceKindPassword
	FactorSourceKindDevice
)

// AllFactorSourceKinds 按摩擦顺序列出所有类别
var AllFactorSourceKinds = []FactorSourceKind{
	FactorSourceKindLedgerHardwareWallet,
	FactorSourceKindArculusCard,
	FactorSourceKindTrustedContact,
	FactorSourceKindOffDeviceMnemonic,
	FactorSourceKindSecurityQuestions,
	FactorSourceKindPassword,
	FactorSourceKindDevice,
}

var factorSourceKindNames = map[FactorSourceKind]string{
	FactorSourceKindLedgerHardwareWallet: "ledger",
	FactorSourceKindArculusCard:          "arculus",
	FactorSourceKindTrustedContact:       "trusted_contact",
	FactorSourceKindOffDeviceMnemonic:    "off_device_mnemonic",
	FactorSourceKindSecurityQuestions:    "security_questions",
	FactorSourceKindPassword:             "password",
	FactorSourceKindDevice:               "device",
}

// String 返回类别名称
func (k FactorSourceKind) String() string {
	if name, ok := factorSourceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ParseFactorSourceKind 从名称解析类别
func ParseFactorSourceKind(s string) (FactorSourceKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range factorSourceKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown factor source kind: %q", s)
}

// FrictionRank 摩擦排名，数值越小越先被请求签名
func (k FactorSourceKind) FrictionRank() int {
	return int(k)
}

// SupportsPolySign 是否支持一次交互中用多个同类因子源签名
//
// 本机助记词类可以批量确认；硬件、联系人、口令类必须逐个独占交互。
func (k FactorSourceKind) SupportsPolySign() bool {
	switch k {
	case FactorSourceKindDevice, FactorSourceKindOffDeviceMnemonic:
		return true
	default:
		return false
	}
}

// FactorSourceID 因子源的稳定标识
type FactorSourceID struct {
	Kind FactorSourceKind `json:"kind"`
	Body Hash32           `json:"body"`
}

// NewFactorSourceID 创建因子源ID
func NewFactorSourceID(kind FactorSourceKind, body Hash32) FactorSourceID {
	return FactorSourceID{Kind: kind, Body: body}
}

// String 返回 kind:hex 形式
func (id FactorSourceID) String() string {
	return id.Kind.String() + ":" + id.Body.Hex()
}

// ParseFactorSourceID 解析 kind:hex 形式
func ParseFactorSourceID(s string) (FactorSourceID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return FactorSourceID{}, fmt.Errorf("invalid factor source id: %q", s)
	}
	kind, err := ParseFactorSourceKind(parts[0])
	if err != nil {
		return FactorSourceID{}, err
	}
	body, err := Hash32FromHex(parts[1])
	if err != nil {
		return FactorSourceID{}, fmt.Errorf("invalid factor source id %q: %w", s, err)
	}
	return NewFactorSourceID(kind, body), nil
}

// Compare 先按摩擦顺序、再按主体字节比较
func (id FactorSourceID) Compare(other FactorSourceID) int {
	if id.Kind != other.Kind {
		if id.Kind < other.Kind {
			return -1
		}
		return 1
	}
	return id.Body.Compare(other.Body)
}

// SortFactorSourceIDs 原地排序
func SortFactorSourceIDs(ids []FactorSourceID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}

// FactorSource 档案中的因子源元数据
type FactorSource struct {
	ID         FactorSourceID `json:"id"`
	Label      string         `json:"label"`
	AddedOn    time.Time      `json:"added_on"`
	LastUsedOn time.Time      `json:"last_used_on"`
}

// Kind 返回因子源类别
func (f FactorSource) Kind() FactorSourceKind {
	return f.ID.Kind
}

// HDFactorInstance 由某个因子源按派生路径派生出的具体公钥
type HDFactorInstance struct {
	FactorSourceID FactorSourceID `json:"factor_source_id"`
	PublicKey      []byte         `json:"public_key"`
	DerivationPath DerivationPath `json:"derivation_path"`
}

// Key 实例的比较键（因子源 + 路径），公钥由二者唯一决定
func (i HDFactorInstance) Key() string {
	return i.FactorSourceID.String() + "@" + i.DerivationPath.String()
}

// Equal 是否为同一实例
func (i HDFactorInstance) Equal(other HDFactorInstance) bool {
	return i.FactorSourceID == other.FactorSourceID && i.DerivationPath == other.DerivationPath
}

// OwnedFactorInstance 带归属实体的因子实例
type OwnedFactorInstance struct {
	Owner    EntityAddress    `json:"owner"`
	Instance HDFactorInstance `json:"instance"`
}

// FactorSourceID 返回实例所属因子源
func (o OwnedFactorInstance) FactorSourceID() FactorSourceID {
	return o.Instance.FactorSourceID
}

// MarshalText 以 kind:hex 编码
func (id FactorSourceID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 从 kind:hex 解码
func (id *FactorSourceID) UnmarshalText(text []byte) error {
	parsed, err := ParseFactorSourceID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText 以名称编码
func (k FactorSourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 从名称解码
func (k *FactorSourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFactorSourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
