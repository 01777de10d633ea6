package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSecurityStructure 安全结构配置不合法
var ErrInvalidSecurityStructure = errors.New("invalid security structure")

// EntityKind 实体类别（取值即 CAP26 路径中的 entityKind 组件）
type EntityKind uint32

const (
	EntityKindAccount EntityKind = 525
	EntityKindPersona EntityKind = 618
)

// String 返回类别名称
func (k EntityKind) String() string {
	switch k {
	case EntityKindAccount:
		return "account"
	case EntityKindPersona:
		return "persona"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(k))
	}
}

// addressPrefix 地址字符串前缀
func (k EntityKind) addressPrefix() string {
	if k == EntityKindPersona {
		return "identity"
	}
	return "account"
}

// EntityAddress 账户或身份的地址
type EntityAddress struct {
	Kind      EntityKind `json:"kind"`
	NetworkID uint32     `json:"network_id"`
	Body      Hash32     `json:"body"`
}

// NewEntityAddress 由公钥派生地址
func NewEntityAddress(kind EntityKind, networkID uint32, publicKey []byte) EntityAddress {
	return EntityAddress{Kind: kind, NetworkID: networkID, Body: HashOf([]byte(kind.addressPrefix()), publicKey)}
}

// String 返回 account_<net>_<hex> / identity_<net>_<hex>
func (a EntityAddress) String() string {
	return fmt.Sprintf("%s_%d_%s", a.Kind.addressPrefix(), a.NetworkID, a.Body.Hex())
}

// ParseEntityAddress 解析地址字符串
func ParseEntityAddress(s string) (EntityAddress, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return EntityAddress{}, fmt.Errorf("invalid entity address: %q", s)
	}
	var kind EntityKind
	switch parts[0] {
	case "account":
		kind = EntityKindAccount
	case "identity":
		kind = EntityKindPersona
	default:
		return EntityAddress{}, fmt.Errorf("invalid entity address prefix: %q", parts[0])
	}
	network, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return EntityAddress{}, fmt.Errorf("invalid network id in address %q: %w", s, err)
	}
	body, err := Hash32FromHex(parts[2])
	if err != nil {
		return EntityAddress{}, fmt.Errorf("invalid entity address %q: %w", s, err)
	}
	return EntityAddress{Kind: kind, NetworkID: uint32(network), Body: body}, nil
}

// MarshalText 以地址字符串编码
func (a EntityAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText 从地址字符串解码
func (a *EntityAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseEntityAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Compare 地址排序
func (a EntityAddress) Compare(other EntityAddress) int {
	if a.Kind != other.Kind {
		if a.Kind < other.Kind {
			return -1
		}
		return 1
	}
	if a.NetworkID != other.NetworkID {
		if a.NetworkID < other.NetworkID {
			return -1
		}
		return 1
	}
	return a.Body.Compare(other.Body)
}

// RoleKind 安全结构中的角色
type RoleKind uint8

const (
	RolePrimary RoleKind = iota
	RoleRecovery
	RoleConfirmation
)

// String 返回角色名称
func (r RoleKind) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleRecovery:
		return "recovery"
	case RoleConfirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// ParseRoleKind 从名称解析角色
func ParseRoleKind(s string) (RoleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return RolePrimary, nil
	case "recovery":
		return RoleRecovery, nil
	case "confirmation":
		return RoleConfirmation, nil
	default:
		return 0, fmt.Errorf("unknown role: %q", s)
	}
}

// RoleWithFactorInstances 某个角色的因子配置
//
// 门限因子需至少 Threshold 个签名；任一覆盖因子签名即满足角色。
type RoleWithFactorInstances struct {
	Role             RoleKind           `json:"role"`
	Threshold        uint8              `json:"threshold"`
	ThresholdFactors []HDFactorInstance `json:"threshold_factors"`
	OverrideFactors  []HDFactorInstance `json:"override_factors"`
}

// Validate 校验角色配置
func (r *RoleWithFactorInstances) Validate() error {
	if len(r.ThresholdFactors) == 0 && len(r.OverrideFactors) == 0 {
		return fmt.Errorf("%w: role %s has no factors", ErrInvalidSecurityStructure, r.Role)
	}
	if int(r.Threshold) > len(r.ThresholdFactors) {
		return fmt.Errorf("%w: role %s threshold %d exceeds %d threshold factors",
			ErrInvalidSecurityStructure, r.Role, r.Threshold, len(r.ThresholdFactors))
	}
	if r.Threshold == 0 && len(r.ThresholdFactors) > 0 {
		return fmt.Errorf("%w: role %s has threshold factors but threshold 0", ErrInvalidSecurityStructure, r.Role)
	}
	seen := make(map[string]bool)
	for _, list := range [][]HDFactorInstance{r.ThresholdFactors, r.OverrideFactors} {
		for _, f := range list {
			if seen[f.Key()] {
				return fmt.Errorf("%w: role %s repeats factor instance %s", ErrInvalidSecurityStructure, r.Role, f.Key())
			}
			seen[f.Key()] = true
		}
	}
	return nil
}

// AllFactors 返回角色引用的全部因子实例（门限在前）
func (r *RoleWithFactorInstances) AllFactors() []HDFactorInstance {
	out := make([]HDFactorInstance, 0, len(r.ThresholdFactors)+len(r.OverrideFactors))
	out = append(out, r.ThresholdFactors...)
	return append(out, r.OverrideFactors...)
}

// SecurityStructure 已加固实体的三角色配置
type SecurityStructure struct {
	Primary      RoleWithFactorInstances `json:"primary"`
	Recovery     RoleWithFactorInstances `json:"recovery"`
	Confirmation RoleWithFactorInstances `json:"confirmation"`
}

// Role 返回指定角色的配置
func (s *SecurityStructure) Role(role RoleKind) *RoleWithFactorInstances {
	switch role {
	case RolePrimary:
		return &s.Primary
	case RoleRecovery:
		return &s.Recovery
	case RoleConfirmation:
		return &s.Confirmation
	default:
		return nil
	}
}

// Entity 账户或身份
//
// Unsecured 与 Securified 二者恰有其一非空。
type Entity struct {
	Address     EntityAddress      `json:"address"`
	DisplayName string             `json:"display_name"`
	Unsecured   *HDFactorInstance  `json:"unsecured,omitempty"`
	Securified  *SecurityStructure `json:"securified,omitempty"`
}

// Validate 校验实体的安全状态
func (e *Entity) Validate() error {
	switch {
	case e.Unsecured != nil && e.Securified != nil:
		return fmt.Errorf("%w: entity %s is both unsecured and securified", ErrInvalidSecurityStructure, e.Address)
	case e.Unsecured == nil && e.Securified == nil:
		return fmt.Errorf("%w: entity %s has no factor instances", ErrInvalidSecurityStructure, e.Address)
	case e.Securified != nil:
		for _, role := range []RoleKind{RolePrimary, RoleRecovery, RoleConfirmation} {
			if err := e.Securified.Role(role).Validate(); err != nil {
				return fmt.Errorf("entity %s: %w", e.Address, err)
			}
		}
	}
	return nil
}

// RoleFactors 返回实体在指定角色下的因子配置
//
// 未加固实体对任意角色都回答"1-of-[唯一实例]"。
func (e *Entity) RoleFactors(role RoleKind) RoleWithFactorInstances {
	if e.Unsecured != nil {
		return RoleWithFactorInstances{
			Role:             role,
			Threshold:        1,
			ThresholdFactors: []HDFactorInstance{*e.Unsecured},
		}
	}
	r := e.Securified.Role(role)
	out := RoleWithFactorInstances{Role: role, Threshold: r.Threshold}
	out.ThresholdFactors = append(out.ThresholdFactors, r.ThresholdFactors...)
	out.OverrideFactors = append(out.OverrideFactors, r.OverrideFactors...)
	return out
}

// IsSecurified 是否已加固
func (e *Entity) IsSecurified() bool {
	return e.Securified != nil
}
