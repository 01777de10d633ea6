package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weisyn/sigcollect/internal/core/profile"
	"github.com/weisyn/sigcollect/internal/core/signing/interactor/simulated"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/types"
)

// defaultNetworkID 场景未指定网络时使用
const defaultNetworkID uint32 = 2

// Scenario YAML 场景文件
type Scenario struct {
	Name          string             `yaml:"name"`
	NetworkID     uint32             `yaml:"network_id"`
	Roles         []string           `yaml:"roles"`
	FactorSources []FactorSourceSpec `yaml:"factor_sources"`
	Entities      []EntitySpec       `yaml:"entities"`
	Signables     []SignableSpec     `yaml:"signables"`
	FinishEarly   *FinishEarlySpec   `yaml:"finish_early"`
}

// FinishEarlySpec 场景内的提前结束覆盖
type FinishEarlySpec struct {
	WhenAllValid    *bool `yaml:"when_all_valid"`
	WhenSomeInvalid *bool `yaml:"when_some_invalid"`
}

// FactorSourceSpec 因子源及模拟用户对它的决定
type FactorSourceSpec struct {
	Label    string `yaml:"label"`
	Kind     string `yaml:"kind"`
	Decision string `yaml:"decision"`  // sign | skip | fail | simulate | error
	LastUsed string `yaml:"last_used"` // 2006-01-02，可选
}

// InstanceSpec 因子实例引用
type InstanceSpec struct {
	FactorSource string `yaml:"factor_source"`
	Index        uint32 `yaml:"index"`
}

// RoleSpec 角色配置
type RoleSpec struct {
	Threshold        uint8          `yaml:"threshold"`
	ThresholdFactors []InstanceSpec `yaml:"threshold_factors"`
	OverrideFactors  []InstanceSpec `yaml:"override_factors"`
}

// SecurifiedSpec 三角色配置；未给出的角色沿用 primary
type SecurifiedSpec struct {
	Primary      RoleSpec  `yaml:"primary"`
	Recovery     *RoleSpec `yaml:"recovery"`
	Confirmation *RoleSpec `yaml:"confirmation"`
}

// EntitySpec 账户或身份
type EntitySpec struct {
	Name       string          `yaml:"name"`
	Persona    bool            `yaml:"persona"`
	Unsecured  *InstanceSpec   `yaml:"unsecured"`
	Securified *SecurifiedSpec `yaml:"securified"`
}

// SignableSpec 可签名载荷
type SignableSpec struct {
	Kind     string   `yaml:"kind"` // transaction | subintent | auth
	Nonce    uint32   `yaml:"nonce"`
	Message  string   `yaml:"message"`
	Entities []string `yaml:"entities"`
}

// builtScenario 由场景构建出的运行输入
type builtScenario struct {
	Profile   *profile.Profile
	Signables []types.Signable
	User      simulated.User
	Roles     []types.RoleKind
	Labels    map[types.FactorSourceID]string
	Names     map[types.EntityAddress]string
}

// LoadScenario 读取并解析场景文件
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取场景文件失败: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario 解析场景内容，未知字段视为错误
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("解析场景文件失败: %w", err)
	}
	if s.NetworkID == 0 {
		s.NetworkID = defaultNetworkID
	}
	if len(s.Signables) == 0 {
		return nil, errors.New("场景没有任何可签名载荷")
	}
	return &s, nil
}

// factorSourceID 由标签与类别确定性派生
func factorSourceID(kind types.FactorSourceKind, label string) types.FactorSourceID {
	return types.NewFactorSourceID(kind, types.HashOf([]byte("sigsim/factor-source"), []byte(label)))
}

// Build 构建档案、载荷与模拟用户
func (s *Scenario) Build(logger log.Logger) (*builtScenario, error) {
	b := &builtScenario{
		Profile: profile.New(logger),
		User:    simulated.Prudent(),
		Labels:  make(map[types.FactorSourceID]string),
		Names:   make(map[types.EntityAddress]string),
	}

	sources := make(map[string]types.FactorSource, len(s.FactorSources))
	for _, spec := range s.FactorSources {
		fs, decision, err := spec.build()
		if err != nil {
			return nil, err
		}
		if _, dup := sources[spec.Label]; dup {
			return nil, fmt.Errorf("重复的因子源标签: %s", spec.Label)
		}
		sources[spec.Label] = fs
		b.Labels[fs.ID] = spec.Label
		b.Profile.AddFactorSource(fs)
		b.User = b.User.With(decision, fs.ID)
	}

	entities := make(map[string]*types.Entity, len(s.Entities))
	for _, spec := range s.Entities {
		e, err := spec.build(s.NetworkID, sources)
		if err != nil {
			return nil, err
		}
		if err := b.Profile.AddEntity(e); err != nil {
			return nil, err
		}
		entities[spec.Name] = e
		b.Names[e.Address] = spec.Name
	}

	for i, spec := range s.Signables {
		signable, err := spec.build(s.NetworkID, entities)
		if err != nil {
			return nil, fmt.Errorf("signables[%d]: %w", i, err)
		}
		b.Signables = append(b.Signables, signable)
	}

	for _, name := range s.Roles {
		role, err := types.ParseRoleKind(name)
		if err != nil {
			return nil, err
		}
		b.Roles = append(b.Roles, role)
	}
	return b, nil
}

func (spec FactorSourceSpec) build() (types.FactorSource, simulated.Decision, error) {
	if spec.Label == "" {
		return types.FactorSource{}, 0, errors.New("因子源缺少 label")
	}
	kind, err := types.ParseFactorSourceKind(spec.Kind)
	if err != nil {
		return types.FactorSource{}, 0, fmt.Errorf("因子源 %s: %w", spec.Label, err)
	}
	decision, err := simulated.ParseDecision(spec.Decision)
	if err != nil {
		return types.FactorSource{}, 0, fmt.Errorf("因子源 %s: %w", spec.Label, err)
	}
	fs := types.FactorSource{ID: factorSourceID(kind, spec.Label), Label: spec.Label}
	if spec.LastUsed != "" {
		fs.LastUsedOn, err = time.Parse(time.DateOnly, spec.LastUsed)
		if err != nil {
			return types.FactorSource{}, 0, fmt.Errorf("因子源 %s last_used: %w", spec.Label, err)
		}
	}
	return fs, decision, nil
}

func (spec InstanceSpec) build(network uint32, entityKind types.EntityKind, sources map[string]types.FactorSource) (types.HDFactorInstance, error) {
	fs, ok := sources[spec.FactorSource]
	if !ok {
		return types.HDFactorInstance{}, fmt.Errorf("未知因子源: %s", spec.FactorSource)
	}
	instance := types.HDFactorInstance{
		FactorSourceID: fs.ID,
		DerivationPath: types.NewDerivationPath(network, entityKind, spec.Index),
	}
	instance.PublicKey = simulated.PublicKeyFor(instance)
	return instance, nil
}

func (spec RoleSpec) build(role types.RoleKind, network uint32, entityKind types.EntityKind, sources map[string]types.FactorSource) (types.RoleWithFactorInstances, error) {
	out := types.RoleWithFactorInstances{Role: role, Threshold: spec.Threshold}
	for _, ref := range spec.ThresholdFactors {
		inst, err := ref.build(network, entityKind, sources)
		if err != nil {
			return out, err
		}
		out.ThresholdFactors = append(out.ThresholdFactors, inst)
	}
	for _, ref := range spec.OverrideFactors {
		inst, err := ref.build(network, entityKind, sources)
		if err != nil {
			return out, err
		}
		out.OverrideFactors = append(out.OverrideFactors, inst)
	}
	return out, nil
}

func (spec EntitySpec) build(network uint32, sources map[string]types.FactorSource) (*types.Entity, error) {
	kind := types.EntityKindAccount
	if spec.Persona {
		kind = types.EntityKindPersona
	}
	e := &types.Entity{
		Address:     types.NewEntityAddress(kind, network, []byte("sigsim/"+spec.Name)),
		DisplayName: spec.Name,
	}

	switch {
	case spec.Unsecured != nil && spec.Securified != nil:
		return nil, fmt.Errorf("实体 %s 不能同时为 unsecured 与 securified", spec.Name)
	case spec.Unsecured != nil:
		inst, err := spec.Unsecured.build(network, kind, sources)
		if err != nil {
			return nil, fmt.Errorf("实体 %s: %w", spec.Name, err)
		}
		e.Unsecured = &inst
	case spec.Securified != nil:
		recovery, confirmation := spec.Securified.Primary, spec.Securified.Primary
		if spec.Securified.Recovery != nil {
			recovery = *spec.Securified.Recovery
		}
		if spec.Securified.Confirmation != nil {
			confirmation = *spec.Securified.Confirmation
		}
		structure := &types.SecurityStructure{}
		for role, roleSpec := range map[types.RoleKind]RoleSpec{
			types.RolePrimary:      spec.Securified.Primary,
			types.RoleRecovery:     recovery,
			types.RoleConfirmation: confirmation,
		} {
			built, err := roleSpec.build(role, network, kind, sources)
			if err != nil {
				return nil, fmt.Errorf("实体 %s: %w", spec.Name, err)
			}
			*structure.Role(role) = built
		}
		e.Securified = structure
	default:
		return nil, fmt.Errorf("实体 %s 缺少 unsecured 或 securified", spec.Name)
	}
	return e, nil
}

func (spec SignableSpec) build(network uint32, entities map[string]*types.Entity) (types.Signable, error) {
	var summary types.ManifestSummary
	var addresses []types.EntityAddress
	for _, name := range spec.Entities {
		e, ok := entities[name]
		if !ok {
			return nil, fmt.Errorf("未知实体: %s", name)
		}
		addresses = append(addresses, e.Address)
		if e.Address.Kind == types.EntityKindPersona {
			summary.PersonasRequiringAuth = append(summary.PersonasRequiringAuth, e.Address)
		} else {
			summary.AccountsRequiringAuth = append(summary.AccountsRequiringAuth, e.Address)
		}
	}
	manifest := types.Manifest{Instructions: spec.Message, Summary: summary}

	switch strings.ToLower(spec.Kind) {
	case "", "transaction":
		return &types.TransactionIntent{
			NetworkID:  network,
			StartEpoch: 1,
			EndEpoch:   11,
			Nonce:      spec.Nonce,
			Message:    spec.Message,
			Manifest:   manifest,
		}, nil
	case "subintent":
		return &types.Subintent{
			NetworkID: network,
			Nonce:     spec.Nonce,
			ExpiresAt: time.Unix(1_900_000_000, 0).UTC(),
			Message:   spec.Message,
			Manifest:  manifest,
		}, nil
	case "auth":
		challenge := types.HashOf([]byte("sigsim/challenge"), []byte(spec.Message))
		return &types.AuthIntent{
			NetworkID:      network,
			Challenge:      challenge,
			Origin:         "https://sigsim.local",
			DappDefinition: "sigsim",
			EntitiesToSign: addresses,
		}, nil
	default:
		return nil, fmt.Errorf("未知载荷类别: %s", spec.Kind)
	}
}
