// Package profile 提供内存中的档案快照
//
// 档案保存账户/身份及其安全结构，以及因子源元数据。
// 签名收集只读取档案；一次收集期间档案内容视为不可变。
package profile

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// Snapshot 档案的可序列化形式
type Snapshot struct {
	FactorSources []types.FactorSource `json:"factor_sources" yaml:"factor_sources"`
	Entities      []types.Entity       `json:"entities" yaml:"entities"`
}

// Profile 内存档案
type Profile struct {
	mu            sync.RWMutex
	entities      map[types.EntityAddress]*types.Entity
	factorSources map[types.FactorSourceID]*types.FactorSource
	logger        log.Logger
}

// New 创建空档案
func New(logger log.Logger) *Profile {
	return &Profile{
		entities:      make(map[types.EntityAddress]*types.Entity),
		factorSources: make(map[types.FactorSourceID]*types.FactorSource),
		logger:        logger,
	}
}

// FromSnapshot 由快照构建档案，实体引用的因子源必须存在
func FromSnapshot(s Snapshot, logger log.Logger) (*Profile, error) {
	p := New(logger)
	for _, fs := range s.FactorSources {
		p.AddFactorSource(fs)
	}
	for i := range s.Entities {
		e := s.Entities[i]
		if err := p.AddEntity(&e); err != nil {
			return nil, err
		}
		for _, inst := range instancesOf(&e) {
			if _, ok := p.FactorSource(inst.FactorSourceID); !ok {
				return nil, fmt.Errorf("entity %s: %w: %s", e.Address, signing.ErrUnknownFactorSource, inst.FactorSourceID)
			}
		}
	}
	return p, nil
}

func instancesOf(e *types.Entity) []types.HDFactorInstance {
	if e.Unsecured != nil {
		return []types.HDFactorInstance{*e.Unsecured}
	}
	if e.Securified == nil {
		return nil
	}
	var out []types.HDFactorInstance
	for _, role := range []types.RoleKind{types.RolePrimary, types.RoleRecovery, types.RoleConfirmation} {
		out = append(out, e.Securified.Role(role).AllFactors()...)
	}
	return out
}

// AddFactorSource 添加或替换因子源
func (p *Profile) AddFactorSource(fs types.FactorSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := fs
	p.factorSources[fs.ID] = &stored
	if p.logger != nil {
		p.logger.Debugf("添加因子源: %s (%s)", fs.ID, fs.Label)
	}
}

// AddEntity 添加或替换实体，安全结构不合法时拒绝
func (p *Profile) AddEntity(e *types.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := *e
	p.entities[e.Address] = &stored
	if p.logger != nil {
		p.logger.Debugf("添加实体: %s securified=%t", e.Address, e.IsSecurified())
	}
	return nil
}

// Entity 按地址查找实体
func (p *Profile) Entity(address types.EntityAddress) (*types.Entity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entities[address]
	return e, ok
}

// FactorSource 按ID查找因子源
func (p *Profile) FactorSource(id types.FactorSourceID) (*types.FactorSource, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fs, ok := p.factorSources[id]
	if !ok {
		return nil, false
	}
	out := *fs
	return &out, true
}

// Entities 全部实体（按地址排序）
func (p *Profile) Entities() []*types.Entity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.Entity, 0, len(p.entities))
	for _, e := range p.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *types.Entity) int { return a.Address.Compare(b.Address) })
	return out
}

// FactorSources 全部因子源（按ID排序）
func (p *Profile) FactorSources() []types.FactorSource {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]types.FactorSource, 0, len(p.factorSources))
	for _, fs := range p.factorSources {
		out = append(out, *fs)
	}
	slices.SortFunc(out, func(a, b types.FactorSource) int { return a.ID.Compare(b.ID) })
	return out
}

// TouchFactorSources 更新因子源的最近使用时间
func (p *Profile) TouchFactorSources(ids []types.FactorSourceID, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		if fs, ok := p.factorSources[id]; ok {
			fs.LastUsedOn = at
		}
	}
}

var _ signing.EntityResolver = (*Profile)(nil)
