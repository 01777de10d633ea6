// Package interactor 按因子源类别登记签名交互器
package interactor

import (
	"sync"

	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// Registry 类别到交互器的映射
type Registry struct {
	mu   sync.RWMutex
	poly map[types.FactorSourceKind]signing.PolySignInteractor
	mono map[types.FactorSourceKind]signing.MonoSignInteractor
}

// NewRegistry 创建空的交互器登记表
func NewRegistry() *Registry {
	return &Registry{
		poly: make(map[types.FactorSourceKind]signing.PolySignInteractor),
		mono: make(map[types.FactorSourceKind]signing.MonoSignInteractor),
	}
}

// RegisterPoly 为类别登记 poly 交互器
func (r *Registry) RegisterPoly(kind types.FactorSourceKind, i signing.PolySignInteractor) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poly[kind] = i
	return r
}

// RegisterMono 为类别登记 mono 交互器
func (r *Registry) RegisterMono(kind types.FactorSourceKind, i signing.MonoSignInteractor) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mono[kind] = i
	return r
}

// RegisterAll 为所有类别登记同一交互器（按其实现的形态）
func (r *Registry) RegisterAll(i interface{}) *Registry {
	for _, kind := range types.AllFactorSourceKinds {
		if poly, ok := i.(signing.PolySignInteractor); ok && kind.SupportsPolySign() {
			r.RegisterPoly(kind, poly)
		}
		if mono, ok := i.(signing.MonoSignInteractor); ok {
			r.RegisterMono(kind, mono)
		}
	}
	return r
}

// Kinds 已登记的类别
func (r *Registry) Kinds() []types.FactorSourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []types.FactorSourceKind
	for _, kind := range types.AllFactorSourceKinds {
		if r.poly[kind] != nil || r.mono[kind] != nil {
			out = append(out, kind)
		}
	}
	return out
}

// PolyInteractor 实现 signing.InteractorProvider
func (r *Registry) PolyInteractor(kind types.FactorSourceKind) signing.PolySignInteractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.poly[kind]
}

// MonoInteractor 实现 signing.InteractorProvider
func (r *Registry) MonoInteractor(kind types.FactorSourceKind) signing.MonoSignInteractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mono[kind]
}

var _ signing.InteractorProvider = (*Registry)(nil)
