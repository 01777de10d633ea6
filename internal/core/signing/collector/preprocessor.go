package collector

import (
	"fmt"

	"github.com/weisyn/sigcollect/internal/core/signing/petition"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// preprocessor 把输入载荷解析为请愿树与按摩擦排序的因子源分组
type preprocessor struct {
	signables []types.Signable
	profile   signing.EntityResolver
	extractor signing.EntitiesRequiringAuthExtractor
	purpose   Purpose
}

// preprocess 任何错误都在发起签名前返回
func (p *preprocessor) preprocess() ([]FactorSourcesOfKind, *petition.Petitions, error) {
	if len(p.signables) == 0 {
		return nil, nil, ErrNoSignables
	}

	txs := make([]*petition.ForTransaction, 0, len(p.signables))
	seen := make(map[types.PayloadID]bool, len(p.signables))
	for _, signable := range p.signables {
		id := signable.ID()
		if seen[id] {
			continue
		}
		seen[id] = true

		entities, err := p.extractor.EntitiesRequiringAuth(signable, p.profile)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve entities for %s: %w", id, err)
		}
		if len(entities) == 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrNoEntities, id)
		}
		tx, err := petition.NewForTransaction(signable, entities, p.purpose.Roles)
		if err != nil {
			return nil, nil, err
		}
		txs = append(txs, tx)
	}

	petitions := petition.NewPetitions(txs)
	ids := petitions.FactorSourceIDs()
	sources := make([]types.FactorSource, 0, len(ids))
	for _, id := range ids {
		fs, ok := p.profile.FactorSource(id)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownFactorSource, id)
		}
		sources = append(sources, *fs)
	}
	return groupByKind(sources), petitions, nil
}
