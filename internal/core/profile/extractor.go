package profile

import (
	"fmt"

	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// ManifestExtractor 按清单摘要解析需要授权的实体
//
// 交易意图与子意图读取清单摘要中的账户与身份；身份证明意图读取待证明实体。
type ManifestExtractor struct{}

// EntitiesRequiringAuth 解析载荷需要授权的实体，未知地址返回 ErrUnknownEntity
func (ManifestExtractor) EntitiesRequiringAuth(signable types.Signable, profile signing.EntityResolver) ([]*types.Entity, error) {
	var addresses []types.EntityAddress
	switch s := signable.(type) {
	case *types.TransactionIntent:
		addresses = summaryAddresses(s.Manifest.Summary)
	case *types.Subintent:
		addresses = summaryAddresses(s.Manifest.Summary)
	case *types.AuthIntent:
		addresses = s.EntitiesToSign
	default:
		return nil, fmt.Errorf("unsupported signable %T", signable)
	}

	seen := make(map[types.EntityAddress]bool, len(addresses))
	out := make([]*types.Entity, 0, len(addresses))
	for _, addr := range addresses {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		e, ok := profile.Entity(addr)
		if !ok {
			return nil, fmt.Errorf("%w: %s", signing.ErrUnknownEntity, addr)
		}
		out = append(out, e)
	}
	return out, nil
}

func summaryAddresses(summary types.ManifestSummary) []types.EntityAddress {
	out := make([]types.EntityAddress, 0, len(summary.AccountsRequiringAuth)+len(summary.PersonasRequiringAuth))
	out = append(out, summary.AccountsRequiringAuth...)
	return append(out, summary.PersonasRequiringAuth...)
}

var _ signing.EntitiesRequiringAuthExtractor = ManifestExtractor{}
