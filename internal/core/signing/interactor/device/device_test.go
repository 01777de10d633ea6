package device

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/sigcollect/internal/core/signing/testutil"
	"github.com/weisyn/sigcollect/pkg/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func requestFor(t *testing.T, k *Keyring, indices ...uint32) *types.SignRequest {
	t.Helper()
	owner := testutil.Address("alice")
	payload := testutil.Transaction(7).ID()
	var owned []types.OwnedFactorInstance
	for _, idx := range indices {
		inst, err := k.DeriveInstance(types.NewDerivationPath(testutil.NetworkID, types.EntityKindAccount, idx))
		require.NoError(t, err)
		owned = append(owned, types.OwnedFactorInstance{Owner: owner, Instance: inst})
	}
	return &types.SignRequest{
		FactorSourceKind: types.FactorSourceKindDevice,
		PerFactorSource: []types.PerFactorSourceInput{{
			FactorSourceID: k.FactorSourceID(),
			PerTransaction: []types.TransactionSignRequestInput{{
				PayloadID:      payload,
				FactorSourceID: k.FactorSourceID(),
				OwnedInstances: owned,
			}},
		}},
	}
}

func TestGenerateMnemonic(t *testing.T) {
	m, err := GenerateMnemonic(Mnemonic24Words)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m), 24)
	assert.True(t, ValidateMnemonic(m))

	_, err = GenerateMnemonic(100)
	assert.Error(t, err)
}

func TestKeyring_Deterministic(t *testing.T) {
	a, err := NewKeyring(types.FactorSourceKindDevice, testMnemonic, "")
	require.NoError(t, err)
	b, err := NewKeyring(types.FactorSourceKindDevice, testMnemonic, "")
	require.NoError(t, err)
	withPass, err := NewKeyring(types.FactorSourceKindDevice, testMnemonic, "extra")
	require.NoError(t, err)

	assert.Equal(t, a.FactorSourceID(), b.FactorSourceID())
	assert.NotEqual(t, a.FactorSourceID(), withPass.FactorSourceID())
	assert.Equal(t, types.FactorSourceKindDevice, a.FactorSourceID().Kind)

	path := types.NewDerivationPath(testutil.NetworkID, types.EntityKindAccount, 0)
	ia, err := a.DeriveInstance(path)
	require.NoError(t, err)
	ib, err := b.DeriveInstance(path)
	require.NoError(t, err)
	assert.Equal(t, ia.PublicKey, ib.PublicKey)
	assert.Len(t, ia.PublicKey, 33)

	other, err := a.DeriveInstance(path.WithIndex(1))
	require.NoError(t, err)
	assert.NotEqual(t, ia.PublicKey, other.PublicKey)

	_, err = NewKeyring(types.FactorSourceKindDevice, "not a mnemonic", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestInteractor_SignPoly(t *testing.T) {
	k, err := NewKeyring(types.FactorSourceKindDevice, testMnemonic, "")
	require.NoError(t, err)
	defer k.Close()

	i := NewInteractor(nil, &testutil.MockLogger{}, k)
	req := requestFor(t, k, 0, 1)

	resp, err := i.SignPoly(context.Background(), req)
	require.NoError(t, err)
	outcome := resp.PerFactorSource[k.FactorSourceID()]
	require.NoError(t, outcome.Validate())
	require.Len(t, outcome.Signatures, 2)
	for _, sig := range outcome.Signatures {
		assert.True(t, Verify(sig))
	}

	tampered := outcome.Signatures[0]
	tampered.Input.PayloadID = testutil.Transaction(8).ID()
	assert.False(t, Verify(tampered))
}

func TestInteractor_NeglectPaths(t *testing.T) {
	k, err := NewKeyring(types.FactorSourceKindDevice, testMnemonic, "")
	require.NoError(t, err)

	t.Run("user declines", func(t *testing.T) {
		decline := func(context.Context, types.FactorSourceKind, *types.PerFactorSourceInput) (bool, error) {
			return false, nil
		}
		resp, err := NewInteractor(decline, nil, k).SignPoly(context.Background(), requestFor(t, k, 0))
		require.NoError(t, err)
		assert.Equal(t, types.NeglectUserExplicitlySkipped, *resp.PerFactorSource[k.FactorSourceID()].Neglected)
	})

	t.Run("missing mnemonic", func(t *testing.T) {
		resp, err := NewInteractor(nil, nil).SignPoly(context.Background(), requestFor(t, k, 0))
		require.NoError(t, err)
		assert.Equal(t, types.NeglectFailure, *resp.PerFactorSource[k.FactorSourceID()].Neglected)
	})

	t.Run("public key mismatch", func(t *testing.T) {
		req := requestFor(t, k, 0)
		req.PerFactorSource[0].PerTransaction[0].OwnedInstances[0].Instance.PublicKey = make([]byte, 33)
		outcome, err := NewInteractor(nil, nil, k).SignMono(context.Background(), types.FactorSourceKindDevice, &req.PerFactorSource[0])
		require.NoError(t, err)
		assert.Equal(t, types.NeglectFailure, *outcome.Neglected)
	})

	t.Run("approve error", func(t *testing.T) {
		boom := errors.New("prompt closed")
		failing := func(context.Context, types.FactorSourceKind, *types.PerFactorSourceInput) (bool, error) {
			return false, boom
		}
		_, err := NewInteractor(failing, nil, k).SignPoly(context.Background(), requestFor(t, k, 0))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewInteractor(nil, nil, k).SignPoly(ctx, requestFor(t, k, 0))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
