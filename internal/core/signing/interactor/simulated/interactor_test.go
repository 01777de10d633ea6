package simulated

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/sigcollect/internal/core/signing/testutil"
	"github.com/weisyn/sigcollect/pkg/types"
)

func requestFor(kind types.FactorSourceKind, sources ...types.FactorSource) *types.SignRequest {
	alice := testutil.Address("alice")
	payload := testutil.Transaction(1).ID()
	req := &types.SignRequest{FactorSourceKind: kind}
	for _, fs := range sources {
		req.PerFactorSource = append(req.PerFactorSource, types.PerFactorSourceInput{
			FactorSourceID: fs.ID,
			PerTransaction: []types.TransactionSignRequestInput{{
				PayloadID:      payload,
				FactorSourceID: fs.ID,
				OwnedInstances: []types.OwnedFactorInstance{{Owner: alice, Instance: testutil.Instance(fs, 0)}},
			}},
		})
	}
	return req
}

func TestInteractor_Decisions(t *testing.T) {
	phone := testutil.FactorSource(types.FactorSourceKindDevice, "phone")
	tablet := testutil.FactorSource(types.FactorSourceKindDevice, "tablet")
	laptop := testutil.FactorSource(types.FactorSourceKindDevice, "laptop")
	req := requestFor(types.FactorSourceKindDevice, phone, tablet, laptop)

	user := Prudent().Skipping(tablet.ID).Failing(laptop.ID)
	i := New(user, &testutil.MockLogger{})

	resp, err := i.SignPoly(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.PerFactorSource, 3)

	signed := resp.PerFactorSource[phone.ID]
	require.False(t, signed.IsNeglected())
	require.Len(t, signed.Signatures, 1)
	assert.True(t, Verify(signed.Signatures[0]))

	assert.Equal(t, types.NeglectUserExplicitlySkipped, *resp.PerFactorSource[tablet.ID].Neglected)
	assert.Equal(t, types.NeglectFailure, *resp.PerFactorSource[laptop.ID].Neglected)

	calls := i.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "poly", calls[0].Mode)
	assert.Equal(t, 1, i.CallsForKind(types.FactorSourceKindDevice))
}

func TestInteractor_ErrorAndCancellation(t *testing.T) {
	nano := testutil.FactorSource(types.FactorSourceKindLedgerHardwareWallet, "nano")
	req := requestFor(types.FactorSourceKindLedgerHardwareWallet, nano)

	i := New(Prudent().Erroring(nano.ID), nil)
	_, err := i.SignMono(context.Background(), req.FactorSourceKind, &req.PerFactorSource[0])
	assert.ErrorIs(t, err, ErrSimulatedInteractor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Prudent(), nil).SignPoly(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInteractor_SimulationUser(t *testing.T) {
	phone := testutil.FactorSource(types.FactorSourceKindDevice, "phone")
	req := requestFor(types.FactorSourceKindDevice, phone)

	outcome, err := New(SimulationUser(), nil).SignMono(context.Background(), req.FactorSourceKind, &req.PerFactorSource[0])
	require.NoError(t, err)
	require.True(t, outcome.IsNeglected())
	assert.Equal(t, types.NeglectSimulation, *outcome.Neglected)
}

func TestProvider_KindSelection(t *testing.T) {
	p := NewProvider(Lazy(), nil)
	assert.NotNil(t, p.PolyInteractor(types.FactorSourceKindDevice))
	assert.Nil(t, p.PolyInteractor(types.FactorSourceKindLedgerHardwareWallet))
	assert.NotNil(t, p.MonoInteractor(types.FactorSourceKindLedgerHardwareWallet))

	p.MonoOnly = true
	assert.Nil(t, p.PolyInteractor(types.FactorSourceKindDevice))
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in   string
		want Decision
		err  bool
	}{
		{in: "sign", want: DecisionSign},
		{in: "", want: DecisionSign},
		{in: "SKIP", want: DecisionSkip},
		{in: "fail", want: DecisionFail},
		{in: "simulate", want: DecisionSimulate},
		{in: "error", want: DecisionError},
		{in: "maybe", err: true},
	}
	for _, tt := range tests {
		got, err := ParseDecision(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got.String(), tt.want.String())
	}
}
