package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/sigcollect/internal/core/profile"
	"github.com/weisyn/sigcollect/internal/core/signing/interactor/simulated"
	"github.com/weisyn/sigcollect/internal/core/signing/testutil"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

var (
	device  = testutil.FactorSource(types.FactorSourceKindDevice, "phone")
	ledger  = testutil.FactorSource(types.FactorSourceKindLedgerHardwareWallet, "nano")
	arculus = testutil.FactorSource(types.FactorSourceKindArculusCard, "card")
)

// newProfile 构造包含给定因子源与实体的档案
func newProfile(t *testing.T, sources []types.FactorSource, entities ...*types.Entity) *profile.Profile {
	t.Helper()
	p := profile.New(&testutil.MockLogger{})
	for _, fs := range sources {
		p.AddFactorSource(fs)
	}
	for _, e := range entities {
		require.NoError(t, p.AddEntity(e))
	}
	return p
}

func newCollector(t *testing.T, p *profile.Profile, provider signing.InteractorProvider, opts Options, signables ...types.Signable) *SignaturesCollector {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = &testutil.MockLogger{}
	}
	c, err := New(signables, p, provider, opts)
	require.NoError(t, err)
	return c
}

func TestSign_SingleDeviceFactor(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	p := newProfile(t, []types.FactorSource{device}, alice)
	provider := simulated.NewProvider(simulated.Prudent(), nil)
	tx := testutil.Transaction(1, alice)

	outcome, err := newCollector(t, p, provider, DefaultOptions(), tx).Sign(context.Background())
	require.NoError(t, err)

	require.Len(t, outcome.Successful, 1)
	assert.Empty(t, outcome.Failed)
	assert.Empty(t, outcome.NeglectedFactors)
	assert.Equal(t, tx.ID(), outcome.Successful[0].PayloadID)
	require.Len(t, outcome.AllSignatures, 1)
	assert.Equal(t, alice.Address, outcome.AllSignatures[0].Owner())
	assert.True(t, simulated.Verify(outcome.AllSignatures[0]))
	assert.Equal(t, 1, provider.Interactor.CallsForKind(types.FactorSourceKindDevice))
}

func TestSign_ThresholdWithSkippedLedger(t *testing.T) {
	alice := testutil.SecurifiedAccount("alice", 2, []types.HDFactorInstance{
		testutil.Instance(device, 0),
		testutil.Instance(ledger, 0),
	}, nil)
	p := newProfile(t, []types.FactorSource{device, ledger}, alice)
	provider := simulated.NewProvider(simulated.Prudent().Skipping(ledger.ID), nil)
	tx := testutil.Transaction(1, alice)

	outcome, err := newCollector(t, p, provider, DefaultOptions(), tx).Sign(context.Background())
	require.NoError(t, err)

	assert.Empty(t, outcome.Successful)
	failure, ok := outcome.FailureFor(tx.ID())
	require.True(t, ok)
	assert.Equal(t, []types.EntityAddress{alice.Address}, failure.EntitiesWhichWouldFailAuth)

	reason, ok := outcome.NeglectReason(ledger.ID)
	require.True(t, ok)
	assert.Equal(t, types.NeglectUserExplicitlySkipped, reason)

	// 唯一载荷已失败，设备因子源不再被询问
	reason, ok = outcome.NeglectReason(device.ID)
	require.True(t, ok)
	assert.Equal(t, types.NeglectIrrelevant, reason)
	assert.Zero(t, provider.Interactor.CallsForKind(types.FactorSourceKindDevice))
	assert.Empty(t, outcome.AllSignatures)
}

func TestSign_SharedFactorSourceSingleDispatch(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	bob := testutil.UnsecuredAccount("bob", device, 1)
	p := newProfile(t, []types.FactorSource{device}, alice, bob)
	provider := simulated.NewProvider(simulated.Prudent(), nil)
	tx1 := testutil.Transaction(1, alice)
	tx2 := testutil.Transaction(2, bob)

	outcome, err := newCollector(t, p, provider, DefaultOptions(), tx1, tx2).Sign(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.PayloadID{tx1.ID(), tx2.ID()}, outcome.SuccessfulPayloadIDs())
	assert.Len(t, outcome.AllSignatures, 2)

	calls := provider.Interactor.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "poly", calls[0].Mode)
	assert.Equal(t, []types.FactorSourceID{device.ID}, calls[0].FactorSources)
}

func TestSign_FrictionOrder(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	bob := testutil.UnsecuredAccount("bob", ledger, 0)
	carol := testutil.UnsecuredAccount("carol", arculus, 0)
	p := newProfile(t, []types.FactorSource{device, ledger, arculus}, alice, bob, carol)
	provider := simulated.NewProvider(simulated.Prudent(), nil)

	c := newCollector(t, p, provider, DefaultOptions(), testutil.Transaction(1, alice, bob, carol))
	assert.Equal(t, []types.FactorSourceKind{
		types.FactorSourceKindLedgerHardwareWallet,
		types.FactorSourceKindArculusCard,
		types.FactorSourceKindDevice,
	}, c.KindOrder())

	outcome, err := c.Sign(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.AllSuccessful())

	calls := provider.Interactor.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, types.FactorSourceKindLedgerHardwareWallet, calls[0].Kind)
	assert.Equal(t, "mono", calls[0].Mode)
	assert.Equal(t, types.FactorSourceKindArculusCard, calls[1].Kind)
	assert.Equal(t, types.FactorSourceKindDevice, calls[2].Kind)
	assert.Equal(t, "poly", calls[2].Mode)
}

func TestSign_FinishEarly(t *testing.T) {
	newAlice := func() *types.Entity {
		return testutil.SecurifiedAccount("alice", 1, []types.HDFactorInstance{
			testutil.Instance(device, 0),
			testutil.Instance(ledger, 0),
		}, nil)
	}

	tests := []struct {
		name            string
		finishEarly     FinishEarlyStrategy
		wantDeviceCalls int
		wantSignatures  int
	}{
		{
			name:            "stops once all payloads are valid",
			finishEarly:     FinishEarlyStrategy{WhenAllTransactionsAreValid: true},
			wantDeviceCalls: 0,
			wantSignatures:  1,
		},
		{
			name:            "keeps collecting on finished payloads",
			finishEarly:     FinishEarlyStrategy{},
			wantDeviceCalls: 1,
			wantSignatures:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := newAlice()
			p := newProfile(t, []types.FactorSource{device, ledger}, alice)
			provider := simulated.NewProvider(simulated.Prudent(), nil)
			opts := DefaultOptions()
			opts.FinishEarly = tt.finishEarly

			outcome, err := newCollector(t, p, provider, opts, testutil.Transaction(1, alice)).Sign(context.Background())
			require.NoError(t, err)

			assert.True(t, outcome.AllSuccessful())
			assert.Equal(t, 1, provider.Interactor.CallsForKind(types.FactorSourceKindLedgerHardwareWallet))
			assert.Equal(t, tt.wantDeviceCalls, provider.Interactor.CallsForKind(types.FactorSourceKindDevice))
			assert.Len(t, outcome.AllSignatures, tt.wantSignatures)
			assert.Empty(t, outcome.NeglectedFactors)
		})
	}
}

func TestSign_FinishEarlyWhenSomeTransactionIsInvalid(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", ledger, 0)
	bob := testutil.UnsecuredAccount("bob", device, 0)
	p := newProfile(t, []types.FactorSource{device, ledger}, alice, bob)
	provider := simulated.NewProvider(simulated.Prudent().Skipping(ledger.ID), nil)
	tx1 := testutil.Transaction(1, alice)
	tx2 := testutil.Transaction(2, bob)

	opts := DefaultOptions()
	opts.FinishEarly = FinishEarlyStrategy{WhenSomeTransactionIsInvalid: true}
	outcome, err := newCollector(t, p, provider, opts, tx1, tx2).Sign(context.Background())
	require.NoError(t, err)

	assert.Zero(t, provider.Interactor.CallsForKind(types.FactorSourceKindDevice))
	assert.Empty(t, outcome.Successful)
	assert.ElementsMatch(t, []types.PayloadID{tx1.ID(), tx2.ID()}, outcome.FailedPayloadIDs())

	// 未处理的载荷列出尚未满足的实体
	failure, ok := outcome.FailureFor(tx2.ID())
	require.True(t, ok)
	assert.Equal(t, []types.EntityAddress{bob.Address}, failure.EntitiesWhichWouldFailAuth)
	assert.Equal(t, []types.FactorSourceID{ledger.ID}, outcome.NeglectedFactorSourceIDs())
}

func TestSign_NeglectAppliesToEveryPayload(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	bob := testutil.UnsecuredAccount("bob", device, 1)
	carol := testutil.UnsecuredAccount("carol", ledger, 0)
	p := newProfile(t, []types.FactorSource{device, ledger}, alice, bob, carol)
	provider := simulated.NewProvider(simulated.Prudent().Failing(device.ID), nil)
	tx1 := testutil.Transaction(1, alice)
	tx2 := testutil.Transaction(2, bob, carol)
	tx3 := testutil.Transaction(3, carol)

	outcome, err := newCollector(t, p, provider, DefaultOptions(), tx1, tx2, tx3).Sign(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.PayloadID{tx3.ID()}, outcome.SuccessfulPayloadIDs())
	assert.ElementsMatch(t, []types.PayloadID{tx1.ID(), tx2.ID()}, outcome.FailedPayloadIDs())

	failure, ok := outcome.FailureFor(tx2.ID())
	require.True(t, ok)
	assert.Equal(t, []types.EntityAddress{bob.Address}, failure.EntitiesWhichWouldFailAuth)

	// 失败载荷上已产出的签名仍然保留
	assert.Len(t, outcome.AllSignatures, 2)
	reason, ok := outcome.NeglectReason(device.ID)
	require.True(t, ok)
	assert.Equal(t, types.NeglectFailure, reason)
}

func TestSign_OutcomeCoversEveryPayloadOnce(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	bob := testutil.UnsecuredAccount("bob", ledger, 0)
	p := newProfile(t, []types.FactorSource{device, ledger}, alice, bob)
	provider := simulated.NewProvider(simulated.Prudent().Skipping(ledger.ID), nil)
	tx1 := testutil.Transaction(1, alice)
	tx2 := testutil.Transaction(2, bob)
	tx3 := testutil.Transaction(3, alice, bob)

	outcome, err := newCollector(t, p, provider, DefaultOptions(), tx1, tx2, tx3, tx1).Sign(context.Background())
	require.NoError(t, err)

	seen := make(map[types.PayloadID]int)
	for _, id := range outcome.SuccessfulPayloadIDs() {
		seen[id]++
	}
	for _, id := range outcome.FailedPayloadIDs() {
		seen[id]++
	}
	assert.Equal(t, map[types.PayloadID]int{tx1.ID(): 1, tx2.ID(): 1, tx3.ID(): 1}, seen)
	assert.Equal(t, []types.PayloadID{tx1.ID()}, outcome.SuccessfulPayloadIDs())
}

func TestSign_InteractorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source types.FactorSource
	}{
		{name: "poly interactor error", source: device},
		{name: "mono interactor error", source: ledger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := testutil.UnsecuredAccount("alice", tt.source, 0)
			p := newProfile(t, []types.FactorSource{tt.source}, alice)
			logger := &testutil.RecordingLogger{}
			provider := simulated.NewProvider(simulated.Prudent().Erroring(tt.source.ID), nil)

			opts := DefaultOptions()
			opts.Logger = logger
			outcome, err := newCollector(t, p, provider, opts, testutil.Transaction(1, alice)).Sign(context.Background())
			require.NoError(t, err)

			assert.Len(t, outcome.Failed, 1)
			reason, ok := outcome.NeglectReason(tt.source.ID)
			require.True(t, ok)
			assert.Equal(t, types.NeglectFailure, reason)
			assert.NotEmpty(t, logger.Logs())
		})
	}
}

func TestSign_SimulationUser(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	p := newProfile(t, []types.FactorSource{device}, alice)
	provider := simulated.NewProvider(simulated.SimulationUser(), nil)

	outcome, err := newCollector(t, p, provider, DefaultOptions(), testutil.Transaction(1, alice)).Sign(context.Background())
	require.NoError(t, err)

	assert.Empty(t, outcome.Successful)
	assert.Empty(t, outcome.AllSignatures)
	reason, ok := outcome.NeglectReason(device.ID)
	require.True(t, ok)
	assert.Equal(t, types.NeglectSimulation, reason)
}

func TestSign_MonoOnlyProvider(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	p := newProfile(t, []types.FactorSource{device}, alice)
	provider := simulated.NewProvider(simulated.Prudent(), nil)
	provider.MonoOnly = true

	outcome, err := newCollector(t, p, provider, DefaultOptions(), testutil.Transaction(1, alice)).Sign(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.AllSuccessful())
	assert.Equal(t, "mono", provider.Interactor.Calls()[0].Mode)
}

func TestSign_ContextCancelled(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	p := newProfile(t, []types.FactorSource{device}, alice)
	provider := simulated.NewProvider(simulated.Prudent(), nil)
	c := newCollector(t, p, provider, DefaultOptions(), testutil.Transaction(1, alice))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Sign(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSign_AlreadyUsed(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	p := newProfile(t, []types.FactorSource{device}, alice)
	c := newCollector(t, p, simulated.NewProvider(simulated.Prudent(), nil), DefaultOptions(), testutil.Transaction(1, alice))

	_, err := c.Sign(context.Background())
	require.NoError(t, err)
	_, err = c.Sign(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestSign_RecoveryPurpose(t *testing.T) {
	alice := testutil.SecurifiedAccount("alice", 1, []types.HDFactorInstance{testutil.Instance(ledger, 0)}, nil)
	alice.Securified.Recovery = types.RoleWithFactorInstances{
		Role:            types.RoleRecovery,
		OverrideFactors: []types.HDFactorInstance{testutil.Instance(device, 5)},
	}
	alice.Securified.Confirmation = types.RoleWithFactorInstances{
		Role:            types.RoleConfirmation,
		OverrideFactors: []types.HDFactorInstance{testutil.Instance(device, 6)},
	}
	p := newProfile(t, []types.FactorSource{device, ledger}, alice)
	provider := simulated.NewProvider(simulated.Prudent(), nil)

	opts := DefaultOptions()
	opts.Purpose = PurposeRecovery()
	c := newCollector(t, p, provider, opts, testutil.Transaction(1, alice))
	assert.Equal(t, []types.FactorSourceKind{types.FactorSourceKindDevice}, c.KindOrder())

	outcome, err := c.Sign(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.AllSuccessful())
	assert.Len(t, outcome.AllSignatures, 2)
	assert.Zero(t, provider.Interactor.CallsForKind(types.FactorSourceKindLedgerHardwareWallet))
}

func TestNew_SetupErrors(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	stranger := testutil.UnsecuredAccount("stranger", device, 9)

	tests := []struct {
		name      string
		signables []types.Signable
		profile   func(t *testing.T) *profile.Profile
		provider  signing.InteractorProvider
		wantErr   error
	}{
		{
			name:     "no signables",
			profile:  func(t *testing.T) *profile.Profile { return newProfile(t, []types.FactorSource{device}, alice) },
			provider: simulated.NewProvider(simulated.Prudent(), nil),
			wantErr:  ErrNoSignables,
		},
		{
			name:      "unknown entity",
			signables: []types.Signable{testutil.Transaction(1, stranger)},
			profile:   func(t *testing.T) *profile.Profile { return newProfile(t, []types.FactorSource{device}, alice) },
			provider:  simulated.NewProvider(simulated.Prudent(), nil),
			wantErr:   ErrUnknownEntity,
		},
		{
			name:      "no entities requiring auth",
			signables: []types.Signable{testutil.Transaction(1)},
			profile:   func(t *testing.T) *profile.Profile { return newProfile(t, []types.FactorSource{device}, alice) },
			provider:  simulated.NewProvider(simulated.Prudent(), nil),
			wantErr:   ErrNoEntities,
		},
		{
			name:      "unknown factor source",
			signables: []types.Signable{testutil.Transaction(1, alice)},
			profile:   func(t *testing.T) *profile.Profile { return newProfile(t, nil, alice) },
			provider:  simulated.NewProvider(simulated.Prudent(), nil),
			wantErr:   ErrUnknownFactorSource,
		},
		{
			name:      "no interactor for kind",
			signables: []types.Signable{testutil.Transaction(1, alice)},
			profile:   func(t *testing.T) *profile.Profile { return newProfile(t, []types.FactorSource{device}, alice) },
			provider:  &funcProvider{},
			wantErr:   ErrNoInteractor,
		},
		{
			name:      "nil provider",
			signables: []types.Signable{testutil.Transaction(1, alice)},
			profile:   func(t *testing.T) *profile.Profile { return newProfile(t, []types.FactorSource{device}, alice) },
			wantErr:   ErrNoInteractor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.signables, tt.profile(t), tt.provider, DefaultOptions())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := New([]types.Signable{testutil.Transaction(1, alice)}, nil, simulated.NewProvider(simulated.Prudent(), nil), DefaultOptions())
	assert.Error(t, err)
}

// funcProvider 以函数字段提供 poly 交互器
type funcProvider struct {
	signPoly func(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error)
}

func (p *funcProvider) SignPoly(ctx context.Context, request *types.SignRequest) (*types.SignResponse, error) {
	return p.signPoly(ctx, request)
}

func (p *funcProvider) PolyInteractor(types.FactorSourceKind) signing.PolySignInteractor {
	if p.signPoly == nil {
		return nil
	}
	return p
}

func (p *funcProvider) MonoInteractor(types.FactorSourceKind) signing.MonoSignInteractor {
	return nil
}

func TestSign_InvariantViolations(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	bob := testutil.UnsecuredAccount("bob", device, 1)
	other := testutil.FactorSource(types.FactorSourceKindDevice, "other")

	tests := []struct {
		name    string
		respond func(input *types.PerFactorSourceInput) *types.SignResponse
		wantErr bool
	}{
		{
			name: "missing signature",
			respond: func(input *types.PerFactorSourceInput) *types.SignResponse {
				sigs := testutil.SignAll(input)
				return types.NewSignResponse(types.SignedOutcome(input.FactorSourceID, sigs[:1]))
			},
			wantErr: true,
		},
		{
			name: "duplicate signature",
			respond: func(input *types.PerFactorSourceInput) *types.SignResponse {
				sigs := testutil.SignAll(input)
				return types.NewSignResponse(types.SignedOutcome(input.FactorSourceID, []types.HDSignature{sigs[0], sigs[0]}))
			},
			wantErr: true,
		},
		{
			name: "signature for unrequested payload",
			respond: func(input *types.PerFactorSourceInput) *types.SignResponse {
				sigs := testutil.SignAll(input)
				sigs[1].Input.PayloadID = testutil.Transaction(99).ID()
				return types.NewSignResponse(types.SignedOutcome(input.FactorSourceID, sigs))
			},
			wantErr: true,
		},
		{
			name: "unrequested factor source in response",
			respond: func(input *types.PerFactorSourceInput) *types.SignResponse {
				return types.NewSignResponse(
					types.SignedOutcome(input.FactorSourceID, testutil.SignAll(input)),
					types.NeglectedOutcome(other.ID, types.NeglectFailure),
				)
			},
			wantErr: true,
		},
		{
			name: "outcome both signed and neglected",
			respond: func(input *types.PerFactorSourceInput) *types.SignResponse {
				outcome := types.SignedOutcome(input.FactorSourceID, testutil.SignAll(input))
				reason := types.NeglectFailure
				outcome.Neglected = &reason
				return types.NewSignResponse(outcome)
			},
			wantErr: true,
		},
		{
			name: "requested factor source missing from response",
			respond: func(*types.PerFactorSourceInput) *types.SignResponse {
				return types.NewSignResponse()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProfile(t, []types.FactorSource{device}, alice, bob)
			provider := &funcProvider{signPoly: func(_ context.Context, request *types.SignRequest) (*types.SignResponse, error) {
				require.Len(t, request.PerFactorSource, 1)
				return tt.respond(&request.PerFactorSource[0]), nil
			}}

			outcome, err := newCollector(t, p, provider, DefaultOptions(), testutil.Transaction(1, alice, bob)).Sign(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvariantViolation)
				return
			}
			require.NoError(t, err)
			reason, ok := outcome.NeglectReason(device.ID)
			require.True(t, ok)
			assert.Equal(t, types.NeglectFailure, reason)
		})
	}
}

func TestSign_RequestCarriesSkipPreview(t *testing.T) {
	alice := testutil.UnsecuredAccount("alice", device, 0)
	p := newProfile(t, []types.FactorSource{device}, alice)
	tx := testutil.Transaction(1, alice)

	var seen []types.InvalidTransactionIfNeglected
	provider := &funcProvider{signPoly: func(_ context.Context, request *types.SignRequest) (*types.SignResponse, error) {
		input := &request.PerFactorSource[0]
		seen = input.InvalidTransactionsIfNeglected
		return types.NewSignResponse(types.SignedOutcome(input.FactorSourceID, testutil.SignAll(input))), nil
	}}

	outcome, err := newCollector(t, p, provider, DefaultOptions(), tx).Sign(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.AllSuccessful())
	require.Len(t, seen, 1)
	assert.Equal(t, tx.ID(), seen[0].PayloadID)
	assert.Equal(t, []types.EntityAddress{alice.Address}, seen[0].EntitiesWhichWouldFailAuth)
}

func TestSign_EarlyReports(t *testing.T) {
	alice := testutil.SecurifiedAccount("alice", 2, []types.HDFactorInstance{
		testutil.Instance(device, 0),
		testutil.Instance(ledger, 0),
	}, nil)
	p := newProfile(t, []types.FactorSource{device, ledger}, alice)
	provider := simulated.NewProvider(simulated.Prudent().Skipping(ledger.ID), nil)
	tx := testutil.Transaction(1, alice)

	opts := DefaultOptions()
	opts.Analyzer = EntityFailureAnalyzer{}
	outcome, err := newCollector(t, p, provider, opts, tx).Sign(context.Background())
	require.NoError(t, err)

	// Irrelevant 忽略再次触发分析，报告按载荷去重
	require.Len(t, outcome.EarlyReports, 1)
	assert.Equal(t, tx.ID(), outcome.EarlyReports[0].PayloadID)
	assert.Equal(t, []types.EntityAddress{alice.Address}, outcome.EarlyReports[0].EntitiesWhichWouldFailAuth)
}

// recordingBus 记录发布的主题
type recordingBus struct {
	mu     sync.Mutex
	topics []event.EventType
	args   map[event.EventType][]interface{}
}

func (b *recordingBus) Subscribe(event.EventType, interface{}) error            { return nil }
func (b *recordingBus) SubscribeAsync(event.EventType, interface{}, bool) error { return nil }
func (b *recordingBus) SubscribeOnce(event.EventType, interface{}) error        { return nil }
func (b *recordingBus) Unsubscribe(event.EventType, interface{}) error          { return nil }
func (b *recordingBus) WaitAsync()                                              {}
func (b *recordingBus) HasCallback(event.EventType) bool                        { return false }
func (b *recordingBus) EnableEventHistory(event.EventType, int) error           { return nil }
func (b *recordingBus) DisableEventHistory(event.EventType) error               { return nil }
func (b *recordingBus) GetEventHistory(event.EventType) []interface{}           { return nil }

func (b *recordingBus) Publish(topic event.EventType, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.args == nil {
		b.args = make(map[event.EventType][]interface{})
	}
	b.topics = append(b.topics, topic)
	b.args[topic] = append(b.args[topic], args...)
}

func TestSign_PublishesProgressEvents(t *testing.T) {
	alice := testutil.SecurifiedAccount("alice", 2, []types.HDFactorInstance{
		testutil.Instance(device, 0),
		testutil.Instance(ledger, 0),
	}, nil)
	p := newProfile(t, []types.FactorSource{device, ledger}, alice)
	provider := simulated.NewProvider(simulated.Prudent().Skipping(ledger.ID), nil)
	tx := testutil.Transaction(1, alice)
	bus := &recordingBus{}

	opts := DefaultOptions()
	opts.EventBus = bus
	_, err := newCollector(t, p, provider, opts, tx).Sign(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []event.EventType{
		EventRunStarted,
		EventGroupDispatched,
		EventFactorNeglected,
		EventTransactionInvalid,
		EventFactorNeglected,
		EventRunFinished,
	}, bus.topics)

	invalid, ok := bus.args[EventTransactionInvalid][0].(TransactionInvalid)
	require.True(t, ok)
	assert.Equal(t, tx.ID(), invalid.PayloadID)
	assert.Equal(t, []types.EntityAddress{alice.Address}, invalid.Entities)

	finished, ok := bus.args[EventRunFinished][0].(RunFinished)
	require.True(t, ok)
	assert.Equal(t, 1, finished.Failed)
	assert.Equal(t, 2, finished.Neglected)
	assert.False(t, finished.FinishedEarly)
}

func TestGroupByKind(t *testing.T) {
	older := testutil.FactorSource(types.FactorSourceKindDevice, "older")
	older.LastUsedOn = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testutil.FactorSource(types.FactorSourceKindDevice, "newer")
	newer.LastUsedOn = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	password := testutil.FactorSource(types.FactorSourceKindPassword, "pw")
	contact := testutil.FactorSource(types.FactorSourceKindTrustedContact, "friend")

	groups := groupByKind([]types.FactorSource{older, password, newer, contact, ledger})
	require.Len(t, groups, 4)
	assert.Equal(t, types.FactorSourceKindLedgerHardwareWallet, groups[0].Kind)
	assert.Equal(t, types.FactorSourceKindTrustedContact, groups[1].Kind)
	assert.Equal(t, types.FactorSourceKindPassword, groups[2].Kind)
	assert.Equal(t, types.FactorSourceKindDevice, groups[3].Kind)
	assert.Equal(t, []types.FactorSourceID{newer.ID, older.ID}, groups[3].IDs())
}

func TestCapabilityFor(t *testing.T) {
	provider := simulated.NewProvider(simulated.Prudent(), nil)

	c, err := CapabilityFor(types.FactorSourceKindDevice, provider, nil)
	require.NoError(t, err)
	assert.Equal(t, ModePoly, c.Mode())

	c, err = CapabilityFor(types.FactorSourceKindPassword, provider, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeMono, c.Mode())

	_, err = CapabilityFor(types.FactorSourceKindDevice, &funcProvider{}, nil)
	assert.ErrorIs(t, err, ErrNoInteractor)
}
