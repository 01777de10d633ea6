package hardware

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/sigcollect/internal/core/signing/testutil"
	"github.com/weisyn/sigcollect/pkg/types"
)

// MockClient 模拟硬件设备
type MockClient struct {
	connectedFunc func(ctx context.Context, kind types.FactorSourceKind) (types.FactorSourceID, error)
	signFunc      func(ctx context.Context, id types.FactorSourceID, inputs []types.HDSignatureInput) ([][]byte, error)
	signCalls     atomic.Int32
}

func newMockClient(device types.FactorSource) *MockClient {
	return &MockClient{
		connectedFunc: func(context.Context, types.FactorSourceKind) (types.FactorSourceID, error) {
			return device.ID, nil
		},
		signFunc: func(_ context.Context, _ types.FactorSourceID, inputs []types.HDSignatureInput) ([][]byte, error) {
			out := make([][]byte, len(inputs))
			for i := range inputs {
				out[i] = []byte("hw-signature")
			}
			return out, nil
		},
	}
}

func (m *MockClient) ConnectedFactorSource(ctx context.Context, kind types.FactorSourceKind) (types.FactorSourceID, error) {
	return m.connectedFunc(ctx, kind)
}

func (m *MockClient) Sign(ctx context.Context, id types.FactorSourceID, inputs []types.HDSignatureInput) ([][]byte, error) {
	m.signCalls.Add(1)
	return m.signFunc(ctx, id, inputs)
}

func inputFor(fs types.FactorSource) *types.PerFactorSourceInput {
	return &types.PerFactorSourceInput{
		FactorSourceID: fs.ID,
		PerTransaction: []types.TransactionSignRequestInput{{
			PayloadID:      testutil.Transaction(1).ID(),
			FactorSourceID: fs.ID,
			OwnedInstances: []types.OwnedFactorInstance{
				{Owner: testutil.Address("alice"), Instance: testutil.Instance(fs, 0)},
				{Owner: testutil.Address("bob"), Instance: testutil.Instance(fs, 1)},
			},
		}},
	}
}

func fastConfig() Config {
	return Config{RetryCount: 2, RetryDelay: time.Millisecond, SignTimeout: time.Second}
}

func TestNewInteractor_Validation(t *testing.T) {
	_, err := NewInteractor(DefaultConfig(), nil, nil)
	assert.Error(t, err)

	nano := testutil.FactorSource(types.FactorSourceKindLedgerHardwareWallet, "nano")
	_, err = NewInteractor(Config{RetryCount: -1}, newMockClient(nano), nil)
	assert.Error(t, err)

	i, err := NewInteractor(Config{}, newMockClient(nano), &testutil.MockLogger{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().SignTimeout, i.signTimeout)
}

func TestInteractor_SignMono(t *testing.T) {
	nano := testutil.FactorSource(types.FactorSourceKindLedgerHardwareWallet, "nano")
	other := testutil.FactorSource(types.FactorSourceKindLedgerHardwareWallet, "other")

	tests := []struct {
		name       string
		setup      func(m *MockClient)
		wantReason *types.NeglectFactorReason
		wantCalls  int32
	}{
		{
			name:      "signs all slots",
			wantCalls: 1,
		},
		{
			name: "user rejects",
			setup: func(m *MockClient) {
				m.signFunc = func(context.Context, types.FactorSourceID, []types.HDSignatureInput) ([][]byte, error) {
					return nil, ErrUserRejected
				}
			},
			wantReason: reason(types.NeglectUserExplicitlySkipped),
			wantCalls:  1,
		},
		{
			name: "busy then succeeds",
			setup: func(m *MockClient) {
				inner := m.signFunc
				var n atomic.Int32
				m.signFunc = func(ctx context.Context, id types.FactorSourceID, in []types.HDSignatureInput) ([][]byte, error) {
					if n.Add(1) == 1 {
						return nil, ErrDeviceBusy
					}
					return inner(ctx, id, in)
				}
			},
			wantCalls: 2,
		},
		{
			name: "retries exhausted",
			setup: func(m *MockClient) {
				m.signFunc = func(context.Context, types.FactorSourceID, []types.HDSignatureInput) ([][]byte, error) {
					return nil, ErrDeviceDisconnected
				}
			},
			wantReason: reason(types.NeglectFailure),
			wantCalls:  3,
		},
		{
			name: "wrong device is not retried",
			setup: func(m *MockClient) {
				m.connectedFunc = func(context.Context, types.FactorSourceKind) (types.FactorSourceID, error) {
					return other.ID, nil
				}
			},
			wantReason: reason(types.NeglectFailure),
			wantCalls:  0,
		},
		{
			name: "short signature list",
			setup: func(m *MockClient) {
				m.signFunc = func(context.Context, types.FactorSourceID, []types.HDSignatureInput) ([][]byte, error) {
					return [][]byte{[]byte("only-one")}, nil
				}
			},
			wantReason: reason(types.NeglectFailure),
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(nano)
			if tt.setup != nil {
				tt.setup(client)
			}
			i, err := NewInteractor(fastConfig(), client, &testutil.MockLogger{})
			require.NoError(t, err)

			outcome, err := i.SignMono(context.Background(), types.FactorSourceKindLedgerHardwareWallet, inputFor(nano))
			require.NoError(t, err)
			require.NoError(t, outcome.Validate())
			assert.Equal(t, tt.wantCalls, client.signCalls.Load())
			if tt.wantReason == nil {
				assert.False(t, outcome.IsNeglected())
				assert.Len(t, outcome.Signatures, 2)
				return
			}
			require.True(t, outcome.IsNeglected())
			assert.Equal(t, *tt.wantReason, *outcome.Neglected)
		})
	}
}

func TestInteractor_ParentCancellation(t *testing.T) {
	nano := testutil.FactorSource(types.FactorSourceKindLedgerHardwareWallet, "nano")
	client := newMockClient(nano)
	ctx, cancel := context.WithCancel(context.Background())
	client.signFunc = func(ctx context.Context, _ types.FactorSourceID, _ []types.HDSignatureInput) ([][]byte, error) {
		cancel()
		return nil, ErrDeviceBusy
	}

	i, err := NewInteractor(fastConfig(), client, nil)
	require.NoError(t, err)
	_, err = i.SignMono(ctx, types.FactorSourceKindLedgerHardwareWallet, inputFor(nano))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: ErrDeviceBusy, want: true},
		{err: ErrDeviceDisconnected, want: true},
		{err: ErrUserRejected, want: false},
		{err: ErrWrongDevice, want: false},
		{err: context.DeadlineExceeded, want: false},
		{err: errors.New("usb transport error"), want: true},
		{err: errors.New("invalid apdu"), want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableError(tt.err), "%v", tt.err)
	}
}

func reason(r types.NeglectFactorReason) *types.NeglectFactorReason {
	return &r
}
