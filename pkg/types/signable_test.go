package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignable_IDs(t *testing.T) {
	tx := &TransactionIntent{NetworkID: 2, StartEpoch: 1, EndEpoch: 2, Nonce: 1, Message: "m"}
	same := *tx
	other := *tx
	other.Nonce = 2

	assert.Equal(t, tx.ID(), same.ID())
	assert.NotEqual(t, tx.ID(), other.ID())
	assert.Equal(t, SignableKindTransactionIntent, tx.ID().Kind)

	sub := &Subintent{NetworkID: 2, Nonce: 1, Message: "m", ExpiresAt: time.Unix(1700000000, 0)}
	auth := &AuthIntent{NetworkID: 2, Origin: "https://dapp.example", EntitiesToSign: []EntityAddress{NewEntityAddress(EntityKindAccount, 2, []byte("a"))}}

	ids := []PayloadID{tx.ID(), sub.ID(), auth.ID()}
	for _, id := range ids {
		parsed, err := ParsePayloadID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
	assert.NotEqual(t, ids[0].Hash, ids[1].Hash)
}

func TestParsePayloadID_Errors(t *testing.T) {
	for _, bad := range []string{"nokind", "block_00", "txid_zz", "txid_00ff"} {
		_, err := ParsePayloadID(bad)
		assert.Error(t, err, bad)
	}
}

func TestNeglectFactorReason_Text(t *testing.T) {
	reasons := []NeglectFactorReason{NeglectUserExplicitlySkipped, NeglectFailure, NeglectIrrelevant, NeglectSimulation}
	names := []string{"user_explicitly_skipped", "failure", "irrelevant", "simulation"}
	for i, r := range reasons {
		text, err := r.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, names[i], string(text))

		var decoded NeglectFactorReason
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, r, decoded)
	}

	var r NeglectFactorReason
	assert.Error(t, r.UnmarshalText([]byte("bored")))
}
