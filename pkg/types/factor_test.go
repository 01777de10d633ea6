package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorSourceKind_FrictionOrder(t *testing.T) {
	for i := 1; i < len(AllFactorSourceKinds); i++ {
		assert.Less(t, AllFactorSourceKinds[i-1].FrictionRank(), AllFactorSourceKinds[i].FrictionRank())
	}
	assert.Equal(t, FactorSourceKindLedgerHardwareWallet, AllFactorSourceKinds[0])
	assert.Equal(t, FactorSourceKindDevice, AllFactorSourceKinds[len(AllFactorSourceKinds)-1])
}

func TestFactorSourceKind_SupportsPolySign(t *testing.T) {
	poly := map[FactorSourceKind]bool{
		FactorSourceKindDevice:            true,
		FactorSourceKindOffDeviceMnemonic: true,
	}
	for _, kind := range AllFactorSourceKinds {
		assert.Equal(t, poly[kind], kind.SupportsPolySign(), kind.String())
	}
}

func TestParseFactorSourceKind(t *testing.T) {
	for _, kind := range AllFactorSourceKinds {
		parsed, err := ParseFactorSourceKind(" " + kind.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseFactorSourceKind("yubikey")
	assert.Error(t, err)
	assert.Equal(t, "unknown(99)", FactorSourceKind(99).String())
}

func TestFactorSourceID_ParseAndCompare(t *testing.T) {
	ledger := NewFactorSourceID(FactorSourceKindLedgerHardwareWallet, HashOf([]byte("b")))
	device := NewFactorSourceID(FactorSourceKindDevice, HashOf([]byte("a")))

	parsed, err := ParseFactorSourceID(device.String())
	require.NoError(t, err)
	assert.Equal(t, device, parsed)

	// 类别优先于主体字节
	assert.Equal(t, -1, ledger.Compare(device))
	assert.Equal(t, 1, device.Compare(ledger))
	assert.Equal(t, 0, device.Compare(device))

	ids := []FactorSourceID{device, ledger}
	SortFactorSourceIDs(ids)
	assert.Equal(t, []FactorSourceID{ledger, device}, ids)

	for _, bad := range []string{"device", "nope:00", "device:zz", "device:00ff"} {
		_, err := ParseFactorSourceID(bad)
		assert.Error(t, err, bad)
	}
}

func TestFactorSourceID_JSON(t *testing.T) {
	id := NewFactorSourceID(FactorSourceKindArculusCard, HashOf([]byte("card")))
	data, err := json.Marshal(map[string]FactorSourceID{"id": id})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"arculus:`)

	var decoded map[string]FactorSourceID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded["id"])
}

func TestHDFactorInstance_Equal(t *testing.T) {
	fs := NewFactorSourceID(FactorSourceKindDevice, HashOf([]byte("phone")))
	a := HDFactorInstance{FactorSourceID: fs, PublicKey: []byte{1}, DerivationPath: NewDerivationPath(2, EntityKindAccount, 0)}
	b := a
	b.PublicKey = []byte{2}
	c := a
	c.DerivationPath = a.DerivationPath.WithIndex(1)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Key(), c.Key())
}
