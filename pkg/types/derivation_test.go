package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DerivationPath
		wantErr bool
	}{
		{
			name:  "账户交易签名路径",
			input: "m/44'/1022'/2'/525'/1460'/7'",
			want:  DerivationPath{NetworkID: 2, EntityKind: EntityKindAccount, KeyKind: KeyKindTransactionSigning, Index: 7},
		},
		{
			name:  "省略前缀并使用H标记",
			input: "44H/1022H/1H/618H/1678H/0H",
			want:  DerivationPath{NetworkID: 1, EntityKind: EntityKindPersona, KeyKind: KeyKindAuthenticationSigning, Index: 0},
		},
		{name: "组件数量错误", input: "m/44'/1022'/2'/525'/1460'", wantErr: true},
		{name: "非硬化组件", input: "m/44'/1022'/2'/525'/1460'/0", wantErr: true},
		{name: "purpose错误", input: "m/49'/1022'/2'/525'/1460'/0'", wantErr: true},
		{name: "coin type错误", input: "m/44'/60'/2'/525'/1460'/0'", wantErr: true},
		{name: "未知实体类别", input: "m/44'/1022'/2'/1'/1460'/0'", wantErr: true},
		{name: "未知密钥用途", input: "m/44'/1022'/2'/525'/1'/0'", wantErr: true},
		{name: "索引越界", input: "m/44'/1022'/2'/525'/1460'/2147483648'", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDerivationPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerivationPath_StringRoundTrip(t *testing.T) {
	path := NewDerivationPath(2, EntityKindAccount, 3)
	assert.Equal(t, "m/44'/1022'/2'/525'/1460'/3'", path.String())

	parsed, err := ParseDerivationPath(path.String())
	require.NoError(t, err)
	assert.Equal(t, path, parsed)

	next := path.WithIndex(4)
	assert.Equal(t, uint32(4), next.Index)
	assert.Equal(t, uint32(3), path.Index)
}

func TestDerivationPath_ToUint32Array(t *testing.T) {
	arr := NewDerivationPath(2, EntityKindPersona, 1).ToUint32Array()
	require.Len(t, arr, 6)
	for _, component := range arr {
		assert.GreaterOrEqual(t, component, HardenedOffset)
	}
	assert.Equal(t, uint32(618)+HardenedOffset, arr[3])
	assert.Equal(t, uint32(1)+HardenedOffset, arr[5])
}
