package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/sigcollect/pkg/types"
)

type staticAppOptions struct {
	cfg *types.AppConfig
}

func (s staticAppOptions) GetAppConfig() *types.AppConfig { return s.cfg }

// TestGetEnvironment 测试 GetEnvironment() 方法
func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  *string
		want string
	}{
		{"显式配置 dev", types.StringPtr("dev"), "dev"},
		{"显式配置 test", types.StringPtr("test"), "test"},
		{"大小写与空白", types.StringPtr(" PROD "), "prod"},
		{"未配置时默认为 prod", nil, "prod"},
		{"无效值默认为 prod", types.StringPtr("invalid"), "prod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewProvider(&types.AppConfig{Environment: tt.env})
			assert.Equal(t, tt.want, provider.GetEnvironment())
		})
	}
}

func TestProvider_Defaults(t *testing.T) {
	provider := NewProvider(nil)

	assert.Equal(t, defaultAppName, provider.GetAppName())
	assert.NotNil(t, provider.GetAppConfig())
	assert.Equal(t, "info", provider.GetLog().Level)
	assert.True(t, provider.GetEvent().IsEnabled())

	signing := provider.GetSigning()
	assert.True(t, signing.FinishEarlyWhenAllValid)
	assert.False(t, signing.FinishEarlyWhenSomeInvalid)
	assert.Equal(t, []string{"primary"}, signing.Roles)
}

func TestProvider_UserOverrides(t *testing.T) {
	provider := NewProvider(&types.AppConfig{
		AppName: types.StringPtr("collector"),
		Log:     &types.UserLogConfig{Level: types.StringPtr("debug")},
		Event:   &types.UserEventConfig{Enabled: types.BoolPtr(false)},
		Signing: &types.UserSigningConfig{
			FinishEarlyWhenSomeInvalid: types.BoolPtr(true),
			Roles:                      []string{"recovery", "confirmation"},
		},
	})

	assert.Equal(t, "collector", provider.GetAppName())
	assert.Equal(t, "debug", provider.GetLog().Level)
	assert.False(t, provider.GetEvent().IsEnabled())
	assert.True(t, provider.GetSigning().FinishEarlyWhenSomeInvalid)
	assert.Equal(t, []string{"recovery", "confirmation"}, provider.GetSigning().Roles)
}

func TestProvideConfigServices(t *testing.T) {
	out, err := ProvideConfigServices(ConfigParams{})
	require.NoError(t, err)
	assert.Equal(t, "prod", out.Provider.GetEnvironment())

	_, err = ProvideConfigServices(ConfigParams{AppOptions: staticAppOptions{cfg: &types.AppConfig{
		Signing: &types.UserSigningConfig{Roles: []string{"owner"}},
	}}})
	assert.Error(t, err)

	_, err = ProvideConfigServices(ConfigParams{AppOptions: staticAppOptions{cfg: &types.AppConfig{
		Event: &types.UserEventConfig{HistorySize: types.IntPtr(-1)},
	}}})
	assert.Error(t, err)
}
