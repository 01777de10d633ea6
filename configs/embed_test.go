package configs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/sigcollect/pkg/types"
)

func TestEmbeddedDefaults(t *testing.T) {
	var cfg types.AppConfig
	require.NoError(t, json.Unmarshal(GetDefaultConfig(), &cfg))
	require.NotNil(t, cfg.Signing)
	assert.Equal(t, []string{"primary"}, cfg.Signing.Roles)
	assert.NotEmpty(t, GetExampleScenario())
}
