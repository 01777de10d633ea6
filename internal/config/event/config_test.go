package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/sigcollect/pkg/types"
)

func TestNew(t *testing.T) {
	c := New(nil)
	assert.True(t, c.IsEnabled())
	assert.Equal(t, defaultHistorySize, c.GetHistorySize())
	assert.NoError(t, c.GetOptions().Validate())

	disabled := false
	size := 0
	c = New(&types.UserEventConfig{Enabled: &disabled, HistorySize: &size})
	assert.False(t, c.IsEnabled())
	assert.Zero(t, c.GetHistorySize())
}

func TestEventOptions_Validate(t *testing.T) {
	assert.Error(t, (&EventOptions{HistorySize: -1}).Validate())
	assert.Error(t, (&EventOptions{HistorySize: maxHistorySize + 1}).Validate())
	assert.NoError(t, (&EventOptions{HistorySize: maxHistorySize}).Validate())
}
