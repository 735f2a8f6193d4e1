package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOptions(t *testing.T) {
	opts := map[string]any{
		"max_length": 120,
		"ratio":      float64(80),
		"name":       "x",
		"strict":     true,
		"allow":      []any{"a", 1, "b"},
	}

	assert.Equal(t, 120, GetIntOption(opts, "max_length", 100))
	assert.Equal(t, 80, GetIntOption(opts, "ratio", 100))
	assert.Equal(t, 100, GetIntOption(opts, "missing", 100))
	assert.Equal(t, "x", GetStringOption(opts, "name", ""))
	assert.True(t, GetBoolOption(opts, "strict", false))
	assert.Equal(t, []string{"a", "b"}, GetStringSliceOption(opts, "allow", nil))
	assert.Equal(t, "x", GetOption(opts, "name", "y"))
	assert.Equal(t, 7, GetIntOption(nil, "max_length", 7))
}

func TestDecodeOptions(t *testing.T) {
	var target struct {
		MaxLength int      `option:"max_length"`
		Allow     []string `option:"allow"`
	}
	target.MaxLength = 100

	require.NoError(t, DecodeOptions(nil, &target))
	assert.Equal(t, 100, target.MaxLength)

	require.NoError(t, DecodeOptions(map[string]any{"max_length": "140", "allow": []any{"http://"}}, &target))
	assert.Equal(t, 140, target.MaxLength)
	assert.Equal(t, []string{"http://"}, target.Allow)

	err := DecodeOptions(map[string]any{"max_length": "long"}, &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rule options")
}
