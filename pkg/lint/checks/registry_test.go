package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

func TestRegistries(t *testing.T) {
	builtin, err := NewBuiltinRegistry()
	require.NoError(t, err)
	platform, err := NewPlatformRegistry()
	require.NoError(t, err)
	nonPlatform, err := NewNonPlatformRegistry()
	require.NoError(t, err)

	assert.Equal(t, len(BuiltinIssues()), builtin.Len())
	assert.Equal(t, builtin.Len(), platform.Len())

	_, ok := nonPlatform.Issue("UnusedResources")
	assert.False(t, ok)
	assert.Equal(t, builtin.Len()-1, nonPlatform.Len())
}

func TestNewPlatformRegistry_SubstitutesBuildFileDetector(t *testing.T) {
	platform, err := NewPlatformRegistry()
	require.NoError(t, err)

	issue, ok := platform.Issue("DynamicVersion")
	require.True(t, ok)
	assert.NotSame(t, DynamicVersion, issue)
	assert.Equal(t, lint.ScopeBuildFile, issue.Implementation.Scope)

	// The shared built-in issue keeps its textual detector.
	builtin, err := NewBuiltinRegistry()
	require.NoError(t, err)
	again, _ := builtin.Issue("DynamicVersion")
	assert.Same(t, DynamicVersion, again)

	// Building a second registry performs the substitution again on a fresh copy.
	second, err := NewPlatformRegistry()
	require.NoError(t, err)
	other, _ := second.Issue("DynamicVersion")
	assert.NotSame(t, issue, other)
}

func TestRegistries_Extra(t *testing.T) {
	extra, err := CommandIssue(core.LinterConfig{Name: "golint", Command: "golint"})
	require.NoError(t, err)

	reg, err := NewNonPlatformRegistry(extra)
	require.NoError(t, err)
	_, ok := reg.Issue("golint")
	assert.True(t, ok)

	_, err = NewBuiltinRegistry(StopShip)
	require.Error(t, err, "duplicate IDs are rejected")
}
