package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/internal/cli/testutil"
	"github.com/leapstack-labs/varlint/internal/execution"
	"github.com/leapstack-labs/varlint/pkg/core"
)

func TestNewLintCommand(t *testing.T) {
	cmd := NewLintCommand("test")

	assert.Equal(t, "lint [variant]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)

	flags := []string{"fatal-only", "changed", "since", "changed-lines", "baseline",
		"continue-after-baseline", "quiet", "no-abort", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestApplyLintFlags(t *testing.T) {
	t.Run("no overrides keeps options", func(t *testing.T) {
		assert.Nil(t, applyLintFlags(nil, &LintOptions{}))

		base := &core.LintOptions{Quiet: true}
		assert.Same(t, base, applyLintFlags(base, &LintOptions{}))
	})

	t.Run("override without lint section uses defaults", func(t *testing.T) {
		got := applyLintFlags(nil, &LintOptions{NoAbort: true})
		require.NotNil(t, got)
		assert.False(t, got.AbortOnError)
		assert.True(t, got.HTMLReport)
		assert.True(t, got.CheckReleaseBuilds)
		assert.True(t, got.TextReport)
		assert.Equal(t, "stdout", got.TextOutput)
	})

	t.Run("changed lines implies incremental", func(t *testing.T) {
		got := applyLintFlags(nil, &LintOptions{ChangedLines: true, Since: "main"})
		assert.True(t, got.Incremental)
		assert.True(t, got.ChangedLinesOnly)
		assert.Equal(t, "main", got.Since)
	})

	t.Run("base is not modified", func(t *testing.T) {
		base := &core.LintOptions{AbortOnError: true, Baseline: "old.xml"}
		got := applyLintFlags(base, &LintOptions{Baseline: "new.xml", ContinueAfterBaseline: true, Quiet: true})
		assert.Equal(t, "new.xml", got.Baseline)
		assert.True(t, got.BaselineContinue)
		assert.True(t, got.Quiet)
		assert.Equal(t, "old.xml", base.Baseline)
		assert.False(t, base.Quiet)
	})
}

func TestLint_NoIssues(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProject(t, dir)

	stdout, _, err := execute(t, NewLintCommand("test"))
	require.NoError(t, err)
	assert.Contains(t, stdout, execution.NoIssuesMessage)

	_, err = os.Stat(filepath.Join(dir, "build", "reports", "lint-results.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "build", "reports", "lint-results.xml"))
	assert.NoError(t, err)
}

func TestLint_Findings(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"src/main/App.txt": "fun main() {\n    show(strings) // STOPSHIP\n}\n",
	})
	loadProject(t, dir)

	stdout, _, err := execute(t, NewLintCommand("test"), "debug")
	require.Error(t, err)

	var buildErr *execution.BuildError
	assert.True(t, errors.As(err, &buildErr))
	assert.Contains(t, stdout, "StopShip")
	assert.NotContains(t, stdout, execution.NoIssuesMessage)
}

func TestLint_NoAbort(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"src/main/App.txt": "fun main() {\n    show(strings) // STOPSHIP\n}\n",
	})
	loadProject(t, dir)

	stdout, _, err := execute(t, NewLintCommand("test"), "debug", "--no-abort")
	require.NoError(t, err)
	assert.Contains(t, stdout, "StopShip")
}

func TestLint_QuietKeepsTextReport(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"src/main/App.txt": "fun main() {\n    show(strings) // STOPSHIP\n}\n",
	})
	loadProject(t, dir)

	stdout, _, err := execute(t, NewLintCommand("test"), "debug", "--quiet")
	var buildErr *execution.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, stdout, "StopShip")
}

func TestLint_FatalOnlySkippedWithoutReleaseChecks(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"varlint.yaml":     testutil.PlatformConfig + "lint:\n  check_release_builds: false\n",
		"src/main/App.txt": "fun main() {\n    show(strings) // STOPSHIP\n}\n",
	})
	loadProject(t, dir)

	stdout, _, err := execute(t, NewLintCommand("test"), "release", "--fatal-only")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestLint_UnknownVariant(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProject(t, dir)

	stdout, _, err := execute(t, NewLintCommand("test"), "staging")
	require.NoError(t, err)
	assert.NotContains(t, stdout, execution.NoIssuesMessage)
}

func TestLint_ChangedOutsideGit(t *testing.T) {
	root := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", root)
	dir := filepath.Join(root, "app")
	testutil.WriteFiles(t, dir, map[string]string{
		"varlint.yaml":     testutil.PlatformConfig,
		"src/main/App.txt": "show(strings)\n",
		"res/strings.txt":  "hello\n",
	})
	loadProject(t, dir)

	_, _, err := execute(t, NewLintCommand("test"), "--changed")
	require.Error(t, err)
	assert.ErrorIs(t, err, execution.ErrInvalidArguments)
}
