package lint

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/pkg/core"
)

// lineFilter includes the listed files and, when lines is set, only those lines.
type lineFilter struct {
	files map[string]bool
	lines map[string]map[int]bool
}

func (f lineFilter) Include(path string) bool { return f.files[path] }

func (f lineFilter) IncludeLine(path string, line int) bool { return f.lines[path][line] }

func newTestClient(t *testing.T, files map[string]string, flags *Flags, issues ...*Issue) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		Registry: MustRegistry(issues...),
		Flags:    flags,
		Inputs:   writeProject(t, files),
		Version:  "test",
		Stderr:   &bytes.Buffer{},
	})
}

func TestClient_Run(t *testing.T) {
	flags := NewFlags()
	rec := &recorder{}
	flags.AddReporter(rec)

	client := newTestClient(t, map[string]string{
		"src/a.go":       "package a\n// FIXME later\nvar x = 1\n",
		"res/app.yaml":   "name: FIXME\n",
		"test/a_test.go": "// FIXME in test\n",
	}, flags, containsIssue("Fixme", "FIXME", core.SeverityError))

	warnings, baseline, err := client.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, baseline)
	require.Len(t, warnings, 2, "test sources are skipped by default")

	assert.Equal(t, "res/app.yaml", warnings[0].Location.File)
	assert.Equal(t, Location{File: "src/a.go", Line: 2, Column: 4}, warnings[1].Location)
	assert.Equal(t, "// FIXME later", warnings[1].ErrorLine)
	assert.True(t, client.HaveErrors())

	assert.Equal(t, 1, rec.writes)
	assert.Equal(t, 2, rec.stats.ErrorCount)
	assert.Equal(t, warnings, rec.warnings)
}

func TestClient_CheckTestSources(t *testing.T) {
	flags := NewFlags()
	flags.CheckTestSources = true
	client := newTestClient(t, map[string]string{
		"test/a_test.go": "// FIXME in test\n",
	}, flags, containsIssue("Fixme", "FIXME", core.SeverityWarning))

	warnings, _, err := client.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.False(t, client.HaveErrors())
}

func TestClient_Suppression(t *testing.T) {
	client := newTestClient(t, map[string]string{
		"src/a.go": "// varlint:ignore Fixme\n// FIXME one\n// FIXME two varlint:ignore all\nok\n// FIXME three varlint:ignore Other\n",
	}, NewFlags(), containsIssue("Fixme", "FIXME", core.SeverityWarning))

	warnings, _, err := client.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, 5, warnings[0].Location.Line)
}

func TestClient_SeverityFlags(t *testing.T) {
	files := map[string]string{"src/a.go": "TODO\nFIXME\n"}
	todo := containsIssue("Todo", "TODO", core.SeverityWarning)
	fixme := containsIssue("Fixme", "FIXME", core.SeverityFatal)

	tests := []struct {
		name  string
		setup func(f *Flags)
		want  map[string]core.Severity
	}{
		{"defaults", nil, map[string]core.Severity{"Todo": core.SeverityWarning, "Fixme": core.SeverityFatal}},
		{"warnings as errors", func(f *Flags) { f.WarningsAsErrors = true }, map[string]core.Severity{"Todo": core.SeverityError, "Fixme": core.SeverityFatal}},
		{"ignore warnings", func(f *Flags) { f.IgnoreWarnings = true }, map[string]core.Severity{"Fixme": core.SeverityFatal}},
		{"fatal only", func(f *Flags) { f.FatalOnly = true }, map[string]core.Severity{"Fixme": core.SeverityFatal}},
		{"override", func(f *Flags) { f.SeverityOverrides["Fixme"] = core.SeverityInformational }, map[string]core.Severity{"Todo": core.SeverityWarning, "Fixme": core.SeverityInformational}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := NewFlags()
			if tt.setup != nil {
				tt.setup(flags)
			}
			client := newTestClient(t, files, flags, todo, fixme)
			warnings, _, err := client.Run(context.Background())
			require.NoError(t, err)

			got := make(map[string]core.Severity)
			for _, w := range warnings {
				got[w.ID()] = w.Severity
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_FileFilter(t *testing.T) {
	flags := NewFlags()
	flags.ChangedLinesOnly = true
	client := NewClient(ClientConfig{
		Registry: MustRegistry(containsIssue("Fixme", "FIXME", core.SeverityWarning)),
		Flags:    flags,
		Inputs: writeProject(t, map[string]string{
			"src/a.go": "FIXME\nFIXME\n",
			"src/b.go": "FIXME\n",
		}),
		Filter: lineFilter{
			files: map[string]bool{"src/a.go": true},
			lines: map[string]map[int]bool{"src/a.go": {2: true}},
		},
	})

	warnings, _, err := client.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, Location{File: "src/a.go", Line: 2, Column: 1}, warnings[0].Location)
}

func TestClient_Baseline(t *testing.T) {
	files := map[string]string{"src/a.go": "FIXME\nFIXME\nTODO\n"}
	fixme := containsIssue("Fixme", "FIXME", core.SeverityError)
	todo := containsIssue("Todo", "TODO", core.SeverityWarning)

	baselineFile := filepath.Join(t.TempDir(), "config", "baseline.xml")

	t.Run("created when missing", func(t *testing.T) {
		flags := NewFlags()
		flags.BaselineFile = baselineFile
		flags.WriteBaselineIfMissing = true
		stderr := &bytes.Buffer{}
		client := NewClient(ClientConfig{
			Registry: MustRegistry(fixme, todo),
			Flags:    flags,
			Inputs:   writeProject(t, files),
			Stderr:   stderr,
		})

		warnings, _, err := client.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBaselineCreated))
		assert.Len(t, warnings, 3)
		assert.Contains(t, stderr.String(), "Created baseline file "+baselineFile)
		assert.FileExists(t, baselineFile)
	})

	t.Run("skipped when the folder cannot be created", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o600))
		path := filepath.Join(blocker, "sub", "baseline.xml")

		flags := NewFlags()
		flags.BaselineFile = path
		flags.WriteBaselineIfMissing = true
		stderr := &bytes.Buffer{}
		client := NewClient(ClientConfig{
			Registry: MustRegistry(fixme, todo),
			Flags:    flags,
			Inputs:   writeProject(t, files),
			Stderr:   stderr,
		})

		warnings, baseline, err := client.Run(context.Background())
		require.NoError(t, err)
		assert.Nil(t, baseline)
		assert.Len(t, warnings, 3)
		assert.Equal(t, "Couldn't create baseline folder "+filepath.Dir(path)+"\n", stderr.String())
		assert.NoFileExists(t, path)
	})

	t.Run("filters listed findings", func(t *testing.T) {
		flags := NewFlags()
		flags.BaselineFile = baselineFile
		client := newTestClient(t, map[string]string{"src/a.go": "FIXME\nFIXME\nFIXME\n"}, flags, fixme, todo)

		warnings, baseline, err := client.Run(context.Background())
		require.NoError(t, err)
		require.NotNil(t, baseline)
		assert.Len(t, warnings, 1, "two of three FIXME findings are listed")
		assert.Equal(t, 2, baseline.FoundErrorCount())
		assert.Equal(t, 0, baseline.FoundWarningCount())
		assert.Equal(t, 1, baseline.FixedCount(), "the TODO entry was not found")
	})
}

func TestClient_ReporterErrors(t *testing.T) {
	flags := NewFlags()
	flags.AddReporter(&recorder{err: errors.New("disk full")})
	flags.AddReporter(&recorder{err: errors.New("permission denied")})
	client := newTestClient(t, map[string]string{"src/a.go": "ok\n"}, flags, containsIssue("Fixme", "FIXME", core.SeverityError))

	_, _, err := client.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestClient_Cancelled(t *testing.T) {
	client := newTestClient(t, map[string]string{"src/a.go": "FIXME\n"}, NewFlags(), containsIssue("Fixme", "FIXME", core.SeverityError))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := client.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_MissingFile(t *testing.T) {
	inputs := writeProject(t, map[string]string{"src/a.go": "FIXME\n"})
	require.NoError(t, os.Remove(inputs.Abs("src/a.go")))

	client := NewClient(ClientConfig{
		Registry: MustRegistry(containsIssue("Fixme", "FIXME", core.SeverityError)),
		Inputs:   inputs,
	})
	_, _, err := client.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClient_PlatformOnly(t *testing.T) {
	issue := containsIssue("Fixme", "FIXME", core.SeverityError)
	issue.PlatformOnly = true
	client := newTestClient(t, map[string]string{"src/a.go": "FIXME\n"}, NewFlags(), issue)

	warnings, _, err := client.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEmpty(t, client.RunID())
}
