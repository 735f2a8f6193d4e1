package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/lint/report"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// testRequest is a Request backed by a project written to a temp dir.
type testRequest struct {
	dir        string
	reportsDir string
	cfg        core.ProjectConfig
	variant    string
	fatalOnly  bool
	opts       *core.LintOptions
	builder    project.ModelBuilder
	inputsFn   func(name string) (*project.VariantInputs, error)
	warnings   []string
}

func (r *testRequest) ProjectDir() string  { return r.dir }
func (r *testRequest) ProjectName() string { return "demo" }
func (r *testRequest) VariantName() string { return r.variant }
func (r *testRequest) ModelBuilder() project.ModelBuilder {
	if r.builder != nil {
		return r.builder
	}
	return project.NewModelBuilder(r.cfg)
}
func (r *testRequest) SDKHome() string     { return "" }
func (r *testRequest) ToolVersion() string { return "1.0.0-test" }
func (r *testRequest) VariantInputs(name string) (*project.VariantInputs, error) {
	if r.inputsFn != nil {
		return r.inputsFn(name)
	}
	return project.NewResolver(r.dir, r.cfg).Inputs(name)
}
func (r *testRequest) FatalOnly() bool                { return r.fatalOnly }
func (r *testRequest) ReportsDir() string             { return r.reportsDir }
func (r *testRequest) LintOptions() *core.LintOptions { return r.opts }
func (r *testRequest) FileFilter() lint.FileFilter    { return nil }
func (r *testRequest) Warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

type errBuilder struct{}

func (errBuilder) BuildModel() (*project.Model, error) {
	return nil, errors.New("broken model")
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

// platformRequest builds a platform project with debug and release variants
// sharing src/main.
func platformRequest(t *testing.T, files map[string]string) *testRequest {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	return &testRequest{
		dir:        dir,
		reportsDir: t.TempDir(),
		cfg: core.ProjectConfig{
			Name:     "demo",
			Platform: true,
			Sources:  []string{"src/main"},
			Variants: []core.VariantConfig{
				{Name: "release", Release: true, Sources: []string{"src/release"}},
				{Name: "debug", Sources: []string{"src/debug"}},
			},
		},
	}
}

func nonPlatformRequest(t *testing.T, files map[string]string) *testRequest {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	return &testRequest{
		dir:        dir,
		reportsDir: t.TempDir(),
		cfg:        core.ProjectConfig{Name: "demo", Sources: []string{"src"}},
	}
}

// jsonOptions returns options that write only a JSON report and never abort.
func jsonOptions(path string) *core.LintOptions {
	return &core.LintOptions{JSONReport: true, JSONOutput: path}
}

func readJSON(t *testing.T, path string) report.JSONReport {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc report.JSONReport
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func analyze(t *testing.T, req Request) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = New(req, Options{Stdout: &out, Stderr: &errOut}).Analyze(context.Background())
	return out.String(), errOut.String(), err
}

var cleanFiles = map[string]string{
	"src/main/app.txt":     "hello\n",
	"src/debug/dbg.txt":    "debug\n",
	"src/release/rel.txt":  "release\n",
	"src/plain/plain.txt":  "plain\n",
	"src/lib/library.conf": "key = value\n",
}

func TestAnalyze_NoIssues(t *testing.T) {
	t.Run("non-platform", func(t *testing.T) {
		req := nonPlatformRequest(t, cleanFiles)
		stdout, _, err := analyze(t, req)
		require.NoError(t, err)
		assert.Contains(t, stdout, NoIssuesMessage)
		assert.Contains(t, stdout, "No issues found.")
		assert.FileExists(t, filepath.Join(req.reportsDir, "lint-results.html"))
		assert.FileExists(t, filepath.Join(req.reportsDir, "lint-results.xml"))
	})

	t.Run("single variant", func(t *testing.T) {
		req := platformRequest(t, cleanFiles)
		req.variant = "debug"
		stdout, _, err := analyze(t, req)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(stdout, NoIssuesMessage))
	})

	t.Run("all variants", func(t *testing.T) {
		req := platformRequest(t, cleanFiles)
		stdout, _, err := analyze(t, req)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(stdout, NoIssuesMessage))
		assert.ElementsMatch(t, []string{
			"Ran lint on variant release: 0 issues found",
			"Ran lint on variant debug: 0 issues found",
		}, req.warnings)
	})
}

func TestAnalyze_UnknownVariantIsNoop(t *testing.T) {
	req := platformRequest(t, map[string]string{"src/main/a.txt": "STOPSHIP\n"})
	req.variant = "relase"
	req.opts = &core.LintOptions{AbortOnError: true, TextReport: true}

	stdout, stderr, err := analyze(t, req)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)

	entries, err := os.ReadDir(req.reportsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyze_MergedCounts(t *testing.T) {
	req := platformRequest(t, map[string]string{
		"src/main/shared.txt":  "shared  \nSTOPSHIP\n",
		"src/debug/only.txt":   "debug \n",
		"src/release/rel.txt":  "release\n",
		"src/debug/second.txt": "x\t\n",
	})
	out := filepath.Join(t.TempDir(), "merged.json")
	req.opts = jsonOptions(out)

	stdout, _, err := analyze(t, req)
	require.NoError(t, err)
	assert.NotContains(t, stdout, NoIssuesMessage)

	doc := readJSON(t, out)
	// shared findings are counted once; debug-only findings once
	assert.Equal(t, 1, doc.Stats.Errors)
	assert.Equal(t, 3, doc.Stats.Warnings)
	require.Len(t, doc.Findings, 4)
	assert.Empty(t, doc.Variant, "merged reports are not attributed to the representative variant")

	for _, f := range doc.Findings {
		if strings.HasPrefix(f.File, "src/debug/") {
			assert.Equal(t, []string{"debug"}, f.Variants, f.File)
		} else {
			assert.Empty(t, f.Variants, f.File)
		}
	}
	assert.ElementsMatch(t, []string{
		"Ran lint on variant release: 2 issues found",
		"Ran lint on variant debug: 4 issues found",
	}, req.warnings)
}

func TestAnalyze_QuietSkipsVariantCounts(t *testing.T) {
	req := platformRequest(t, cleanFiles)
	req.opts = &core.LintOptions{Quiet: true}

	_, _, err := analyze(t, req)
	require.NoError(t, err)
	assert.Empty(t, req.warnings)
}

func TestAnalyze_BaselineCountsUseMaximum(t *testing.T) {
	files := map[string]string{
		"src/main/shared.txt": "shared \n",
		"src/debug/only.txt":  "debug \n",
		"src/release/rel.txt": "release\n",
	}
	req := platformRequest(t, files)
	baseline := filepath.Join(t.TempDir(), "baseline", "lint-baseline.xml")
	out := filepath.Join(t.TempDir(), "merged.json")
	req.opts = &core.LintOptions{JSONReport: true, JSONOutput: out, Baseline: baseline, BaselineContinue: true}

	// first run records the baseline
	_, stderr, err := analyze(t, req)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Created baseline file "+baseline)

	stdout, _, err := analyze(t, req)
	require.NoError(t, err)

	doc := readJSON(t, out)
	assert.Empty(t, doc.Findings)
	// debug filters 2 warnings, release 1: the maximum is reported, not the sum
	assert.Equal(t, 2, doc.Stats.BaselineWarnings)
	assert.Equal(t, 0, doc.Stats.BaselineErrors)
	// release leaves the debug-only entry unmatched
	assert.Equal(t, 1, doc.Stats.BaselineFixed)

	assert.Contains(t, stdout, "2 warnings were filtered out because they were listed in the baseline file, "+baseline)
	assert.Contains(t, stdout, "1 errors/warnings were listed in the baseline file ("+baseline+") but not found in the project; perhaps they have been fixed?")
	assert.Contains(t, stdout, NoIssuesMessage)
}

func TestAnalyze_BaselineCreation(t *testing.T) {
	files := map[string]string{
		"src/main/shared.txt": "shared \n",
		"src/debug/only.txt":  "debug \n",
	}

	for _, cont := range []bool{true, false} {
		t.Run(fmt.Sprintf("continue=%v", cont), func(t *testing.T) {
			req := platformRequest(t, files)
			baseline := filepath.Join(t.TempDir(), "nested", "baseline.xml")
			req.opts = &core.LintOptions{Baseline: baseline, BaselineContinue: cont}

			_, stderr, err := analyze(t, req)
			assert.Contains(t, stderr, "Created baseline file "+baseline)

			data, readErr := os.ReadFile(baseline)
			require.NoError(t, readErr)
			var doc lint.XMLIssues
			require.NoError(t, xml.Unmarshal(data, &doc))
			assert.Len(t, doc.Issues, 2, "baseline holds exactly the merged findings")

			if cont {
				require.NoError(t, err)
				assert.NotContains(t, stderr, "Also breaking build")
				return
			}
			var buildErr *BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Contains(t, buildErr.Message, "Created baseline file "+baseline)
			assert.Contains(t, buildErr.Message, "lint.baseline_continue")
			assert.Contains(t, stderr, "(Also breaking build in case this was not intentional.)")
		})
	}
}

func TestAnalyze_SingleVariantBaselineCreation(t *testing.T) {
	req := platformRequest(t, map[string]string{"src/debug/only.txt": "debug \n"})
	req.variant = "debug"
	baseline := filepath.Join(t.TempDir(), "baseline.xml")
	req.opts = &core.LintOptions{Baseline: baseline}

	_, stderr, err := analyze(t, req)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.ErrorIs(t, err, lint.ErrBaselineCreated)
	assert.Contains(t, stderr, "Created baseline file "+baseline)
	assert.FileExists(t, baseline)
}

func TestAnalyze_BaselineFolderUnavailable(t *testing.T) {
	files := map[string]string{
		"src/debug/only.txt": "debug \n",
		"src/loose.txt":      "loose \n",
	}

	tests := []struct {
		name string
		req  func(t *testing.T) *testRequest
	}{
		{"non-platform", func(t *testing.T) *testRequest { return nonPlatformRequest(t, files) }},
		{"single variant", func(t *testing.T) *testRequest {
			req := platformRequest(t, files)
			req.variant = "debug"
			return req
		}},
		{"all variants", func(t *testing.T) *testRequest { return platformRequest(t, files) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req(t)
			blocker := filepath.Join(t.TempDir(), "blocker")
			require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))
			baseline := filepath.Join(blocker, "config", "baseline.xml")
			req.opts = &core.LintOptions{Baseline: baseline, TextReport: true}

			stdout, stderr, err := analyze(t, req)
			require.NoError(t, err)
			assert.Contains(t, stderr, "Couldn't create baseline folder "+filepath.Dir(baseline))
			assert.NotContains(t, stderr, "Created baseline file")
			assert.Contains(t, stdout, "TrailingWhitespace")
			assert.NoFileExists(t, baseline)
		})
	}
}

func TestAnalyze_AbortMessages(t *testing.T) {
	stopship := map[string]string{
		"src/main/a.txt":  "STOPSHIP\n",
		"src/debug/b.txt": "fine\n",
	}

	tests := []struct {
		name      string
		req       func(t *testing.T) *testRequest
		fatalOnly bool
		want      string
		notWant   string
	}{
		{
			name:      "platform release build",
			req:       func(t *testing.T) *testRequest { return platformRequest(t, stopship) },
			fatalOnly: true,
			want:      "Lint found fatal errors while assembling a release target.",
		},
		{
			name:    "platform",
			req:     func(t *testing.T) *testRequest { return platformRequest(t, stopship) },
			want:    "Or exclude a variant from lint runs",
			notWant: "check_release_builds",
		},
		{
			name: "non-platform",
			req: func(t *testing.T) *testRequest {
				return nonPlatformRequest(t, map[string]string{"src/a.txt": "STOPSHIP\n"})
			},
			want:    "or run varlint lint --no-abort.",
			notWant: "exclude a variant",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req(t)
			req.fatalOnly = tt.fatalOnly
			req.opts = &core.LintOptions{AbortOnError: true, CheckReleaseBuilds: true}

			_, _, err := analyze(t, req)
			var buildErr *BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Contains(t, buildErr.Message, tt.want)
			assert.Contains(t, buildErr.Message, "abort_on_error: false")
			if tt.notWant != "" {
				assert.NotContains(t, buildErr.Message, tt.notWant)
			}
			// no text reporter was configured, so the errors are quoted
			assert.Contains(t, buildErr.Message, "Errors found:\n\n")
			assert.Contains(t, buildErr.Message, "a.txt:1: Fatal: `STOPSHIP` comment found")
		})
	}
}

func TestAnalyze_AbortExcerptTruncated(t *testing.T) {
	req := nonPlatformRequest(t, map[string]string{
		"src/a.txt": "STOPSHIP\nSTOPSHIP\n",
		"src/b.txt": "STOPSHIP\nSTOPSHIP\n",
	})
	req.opts = &core.LintOptions{AbortOnError: true, ExplainIssues: true}

	_, _, err := analyze(t, req)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, buildErr.Message, "The first 3 errors (out of 4) were:\n")
	assert.Equal(t, 3, strings.Count(buildErr.Message, "[StopShip]"))
	assert.NotContains(t, buildErr.Message, "Explanation for issues")
}

func TestAnalyze_AbortWithTextReporterHasNoExcerpt(t *testing.T) {
	req := nonPlatformRequest(t, map[string]string{"src/a.txt": "STOPSHIP\n"})
	req.opts = &core.LintOptions{AbortOnError: true, TextReport: true, TextOutput: "stdout"}

	stdout, _, err := analyze(t, req)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.NotContains(t, buildErr.Message, "Errors found")
	assert.Contains(t, stdout, "src/a.txt:1: Fatal:")
}

func TestAnalyze_NoAbortWithoutExitCode(t *testing.T) {
	req := nonPlatformRequest(t, map[string]string{"src/a.txt": "STOPSHIP\n"})
	req.opts = &core.LintOptions{TextReport: true}

	stdout, _, err := analyze(t, req)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[StopShip]")
}

func TestAnalyze_FatalOnlyIsQuiet(t *testing.T) {
	req := platformRequest(t, map[string]string{"src/main/a.txt": "trailing \n"})
	req.variant = "release"
	req.fatalOnly = true
	req.opts = &core.LintOptions{TextReport: true, AbortOnError: true, HTMLReport: true}

	stdout, _, err := analyze(t, req)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Wrote HTML report")
	assert.FileExists(t, filepath.Join(req.reportsDir, "lint-results-release-fatal.html"))
}

func TestAnalyze_InvalidSeverityOverride(t *testing.T) {
	req := nonPlatformRequest(t, cleanFiles)
	req.opts = &core.LintOptions{Severity: map[string]string{"StopShip": "loud"}}

	_, _, err := analyze(t, req)
	require.ErrorIs(t, err, ErrInvalidArguments)
}

func TestSyncOptions_DisplayEmpty(t *testing.T) {
	req := nonPlatformRequest(t, cleanFiles)
	req.opts = &core.LintOptions{TextReport: true, Quiet: true}

	stdout, _, err := analyze(t, req)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "No issues found.", "quiet runs do not print empty text reports")
	assert.Contains(t, stdout, NoIssuesMessage)
}

func TestRun(t *testing.T) {
	t.Run("build errors pass through", func(t *testing.T) {
		req := nonPlatformRequest(t, map[string]string{"src/a.txt": "STOPSHIP\n"})
		req.opts = &core.LintOptions{AbortOnError: true}

		err := Run(context.Background(), req, Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		var buildErr *BuildError
		require.ErrorAs(t, err, &buildErr)
		assert.NotContains(t, err.Error(), "infrastructure")
	})

	t.Run("other errors are infrastructure errors", func(t *testing.T) {
		req := platformRequest(t, cleanFiles)
		req.builder = errBuilder{}

		err := Run(context.Background(), req, Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lint infrastructure error")
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})

	t.Run("panics are recovered", func(t *testing.T) {
		req := nonPlatformRequest(t, cleanFiles)
		req.inputsFn = func(string) (*project.VariantInputs, error) { panic("boom") }

		err := Run(context.Background(), req, Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		require.Error(t, err)
		assert.Equal(t, "lint infrastructure error: boom", err.Error())
	})

	t.Run("cancelled context", func(t *testing.T) {
		req := nonPlatformRequest(t, cleanFiles)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Run(ctx, req, Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		require.ErrorIs(t, err, context.Canceled)
	})
}
