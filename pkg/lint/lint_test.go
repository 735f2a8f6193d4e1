package lint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// containsIssue reports a finding on every line containing needle.
func containsIssue(id, needle string, sev core.Severity) *Issue {
	return &Issue{
		ID:               id,
		Summary:          "contains " + needle,
		Category:         "Correctness",
		Priority:         5,
		Severity:         sev,
		EnabledByDefault: true,
		Implementation: Implementation{
			Scope: ScopeSource | ScopeResource,
			NewDetector: func() Detector {
				return DetectorFunc(func(ctx *Context) error {
					for i, line := range ctx.Lines {
						if col := strings.Index(line, needle); col >= 0 {
							ctx.Report(i+1, col+1, "Found "+needle)
						}
					}
					return nil
				})
			},
		},
	}
}

func writeProject(t *testing.T, files map[string]string) *project.VariantInputs {
	t.Helper()
	dir := t.TempDir()
	in := &project.VariantInputs{ProjectDir: dir}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		switch {
		case strings.HasPrefix(rel, "res/"):
			in.Resources = append(in.Resources, rel)
		case strings.HasPrefix(rel, "test/"):
			in.TestSources = append(in.TestSources, rel)
		default:
			in.Sources = append(in.Sources, rel)
		}
	}
	return in
}

// recorder is a Reporter that keeps what it was given.
type recorder struct {
	stats        Stats
	warnings     []*Warning
	writes       int
	displayEmpty bool
	err          error
}

func (r *recorder) Write(stats Stats, warnings []*Warning) error {
	r.writes++
	r.stats = stats
	r.warnings = warnings
	return r.err
}

func (r *recorder) SetDisplayEmpty(display bool) { r.displayEmpty = display }
