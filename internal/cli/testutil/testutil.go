// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/internal/cli/output"
)

// PlatformConfig is a varlint.yaml for a project with debug and release
// variants sharing src/main.
const PlatformConfig = `project:
  name: shop
  platform: true
  sources: [src/main]
  resources: [res]
  build_file: build.yaml
  variants:
    - name: debug
      build_type: debug
      sources: [src/debug]
    - name: release
      build_type: release
      release: true
      sources: [src/release]
`

// SetupTestProject creates a temporary platform project without findings.
func SetupTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, map[string]string{
		"varlint.yaml":        PlatformConfig,
		"build.yaml":          "name: shop\nversion: 1.0.0\n",
		"src/main/App.txt":    "fun main() {\n    show(strings)\n}\n",
		"src/debug/Debug.txt": "debugTools()\n",
		"src/release/Rel.txt": "releaseTools()\n",
		"res/strings.txt":     "hello\n",
	})
	return dir
}

// WriteFiles writes project-relative files below dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
