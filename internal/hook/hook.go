// Package hook manages the git pre-commit hook that lints changed files
// before every commit.
package hook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/leapstack-labs/varlint/internal/execution"
	"github.com/leapstack-labs/varlint/internal/scm"
)

// Marker identifies hooks written by varlint. Hooks without it are never
// overwritten or removed.
const Marker = "# managed by varlint"

// ErrForeignHook is returned when a pre-commit hook not written by varlint
// is in the way.
var ErrForeignHook = errors.New("pre-commit hook exists and was not installed by varlint")

// Status describes the installed pre-commit hook.
type Status int

// Hook states.
const (
	StatusMissing Status = iota
	StatusInstalled
	StatusForeign
)

func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusForeign:
		return "foreign"
	default:
		return "missing"
	}
}

// Config controls the generated hook.
type Config struct {
	// Binary is the varlint executable the hook invokes.
	Binary string
	// ProjectDir is the directory the hook lints from.
	ProjectDir string
	// Args are extra arguments passed to "varlint lint --changed".
	Args []string
	// Force replaces a foreign hook on install.
	Force bool
}

var scriptTemplate = template.Must(template.New("pre-commit").Parse(`#!/bin/sh
{{.Marker}}
cd {{.Dir}} || exit 1
echo "varlint: checking changed files"
OUTPUT=$({{.Command}} 2>&1)
case "$OUTPUT" in
	*"{{.Success}}"*) exit 0 ;;
esac
echo "$OUTPUT"
exit 1
`))

// Script renders the pre-commit hook. The commit is allowed only when the
// lint output reports no issues.
func Script(cfg Config) (string, error) {
	binary := cfg.Binary
	if binary == "" {
		binary = "varlint"
	}
	args := append([]string{binary, "lint", "--changed"}, cfg.Args...)
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}

	var buf bytes.Buffer
	err := scriptTemplate.Execute(&buf, map[string]string{
		"Marker":  Marker,
		"Dir":     shellQuote(cfg.ProjectDir),
		"Command": strings.Join(quoted, " "),
		"Success": execution.NoIssuesMessage,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render hook: %w", err)
	}
	return buf.String(), nil
}

// Manager installs and removes the hook of one repository.
type Manager struct {
	cfg    Config
	git    *scm.Git
	logger *slog.Logger
}

// NewManager returns a manager for the repository containing cfg.ProjectDir.
func NewManager(ctx context.Context, cfg Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	cfg.ProjectDir = abs
	g, err := scm.NewGit(ctx, abs)
	if err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, git: g, logger: logger}, nil
}

// Path returns the location of the pre-commit hook.
func (m *Manager) Path(ctx context.Context) (string, error) {
	return m.git.HookPath(ctx, "pre-commit")
}

// Status reports whether a hook is present and who owns it.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	path, err := m.Path(ctx)
	if err != nil {
		return StatusMissing, err
	}
	return status(path)
}

// Install writes the hook, replacing an earlier varlint hook.
func (m *Manager) Install(ctx context.Context) (string, error) {
	path, err := m.Path(ctx)
	if err != nil {
		return "", err
	}
	st, err := status(path)
	if err != nil {
		return "", err
	}
	if st == StatusForeign && !m.cfg.Force {
		return "", fmt.Errorf("%w: %s", ErrForeignHook, path)
	}

	script, err := Script(m.cfg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return "", fmt.Errorf("failed to write hook %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to make hook executable: %w", err)
	}
	m.logger.Debug("installed pre-commit hook", "path", path)
	return path, nil
}

// Remove deletes the hook if varlint installed it. It reports whether a
// hook was removed.
func (m *Manager) Remove(ctx context.Context) (bool, error) {
	path, err := m.Path(ctx)
	if err != nil {
		return false, err
	}
	st, err := status(path)
	if err != nil {
		return false, err
	}
	switch st {
	case StatusMissing:
		return false, nil
	case StatusForeign:
		m.logger.Warn("leaving pre-commit hook not installed by varlint", "path", path)
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to remove hook %s: %w", path, err)
	}
	m.logger.Debug("removed pre-commit hook", "path", path)
	return true, nil
}

// Sync installs the hook when enabled and removes it otherwise.
func (m *Manager) Sync(ctx context.Context, enabled bool) error {
	if enabled {
		_, err := m.Install(ctx)
		return err
	}
	_, err := m.Remove(ctx)
	return err
}

func status(path string) (Status, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return StatusMissing, nil
	}
	if err != nil {
		return StatusMissing, fmt.Errorf("failed to read hook %s: %w", path, err)
	}
	if bytes.Contains(data, []byte(Marker)) {
		return StatusInstalled, nil
	}
	return StatusForeign, nil
}

func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./=:@,+", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
