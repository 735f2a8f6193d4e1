package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/varlint/pkg/lint"
)

// Config carries the run details shared by all reporters.
type Config struct {
	Flags      *lint.Flags
	ProjectDir string
	Project    string
	Variant    string
	Version    string
	RunID      string

	// Notify receives "Wrote ... report" lines. Nil discards them.
	Notify io.Writer
}

func (c Config) flags() *lint.Flags {
	if c.Flags == nil {
		return lint.NewFlags()
	}
	return c.Flags
}

// path returns the display form of a project-relative file.
func (c Config) path(file string) string {
	if file == "" {
		return ""
	}
	if c.flags().AbsolutePaths && c.ProjectDir != "" && !filepath.IsAbs(file) {
		return filepath.Join(c.ProjectDir, file)
	}
	return file
}

// fileOutput is the part shared by reporters that write to a file.
type fileOutput struct {
	cfg          Config
	path         string
	kind         string
	displayEmpty bool
}

func newFileOutput(cfg Config, path, kind string) fileOutput {
	return fileOutput{cfg: cfg, path: path, kind: kind, displayEmpty: true}
}

// SetDisplayEmpty is recorded but file reports are written regardless.
func (o *fileOutput) SetDisplayEmpty(display bool) {
	o.displayEmpty = display
}

// Path returns the output file.
func (o *fileOutput) Path() string {
	return o.path
}

func (o *fileOutput) write(fn func(w io.Writer) error) error {
	if err := ValidateOutputFile(o.path); err != nil {
		return err
	}
	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("failed to create %s report %s: %w", o.kind, o.path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s report %s: %w", o.kind, o.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s report %s: %w", o.kind, o.path, err)
	}
	if o.cfg.Notify != nil && !o.cfg.flags().Quiet {
		fmt.Fprintf(o.cfg.Notify, "Wrote %s report to %s\n", o.kind, FileURL(o.path))
	}
	return nil
}
