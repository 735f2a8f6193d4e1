package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// ClientConfig holds everything a Client is bound to.
type ClientConfig struct {
	Registry *Registry
	Flags    *Flags
	Inputs   *project.VariantInputs
	Variant  string // empty for a non-platform project
	Platform bool
	SDKHome  string
	Version  string

	// Filter restricts the analyzed files; nil analyzes every input.
	Filter FileFilter
	// InactiveSources are sources of the variants not being linted.
	InactiveSources []string

	Stderr io.Writer
	Logger *slog.Logger
}

// Client runs the issues of a registry over one variant's inputs.
// A Client serves a single run and is not safe for concurrent use.
type Client struct {
	cfg        ClientConfig
	runID      string
	lines      map[string][]string
	haveErrors bool
}

// NewClient creates a client. Nil flags and loggers are replaced by defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Flags == nil {
		cfg.Flags = NewFlags()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Registry == nil {
		cfg.Registry = MustRegistry()
	}
	return &Client{
		cfg:   cfg,
		runID: uuid.NewString(),
		lines: make(map[string][]string),
	}
}

// Flags returns the flags the client runs with.
func (c *Client) Flags() *Flags { return c.cfg.Flags }

// Registry returns the registry the client runs.
func (c *Client) Registry() *Registry { return c.cfg.Registry }

// Inputs returns the variant inputs.
func (c *Client) Inputs() *project.VariantInputs { return c.cfg.Inputs }

// Variant returns the variant name, empty for a non-platform project.
func (c *Client) Variant() string { return c.cfg.Variant }

// Version returns the tool version recorded in reports.
func (c *Client) Version() string { return c.cfg.Version }

// RunID identifies this client's run in logs and machine-readable reports.
func (c *Client) RunID() string { return c.runID }

// HaveErrors reports whether the last run produced blocking findings.
func (c *Client) HaveErrors() bool { return c.haveErrors }

// Run analyzes the inputs and writes the configured reporters. It returns the
// findings left after suppression and baseline filtering, and the baseline
// that was applied (nil if none).
//
// When the flags ask for a missing baseline to be written, Run writes it and
// returns the findings together with an error wrapping ErrBaselineCreated.
// If the baseline folder cannot be created the write is skipped and the run
// carries on.
func (c *Client) Run(ctx context.Context) ([]*Warning, *Baseline, error) {
	flags := c.cfg.Flags
	log := c.cfg.Logger.With("run_id", c.runID, "variant", c.cfg.Variant)
	c.haveErrors = false

	if c.cfg.Inputs == nil {
		return nil, nil, errors.New("no variant inputs")
	}

	var baseline *Baseline
	baselineMissing := false
	if flags.BaselineFile != "" {
		if BaselineMissing(flags.BaselineFile) {
			baselineMissing = true
		} else {
			b, err := LoadBaseline(flags.BaselineFile)
			if err != nil {
				return nil, nil, err
			}
			baseline = b
		}
	}

	var found []*Warning
	report := func(w *Warning) { found = append(found, w) }

	issues := c.enabledIssues()
	log.Debug("running lint", "issues", len(issues), "files", len(c.cfg.Inputs.Files()))
	for _, issue := range issues {
		if err := c.runIssue(ctx, issue, report); err != nil {
			return nil, nil, err
		}
	}

	warnings := c.filter(found, baseline)
	SortWarnings(warnings)

	stats := NewStats(warnings, baseline)
	c.haveErrors = stats.ErrorCount > 0
	if !flags.Quiet {
		log.Info("lint finished", "errors", stats.ErrorCount, "warnings", stats.WarningCount)
	}

	var result error
	for _, r := range flags.Reporters {
		if err := r.Write(stats, warnings); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result != nil {
		return warnings, baseline, fmt.Errorf("failed to write reports: %w", result)
	}

	if baselineMissing && flags.WriteBaselineIfMissing {
		created, err := CreateBaseline(flags.BaselineFile, warnings, c.cfg.Version, c.cfg.Stderr)
		if err != nil {
			return warnings, baseline, err
		}
		if created {
			return warnings, baseline, fmt.Errorf("%w %s", ErrBaselineCreated, flags.BaselineFile)
		}
	}
	return warnings, baseline, nil
}

func (c *Client) enabledIssues() []*Issue {
	var issues []*Issue
	for _, issue := range c.cfg.Registry.Issues() {
		if issue.PlatformOnly && !c.cfg.Platform {
			continue
		}
		if c.cfg.Flags.IsEnabled(issue) {
			issues = append(issues, issue)
		}
	}
	return issues
}

type scopedFile struct {
	path  string
	scope Scope
}

func (c *Client) filesFor(scope Scope) []scopedFile {
	in := c.cfg.Inputs
	var files []scopedFile
	if scope.Has(ScopeSource) {
		for _, f := range in.Sources {
			files = append(files, scopedFile{f, ScopeSource})
		}
		if c.cfg.Flags.CheckTestSources {
			for _, f := range in.TestSources {
				files = append(files, scopedFile{f, ScopeSource})
			}
		}
	}
	if scope.Has(ScopeResource) {
		for _, f := range in.Resources {
			files = append(files, scopedFile{f, ScopeResource})
		}
	}
	if scope.Has(ScopeBuildFile) && in.BuildFile != "" {
		files = append(files, scopedFile{in.BuildFile, ScopeBuildFile})
	}
	return files
}

func (c *Client) runIssue(ctx context.Context, issue *Issue, report func(*Warning)) error {
	impl := issue.Implementation
	detector := impl.NewDetector()
	base := Context{
		Context:         ctx,
		Issue:           issue,
		Inputs:          c.cfg.Inputs,
		Variant:         c.cfg.Variant,
		Options:         c.cfg.Flags.Options(issue),
		Flags:           c.cfg.Flags,
		SDKHome:         c.cfg.SDKHome,
		Logger:          c.cfg.Logger,
		InactiveSources: c.cfg.InactiveSources,
		client:          c,
		report:          report,
	}

	if impl.Scope.Has(ScopeProject) {
		if err := ctx.Err(); err != nil {
			return err
		}
		pc := base
		pc.Scope = ScopeProject
		if err := detector.Run(&pc); err != nil {
			return fmt.Errorf("%s: %w", issue.ID, err)
		}
	}

	for _, f := range c.filesFor(impl.Scope) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.cfg.Filter != nil && !c.cfg.Filter.Include(f.path) {
			continue
		}
		lines, err := c.readLines(f.path)
		if err != nil {
			return err
		}
		fc := base
		fc.Scope = f.scope
		fc.File = f.path
		fc.Lines = lines
		if err := detector.Run(&fc); err != nil {
			return fmt.Errorf("%s: %s: %w", issue.ID, f.path, err)
		}
	}
	return nil
}

// filter applies suppression comments, severity flags, the file filter and
// the baseline, in that order.
func (c *Client) filter(found []*Warning, baseline *Baseline) []*Warning {
	flags := c.cfg.Flags
	out := make([]*Warning, 0, len(found))
	for _, w := range found {
		if c.suppressed(w) {
			continue
		}
		sev := flags.Severity(w.Issue, w.Severity)
		if sev == core.SeverityIgnore {
			continue
		}
		if flags.FatalOnly && sev != core.SeverityFatal {
			continue
		}
		if flags.IgnoreWarnings && !sev.IsError() {
			continue
		}
		w.Severity = sev

		if filter := c.cfg.Filter; filter != nil && w.Location.File != "" {
			if !filter.Include(w.Location.File) {
				continue
			}
			if flags.ChangedLinesOnly && w.Location.Line > 0 && !filter.IncludeLine(w.Location.File, w.Location.Line) {
				continue
			}
		}
		if baseline != nil && baseline.Find(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (c *Client) suppressed(w *Warning) bool {
	if w.Location.File == "" || w.Location.Line <= 0 {
		return false
	}
	lines, err := c.readLines(w.Location.File)
	if err != nil {
		return false
	}
	for _, n := range []int{w.Location.Line, w.Location.Line - 1} {
		if n >= 1 && n <= len(lines) && suppresses(lines[n-1], w.ID()) {
			return true
		}
	}
	return false
}

func (c *Client) readLines(file string) ([]string, error) {
	if lines, ok := c.lines[file]; ok {
		return lines, nil
	}
	data, err := os.ReadFile(c.cfg.Inputs.Abs(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if text == "" {
		lines = nil
	}
	c.lines[file] = lines
	return lines, nil
}

func (c *Client) lineAt(file string, n int) string {
	lines, err := c.readLines(file)
	if err != nil || n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}
