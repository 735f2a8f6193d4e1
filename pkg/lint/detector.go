package lint

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// Detector finds occurrences of one issue.
//
// Run is called once per file for file scopes (with File and Lines set) and
// once per run for ScopeProject (with File empty).
type Detector interface {
	Run(ctx *Context) error
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx *Context) error

// Run calls f(ctx).
func (f DetectorFunc) Run(ctx *Context) error {
	return f(ctx)
}

// Context is what a detector sees for one invocation.
type Context struct {
	context.Context

	Issue   *Issue
	Scope   Scope
	File    string   // project-relative path; empty for ScopeProject
	Lines   []string // file contents split into lines, without terminators
	Inputs  *project.VariantInputs
	Variant string
	Options core.RuleOptions
	Flags   *Flags
	SDKHome string
	Logger  *slog.Logger

	// InactiveSources are the sources of variants other than the one being
	// linted. Detectors consult them only when Flags.IncludeInactiveReferences is set.
	InactiveSources []string

	client *Client
	report func(*Warning)
}

// Report records a finding of the context's issue at line and column (1-based,
// 0 when unknown) in the current file.
func (c *Context) Report(line, column int, message string) {
	c.ReportAt(Location{File: c.File, Line: line, Column: column}, message)
}

// ReportAt records a finding at an explicit location.
func (c *Context) ReportAt(loc Location, message string) {
	c.emit(loc, c.Issue.Severity, message)
}

// ReportSeverity records a finding whose severity differs from the issue
// default, e.g. one taken from an external tool's output.
func (c *Context) ReportSeverity(loc Location, sev core.Severity, message string) {
	c.emit(loc, sev, message)
}

func (c *Context) emit(loc Location, sev core.Severity, message string) {
	w := &Warning{
		Issue:    c.Issue,
		Severity: sev,
		Message:  message,
		Location: loc,
	}
	if loc.File == c.File && loc.Line > 0 && loc.Line <= len(c.Lines) {
		w.ErrorLine = c.Lines[loc.Line-1]
	} else if c.client != nil && loc.File != "" && loc.Line > 0 {
		w.ErrorLine = c.client.lineAt(loc.File, loc.Line)
	}
	c.report(w)
}

// ReadLines returns the lines of another input file, using the client's cache.
func (c *Context) ReadLines(file string) ([]string, error) {
	if c.client == nil {
		return nil, nil
	}
	return c.client.readLines(file)
}

// Line returns line n (1-based) of the current file, or "" if out of range.
func (c *Context) Line(n int) string {
	if n < 1 || n > len(c.Lines) {
		return ""
	}
	return c.Lines[n-1]
}

// Text returns the current file contents joined by newlines.
func (c *Context) Text() string {
	return strings.Join(c.Lines, "\n")
}
