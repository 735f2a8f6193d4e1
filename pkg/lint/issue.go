package lint

import (
	"github.com/leapstack-labs/varlint/pkg/core"
)

// Scope selects the inputs a detector runs over. Scopes combine as a bit set.
type Scope uint8

// Detector scopes.
const (
	// ScopeSource runs the detector once per source file.
	ScopeSource Scope = 1 << iota
	// ScopeResource runs the detector once per resource file.
	ScopeResource
	// ScopeBuildFile runs the detector on the project build file.
	ScopeBuildFile
	// ScopeProject runs the detector once with access to all inputs.
	ScopeProject
)

// Has reports whether s includes other.
func (s Scope) Has(other Scope) bool {
	return s&other != 0
}

// String returns a readable form such as "source|resource".
func (s Scope) String() string {
	names := []struct {
		scope Scope
		name  string
	}{
		{ScopeSource, "source"},
		{ScopeResource, "resource"},
		{ScopeBuildFile, "build"},
		{ScopeProject, "project"},
	}
	out := ""
	for _, n := range names {
		if s.Has(n.scope) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// Implementation binds an issue to the detector that reports it.
type Implementation struct {
	Scope Scope
	// NewDetector creates a fresh detector. Detectors are never shared between runs.
	NewDetector func() Detector
}

// Issue describes one kind of finding.
type Issue struct {
	ID          string // Unique identifier, e.g. "TrailingWhitespace"
	Summary     string // One-line description
	Explanation string // Full explanation shown with --explain
	Category    string // e.g. "Correctness", "Security"
	Priority    int    // 1-10, higher is more important
	Severity    core.Severity

	// EnabledByDefault is false for issues that need enable or check_all_warnings.
	EnabledByDefault bool
	// PlatformOnly issues are absent from the non-platform registry.
	PlatformOnly bool
	// Options lists the rule option keys the detector reads.
	Options []string

	Implementation Implementation
}

// WithImplementation returns a copy of the issue bound to impl.
func (i *Issue) WithImplementation(impl Implementation) *Issue {
	c := *i
	c.Implementation = impl
	return &c
}
