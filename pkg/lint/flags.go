package lint

import "github.com/leapstack-labs/varlint/pkg/core"

// Flags configure a single client run. A Flags value belongs to one run and
// is discarded afterwards.
type Flags struct {
	Quiet       bool
	FatalOnly   bool
	SetExitCode bool // abort the build when blocking findings exist

	Reporters []Reporter

	BaselineFile           string
	WriteBaselineIfMissing bool

	ExplainIssues    bool
	IgnoreWarnings   bool
	WarningsAsErrors bool
	CheckAllWarnings bool
	ShowAll          bool
	AbsolutePaths    bool
	CheckTestSources bool
	ChangedLinesOnly bool

	Disabled          map[string]bool
	Enabled           map[string]bool
	CheckOnly         map[string]bool
	SeverityOverrides map[string]core.Severity
	RuleOptions       map[string]core.RuleOptions

	// IncludeInactiveReferences lets detectors look at sources of variants
	// other than the one being linted.
	IncludeInactiveReferences bool
}

// NewFlags returns flags with defaults applied.
func NewFlags() *Flags {
	return &Flags{
		Disabled:                  make(map[string]bool),
		Enabled:                   make(map[string]bool),
		CheckOnly:                 make(map[string]bool),
		SeverityOverrides:         make(map[string]core.Severity),
		RuleOptions:               make(map[string]core.RuleOptions),
		IncludeInactiveReferences: true,
	}
}

// AddReporter appends a reporter.
func (f *Flags) AddReporter(r Reporter) {
	f.Reporters = append(f.Reporters, r)
}

// IsEnabled reports whether issue takes part in a run with these flags.
func (f *Flags) IsEnabled(issue *Issue) bool {
	if f.FatalOnly && f.severityOf(issue) != core.SeverityFatal {
		return false
	}
	if len(f.CheckOnly) > 0 {
		return f.CheckOnly[issue.ID]
	}
	if f.Disabled[issue.ID] {
		return false
	}
	if f.severityOf(issue) == core.SeverityIgnore {
		return false
	}
	return issue.EnabledByDefault || f.Enabled[issue.ID] || f.CheckAllWarnings
}

// Severity returns the effective severity of a finding of issue reported at sev.
func (f *Flags) Severity(issue *Issue, sev core.Severity) core.Severity {
	if override, ok := f.SeverityOverrides[issue.ID]; ok {
		sev = override
	}
	if f.WarningsAsErrors && sev == core.SeverityWarning {
		sev = core.SeverityError
	}
	return sev
}

// Options returns the rule options configured for issue.
func (f *Flags) Options(issue *Issue) core.RuleOptions {
	return f.RuleOptions[issue.ID]
}

func (f *Flags) severityOf(issue *Issue) core.Severity {
	return f.Severity(issue, issue.Severity)
}
