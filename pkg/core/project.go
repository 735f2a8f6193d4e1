package core

// ProjectConfig describes the project being linted.
// A platform project declares variants; anything else is linted as a single
// configuration.
type ProjectConfig struct {
	Name        string          `koanf:"name"`
	Platform    bool            `koanf:"platform"`
	Sources     []string        `koanf:"sources"`
	Resources   []string        `koanf:"resources"`
	TestSources []string        `koanf:"test_sources"`
	BuildFile   string          `koanf:"build_file"`
	Extensions  []string        `koanf:"extensions"`
	Variants    []VariantConfig `koanf:"variants"`
}

// VariantConfig is one named build configuration of a platform project.
type VariantConfig struct {
	Name      string   `koanf:"name"`
	BuildType string   `koanf:"build_type"`
	Release   bool     `koanf:"release"`
	Lint      *bool    `koanf:"lint"` // nil means lint this variant
	Sources   []string `koanf:"sources"`
	Resources []string `koanf:"resources"`
}

// IsLinted reports whether the variant takes part in lint runs.
func (v VariantConfig) IsLinted() bool {
	return v.Lint == nil || *v.Lint
}

// LintOptions holds the user-facing lint configuration for a project.
type LintOptions struct {
	AbortOnError       bool `koanf:"abort_on_error"`
	CheckReleaseBuilds bool `koanf:"check_release_builds"`
	Quiet              bool `koanf:"quiet"`
	IgnoreWarnings     bool `koanf:"ignore_warnings"`
	WarningsAsErrors   bool `koanf:"warnings_as_errors"`
	CheckAllWarnings   bool `koanf:"check_all_warnings"`
	ShowAll            bool `koanf:"show_all"`
	ExplainIssues      bool `koanf:"explain_issues"`
	AbsolutePaths      bool `koanf:"absolute_paths"`
	CheckTestSources   bool `koanf:"check_test_sources"`

	// Disable contains issue IDs to turn off
	Disable []string `koanf:"disable"`
	// Enable contains issue IDs to turn on, including ones off by default
	Enable []string `koanf:"enable"`
	// CheckOnly restricts the run to exactly these issue IDs
	CheckOnly []string `koanf:"check_only"`
	// Severity maps issue ID to severity override (fatal, error, warning, informational, ignore)
	Severity map[string]string `koanf:"severity"`
	// Rules contains issue-specific options
	Rules map[string]RuleOptions `koanf:"rules"`

	Baseline         string `koanf:"baseline"`
	BaselineContinue bool   `koanf:"baseline_continue"`

	TextReport  bool   `koanf:"text_report"`
	TextOutput  string `koanf:"text_output"` // stdout, stderr or a file path
	HTMLReport  bool   `koanf:"html_report"`
	HTMLOutput  string `koanf:"html_output"`
	XMLReport   bool   `koanf:"xml_report"`
	XMLOutput   string `koanf:"xml_output"`
	JSONReport  bool   `koanf:"json_report"`
	JSONOutput  string `koanf:"json_output"`
	SARIFReport bool   `koanf:"sarif_report"`
	SARIFOutput string `koanf:"sarif_output"`

	// Incremental restricts linting to files changed in the working tree
	Incremental bool `koanf:"incremental"`
	// Since also includes files changed on the branch since this commit
	Since string `koanf:"since"`
	// ChangedLinesOnly drops findings on lines that were not changed
	ChangedLinesOnly bool `koanf:"changed_lines_only"`

	Linters []LinterConfig `koanf:"linters"`
	Scripts []string       `koanf:"scripts"`
}

// DefaultLintOptions returns the options used when a lint section is present
// but leaves fields unset.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{
		AbortOnError:       true,
		CheckReleaseBuilds: true,
		ExplainIssues:      true,
		HTMLReport:         true,
		XMLReport:          true,
		TextReport:         true,
		TextOutput:         "stdout",
	}
}

// LinterConfig declares an external command whose output is turned into findings.
type LinterConfig struct {
	Name        string   `koanf:"name"`
	Command     string   `koanf:"command"`
	Format      string   `koanf:"format"` // regex with named groups file, line, col, message, code, severity
	Severity    string   `koanf:"severity"`
	Category    string   `koanf:"category"`
	Extensions  []string `koanf:"extensions"`
	Description string   `koanf:"description"`
}

// RuleOptions holds issue-specific configuration options.
type RuleOptions map[string]any
