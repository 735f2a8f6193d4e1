// Package config loads varlint configuration from varlint.yaml, VARLINT_
// environment variables and command-line flags.
//
// Project and lint settings are the shared types from pkg/core; this package
// adds the CLI-only sections (hook, serve) and the loading logic.
package config

import "github.com/leapstack-labs/varlint/pkg/core"

// ProjectConfig is an alias for the shared project configuration.
type ProjectConfig = core.ProjectConfig

// VariantConfig is an alias for the shared variant configuration.
type VariantConfig = core.VariantConfig

// LintOptions is an alias for the shared lint options.
type LintOptions = core.LintOptions

// HookConfig configures the git pre-commit hook.
type HookConfig struct {
	// Enable keeps the hook installed; false removes it on "hook sync".
	Enable bool `koanf:"enable"`
	// Args are extra arguments for the "varlint lint --changed" call.
	Args []string `koanf:"args"`
}

// ServeConfig configures the report server.
type ServeConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the directory holding varlint.yaml, or the working
	// directory when there is none.
	ProjectRoot  string        `koanf:"-"`
	ReportsDir   string        `koanf:"reports_dir"`
	SDKHome      string        `koanf:"sdk_home"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Project      ProjectConfig `koanf:"project"`
	// Lint is nil when the configuration has no lint section.
	Lint  *LintOptions `koanf:"lint"`
	Hook  HookConfig   `koanf:"hook"`
	Serve ServeConfig  `koanf:"serve"`
}

// Default configuration values.
const (
	DefaultConfigFile = "varlint.yaml"
	DefaultReportsDir = "build/reports"
	DefaultOutput     = "auto" // TTY=text, non-TTY=markdown
	DefaultServePort  = 8090
	EnvPrefix         = "VARLINT_"
)

// configNames are the file names searched for, in order.
var configNames = []string{"varlint.yaml", "varlint.yml"}

// sections are the nested config keys; env vars starting with a section
// name map into it (VARLINT_LINT_QUIET -> lint.quiet).
var sections = []string{"project", "lint", "hook", "serve"}
