package execution

import (
	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// Request describes one lint invocation.
type Request interface {
	// ProjectDir is the project root all inputs are relative to.
	ProjectDir() string
	// ProjectName is used in report titles.
	ProjectName() string
	// VariantName is the requested variant; empty selects all variants.
	VariantName() string
	// ModelBuilder returns nil when the project has no variant model.
	ModelBuilder() project.ModelBuilder
	// SDKHome is prepended to the PATH of external linters.
	SDKHome() string
	// ToolVersion is recorded in reports and baselines.
	ToolVersion() string
	// VariantInputs returns nil when the variant is not linted.
	VariantInputs(name string) (*project.VariantInputs, error)
	// FatalOnly restricts the run to fatal issues.
	FatalOnly() bool
	// ReportsDir is where default report files are written.
	ReportsDir() string
	// LintOptions returns nil when the project has no lint configuration.
	LintOptions() *core.LintOptions
	// FileFilter restricts incremental runs; nil analyzes everything.
	FileFilter() lint.FileFilter
	// Warn logs a build warning.
	Warn(format string, args ...any)
}
