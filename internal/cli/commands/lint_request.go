package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/internal/execution"
	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// lintRequest describes one lint invocation to the orchestrator.
type lintRequest struct {
	cfg       *config.Config
	variant   string
	fatalOnly bool
	options   *core.LintOptions
	filter    lint.FileFilter
	version   string
	logger    *slog.Logger
	resolver  *project.Resolver
}

var _ execution.Request = (*lintRequest)(nil)

func newLintRequest(cfg *config.Config, variant string, fatalOnly bool, options *core.LintOptions, version string, logger *slog.Logger) *lintRequest {
	return &lintRequest{
		cfg:       cfg,
		variant:   variant,
		fatalOnly: fatalOnly,
		options:   options,
		version:   version,
		logger:    logger,
		resolver:  project.NewResolver(cfg.ProjectRoot, cfg.Project),
	}
}

func (r *lintRequest) ProjectDir() string  { return r.cfg.ProjectRoot }
func (r *lintRequest) ProjectName() string { return r.cfg.Project.Name }
func (r *lintRequest) VariantName() string { return r.variant }
func (r *lintRequest) SDKHome() string     { return r.cfg.SDKHome }
func (r *lintRequest) ToolVersion() string { return r.version }
func (r *lintRequest) FatalOnly() bool     { return r.fatalOnly }
func (r *lintRequest) ReportsDir() string  { return r.cfg.ReportsDir }

func (r *lintRequest) ModelBuilder() project.ModelBuilder {
	return project.NewModelBuilder(r.cfg.Project)
}

func (r *lintRequest) VariantInputs(name string) (*project.VariantInputs, error) {
	return r.resolver.Inputs(name)
}

func (r *lintRequest) LintOptions() *core.LintOptions { return r.options }

func (r *lintRequest) FileFilter() lint.FileFilter { return r.filter }

func (r *lintRequest) Warn(format string, args ...any) {
	r.logger.Warn(fmt.Sprintf(format, args...))
}
