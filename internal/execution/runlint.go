package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/lint/checks"
	"github.com/leapstack-labs/varlint/pkg/lint/report"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// NoIssuesMessage is printed by a reporting run without findings.
const NoIssuesMessage = "lint no issues found"

type runParams struct {
	report   bool // write user visible reports and enforce abort_on_error
	platform bool

	// includeInactive lets detectors consult sources of other variants.
	// Merged runs turn it off so each variant is judged on its own sources.
	includeInactive bool
	inactiveSources []string
}

// runLint lints one variant with a fresh registry, flag set and client.
func (e *Execution) runLint(ctx context.Context, variant *project.Variant, inputs *project.VariantInputs, p runParams) ([]*lint.Warning, *lint.Baseline, error) {
	if inputs == nil {
		return nil, nil, fmt.Errorf("%w: no inputs", ErrInvalidArguments)
	}
	registry, err := e.newRegistry(p.platform)
	if err != nil {
		return nil, nil, err
	}

	variantName := ""
	if variant != nil {
		variantName = variant.Name
	}
	fatalOnly := e.req.FatalOnly()

	flags := lint.NewFlags()
	flags.FatalOnly = fatalOnly
	flags.IncludeInactiveReferences = p.includeInactive

	cfg := lint.ClientConfig{
		Registry: registry,
		Flags:    flags,
		Inputs:   inputs,
		Variant:  variantName,
		Platform: p.platform,
		SDKHome:  e.req.SDKHome(),
		Version:  e.req.ToolVersion(),
		Filter:   e.req.FileFilter(),
		Stderr:   e.stderr,
		Logger:   e.log,
	}
	if p.includeInactive {
		cfg.InactiveSources = p.inactiveSources
	}
	client := lint.NewClient(cfg)

	if opts := e.req.LintOptions(); opts != nil {
		if err := e.syncOptions(opts, client, variantName, p.report, fatalOnly); err != nil {
			return nil, nil, err
		}
	} else if p.report {
		if err := e.addDefaultReporters(client); err != nil {
			return nil, nil, err
		}
	}
	if !p.report || fatalOnly {
		flags.Quiet = true
	}
	flags.WriteBaselineIfMissing = p.report && !fatalOnly

	warnings, baseline, err := client.Run(ctx)
	switch {
	case errors.Is(err, lint.ErrBaselineCreated):
		if e.baselineContinue() {
			return warnings, baseline, nil
		}
		return warnings, baseline, e.baselineCreatedError(flags.BaselineFile, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, nil, err
	case err != nil:
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	if p.report && len(warnings) == 0 {
		fmt.Fprintln(e.stdout, NoIssuesMessage)
	}
	if p.report && client.HaveErrors() && flags.SetExitCode {
		return warnings, baseline, e.abort(client, warnings, p.platform)
	}
	return warnings, baseline, nil
}

func (e *Execution) newRegistry(platform bool) (*lint.Registry, error) {
	extra, err := e.extraIssues()
	if err != nil {
		return nil, err
	}
	var registry *lint.Registry
	if platform {
		registry, err = checks.NewPlatformRegistry(extra...)
	} else {
		registry, err = checks.NewNonPlatformRegistry(extra...)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return registry, nil
}

func (e *Execution) reportConfig(client *lint.Client, variant string) report.Config {
	return report.Config{
		Flags:      client.Flags(),
		ProjectDir: e.req.ProjectDir(),
		Project:    e.req.ProjectName(),
		Variant:    variant,
		Version:    client.Version(),
		RunID:      client.RunID(),
		Notify:     e.stdout,
	}
}

// addDefaultReporters installs text output on stdout plus HTML and XML
// reports in the reports directory.
func (e *Execution) addDefaultReporters(client *lint.Client) error {
	flags := client.Flags()
	cfg := e.reportConfig(client, "")
	flags.AddReporter(report.NewText(cfg, e.stdout))

	html := report.OutputPath(e.req.ReportsDir(), "", "html", flags.FatalOnly)
	xml := report.OutputPath(e.req.ReportsDir(), "", "xml", flags.FatalOnly)
	for _, path := range []string{html, xml} {
		if err := report.ValidateOutputFile(path); err != nil {
			return buildError(err.Error(), err)
		}
	}
	flags.AddReporter(report.NewHTML(cfg, html))
	flags.AddReporter(report.NewXML(cfg, xml))
	return nil
}

// syncOptions copies the lint options onto the client flags and installs
// the configured reporters.
func (e *Execution) syncOptions(opts *core.LintOptions, client *lint.Client, variant string, reportRun, fatalOnly bool) error {
	flags := client.Flags()

	flags.SetExitCode = opts.AbortOnError
	flags.Quiet = opts.Quiet
	flags.IgnoreWarnings = opts.IgnoreWarnings
	flags.WarningsAsErrors = opts.WarningsAsErrors
	flags.CheckAllWarnings = opts.CheckAllWarnings
	flags.ShowAll = opts.ShowAll
	flags.ExplainIssues = opts.ExplainIssues
	flags.AbsolutePaths = opts.AbsolutePaths
	flags.CheckTestSources = opts.CheckTestSources
	flags.ChangedLinesOnly = opts.ChangedLinesOnly

	for _, id := range opts.Disable {
		flags.Disabled[id] = true
	}
	for _, id := range opts.Enable {
		flags.Enabled[id] = true
	}
	for _, id := range opts.CheckOnly {
		flags.CheckOnly[id] = true
	}
	for id, s := range opts.Severity {
		sev, ok := core.ParseSeverity(s)
		if !ok {
			return fmt.Errorf("%w: unknown severity %q for issue %s", ErrInvalidArguments, s, id)
		}
		flags.SeverityOverrides[id] = sev
	}
	for id, ro := range opts.Rules {
		flags.RuleOptions[id] = ro
	}
	if opts.Baseline != "" {
		flags.BaselineFile = e.resolve(opts.Baseline)
	}

	cfg := e.reportConfig(client, variant)
	reportsDir := e.req.ReportsDir()
	output := func(configured, ext string) string {
		if configured != "" {
			return e.resolve(configured)
		}
		return report.OutputPath(reportsDir, variant, ext, fatalOnly)
	}

	if opts.TextReport && (reportRun || (fatalOnly && opts.AbortOnError)) {
		out := opts.TextOutput
		if out != "" && out != "stdout" && out != "stderr" {
			out = e.resolve(out)
		}
		flags.AddReporter(report.NewTextOutput(cfg, out, e.stdout, e.stderr))
	}
	if reportRun {
		if opts.HTMLReport {
			flags.AddReporter(report.NewHTML(cfg, output(opts.HTMLOutput, "html")))
		}
		if opts.XMLReport {
			flags.AddReporter(report.NewXML(cfg, output(opts.XMLOutput, "xml")))
		}
		if opts.JSONReport {
			flags.AddReporter(report.NewJSON(cfg, output(opts.JSONOutput, "json")))
		}
		if opts.SARIFReport {
			flags.AddReporter(report.NewSARIF(cfg, output(opts.SARIFOutput, "sarif")))
		}
	}

	displayEmpty := !(fatalOnly || flags.Quiet)
	for _, r := range flags.Reporters {
		r.SetDisplayEmpty(displayEmpty)
	}
	return nil
}

func (e *Execution) baselineContinue() bool {
	opts := e.req.LintOptions()
	return opts != nil && opts.BaselineContinue
}

func (e *Execution) baselineCreatedError(path string, cause error) error {
	fmt.Fprintln(e.stderr, "(Also breaking build in case this was not intentional.)")
	return buildError(baselineCreatedMessage(path), cause)
}

func baselineCreatedMessage(path string) string {
	return "Created baseline file " + path + "\n" +
		"\n" +
		"Also breaking the build in case this was not intentional. If you\n" +
		"deliberately created the baseline file, re-run the build and this\n" +
		"time it should succeed without warnings.\n" +
		"\n" +
		"If not, investigate the baseline path in the lint section of varlint.yaml\n" +
		"or verify that the baseline file has been checked into version\n" +
		"control.\n" +
		"\n" +
		"You can set lint.baseline_continue (or VARLINT_LINT_BASELINE_CONTINUE=true)\n" +
		"if you want to create many missing baselines in one go."
}
