package execution

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/lint/checks"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// lintAllVariants lints every variant without reporting, merges the findings
// and writes one set of reports for the whole project.
func (e *Execution) lintAllVariants(ctx context.Context, model *project.Model) error {
	warningMap := make(map[string][]*lint.Warning)
	var baselines []*lint.Baseline
	var linted []string
	for _, variant := range model.Variants {
		inputs, err := e.inputs(variant.Name)
		if err != nil {
			return err
		}
		// variants excluded from linting have no inputs
		if inputs == nil {
			continue
		}
		v := variant
		warnings, baseline, err := e.runLint(ctx, &v, inputs, runParams{platform: true})
		if err != nil {
			return err
		}
		warningMap[variant.Name] = warnings
		linted = append(linted, variant.Name)
		if baseline != nil {
			baselines = append(baselines, baseline)
		}
	}

	opts := e.req.LintOptions()
	quiet := opts != nil && opts.Quiet
	if !e.req.FatalOnly() && !quiet {
		for _, name := range linted {
			e.req.Warn("Ran lint on variant %s: %d issues found", name, len(warningMap[name]))
		}
	}

	merged := lint.Merge(warningMap)
	errorCount, warningCount := lint.CountBySeverity(merged)

	first, ok := model.First()
	if !ok {
		return nil
	}

	client, err := e.reportingClient(first)
	if err != nil {
		return err
	}
	flags := client.Flags()

	stats := lint.Stats{ErrorCount: errorCount, WarningCount: warningCount}
	for _, b := range baselines {
		stats.BaselineErrorCount = max(stats.BaselineErrorCount, b.FoundErrorCount())
		stats.BaselineWarningCount = max(stats.BaselineWarningCount, b.FoundWarningCount())
		stats.BaselineFixedCount = max(stats.BaselineFixedCount, b.FixedCount())
	}

	var result error
	for _, r := range flags.Reporters {
		if err := r.Write(stats, merged); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result != nil {
		return buildError(fmt.Sprintf("failed to write lint reports: %v", result), result)
	}

	baselineFile := flags.BaselineFile
	if baselineFile != "" {
		if lint.BaselineMissing(baselineFile) {
			created, err := lint.CreateBaseline(baselineFile, merged, client.Version(), e.stderr)
			if err != nil {
				return buildError(err.Error(), err)
			}
			if created {
				if e.baselineContinue() {
					return nil
				}
				return e.baselineCreatedError(baselineFile, lint.ErrBaselineCreated)
			}
		}
	}

	if stats.BaselineErrorCount > 0 || stats.BaselineWarningCount > 0 {
		fmt.Fprintf(e.stdout, "%s were filtered out because they were listed in the baseline file, %s\n\n",
			lint.DescribeCounts(stats.BaselineErrorCount, stats.BaselineWarningCount, false, true), baselineFile)
	}
	if stats.BaselineFixedCount > 0 {
		fmt.Fprintf(e.stdout, "%d errors/warnings were listed in the baseline file (%s) but not found in the project; perhaps they have been fixed?\n\n",
			stats.BaselineFixedCount, baselineFile)
	}
	if len(merged) == 0 {
		fmt.Fprintln(e.stdout, NoIssuesMessage)
	}

	if flags.SetExitCode && errorCount > 0 {
		return e.abort(client, merged, true)
	}
	return nil
}

// reportingClient creates the client that owns the merged reports. It is
// never run; it carries the flags, reporters and identity of the
// representative variant.
func (e *Execution) reportingClient(variant project.Variant) (*lint.Client, error) {
	inputs, err := e.inputs(variant.Name)
	if err != nil {
		return nil, err
	}
	if inputs == nil {
		inputs = &project.VariantInputs{Name: variant.Name, ProjectDir: e.req.ProjectDir()}
	}
	extra, err := e.extraIssues()
	if err != nil {
		return nil, err
	}
	registry, err := checks.NewBuiltinRegistry(extra...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	flags := lint.NewFlags()
	flags.FatalOnly = e.req.FatalOnly()
	client := lint.NewClient(lint.ClientConfig{
		Registry: registry,
		Flags:    flags,
		Inputs:   inputs,
		Variant:  variant.Name,
		Platform: true,
		SDKHome:  e.req.SDKHome(),
		Version:  e.req.ToolVersion(),
		Stderr:   e.stderr,
		Logger:   e.log,
	})

	if opts := e.req.LintOptions(); opts != nil {
		if err := e.syncOptions(opts, client, "", true, flags.FatalOnly); err != nil {
			return nil, err
		}
	} else if err := e.addDefaultReporters(client); err != nil {
		return nil, err
	}
	return client, nil
}
