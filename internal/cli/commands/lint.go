package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/internal/execution"
	"github.com/leapstack-labs/varlint/internal/scm"
	"github.com/leapstack-labs/varlint/internal/watch"
	"github.com/leapstack-labs/varlint/pkg/core"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	FatalOnly             bool
	Changed               bool
	Since                 string
	ChangedLines          bool
	Baseline              string
	ContinueAfterBaseline bool
	Quiet                 bool
	NoAbort               bool
	Watch                 bool
}

// NewLintCommand creates the lint command.
func NewLintCommand(version string) *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [variant]",
		Short: "Run lint on the project",
		Long: `Run lint on one variant, or on every variant of a platform project.

Without a variant argument all variants are linted separately and their
findings merged into a single report; a finding that applies to only some
variants lists them. Projects without variants are linted as one
configuration.

Reports are written to the reports directory. With a lint section in
varlint.yaml the configured reporters are used; without one a text report
goes to stdout and HTML and XML reports are written.

Errors fail the run unless abort_on_error is false or --no-abort is set.`,
		Example: `  # Lint every variant
  varlint lint

  # Lint the debug variant only
  varlint lint debug

  # Check release-blocking issues only
  varlint lint --fatal-only

  # Lint files changed since the branch left main
  varlint lint --changed --since origin/main

  # Re-run on every source change
  varlint lint --watch`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeVariants,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant := ""
			if len(args) > 0 {
				variant = args[0]
			}
			return runLint(cmd, variant, version, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.FatalOnly, "fatal-only", false, "Only check fatal issues, as run when assembling a release")
	cmd.Flags().BoolVar(&opts.Changed, "changed", false, "Only lint files changed in the git working tree")
	cmd.Flags().StringVar(&opts.Since, "since", "", "With --changed, also lint files changed since this commit")
	cmd.Flags().BoolVar(&opts.ChangedLines, "changed-lines", false, "Only report findings on changed lines (implies --changed)")
	cmd.Flags().StringVar(&opts.Baseline, "baseline", "", "Baseline file of known findings")
	cmd.Flags().BoolVar(&opts.ContinueAfterBaseline, "continue-after-baseline", false, "Do not fail the run that creates the baseline")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress progress and empty reports")
	cmd.Flags().BoolVar(&opts.NoAbort, "no-abort", false, "Do not fail when errors are found")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run lint when source files change")

	return cmd
}

func runLint(cmd *cobra.Command, variant, version string, opts *LintOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	lintOpts := applyLintFlags(cfg.Lint, opts)

	if opts.FatalOnly && cfg.Project.Platform && lintOpts != nil && !lintOpts.CheckReleaseBuilds {
		cmdCtx.Logger.Info("skipping fatal-only lint", "reason", "lint.check_release_builds is false")
		return nil
	}

	run := func(ctx context.Context) error {
		return executeLint(ctx, cmd, cmdCtx, variant, version, opts.FatalOnly, lintOpts)
	}

	err := run(ctx)
	if !opts.Watch {
		return err
	}
	if err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}

	cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", cfg.ProjectRoot))
	w := watch.New(watch.Config{
		Dirs:       []string{cfg.ProjectRoot},
		Exclude:    []string{cfg.ReportsDir},
		Extensions: cfg.Project.Extensions,
		Logger:     cmdCtx.Logger,
	}, func(ctx context.Context, _ []string) error {
		if err := run(ctx); err != nil && ctx.Err() == nil {
			cmdCtx.Renderer.Error(err.Error())
		}
		return nil
	})
	return w.Run(ctx)
}

// executeLint runs one lint pass and writes its reports.
func executeLint(ctx context.Context, cmd *cobra.Command, cmdCtx *CommandContext, variant, version string, fatalOnly bool, lintOpts *core.LintOptions) error {
	cfg := cmdCtx.Cfg
	req := newLintRequest(cfg, variant, fatalOnly, lintOpts, version, cmdCtx.Logger)
	if lintOpts != nil && lintOpts.Incremental {
		changes, err := changedFiles(ctx, cfg.ProjectRoot, lintOpts)
		if err != nil {
			return err
		}
		cmdCtx.Logger.Debug("incremental lint", "changed_files", changes.Len())
		req.filter = changes
	}
	return execution.Run(ctx, req, execution.Options{
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Logger: cmdCtx.Logger,
	})
}

// applyLintFlags returns the lint options with command-line overrides. Any
// override creates options from the defaults when the project has none.
func applyLintFlags(base *core.LintOptions, opts *LintOptions) *core.LintOptions {
	overrides := opts.Changed || opts.Since != "" || opts.ChangedLines || opts.Baseline != "" ||
		opts.ContinueAfterBaseline || opts.Quiet || opts.NoAbort
	if !overrides {
		return base
	}

	var out core.LintOptions
	if base != nil {
		out = *base
	} else {
		out = *core.DefaultLintOptions()
	}
	if opts.Changed || opts.Since != "" || opts.ChangedLines {
		out.Incremental = true
	}
	if opts.Since != "" {
		out.Since = opts.Since
	}
	if opts.ChangedLines {
		out.ChangedLinesOnly = true
	}
	if opts.Baseline != "" {
		out.Baseline = opts.Baseline
	}
	if opts.ContinueAfterBaseline {
		out.BaselineContinue = true
	}
	if opts.Quiet {
		out.Quiet = true
	}
	if opts.NoAbort {
		out.AbortOnError = false
	}
	return &out
}

func changedFiles(ctx context.Context, dir string, opts *core.LintOptions) (*scm.ChangeSet, error) {
	git, err := scm.NewGit(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: incremental lint needs git: %w", execution.ErrInvalidArguments, err)
	}
	return git.Changes(ctx, opts.Since, opts.ChangedLinesOnly)
}

// completeVariants completes variant names from the loaded configuration.
func completeVariants(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		// completion skips the root pre-run
		loaded, err := config.LoadConfig("", cmd.Root().PersistentFlags())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg = loaded
	}
	names := make([]string, 0, len(cfg.Project.Variants))
	for _, v := range cfg.Project.Variants {
		if v.IsLinted() {
			names = append(names, v.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
