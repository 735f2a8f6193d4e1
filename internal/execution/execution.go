package execution

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/lint/checks"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// Options configure where an Execution writes.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Execution runs lint for one Request.
type Execution struct {
	req    Request
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger

	extra       []*lint.Issue
	extraLoaded bool
}

// New creates an Execution for req.
func New(req Request, opts Options) *Execution {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Execution{
		req:    req,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		log:    opts.Logger,
	}
}

// Analyze runs lint in the mode the request selects.
//
// With a variant model and a requested variant only that variant is linted;
// an unknown variant name lints nothing. With a variant model and no
// requested variant every variant is linted and the results are merged.
// Without a variant model the project is linted once as a non-platform
// project.
func (e *Execution) Analyze(ctx context.Context) error {
	builder := e.req.ModelBuilder()
	if builder == nil {
		return e.lintNonPlatform(ctx)
	}

	model, err := builder.BuildModel()
	if err != nil {
		return fmt.Errorf("%w: failed to build variant model: %w", ErrInvalidArguments, err)
	}

	name := e.req.VariantName()
	if name == "" {
		return e.lintAllVariants(ctx, model)
	}
	variant, ok := model.Variant(name)
	if !ok {
		attrs := []any{"variant", name}
		if hint := model.SuggestVariant(name); hint != "" {
			attrs = append(attrs, "did_you_mean", hint)
		}
		e.log.Warn("requested variant not found, nothing to lint", attrs...)
		return nil
	}
	return e.lintSingleVariant(ctx, model, variant)
}

func (e *Execution) lintSingleVariant(ctx context.Context, model *project.Model, variant project.Variant) error {
	inputs, err := e.inputs(variant.Name)
	if err != nil || inputs == nil {
		return err
	}

	var inactive []string
	if len(model.Variants) > 1 {
		active := make(map[string]bool, len(inputs.Sources))
		for _, f := range inputs.Sources {
			active[f] = true
		}
		seen := make(map[string]bool)
		for _, other := range model.Variants {
			if other.Name == variant.Name {
				continue
			}
			in, err := e.inputs(other.Name)
			if err != nil {
				return err
			}
			if in == nil {
				continue
			}
			for _, f := range in.Sources {
				if !active[f] && !seen[f] {
					seen[f] = true
					inactive = append(inactive, f)
				}
			}
		}
	}

	_, _, err = e.runLint(ctx, &variant, inputs, runParams{
		report:          true,
		platform:        true,
		includeInactive: true,
		inactiveSources: inactive,
	})
	return err
}

func (e *Execution) lintNonPlatform(ctx context.Context) error {
	inputs, err := e.inputs("")
	if err != nil || inputs == nil {
		return err
	}
	_, _, err = e.runLint(ctx, nil, inputs, runParams{report: true, includeInactive: true})
	return err
}

func (e *Execution) inputs(name string) (*project.VariantInputs, error) {
	inputs, err := e.req.VariantInputs(name)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve inputs for variant %q: %w", ErrInvalidArguments, name, err)
	}
	return inputs, nil
}

// extraIssues loads the issues contributed by configured external linters
// and script rules. They are loaded once per Execution and shared by every
// registry it builds.
func (e *Execution) extraIssues() ([]*lint.Issue, error) {
	if e.extraLoaded {
		return e.extra, nil
	}
	opts := e.req.LintOptions()
	if opts == nil {
		e.extraLoaded = true
		return nil, nil
	}

	issues, err := checks.CommandIssues(opts.Linters)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	scripts := make([]string, len(opts.Scripts))
	for i, s := range opts.Scripts {
		scripts[i] = e.resolve(s)
	}
	scriptIssues, err := checks.LoadScripts(scripts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	e.extra = append(issues, scriptIssues...)
	e.extraLoaded = true
	e.log.Debug("loaded extra issues", "linters", len(issues), "scripts", len(scriptIssues))
	return e.extra, nil
}

// resolve makes path absolute against the project directory.
func (e *Execution) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.req.ProjectDir(), path)
}
