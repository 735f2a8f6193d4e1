package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	deferredregex "github.com/peterebden/go-deferred-regex"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// DefaultLinterFormat matches the common "file:line:col: message" output.
const DefaultLinterFormat = `^(?P<file>[^:]+):(?P<line>[0-9]+):(?:(?P<col>[0-9]+):)?\s*(?P<message>.*)$`

// fileArg is replaced by the file path in a linter command; without it the
// path is appended.
const fileArg = "{file}"

// CommandIssues turns configured external linters into issues.
func CommandIssues(linters []core.LinterConfig) ([]*lint.Issue, error) {
	issues := make([]*lint.Issue, 0, len(linters))
	for _, cfg := range linters {
		issue, err := CommandIssue(cfg)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// CommandIssue creates the issue for one external linter. Its detector runs
// the command once per matching source or resource file and parses each
// output line with the linter's format.
func CommandIssue(cfg core.LinterConfig) (*lint.Issue, error) {
	if cfg.Name == "" {
		return nil, errors.New("linter without a name")
	}
	args, err := shlex.Split(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("linter %s: invalid command: %w", cfg.Name, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("linter %s: empty command", cfg.Name)
	}

	format := cfg.Format
	if format == "" {
		format = DefaultLinterFormat
	}
	if !strings.Contains(format, "(?P<message>") {
		return nil, fmt.Errorf("linter %s: format must have a message group", cfg.Name)
	}

	severity := core.SeverityWarning
	if cfg.Severity != "" {
		sev, ok := core.ParseSeverity(cfg.Severity)
		if !ok {
			return nil, fmt.Errorf("linter %s: unknown severity %q", cfg.Name, cfg.Severity)
		}
		severity = sev
	}
	category := cfg.Category
	if category == "" {
		category = "External"
	}
	summary := cfg.Description
	if summary == "" {
		summary = fmt.Sprintf("Findings reported by %s", args[0])
	}

	runner := &commandRunner{
		name:       cfg.Name,
		args:       args,
		format:     &deferredregex.DeferredRegex{Re: format},
		extensions: cfg.Extensions,
	}
	return &lint.Issue{
		ID:               cfg.Name,
		Summary:          summary,
		Explanation:      fmt.Sprintf("Reported by the external command `%s`.", cfg.Command),
		Category:         category,
		Priority:         5,
		Severity:         severity,
		EnabledByDefault: true,
		Implementation: lint.Implementation{
			Scope:       lint.ScopeSource | lint.ScopeResource,
			NewDetector: func() lint.Detector { return runner },
		},
	}, nil
}

type commandRunner struct {
	name       string
	args       []string
	format     *deferredregex.DeferredRegex
	extensions []string
}

func (r *commandRunner) Run(ctx *lint.Context) error {
	if !r.matches(ctx.File) {
		return nil
	}
	abs := ctx.Inputs.Abs(ctx.File)
	args := make([]string, 0, len(r.args)+1)
	replaced := false
	for _, a := range r.args {
		if strings.Contains(a, fileArg) {
			a = strings.ReplaceAll(a, fileArg, abs)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, abs)
	}

	out, err := r.exec(ctx, ctx.Inputs.ProjectDir, ctx.SDKHome, args)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimRight(line, "\r"); line == "" {
			continue
		}
		loc, sev, msg, ok := r.parseLine(ctx.Inputs.ProjectDir, ctx.File, line)
		if !ok {
			ctx.Logger.Debug("unparsed linter output", "linter", r.name, "line", line)
			continue
		}
		if sev != nil {
			ctx.ReportSeverity(loc, *sev, msg)
			continue
		}
		ctx.ReportAt(loc, msg)
	}
	return nil
}

func (r *commandRunner) matches(file string) bool {
	if len(r.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(file)
	for _, e := range r.extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// exec runs the command in dir with $sdkHome/bin prepended to PATH. A non-zero
// exit status is expected from linters that found something and is not an error.
func (r *commandRunner) exec(ctx context.Context, dir, sdkHome string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if sdkHome != "" {
		cmd.Env = append(cmd.Env, "PATH="+filepath.Join(sdkHome, "bin")+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("linter %s: %w", r.name, err)
		}
	}
	return stdout.String(), nil
}

// parseLine extracts a finding from one output line using the named groups
// file, line, col, message, code and severity.
func (r *commandRunner) parseLine(projectDir, file, line string) (lint.Location, *core.Severity, string, bool) {
	matches := r.format.FindStringSubmatch(line)
	if matches == nil {
		return lint.Location{}, nil, "", false
	}
	loc := lint.Location{File: file}
	var sev *core.Severity
	var message, code string
	names := r.format.SubexpNames()
	// The first entry is the complete match.
	for i, match := range matches[1:] {
		switch names[i+1] {
		case "file":
			if match != "" {
				loc.File = relativeTo(projectDir, match)
			}
		case "line":
			loc.Line, _ = strconv.Atoi(match)
		case "col":
			loc.Column, _ = strconv.Atoi(match)
		case "message":
			message = strings.TrimSpace(match)
		case "code":
			code = match
		case "severity":
			if s, ok := core.ParseSeverity(match); ok {
				sev = &s
			}
		}
	}
	if code != "" {
		message = fmt.Sprintf("[%s] %s", code, message)
	}
	return loc, sev, message, message != ""
}

func relativeTo(dir, file string) string {
	if !filepath.IsAbs(file) {
		return filepath.ToSlash(filepath.Clean(file))
	}
	rel, err := filepath.Rel(dir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
