package checks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// ScriptError reports a script rule that could not be loaded.
type ScriptError struct {
	File    string
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script rule %s: %s", filepath.Base(e.File), e.Message)
}

// LoadScripts loads Starlark rule files. Each file defines an ISSUE dict
// (id, summary, explanation, category, priority, severity, enabled, scope) and
// a check(path, lines) function returning a list of dicts with line, column
// and message keys.
func LoadScripts(paths []string) ([]*lint.Issue, error) {
	var issues []*lint.Issue
	for _, path := range paths {
		issue, err := LoadScript(path)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// LoadScript loads a single Starlark rule file.
func LoadScript(path string) (*lint.Issue, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: script paths come from the project configuration
	if err != nil {
		return nil, &ScriptError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	thread := &starlark.Thread{
		Name:  "load:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, _ string) {},
	}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, content, nil)
	if err != nil {
		return nil, &ScriptError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	globals.Freeze()

	spec, ok := globals["ISSUE"].(*starlark.Dict)
	if !ok {
		return nil, &ScriptError{File: path, Message: "ISSUE must be a dict"}
	}
	check, ok := globals["check"].(*starlark.Function)
	if !ok {
		return nil, &ScriptError{File: path, Message: "check(path, lines) is not defined"}
	}
	if check.NumParams() != 2 {
		return nil, &ScriptError{File: path, Message: "check must take exactly two parameters (path, lines)"}
	}

	raw, err := toGo(spec)
	if err != nil {
		return nil, &ScriptError{File: path, Message: fmt.Sprintf("invalid ISSUE: %v", err)}
	}
	issue, err := scriptIssue(raw.(map[string]any))
	if err != nil {
		return nil, &ScriptError{File: path, Message: err.Error()}
	}

	runner := &scriptRunner{file: path, check: check}
	issue.Implementation.NewDetector = func() lint.Detector { return runner }
	return issue, nil
}

func scriptIssue(spec map[string]any) (*lint.Issue, error) {
	id := lint.GetStringOption(spec, "id", "")
	if id == "" {
		return nil, errors.New("ISSUE needs an id")
	}
	issue := &lint.Issue{
		ID:               id,
		Summary:          lint.GetStringOption(spec, "summary", id),
		Explanation:      lint.GetStringOption(spec, "explanation", ""),
		Category:         lint.GetStringOption(spec, "category", "Custom"),
		Priority:         lint.GetIntOption(spec, "priority", 5),
		Severity:         core.SeverityWarning,
		EnabledByDefault: lint.GetBoolOption(spec, "enabled", true),
	}
	if s := lint.GetStringOption(spec, "severity", ""); s != "" {
		sev, ok := core.ParseSeverity(s)
		if !ok {
			return nil, fmt.Errorf("unknown severity %q", s)
		}
		issue.Severity = sev
	}

	var scope lint.Scope
	for _, name := range strings.Split(lint.GetStringOption(spec, "scope", "source"), "|") {
		switch strings.TrimSpace(name) {
		case "source":
			scope |= lint.ScopeSource
		case "resource":
			scope |= lint.ScopeResource
		case "build":
			scope |= lint.ScopeBuildFile
		default:
			return nil, fmt.Errorf("unknown scope %q", name)
		}
	}
	issue.Implementation.Scope = scope
	return issue, nil
}

type scriptRunner struct {
	file  string
	check *starlark.Function
}

func (r *scriptRunner) Run(ctx *lint.Context) error {
	thread := &starlark.Thread{
		Name: "check:" + ctx.Issue.ID,
		Print: func(_ *starlark.Thread, msg string) {
			ctx.Logger.Debug(msg, "script", r.file, "file", ctx.File)
		},
	}
	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	lines := make([]starlark.Value, len(ctx.Lines))
	for i, l := range ctx.Lines {
		lines[i] = starlark.String(l)
	}
	result, err := starlark.Call(thread, r.check, starlark.Tuple{starlark.String(ctx.File), starlark.NewList(lines)}, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("script %s: %w", filepath.Base(r.file), err)
	}
	if result == starlark.None {
		return nil
	}

	findings, err := toGo(result)
	if err != nil {
		return fmt.Errorf("script %s: %w", filepath.Base(r.file), err)
	}
	list, ok := findings.([]any)
	if !ok {
		return fmt.Errorf("script %s: check must return a list, got %s", filepath.Base(r.file), result.Type())
	}
	for _, item := range list {
		finding, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("script %s: findings must be dicts", filepath.Base(r.file))
		}
		msg := lint.GetStringOption(finding, "message", "")
		if msg == "" {
			msg = ctx.Issue.Summary
		}
		ctx.Report(lint.GetIntOption(finding, "line", 0), lint.GetIntOption(finding, "column", 0), msg)
	}
	return nil
}

// toGo converts a Starlark value to string, int64, float64, bool, []any,
// map[string]any or nil.
func toGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", val.String())
		}
		return i64, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Indexable: // list and tuple
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := toGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil
	case *starlark.Dict:
		result := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			gv, err := toGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", string(key), err)
			}
			result[string(key)] = gv
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", v.Type())
	}
}
