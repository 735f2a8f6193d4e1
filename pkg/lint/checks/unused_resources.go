package checks

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// UnusedResources flags resources that no source refers to by name.
var UnusedResources = &lint.Issue{
	ID:      "UnusedResources",
	Summary: "Unused resources",
	Explanation: "Unused resources make the project larger and slow down builds. A resource counts as used when its " +
		"base name appears in a source file or the build file. When linting all variants, each variant only sees " +
		"its own sources, so a resource used by a single variant is reported for the others.",
	Category:         "Performance",
	Priority:         3,
	Severity:         core.SeverityWarning,
	EnabledByDefault: true,
	PlatformOnly:     true,
	Implementation: lint.Implementation{
		Scope:       lint.ScopeProject,
		NewDetector: func() lint.Detector { return lint.DetectorFunc(checkUnusedResources) },
	},
}

func checkUnusedResources(ctx *lint.Context) error {
	in := ctx.Inputs
	if len(in.Resources) == 0 {
		return nil
	}

	files := append([]string{}, in.Sources...)
	files = append(files, in.TestSources...)
	if in.BuildFile != "" {
		files = append(files, in.BuildFile)
	}
	if ctx.Flags.IncludeInactiveReferences {
		files = append(files, ctx.InactiveSources...)
	}

	words := make(map[string]bool)
	for _, f := range files {
		lines, err := ctx.ReadLines(f)
		if err != nil {
			return err
		}
		for _, line := range lines {
			for _, w := range strings.FieldsFunc(line, notIdentifier) {
				words[w] = true
			}
		}
	}
	// Resources may refer to each other.
	for _, res := range in.Resources {
		lines, err := ctx.ReadLines(res)
		if err != nil {
			return err
		}
		self := resourceName(res)
		for _, line := range lines {
			for _, w := range strings.FieldsFunc(line, notIdentifier) {
				if w != self {
					words[w] = true
				}
			}
		}
	}

	for _, res := range in.Resources {
		name := resourceName(res)
		if !words[name] {
			ctx.ReportAt(lint.Location{File: res}, fmt.Sprintf("The resource `%s` appears to be unused", name))
		}
	}
	return nil
}

func resourceName(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}

func notIdentifier(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
}
