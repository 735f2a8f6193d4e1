package checks

import (
	"strings"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// MergeMarker flags unresolved conflict markers.
var MergeMarker = &lint.Issue{
	ID:               "MergeMarker",
	Summary:          "Code contains merge marker",
	Explanation:      "The file contains a leftover conflict marker from a merge or rebase. Resolve the conflict and remove the marker.",
	Category:         "Correctness",
	Priority:         8,
	Severity:         core.SeverityFatal,
	EnabledByDefault: true,
	Implementation: lint.Implementation{
		Scope:       lint.ScopeSource | lint.ScopeResource | lint.ScopeBuildFile,
		NewDetector: lineDetector(checkMergeMarker),
	},
}

func checkMergeMarker(ctx *lint.Context, n int, line string) {
	switch {
	case strings.HasPrefix(line, "<<<<<<< "), line == "<<<<<<<",
		strings.HasPrefix(line, ">>>>>>> "), line == ">>>>>>>",
		line == "=======":
		ctx.Report(n, 1, "Missing merge marker?")
	}
}
