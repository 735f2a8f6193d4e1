package checks

import (
	"strings"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// TrailingWhitespace flags lines ending in spaces or tabs.
var TrailingWhitespace = &lint.Issue{
	ID:               "TrailingWhitespace",
	Summary:          "Trailing whitespace",
	Explanation:      "Lines should not end in spaces or tabs. Trailing whitespace produces noisy diffs and is invisible in most editors.",
	Category:         "Usability",
	Priority:         3,
	Severity:         core.SeverityWarning,
	EnabledByDefault: true,
	Implementation: lint.Implementation{
		Scope:       lint.ScopeSource | lint.ScopeResource | lint.ScopeBuildFile,
		NewDetector: lineDetector(checkTrailingWhitespace),
	},
}

func checkTrailingWhitespace(ctx *lint.Context, n int, line string) {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) == len(line) {
		return
	}
	ctx.Report(n, len(trimmed)+1, "Trailing whitespace")
}
