package checks

import (
	"strings"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// StopShip flags code that must not be released.
var StopShip = &lint.Issue{
	ID:      "StopShip",
	Summary: "Code contains STOPSHIP marker",
	Explanation: "Using the comment `// STOPSHIP` marks code that must be fixed before a release. " +
		"The issue is fatal, so release builds run with --fatal-only fail until the marker is removed.",
	Category:         "Correctness",
	Priority:         10,
	Severity:         core.SeverityFatal,
	EnabledByDefault: true,
	Implementation: lint.Implementation{
		Scope:       lint.ScopeSource | lint.ScopeBuildFile,
		NewDetector: lineDetector(checkStopShip),
	},
}

func checkStopShip(ctx *lint.Context, n int, line string) {
	if i := strings.Index(line, "STOPSHIP"); i >= 0 {
		ctx.Report(n, i+1, "`STOPSHIP` comment found; points to code which must be fixed prior to release")
	}
}
