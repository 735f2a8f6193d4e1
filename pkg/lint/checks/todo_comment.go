package checks

import (
	"fmt"

	deferredregex "github.com/peterebden/go-deferred-regex"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// TodoComment reports TODO, FIXME and XXX comments.
var TodoComment = &lint.Issue{
	ID:               "TodoComment",
	Summary:          "Unfinished work marker",
	Explanation:      "The code contains a TODO, FIXME or XXX comment. These are listed so they can be tracked; resolve or file them.",
	Category:         "Correctness",
	Priority:         1,
	Severity:         core.SeverityInformational,
	EnabledByDefault: true,
	Implementation: lint.Implementation{
		Scope:       lint.ScopeSource,
		NewDetector: lineDetector(checkTodoComment),
	},
}

var todoMarker = deferredregex.DeferredRegex{Re: `\b(TODO|FIXME|XXX)\b`}

func checkTodoComment(ctx *lint.Context, n int, line string) {
	start := commentStart(line)
	if start < 0 {
		return
	}
	m := todoMarker.FindStringSubmatch(line[start:])
	if m == nil {
		return
	}
	col := start + indexOf(line[start:], m[1]) + 1
	ctx.Report(n, col, fmt.Sprintf("%s comment", m[1]))
}
