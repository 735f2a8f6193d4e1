package checks

import (
	"strings"

	"github.com/leapstack-labs/varlint/pkg/lint"
)

// lineDetector builds a detector that calls check for every line of the file.
func lineDetector(check func(ctx *lint.Context, n int, line string)) func() lint.Detector {
	return func() lint.Detector {
		return lint.DetectorFunc(func(ctx *lint.Context) error {
			for i, line := range ctx.Lines {
				check(ctx, i+1, line)
			}
			return nil
		})
	}
}

// commentStart returns the index where a line comment starts, or -1.
func commentStart(line string) int {
	best := -1
	for _, marker := range []string{"//", "#", "/*", "--"} {
		if i := strings.Index(line, marker); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 && strings.HasPrefix(strings.TrimSpace(line), "*") {
		return strings.Index(line, "*")
	}
	return best
}
