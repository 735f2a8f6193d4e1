package checks

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// DefaultMaxLineLength is the LongLine limit when max_length is not configured.
const DefaultMaxLineLength = 100

// LongLine flags source lines longer than the configured maximum.
var LongLine = &lint.Issue{
	ID:      "LongLine",
	Summary: "Line too long",
	Explanation: "Very long lines are hard to read and review. Configure the limit with the `max_length` rule option. " +
		"Lines holding a URL are skipped unless `ignore_urls` is false, and lines starting with one of " +
		"`ignore_prefixes` are always skipped.",
	Category: "Usability",
	Priority: 2,
	Severity: core.SeverityWarning,
	Options:  []string{"max_length", "ignore_urls", "ignore_prefixes"},
	Implementation: lint.Implementation{
		Scope:       lint.ScopeSource,
		NewDetector: newLongLineDetector,
	},
}

type longLineOptions struct {
	MaxLength int `option:"max_length"`
}

func newLongLineDetector() lint.Detector {
	return lint.DetectorFunc(func(ctx *lint.Context) error {
		opts := longLineOptions{MaxLength: DefaultMaxLineLength}
		if err := lint.DecodeOptions(ctx.Options, &opts); err != nil {
			return err
		}
		if opts.MaxLength <= 0 {
			return nil
		}
		ignoreURLs := lint.GetOption(ctx.Options, "ignore_urls", true)
		prefixes := lint.GetStringSliceOption(ctx.Options, "ignore_prefixes", nil)
		for i, line := range ctx.Lines {
			if skipLongLine(line, ignoreURLs, prefixes) {
				continue
			}
			if length := utf8.RuneCountInString(line); length > opts.MaxLength {
				ctx.Report(i+1, opts.MaxLength+1, fmt.Sprintf("Line is longer than allowed by max_length (%d > %d)", length, opts.MaxLength))
			}
		}
		return nil
	})
}

func skipLongLine(line string, ignoreURLs bool, prefixes []string) bool {
	if ignoreURLs && (strings.Contains(line, "http://") || strings.Contains(line, "https://")) {
		return true
	}
	trimmed := strings.TrimSpace(line)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
