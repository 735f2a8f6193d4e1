package lint

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/leapstack-labs/varlint/pkg/core"
)

// Location is a position in a project file. Line and Column are 1-based;
// zero means unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

// String formats the location as file:line:column, omitting unknown parts.
func (l Location) String() string {
	switch {
	case l.Line <= 0:
		return l.File
	case l.Column <= 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
}

// Warning is one finding produced by a client run.
type Warning struct {
	Issue     *Issue
	Severity  core.Severity
	Message   string
	Location  Location
	ErrorLine string // source line the finding points at, if any

	// Variants lists the variants the finding applies to when it was found in
	// only some of the merged variants. Nil means all of them.
	Variants []string
}

// ID returns the issue ID of the finding.
func (w *Warning) ID() string {
	if w.Issue == nil {
		return ""
	}
	return w.Issue.ID
}

// Fingerprint identifies the finding independently of its line number.
func (w *Warning) Fingerprint() string {
	sum := xxhash.Sum64String(w.ID() + "\x00" + w.Location.File + "\x00" + w.Message)
	return strconv.FormatUint(sum, 16)
}

// key identifies the finding exactly, including its position.
func (w *Warning) key() string {
	return fmt.Sprintf("%s\x00%s\x00%d\x00%d\x00%s", w.ID(), w.Location.File, w.Location.Line, w.Location.Column, w.Message)
}

// SortWarnings orders warnings by severity (most severe first), then issue
// priority, issue ID, file, line, column and message.
func SortWarnings(warnings []*Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		if pa, pb := priority(a), priority(b); pa != pb {
			return pa > pb
		}
		if a.ID() != b.ID() {
			return a.ID() < b.ID()
		}
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		return a.Message < b.Message
	})
}

func priority(w *Warning) int {
	if w.Issue == nil {
		return 0
	}
	return w.Issue.Priority
}

// CountBySeverity returns the number of blocking findings (Fatal and Error)
// and plain warnings. Informational findings are not counted.
func CountBySeverity(warnings []*Warning) (errors, warns int) {
	for _, w := range warnings {
		switch w.Severity {
		case core.SeverityFatal, core.SeverityError:
			errors++
		case core.SeverityWarning:
			warns++
		}
	}
	return errors, warns
}

// Errors returns the blocking findings in order.
func Errors(warnings []*Warning) []*Warning {
	var out []*Warning
	for _, w := range warnings {
		if w.Severity.IsError() {
			out = append(out, w)
		}
	}
	return out
}
