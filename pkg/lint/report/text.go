package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
)

// MaxPerIssue is the number of findings of a single issue the text report
// lists unless show_all is set.
const MaxPerIssue = 20

// Text writes findings in the compiler-style format
//
//	file:line: Severity: message [IssueID]
//
// to a writer or a file. Colour is only used when the writer is a terminal.
type Text struct {
	cfg          Config
	w            io.Writer
	file         *fileOutput
	writeStats   bool
	displayEmpty bool
}

// NewText returns a text reporter writing to w.
func NewText(cfg Config, w io.Writer) *Text {
	return &Text{cfg: cfg, w: w, writeStats: true, displayEmpty: true}
}

// NewTextFile returns a text reporter writing to path.
func NewTextFile(cfg Config, path string) *Text {
	out := newFileOutput(cfg, path, "text")
	return &Text{cfg: cfg, file: &out, writeStats: true, displayEmpty: true}
}

// NewTextOutput maps a configured output to a reporter: "stdout" and
// "stderr" select the given streams, anything else is a file path.
func NewTextOutput(cfg Config, output string, stdout, stderr io.Writer) *Text {
	switch output {
	case "", "stdout":
		if stdout == nil {
			stdout = os.Stdout
		}
		return NewText(cfg, stdout)
	case "stderr":
		if stderr == nil {
			stderr = os.Stderr
		}
		return NewText(cfg, stderr)
	default:
		return NewTextFile(cfg, output)
	}
}

// SetDisplayEmpty controls whether "No issues found." is printed for an
// empty finding set.
func (t *Text) SetDisplayEmpty(display bool) {
	t.displayEmpty = display
}

// SetWriteStats controls the trailing summary line.
func (t *Text) SetWriteStats(write bool) {
	t.writeStats = write
}

// Write renders the findings.
func (t *Text) Write(stats lint.Stats, warnings []*lint.Warning) error {
	if t.file != nil {
		return t.file.write(func(w io.Writer) error {
			return t.render(w, stats, warnings)
		})
	}
	return t.render(t.w, stats, warnings)
}

func (t *Text) render(w io.Writer, stats lint.Stats, warnings []*lint.Warning) error {
	if len(warnings) == 0 {
		if !t.displayEmpty {
			return nil
		}
		if stats.BaselineErrorCount+stats.BaselineWarningCount == 0 {
			_, err := fmt.Fprintln(w, "No issues found.")
			return err
		}
	}

	st := newTextStyles(lipgloss.NewRenderer(w))
	flags := t.cfg.flags()
	var b strings.Builder

	perIssue := make(map[string]int)
	omitted := make(map[string]int)
	explained := make(map[string]bool)
	for i, warning := range warnings {
		id := warning.ID()
		perIssue[id]++
		if !flags.ShowAll && perIssue[id] > MaxPerIssue {
			omitted[id]++
		} else {
			t.writeWarning(&b, st, warning)
		}

		last := i == len(warnings)-1 || warnings[i+1].ID() != id
		if !last {
			continue
		}
		if n := omitted[id]; n > 0 {
			fmt.Fprintf(&b, "%s\n", st.muted.Render(fmt.Sprintf(
				"   %d more %s findings omitted; set show_all to list them.", n, id)))
			omitted[id] = 0
		}
		if flags.ExplainIssues && !explained[id] && warning.Issue != nil && warning.Issue.Explanation != "" {
			explained[id] = true
			writeExplanation(&b, st, warning.Issue)
		}
	}

	if t.writeStats {
		b.WriteString(describeStats(stats, flags.BaselineFile))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *Text) writeWarning(b *strings.Builder, st textStyles, w *lint.Warning) {
	prefix := t.cfg.path(w.Location.File)
	if prefix != "" && w.Location.Line > 0 {
		prefix = fmt.Sprintf("%s:%d", prefix, w.Location.Line)
	}
	if prefix != "" {
		b.WriteString(st.bold.Render(prefix + ":"))
		b.WriteString(" ")
	}
	b.WriteString(st.severity(w.Severity).Render(w.Severity.Description() + ":"))
	fmt.Fprintf(b, " %s %s\n", w.Message, st.muted.Render("["+w.ID()+"]"))

	if w.ErrorLine != "" {
		line := strings.ReplaceAll(w.ErrorLine, "\t", "    ")
		fmt.Fprintf(b, "    %s\n", line)
		if w.Location.Column > 0 {
			col := caretColumn(w.ErrorLine, w.Location.Column)
			fmt.Fprintf(b, "    %s%s\n", strings.Repeat(" ", col), st.severity(w.Severity).Render("^"))
		}
	}
	if len(w.Variants) > 0 {
		fmt.Fprintf(b, "   Applies to variants: %s\n", strings.Join(w.Variants, ", "))
	}
}

// caretColumn maps a 1-based column to its display offset after tab
// expansion.
func caretColumn(line string, column int) int {
	col := 0
	for i, r := range line {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			col += 4
		} else {
			col++
		}
	}
	return col
}

func writeExplanation(b *strings.Builder, st textStyles, issue *lint.Issue) {
	fmt.Fprintf(b, "\n   %s\n", st.bold.Render(fmt.Sprintf("Explanation for issues of type %q:", issue.ID)))
	for _, line := range strings.Split(strings.TrimSpace(issue.Explanation), "\n") {
		fmt.Fprintf(b, "   %s\n", line)
	}
	b.WriteString("\n")
}

func describeStats(stats lint.Stats, baselineFile string) string {
	s := lint.DescribeCounts(stats.ErrorCount, stats.WarningCount, true, false)
	if n := stats.BaselineErrorCount + stats.BaselineWarningCount; n > 0 && baselineFile != "" {
		s += fmt.Sprintf(" (%s filtered by baseline %s)",
			lint.DescribeCounts(stats.BaselineErrorCount, stats.BaselineWarningCount, true, false), baselineFile)
	}
	return s
}

type textStyles struct {
	bold    lipgloss.Style
	muted   lipgloss.Style
	fatal   lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
}

func newTextStyles(r *lipgloss.Renderer) textStyles {
	return textStyles{
		bold:    r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		fatal:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		err:     r.NewStyle().Foreground(lipgloss.Color("9")),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		info:    r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (s textStyles) severity(sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityFatal:
		return s.fatal
	case core.SeverityError:
		return s.err
	case core.SeverityWarning:
		return s.warning
	default:
		return s.info
	}
}
