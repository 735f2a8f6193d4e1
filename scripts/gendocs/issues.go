package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/varlint/pkg/core"
	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/lint/checks"
)

// generateIssueDocs writes the issue catalogue.
func generateIssueDocs(outDir string) error {
	log.Printf("Generating issue docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	issues := checks.BuiltinIssues()
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Category != issues[j].Category {
			return issues[i].Category < issues[j].Category
		}
		return issues[i].ID < issues[j].ID
	})

	if err := generateIssuesIndex(outDir, issues); err != nil {
		return err
	}
	log.Printf("  Generated index.md")
	return nil
}

func generateIssuesIndex(outDir string, issues []*lint.Issue) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Issues", "Checks varlint runs on every variant")
	w.GeneratedMarker()

	w.Header(1, "Issues")
	w.Paragraph(fmt.Sprintf("varlint ships **%d built-in issues**. External linters and Starlark script rules configured in `varlint.yaml` are added to these.", len(issues)))

	w.Header(2, "Severity Levels")
	var sevRows [][]string
	for _, sev := range []core.Severity{core.SeverityFatal, core.SeverityError, core.SeverityWarning, core.SeverityInformational, core.SeverityIgnore} {
		sevRows = append(sevRows, []string{InlineCode(sev.String()), severityDescriptions[sev]})
	}
	w.Table([]string{"Severity", "Description"}, sevRows)

	w.Header(2, "Configuration")
	w.Paragraph("Issues can be configured in `varlint.yaml`:")
	w.CodeBlock("yaml", `lint:
  disable: [TodoComment]        # turn issues off
  enable: [LongLine]            # turn on issues that are off by default
  severity:
    LongLine: error             # override severity
  rules:
    LongLine:
      max_length: 120           # issue-specific option`)

	w.Header(2, "Summary")
	var rows [][]string
	for _, issue := range issues {
		enabled := "yes"
		if !issue.EnabledByDefault {
			enabled = "no"
		}
		rows = append(rows, []string{
			fmt.Sprintf("[%s](#%s)", InlineCode(issue.ID), strings.ToLower(issue.ID)),
			issue.Category,
			InlineCode(issue.Severity.String()),
			enabled,
			cleanDescription(issue.Summary),
		})
	}
	w.Table([]string{"Issue", "Category", "Severity", "Enabled", "Summary"}, rows)

	current := ""
	for _, issue := range issues {
		if issue.Category != current {
			current = issue.Category
			w.Header(2, current)
		}
		writeIssueDoc(w, issue)
	}

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

var severityDescriptions = map[core.Severity]string{
	core.SeverityFatal:         "Blocks release builds; checked by " + InlineCode("--fatal-only"),
	core.SeverityError:         "Fails the run when " + InlineCode("abort_on_error") + " is set",
	core.SeverityWarning:       "Potential issue that should be reviewed",
	core.SeverityInformational: "Informational feedback",
	core.SeverityIgnore:        "Turned off",
}

// writeIssueDoc writes detailed documentation for a single issue.
func writeIssueDoc(w *MarkdownWriter, issue *lint.Issue) {
	w.Line(fmt.Sprintf("### %s {#%s}", issue.ID, strings.ToLower(issue.ID)))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s | **Priority:** %d/10 | **Applies to:** %s",
		InlineCode(issue.Severity.String()), issue.Priority, issue.Implementation.Scope))
	w.Newline()

	w.Paragraph(issue.Summary + ".")
	if issue.Explanation != "" {
		w.Paragraph(issue.Explanation)
	}
	if issue.PlatformOnly {
		w.Paragraph("Only checked for projects with variants.")
	}
	if !issue.EnabledByDefault {
		w.Paragraph("Off by default; add it to " + InlineCode("lint.enable") + ".")
	}
	if len(issue.Options) > 0 {
		w.Header(4, "Configuration")
		w.Paragraph(fmt.Sprintf("Options under %s: %s",
			InlineCode("lint.rules."+issue.ID), InlineCode(strings.Join(issue.Options, ", "))))
	}

	w.Line("---")
	w.Newline()
}
