package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/internal/cli/output"
	"github.com/leapstack-labs/varlint/pkg/lint"
	"github.com/leapstack-labs/varlint/pkg/lint/checks"
)

// IssuesOptions holds options for the issues command.
type IssuesOptions struct {
	Platform    bool   // Show the platform registry
	NonPlatform bool   // Show the non-platform registry
	Category    string // Filter by category
	Verbose     bool   // Show explanations
	Format      string // Output format
}

// NewIssuesCommand creates the issues command.
func NewIssuesCommand() *cobra.Command {
	opts := &IssuesOptions{}
	cmd := &cobra.Command{
		Use:   "issues [issue-id]",
		Short: "List the issues lint can report",
		Long: `List every issue lint can report, including external linters and
script rules configured in varlint.yaml.

By default all built-in issues are shown. --platform and --non-platform show
the registry used for projects with and without variants.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all issues
  varlint issues

  # Explain one issue
  varlint issues StopShip

  # Issues checked for projects without variants
  varlint issues --non-platform

  # Output as JSON
  varlint issues --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Platform && opts.NonPlatform {
				return fmt.Errorf("--platform and --non-platform are mutually exclusive")
			}
			if len(args) > 0 {
				return showIssue(cmd, args[0], opts)
			}
			return listIssues(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Platform, "platform", false, "Show issues checked for projects with variants")
	cmd.Flags().BoolVar(&opts.NonPlatform, "non-platform", false, "Show issues checked for projects without variants")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Filter by category")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show explanations")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

// issueRegistry builds the selected registry with the configured extra issues.
func issueRegistry(cfg *config.Config, opts *IssuesOptions) (*lint.Registry, error) {
	var extra []*lint.Issue
	if cfg.Lint != nil {
		linters, err := checks.CommandIssues(cfg.Lint.Linters)
		if err != nil {
			return nil, err
		}
		scripts := make([]string, len(cfg.Lint.Scripts))
		for i, s := range cfg.Lint.Scripts {
			scripts[i] = resolvePath(cfg.ProjectRoot, s)
		}
		rules, err := checks.LoadScripts(scripts)
		if err != nil {
			return nil, err
		}
		extra = append(linters, rules...)
	}

	switch {
	case opts.Platform:
		return checks.NewPlatformRegistry(extra...)
	case opts.NonPlatform:
		return checks.NewNonPlatformRegistry(extra...)
	default:
		return checks.NewBuiltinRegistry(extra...)
	}
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func issuesRenderer(cmd *cobra.Command, r *output.Renderer, format string) *output.Renderer {
	if format != "" {
		return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	}
	return r
}

func listIssues(cmd *cobra.Command, opts *IssuesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := issuesRenderer(cmd, cmdCtx.Renderer, opts.Format)

	registry, err := issueRegistry(cmdCtx.Cfg, opts)
	if err != nil {
		return err
	}

	var issues []*lint.Issue
	for _, issue := range registry.Issues() {
		if opts.Category != "" && !strings.EqualFold(issue.Category, opts.Category) {
			continue
		}
		issues = append(issues, issue)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Category != issues[j].Category {
			return issues[i].Category < issues[j].Category
		}
		if issues[i].Priority != issues[j].Priority {
			return issues[i].Priority > issues[j].Priority
		}
		return issues[i].ID < issues[j].ID
	})

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listIssuesJSON(r, issues)
	case output.ModeMarkdown:
		return listIssuesMarkdown(r, issues, opts.Verbose)
	default:
		return listIssuesText(r, issues, opts.Verbose)
	}
}

func showIssue(cmd *cobra.Command, id string, opts *IssuesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := issuesRenderer(cmd, cmdCtx.Renderer, opts.Format)

	registry, err := issueRegistry(cmdCtx.Cfg, opts)
	if err != nil {
		return err
	}
	issue, ok := registry.Issue(id)
	if !ok {
		return fmt.Errorf("issue %q not found", id)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(toIssueJSON(issue))
	case output.ModeMarkdown:
		return showIssueMarkdown(r, issue)
	default:
		return showIssueText(r, issue)
	}
}

var titleCase = cases.Title(language.English)

func listIssuesText(r *output.Renderer, issues []*lint.Issue, verbose bool) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Lint Issues (%d)", len(issues))))
	r.Println("")

	current := ""
	for _, issue := range issues {
		if issue.Category != current {
			current = issue.Category
			r.Println(styles.Bold.Render("  " + titleCase.String(current)))
		}
		line := fmt.Sprintf("    %s  %s - %s",
			styles.Muted.Render(issue.ID),
			issue.Summary,
			styles.Severity(issue.Severity).Render(issue.Severity.String()),
		)
		if !issue.EnabledByDefault {
			line += styles.Muted.Render(" (disabled by default)")
		}
		r.Println(line)
		if verbose && issue.Explanation != "" {
			r.Println(styles.Muted.Render("        " + issue.Explanation))
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'varlint issues <issue-id>' for the full explanation"))
	r.Println("")
	return nil
}

func listIssuesMarkdown(r *output.Renderer, issues []*lint.Issue, verbose bool) error {
	r.Println(output.FormatHeader(1, "Lint Issues"))
	r.Println("")

	current := ""
	for _, issue := range issues {
		if issue.Category != current {
			current = issue.Category
			r.Println(output.FormatHeader(2, titleCase.String(current)))
			r.Println("")
		}
		r.Printf("- **%s** - %s (`%s`)\n", issue.ID, issue.Summary, issue.Severity.String())
		if verbose && issue.Explanation != "" {
			r.Println("  > " + issue.Explanation)
		}
	}
	r.Println("")
	return nil
}

// IssueJSON is the JSON form of an issue.
type IssueJSON struct {
	ID               string   `json:"id"`
	Summary          string   `json:"summary"`
	Explanation      string   `json:"explanation,omitempty"`
	Category         string   `json:"category"`
	Priority         int      `json:"priority"`
	Severity         string   `json:"severity"`
	EnabledByDefault bool     `json:"enabled_by_default"`
	PlatformOnly     bool     `json:"platform_only,omitempty"`
	Scope            string   `json:"scope"`
	Options          []string `json:"options,omitempty"`
}

// IssuesJSONOutput is the JSON output structure for issue listings.
type IssuesJSONOutput struct {
	Issues []IssueJSON `json:"issues"`
	Count  int         `json:"count"`
}

func toIssueJSON(issue *lint.Issue) IssueJSON {
	return IssueJSON{
		ID:               issue.ID,
		Summary:          issue.Summary,
		Explanation:      issue.Explanation,
		Category:         issue.Category,
		Priority:         issue.Priority,
		Severity:         issue.Severity.String(),
		EnabledByDefault: issue.EnabledByDefault,
		PlatformOnly:     issue.PlatformOnly,
		Scope:            issue.Implementation.Scope.String(),
		Options:          issue.Options,
	}
}

func listIssuesJSON(r *output.Renderer, issues []*lint.Issue) error {
	out := IssuesJSONOutput{Issues: make([]IssueJSON, 0, len(issues)), Count: len(issues)}
	for _, issue := range issues {
		out.Issues = append(out.Issues, toIssueJSON(issue))
	}
	return r.JSON(out)
}

func showIssueText(r *output.Renderer, issue *lint.Issue) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", issue.ID, issue.Summary)))
	r.Println("")
	r.Printf("  %s: %s\n", styles.Bold.Render("Category"), issue.Category)
	r.Printf("  %s: %d/10\n", styles.Bold.Render("Priority"), issue.Priority)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), styles.Severity(issue.Severity).Render(issue.Severity.Description()))
	r.Printf("  %s: %s\n", styles.Bold.Render("Scope"), issue.Implementation.Scope)
	if !issue.EnabledByDefault {
		r.Printf("  %s: %s\n", styles.Bold.Render("Enabled"), "no, add it to lint.enable")
	}
	r.Println("")

	if issue.Explanation != "" {
		r.Println(styles.Bold.Render("Explanation"))
		r.Println("  " + issue.Explanation)
		r.Println("")
	}
	if len(issue.Options) > 0 {
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options under lint.rules.%s: %s\n", issue.ID, strings.Join(issue.Options, ", "))
		r.Println("")
	}
	return nil
}

func showIssueMarkdown(r *output.Renderer, issue *lint.Issue) error {
	r.Printf("# %s - %s\n\n", issue.ID, issue.Summary)
	r.Printf("**Category:** %s | **Priority:** %d/10 | **Severity:** `%s`\n\n",
		issue.Category, issue.Priority, issue.Severity.String())
	if issue.Explanation != "" {
		r.Println(issue.Explanation)
		r.Println("")
	}
	if len(issue.Options) > 0 {
		r.Println(output.FormatHeader(2, "Configuration"))
		r.Println("")
		r.Printf("Options: `%s`\n", strings.Join(issue.Options, "`, `"))
		r.Println("")
	}
	return nil
}
