package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/internal/cli/output"
	"github.com/leapstack-labs/varlint/internal/hook"
	"github.com/leapstack-labs/varlint/internal/scm"
	"github.com/leapstack-labs/varlint/pkg/lint/checks"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the project setup",
		Long: `Check that varlint can lint this project as configured.

The doctor command reports:
- Project summary (variants, source, resource and test files)
- Setup checks grouped by category (Configuration, Tools, Repository, Reports)
- Health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run the checks
  varlint doctor

  # Output as JSON
  varlint doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	Name        string `json:"name"`
	Platform    bool   `json:"platform"`
	Variants    int    `json:"variants"`
	Sources     int    `json:"sources"`
	Resources   int    `json:"resources"`
	TestSources int    `json:"test_sources"`
	BuildFile   string `json:"build_file,omitempty"`
	Checks      int    `json:"checks"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	CheckID    string   `json:"check_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	summary, err := buildProjectSummary(cfg)
	if err != nil {
		return err
	}
	healthChecks := runHealthChecks(cmd.Context(), cfg)
	doctorOutput := buildDoctorOutput(summary, healthChecks)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

func buildDoctorOutput(summary ProjectSummary, healthChecks []HealthCheck) *DoctorOutput {
	sort.SliceStable(healthChecks, func(i, j int) bool {
		if healthChecks[i].Group != healthChecks[j].Group {
			return healthChecks[i].Group < healthChecks[j].Group
		}
		return healthChecks[i].CheckID < healthChecks[j].CheckID
	})

	issues := 0
	for _, c := range healthChecks {
		issues += c.IssueCount
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(healthChecks),
		Recommendations: generateRecommendations(healthChecks),
		IssueCount:      issues,
	}
}

func buildProjectSummary(cfg *config.Config) (ProjectSummary, error) {
	summary := ProjectSummary{
		Name:      cfg.Project.Name,
		Platform:  cfg.Project.Platform,
		Variants:  len(cfg.Project.Variants),
		BuildFile: cfg.Project.BuildFile,
	}

	inputs, err := project.NewResolver(cfg.ProjectRoot, cfg.Project).Inputs("")
	if err != nil {
		return summary, err
	}
	if inputs != nil {
		summary.Sources = len(inputs.Sources)
		summary.Resources = len(inputs.Resources)
		summary.TestSources = len(inputs.TestSources)
	}

	if cfg.Project.Platform {
		summary.Checks = len(checks.BuiltinIssues())
	} else {
		reg, err := checks.NewNonPlatformRegistry()
		if err != nil {
			return summary, err
		}
		summary.Checks = reg.Len()
	}
	return summary, nil
}

// runHealthChecks inspects the configuration and the environment it needs.
func runHealthChecks(ctx context.Context, cfg *config.Config) []HealthCheck {
	var result []HealthCheck
	add := func(id, name, group, failStatus string, details []string) {
		status := "pass"
		if len(details) > 0 {
			status = failStatus
		}
		result = append(result, HealthCheck{
			CheckID:    id,
			Name:       name,
			Group:      group,
			Status:     status,
			IssueCount: len(details),
			Details:    details,
		})
	}

	var details []string
	if config.GetConfigFileUsed() == "" {
		details = append(details, "no varlint.yaml found, using defaults")
	}
	add("CF01", "Configuration file", "configuration", "warn", details)

	add("CF02", "Source sets exist", "configuration", "warn", missingSourceSets(cfg))

	details = nil
	if bf := cfg.Project.BuildFile; bf != "" && !exists(filepath.Join(cfg.ProjectRoot, bf)) {
		details = append(details, "build file "+bf+" not found")
	}
	add("CF03", "Build file", "configuration", "warn", details)

	details = nil
	if cfg.Project.Platform {
		linted := 0
		for _, v := range cfg.Project.Variants {
			if v.IsLinted() {
				linted++
			}
		}
		switch {
		case len(cfg.Project.Variants) == 0:
			details = append(details, "platform project without variants")
		case linted == 0:
			details = append(details, "every variant sets lint: false")
		}
	}
	add("CF04", "Variants linted", "configuration", "warn", details)

	details = nil
	if cfg.Lint != nil {
		for _, l := range cfg.Lint.Linters {
			args, err := shlex.Split(l.Command)
			if err != nil || len(args) == 0 {
				details = append(details, fmt.Sprintf("linter %s: invalid command %q", l.Name, l.Command))
				continue
			}
			if _, err := exec.LookPath(args[0]); err != nil {
				details = append(details, fmt.Sprintf("linter %s: %s not found on PATH", l.Name, args[0]))
			}
		}
	}
	add("TL01", "External linters available", "tools", "error", details)

	details = nil
	if cfg.Lint != nil {
		for _, s := range cfg.Lint.Scripts {
			if _, err := checks.LoadScript(resolvePath(cfg.ProjectRoot, s)); err != nil {
				details = append(details, err.Error())
			}
		}
	}
	add("TL02", "Script rules load", "tools", "error", details)

	details = nil
	if cfg.SDKHome != "" {
		if info, err := os.Stat(cfg.SDKHome); err != nil || !info.IsDir() {
			details = append(details, "sdk_home "+cfg.SDKHome+" is not a directory")
		}
	}
	add("TL03", "SDK home", "tools", "error", details)

	details = nil
	git, err := scm.NewGit(ctx, cfg.ProjectRoot)
	if err != nil {
		details = append(details, "not a git repository; --changed and the pre-commit hook are unavailable")
	}
	add("RP01", "Git repository", "repository", "warn", details)

	details = nil
	if git != nil && cfg.Hook.Enable {
		m, err := hook.NewManager(ctx, hook.Config{ProjectDir: cfg.ProjectRoot}, nil)
		if err == nil {
			st, err := m.Status(ctx)
			switch {
			case err != nil:
				details = append(details, err.Error())
			case st == hook.StatusMissing:
				details = append(details, "hook.enable is set but no pre-commit hook is installed")
			case st == hook.StatusForeign:
				details = append(details, "pre-commit hook was not installed by varlint")
			}
		}
	}
	add("RP02", "Pre-commit hook", "repository", "warn", details)

	details = nil
	if cfg.Lint != nil && cfg.Lint.Baseline != "" {
		if !exists(resolvePath(cfg.ProjectRoot, cfg.Lint.Baseline)) {
			details = append(details, "baseline "+cfg.Lint.Baseline+" does not exist yet; the next lint run creates it and fails")
		}
	}
	add("RP03", "Baseline", "repository", "warn", details)

	details = nil
	if err := checkWritable(cfg.ReportsDir); err != nil {
		details = append(details, err.Error())
	}
	add("RE01", "Reports directory writable", "reports", "error", details)

	return result
}

func missingSourceSets(cfg *config.Config) []string {
	var missing []string
	check := func(kind string, paths []string) {
		for _, p := range paths {
			if !exists(filepath.Join(cfg.ProjectRoot, p)) {
				missing = append(missing, kind+" "+p+" not found")
			}
		}
	}
	check("sources", cfg.Project.Sources)
	check("resources", cfg.Project.Resources)
	check("test_sources", cfg.Project.TestSources)
	for _, v := range cfg.Project.Variants {
		check(v.Name+" sources", v.Sources)
		check(v.Name+" resources", v.Resources)
	}
	return missing
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// checkWritable reports whether reports can be created in dir. A missing
// directory is fine when its nearest existing parent is writable.
func checkWritable(dir string) error {
	probe := dir
	for {
		info, err := os.Stat(probe)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", probe)
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return fmt.Errorf("no existing parent for %s", dir)
		}
		probe = parent
	}
	f, err := os.CreateTemp(probe, ".varlint-doctor-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", probe, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// calculateHealthScore computes a health score from 0-100.
// Warnings cost 10 points per finding and errors 20.
func calculateHealthScore(results []HealthCheck) int {
	score := 100
	for _, check := range results {
		switch check.Status {
		case "error":
			score -= check.IssueCount * 20
		case "warn":
			score -= check.IssueCount * 10
		}
	}
	return max(score, 0)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(results []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range results {
		if check.IssueCount == 0 {
			continue
		}
		rec := getRecommendation(check.CheckID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	// Limit to top 5 recommendations
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

func getRecommendation(checkID string) string {
	switch checkID {
	case "CF01":
		return "Run 'varlint init' to create a varlint.yaml"
	case "CF02":
		return "Point project.sources and project.resources at existing directories"
	case "CF03":
		return "Fix project.build_file or remove it"
	case "CF04":
		return "Declare variants under project.variants and leave at least one linted"
	case "TL01":
		return "Install the missing external linters or remove them from lint.linters"
	case "TL02":
		return "Fix the script rules listed under lint.scripts"
	case "TL03":
		return "Set sdk_home or VARLINT_SDK_HOME to an existing directory"
	case "RP01":
		return "Run 'git init' to enable incremental lint"
	case "RP02":
		return "Run 'varlint hook sync' to install the pre-commit hook"
	case "RP03":
		return "Run 'varlint lint --continue-after-baseline' once to record the baseline"
	case "RE01":
		return "Choose a writable reports_dir"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("varlint Project Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Header2.Render("Project Summary"))
	r.Printf("   Project: %s | Platform: %t | Variants: %d\n", out.Summary.Name, out.Summary.Platform, out.Summary.Variants)
	r.Printf("   Sources: %d | Resources: %d | Tests: %d | Checks: %d\n",
		out.Summary.Sources, out.Summary.Resources, out.Summary.TestSources, out.Summary.Checks)
	r.Println("")

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		status := "success"
		switch check.Status {
		case "warn":
			status = "warning"
		case "error":
			status = "error"
		}
		r.StatusLine(check.CheckID+": "+check.Name, status, "")

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# varlint Project Health Report")
	r.Println("")

	r.Println("## Project Summary")
	r.Println("")
	r.Println(output.FormatKeyValue("Project", out.Summary.Name))
	r.Println(output.FormatKeyValue("Platform", fmt.Sprint(out.Summary.Platform)))
	r.Println(output.FormatKeyValue("Variants", fmt.Sprint(out.Summary.Variants)))
	r.Println(output.FormatKeyValue("Sources", fmt.Sprint(out.Summary.Sources)))
	r.Println(output.FormatKeyValue("Resources", fmt.Sprint(out.Summary.Resources)))
	r.Println(output.FormatKeyValue("Test sources", fmt.Sprint(out.Summary.TestSources)))
	r.Println(output.FormatKeyValue("Checks", fmt.Sprint(out.Summary.Checks)))
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s: %s", status, check.CheckID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
