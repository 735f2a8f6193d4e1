package report

import (
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/varlint/pkg/lint"
)

// HTML writes a standalone HTML page grouping findings by category and issue.
type HTML struct {
	fileOutput
}

// NewHTML returns an HTML reporter writing to path.
func NewHTML(cfg Config, path string) *HTML {
	return &HTML{fileOutput: newFileOutput(cfg, path, "HTML")}
}

// Write renders the page.
func (h *HTML) Write(stats lint.Stats, warnings []*lint.Warning) error {
	page := h.page(stats, warnings)
	return h.write(func(w io.Writer) error {
		return htmlTemplate.Execute(w, page)
	})
}

type htmlPage struct {
	Title     string
	Project   string
	Variant   string
	Version   string
	RunID     string
	Generated string
	Summary   string
	Baseline  string
	Empty     bool
	ShowAll   bool
	Explain   bool
	Groups    []htmlCategory
}

type htmlCategory struct {
	Name   string
	Issues []htmlIssue
}

type htmlIssue struct {
	ID          string
	Summary     string
	Explanation string
	Severity    string
	Class       string
	Priority    int
	Count       int
	Findings    []htmlFinding
	Hidden      int
}

type htmlFinding struct {
	Location  string
	Message   string
	ErrorLine string
	Variants  string
}

// htmlSplitLimit is the number of findings per issue shown unless show_all is set.
const htmlSplitLimit = 8

func (h *HTML) page(stats lint.Stats, warnings []*lint.Warning) htmlPage {
	flags := h.cfg.flags()
	title := cases.Title(language.English)

	name := h.cfg.Project
	if name == "" {
		name = "project"
	}
	p := htmlPage{
		Title:     "Lint Report: " + title.String(name),
		Project:   name,
		Variant:   h.cfg.Variant,
		Version:   h.cfg.Version,
		RunID:     h.cfg.RunID,
		Generated: time.Now().Format(time.RFC1123),
		Summary:   lint.DescribeCounts(stats.ErrorCount, stats.WarningCount, false, true),
		Empty:     len(warnings) == 0,
		ShowAll:   flags.ShowAll,
		Explain:   flags.ExplainIssues,
	}
	if n := stats.BaselineErrorCount + stats.BaselineWarningCount; n > 0 {
		p.Baseline = lint.DescribeCounts(stats.BaselineErrorCount, stats.BaselineWarningCount, false, false) +
			" filtered by the baseline"
	}

	categories := make(map[string]*htmlCategory)
	issues := make(map[string]*htmlIssue)
	var order []string
	for _, w := range warnings {
		id := w.ID()
		issue, ok := issues[id]
		if !ok {
			category := "General"
			issue = &htmlIssue{ID: id, Severity: w.Severity.Description(), Class: w.Severity.String()}
			if w.Issue != nil {
				issue.Summary = w.Issue.Summary
				issue.Explanation = strings.TrimSpace(w.Issue.Explanation)
				issue.Priority = w.Issue.Priority
				if w.Issue.Category != "" {
					category = w.Issue.Category
				}
			}
			issues[id] = issue
			category = title.String(category)
			if _, ok := categories[category]; !ok {
				categories[category] = &htmlCategory{Name: category}
				order = append(order, category)
			}
			categories[category].Issues = append(categories[category].Issues, htmlIssue{ID: id})
		}
		issue.Count++
		if !flags.ShowAll && len(issue.Findings) >= htmlSplitLimit {
			issue.Hidden++
			continue
		}
		issue.Findings = append(issue.Findings, htmlFinding{
			Location:  w.Location.String(),
			Message:   w.Message,
			ErrorLine: w.ErrorLine,
			Variants:  strings.Join(w.Variants, ", "),
		})
	}

	sort.Strings(order)
	for _, cat := range order {
		c := categories[cat]
		for i := range c.Issues {
			c.Issues[i] = *issues[c.Issues[i].ID]
		}
		p.Groups = append(p.Groups, *c)
	}
	return p
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.6rem; }
h2 { font-size: 1.25rem; border-bottom: 1px solid #ddd; padding-bottom: .25rem; }
.meta { color: #666; font-size: .9rem; }
.issue { margin: 1rem 0 1.5rem; }
.badge { display: inline-block; padding: 0 .5rem; border-radius: .25rem; color: #fff; font-size: .8rem; }
.fatal, .error { background: #c62828; }
.warning { background: #ef6c00; }
.informational { background: #1565c0; }
.location { font-family: monospace; }
pre { background: #f6f8fa; padding: .5rem; overflow-x: auto; }
.hidden-note { color: #666; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">
{{- if .Variant}}Variant {{.Variant}} · {{end -}}
{{- if .Version}}varlint {{.Version}} · {{end -}}
Generated {{.Generated}}{{if .RunID}} · run {{.RunID}}{{end}}
</p>
<p><strong>{{.Summary}}</strong>{{if .Baseline}} ({{.Baseline}}){{end}}</p>
{{- if .Empty}}
<p>Congratulations! No issues found.</p>
{{- end}}
{{- range .Groups}}
<h2>{{.Name}}</h2>
{{- range .Issues}}
<div class="issue" id="{{.ID}}">
<h3><span class="badge {{.Class}}">{{.Severity}}</span> {{.ID}}: {{.Summary}} ({{.Count}})</h3>
{{- range .Findings}}
<p><span class="location">{{.Location}}</span>: {{.Message}}{{if .Variants}} <em>(variants: {{.Variants}})</em>{{end}}</p>
{{- if .ErrorLine}}
<pre>{{.ErrorLine}}</pre>
{{- end}}
{{- end}}
{{- if .Hidden}}
<p class="hidden-note">{{.Hidden}} more findings not shown; set show_all to list them.</p>
{{- end}}
{{- if and $.Explain .Explanation}}
<details><summary>Explanation</summary><p>{{.Explanation}}</p></details>
{{- end}}
</div>
{{- end}}
{{- end}}
</body>
</html>
`))
