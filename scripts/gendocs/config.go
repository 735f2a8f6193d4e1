package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/pkg/core"
)

// ConfigField is one key of varlint.yaml.
type ConfigField struct {
	Key     string
	Type    string
	Default string
	Section string
}

// fieldDescriptions documents keys whose name is not self-explanatory.
var fieldDescriptions = map[string]string{
	"reports_dir":                   "Directory reports are written to, relative to the project",
	"sdk_home":                      "SDK installation passed to external linters",
	"output":                        "CLI output format: auto, text, markdown, json",
	"project.platform":              "The project declares variants",
	"project.extensions":            "Source file extensions; empty means all files",
	"project.variants[].lint":       "Set to false to skip the variant in lint runs",
	"lint.abort_on_error":           "Fail the run when errors are found",
	"lint.check_release_builds":     "Run fatal-only checks for release builds",
	"lint.check_all_warnings":       "Also run issues that are off by default",
	"lint.check_only":               "Run exactly these issues",
	"lint.severity":                 "Issue ID to severity override",
	"lint.rules":                    "Issue ID to issue-specific options",
	"lint.baseline":                 "Baseline file of known findings",
	"lint.baseline_continue":        "Do not fail the run that creates the baseline",
	"lint.text_output":              "stdout, stderr or a file path",
	"lint.incremental":              "Lint only files changed in the git working tree",
	"lint.since":                    "Also lint files changed since this commit",
	"lint.changed_lines_only":       "Drop findings on unchanged lines",
	"lint.linters":                  "External commands whose output becomes findings",
	"lint.linters[].format":         "Regex with named groups file, line, col, message, code, severity",
	"lint.scripts":                  "Starlark rule files",
	"hook.enable":                   "Keep the pre-commit hook installed",
	"hook.args":                     "Extra arguments for the hook's lint call",
	"serve.watch":                   "Re-run lint on source changes while serving",
	"project.variants[].build_type": "Build type; defaults to the variant name",
	"project.variants[].release":    "The variant is a release build",
	"project.variants[].sources":    "Source sets added to the project sources",
	"project.variants[].resources":  "Resource sets added to the project resources",
	"lint.linters[].extensions":     "File extensions the linter is run on",
	"lint.linters[].severity":       "Severity of the linter's findings",
	"lint.linters[].command":        "Command line; the file path is appended",
	"lint.linters[].category":       "Category shown in reports",
	"lint.linters[].description":    "Summary shown in reports",
	"lint.linters[].name":           "Issue ID of the linter's findings",
	"project.variants[].name":       "Variant name, used on the command line",
	"project.build_file":            "Build file checked by build-file issues",
	"project.test_sources":          "Test source sets, checked with check_test_sources",
	"lint.check_test_sources":       "Also lint test sources",
	"lint.warnings_as_errors":       "Treat warnings as errors",
	"lint.ignore_warnings":          "Drop warnings from reports",
	"lint.explain_issues":           "Add explanations to the text report",
	"lint.absolute_paths":           "Print absolute paths in reports",
	"lint.show_all":                 "Do not truncate repeated findings",
	"lint.quiet":                    "Suppress progress and empty reports",
	"verbose":                       "Debug logging",
	"serve.port":                    "Report server port",
	"project.name":                  "Project name; defaults to the directory name",
	"project.sources":               "Source sets",
	"project.resources":             "Resource sets",
	"lint.disable":                  "Issue IDs to turn off",
	"lint.enable":                   "Issue IDs to turn on",
	"lint.html_report":              "Write an HTML report",
	"lint.xml_report":               "Write an XML report",
	"lint.json_report":              "Write a JSON report",
	"lint.sarif_report":             "Write a SARIF report",
	"lint.text_report":              "Write a text report",
	"lint.html_output":              "HTML report path",
	"lint.xml_output":               "XML report path",
	"lint.json_output":              "JSON report path",
	"lint.sarif_output":             "SARIF report path",
}

// configFields lists every varlint.yaml key with its default.
func configFields() []ConfigField {
	defaults := config.Config{
		ReportsDir:   config.DefaultReportsDir,
		OutputFormat: config.DefaultOutput,
		Lint:         core.DefaultLintOptions(),
		Serve:        config.ServeConfig{Port: config.DefaultServePort},
	}
	var fields []ConfigField
	walkConfig(reflect.ValueOf(defaults), "", &fields)
	return fields
}

func walkConfig(v reflect.Value, prefix string, fields *[]ConfigField) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + tag
		fv := v.Field(i)

		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				fv = reflect.Zero(fv.Type().Elem())
			} else {
				fv = fv.Elem()
			}
		}

		switch {
		case fv.Kind() == reflect.Struct:
			walkConfig(fv, key+".", fields)
			continue
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Struct:
			*fields = append(*fields, ConfigField{Key: key, Type: "list", Section: section(key)})
			walkConfig(reflect.Zero(fv.Type().Elem()), key+"[].", fields)
			continue
		}

		*fields = append(*fields, ConfigField{
			Key:     key,
			Type:    typeName(fv.Type()),
			Default: defaultValue(fv),
			Section: section(key),
		})
	}
}

func section(key string) string {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i]
	}
	return "general"
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice:
		return "list of " + typeName(t.Elem())
	case reflect.Map:
		return "map of " + typeName(t.Elem())
	case reflect.Interface:
		return "any"
	default:
		return t.Kind().String()
	}
}

func defaultValue(v reflect.Value) string {
	if v.IsZero() {
		return ""
	}
	return fmt.Sprint(v.Interface())
}

// generateConfigDocs writes the varlint.yaml reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "varlint.yaml reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("varlint reads `varlint.yaml` from the project directory or the nearest parent that has one. " +
		"`VARLINT_*` environment variables override the file and command-line flags override both.")
	w.Paragraph("Without a `lint` section the text report goes to stdout and HTML and XML reports are written to `reports_dir`. " +
		"Defaults in the lint table apply once the section is present.")

	titles := map[string]string{
		"general": "General",
		"project": "Project",
		"lint":    "Lint",
		"hook":    "Hook",
		"serve":   "Serve",
	}
	fields := configFields()
	for _, sec := range []string{"general", "project", "lint", "hook", "serve"} {
		var rows [][]string
		for _, f := range fields {
			if f.Section != sec {
				continue
			}
			def := "-"
			if f.Default != "" {
				def = InlineCode(f.Default)
			}
			rows = append(rows, []string{InlineCode(f.Key), f.Type, def, fieldDescriptions[f.Key]})
		}
		w.Header(2, titles[sec])
		w.Table([]string{"Key", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `project:
  platform: true
  sources: [src/main]
  variants:
    - name: debug
    - name: release
      release: true
lint:
  abort_on_error: true
  sarif_report: true
  severity:
    TodoComment: ignore`)

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}
