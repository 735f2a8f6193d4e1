package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/varlint/internal/cli/output"
	"github.com/leapstack-labs/varlint/pkg/core"
)

// Validate checks the configuration for values that can never work.
func (c *Config) Validate() error {
	switch output.Mode(strings.ToLower(c.OutputFormat)) {
	case "", output.ModeAuto, output.ModeText, output.ModeMarkdown, output.ModeJSON, "md", "txt":
	default:
		return fmt.Errorf("invalid output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}

	if err := validateProject(&c.Project); err != nil {
		return fmt.Errorf("invalid project configuration: %w", err)
	}
	if c.Lint != nil {
		if err := validateLint(c.Lint); err != nil {
			return fmt.Errorf("invalid lint configuration: %w", err)
		}
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve.port %d", c.Serve.Port)
	}
	return nil
}

func validateProject(p *core.ProjectConfig) error {
	if !p.Platform && len(p.Variants) > 0 {
		return fmt.Errorf("variants require platform: true")
	}
	seen := make(map[string]bool, len(p.Variants))
	for i, v := range p.Variants {
		if v.Name == "" {
			return fmt.Errorf("variant %d has no name", i+1)
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate variant %q", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

func validateLint(l *core.LintOptions) error {
	for i, linter := range l.Linters {
		if linter.Name == "" {
			return fmt.Errorf("linter %d has no name", i+1)
		}
		if linter.Command == "" {
			return fmt.Errorf("linter %q has no command", linter.Name)
		}
	}
	if l.TextOutput == "" && l.TextReport {
		l.TextOutput = "stdout"
	}
	return nil
}
