package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var platform bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a varlint.yaml for a project",
		Long: `Create a varlint.yaml configuration in the project directory.

Use --platform for a project with build variants. It also adds an example
script rule under rules/.`,
		Example: `  # Initialize in current directory
  varlint init

  # Initialize a project with debug and release variants
  varlint init --platform

  # Force overwrite existing config
  varlint init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

			name := "minimal"
			if platform {
				name = "platform"
			}
			return runInit(r, dir, name, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&platform, "platform", false, "Configure debug and release variants")

	return cmd
}

func runInit(r *output.Renderer, dir, templateName string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.DefaultConfigFile)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.DefaultConfigFile)
	}

	if err := copyTemplate(templateName, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles(templateName)
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("varlint project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point project.sources and project.resources at your code")
	r.Println("  2. Run 'varlint lint' to check the project")
	r.Println("  3. Run 'varlint issues' to see what is checked")
	r.Println("  4. Run 'varlint hook install' to lint before each commit")

	return nil
}
