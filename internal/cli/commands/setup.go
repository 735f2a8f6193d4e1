package commands

import (
	"log/slog"
	"os"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/internal/cli/output"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return &config.Config{
		ProjectRoot:  root,
		ReportsDir:   getEnvOrDefault("VARLINT_REPORTS_DIR", config.DefaultReportsDir),
		SDKHome:      os.Getenv("VARLINT_SDK_HOME"),
		Verbose:      os.Getenv("VARLINT_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("VARLINT_OUTPUT", config.DefaultOutput),
		Serve:        config.ServeConfig{Port: config.DefaultServePort},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
