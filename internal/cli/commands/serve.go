package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varlint/internal/reportserver"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port  int
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(version string) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lint reports over HTTP",
		Long: `Start a local web server listing the reports in the reports directory.

With --watch, source changes re-run lint and open report pages reload.`,
		Example: `  # Serve reports on the default port
  varlint serve

  # Re-run lint on changes
  varlint serve --watch --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, version, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", reportserver.DefaultPort))
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-run lint when source files change")

	return cmd
}

func runServe(cmd *cobra.Command, version string, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// CLI flags override config file
	port := cfg.Serve.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	if port == 0 {
		port = reportserver.DefaultPort
	}
	watching := cfg.Serve.Watch
	if cmd.Flags().Changed("watch") {
		watching = opts.Watch
	}

	serverCfg := reportserver.Config{
		ReportsDir: cfg.ReportsDir,
		Port:       port,
		Logger:     cmdCtx.Logger,
	}
	if watching {
		serverCfg.WatchDirs = []string{cfg.ProjectRoot}
		serverCfg.Extensions = cfg.Project.Extensions
		serverCfg.Relint = func(ctx context.Context, _ []string) error {
			return executeLint(ctx, cmd, cmdCtx, "", version, false, cfg.Lint)
		}
	}

	r.Printf("Serving reports from %s on http://localhost:%d\n", cfg.ReportsDir, port)
	r.Muted("Press Ctrl+C to stop")

	return reportserver.New(serverCfg).Serve(cmd.Context())
}
