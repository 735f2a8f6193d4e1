package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varlint/internal/cli/output"
	"github.com/leapstack-labs/varlint/internal/hook"
)

// NewHookCommand creates the hook command.
func NewHookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the git pre-commit hook",
		Long: `Manage a git pre-commit hook that lints changed files before each commit.

The commit is allowed only when lint reports no issues. Only hooks written by
varlint are replaced or removed; use --force to replace another hook.`,
		Example: `  # Install the hook
  varlint hook install

  # Install or remove the hook as configured by hook.enable
  varlint hook sync`,
	}

	cmd.AddCommand(newHookInstallCommand())
	cmd.AddCommand(newHookRemoveCommand())
	cmd.AddCommand(newHookSyncCommand())
	cmd.AddCommand(newHookStatusCommand())

	return cmd
}

func newHookManager(cmd *cobra.Command, force bool) (*hook.Manager, *CommandContext, error) {
	cmdCtx := NewCommandContext(cmd)
	binary, err := os.Executable()
	if err != nil {
		binary = "varlint"
	}
	m, err := hook.NewManager(cmd.Context(), hook.Config{
		Binary:     binary,
		ProjectDir: cmdCtx.Cfg.ProjectRoot,
		Args:       cmdCtx.Cfg.Hook.Args,
		Force:      force,
	}, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	return m, cmdCtx, nil
}

func newHookInstallCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the pre-commit hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, cmdCtx, err := newHookManager(cmd, force)
			if err != nil {
				return err
			}
			path, err := m.Install(cmd.Context())
			if errors.Is(err, hook.ErrForeignHook) {
				return fmt.Errorf("%w; use --force to replace it", err)
			}
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success("Installed pre-commit hook at " + path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace a pre-commit hook not written by varlint")
	return cmd
}

func newHookRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the pre-commit hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, cmdCtx, err := newHookManager(cmd, false)
			if err != nil {
				return err
			}
			removed, err := m.Remove(cmd.Context())
			if err != nil {
				return err
			}
			if removed {
				cmdCtx.Renderer.Success("Removed pre-commit hook")
			} else {
				cmdCtx.Renderer.Muted("No varlint pre-commit hook installed")
			}
			return nil
		},
	}
}

func newHookSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Install or remove the hook according to hook.enable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, cmdCtx, err := newHookManager(cmd, false)
			if err != nil {
				return err
			}
			if err := m.Sync(cmd.Context(), cmdCtx.Cfg.Hook.Enable); err != nil {
				return err
			}
			st, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			cmdCtx.Renderer.StatusLine("pre-commit", hookStatusLevel(st), st.String())
			return nil
		},
	}
}

func newHookStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the pre-commit hook is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, cmdCtx, err := newHookManager(cmd, false)
			if err != nil {
				return err
			}
			st, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			path, err := m.Path(cmd.Context())
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]string{"status": st.String(), "path": path})
			}
			r.StatusLine("pre-commit", hookStatusLevel(st), st.String()+" ("+path+")")
			return nil
		},
	}
}

func hookStatusLevel(st hook.Status) string {
	switch st {
	case hook.StatusInstalled:
		return "success"
	case hook.StatusForeign:
		return "warning"
	default:
		return "skipped"
	}
}
