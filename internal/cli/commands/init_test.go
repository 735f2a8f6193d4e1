package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/internal/cli/config"
	"github.com/leapstack-labs/varlint/pkg/lint/checks"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			args:      []string{},
			wantFiles: []string{"varlint.yaml", ".gitignore"},
		},
		{
			name:      "init platform project",
			args:      []string{"--platform"},
			wantFiles: []string{"varlint.yaml", ".gitignore", "rules/no_println.star"},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "varlint.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "varlint.yaml"), []byte("existing"), 0600)
			},
			args:      []string{"--force"},
			wantFiles: []string{"varlint.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(tmpDir, f))
				assert.NoError(t, err, "expected %q to exist", f)
			}
			assert.NotContains(t, buf.String(), "gitignore\n", "gitignore should be listed as .gitignore")
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("force"))
	assert.NotNil(t, cmd.Flags().Lookup("platform"))
}

func TestInit_IntoDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"app"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join("app", "varlint.yaml"))
	assert.NoError(t, err)
}

func TestInitCreatesValidConfig(t *testing.T) {
	for _, name := range []string{"minimal", "platform"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			config.ResetConfig()
			t.Cleanup(config.ResetConfig)

			args := []string{}
			if name == "platform" {
				args = append(args, "--platform")
			}
			cmd := NewInitCommand()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			cmd.SetArgs(args)
			require.NoError(t, cmd.Execute())

			cfg, err := config.LoadConfig("", nil)
			require.NoError(t, err)
			assert.Equal(t, filepath.Base(dir), cfg.Project.Name)
			require.NotNil(t, cfg.Lint)
			assert.True(t, cfg.Lint.AbortOnError)

			if name == "platform" {
				assert.True(t, cfg.Project.Platform)
				assert.Len(t, cfg.Project.Variants, 2)
				issues, err := checks.LoadScripts([]string{filepath.Join(dir, cfg.Lint.Scripts[0])})
				require.NoError(t, err)
				assert.Equal(t, "NoPrintln", issues[0].ID)
			}
		})
	}
}
