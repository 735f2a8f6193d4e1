package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/pkg/core"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"VARLINT_LINT_BASELINE_CONTINUE", "lint.baseline_continue"},
		{"VARLINT_LINT_QUIET", "lint.quiet"},
		{"VARLINT_HOOK_ENABLE", "hook.enable"},
		{"VARLINT_SERVE_PORT", "serve.port"},
		{"VARLINT_PROJECT_NAME", "project.name"},
		{"VARLINT_REPORTS_DIR", "reports_dir"},
		{"VARLINT_SDK_HOME", "sdk_home"},
		{"VARLINT_VERBOSE", "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.env))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Nil(t, cfg.Lint, "no lint section means nil options")
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultServePort, cfg.Serve.Port)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultReportsDir), cfg.ReportsDir)
	assert.Equal(t, filepath.Base(cfg.ProjectRoot), cfg.Project.Name)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, `
reports_dir: out/reports
sdk_home: /opt/sdk
project:
  name: shop
  platform: true
  sources: [src/main]
  variants:
    - name: debug
      build_type: debug
    - name: release
      build_type: release
      release: true
      lint: false
lint:
  quiet: true
  disable: [TodoComment]
  severity:
    TrailingWhitespace: error
  rules:
    LongLine:
      max_length: 80
hook:
  enable: true
  args: ["--since", "origin/main"]
`)
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultConfigFile), GetConfigFileUsed())
	assert.Equal(t, "shop", cfg.Project.Name)
	assert.True(t, cfg.Project.Platform)
	require.Len(t, cfg.Project.Variants, 2)
	assert.True(t, cfg.Project.Variants[0].IsLinted())
	assert.False(t, cfg.Project.Variants[1].IsLinted())
	assert.Equal(t, "/opt/sdk", cfg.SDKHome)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "out/reports"), cfg.ReportsDir)

	require.NotNil(t, cfg.Lint)
	assert.True(t, cfg.Lint.Quiet)
	assert.True(t, cfg.Lint.AbortOnError, "unset fields keep their defaults")
	assert.True(t, cfg.Lint.HTMLReport)
	assert.Equal(t, "stdout", cfg.Lint.TextOutput)
	assert.Equal(t, []string{"TodoComment"}, cfg.Lint.Disable)
	assert.Equal(t, "error", cfg.Lint.Severity["TrailingWhitespace"])
	assert.EqualValues(t, 80, cfg.Lint.Rules["LongLine"]["max_length"])

	assert.True(t, cfg.Hook.Enable)
	assert.Equal(t, []string{"--since", "origin/main"}, cfg.Hook.Args)
}

func TestLoadConfig_UpwardSearch(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "project:\n  name: upward\n")
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "upward", cfg.Project.Name)

	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project:\n  name: custom\n"), 0o644))
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Project.Name)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadConfig_Env(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "lint:\n  baseline: lint-baseline.xml\n")
	t.Chdir(dir)
	t.Setenv("VARLINT_LINT_BASELINE_CONTINUE", "true")
	t.Setenv("VARLINT_OUTPUT", "json")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Lint)
	assert.True(t, cfg.Lint.BaselineContinue)
	assert.Equal(t, "lint-baseline.xml", cfg.Lint.Baseline)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "output: text\nreports_dir: from-file\n")
	t.Chdir(dir)
	t.Setenv("VARLINT_REPORTS_DIR", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.String("reports-dir", "", "")
	flags.String("project-dir", "", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--reports-dir", "/tmp/flag-reports", "--verbose"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flag-reports", cfg.ReportsDir)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "text", cfg.OutputFormat, "unchanged flags do not override")
}

func TestLoadConfig_ProjectDirFlag(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "project:\n  name: flagged\n")
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--project-dir", dir}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "flagged", cfg.Project.Name)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "sdk_home: ${TEST_SDK_ROOT}/sdk\n")
	t.Chdir(dir)
	t.Setenv("TEST_SDK_ROOT", "/opt")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/opt/sdk", cfg.SDKHome)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "project: [unclosed\n")
	t.Chdir(dir)

	_, err := LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		errSubstr string
	}{
		{name: "valid", cfg: Config{OutputFormat: "auto"}},
		{name: "bad output", cfg: Config{OutputFormat: "yaml"}, errSubstr: "invalid output format"},
		{
			name:      "variants without platform",
			cfg:       Config{Project: ProjectConfig{Variants: []VariantConfig{{Name: "debug"}}}},
			errSubstr: "variants require platform",
		},
		{
			name: "duplicate variant",
			cfg: Config{Project: ProjectConfig{Platform: true, Variants: []VariantConfig{
				{Name: "debug"}, {Name: "debug"},
			}}},
			errSubstr: `duplicate variant "debug"`,
		},
		{
			name:      "unnamed variant",
			cfg:       Config{Project: ProjectConfig{Platform: true, Variants: []VariantConfig{{}}}},
			errSubstr: "variant 1 has no name",
		},
		{
			name:      "linter without command",
			cfg:       Config{Lint: &LintOptions{Linters: []core.LinterConfig{{Name: "vet"}}}},
			errSubstr: `linter "vet" has no command`,
		},
		{name: "bad port", cfg: Config{Serve: ServeConfig{Port: 70000}}, errSubstr: "invalid serve.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("VARLINT_TEST_VALUE", "x")
	assert.Equal(t, "a/x/b", expandEnvVars("a/${VARLINT_TEST_VALUE}/b"))
	assert.Equal(t, "${VARLINT_TEST_UNSET}", expandEnvVars("${VARLINT_TEST_UNSET}"))
}
