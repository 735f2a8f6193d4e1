package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varlint/internal/cli/testutil"
)

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{"no checks returns 100", nil, 100},
		{
			name: "all passing returns 100",
			checks: []HealthCheck{
				{CheckID: "CF01", Status: "pass"},
				{CheckID: "CF02", Status: "pass"},
			},
			want: 100,
		},
		{
			name: "warnings reduce score",
			checks: []HealthCheck{
				{CheckID: "CF01", Status: "pass"},
				{CheckID: "CF02", Status: "warn", IssueCount: 2},
			},
			want: 80,
		},
		{
			name:   "errors reduce score more",
			checks: []HealthCheck{{CheckID: "TL01", Status: "error", IssueCount: 2}},
			want:   60,
		},
		{
			name: "many issues clamp to 0",
			checks: []HealthCheck{
				{CheckID: "TL01", Status: "error", IssueCount: 20},
				{CheckID: "TL02", Status: "error", IssueCount: 20},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks))
		})
	}
}

func TestGetRecommendation(t *testing.T) {
	for _, id := range []string{"CF01", "CF02", "CF03", "CF04", "TL01", "TL02", "TL03", "RP01", "RP02", "RP03", "RE01"} {
		assert.NotEmpty(t, getRecommendation(id), "expected recommendation for %s", id)
	}
	assert.Empty(t, getRecommendation("UNKNOWN"))
}

func TestGenerateRecommendations(t *testing.T) {
	results := []HealthCheck{
		{CheckID: "CF01", Status: "warn", IssueCount: 1},
		{CheckID: "TL01", Status: "error", IssueCount: 2},
		{CheckID: "RP01", Status: "pass"},
	}

	recommendations := generateRecommendations(results)
	require.Len(t, recommendations, 2)
	assert.Contains(t, recommendations[0], "varlint init")
	assert.Contains(t, recommendations[1], "external linters")
}

func TestGenerateRecommendations_LimitTo5(t *testing.T) {
	var results []HealthCheck
	for _, id := range []string{"CF01", "CF02", "CF03", "CF04", "TL01", "TL02", "TL03", "RP01"} {
		results = append(results, HealthCheck{CheckID: id, Status: "warn", IssueCount: 1})
	}
	assert.Len(t, generateRecommendations(results), 5)
}

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, checkWritable(dir))
	assert.NoError(t, checkWritable(dir+"/build/reports"))

	testutil.WriteFiles(t, dir, map[string]string{"file": "x"})
	assert.Error(t, checkWritable(dir+"/file"))
}

func runDoctorJSON(t *testing.T) DoctorOutput {
	t.Helper()
	stdout, _, err := execute(t, NewDoctorCommand(), "--format", "json")
	require.NoError(t, err)
	var out DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	return out
}

func findCheck(t *testing.T, out DoctorOutput, id string) HealthCheck {
	t.Helper()
	for _, c := range out.HealthChecks {
		if c.CheckID == id {
			return c
		}
	}
	t.Fatalf("check %s not reported", id)
	return HealthCheck{}
}

func TestDoctor_HealthyProject(t *testing.T) {
	loadProject(t, testutil.SetupTestProject(t))

	out := runDoctorJSON(t)
	assert.Equal(t, "shop", out.Summary.Name)
	assert.True(t, out.Summary.Platform)
	assert.Equal(t, 2, out.Summary.Variants)
	assert.Equal(t, 1, out.Summary.Sources)
	assert.Equal(t, 1, out.Summary.Resources)
	assert.Positive(t, out.Summary.Checks)

	for _, id := range []string{"CF01", "CF02", "CF03", "CF04", "TL01", "TL02", "TL03", "RE01"} {
		assert.Equal(t, "pass", findCheck(t, out, id).Status, id)
	}
}

func TestDoctor_Problems(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"varlint.yaml": `project:
  name: shop
  platform: true
  sources: [src/main, src/missing]
  build_file: build.gradle
lint:
  linters:
    - name: ghost
      command: varlint-no-such-binary --check
  scripts:
    - rules/broken.star
`,
		"rules/broken.star": "ISSUE = {",
	})
	loadProject(t, dir)

	out := runDoctorJSON(t)
	assert.Equal(t, "warn", findCheck(t, out, "CF02").Status)
	assert.Equal(t, "warn", findCheck(t, out, "CF03").Status)
	assert.Equal(t, "warn", findCheck(t, out, "CF04").Status)
	assert.Equal(t, "error", findCheck(t, out, "TL01").Status)
	assert.Equal(t, "error", findCheck(t, out, "TL02").Status)
	assert.Less(t, out.Score, 50)
	assert.NotEmpty(t, out.Recommendations)
}

func TestDoctor_Markdown(t *testing.T) {
	loadProject(t, testutil.SetupTestProject(t))

	stdout, _, err := execute(t, NewDoctorCommand(), "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# varlint Project Health Report")
	assert.Contains(t, stdout, "### Configuration")
	assert.Contains(t, stdout, "**[PASS]** CF01")
}
