package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{"TEXT", false, ModeText},
		{"md", true, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{"bogus", true, ModeText},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "## Variants", FormatHeader(2, "Variants"))
	assert.Equal(t, "# X", FormatHeader(0, "X"))
	assert.Equal(t, "- **Task:** lintDebug", FormatKeyValue("Task", "lintDebug"))
}

func TestRenderer_PlainOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText)

	r.Success("done")
	r.StatusLine("varlint.yaml", "success", "created")
	r.Error("broken")
	r.Warning("careful")

	assert.Equal(t, "OK done\n  [ok] varlint.yaml created\n", out.String())
	assert.Equal(t, "ERROR broken\nWARN careful\n", errOut.String())
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeMarkdown)
	r.Table([]string{"Variant", "Task"}, [][]string{{"debug", "lintDebug"}})

	assert.Contains(t, out.String(), "| Variant | Task |")
	assert.Contains(t, out.String(), "| debug | lintDebug |")

	out.Reset()
	r = NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeText)
	r.Table([]string{"Variant"}, [][]string{{"debug"}})
	assert.Contains(t, out.String(), "debug")
	assert.Contains(t, out.String(), "┌")
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON)
	require.NoError(t, r.JSON(map[string]int{"count": 2}))
	assert.JSONEq(t, `{"count": 2}`, out.String())
}
