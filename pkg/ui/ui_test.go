package ui_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/bcforge/pkg/checkpoint"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		format   ui.Format
		expected string
	}{
		{ui.FormatAuto, "auto"},
		{ui.FormatTerminal, "term"},
		{ui.FormatText, "text"},
		{ui.FormatJSON, "json"},
		{ui.FormatYAML, "yaml"},
		{ui.Format(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{"", ui.FormatAuto, false},
		{"auto", ui.FormatAuto, false},
		{"TEXT", ui.FormatText, false},
		{"plain", ui.FormatText, false},
		{"terminal", ui.FormatTerminal, false},
		{"json", ui.FormatJSON, false},
		{"yml", ui.FormatYAML, false},
		{"xml", ui.FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDetectFormat_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, ui.FormatText, ui.Resolve(ui.FormatAuto, nil))
	assert.Equal(t, ui.FormatJSON, ui.Resolve(ui.FormatJSON, nil))
}

func TestRenderStatus(t *testing.T) {
	p := checkpoint.Progress{CMake: true, Remake: true}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ui.RenderStatus(&buf, p, ui.FormatJSON))
		var back checkpoint.Progress
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, p, back)
		assert.Contains(t, buf.String(), `"compile_to_llvm": false`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ui.RenderStatus(&buf, p, ui.FormatYAML))
		var back checkpoint.Progress
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, p, back)
	})

	t.Run("text table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ui.RenderStatus(&buf, p, ui.FormatText))
		out := buf.String()
		assert.NotContains(t, out, "\x1b[", "plain output carries no escape codes")

		rows := map[string]string{}
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			fields := strings.Fields(strings.ReplaceAll(line, "|", " "))
			if len(fields) == 2 {
				rows[fields[0]] = fields[1]
			}
		}
		assert.Equal(t, map[string]string{
			"Stage":           "Status",
			"cmake":           "done",
			"remake":          "done",
			"cmaker":          "pending",
			"compile_to_llvm": "pending",
			"linking":         "pending",
		}, rows)
	})
}

func TestFormatError(t *testing.T) {
	err := errors.New(errors.ErrCheckpoint, "failed to parse progress").
		WithDetail("path", "/work/.progress").
		WithDetail("hint", "delete it")

	out := ui.FormatError(err, false)
	assert.Equal(t, "Error: [CHECKPOINT] failed to parse progress\n  hint: delete it\n  path: /work/.progress", out)

	styled := ui.FormatError(err, true)
	assert.Contains(t, styled, "failed to parse progress")
	assert.Contains(t, styled, "hint: delete it")
}

func TestGetStyle_Unknown(t *testing.T) {
	assert.Equal(t, "x", ui.GetStyle("NoSuchStyle").Render("x"))
}

func TestLoadStyles_Invalid(t *testing.T) {
	err := ui.LoadStyles([]byte("colors: [unterminated"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}
