// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nerva-assistant/nerva/internal/storage"
)

func sampleTurns() []storage.Turn {
	ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	return []storage.Turn{
		{ID: 1, UserQuery: "hello", AIResponse: "Hello! How can I assist you today?", Timestamp: ts},
		{ID: 2, UserQuery: "two\nlines", AIResponse: "Noted.", Timestamp: ts.Add(time.Minute)},
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"text", ".txt"},
		{"", ".txt"},
		{"json", ".json"},
		{"YAML", ".yaml"},
		{"yml", ".yaml"},
		{"markdown", ".md"},
		{"md", ".md"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exp, err := ForFormat(tc.name, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.ext, exp.FileExtension())
		})
	}

	_, err := ForFormat("html", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markdown")
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleTurns())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "hello", decoded[0]["user_query"])
	assert.Equal(t, "Noted.", decoded[1]["ai_response"])

	empty, err := NewJSONExporter().Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(empty))
}

func TestYAMLExporter(t *testing.T) {
	out, err := NewYAMLExporter().Export(sampleTurns())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "two\nlines", decoded[1]["user_query"])
}

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleTurns())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# NERVA Chat History"))
	assert.Contains(t, md, "## Turn 1")
	assert.Contains(t, md, "> two\n> lines")
	assert.Contains(t, md, "**NERVA:**")
	assert.Equal(t, 1, strings.Count(md, "\n---\n"))

	empty, err := NewMarkdownExporter(nil).Export(nil)
	require.NoError(t, err)
	assert.Contains(t, string(empty), "No saved turns")
}

func TestTextExporter_FlattensAndTruncates(t *testing.T) {
	long := strings.Repeat("長い", 80)
	turns := []storage.Turn{{ID: 7, UserQuery: "a\n\nb", AIResponse: long}}

	out, err := NewTextExporter(&Options{Width: 40}).Export(turns)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#7", lines[0])
	assert.Equal(t, "  You: a b", lines[1])
	assert.LessOrEqual(t, runewidth.StringWidth(lines[2]), 40)
	assert.True(t, strings.HasSuffix(lines[2], "..."))
}

func TestTextExporter_Empty(t *testing.T) {
	out, err := NewTextExporter(nil).Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "No saved turns.\n", string(out))
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportToFile(sampleTurns(), NewJSONExporter(), &Options{OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".json", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c_d", sanitizeFilename("a/b:c d"))
	assert.Equal(t, "history", sanitizeFilename(""))
	assert.Equal(t, "x-y", sanitizeFilename("x\x01y"))
}
