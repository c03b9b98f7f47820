// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nerva-assistant/nerva/internal/storage"
	"github.com/nerva-assistant/nerva/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders persisted turns in one output format.
type Exporter interface {
	// Export converts turns to the target format and returns the content.
	Export(turns []storage.Turn) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	OutputDir string

	// IncludeTimestamps includes per-turn timestamps.
	IncludeTimestamps bool

	// Width bounds each line of the text listing. Zero means no bound.
	Width int
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
		Width:             100,
	}
}

// =============================================================================
// FORMAT REGISTRY
// =============================================================================

// Format names accepted by ForFormat.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// ForFormat returns the exporter for a format name. "md" and "yml" are
// accepted as aliases.
func ForFormat(name string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatText, "":
		return NewTextExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatYAML, "yml":
		return NewYAMLExporter(), nil
	case FormatMarkdown, "md":
		return NewMarkdownExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown format %q (available: %s)", name, strings.Join(Formats(), ", "))
	}
}

// Formats lists the supported format names.
func Formats() []string {
	formats := []string{FormatText, FormatJSON, FormatYAML, FormatMarkdown}
	sort.Strings(formats)
	return formats
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports turns to a new file in opts.OutputDir and returns its
// path.
func ExportToFile(turns []storage.Turn, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(turns)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("nerva_history_%s%s", timestamp, exporter.FileExtension())

	outputPath := filepath.Join(opts.OutputDir, sanitizeFilename(filename))
	if err := util.AtomicWriteFile(outputPath, content, 0644, 0755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 80
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "history"
	}
	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
