// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nerva-assistant/nerva/internal/model"
	"github.com/nerva-assistant/nerva/internal/storage"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter renders a compact listing for terminals. Each turn's text is
// flattened to one line and truncated to the configured display width.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts turns to a plain listing.
func (e *TextExporter) Export(turns []storage.Turn) ([]byte, error) {
	if len(turns) == 0 {
		return []byte("No saved turns.\n"), nil
	}

	var sb strings.Builder
	for _, turn := range turns {
		header := fmt.Sprintf("#%d", turn.ID)
		if e.options.IncludeTimestamps {
			header += "  " + formatTimestamp(turn.Timestamp)
		}
		sb.WriteString(header)
		sb.WriteString("\n")
		sb.WriteString(e.line(model.RoleUser.DisplayName(), turn.UserQuery))
		sb.WriteString(e.line(model.RoleAssistant.DisplayName(), turn.AIResponse))
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

func (e *TextExporter) line(label, text string) string {
	s := fmt.Sprintf("  %s: %s", label, flatten(text))
	if e.options.Width > 0 {
		s = runewidth.Truncate(s, e.options.Width, "...")
	}
	return s + "\n"
}

// flatten collapses all whitespace runs, including newlines, to single spaces.
func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
