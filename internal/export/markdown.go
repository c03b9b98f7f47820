// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/nerva-assistant/nerva/internal/model"
	"github.com/nerva-assistant/nerva/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports turns as a Markdown transcript.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts turns to Markdown.
func (e *MarkdownExporter) Export(turns []storage.Turn) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# NERVA Chat History\n\n")
	if len(turns) == 0 {
		sb.WriteString("_No saved turns._\n")
		return []byte(sb.String()), nil
	}

	for i, turn := range turns {
		if e.options.IncludeTimestamps {
			fmt.Fprintf(&sb, "## Turn %d <sub>%s</sub>\n\n", turn.ID, formatTimestamp(turn.Timestamp))
		} else {
			fmt.Fprintf(&sb, "## Turn %d\n\n", turn.ID)
		}

		fmt.Fprintf(&sb, "**%s:**\n\n%s\n\n", model.RoleUser.DisplayName(), quote(turn.UserQuery))
		fmt.Fprintf(&sb, "**%s:**\n\n%s\n", model.RoleAssistant.DisplayName(), turn.AIResponse)

		if i < len(turns)-1 {
			sb.WriteString("\n---\n\n")
		}
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// quote renders text as a Markdown blockquote.
func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
