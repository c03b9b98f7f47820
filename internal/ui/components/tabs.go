// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nerva-assistant/nerva/internal/ui/styles"
)

// TabBar renders a row of labels with one highlighted.
type TabBar struct {
	Labels   []string
	Selected int
}

// Next moves the selection right, wrapping around.
func (t *TabBar) Next() {
	if len(t.Labels) == 0 {
		return
	}
	t.Selected = (t.Selected + 1) % len(t.Labels)
}

// View renders the bar at the given width.
func (t TabBar) View(theme *styles.Theme, width int) string {
	parts := make([]string, 0, len(t.Labels))
	for i, label := range t.Labels {
		if i == t.Selected {
			parts = append(parts, theme.ActiveTab.Render(label))
		} else {
			parts = append(parts, theme.Tab.Render(label))
		}
	}
	row := strings.Join(parts, lipgloss.NewStyle().Foreground(styles.Overlay).Render("|"))

	style := theme.TabBar
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(row)
}
