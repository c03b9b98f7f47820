// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds all the styled components for the application. Colors are
// adaptive, so light and dark terminals resolve at render time.
type Theme struct {
	// ==========================================================================
	// HEADER AND TABS
	// ==========================================================================

	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	TabBar    lipgloss.Style

	// ==========================================================================
	// PANELS
	// ==========================================================================

	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style

	// ==========================================================================
	// CHAT
	// ==========================================================================

	UserLine      lipgloss.Style
	AssistantLine lipgloss.Style
	SystemLine    lipgloss.Style
	ErrorLine     lipgloss.Style
	Thinking      lipgloss.Style
	Input         lipgloss.Style

	// ==========================================================================
	// FOOTER
	// ==========================================================================

	Footer       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	t := &Theme{}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Align(lipgloss.Center).
		Padding(0, 1)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)
	t.ActiveTab = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber).
		Underline(true).
		Padding(0, 2)
	t.TabBar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Value = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.UserLine = lipgloss.NewStyle().
		Foreground(Cyan)
	t.AssistantLine = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.SystemLine = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.ErrorLine = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.Thinking = lipgloss.NewStyle().
		Foreground(Purple).
		Italic(true)
	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// Shortcut renders a "key desc" pair for the footer.
func (t *Theme) Shortcut(key, desc string) string {
	return t.ShortcutKey.Render(key) + " " + t.ShortcutDesc.Render(desc)
}
