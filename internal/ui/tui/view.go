// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nerva-assistant/nerva/internal/completion"
	"github.com/nerva-assistant/nerva/internal/ui/styles"
)

// Title is shown above the tab bar.
const Title = "NERVA - Networked Embedded Responsive Virtual Assistant"

// chromeHeight is the number of rows outside the conversation viewport:
// title, tab bar, panel border, status line, input box and footer.
const chromeHeight = 11

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	var body string
	if m.ActiveTab() == TabHealth {
		body = m.healthView(width)
	} else {
		body = m.chatView(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Width(width).Render(Title),
		m.tabs.View(m.theme, width),
		body,
		m.footerView(width),
	)
}

func (m Model) healthView(width int) string {
	var sb strings.Builder
	sb.WriteString(m.theme.PanelTitle.Render("API Status"))
	sb.WriteString("\n\n")
	sb.WriteString(m.statusRow("API Key", m.health.KeyStatus, m.health.KeyStatus == completion.StatusValid))
	sb.WriteString("\n")
	sb.WriteString(m.statusRow("Connection", m.health.ConnectionStatus, m.health.ConnectionStatus == completion.StatusConnected))
	sb.WriteString("\n")

	switch {
	case m.checking:
		sb.WriteString("\n" + m.healthSpinner.View())
	case !m.health.CheckedAt.IsZero():
		detail := fmt.Sprintf("Checked %s, latency %s",
			m.health.CheckedAt.Format("15:04:05"), m.health.Latency.Round(time.Millisecond))
		if m.health.StatusCode != 0 {
			detail += fmt.Sprintf(", HTTP %d", m.health.StatusCode)
		}
		sb.WriteString("\n" + m.theme.Label.Render(detail))
		if m.health.Err != nil {
			sb.WriteString("\n" + m.theme.ErrorLine.Render(m.health.Err.Error()))
		}
	}

	return m.theme.Panel.Width(max(width-2, 10)).Render(sb.String())
}

func (m Model) statusRow(label, value string, ok bool) string {
	row := label + ": " + value
	if ok {
		return styles.RenderSuccess(row)
	}
	return styles.RenderWarning(row)
}

func (m Model) chatView(width int) string {
	conversation := m.theme.Panel.Width(max(width-2, 10)).Render(m.viewport.View())

	status := ""
	if m.spinner.IsActive() {
		status = m.theme.Thinking.Render(m.spinner.View())
	}
	if n := len(m.queue); n > 0 {
		status += m.theme.Label.Render(fmt.Sprintf("  %d queued", n))
	}

	input := m.theme.Input.Width(max(width-2, 10)).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, conversation, status, input)
}

func (m Model) footerView(width int) string {
	var keys []string
	if m.ActiveTab() == TabHealth {
		keys = []string{
			m.theme.Shortcut("c", "check"),
			m.theme.Shortcut("Tab", "chat"),
			m.theme.Shortcut("q", "quit"),
		}
	} else {
		keys = []string{
			m.theme.Shortcut("Enter", "send"),
			m.theme.Shortcut("Up/Down", "scroll"),
			m.theme.Shortcut("Tab", "health"),
			m.theme.Shortcut("Esc", "quit"),
		}
	}
	return m.theme.Footer.Width(width).Render(strings.Join(keys, "  "))
}
