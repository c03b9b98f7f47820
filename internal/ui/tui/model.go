// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nerva-assistant/nerva/internal/completion"
	"github.com/nerva-assistant/nerva/internal/model"
	"github.com/nerva-assistant/nerva/internal/session"
	"github.com/nerva-assistant/nerva/internal/ui/components"
	"github.com/nerva-assistant/nerva/internal/ui/styles"
)

// Greeting is the first line of the conversation view.
const Greeting = "Hello! How can I assist you today?"

// ScrollPage is the number of lines PgUp/PgDn move.
const ScrollPage = 5

// Tab identifies a top-level view.
type Tab int

const (
	TabHealth Tab = iota
	TabChat
)

var tabLabels = []string{"Health Check", "Chat Mode"}

// Submitter runs one chat turn. *session.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, text string) (session.Reply, error)
}

// HealthChecker probes the endpoint. *completion.Client satisfies it.
type HealthChecker interface {
	Check(ctx context.Context) completion.HealthStatus
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the full-screen UI. It has two tabs: a health panel and a chat
// view. At most one turn is in flight; lines submitted meanwhile wait in a
// FIFO queue.
type Model struct {
	ctx       context.Context
	submitter Submitter
	checker   HealthChecker
	logger    *log.Logger
	theme     *styles.Theme

	tabs          components.TabBar
	width, height int
	ready         bool

	// Health tab
	health        completion.HealthStatus
	checking      bool
	healthSpinner components.Spinner

	// Chat tab
	display  *model.DisplayBuffer
	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner

	awaiting  bool
	queue     []string
	cancelMgr *cancelManager
	quitting  bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates the UI model. ctx bounds every turn and health check.
func New(ctx context.Context, submitter Submitter, checker HealthChecker, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = model.RoleUser.DisplayName() + ": "
	ti.Placeholder = "Type a message and press Enter"
	ti.CharLimit = 0 // unlimited
	ti.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:       ctx,
		submitter: submitter,
		checker:   checker,
		logger:    log.New(io.Discard),
		theme:     styles.NewTheme(),
		tabs:      components.TabBar{Labels: tabLabels},
		health: completion.HealthStatus{
			KeyStatus:        completion.StatusNotChecked,
			ConnectionStatus: completion.StatusDisconnected,
		},
		display:   model.NewDisplayBuffer(model.DisplayLimit),
		viewport:  viewport.New(80, 10),
		input:     ti,
		spinner:   components.NewThinkingSpinner(),
		cancelMgr: newCancelManager(),
	}
	m.healthSpinner = components.NewSpinner()
	m.healthSpinner.SetMessage("Checking")
	m.healthSpinner.SetShowTimer(false)
	for _, opt := range opts {
		opt(&m)
	}
	m.addLine(model.RoleAssistant, Greeting)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TurnCompleteMsg:
		return m.handleTurnComplete(msg)

	case TurnErrorMsg:
		return m.handleTurnError(msg)

	case HealthCheckedMsg:
		m.checking = false
		m.healthSpinner.Stop()
		m.health = msg.Status
		return m, nil
	}

	var thinkCmd, checkCmd tea.Cmd
	m.spinner, thinkCmd = m.spinner.Update(msg)
	m.healthSpinner, checkCmd = m.healthSpinner.Update(msg)
	return m, tea.Batch(thinkCmd, checkCmd)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.quit()
	case "tab":
		return m.switchTab()
	}

	if Tab(m.tabs.Selected) == TabHealth {
		switch msg.String() {
		case "q":
			return m.quit()
		case "c":
			return m.startHealthCheck()
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		return m.submitInput()
	case "up":
		m.viewport.LineUp(1)
		return m, nil
	case "down":
		m.viewport.LineDown(1)
		return m, nil
	case "pgup":
		m.viewport.LineUp(ScrollPage)
		return m, nil
	case "pgdown":
		m.viewport.LineDown(ScrollPage)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.queue = nil
	m.cancelMgr.clear()
	m.logger.Debug("ui quit", "awaiting", m.awaiting)
	return m, tea.Quit
}

func (m Model) switchTab() (tea.Model, tea.Cmd) {
	m.tabs.Next()
	if Tab(m.tabs.Selected) == TabChat {
		cmd := m.input.Focus()
		return m, cmd
	}
	m.input.Blur()
	return m, nil
}

func (m Model) startHealthCheck() (tea.Model, tea.Cmd) {
	if m.checking || m.checker == nil {
		return m, nil
	}
	m.checking = true
	tick := m.healthSpinner.Start()
	ctx, checker := m.ctx, m.checker
	check := func() tea.Msg {
		return HealthCheckedMsg{Status: checker.Check(ctx)}
	}
	return m, tea.Batch(check, tick)
}

// submitInput handles Enter on the chat tab.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	switch session.Classify(line) {
	case session.ActionIgnore:
		return m, nil
	case session.ActionExit:
		return m.quit()
	case session.ActionCommand:
		return m.handleCommand(strings.TrimSpace(line))
	}

	text := strings.TrimSpace(line)
	if m.awaiting {
		m.queue = append(m.queue, text)
		return m, nil
	}
	return m.dispatch(text)
}

func (m Model) handleCommand(cmd string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/quit", "/q", "/exit":
		return m.quit()
	case "/health":
		m.tabs.Selected = int(TabHealth)
		m.input.Blur()
		return m.startHealthCheck()
	default:
		m.addLine(model.RoleSystem, "Commands: /health, /quit")
		return m, nil
	}
}

// =============================================================================
// TURN DISPATCH
// =============================================================================

// dispatch starts a turn for text. The caller guarantees none is in flight.
func (m Model) dispatch(text string) (tea.Model, tea.Cmd) {
	m.awaiting = true
	m.addLine(model.RoleUser, text)

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelMgr.set(cancel)
	submitter := m.submitter

	submit := func() tea.Msg {
		reply, err := submitter.Submit(ctx, text)
		if err != nil {
			return TurnErrorMsg{Query: text, Err: err}
		}
		return TurnCompleteMsg{Query: text, Reply: reply}
	}
	tick := m.spinner.Start()
	return m, tea.Batch(submit, tick)
}

func (m Model) handleTurnComplete(msg TurnCompleteMsg) (tea.Model, tea.Cmd) {
	m.finishTurn()
	m.addLine(model.RoleAssistant, msg.Reply.Text)
	if msg.Reply.PersistErr != nil {
		m.display.Add(styles.RenderWarning("turn not saved: " + msg.Reply.PersistErr.Error()))
		m.refreshViewport()
	}
	return m.next()
}

func (m Model) handleTurnError(msg TurnErrorMsg) (tea.Model, tea.Cmd) {
	m.finishTurn()
	if m.quitting && errors.Is(msg.Err, context.Canceled) {
		return m, nil
	}
	m.logger.Warn("turn failed", "err", msg.Err)
	m.addError(msg.Err)
	return m.next()
}

func (m *Model) finishTurn() {
	m.awaiting = false
	m.spinner.Stop()
	m.cancelMgr.clear()
}

// next dispatches the oldest queued line, if any.
func (m Model) next() (tea.Model, tea.Cmd) {
	if m.quitting || len(m.queue) == 0 {
		return m, nil
	}
	text := m.queue[0]
	m.queue = m.queue[1:]
	return m.dispatch(text)
}

// =============================================================================
// CONVERSATION VIEW
// =============================================================================

func (m *Model) addLine(role model.Role, text string) {
	label := role.DisplayName() + ": " + text
	var line string
	switch role {
	case model.RoleUser:
		line = m.theme.UserLine.Render(label)
	case model.RoleAssistant:
		line = m.theme.AssistantLine.Render(label)
	default:
		line = m.theme.SystemLine.Render(text)
	}
	m.display.Add(line)
	m.refreshViewport()
}

func (m *Model) addError(err error) {
	m.display.Add(m.theme.ErrorLine.Render("[Error] " + err.Error()))
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	width := m.viewport.Width
	lines := m.display.Lines()
	if width > 0 {
		wrap := lipgloss.NewStyle().Width(width)
		for i, l := range lines {
			lines[i] = wrap.Render(l)
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.viewport.Width = max(msg.Width-4, 10)
	m.viewport.Height = max(msg.Height-chromeHeight, 3)
	m.input.Width = max(msg.Width-10, 10)
	m.refreshViewport()
	return m
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveTab returns the selected tab.
func (m Model) ActiveTab() Tab {
	return Tab(m.tabs.Selected)
}

// Awaiting reports whether a turn is in flight.
func (m Model) Awaiting() bool {
	return m.awaiting
}

// Queued returns the number of lines waiting for dispatch.
func (m Model) Queued() int {
	return len(m.queue)
}

// Lines returns the conversation lines currently kept for display.
func (m Model) Lines() []string {
	return m.display.Lines()
}
