// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL for nerva.
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /history            Show the conversation so far
//   /reasoning          Toggle display of stripped reasoning
//   /status, /s         Show session statistics
//   /quit, /q           Exit chat
//   quit, exit          Exit chat
//   Ctrl+C              Cancel the request in flight, or exit at the prompt
//   Ctrl+D              Exit chat

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"

	"github.com/nerva-assistant/nerva/internal/config"
	"github.com/nerva-assistant/nerva/internal/model"
	"github.com/nerva-assistant/nerva/internal/session"
	"github.com/nerva-assistant/nerva/internal/util"
)

// PromptLabel is shown before every input line.
const PromptLabel = "You: "

// Greeting is printed when a session starts.
const Greeting = "Hello! How can I assist you today?"

// ThinkingIndicator is shown while a completion is in flight.
const ThinkingIndicator = "Thinking..."

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one line of user input. io.EOF and
// liner.ErrPromptAborted end the session.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
	closeOnce   sync.Once
}

// NewChatCLI creates a new ChatCLI whose history lives at historyFile. An
// empty path uses ~/.nerva/chat_history.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	if historyFile == "" {
		configDir, err := config.Dir()
		if err != nil {
			configDir = os.TempDir()
		}
		historyFile = filepath.Join(configDir, "chat_history")
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	var buf bytes.Buffer
	if _, err := c.line.WriteHistory(&buf); err != nil {
		return
	}
	_ = util.AtomicWriteFile(c.historyFile, buf.Bytes(), 0600, 0700)
}

// Close saves history and restores the terminal. Later calls do nothing.
func (c *ChatCLI) Close() {
	c.closeOnce.Do(func() {
		c.SaveHistory()
		c.line.Close()
	})
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string) string {
	markdownRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

func plainText(content string) string {
	return content
}

// =============================================================================
// REPL
// =============================================================================

// REPL drives a session.Client from a LineReader. It alternates between
// awaiting input and awaiting a completion; only one completion is in flight.
type REPL struct {
	client *session.Client
	input  LineReader
	out    io.Writer
	errOut io.Writer

	// render formats assistant replies; markdown on a TTY, identity otherwise.
	render func(string) string
	// interactive enables the erasable thinking indicator.
	interactive bool

	showReasoning bool
	lastReasoning string

	mu     sync.Mutex
	cancel context.CancelFunc

	// exit ends the process after a signal at the prompt.
	exit func(code int)
}

// REPLOption configures a REPL.
type REPLOption func(*REPL)

// WithMarkdown renders replies with glamour.
func WithMarkdown() REPLOption {
	return func(r *REPL) { r.render = renderMarkdown }
}

// WithInteractive draws the thinking indicator and erases it afterwards.
func WithInteractive() REPLOption {
	return func(r *REPL) { r.interactive = true }
}

// WithExit replaces os.Exit as the function a terminating signal calls.
func WithExit(exit func(code int)) REPLOption {
	return func(r *REPL) { r.exit = exit }
}

// NewREPL creates a REPL. Output defaults to plain text.
func NewREPL(client *session.Client, input LineReader, out, errOut io.Writer, opts ...REPLOption) *REPL {
	r := &REPL{
		client: client,
		input:  input,
		out:    out,
		errOut: errOut,
		render: plainText,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CancelTurn cancels the completion in flight. It reports whether there was
// one to cancel.
func (r *REPL) CancelTurn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

func (r *REPL) setCancel(cancel context.CancelFunc) {
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

// =============================================================================
// SIGNALS
// =============================================================================

// WatchSignals routes SIGINT and SIGTERM to HandleSignal until the returned
// function is called.
func (r *REPL) WatchSignals() (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigChan:
				r.HandleSignal(sig)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
		})
	}
}

// HandleSignal reacts to SIGINT or SIGTERM. An interrupt during a turn
// cancels only that turn. An interrupt at the prompt, or SIGTERM at any time,
// cancels any turn, closes the input to restore the terminal and exits.
func (r *REPL) HandleSignal(sig os.Signal) {
	if sig != syscall.SIGTERM && r.CancelTurn() {
		return
	}
	r.CancelTurn()
	r.input.Close()

	code := ExitInterrupted
	if sig == syscall.SIGTERM {
		code = ExitTerminated
	}
	r.exit(code)
}

// Run reads lines until an exit sentinel, /quit, Ctrl-C at the prompt or end
// of input. Turn failures are printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	r.printWelcome()

	for {
		line, err := r.input.ReadInput(promptStyle.Render(PromptLabel))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				r.printGoodbye()
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch session.Classify(line) {
		case session.ActionIgnore:
			continue

		case session.ActionExit:
			r.printGoodbye()
			return nil

		case session.ActionCommand:
			shouldContinue, err := r.handleSlashCommand(strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintf(r.errOut, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				r.printGoodbye()
				return nil
			}

		case session.ActionSend:
			r.processMessage(ctx, strings.TrimSpace(line))
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// processMessage runs one turn and prints its outcome.
func (r *REPL) processMessage(ctx context.Context, text string) {
	turnCtx, cancel := context.WithCancel(ctx)
	r.setCancel(cancel)
	defer func() {
		r.setCancel(nil)
		cancel()
	}()

	r.showThinking()
	reply, err := r.client.Submit(turnCtx, text)
	r.clearThinking()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(r.errOut, warningStyle.Render("[Cancelled]"))
			return
		}
		fmt.Fprintf(r.errOut, "%s %v\n", errorStyle.Render("[Error]"), err)
		return
	}

	r.lastReasoning = reply.Reasoning
	if r.showReasoning && reply.Reasoning != "" {
		fmt.Fprintln(r.out, reasoningStyle.Render(strings.TrimSpace(reply.Reasoning)))
	}
	fmt.Fprintf(r.out, "%s %s\n\n",
		assistantStyle.Render(model.RoleAssistant.DisplayName()+":"),
		r.render(reply.Text))

	if reply.PersistErr != nil {
		fmt.Fprintf(r.errOut, "%s turn not saved: %v\n", warningStyle.Render("[Warning]"), reply.PersistErr)
	}
}

func (r *REPL) showThinking() {
	if r.interactive {
		fmt.Fprint(r.out, infoStyle.Render(ThinkingIndicator))
	}
}

func (r *REPL) clearThinking() {
	if r.interactive {
		fmt.Fprint(r.out, "\r"+strings.Repeat(" ", runewidth.StringWidth(ThinkingIndicator))+"\r")
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func (r *REPL) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	switch command {
	case "/help", "/h", "/?", "/":
		r.printHelp()
		return true, nil

	case "/history":
		r.printHistory()
		return true, nil

	case "/reasoning":
		r.showReasoning = !r.showReasoning
		state := "off"
		if r.showReasoning {
			state = "on"
		}
		fmt.Fprintln(r.out, commandStyle.Render("[Reasoning display "+state+"]"))
		if r.showReasoning && r.lastReasoning != "" {
			fmt.Fprintln(r.out, reasoningStyle.Render(strings.TrimSpace(r.lastReasoning)))
		}
		return true, nil

	case "/status", "/s":
		r.printStatus()
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, welcomeStyle.Render("NERVA - Networked Embedded Responsive Virtual Assistant"))
	fmt.Fprintln(r.out, infoStyle.Render("Type your message and press Enter. Commands: /help, quit"))
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s %s\n\n", assistantStyle.Render(model.RoleAssistant.DisplayName()+":"), Greeting)
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, summaryHeaderStyle.Render("Available Commands"))
	fmt.Fprintln(r.out, infoStyle.Render(strings.Repeat("─", 20)))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Show conversation history"},
		{"/reasoning", "Toggle display of model reasoning"},
		{"/status, /s", "Show session statistics"},
		{"/quit, quit", "Exit chat"},
	}
	for _, c := range commands {
		fmt.Fprintf(r.out, "  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, infoStyle.Render("Tip: Ctrl+C cancels a pending reply, Ctrl+D exits"))
	fmt.Fprintln(r.out)
}

// printHistory prints the transcript, one line per message.
func (r *REPL) printHistory() {
	var shown int
	width := GetTerminalWidth()
	for _, msg := range r.client.History() {
		if msg.Role == model.RoleSystem {
			continue
		}
		shown++
		label := msg.Role.DisplayName()
		content := strings.Join(strings.Fields(msg.Content), " ")
		line := fmt.Sprintf("  %d. %s: %s", shown, label, content)
		fmt.Fprintln(r.out, runewidth.Truncate(line, width, "..."))
	}
	if shown == 0 {
		fmt.Fprintln(r.out, infoStyle.Render("[No messages yet]"))
	}
}

func (r *REPL) printStatus() {
	stats := r.client.Stats()
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, summaryHeaderStyle.Render("Session Status"))
	fmt.Fprintln(r.out, infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Fprintf(r.out, "  %s %s\n", infoStyle.Render("Session:"), stats.SessionID)
	fmt.Fprintf(r.out, "  %s %s\n", infoStyle.Render("Duration:"), session.FormatDuration(stats.Duration))
	fmt.Fprintf(r.out, "  %s %d (%d failed)\n", infoStyle.Render("Turns:"), stats.Turns, stats.Failures)
	fmt.Fprintf(r.out, "  %s %d\n", infoStyle.Render("Messages:"), stats.Messages)
	fmt.Fprintf(r.out, "  %s %s\n", infoStyle.Render("History:"), stats.Backend)
	fmt.Fprintln(r.out)
}

func (r *REPL) printGoodbye() {
	fmt.Fprintln(r.out, infoStyle.Render("Goodbye!"))
}
