// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/nerva-assistant/nerva/internal/model"
	"github.com/nerva-assistant/nerva/internal/reasoning"
	"github.com/nerva-assistant/nerva/internal/storage"
)

// =============================================================================
// INPUT CLASSIFICATION
// =============================================================================

// Action is what a front-end should do with a line of input.
type Action int

const (
	// ActionIgnore is returned for empty or whitespace-only input.
	ActionIgnore Action = iota
	// ActionExit is returned for the exit sentinels "quit" and "exit".
	ActionExit
	// ActionCommand is returned for slash commands.
	ActionCommand
	// ActionSend is returned for everything that should go to the assistant.
	ActionSend
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionExit:
		return "exit"
	case ActionCommand:
		return "command"
	case ActionSend:
		return "send"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// CommandPrefix starts a slash command.
const CommandPrefix = "/"

var exitSentinels = []string{"quit", "exit"}

// Classify decides how a raw input line is handled. Exit sentinels are matched
// case-insensitively after trimming and NFC normalization, so they never reach
// the transport.
func Classify(line string) Action {
	text := norm.NFC.String(strings.TrimSpace(line))
	if text == "" {
		return ActionIgnore
	}
	for _, s := range exitSentinels {
		if strings.EqualFold(text, s) {
			return ActionExit
		}
	}
	if strings.HasPrefix(text, CommandPrefix) {
		return ActionCommand
	}
	return ActionSend
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrEmptyInput is returned by Submit for blank text.
var ErrEmptyInput = errors.New("empty input")

// TurnError reports a failed turn. The user message stays in the session.
type TurnError struct {
	Query string
	Err   error
}

func (e *TurnError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the transport error.
func (e *TurnError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CLIENT
// =============================================================================

// Transport performs one completion call for a full transcript.
type Transport interface {
	Send(ctx context.Context, history []model.Message) (string, error)
}

// Reply is the outcome of a successful turn.
type Reply struct {
	// Text is the assistant reply with the reasoning block removed.
	Text string
	// Reasoning is the removed block content, if any.
	Reasoning string
	// Duration is the round-trip time of the transport call.
	Duration time.Duration
	// PersistErr is set when the turn could not be saved. The turn itself
	// still succeeded.
	PersistErr error
}

// Option configures a Client.
type Option func(*Client)

// WithStore persists each completed turn to store.
func WithStore(store storage.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSystemPrompt places prompt at the head of the transcript.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// Client owns the session transcript and runs turns against a Transport.
// Submit calls are serialized; at most one turn is in flight.
type Client struct {
	mu           sync.Mutex
	transport    Transport
	store        storage.Store
	logger       *log.Logger
	systemPrompt string

	session *model.Session

	id        string
	startTime time.Time
	turns     int
	failures  int
	lastTurn  time.Time
}

// NewClient creates a client with an empty transcript (plus the system
// prompt, if configured).
func NewClient(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		store:     storage.Nop{},
		logger:    log.New(io.Discard),
		id:        uuid.NewString(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = model.NewSessionWithSystem(c.systemPrompt)
	return c
}

// Submit runs one turn: the user message is appended, the whole transcript is
// sent, and the cleaned reply is appended and persisted. On transport failure
// the returned error is a *TurnError and the user message is kept.
func (c *Client) Submit(ctx context.Context, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.session.Append(model.NewUserMessage(text)); err != nil {
		return Reply{}, err
	}

	start := time.Now()
	raw, err := c.transport.Send(ctx, c.session.Snapshot())
	elapsed := time.Since(start)
	if err != nil {
		c.failures++
		c.logger.Warn("turn failed", "session", c.id, "duration", elapsed, "err", err)
		return Reply{}, &TurnError{Query: text, Err: err}
	}

	thought, _, _ := reasoning.Extract(raw)
	reply := Reply{
		Text:      reasoning.Clean(raw),
		Reasoning: thought,
		Duration:  elapsed,
	}
	if err := c.session.Append(model.NewAssistantMessage(reply.Text)); err != nil {
		return Reply{}, err
	}
	c.turns++
	c.lastTurn = time.Now()
	c.logger.Info("turn complete", "session", c.id, "duration", elapsed, "messages", c.session.Len())

	if err := c.store.SaveTurn(ctx, text, reply.Text); err != nil {
		c.logger.Error("failed to save turn", "backend", c.store.Backend(), "err", err)
		reply.PersistErr = err
	}
	return reply, nil
}

// History returns a copy of the transcript.
func (c *Client) History() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Snapshot()
}

// Len returns the number of messages in the transcript.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Len()
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Stats summarizes the session.
type Stats struct {
	SessionID string
	StartTime time.Time
	Duration  time.Duration
	Messages  int
	Turns     int
	Failures  int
	LastTurn  time.Time
	Backend   string
}

// Stats returns the current session status.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		SessionID: c.id,
		StartTime: c.startTime,
		Duration:  time.Since(c.startTime),
		Messages:  c.session.Len(),
		Turns:     c.turns,
		Failures:  c.failures,
		LastTurn:  c.lastTurn,
		Backend:   c.store.Backend(),
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
