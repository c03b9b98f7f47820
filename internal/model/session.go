// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSystemNotFirst is returned when a system message would not be the
	// first message of the session.
	ErrSystemNotFirst = errors.New("system message must be the first message")

	// ErrInvalidRole is returned for messages with an unknown role.
	ErrInvalidRole = errors.New("invalid message role")
)

// Session is the ordered transcript of one run. It only grows: messages are
// appended and never edited or removed. The whole transcript is what gets
// sent to the completion endpoint on every turn.
//
// Session is not safe for concurrent use; its owner serializes access.
type Session struct {
	messages []Message
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{messages: make([]Message, 0, 16)}
}

// NewSessionWithSystem creates a session whose first message is the given
// system prompt. An empty prompt yields an empty session.
func NewSessionWithSystem(prompt string) *Session {
	s := NewSession()
	if prompt != "" {
		s.messages = append(s.messages, NewSystemMessage(prompt))
	}
	return s
}

// Append adds msg to the end of the transcript.
func (s *Session) Append(msg Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}
	if msg.Role == RoleSystem && len(s.messages) > 0 {
		return ErrSystemNotFirst
	}
	s.messages = append(s.messages, msg)
	return nil
}

// Snapshot returns a copy of the transcript.
func (s *Session) Snapshot() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Session) Len() int {
	return len(s.messages)
}
