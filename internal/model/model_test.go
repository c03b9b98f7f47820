// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "NERVA", RoleAssistant.DisplayName())
	assert.Equal(t, "System", RoleSystem.DisplayName())
	assert.Equal(t, "tool", Role("tool").DisplayName())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.True(t, RoleSystem.Valid())
	assert.False(t, Role("tool").Valid())
	assert.False(t, Role("").Valid())
}

func TestNewMessage_GeneratesIDs(t *testing.T) {
	a := NewUserMessage("hi")
	b := NewUserMessage("hi")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_AppendPreservesOrder(t *testing.T) {
	s := NewSessionWithSystem("sys")
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(NewUserMessage(fmt.Sprintf("q%d", i))))
		require.NoError(t, s.Append(NewAssistantMessage(fmt.Sprintf("a%d", i))))
	}

	snap := s.Snapshot()
	require.Len(t, snap, 11)
	assert.Equal(t, RoleSystem, snap[0].Role)
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("q%d", i), snap[1+2*i].Content)
		assert.Equal(t, fmt.Sprintf("a%d", i), snap[2+2*i].Content)
	}
}

func TestSession_SystemMustBeFirst(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Append(NewSystemMessage("sys")))

	err := s.Append(NewSystemMessage("again"))
	assert.True(t, errors.Is(err, ErrSystemNotFirst))

	s = NewSession()
	require.NoError(t, s.Append(NewUserMessage("hello")))
	err = s.Append(NewSystemMessage("late"))
	assert.True(t, errors.Is(err, ErrSystemNotFirst))
	assert.Equal(t, 1, s.Len())
}

func TestSession_RejectsUnknownRole(t *testing.T) {
	s := NewSession()
	err := s.Append(Message{Role: "tool", Content: "x"})
	assert.True(t, errors.Is(err, ErrInvalidRole))
	assert.Equal(t, 0, s.Len())
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Append(NewUserMessage("original")))

	snap := s.Snapshot()
	snap[0].Content = "mutated"

	assert.Equal(t, "original", s.Snapshot()[0].Content)
}

func TestSession_EmptySystemPrompt(t *testing.T) {
	s := NewSessionWithSystem("")
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot())
}

// =============================================================================
// DISPLAY BUFFER TESTS
// =============================================================================

func TestDisplayBuffer_EvictsOldest(t *testing.T) {
	b := NewDisplayBuffer(0)
	for i := 0; i < DisplayLimit+5; i++ {
		b.Add(fmt.Sprintf("line %d", i))
	}

	lines := b.Lines()
	require.Len(t, lines, DisplayLimit)
	assert.Equal(t, "line 5", lines[0])
	assert.Equal(t, fmt.Sprintf("line %d", DisplayLimit+4), lines[len(lines)-1])
}

func TestDisplayBuffer_SmallLimit(t *testing.T) {
	b := NewDisplayBuffer(2)
	b.Add("a")
	b.Add("b")
	b.Add("c")
	assert.Equal(t, []string{"b", "c"}, b.Lines())
	assert.Equal(t, 2, b.Len())
}
