// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// DisplayLimit is the number of lines the full-screen UI keeps for rendering.
const DisplayLimit = 100

// DisplayBuffer holds rendered chat lines for the full-screen UI. When it
// exceeds its capacity the oldest line is dropped. It only bounds what is
// drawn; the session transcript is unaffected.
type DisplayBuffer struct {
	lines []string
	limit int
}

// NewDisplayBuffer creates a buffer holding at most limit lines. A limit of
// zero or less uses DisplayLimit.
func NewDisplayBuffer(limit int) *DisplayBuffer {
	if limit <= 0 {
		limit = DisplayLimit
	}
	return &DisplayBuffer{limit: limit}
}

// Add appends a line, evicting the oldest ones past the limit.
func (b *DisplayBuffer) Add(line string) {
	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.limit; over > 0 {
		b.lines = append(b.lines[:0], b.lines[over:]...)
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *DisplayBuffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of buffered lines.
func (b *DisplayBuffer) Len() int {
	return len(b.lines)
}
