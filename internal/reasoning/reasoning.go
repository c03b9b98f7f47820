// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reasoning removes model deliberation blocks from raw replies.
//
// Reasoning models wrap their chain of thought in <think>...</think> before
// the visible answer. The block may span lines.
package reasoning

import "strings"

// Block delimiters.
const (
	OpenTag  = "<think>"
	CloseTag = "</think>"
)

// Clean removes the first reasoning block, tags included, and returns the
// remainder untrimmed. Text without a complete open/close pair is returned
// unchanged. Later blocks are left in place; use CleanAll to remove them too.
func Clean(raw string) string {
	_, rest, ok := Extract(raw)
	if !ok {
		return raw
	}
	return rest
}

// CleanAll removes every reasoning block.
func CleanAll(raw string) string {
	for {
		_, rest, ok := Extract(raw)
		if !ok {
			return raw
		}
		raw = rest
	}
}

// Extract finds the first <think> and the first </think> after it. It returns
// the text between the tags, raw with the block removed, and whether a block
// was found.
func Extract(raw string) (thought, rest string, ok bool) {
	start := strings.Index(raw, OpenTag)
	if start < 0 {
		return "", raw, false
	}
	bodyStart := start + len(OpenTag)
	end := strings.Index(raw[bodyStart:], CloseTag)
	if end < 0 {
		return "", raw, false
	}
	bodyEnd := bodyStart + end
	return raw[bodyStart:bodyEnd], raw[:start] + raw[bodyEnd+len(CloseTag):], true
}
