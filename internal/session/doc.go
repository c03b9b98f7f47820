// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs chat turns for both front-ends.
//
// A Client owns the transcript. Each Submit appends the user message, sends
// the full transcript through a Transport, strips the reasoning block from
// the reply, appends it and persists the turn. Classify tells a front-end
// whether a line is blank, an exit sentinel, a slash command or a message.
package session
