// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"github.com/nerva-assistant/nerva/internal/completion"
	"github.com/nerva-assistant/nerva/internal/session"
)

// TurnCompleteMsg carries a successful reply.
type TurnCompleteMsg struct {
	Query string
	Reply session.Reply
}

// TurnErrorMsg carries a failed turn.
type TurnErrorMsg struct {
	Query string
	Err   error
}

// HealthCheckedMsg carries the result of a connectivity check.
type HealthCheckedMsg struct {
	Status completion.HealthStatus
}
