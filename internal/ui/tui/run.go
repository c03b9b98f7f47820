// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// Run starts the full-screen UI and blocks until the user quits or ctx is
// cancelled. Any turn still in flight is cancelled on exit.
func Run(ctx context.Context, submitter Submitter, checker HealthChecker, logger *log.Logger) error {
	m := New(ctx, submitter, checker, WithLogger(logger))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.cancelMgr.clear()
	} else {
		m.cancelMgr.clear()
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
