// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tui implements the full-screen interface: a health panel that
// probes the endpoint on demand and a chat view backed by a session.
//
// Keys:
//
//	Tab            switch between Health Check and Chat Mode
//	c              run a connectivity check (Health tab)
//	q              quit (Health tab)
//	Enter          send the input line (Chat tab)
//	Up/Down        scroll one line
//	PgUp/PgDn      scroll five lines
//	Esc, Ctrl+C    quit from anywhere
package tui
