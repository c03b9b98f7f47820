// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
//
// # Key Types
//
//   - Role: message role enumeration (system, user, assistant)
//   - Message: single immutable transcript entry
//   - Session: append-only transcript; a system message may only come first
//   - DisplayBuffer: bounded list of rendered lines for the full-screen UI
//
// # Usage
//
//	s := model.NewSessionWithSystem("You are NERVA.")
//	_ = s.Append(model.NewUserMessage("Hello!"))
//	reply, err := client.Send(ctx, s.Snapshot())
package model
