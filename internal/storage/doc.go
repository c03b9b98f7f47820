// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists completed chat turns to a relational table:
//
//	chat_history(id, user_query, ai_response, timestamp)
//
// One row is inserted per completed turn with a parameterized statement.
// The backend is chosen from DATABASE_URL: postgres:// URLs use PostgreSQL
// through pgx; any other value is a SQLite file (modernc.org/sqlite, no cgo).
// With no URL the database lives at ~/.nerva/history.db.
//
// Persistence is best effort. Callers log failures and carry on; a storage
// error never ends a chat session.
package storage
