// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists completed chat turns.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/nerva-assistant/nerva/internal/config"
)

// DefaultSQLiteFile is the database created in the config directory when no
// DATABASE_URL is configured.
const DefaultSQLiteFile = "history.db"

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 20

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrEmptyTurn is returned when a turn has no user query.
	ErrEmptyTurn = errors.New("turn has no user query")
)

// Turn is one persisted exchange.
type Turn struct {
	ID         int64     `json:"id" yaml:"id"`
	UserQuery  string    `json:"user_query" yaml:"user_query"`
	AIResponse string    `json:"ai_response" yaml:"ai_response"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// Store saves and lists turns. Implementations are safe for concurrent use.
type Store interface {
	// SaveTurn inserts one row for a completed turn.
	SaveTurn(ctx context.Context, userQuery, aiResponse string) error
	// Recent returns up to limit most recent turns, oldest first.
	Recent(ctx context.Context, limit int) ([]Turn, error)
	// Backend names the storage engine ("sqlite", "postgres", "none").
	Backend() string
	Close() error
}

// Open returns the store selected by databaseURL. postgres:// and
// postgresql:// URLs use PostgreSQL; anything else is a SQLite file path.
// An empty URL uses ~/.nerva/history.db.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if IsPostgresURL(databaseURL) {
		return OpenPostgres(ctx, databaseURL)
	}

	path := databaseURL
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, DefaultSQLiteFile)
	}
	return OpenSQLite(ctx, strings.TrimPrefix(path, "sqlite://"))
}

// OpenFromConfig opens the configured store, or a no-op store when
// persistence is disabled.
func OpenFromConfig(ctx context.Context, cfg config.Config) (Store, error) {
	if !cfg.Persist {
		return Nop{}, nil
	}
	return Open(ctx, cfg.DatabaseURL)
}

// IsPostgresURL reports whether url selects the PostgreSQL backend.
func IsPostgresURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Nop discards turns. It is used when persistence is disabled.
type Nop struct{}

func (Nop) SaveTurn(context.Context, string, string) error { return nil }

func (Nop) Recent(context.Context, int) ([]Turn, error) { return nil, nil }

func (Nop) Backend() string { return "none" }

func (Nop) Close() error { return nil }

// reverse flips turns in place; queries read newest first.
func reverse(turns []Turn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
