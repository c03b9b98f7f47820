// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the application logger.
//
// Both front-ends own the terminal, so log output goes to a file
// (~/.nerva/nerva.log by default) rather than stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nerva-assistant/nerva/internal/config"
)

// DefaultFileName is the log file created inside the config directory.
const DefaultFileName = "nerva.log"

// New returns a logger writing to w at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "nerva",
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps a config level string to a log.Level.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Open creates the file-backed logger described by cfg. The returned closer
// must be called on exit. If the log file cannot be opened, logging is
// discarded and the error is returned alongside a usable logger.
func Open(cfg config.Config) (*log.Logger, io.Closer, error) {
	path := cfg.LogFile
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return New(io.Discard, cfg.LogLevel), nopCloser{}, err
		}
		path = filepath.Join(dir, DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return New(io.Discard, cfg.LogLevel), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return New(io.Discard, cfg.LogLevel), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, cfg.LogLevel), f, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return New(io.Discard, "error")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
