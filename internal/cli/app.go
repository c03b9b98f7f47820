// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nerva-assistant/nerva/internal/completion"
	"github.com/nerva-assistant/nerva/internal/config"
	"github.com/nerva-assistant/nerva/internal/logging"
	"github.com/nerva-assistant/nerva/internal/session"
	"github.com/nerva-assistant/nerva/internal/storage"
)

// app holds the components shared by the front-ends.
type app struct {
	cfg       config.Config
	logger    *log.Logger
	logCloser io.Closer
	store     storage.Store
	transport *completion.Client
	client    *session.Client
}

// newApp resolves configuration and wires the transport, store and session.
// Missing API_URL or API_KEY is fatal. Log and storage failures only warn.
func newApp(ctx context.Context, errOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "%s %v\n", warningStyle.Render("[Warning]"), err)
	}

	logger, closer, err := logging.Open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "%s logging disabled: %v\n", warningStyle.Render("[Warning]"), err)
	}
	logger.Info("starting", "key", cfg.KeyFingerprint(), "pid", os.Getpid())

	store, err := storage.OpenFromConfig(ctx, cfg)
	if err != nil {
		logger.Error("history storage unavailable", "err", err)
		fmt.Fprintf(errOut, "%s history will not be saved: %v\n", warningStyle.Render("[Warning]"), err)
		store = storage.Nop{}
	}

	transport := completion.NewClient(cfg, logger)
	logger.Info("session ready", "model", transport.Model(), "backend", store.Backend())
	client := session.NewClient(transport,
		session.WithStore(store),
		session.WithLogger(logger),
		session.WithSystemPrompt(cfg.SystemPrompt),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		logCloser: closer,
		store:     store,
		transport: transport,
		client:    client,
	}, nil
}

// Close releases the store and log file.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "err", err)
	}
	a.logger.Info("exiting")
	a.logCloser.Close()
}
