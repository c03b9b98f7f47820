// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerva-assistant/nerva/internal/config"
	"github.com/nerva-assistant/nerva/internal/export"
	"github.com/nerva-assistant/nerva/internal/storage"
	"github.com/nerva-assistant/nerva/internal/ui/styles"
	"github.com/nerva-assistant/nerva/internal/ui/tui"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitInterrupted is used when SIGINT ends the REPL at the prompt
	ExitInterrupted = 130
	// ExitTerminated is used when SIGTERM ends the REPL
	ExitTerminated = 143
)

// BuildInfo is injected by the linker at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

// Execute runs the command line and returns the process exit code.
func Execute(info BuildInfo) int {
	root := NewRootCommand(info)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
		var missing *config.MissingVariableError
		if errors.As(err, &missing) {
			fmt.Fprintf(os.Stderr, "Set %s in the environment or in a .env file.\n", missing.Name)
		}
		return ExitGeneralError
	}
	return ExitSuccess
}

// NewRootCommand builds the nerva command tree. Running it without a
// subcommand starts the REPL.
func NewRootCommand(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "nerva",
		Short: "NERVA - Networked Embedded Responsive Virtual Assistant",
		Long: `NERVA is a terminal chat client for an OpenAI-compatible chat completion endpoint.

Required environment:
  API_URL    full URL of the chat completion endpoint
  API_KEY    bearer token

Optional environment:
  DATABASE_URL     postgres:// URL or SQLite path for saved turns
  NERVA_MODEL      model identifier
  NERVA_LOG_LEVEL  debug, info, warn or error

Quick Start:
  nerva                 # line-oriented chat
  nerva tui             # full-screen chat with health tab
  nerva history         # list saved turns`,
		Version:       info.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newTUICommand(),
		newHistoryCommand(),
		newVersionCommand(info),
	)
	return root
}

// =============================================================================
// CHAT (DEFAULT COMMAND)
// =============================================================================

func runChat(ctx context.Context, _ io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	a, err := newApp(ctx, errOut)
	if err != nil {
		return err
	}
	defer a.Close()

	input := NewChatCLI("")
	defer input.Close()

	opts := []REPLOption{WithExit(func(code int) {
		a.Close()
		os.Exit(code)
	})}
	if IsStdoutTTY() {
		opts = append(opts, WithMarkdown(), WithInteractive())
	}
	repl := NewREPL(a.client, input, out, errOut, opts...)

	// On a TTY liner reads Ctrl+C at the prompt itself and reports
	// ErrPromptAborted; the handler covers turns and piped input.
	stopSignals := repl.WatchSignals()
	defer stopSignals()

	return repl.Run(ctx)
}

// =============================================================================
// TUI
// =============================================================================

func newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat interface",
		Long: `Start the full-screen interface with a Health Check tab and a Chat tab.

Keys:
  Tab          switch tabs
  c            check API connection (Health tab)
  Enter        send message (Chat tab)
  Up/Down      scroll one line
  PgUp/PgDn    scroll one page
  q            quit (Health tab)
  Esc, Ctrl+C  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.Run(ctx, a.client, a.transport, a.logger)
		},
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func newHistoryCommand() *cobra.Command {
	var (
		limit  int
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved chat turns",
		Long: `List the most recent saved turns, oldest first.

Turns are read from DATABASE_URL when it is set, otherwise from
~/.nerva/history.db.`,
		Example: `  nerva history
  nerva history --limit 5 --format markdown
  nerva history --format json --output ./exports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runHistory(ctx, cmd.OutOrStdout(), limit, format, output)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultRecentLimit, "Number of turns to show")
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatText, "Output format (text, json, yaml, markdown)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a new file in this directory instead of stdout")
	return cmd
}

// runHistory does not need API credentials; only the storage settings are
// read from the environment.
func runHistory(ctx context.Context, out io.Writer, limit int, format, outputDir string) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}

	opts := export.DefaultOptions()
	opts.Width = GetTerminalWidth()
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, historyDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	turns, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if outputDir != "" {
		opts.OutputDir = outputDir
		path, err := export.ExportToFile(turns, exporter, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, styles.RenderSuccess(path))
		return nil
	}

	content, err := exporter.Export(turns)
	if err != nil {
		return err
	}
	_, err = out.Write(content)
	return err
}

// historyDatabaseURL resolves DATABASE_URL from the environment, .env and
// config file without requiring API credentials.
func historyDatabaseURL() string {
	cfg := config.Default()
	if path, err := config.PathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			_ = config.LoadTOML(&cfg, path)
		}
	}
	config.LoadDotEnv()
	if v := os.Getenv(config.EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	return cfg.DatabaseURL
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nerva %s\n", info)
		},
	}
}
