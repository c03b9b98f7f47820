// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerva-assistant/nerva/internal/completion"
	"github.com/nerva-assistant/nerva/internal/config"
	"github.com/nerva-assistant/nerva/internal/session"
)

// scriptedInput replays lines, then returns the final error.
type scriptedInput struct {
	lines   []string
	end     error
	prompts []string
	closed  bool
}

func (s *scriptedInput) ReadInput(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		if s.end == nil {
			return "", io.EOF
		}
		return "", s.end
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedInput) Close() { s.closed = true }

// completionServer answers every request with reply, or status when non-zero.
func completionServer(t *testing.T, reply string, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(url string) *session.Client {
	cfg := config.Default()
	cfg.Endpoint = url
	cfg.APIKey = "test-key"
	return session.NewClient(completion.NewClient(cfg, nil))
}

func runREPL(t *testing.T, client *session.Client, input *scriptedInput) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	repl := NewREPL(client, input, &out, &errOut)
	require.NoError(t, repl.Run(context.Background()))
	return out.String(), errOut.String()
}

func TestREPL_SendsAndPrintsReply(t *testing.T) {
	srv, calls := completionServer(t, "<think>hmm</think>Hello there", 0)
	client := newTestClient(srv.URL)
	input := &scriptedInput{lines: []string{"hi"}}

	out, errOut := runREPL(t, client, input)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Contains(t, out, Greeting)
	assert.Contains(t, out, "NERVA: Hello there")
	assert.NotContains(t, out, "hmm")
	assert.Empty(t, errOut)
	assert.Contains(t, input.prompts[0], PromptLabel)
}

func TestREPL_ExitSentinelsNeverSent(t *testing.T) {
	for _, word := range []string{"quit", "EXIT", "  Quit "} {
		t.Run(word, func(t *testing.T) {
			srv, calls := completionServer(t, "x", 0)
			input := &scriptedInput{lines: []string{word, "never read"}}

			out, _ := runREPL(t, newTestClient(srv.URL), input)

			assert.Zero(t, atomic.LoadInt32(calls))
			assert.Len(t, input.lines, 1)
			assert.Contains(t, out, "Goodbye!")
		})
	}
}

func TestREPL_BlankLinesIgnored(t *testing.T) {
	srv, calls := completionServer(t, "x", 0)
	client := newTestClient(srv.URL)
	input := &scriptedInput{lines: []string{"", "   ", "\t"}}

	runREPL(t, client, input)

	assert.Zero(t, atomic.LoadInt32(calls))
	assert.Zero(t, client.Len())
	assert.Len(t, input.prompts, 4)
}

func TestREPL_ErrorContinuesLoop(t *testing.T) {
	srv, calls := completionServer(t, "", http.StatusInternalServerError)
	client := newTestClient(srv.URL)
	input := &scriptedInput{lines: []string{"first", "second"}}

	_, errOut := runREPL(t, client, input)

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Equal(t, 2, strings.Count(errOut, "[Error]"))
	assert.Contains(t, errOut, "API request failed: 500")
	// Both user messages stay in history without replies.
	assert.Equal(t, 2, client.Len())
}

func TestREPL_EndsOnInterruptAtPrompt(t *testing.T) {
	srv, _ := completionServer(t, "x", 0)
	input := &scriptedInput{end: liner.ErrPromptAborted}

	out, _ := runREPL(t, newTestClient(srv.URL), input)
	assert.Contains(t, out, "Goodbye!")
}

func TestREPL_SlashCommands(t *testing.T) {
	srv, calls := completionServer(t, "<think>plan</think>Answer", 0)
	client := newTestClient(srv.URL)
	input := &scriptedInput{lines: []string{
		"/help",
		"question",
		"/reasoning",
		"/history",
		"/status",
		"/bogus",
		"/quit",
		"never read",
	}}

	out, errOut := runREPL(t, client, input)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Contains(t, out, "Available Commands")
	assert.Contains(t, out, "[Reasoning display on]")
	assert.Contains(t, out, "plan")
	assert.Contains(t, out, "1. You: question")
	assert.Contains(t, out, "2. NERVA: Answer")
	assert.Contains(t, out, "Session Status")
	assert.Contains(t, errOut, "unknown command: /bogus")
	assert.Len(t, input.lines, 1)
}

func TestREPL_CancelTurn(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := newTestClient(srv.URL)
	input := &scriptedInput{lines: []string{"slow"}}
	var out, errOut bytes.Buffer
	repl := NewREPL(client, input, &out, &errOut)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, repl.Run(context.Background()))
	}()

	require.Eventually(t, repl.CancelTurn, 2*time.Second, 5*time.Millisecond)
	wg.Wait()

	assert.Contains(t, errOut.String(), "[Cancelled]")
	assert.Equal(t, 1, client.Len())
	assert.False(t, repl.CancelTurn())
}

func TestREPL_ThinkingIndicatorErased(t *testing.T) {
	srv, _ := completionServer(t, "ok", 0)
	var out, errOut bytes.Buffer
	repl := NewREPL(newTestClient(srv.URL), &scriptedInput{lines: []string{"hi"}}, &out, &errOut, WithInteractive())
	require.NoError(t, repl.Run(context.Background()))

	s := out.String()
	idx := strings.Index(s, ThinkingIndicator)
	require.GreaterOrEqual(t, idx, 0)
	assert.Contains(t, s[idx:], "\r"+strings.Repeat(" ", len(ThinkingIndicator))+"\r")
}

func TestDetectColors(t *testing.T) {
	env := func(vars map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		}
	}

	assert.False(t, detectColors(env(map[string]string{"NO_COLOR": "1"}), true))
	assert.True(t, detectColors(env(map[string]string{"FORCE_COLOR": "1"}), false))
	assert.True(t, detectColors(env(nil), true))
	assert.False(t, detectColors(env(nil), false))
	assert.True(t, detectColors(env(map[string]string{"NO_COLOR": ""}), true))
}

// blockingInput blocks at the prompt until closed, then reports end of input.
type blockingInput struct {
	reading chan struct{}
	closed  chan struct{}
	once    sync.Once
}

func newBlockingInput() *blockingInput {
	return &blockingInput{
		reading: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
}

func (b *blockingInput) ReadInput(string) (string, error) {
	select {
	case b.reading <- struct{}{}:
	default:
	}
	<-b.closed
	return "", io.EOF
}

func (b *blockingInput) Close() { b.once.Do(func() { close(b.closed) }) }

func TestREPL_SignalAtPromptExits(t *testing.T) {
	tests := []struct {
		name string
		sig  os.Signal
		code int
	}{
		{"interrupt", os.Interrupt, ExitInterrupted},
		{"terminate", syscall.SIGTERM, ExitTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := completionServer(t, "x", 0)
			input := newBlockingInput()
			codes := make(chan int, 1)
			var out, errOut bytes.Buffer
			repl := NewREPL(newTestClient(srv.URL), input, &out, &errOut,
				WithExit(func(code int) { codes <- code }))

			done := make(chan error, 1)
			go func() { done <- repl.Run(context.Background()) }()
			<-input.reading

			repl.HandleSignal(tt.sig)

			select {
			case code := <-codes:
				assert.Equal(t, tt.code, code)
			case <-time.After(2 * time.Second):
				t.Fatal("idle REPL did not exit on signal")
			}
			require.NoError(t, <-done)
			assert.Zero(t, atomic.LoadInt32(calls))
		})
	}
}

func TestREPL_InterruptDuringTurnOnlyCancels(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	input := &scriptedInput{lines: []string{"slow"}}
	exited := make(chan int, 1)
	var out, errOut bytes.Buffer
	repl := NewREPL(newTestClient(srv.URL), input, &out, &errOut,
		WithExit(func(code int) { exited <- code }))

	done := make(chan error, 1)
	go func() { done <- repl.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		repl.mu.Lock()
		defer repl.mu.Unlock()
		return repl.cancel != nil
	}, 2*time.Second, 5*time.Millisecond)
	repl.HandleSignal(os.Interrupt)

	require.NoError(t, <-done)
	assert.Contains(t, errOut.String(), "[Cancelled]")
	assert.Contains(t, out.String(), "Goodbye!")
	assert.Empty(t, exited)
}
