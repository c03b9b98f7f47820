// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion implements the chat completion transport.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nerva-assistant/nerva/internal/config"
	"github.com/nerva-assistant/nerva/internal/model"
)

// MaxResponseSize is the maximum accepted response body size.
const MaxResponseSize = 10 * 1024 * 1024

// userAgent identifies the client to the endpoint.
const userAgent = "nerva/1.0"

// Error variables for transport failures.
var (
	// ErrBadStatus matches any *StatusError.
	ErrBadStatus = errors.New("bad status")

	// ErrEmptyResponse indicates the endpoint returned zero choices.
	ErrEmptyResponse = errors.New("no response from AI")

	// ErrNetwork indicates the endpoint could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrDecode indicates a request or response body could not be (de)serialized.
	ErrDecode = errors.New("serialization error")
)

// StatusError is returned for non-2xx responses. The body is not parsed.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if text := http.StatusText(e.Code); text != "" {
		return fmt.Sprintf("API request failed: %d %s", e.Code, text)
	}
	return fmt.Sprintf("API request failed: %d", e.Code)
}

// Is reports whether target is ErrBadStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrBadStatus
}

// ChatMessage is the wire form of a transcript message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body POSTed to the completion endpoint.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

// ChatResponse is the decoded success body. Only the first choice is used.
type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// NewChatRequest builds a request carrying every message of history in order.
func NewChatRequest(modelID string, temperature float64, history []model.Message) ChatRequest {
	msgs := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, ChatMessage{Role: m.Role.String(), Content: m.Content})
	}
	return ChatRequest{
		Model:       modelID,
		Messages:    msgs,
		Temperature: temperature,
		Stream:      false,
	}
}

// Client sends transcripts to the completion endpoint. It holds no history of
// its own; callers pass the full transcript on every call.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      *log.Logger
}

// NewClient creates a client from cfg. A zero cfg.Timeout leaves the HTTP
// client without a timeout; cancellation then comes only from the context.
func NewClient(cfg config.Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Send performs one completion request with the given history and returns the
// content of the first choice. There is no retry.
func (c *Client) Send(ctx context.Context, history []model.Message) (string, error) {
	body, err := json.Marshal(NewChatRequest(c.model, c.temperature, history))
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrDecode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}
	c.setHeaders(req)

	c.logger.Debug("api request", "method", req.Method, "path", req.URL.Path, "messages", len(history))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.logger.Warn("api request failed", "err", err, "duration", time.Since(start))
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	c.logger.Info("api response", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	data, err := readResponse(ctx, resp)
	if err != nil {
		return "", err
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrDecode, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return chatResp.Choices[0].Message.Content, nil
}

// setHeaders sets the authorization and content headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// readResponse reads the body with a size limit. A read cut short by ctx
// reports the context error.
func readResponse(ctx context.Context, resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrNetwork, err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: response exceeded maximum size of %d bytes", ErrDecode, MaxResponseSize)
	}
	return data, nil
}
