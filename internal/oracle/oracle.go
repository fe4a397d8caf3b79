// internal/oracle/oracle.go
//
// The oracle is the external chat-completion service every reasoning step
// depends on. It is treated as an opaque, potentially-unreliable
// collaborator: one blocking HTTP call per request, no retries, and callers
// substitute fallbacks on failure.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured signals that no API key or base URL is available. Callers
// treat it like any other oracle failure.
var ErrNotConfigured = errors.New("oracle: client not configured")

// Message is one role/content pair in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a single completion call.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client is the minimal completion surface the agent needs. Tests supply
// fakes; production uses HTTPClient.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function into a Client.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete executes f(ctx, req).
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Settings configures the HTTP client.
type Settings struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	settings Settings
	client   *http.Client
}

// HTTPOption customizes HTTPClient construction.
type HTTPOption func(*HTTPClient)

// WithHTTPDoer overrides the underlying *http.Client, mainly for tests.
func WithHTTPDoer(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// NewHTTPClient builds a client for the configured endpoint.
func NewHTTPClient(settings Settings, opts ...HTTPOption) *HTTPClient {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &HTTPClient{
		settings: settings,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type wireRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete performs one chat-completions call and returns the generated text.
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	if c == nil || strings.TrimSpace(c.settings.BaseURL) == "" || strings.TrimSpace(c.settings.APIKey) == "" {
		return "", ErrNotConfigured
	}
	body, err := json.Marshal(wireRequest{
		Model:       c.settings.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("oracle: encode request: %w", err)
	}
	url := strings.TrimRight(c.settings.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("oracle: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.settings.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("oracle: call %s: %w", url, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("oracle: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle: %s returned status %d", url, resp.StatusCode)
	}
	var decoded wireResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("oracle: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("oracle: response has no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
