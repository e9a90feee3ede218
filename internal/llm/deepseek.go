// Package llm provides a minimal client for the DeepSeek chat-completions
// API, the remote text capability behind sentiment, emotion, and summary
// classification. The wire format is OpenAI-compatible.
package llm

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

// Common errors returned by the client.
var (
	ErrNoAPIKey     = errors.New("llm: API key not configured")
	ErrRateLimit    = errors.New("llm: rate limit exceeded")
	ErrProviderDown = errors.New("llm: provider unavailable")
	ErrEmptyReply   = errors.New("llm: empty completion")
)

// DefaultModel is the DeepSeek model used when none is configured.
const DefaultModel = "deepseek-chat"

// Client talks to a DeepSeek-compatible chat-completions endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature *float64
	maxTokens   int
	client      *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (e.g., a proxy or a test server).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTemperature sets the sampling temperature. An explicit 0 is sent on
// the wire, not treated as unset.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = &t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a DeepSeek client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	defaultTemp := 0.1
	c := &Client{
		apiKey:      apiKey,
		baseURL:     "https://api.deepseek.com/v1",
		model:       DefaultModel,
		temperature: &defaultTemp,
		maxTokens:   300,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// ── Wire types (OpenAI-compatible) ──

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat sends a system+user prompt pair and returns the completion text.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	body.Temperature = c.temperature
	if c.maxTokens > 0 {
		body.MaxTokens = &c.maxTokens
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("deepseek: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderDown, err)
	}
	defer resp.Body.Close()

	if err := checkError(resp); err != nil {
		return "", err
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("deepseek: decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// Ping verifies the API key with a minimal request.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderDown, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: invalid API key", ErrNoAPIKey)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProviderDown, resp.StatusCode)
	}
	return nil
}

func checkError(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrNoAPIKey, apiErr.Error.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimit, apiErr.Error.Message)
		}
		return fmt.Errorf("deepseek: API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("deepseek: HTTP %d: %s", resp.StatusCode, string(body))
}
