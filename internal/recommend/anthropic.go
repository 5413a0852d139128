package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Client produces free text for a prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RetryConfig controls retries of transient failures.
type RetryConfig struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// backoff returns the wait before retry number attempt (1-based).
func (r RetryConfig) backoff(attempt int) time.Duration {
	d := float64(r.BackoffBase)
	for i := 1; i < attempt; i++ {
		d *= r.BackoffMultiplier
	}
	if r.MaxBackoff > 0 {
		d = min(d, float64(r.MaxBackoff))
	}
	return time.Duration(d)
}

type AnthropicConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Retry     RetryConfig
}

// AnthropicClient calls the Anthropic messages API. The key is held server
// side only.
type AnthropicClient struct {
	url        string
	apiKey     string
	model      string
	maxTokens  int
	retry      RetryConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewAnthropicClient(cfg AnthropicConfig, logger *slog.Logger) *AnthropicClient {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &AnthropicClient{
		url:        strings.TrimSuffix(base, "/") + "/v1/messages",
		apiKey:     cfg.APIKey,
		model:      model,
		maxTokens:  maxTokens,
		retry:      retry,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type messagesRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message, retrying transient
// failures with exponential backoff.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoCredential
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []apiMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := c.retry.backoff(attempt - 1)
			c.logger.Warn("retrying model request", "attempt", attempt, "backoff", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := c.do(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsTransient(err) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *AnthropicClient) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", transient(fmt.Errorf("model request: %w", err))
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transient(err)
	}

	if resp.StatusCode >= 400 {
		se := &StatusError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(data, &er) == nil {
			se.Message = er.Error.Message
		}
		if se.Temporary() {
			return "", transient(se)
		}
		return "", se
	}

	var out messagesResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("parse model response: %w", err)
	}
	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "No recommendation could be generated.", nil
	}
	return text.String(), nil
}
