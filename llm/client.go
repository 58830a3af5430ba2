// Package llm is a typed facade over the OpenRouter chat-completions API.
// It builds extraction prompts, paces calls to respect upstream rate limits,
// retries transient transport failures, and validates that responses are
// strict JSON.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/ontorag/metrics"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Defaults for the OpenRouter endpoint.
const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel       = "openai/gpt-4o-mini"
	DefaultAppName     = "OntoRAG"
	DefaultSiteURL     = "https://ontorag.github.io"
	DefaultTemperature = 0.2
	DefaultMinInterval = 10 * time.Second
	DefaultTimeout     = 120 * time.Second
)

// Config carries the OpenRouter connection settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	AppName     string
	SiteURL     string
	Temperature float64

	// MinInterval is the minimum delay between successive calls.
	MinInterval time.Duration

	// Timeout bounds each completion request.
	Timeout time.Duration
}

// ConfigFromEnv reads the OPENROUTER_* environment variables, applying
// defaults for everything but the API key.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:      os.Getenv("OPENROUTER_API_KEY"),
		BaseURL:     envOr("OPENROUTER_BASE_URL", DefaultBaseURL),
		Model:       envOr("OPENROUTER_MODEL", DefaultModel),
		AppName:     envOr("OPENROUTER_APP_NAME", DefaultAppName),
		SiteURL:     envOr("OPENROUTER_SITE_URL", DefaultSiteURL),
		Temperature: DefaultTemperature,
		MinInterval: DefaultMinInterval,
		Timeout:     DefaultTimeout,
	}
	return cfg
}

// Validate checks that the config can make calls. The API key is required
// only at the call boundary; pure pipeline code never needs it.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is not set")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model is empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// TokenUsage represents token consumption details for an LLM call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the completion result.
type Response struct {
	// RequestID uniquely identifies this call for log correlation.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the model that produced the response.
	Model string

	// Usage contains token consumption metrics.
	Usage TokenUsage
}

// Client is an OpenRouter chat-completions client. The HTTP client is
// reused across calls; pacing between calls is enforced internally.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a client for the given config.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		cfg:         cfg,
		retryConfig: DefaultRetryConfig(),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chatRequest is the OpenRouter request body.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// chatResponse is the subset of the OpenRouter response body we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string     `json:"model"`
	Usage TokenUsage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Complete sends a chat completion, pacing against the previous call and
// retrying transient transport failures with exponential backoff.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Response, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, NewFatalError(fmt.Errorf("llm config: %w", err))
	}
	if len(messages) == 0 {
		return nil, NewFatalError(fmt.Errorf("at least one message is required"))
	}

	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	started := time.Now()

	var lastErr error
	for attempt := 0; attempt < c.retryConfig.MaxAttempts; attempt++ {
		if attempt > 0 {
			metrics.LLMRetries.Inc()
			backoff := c.retryConfig.backoffFor(attempt - 1)
			c.logger.Debug("retrying llm call",
				"request_id", requestID,
				"attempt", attempt+1,
				"backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, NewTransientError(ctx.Err())
			}
		}

		resp, err := c.doRequest(ctx, requestID, messages)
		if err == nil {
			metrics.LLMCalls.WithLabelValues("ok").Inc()
			metrics.LLMTokens.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.LLMTokens.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))
			c.logger.Debug("llm call complete",
				"request_id", requestID,
				"model", resp.Model,
				"tokens", resp.Usage.TotalTokens,
				"duration", time.Since(started))
			return resp, nil
		}

		lastErr = err
		if IsFatal(err) {
			metrics.LLMCalls.WithLabelValues("fatal_error").Inc()
			return nil, err
		}
		c.logger.Warn("llm call failed",
			"request_id", requestID,
			"attempt", attempt+1,
			"error", err)
	}

	metrics.LLMCalls.WithLabelValues("transient_error").Inc()
	return nil, fmt.Errorf("llm call failed after %d attempts: %w", c.retryConfig.MaxAttempts, lastErr)
}

// pace blocks until MinInterval has elapsed since the previous call. Calls
// are serialized through the client mutex, so concurrent extractors share
// one rate budget.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.MinInterval > 0 && !c.lastCall.IsZero() {
		wait := c.cfg.MinInterval - time.Since(c.lastCall)
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return NewTransientError(ctx.Err())
			}
		}
	}
	c.lastCall = time.Now()
	return nil
}

func (c *Client) doRequest(ctx context.Context, requestID string, messages []Message) (*Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("marshal request: %w", err))
	}

	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.AppName != "" {
		req.Header.Set("X-Title", c.cfg.AppName)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("post %s: %w", url, err))
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		err := fmt.Errorf("openrouter returned %d: %s", httpResp.StatusCode, truncate(string(data), 200))
		if isRetryableStatus(httpResp.StatusCode) {
			return nil, NewTransientError(err)
		}
		return nil, NewFatalError(err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, NewTransientError(fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != nil {
		return nil, NewFatalError(fmt.Errorf("openrouter error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return nil, NewTransientError(fmt.Errorf("response has no choices"))
	}

	return &Response{
		RequestID: requestID,
		Content:   parsed.Choices[0].Message.Content,
		Model:     parsed.Model,
		Usage:     parsed.Usage,
	}, nil
}

// isRetryableStatus classifies HTTP statuses: rate limiting, timeouts and
// upstream 5xx are transient, everything else is fatal.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
