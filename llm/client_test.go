package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "openai/gpt-4o-mini",
		AppName:     DefaultAppName,
		SiteURL:     DefaultSiteURL,
		Temperature: DefaultTemperature,
		MinInterval: 0, // no pacing in tests
		Timeout:     5 * time.Second,
	}
}

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
		"model": "openai/gpt-4o-mini",
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig("https://openrouter.ai/api/v1")
	require.NoError(t, cfg.Validate())

	noKey := cfg
	noKey.APIKey = ""
	assert.Error(t, noKey.Validate())

	noModel := cfg
	noModel.Model = ""
	assert.Error(t, noModel.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	t.Setenv("OPENROUTER_MODEL", "anthropic/claude-3.5-sonnet")
	t.Setenv("OPENROUTER_BASE_URL", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", cfg.Model)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultMinInterval, cfg.MinInterval)
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "openai/gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.2, req.Temperature, 0.001)

		w.Write([]byte(chatReply(`{"ok": true}`)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	resp, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "system"},
		{Role: "user", Content: "user"},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"ok": true}`, resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, DefaultSiteURL, gotReferer)
	assert.Equal(t, DefaultAppName, gotTitle)
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	cfg := testConfig("https://unused.example")
	cfg.APIKey = ""
	client := NewClient(cfg)

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestCompleteRequiresMessages(t *testing.T) {
	client := NewClient(testConfig("https://unused.example"))
	_, err := client.Complete(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestCompleteRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(chatReply("ok")))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithRetryConfig(fastRetry()))
	resp, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithRetryConfig(fastRetry()))
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteFatalStatusDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithRetryConfig(fastRetry()))
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "model not found", "code": 404}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithRetryConfig(fastRetry()))
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Contains(t, err.Error(), "model not found")
}

func TestPaceEnforcesMinInterval(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("ok")))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MinInterval = 50 * time.Millisecond
	client := NewClient(cfg)

	started := time.Now()
	for i := 0; i < 2; i++ {
		_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, isRetryableStatus(http.StatusTooManyRequests))
	assert.True(t, isRetryableStatus(http.StatusRequestTimeout))
	assert.True(t, isRetryableStatus(http.StatusBadGateway))
	assert.False(t, isRetryableStatus(http.StatusBadRequest))
	assert.False(t, isRetryableStatus(http.StatusUnauthorized))
}

func TestErrorClassification(t *testing.T) {
	transient := NewTransientError(assert.AnError)
	fatal := NewFatalError(assert.AnError)
	parse := NewParseError("c1", 2, assert.AnError)

	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(fatal))
	assert.True(t, IsFatal(fatal))
	assert.True(t, IsParseError(parse))
	assert.False(t, IsParseError(fatal))
	assert.Contains(t, parse.Error(), "c1")
}
