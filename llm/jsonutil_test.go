package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"a": 1}`,
			want:    `{"a": 1}`,
		},
		{
			name:    "markdown fence with language",
			content: "Here you go:\n```json\n{\"a\": 1}\n```\nanything else",
			want:    `{"a": 1}`,
		},
		{
			name:    "markdown fence without language",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "prose around object",
			content: "Sure! The result is {\"a\": 1} as requested.",
			want:    `{"a": 1}`,
		},
		{
			name:    "no json at all",
			content: "I cannot help with that.",
			want:    "",
		},
		{
			name:    "empty",
			content: "",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.content))
		})
	}
}

func TestExtractJSONCleansDecorations(t *testing.T) {
	content := `{
  "classes": [
    {"name": "Person"}, // the main entity
  ],
  "url": "https://example.com/path", // keep the slashes in the value
}`

	cleaned := ExtractJSON(content)
	require.NotEmpty(t, cleaned)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(cleaned), &parsed))
	assert.Equal(t, "https://example.com/path", parsed["url"])
}

func TestStripLineComment(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"plain comment", `  "a": 1, // count`, `  "a": 1,`},
		{"slashes inside string survive", `  "u": "http://x/y" `, `  "u": "http://x/y" `},
		{"comment after string value", `  "u": "http://x/y", // note`, `  "u": "http://x/y",`},
		{"escaped quote", `  "s": "say \"hi\" // not a comment"`, `  "s": "say \"hi\" // not a comment"`},
		{"no comment", `  "a": 1,`, `  "a": 1,`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripLineComment(tt.line))
		})
	}
}

func TestBackoffFor(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.Equal(t, "2s", cfg.backoffFor(0).String())
	assert.Equal(t, "4s", cfg.backoffFor(1).String())
	assert.Equal(t, "8s", cfg.backoffFor(2).String())
	// Capped at MaxBackoff.
	assert.Equal(t, "30s", cfg.backoffFor(10).String())
}
