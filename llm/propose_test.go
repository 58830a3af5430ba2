package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontorag/dto"
	"github.com/c360studio/ontorag/schema"
)

func testChunk() *dto.ChunkDTO {
	return &dto.ChunkDTO{
		DocumentID: "d1",
		ChunkID:    "c1",
		Text:       "Alice works for Acme.",
	}
}

// replySequence serves canned chat completions in order, repeating the last.
func replySequence(calls *atomic.Int32, replies ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(replies) {
			n = len(replies) - 1
		}
		w.Write([]byte(chatReply(replies[n])))
	}
}

func TestProposeSchema(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(replySequence(&calls, `{
		"chunk_id": "c1",
		"proposed_additions": {
			"classes": [{"name": "Person", "evidence": [{"chunk_id": "c1", "quote": "Alice works for Acme."}]}]
		}
	}`))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	prop, err := client.ProposeSchema(context.Background(), testChunk(), schema.NewCard(""), nil)
	require.NoError(t, err)

	assert.Equal(t, "c1", prop.ChunkID)
	require.Len(t, prop.ProposedAdditions.Classes, 1)
	assert.Equal(t, "Person", prop.ProposedAdditions.Classes[0].Name)
	assert.Equal(t, int32(1), calls.Load())
}

func TestProposeSchemaBackfillsChunkID(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(replySequence(&calls, `{"proposed_additions": {"classes": []}}`))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	prop, err := client.ProposeSchema(context.Background(), testChunk(), schema.NewCard(""), nil)
	require.NoError(t, err)
	assert.Equal(t, "c1", prop.ChunkID)
}

func TestProposeSchemaReminderRetry(t *testing.T) {
	var calls atomic.Int32
	var sawReminder atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if calls.Add(1) == 1 {
			w.Write([]byte(chatReply("Sorry, I can only reply in prose today.")))
			return
		}
		// The retry carries the failed reply and the strict-JSON reminder.
		last := req.Messages[len(req.Messages)-1]
		sawReminder.Store(strings.Contains(last.Content, "strict JSON"))
		w.Write([]byte(chatReply(`{"chunk_id": "c1", "proposed_additions": {"classes": []}}`)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	prop, err := client.ProposeSchema(context.Background(), testChunk(), schema.NewCard(""), nil)
	require.NoError(t, err)
	assert.Equal(t, "c1", prop.ChunkID)
	assert.Equal(t, int32(2), calls.Load())
	assert.True(t, sawReminder.Load())
}

func TestProposeSchemaParseErrorAfterRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(replySequence(&calls, "prose", "still prose"))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.ProposeSchema(context.Background(), testChunk(), schema.NewCard(""), nil)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestProposeSchemaRetriesOnSchemaInvalidJSON(t *testing.T) {
	// Valid-looking JSON that fails decoding also triggers the reminder.
	var calls atomic.Int32
	server := httptest.NewServer(replySequence(&calls,
		`{"proposed_additions": "not an object"}`,
		`{"chunk_id": "c1", "proposed_additions": {"classes": []}}`,
	))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	prop, err := client.ProposeSchema(context.Background(), testChunk(), schema.NewCard(""), nil)
	require.NoError(t, err)
	assert.Equal(t, "c1", prop.ChunkID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProposeInstances(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(replySequence(&calls, "```json\n"+`{
		"chunk_id": "c1",
		"instances": [{
			"class": "Person",
			"local_id": "p1",
			"datatype_values": {"email": "alice@acme.example"},
			"evidence": [{"chunk_id": "c1", "quote": "Alice works for Acme."}]
		}]
	}`+"\n```"))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ci, err := client.ProposeInstances(context.Background(), testChunk(), schema.NewCard(""), nil)
	require.NoError(t, err)

	assert.Equal(t, "c1", ci.ChunkID)
	require.Len(t, ci.Instances, 1)
	assert.Equal(t, "p1", ci.Instances[0].LocalID)
}

func TestDefaultTemplatesRender(t *testing.T) {
	card := schema.NewCard("https://example.com/ns/")
	card.Classes = []schema.Class{{Name: "Person"}}

	for name, tmpl := range map[string]*PromptTemplate{
		"schema":   DefaultSchemaTemplate(),
		"instance": DefaultInstanceTemplate(),
	} {
		t.Run(name, func(t *testing.T) {
			out, err := tmpl.Render(testChunk(), card)
			require.NoError(t, err)
			assert.NotContains(t, out, PlaceholderChunk)
			assert.NotContains(t, out, PlaceholderCard)
			assert.Contains(t, out, `"chunk_id":"c1"`)
			assert.Contains(t, out, `"Person"`)
		})
	}
}

func TestLoadTemplateValidatesPlaceholders(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good,
		[]byte("Chunk: {{CHUNK_DTO_JSON}}\nCard: {{SCHEMA_CARD_JSON}}\n"), 0o644))
	tmpl, err := LoadTemplate(good)
	require.NoError(t, err)
	require.NotNil(t, tmpl)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("Chunk: {{CHUNK_DTO_JSON}}\n"), 0o644))
	_, err = LoadTemplate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{SCHEMA_CARD_JSON}}")

	_, err = LoadTemplate(filepath.Join(dir, "absent.txt"))
	assert.Error(t, err)
}
