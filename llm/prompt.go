package llm

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/c360studio/ontorag/dto"
	"github.com/c360studio/ontorag/schema"
)

// Placeholders a prompt template must contain.
const (
	PlaceholderChunk = "{{CHUNK_DTO_JSON}}"
	PlaceholderCard  = "{{SCHEMA_CARD_JSON}}"
)

//go:embed templates/schema_prompt.txt
var defaultSchemaTemplate string

//go:embed templates/instance_prompt.txt
var defaultInstanceTemplate string

// PromptTemplate is a prompt with the two substitution placeholders.
type PromptTemplate struct {
	text string
}

// DefaultSchemaTemplate returns the embedded schema extraction prompt.
func DefaultSchemaTemplate() *PromptTemplate {
	return &PromptTemplate{text: defaultSchemaTemplate}
}

// DefaultInstanceTemplate returns the embedded instance extraction prompt.
func DefaultInstanceTemplate() *PromptTemplate {
	return &PromptTemplate{text: defaultInstanceTemplate}
}

// LoadTemplate reads a prompt template from a file and checks that both
// placeholders are present.
func LoadTemplate(path string) (*PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	t := &PromptTemplate{text: string(data)}
	for _, ph := range []string{PlaceholderChunk, PlaceholderCard} {
		if !strings.Contains(t.text, ph) {
			return nil, fmt.Errorf("prompt template %s is missing placeholder %s", path, ph)
		}
	}
	return t, nil
}

// Render substitutes the chunk and card placeholders with compact JSON.
// Substituted values never contain newlines.
func (t *PromptTemplate) Render(chunk *dto.ChunkDTO, card *schema.Card) (string, error) {
	chunkJSON, err := json.Marshal(chunk)
	if err != nil {
		return "", fmt.Errorf("marshal chunk dto: %w", err)
	}
	cardJSON, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("marshal schema card: %w", err)
	}

	out := strings.ReplaceAll(t.text, PlaceholderChunk, string(chunkJSON))
	out = strings.ReplaceAll(out, PlaceholderCard, string(cardJSON))
	return out, nil
}
