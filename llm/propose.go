package llm

import (
	"context"
	"fmt"

	"github.com/c360studio/ontorag/dto"
	"github.com/c360studio/ontorag/instance"
	"github.com/c360studio/ontorag/proposal"
	"github.com/c360studio/ontorag/schema"
)

const (
	schemaSystemPrompt   = "You are a careful ontology induction engine. Output JSON only."
	instanceSystemPrompt = "You are a careful instance extraction engine. Output JSON only."

	strictJSONReminder = "Your previous reply was not valid strict JSON. " +
		"Return strict JSON only, matching the required structure exactly. No extra text."
)

// ProposeSchema asks the model for ontology additions grounded in one
// chunk. A response that is not strict JSON gets one reminder retry; a
// second failure returns a ParseError so the caller can skip the chunk.
func (c *Client) ProposeSchema(ctx context.Context, chunk *dto.ChunkDTO, card *schema.Card, tmpl *PromptTemplate) (*proposal.ChunkProposal, error) {
	if tmpl == nil {
		tmpl = DefaultSchemaTemplate()
	}

	var out *proposal.ChunkProposal
	err := c.completeJSON(ctx, schemaSystemPrompt, tmpl, chunk, card, func(body []byte) error {
		p, err := proposal.Decode(body)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.ChunkID == "" {
		out.ChunkID = chunk.ChunkID
	}
	return out, nil
}

// ProposeInstances asks the model for instance facts grounded in one chunk,
// with the same strict-JSON retry discipline as ProposeSchema.
func (c *Client) ProposeInstances(ctx context.Context, chunk *dto.ChunkDTO, card *schema.Card, tmpl *PromptTemplate) (*instance.ChunkInstances, error) {
	if tmpl == nil {
		tmpl = DefaultInstanceTemplate()
	}

	var out *instance.ChunkInstances
	err := c.completeJSON(ctx, instanceSystemPrompt, tmpl, chunk, card, func(body []byte) error {
		ci, err := instance.DecodeChunk(body)
		if err != nil {
			return err
		}
		out = ci
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.ChunkID == "" {
		out.ChunkID = chunk.ChunkID
	}
	return out, nil
}

// completeJSON renders the prompt, calls the model, extracts a JSON object
// from the reply and hands it to parse. When extraction or parsing fails it
// retries once with the model's reply and a strict-JSON reminder appended
// to the conversation; a second failure is a ParseError.
func (c *Client) completeJSON(ctx context.Context, system string, tmpl *PromptTemplate, chunk *dto.ChunkDTO, card *schema.Card, parse func([]byte) error) error {
	user, err := tmpl.Render(chunk, card)
	if err != nil {
		return NewFatalError(err)
	}

	messages := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	resp, err := c.Complete(ctx, messages)
	if err != nil {
		return err
	}
	firstErr := tryParse(resp.Content, parse)
	if firstErr == nil {
		return nil
	}

	c.logger.Warn("response is not strict JSON, retrying with reminder",
		"request_id", resp.RequestID,
		"chunk_id", chunk.ChunkID,
		"error", firstErr)

	messages = append(messages,
		Message{Role: "assistant", Content: resp.Content},
		Message{Role: "user", Content: strictJSONReminder},
	)
	resp, err = c.Complete(ctx, messages)
	if err != nil {
		return err
	}
	if retryErr := tryParse(resp.Content, parse); retryErr != nil {
		return NewParseError(chunk.ChunkID, 2, retryErr)
	}
	return nil
}

func tryParse(content string, parse func([]byte) error) error {
	body := ExtractJSON(content)
	if body == "" {
		return fmt.Errorf("no JSON object in response")
	}
	return parse([]byte(body))
}
