// Package instance materializes per-chunk instance proposals into a
// provenance-preserving RDF graph governed by the Schema Card.
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/c360studio/ontorag/dto"
)

// Proposal is one proposed instance: a local id, its class, literal and
// object-valued facts, and the evidence quotes backing it.
type Proposal struct {
	Class          string            `json:"class"`
	DatatypeValues map[string]any    `json:"datatype_values"`
	Evidence       []dto.Evidence    `json:"evidence"`
	LocalID        string            `json:"local_id"`
	ObjectValues   map[string]string `json:"object_values"`
}

// ChunkInstances is the typed form of one per-chunk instance extraction
// response.
type ChunkInstances struct {
	ChunkID   string     `json:"chunk_id"`
	Instances []Proposal `json:"instances"`
	Warnings  []string   `json:"warnings"`
}

// DecodeChunk parses an LLM instance response. Numbers are kept in their
// lexical form so integer and decimal literals survive materialization
// without float round-tripping.
func DecodeChunk(data []byte) (*ChunkInstances, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var ci ChunkInstances
	if err := dec.Decode(&ci); err != nil {
		return nil, fmt.Errorf("decode instance proposal: %w", err)
	}
	ci.normalize()
	return &ci, nil
}

func (ci *ChunkInstances) normalize() {
	if ci.Instances == nil {
		ci.Instances = []Proposal{}
	}
	if ci.Warnings == nil {
		ci.Warnings = []string{}
	}
	for i := range ci.Instances {
		p := &ci.Instances[i]
		if p.DatatypeValues == nil {
			p.DatatypeValues = map[string]any{}
		}
		if p.ObjectValues == nil {
			p.ObjectValues = map[string]string{}
		}
		if p.Evidence == nil {
			p.Evidence = []dto.Evidence{}
		}
		for j := range p.Evidence {
			p.Evidence[j].Quote = dto.ClampQuote(p.Evidence[j].Quote)
		}
	}
}
