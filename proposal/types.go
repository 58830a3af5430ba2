// Package proposal holds the typed form of LLM ontology proposals and the
// document-level aggregation that fuses per-chunk evidence.
//
// Proposals are suggestions, never authoritative: the Schema Card merger in
// package schema decides what enters the canonical ontology.
package proposal

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/ontorag/dto"
)

// Class is a proposed ontology class.
type Class struct {
	Description string         `json:"description,omitempty"`
	Evidence    []dto.Evidence `json:"evidence,omitempty"`
	Name        string         `json:"name"`
	Origin      string         `json:"origin,omitempty"`
}

// DatatypeProperty is a proposed literal-valued property.
type DatatypeProperty struct {
	Description string         `json:"description,omitempty"`
	Domain      string         `json:"domain"`
	Evidence    []dto.Evidence `json:"evidence,omitempty"`
	Name        string         `json:"name"`
	Origin      string         `json:"origin,omitempty"`
	Range       string         `json:"range"`
}

// ObjectProperty is a proposed entity-valued property.
type ObjectProperty struct {
	Description string         `json:"description,omitempty"`
	Domain      string         `json:"domain"`
	Evidence    []dto.Evidence `json:"evidence,omitempty"`
	Name        string         `json:"name"`
	Origin      string         `json:"origin,omitempty"`
	Range       string         `json:"range"`
}

// Event is a proposed event type with participating actors and effects.
type Event struct {
	Actors   []string       `json:"actors,omitempty"`
	Effects  []string       `json:"effects,omitempty"`
	Evidence []dto.Evidence `json:"evidence,omitempty"`
	Name     string         `json:"name"`
	Origin   string         `json:"origin,omitempty"`
}

// Additions groups the proposed ontology elements of one proposal.
type Additions struct {
	Classes            []Class            `json:"classes"`
	DatatypeProperties []DatatypeProperty `json:"datatype_properties"`
	Events             []Event            `json:"events"`
	ObjectProperties   []ObjectProperty   `json:"object_properties"`
}

// ReuseHint suggests reusing an existing schema element instead of creating
// a proposed one. Hints are never auto-applied.
type ReuseHint struct {
	Proposed  string `json:"proposed"`
	Rationale string `json:"rationale,omitempty"`
	Reuse     string `json:"reuse"`
}

// Alias suggests that a set of names refer to the same concept.
type Alias struct {
	Names     []string `json:"names"`
	Rationale string   `json:"rationale,omitempty"`
}

// ChunkProposal is the typed form of one per-chunk LLM response.
type ChunkProposal struct {
	AliasOrMergeSuggestions []Alias    `json:"alias_or_merge_suggestions"`
	ChunkID                 string     `json:"chunk_id"`
	ProposedAdditions       Additions  `json:"proposed_additions"`
	ReuseInsteadOfCreate    []ReuseHint `json:"reuse_instead_of_create"`
	Warnings                []string   `json:"warnings"`
}

// DocumentProposal is the aggregation of a document's chunk proposals. It
// has the same shape as a chunk proposal minus the chunk id.
type DocumentProposal struct {
	AliasOrMergeSuggestions []Alias     `json:"alias_or_merge_suggestions"`
	ProposedAdditions       Additions   `json:"proposed_additions"`
	ReuseInsteadOfCreate    []ReuseHint `json:"reuse_instead_of_create"`
	Warnings                []string    `json:"warnings"`
}

// Decode parses an LLM response body into a typed chunk proposal. Unknown
// keys are ignored, missing keys default to empty collections, and evidence
// quotes are clamped to the word bound.
func Decode(data []byte) (*ChunkProposal, error) {
	var p ChunkProposal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode chunk proposal: %w", err)
	}
	p.normalize()
	return &p, nil
}

// normalize replaces nil collections with empty ones and clamps quotes so
// downstream code never sees nil slices or oversized evidence.
func (p *ChunkProposal) normalize() {
	if p.ProposedAdditions.Classes == nil {
		p.ProposedAdditions.Classes = []Class{}
	}
	if p.ProposedAdditions.DatatypeProperties == nil {
		p.ProposedAdditions.DatatypeProperties = []DatatypeProperty{}
	}
	if p.ProposedAdditions.ObjectProperties == nil {
		p.ProposedAdditions.ObjectProperties = []ObjectProperty{}
	}
	if p.ProposedAdditions.Events == nil {
		p.ProposedAdditions.Events = []Event{}
	}
	if p.ReuseInsteadOfCreate == nil {
		p.ReuseInsteadOfCreate = []ReuseHint{}
	}
	if p.AliasOrMergeSuggestions == nil {
		p.AliasOrMergeSuggestions = []Alias{}
	}
	if p.Warnings == nil {
		p.Warnings = []string{}
	}

	for i := range p.ProposedAdditions.Classes {
		clampEvidence(p.ProposedAdditions.Classes[i].Evidence)
	}
	for i := range p.ProposedAdditions.DatatypeProperties {
		clampEvidence(p.ProposedAdditions.DatatypeProperties[i].Evidence)
	}
	for i := range p.ProposedAdditions.ObjectProperties {
		clampEvidence(p.ProposedAdditions.ObjectProperties[i].Evidence)
	}
	for i := range p.ProposedAdditions.Events {
		clampEvidence(p.ProposedAdditions.Events[i].Evidence)
	}
}

func clampEvidence(evs []dto.Evidence) {
	for i := range evs {
		evs[i].Quote = dto.ClampQuote(evs[i].Quote)
	}
}
