// Package dto provides the immutable data transfer objects for documents,
// chunks, provenance and evidence.
//
// DTOs freeze document content with replayable provenance: identifiers are
// pure functions of their inputs, so regenerating a store from the same
// sources yields byte-identical ids.
package dto

import (
	"strings"
	"time"
)

// maxQuoteWords bounds evidence quotes. The LLM is instructed to keep quotes
// short; anything longer is clamped at the boundary.
const maxQuoteWords = 25

// maxSnippetLen bounds the provenance text snippet.
const maxSnippetLen = 240

// ProvenanceDTO records where a chunk came from within its source document.
type ProvenanceDTO struct {
	// SourcePath is the path of the source file.
	SourcePath string `json:"source_path"`

	// SourceMime is the MIME type of the source, if known.
	SourceMime string `json:"source_mime,omitempty"`

	// Page is the 1-based page number within the source, if known.
	Page *int `json:"page,omitempty"`

	// PageLabel is the display label of the page, if known.
	PageLabel string `json:"page_label,omitempty"`

	// Section is the heading path of the chunk within the document.
	Section string `json:"section,omitempty"`

	// OffsetStart and OffsetEnd delimit the chunk as a character range
	// within the source text, if known.
	OffsetStart *int `json:"offset_start,omitempty"`
	OffsetEnd   *int `json:"offset_end,omitempty"`

	// TextSnippet is a short whitespace-normalized preview of the chunk.
	TextSnippet string `json:"text_snippet,omitempty"`
}

// ChunkDTO is a content-addressed slice of a document.
type ChunkDTO struct {
	DocumentID string `json:"document_id"`
	ChunkID    string `json:"chunk_id"`
	ChunkIndex int    `json:"chunk_index"`

	// Text is the raw chunk text.
	Text string `json:"text"`

	Provenance ProvenanceDTO `json:"provenance"`

	// TextHash is the digest of Text, for staleness detection.
	TextHash string `json:"text_hash"`

	// CreatedAt is the UTC creation timestamp in ISO-8601.
	CreatedAt string `json:"created_at"`
}

// DocumentDTO is the stable representation of an ingested document.
type DocumentDTO struct {
	DocumentID string `json:"document_id"`
	SourcePath string `json:"source_path"`
	SourceMime string `json:"source_mime,omitempty"`

	// ContentHash is the SHA-256 digest of the source file bytes.
	ContentHash string `json:"content_hash,omitempty"`

	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"created_at"`

	Chunks []ChunkDTO `json:"chunks"`
}

// Evidence links a proposed element or fact to a verbatim quote from a chunk.
type Evidence struct {
	ChunkID string `json:"chunk_id"`
	Quote   string `json:"quote"`
}

// NewTimestamp returns the current UTC time in ISO-8601 with a Z suffix.
func NewTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ClampQuote bounds a quote to the evidence word limit. Whitespace runs are
// collapsed so the bound is stable under reformatting.
func ClampQuote(quote string) string {
	words := strings.Fields(quote)
	if len(words) > maxQuoteWords {
		words = words[:maxQuoteWords]
	}
	return strings.Join(words, " ")
}

// CleanSnippet normalizes whitespace and truncates text for use as a
// provenance snippet.
func CleanSnippet(text string) string {
	t := strings.Join(strings.Fields(text), " ")
	runes := []rune(t)
	if len(runes) > maxSnippetLen {
		return string(runes[:maxSnippetLen]) + "…"
	}
	return t
}
