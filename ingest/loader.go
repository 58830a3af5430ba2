// Package ingest turns source files into DocumentDTOs: a loader extracts
// text, the chunker windows it, and the ingestor assembles chunks with
// deterministic ids and provenance.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadedDocument is the text a loader extracted from a source file.
type LoadedDocument struct {
	// Title is the document title, if the format carries one.
	Title string

	// Text is the extracted text, markdown-flavored where possible.
	Text string

	// Mime is the detected MIME type.
	Mime string
}

// Loader extracts text from one family of source formats.
type Loader interface {
	// Supports reports whether the loader handles the given lowercase
	// file extension (including the dot).
	Supports(ext string) bool

	// Load extracts the document text from the file.
	Load(path string) (*LoadedDocument, error)
}

// TextLoader reads plain-text and markdown files as-is.
type TextLoader struct{}

// Supports reports the extensions TextLoader handles. It also serves as the
// fallback for unknown extensions via the ingestor.
func (TextLoader) Supports(ext string) bool {
	switch ext {
	case ".txt", ".md", ".markdown", ".text":
		return true
	}
	return false
}

// Load reads the file as UTF-8 text.
func (TextLoader) Load(path string) (*LoadedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	mime := "text/plain"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		mime = "text/markdown"
	}
	return &LoadedDocument{
		Title: titleFromMarkdown(string(data)),
		Text:  string(data),
		Mime:  mime,
	}, nil
}

// titleFromMarkdown returns the first level-1 heading, if any.
func titleFromMarkdown(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			return ""
		}
	}
	return ""
}
