package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/c360studio/ontorag/dto"
)

// Store is a directory-backed DTO store. Documents live under documents/ as
// pretty-printed JSON; chunks live under chunks/ as one JSONL file per
// document.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. Subdirectories are created on
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store root directory.
func (s *Store) Dir() string {
	return s.dir
}

// StoreDocument persists a document's metadata and appends its chunks.
// The metadata file never embeds the chunks; they are stored line-delimited
// so readers can stream them.
func (s *Store) StoreDocument(doc *dto.DocumentDTO) error {
	docsDir := filepath.Join(s.dir, "documents")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return fmt.Errorf("create documents directory: %w", err)
	}

	meta := *doc
	meta.Chunks = []dto.ChunkDTO{}

	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", doc.DocumentID, err)
	}
	data = append(data, '\n')

	docPath := filepath.Join(docsDir, doc.DocumentID+".json")
	if err := os.WriteFile(docPath, data, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", doc.DocumentID, err)
	}

	return s.ChunkStore(doc.DocumentID).AppendMany(doc.Chunks)
}

// LoadDocument reads a document's metadata by id.
func (s *Store) LoadDocument(documentID string) (*dto.DocumentDTO, error) {
	path := filepath.Join(s.dir, "documents", documentID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("read document %s: %w", documentID, err)
	}

	var doc dto.DocumentDTO
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", documentID, err)
	}
	return &doc, nil
}

// ChunkStore returns the chunk store for a document.
func (s *Store) ChunkStore(documentID string) *ChunkStore {
	return NewChunkStore(filepath.Join(s.dir, "chunks", documentID+".jsonl"))
}
