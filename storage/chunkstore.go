// Package storage persists DTOs on disk: document metadata as JSON files and
// chunks as append-only line-delimited JSON.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/c360studio/ontorag/dto"
)

// maxChunkLine bounds a single JSONL record. Chunks are bounded by the
// chunker well below this.
const maxChunkLine = 16 * 1024 * 1024

// ChunkStore is an append-only JSONL store of ChunkDTOs. Writes preserve
// existing content; reads are streaming and restartable. Ordering is
// insertion order within a single writer session only.
type ChunkStore struct {
	path string
}

// NewChunkStore returns a store backed by the given JSONL file. The file is
// created on first append.
func NewChunkStore(path string) *ChunkStore {
	return &ChunkStore{path: path}
}

// Path returns the backing file path.
func (s *ChunkStore) Path() string {
	return s.path
}

// AppendMany appends chunks to the store, one compact JSON record per line.
func (s *ChunkStore) AppendMany(chunks []dto.ChunkDTO) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create chunk store directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open chunk store: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range chunks {
		if err := enc.Encode(&chunks[i]); err != nil {
			return fmt.Errorf("encode chunk %s: %w", chunks[i].ChunkID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush chunk store: %w", err)
	}
	return nil
}

// Each streams every chunk in the store through fn, stopping at the first
// error. A missing store file yields zero chunks.
func (s *ChunkStore) Each(fn func(dto.ChunkDTO) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open chunk store: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChunkLine)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var chunk dto.ChunkDTO
		if err := json.Unmarshal(raw, &chunk); err != nil {
			return fmt.Errorf("decode chunk at line %d: %w", line, err)
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read chunk store: %w", err)
	}
	return nil
}

// ReadAll loads every chunk into memory.
func (s *ChunkStore) ReadAll() ([]dto.ChunkDTO, error) {
	var chunks []dto.ChunkDTO
	err := s.Each(func(c dto.ChunkDTO) error {
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// Count returns the number of chunks in the store.
func (s *ChunkStore) Count() (int, error) {
	n := 0
	err := s.Each(func(dto.ChunkDTO) error {
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
