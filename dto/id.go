package dto

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
)

// DocumentID derives the 40-hex document identifier from the source path
// bytes. It is a pure function: the same path always yields the same id.
func DocumentID(sourcePath string) string {
	sum := sha1.Sum([]byte(sourcePath))
	return hex.EncodeToString(sum[:])
}

// ChunkID derives the 40-hex chunk identifier from the document id, the
// chunk index and the chunk text.
func ChunkID(documentID string, chunkIndex int, text string) string {
	h := sha1.New()
	io.WriteString(h, documentID)
	io.WriteString(h, strconv.Itoa(chunkIndex))
	io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

// HashText returns the SHA-1 hex digest of a text.
func HashText(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HashFile returns the SHA-256 hex digest of a file's raw bytes.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
