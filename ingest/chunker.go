package ingest

import (
	"fmt"
	"strings"
)

// Config holds chunking configuration.
type Config struct {
	// ChunkSize is the chunk window in characters.
	ChunkSize int

	// Overlap is how many characters consecutive chunks share.
	Overlap int
}

// DefaultConfig returns sensible chunking defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 3000,
		Overlap:   200,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("ChunkSize must be positive, got %d", c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("Overlap must not be negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("Overlap (%d) must be less than ChunkSize (%d)", c.Overlap, c.ChunkSize)
	}
	return nil
}

// Piece is one chunk of source text with its position and section heading.
type Piece struct {
	Text        string
	Section     string
	OffsetStart int
	OffsetEnd   int
}

// Chunker splits document text into overlapping windows, keeping markdown
// section headings as provenance.
type Chunker struct {
	config Config
}

// NewChunker creates a Chunker with the given configuration. A zero config
// selects the defaults.
func NewChunker(cfg Config) (*Chunker, error) {
	if cfg.ChunkSize == 0 {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: cfg}, nil
}

// Chunk splits content into pieces. Sections never straddle a heading
// boundary; within a section, windows of ChunkSize characters advance by
// ChunkSize-Overlap. Whitespace-only pieces are dropped.
func (c *Chunker) Chunk(content string) []Piece {
	var pieces []Piece
	for _, sec := range parseSections(content) {
		pieces = append(pieces, c.windowSection(sec)...)
	}
	return pieces
}

// section is a run of text under one markdown heading. Start is its byte
// offset in the document.
type section struct {
	Heading string
	Text    string
	Start   int
}

// parseSections splits content at markdown headings, tracking offsets and
// skipping heading detection inside fenced code blocks. Content before the
// first heading forms an unnamed section.
func parseSections(content string) []section {
	lines := strings.Split(content, "\n")
	var sections []section
	current := section{}
	offset := 0
	inCodeBlock := false

	flush := func() {
		if strings.TrimSpace(current.Text) != "" {
			sections = append(sections, current)
		}
	}

	for i, line := range lines {
		if isCodeFence(line) {
			inCodeBlock = !inCodeBlock
		}

		if !inCodeBlock && isHeading(line) {
			flush()
			current = section{
				Heading: headingText(line),
				Text:    line,
				Start:   offset,
			}
		} else {
			if current.Text == "" {
				current.Start = offset
			} else {
				current.Text += "\n"
			}
			current.Text += line
		}

		offset += len(line)
		if i < len(lines)-1 {
			offset++ // the newline
		}
	}
	flush()
	return sections
}

// windowSection cuts one section into overlapping character windows.
func (c *Chunker) windowSection(sec section) []Piece {
	runes := []rune(sec.Text)
	step := c.config.ChunkSize - c.config.Overlap

	var pieces []Piece
	for start := 0; start < len(runes); start += step {
		end := start + c.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		text := string(runes[start:end])
		if strings.TrimSpace(text) != "" {
			byteStart := sec.Start + len(string(runes[:start]))
			pieces = append(pieces, Piece{
				Text:        text,
				Section:     sec.Heading,
				OffsetStart: byteStart,
				OffsetEnd:   byteStart + len(text),
			})
		}
		if end == len(runes) {
			break
		}
	}
	return pieces
}

// isCodeFence checks if a line is a code fence (``` or ~~~).
func isCodeFence(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// isHeading checks if a line is a markdown heading.
func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// headingText extracts the text of a heading line.
func headingText(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
}
