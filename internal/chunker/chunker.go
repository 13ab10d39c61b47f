// Package chunker turns extracted document text into bounded, overlapping
// chunks for embedding. It is pure: no I/O, no shared state, safe for
// concurrent use.
package chunker

import (
	"fmt"

	"github.com/dgallion1/docchunk/internal/document"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Config controls chunking behavior. Both values are measured in characters.
//
// The chunker never rejects a Config. An overlap <= 0 disables carry-over and
// a size <= 0 puts every sentence in a chunk of its own; callers that want to
// refuse such values should call Validate at their boundary.
type Config struct {
	ChunkSize    int // Target chunk size.
	ChunkOverlap int // Trailing context carried into the next chunk.
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// Validate reports whether the config is sane for a request boundary.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap <= 0 {
		return fmt.Errorf("chunk_overlap must be positive, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// ChunkText segments text into sentences and assembles them into chunks.
func ChunkText(text string, cfg Config) []document.Chunk {
	if text == "" {
		return nil
	}
	return Assemble(SplitSentences(text), cfg.ChunkSize, cfg.ChunkOverlap)
}

// Chunk produces the result for one document. Sections are chunked first;
// when that yields nothing and the full text is non-empty, the full text is
// chunked instead.
func Chunk(text string, sections []document.Section, cfg Config) document.ChunkingResult {
	chunks := ChunkSections(sections, cfg)
	if len(chunks) == 0 && text != "" {
		chunks = ChunkText(text, cfg)
	}
	return document.NewResult(chunks, text)
}
