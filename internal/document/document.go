// Package document holds the values exchanged between the converters,
// the chunker and the HTTP layer.
package document

import "unicode/utf8"

// MaxSectionChars is the length converters truncate each section's text to.
const MaxSectionChars = 1000

// Section types emitted by the converters.
const (
	TypeHeading   = "heading"
	TypeParagraph = "paragraph"
	TypeListItem  = "list_item"
	TypeTable     = "table"
	TypeCode      = "code"
)

// Section is a structurally distinguished span of a source document, in reading order.
type Section struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Page int    `json:"page,omitempty"` // 1-based source page, 0 if unknown
}

// Chunk is a bounded span of sentence text ready for embedding.
type Chunk struct {
	Content      string  `json:"content"`
	ChunkIndex   int     `json:"chunk_index"`
	SectionTitle *string `json:"section_title"`
	PageNumber   *int    `json:"page_number"`
	CharStart    int     `json:"char_start"`
	CharEnd      int     `json:"char_end"`
}

// ChunkingResult is the summary returned for one chunking request.
type ChunkingResult struct {
	Chunks      []Chunk `json:"chunks"`
	TotalChunks int     `json:"total_chunks"`
	TotalChars  int     `json:"total_chars"`
}

// Extraction is what a converter produces from one uploaded file.
type Extraction struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Sections []Section      `json:"sections"`
}

// NewResult builds a ChunkingResult, keeping Chunks non-nil so it encodes as [].
func NewResult(chunks []Chunk, text string) ChunkingResult {
	if chunks == nil {
		chunks = []Chunk{}
	}
	return ChunkingResult{
		Chunks:      chunks,
		TotalChunks: len(chunks),
		TotalChars:  utf8.RuneCountInString(text),
	}
}

// Truncate cuts s to at most MaxSectionChars characters.
func Truncate(s string) string {
	if len(s) <= MaxSectionChars {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxSectionChars {
			return s[:i]
		}
		n++
	}
	return s
}
