package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/document"
)

// window is the running state of one Assemble call.
type window struct {
	sentences []string
	size      int // sum of len(sentence)+1 over sentences
	cursor    int // characters consumed from the source so far
	chunks    []document.Chunk
}

// Assemble packs sentences into chunks of roughly chunkSize characters.
//
// Every sentence is accounted as its length plus one separator. When adding a
// sentence would push a non-empty buffer past chunkSize, the buffer is emitted
// and its trailing sentences, up to chunkOverlap characters, seed the next
// buffer. Offsets are derived from the running totals, not by searching the
// source text.
func Assemble(sentences []string, chunkSize, chunkOverlap int) []document.Chunk {
	w := &window{}
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n := utf8.RuneCountInString(s)

		if w.size+n > chunkSize && len(w.sentences) > 0 {
			w.flush()
			w.sentences, w.size = carryOver(w.sentences, chunkOverlap)
		}

		w.sentences = append(w.sentences, s)
		w.size += n + 1
		w.cursor += n + 1
	}
	if len(w.sentences) > 0 {
		w.flush()
	}
	return w.chunks
}

func (w *window) flush() {
	w.chunks = append(w.chunks, document.Chunk{
		Content:    strings.Join(w.sentences, " "),
		ChunkIndex: len(w.chunks),
		CharStart:  w.cursor - w.size,
		CharEnd:    w.cursor,
	})
}

// carryOver returns the longest suffix of sentences whose accounted size stays
// within overlap, in original order, and that size. A sentence is excluded
// once size+len(sentence) exceeds overlap.
func carryOver(sentences []string, overlap int) ([]string, int) {
	size := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(sentences[i])
		if size+n > overlap {
			break
		}
		size += n + 1
		start = i
	}
	seed := make([]string, len(sentences)-start)
	copy(seed, sentences[start:])
	return seed, size
}
