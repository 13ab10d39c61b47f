package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences splits text after every '.', '!' or '?' that is followed by
// whitespace. The whitespace run is dropped, each piece is trimmed, and empty
// pieces are discarded. There is no abbreviation handling.
func SplitSentences(text string) []string {
	var sentences []string
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	start := 0
	for i := 0; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])
		i += w
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i
		for i < len(text) {
			next, nw := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(next) {
				break
			}
			i += nw
		}
		if i > end {
			emit(text[start:end])
			start = i
		}
	}
	emit(text[start:])

	return sentences
}
