package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/document"
)

// maxTitleChars bounds the first line considered a heading.
const maxTitleChars = 100

// ExtractTitle splits a leading title line off section text. The first line
// is a title when it is shorter than 100 characters and does not end with a
// period; the remaining lines are the body. Otherwise ok is false and body is
// the whole text. A blank first line still counts: the title is "".
func ExtractTitle(text string) (title, body string, ok bool) {
	first, rest, _ := strings.Cut(text, "\n")
	if utf8.RuneCountInString(first) >= maxTitleChars || strings.HasSuffix(first, ".") {
		return "", text, false
	}
	return strings.TrimSpace(first), rest, true
}

// ChunkSections chunks each non-empty section's body separately and numbers
// the results with one global index. Each chunk carries its section's title
// and page, when known.
//
// CharStart/CharEnd restart at zero for every section: they are offsets into
// the section body, not into the full document.
func ChunkSections(sections []document.Section, cfg Config) []document.Chunk {
	var all []document.Chunk
	for _, sec := range sections {
		if sec.Text == "" {
			continue
		}

		title, body, hasTitle := ExtractTitle(sec.Text)
		for _, c := range ChunkText(body, cfg) {
			c.ChunkIndex = len(all)
			if hasTitle {
				t := title
				c.SectionTitle = &t
			}
			if sec.Page > 0 {
				p := sec.Page
				c.PageNumber = &p
			}
			all = append(all, c)
		}
	}
	return all
}
