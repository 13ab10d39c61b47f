package parser

import (
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
)

// builder accumulates sections in reading order and the matching full text.
type builder struct {
	title    string
	format   string
	text     strings.Builder
	sections []document.Section
}

func newBuilder(title, format string) *builder {
	return &builder{title: title, format: format}
}

// add appends one block. The full text keeps the block intact; the section
// copy is truncated to document.MaxSectionChars.
func (b *builder) add(typ, text string, page int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(text)
	b.sections = append(b.sections, document.Section{
		Type: typ,
		Text: document.Truncate(text),
		Page: page,
	})
}

func (b *builder) extraction(extra map[string]any) *document.Extraction {
	meta := map[string]any{
		"title":    b.title,
		"format":   b.format,
		"sections": len(b.sections),
	}
	for k, v := range extra {
		meta[k] = v
	}
	sections := b.sections
	if sections == nil {
		sections = []document.Section{}
	}
	return &document.Extraction{
		Text:     b.text.String(),
		Metadata: meta,
		Sections: sections,
	}
}
