package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs styled as headings or as the
// document title become heading sections.
type DOCXParser struct{}

func (p *DOCXParser) Parse(ctx context.Context, path, filename string) (*document.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder(titleFromFilename(filename), "docx")
	titleSet := false
	for _, item := range doc.Document.Body.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		style := docxStyle(para)
		switch {
		case strings.EqualFold(style, "Title"):
			if !titleSet {
				b.title = text
				titleSet = true
			}
			b.add(document.TypeHeading, text, 0)
		case docxHeadingLevel(style) > 0:
			b.add(document.TypeHeading, text, 0)
		case strings.HasPrefix(strings.ToLower(style), "listparagraph"), strings.EqualFold(style, "list paragraph"):
			b.add(document.TypeListItem, text, 0)
		default:
			b.add(document.TypeParagraph, text, 0)
		}
	}

	return b.extraction(nil), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel maps "Heading1" / "heading 1" style ids to 1..6.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") || len(s) != len("heading")+1 {
		return 0
	}
	level := int(s[len(s)-1] - '0')
	if level < 1 || level > 6 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
