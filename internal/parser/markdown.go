package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(ctx context.Context, path, filename string) (*document.Extraction, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	b := newBuilder(titleFromFilename(filename), "markdown")
	titleSet := false

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := extractText(node, src)
			if node.Level == 1 && !titleSet && title != "" {
				b.title = title
				titleSet = true
			}
			b.add(document.TypeHeading, title, 0)
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				b.add(document.TypeListItem, extractText(item, src), 0)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			b.add(document.TypeCode, extractText(node, src), 0)
		default:
			b.add(document.TypeParagraph, extractText(n, src), 0)
		}
	}

	return b.extraction(nil), nil
}

// extractText gets the text content of a goldmark AST node. Code and raw
// HTML blocks carry their text as lines; everything else as inline children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
