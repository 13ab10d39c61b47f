package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/document"
)

func TestMarkdownParser_HeadingsAndParagraphs(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

- first item
- second item

## Section B

Section B content.
`
	path := writeTemp(t, "upload.md", input)
	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), path, "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.Metadata["title"] != "Title" {
		t.Errorf("expected title from first h1, got %v", ext.Metadata["title"])
	}

	want := []document.Section{
		{Type: document.TypeHeading, Text: "Title"},
		{Type: document.TypeParagraph, Text: "Intro text."},
		{Type: document.TypeHeading, Text: "Section A"},
		{Type: document.TypeParagraph, Text: "Section A content."},
		{Type: document.TypeListItem, Text: "first item"},
		{Type: document.TypeListItem, Text: "second item"},
		{Type: document.TypeHeading, Text: "Section B"},
		{Type: document.TypeParagraph, Text: "Section B content."},
	}
	if len(ext.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d: %+v", len(want), len(ext.Sections), ext.Sections)
	}
	for i, w := range want {
		if ext.Sections[i] != w {
			t.Errorf("section[%d]: expected %+v, got %+v", i, w, ext.Sections[i])
		}
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "# API Reference\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"
	path := writeTemp(t, "api.md", input)
	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), path, "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var code *document.Section
	for i := range ext.Sections {
		if ext.Sections[i].Type == document.TypeCode {
			code = &ext.Sections[i]
		}
	}
	if code == nil {
		t.Fatalf("expected a code section, got %+v", ext.Sections)
	}
	if code.Text != "GET /api/users\nPOST /api/users" {
		t.Errorf("unexpected code text %q", code.Text)
	}
	if !strings.Contains(ext.Text, "More text after code.") {
		t.Errorf("expected trailing text in full text, got %q", ext.Text)
	}
}

func TestMarkdownParser_NoDuplicatedParagraphText(t *testing.T) {
	path := writeTemp(t, "p.md", "Just some plain text.\nOn two lines.")
	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), path, "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ext.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(ext.Sections))
	}
	if ext.Sections[0].Text != "Just some plain text.\nOn two lines." {
		t.Errorf("unexpected text %q", ext.Sections[0].Text)
	}
	if ext.Metadata["title"] != "plain" {
		t.Errorf("expected filename title, got %v", ext.Metadata["title"])
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	path := writeTemp(t, "empty.md", "")
	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), path, "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ext.Sections) != 0 {
		t.Errorf("expected 0 sections, got %d", len(ext.Sections))
	}
}
