package parser

import (
	"context"
	"testing"

	"github.com/dgallion1/docchunk/internal/document"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	path := writeTemp(t, "upload.txt", input)

	p := &TextParser{}
	ext, err := p.Parse(context.Background(), path, "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.Metadata["title"] != "notes" {
		t.Errorf("expected title %q, got %v", "notes", ext.Metadata["title"])
	}
	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	if len(ext.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(ext.Sections))
	}
	for i, w := range want {
		if ext.Sections[i].Text != w {
			t.Errorf("section[%d]: expected %q, got %q", i, w, ext.Sections[i].Text)
		}
		if ext.Sections[i].Type != document.TypeParagraph {
			t.Errorf("section[%d]: expected type %q, got %q", i, document.TypeParagraph, ext.Sections[i].Type)
		}
	}
	if ext.Text != want[0]+"\n\n"+want[1]+"\n\n"+want[2] {
		t.Errorf("unexpected full text %q", ext.Text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	path := writeTemp(t, "empty.txt", "")
	p := &TextParser{}
	ext, err := p.Parse(context.Background(), path, "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Text != "" {
		t.Errorf("expected empty text, got %q", ext.Text)
	}
	if ext.Sections == nil || len(ext.Sections) != 0 {
		t.Errorf("expected empty non-nil sections, got %v", ext.Sections)
	}
}

func TestTextParser_BlankAndWhitespaceLines(t *testing.T) {
	input := "Para one.\n\n\n   \n\t\nPara two."
	path := writeTemp(t, "gaps.txt", input)
	p := &TextParser{}
	ext, err := p.Parse(context.Background(), path, "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ext.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(ext.Sections))
	}
}

func TestTextParser_CanceledContext(t *testing.T) {
	path := writeTemp(t, "many.txt", "a\n\nb\n\nc")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &TextParser{}
	if _, err := p.Parse(ctx, path, "many.txt"); err == nil {
		t.Error("expected error for canceled context")
	}
}
