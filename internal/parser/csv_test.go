package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
)

func TestCSVParser_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,score\n")
	for i := range 25 {
		fmt.Fprintf(&b, "user%d,%d\n", i, i*10)
	}
	path := writeTemp(t, "upload.csv", b.String())

	p := &CSVParser{}
	ext, err := p.Parse(context.Background(), path, "scores.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ext.Sections) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(ext.Sections))
	}
	for _, s := range ext.Sections {
		if s.Type != document.TypeTable {
			t.Errorf("expected table section, got %q", s.Type)
		}
	}
	if !strings.HasPrefix(ext.Sections[0].Text, "Rows 2-21\nname: user0, score: 0") {
		t.Errorf("unexpected first batch %q", ext.Sections[0].Text)
	}
	if !strings.HasPrefix(ext.Sections[1].Text, "Rows 22-26\n") {
		t.Errorf("unexpected second batch %q", ext.Sections[1].Text)
	}
	if ext.Metadata["rows"] != 25 {
		t.Errorf("expected 25 rows, got %v", ext.Metadata["rows"])
	}

	// The batch label doubles as the section title when chunked.
	chunks := chunker.ChunkSections(ext.Sections, chunker.DefaultConfig())
	if len(chunks) == 0 || chunks[0].SectionTitle == nil || *chunks[0].SectionTitle != "Rows 2-21" {
		t.Errorf("expected first chunk titled %q, got %+v", "Rows 2-21", chunks)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	path := writeTemp(t, "empty.csv", "")
	p := &CSVParser{}
	ext, err := p.Parse(context.Background(), path, "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ext.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(ext.Sections))
	}
}

func TestCSVParser_RaggedRows(t *testing.T) {
	path := writeTemp(t, "ragged.csv", "a,b\n1,2,3\n4\n")
	p := &CSVParser{}
	ext, err := p.Parse(context.Background(), path, "ragged.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ext.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(ext.Sections))
	}
	if !strings.Contains(ext.Sections[0].Text, "a: 1, b: 2, 3") {
		t.Errorf("unexpected text %q", ext.Sections[0].Text)
	}
}
