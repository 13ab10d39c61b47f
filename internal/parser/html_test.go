package parser

import (
	"context"
	"testing"

	"github.com/dgallion1/docchunk/internal/document"
)

func TestHTMLParser_Structure(t *testing.T) {
	input := `<html><head><title>Handbook</title><style>p{}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Welcome</h1>
<p>First paragraph.</p>
<ul><li>Point one</li><li>Point two</li></ul>
<table><tr><th>Name</th><th>Role</th></tr><tr><td>Ada</td><td>Engineer</td></tr></table>
<script>var x = 1;</script>
<footer>Copyright</footer>
</body></html>`
	path := writeTemp(t, "upload.html", input)

	p := &HTMLParser{}
	ext, err := p.Parse(context.Background(), path, "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.Metadata["title"] != "Handbook" {
		t.Errorf("expected title from <title>, got %v", ext.Metadata["title"])
	}

	want := []document.Section{
		{Type: document.TypeHeading, Text: "Welcome"},
		{Type: document.TypeParagraph, Text: "First paragraph."},
		{Type: document.TypeListItem, Text: "Point one"},
		{Type: document.TypeListItem, Text: "Point two"},
		{Type: document.TypeTable, Text: "Name | Role"},
		{Type: document.TypeTable, Text: "Ada | Engineer"},
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

func TestHTMLParser_FallbackTitle(t *testing.T) {
	path := writeTemp(t, "x.html", "<p>Body only.</p>")
	p := &HTMLParser{}
	ext, err := p.Parse(context.Background(), path, "notes.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Metadata["title"] != "notes" {
		t.Errorf("expected filename title, got %v", ext.Metadata["title"])
	}
	if len(ext.Sections) != 1 || ext.Sections[0].Text != "Body only." {
		t.Errorf("unexpected sections %+v", ext.Sections)
	}
}
