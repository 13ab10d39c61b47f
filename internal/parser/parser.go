// Package parser converts uploaded documents into plain text plus an ordered
// list of sections.
package parser

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
)

// Parser converts the file at path into an Extraction.
type Parser interface {
	Parse(ctx context.Context, path, filename string) (*document.Extraction, error)
}

// Options carries converter settings that come from configuration.
type Options struct {
	PDFFallbackPdftotext bool
	AntiwordPath         string
}

// Format describes one supported content type.
type Format struct {
	Name      string // short label reported in metadata
	Suffix    string // extension used for temp files
	Label     string // human-readable name used in error messages
	newParser func(Options) Parser
}

const (
	TypePDF      = "application/pdf"
	TypeDOC      = "application/msword"
	TypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeMarkdown = "text/markdown"
	TypeHTML     = "text/html"
	TypeText     = "text/plain"
	TypeCSV      = "text/csv"
)

var formats = map[string]Format{
	TypePDF: {Name: "pdf", Suffix: ".pdf", Label: "PDF", newParser: func(o Options) Parser {
		return &PDFParser{FallbackPdftotext: o.PDFFallbackPdftotext}
	}},
	TypeDOC: {Name: "doc", Suffix: ".doc", Label: "DOC", newParser: func(o Options) Parser {
		return &DOCParser{AntiwordPath: o.AntiwordPath}
	}},
	TypeDOCX: {Name: "docx", Suffix: ".docx", Label: "DOCX", newParser: func(Options) Parser {
		return &DOCXParser{}
	}},
	TypeMarkdown: {Name: "markdown", Suffix: ".md", Label: "Markdown", newParser: func(Options) Parser {
		return &MarkdownParser{}
	}},
	"text/x-markdown": {Name: "markdown", Suffix: ".md", Label: "Markdown", newParser: func(Options) Parser {
		return &MarkdownParser{}
	}},
	TypeHTML: {Name: "html", Suffix: ".html", Label: "HTML", newParser: func(Options) Parser {
		return &HTMLParser{}
	}},
	TypeText: {Name: "text", Suffix: ".txt", Label: "TXT", newParser: func(Options) Parser {
		return &TextParser{}
	}},
	TypeCSV: {Name: "csv", Suffix: ".csv", Label: "CSV", newParser: func(Options) Parser {
		return &CSVParser{}
	}},
}

// NormalizeType lowercases a MIME type and strips parameters such as charset.
func NormalizeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// Lookup returns the format registered for a content type.
func Lookup(contentType string) (Format, bool) {
	f, ok := formats[NormalizeType(contentType)]
	return f, ok
}

// ForContentType returns a parser for the content type.
func ForContentType(contentType string, opts Options) (Parser, error) {
	f, ok := Lookup(contentType)
	if !ok {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
	return f.newParser(opts), nil
}

// titleFromFilename strips directory and extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// splitParagraphs splits on blank lines, trimming and dropping empty blocks.
func splitParagraphs(text string) []string {
	var out []string
	var current []string
	flush := func() {
		if p := strings.TrimSpace(strings.Join(current, "\n")); p != "" {
			out = append(out, p)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t\r"))
	}
	flush()
	return out
}
