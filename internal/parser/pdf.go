package parser

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(ctx context.Context, path, filename string) (*document.Extraction, error) {
	pages, err := extractPDFPages(ctx, path)
	if err != nil && ctx.Err() == nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	b := newBuilder(titleFromFilename(filename), "pdf")
	for i, page := range pages {
		for _, para := range splitParagraphs(page) {
			b.add(document.TypeParagraph, para, i+1)
		}
	}

	return b.extraction(map[string]any{"pages": len(pages)}), nil
}

// extractPDFPages returns the plain text of every page, in order. Pages that
// fail to decode come back empty so page numbers stay aligned.
func extractPDFPages(ctx context.Context, path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds and ends with one.
	pages := strings.Split(strings.TrimSuffix(string(out), "\f"), "\f")
	return pages, nil
}
