package parser

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/dgallion1/docchunk/internal/document"
)

// DOCParser handles legacy Word .doc files through the antiword binary.
type DOCParser struct {
	AntiwordPath string
}

func (p *DOCParser) Parse(ctx context.Context, path, filename string) (*document.Extraction, error) {
	bin := p.AntiwordPath
	if bin == "" {
		bin = "antiword"
	}
	out, err := exec.CommandContext(ctx, bin, path).Output()
	if err != nil {
		return nil, fmt.Errorf("antiword: %w", err)
	}

	b := newBuilder(titleFromFilename(filename), "doc")
	for _, para := range splitParagraphs(string(out)) {
		b.add(document.TypeParagraph, para, 0)
	}
	return b.extraction(nil), nil
}
