package parser

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, path, filename string) (*document.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open text: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newBuilder(titleFromFilename(filename), "text")
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				b.add(document.TypeParagraph, current.String(), 0)
				current.Reset()
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if current.Len() > 0 {
		b.add(document.TypeParagraph, current.String(), 0)
	}

	return b.extraction(nil), nil
}
