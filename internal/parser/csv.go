package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
)

// csvBatchSize is the number of data rows grouped into one table section.
const csvBatchSize = 20

// CSVParser handles CSV files. The header row is repeated in every batch so
// each section stands on its own.
type CSVParser struct{}

func (p *CSVParser) Parse(ctx context.Context, path, filename string) (*document.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newBuilder(titleFromFilename(filename), "csv")
	if len(records) == 0 {
		return b.extraction(map[string]any{"rows": 0}), nil
	}

	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(i+csvBatchSize, len(dataRows))

		var text strings.Builder
		fmt.Fprintf(&text, "Rows %d-%d\n", i+2, end+1) // 1-indexed, header is row 1
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j > 0 {
					text.WriteString(", ")
				}
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
			}
			text.WriteString("\n")
		}
		b.add(document.TypeTable, text.String(), 0)
	}

	return b.extraction(map[string]any{"rows": len(dataRows)}), nil
}
