package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// csvFormatter formats the error timeline as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(doc *Document) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write([]string{"Time", "Errors", "Warnings"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	if doc.Analysis != nil {
		for _, p := range doc.Analysis.TimeSeries {
			record := []string{p.Time, strconv.Itoa(p.Errors), strconv.Itoa(p.Warnings)}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return b.Bytes(), nil
}
