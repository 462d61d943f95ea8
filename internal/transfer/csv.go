package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// ReadCSV parses a CSV chunk file. Rows may have uneven lengths and
// unescaped quotes, as spreadsheet exports often do.
func ReadCSV(r io.Reader, today srs.Date) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return parseRecords(records, lines, today, srs.ParseDate)
}

// WriteCSV writes chunks with ExportHeader as the first line.
func WriteCSV(w io.Writer, chunks []models.Chunk) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range chunks {
		if err := writer.Write(exportRecord(c)); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", c.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
