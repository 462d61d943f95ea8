package transfer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// SheetName is the worksheet exports are written to.
const SheetName = "Chunks"

// ReadXLSX parses the first worksheet of an XLSX workbook. Date cells may
// hold ISO text or an Excel serial day number.
func ReadXLSX(r io.Reader, today srs.Date) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingColumns
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return parseRecords(records, nil, today, parseSheetDate)
}

func parseSheetDate(v string) (srs.Date, error) {
	if d, err := srs.ParseDate(v); err == nil {
		return d, nil
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return srs.Date{}, fmt.Errorf("invalid date %q", v)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return srs.Date{}, fmt.Errorf("invalid date %q: %w", v, err)
	}
	return srs.DateOf(t), nil
}

// WriteXLSX writes chunks to a single "Chunks" worksheet with a bold header.
func WriteXLSX(w io.Writer, chunks []models.Chunk) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "I1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "C", 40); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, c := range chunks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			c.ID,
			c.JPPrompt,
			c.ENAnswer,
			c.EaseFactor,
			c.IntervalDays,
			c.NextDueDate.String(),
			c.ReviewCount,
			formatTimestamp(c.CreatedAt),
			formatTimestamp(c.UpdatedAt),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", c.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}
