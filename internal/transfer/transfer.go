// Package transfer reads and writes chunk spreadsheets (CSV and XLSX).
//
// Imports look for a prompt column whose normalized header starts with "jp"
// and an answer column starting with "en". Headers are normalized by
// lower-casing and removing all whitespace. The optional columns ef,
// interval, nextduedate (or next_due_date) and review_count carry
// scheduling state; missing cells fall back to the defaults of a new chunk.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// ErrMissingColumns is returned when no prompt or answer column is found.
var ErrMissingColumns = errors.New("file must contain columns starting with 'jp' (Japanese) and 'en' (English)")

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// ExportHeader is the column order of exported files.
var ExportHeader = []string{
	"id", "jp_prompt", "en_answer", "ef", "interval",
	"next_due_date", "review_count", "created_at", "updated_at",
}

const timestampLayout = "2006-01-02 15:04:05"

// RowError reports a bad cell. Row is the 1-based line in the file,
// header included.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Row is one imported chunk before it is assigned to a user.
type Row struct {
	Line     int
	JPPrompt string
	ENAnswer string
	State    srs.State
}

// Chunk turns the row into an unsaved chunk owned by userID.
func (r Row) Chunk(userID int64) models.Chunk {
	c := models.Chunk{UserID: userID, JPPrompt: r.JPPrompt, ENAnswer: r.ENAnswer}
	c.ApplySchedule(r.State)
	return c
}

// Chunks converts every row.
func Chunks(rows []Row, userID int64) []models.Chunk {
	out := make([]models.Chunk, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Chunk(userID))
	}
	return out
}

// DetectFormat maps a file name to models.ImportFormatCSV or
// models.ImportFormatXLSX.
func DetectFormat(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return models.ImportFormatCSV, nil
	case ".xlsx":
		return models.ImportFormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// NormalizeHeader lower-cases h and strips all whitespace.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, h)
}

type columns struct {
	jp, en                         int
	ef, interval, due, reviewCount int
}

func findColumns(header []string) (columns, error) {
	cols := columns{jp: -1, en: -1, ef: -1, interval: -1, due: -1, reviewCount: -1}
	for i, raw := range header {
		h := NormalizeHeader(raw)
		switch {
		case cols.jp < 0 && strings.HasPrefix(h, "jp"):
			cols.jp = i
		case cols.en < 0 && strings.HasPrefix(h, "en"):
			cols.en = i
		case h == "ef" && cols.ef < 0:
			cols.ef = i
		case h == "interval" && cols.interval < 0:
			cols.interval = i
		case (h == "nextduedate" || h == "next_due_date") && cols.due < 0:
			cols.due = i
		case (h == "review_count" || h == "reviewcount") && cols.reviewCount < 0:
			cols.reviewCount = i
		}
	}
	if cols.jp < 0 || cols.en < 0 {
		return cols, ErrMissingColumns
	}
	return cols, nil
}

// dateParser converts a cell to a day; XLSX serial numbers need their own.
type dateParser func(string) (srs.Date, error)

// parseRecords turns a header row plus data rows into Rows. Rows whose cells
// are all blank are skipped. lines[i] is the file line of records[i]; when
// nil, records are assumed to be consecutive lines starting at 1.
func parseRecords(records [][]string, lines []int, today srs.Date, parseDate dateParser) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrMissingColumns
	}
	cols, err := findColumns(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if lines != nil {
			line = lines[i+1]
		}
		if blank(rec) {
			continue
		}
		row, err := parseRow(rec, cols, line, today, parseDate)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, cols columns, line int, today srs.Date, parseDate dateParser) (Row, error) {
	row := Row{
		Line:     line,
		JPPrompt: cell(rec, cols.jp),
		ENAnswer: cell(rec, cols.en),
		State:    srs.NewState(0, today),
	}
	if row.JPPrompt == "" {
		return row, &RowError{Row: line, Column: "jp", Err: errors.New("prompt is empty")}
	}
	if row.ENAnswer == "" {
		return row, &RowError{Row: line, Column: "en", Err: errors.New("answer is empty")}
	}

	if v := cell(rec, cols.ef); v != "" {
		ef, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return row, &RowError{Row: line, Column: "ef", Err: err}
		}
		if ef < srs.MinEasinessFactor {
			return row, &RowError{Row: line, Column: "ef", Err: fmt.Errorf("must be at least %.1f, got %v", srs.MinEasinessFactor, ef)}
		}
		row.State.EasinessFactor = ef
	}
	if v := cell(rec, cols.interval); v != "" {
		n, err := parseCount(v)
		if err != nil {
			return row, &RowError{Row: line, Column: "interval", Err: err}
		}
		row.State.Interval = n
	}
	if v := cell(rec, cols.reviewCount); v != "" {
		n, err := parseCount(v)
		if err != nil {
			return row, &RowError{Row: line, Column: "review_count", Err: err}
		}
		row.State.ReviewCount = n
	}
	if v := cell(rec, cols.due); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return row, &RowError{Row: line, Column: "next_due_date", Err: err}
		}
		row.State.NextDueDate = d
	}
	return row, nil
}

// parseCount accepts "6" as well as spreadsheet-style "6.0".
func parseCount(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("must not be negative, got %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %q", v)
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative, got %v", f)
	}
	return int(f), nil
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func exportRecord(c models.Chunk) []string {
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.JPPrompt,
		c.ENAnswer,
		strconv.FormatFloat(c.EaseFactor, 'f', -1, 64),
		strconv.Itoa(c.IntervalDays),
		c.NextDueDate.String(),
		strconv.Itoa(c.ReviewCount),
		formatTimestamp(c.CreatedAt),
		formatTimestamp(c.UpdatedAt),
	}
}

// Read parses r in the given format.
func Read(format string, r io.Reader, today srs.Date) ([]Row, error) {
	switch format {
	case models.ImportFormatCSV:
		return ReadCSV(r, today)
	case models.ImportFormatXLSX:
		return ReadXLSX(r, today)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Write exports chunks in the given format.
func Write(format string, w io.Writer, chunks []models.Chunk) error {
	switch format {
	case models.ImportFormatCSV:
		return WriteCSV(w, chunks)
	case models.ImportFormatXLSX:
		return WriteXLSX(w, chunks)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
