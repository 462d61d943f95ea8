package transfer_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
	"github.com/chunkrecall/trainer/internal/transfer"
)

var today = srs.NewDate(2025, time.March, 14)

func TestReadCSV_MinimalColumns(t *testing.T) {
	in := "JP Prompt, EN Answer\nお願いします,please\n\n  ,  \nありがとう,thank you\n"

	rows, err := transfer.ReadCSV(strings.NewReader(in), today)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "お願いします", rows[0].JPPrompt)
	assert.Equal(t, "please", rows[0].ENAnswer)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, srs.NewState(0, today), rows[0].State)
	assert.Equal(t, 5, rows[1].Line, "blank lines are skipped but still counted")
}

func TestReadCSV_SchedulingColumns(t *testing.T) {
	in := "\ufeffjp,en,EF,Interval,Next Due Date,review_count\n" +
		"犬,dog,2.1,6.0,2025-04-01,3\n" +
		"猫,cat,,,,\n"

	rows, err := transfer.ReadCSV(strings.NewReader(in), today)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, srs.State{
		EasinessFactor: 2.1,
		Interval:       6,
		ReviewCount:    3,
		NextDueDate:    srs.NewDate(2025, time.April, 1),
	}, rows[0].State)
	assert.Equal(t, srs.NewState(0, today), rows[1].State, "empty cells use defaults")
}

func TestReadCSV_FirstMatchingColumnWins(t *testing.T) {
	in := "notes,jp_kanji,jp_kana,en\nx,漢字,かんじ,kanji\n"

	rows, err := transfer.ReadCSV(strings.NewReader(in), today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "漢字", rows[0].JPPrompt)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		row     int
	}{
		{name: "empty file", input: "", wantErr: "must contain columns starting with 'jp'"},
		{name: "no answer column", input: "jp,meaning\n犬,dog\n", wantErr: "must contain columns starting with 'jp'"},
		{name: "low ef", input: "jp,en,ef\n犬,dog,2.5\n猫,cat,1.2\n", wantErr: "row 3, column ef", row: 3},
		{name: "bad ef", input: "jp,en,ef\n犬,dog,high\n", wantErr: "row 2, column ef", row: 2},
		{name: "negative interval", input: "jp,en,interval\n犬,dog,-1\n", wantErr: "must not be negative", row: 2},
		{name: "fractional count", input: "jp,en,review_count\n犬,dog,1.5\n", wantErr: "not a whole number", row: 2},
		{name: "bad date", input: "jp,en,nextduedate\n犬,dog,tomorrow\n", wantErr: "column next_due_date", row: 2},
		{name: "date with trailing text", input: "jp,en,nextduedate\n犬,dog,2025-03-14junk\n", wantErr: "column next_due_date", row: 2},
		{name: "missing answer", input: "jp,en\n犬,\n", wantErr: "answer is empty", row: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := transfer.ReadCSV(strings.NewReader(tt.input), today)
			require.Error(t, err)
			assert.Nil(t, rows)
			assert.Contains(t, err.Error(), tt.wantErr)

			if tt.row > 0 {
				var rowErr *transfer.RowError
				require.ErrorAs(t, err, &rowErr)
				assert.Equal(t, tt.row, rowErr.Row)
			} else {
				assert.ErrorIs(t, err, transfer.ErrMissingColumns)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	format, err := transfer.DetectFormat("deck.CSV")
	require.NoError(t, err)
	assert.Equal(t, models.ImportFormatCSV, format)

	format, err = transfer.DetectFormat("path/to/deck.xlsx")
	require.NoError(t, err)
	assert.Equal(t, models.ImportFormatXLSX, format)

	_, err = transfer.DetectFormat("deck.xls")
	assert.ErrorIs(t, err, transfer.ErrUnsupportedFormat)
}

func sampleChunks() []models.Chunk {
	created := time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)
	return []models.Chunk{
		{
			ID: 1, UserID: 7, JPPrompt: "お願いします", ENAnswer: "please",
			EaseFactor: 2.5, IntervalDays: 0, NextDueDate: today, ReviewCount: 0,
			CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: 2, UserID: 7, JPPrompt: "駅はどこですか", ENAnswer: "where is the station, please?",
			EaseFactor: 2.36, IntervalDays: 6, NextDueDate: today.AddDays(6), ReviewCount: 2,
			CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(48 * time.Hour),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, transfer.WriteCSV(&buf, sampleChunks()))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, transfer.ExportHeader, records[0])
	assert.Equal(t, []string{
		"2", "駅はどこですか", "where is the station, please?", "2.36", "6",
		"2025-03-20", "2", "2025-03-01 10:30:00", "2025-03-03 09:30:00",
	}, records[2])
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, transfer.WriteCSV(&buf, sampleChunks()))

	rows, err := transfer.ReadCSV(&buf, today.AddDays(100))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for i, c := range sampleChunks() {
		got := rows[i].Chunk(42)
		assert.Equal(t, int64(42), got.UserID)
		assert.Equal(t, c.JPPrompt, got.JPPrompt)
		assert.Equal(t, c.ENAnswer, got.ENAnswer)
		s := c.Schedule()
		s.ID = 0
		assert.Equal(t, s, got.Schedule())
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, transfer.WriteXLSX(&buf, sampleChunks()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{transfer.SheetName}, f.GetSheetList())
	require.NoError(t, f.Close())

	rows, err := transfer.ReadXLSX(bytes.NewReader(buf.Bytes()), today)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	chunks := transfer.Chunks(rows, 7)
	assert.Equal(t, "駅はどこですか", chunks[1].JPPrompt)
	assert.Equal(t, 2.36, chunks[1].EaseFactor)
	assert.Equal(t, 6, chunks[1].IntervalDays)
	assert.Equal(t, 2, chunks[1].ReviewCount)
	assert.Equal(t, today.AddDays(6), chunks[1].NextDueDate)
}

func TestReadXLSX_SerialDate(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"jp", "en", "next due date"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"犬", "dog", 45748}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := transfer.ReadXLSX(&buf, today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, srs.NewDate(2025, time.April, 1), rows[0].State.NextDueDate)
}
