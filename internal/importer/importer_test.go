// ABOUTME: Tests for the spreadsheet importer using workbooks built with excelize.
package importer

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

var header = []interface{}{
	ColSubject, ColTaskID, ColTitle, ColDate, ColTrack,
	ColPlanned, ColEffective, ColTotalQuestions, ColTotalCorrect,
}

func newWorkbook(t *testing.T, header []interface{}, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	_, err := f.NewSheet(SheetName)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetName, "A1", "Study cycle"))
	require.NoError(t, f.SetSheetRow(SheetName, "A3", &header))
	for i, row := range rows {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, HeaderRow+1+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(SheetName, cell, &row))
	}
	return f
}

func TestParse(t *testing.T) {
	f := newWorkbook(t, header,
		[]interface{}{"Math", 1, "Fractions", "2025-06-10", "Week 1", "1:30", 0.0625, 20, 15},
		[]interface{}{"History", 2.5, "Empires", 45818, "", "0:45", "", "", ""},
		[]interface{}{"Math", 3, "Algebra", "", "Week 1", "2:00", "", 10, 12},
		[]interface{}{"", 4, "No subject", "", "", "", "", "", ""},
		[]interface{}{"Math", "total", "Footer", "", "", "", "", "", ""},
	)

	rows, err := Parse(f, Options{Location: time.UTC, Now: func() time.Time { return testNow }})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, 1.0, first.SheetTaskID)
	assert.Equal(t, "Fractions", first.Title)
	assert.Equal(t, "Math", first.SubjectName)
	assert.Equal(t, "Week 1", first.TrackName)
	assert.Equal(t, "2025-06-10", first.CompletionDate.String())
	assert.Equal(t, 90, first.PlannedMinutes)
	assert.Equal(t, 90, first.EffectiveMinutes)
	assert.Equal(t, 20, first.TotalQuestions)
	assert.Equal(t, 15, first.TotalCorrect)
	assert.Equal(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), first.StudiedAt)

	second := rows[1]
	assert.Equal(t, 2.5, second.SheetTaskID)
	assert.Equal(t, "2025-06-10", second.CompletionDate.String(), "serial dates are converted")
	assert.Equal(t, 45, second.PlannedMinutes)
	assert.Zero(t, second.TotalQuestions)

	third := rows[2]
	assert.True(t, third.CompletionDate.IsZero())
	assert.Equal(t, testNow, third.StudiedAt)
	assert.Equal(t, 10, third.TotalCorrect, "correct is capped at total")
}

func TestParseMissingColumn(t *testing.T) {
	f := newWorkbook(t, []interface{}{ColSubject, ColTitle})
	_, err := Parse(f, Options{})
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestParseMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := Parse(f, Options{})
	assert.Error(t, err)
}

func TestReadFileAndReader(t *testing.T) {
	f := newWorkbook(t, header,
		[]interface{}{"Math", 7, "Geometry", "", "", "", "", 5, 4},
	)
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, f.SaveAs(path))

	fromFile, err := ReadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, fromFile, 1)
	assert.Equal(t, "Geometry", fromFile[0].Title)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	fromReader, err := Read(bytes.NewReader(buf.Bytes()), Options{})
	require.NoError(t, err)
	assert.Equal(t, fromFile[0].SheetTaskID, fromReader[0].SheetTaskID)
}

func TestMinutes(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"1:30", 90},
		{"0:05", 5},
		{"2:15:00", 135},
		{"0.5", 720},
		{"abc", 0},
		{"-1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Minutes(tt.raw))
		})
	}
}
