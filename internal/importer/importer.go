// ABOUTME: Reads the study-cycle spreadsheet (sheet CICLO) into import rows.
// ABOUTME: Parsing only; storage.ApplyImport writes the rows in one transaction.
package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

const (
	// SheetName is the worksheet holding the study cycle.
	SheetName = "CICLO"
	// HeaderRow is the 1-based row carrying the column names.
	HeaderRow = 3
)

// Column names as they appear in the header row.
const (
	ColSubject        = "DISCIPLINA"
	ColTaskID         = "TAREFA"
	ColTitle          = "TAREFAS"
	ColDate           = "DATA"
	ColTrack          = "TRILHA"
	ColPlanned        = "CH"
	ColEffective      = "CH (EFETIVA)"
	ColTotalQuestions = "TOTAL QUESTÕES"
	ColTotalCorrect   = "TOTAL ACERTOS"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// Options controls how spreadsheet dates become timestamps.
type Options struct {
	// Location interprets DATA cells. Defaults to time.Local.
	Location *time.Location
	// Now stamps sessions and results of rows without a date. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ReadFile parses the workbook at path.
func ReadFile(path string, opts Options) ([]storage.ImportRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return Parse(f, opts)
}

// Read parses a workbook from r.
func Read(r io.Reader, opts Options) ([]storage.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return Parse(f, opts)
}

// Parse extracts import rows from an open workbook. Rows without a numeric task id
// or a subject are skipped.
func Parse(f *excelize.File, opts Options) ([]storage.ImportRow, error) {
	opts = opts.withDefaults()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", SheetName, err)
	}
	if len(rows) < HeaderRow {
		return nil, fmt.Errorf("sheet %s has no header row", SheetName)
	}

	cols := make(map[string]int)
	for i, name := range rows[HeaderRow-1] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColSubject, ColTaskID} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: %w", required, ErrMissingColumn)
		}
	}

	var out []storage.ImportRow
	for n, cells := range rows[HeaderRow:] {
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}

		sheetID, err := strconv.ParseFloat(get(ColTaskID), 64)
		if err != nil {
			continue
		}
		subject := get(ColSubject)
		if subject == "" {
			continue
		}

		row := storage.ImportRow{
			SheetTaskID:      sheetID,
			Title:            get(ColTitle),
			SubjectName:      subject,
			TrackName:        get(ColTrack),
			PlannedMinutes:   Minutes(get(ColPlanned)),
			EffectiveMinutes: Minutes(get(ColEffective)),
			TotalQuestions:   count(get(ColTotalQuestions)),
			TotalCorrect:     count(get(ColTotalCorrect)),
			StudiedAt:        opts.Now(),
		}
		if row.Title == "" {
			row.Title = fmt.Sprintf("Task %s", strconv.FormatFloat(sheetID, 'f', -1, 64))
		}
		if row.TotalCorrect > row.TotalQuestions {
			row.TotalCorrect = row.TotalQuestions
		}

		if raw := get(ColDate); raw != "" {
			date, err := parseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", n+HeaderRow+1, err)
			}
			row.CompletionDate = date
			row.StudiedAt = middayOf(date, opts.Location)
		}
		out = append(out, row)
	}
	return out, nil
}

func middayOf(d models.Date, loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(models.DateLayout, d.String(), loc)
	return t.Add(12 * time.Hour)
}

// parseDate accepts an Excel serial number or a textual date.
func parseDate(raw string) (models.Date, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return models.Date{}, fmt.Errorf("date %q: %w", raw, err)
		}
		return models.NewDate(t.Date()), nil
	}
	for _, layout := range []string{models.DateLayout, "02/01/2006", "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.NewDate(t.Date()), nil
		}
	}
	return models.Date{}, fmt.Errorf("unrecognized date %q", raw)
}

// Minutes converts a duration cell to minutes. Cells hold either "H:MM" text or a
// fraction of a day. Anything else is 0.
func Minutes(raw string) int {
	if raw == "" {
		return 0
	}
	if h, m, ok := strings.Cut(raw, ":"); ok {
		hours, err1 := strconv.Atoi(strings.TrimSpace(h))
		mins, err2 := strconv.Atoi(strings.TrimSpace(strings.SplitN(m, ":", 2)[0]))
		if err1 != nil || err2 != nil || hours < 0 || mins < 0 {
			return 0
		}
		return hours*60 + mins
	}
	if frac, err := strconv.ParseFloat(raw, 64); err == nil && frac > 0 {
		return int(math.Round(frac * 24 * 60))
	}
	return 0
}

func count(raw string) int {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int(math.Round(v))
}
