// ABOUTME: Applies parsed spreadsheet rows to the fact tables in a single transaction.
// ABOUTME: Rows whose spreadsheet task id already exists are skipped, making re-import idempotent.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/study/internal/models"
)

// ImportRow is one spreadsheet line after parsing.
type ImportRow struct {
	SheetTaskID      float64
	Title            string
	SubjectName      string
	TrackName        string
	CompletionDate   models.Date
	PlannedMinutes   int
	EffectiveMinutes int
	TotalQuestions   int
	TotalCorrect     int
	// StudiedAt stamps the session and result created for a new task.
	StudiedAt time.Time
}

// ImportSummary counts what an import changed.
type ImportSummary struct {
	Rows          int `json:"rows"`
	SubjectsAdded int `json:"subjects_added"`
	TracksAdded   int `json:"tracks_added"`
	TasksAdded    int `json:"tasks_added"`
	TasksSkipped  int `json:"tasks_skipped"`
	SessionsAdded int `json:"sessions_added"`
	ResultsAdded  int `json:"results_added"`
}

// ApplyImport inserts missing subjects, tracks and tasks, plus a session and a result for
// each new task that carries effort or questions. Any error rolls the whole import back.
func (d *DB) ApplyImport(ctx context.Context, rows []ImportRow) (*ImportSummary, error) {
	summary := &ImportSummary{Rows: len(rows)}
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		subjects := map[string]int64{}
		tracks := map[string]int64{}

		for _, row := range rows {
			subjectID, added, err := ensureNamed(ctx, tx, "discipline", row.SubjectName, subjects)
			if err != nil {
				return err
			}
			if added {
				summary.SubjectsAdded++
			}

			var trackID *int64
			if row.TrackName != "" {
				id, added, err := ensureNamed(ctx, tx, "trilha", row.TrackName, tracks)
				if err != nil {
					return err
				}
				if added {
					summary.TracksAdded++
				}
				trackID = &id
			}

			task := models.NewTask(row.Title, subjectID)
			sheetID := row.SheetTaskID
			task.SpreadsheetTaskID = &sheetID
			task.TrackID = trackID
			if row.PlannedMinutes > 0 {
				task.WithPlannedMinutes(row.PlannedMinutes)
			}
			if !row.CompletionDate.IsZero() {
				task.Status = models.TaskCompleted
				task.CompletionDate = row.CompletionDate
				if row.EffectiveMinutes > 0 {
					minutes := row.EffectiveMinutes
					task.ActualMinutes = &minutes
				}
			}

			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO task (spreadsheet_task_id, title, discipline_id, trilha_id, status,
					carga_horaria_planejada_minutos, carga_horaria_efetiva_minutos, completion_date, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				sheetID,
				task.Title,
				task.SubjectID,
				nullInt64(task.TrackID),
				string(task.Status),
				nullInt(task.PlannedMinutes),
				nullInt(task.ActualMinutes),
				task.CompletionDate,
				formatTime(task.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("import task %v: %w", sheetID, err)
			}
			inserted, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("import task %v: %w", sheetID, err)
			}
			if inserted == 0 {
				summary.TasksSkipped++
				continue
			}
			summary.TasksAdded++
			if task.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("import task %v: %w", sheetID, err)
			}

			if row.EffectiveMinutes > 0 {
				session := models.NewStudySession(task.ID, row.StudiedAt, row.EffectiveMinutes)
				if err := insertSession(ctx, tx, session); err != nil {
					return err
				}
				summary.SessionsAdded++
			}
			if row.TotalQuestions > 0 {
				result := models.NewResult(task.ID, row.TotalCorrect, row.TotalQuestions).WithCreatedAt(row.StudiedAt)
				if err := insertResult(ctx, tx, result); err != nil {
					return err
				}
				summary.ResultsAdded++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply import: %w", err)
	}
	return summary, nil
}

// ensureNamed returns the id of the row with the given unique name in table,
// inserting it when missing. Only discipline and trilha are passed as table.
func ensureNamed(ctx context.Context, tx *sql.Tx, table, name string, cache map[string]int64) (int64, bool, error) {
	if id, ok := cache[name]; ok {
		return id, false, nil
	}

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		cache[name] = id
		return id, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, false, fmt.Errorf("find %s %q: %w", table, name, err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO `+table+` (name) VALUES (?)`, name)
	if err != nil {
		return 0, false, fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, false, fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	cache[name] = id
	return id, true, nil
}
