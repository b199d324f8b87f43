// ABOUTME: StudySession and Result writes plus session history for SQLite storage.
// ABOUTME: Result percent is persisted as computed at insertion time.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/study/internal/models"
)

// CreateSession stores a study session, setting s.ID.
func (d *DB) CreateSession(ctx context.Context, s *models.StudySession) error {
	return insertSession(ctx, d.db, s)
}

func insertSession(ctx context.Context, q querier, s *models.StudySession) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO study_session (task_id, start, "end", duration_minutes) VALUES (?, ?, ?, ?)`,
		s.TaskID,
		formatTime(s.Start),
		formatTimePtr(s.End),
		nullInt(s.DurationMinutes),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create session: task %d: %w", s.TaskID, ErrNotFound)
		}
		return fmt.Errorf("create session: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (d *DB) GetSession(ctx context.Context, id int64) (*models.StudySession, error) {
	var (
		s        models.StudySession
		start    string
		end      sql.NullString
		duration sql.NullInt64
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT id, task_id, start, "end", duration_minutes FROM study_session WHERE id = ?`, id,
	).Scan(&s.ID, &s.TaskID, &start, &end, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.Start = parseTime(start)
	s.End = parseTimePtr(end)
	s.DurationMinutes = intPtr(duration)
	return &s, nil
}

// ListSessionHistory returns the most recent finished sessions with task and subject names.
func (d *DB) ListSessionHistory(ctx context.Context, limit int) ([]models.StudySessionEntry, error) {
	query := `
		SELECT s.id, s.task_id, s.start, s."end", s.duration_minutes,
			COALESCE(t.title, ''), COALESCE(d.name, '')
		FROM study_session s
		LEFT JOIN task t ON s.task_id = t.id
		LEFT JOIN discipline d ON t.discipline_id = d.id
		WHERE s."end" IS NOT NULL
		ORDER BY s.start DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list session history: %w", err)
	}
	defer rows.Close()

	var entries []models.StudySessionEntry
	for rows.Next() {
		var (
			e        models.StudySessionEntry
			start    string
			end      sql.NullString
			duration sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.TaskID, &start, &end, &duration, &e.TaskTitle, &e.SubjectName); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		e.Start = parseTime(start)
		e.End = parseTimePtr(end)
		e.DurationMinutes = intPtr(duration)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateResult stores a result, setting r.ID.
func (d *DB) CreateResult(ctx context.Context, r *models.Result) error {
	return insertResult(ctx, d.db, r)
}

func insertResult(ctx context.Context, q querier, r *models.Result) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO result (task_id, correct, total, percent, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.TaskID, r.Correct, r.Total, r.Percent, formatTime(r.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create result: task %d: %w", r.TaskID, ErrNotFound)
		}
		return fmt.Errorf("create result: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// GetResult retrieves a result by ID.
func (d *DB) GetResult(ctx context.Context, id int64) (*models.Result, error) {
	var r models.Result
	var createdAt string
	err := d.db.QueryRowContext(ctx,
		`SELECT id, task_id, correct, total, percent, created_at FROM result WHERE id = ?`, id,
	).Scan(&r.ID, &r.TaskID, &r.Correct, &r.Total, &r.Percent, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}
