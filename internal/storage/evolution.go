// ABOUTME: Fact snapshot loading and derived aggregate persistence for SQLite storage.
// ABOUTME: Evolution rows are replaced atomically; history rows are upserted per subject and day.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/study/internal/models"
)

// HistoryFilter narrows ListPerformanceHistory. A zero Since means all days.
type HistoryFilter struct {
	Since     models.Date
	SubjectID *int64
}

// SubjectMinutes is the dashboard's studied-minutes-per-subject row.
type SubjectMinutes struct {
	SubjectName  string `json:"discipline_name"`
	TotalMinutes int    `json:"total_minutes"`
}

// SubjectPerformance is the dashboard's average-performance-per-subject row.
type SubjectPerformance struct {
	SubjectName        string  `json:"discipline_name"`
	AveragePerformance float64 `json:"desempenho_medio"`
}

// LoadFacts reads every fact table inside one transaction.
func (d *DB) LoadFacts(ctx context.Context) (*models.Facts, error) {
	var facts models.Facts
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if facts.Subjects, err = listSubjects(ctx, tx); err != nil {
			return err
		}
		if facts.Topics, err = loadTopics(ctx, tx); err != nil {
			return err
		}
		if facts.Tasks, err = loadTasks(ctx, tx); err != nil {
			return err
		}
		if facts.TaskTopics, err = loadTaskTopics(ctx, tx); err != nil {
			return err
		}
		if facts.Sessions, err = loadSessions(ctx, tx); err != nil {
			return err
		}
		facts.Results, err = loadResults(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}
	return &facts, nil
}

func loadTopics(ctx context.Context, q querier) ([]models.Topic, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, discipline_id FROM topic ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

func loadTasks(ctx context.Context, q querier) ([]models.Task, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+taskColumns+` FROM task ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func loadTaskTopics(ctx context.Context, q querier) ([]models.TaskTopic, error) {
	rows, err := q.QueryContext(ctx, `SELECT task_id, topic_id FROM task_topics ORDER BY task_id, topic_id`)
	if err != nil {
		return nil, fmt.Errorf("list task topics: %w", err)
	}
	defer rows.Close()

	var links []models.TaskTopic
	for rows.Next() {
		var l models.TaskTopic
		if err := rows.Scan(&l.TaskID, &l.TopicID); err != nil {
			return nil, fmt.Errorf("scan task topic: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func loadSessions(ctx context.Context, q querier) ([]models.StudySession, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, task_id, start, "end", duration_minutes FROM study_session ORDER BY start, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.StudySession
	for rows.Next() {
		var (
			s        models.StudySession
			start    string
			end      sql.NullString
			duration sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.TaskID, &start, &end, &duration); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Start = parseTime(start)
		s.End = parseTimePtr(end)
		s.DurationMinutes = intPtr(duration)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func loadResults(ctx context.Context, q querier) ([]models.Result, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, task_id, correct, total, percent, created_at FROM result ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var r models.Result
		var createdAt string
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Correct, &r.Total, &r.Percent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ReplaceEvolution deletes every evolution row and inserts rows in one transaction,
// so readers never observe an empty table mid-recompute.
func (d *DB) ReplaceEvolution(ctx context.Context, rows []models.EvolutionRow) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM evolution`); err != nil {
			return fmt.Errorf("clear evolution: %w", err)
		}
		for _, r := range rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO evolution (discipline_id, qtd_tarefas, qtd_exercicios_feitos, total_acertos,
					desempenho_medio, total_minutos_estudados)
				VALUES (?, ?, ?, ?, ?, ?)
			`, r.SubjectID, r.TaskCount, r.ExercisesDone, r.TotalCorrect, r.AveragePerformance, r.TotalMinutes)
			if err != nil {
				return fmt.Errorf("insert evolution for subject %d: %w", r.SubjectID, err)
			}
		}
		return nil
	})
}

// UpsertPerformanceHistory writes one row per (subject, date), overwriting that day's prior values.
// Days not present in rows are left untouched.
func (d *DB) UpsertPerformanceHistory(ctx context.Context, rows []models.PerformanceHistoryRow) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		for _, r := range rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO performance_history (discipline_id, date, exercises_completed, correct_answers,
					studied_minutes, performance_percent)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (discipline_id, date) DO UPDATE SET
					exercises_completed = excluded.exercises_completed,
					correct_answers = excluded.correct_answers,
					studied_minutes = excluded.studied_minutes,
					performance_percent = excluded.performance_percent
			`, r.SubjectID, r.Date, r.ExercisesCompleted, r.CorrectAnswers, r.StudiedMinutes, r.PerformancePercent)
			if err != nil {
				return fmt.Errorf("upsert history for subject %d on %s: %w", r.SubjectID, r.Date, err)
			}
		}
		return nil
	})
}

// ListEvolution returns the current evolution snapshot ordered by subject name.
func (d *DB) ListEvolution(ctx context.Context) ([]models.EvolutionRow, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT e.id, e.discipline_id, d.name, e.qtd_tarefas, e.qtd_exercicios_feitos, e.total_acertos,
			e.desempenho_medio, e.total_minutos_estudados
		FROM evolution e
		JOIN discipline d ON e.discipline_id = d.id
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list evolution: %w", err)
	}
	defer rows.Close()

	var out []models.EvolutionRow
	for rows.Next() {
		var r models.EvolutionRow
		err := rows.Scan(&r.ID, &r.SubjectID, &r.SubjectName, &r.TaskCount, &r.ExercisesDone,
			&r.TotalCorrect, &r.AveragePerformance, &r.TotalMinutes)
		if err != nil {
			return nil, fmt.Errorf("scan evolution: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListPerformanceHistory returns history rows ordered by date, then subject name.
func (d *DB) ListPerformanceHistory(ctx context.Context, filter HistoryFilter) ([]models.PerformanceHistoryRow, error) {
	query := `
		SELECT h.discipline_id, d.name, h.date, h.exercises_completed, h.correct_answers,
			h.studied_minutes, h.performance_percent
		FROM performance_history h
		JOIN discipline d ON h.discipline_id = d.id
		WHERE 1 = 1
	`
	var args []interface{}
	if !filter.Since.IsZero() {
		query += " AND h.date >= ?"
		args = append(args, filter.Since)
	}
	if filter.SubjectID != nil {
		query += " AND h.discipline_id = ?"
		args = append(args, *filter.SubjectID)
	}
	query += " ORDER BY h.date, d.name"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list performance history: %w", err)
	}
	defer rows.Close()

	var out []models.PerformanceHistoryRow
	for rows.Next() {
		var r models.PerformanceHistoryRow
		err := rows.Scan(&r.SubjectID, &r.SubjectName, &r.Date, &r.ExercisesCompleted,
			&r.CorrectAnswers, &r.StudiedMinutes, &r.PerformancePercent)
		if err != nil {
			return nil, fmt.Errorf("scan performance history: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StudyMinutesBySubject sums finished session minutes per subject name.
func (d *DB) StudyMinutesBySubject(ctx context.Context) ([]SubjectMinutes, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT d.name, SUM(s.duration_minutes)
		FROM study_session s
		JOIN task t ON s.task_id = t.id
		JOIN discipline d ON t.discipline_id = d.id
		WHERE s.duration_minutes IS NOT NULL
		GROUP BY d.name
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("sum study minutes: %w", err)
	}
	defer rows.Close()

	var out []SubjectMinutes
	for rows.Next() {
		var m SubjectMinutes
		if err := rows.Scan(&m.SubjectName, &m.TotalMinutes); err != nil {
			return nil, fmt.Errorf("scan study minutes: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PerformanceBySubject returns each subject's average performance from the evolution snapshot.
func (d *DB) PerformanceBySubject(ctx context.Context) ([]SubjectPerformance, error) {
	evo, err := d.ListEvolution(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SubjectPerformance, 0, len(evo))
	for _, e := range evo {
		out = append(out, SubjectPerformance{SubjectName: e.SubjectName, AveragePerformance: e.AveragePerformance})
	}
	return out, nil
}
