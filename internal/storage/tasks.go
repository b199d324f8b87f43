// ABOUTME: Task CRUD operations for SQLite storage, including topic links.
// ABOUTME: CompleteTask freezes the task's actual minutes from its sessions at that instant.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/study/internal/models"
)

const taskColumns = `id, spreadsheet_task_id, title, discipline_id, trilha_id, status,
	carga_horaria_planejada_minutos, carga_horaria_efetiva_minutos, completion_date, created_at`

// TaskFilter narrows ListTasks. Nil fields do not filter.
type TaskFilter struct {
	Status  *models.TaskStatus
	TrackID *int64
}

// CreateTask stores a new task and its topic links, setting t.ID.
func (d *DB) CreateTask(ctx context.Context, t *models.Task, topicIDs []int64) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO task (spreadsheet_task_id, title, discipline_id, trilha_id, status,
				carga_horaria_planejada_minutos, carga_horaria_efetiva_minutos, completion_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			t.SpreadsheetTaskID,
			t.Title,
			t.SubjectID,
			nullInt64(t.TrackID),
			string(t.Status),
			nullInt(t.PlannedMinutes),
			nullInt(t.ActualMinutes),
			t.CompletionDate,
			formatTime(t.CreatedAt),
		)
		if err != nil {
			return taskWriteError("create task", err)
		}
		t.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return replaceTaskTopics(ctx, tx, t.ID, topicIDs)
	})
}

// UpdateTask overwrites a task's fields and replaces its topic links.
func (d *DB) UpdateTask(ctx context.Context, t *models.Task, topicIDs []int64) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE task SET title = ?, discipline_id = ?, trilha_id = ?, status = ?,
				carga_horaria_planejada_minutos = ?, carga_horaria_efetiva_minutos = ?, completion_date = ?
			WHERE id = ?
		`,
			t.Title,
			t.SubjectID,
			nullInt64(t.TrackID),
			string(t.Status),
			nullInt(t.PlannedMinutes),
			nullInt(t.ActualMinutes),
			t.CompletionDate,
			t.ID,
		)
		if err != nil {
			return taskWriteError("update task", err)
		}
		if err := requireAffected(res, "update task", t.ID); err != nil {
			return err
		}
		return replaceTaskTopics(ctx, tx, t.ID, topicIDs)
	})
}

// CompleteTask transitions a pending task to Completed. The task's actual minutes are
// frozen from the sum of its sessions when it has any; the completion date defaults to on.
// The returned bool is false when the task was already completed.
func (d *DB) CompleteTask(ctx context.Context, id int64, on models.Date) (*models.Task, bool, error) {
	var (
		task        *models.Task
		transitions bool
	)
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.IsCompleted() {
			task = current
			return nil
		}

		var sessions, minutes int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(id), COALESCE(SUM(duration_minutes), 0) FROM study_session WHERE task_id = ?`, id,
		).Scan(&sessions, &minutes)
		if err != nil {
			return fmt.Errorf("sum task sessions: %w", err)
		}

		actual := current.ActualMinutes
		if sessions > 0 {
			actual = &minutes
		}
		completion := current.CompletionDate
		if completion.IsZero() {
			completion = on
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE task SET status = ?, carga_horaria_efetiva_minutos = ?, completion_date = ?
			WHERE id = ?
		`, string(models.TaskCompleted), nullInt(actual), completion, id)
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}

		task, err = getTask(ctx, tx, id)
		transitions = true
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return task, transitions, nil
}

// GetTask retrieves a task with its topics.
func (d *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return getTask(ctx, d.db, id)
}

func getTask(ctx context.Context, q querier, id int64) (*models.Task, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+taskColumns+` FROM task WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	tasks, err := scanTasks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err := attachTopics(ctx, q, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// ListTasks returns tasks with their topics. Pending and per-track listings are
// ordered by id ascending; everything else by most recent completion first.
func (d *DB) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.TrackID != nil {
		conds = append(conds, "trilha_id = ?")
		args = append(args, *filter.TrackID)
	}

	query := `SELECT ` + taskColumns + ` FROM task`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.TrackID != nil || (filter.Status != nil && *filter.Status == models.TaskPending) {
		query += " ORDER BY id ASC"
	} else {
		query += " ORDER BY completion_date DESC, id DESC"
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks, err := scanTasks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := attachTopics(ctx, d.db, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteTask removes a task and, by cascade, its sessions, results and links.
func (d *DB) DeleteTask(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM task WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res, "delete task", id)
}

func replaceTaskTopics(ctx context.Context, tx *sql.Tx, taskID int64, topicIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_topics WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear task topics: %w", err)
	}
	for _, topicID := range topicIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO task_topics (task_id, topic_id) VALUES (?, ?)`, taskID, topicID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("link topic %d: %w", topicID, ErrNotFound)
			}
			return fmt.Errorf("link topic %d: %w", topicID, err)
		}
	}
	return nil
}

// attachTopics loads topic links for the given tasks in one query.
func attachTopics(ctx context.Context, q querier, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	index := make(map[int64]int, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = i
		tasks[i].Topics = []models.Topic{}
	}

	rows, err := q.QueryContext(ctx, `
		SELECT tt.task_id, t.id, t.name, t.discipline_id
		FROM task_topics tt
		JOIN topic t ON t.id = tt.topic_id
		ORDER BY t.name
	`)
	if err != nil {
		return fmt.Errorf("list task topics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID int64
		var t models.Topic
		if err := rows.Scan(&taskID, &t.ID, &t.Name, &t.SubjectID); err != nil {
			return fmt.Errorf("scan task topic: %w", err)
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Topics = append(tasks[i].Topics, t)
		}
	}
	return rows.Err()
}

func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var (
			t                        models.Task
			sheetID                  sql.NullFloat64
			trackID, planned, actual sql.NullInt64
			status, createdAt        string
		)
		err := rows.Scan(&t.ID, &sheetID, &t.Title, &t.SubjectID, &trackID, &status,
			&planned, &actual, &t.CompletionDate, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if sheetID.Valid {
			v := sheetID.Float64
			t.SpreadsheetTaskID = &v
		}
		t.TrackID = int64Ptr(trackID)
		t.Status = models.TaskStatus(status)
		t.PlannedMinutes = intPtr(planned)
		t.ActualMinutes = intPtr(actual)
		t.CreatedAt = parseTime(createdAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func taskWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: subject or track: %w", op, ErrNotFound)
	case errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
