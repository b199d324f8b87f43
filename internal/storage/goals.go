// ABOUTME: Goal CRUD operations for SQLite storage.
// ABOUTME: Status transitions are written by the rule engine or by the user.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/study/internal/models"
)

const goalColumns = `id, discipline_id, type, target_value, period, start_date, end_date, status, created_at`

// CreateGoal stores a new goal, setting g.ID.
func (d *DB) CreateGoal(ctx context.Context, g *models.Goal) error {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO goal (discipline_id, type, target_value, period, start_date, end_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.SubjectID,
		string(g.Kind),
		g.TargetValue,
		g.Period,
		g.StartDate,
		g.EndDate,
		string(g.Status),
		formatTime(g.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create goal: subject %d: %w", g.SubjectID, ErrNotFound)
		}
		return fmt.Errorf("create goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// UpdateGoal overwrites a goal's editable fields.
func (d *DB) UpdateGoal(ctx context.Context, g *models.Goal) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE goal SET discipline_id = ?, type = ?, target_value = ?, period = ?,
			start_date = ?, end_date = ?, status = ?
		WHERE id = ?
	`,
		g.SubjectID,
		string(g.Kind),
		g.TargetValue,
		g.Period,
		g.StartDate,
		g.EndDate,
		string(g.Status),
		g.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("update goal: subject %d: %w", g.SubjectID, ErrNotFound)
		}
		return fmt.Errorf("update goal: %w", err)
	}
	return requireAffected(res, "update goal", g.ID)
}

// SetGoalStatus changes only the status of a goal.
func (d *DB) SetGoalStatus(ctx context.Context, id int64, status models.GoalStatus) error {
	res, err := d.db.ExecContext(ctx, `UPDATE goal SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set goal status: %w", err)
	}
	return requireAffected(res, "set goal status", id)
}

// DeleteGoal removes a goal.
func (d *DB) DeleteGoal(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM goal WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireAffected(res, "delete goal", id)
}

// GetGoal retrieves a goal by ID.
func (d *DB) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goal WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	defer rows.Close()

	goals, err := scanGoals(rows)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, fmt.Errorf("goal %d: %w", id, ErrNotFound)
	}
	return &goals[0], nil
}

// ListGoals returns goals, optionally only those with the given status, newest end date last.
func (d *DB) ListGoals(ctx context.Context, status *models.GoalStatus) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goal`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY end_date ASC, id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	return scanGoals(rows)
}

func scanGoals(rows *sql.Rows) ([]models.Goal, error) {
	var goals []models.Goal
	for rows.Next() {
		var (
			g                models.Goal
			kind, status, at string
		)
		err := rows.Scan(&g.ID, &g.SubjectID, &kind, &g.TargetValue, &g.Period,
			&g.StartDate, &g.EndDate, &status, &at)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Kind = models.GoalKind(kind)
		g.Status = models.GoalStatus(status)
		g.CreatedAt = parseTime(at)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
