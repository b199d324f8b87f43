// ABOUTME: Spaced-repetition review persistence for SQLite storage.
// ABOUTME: Reviews are listed by scheduled date with their task and subject names.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/study/internal/models"
)

// ReviewFilter narrows ListReviews. Zero dates and a nil status do not filter.
type ReviewFilter struct {
	From   models.Date
	To     models.Date
	Status *models.ReviewStatus
}

// CreateReview stores a review, setting r.ID.
func (d *DB) CreateReview(ctx context.Context, r *models.Review) error {
	if r.Status == "" {
		r.Status = models.ReviewPending
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO review (task_id, discipline_id, topic_id, scheduled_for, status, reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.TaskID, r.SubjectID, nullInt64(r.TopicID), r.ScheduledFor, string(r.Status), r.Reason)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create review: task, subject or topic: %w", ErrNotFound)
		}
		return fmt.Errorf("create review: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// SetReviewStatus marks a review pending or done.
func (d *DB) SetReviewStatus(ctx context.Context, id int64, status models.ReviewStatus) error {
	res, err := d.db.ExecContext(ctx, `UPDATE review SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return requireAffected(res, "update review", id)
}

// ListReviews returns reviews ordered by scheduled date.
func (d *DB) ListReviews(ctx context.Context, filter ReviewFilter) ([]models.Review, error) {
	query := `
		SELECT r.id, r.task_id, r.discipline_id, r.topic_id, r.scheduled_for,
			COALESCE(r.status, ''), COALESCE(r.reason, ''), d.name, t.title
		FROM review r
		JOIN task t ON r.task_id = t.id
		JOIN discipline d ON t.discipline_id = d.id
	`
	var (
		conds []string
		args  []interface{}
	)
	if !filter.From.IsZero() {
		conds = append(conds, "r.scheduled_for >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		conds = append(conds, "r.scheduled_for <= ?")
		args = append(args, filter.To)
	}
	if filter.Status != nil {
		conds = append(conds, "COALESCE(r.status, ?) = ?")
		args = append(args, string(models.ReviewPending), string(*filter.Status))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.scheduled_for, r.id"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var (
			r       models.Review
			topicID sql.NullInt64
			status  string
		)
		err := rows.Scan(&r.ID, &r.TaskID, &r.SubjectID, &topicID, &r.ScheduledFor,
			&status, &r.Reason, &r.SubjectName, &r.TaskTitle)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.TopicID = int64Ptr(topicID)
		r.Status = models.ReviewStatus(status)
		if r.Status == "" {
			r.Status = models.ReviewPending
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
