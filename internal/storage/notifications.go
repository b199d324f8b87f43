// ABOUTME: Notification persistence and dedup lookups for SQLite storage.
// ABOUTME: Notifications are marked read, never deleted by the application.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/study/internal/models"
)

// NotificationFilter narrows ListNotifications.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}

// NotificationMatch describes an existing notification that makes a new one redundant.
// TitleContains is matched as a substring. Zero-valued fields do not filter; a zero
// Since means all time.
type NotificationMatch struct {
	Kind          models.NotificationKind
	TitleContains string
	RelatedID     *int64
	RelatedType   string
	Since         time.Time
}

// CreateNotification stores a notification, setting n.ID.
func (d *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO notification (type, title, message, priority, related_id, related_type, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(n.Kind),
		n.Title,
		n.Message,
		string(n.Priority),
		nullInt64(n.RelatedID),
		n.RelatedType,
		formatTime(n.CreatedAt),
		formatTimePtr(n.ReadAt),
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// HasNotification reports whether a notification matching m already exists.
func (d *DB) HasNotification(ctx context.Context, m NotificationMatch) (bool, error) {
	conds := []string{"type = ?"}
	args := []interface{}{string(m.Kind)}

	if m.TitleContains != "" {
		conds = append(conds, "instr(title, ?) > 0")
		args = append(args, m.TitleContains)
	}
	if m.RelatedID != nil {
		conds = append(conds, "related_id = ?")
		args = append(args, *m.RelatedID)
	}
	if m.RelatedType != "" {
		conds = append(conds, "related_type = ?")
		args = append(args, m.RelatedType)
	}
	if !m.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, formatTime(m.Since))
	}

	query := `SELECT EXISTS (SELECT 1 FROM notification WHERE ` + strings.Join(conds, " AND ") + `)`
	var exists bool
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("find notification: %w", err)
	}
	return exists, nil
}

// ListNotifications returns notifications newest first.
func (d *DB) ListNotifications(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	query := `
		SELECT id, type, title, message, priority, related_id, related_type, created_at, read_at
		FROM notification
	`
	var args []interface{}
	if filter.UnreadOnly {
		query += " WHERE read_at IS NULL"
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var (
			n                         models.Notification
			kind, priority, createdAt string
			relatedID                 sql.NullInt64
			relatedType, readAt       sql.NullString
		)
		err := rows.Scan(&n.ID, &kind, &n.Title, &n.Message, &priority,
			&relatedID, &relatedType, &createdAt, &readAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = models.NotificationKind(kind)
		n.Priority = models.Priority(priority)
		n.RelatedID = int64Ptr(relatedID)
		n.RelatedType = relatedType.String
		n.CreatedAt = parseTime(createdAt)
		n.ReadAt = parseTimePtr(readAt)
		n.Read = n.ReadAt != nil
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationsRead stamps the given unread notifications as read at the given time.
// It returns how many rows changed.
func (d *DB) MarkNotificationsRead(ctx context.Context, ids []int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, formatTime(at))
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := d.db.ExecContext(ctx,
		`UPDATE notification SET read_at = ? WHERE read_at IS NULL AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}
