// ABOUTME: Subject (discipline), Topic and Track CRUD for SQLite storage.
// ABOUTME: Deleting a subject cascades to its topics, tasks, sessions, results and goals.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/study/internal/models"
)

// CreateSubject stores a new subject. Duplicate names return ErrConflict.
func (d *DB) CreateSubject(ctx context.Context, name string) (*models.Subject, error) {
	res, err := d.db.ExecContext(ctx, `INSERT INTO discipline (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create subject %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("create subject: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return &models.Subject{ID: id, Name: name}, nil
}

// UpdateSubject renames a subject.
func (d *DB) UpdateSubject(ctx context.Context, id int64, name string) (*models.Subject, error) {
	res, err := d.db.ExecContext(ctx, `UPDATE discipline SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update subject %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("update subject: %w", err)
	}
	if err := requireAffected(res, "update subject", id); err != nil {
		return nil, err
	}
	return &models.Subject{ID: id, Name: name}, nil
}

// DeleteSubject removes a subject and, by cascade, everything under it.
func (d *DB) DeleteSubject(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM discipline WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return requireAffected(res, "delete subject", id)
}

// GetSubject retrieves a subject by ID.
func (d *DB) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	var s models.Subject
	err := d.db.QueryRowContext(ctx, `SELECT id, name FROM discipline WHERE id = ?`, id).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &s, nil
}

// ListSubjects returns all subjects ordered by name.
func (d *DB) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return listSubjects(ctx, d.db)
}

func listSubjects(ctx context.Context, q querier) ([]models.Subject, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM discipline ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// CreateTopic stores a new topic under a subject.
func (d *DB) CreateTopic(ctx context.Context, subjectID int64, name string) (*models.Topic, error) {
	res, err := d.db.ExecContext(ctx, `INSERT INTO topic (name, discipline_id) VALUES (?, ?)`, name, subjectID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("create topic: subject %d: %w", subjectID, ErrNotFound)
		}
		return nil, fmt.Errorf("create topic: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return &models.Topic{ID: id, Name: name, SubjectID: subjectID}, nil
}

// UpdateTopic renames a topic or moves it to another subject.
func (d *DB) UpdateTopic(ctx context.Context, id int64, name string, subjectID int64) (*models.Topic, error) {
	res, err := d.db.ExecContext(ctx, `UPDATE topic SET name = ?, discipline_id = ? WHERE id = ?`, name, subjectID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("update topic: subject %d: %w", subjectID, ErrNotFound)
		}
		return nil, fmt.Errorf("update topic: %w", err)
	}
	if err := requireAffected(res, "update topic", id); err != nil {
		return nil, err
	}
	return &models.Topic{ID: id, Name: name, SubjectID: subjectID}, nil
}

// DeleteTopic removes a topic and its task links.
func (d *DB) DeleteTopic(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM topic WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	return requireAffected(res, "delete topic", id)
}

// ListTopics returns the topics of one subject ordered by name.
func (d *DB) ListTopics(ctx context.Context, subjectID int64) ([]models.Topic, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, discipline_id FROM topic WHERE discipline_id = ? ORDER BY name`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

func scanTopics(rows *sql.Rows) ([]models.Topic, error) {
	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.SubjectID); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// ListTracks returns all tracks with their derived completion status.
func (d *DB) ListTracks(ctx context.Context) ([]models.Track, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT tr.id, tr.name,
			(SELECT COUNT(id) FROM task WHERE trilha_id = tr.id AND status = ?) AS pending
		FROM trilha tr
		ORDER BY tr.id
	`, string(models.TaskPending))
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var tr models.Track
		var pending int
		if err := rows.Scan(&tr.ID, &tr.Name, &pending); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tr.Status = models.TrackStatusFor(pending)
		tracks = append(tracks, tr)
	}
	return tracks, rows.Err()
}
