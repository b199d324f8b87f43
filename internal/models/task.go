// ABOUTME: Task model and TaskStatus enum.
// ABOUTME: A task belongs to one subject, optionally one track, and links to topics.
package models

import "time"

// TaskStatus is stored with the values the front end already understands.
type TaskStatus string

const (
	TaskPending   TaskStatus = "Pendente"
	TaskCompleted TaskStatus = "Concluída"
)

// IsValidTaskStatus checks if a string is a known task status.
func IsValidTaskStatus(s string) bool {
	return s == string(TaskPending) || s == string(TaskCompleted)
}

// Task is a unit of planned study work.
type Task struct {
	ID                int64      `json:"id" yaml:"id"`
	SpreadsheetTaskID *float64   `json:"spreadsheet_task_id,omitempty" yaml:"spreadsheet_task_id,omitempty"`
	Title             string     `json:"title" yaml:"title"`
	SubjectID         int64      `json:"discipline_id" yaml:"discipline_id"`
	TrackID           *int64     `json:"trilha_id" yaml:"trilha_id,omitempty"`
	Status            TaskStatus `json:"status" yaml:"status"`
	PlannedMinutes    *int       `json:"carga_horaria_planejada_minutos" yaml:"planned_minutes,omitempty"`
	// ActualMinutes is frozen when the task transitions to Completed.
	ActualMinutes  *int      `json:"carga_horaria_efetiva_minutos" yaml:"actual_minutes,omitempty"`
	CompletionDate Date      `json:"completion_date" yaml:"completion_date,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	Topics         []Topic   `json:"topics" yaml:"topics,omitempty"` // Populated when fetching a task
}

// NewTask creates a pending Task for a subject.
func NewTask(title string, subjectID int64) *Task {
	return &Task{
		Title:     title,
		SubjectID: subjectID,
		Status:    TaskPending,
		CreatedAt: time.Now().UTC(),
	}
}

// WithTrack sets the track.
func (t *Task) WithTrack(trackID int64) *Task {
	t.TrackID = &trackID
	return t
}

// WithPlannedMinutes sets the planned effort.
func (t *Task) WithPlannedMinutes(minutes int) *Task {
	t.PlannedMinutes = &minutes
	return t
}

// IsCompleted reports whether the task has been completed.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskCompleted
}
