// ABOUTME: Review model for spaced-repetition scheduling.
package models

// ReviewStatus tracks whether a scheduled review happened.
type ReviewStatus string

const (
	ReviewPending ReviewStatus = "pending"
	ReviewDone    ReviewStatus = "done"
)

// Review is a scheduled revisit of a task's material.
type Review struct {
	ID           int64        `json:"id" yaml:"id"`
	TaskID       int64        `json:"task_id" yaml:"task_id"`
	SubjectID    int64        `json:"discipline_id" yaml:"discipline_id"`
	TopicID      *int64       `json:"topic_id" yaml:"topic_id,omitempty"`
	ScheduledFor Date         `json:"scheduled_for" yaml:"scheduled_for"`
	Status       ReviewStatus `json:"status" yaml:"status"`
	Reason       string       `json:"reason" yaml:"reason,omitempty"`
	SubjectName  string       `json:"discipline_name,omitempty" yaml:"-"`
	TaskTitle    string       `json:"task_title,omitempty" yaml:"-"`
}
