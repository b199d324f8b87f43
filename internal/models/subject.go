// ABOUTME: Subject (discipline), Topic and Track (trilha) models.
// ABOUTME: Tracks derive their status from the tasks that reference them.
package models

// Subject is a top-level study area (discipline). Names are unique.
type Subject struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Topic belongs to exactly one Subject and links to many Tasks.
type Topic struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	SubjectID int64  `json:"discipline_id" yaml:"discipline_id"`
}

// TaskTopic is one row of the task/topic many-to-many link.
type TaskTopic struct {
	TaskID  int64 `json:"task_id" yaml:"task_id"`
	TopicID int64 `json:"topic_id" yaml:"topic_id"`
}

// TrackStatus is derived, never stored.
type TrackStatus string

const (
	TrackPending   TrackStatus = "Pendente"
	TrackCompleted TrackStatus = "Concluída"
)

// Track is an ordered grouping of tasks, independent of Subject.
type Track struct {
	ID     int64       `json:"id" yaml:"id"`
	Name   string      `json:"name" yaml:"name"`
	Status TrackStatus `json:"status" yaml:"-"`
}

// TrackStatusFor returns Completed iff no pending task remains in the track.
func TrackStatusFor(pendingTasks int) TrackStatus {
	if pendingTasks == 0 {
		return TrackCompleted
	}
	return TrackPending
}
