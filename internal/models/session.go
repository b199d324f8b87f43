// ABOUTME: StudySession model for timed study on a task.
// ABOUTME: Duration is nil while the session is still open.
package models

import "time"

// LongSessionMinutes is the duration from which a session counts as long.
const LongSessionMinutes = 120

// StudySession is a timed block of study on one task.
type StudySession struct {
	ID              int64      `json:"id" yaml:"id"`
	TaskID          int64      `json:"task_id" yaml:"task_id"`
	Start           time.Time  `json:"start" yaml:"start"`
	End             *time.Time `json:"end" yaml:"end,omitempty"`
	DurationMinutes *int       `json:"duration_minutes" yaml:"duration_minutes,omitempty"`
}

// NewStudySession creates a closed session with the given duration.
func NewStudySession(taskID int64, start time.Time, minutes int) *StudySession {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return &StudySession{
		TaskID:          taskID,
		Start:           start,
		End:             &end,
		DurationMinutes: &minutes,
	}
}

// Minutes returns the recorded duration, or 0 for an open session.
func (s *StudySession) Minutes() int {
	if s.DurationMinutes == nil {
		return 0
	}
	return *s.DurationMinutes
}

// StudySessionEntry is a session joined with its task and subject for history views.
type StudySessionEntry struct {
	StudySession
	TaskTitle   string `json:"task_title"`
	SubjectName string `json:"discipline_name"`
}
