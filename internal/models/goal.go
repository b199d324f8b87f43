// ABOUTME: Goal model with GoalKind and GoalStatus enums.
// ABOUTME: Progress is always measured over [StartDate, EndDate] for the goal's subject.
package models

import "time"

// GoalKind selects how goal progress is measured.
type GoalKind string

const (
	GoalStudyTime          GoalKind = "study_time"
	GoalPerformance        GoalKind = "performance"
	GoalExercisesCompleted GoalKind = "exercises_completed"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalFailed    GoalStatus = "failed"
	GoalCancelled GoalStatus = "cancelled"
)

// IsValidGoalKind checks if a string is a known goal kind.
func IsValidGoalKind(s string) bool {
	switch GoalKind(s) {
	case GoalStudyTime, GoalPerformance, GoalExercisesCompleted:
		return true
	}
	return false
}

// IsValidGoalStatus checks if a string is a known goal status.
func IsValidGoalStatus(s string) bool {
	switch GoalStatus(s) {
	case GoalActive, GoalCompleted, GoalFailed, GoalCancelled:
		return true
	}
	return false
}

// Goal is a numeric target for one subject over a date range.
type Goal struct {
	ID          int64      `json:"id" yaml:"id"`
	SubjectID   int64      `json:"discipline_id" yaml:"discipline_id"`
	Kind        GoalKind   `json:"type" yaml:"type"`
	TargetValue float64    `json:"target_value" yaml:"target_value"`
	Period      string     `json:"period" yaml:"period"`
	StartDate   Date       `json:"start_date" yaml:"start_date"`
	EndDate     Date       `json:"end_date" yaml:"end_date"`
	Status      GoalStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

// NewGoal creates an active goal.
func NewGoal(subjectID int64, kind GoalKind, target float64, start, end Date) *Goal {
	return &Goal{
		SubjectID:   subjectID,
		Kind:        kind,
		TargetValue: target,
		Period:      "custom",
		StartDate:   start,
		EndDate:     end,
		Status:      GoalActive,
		CreatedAt:   time.Now().UTC(),
	}
}

// Unit returns the display unit for the goal's kind.
func (g *Goal) Unit() string {
	switch g.Kind {
	case GoalStudyTime:
		return "min"
	case GoalPerformance:
		return "%"
	default:
		return "exercises"
	}
}

// GoalProgress is a goal with its current measured value.
type GoalProgress struct {
	Goal
	SubjectName     string  `json:"discipline_name"`
	CurrentValue    float64 `json:"current_value"`
	ProgressPercent float64 `json:"progress_percent"`
}
