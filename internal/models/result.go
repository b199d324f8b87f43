// ABOUTME: Result model for quiz/exercise outcomes on a task.
// ABOUTME: Percent is computed once at creation and never recomputed.
package models

import "time"

// Result records correct answers out of a total for one task.
type Result struct {
	ID        int64     `json:"id" yaml:"id"`
	TaskID    int64     `json:"task_id" yaml:"task_id"`
	Correct   int       `json:"correct" yaml:"correct"`
	Total     int       `json:"total" yaml:"total"`
	Percent   float64   `json:"percent" yaml:"percent"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewResult creates a Result with its percent fixed at correct/total*100.
func NewResult(taskID int64, correct, total int) *Result {
	return &Result{
		TaskID:    taskID,
		Correct:   correct,
		Total:     total,
		Percent:   ResultPercent(correct, total),
		CreatedAt: time.Now().UTC(),
	}
}

// WithCreatedAt sets a custom creation timestamp.
func (r *Result) WithCreatedAt(t time.Time) *Result {
	r.CreatedAt = t
	return r
}

// ResultPercent returns correct/total*100, or 0 when total is 0. Aggregated
// performance uses the same rule.
func ResultPercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
