// ABOUTME: Typed domain events emitted after every fact write.
// ABOUTME: Each event triggers a recompute followed by a rule evaluation.
package events

import "github.com/harperreed/study/internal/models"

// Kind names an event type.
type Kind string

const (
	KindTaskCompleted   Kind = "task_completed"
	KindSessionSaved    Kind = "session_saved"
	KindResultRecorded  Kind = "result_recorded"
	KindGoalChanged     Kind = "goal_changed"
	KindImportCompleted Kind = "spreadsheet_import_completed"
	KindFactsChanged    Kind = "facts_changed"
	KindCheckRequested  Kind = "check_requested"
)

// Event is anything the dispatcher can publish.
type Event interface {
	Kind() Kind
}

// TaskCompleted is published when a task transitions to Completed.
type TaskCompleted struct {
	Task models.Task
}

// SessionSaved is published after a study session is stored.
type SessionSaved struct {
	Session models.StudySession
}

// ResultRecorded is published after a result is stored.
type ResultRecorded struct {
	Result models.Result
}

// GoalChanged is published after a goal is created, edited or has its status set.
type GoalChanged struct {
	Goal models.Goal
}

// ImportCompleted is published after a spreadsheet import commits.
type ImportCompleted struct {
	TasksAdded   int
	ResultsAdded int
}

// FactsChanged covers edits and deletes of subjects, topics, tasks and reviews.
type FactsChanged struct {
	Entity string
	ID     int64
}

// CheckRequested asks for an evaluation without a fact write, on demand, on a
// schedule or at startup. Recompute also refreshes aggregates first.
type CheckRequested struct {
	Reason    string
	Recompute bool
}

func (TaskCompleted) Kind() Kind   { return KindTaskCompleted }
func (SessionSaved) Kind() Kind    { return KindSessionSaved }
func (ResultRecorded) Kind() Kind  { return KindResultRecorded }
func (GoalChanged) Kind() Kind     { return KindGoalChanged }
func (ImportCompleted) Kind() Kind { return KindImportCompleted }
func (FactsChanged) Kind() Kind    { return KindFactsChanged }
func (CheckRequested) Kind() Kind  { return KindCheckRequested }
