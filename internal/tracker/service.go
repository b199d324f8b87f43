// ABOUTME: Tracker service: validated fact writes that publish domain events.
// ABOUTME: Every outer surface (HTTP, MCP, CLI) writes through this service.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/study/internal/events"
	"github.com/harperreed/study/internal/logging"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

// ErrInvalid marks input rejected before anything is written.
var ErrInvalid = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Publisher hands events to the recompute and rule pipeline.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) (*events.Outcome, error)
}

type Service struct {
	repo storage.Repository
	pub  Publisher
	loc  *time.Location
	log  *logging.Logger
	now  func() time.Time
}

func New(repo storage.Repository, pub Publisher, loc *time.Location, log *logging.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Service{repo: repo, pub: pub, loc: loc, log: log, now: time.Now}
}

// WithClock replaces the service's time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() models.Date {
	return models.DateOf(s.now(), s.loc)
}

// publish runs the pipeline for ev. The fact write has already committed, so a
// pipeline failure is logged and does not fail the caller.
func (s *Service) publish(ctx context.Context, ev events.Event) []models.Notification {
	out, err := s.pub.Publish(ctx, ev)
	if err != nil {
		s.log.Error("event pipeline failed", "event", string(ev.Kind()), "error", err)
	}
	if out == nil {
		return nil
	}
	return out.Notifications
}

func cleanName(name, what string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("%s name is required", what)
	}
	return name, nil
}

// Subjects and topics

func (s *Service) CreateSubject(ctx context.Context, name string) (*models.Subject, error) {
	name, err := cleanName(name, "discipline")
	if err != nil {
		return nil, err
	}
	return s.repo.CreateSubject(ctx, name)
}

func (s *Service) UpdateSubject(ctx context.Context, id int64, name string) (*models.Subject, error) {
	name, err := cleanName(name, "discipline")
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateSubject(ctx, id, name)
}

func (s *Service) DeleteSubject(ctx context.Context, id int64) error {
	if err := s.repo.DeleteSubject(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.FactsChanged{Entity: "discipline", ID: id})
	return nil
}

func (s *Service) CreateTopic(ctx context.Context, subjectID int64, name string) (*models.Topic, error) {
	name, err := cleanName(name, "topic")
	if err != nil {
		return nil, err
	}
	return s.repo.CreateTopic(ctx, subjectID, name)
}

func (s *Service) UpdateTopic(ctx context.Context, id int64, name string, subjectID int64) (*models.Topic, error) {
	name, err := cleanName(name, "topic")
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateTopic(ctx, id, name, subjectID)
}

func (s *Service) DeleteTopic(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTopic(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.FactsChanged{Entity: "topic", ID: id})
	return nil
}

// Tasks

// TaskInput is the writable part of a task.
type TaskInput struct {
	Title          string            `json:"title"`
	SubjectID      int64             `json:"discipline_id"`
	TrackID        *int64            `json:"trilha_id"`
	Status         models.TaskStatus `json:"status"`
	PlannedMinutes *int              `json:"carga_horaria_planejada_minutos"`
	ActualMinutes  *int              `json:"carga_horaria_efetiva_minutos"`
	CompletionDate models.Date       `json:"completion_date"`
	TopicIDs       []int64           `json:"topic_ids"`
}

func (in *TaskInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("task title is required")
	}
	if in.SubjectID <= 0 {
		return invalid("discipline_id is required")
	}
	if in.Status == "" {
		in.Status = models.TaskPending
	}
	if !models.IsValidTaskStatus(string(in.Status)) {
		return invalid("unknown task status %q", in.Status)
	}
	for _, m := range []*int{in.PlannedMinutes, in.ActualMinutes} {
		if m != nil && *m < 0 {
			return invalid("minutes cannot be negative")
		}
	}
	return nil
}

func (s *Service) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t := models.NewTask(in.Title, in.SubjectID)
	t.TrackID = in.TrackID
	t.Status = in.Status
	t.PlannedMinutes = in.PlannedMinutes
	t.ActualMinutes = in.ActualMinutes
	t.CompletionDate = in.CompletionDate
	if t.IsCompleted() && t.CompletionDate.IsZero() {
		t.CompletionDate = s.today()
	}
	if err := s.repo.CreateTask(ctx, t, in.TopicIDs); err != nil {
		return nil, err
	}
	s.publish(ctx, events.FactsChanged{Entity: "task", ID: t.ID})
	return s.repo.GetTask(ctx, t.ID)
}

// UpdateTask overwrites a task. Moving a pending task to Completed goes through
// CompleteTask so its minutes are frozen from its sessions.
func (s *Service) UpdateTask(ctx context.Context, id int64, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	current, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	completing := !current.IsCompleted() && in.Status == models.TaskCompleted

	updated := *current
	updated.Title = in.Title
	updated.SubjectID = in.SubjectID
	updated.TrackID = in.TrackID
	updated.PlannedMinutes = in.PlannedMinutes
	updated.ActualMinutes = in.ActualMinutes
	updated.CompletionDate = in.CompletionDate
	if !completing {
		updated.Status = in.Status
	}
	if updated.Status == models.TaskPending {
		updated.CompletionDate = models.Date{}
	}
	if err := s.repo.UpdateTask(ctx, &updated, in.TopicIDs); err != nil {
		return nil, err
	}

	if completing {
		return s.CompleteTask(ctx, id)
	}
	s.publish(ctx, events.FactsChanged{Entity: "task", ID: id})
	return s.repo.GetTask(ctx, id)
}

// CompleteTask marks a task completed today unless it already is.
func (s *Service) CompleteTask(ctx context.Context, id int64) (*models.Task, error) {
	task, transitioned, err := s.repo.CompleteTask(ctx, id, s.today())
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.publish(ctx, events.TaskCompleted{Task: *task})
	}
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.FactsChanged{Entity: "task", ID: id})
	return nil
}

// Sessions and results

// SessionInput is a finished or open study session.
type SessionInput struct {
	TaskID          int64      `json:"task_id"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end"`
	DurationMinutes *int       `json:"duration_minutes"`
}

func (s *Service) SaveSession(ctx context.Context, in SessionInput) (*models.StudySession, error) {
	if in.TaskID <= 0 {
		return nil, invalid("task_id is required")
	}
	if in.Start.IsZero() {
		return nil, invalid("start is required")
	}
	if in.End != nil && in.End.Before(in.Start) {
		return nil, invalid("end is before start")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return nil, invalid("duration_minutes cannot be negative")
	}
	if in.DurationMinutes == nil && in.End != nil {
		minutes := int(in.End.Sub(in.Start).Minutes())
		in.DurationMinutes = &minutes
	}

	session := &models.StudySession{
		TaskID:          in.TaskID,
		Start:           in.Start,
		End:             in.End,
		DurationMinutes: in.DurationMinutes,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.publish(ctx, events.SessionSaved{Session: *session})
	return session, nil
}

func (s *Service) RecordResult(ctx context.Context, taskID int64, correct, total int) (*models.Result, error) {
	if taskID <= 0 {
		return nil, invalid("task_id is required")
	}
	if total < 0 || correct < 0 {
		return nil, invalid("correct and total cannot be negative")
	}
	if correct > total {
		return nil, invalid("correct (%d) exceeds total (%d)", correct, total)
	}

	r := models.NewResult(taskID, correct, total).WithCreatedAt(s.now().UTC())
	if err := s.repo.CreateResult(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, events.ResultRecorded{Result: *r})
	return r, nil
}

// Goals

// GoalInput is the writable part of a goal.
type GoalInput struct {
	SubjectID   int64             `json:"discipline_id"`
	Kind        models.GoalKind   `json:"type"`
	TargetValue float64           `json:"target_value"`
	Period      string            `json:"period"`
	StartDate   models.Date       `json:"start_date"`
	EndDate     models.Date       `json:"end_date"`
	Status      models.GoalStatus `json:"status"`
}

func (in *GoalInput) validate() error {
	if in.SubjectID <= 0 {
		return invalid("discipline_id is required")
	}
	if !models.IsValidGoalKind(string(in.Kind)) {
		return invalid("unknown goal type %q", in.Kind)
	}
	if in.TargetValue <= 0 {
		return invalid("target_value must be positive")
	}
	if in.Kind == models.GoalPerformance && in.TargetValue > 100 {
		return invalid("performance target cannot exceed 100")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return invalid("start_date and end_date are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return invalid("end_date is before start_date")
	}
	if in.Status == "" {
		in.Status = models.GoalActive
	}
	if !models.IsValidGoalStatus(string(in.Status)) {
		return invalid("unknown goal status %q", in.Status)
	}
	if in.Period == "" {
		in.Period = "custom"
	}
	return nil
}

func (s *Service) CreateGoal(ctx context.Context, in GoalInput) (*models.Goal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	g := models.NewGoal(in.SubjectID, in.Kind, in.TargetValue, in.StartDate, in.EndDate)
	g.Period = in.Period
	g.Status = in.Status
	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, events.GoalChanged{Goal: *g})
	return s.repo.GetGoal(ctx, g.ID)
}

func (s *Service) UpdateGoal(ctx context.Context, id int64, in GoalInput) (*models.Goal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	current, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	current.SubjectID = in.SubjectID
	current.Kind = in.Kind
	current.TargetValue = in.TargetValue
	current.Period = in.Period
	current.StartDate = in.StartDate
	current.EndDate = in.EndDate
	current.Status = in.Status
	if err := s.repo.UpdateGoal(ctx, current); err != nil {
		return nil, err
	}
	s.publish(ctx, events.GoalChanged{Goal: *current})
	return s.repo.GetGoal(ctx, id)
}

func (s *Service) SetGoalStatus(ctx context.Context, id int64, status models.GoalStatus) (*models.Goal, error) {
	if !models.IsValidGoalStatus(string(status)) {
		return nil, invalid("unknown goal status %q", status)
	}
	if err := s.repo.SetGoalStatus(ctx, id, status); err != nil {
		return nil, err
	}
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.GoalChanged{Goal: *g})
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, id int64) error {
	return s.repo.DeleteGoal(ctx, id)
}

// Reviews

// ReviewInput schedules a review of a task.
type ReviewInput struct {
	TaskID       int64       `json:"task_id"`
	TopicID      *int64      `json:"topic_id"`
	ScheduledFor models.Date `json:"scheduled_for"`
	Reason       string      `json:"reason"`
}

func (s *Service) CreateReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if in.TaskID <= 0 {
		return nil, invalid("task_id is required")
	}
	if in.ScheduledFor.IsZero() {
		return nil, invalid("scheduled_for is required")
	}
	task, err := s.repo.GetTask(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	r := &models.Review{
		TaskID:       task.ID,
		SubjectID:    task.SubjectID,
		TopicID:      in.TopicID,
		ScheduledFor: in.ScheduledFor,
		Status:       models.ReviewPending,
		Reason:       strings.TrimSpace(in.Reason),
	}
	if err := s.repo.CreateReview(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, events.FactsChanged{Entity: "review", ID: r.ID})
	return r, nil
}

func (s *Service) SetReviewStatus(ctx context.Context, id int64, status models.ReviewStatus) error {
	if status != models.ReviewPending && status != models.ReviewDone {
		return invalid("unknown review status %q", status)
	}
	return s.repo.SetReviewStatus(ctx, id, status)
}

// Import

// Import applies parsed spreadsheet rows in one transaction and, only on success,
// publishes ImportCompleted.
func (s *Service) Import(ctx context.Context, rows []storage.ImportRow) (*storage.ImportSummary, error) {
	summary, err := s.repo.ApplyImport(ctx, rows)
	if err != nil {
		return nil, err
	}
	s.ImportCompleted(ctx, summary)
	return summary, nil
}

// ImportCompleted runs the pipeline after an import committed.
func (s *Service) ImportCompleted(ctx context.Context, summary *storage.ImportSummary) []models.Notification {
	ev := events.ImportCompleted{}
	if summary != nil {
		ev.TasksAdded = summary.TasksAdded
		ev.ResultsAdded = summary.ResultsAdded
	}
	return s.publish(ctx, ev)
}
