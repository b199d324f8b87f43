// ABOUTME: Read-side queries of the tracker service.
// ABOUTME: Derived views come from the materialized evolution tables, never recomputed here.
package tracker

import (
	"context"
	"fmt"

	"github.com/harperreed/study/internal/evolution"
	"github.com/harperreed/study/internal/events"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

// DefaultHistoryLimit bounds SessionHistory when no limit is given.
const DefaultHistoryLimit = 20

// DashboardSummary feeds the dashboard charts.
type DashboardSummary struct {
	HoursByDiscipline      []SubjectHours               `json:"hours_by_discipline"`
	AvgPercentByDiscipline []storage.SubjectPerformance `json:"avg_percent_by_discipline"`
	UnreadNotifications    int                          `json:"unread_notifications"`
	ActiveGoals            int                          `json:"active_goals"`
}

// SubjectHours is a subject's total study time in hours.
type SubjectHours struct {
	SubjectName string  `json:"discipline_name"`
	TotalHours  float64 `json:"total_hours"`
}

func (s *Service) Subjects(ctx context.Context) ([]models.Subject, error) {
	return s.repo.ListSubjects(ctx)
}

func (s *Service) Topics(ctx context.Context, subjectID int64) ([]models.Topic, error) {
	return s.repo.ListTopics(ctx, subjectID)
}

func (s *Service) Tracks(ctx context.Context) ([]models.Track, error) {
	return s.repo.ListTracks(ctx)
}

// TrackTasks lists a track's tasks in id order.
func (s *Service) TrackTasks(ctx context.Context, trackID int64) ([]models.Task, error) {
	return s.repo.ListTasks(ctx, storage.TaskFilter{TrackID: &trackID})
}

func (s *Service) Tasks(ctx context.Context, status *models.TaskStatus) ([]models.Task, error) {
	if status != nil && !models.IsValidTaskStatus(string(*status)) {
		return nil, invalid("unknown task status %q", *status)
	}
	return s.repo.ListTasks(ctx, storage.TaskFilter{Status: status})
}

func (s *Service) Task(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// SessionHistory returns the most recent closed sessions.
func (s *Service) SessionHistory(ctx context.Context, limit int) ([]models.StudySessionEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.repo.ListSessionHistory(ctx, limit)
}

func (s *Service) Goals(ctx context.Context, status *models.GoalStatus) ([]models.Goal, error) {
	if status != nil && !models.IsValidGoalStatus(string(*status)) {
		return nil, invalid("unknown goal status %q", *status)
	}
	return s.repo.ListGoals(ctx, status)
}

func (s *Service) Goal(ctx context.Context, id int64) (*models.Goal, error) {
	return s.repo.GetGoal(ctx, id)
}

// GoalsProgress measures every goal (or only those with status) against the facts.
func (s *Service) GoalsProgress(ctx context.Context, status *models.GoalStatus) ([]models.GoalProgress, error) {
	goals, err := s.Goals(ctx, status)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return []models.GoalProgress{}, nil
	}
	facts, err := s.repo.LoadFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("goals progress: %w", err)
	}
	names := facts.SubjectNames()

	out := make([]models.GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, evolution.Progress(facts, g, names[g.SubjectID], s.loc))
	}
	return out, nil
}

func (s *Service) Reviews(ctx context.Context, filter storage.ReviewFilter) ([]models.Review, error) {
	return s.repo.ListReviews(ctx, filter)
}

// Evolution returns the last materialized per-subject snapshot.
func (s *Service) Evolution(ctx context.Context) ([]models.EvolutionRow, error) {
	return s.repo.ListEvolution(ctx)
}

// PerformanceHistory returns history rows of the last days days, all of them when
// days is not positive.
func (s *Service) PerformanceHistory(ctx context.Context, days int, subjectID *int64) ([]models.PerformanceHistoryRow, error) {
	filter := storage.HistoryFilter{SubjectID: subjectID}
	if days > 0 {
		filter.Since = s.today().AddDays(-(days - 1))
	}
	return s.repo.ListPerformanceHistory(ctx, filter)
}

func (s *Service) Notifications(ctx context.Context, limit int) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, storage.NotificationFilter{Limit: limit})
}

func (s *Service) UnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, storage.NotificationFilter{UnreadOnly: true})
}

// MarkNotificationsRead stamps the given notifications read. Already read ones are left alone.
func (s *Service) MarkNotificationsRead(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, invalid("ids is required")
	}
	return s.repo.MarkNotificationsRead(ctx, ids, s.now().UTC())
}

// CheckNotifications runs an on-demand rule pass and returns what it created.
func (s *Service) CheckNotifications(ctx context.Context, recompute bool) ([]models.Notification, error) {
	out, err := s.pub.Publish(ctx, events.CheckRequested{Reason: "on demand", Recompute: recompute})
	if out == nil {
		return nil, err
	}
	if out.Notifications == nil {
		out.Notifications = []models.Notification{}
	}
	return out.Notifications, err
}

func (s *Service) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	minutes, err := s.repo.StudyMinutesBySubject(ctx)
	if err != nil {
		return nil, err
	}
	perf, err := s.repo.PerformanceBySubject(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.UnreadNotifications(ctx)
	if err != nil {
		return nil, err
	}
	active := models.GoalActive
	goals, err := s.repo.ListGoals(ctx, &active)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		HoursByDiscipline:      make([]SubjectHours, 0, len(minutes)),
		AvgPercentByDiscipline: perf,
		UnreadNotifications:    len(unread),
		ActiveGoals:            len(goals),
	}
	if summary.AvgPercentByDiscipline == nil {
		summary.AvgPercentByDiscipline = []storage.SubjectPerformance{}
	}
	for _, m := range minutes {
		summary.HoursByDiscipline = append(summary.HoursByDiscipline, SubjectHours{
			SubjectName: m.SubjectName,
			TotalHours:  float64(m.TotalMinutes) / 60,
		})
	}
	return summary, nil
}

// Export returns every stored row for backup.
func (s *Service) Export(ctx context.Context) (*storage.ExportData, error) {
	return s.repo.GetAllData(ctx)
}
