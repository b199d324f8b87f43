// ABOUTME: Repository interface for study data storage.
// ABOUTME: Defines the contract the tracker service depends on.
package storage

import (
	"context"
	"time"

	"github.com/harperreed/study/internal/models"
)

// Compile-time check that DB implements Repository.
var _ Repository = (*DB)(nil)

// Repository defines the storage interface for study data.
type Repository interface {
	// Subjects, topics and tracks
	CreateSubject(ctx context.Context, name string) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id int64, name string) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
	GetSubject(ctx context.Context, id int64) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	CreateTopic(ctx context.Context, subjectID int64, name string) (*models.Topic, error)
	UpdateTopic(ctx context.Context, id int64, name string, subjectID int64) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id int64) error
	ListTopics(ctx context.Context, subjectID int64) ([]models.Topic, error)
	ListTracks(ctx context.Context) ([]models.Track, error)

	// Tasks
	CreateTask(ctx context.Context, t *models.Task, topicIDs []int64) error
	UpdateTask(ctx context.Context, t *models.Task, topicIDs []int64) error
	CompleteTask(ctx context.Context, id int64, on models.Date) (*models.Task, bool, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// Sessions and results
	CreateSession(ctx context.Context, s *models.StudySession) error
	ListSessionHistory(ctx context.Context, limit int) ([]models.StudySessionEntry, error)
	CreateResult(ctx context.Context, r *models.Result) error

	// Goals
	CreateGoal(ctx context.Context, g *models.Goal) error
	UpdateGoal(ctx context.Context, g *models.Goal) error
	SetGoalStatus(ctx context.Context, id int64, status models.GoalStatus) error
	DeleteGoal(ctx context.Context, id int64) error
	GetGoal(ctx context.Context, id int64) (*models.Goal, error)
	ListGoals(ctx context.Context, status *models.GoalStatus) ([]models.Goal, error)

	// Reviews
	CreateReview(ctx context.Context, r *models.Review) error
	SetReviewStatus(ctx context.Context, id int64, status models.ReviewStatus) error
	ListReviews(ctx context.Context, filter ReviewFilter) ([]models.Review, error)

	// Notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	HasNotification(ctx context.Context, m NotificationMatch) (bool, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, ids []int64, at time.Time) (int64, error)

	// Facts and derived aggregates
	LoadFacts(ctx context.Context) (*models.Facts, error)
	ReplaceEvolution(ctx context.Context, rows []models.EvolutionRow) error
	UpsertPerformanceHistory(ctx context.Context, rows []models.PerformanceHistoryRow) error
	ListEvolution(ctx context.Context) ([]models.EvolutionRow, error)
	ListPerformanceHistory(ctx context.Context, filter HistoryFilter) ([]models.PerformanceHistoryRow, error)
	StudyMinutesBySubject(ctx context.Context) ([]SubjectMinutes, error)
	PerformanceBySubject(ctx context.Context) ([]SubjectPerformance, error)

	// Import and export
	ApplyImport(ctx context.Context, rows []ImportRow) (*ImportSummary, error)
	GetAllData(ctx context.Context) (*ExportData, error)

	// Lifecycle
	Close() error
}
