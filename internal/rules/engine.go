// ABOUTME: Rule engine deriving deduplicated notifications from facts and goals.
// ABOUTME: Each pass isolates failures per goal, subject, topic or milestone.
package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/study/internal/events"
	"github.com/harperreed/study/internal/logging"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

// Thresholds and windows used by the passes.
const (
	PerformanceWindow   = 30 * 24 * time.Hour
	AlertDedupWindow    = 7 * 24 * time.Hour
	DeadlineDedupWindow = 24 * time.Hour
	ImprovementWindow   = 7 * 24 * time.Hour

	LowAverage       = 60.0
	HighAverage      = 80.0
	TopicMinResults  = 3
	HighResult       = 90.0
	LowResult        = 50.0
	ImprovedResult   = 80.0
	NearDeadlineDays = 3
)

// Store is the storage surface the rule engine needs.
type Store interface {
	LoadFacts(ctx context.Context) (*models.Facts, error)
	ListGoals(ctx context.Context, status *models.GoalStatus) ([]models.Goal, error)
	SetGoalStatus(ctx context.Context, id int64, status models.GoalStatus) error
	ListReviews(ctx context.Context, filter storage.ReviewFilter) ([]models.Review, error)
	HasNotification(ctx context.Context, m storage.NotificationMatch) (bool, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type Engine struct {
	store Store
	loc   *time.Location
	log   *logging.Logger
	now   func() time.Time
}

func NewEngine(store Store, loc *time.Location, log *logging.Logger) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{store: store, loc: loc, log: log, now: time.Now}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// pass carries the state shared by every rule during one evaluation.
type pass struct {
	ctx     context.Context
	facts   *models.Facts
	now     time.Time
	today   models.Date
	created []models.Notification
	errs    []error
}

// Evaluate runs the goal, performance, achievement and review passes, then the rules
// specific to ev. It returns every notification created; the error joins per-item
// failures, which never stop other items from being evaluated.
func (e *Engine) Evaluate(ctx context.Context, ev events.Event, facts *models.Facts) ([]models.Notification, error) {
	if facts == nil {
		var err error
		if facts, err = e.store.LoadFacts(ctx); err != nil {
			return nil, fmt.Errorf("evaluate rules: %w", err)
		}
	}
	now := e.now()
	p := &pass{ctx: ctx, facts: facts, now: now, today: models.DateOf(now, e.loc)}

	e.goalPass(p)
	e.performancePass(p)
	e.achievementPass(p, ev)
	e.reviewPass(p)

	if rec, ok := ev.(events.ResultRecorded); ok && rec.Result.ID != 0 {
		e.resultRules(p, rec.Result)
	}

	return p.created, errors.Join(p.errs...)
}

// isolate runs fn and records its error without stopping the pass.
func (e *Engine) isolate(p *pass, entity string, id interface{}, fn func() error) {
	if err := fn(); err != nil {
		e.log.Warn("rule evaluation failed", "entity", entity, "id", id, "error", err)
		p.errs = append(p.errs, fmt.Errorf("%s %v: %w", entity, id, err))
	}
}

// emit stores n unless a notification matching m already exists.
func (e *Engine) emit(p *pass, n *models.Notification, m storage.NotificationMatch) error {
	m.Kind = n.Kind
	if m.RelatedID == nil && n.RelatedID != nil {
		m.RelatedID = n.RelatedID
		m.RelatedType = n.RelatedType
	}
	exists, err := e.store.HasNotification(p.ctx, m)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	n.CreatedAt = p.now.UTC()
	if err := e.store.CreateNotification(p.ctx, n); err != nil {
		return err
	}
	p.created = append(p.created, *n)
	return nil
}

// within returns the dedup lower bound for a window ending now.
func within(p *pass, window time.Duration) time.Time {
	return p.now.Add(-window)
}
