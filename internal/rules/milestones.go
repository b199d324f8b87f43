// ABOUTME: Unified milestone table keyed by (metric, threshold).
// ABOUTME: Every milestone is measured on every pass; long sessions are measured from the saved session.
package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/study/internal/evolution"
	"github.com/harperreed/study/internal/events"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

// Metric is a cumulative counter a milestone is measured against.
type Metric string

const (
	MetricResultsTotal   Metric = "results_total"
	MetricStudyHours     Metric = "study_hours"
	MetricSubjectHours   Metric = "subject_hours"
	MetricGoalsCompleted Metric = "goals_completed"
	MetricResultStreak   Metric = "result_streak"
	MetricLongSession    Metric = "long_session"
)

// StreakLength results at StreakPercent or more make a streak.
const (
	StreakLength  = 3
	StreakPercent = 80.0
)

// Milestone fires once when its metric reaches Threshold. A zero Window means the
// notification is never repeated; otherwise it may fire again after Window.
type Milestone struct {
	Metric    Metric
	Threshold float64
	Window    time.Duration
}

// Milestones is the full milestone table.
var Milestones = []Milestone{
	{Metric: MetricResultsTotal, Threshold: 100},
	{Metric: MetricResultsTotal, Threshold: 500},
	{Metric: MetricResultsTotal, Threshold: 1000},
	{Metric: MetricResultsTotal, Threshold: 5000},
	{Metric: MetricStudyHours, Threshold: 10},
	{Metric: MetricStudyHours, Threshold: 50},
	{Metric: MetricStudyHours, Threshold: 100},
	{Metric: MetricStudyHours, Threshold: 500},
	{Metric: MetricSubjectHours, Threshold: 10},
	{Metric: MetricSubjectHours, Threshold: 25},
	{Metric: MetricSubjectHours, Threshold: 50},
	{Metric: MetricSubjectHours, Threshold: 100},
	{Metric: MetricGoalsCompleted, Threshold: 1},
	{Metric: MetricResultStreak, Threshold: StreakLength, Window: AlertDedupWindow},
	{Metric: MetricLongSession, Threshold: models.LongSessionMinutes},
}

// measurement is one value of a metric, optionally scoped to an entity.
type measurement struct {
	value       float64
	relatedType string
	relatedID   int64
	label       string
}

// title returns the notification title and the substring that identifies it for dedup.
func (m Milestone) title(v measurement) (title, key string) {
	switch m.Metric {
	case MetricResultsTotal:
		key = fmt.Sprintf("Milestone: %.0f results", m.Threshold)
		return key + " recorded", key
	case MetricStudyHours:
		key = fmt.Sprintf("Milestone: %.0f hours studied", m.Threshold)
		return key, key
	case MetricSubjectHours:
		key = fmt.Sprintf("Milestone: %.0f hours in ", m.Threshold)
		return key + v.label, key
	case MetricGoalsCompleted:
		key = "First goal completed"
		return key, key
	case MetricResultStreak:
		key = fmt.Sprintf("Streak: %d results", StreakLength)
		return fmt.Sprintf("%s at %.0f%% or more", key, StreakPercent), key
	default:
		key = "Long study session"
		return key, key
	}
}

func (m Milestone) message(v measurement) string {
	switch m.Metric {
	case MetricResultsTotal:
		return fmt.Sprintf("You have recorded %.0f results.", v.value)
	case MetricStudyHours:
		return fmt.Sprintf("You have studied %.1f hours in total.", v.value)
	case MetricSubjectHours:
		return fmt.Sprintf("You have studied %.1f hours of %s.", v.value, v.label)
	case MetricGoalsCompleted:
		return "You completed your first goal. On to the next one!"
	case MetricResultStreak:
		return fmt.Sprintf("Your last %d results were all %.0f%% or more.", StreakLength, StreakPercent)
	default:
		return fmt.Sprintf("You studied %s for %d min in one session.", v.label, int(v.value))
	}
}

func (e *Engine) achievementPass(p *pass, ev events.Event) {
	measures := map[Metric]func() ([]measurement, error){
		MetricResultsTotal:   func() ([]measurement, error) { return resultsTotal(p.facts), nil },
		MetricStudyHours:     func() ([]measurement, error) { return studyHours(p.facts), nil },
		MetricSubjectHours:   func() ([]measurement, error) { return subjectHours(p.facts), nil },
		MetricGoalsCompleted: func() ([]measurement, error) { return e.goalsCompleted(p) },
		MetricResultStreak:   func() ([]measurement, error) { return resultStreak(p.facts), nil },
		MetricLongSession:    func() ([]measurement, error) { return longSession(p.facts, ev), nil },
	}

	cache := make(map[Metric][]measurement)
	for _, m := range Milestones {
		m := m
		e.isolate(p, "milestone", fmt.Sprintf("%s/%.0f", m.Metric, m.Threshold), func() error {
			values, ok := cache[m.Metric]
			if !ok {
				var err error
				if values, err = measures[m.Metric](); err != nil {
					return err
				}
				cache[m.Metric] = values
			}
			for _, v := range values {
				if v.value < m.Threshold {
					continue
				}
				if err := e.fireMilestone(p, m, v); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

func (e *Engine) fireMilestone(p *pass, m Milestone, v measurement) error {
	title, key := m.title(v)
	n := models.NewNotification(models.NotificationAchievement, models.PriorityNormal, title, m.message(v))
	if v.relatedType != "" {
		n.WithRelated(v.relatedType, v.relatedID)
	}
	match := storage.NotificationMatch{TitleContains: key}
	if m.Window > 0 {
		match.Since = within(p, m.Window)
	}
	return e.emit(p, n, match)
}

func resultsTotal(f *models.Facts) []measurement {
	return []measurement{{value: float64(len(f.Results))}}
}

func studyHours(f *models.Facts) []measurement {
	total := 0
	for _, minutes := range evolution.TaskMinutes(f) {
		total += minutes
	}
	return []measurement{{value: float64(total) / 60}}
}

func subjectHours(f *models.Facts) []measurement {
	minutes := evolution.TaskMinutes(f)
	bySubject := make(map[int64]int)
	for _, t := range f.Tasks {
		bySubject[t.SubjectID] += minutes[t.ID]
	}
	names := f.SubjectNames()

	out := make([]measurement, 0, len(bySubject))
	for id, m := range bySubject {
		out = append(out, measurement{
			value:       float64(m) / 60,
			relatedType: models.RelatedSubject,
			relatedID:   id,
			label:       names[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].relatedID < out[j].relatedID })
	return out
}

func (e *Engine) goalsCompleted(p *pass) ([]measurement, error) {
	completed := models.GoalCompleted
	goals, err := e.store.ListGoals(p.ctx, &completed)
	if err != nil {
		return nil, err
	}
	return []measurement{{value: float64(len(goals))}}, nil
}

// resultStreak counts how many of the most recent results, up to StreakLength,
// are at StreakPercent or more without a break.
func resultStreak(f *models.Facts) []measurement {
	recent := make([]models.Result, len(f.Results))
	copy(recent, f.Results)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		}
		return recent[i].ID > recent[j].ID
	})

	streak := 0
	for _, r := range recent {
		if streak == StreakLength || r.Percent < StreakPercent {
			break
		}
		streak++
	}
	return []measurement{{value: float64(streak)}}
}

func longSession(f *models.Facts, ev events.Event) []measurement {
	saved, ok := ev.(events.SessionSaved)
	if !ok {
		return nil
	}
	label := "a task"
	if t, ok := f.TaskIndex()[saved.Session.TaskID]; ok {
		label = t.Title
	}
	return []measurement{{
		value:       float64(saved.Session.Minutes()),
		relatedType: models.RelatedSession,
		relatedID:   saved.Session.ID,
		label:       label,
	}}
}
