// ABOUTME: Rules evaluated only for a freshly recorded result.
// ABOUTME: Immediate high and low score alerts plus the significant-improvement achievement.
package rules

import (
	"fmt"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

const (
	titleHighResult  = "Great result"
	titleLowResult   = "Low result"
	titleImprovement = "Significant improvement"
)

func (e *Engine) resultRules(p *pass, r models.Result) {
	// A result without questions carries no score.
	if r.Total == 0 {
		return
	}
	tasks := p.facts.TaskIndex()
	task, ok := tasks[r.TaskID]
	if !ok {
		e.isolate(p, "result", r.ID, func() error { return fmt.Errorf("task %d not loaded", r.TaskID) })
		return
	}
	subject := p.facts.SubjectNames()[task.SubjectID]

	e.isolate(p, "result", r.ID, func() error {
		var n *models.Notification
		var title string
		switch {
		case r.Percent >= HighResult:
			title = titleHighResult
			n = models.NewNotification(models.NotificationPerformance, models.PriorityNormal,
				fmt.Sprintf("%s: %.0f%% in %s", title, r.Percent, subject),
				fmt.Sprintf("%d of %d correct on %s.", r.Correct, r.Total, task.Title))
		case r.Percent < LowResult:
			title = titleLowResult
			n = models.NewNotification(models.NotificationPerformance, models.PriorityHigh,
				fmt.Sprintf("%s: %.0f%% in %s", title, r.Percent, subject),
				fmt.Sprintf("Only %d of %d correct on %s. Consider reviewing this material.", r.Correct, r.Total, task.Title))
		default:
			return nil
		}
		n.WithRelated(models.RelatedResult, r.ID)
		return e.emit(p, n, storage.NotificationMatch{TitleContains: title})
	})

	e.isolate(p, "improvement", r.ID, func() error {
		if r.Percent < ImprovedResult {
			return nil
		}
		var prior average
		from := r.CreatedAt.Add(-ImprovementWindow)
		for _, other := range p.facts.Results {
			if other.ID == r.ID {
				continue
			}
			t, ok := tasks[other.TaskID]
			if !ok || t.SubjectID != task.SubjectID {
				continue
			}
			if other.CreatedAt.Before(from) || other.CreatedAt.After(r.CreatedAt) {
				continue
			}
			prior.add(other.Percent)
		}
		if prior.count == 0 || prior.value() >= LowAverage {
			return nil
		}
		n := models.NewNotification(models.NotificationAchievement, models.PriorityNormal,
			fmt.Sprintf("%s: %s", titleImprovement, subject),
			fmt.Sprintf("%.0f%% after a 7-day average of %.1f%%. Great progress!", r.Percent, prior.value())).
			WithRelated(models.RelatedResult, r.ID)
		return e.emit(p, n, storage.NotificationMatch{TitleContains: titleImprovement})
	})
}
