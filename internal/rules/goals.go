// ABOUTME: Goal status pass: missed goals fail, reached goals complete, close deadlines warn.
package rules

import (
	"fmt"

	"github.com/harperreed/study/internal/evolution"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

const (
	titleGoalMissed   = "Goal missed"
	titleGoalAchieved = "Goal achieved"
	titleGoalDeadline = "Goal near deadline"
)

func (e *Engine) goalPass(p *pass) {
	active := models.GoalActive
	goals, err := e.store.ListGoals(p.ctx, &active)
	if err != nil {
		e.isolate(p, "goals", "active", func() error { return err })
		return
	}
	names := p.facts.SubjectNames()
	for i := range goals {
		g := goals[i]
		e.isolate(p, "goal", g.ID, func() error {
			return e.checkGoal(p, &g, names[g.SubjectID])
		})
	}
}

func (e *Engine) checkGoal(p *pass, g *models.Goal, subject string) error {
	if g.EndDate.IsZero() {
		return fmt.Errorf("goal has no end date")
	}

	if g.EndDate.Before(p.today) {
		if err := e.store.SetGoalStatus(p.ctx, g.ID, models.GoalFailed); err != nil {
			return err
		}
		n := models.NewNotification(models.NotificationGoal, models.PriorityHigh,
			fmt.Sprintf("%s: %s", titleGoalMissed, subject),
			fmt.Sprintf("Your %s goal of %s for %s ended on %s without being reached.",
				kindLabel(g.Kind), formatAmount(g.TargetValue, g), subject, g.EndDate)).
			WithRelated(models.RelatedGoal, g.ID)
		return e.emit(p, n, storage.NotificationMatch{TitleContains: titleGoalMissed})
	}

	// Progress is checked on every pass, not only inside the deadline window, so a
	// goal completes as soon as its target is reached.
	current := evolution.GoalProgress(p.facts, g, e.loc)
	if g.TargetValue > 0 && current/g.TargetValue >= 1 {
		if err := e.store.SetGoalStatus(p.ctx, g.ID, models.GoalCompleted); err != nil {
			return err
		}
		n := models.NewNotification(models.NotificationGoal, models.PriorityNormal,
			fmt.Sprintf("%s: %s", titleGoalAchieved, subject),
			fmt.Sprintf("You reached your %s goal for %s: %s of %s.",
				kindLabel(g.Kind), subject, formatAmount(current, g), formatAmount(g.TargetValue, g))).
			WithRelated(models.RelatedGoal, g.ID)
		return e.emit(p, n, storage.NotificationMatch{TitleContains: titleGoalAchieved})
	}

	daysLeft := p.today.DaysUntil(g.EndDate)
	if daysLeft > NearDeadlineDays {
		return nil
	}
	priority := models.PriorityNormal
	if daysLeft <= 1 {
		priority = models.PriorityHigh
	}
	remaining := g.TargetValue - current
	n := models.NewNotification(models.NotificationGoal, priority,
		fmt.Sprintf("%s: %s", titleGoalDeadline, subject),
		fmt.Sprintf("%s left to reach your %s goal for %s, %s.",
			formatAmount(remaining, g), kindLabel(g.Kind), subject, daysLeftLabel(daysLeft))).
		WithRelated(models.RelatedGoal, g.ID)
	return e.emit(p, n, storage.NotificationMatch{
		TitleContains: titleGoalDeadline,
		Since:         within(p, DeadlineDedupWindow),
	})
}

func kindLabel(k models.GoalKind) string {
	switch k {
	case models.GoalStudyTime:
		return "study time"
	case models.GoalPerformance:
		return "performance"
	default:
		return "exercises"
	}
}

func formatAmount(v float64, g *models.Goal) string {
	switch g.Kind {
	case models.GoalPerformance:
		return fmt.Sprintf("%.1f%%", v)
	case models.GoalStudyTime:
		return fmt.Sprintf("%.0f min", v)
	default:
		return fmt.Sprintf("%.0f exercises", v)
	}
}

func daysLeftLabel(days int) string {
	switch days {
	case 0:
		return "ending today"
	case 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
