// ABOUTME: Goal progress measured from facts over the goal's inclusive date range.
package evolution

import (
	"time"

	"github.com/harperreed/study/internal/models"
)

// GoalProgress returns the goal's current value: session minutes for study_time,
// mean result percent for performance, and summed result totals for
// exercises_completed. Only facts of the goal's subject dated within
// [StartDate, EndDate] in loc count.
func GoalProgress(facts *models.Facts, g *models.Goal, loc *time.Location) float64 {
	if loc == nil {
		loc = time.Local
	}
	tasks := facts.TaskIndex()
	inGoal := func(taskID int64, at time.Time) bool {
		t, ok := tasks[taskID]
		return ok && t.SubjectID == g.SubjectID && models.DateOf(at, loc).Within(g.StartDate, g.EndDate)
	}

	switch g.Kind {
	case models.GoalStudyTime:
		minutes := 0
		for _, s := range facts.Sessions {
			if inGoal(s.TaskID, s.Start) {
				minutes += s.Minutes()
			}
		}
		return float64(minutes)

	case models.GoalPerformance:
		var sum float64
		var n int
		for _, r := range facts.Results {
			if inGoal(r.TaskID, r.CreatedAt) {
				sum += r.Percent
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return sum / float64(n)

	case models.GoalExercisesCompleted:
		total := 0
		for _, r := range facts.Results {
			if inGoal(r.TaskID, r.CreatedAt) {
				total += r.Total
			}
		}
		return float64(total)
	}
	return 0
}

// Progress pairs a goal with its measured value and completion percentage.
func Progress(facts *models.Facts, g models.Goal, subjectName string, loc *time.Location) models.GoalProgress {
	current := GoalProgress(facts, &g, loc)
	var pct float64
	if g.TargetValue > 0 {
		pct = current / g.TargetValue * 100
	}
	return models.GoalProgress{
		Goal:            g,
		SubjectName:     subjectName,
		CurrentValue:    current,
		ProgressPercent: pct,
	}
}
