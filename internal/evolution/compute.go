// ABOUTME: Pure aggregation of fact rows into evolution and performance history rows.
// ABOUTME: Nothing here touches storage; the same facts always produce the same rows.
package evolution

import (
	"sort"
	"time"

	"github.com/harperreed/study/internal/models"
)

// TaskMinutes returns each task's studied minutes. A task with at least one session
// counts the sum of its session durations; a task without sessions counts its frozen
// actual minutes. No task contributes through both.
func TaskMinutes(facts *models.Facts) map[int64]int {
	fromSessions := make(map[int64]int)
	hasSessions := make(map[int64]bool)
	for _, s := range facts.Sessions {
		hasSessions[s.TaskID] = true
		fromSessions[s.TaskID] += s.Minutes()
	}

	minutes := make(map[int64]int, len(facts.Tasks))
	for _, t := range facts.Tasks {
		switch {
		case hasSessions[t.ID]:
			minutes[t.ID] = fromSessions[t.ID]
		case t.ActualMinutes != nil:
			minutes[t.ID] = *t.ActualMinutes
		}
	}
	return minutes
}

// ComputeEvolution builds one row per subject that has at least one task.
// Subjects without tasks get no row. Rows are ordered by subject ID.
func ComputeEvolution(facts *models.Facts) []models.EvolutionRow {
	if len(facts.Tasks) == 0 {
		return nil
	}
	names := facts.SubjectNames()
	tasks := facts.TaskIndex()
	minutes := TaskMinutes(facts)

	bySubject := make(map[int64]*models.EvolutionRow)
	row := func(subjectID int64) *models.EvolutionRow {
		r, ok := bySubject[subjectID]
		if !ok {
			r = &models.EvolutionRow{SubjectID: subjectID, SubjectName: names[subjectID]}
			bySubject[subjectID] = r
		}
		return r
	}

	for _, t := range facts.Tasks {
		r := row(t.SubjectID)
		r.TaskCount++
		r.TotalMinutes += minutes[t.ID]
	}
	for _, res := range facts.Results {
		t, ok := tasks[res.TaskID]
		if !ok {
			continue
		}
		r := row(t.SubjectID)
		r.ExercisesDone += res.Total
		r.TotalCorrect += res.Correct
	}

	rows := make([]models.EvolutionRow, 0, len(bySubject))
	for _, r := range bySubject {
		r.AveragePerformance = models.ResultPercent(r.TotalCorrect, r.ExercisesDone)
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SubjectID < rows[j].SubjectID })
	return rows
}

type dayKey struct {
	subjectID int64
	date      string
}

// ComputeHistory builds one row per (subject, calendar day in loc) that has at least
// one result. Each row merges that day's result sums with that day's session minutes.
// Rows are ordered by date, then subject ID.
func ComputeHistory(facts *models.Facts, loc *time.Location) []models.PerformanceHistoryRow {
	if loc == nil {
		loc = time.Local
	}
	names := facts.SubjectNames()
	tasks := facts.TaskIndex()

	days := make(map[dayKey]*models.PerformanceHistoryRow)
	for _, res := range facts.Results {
		t, ok := tasks[res.TaskID]
		if !ok {
			continue
		}
		date := models.DateOf(res.CreatedAt, loc)
		key := dayKey{subjectID: t.SubjectID, date: date.String()}
		r, ok := days[key]
		if !ok {
			r = &models.PerformanceHistoryRow{SubjectID: t.SubjectID, SubjectName: names[t.SubjectID], Date: date}
			days[key] = r
		}
		r.ExercisesCompleted += res.Total
		r.CorrectAnswers += res.Correct
	}

	for _, s := range facts.Sessions {
		t, ok := tasks[s.TaskID]
		if !ok {
			continue
		}
		key := dayKey{subjectID: t.SubjectID, date: models.DateOf(s.Start, loc).String()}
		if r, ok := days[key]; ok {
			r.StudiedMinutes += s.Minutes()
		}
	}

	rows := make([]models.PerformanceHistoryRow, 0, len(days))
	for _, r := range days {
		r.PerformancePercent = models.ResultPercent(r.CorrectAnswers, r.ExercisesCompleted)
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].SubjectID < rows[j].SubjectID
	})
	return rows
}
