// ABOUTME: Tests for fact loading and derived aggregate persistence.
// ABOUTME: Verifies atomic evolution replacement and per-day history upserts.
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/study/internal/models"
)

func TestLoadFacts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s, task := seedTask(t, db, "Math")
	topic, _ := db.CreateTopic(ctx, s.ID, "Algebra")
	linked := models.NewTask("linked", s.ID)
	if err := db.CreateTask(ctx, linked, []int64{topic.ID}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	_ = db.CreateSession(ctx, models.NewStudySession(task.ID, time.Now(), 25))
	_ = db.CreateResult(ctx, models.NewResult(task.ID, 3, 4))

	facts, err := db.LoadFacts(ctx)
	if err != nil {
		t.Fatalf("LoadFacts failed: %v", err)
	}
	if len(facts.Subjects) != 1 || len(facts.Topics) != 1 || len(facts.Tasks) != 2 {
		t.Errorf("facts = %d subjects, %d topics, %d tasks", len(facts.Subjects), len(facts.Topics), len(facts.Tasks))
	}
	if len(facts.TaskTopics) != 1 || facts.TaskTopics[0].TaskID != linked.ID {
		t.Errorf("task topics = %+v", facts.TaskTopics)
	}
	if len(facts.Sessions) != 1 || facts.Sessions[0].Minutes() != 25 {
		t.Errorf("sessions = %+v", facts.Sessions)
	}
	if len(facts.Results) != 1 || facts.Results[0].Percent != 75 {
		t.Errorf("results = %+v", facts.Results)
	}
}

func TestReplaceEvolution(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	math, _ := seedTask(t, db, "Math")
	law, _ := seedTask(t, db, "Law")

	first := []models.EvolutionRow{
		{SubjectID: math.ID, TaskCount: 1, ExercisesDone: 20, TotalCorrect: 11, AveragePerformance: 55, TotalMinutes: 30},
		{SubjectID: law.ID, TaskCount: 1},
	}
	if err := db.ReplaceEvolution(ctx, first); err != nil {
		t.Fatalf("ReplaceEvolution failed: %v", err)
	}
	if err := db.ReplaceEvolution(ctx, first[:1]); err != nil {
		t.Fatalf("ReplaceEvolution failed: %v", err)
	}

	rows, err := db.ListEvolution(ctx)
	if err != nil {
		t.Fatalf("ListEvolution failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after replace", len(rows))
	}
	if rows[0].SubjectName != "Math" || rows[0].AveragePerformance != 55 || rows[0].ExercisesDone != 20 {
		t.Errorf("row = %+v", rows[0])
	}

	perf, err := db.PerformanceBySubject(ctx)
	if err != nil {
		t.Fatalf("PerformanceBySubject failed: %v", err)
	}
	if len(perf) != 1 || perf[0].AveragePerformance != 55 {
		t.Errorf("performance = %+v", perf)
	}
}

func TestUpsertPerformanceHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	math, _ := seedTask(t, db, "Math")

	day1 := models.NewDate(2025, time.May, 1)
	day2 := models.NewDate(2025, time.May, 2)
	err := db.UpsertPerformanceHistory(ctx, []models.PerformanceHistoryRow{
		{SubjectID: math.ID, Date: day1, ExercisesCompleted: 10, CorrectAnswers: 5, PerformancePercent: 50},
		{SubjectID: math.ID, Date: day2, ExercisesCompleted: 10, CorrectAnswers: 9, PerformancePercent: 90},
	})
	if err != nil {
		t.Fatalf("UpsertPerformanceHistory failed: %v", err)
	}

	// Overwrite day2 only; day1 must be left untouched.
	err = db.UpsertPerformanceHistory(ctx, []models.PerformanceHistoryRow{
		{SubjectID: math.ID, Date: day2, ExercisesCompleted: 20, CorrectAnswers: 19, StudiedMinutes: 40, PerformancePercent: 95},
	})
	if err != nil {
		t.Fatalf("UpsertPerformanceHistory failed: %v", err)
	}

	rows, err := db.ListPerformanceHistory(ctx, HistoryFilter{})
	if err != nil {
		t.Fatalf("ListPerformanceHistory failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Date.String() != "2025-05-01" || rows[0].CorrectAnswers != 5 {
		t.Errorf("day1 = %+v", rows[0])
	}
	if rows[1].ExercisesCompleted != 20 || rows[1].StudiedMinutes != 40 {
		t.Errorf("day2 = %+v", rows[1])
	}

	since, _ := db.ListPerformanceHistory(ctx, HistoryFilter{Since: day2, SubjectID: &math.ID})
	if len(since) != 1 {
		t.Errorf("since filter rows = %d, want 1", len(since))
	}
}

func TestStudyMinutesBySubject(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, task := seedTask(t, db, "Math")

	_ = db.CreateSession(ctx, models.NewStudySession(task.ID, time.Now(), 30))
	_ = db.CreateSession(ctx, models.NewStudySession(task.ID, time.Now(), 45))
	_ = db.CreateSession(ctx, &models.StudySession{TaskID: task.ID, Start: time.Now()})

	rows, err := db.StudyMinutesBySubject(ctx)
	if err != nil {
		t.Fatalf("StudyMinutesBySubject failed: %v", err)
	}
	if len(rows) != 1 || rows[0].TotalMinutes != 75 {
		t.Errorf("rows = %+v, want Math 75", rows)
	}
}
