// ABOUTME: Tests for applying spreadsheet rows to the fact tables.
// ABOUTME: Verifies idempotent re-import and derived sessions and results.
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/study/internal/models"
)

func TestApplyImport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	studied := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

	rows := []ImportRow{
		{SheetTaskID: 1, Title: "Fractions", SubjectName: "Math", TrackName: "Week 1",
			CompletionDate: models.NewDate(2025, 2, 10), PlannedMinutes: 60, EffectiveMinutes: 50,
			TotalQuestions: 20, TotalCorrect: 15, StudiedAt: studied},
		{SheetTaskID: 2, Title: "Constitution", SubjectName: "Law", TrackName: "Week 1", StudiedAt: studied},
	}

	summary, err := db.ApplyImport(ctx, rows)
	if err != nil {
		t.Fatalf("ApplyImport failed: %v", err)
	}
	want := ImportSummary{Rows: 2, SubjectsAdded: 2, TracksAdded: 1, TasksAdded: 2, SessionsAdded: 1, ResultsAdded: 1}
	if *summary != want {
		t.Errorf("summary = %+v, want %+v", *summary, want)
	}

	again, err := db.ApplyImport(ctx, rows)
	if err != nil {
		t.Fatalf("second ApplyImport failed: %v", err)
	}
	if again.TasksAdded != 0 || again.TasksSkipped != 2 || again.SubjectsAdded != 0 {
		t.Errorf("re-import summary = %+v", again)
	}

	facts, _ := db.LoadFacts(ctx)
	if len(facts.Tasks) != 2 || len(facts.Sessions) != 1 || len(facts.Results) != 1 {
		t.Fatalf("facts after re-import: %d tasks %d sessions %d results",
			len(facts.Tasks), len(facts.Sessions), len(facts.Results))
	}
	if !facts.Results[0].CreatedAt.Equal(studied) {
		t.Errorf("result stamped %v, want %v", facts.Results[0].CreatedAt, studied)
	}
	if facts.Results[0].Percent != 75 {
		t.Errorf("result percent = %v, want 75", facts.Results[0].Percent)
	}

	var fractions models.Task
	for _, task := range facts.Tasks {
		if task.Title == "Fractions" {
			fractions = task
		}
	}
	if !fractions.IsCompleted() || fractions.CompletionDate.String() != "2025-02-10" {
		t.Errorf("imported task = %+v", fractions)
	}
}
