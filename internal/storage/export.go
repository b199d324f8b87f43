// ABOUTME: Export functionality for study data.
// ABOUTME: Supports JSON, YAML, and a Markdown progress report.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/study/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for study data.
type ExportData struct {
	Version       string                `json:"version" yaml:"version"`
	ExportedAt    time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool          string                `json:"tool" yaml:"tool"`
	Subjects      []models.Subject      `json:"disciplines" yaml:"disciplines"`
	Topics        []models.Topic        `json:"topics" yaml:"topics"`
	Tracks        []models.Track        `json:"trilhas" yaml:"trilhas"`
	Tasks         []models.Task         `json:"tasks" yaml:"tasks"`
	Sessions      []models.StudySession `json:"sessions" yaml:"sessions"`
	Results       []models.Result       `json:"results" yaml:"results"`
	Goals         []models.Goal         `json:"goals" yaml:"goals"`
	Reviews       []models.Review       `json:"reviews" yaml:"reviews"`
	Notifications []models.Notification `json:"notifications" yaml:"notifications"`
	Evolution     []models.EvolutionRow `json:"evolution" yaml:"evolution"`
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "study",
	}

	var err error
	if data.Subjects, err = d.ListSubjects(ctx); err != nil {
		return nil, err
	}
	if data.Topics, err = loadTopics(ctx, d.db); err != nil {
		return nil, err
	}
	if data.Tracks, err = d.ListTracks(ctx); err != nil {
		return nil, err
	}
	if data.Tasks, err = d.ListTasks(ctx, TaskFilter{}); err != nil {
		return nil, err
	}
	if data.Sessions, err = loadSessions(ctx, d.db); err != nil {
		return nil, err
	}
	if data.Results, err = loadResults(ctx, d.db); err != nil {
		return nil, err
	}
	if data.Goals, err = d.ListGoals(ctx, nil); err != nil {
		return nil, err
	}
	if data.Reviews, err = d.ListReviews(ctx, ReviewFilter{}); err != nil {
		return nil, err
	}
	if data.Notifications, err = d.ListNotifications(ctx, NotificationFilter{}); err != nil {
		return nil, err
	}
	if data.Evolution, err = d.ListEvolution(ctx); err != nil {
		return nil, err
	}
	return data, nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// ExportMarkdown renders the evolution snapshot, goals and the history since the
// given date as a Markdown report. A zero since includes all history.
func (d *DB) ExportMarkdown(ctx context.Context, since models.Date) (string, error) {
	evo, err := d.ListEvolution(ctx)
	if err != nil {
		return "", err
	}
	goals, err := d.ListGoals(ctx, nil)
	if err != nil {
		return "", err
	}
	history, err := d.ListPerformanceHistory(ctx, HistoryFilter{Since: since})
	if err != nil {
		return "", err
	}
	subjects, err := d.ListSubjects(ctx)
	if err != nil {
		return "", err
	}
	names := make(map[int64]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Study Report - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Evolution\n\n")
	sb.WriteString("| Discipline | Tasks | Exercises | Correct | Performance | Minutes |\n")
	sb.WriteString("|------------|-------|-----------|---------|-------------|---------|\n")
	for _, e := range evo {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %.1f%% | %d |\n",
			e.SubjectName, e.TaskCount, e.ExercisesDone, e.TotalCorrect, e.AveragePerformance, e.TotalMinutes))
	}
	sb.WriteString("\n")

	if len(goals) > 0 {
		sb.WriteString("## Goals\n\n")
		sb.WriteString("| Discipline | Type | Target | Period | Status |\n")
		sb.WriteString("|------------|------|--------|--------|--------|\n")
		for _, g := range goals {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.0f %s | %s to %s | %s |\n",
				names[g.SubjectID], g.Kind, g.TargetValue, g.Unit(), g.StartDate, g.EndDate, g.Status))
		}
		sb.WriteString("\n")
	}

	if len(history) > 0 {
		sb.WriteString("## History\n\n")
		sb.WriteString("| Date | Discipline | Exercises | Correct | Minutes | Performance |\n")
		sb.WriteString("|------|------------|-----------|---------|---------|-------------|\n")
		for _, h := range history {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %.1f%% |\n",
				h.Date, h.SubjectName, h.ExercisesCompleted, h.CorrectAnswers, h.StudiedMinutes, h.PerformancePercent))
		}
	}

	return sb.String(), nil
}
