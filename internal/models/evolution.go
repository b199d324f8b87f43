// ABOUTME: Derived aggregate rows materialized by the evolution engine.
// ABOUTME: EvolutionRow is per subject; PerformanceHistoryRow is per subject and day.
package models

// EvolutionRow is the per-subject aggregate snapshot.
type EvolutionRow struct {
	ID                 int64   `json:"id" yaml:"-"`
	SubjectID          int64   `json:"discipline_id" yaml:"discipline_id"`
	SubjectName        string  `json:"discipline_name" yaml:"discipline_name"`
	TaskCount          int     `json:"qtd_tarefas" yaml:"task_count"`
	ExercisesDone      int     `json:"qtd_exercicios_feitos" yaml:"exercises_done"`
	TotalCorrect       int     `json:"total_acertos" yaml:"total_correct"`
	AveragePerformance float64 `json:"desempenho_medio" yaml:"average_performance"`
	TotalMinutes       int     `json:"total_minutos_estudados" yaml:"total_minutes"`
}

// PerformanceHistoryRow is the per-subject, per-day aggregate snapshot.
type PerformanceHistoryRow struct {
	SubjectID          int64   `json:"discipline_id" yaml:"discipline_id"`
	SubjectName        string  `json:"discipline_name" yaml:"discipline_name"`
	Date               Date    `json:"date" yaml:"date"`
	ExercisesCompleted int     `json:"exercises_completed" yaml:"exercises_completed"`
	CorrectAnswers     int     `json:"correct_answers" yaml:"correct_answers"`
	StudiedMinutes     int     `json:"study_time_minutes" yaml:"studied_minutes"`
	PerformancePercent float64 `json:"accuracy" yaml:"performance_percent"`
}
