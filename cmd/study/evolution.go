// ABOUTME: CLI commands showing derived evolution and daily performance history.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyDays       int
	historyDiscipline int64
)

var evolutionCmd = &cobra.Command{
	Use:     "evolution",
	Aliases: []string{"evo"},
	Short:   "Show per-discipline totals",
	Long: `Show the per-discipline aggregates: tasks, exercises done, correct answers,
average performance and total minutes studied.

EXAMPLES:

  study evolution`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := current.svc.Evolution(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load evolution: %w", err)
		}
		if len(rows) == 0 {
			fmt.Println("No evolution data yet.")
			return nil
		}

		bold := color.New(color.Bold)
		bold.Printf("%s %6s %9s %8s %8s %8s\n", padRight("DISCIPLINE", 24), "TASKS", "EXERCISES", "CORRECT", "AVG", "HOURS")
		for _, r := range rows {
			fmt.Printf("%s %6d %9d %8d %s %8.1f\n",
				padRight(truncate(r.SubjectName, 24), 24),
				r.TaskCount,
				r.ExercisesDone,
				r.TotalCorrect,
				percentColor(r.AveragePerformance).Sprintf("%7.1f%%", r.AveragePerformance),
				float64(r.TotalMinutes)/60)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily performance per discipline",
	Long: `Show the daily performance history: exercises, correct answers, minutes
studied and performance for each discipline and day with results.

EXAMPLES:

  study history                  # Last 30 days
  study history --days 7
  study history --discipline 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var subjectID *int64
		if historyDiscipline > 0 {
			subjectID = &historyDiscipline
		}
		rows, err := current.svc.PerformanceHistory(cmd.Context(), historyDays, subjectID)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if len(rows) == 0 {
			fmt.Println("No performance history found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range rows {
			fmt.Printf("%s %s %4d/%-4d %4d min %s\n",
				faint.Sprint(r.Date.String()),
				padRight(truncate(r.SubjectName, 24), 24),
				r.CorrectAnswers,
				r.ExercisesCompleted,
				r.StudiedMinutes,
				percentColor(r.PerformancePercent).Sprintf("%6.1f%%", r.PerformancePercent))
		}
		return nil
	},
}

func percentColor(p float64) *color.Color {
	switch {
	case p >= 80:
		return color.New(color.FgGreen)
	case p < 60:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyDays, "days", "d", 30, "number of days to show (0 for all)")
	historyCmd.Flags().Int64Var(&historyDiscipline, "discipline", 0, "only this discipline ID")
	rootCmd.AddCommand(evolutionCmd)
	rootCmd.AddCommand(historyCmd)
}
