// ABOUTME: CLI commands for listing goal progress and creating goals.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/tracker"
)

var (
	goalsAll   bool
	goalStart  string
	goalEnd    string
	goalPeriod string
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal"},
	Short:   "Show goal progress",
	Long: `Show goals with their current value and progress.

Only active goals are listed unless --all is given.

EXAMPLES:

  study goals
  study goals --all
  study goals add 3 performance 80 --start 2025-06-01 --end 2025-06-30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *models.GoalStatus
		if !goalsAll {
			active := models.GoalActive
			status = &active
		}
		progress, err := current.svc.GoalsProgress(cmd.Context(), status)
		if err != nil {
			return fmt.Errorf("failed to load goals: %w", err)
		}
		if len(progress) == 0 {
			fmt.Println("No goals found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, p := range progress {
			fmt.Printf("%s %s %s %6.1f/%-6.1f %s %s\n",
				faint.Sprintf("#%-4d", p.ID),
				padRight(truncate(p.SubjectName, 20), 20),
				padRight(string(p.Kind), 19),
				p.CurrentValue,
				p.TargetValue,
				padRight(p.Unit(), 9),
				progressColor(p).Sprintf("%5.1f%%", p.ProgressPercent))
			faint.Printf("      %s → %s  %s\n", p.StartDate, p.EndDate, p.Status)
		}
		return nil
	},
}

var goalsAddCmd = &cobra.Command{
	Use:   "add <discipline-id> <type> <target>",
	Short: "Create a goal",
	Long: `Create a goal for a discipline.

TYPES:

  study_time            Minutes studied in the period
  performance           Average result percentage (at most 100)
  exercises_completed   Exercises answered in the period

The period defaults to today through 30 days from now.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		subjectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discipline id: %s", args[0])
		}
		target, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid target: %s", args[2])
		}

		today := models.DateOf(timeNow(), current.loc)
		start, end := today, today.AddDays(30)
		if goalStart != "" {
			if start, err = models.ParseDate(goalStart); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
		}
		if goalEnd != "" {
			if end, err = models.ParseDate(goalEnd); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}

		goal, err := current.svc.CreateGoal(cmd.Context(), tracker.GoalInput{
			SubjectID:   subjectID,
			Kind:        models.GoalKind(args[1]),
			TargetValue: target,
			Period:      goalPeriod,
			StartDate:   start,
			EndDate:     end,
		})
		if err != nil {
			return err
		}

		color.Green("✓ Created goal #%d", goal.ID)
		fmt.Printf("  %s %.1f %s, %s → %s\n", goal.Kind, goal.TargetValue, goal.Unit(), goal.StartDate, goal.EndDate)
		return nil
	},
}

func progressColor(p models.GoalProgress) *color.Color {
	switch {
	case p.Status == models.GoalFailed:
		return color.New(color.FgRed)
	case p.ProgressPercent >= 100:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgYellow)
	}
}

func init() {
	goalsCmd.Flags().BoolVarP(&goalsAll, "all", "a", false, "include completed, failed and cancelled goals")
	goalsAddCmd.Flags().StringVar(&goalStart, "start", "", "start date (YYYY-MM-DD, default today)")
	goalsAddCmd.Flags().StringVar(&goalEnd, "end", "", "end date (YYYY-MM-DD, default in 30 days)")
	goalsAddCmd.Flags().StringVar(&goalPeriod, "period", "", "period label (default custom)")
	goalsCmd.AddCommand(goalsAddCmd)
	rootCmd.AddCommand(goalsCmd)
}
