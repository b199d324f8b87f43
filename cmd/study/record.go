// ABOUTME: CLI commands recording results and sessions, completing and listing tasks.
// ABOUTME: Every write runs the recompute and rule pass before returning.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/tracker"
)

var (
	recordAt     string
	tasksPending bool
)

var recordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"rec"},
	Short:   "Record study activity",
	Long: `Record exercise results and study sessions, or complete a task.

EXAMPLES:

  study record result 12 8 10              # 8 of 10 correct on task 12
  study record session 12 45               # 45 minutes on task 12, ending now
  study record session 12 45 --at "2025-06-10 19:00"
  study record complete 12`,
}

var recordResultCmd = &cobra.Command{
	Use:   "result <task-id> <correct> <total>",
	Short: "Record an exercise result",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		correct, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid correct count: %s", args[1])
		}
		total, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid total: %s", args[2])
		}

		r, err := current.svc.RecordResult(cmd.Context(), taskID, correct, total)
		if err != nil {
			return err
		}
		color.Green("✓ Recorded result #%d", r.ID)
		fmt.Printf("  %d/%d %s\n", r.Correct, r.Total, percentColor(r.Percent).Sprintf("%.1f%%", r.Percent))
		return showCreated(cmd)
	},
}

var recordSessionCmd = &cobra.Command{
	Use:   "session <task-id> <minutes>",
	Short: "Record a finished study session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil || minutes <= 0 {
			return fmt.Errorf("invalid minutes: %s", args[1])
		}

		end := timeNow()
		if recordAt != "" {
			if end, err = parseTimeIn(recordAt, current.loc); err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
		}
		start := end.Add(-time.Duration(minutes) * time.Minute)

		s, err := current.svc.SaveSession(cmd.Context(), tracker.SessionInput{
			TaskID:          taskID,
			Start:           start,
			End:             &end,
			DurationMinutes: &minutes,
		})
		if err != nil {
			return err
		}
		color.Green("✓ Recorded session #%d", s.ID)
		fmt.Printf("  %d min, %s → %s\n", minutes,
			start.In(current.loc).Format("15:04"), end.In(current.loc).Format("15:04"))
		return showCreated(cmd)
	},
}

var recordCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := current.svc.CompleteTask(cmd.Context(), taskID)
		if err != nil {
			return err
		}
		color.Green("✓ Completed %s", task.Title)
		if task.ActualMinutes != nil {
			fmt.Printf("  %d min studied, completed %s\n", *task.ActualMinutes, task.CompletionDate)
		}
		return showCreated(cmd)
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *models.TaskStatus
		if tasksPending {
			pending := models.TaskPending
			status = &pending
		}
		tasks, err := current.svc.Tasks(cmd.Context(), status)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, t := range tasks {
			state := color.New(color.FgYellow).Sprint(padRight(string(t.Status), 10))
			if t.IsCompleted() {
				state = color.New(color.FgGreen).Sprint(padRight(string(t.Status), 10))
			}
			fmt.Printf("%s %s %s %s\n",
				faint.Sprintf("#%-5d", t.ID),
				state,
				padRight(truncate(t.Title, 40), 40),
				faint.Sprint(t.CompletionDate.String()))
		}
		return nil
	},
}

// showCreated prints notifications the write produced that are still unread.
func showCreated(cmd *cobra.Command) error {
	unread, err := current.svc.UnreadNotifications(cmd.Context())
	if err != nil {
		return err
	}
	if len(unread) > 0 {
		fmt.Println()
		color.New(color.Bold).Printf("%d unread notification(s)\n", len(unread))
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}

func init() {
	recordSessionCmd.Flags().StringVar(&recordAt, "at", "", "session end (YYYY-MM-DD HH:MM, default now)")
	tasksCmd.Flags().BoolVarP(&tasksPending, "pending", "p", false, "only pending tasks")
	recordCmd.AddCommand(recordResultCmd)
	recordCmd.AddCommand(recordSessionCmd)
	recordCmd.AddCommand(recordCompleteCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(tasksCmd)
}
