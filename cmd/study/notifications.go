// ABOUTME: CLI commands for listing, checking and marking notifications.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/study/internal/models"
)

var (
	notifUnread    bool
	notifLimit     int
	checkRecompute bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif", "n"},
	Short:   "List notifications",
	Long: `List notifications, newest first.

EXAMPLES:

  study notifications
  study notifications --unread
  study notifications read 4 5 6`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			list []models.Notification
			err  error
		)
		if notifUnread {
			list, err = current.svc.UnreadNotifications(cmd.Context())
		} else {
			list, err = current.svc.Notifications(cmd.Context(), notifLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		printNotifications(list)
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>...",
	Short: "Mark notifications as read",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, a := range args {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid notification id: %s", a)
			}
			ids = append(ids, id)
		}
		n, err := current.svc.MarkNotificationsRead(cmd.Context(), ids)
		if err != nil {
			return err
		}
		color.Green("✓ Marked %d notification(s) as read", n)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate notification rules now",
	Long: `Run the notification rules against the current data and print what was created.

With --recompute the evolution tables are rebuilt first, which is what the
server does at startup and on its schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := current.svc.CheckNotifications(cmd.Context(), checkRecompute)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		if len(created) == 0 {
			fmt.Println("Nothing new.")
			return nil
		}
		color.Green("✓ %d new notification(s)", len(created))
		printNotifications(created)
		return nil
	},
}

func printNotifications(list []models.Notification) {
	faint := color.New(color.Faint)
	for _, n := range list {
		marker := "•"
		if n.Read {
			marker = " "
		}
		fmt.Printf("%s %s %s %s\n",
			marker,
			faint.Sprintf("#%-4d", n.ID),
			priorityColor(n.Priority).Sprint(padRight(string(n.Kind), 12)),
			n.Title)
		faint.Printf("        %s  %s\n", n.CreatedAt.In(current.loc).Format("2006-01-02 15:04"), n.Message)
	}
}

func priorityColor(p models.Priority) *color.Color {
	switch p {
	case models.PriorityHigh:
		return color.New(color.FgRed, color.Bold)
	case models.PriorityLow:
		return color.New(color.Faint)
	default:
		return color.New(color.FgCyan)
	}
}

func init() {
	notificationsCmd.Flags().BoolVarP(&notifUnread, "unread", "u", false, "only unread notifications")
	notificationsCmd.Flags().IntVarP(&notifLimit, "limit", "n", 20, "max number of notifications")
	checkCmd.Flags().BoolVar(&checkRecompute, "recompute", false, "rebuild evolution before evaluating")
	notificationsCmd.AddCommand(notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(checkCmd)
}
