// ABOUTME: MCP tool implementations for the study tracker.
// ABOUTME: Read tools return derived views; write tools go through the tracker service.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/tracker"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_evolution",
		Description: "Per-discipline totals: tasks, exercises, correct answers, average performance and minutes studied",
	}, s.handleGetEvolution)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_performance_history",
		Description: "Daily performance per discipline over the last N days",
	}, s.handleGetPerformanceHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_goals_progress",
		Description: "Goals with their current value and progress percent",
	}, s.handleGetGoalsProgress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_notifications",
		Description: "List notifications, newest first, optionally only unread ones",
	}, s.handleListNotifications)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mark_notifications_read",
		Description: "Mark notifications as read by ID",
	}, s.handleMarkNotificationsRead)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "check_notifications",
		Description: "Evaluate goals, performance, achievements and reviews now and report new notifications",
	}, s.handleCheckNotifications)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_result",
		Description: "Record correct answers out of a total for a task",
	}, s.handleRecordResult)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_session",
		Description: "Record a finished study session on a task",
	}, s.handleRecordSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task completed, freezing its studied minutes",
	}, s.handleCompleteTask)
}

// Tool input/output types

type emptyInput struct{}

type historyInput struct {
	Days         int   `json:"days,omitempty" jsonschema:"Number of days to include (default 30)"`
	DisciplineID int64 `json:"discipline_id,omitempty" jsonschema:"Only this discipline"`
}

type goalsProgressInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by goal status: active, completed, failed or cancelled"`
}

type listNotificationsInput struct {
	UnreadOnly bool `json:"unread_only,omitempty" jsonschema:"Only unread notifications"`
	Limit      int  `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type markReadInput struct {
	IDs []int64 `json:"ids" jsonschema:"Notification IDs to mark read"`
}

type checkInput struct {
	Recompute bool `json:"recompute,omitempty" jsonschema:"Recompute aggregates before evaluating"`
}

type recordResultInput struct {
	TaskID  int64 `json:"task_id" jsonschema:"Task the result belongs to"`
	Correct int   `json:"correct" jsonschema:"Correct answers"`
	Total   int   `json:"total" jsonschema:"Total questions"`
}

type recordSessionInput struct {
	TaskID          int64  `json:"task_id" jsonschema:"Task studied"`
	DurationMinutes int    `json:"duration_minutes" jsonschema:"Minutes studied"`
	Start           string `json:"start,omitempty" jsonschema:"Start time (RFC3339); defaults to now minus the duration"`
}

type taskInput struct {
	TaskID int64 `json:"task_id" jsonschema:"Task ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type resultOutput struct {
	ID      int64   `json:"id"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// Tool handlers

func (s *Server) handleGetEvolution(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	rows, err := s.svc.Evolution(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load evolution: %w", err)
	}
	if len(rows) == 0 {
		return nil, map[string]interface{}{"message": "No evolution data yet."}, nil
	}
	return nil, map[string]interface{}{"evolution": rows}, nil
}

func (s *Server) handleGetPerformanceHistory(ctx context.Context, req *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, any, error) {
	if input.Days <= 0 {
		input.Days = 30
	}
	var subjectID *int64
	if input.DisciplineID > 0 {
		subjectID = &input.DisciplineID
	}
	rows, err := s.svc.PerformanceHistory(ctx, input.Days, subjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load performance history: %w", err)
	}
	if len(rows) == 0 {
		return nil, map[string]interface{}{"message": "No performance history found."}, nil
	}
	return nil, map[string]interface{}{"history": rows}, nil
}

func (s *Server) handleGetGoalsProgress(ctx context.Context, req *mcp.CallToolRequest, input goalsProgressInput) (*mcp.CallToolResult, any, error) {
	var status *models.GoalStatus
	if input.Status != "" {
		st := models.GoalStatus(input.Status)
		status = &st
	}
	progress, err := s.svc.GoalsProgress(ctx, status)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load goals: %w", err)
	}
	if len(progress) == 0 {
		return nil, map[string]interface{}{"message": "No goals found."}, nil
	}
	return nil, map[string]interface{}{"goals": progress}, nil
}

func (s *Server) handleListNotifications(ctx context.Context, req *mcp.CallToolRequest, input listNotificationsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	var (
		notifications []models.Notification
		err           error
	)
	if input.UnreadOnly {
		notifications, err = s.svc.UnreadNotifications(ctx)
		if len(notifications) > input.Limit {
			notifications = notifications[:input.Limit]
		}
	} else {
		notifications, err = s.svc.Notifications(ctx, input.Limit)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if len(notifications) == 0 {
		return nil, map[string]interface{}{"message": "No notifications found."}, nil
	}
	return nil, map[string]interface{}{"notifications": notifications}, nil
}

func (s *Server) handleMarkNotificationsRead(ctx context.Context, req *mcp.CallToolRequest, input markReadInput) (*mcp.CallToolResult, simpleOutput, error) {
	marked, err := s.svc.MarkNotificationsRead(ctx, input.IDs)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Marked %d notification(s) read", marked),
	}, nil
}

func (s *Server) handleCheckNotifications(ctx context.Context, req *mcp.CallToolRequest, input checkInput) (*mcp.CallToolResult, any, error) {
	created, err := s.svc.CheckNotifications(ctx, input.Recompute)
	if err != nil && len(created) == 0 {
		return nil, nil, fmt.Errorf("notification check failed: %w", err)
	}
	if len(created) == 0 {
		return nil, map[string]interface{}{"message": "No new notifications."}, nil
	}
	return nil, map[string]interface{}{"created": created}, nil
}

func (s *Server) handleRecordResult(ctx context.Context, req *mcp.CallToolRequest, input recordResultInput) (*mcp.CallToolResult, resultOutput, error) {
	r, err := s.svc.RecordResult(ctx, input.TaskID, input.Correct, input.Total)
	if err != nil {
		return nil, resultOutput{}, fmt.Errorf("failed to record result: %w", err)
	}
	return nil, resultOutput{
		ID:      r.ID,
		Percent: r.Percent,
		Message: fmt.Sprintf("Recorded %d/%d (%.1f%%) on task %d", r.Correct, r.Total, r.Percent, r.TaskID),
	}, nil
}

func (s *Server) handleRecordSession(ctx context.Context, req *mcp.CallToolRequest, input recordSessionInput) (*mcp.CallToolResult, simpleOutput, error) {
	if input.DurationMinutes <= 0 {
		return nil, simpleOutput{}, fmt.Errorf("duration_minutes must be positive")
	}
	duration := time.Duration(input.DurationMinutes) * time.Minute

	start := time.Now().Add(-duration)
	if input.Start != "" {
		t, err := time.Parse(time.RFC3339, input.Start)
		if err != nil {
			return nil, simpleOutput{}, fmt.Errorf("invalid start %q: %w", input.Start, err)
		}
		start = t
	}
	end := start.Add(duration)
	minutes := input.DurationMinutes

	session, err := s.svc.SaveSession(ctx, tracker.SessionInput{
		TaskID:          input.TaskID,
		Start:           start,
		End:             &end,
		DurationMinutes: &minutes,
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to record session: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Recorded %d minute session on task %d (ID: %d)", minutes, input.TaskID, session.ID),
	}, nil
}

func (s *Server) handleCompleteTask(ctx context.Context, req *mcp.CallToolRequest, input taskInput) (*mcp.CallToolResult, simpleOutput, error) {
	task, err := s.svc.CompleteTask(ctx, input.TaskID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to complete task: %w", err)
	}
	minutes := 0
	if task.ActualMinutes != nil {
		minutes = *task.ActualMinutes
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Completed %q on %s with %d minutes", task.Title, task.CompletionDate, minutes),
	}, nil
}
