// ABOUTME: MCP resources for the study tracker.
// ABOUTME: Provides study://evolution and study://notifications.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	evolutionURI     = "study://evolution"
	notificationsURI = "study://notifications"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         evolutionURI,
		Name:        "Study Evolution",
		Description: "Per-discipline aggregates and the dashboard summary",
		MIMEType:    "application/json",
	}, s.handleEvolutionResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         notificationsURI,
		Name:        "Unread Notifications",
		Description: "Notifications not yet marked read",
		MIMEType:    "application/json",
	}, s.handleNotificationsResource)
}

func (s *Server) handleEvolutionResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	rows, err := s.svc.Evolution(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load evolution: %w", err)
	}
	summary, err := s.svc.DashboardSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	return jsonResource(evolutionURI, map[string]interface{}{
		"evolution": rows,
		"summary":   summary,
	})
}

func (s *Server) handleNotificationsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	unread, err := s.svc.UnreadNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return jsonResource(notificationsURI, map[string]interface{}{
		"count":         len(unread),
		"notifications": unread,
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
