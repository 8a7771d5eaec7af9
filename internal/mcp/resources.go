// ABOUTME: MCP resource implementations for the haul load tracker.
// ABOUTME: Provides haul://today, haul://fields, and haul://achievements resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/haul/internal/ledger"
)

func (s *Server) registerResources() {
	// haul://today - today's dashboard
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "haul://today",
		Name:        "Today's Loads",
		Description: "Per-driver load counts, rate, and streak for today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// haul://fields - field board in display order
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "haul://fields",
		Name:        "Field Board",
		Description: "Active fields with progress, sorted by priority",
		MIMEType:    "application/json",
	}, s.handleFieldsResource)

	// haul://achievements - earned badges
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "haul://achievements",
		Name:        "Achievements",
		Description: "Earned badges and the full badge catalog",
		MIMEType:    "application/json",
	}, s.handleAchievementsResource)
}

// Resource handlers

func marshalResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
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

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	result := map[string]interface{}{
		"date":               time.Now().Format("2006-01-02"),
		"drivers":            s.ctrl.DriverStatsAll(),
		"avg_loads_per_hour": s.ctrl.AverageLoadsPerHourToday(),
		"streak":             s.ctrl.StreakCount(),
		"online":             s.ctrl.Online(),
	}
	return marshalResource("haul://today", result)
}

func (s *Server) handleFieldsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	fields := s.ctrl.SortedFields()
	out := make([]map[string]interface{}, 0, len(fields))
	for _, f := range fields {
		loads := s.ctrl.LoadsForField(f.ID)
		out = append(out, map[string]interface{}{
			"id":        f.ID,
			"name":      f.Name,
			"color":     f.Color,
			"loads":     loads,
			"target":    f.TargetLoads,
			"remaining": f.Remaining(loads),
			"complete":  f.Complete(loads),
			"pinned":    s.ctrl.Pinned(f.ID),
			"breakdown": s.ctrl.DriverBreakdownForField(f.ID),
		})
	}
	return marshalResource("haul://fields", out)
}

func (s *Server) handleAchievementsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	result := map[string]interface{}{
		"earned":  s.ctrl.EarnedAchievements(),
		"catalog": ledger.AllAchievements(),
	}
	return marshalResource("haul://achievements", result)
}
