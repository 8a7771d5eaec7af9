// ABOUTME: MCP tool implementations for the haul load tracker.
// ABOUTME: Provides load recording, undo, field listing, and stats tools.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/haul/internal/models"
)

func (s *Server) registerTools() {
	// record_load
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_load",
		Description: "Record a load dumped onto a field",
	}, s.handleRecordLoad)

	// undo_load
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "undo_load",
		Description: "Undo the current driver's most recent load",
	}, s.handleUndoLoad)

	// list_fields
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_fields",
		Description: "List active fields with load counts, sorted by priority",
	}, s.handleListFields)

	// driver_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "driver_stats",
		Description: "Per-driver load totals for today and all time",
	}, s.handleDriverStats)

	// activity
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "activity",
		Description: "Recent load activity, newest first",
	}, s.handleActivity)

	// pin_field
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "pin_field",
		Description: "Pin a field so it sorts to the top",
	}, s.handlePinField)

	// unpin_field
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "unpin_field",
		Description: "Remove a field's pin",
	}, s.handleUnpinField)
}

// Tool input/output types

type recordLoadInput struct {
	Field string `json:"field" jsonschema:"Field name or ID"`
}

type loadOutput struct {
	ID      string `json:"id"`
	Field   string `json:"field"`
	Driver  string `json:"driver"`
	Streak  int    `json:"streak"`
	Message string `json:"message"`
}

type fieldOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Loads     int    `json:"loads"`
	Target    int    `json:"target"`
	Remaining int    `json:"remaining"`
	Complete  bool   `json:"complete"`
	Pinned    bool   `json:"pinned"`
}

type activityInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type activityEntryOutput struct {
	ID        string `json:"id"`
	Driver    string `json:"driver"`
	Field     string `json:"field"`
	CreatedAt string `json:"created_at"`
	Pending   bool   `json:"pending,omitempty"`
}

type fieldRefInput struct {
	Field string `json:"field" jsonschema:"Field name or ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type emptyInput struct{}

// resolveField accepts an exact ID or a case-insensitive name.
func (s *Server) resolveField(ref string) (*models.Field, error) {
	for _, f := range s.ctrl.Fields() {
		if f.ID == ref || strings.EqualFold(f.Name, ref) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown field: %s", ref)
}

// Tool handlers

func (s *Server) handleRecordLoad(ctx context.Context, req *mcp.CallToolRequest, input recordLoadInput) (*mcp.CallToolResult, loadOutput, error) {
	field, err := s.resolveField(input.Field)
	if err != nil {
		return nil, loadOutput{}, err
	}

	load, err := s.ctrl.RecordDump(ctx, field.ID)
	if err != nil {
		return nil, loadOutput{}, fmt.Errorf("failed to record load: %w", err)
	}

	return nil, loadOutput{
		ID:      load.ID,
		Field:   field.Name,
		Driver:  load.Driver,
		Streak:  s.ctrl.StreakCount(),
		Message: fmt.Sprintf("Recorded load on %s for %s", field.Name, load.Driver),
	}, nil
}

func (s *Server) handleUndoLoad(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, simpleOutput, error) {
	load, err := s.ctrl.UndoLastDump(ctx)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to undo: %w", err)
	}

	field := load.FieldID
	if f, err := s.resolveField(load.FieldID); err == nil {
		field = f.Name
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Removed %s's load on %s", load.Driver, field),
	}, nil
}

func (s *Server) handleListFields(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	fields := s.ctrl.SortedFields()
	if len(fields) == 0 {
		return nil, map[string]interface{}{"message": "No active fields."}, nil
	}

	out := make([]fieldOutput, 0, len(fields))
	for _, f := range fields {
		loads := s.ctrl.LoadsForField(f.ID)
		out = append(out, fieldOutput{
			ID:        f.ID,
			Name:      f.Name,
			Color:     f.Color,
			Loads:     loads,
			Target:    f.TargetLoads,
			Remaining: f.Remaining(loads),
			Complete:  f.Complete(loads),
			Pinned:    s.ctrl.Pinned(f.ID),
		})
	}

	return nil, out, nil
}

func (s *Server) handleDriverStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	return nil, map[string]interface{}{
		"drivers":            s.ctrl.DriverStatsAll(),
		"avg_loads_per_hour": s.ctrl.AverageLoadsPerHourToday(),
		"streak":             s.ctrl.StreakCount(),
	}, nil
}

func (s *Server) handleActivity(ctx context.Context, req *mcp.CallToolRequest, input activityInput) (*mcp.CallToolResult, any, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	entries := s.ctrl.Activity()
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return nil, map[string]interface{}{"message": "No activity yet."}, nil
	}

	out := make([]activityEntryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityEntryOutput{
			ID:        e.ID,
			Driver:    e.Driver,
			Field:     e.FieldName,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
			Pending:   e.Pending,
		})
	}

	return nil, out, nil
}

func (s *Server) handlePinField(ctx context.Context, req *mcp.CallToolRequest, input fieldRefInput) (*mcp.CallToolResult, simpleOutput, error) {
	field, err := s.resolveField(input.Field)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.ctrl.Pin(field.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to pin: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Pinned %s", field.Name)}, nil
}

func (s *Server) handleUnpinField(ctx context.Context, req *mcp.CallToolRequest, input fieldRefInput) (*mcp.CallToolResult, simpleOutput, error) {
	field, err := s.resolveField(input.Field)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.ctrl.Unpin(field.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to unpin: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Unpinned %s", field.Name)}, nil
}
