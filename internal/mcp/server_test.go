// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/haul/internal/ledger"
	"github.com/harperreed/haul/internal/localstore"
	"github.com/harperreed/haul/internal/models"
	"github.com/harperreed/haul/internal/remote"
)

// memStore is a minimal in-memory remote.Store for handler tests.
type memStore struct {
	mu     sync.Mutex
	fields []*models.Field
	loads  []*models.Load
	nextID int
	events chan remote.Event
}

func newMemStore(fields []*models.Field) *memStore {
	return &memStore{fields: fields, events: make(chan remote.Event, 4)}
}

func (s *memStore) ListActiveFields(ctx context.Context) ([]*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Field, 0, len(s.fields))
	for _, f := range s.fields {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memStore) ListFields(ctx context.Context) ([]*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Field(nil), s.fields...), nil
}

func (s *memStore) CreateField(ctx context.Context, name, color string, target int) (*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &models.Field{ID: name, Name: name, Color: color, TargetLoads: target, IsActive: true, CreatedAt: time.Now()}
	s.fields = append(s.fields, f)
	return f, nil
}

func (s *memStore) UpdateField(ctx context.Context, id, name, color string) (*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.ID == id {
			f.Name = name
			f.Color = color
			return f, nil
		}
	}
	return nil, fmt.Errorf("field not found: %s", id)
}

func (s *memStore) DeactivateField(ctx context.Context, id string) error { return nil }

func (s *memStore) ListLoads(ctx context.Context) ([]*models.Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Load(nil), s.loads...), nil
}

func (s *memStore) InsertLoad(ctx context.Context, fieldID, driver string) (*models.Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	stored := &models.Load{
		ID:        fmt.Sprintf("perm-%d", s.nextID),
		FieldID:   fieldID,
		Driver:    driver,
		CreatedAt: time.Now(),
	}
	s.loads = append(s.loads, stored)
	return stored, nil
}

func (s *memStore) DeleteLoad(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.loads {
		if l.ID == id {
			s.loads = append(s.loads[:i], s.loads[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) VerifyPIN(ctx context.Context, driver, pin string) (bool, error) {
	return pin == "1234", nil
}

func (s *memStore) Subscribe(ctx context.Context) (<-chan remote.Event, func(), error) {
	return s.events, func() {}, nil
}

func (s *memStore) Close() error { return nil }

// setupServer builds an MCP server over a fresh controller with two fields.
func setupServer(t *testing.T) (*Server, *memStore) {
	t.Helper()

	local, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	store := newMemStore([]*models.Field{
		{ID: "north", Name: "North Forty", Color: "#4ade80", TargetLoads: 5, IsActive: true, CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "creek", Name: "Creek Bottom", Color: "#60a5fa", TargetLoads: 3, IsActive: true, CreatedAt: time.Now()},
	})

	ctrl, err := ledger.New(ledger.Config{
		Store:   store,
		Local:   local,
		Driver:  "ABRI",
		Drivers: []string{"ABRI", "HEINE"},
	})
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	if err := ctrl.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	server, err := NewServer(ctrl)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, store
}

func TestNewServer(t *testing.T) {
	server, _ := setupServer(t)
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.ctrl == nil {
		t.Error("Expected non-nil controller")
	}
}

func TestResolveField(t *testing.T) {
	server, _ := setupServer(t)

	tests := []struct {
		ref     string
		wantID  string
		wantErr bool
	}{
		{"north", "north", false},
		{"North Forty", "north", false},
		{"creek bottom", "creek", false},
		{"nonexistent", "", true},
	}
	for _, tt := range tests {
		f, err := server.resolveField(tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("resolveField(%q) expected error", tt.ref)
			}
			continue
		}
		if err != nil {
			t.Errorf("resolveField(%q) failed: %v", tt.ref, err)
			continue
		}
		if f.ID != tt.wantID {
			t.Errorf("resolveField(%q) = %q, want %q", tt.ref, f.ID, tt.wantID)
		}
	}
}

func TestHandleRecordLoad(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleRecordLoad(ctx, nil, recordLoadInput{Field: "North Forty"})
	if err != nil {
		t.Fatalf("handleRecordLoad failed: %v", err)
	}
	if out.Field != "North Forty" {
		t.Errorf("Expected field name in output, got %q", out.Field)
	}
	if out.Driver != "ABRI" {
		t.Errorf("Expected driver ABRI, got %q", out.Driver)
	}
	if out.Streak != 1 {
		t.Errorf("Expected streak 1 after first load, got %d", out.Streak)
	}
	if !strings.Contains(out.Message, "North Forty") {
		t.Errorf("Expected message to name the field, got %q", out.Message)
	}
}

func TestHandleRecordLoadUnknownField(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleRecordLoad(context.Background(), nil, recordLoadInput{Field: "bogus"})
	if err == nil {
		t.Error("Expected error for unknown field")
	}
}

func TestHandleUndoLoad(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleRecordLoad(ctx, nil, recordLoadInput{Field: "north"}); err != nil {
		t.Fatalf("handleRecordLoad failed: %v", err)
	}

	_, out, err := server.handleUndoLoad(ctx, nil, emptyInput{})
	if err != nil {
		t.Fatalf("handleUndoLoad failed: %v", err)
	}
	if !strings.Contains(out.Message, "ABRI") {
		t.Errorf("Expected message to name the driver, got %q", out.Message)
	}
}

func TestHandleUndoLoadEmpty(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleUndoLoad(context.Background(), nil, emptyInput{})
	if err == nil {
		t.Error("Expected error undoing with no loads")
	}
}

func TestHandleListFields(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleRecordLoad(ctx, nil, recordLoadInput{Field: "north"}); err != nil {
		t.Fatalf("handleRecordLoad failed: %v", err)
	}

	_, out, err := server.handleListFields(ctx, nil, emptyInput{})
	if err != nil {
		t.Fatalf("handleListFields failed: %v", err)
	}

	fields, ok := out.([]fieldOutput)
	if !ok {
		t.Fatalf("Expected []fieldOutput, got %T", out)
	}
	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}

	byID := make(map[string]fieldOutput)
	for _, f := range fields {
		byID[f.ID] = f
	}
	if byID["north"].Loads != 1 {
		t.Errorf("Expected 1 load on north, got %d", byID["north"].Loads)
	}
	if byID["north"].Remaining != 4 {
		t.Errorf("Expected 4 remaining on north, got %d", byID["north"].Remaining)
	}
}

func TestHandleDriverStats(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleRecordLoad(ctx, nil, recordLoadInput{Field: "north"}); err != nil {
		t.Fatalf("handleRecordLoad failed: %v", err)
	}

	_, out, err := server.handleDriverStats(ctx, nil, emptyInput{})
	if err != nil {
		t.Fatalf("handleDriverStats failed: %v", err)
	}

	result, ok := out.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map output, got %T", out)
	}
	stats, ok := result["drivers"].([]models.DriverStats)
	if !ok {
		t.Fatalf("Expected driver stats slice, got %T", result["drivers"])
	}
	if len(stats) != 2 || stats[0].Name != "ABRI" || stats[0].TodayLoads != 1 {
		t.Errorf("Unexpected driver stats: %+v", stats)
	}
}

func TestHandleActivity(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleRecordLoad(ctx, nil, recordLoadInput{Field: "north"}); err != nil {
		t.Fatalf("handleRecordLoad failed: %v", err)
	}

	_, out, err := server.handleActivity(ctx, nil, activityInput{})
	if err != nil {
		t.Fatalf("handleActivity failed: %v", err)
	}

	entries, ok := out.([]activityEntryOutput)
	if !ok {
		t.Fatalf("Expected []activityEntryOutput, got %T", out)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Field != "North Forty" {
		t.Errorf("Expected field name joined in, got %q", entries[0].Field)
	}
}

func TestHandleActivityEmpty(t *testing.T) {
	server, _ := setupServer(t)

	_, out, err := server.handleActivity(context.Background(), nil, activityInput{})
	if err != nil {
		t.Fatalf("handleActivity failed: %v", err)
	}
	if _, ok := out.(map[string]interface{}); !ok {
		t.Errorf("Expected message map for empty activity, got %T", out)
	}
}

func TestHandlePinUnpinField(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handlePinField(ctx, nil, fieldRefInput{Field: "creek"})
	if err != nil {
		t.Fatalf("handlePinField failed: %v", err)
	}
	if !strings.Contains(out.Message, "Creek Bottom") {
		t.Errorf("Expected pin message to name the field, got %q", out.Message)
	}
	if !server.ctrl.Pinned("creek") {
		t.Error("Expected creek to be pinned")
	}

	if _, _, err := server.handleUnpinField(ctx, nil, fieldRefInput{Field: "creek"}); err != nil {
		t.Fatalf("handleUnpinField failed: %v", err)
	}
	if server.ctrl.Pinned("creek") {
		t.Error("Expected creek to be unpinned")
	}
}

func TestTodayResource(t *testing.T) {
	server, _ := setupServer(t)

	res, err := server.handleTodayResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("handleTodayResource failed: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].URI != "haul://today" {
		t.Fatalf("Unexpected resource contents: %+v", res.Contents)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &payload); err != nil {
		t.Fatalf("Resource payload is not JSON: %v", err)
	}
	if _, ok := payload["drivers"]; !ok {
		t.Error("Expected drivers in today payload")
	}
}

func TestFieldsResource(t *testing.T) {
	server, _ := setupServer(t)

	res, err := server.handleFieldsResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("handleFieldsResource failed: %v", err)
	}

	var payload []map[string]interface{}
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &payload); err != nil {
		t.Fatalf("Resource payload is not JSON: %v", err)
	}
	if len(payload) != 2 {
		t.Errorf("Expected 2 fields in payload, got %d", len(payload))
	}
}

func TestAchievementsResource(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleRecordLoad(ctx, nil, recordLoadInput{Field: "north"}); err != nil {
		t.Fatalf("handleRecordLoad failed: %v", err)
	}

	res, err := server.handleAchievementsResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleAchievementsResource failed: %v", err)
	}

	var payload struct {
		Earned  []models.Achievement `json:"earned"`
		Catalog []models.Achievement `json:"catalog"`
	}
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &payload); err != nil {
		t.Fatalf("Resource payload is not JSON: %v", err)
	}
	if len(payload.Catalog) != 6 {
		t.Errorf("Expected 6 badges in catalog, got %d", len(payload.Catalog))
	}
	if len(payload.Earned) != 1 || payload.Earned[0].ID != "first_dump" {
		t.Errorf("Expected first_dump earned, got %+v", payload.Earned)
	}
}
