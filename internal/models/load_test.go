// ABOUTME: Unit tests for load and field models.
// ABOUTME: Covers validation, ordering, and day-boundary helpers.
package models

import (
	"testing"
	"time"
)

func TestNewPendingLoad(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local)
	l := NewPendingLoad("field-1", "ABRI", at)

	if l.ID == "" {
		t.Error("Expected temporary ID to be generated")
	}
	if !l.Pending {
		t.Error("Expected new load to be pending")
	}
	if l.FieldID != "field-1" || l.Driver != "ABRI" {
		t.Errorf("Unexpected load fields: %+v", l)
	}
	if !l.CreatedAt.Equal(at) {
		t.Errorf("Expected CreatedAt %v, got %v", at, l.CreatedAt)
	}
}

func TestLoadValidate(t *testing.T) {
	tests := []struct {
		name    string
		load    Load
		wantErr bool
	}{
		{"valid", Load{ID: "a", FieldID: "f", Driver: "ABRI"}, false},
		{"missing id", Load{FieldID: "f", Driver: "ABRI"}, true},
		{"missing field", Load{ID: "a", Driver: "ABRI"}, true},
		{"missing driver", Load{ID: "a", FieldID: "f"}, true},
		{"whitespace id", Load{ID: "  ", FieldID: "f", Driver: "ABRI"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.load.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFieldValidate(t *testing.T) {
	f := Field{ID: "f1", Name: "North 40"}
	if err := f.Validate(); err != nil {
		t.Errorf("Expected valid field, got %v", err)
	}

	f = Field{ID: "f1"}
	if err := f.Validate(); err == nil {
		t.Error("Expected error for field without name")
	}
}

func TestFieldCompleteAndRemaining(t *testing.T) {
	f := Field{ID: "f", Name: "n", TargetLoads: 5}

	if f.Complete(4) {
		t.Error("Expected 4/5 to be incomplete")
	}
	if !f.Complete(5) {
		t.Error("Expected 5/5 to be complete")
	}
	if got := f.Remaining(2); got != 3 {
		t.Errorf("Expected 3 remaining, got %d", got)
	}
}

func TestSortLoads(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)
	loads := []*Load{
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
	}

	SortLoads(loads)

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if loads[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, loads[i].ID)
		}
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, 6, 1, 0, 0, 1, 0, time.Local)
	night := time.Date(2025, 6, 1, 23, 59, 59, 0, time.Local)
	next := time.Date(2025, 6, 2, 0, 0, 1, 0, time.Local)

	if !SameDay(morning, night) {
		t.Error("Expected same calendar day")
	}
	if SameDay(night, next) {
		t.Error("Expected different calendar days")
	}
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2025, 6, 1, 15, 4, 5, 0, time.Local)
	if got := DateOf(ts); got != "2025-06-01" {
		t.Errorf("Expected 2025-06-01, got %s", got)
	}
}
