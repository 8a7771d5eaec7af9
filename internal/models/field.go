// ABOUTME: Field model for named dump targets with load goals.
// ABOUTME: Fields are reference data owned by the remote store.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTargetLoads is used when a field is created without an explicit goal.
const DefaultTargetLoads = 999

// Field is a named, colored target area with a load goal.
// The ledger treats fields as read-only reference data; creation,
// editing, and soft-deletion happen through the settings surface.
type Field struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	TargetLoads int       `json:"target_loads"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the required fields of a remote row.
// Rows failing validation are rejected at the boundary rather than
// propagated with missing data.
func (f *Field) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("field row missing id")
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("field %s missing name", f.ID)
	}
	return nil
}

// Complete reports whether the field has reached its load goal.
func (f *Field) Complete(loads int) bool {
	return loads >= f.TargetLoads
}

// Remaining returns the loads still needed to reach the goal.
// May be negative once the goal is exceeded.
func (f *Field) Remaining(loads int) int {
	return f.TargetLoads - loads
}
