// ABOUTME: Load model - one logged unit of material dumped onto a field.
// ABOUTME: Loads are append/delete-only; a record is never mutated after creation.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Load is the atomic event record: one load dumped by a driver onto a field.
// Pending marks an optimistic record that has not yet been confirmed by the
// remote store; it carries a client-generated temporary ID until the store
// assigns the permanent one.
type Load struct {
	ID        string    `json:"id"`
	FieldID   string    `json:"field_id"`
	Driver    string    `json:"driver"`
	CreatedAt time.Time `json:"created_at"`
	Pending   bool      `json:"-"`
}

// NewPendingLoad creates an optimistic load with a temporary client-generated ID.
func NewPendingLoad(fieldID, driver string, at time.Time) *Load {
	return &Load{
		ID:        uuid.New().String(),
		FieldID:   fieldID,
		Driver:    driver,
		CreatedAt: at,
		Pending:   true,
	}
}

// Validate checks the required fields of a remote row.
func (l *Load) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("load row missing id")
	}
	if strings.TrimSpace(l.FieldID) == "" {
		return fmt.Errorf("load %s missing field_id", l.ID)
	}
	if strings.TrimSpace(l.Driver) == "" {
		return fmt.Errorf("load %s missing driver", l.ID)
	}
	return nil
}

// SortLoads orders loads by creation time ascending, the canonical
// ledger ordering.
func SortLoads(loads []*Load) {
	sort.SliceStable(loads, func(i, j int) bool {
		return loads[i].CreatedAt.Before(loads[j].CreatedAt)
	})
}

// DateOf returns the calendar date of a timestamp in local time,
// used for day-boundary comparisons (streaks, daily counts).
func DateOf(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// SameDay reports whether two timestamps fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
