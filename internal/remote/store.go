// ABOUTME: Remote store contract for fields, loads, and driver verification.
// ABOUTME: Defines the change-feed event types pushed by store backends.
package remote

import (
	"context"

	"github.com/harperreed/haul/internal/models"
)

// Store is the hosted-database contract the ledger controller depends on.
// Implementations: charmstore (Charm Cloud KV) and supastore (PostgREST +
// websocket realtime).
type Store interface {
	// ListActiveFields returns active fields ordered by creation time ascending.
	ListActiveFields(ctx context.Context) ([]*models.Field, error)

	// ListFields returns all fields, including soft-deleted ones, ordered by
	// creation time ascending. Used by the settings surface.
	ListFields(ctx context.Context) ([]*models.Field, error)

	// CreateField creates a new active field.
	CreateField(ctx context.Context, name, color string, targetLoads int) (*models.Field, error)

	// UpdateField changes a field's name and color.
	UpdateField(ctx context.Context, id, name, color string) (*models.Field, error)

	// DeactivateField soft-deletes a field by clearing its active flag.
	DeactivateField(ctx context.Context, id string) error

	// ListLoads returns all load records ordered by creation time ascending.
	ListLoads(ctx context.Context) ([]*models.Load, error)

	// InsertLoad stores a new load. The store assigns the permanent ID and
	// timestamp; the returned record replaces the caller's optimistic one.
	InsertLoad(ctx context.Context, fieldID, driver string) (*models.Load, error)

	// DeleteLoad removes a load by ID.
	DeleteLoad(ctx context.Context, id string) error

	// VerifyPIN checks a driver's PIN against the drivers table.
	VerifyPIN(ctx context.Context, driver, pin string) (bool, error)

	// Subscribe opens the change feed. Events flow until ctx is cancelled or
	// the returned unsubscribe function is called; the channel is closed on
	// either.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)

	// Close releases the backend connection.
	Close() error
}

// EventType identifies a change-feed event.
type EventType string

const (
	// EventLoadInserted carries a new load record created elsewhere.
	EventLoadInserted EventType = "load_inserted"
	// EventLoadDeleted carries the ID of a load removed elsewhere.
	EventLoadDeleted EventType = "load_deleted"
	// EventFieldsChanged signals that the fields table changed in any way;
	// subscribers re-list fields rather than patching incrementally.
	EventFieldsChanged EventType = "fields_changed"
)

// Event is one externally-sourced change pushed by the store.
type Event struct {
	Type   EventType
	Load   *models.Load // set for EventLoadInserted
	LoadID string       // set for EventLoadDeleted
}
