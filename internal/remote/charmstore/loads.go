// ABOUTME: Load and driver operations for the Charm KV remote store.
// ABOUTME: Loads use load:<id> keys and are only ever inserted or deleted whole.
package charmstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/haul/internal/models"
)

// driverRow is the stored shape of a drivers-table entry.
type driverRow struct {
	Name      string    `json:"name"`
	PIN       string    `json:"pin"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLoads returns all load records ordered by creation time ascending.
func (c *Client) ListLoads(ctx context.Context) ([]*models.Load, error) {
	allData, err := c.listByPrefix(LoadPrefix)
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	var loads []*models.Load
	for _, data := range allData {
		l, err := unmarshalJSON[models.Load](data)
		if err != nil {
			continue // Skip invalid entries
		}
		if err := l.Validate(); err != nil {
			continue
		}
		loads = append(loads, l)
	}

	models.SortLoads(loads)
	return loads, nil
}

// InsertLoad stores a new load, assigning the permanent ID and timestamp.
func (c *Client) InsertLoad(ctx context.Context, fieldID, driver string) (*models.Load, error) {
	l := &models.Load{
		ID:        uuid.New().String(),
		FieldID:   fieldID,
		Driver:    driver,
		CreatedAt: time.Now(),
	}

	data, err := marshalJSON(l)
	if err != nil {
		return nil, fmt.Errorf("marshal load: %w", err)
	}
	if err := c.set(LoadPrefix+l.ID, data); err != nil {
		return nil, fmt.Errorf("insert load: %w", err)
	}
	return l, nil
}

// DeleteLoad removes a load by ID.
func (c *Client) DeleteLoad(ctx context.Context, id string) error {
	if err := c.delete(LoadPrefix + id); err != nil {
		return fmt.Errorf("delete load: %w", err)
	}
	return nil
}

// VerifyPIN checks a driver's PIN against the drivers table.
// The comparison is plaintext, matching the hosted schema.
func (c *Client) VerifyPIN(ctx context.Context, driver, pin string) (bool, error) {
	data, err := c.get(DriverPrefix + driver)
	if err != nil {
		return false, fmt.Errorf("driver %s not found: %w", driver, err)
	}

	row, err := unmarshalJSON[driverRow](data)
	if err != nil {
		return false, fmt.Errorf("unmarshal driver %s: %w", driver, err)
	}

	return row.PIN != "" && row.PIN == pin, nil
}
