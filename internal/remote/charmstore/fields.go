// ABOUTME: Field operations for the Charm KV remote store.
// ABOUTME: Fields use field:<id> keys; soft-delete clears the active flag.
package charmstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/haul/internal/models"
)

// ListActiveFields returns active fields ordered by creation time ascending.
func (c *Client) ListActiveFields(ctx context.Context) ([]*models.Field, error) {
	fields, err := c.ListFields(ctx)
	if err != nil {
		return nil, err
	}

	active := fields[:0]
	for _, f := range fields {
		if f.IsActive {
			active = append(active, f)
		}
	}
	return active, nil
}

// ListFields returns all fields, including soft-deleted ones.
func (c *Client) ListFields(ctx context.Context) ([]*models.Field, error) {
	allData, err := c.listByPrefix(FieldPrefix)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	var fields []*models.Field
	for _, data := range allData {
		f, err := unmarshalJSON[models.Field](data)
		if err != nil {
			continue // Skip invalid entries
		}
		if err := f.Validate(); err != nil {
			continue
		}
		fields = append(fields, f)
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].CreatedAt.Before(fields[j].CreatedAt)
	})

	return fields, nil
}

// CreateField creates a new active field.
func (c *Client) CreateField(ctx context.Context, name, color string, targetLoads int) (*models.Field, error) {
	if targetLoads <= 0 {
		targetLoads = models.DefaultTargetLoads
	}
	f := &models.Field{
		ID:          uuid.New().String(),
		Name:        name,
		Color:       color,
		TargetLoads: targetLoads,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	data, err := marshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("marshal field: %w", err)
	}
	if err := c.set(FieldPrefix+f.ID, data); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return f, nil
}

// UpdateField changes a field's name and color.
func (c *Client) UpdateField(ctx context.Context, id, name, color string) (*models.Field, error) {
	f, err := c.getField(id)
	if err != nil {
		return nil, err
	}

	f.Name = name
	f.Color = color

	data, err := marshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("marshal field: %w", err)
	}
	if err := c.set(FieldPrefix+f.ID, data); err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}
	return f, nil
}

// DeactivateField soft-deletes a field by clearing its active flag.
func (c *Client) DeactivateField(ctx context.Context, id string) error {
	f, err := c.getField(id)
	if err != nil {
		return err
	}

	f.IsActive = false

	data, err := marshalJSON(f)
	if err != nil {
		return fmt.Errorf("marshal field: %w", err)
	}
	if err := c.set(FieldPrefix+f.ID, data); err != nil {
		return fmt.Errorf("deactivate field: %w", err)
	}
	return nil
}

func (c *Client) getField(id string) (*models.Field, error) {
	data, err := c.get(FieldPrefix + id)
	if err != nil {
		return nil, fmt.Errorf("get field %s: %w", id, err)
	}
	f, err := unmarshalJSON[models.Field](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal field %s: %w", id, err)
	}
	return f, nil
}
