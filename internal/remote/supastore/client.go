// ABOUTME: PostgREST-style remote store client for a hosted Supabase database.
// ABOUTME: Talks to the rest/v1 endpoints for fields, loads, and drivers.
package supastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harperreed/haul/internal/models"
)

// Client is the hosted-database remote store. All reads and writes go
// through the PostgREST endpoints; change notifications arrive over the
// realtime websocket (see realtime.go).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the given project URL and anon key.
func New(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Close is a no-op; the client holds no persistent connection.
func (c *Client) Close() error { return nil }

// ListActiveFields returns active fields ordered by creation time ascending.
func (c *Client) ListActiveFields(ctx context.Context) ([]*models.Field, error) {
	return c.listFields(ctx, url.Values{
		"is_active": {"eq.true"},
		"order":     {"created_at.asc"},
	})
}

// ListFields returns all fields, including soft-deleted ones.
func (c *Client) ListFields(ctx context.Context) ([]*models.Field, error) {
	return c.listFields(ctx, url.Values{
		"order": {"created_at.asc"},
	})
}

func (c *Client) listFields(ctx context.Context, query url.Values) ([]*models.Field, error) {
	var rows []models.Field
	if err := c.do(ctx, http.MethodGet, "fields", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	fields := make([]*models.Field, 0, len(rows))
	for i := range rows {
		f := rows[i]
		if err := f.Validate(); err != nil {
			continue // Skip malformed rows
		}
		fields = append(fields, &f)
	}
	return fields, nil
}

// CreateField creates a new active field.
func (c *Client) CreateField(ctx context.Context, name, color string, targetLoads int) (*models.Field, error) {
	if targetLoads <= 0 {
		targetLoads = models.DefaultTargetLoads
	}
	body := map[string]any{
		"name":         name,
		"color":        color,
		"target_loads": targetLoads,
		"is_active":    true,
	}

	var rows []models.Field
	if err := c.do(ctx, http.MethodPost, "fields", nil, body, &rows); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create field: empty response")
	}
	return &rows[0], nil
}

// UpdateField changes a field's name and color.
func (c *Client) UpdateField(ctx context.Context, id, name, color string) (*models.Field, error) {
	body := map[string]any{"name": name, "color": color}
	query := url.Values{"id": {"eq." + id}}

	var rows []models.Field
	if err := c.do(ctx, http.MethodPatch, "fields", query, body, &rows); err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("update field: no row matched id %s", id)
	}
	return &rows[0], nil
}

// DeactivateField soft-deletes a field by clearing its active flag.
func (c *Client) DeactivateField(ctx context.Context, id string) error {
	body := map[string]any{"is_active": false}
	query := url.Values{"id": {"eq." + id}}

	if err := c.do(ctx, http.MethodPatch, "fields", query, body, nil); err != nil {
		return fmt.Errorf("deactivate field: %w", err)
	}
	return nil
}

// ListLoads returns all load records ordered by creation time ascending.
func (c *Client) ListLoads(ctx context.Context) ([]*models.Load, error) {
	var rows []models.Load
	query := url.Values{"order": {"created_at.asc"}}
	if err := c.do(ctx, http.MethodGet, "loads", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	loads := make([]*models.Load, 0, len(rows))
	for i := range rows {
		l := rows[i]
		if err := l.Validate(); err != nil {
			continue
		}
		loads = append(loads, &l)
	}
	return loads, nil
}

// InsertLoad stores a new load; the database assigns ID and timestamp.
func (c *Client) InsertLoad(ctx context.Context, fieldID, driver string) (*models.Load, error) {
	body := map[string]any{"field_id": fieldID, "driver": driver}

	var rows []models.Load
	if err := c.do(ctx, http.MethodPost, "loads", nil, body, &rows); err != nil {
		return nil, fmt.Errorf("insert load: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert load: empty response")
	}
	stored := rows[0]
	if err := stored.Validate(); err != nil {
		return nil, fmt.Errorf("insert load: %w", err)
	}
	return &stored, nil
}

// DeleteLoad removes a load by ID.
func (c *Client) DeleteLoad(ctx context.Context, id string) error {
	query := url.Values{"id": {"eq." + id}}
	if err := c.do(ctx, http.MethodDelete, "loads", query, nil, nil); err != nil {
		return fmt.Errorf("delete load: %w", err)
	}
	return nil
}

// VerifyPIN checks a driver's PIN against the drivers table.
func (c *Client) VerifyPIN(ctx context.Context, driver, pin string) (bool, error) {
	query := url.Values{
		"name":   {"eq." + driver},
		"select": {"pin"},
	}

	var rows []struct {
		PIN string `json:"pin"`
	}
	if err := c.do(ctx, http.MethodGet, "drivers", query, nil, &rows); err != nil {
		return false, fmt.Errorf("verify pin: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rows[0].PIN != "" && rows[0].PIN == pin, nil
}

// do performs one PostgREST request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out != nil && method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, table, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
