// ABOUTME: Load ledger controller - owns the in-memory load list for a session.
// ABOUTME: Applies optimistic mutations and reconciles with the remote store.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/harperreed/haul/internal/localstore"
	"github.com/harperreed/haul/internal/models"
	"github.com/harperreed/haul/internal/remote"
)

// DefaultCommitTimeout bounds how long an optimistic mutation waits for
// remote confirmation before rolling back. Without it a request that never
// resolves would leave a phantom pending record visible forever.
const DefaultCommitTimeout = 10 * time.Second

// Config wires a Controller to its collaborators.
type Config struct {
	Store  remote.Store
	Local  *localstore.Store
	Driver string // active driver, may be empty for read-only surfaces
	// Drivers is the closed set of configured driver names, in display order.
	Drivers       []string
	Now           func() time.Time // defaults to time.Now
	CommitTimeout time.Duration    // defaults to DefaultCommitTimeout
	// OnAchievement receives the single achievement unlocked by a dump,
	// if any. Called outside the controller lock.
	OnAchievement func(models.Achievement)
	// OnEvent observes externally-sourced change-feed events after they
	// have been applied to the ledger.
	OnEvent func(remote.Event)
}

// Controller owns the in-memory ledger for the lifetime of one session.
// All mutations are serialized through its mutex; each in-flight remote
// operation only ever touches the single record it introduced or targeted,
// matched purely by ID.
type Controller struct {
	store         remote.Store
	local         *localstore.Store
	driver        string
	drivers       []string
	now           func() time.Time
	commitTimeout time.Duration
	onAchievement func(models.Achievement)
	onEvent       func(remote.Event)

	mu     sync.Mutex
	fields []*models.Field
	loads  []*models.Load
	pinned map[string]bool
	streak models.Streak
	earned map[string]bool
	online bool
	// discarded tracks temporary IDs undone before their insert confirmed;
	// the confirm deletes the stored row instead of keeping it.
	discarded map[string]bool

	wg sync.WaitGroup
}

// New creates a controller and loads the device-local state. A stale streak
// (last activity before yesterday) is reset immediately, matching what the
// dashboard shows at session start.
func New(cfg Config) (*Controller, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("ledger: remote store is required")
	}
	if cfg.Local == nil {
		return nil, fmt.Errorf("ledger: local store is required")
	}
	if cfg.Driver != "" && !contains(cfg.Drivers, cfg.Driver) {
		return nil, fmt.Errorf("ledger: unknown driver %q", cfg.Driver)
	}

	c := &Controller{
		store:         cfg.Store,
		local:         cfg.Local,
		driver:        cfg.Driver,
		drivers:       cfg.Drivers,
		now:           cfg.Now,
		commitTimeout: cfg.CommitTimeout,
		onAchievement: cfg.OnAchievement,
		onEvent:       cfg.OnEvent,
		pinned:        make(map[string]bool),
		earned:        make(map[string]bool),
		discarded:     make(map[string]bool),
		online:        true,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.commitTimeout <= 0 {
		c.commitTimeout = DefaultCommitTimeout
	}

	streak, err := cfg.Local.Streak()
	if err != nil {
		return nil, fmt.Errorf("ledger: load streak: %w", err)
	}
	c.streak = streak
	c.expireStaleStreak()

	earned, err := cfg.Local.Achievements()
	if err != nil {
		return nil, fmt.Errorf("ledger: load achievements: %w", err)
	}
	for _, id := range earned {
		c.earned[id] = true
	}

	pins, err := cfg.Local.PinnedFields()
	if err != nil {
		return nil, fmt.Errorf("ledger: load pinned fields: %w", err)
	}
	for _, id := range pins {
		c.pinned[id] = true
	}

	return c, nil
}

// Refresh fetches fields and loads from the remote store. On failure the
// last-known state stays in place and the controller reports offline.
func (c *Controller) Refresh(ctx context.Context) error {
	fields, err := c.store.ListActiveFields(ctx)
	if err != nil {
		c.setOnline(false)
		return fmt.Errorf("refresh fields: %w", err)
	}
	loads, err := c.store.ListLoads(ctx)
	if err != nil {
		c.setOnline(false)
		return fmt.Errorf("refresh loads: %w", err)
	}

	c.mu.Lock()
	c.fields = fields
	c.loads = loads
	c.online = true
	c.mu.Unlock()
	return nil
}

// Flush waits for all in-flight remote commits to settle.
func (c *Controller) Flush() {
	c.wg.Wait()
}

// Online reports whether the last remote list succeeded.
func (c *Controller) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Driver returns the active driver name, empty when logged out.
func (c *Controller) Driver() string {
	return c.driver
}

// Drivers returns the configured driver roster in display order.
func (c *Controller) Drivers() []string {
	return c.drivers
}

// SetOnEvent replaces the change-feed observer. Call before Run.
func (c *Controller) SetOnEvent(fn func(remote.Event)) {
	c.onEvent = fn
}

// Pin adds a field to the pinned set and persists it.
func (c *Controller) Pin(fieldID string) error {
	c.mu.Lock()
	c.pinned[fieldID] = true
	pins := c.pinnedSliceLocked()
	c.mu.Unlock()
	return c.local.SetPinnedFields(pins)
}

// Unpin removes a field from the pinned set and persists it.
func (c *Controller) Unpin(fieldID string) error {
	c.mu.Lock()
	delete(c.pinned, fieldID)
	pins := c.pinnedSliceLocked()
	c.mu.Unlock()
	return c.local.SetPinnedFields(pins)
}

// Pinned reports whether a field is pinned.
func (c *Controller) Pinned(fieldID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned[fieldID]
}

func (c *Controller) pinnedSliceLocked() []string {
	pins := make([]string, 0, len(c.pinned))
	for id := range c.pinned {
		pins = append(pins, id)
	}
	sort.Strings(pins)
	return pins
}

func (c *Controller) setOnline(v bool) {
	c.mu.Lock()
	c.online = v
	c.mu.Unlock()
}

func (c *Controller) fieldByIDLocked(id string) *models.Field {
	for _, f := range c.fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// driverCountsLocked returns the driver's total and today's load counts
// over the current ledger.
func (c *Controller) driverCountsLocked(driver string, now time.Time) (total, today int) {
	for _, l := range c.loads {
		if l.Driver != driver {
			continue
		}
		total++
		if models.SameDay(l.CreatedAt, now) {
			today++
		}
	}
	return total, today
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
