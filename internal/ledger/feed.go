// ABOUTME: Applies the remote change feed to the ledger.
// ABOUTME: External inserts/deletes skip the optimistic cycle; match by ID only.
package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/harperreed/haul/internal/models"
	"github.com/harperreed/haul/internal/remote"
)

// Run subscribes to the remote change feed and applies events until ctx is
// cancelled or the feed closes. Meant to be called once per session; the
// subscription is released on return.
func (c *Controller) Run(ctx context.Context) error {
	ch, unsubscribe, err := c.store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			c.ApplyEvent(ctx, ev)
		}
	}
}

// ApplyEvent folds one externally-sourced change into the ledger. Inserts
// and deletes are matched purely by ID, never by position, so they remain
// correct when interleaved with in-flight optimistic operations.
func (c *Controller) ApplyEvent(ctx context.Context, ev remote.Event) {
	switch ev.Type {
	case remote.EventLoadInserted:
		if ev.Load == nil || ev.Load.Validate() != nil {
			return
		}
		c.mu.Lock()
		exists := false
		for _, l := range c.loads {
			if l.ID == ev.Load.ID {
				exists = true
				break
			}
		}
		if !exists {
			c.loads = append(c.loads, ev.Load)
			models.SortLoads(c.loads)
		}
		c.mu.Unlock()

	case remote.EventLoadDeleted:
		c.mu.Lock()
		c.removeLoadLocked(ev.LoadID)
		c.mu.Unlock()

	case remote.EventFieldsChanged:
		// Fields are patched by full re-list rather than incrementally.
		fields, err := c.store.ListActiveFields(ctx)
		if err != nil {
			log.Printf("refresh fields after change: %v", err)
			c.setOnline(false)
			break
		}
		c.mu.Lock()
		c.fields = fields
		c.online = true
		c.mu.Unlock()
	}

	if c.onEvent != nil {
		c.onEvent(ev)
	}
}
