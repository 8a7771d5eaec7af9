// ABOUTME: Poll-based change feed for the Charm KV remote store.
// ABOUTME: Syncs from Charm Cloud and diffs key snapshots into events.
package charmstore

import (
	"context"
	"time"

	"github.com/harperreed/haul/internal/models"
	"github.com/harperreed/haul/internal/remote"
)

// pollInterval is how often the watcher pulls from Charm Cloud. Charm has
// no server push, so near-real-time here means sync-and-diff.
const pollInterval = 2 * time.Second

// Subscribe opens the change feed. Load changes are emitted incrementally
// (loads are insert/delete-only, so a key diff is exact); any change to the
// fields table collapses into a single EventFieldsChanged.
func (c *Client) Subscribe(ctx context.Context) (<-chan remote.Event, func(), error) {
	loads, fields, err := c.snapshot()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan remote.Event, 16)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			if err := c.Sync(); err != nil {
				continue
			}
			newLoads, newFields, err := c.snapshot()
			if err != nil {
				continue
			}

			for id, raw := range newLoads {
				if _, ok := loads[id]; ok {
					continue
				}
				l, err := unmarshalJSON[models.Load]([]byte(raw))
				if err != nil || l.Validate() != nil {
					continue
				}
				select {
				case ch <- remote.Event{Type: remote.EventLoadInserted, Load: l}:
				case <-ctx.Done():
					return
				}
			}
			for id := range loads {
				if _, ok := newLoads[id]; ok {
					continue
				}
				select {
				case ch <- remote.Event{Type: remote.EventLoadDeleted, LoadID: id}:
				case <-ctx.Done():
					return
				}
			}

			if fieldsChanged(fields, newFields) {
				select {
				case ch <- remote.Event{Type: remote.EventFieldsChanged}:
				case <-ctx.Done():
					return
				}
			}

			loads, fields = newLoads, newFields
		}
	}()

	return ch, cancel, nil
}

// snapshot captures the current load and field rows keyed by ID.
func (c *Client) snapshot() (loads map[string]string, fields map[string]string, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	loads = make(map[string]string)
	fields = make(map[string]string)

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, nil, err
	}
	for _, key := range keys {
		k := string(key)
		switch {
		case len(k) > len(LoadPrefix) && k[:len(LoadPrefix)] == LoadPrefix:
			val, err := c.kv.Get(key)
			if err != nil {
				continue
			}
			loads[k[len(LoadPrefix):]] = string(val)
		case len(k) > len(FieldPrefix) && k[:len(FieldPrefix)] == FieldPrefix:
			val, err := c.kv.Get(key)
			if err != nil {
				continue
			}
			fields[k[len(FieldPrefix):]] = string(val)
		}
	}
	return loads, fields, nil
}

func fieldsChanged(old, new map[string]string) bool {
	if len(old) != len(new) {
		return true
	}
	for id, v := range new {
		if old[id] != v {
			return true
		}
	}
	return false
}
