// ABOUTME: Optimistic record/undo mutations with confirm and rollback.
// ABOUTME: In-flight commits match their target purely by record ID.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/harperreed/haul/internal/models"
)

// ErrNoLoads is returned by UndoLastDump when the active driver has no
// loads in the ledger.
var ErrNoLoads = errors.New("no loads to undo")

// RecordDump logs one load onto a field for the active driver.
//
// The optimistic record is visible in the ledger immediately; the remote
// insert settles later and either replaces the temporary record in place
// (preserving its position) or removes it entirely. Streak and achievement
// updates happen now, independent of the network outcome, using the
// pre-insert counts plus one.
func (c *Controller) RecordDump(ctx context.Context, fieldID string) (*models.Load, error) {
	c.mu.Lock()
	if c.driver == "" {
		c.mu.Unlock()
		return nil, fmt.Errorf("record dump: not logged in")
	}
	if c.fieldByIDLocked(fieldID) == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("record dump: unknown field %q", fieldID)
	}

	now := c.now()
	total, today := c.driverCountsLocked(c.driver, now)

	tmp := models.NewPendingLoad(fieldID, c.driver, now)
	c.loads = append(c.loads, tmp)

	c.advanceStreakLocked(now)
	unlocked := c.checkAchievementsLocked(total+1, today+1)
	c.mu.Unlock()

	if unlocked != nil && c.onAchievement != nil {
		c.onAchievement(*unlocked)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		cctx, cancel := context.WithTimeout(ctx, c.commitTimeout)
		defer cancel()

		stored, err := c.store.InsertLoad(cctx, tmp.FieldID, tmp.Driver)
		if err != nil {
			c.rollbackInsert(tmp.ID)
			log.Printf("record dump: insert failed, rolled back: %v", err)
			return
		}
		c.confirmInsert(ctx, tmp.ID, stored)
	}()

	return tmp, nil
}

// confirmInsert replaces the temporary record with the store-returned one,
// preserving its position so dependent views don't flicker-reorder. The
// change feed can echo the stored row before the confirm lands (both
// backends deliver our own inserts), so the stored ID is deduplicated in
// every branch: the ledger holds the record exactly once afterwards. A
// record undone while still pending has its stored row deleted instead.
func (c *Controller) confirmInsert(ctx context.Context, tempID string, stored *models.Load) {
	c.mu.Lock()

	if c.discarded[tempID] {
		delete(c.discarded, tempID)
		c.removeLoadLocked(stored.ID)
		c.mu.Unlock()
		c.deleteStored(ctx, stored.ID)
		return
	}

	for i, l := range c.loads {
		if l.ID == tempID {
			c.loads[i] = stored
			for j, other := range c.loads {
				if j != i && other.ID == stored.ID {
					c.loads = append(c.loads[:j], c.loads[j+1:]...)
					break
				}
			}
			c.mu.Unlock()
			return
		}
	}
	for _, l := range c.loads {
		if l.ID == stored.ID {
			c.mu.Unlock()
			return
		}
	}
	c.loads = append(c.loads, stored)
	models.SortLoads(c.loads)
	c.mu.Unlock()
}

// deleteStored issues the remote delete for a row whose optimistic record
// was undone before the insert confirmed.
func (c *Controller) deleteStored(ctx context.Context, id string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		cctx, cancel := context.WithTimeout(ctx, c.commitTimeout)
		defer cancel()
		if err := c.store.DeleteLoad(cctx, id); err != nil {
			log.Printf("undo: deferred delete failed: %v", err)
		}
	}()
}

// rollbackInsert removes the temporary record entirely; no partial state
// is retained.
func (c *Controller) rollbackInsert(tempID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.discarded, tempID)
	c.removeLoadLocked(tempID)
}

// UndoLastDump removes the active driver's most recent load: the record
// with the greatest creation time among that driver's loads, not the
// global last. Streak and achievements are unaffected.
func (c *Controller) UndoLastDump(ctx context.Context) (*models.Load, error) {
	c.mu.Lock()
	if c.driver == "" {
		c.mu.Unlock()
		return nil, fmt.Errorf("undo: not logged in")
	}

	var target *models.Load
	for _, l := range c.loads {
		if l.Driver != c.driver {
			continue
		}
		if target == nil || !l.CreatedAt.Before(target.CreatedAt) {
			target = l
		}
	}
	if target == nil {
		c.mu.Unlock()
		return nil, ErrNoLoads
	}

	c.removeLoadLocked(target.ID)
	if target.Pending {
		// The insert has not confirmed yet, so the stored row's ID is
		// unknown. Mark the temporary ID; the confirm deletes the row.
		c.discarded[target.ID] = true
		c.mu.Unlock()
		return target, nil
	}
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		cctx, cancel := context.WithTimeout(ctx, c.commitTimeout)
		defer cancel()

		if err := c.store.DeleteLoad(cctx, target.ID); err != nil {
			c.rollbackDelete(target)
			log.Printf("undo: delete failed, restored load: %v", err)
		}
	}()

	return target, nil
}

// rollbackDelete puts a removed record back. The exact prior index is not
// restored; ordering is re-established by the createdAt sort.
func (c *Controller) rollbackDelete(l *models.Load) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.loads {
		if existing.ID == l.ID {
			return
		}
	}
	c.loads = append(c.loads, l)
	models.SortLoads(c.loads)
}

func (c *Controller) removeLoadLocked(id string) bool {
	for i, l := range c.loads {
		if l.ID == id {
			c.loads = append(c.loads[:i], c.loads[i+1:]...)
			return true
		}
	}
	return false
}
