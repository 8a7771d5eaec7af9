// ABOUTME: Derived queries over the ledger - counts, rates, sort order, activity.
// ABOUTME: All pure reductions recomputed on demand; no incremental counters.
package ledger

import (
	"sort"
	"time"

	"github.com/harperreed/haul/internal/models"
)

// ActivityEntry is one ledger record joined with its field for display.
type ActivityEntry struct {
	ID         string
	Driver     string
	FieldName  string
	FieldColor string
	CreatedAt  time.Time
	Pending    bool
}

// LoadsForField counts ledger entries for the given field.
func (c *Controller) LoadsForField(fieldID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadsForFieldLocked(fieldID)
}

func (c *Controller) loadsForFieldLocked(fieldID string) int {
	n := 0
	for _, l := range c.loads {
		if l.FieldID == fieldID {
			n++
		}
	}
	return n
}

// DriverBreakdownForField counts a field's loads per configured driver,
// in roster order, excluding drivers with zero loads.
func (c *Controller) DriverBreakdownForField(fieldID string) []models.DriverCount {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.DriverCount
	for _, driver := range c.drivers {
		n := 0
		for _, l := range c.loads {
			if l.FieldID == fieldID && l.Driver == driver {
				n++
			}
		}
		if n > 0 {
			out = append(out, models.DriverCount{Name: driver, Count: n})
		}
	}
	return out
}

// AverageLoadsPerHourToday computes today's load rate across all drivers.
// Returns 0 with fewer than two loads today, or when the span between the
// earliest and latest is under 0.1 hours (guards division blow-up for
// near-simultaneous entries).
func (c *Controller) AverageLoadsPerHourToday() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var earliest, latest time.Time
	count := 0
	for _, l := range c.loads {
		if !models.SameDay(l.CreatedAt, now) {
			continue
		}
		if count == 0 || l.CreatedAt.Before(earliest) {
			earliest = l.CreatedAt
		}
		if count == 0 || l.CreatedAt.After(latest) {
			latest = l.CreatedAt
		}
		count++
	}

	if count < 2 {
		return 0
	}
	span := latest.Sub(earliest).Hours()
	if span < 0.1 {
		return 0
	}
	return float64(count) / span
}

// DriverStatsAll returns today/total counts for every configured driver,
// in roster order.
func (c *Controller) DriverStatsAll() []models.DriverStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make([]models.DriverStats, 0, len(c.drivers))
	for _, driver := range c.drivers {
		total, today := c.driverCountsLocked(driver, now)
		out = append(out, models.DriverStats{Name: driver, TodayLoads: today, TotalLoads: total})
	}
	return out
}

// SortedFields returns the active fields in display order:
//  1. pinned before unpinned
//  2. among equally-pinned, incomplete before complete
//  3. then ascending by remaining loads (closest to the goal first)
//
// Pinned status is checked first, so a pinned complete field still sorts
// before any unpinned field.
func (c *Controller) SortedFields() []*models.Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make([]*models.Field, len(c.fields))
	copy(fields, c.fields)

	counts := make(map[string]int, len(fields))
	for _, f := range fields {
		counts[f.ID] = c.loadsForFieldLocked(f.ID)
	}

	sort.SliceStable(fields, func(i, j int) bool {
		a, b := fields[i], fields[j]
		aPinned, bPinned := c.pinned[a.ID], c.pinned[b.ID]
		if aPinned != bPinned {
			return aPinned
		}
		aComplete, bComplete := a.Complete(counts[a.ID]), b.Complete(counts[b.ID])
		if aComplete != bComplete {
			return bComplete
		}
		return a.Remaining(counts[a.ID]) < b.Remaining(counts[b.ID])
	})

	return fields
}

// Fields returns the active fields in remote order (creation time).
func (c *Controller) Fields() []*models.Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make([]*models.Field, len(c.fields))
	copy(fields, c.fields)
	return fields
}

// Activity returns the ledger joined with field names and colors, most
// recent first.
func (c *Controller) Activity() []ActivityEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ActivityEntry, 0, len(c.loads))
	for _, l := range c.loads {
		out = append(out, c.activityEntryLocked(l))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// LastLoad returns the active driver's most recent load, if any.
func (c *Controller) LastLoad() (ActivityEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var last *models.Load
	for _, l := range c.loads {
		if l.Driver != c.driver {
			continue
		}
		if last == nil || !l.CreatedAt.Before(last.CreatedAt) {
			last = l
		}
	}
	if last == nil {
		return ActivityEntry{}, false
	}
	return c.activityEntryLocked(last), true
}

func (c *Controller) activityEntryLocked(l *models.Load) ActivityEntry {
	entry := ActivityEntry{
		ID:         l.ID,
		Driver:     l.Driver,
		FieldName:  "Unknown Field",
		FieldColor: "#666",
		CreatedAt:  l.CreatedAt,
		Pending:    l.Pending,
	}
	if f := c.fieldByIDLocked(l.FieldID); f != nil {
		entry.FieldName = f.Name
		entry.FieldColor = f.Color
	}
	return entry
}
