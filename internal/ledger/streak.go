// ABOUTME: Consecutive-day streak transitions keyed on local calendar dates.
// ABOUTME: A streak survives only while the last entry is today or yesterday.
package ledger

import (
	"log"
	"time"

	"github.com/harperreed/haul/internal/models"
)

// StreakCount returns the current display streak. The stored counter only
// counts while its last date is today or yesterday.
func (c *Controller) StreakCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	switch c.streak.LastDate {
	case models.DateOf(now), models.DateOf(now.AddDate(0, 0, -1)):
		return c.streak.Count
	default:
		return 0
	}
}

// advanceStreakLocked applies the dump-time transition table:
// last date today -> unchanged, yesterday -> +1, anything else -> 1.
// The result is persisted keyed by today regardless of branch.
func (c *Controller) advanceStreakLocked(now time.Time) {
	today := models.DateOf(now)
	yesterday := models.DateOf(now.AddDate(0, 0, -1))

	count := 1
	switch c.streak.LastDate {
	case today:
		count = c.streak.Count
	case yesterday:
		count = c.streak.Count + 1
	}

	c.streak = models.Streak{Count: count, LastDate: today}
	if err := c.local.SetStreak(c.streak); err != nil {
		log.Printf("persist streak: %v", err)
	}
}

// expireStaleStreak resets a streak whose last activity was before
// yesterday. Called once at session start.
func (c *Controller) expireStaleStreak() {
	if c.streak.LastDate == "" {
		return
	}
	now := c.now()
	today := models.DateOf(now)
	yesterday := models.DateOf(now.AddDate(0, 0, -1))
	if c.streak.LastDate == today || c.streak.LastDate == yesterday {
		return
	}

	c.streak = models.Streak{}
	if err := c.local.SetStreak(c.streak); err != nil {
		log.Printf("persist streak: %v", err)
	}
}
