// ABOUTME: Fixed achievement threshold rules evaluated after each dump.
// ABOUTME: First matching unearned rule fires; one notification per action.
package ledger

import (
	"log"
	"sort"

	"github.com/harperreed/haul/internal/models"
)

// achievementRule pairs a badge with its threshold condition over the
// driver's total and today's load counts.
type achievementRule struct {
	models.Achievement
	match func(total, today int) bool
}

// achievementRules is the fixed priority order. Earlier rules win when
// several become true in the same call.
var achievementRules = []achievementRule{
	{
		Achievement: models.Achievement{ID: "first_dump", Title: "First Blood", Description: "Your first dump!", Icon: "🎯"},
		match:       func(total, today int) bool { return total == 1 },
	},
	{
		Achievement: models.Achievement{ID: "five_dumps", Title: "High Five", Description: "5 loads in one day!", Icon: "🖐️"},
		match:       func(total, today int) bool { return today == 5 },
	},
	{
		Achievement: models.Achievement{ID: "ten_dumps", Title: "Perfect 10", Description: "10 loads in one day!", Icon: "🔟"},
		match:       func(total, today int) bool { return today == 10 },
	},
	{
		Achievement: models.Achievement{ID: "twenty_dumps", Title: "Dump Master", Description: "20 loads in one day!", Icon: "👑"},
		match:       func(total, today int) bool { return today == 20 },
	},
	{
		Achievement: models.Achievement{ID: "fifty_total", Title: "Half Century", Description: "50 total loads!", Icon: "🏆"},
		match:       func(total, today int) bool { return total == 50 },
	},
	{
		Achievement: models.Achievement{ID: "hundred_total", Title: "Centurion", Description: "100 total loads!", Icon: "💯"},
		match:       func(total, today int) bool { return total == 100 },
	},
}

// checkAchievementsLocked finds the first rule whose condition holds and
// whose badge is not yet earned, awards it, and persists the earned set.
// Later rules matching in the same call stay unawarded until a future dump
// triggers them again.
func (c *Controller) checkAchievementsLocked(total, today int) *models.Achievement {
	for _, rule := range achievementRules {
		if !rule.match(total, today) || c.earned[rule.ID] {
			continue
		}

		c.earned[rule.ID] = true
		ids := make([]string, 0, len(c.earned))
		for id := range c.earned {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		if err := c.local.SetAchievements(ids); err != nil {
			log.Printf("persist achievements: %v", err)
		}

		a := rule.Achievement
		return &a
	}
	return nil
}

// EarnedAchievements returns the earned badges in rule order.
func (c *Controller) EarnedAchievements() []models.Achievement {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.Achievement
	for _, rule := range achievementRules {
		if c.earned[rule.ID] {
			out = append(out, rule.Achievement)
		}
	}
	return out
}

// AllAchievements returns every defined badge in rule order.
func AllAchievements() []models.Achievement {
	out := make([]models.Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		out = append(out, rule.Achievement)
	}
	return out
}
