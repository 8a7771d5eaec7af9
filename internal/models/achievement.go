// ABOUTME: Achievement model - one-time badges unlocked at fixed load thresholds.
// ABOUTME: Earned achievement IDs grow monotonically; a badge never re-fires.
package models

// Achievement is a badge unlocked when a load count first crosses a
// fixed threshold.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Streak tracks consecutive calendar days with at least one load logged.
// LastDate is a local calendar date string (see DateOf); the counter is
// only meaningful while LastDate is today or yesterday.
type Streak struct {
	Count    int    `json:"count"`
	LastDate string `json:"last_date"`
}

// Session identifies the active driver on this device.
// Lifecycle: login -> active -> logout.
type Session struct {
	Driver   string `json:"driver"`
	LoggedIn string `json:"logged_in"`
}

// DriverStats is the derived per-driver aggregate shown in the stats header.
type DriverStats struct {
	Name       string `json:"name"`
	TodayLoads int    `json:"today_loads"`
	TotalLoads int    `json:"total_loads"`
}

// DriverCount is one entry of a per-field driver breakdown.
type DriverCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
