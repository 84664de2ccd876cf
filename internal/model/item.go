package model

import "time"

// Frequency is an item's recurrence. The required interval between two
// approved completions derives deterministically from it.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

// ParseFrequency returns the Frequency for s, or false if s is not one.
func ParseFrequency(s string) (Frequency, bool) {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return Frequency(s), true
	}
	return "", false
}

// Item is a recurring task within a schedule. FrequencyDays only matters
// when Frequency is custom.
type Item struct {
	ID            int64     `json:"id"`
	ScheduleID    int64     `json:"schedule_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Frequency     Frequency `json:"frequency"`
	FrequencyDays int       `json:"frequency_days"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
