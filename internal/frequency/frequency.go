// Package frequency derives the required interval between approved
// completions of an item and decides whether a completion attempt is
// eligible at a given instant.
package frequency

import (
	"time"

	"github.com/geldimmi/geldimmi/internal/model"
)

// RequiredDays returns the minimum number of days that must elapse between
// two approved completions of the item. Monthly is a fixed 30 days and
// yearly a fixed 365; the intervals are deliberately not calendar-aware.
// A custom item with no configured day count falls back to 1.
func RequiredDays(item model.Item) int {
	switch item.Frequency {
	case model.FrequencyWeekly:
		return 7
	case model.FrequencyMonthly:
		return 30
	case model.FrequencyYearly:
		return 365
	case model.FrequencyCustom:
		if item.FrequencyDays > 0 {
			return item.FrequencyDays
		}
		return 1
	default:
		return 1
	}
}

// NextAvailable returns the first instant at which a new completion becomes
// eligible after an approved completion at lastApproved.
func NextAvailable(lastApproved time.Time, requiredDays int) time.Time {
	return lastApproved.Add(time.Duration(requiredDays) * 24 * time.Hour)
}

// CanComplete reports whether a completion at now is eligible given the most
// recent approved completion. An item with no approved history is always
// eligible. The boundary is inclusive: exactly requiredDays after the last
// approved completion is eligible.
func CanComplete(lastApproved *time.Time, requiredDays int, now time.Time) bool {
	if lastApproved == nil {
		return true
	}
	return !now.Before(NextAvailable(*lastApproved, requiredDays))
}

// DayKey returns the UTC calendar day of t as YYYY-MM-DD. One completion
// record exists per (item, day key).
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MonthKey returns the UTC month of t as YYYY-MM, used to bucket QR access
// counts for the monthly quota.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
