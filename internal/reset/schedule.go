// Package reset implements the free-tier weekly reset: free accounts have
// their listings wiped at every 7-day boundary counted from the UTC midnight
// of their registration date.
package reset

import (
	"time"
)

const (
	day = 24 * time.Hour

	// CycleDays is the length of one free-tier cycle.
	CycleDays = 7
)

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ceilDiv divides rounding toward positive infinity.
func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

// midnightUTC truncates t to 00:00:00 UTC of its UTC calendar day.
func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// cyclesPassed returns how many whole cycles separate the registration
// anchor from now. It is negative when now precedes the registration date.
func cyclesPassed(registeredAt, now time.Time) int64 {
	anchor := midnightUTC(registeredAt)
	daysSince := floorDiv(int64(now.UTC().Sub(anchor)), int64(day))
	return floorDiv(daysSince, CycleDays)
}

// boundary returns the k-th cycle boundary for a registration time.
func boundary(registeredAt time.Time, k int64) time.Time {
	return midnightUTC(registeredAt).AddDate(0, 0, int(k)*CycleDays)
}

// ComputeNextResetDate returns the first cycle boundary strictly after now.
// Boundaries are midnight(registeredAt) + 7k days in UTC. Skewed input where
// now precedes registeredAt stays on the same grid.
func ComputeNextResetDate(registeredAt, now time.Time) time.Time {
	return boundary(registeredAt, cyclesPassed(registeredAt, now)+1)
}

// LatestBoundary returns the most recent boundary at or before now with k >= 1.
// ok is false while the account is still inside its first cycle.
func LatestBoundary(registeredAt, now time.Time) (time.Time, bool) {
	k := cyclesPassed(registeredAt, now)
	if k < 1 {
		return time.Time{}, false
	}
	return boundary(registeredAt, k), true
}

// PendingResetDate returns the reset date an account is waiting on. If a
// boundary has passed since the account was last reset (or registered, when
// it never was) that boundary is returned, which is at or before now.
// Otherwise the next future boundary is returned.
func PendingResetDate(registeredAt time.Time, lastReset *time.Time, now time.Time) time.Time {
	latest, ok := LatestBoundary(registeredAt, now)
	if ok {
		anchor := registeredAt
		if lastReset != nil && lastReset.After(anchor) {
			anchor = *lastReset
		}
		if latest.After(anchor) {
			return latest
		}
	}
	return ComputeNextResetDate(registeredAt, now)
}

// DaysUntil returns the whole days from now until t, rounded up and floored at 0.
func DaysUntil(t, now time.Time) int {
	d := ceilDiv(int64(t.Sub(now)), int64(day))
	if d < 0 {
		return 0
	}
	return int(d)
}
