// Package ist resolves the India Standard Time location used for all
// business-facing date bucketing. Falls back to a fixed +05:30 zone when the
// tzdata database is unavailable in the runtime image.
package ist

import (
	"sync"
	"time"
)

var (
	once sync.Once
	loc  *time.Location
)

// Location returns the Asia/Kolkata location, or a fixed +05:30 zone.
func Location() *time.Location {
	once.Do(func() {
		var err error
		loc, err = time.LoadLocation("Asia/Kolkata")
		if err != nil {
			loc = time.FixedZone("IST", 5*60*60+30*60)
		}
	})
	return loc
}

// StartOfDay truncates t to midnight IST.
func StartOfDay(t time.Time) time.Time {
	local := t.In(Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Location())
}

// StartOfMonth truncates t to the first of its month, midnight IST.
func StartOfMonth(t time.Time) time.Time {
	local := t.In(Location())
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, Location())
}

// StartOfYear truncates t to the first of January, midnight IST.
func StartOfYear(t time.Time) time.Time {
	local := t.In(Location())
	return time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, Location())
}
