package service

import "time"

// isoWeek returns the ISO 8601 week and year for t. Week boundaries, not
// calendar months, drive the prize and commission cycle.
func isoWeek(t time.Time) (week, year int) {
	y, w := t.UTC().ISOWeek()
	return w, y
}

// previousISOWeek returns the ISO week and year of the week before t,
// crossing year boundaries correctly.
func previousISOWeek(t time.Time) (week, year int) {
	return isoWeek(t.AddDate(0, 0, -7))
}
