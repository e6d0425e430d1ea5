package rules

import "time"

// WithinWindow reports whether now falls inside [start, end], inclusive
// on both ends.
func WithinWindow(now, start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !now.Before(start) && !now.After(end)
}
