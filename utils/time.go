package utils

import "time"

// NanoOfDay converts a wall-clock time to nanoseconds since local midnight,
// the timestamp unit used throughout the decision core.
func NanoOfDay(t time.Time) int64 {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return t.Sub(midnight).Nanoseconds()
}
