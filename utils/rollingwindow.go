// utils/rollingwindow.go
package utils

type windowEntry struct {
	nanoOfDay int64
	value     int64
}

// RollingWindow accumulates signed values over a fixed time window measured
// in tick nanoseconds. Eviction happens on Record/Update against the tick
// time, never wall time, so replay stays deterministic.
type RollingWindow struct {
	windowNs int64
	entries  []windowEntry
	head     int
	count    int
	accum    int64
}

// NewRollingWindow builds a window over windowNs with a fixed ring capacity.
// When the ring fills, the oldest entry is evicted early.
func NewRollingWindow(windowNs int64, capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = 16
	}
	return &RollingWindow{
		windowNs: windowNs,
		entries:  make([]windowEntry, capacity),
	}
}

func (w *RollingWindow) evictOldest() {
	w.accum -= w.entries[w.head].value
	w.head = (w.head + 1) % len(w.entries)
	w.count--
}

// Update evicts entries that have aged out as of nanoOfDay.
func (w *RollingWindow) Update(nanoOfDay int64) {
	cutoff := nanoOfDay - w.windowNs
	for w.count > 0 && w.entries[w.head].nanoOfDay <= cutoff {
		w.evictOldest()
	}
}

// Record evicts aged entries then appends a new value.
func (w *RollingWindow) Record(nanoOfDay, value int64) {
	w.Update(nanoOfDay)
	if w.count == len(w.entries) {
		w.evictOldest()
	}
	tail := (w.head + w.count) % len(w.entries)
	w.entries[tail] = windowEntry{nanoOfDay: nanoOfDay, value: value}
	w.count++
	w.accum += value
}

// Accumulated returns the sum of the values currently in the window.
func (w *RollingWindow) Accumulated() int64 { return w.accum }

// Count returns the number of live entries.
func (w *RollingWindow) Count() int { return w.count }

// Clear drops all entries.
func (w *RollingWindow) Clear() {
	w.head = 0
	w.count = 0
	w.accum = 0
}
