package trigger

import "sort"

// Task runs when its deadline passes on the tick clock.
type Task func(scheduleID, nanoOfDay int64)

// Scheduler arms tasks against absolute nano-of-day deadlines. There is no
// wall clock anywhere; the owner advances it from tick timestamps so replay
// stays deterministic.
type Scheduler interface {
	ScheduleAt(nanoOfDay int64, task Task) int64
	Cancel(scheduleID int64)
}

type scheduled struct {
	id        int64
	nanoOfDay int64
	task      Task
}

// TickScheduler is the sorted-deadline implementation driven by Advance.
type TickScheduler struct {
	nextID  int64
	pending []scheduled
}

// NewTickScheduler returns an empty scheduler.
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{nextID: 1}
}

func (s *TickScheduler) ScheduleAt(nanoOfDay int64, task Task) int64 {
	id := s.nextID
	s.nextID++
	s.pending = append(s.pending, scheduled{id: id, nanoOfDay: nanoOfDay, task: task})
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].nanoOfDay < s.pending[j].nanoOfDay
	})
	return id
}

func (s *TickScheduler) Cancel(scheduleID int64) {
	for i, p := range s.pending {
		if p.id == scheduleID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Advance fires every task whose deadline is at or before nanoOfDay, in
// deadline order.
func (s *TickScheduler) Advance(nanoOfDay int64) {
	for len(s.pending) > 0 && s.pending[0].nanoOfDay <= nanoOfDay {
		p := s.pending[0]
		s.pending = s.pending[1:]
		p.task(p.id, p.nanoOfDay)
	}
}
