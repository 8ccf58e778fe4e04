package app

import (
	"sync"
	"time"

	"github.com/codehuddle/codehuddle/internal/domain"
)

// TaskKey names one deferred task. At most one task exists per
// (connection, room) pair; scheduling again replaces the previous one.
type TaskKey struct {
	ConnID domain.ConnID
	RoomID domain.RoomID
}

// Scheduler runs named, cancellable deferred work. It replaces ad-hoc
// sleeps for eventual-consistency re-checks: callers can assert on
// scheduling and cancellation instead of racing a magic delay.
type Scheduler struct {
	mu     sync.Mutex
	timers map[TaskKey]*time.Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[TaskKey]*time.Timer)}
}

func (s *Scheduler) Schedule(key TaskKey, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

func (s *Scheduler) Cancel(key TaskKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, key)
	return true
}

// CancelConn drops every task scheduled for the connection, across rooms.
func (s *Scheduler) CancelConn(id domain.ConnID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, t := range s.timers {
		if key.ConnID == id {
			t.Stop()
			delete(s.timers, key)
			n++
		}
	}
	return n
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
