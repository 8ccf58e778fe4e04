package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsTask(t *testing.T) {
	s := NewScheduler()
	done := make(chan struct{})

	s.Schedule(TaskKey{ConnID: "a", RoomID: "r1"}, time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	assert.Equal(t, 0, s.Len(), "finished task must be forgotten")
}

func TestSchedulerCancelPreventsRun(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)

	key := TaskKey{ConnID: "a", RoomID: "r1"}
	s.Schedule(key, 20*time.Millisecond, func() { ran <- struct{}{} })
	require.True(t, s.Cancel(key))
	assert.False(t, s.Cancel(key), "second cancel is a no-op")

	select {
	case <-ran:
		t.Fatal("cancelled task ran anyway")
	case <-time.After(60 * time.Millisecond):
	}
	assert.Equal(t, 0, s.Len())
}

// Scheduling the same key twice keeps only the replacement.
func TestSchedulerReplacesByKey(t *testing.T) {
	s := NewScheduler()
	got := make(chan int, 2)

	key := TaskKey{ConnID: "a", RoomID: "r1"}
	s.Schedule(key, 20*time.Millisecond, func() { got <- 1 })
	s.Schedule(key, time.Millisecond, func() { got <- 2 })

	select {
	case v := <-got:
		assert.Equal(t, 2, v)
	case <-time.After(time.Second):
		t.Fatal("replacement task never ran")
	}

	select {
	case <-got:
		t.Fatal("replaced task ran anyway")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestSchedulerCancelConn(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 3)

	s.Schedule(TaskKey{ConnID: "a", RoomID: "r1"}, 20*time.Millisecond, func() { ran <- struct{}{} })
	s.Schedule(TaskKey{ConnID: "a", RoomID: "r2"}, 20*time.Millisecond, func() { ran <- struct{}{} })
	s.Schedule(TaskKey{ConnID: "b", RoomID: "r1"}, time.Millisecond, func() { ran <- struct{}{} })

	assert.Equal(t, 2, s.CancelConn("a"))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("unrelated task never ran")
	}

	select {
	case <-ran:
		t.Fatal("cancelled task ran anyway")
	case <-time.After(60 * time.Millisecond):
	}
}
