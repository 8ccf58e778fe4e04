package app

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

// fakeConn captures frames instead of writing to a websocket.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func TestRegistryBindAndLookup(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}

	r.BindConn("c1", conn, nil)
	got, ok := r.Conn("c1")
	require.True(t, ok)
	assert.Same(t, conn, got.(*fakeConn))

	_, ok = r.Participant("c1")
	assert.False(t, ok, "no participant bound yet")

	p := r.BindParticipant("c1", "alice", "u-1", true)
	require.NotNil(t, p)

	got2, ok := r.Participant("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", got2.DisplayName)
	assert.Equal(t, "u-1", got2.ExternalUserID)
	assert.True(t, got2.IsHost)
}

func TestRegistryLookupUnknownIsAbsent(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Participant("nope")
	assert.False(t, ok)
	_, ok = r.Conn("nope")
	assert.False(t, ok)
	assert.False(t, r.Cancel("nope"))
}

func TestRegistryClearParticipantKeepsConn(t *testing.T) {
	r := NewRegistry()
	r.BindConn("c1", &fakeConn{}, nil)
	r.BindParticipant("c1", "bob", "u-2", false)

	r.ClearParticipant("c1")

	_, ok := r.Participant("c1")
	assert.False(t, ok)
	_, ok = r.Conn("c1")
	assert.True(t, ok, "transport binding must survive identity clear")
}

func TestRegistryUnbind(t *testing.T) {
	r := NewRegistry()
	canceled := false
	r.BindConn("c1", &fakeConn{}, func() { canceled = true })
	r.BindParticipant("c1", "bob", "u-2", false)

	assert.True(t, r.Cancel("c1"))
	assert.True(t, canceled)

	r.Unbind("c1")
	_, ok := r.Conn("c1")
	assert.False(t, ok)
	_, ok = r.Participant("c1")
	assert.False(t, ok)
}

// BindParticipant without a prior connection still records identity; the
// coordinator is usable without a live transport in tests.
func TestRegistryParticipantWithoutConn(t *testing.T) {
	r := NewRegistry()
	r.BindParticipant("c9", "eve", "u-9", false)

	p, ok := r.Participant("c9")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("c9"), p.ConnID)
	_, ok = r.Conn("c9")
	assert.False(t, ok)
}
