package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

type connEntry struct {
	Conn        core.SignalConnection
	Participant *domain.Participant
	Cancel      context.CancelFunc
}

// Registry maps live connections to their transport endpoint and, once
// admitted to a room, to their participant identity. It never fails:
// lookups on unknown ids report absence and callers treat that as a no-op.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) BindConn(id domain.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

// BindParticipant records the identity asserted by a successful admission.
// The data is opaque and trusted; no validation happens here.
func (r *Registry) BindParticipant(id domain.ConnID, displayName, externalUserID string, isHost bool) *domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		e = &connEntry{}
		r.conns[id] = e
	}
	e.Participant = &domain.Participant{
		ConnID:         id,
		DisplayName:    displayName,
		ExternalUserID: externalUserID,
		IsHost:         isHost,
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("name", displayName).Bool("host", isHost).Msg("bound participant")
	return e.Participant
}

func (r *Registry) Participant(id domain.ConnID) (*domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok && e.Participant != nil {
		return e.Participant, true
	}
	return nil, false
}

func (r *Registry) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok && e.Conn != nil {
		return e.Conn, true
	}
	return nil, false
}

// ClearParticipant drops the identity binding but keeps the transport
// connection alive, so the client can request a fresh admission later.
func (r *Registry) ClearParticipant(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.Participant = nil
	}
}

func (r *Registry) Unbind(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind connection")
}

func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}
