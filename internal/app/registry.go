package app

import (
	"context"
	"slices"
	"sync"

	"github.com/dkeye/voicerooms/internal/core"
	"github.com/dkeye/voicerooms/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	State  State
	RoomID domain.RoomID
	Signal core.SignalConnection
	Cancel context.CancelFunc
}

// Session is a point-in-time copy of a registry entry.
type Session struct {
	ID     domain.ParticipantID
	State  State
	RoomID domain.RoomID
	Signal core.SignalConnection
}

// Registry maps live participant ids to their transport and lifecycle
// state. An id leaves the registry when its session reaches StateGone.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ParticipantID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ParticipantID]*sessionEntry)}
}

func (r *Registry) Bind(sid domain.ParticipantID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{State: StateConnecting, Signal: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

func (r *Registry) Get(sid domain.ParticipantID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return Session{}, false
	}
	return e.snapshot(sid), true
}

// MarkJoined moves a connecting session into roomID.
func (r *Registry) MarkJoined(sid domain.ParticipantID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.State != StateConnecting {
		return false
	}
	e.State = StateJoined
	e.RoomID = roomID
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Msg("joined room")
	return true
}

// Transition sets the session to `to` only when its current state is one of
// `from`. It reports the session as it was before the change.
func (r *Registry) Transition(sid domain.ParticipantID, to State, from ...State) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || !slices.Contains(from, e.State) {
		return Session{}, false
	}
	prev := e.snapshot(sid)
	e.State = to
	log.Debug().
		Str("module", "app.registry").
		Str("sid", string(sid)).
		Stringer("from", prev.State).
		Stringer("to", to).
		Msg("state transition")
	return prev, true
}

// Unbind drops the session; it is Gone from then on. Repeated calls are no-ops.
func (r *Registry) Unbind(sid domain.ParticipantID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return e.snapshot(sid), true
}

func (r *Registry) Cancel(sid domain.ParticipantID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (e *sessionEntry) snapshot(sid domain.ParticipantID) Session {
	return Session{ID: sid, State: e.State, RoomID: e.RoomID, Signal: e.Signal}
}
