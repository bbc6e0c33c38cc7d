package core

import (
	"sync"

	"github.com/dkeye/voicerooms/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry implements RoomRegistry. The map lock only guards room lookup,
// insertion and deletion; membership changes serialize on the room's own
// lock, so unrelated rooms never contend. Lock order is room -> registry.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*room)}
}

var _ RoomRegistry = (*Registry)(nil)

func (r *Registry) getOrCreate(id domain.RoomID) *room {
	r.mu.RLock()
	rm, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return rm
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok = r.rooms[id]; ok {
		return rm
	}
	rm = newRoom(id)
	r.rooms[id] = rm
	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room created")
	return rm
}

func (r *Registry) get(id domain.RoomID) (*room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[id]
	return rm, ok
}

func (r *Registry) Join(
	roomID domain.RoomID,
	p domain.Participant,
	conn SignalConnection,
	commit CommitFunc,
) (domain.Participant, error) {
	if !roomID.Valid() {
		return domain.Participant{}, domain.ErrInvalidRoomID
	}
	for {
		rm := r.getOrCreate(roomID)
		rm.mu.Lock()
		if rm.dead {
			// Emptied between lookup and lock; it is already out of the map.
			rm.mu.Unlock()
			continue
		}
		joined := rm.add(p, conn)
		if commit != nil {
			commit(Change{RoomID: roomID, Members: rm.snapshot(), Subject: joined})
		}
		rm.mu.Unlock()

		log.Info().
			Str("module", "core.registry").
			Str("room", string(roomID)).
			Str("sid", string(joined.ID)).
			Bool("owner", joined.IsOwner).
			Msg("member added")
		return joined, nil
	}
}

func (r *Registry) Leave(
	roomID domain.RoomID,
	pid domain.ParticipantID,
	commit CommitFunc,
) (LeaveResult, error) {
	rm, ok := r.get(roomID)
	if !ok {
		return LeaveResult{}, domain.ErrRoomNotFound
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.dead {
		return LeaveResult{}, domain.ErrRoomNotFound
	}
	removed, ownerChanged, ok := rm.remove(pid)
	if !ok {
		return LeaveResult{}, domain.ErrParticipantNotFound
	}

	res := LeaveResult{Removed: pid}
	if ownerChanged {
		res.NewOwner = rm.ownerID
	}
	if len(rm.members) == 0 {
		rm.dead = true
		r.mu.Lock()
		if r.rooms[roomID] == rm {
			delete(r.rooms, roomID)
		}
		r.mu.Unlock()
		res.Deleted = true
	}
	members := rm.snapshot()
	res.Remaining = participantsOf(members)

	if commit != nil {
		commit(Change{
			RoomID:       roomID,
			Members:      members,
			Subject:      removed.Participant,
			OwnerChanged: ownerChanged,
			Deleted:      res.Deleted,
		})
	}

	ev := log.Info().
		Str("module", "core.registry").
		Str("room", string(roomID)).
		Str("sid", string(pid)).
		Int("remaining", len(members))
	if ownerChanged {
		ev = ev.Str("new_owner", string(res.NewOwner))
	}
	if res.Deleted {
		ev = ev.Bool("room_deleted", true)
	}
	ev.Msg("member removed")
	return res, nil
}

// Snapshot reflects registry state at call time, not a live view.
func (r *Registry) Snapshot(roomID domain.RoomID) ([]domain.Participant, error) {
	members, err := r.Members(roomID)
	if err != nil {
		return nil, err
	}
	return participantsOf(members), nil
}

func (r *Registry) Members(roomID domain.RoomID) ([]Member, error) {
	rm, ok := r.get(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.dead {
		return nil, domain.ErrRoomNotFound
	}
	return rm.snapshot(), nil
}

func (r *Registry) IsOwner(roomID domain.RoomID, pid domain.ParticipantID) bool {
	if pid == "" {
		return false
	}
	rm, ok := r.get(roomID)
	if !ok {
		return false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return !rm.dead && rm.ownerID == pid
}

func (r *Registry) List() []RoomInfo {
	r.mu.RLock()
	rooms := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, rm := range rooms {
		rm.mu.Lock()
		if !rm.dead {
			out = append(out, RoomInfo{ID: rm.id, MemberCount: len(rm.members), OwnerID: rm.ownerID})
		}
		rm.mu.Unlock()
	}
	return out
}
