package core

import (
	"sync"

	"github.com/dkeye/voicerooms/internal/domain"
)

// room is a threadsafe in-memory room.
// members keeps join order; the first element is the oldest member.
type room struct {
	id      domain.RoomID
	mu      sync.Mutex
	members []Member
	ownerID domain.ParticipantID
	// dead is set once the last member left; the value must not be reused.
	dead bool
}

func newRoom(id domain.RoomID) *room {
	return &room{id: id}
}

// add must be called with mu held.
func (r *room) add(p domain.Participant, conn SignalConnection) domain.Participant {
	p.IsOwner = len(r.members) == 0
	if p.IsOwner {
		r.ownerID = p.ID
	}
	r.members = append(r.members, Member{Participant: p, Signal: conn})
	return p
}

// remove must be called with mu held. When the owner leaves, ownership
// passes to the oldest remaining member.
func (r *room) remove(pid domain.ParticipantID) (removed Member, ownerChanged bool, ok bool) {
	idx := r.indexOf(pid)
	if idx < 0 {
		return Member{}, false, false
	}
	removed = r.members[idx]
	r.members = append(r.members[:idx:idx], r.members[idx+1:]...)

	if r.ownerID != pid {
		return removed, false, true
	}
	if len(r.members) == 0 {
		r.ownerID = ""
		return removed, false, true
	}
	r.members[0].Participant.IsOwner = true
	r.ownerID = r.members[0].Participant.ID
	return removed, true, true
}

func (r *room) indexOf(pid domain.ParticipantID) int {
	for i, m := range r.members {
		if m.Participant.ID == pid {
			return i
		}
	}
	return -1
}

// snapshot must be called with mu held.
func (r *room) snapshot() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}
