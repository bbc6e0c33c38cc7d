package core

import (
	"github.com/dkeye/voicerooms/internal/domain"
)

// Change describes one applied membership mutation.
type Change struct {
	RoomID domain.RoomID
	// Members is the roster after the mutation, oldest first.
	Members []Member
	// Subject is the participant that joined or was removed.
	Subject      domain.Participant
	OwnerChanged bool
	Deleted      bool
}

// Participants returns the roster without transport fields.
func (c Change) Participants() []domain.Participant {
	return participantsOf(c.Members)
}

// CommitFunc runs after a mutation is applied and before the room is
// unlocked, so calls for one room observe registry order. It must not block.
type CommitFunc func(Change)

type LeaveResult struct {
	Remaining []domain.Participant
	Removed   domain.ParticipantID
	NewOwner  domain.ParticipantID
	Deleted   bool
}

type RoomInfo struct {
	ID          domain.RoomID        `json:"id"`
	MemberCount int                  `json:"memberCount"`
	OwnerID     domain.ParticipantID `json:"ownerId"`
}

// RoomRegistry is the single source of truth for membership and ownership.
// It never touches transport resources beyond handing them to commit hooks.
type RoomRegistry interface {
	Join(roomID domain.RoomID, p domain.Participant, conn SignalConnection, commit CommitFunc) (domain.Participant, error)
	Leave(roomID domain.RoomID, pid domain.ParticipantID, commit CommitFunc) (LeaveResult, error)
	Snapshot(roomID domain.RoomID) ([]domain.Participant, error)
	Members(roomID domain.RoomID) ([]Member, error)
	IsOwner(roomID domain.RoomID, pid domain.ParticipantID) bool
	List() []RoomInfo
}
