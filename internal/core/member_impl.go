package core

import "github.com/dkeye/voicerooms/internal/domain"

// Member binds a participant and its transport endpoint.
// This is what a room stores and fans out to.
type Member struct {
	Participant domain.Participant
	Signal      SignalConnection
}

func participantsOf(members []Member) []domain.Participant {
	out := make([]domain.Participant, len(members))
	for i, m := range members {
		out[i] = m.Participant
	}
	return out
}
