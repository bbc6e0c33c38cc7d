package app

import (
	"github.com/dkeye/voicerooms/internal/core"
	"github.com/dkeye/voicerooms/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence fans membership changes out to the members of a room.
// Its methods are meant to run inside a registry commit hook, so frames
// for one room are enqueued in the order the changes were applied.
type Presence struct {
	Policy Policy
}

// BroadcastRoster sends the full roster to every member, including the
// one who triggered the change.
func (p *Presence) BroadcastRoster(ch core.Change) {
	if len(ch.Members) == 0 {
		return
	}
	f, err := Encode(RosterMsg{Type: TypeRoster, RoomID: ch.RoomID, Members: RosterOf(ch.Participants())})
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("roster encode")
		return
	}
	p.fanout(ch, "", f, TypeRoster)
}

// AnnounceJoin tells existing members about who, excluding who itself.
func (p *Presence) AnnounceJoin(ch core.Change, who domain.Participant) {
	f, err := Encode(PeerJoinedMsg{Type: TypePeerJoined, ID: who.ID, Name: who.DisplayName, Icon: who.Icon})
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("peer-joined encode")
		return
	}
	p.fanout(ch, who.ID, f, TypePeerJoined)
}

// AnnounceDeparture tells the remaining members that pid is gone.
func (p *Presence) AnnounceDeparture(ch core.Change, pid domain.ParticipantID) {
	f, err := Encode(PeerLeftMsg{Type: TypePeerLeft, ID: pid})
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("peer-left encode")
		return
	}
	p.fanout(ch, pid, f, TypePeerLeft)
}

func (p *Presence) fanout(ch core.Change, skip domain.ParticipantID, f core.Frame, kind string) {
	sent, dropped := 0, 0
	for _, m := range ch.Members {
		if m.Participant.ID == skip {
			continue
		}
		if err := deliver(p.Policy, m.Participant.ID, m.Signal, f); err != nil {
			dropped++
			log.Warn().
				Err(err).
				Str("module", "app.presence").
				Str("room", string(ch.RoomID)).
				Str("sid", string(m.Participant.ID)).
				Str("kind", kind).
				Msg("presence frame dropped")
			continue
		}
		sent++
	}
	log.Debug().
		Str("module", "app.presence").
		Str("room", string(ch.RoomID)).
		Str("kind", kind).
		Int("sent_to", sent).
		Int("dropped", dropped).
		Msg("broadcast result")
}
