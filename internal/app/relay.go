package app

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/voicerooms/internal/domain"
	"github.com/rs/zerolog/log"
)

// SignalMessage is an opaque negotiation payload addressed to one participant.
// From is always the sender's connection identity, never client supplied.
type SignalMessage struct {
	From    domain.ParticipantID
	To      domain.ParticipantID
	Payload json.RawMessage
}

// Relay forwards signaling payloads between live participants. Delivery is
// best effort: a recipient that is gone or cannot keep up loses the message.
type Relay struct {
	Sessions *Registry
	Policy   Policy
}

func (r *Relay) Relay(msg SignalMessage) error {
	dst, ok := r.Sessions.Get(msg.To)
	if !ok || dst.State != StateJoined {
		return fmt.Errorf("relay to %s: %w", msg.To, domain.ErrParticipantNotFound)
	}
	f, err := EncodeSignal(msg.From, msg.Payload)
	if err != nil {
		return fmt.Errorf("relay to %s: %w", msg.To, err)
	}
	if err := deliver(r.Policy, msg.To, dst.Signal, f); err != nil {
		return fmt.Errorf("relay to %s: %w", msg.To, err)
	}
	log.Debug().
		Str("module", "app.relay").
		Str("from", string(msg.From)).
		Str("to", string(msg.To)).
		Int("bytes", len(msg.Payload)).
		Msg("signal relayed")
	return nil
}
