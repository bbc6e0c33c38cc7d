package orch

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dkeye/voicerooms/internal/app"
	"github.com/dkeye/voicerooms/internal/core"
	"github.com/dkeye/voicerooms/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotJoined     = errors.New("not joined")
)

var tracer = otel.Tracer("github.com/dkeye/voicerooms/internal/app/orch")

// Orchestrator drives the per-participant lifecycle:
// Connecting -> Joined -> (Leaving | Kicked | Disconnected) -> Gone.
type Orchestrator struct {
	Sessions   *app.Registry
	Rooms      core.RoomRegistry
	Presence   *app.Presence
	Relay      *app.Relay
	Profile    domain.Profile
	ICEServers []webrtc.ICEServer
}

// Connect registers a freshly upgraded transport and mints its identity.
func (o *Orchestrator) Connect(conn core.SignalConnection, cancel context.CancelFunc) domain.ParticipantID {
	sid := domain.NewParticipantID()
	o.Sessions.Bind(sid, conn, cancel)
	return sid
}

// Signal relays an opaque payload from sid to another participant.
func (o *Orchestrator) Signal(ctx context.Context, sid, to domain.ParticipantID, payload json.RawMessage) error {
	_, span := tracer.Start(ctx, "orch.Signal", trace.WithAttributes(
		attribute.String("participant.id", string(sid)),
		attribute.String("signal.to", string(to)),
	))
	defer span.End()

	sess, ok := o.Sessions.Get(sid)
	if !ok || sess.State != app.StateJoined {
		return ErrNotJoined
	}
	err := o.Relay.Relay(app.SignalMessage{From: sid, To: to, Payload: payload})
	if err != nil {
		log.Debug().
			Err(err).
			Str("module", "orch").
			Str("sid", string(sid)).
			Str("to", string(to)).
			Msg("signal dropped")
		span.RecordError(err)
	}
	return err
}
