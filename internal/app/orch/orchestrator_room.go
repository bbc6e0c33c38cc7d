package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/voicerooms/internal/app"
	"github.com/dkeye/voicerooms/internal/core"
	"github.com/dkeye/voicerooms/internal/domain"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Join places a connecting participant into roomID and announces it.
func (o *Orchestrator) Join(ctx context.Context, sid domain.ParticipantID, roomID domain.RoomID, name, icon string) (domain.Participant, error) {
	_, span := tracer.Start(ctx, "orch.Join", trace.WithAttributes(
		attribute.String("participant.id", string(sid)),
		attribute.String("room.id", string(roomID)),
	))
	defer span.End()

	if !roomID.Valid() {
		return domain.Participant{}, domain.ErrInvalidRoomID
	}
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	// Joined before the roster goes out: peers react to peer-joined by
	// signaling the newcomer right away.
	if !o.Sessions.MarkJoined(sid, roomID) {
		return domain.Participant{}, ErrAlreadyJoined
	}

	if err := app.Send(sess.Signal, app.YourIDMsg{
		Type:       app.TypeYourID,
		ID:         sid,
		RoomID:     roomID,
		ICEServers: o.ICEServers,
	}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("your-id not delivered")
	}

	p := domain.NewParticipant(sid, name, icon, o.Profile)
	joined, err := o.Rooms.Join(roomID, p, sess.Signal, func(ch core.Change) {
		o.Presence.BroadcastRoster(ch)
		o.Presence.AnnounceJoin(ch, ch.Subject)
	})
	if err != nil {
		o.Sessions.Transition(sid, app.StateConnecting, app.StateJoined)
		span.RecordError(err)
		return domain.Participant{}, fmt.Errorf("join %s: %w", roomID, err)
	}

	if cur, ok := o.Sessions.Get(sid); !ok || cur.State != app.StateJoined {
		// Removed while the membership was being added; undo it.
		o.depart(sid, roomID)
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	span.SetAttributes(attribute.Bool("room.owner", joined.IsOwner))
	log.Info().
		Str("module", "orch").
		Str("sid", string(sid)).
		Str("room", string(roomID)).
		Str("name", joined.DisplayName).
		Bool("owner", joined.IsOwner).
		Msg("joined")
	return joined, nil
}

// Leave is a voluntary departure requested by the participant itself.
// Queued frames are flushed before the transport closes.
func (o *Orchestrator) Leave(ctx context.Context, sid domain.ParticipantID) {
	_, span := tracer.Start(ctx, "orch.Leave", trace.WithAttributes(
		attribute.String("participant.id", string(sid)),
	))
	defer span.End()

	prev, ok := o.Sessions.Transition(sid, app.StateLeaving, app.StateJoined)
	if !ok {
		return
	}
	o.depart(sid, prev.RoomID)
	o.gone(sid)
	if prev.Signal != nil {
		prev.Signal.Close()
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(prev.RoomID)).Msg("left")
}

// Kick removes target from the kicker's room. Only the current owner may
// kick, and never itself; anything else is a no-op reported as an error
// for logging only.
func (o *Orchestrator) Kick(ctx context.Context, kicker, target domain.ParticipantID) error {
	_, span := tracer.Start(ctx, "orch.Kick", trace.WithAttributes(
		attribute.String("participant.id", string(kicker)),
		attribute.String("kick.target", string(target)),
	))
	defer span.End()

	err := o.kick(kicker, target)
	if err != nil {
		span.RecordError(err)
		log.Info().
			Err(err).
			Str("module", "orch").
			Str("sid", string(kicker)).
			Str("target", string(target)).
			Msg("kick ignored")
	}
	return err
}

func (o *Orchestrator) kick(kicker, target domain.ParticipantID) error {
	ks, ok := o.Sessions.Get(kicker)
	if !ok || ks.State != app.StateJoined {
		return ErrNotJoined
	}
	if kicker == target || !o.Rooms.IsOwner(ks.RoomID, kicker) {
		return domain.ErrUnauthorized
	}
	ts, ok := o.Sessions.Get(target)
	if !ok || ts.RoomID != ks.RoomID {
		return domain.ErrParticipantNotFound
	}
	prev, ok := o.Sessions.Transition(target, app.StateKicked, app.StateJoined)
	if !ok {
		return domain.ErrParticipantNotFound
	}

	// The kicked frame is queued ahead of the close, so the transport
	// delivers it before tearing down.
	if err := app.Send(prev.Signal, app.KickedMsg()); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(target)).Msg("kicked notice not delivered")
	}
	if prev.Signal != nil {
		prev.Signal.Close()
	}
	o.depart(target, prev.RoomID)
	o.gone(target)
	log.Info().
		Str("module", "orch").
		Str("sid", string(kicker)).
		Str("target", string(target)).
		Str("room", string(prev.RoomID)).
		Msg("kicked")
	return nil
}

// Disconnect handles transport loss. Other members cannot tell it apart
// from a voluntary leave. Duplicate notifications are no-ops.
func (o *Orchestrator) Disconnect(ctx context.Context, sid domain.ParticipantID) {
	_, span := tracer.Start(ctx, "orch.Disconnect", trace.WithAttributes(
		attribute.String("participant.id", string(sid)),
	))
	defer span.End()

	prev, ok := o.Sessions.Transition(sid, app.StateDisconnected, app.StateJoined, app.StateConnecting)
	if !ok {
		// Leaving, kicked or already gone: someone else owns the cleanup.
		return
	}
	if prev.State == app.StateJoined {
		o.depart(sid, prev.RoomID)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(prev.RoomID)).Msg("disconnected")
	}
	o.Sessions.Cancel(sid)
	o.gone(sid)
	if prev.Signal != nil {
		prev.Signal.Close()
	}
}

// depart runs the shared registry + broadcast sequence for every way out.
func (o *Orchestrator) depart(sid domain.ParticipantID, roomID domain.RoomID) {
	_, err := o.Rooms.Leave(roomID, sid, func(ch core.Change) {
		o.Presence.BroadcastRoster(ch)
		o.Presence.AnnounceDeparture(ch, sid)
	})
	if err != nil && !errors.Is(err, domain.ErrParticipantNotFound) && !errors.Is(err, domain.ErrRoomNotFound) {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("leave failed")
		return
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("already removed")
	}
}

func (o *Orchestrator) gone(sid domain.ParticipantID) (app.Session, bool) {
	return o.Sessions.Unbind(sid)
}

// WhoAmI describes the caller's identity and current room.
func (o *Orchestrator) WhoAmI(sid domain.ParticipantID) (app.WhoAmIMsg, error) {
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		return app.WhoAmIMsg{}, domain.ErrParticipantNotFound
	}
	resp := app.WhoAmIMsg{Type: app.TypeWhoAmI, ID: sid}
	if sess.State != app.StateJoined {
		return resp, nil
	}
	resp.RoomID = sess.RoomID
	if members, err := o.Rooms.Snapshot(sess.RoomID); err == nil {
		resp.Members = app.RosterOf(members)
	}
	return resp, nil
}

// EvictRoom kicks every member of a room on behalf of an operator,
// newest first so ownership does not bounce around on the way out.
func (o *Orchestrator) EvictRoom(ctx context.Context, roomID domain.RoomID) (int, error) {
	_, span := tracer.Start(ctx, "orch.EvictRoom", trace.WithAttributes(
		attribute.String("room.id", string(roomID)),
	))
	defer span.End()

	members, err := o.Rooms.Snapshot(roomID)
	if err != nil {
		return 0, err
	}
	evicted := 0
	for i := len(members) - 1; i >= 0; i-- {
		pid := members[i].ID
		prev, ok := o.Sessions.Transition(pid, app.StateKicked, app.StateJoined)
		if !ok {
			continue
		}
		if err := app.Send(prev.Signal, app.KickedMsg()); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("sid", string(pid)).Msg("kicked notice not delivered")
		}
		if prev.Signal != nil {
			prev.Signal.Close()
		}
		o.depart(pid, prev.RoomID)
		o.gone(pid)
		evicted++
	}
	log.Info().Str("module", "orch").Str("room", string(roomID)).Int("evicted", evicted).Msg("room evicted")
	return evicted, nil
}
