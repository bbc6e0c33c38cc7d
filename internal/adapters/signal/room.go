package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicerooms/internal/app"
	"github.com/dkeye/voicerooms/internal/app/orch"
	"github.com/dkeye/voicerooms/internal/domain"
)

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sid domain.ParticipantID,
	conn *WsSignalConn,
	profile Profile,
	data []byte,
) {
	var p struct {
		RoomID string `json:"roomId"`
		Name   string `json:"name,omitempty"`
		Icon   string `json:"icon,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(sid, conn, app.CodeBadPayload)
		return
	}
	if p.Name == "" {
		p.Name = profile.Name
	}
	if p.Icon == "" {
		p.Icon = profile.Icon
	}

	_, err := ctl.Orch.Join(ctx, sid, domain.RoomID(p.RoomID), p.Name, p.Icon)
	switch {
	case err == nil:
	case errors.Is(err, orch.ErrAlreadyJoined):
		ctl.sendError(sid, conn, app.CodeAlreadyJoined)
	case errors.Is(err, domain.ErrInvalidRoomID):
		ctl.sendError(sid, conn, app.CodeInvalidRoom)
	default:
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("join failed")
	}
}

func (ctl *SignalWSController) handleRelay(
	ctx context.Context,
	sid domain.ParticipantID,
	conn *WsSignalConn,
	data []byte,
) {
	var p struct {
		To      string          `json:"to"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		ctl.sendError(sid, conn, app.CodeBadPayload)
		return
	}
	// Unknown recipients are dropped silently; the relay already logged it.
	if err := ctl.Orch.Signal(ctx, sid, domain.ParticipantID(p.To), p.Payload); errors.Is(err, orch.ErrNotJoined) {
		ctl.sendError(sid, conn, app.CodeNotJoined)
	}
}

func (ctl *SignalWSController) handleKick(
	ctx context.Context,
	sid domain.ParticipantID,
	conn *WsSignalConn,
	data []byte,
) {
	var p struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
		ctl.sendError(sid, conn, app.CodeBadPayload)
		return
	}
	if err := ctl.Orch.Kick(ctx, sid, domain.ParticipantID(p.ID)); errors.Is(err, orch.ErrNotJoined) {
		ctl.sendError(sid, conn, app.CodeNotJoined)
	}
}
