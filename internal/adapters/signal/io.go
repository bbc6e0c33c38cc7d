package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicerooms/internal/app"
	"github.com/dkeye/voicerooms/internal/domain"
)

func (ctl *SignalWSController) writePump(sid domain.ParticipantID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait))
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump closed")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(
	ctx context.Context,
	cancel context.CancelFunc,
	sid domain.ParticipantID,
	c *WsSignalConn,
	profile Profile,
) {
	defer func() {
		cancel()
		ctl.limiter.Forget(sid)
		ctl.Orch.Disconnect(context.WithoutCancel(ctx), sid)
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
	}()

	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(ctl.settings.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.settings.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		if !ctl.limiter.Allow(sid) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("rate limited")
			ctl.sendError(sid, c, app.CodeRateLimited)
			continue
		}
		ctl.handleSignal(ctx, sid, c, profile, data)
	}
}

func (ctl *SignalWSController) handleSignal(
	ctx context.Context,
	sid domain.ParticipantID,
	c *WsSignalConn,
	profile Profile,
	data []byte,
) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(sid, c, app.CodeBadPayload)
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(ctx, sid, c, profile, data)
	case "signal":
		ctl.handleRelay(ctx, sid, c, data)
	case "kick":
		ctl.handleKick(ctx, sid, c, data)
	case "leave":
		ctl.Orch.Leave(ctx, sid)
	case "whoami":
		ctl.handleWhoAmI(sid, c)
	case "ping":
		ctl.handlePing(sid, c)
	default:
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(sid, c, app.CodeUnknownType)
	}
}

func (ctl *SignalWSController) sendJSON(sid domain.ParticipantID, c *WsSignalConn, v any) {
	if err := app.Send(c, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("sendJSON")
	}
}

func (ctl *SignalWSController) sendError(sid domain.ParticipantID, c *WsSignalConn, code string) {
	ctl.sendJSON(sid, c, app.ErrorFrame(code))
}
