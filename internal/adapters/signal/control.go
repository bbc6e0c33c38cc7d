package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicerooms/internal/app"
	"github.com/dkeye/voicerooms/internal/domain"
)

func (ctl *SignalWSController) handlePing(sid domain.ParticipantID, conn *WsSignalConn) {
	ctl.sendJSON(sid, conn, app.PongMsg())
}

func (ctl *SignalWSController) handleWhoAmI(sid domain.ParticipantID, conn *WsSignalConn) {
	resp, err := ctl.Orch.WhoAmI(sid)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("whoami")
		return
	}
	ctl.sendJSON(sid, conn, resp)
}
