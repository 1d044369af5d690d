package signal

import (
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/rs/zerolog/log"
)

// handleAck routes a client acknowledgement to the server-side waiter.
func (ctl *SignalWSController) handleAck(c *WsSignalConn, env core.Envelope) {
	if env.ID == 0 {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("ack without id")
		return
	}
	ctl.Orch.ResolveAck(c.id, env.ID, payload(env))
}
