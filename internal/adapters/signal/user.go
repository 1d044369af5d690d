package signal

import (
	"context"

	"github.com/dkeye/Boxcall/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleIdentify(_ context.Context, c *WsSignalConn, env core.Envelope) {
	name, err := decodeString(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	if err := ctl.Orch.Identify(c.id, name); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("user", name).Msg("identify rejected")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("user", name).Msg("identify")
}

func (ctl *SignalWSController) handleSignout(_ context.Context, c *WsSignalConn, _ core.Envelope) {
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("signout")
	ctl.Orch.Signout(c.id)
}

func (ctl *SignalWSController) handleFetchAllUsers(_ context.Context, c *WsSignalConn, _ core.Envelope) {
	ctl.Orch.RefreshUsers(c.id)
}

func (ctl *SignalWSController) handleWhoAmI(_ context.Context, c *WsSignalConn, _ core.Envelope) {
	ctl.Orch.Emit(c.id, core.EventWhoAmI, ctl.Orch.WhoAmI(c.id))
}
