package signal

import (
	"context"

	"github.com/dkeye/Boxcall/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleFind(_ context.Context, c *WsSignalConn, env core.Envelope) {
	device, err := decodeString(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	if err := ctl.Orch.Find(c.id, device); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("device", device).Msg("find rejected")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("device", device).Msg("device online")
}

func (ctl *SignalWSController) handleWatch(_ context.Context, c *WsSignalConn, env core.Envelope) {
	device, err := decodeString(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	if err := ctl.Orch.Watch(c.id, device); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("device", device).Msg("watch")
	}
}

func (ctl *SignalWSController) handleBoxconf(_ context.Context, c *WsSignalConn, env core.Envelope) {
	device, err := decodeString(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	ctl.ack(c, env, ctl.Orch.Boxconf(c.id, device))
}

func (ctl *SignalWSController) handleUnset(_ context.Context, c *WsSignalConn, env core.Envelope) {
	device, err := decodeString(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	ctl.ack(c, env, ctl.Orch.Unset(c.id, device))
}

func (ctl *SignalWSController) handleCheckbox(_ context.Context, c *WsSignalConn, env core.Envelope) {
	requested, err := decodeStrings(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	ctl.ack(c, env, core.AckReply{Success: true, Message: ctl.Orch.CheckBox(requested)})
}

func (ctl *SignalWSController) handleCheckdev(_ context.Context, c *WsSignalConn, env core.Envelope) {
	requested, err := decodeStrings(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	if len(requested) == 0 {
		return
	}
	ctl.Orch.Emit(c.id, core.EventOnlineDev, ctl.Orch.CheckDev(requested))
}
