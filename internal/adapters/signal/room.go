package signal

import (
	"context"
	"errors"

	"github.com/dkeye/Boxcall/internal/app/orch"
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) relay(c *WsSignalConn, env core.Envelope, event string, data any, includeSelf bool) {
	if err := ctl.Orch.Relay(c.id, event, data, includeSelf); err != nil {
		logUnbound(c, env, err)
	}
}

func logUnbound(c *WsSignalConn, env core.Envelope, err error) {
	if errors.Is(err, orch.ErrNotBound) {
		log.Debug().Str("module", "signal").Str("conn", string(c.id)).Str("event", env.Type).Msg("not bound, ignored")
		return
	}
	log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("event", env.Type).Msg("relay failed")
}

func (ctl *SignalWSController) handleHeartbeat(_ context.Context, c *WsSignalConn, env core.Envelope) {
	ctl.relay(c, env, core.EventHeartbeatPong, nil, true)
}

func (ctl *SignalWSController) handleAuth(_ context.Context, c *WsSignalConn, env core.Envelope) {
	ctl.relay(c, env, core.EventApprove, c.id, false)
}

func (ctl *SignalWSController) handleAccept(_ context.Context, c *WsSignalConn, env core.Envelope) {
	ctl.relay(c, env, core.EventBridge, payload(env), true)
}

func (ctl *SignalWSController) handleHang(_ context.Context, c *WsSignalConn, env core.Envelope) {
	ctl.relay(c, env, core.EventHangup, payload(env), false)
}

func (ctl *SignalWSController) handleReject(_ context.Context, c *WsSignalConn, env core.Envelope) {
	ctl.relay(c, env, core.EventFull, nil, false)
}

func (ctl *SignalWSController) handleLeave(_ context.Context, c *WsSignalConn, env core.Envelope) {
	device, err := decodeString(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	if !ctl.Orch.Unbind(c.id, domain.TopicName(device)) {
		log.Debug().Str("module", "signal").Str("conn", string(c.id)).Str("device", device).Msg("leave: not a member")
	}
}

func (ctl *SignalWSController) handleSpeakerID(_ context.Context, c *WsSignalConn, env core.Envelope) {
	speaker, err := decodeString(env)
	if err != nil {
		logBadPayload(c, err)
		return
	}
	out, err := ctl.Orch.SetSpeaker(c.id, speaker)
	if err != nil {
		logUnbound(c, env, err)
		return
	}
	if env.ID != 0 {
		ctl.ack(c, env, out.Reply())
		return
	}
	if !out.Claimed && !out.Released {
		ctl.Orch.Emit(c.id, core.EventSpeakerBusy, out.Holder)
	}
}

func (ctl *SignalWSController) handleSpeech(_ context.Context, c *WsSignalConn, env core.Envelope) {
	if err := ctl.Orch.Speech(c.id, payload(env)); err != nil {
		logUnbound(c, env, err)
		return
	}
	ctl.ack(c, env, core.AckReply{Success: false, Message: "Failed"})
}
