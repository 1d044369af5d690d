package signal

import (
	"context"
	"errors"

	"github.com/dkeye/Boxcall/internal/app"
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/rs/zerolog/log"
)

const messageFailed = "Failed to send message"

// handleMessage forwards the payload to the sender's peers and relays the
// first peer acknowledgement back. The wait runs off the read pump.
func (ctl *SignalWSController) handleMessage(ctx context.Context, c *WsSignalConn, env core.Envelope) {
	topic, ok := ctl.Orch.Topic(c.id)
	if !ok {
		log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("message: not bound, ignored")
		return
	}
	data := payload(env)
	c.tasks.Go(func() {
		reply, err := ctl.Orch.EmitWithAck(ctx, c.id, topic, core.EventMessage, data)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			result := "error"
			switch {
			case errors.Is(err, app.ErrAckTimeout):
				result = "timeout"
			case errors.Is(err, app.ErrNoPeers):
				result = "no_peers"
			}
			ctl.Orch.Metrics.Ack(result)
			log.Info().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("topic", string(topic)).Msg("message not acknowledged")
			ctl.ack(c, env, core.AckReply{Success: false, Message: messageFailed})
			return
		}
		ctl.Orch.Metrics.Ack("ok")
		ctl.Orch.AckRaw(c.id, env.ID, reply)
	})
}
