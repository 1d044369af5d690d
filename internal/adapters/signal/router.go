package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/dkeye/Boxcall/internal/core"
	"github.com/rs/zerolog/log"
)

var errBadPayload = errors.New("bad payload")

type handlerFunc func(ctx context.Context, c *WsSignalConn, env core.Envelope)

func (ctl *SignalWSController) newRouter() map[string]handlerFunc {
	return map[string]handlerFunc{
		core.EventIdentify:      ctl.handleIdentify,
		core.EventSignout:       ctl.handleSignout,
		core.EventFetchAllUsers: ctl.handleFetchAllUsers,
		core.EventFind:          ctl.handleFind,
		core.EventWatch:         ctl.handleWatch,
		core.EventBoxconf:       ctl.handleBoxconf,
		core.EventUnset:         ctl.handleUnset,
		core.EventCheckbox:      ctl.handleCheckbox,
		core.EventCheckdev:      ctl.handleCheckdev,
		core.EventHeartbeatPing: ctl.handleHeartbeat,
		core.EventSpeakerID:     ctl.handleSpeakerID,
		core.EventMessage:       ctl.handleMessage,
		core.EventAuth:          ctl.handleAuth,
		core.EventAccept:        ctl.handleAccept,
		core.EventHang:          ctl.handleHang,
		core.EventLeave:         ctl.handleLeave,
		core.EventSpeech:        ctl.handleSpeech,
		core.EventReject:        ctl.handleReject,
		core.EventWhoAmI:        ctl.handleWhoAmI,
	}
}

// dispatch runs the handler for env. A panicking handler is logged and the
// connection stays open.
func (ctl *SignalWSController) dispatch(ctx context.Context, c *WsSignalConn, env core.Envelope) {
	h, ok := ctl.routes[env.Type]
	if !ok {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Str("event", env.Type).Msg("unknown signal")
		return
	}
	ctl.Orch.Metrics.Event(env.Type)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("conn", string(c.id)).Str("event", env.Type).
				Str("panic", fmt.Sprint(r)).Bytes("stack", debug.Stack()).Msg("handler panic")
		}
	}()
	h(ctx, c, env)
}

func decodeString(env core.Envelope) (string, error) {
	var s string
	if err := json.Unmarshal(env.Data, &s); err != nil {
		return "", fmt.Errorf("%s: %w", env.Type, errBadPayload)
	}
	return s, nil
}

func decodeStrings(env core.Envelope) ([]string, error) {
	if len(env.Data) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", env.Type, errBadPayload)
	}
	return out, nil
}

// payload returns the raw event data, JSON null when absent.
func payload(env core.Envelope) json.RawMessage {
	if len(env.Data) == 0 {
		return json.RawMessage("null")
	}
	return env.Data
}

func (ctl *SignalWSController) ack(c *WsSignalConn, env core.Envelope, reply core.AckReply) {
	ctl.Orch.Ack(c.id, env.ID, reply)
}

func logBadPayload(c *WsSignalConn, err error) {
	log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("malformed payload")
}
