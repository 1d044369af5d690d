package orch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Boxcall/internal/app"
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/dkeye/Boxcall/internal/metrics"
	"github.com/rs/zerolog/log"
)

const DefaultAckTimeout = 5 * time.Second

var (
	ErrUnknownConn   = errors.New("unknown connection")
	ErrUnknownDevice = errors.New("unknown device")
	ErrNotBound      = errors.New("connection not bound to a topic")
	ErrRoleConflict  = errors.New("connection already registered with another role")
)

// Orchestrator owns every piece of shared coordinator state and is the only
// place that mutates more than one store for a single event.
type Orchestrator struct {
	Registry    *app.Registry
	Rooms       core.RoomManager
	Users       *app.Presence
	Devices     *app.Presence
	Memberships *app.Memberships
	Speakers    *app.SpeakerArbiter
	Acks        *app.AckTracker
	Policy      app.Policy
	Metrics     *metrics.Metrics
	AckTimeout  time.Duration
}

func New(policy app.Policy, m *metrics.Metrics, ackTimeout time.Duration) *Orchestrator {
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}
	if policy == nil {
		policy = app.DropPolicy{}
	}
	return &Orchestrator{
		Registry:    app.NewRegistry(),
		Rooms:       app.NewRoomManager(),
		Users:       app.NewPresence("user"),
		Devices:     app.NewPresence("device"),
		Memberships: app.NewMemberships(),
		Speakers:    app.NewSpeakerArbiter(),
		Acks:        app.NewAckTracker(),
		Policy:      policy,
		Metrics:     m,
		AckTimeout:  ackTimeout,
	}
}

// Emit sends one event to a single connection. Delivery failures are logged only.
func (o *Orchestrator) Emit(to domain.ConnID, event string, data any) {
	frame, err := core.EncodeEvent(event, 0, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", event).Msg("encode event")
		return
	}
	o.send(to, frame)
}

// Ack answers request id of connection to with reply.
func (o *Orchestrator) Ack(to domain.ConnID, id uint64, reply any) {
	if id == 0 {
		return
	}
	body, err := json.Marshal(reply)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode ack")
		return
	}
	o.AckRaw(to, id, body)
}

// AckRaw answers request id with an already encoded body, passed through verbatim.
func (o *Orchestrator) AckRaw(to domain.ConnID, id uint64, body json.RawMessage) {
	if id == 0 {
		return
	}
	frame, err := core.EncodeAck(id, body)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode ack")
		return
	}
	o.send(to, frame)
}

func (o *Orchestrator) send(to domain.ConnID, frame core.Frame) {
	conn, ok := o.Registry.Get(to)
	if !ok {
		log.Debug().Str("module", "orch").Str("conn", string(to)).Msg("emit to unknown connection")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(to)).Msg("emit failed")
		o.applyPolicy(conn)
	}
}

// ToRoom sends event to every member of topic except from.
func (o *Orchestrator) ToRoom(from domain.ConnID, topic domain.TopicName, event string, data any) int {
	return o.broadcast(from, topic, event, data, false)
}

// WithinRoom sends event to every member of topic, from included.
func (o *Orchestrator) WithinRoom(from domain.ConnID, topic domain.TopicName, event string, data any) int {
	return o.broadcast(from, topic, event, data, true)
}

func (o *Orchestrator) broadcast(from domain.ConnID, topic domain.TopicName, event string, data any, includeSelf bool) int {
	room, ok := o.Rooms.Get(topic)
	if !ok {
		return 0
	}
	frame, err := core.EncodeEvent(event, 0, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", event).Msg("encode event")
		return 0
	}
	res := room.Broadcast(from, frame, includeSelf)
	o.handleDropped(res)
	return res.SendTo
}

func (o *Orchestrator) handleDropped(res core.PublishResult) {
	o.Metrics.Dropped(len(res.Dropped))
	for _, slow := range res.Dropped {
		log.Warn().Str("module", "orch").Str("conn", string(slow.ID())).Msg("peer send queue full")
		o.applyPolicy(slow)
	}
}

func (o *Orchestrator) applyPolicy(conn core.SignalConnection) {
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(conn) {
	case app.KickMember:
		o.Registry.Cancel(conn.ID())
	case app.DropFrame, app.NoAction:
	}
}

// EmitWithAck forwards event to the peers of from in topic and waits for the
// first acknowledgement, the ack deadline, or ctx.
func (o *Orchestrator) EmitWithAck(ctx context.Context, from domain.ConnID, topic domain.TopicName, event string, data any) (json.RawMessage, error) {
	room, ok := o.Rooms.Get(topic)
	if !ok {
		return nil, app.ErrNoPeers
	}
	peers := make([]domain.ConnID, 0, room.MemberCount())
	for _, m := range room.Members() {
		if m != from {
			peers = append(peers, m)
		}
	}
	// Registered before the send so a fast reply finds its id.
	id, ch := o.Acks.Register(peers)
	defer o.Acks.Cancel(id)

	frame, err := core.EncodeEvent(event, id, data)
	if err != nil {
		return nil, err
	}
	res := room.Broadcast(from, frame, false)
	o.handleDropped(res)
	if res.SendTo == 0 {
		return nil, app.ErrNoPeers
	}
	o.Acks.Restrict(id, res.Reached)

	timer := time.NewTimer(o.AckTimeout)
	defer timer.Stop()
	select {
	case reply := <-ch:
		return reply, nil
	case <-timer.C:
		return nil, fmt.Errorf("%s after %s: %w", event, o.AckTimeout, app.ErrAckTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ResolveAck hands a peer's acknowledgement to whoever waits on id.
// Replies from connections the request never reached are ignored.
func (o *Orchestrator) ResolveAck(from domain.ConnID, id uint64, data json.RawMessage) {
	if !o.Acks.Resolve(from, id, data) {
		log.Debug().Str("module", "orch").Str("conn", string(from)).Uint64("ack", id).Msg("late, unknown or non-peer ack")
	}
}
