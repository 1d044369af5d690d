package orch

import (
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// Bind puts id into topic's room. A binding to another topic is torn down first;
// rebinding to the same topic only refreshes the origin.
func (o *Orchestrator) Bind(id domain.ConnID, topic domain.TopicName, origin domain.ConnID) error {
	conn, ok := o.Registry.Get(id)
	if !ok {
		return ErrUnknownConn
	}
	prev, had := o.Memberships.Set(id, domain.Membership{Topic: topic, Origin: origin})
	if had && prev.Topic != topic {
		o.ToRoom(id, prev.Topic, core.EventHangup, id)
		o.Rooms.Leave(prev.Topic, id)
		log.Info().Str("module", "orch").Str("conn", string(id)).
			Str("from", string(prev.Topic)).Str("to", string(topic)).Msg("rebind")
	}
	room := o.Rooms.Join(topic, conn)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("topic", string(topic)).
		Str("origin", string(origin)).Int("members", room.MemberCount()).Msg("bound")
	return nil
}

// Unbind removes id from topic when it is currently bound there and tells the
// remaining peers. Returns false when id was not bound to topic.
func (o *Orchestrator) Unbind(id domain.ConnID, topic domain.TopicName) bool {
	if _, ok := o.Memberships.RemoveIf(id, topic); !ok {
		return false
	}
	o.ToRoom(id, topic, core.EventHangup, id)
	o.Rooms.Leave(topic, id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("topic", string(topic)).Msg("unbound")
	return true
}

// Topic reports the topic id is currently bound to.
func (o *Orchestrator) Topic(id domain.ConnID) (domain.TopicName, bool) {
	ms, ok := o.Memberships.Get(id)
	return ms.Topic, ok
}

// Disconnect purges every trace of id. Safe to call more than once.
func (o *Orchestrator) Disconnect(id domain.ConnID, reason string) {
	if ms, ok := o.Memberships.Remove(id); ok {
		o.ToRoom(id, ms.Topic, core.EventHangup, id)
		o.Rooms.Leave(ms.Topic, id)
	}
	if name, ok := o.Users.Remove(id); ok {
		o.notifyUsers(id, core.EventUserOffline, id)
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("user", name).Msg("user offline")
	}
	if dev, ok := o.Devices.Remove(id); ok {
		o.Speakers.Release(domain.TopicName(dev))
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("device", dev).Msg("device offline")
	}
	if o.Registry.Unbind(id) {
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("reason", reason).Msg("disconnected")
	}
}
