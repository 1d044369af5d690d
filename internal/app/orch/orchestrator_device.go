package orch

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// UnboundPrefix marks devices that are online but not yet assigned to a box.
const UnboundPrefix = "Unbound"

// Find registers id as device and opens the device's topic with id as origin.
func (o *Orchestrator) Find(id domain.ConnID, device string) error {
	if err := domain.ValidateDevice(device); err != nil {
		return err
	}
	if _, isUser := o.Users.Get(id); isUser {
		log.Warn().Str("module", "orch").Str("conn", string(id)).Str("device", device).Msg("find from user connection")
		return ErrRoleConflict
	}
	topic := domain.TopicName(device)
	if err := o.Bind(id, topic, id); err != nil {
		return err
	}
	o.Devices.Add(id, device)
	o.Speakers.Release(topic)
	if room, ok := o.Rooms.Get(topic); ok {
		log.Info().Str("module", "orch").Str("topic", device).
			Strs("members", connStrings(room.Members())).Msg("device room")
	}
	return nil
}

// Watch joins id to a device's topic and announces it to the room.
func (o *Orchestrator) Watch(id domain.ConnID, device string) error {
	origin, ok := o.Devices.Lookup(device)
	if !ok {
		o.Emit(id, core.EventNoDev, nil)
		return fmt.Errorf("watch %q: %w", device, ErrUnknownDevice)
	}
	topic := domain.TopicName(device)
	if err := o.Bind(id, topic, origin); err != nil {
		return err
	}
	o.WithinRoom(id, topic, core.EventJoin, id)
	return nil
}

// Boxconf joins id to a device's topic for configuration.
func (o *Orchestrator) Boxconf(id domain.ConnID, device string) core.AckReply {
	origin, ok := o.Devices.Lookup(device)
	if !ok {
		return core.AckReply{Success: false, Message: "No box found for conf: " + device}
	}
	if err := o.Bind(id, domain.TopicName(device), origin); err != nil {
		return core.AckReply{Success: false, Message: err.Error()}
	}
	return core.AckReply{Success: true, Message: "Configuring: " + device}
}

// Unset leaves device's topic and drops id's own device registration.
func (o *Orchestrator) Unset(id domain.ConnID, device string) core.AckReply {
	o.Unbind(id, domain.TopicName(device))
	if own, ok := o.Devices.Remove(id); ok {
		o.Speakers.Release(domain.TopicName(own))
	}
	return core.AckReply{Success: true, Message: "unset - " + device}
}

// CheckBox returns requested devices that are online plus every unbound device, sorted.
func (o *Orchestrator) CheckBox(requested []string) []string {
	out := make([]string, 0)
	for _, name := range o.Devices.Values() {
		if strings.HasPrefix(name, UnboundPrefix) || slices.Contains(requested, name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// CheckDev returns the requested devices that are online, sorted.
func (o *Orchestrator) CheckDev(requested []string) []string {
	out := make([]string, 0, len(requested))
	for _, name := range o.Devices.Values() {
		if slices.Contains(requested, name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func connStrings(ids []domain.ConnID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
