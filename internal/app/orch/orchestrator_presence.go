package orch

import (
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// Identify registers id as an online user called name.
func (o *Orchestrator) Identify(id domain.ConnID, name string) error {
	if err := domain.ValidateUsername(name); err != nil {
		return err
	}
	if _, isDevice := o.Devices.Get(id); isDevice {
		log.Warn().Str("module", "orch").Str("conn", string(id)).Str("user", name).Msg("identify from device connection")
		return ErrRoleConflict
	}
	if !o.Users.Add(id, name) {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Msg("already identified")
	}
	// A repeated identify keeps the first name; announce what is stored.
	stored, _ := o.Users.Get(id)
	o.RefreshUsers(id)
	o.notifyUsers(id, core.EventUserOnline, domain.PresenceEntry{ID: id, Name: stored})
	return nil
}

// Signout tells the other users id went offline and forgets it.
func (o *Orchestrator) Signout(id domain.ConnID) {
	if _, ok := o.Users.Get(id); !ok {
		return
	}
	o.notifyUsers(id, core.EventUserOffline, id)
	o.Users.Remove(id)
}

// RefreshUsers sends the current user snapshot to id.
func (o *Orchestrator) RefreshUsers(id domain.ConnID) {
	o.Emit(id, core.EventRefreshUsers, o.Users.Entries())
}

func (o *Orchestrator) notifyUsers(except domain.ConnID, event string, data any) {
	frame, err := core.EncodeEvent(event, 0, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", event).Msg("encode event")
		return
	}
	for _, uid := range o.Users.IDs() {
		if uid == except {
			continue
		}
		o.send(uid, frame)
	}
}

// Identity describes what a connection is registered as.
type Identity struct {
	ID     domain.ConnID    `json:"id"`
	User   string           `json:"user,omitempty"`
	Device string           `json:"device,omitempty"`
	Topic  domain.TopicName `json:"topic,omitempty"`
}

func (o *Orchestrator) WhoAmI(id domain.ConnID) Identity {
	me := Identity{ID: id}
	me.User, _ = o.Users.Get(id)
	me.Device, _ = o.Devices.Get(id)
	me.Topic, _ = o.Topic(id)
	return me
}
