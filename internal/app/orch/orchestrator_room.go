package orch

import (
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// SpeakerOutcome is the result of a speakerid request.
type SpeakerOutcome struct {
	Claimed  bool
	Released bool
	Holder   domain.ConnID
}

// Reply renders the outcome as an ack body.
func (s SpeakerOutcome) Reply() core.AckReply {
	switch {
	case s.Released:
		return core.AckReply{Success: true, Message: "released"}
	case s.Claimed:
		return core.AckReply{Success: true, Message: string(s.Holder)}
	default:
		return core.AckReply{Success: false, Message: string(s.Holder)}
	}
}

// SetSpeaker claims the speaker lock of id's topic for speaker, or releases it
// when speaker is not a connection id.
func (o *Orchestrator) SetSpeaker(id domain.ConnID, speaker string) (SpeakerOutcome, error) {
	topic, ok := o.Topic(id)
	if !ok {
		return SpeakerOutcome{}, ErrNotBound
	}
	if !domain.ValidConnID(speaker) {
		o.Speakers.Release(topic)
		log.Debug().Str("module", "orch").Str("topic", string(topic)).Msg("speaker released")
		return SpeakerOutcome{Released: true}, nil
	}
	claimed := o.Speakers.Claim(domain.ConnID(speaker), topic)
	holder, _ := o.Speakers.Holder(topic)
	if !claimed {
		log.Info().Str("module", "orch").Str("topic", string(topic)).
			Str("claimant", speaker).Str("holder", string(holder)).Msg("speaker busy")
	}
	return SpeakerOutcome{Claimed: claimed, Holder: holder}, nil
}

// Speech broadcasts payload to peers while nobody holds the floor.
func (o *Orchestrator) Speech(id domain.ConnID, payload any) error {
	topic, ok := o.Topic(id)
	if !ok {
		return ErrNotBound
	}
	if !o.Speakers.HasHolder(topic) {
		o.ToRoom(id, topic, core.EventSpeaking, payload)
	}
	return nil
}

// Relay sends event to the peers of id, or to the whole room when includeSelf is set.
func (o *Orchestrator) Relay(id domain.ConnID, event string, payload any, includeSelf bool) error {
	topic, ok := o.Topic(id)
	if !ok {
		return ErrNotBound
	}
	if includeSelf {
		o.WithinRoom(id, topic, event, payload)
	} else {
		o.ToRoom(id, topic, event, payload)
	}
	return nil
}
