package app

import (
	"github.com/dkeye/Boxcall/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a peer whose send queue is full.
type Policy interface {
	OnBackPressure(conn core.SignalConnection) BackpressureAction
}

// DropPolicy loses the frame and keeps the peer.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.SignalConnection) BackpressureAction { return DropFrame }

// KickPolicy disconnects a peer that cannot keep up.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.SignalConnection) BackpressureAction { return KickMember }

// PolicyFor maps the backpressure config value to a Policy; unknown values drop.
func PolicyFor(name string) Policy {
	if name == "kick" {
		return KickPolicy{}
	}
	return DropPolicy{}
}
