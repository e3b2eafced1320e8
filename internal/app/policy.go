package app

import (
	"fmt"

	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a recipient whose send queue is full.
type Policy interface {
	OnBackPressure(room domain.RoomName, member core.Connection) BackpressureAction
}

// DropPolicy skips the payload for the slow recipient only.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomName, core.Connection) BackpressureAction {
	return DropFrame
}

// KickPolicy disconnects a recipient that cannot keep up.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.RoomName, core.Connection) BackpressureAction {
	return KickMember
}

func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
