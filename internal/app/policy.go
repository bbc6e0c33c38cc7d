package app

import (
	"fmt"

	"github.com/dkeye/voicerooms/internal/domain"
)

type BackpressureAction int

const (
	DropMessage BackpressureAction = iota
	DisconnectMember
)

// Policy decides what happens to a recipient whose send queue is full.
type Policy interface {
	OnBackPressure(pid domain.ParticipantID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ParticipantID) BackpressureAction {
	return p.Action
}

// ParsePolicy maps the slow_consumer config value to a policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "disconnect":
		return SimplePolicy{Action: DisconnectMember}, nil
	case "drop":
		return SimplePolicy{Action: DropMessage}, nil
	default:
		return nil, fmt.Errorf("unknown slow consumer policy %q", name)
	}
}
