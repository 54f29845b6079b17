// Package trigger holds the pluggable entry-authorization sources and the
// controller that attaches exactly one of them per warrant.
package trigger

import (
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
)

// Strength grades how firmly a generator authorizes entry.
type Strength int8

const (
	StrengthNone Strength = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "WEAK"
	case StrengthMedium:
		return "MEDIUM"
	case StrengthStrong:
		return "STRONG"
	}
	return "NONE"
}

// Handler is the per-warrant consumer of a trigger generator.
type Handler interface {
	Security() *market.Security
	OnTriggerGeneratorSubscribed(g Generator)
	OnTriggerGeneratorUnsubscribed(g Generator)
}

// Generator is one interchangeable entry-authorization source, scoped to an
// underlying and shared by all warrants on it.
type Generator interface {
	Type() params.TriggerType
	RegisterHandler(h Handler)
	UnregisterHandler(h Handler)
	IsTriggeredForCall() bool
	IsTriggeredForPut() bool
	StrengthForCall() Strength
	StrengthForPut() Strength
	Reset()
}
