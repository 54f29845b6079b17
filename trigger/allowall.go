package trigger

import "github.com/wonvincal/lunar-sub006/params"

// AllowAllTriggerGenerator authorizes every entry unconditionally. One
// shared instance serves all warrants.
type AllowAllTriggerGenerator struct{}

// NewAllowAllTriggerGenerator returns the always-allow source.
func NewAllowAllTriggerGenerator() *AllowAllTriggerGenerator {
	return &AllowAllTriggerGenerator{}
}

func (g *AllowAllTriggerGenerator) Type() params.TriggerType { return params.TriggerTypeAllowAll }

func (g *AllowAllTriggerGenerator) RegisterHandler(h Handler) {
	h.OnTriggerGeneratorSubscribed(g)
}

func (g *AllowAllTriggerGenerator) UnregisterHandler(h Handler) {
	h.OnTriggerGeneratorUnsubscribed(g)
}

func (g *AllowAllTriggerGenerator) IsTriggeredForCall() bool     { return true }
func (g *AllowAllTriggerGenerator) IsTriggeredForPut() bool      { return true }
func (g *AllowAllTriggerGenerator) StrengthForCall() Strength    { return StrengthWeak }
func (g *AllowAllTriggerGenerator) StrengthForPut() Strength     { return StrengthWeak }
func (g *AllowAllTriggerGenerator) Reset()                       {}
