package trigger

import (
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
	"github.com/wonvincal/lunar-sub006/utils"
)

// VelocityTriggerGenerator accumulates signed traded notional on the
// underlying over a short rolling window. A call entry is authorized when
// buy pressure exceeds the configured threshold, a put entry on the mirror
// condition. Thresholds live in the shared per-underlying tier.
type VelocityTriggerGenerator struct {
	ttype     params.TriggerType
	und       *market.Security
	undParams *params.UndParams
	window    *utils.RollingWindow
	handlers  []Handler
}

// NewVelocityTriggerGenerator builds a window of windowNs with a fixed ring
// capacity.
func NewVelocityTriggerGenerator(ttype params.TriggerType, und *market.Security, undParams *params.UndParams, windowNs int64, maxEntries int) *VelocityTriggerGenerator {
	return &VelocityTriggerGenerator{
		ttype:     ttype,
		und:       und,
		undParams: undParams,
		window:    utils.NewRollingWindow(windowNs, maxEntries),
	}
}

func (g *VelocityTriggerGenerator) Type() params.TriggerType { return g.ttype }

// Velocity is the current signed traded notional inside the window.
func (g *VelocityTriggerGenerator) Velocity() int64 { return g.window.Accumulated() }

// OnOrderBookUpdated ages the window against the tick clock.
func (g *VelocityTriggerGenerator) OnOrderBookUpdated(nanoOfDay int64, _ *market.OrderBook) error {
	g.window.Update(nanoOfDay)
	return nil
}

// OnTradeReceived records the signed notional of one underlying print. A
// lift of the offer adds buy pressure, a hit of the bid subtracts it.
func (g *VelocityTriggerGenerator) OnTradeReceived(nanoOfDay int64, trade market.Trade) error {
	netDelta := int64(-trade.Side) * trade.Quantity * trade.Price
	g.window.Record(nanoOfDay, netDelta)
	return nil
}

func (g *VelocityTriggerGenerator) IsTriggeredForCall() bool {
	t := g.undParams.VelocityThreshold
	return t != 0 && g.Velocity() >= t
}

func (g *VelocityTriggerGenerator) IsTriggeredForPut() bool {
	t := g.undParams.VelocityThreshold
	return t != 0 && -g.Velocity() >= t
}

func (g *VelocityTriggerGenerator) strength(v int64) Strength {
	switch {
	case g.undParams.VelocityThreshold == 0 || v < g.undParams.VelocityThreshold:
		return StrengthNone
	case v >= g.undParams.VelocityThreshold3:
		return StrengthStrong
	case v >= g.undParams.VelocityThreshold2:
		return StrengthMedium
	}
	return StrengthWeak
}

func (g *VelocityTriggerGenerator) StrengthForCall() Strength { return g.strength(g.Velocity()) }
func (g *VelocityTriggerGenerator) StrengthForPut() Strength  { return g.strength(-g.Velocity()) }

// RegisterHandler attaches a warrant. The first subscription taps the
// underlying's market-data stream.
func (g *VelocityTriggerGenerator) RegisterHandler(h Handler) {
	if len(g.handlers) == 0 {
		g.und.RegisterMdHandler(g)
	}
	g.handlers = append(g.handlers, h)
	h.OnTriggerGeneratorSubscribed(g)
}

// UnregisterHandler detaches a warrant; the last detach drops the tap.
func (g *VelocityTriggerGenerator) UnregisterHandler(h Handler) {
	for i, r := range g.handlers {
		if r == h {
			g.handlers = append(g.handlers[:i], g.handlers[i+1:]...)
			h.OnTriggerGeneratorUnsubscribed(g)
			break
		}
	}
	if len(g.handlers) == 0 {
		g.und.UnregisterMdHandler(g)
	}
}

// Reset drops the accumulated window.
func (g *VelocityTriggerGenerator) Reset() { g.window.Clear() }
