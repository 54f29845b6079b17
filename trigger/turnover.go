package trigger

import (
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
)

// TurnoverMakingHandler is notified when churn at a single price is detected
// on the warrant.
type TurnoverMakingHandler interface {
	OnTurnoverMakingDetected(nanoOfDay, price int64) error
}

// TurnoverMakingSignalGenerator watches warrant prints for issuer churn:
// volume crossing at one price reaching the configured size inside the
// configured period. Detection gates buys and pulls the automaton toward an
// immediate sell at the churn price.
type TurnoverMakingSignalGenerator struct {
	sec     *market.Security
	p       *params.WrtParams
	handler TurnoverMakingHandler

	windowStart int64
	windowPrice int64
	accQty      int64
}

// NewTurnoverMakingSignalGenerator builds the detector for one warrant.
func NewTurnoverMakingSignalGenerator(sec *market.Security, p *params.WrtParams) *TurnoverMakingSignalGenerator {
	return &TurnoverMakingSignalGenerator{sec: sec, p: p}
}

// SetHandler wires the per-warrant consumer and taps the warrant's trades.
func (g *TurnoverMakingSignalGenerator) SetHandler(h TurnoverMakingHandler) {
	g.handler = h
	g.sec.RegisterMdHandler(g)
}

func (g *TurnoverMakingSignalGenerator) OnOrderBookUpdated(int64, *market.OrderBook) error {
	return nil
}

func (g *TurnoverMakingSignalGenerator) OnTradeReceived(nanoOfDay int64, trade market.Trade) error {
	size := g.p.TurnoverMakingSize
	if size == 0 || g.handler == nil {
		return nil
	}
	period := g.p.TurnoverMakingPeriod
	if trade.Price != g.windowPrice || (period != 0 && nanoOfDay-g.windowStart > period) {
		g.windowPrice = trade.Price
		g.windowStart = nanoOfDay
		g.accQty = 0
	}
	g.accQty += trade.Quantity
	if g.accQty >= size {
		g.accQty = 0
		g.windowStart = nanoOfDay
		return g.handler.OnTurnoverMakingDetected(nanoOfDay, trade.Price)
	}
	return nil
}

// Reset drops the accumulation window.
func (g *TurnoverMakingSignalGenerator) Reset() {
	g.windowStart = 0
	g.windowPrice = 0
	g.accQty = 0
}
