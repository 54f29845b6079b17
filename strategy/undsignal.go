package strategy

import (
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
)

// SpotObserver receives the two spot estimates computed from each underlying
// book update. The weighted-average estimate is only meaningful when the
// book is tight; observers pick per their active pricing mode.
type SpotObserver interface {
	ObserveUndSpot(nanoOfDay int64, wavgSpot, midSpot int64, isTight bool, ti market.TriggerInfo) error
}

// UnderlyingSignalGenerator turns one underlying's book updates into spot
// estimates and fans them out to the warrant-side observers. Notification
// order is side-aware: on a rising spot the puts hear first, on a falling
// spot the calls hear first, so the side under pressure always reacts before
// the side being helped.
type UnderlyingSignalGenerator struct {
	sec *market.Security
	p   *params.UndParams

	callObservers []SpotObserver
	putObservers  []SpotObserver

	wavgSpot     int64
	midSpot      int64
	prevWavgSpot int64
	bidSpot      int64
	askSpot      int64
	prevBidSpot  int64
	prevAskSpot  int64
	isTight      bool
	nanoOfDay    int64
	ti           market.TriggerInfo

	started bool
}

// NewUnderlyingSignalGenerator builds the generator for one underlying.
func NewUnderlyingSignalGenerator(sec *market.Security, p *params.UndParams) *UnderlyingSignalGenerator {
	return &UnderlyingSignalGenerator{sec: sec, p: p}
}

// Security returns the underlying this generator watches.
func (g *UnderlyingSignalGenerator) Security() *market.Security { return g.sec }

// Params returns the shared per-underlying tier.
func (g *UnderlyingSignalGenerator) Params() *params.UndParams { return g.p }

// RegisterCallObserver adds a call-side observer. Registration order within a
// side is preserved.
func (g *UnderlyingSignalGenerator) RegisterCallObserver(o SpotObserver) {
	g.callObservers = append(g.callObservers, o)
}

// RegisterPutObserver adds a put-side observer.
func (g *UnderlyingSignalGenerator) RegisterPutObserver(o SpotObserver) {
	g.putObservers = append(g.putObservers, o)
}

// UnregisterObserver removes the observer from whichever side holds it.
func (g *UnderlyingSignalGenerator) UnregisterObserver(o SpotObserver) {
	for i, r := range g.callObservers {
		if r == o {
			g.callObservers = append(g.callObservers[:i], g.callObservers[i+1:]...)
			return
		}
	}
	for i, r := range g.putObservers {
		if r == o {
			g.putObservers = append(g.putObservers[:i], g.putObservers[i+1:]...)
			return
		}
	}
}

// Start attaches the generator to the underlying's market data.
func (g *UnderlyingSignalGenerator) Start() {
	if g.started {
		return
	}
	g.sec.RegisterMdHandler(g)
	g.started = true
	logs.Infof("[UndSignal] Started: secCode %s", g.sec.Code())
}

// Stop detaches from the market data.
func (g *UnderlyingSignalGenerator) Stop() {
	if !g.started {
		return
	}
	g.sec.UnregisterMdHandler(g)
	g.started = false
}

// WeightedAverageSpot exposes the live estimate for exposure conversions.
func (g *UnderlyingSignalGenerator) WeightedAverageSpot() int64 { return g.wavgSpot }

// MidSpot returns the live mid estimate.
func (g *UnderlyingSignalGenerator) MidSpot() int64 { return g.midSpot }

// PrevBidSpot returns the previous best bid at spot precision.
func (g *UnderlyingSignalGenerator) PrevBidSpot() int64 { return g.prevBidSpot }

// PrevAskSpot returns the previous best ask at spot precision.
func (g *UnderlyingSignalGenerator) PrevAskSpot() int64 { return g.prevAskSpot }

// IsTight reports whether the last observed book was one tick wide.
func (g *UnderlyingSignalGenerator) IsTight() bool { return g.isTight }

// OnOrderBookUpdated computes both spot estimates from the book and notifies
// the observers.
func (g *UnderlyingSignalGenerator) OnOrderBookUpdated(nanoOfDay int64, book *market.OrderBook) error {
	g.nanoOfDay = nanoOfDay
	bid, hasBid := book.BestBid()
	ask, hasAsk := book.BestAsk()
	if !hasBid || !hasAsk {
		return nil
	}

	g.prevBidSpot = g.bidSpot
	g.prevAskSpot = g.askSpot
	g.prevWavgSpot = g.wavgSpot
	g.bidSpot = bid.Price * market.WeightedAverageScale
	g.askSpot = ask.Price * market.WeightedAverageScale

	g.midSpot = (bid.Price + ask.Price) * market.WeightedAverageScale / 2
	table := g.sec.SpreadTable()
	g.isTight = table.PriceToTick(ask.Price)-table.PriceToTick(bid.Price) == 1
	if g.isTight && bid.Qty+ask.Qty > 0 {
		// One tick wide: each side is weighted by the size resting against it.
		g.wavgSpot = (bid.Price*ask.Qty + ask.Price*bid.Qty) * market.WeightedAverageScale / (bid.Qty + ask.Qty)
	} else {
		g.wavgSpot = g.midSpot
		g.isTight = false
	}

	if g.wavgSpot > g.prevWavgSpot {
		return g.notify(g.putObservers, g.callObservers)
	}
	return g.notify(g.callObservers, g.putObservers)
}

func (g *UnderlyingSignalGenerator) notify(first, second []SpotObserver) error {
	for _, o := range first {
		if err := o.ObserveUndSpot(g.nanoOfDay, g.wavgSpot, g.midSpot, g.isTight, g.ti); err != nil {
			return err
		}
	}
	for _, o := range second {
		if err := o.ObserveUndSpot(g.nanoOfDay, g.wavgSpot, g.midSpot, g.isTight, g.ti); err != nil {
			return err
		}
	}
	return nil
}

// OnTradeReceived records causal ordering only; underlying prints feed the
// velocity trigger generators through their own taps.
func (g *UnderlyingSignalGenerator) OnTradeReceived(_ int64, trade market.Trade) error {
	g.ti = trade.TriggerInfo
	return nil
}

// Reset drops all live estimates.
func (g *UnderlyingSignalGenerator) Reset() {
	g.wavgSpot = 0
	g.midSpot = 0
	g.prevWavgSpot = 0
	g.bidSpot = 0
	g.askSpot = 0
	g.prevBidSpot = 0
	g.prevAskSpot = 0
	g.isTight = false
}
