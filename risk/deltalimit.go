// Package risk holds the issuer-level exposure monitors shared by every
// warrant of one issuer on one underlying.
package risk

import (
	"github.com/wonvincal/lunar-sub006/info"
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
	"github.com/wonvincal/lunar-sub006/scale"
	"github.com/wonvincal/lunar-sub006/utils"
)

// deltaWindowNs is how long warrant prints count toward the issuer's rolling
// delta exposure.
const deltaWindowNs = 10_000_000_000

const deltaWindowCapacity = 512

// UnderlyingPrice exposes the live spot estimate to exposure conversions.
type UnderlyingPrice interface {
	WeightedAverageSpot() int64
}

// DeltaLimitHandler is notified when the issuer's aggregate delta exposure
// to the underlying breaches the configured limit.
type DeltaLimitHandler interface {
	Security() *market.Security
	OnDeltaLimitExceeded(undSid, nanoOfDay, deltaNotional int64) error
}

// DeltaLimitAlertGenerator accumulates signed delta shares from warrant
// prints across one (issuer, underlying) pair and fans a breach out to every
// registered per-warrant handler.
type DeltaLimitAlertGenerator struct {
	undSid    int64
	issuerSid int64
	undPrice  UnderlyingPrice
	p         *params.IssuerUndParams
	sender    info.Sender

	window          *utils.RollingWindow
	handlers        []DeltaLimitHandler
	taps            map[int64]*securityTap
	lastDeltaShares int64
}

// securityTap adapts one warrant's market-data stream onto the generator.
type securityTap struct {
	gen *DeltaLimitAlertGenerator
	sec *market.Security
}

func (t *securityTap) OnOrderBookUpdated(nanoOfDay int64, _ *market.OrderBook) error {
	return t.gen.onOrderBookUpdated(nanoOfDay)
}

func (t *securityTap) OnTradeReceived(nanoOfDay int64, trade market.Trade) error {
	return t.gen.onTradeReceived(t.sec, nanoOfDay, trade)
}

// NewDeltaLimitAlertGenerator builds the shared monitor for one
// (issuer, underlying) pair.
func NewDeltaLimitAlertGenerator(undSid, issuerSid int64, undPrice UnderlyingPrice, p *params.IssuerUndParams, sender info.Sender) *DeltaLimitAlertGenerator {
	return &DeltaLimitAlertGenerator{
		undSid:    undSid,
		issuerSid: issuerSid,
		undPrice:  undPrice,
		p:         p,
		sender:    sender,
		window:    utils.NewRollingWindow(deltaWindowNs, deltaWindowCapacity),
		taps:      make(map[int64]*securityTap),
	}
}

// Params returns the shared issuer-underlying tier.
func (g *DeltaLimitAlertGenerator) Params() *params.IssuerUndParams { return g.p }

// RegisterHandler attaches a per-warrant handler and taps its security's
// market data.
func (g *DeltaLimitAlertGenerator) RegisterHandler(h DeltaLimitHandler) {
	g.handlers = append(g.handlers, h)
	sec := h.Security()
	if _, ok := g.taps[sec.Sid()]; !ok {
		tap := &securityTap{gen: g, sec: sec}
		g.taps[sec.Sid()] = tap
		sec.RegisterMdHandler(tap)
	}
}

// UnregisterHandler detaches a handler and its market-data tap.
func (g *DeltaLimitAlertGenerator) UnregisterHandler(h DeltaLimitHandler) {
	for i, r := range g.handlers {
		if r == h {
			g.handlers = append(g.handlers[:i], g.handlers[i+1:]...)
			break
		}
	}
	sec := h.Security()
	if tap, ok := g.taps[sec.Sid()]; ok {
		sec.UnregisterMdHandler(tap)
		delete(g.taps, sec.Sid())
	}
}

// onTradeReceived converts a warrant print into signed underlying delta
// shares and records it in the rolling window.
func (g *DeltaLimitAlertGenerator) onTradeReceived(sec *market.Security, nanoOfDay int64, trade market.Trade) error {
	delta := sec.Greeks().Delta
	convRatio := sec.ConvRatio()
	if delta == 0 || convRatio == 0 {
		return nil
	}
	deltaShares := trade.Quantity * int64(-trade.Side) * delta / (100 * convRatio)
	g.window.Record(nanoOfDay, deltaShares)
	return nil
}

func (g *DeltaLimitAlertGenerator) onOrderBookUpdated(nanoOfDay int64) error {
	g.window.Update(nanoOfDay)
	deltaShares := g.window.Accumulated()
	if deltaShares == g.lastDeltaShares {
		return nil
	}
	g.lastDeltaShares = deltaShares
	deltaNotional := g.CalcDeltaNotional(deltaShares)
	g.p.UndDeltaShares = deltaShares
	g.p.UndTradeVol = utils.AbsInt64(deltaShares)
	threshold := g.p.MaxUndDeltaShares
	if threshold != 0 && utils.AbsInt64(deltaNotional) >= g.CalcDeltaNotional(threshold) {
		logs.Warnf("[DeltaLimit] Exposure limit breached: undSid %d, issuerSid %d, deltaNotional %d", g.undSid, g.issuerSid, deltaNotional)
		g.sender.SendEvent(g.undSid, nanoOfDay, info.EventDeltaLimitExceeded, deltaNotional)
		for _, h := range g.handlers {
			if err := h.OnDeltaLimitExceeded(g.undSid, nanoOfDay, utils.AbsInt64(deltaNotional)); err != nil {
				return err
			}
		}
		g.p.UndDeltaShares = 0
		g.p.UndTradeVol = 0
		g.lastDeltaShares = 0
		g.window.Clear()
	}
	g.sender.BroadcastThrottled(g.p)
	return nil
}

// CalcDeltaNotional converts delta shares into notional at the live spot.
func (g *DeltaLimitAlertGenerator) CalcDeltaNotional(deltaShares int64) int64 {
	wavg := g.undPrice.WeightedAverageSpot()
	return deltaShares * wavg / scale.SpotScale
}

// CalcDeltaShares converts a delta notional back into shares at the live
// spot; zero when no spot is known yet.
func (g *DeltaLimitAlertGenerator) CalcDeltaShares(deltaNotional int64) int64 {
	wavg := g.undPrice.WeightedAverageSpot()
	if wavg == 0 {
		return 0
	}
	return deltaNotional * scale.SpotScale / wavg
}

// Reset clears the rolling exposure.
func (g *DeltaLimitAlertGenerator) Reset() {
	g.window.Clear()
	g.lastDeltaShares = 0
	g.p.UndDeltaShares = 0
	g.p.UndTradeVol = 0
	g.p.PendingUndDeltaShares = 0
}
