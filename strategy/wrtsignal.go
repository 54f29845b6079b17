package strategy

import (
	"github.com/wonvincal/lunar-sub006/bucket"
	"github.com/wonvincal/lunar-sub006/info"
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
	"github.com/wonvincal/lunar-sub006/scale"
	"github.com/wonvincal/lunar-sub006/statemachine"
	"github.com/wonvincal/lunar-sub006/trigger"
	"github.com/wonvincal/lunar-sub006/utils"
)

const (
	// A tighter spread only becomes the new target after holding this long.
	spreadObservationPeriodWhenTighterNs = 100_000_000
	// Net traded quantity window used by the volume entry gate.
	tradesVolumeWindowNs       = 20_000_000
	tradesVolumeWindowCapacity = 128
	maxHoldBidBanPrices        = 8
	// Violation count gap beyond which the standby pricer takes over.
	pricerSwitchHysteresis = 1
)

// pricerState pairs one predictor with its pricing mode and live bucket view.
type pricerState struct {
	mode          params.PricingMode
	pricer        bucket.Predictor
	numViolations int
	activeIv      bucket.Interval
	nextIv        bucket.Interval
}

// WrtSignalGenerator watches one warrant's quotes, prints and greeks together
// with its underlying's spot estimates, maintains the derived per-warrant
// outputs (tick sensitivity, spread classification, pricing mode, learned
// buckets), and feeds the automaton through the per-warrant event bus.
type WrtSignalGenerator struct {
	sec       *market.Security
	undGen    *UnderlyingSignalGenerator
	p         *params.WrtParams
	bridge    scale.Bridge
	ops       sideOps
	bus       statemachine.EventBus
	sender    info.Sender
	lagGen    *trigger.IssuerResponseTimeGenerator
	bucketOut *params.BucketOutputParams

	wa pricerState
	mp pricerState

	canCollectBuckets bool

	// Latest warrant book walk.
	nanoOfDay               int64
	bestBid                 market.BookLevel
	bestAsk                 market.BookLevel
	bestAskNotOurs          market.BookLevel
	tickBelowBestAskNotOurs int64
	mmBid                   market.BookLevel
	mmAsk                   market.BookLevel
	mmSpread                int
	isLooselyTight          bool

	// Greeks-derived.
	pricePerUndTick int64
	bucketSize      int64

	// Target-spread observation while flat.
	observedSpread int
	observedSince  int64
	targetSpread   int

	// Latest underlying spot observation.
	wavgSpot   int64
	midSpot    int64
	prevSpot   int64
	undIsTight bool

	holdBidBans  []int64
	tradesWindow *utils.RollingWindow

	started bool
}

// NewWrtSignalGenerator builds the generator for one warrant.
func NewWrtSignalGenerator(
	sec *market.Security,
	undGen *UnderlyingSignalGenerator,
	p *params.WrtParams,
	bridge scale.Bridge,
	ops sideOps,
	bus statemachine.EventBus,
	sender info.Sender,
	lagGen *trigger.IssuerResponseTimeGenerator,
) *WrtSignalGenerator {
	g := &WrtSignalGenerator{
		sec:            sec,
		undGen:         undGen,
		p:              p,
		bridge:         bridge,
		ops:            ops,
		bus:            bus,
		sender:         sender,
		lagGen:         lagGen,
		bucketOut:      params.NewBucketOutputParams(),
		observedSpread: params.UnsetSpread,
		targetSpread:   params.UnsetSpread,
		mmSpread:       params.UnsetSpread,
		tradesWindow:   utils.NewRollingWindow(tradesVolumeWindowNs, tradesVolumeWindowCapacity),
		holdBidBans:    make([]int64, 0, maxHoldBidBanPrices),
	}
	g.wa = pricerState{mode: params.PricingModeWeightedAverage, pricer: bucket.NewPredictor(p.IssuerMaxLag)}
	g.mp = pricerState{mode: params.PricingModeMidPrice, pricer: bucket.NewPredictor(p.IssuerMaxLag)}
	g.wa.activeIv.Clear()
	g.wa.nextIv.Clear()
	g.mp.activeIv.Clear()
	g.mp.nextIv.Clear()
	g.bucketOut.SetSecSid(sec.Sid())
	return g
}

// Security returns the warrant this generator watches.
func (g *WrtSignalGenerator) Security() *market.Security { return g.sec }

// BucketOutput returns the broadcast snapshot of the learned buckets.
func (g *WrtSignalGenerator) BucketOutput() *params.BucketOutputParams { return g.bucketOut }

func (g *WrtSignalGenerator) defaultMode() params.PricingMode {
	if g.p.DefaultPricingMode == params.PricingModeUnknown {
		return params.PricingModeWeightedAverage
	}
	return g.p.DefaultPricingMode
}

func (g *WrtSignalGenerator) activePricer() *pricerState {
	if g.p.PricingMode == params.PricingModeMidPrice {
		return &g.mp
	}
	return &g.wa
}

func (g *WrtSignalGenerator) standbyPricer() *pricerState {
	if g.p.PricingMode == params.PricingModeMidPrice {
		return &g.wa
	}
	return &g.mp
}

// Start attaches the generator to the warrant's feeds and registers it as a
// spot observer on its side of the underlying.
func (g *WrtSignalGenerator) Start() {
	if g.started {
		return
	}
	g.p.PricingMode = g.defaultMode()
	g.sec.RegisterMdHandler(g)
	g.sec.RegisterGreeksHandler(g)
	if g.sec.Side() == market.SidePut {
		g.undGen.RegisterPutObserver(g)
	} else {
		g.undGen.RegisterCallObserver(g)
	}
	g.started = true
	logs.Infof("[WrtSignal] Started: secCode %s, pricingMode %s", g.sec.Code(), g.p.PricingMode)
}

// EnableCollectBuckets controls whether market observations feed the
// predictors. Collection stays off until the strategy is switched on.
func (g *WrtSignalGenerator) EnableCollectBuckets(enable bool) {
	g.canCollectBuckets = enable
}

// SpotForActiveMode returns the live spot estimate under the active pricing
// mode.
func (g *WrtSignalGenerator) SpotForActiveMode() int64 {
	if g.p.PricingMode == params.PricingModeMidPrice {
		return g.midSpot
	}
	return g.wavgSpot
}

// PrevSpot returns the spot estimate seen before the latest one.
func (g *WrtSignalGenerator) PrevSpot() int64 { return g.prevSpot }

// BestBid returns the top warrant bid.
func (g *WrtSignalGenerator) BestBid() market.BookLevel { return g.bestBid }

// BestAsk returns the top warrant ask.
func (g *WrtSignalGenerator) BestAsk() market.BookLevel { return g.bestAsk }

// BestAskNotOurs returns the top ask level after skipping any level formed
// entirely by our own resting sell order.
func (g *WrtSignalGenerator) BestAskNotOurs() market.BookLevel { return g.bestAskNotOurs }

// MmBid returns the best size-qualified bid.
func (g *WrtSignalGenerator) MmBid() market.BookLevel { return g.mmBid }

// MmAsk returns the best size-qualified ask.
func (g *WrtSignalGenerator) MmAsk() market.BookLevel { return g.mmAsk }

// MmSpread returns the qualified spread in ticks, UnsetSpread when a side is
// missing.
func (g *WrtSignalGenerator) MmSpread() int { return g.mmSpread }

// TargetSpread returns the sustained minimum spread adopted as target.
func (g *WrtSignalGenerator) TargetSpread() int { return g.targetSpread }

// IsAtTargetSpread reports whether the qualified spread sits at the target.
func (g *WrtSignalGenerator) IsAtTargetSpread() bool {
	return g.targetSpread != params.UnsetSpread && g.mmSpread == g.targetSpread
}

// IsLooselyTight reports whether the effective spread is near-tight once our
// own resting order and sub-tick sensitivity are accounted for.
func (g *WrtSignalGenerator) IsLooselyTight() bool { return g.isLooselyTight }

// PricePerUndTick returns the warrant price move implied by one underlying
// tick, at spot precision.
func (g *WrtSignalGenerator) PricePerUndTick() int64 { return g.pricePerUndTick }

// ActiveInterval copies the learned bucket containing the live spot.
func (g *WrtSignalGenerator) ActiveInterval(out *bucket.Interval) {
	out.CopyFrom(&g.activePricer().activeIv)
}

// NextInterval copies the bucket adjacent to the active one in the favorable
// direction, when learned.
func (g *WrtSignalGenerator) NextInterval(out *bucket.Interval) {
	out.CopyFrom(&g.activePricer().nextIv)
}

// NetTradedQuantity returns the signed traded quantity over the volume
// window, buys positive.
func (g *WrtSignalGenerator) NetTradedQuantity(nanoOfDay int64) int64 {
	g.tradesWindow.Update(nanoOfDay)
	return g.tradesWindow.Accumulated()
}

// IsHoldBidBanned reports whether buying at price is banned because prints
// recently hit a held bid there.
func (g *WrtSignalGenerator) IsHoldBidBanned(price int64) bool {
	for _, p := range g.holdBidBans {
		if p == price {
			return true
		}
	}
	return false
}

// OnOrderBookUpdated walks the warrant book, refreshes the derived quote
// state and notifies the automaton.
func (g *WrtSignalGenerator) OnOrderBookUpdated(nanoOfDay int64, book *market.OrderBook) error {
	g.nanoOfDay = nanoOfDay
	g.walkBook(book)
	g.tradesWindow.Update(nanoOfDay)
	g.expireHoldBidBans()

	if g.canCollectBuckets {
		ti := market.TriggerInfo{NanoOfDay: nanoOfDay}
		for _, ps := range []*pricerState{&g.wa, &g.mp} {
			v := ps.pricer.ObserveDerivTick(nanoOfDay, g.bestBid.Price, g.bestAsk.Price, g.mmBid.Price, g.mmAsk.Price, g.mmSpread, ti)
			if err := g.handleViolation(ps, v, false); err != nil {
				return err
			}
		}
	}

	g.observeTargetSpread(nanoOfDay)
	g.refreshSpreadState()

	if g.lagGen != nil {
		if err := g.lagGen.OnMmOrderBookUpdated(nanoOfDay, g.mmBid.TickLevel, g.mmAsk.TickLevel, g.targetSpread, g.IsAtTargetSpread()); err != nil {
			return err
		}
	}

	g.p.WarrantSpread = g.mmSpread
	if err := g.bus.FireEvent(EventWarrantTickReceived); err != nil {
		return err
	}
	g.sender.BroadcastThrottled(g.p)
	return nil
}

func (g *WrtSignalGenerator) walkBook(book *market.OrderBook) {
	table := g.sec.SpreadTable()
	g.bestBid = market.BookLevel{}
	g.bestAsk = market.BookLevel{}
	g.bestAskNotOurs = market.BookLevel{}
	g.mmBid = market.BookLevel{}
	g.mmAsk = market.BookLevel{}
	g.tickBelowBestAskNotOurs = 0

	if lvl, ok := book.BestBid(); ok {
		g.bestBid = lvl
	}
	if lvl, ok := book.BestAsk(); ok {
		g.bestAsk = lvl
	}
	for i := 0; ; i++ {
		lvl, ok := book.BidAt(i)
		if !ok {
			break
		}
		if lvl.Qty >= g.p.MmBidSize {
			g.mmBid = lvl
			break
		}
	}
	for i := 0; ; i++ {
		lvl, ok := book.AskAt(i)
		if !ok {
			break
		}
		if g.bestAskNotOurs.Price == 0 && !g.isEntirelyOurs(lvl) {
			g.bestAskNotOurs = lvl
			if lvl.TickLevel > market.MinTickLevel {
				g.tickBelowBestAskNotOurs = table.TickToPrice(lvl.TickLevel - 1)
			}
		}
		if g.mmAsk.Price == 0 && lvl.Qty >= g.p.MmAskSize && !g.isEntirelyOurs(lvl) {
			g.mmAsk = lvl
		}
		if g.bestAskNotOurs.Price != 0 && g.mmAsk.Price != 0 {
			break
		}
	}

	if g.mmBid.Price != 0 && g.mmAsk.Price != 0 {
		g.mmSpread = g.mmAsk.TickLevel - g.mmBid.TickLevel
	} else {
		g.mmSpread = params.UnsetSpread
	}
	g.isLooselyTight = g.calcLooselyTight()
}

func (g *WrtSignalGenerator) isEntirelyOurs(lvl market.BookLevel) bool {
	return g.sec.LimitOrderPrice() != 0 &&
		lvl.Price == g.sec.LimitOrderPrice() &&
		lvl.Qty <= g.sec.LimitOrderQuantity()
}

func (g *WrtSignalGenerator) calcLooselyTight() bool {
	if g.bestBid.Price == 0 || g.bestAskNotOurs.Price == 0 {
		return false
	}
	if g.bestAskNotOurs.TickLevel-g.bestBid.TickLevel < 3 {
		return true
	}
	if g.pricePerUndTick > 0 && g.tickBelowBestAskNotOurs != 0 {
		return (g.tickBelowBestAskNotOurs-g.bestBid.Price)*market.WeightedAverageScale < g.pricePerUndTick
	}
	return false
}

// observeTargetSpread adopts the qualified spread as target once it has been
// sustained for the observation period. Only a tighter spread can replace an
// adopted target, and only after its own shorter observation window, so a
// temporary widening never loosens the target.
func (g *WrtSignalGenerator) observeTargetSpread(nanoOfDay int64) {
	if g.sec.Position() != 0 || g.mmSpread == params.UnsetSpread {
		return
	}
	if g.mmSpread != g.observedSpread {
		g.observedSpread = g.mmSpread
		g.observedSince = nanoOfDay
	}
	sustained := nanoOfDay - g.observedSince
	if g.targetSpread == params.UnsetSpread {
		if sustained >= g.p.SpreadObservationPeriod {
			g.adoptTargetSpread(nanoOfDay, g.mmSpread, false)
		}
		return
	}
	if g.mmSpread < g.targetSpread && sustained >= spreadObservationPeriodWhenTighterNs {
		g.adoptTargetSpread(nanoOfDay, g.mmSpread, true)
	}
}

func (g *WrtSignalGenerator) adoptTargetSpread(nanoOfDay int64, spread int, isReset bool) {
	g.targetSpread = spread
	g.wa.pricer.ResetAndSetTargetSpreadInTick(spread)
	g.mp.pricer.ResetAndSetTargetSpreadInTick(spread)
	if isReset {
		g.p.IncNumSpreadResets()
		g.sender.SendEvent(g.sec.Sid(), nanoOfDay, info.EventTargetSpreadReset, int64(spread))
		logs.Infof("[WrtSignal] Target spread reset: secCode %s, targetSpread %d", g.sec.Code(), spread)
	} else {
		logs.Infof("[WrtSignal] Target spread adopted: secCode %s, targetSpread %d", g.sec.Code(), spread)
	}
}

// refreshSpreadState classifies the live spread. Too-wide needs a held losing
// position against a spread wider than at entry, and the near-tight shapes
// veto it.
func (g *WrtSignalGenerator) refreshSpreadState() {
	state := params.SpreadStateWide
	if g.sec.Position() > 0 &&
		g.p.EnterPrice != 0 &&
		g.bestBid.Price < g.p.EnterPrice &&
		g.p.EnterMMSpread != params.UnsetSpread &&
		g.mmSpread != params.UnsetSpread &&
		g.mmSpread > g.p.EnterMMSpread &&
		!g.isLooselyTight {
		state = params.SpreadStateTooWide
	} else if g.IsAtTargetSpread() {
		state = params.SpreadStateNormal
	}
	g.p.SpreadState = state
}

func (g *WrtSignalGenerator) handleViolation(ps *pricerState, v bucket.Violation, fromUnd bool) error {
	if v == bucket.NoViolation {
		return nil
	}
	ps.numViolations++
	switch {
	case v == bucket.DownVol && ps.mode == params.PricingModeWeightedAverage:
		g.p.IncNumWAvgDownVols()
	case v == bucket.UpVol && ps.mode == params.PricingModeWeightedAverage:
		g.p.IncNumWAvgUpVols()
	case v == bucket.DownVol && ps.mode == params.PricingModeMidPrice:
		g.p.IncNumMPrcDownVols()
	case v == bucket.UpVol && ps.mode == params.PricingModeMidPrice:
		g.p.IncNumMPrcUpVols()
	}

	isActive := ps == g.activePricer()
	var err error
	if isActive {
		switch v {
		case bucket.DownVol:
			g.sender.SendEvent(g.sec.Sid(), g.nanoOfDay, info.EventVolDownSignal, int64(ps.mode))
			if fromUnd {
				err = g.bus.FireEvent(EventIssuerDownVolFromUnderlyingTick)
			} else {
				err = g.bus.FireEvent(EventIssuerDownVolFromWarrantTick)
			}
		default:
			err = g.bus.FireEvent(EventNonDownVolViolation)
		}
	} else if v == bucket.DownVol {
		err = g.bus.FireEvent(EventIssuerDownVolForStandbyPricer)
	}
	if err != nil {
		return err
	}
	return g.evaluatePricingMode()
}

// evaluatePricingMode switches pricers when one has accumulated strictly more
// violations than the hysteresis band allows; an exact tie falls back to the
// configured default.
func (g *WrtSignalGenerator) evaluatePricingMode() error {
	diff := g.wa.numViolations - g.mp.numViolations
	want := g.p.PricingMode
	switch {
	case diff == 0:
		want = g.defaultMode()
	case diff > pricerSwitchHysteresis:
		want = params.PricingModeMidPrice
	case diff < -pricerSwitchHysteresis:
		want = params.PricingModeWeightedAverage
	}
	if want == g.p.PricingMode {
		return nil
	}
	g.p.PricingMode = want
	if ts := g.activePricer().pricer.TargetSpreadInTick(); ts != params.UnsetSpread {
		g.targetSpread = ts
	}
	logs.Infof("[WrtSignal] Pricing mode switched: secCode %s, pricingMode %s, waViolations %d, mpViolations %d",
		g.sec.Code(), want, g.wa.numViolations, g.mp.numViolations)
	g.sender.SendEvent(g.sec.Sid(), g.nanoOfDay, info.EventPricingModeChanged, int64(want))
	return g.bus.FireEvent(EventPricingModeUpdated)
}

// ObserveUndSpot consumes one spot observation from the underlying.
func (g *WrtSignalGenerator) ObserveUndSpot(nanoOfDay int64, wavgSpot, midSpot int64, isTight bool, ti market.TriggerInfo) error {
	g.nanoOfDay = nanoOfDay
	g.prevSpot = g.SpotForActiveMode()
	g.wavgSpot = wavgSpot
	g.midSpot = midSpot
	g.undIsTight = isTight

	spot := g.SpotForActiveMode()
	active := g.activePricer()
	if g.lagGen != nil && !active.activeIv.IsEmpty() &&
		!active.activeIv.Contains(spot) && g.ops.IsFavorableOrEqual(spot, g.ops.FavorableEdge(&active.activeIv)) {
		if err := g.lagGen.OnTriggerUp(nanoOfDay, g.targetSpread); err != nil {
			return err
		}
	}

	if g.canCollectBuckets {
		v := g.wa.pricer.ObserveUndTick(nanoOfDay, wavgSpot, isTight, ti, &g.wa.activeIv)
		if err := g.handleViolation(&g.wa, v, true); err != nil {
			return err
		}
		v = g.mp.pricer.ObserveUndTick(nanoOfDay, midSpot, isTight, ti, &g.mp.activeIv)
		if err := g.handleViolation(&g.mp, v, true); err != nil {
			return err
		}
		g.refreshIntervals()
	}

	return g.bus.FireEvent(EventStockSpotUpdated)
}

func (g *WrtSignalGenerator) refreshIntervals() {
	g.wa.pricer.GetOverlapAndNextIntervalByUndSpot(g.wavgSpot, &g.wa.activeIv, &g.wa.nextIv)
	g.mp.pricer.GetOverlapAndNextIntervalByUndSpot(g.midSpot, &g.mp.activeIv, &g.mp.nextIv)
	active := g.activePricer()
	if g.bucketOut.ActiveBucketBegin != active.activeIv.Begin ||
		g.bucketOut.ActiveBucketData != active.activeIv.Data ||
		g.bucketOut.NextBucketBegin != active.nextIv.Begin {
		g.bucketOut.SetActiveBucketInfo(&active.activeIv)
		g.bucketOut.SetNextBucketInfo(&active.nextIv)
		g.sender.BroadcastThrottled(g.bucketOut)
	}
}

// OnTradeReceived records the print in the volume window, maintains the
// hold-bid ban list and notifies the automaton.
func (g *WrtSignalGenerator) OnTradeReceived(nanoOfDay int64, trade market.Trade) error {
	g.nanoOfDay = nanoOfDay
	g.tradesWindow.Record(nanoOfDay, trade.Quantity*int64(-trade.Side))
	if g.p.UseHoldBidBan && trade.Side == market.AggressorBid && trade.Price == g.mmBid.Price {
		g.addHoldBidBan(trade.Price)
	}
	return g.bus.FireEvent(EventMarketTradeReceived)
}

func (g *WrtSignalGenerator) addHoldBidBan(price int64) {
	for _, p := range g.holdBidBans {
		if p == price {
			return
		}
	}
	if len(g.holdBidBans) == maxHoldBidBanPrices {
		g.holdBidBans = g.holdBidBans[1:]
	}
	g.holdBidBans = append(g.holdBidBans, price)
}

// expireHoldBidBans drops bans below the current qualified bid; the issuer
// bidding above a banned price means it is no longer holding there.
func (g *WrtSignalGenerator) expireHoldBidBans() {
	if len(g.holdBidBans) == 0 || g.mmBid.Price == 0 {
		return
	}
	kept := g.holdBidBans[:0]
	for _, p := range g.holdBidBans {
		if p >= g.mmBid.Price {
			kept = append(kept, p)
		}
	}
	g.holdBidBans = kept
}

// OnGreeksUpdated refreshes the greeks-derived outputs and the predictors'
// bucket sizing.
func (g *WrtSignalGenerator) OnGreeksUpdated(greeks *market.Greeks) error {
	delta := greeks.Delta
	if delta == 0 {
		g.p.TickSensitivity = 0
		return nil
	}
	undTable := g.undGen.Security().SpreadTable()
	undPrice := g.undGen.WeightedAverageSpot() / market.WeightedAverageScale
	if undPrice == 0 {
		undPrice = greeks.RefSpot
	}
	undTickSize := undTable.PriceToTickSize(undPrice)

	refPrice := g.mmAsk.Price
	if refPrice == 0 {
		refPrice = g.bestAsk.Price
	}
	if refPrice == 0 {
		refPrice = greeks.Ask
	}
	if undTickSize == 0 || refPrice == 0 {
		return nil
	}
	warrantTickSize := g.sec.SpreadTable().PriceToTickSize(refPrice)

	g.pricePerUndTick = g.bridge.CalcPricePerUnderlyingTick(undTickSize, delta)
	if g.pricePerUndTick > 0 {
		g.p.TickSensitivity = g.pricePerUndTick / warrantTickSize
		g.bucketSize = undTickSize * warrantTickSize * scale.SpotScale / g.pricePerUndTick
		g.wa.pricer.SetBucketSize(g.bucketSize)
		g.mp.pricer.SetBucketSize(g.bucketSize)
	} else {
		g.p.TickSensitivity = 0
	}

	g.wa.pricer.ObserveGreeks(g.nanoOfDay, greeks)
	g.mp.pricer.ObserveGreeks(g.nanoOfDay, greeks)
	g.sender.BroadcastThrottled(g.p)
	return nil
}

// Reset clears learned and transient market state; user inputs survive.
func (g *WrtSignalGenerator) Reset() {
	g.wa.pricer.Clear()
	g.mp.pricer.Clear()
	g.wa.numViolations = 0
	g.mp.numViolations = 0
	g.wa.activeIv.Clear()
	g.wa.nextIv.Clear()
	g.mp.activeIv.Clear()
	g.mp.nextIv.Clear()
	g.targetSpread = params.UnsetSpread
	g.observedSpread = params.UnsetSpread
	g.observedSince = 0
	g.holdBidBans = g.holdBidBans[:0]
	g.tradesWindow.Clear()
	g.wavgSpot = 0
	g.midSpot = 0
	g.prevSpot = 0
	g.p.PricingMode = g.defaultMode()
	g.bucketOut.Reset()
	if g.lagGen != nil {
		g.lagGen.Reset()
	}
	logs.Infof("[WrtSignal] Reset: secCode %s", g.sec.Code())
}
