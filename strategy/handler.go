package strategy

import (
	"fmt"

	"github.com/wonvincal/lunar-sub006/bucket"
	"github.com/wonvincal/lunar-sub006/info"
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/orders"
	"github.com/wonvincal/lunar-sub006/params"
	"github.com/wonvincal/lunar-sub006/scale"
	"github.com/wonvincal/lunar-sub006/statemachine"
	"github.com/wonvincal/lunar-sub006/trigger"
	"github.com/wonvincal/lunar-sub006/utils"
)

// Price tiers and fixed behavioral constants of the automaton. Prices are at
// the warrant price scale, times are nanoseconds.
const (
	largeWarrantPrice     = 250
	veryLargeWarrantPrice = 500

	exitLevelAllowance = 3

	minIssuerMaxLagNs  = 10_000_000
	minIssuerWideTimeNs = 30_000_000_000

	quickProfitTimeNs          = 100_000_000
	deltaLimitEffectTimeNs     = 1_000_000_000
	largeOutstandingEffectTimeNs = 1_000_000_000

	banPeriodOnBuyRejectNs  = 10_000_000
	banPeriodOnSellRejectNs = 10_000_000

	deltaAllowancePerMille = 1100

	consecutiveWinsForSizeUp = 2
)

// SignalHandler is the per-warrant automaton. It owns the buy/hold/sell
// lifecycle, stop-loss and profit-target revision, order sizing, and every
// ban deadline, driven exclusively by events from the signal generators and
// order acknowledgements.
type SignalHandler struct {
	sec        *market.Security
	p          *params.WrtParams
	undParams  *params.UndParams
	issuerUndP *params.IssuerUndParams
	bridge     scale.Bridge
	ops        sideOps
	wrtGen     *WrtSignalGenerator
	undGen     *UnderlyingSignalGenerator
	orderSvc   orders.Service
	sender     info.Sender
	triggers   *trigger.Controller
	bus        statemachine.EventBus
	machine    *statemachine.StateMachine
	explain    *explainRecord

	// Relaxes the risk gates so replayed decisions line up with a reference
	// run that had no live exposure.
	comparisonMode bool

	activeTrigger trigger.Generator

	exit exitBehavior

	nanoOfDay int64

	// Absolute ban deadlines, compared against tick timestamps.
	buyBanUntil              int64
	sellBanUntil             int64
	largeOutstandingBanUntil int64

	// In-flight order bookkeeping.
	pendingBuyPrice       int64
	pendingBuyQty         int64
	pendingBuyDeltaShares int64
	pendingSellQty        int64

	// Last acknowledgement, stored before the event fires.
	ackNanoOfDay int64
	ackPrice     int64
	ackQuantity  int64
	ackStatus    market.OrderStatus
	ackReject    market.OrderRejectType

	// Position-scoped state.
	enterNanoOfDay  int64
	stopLossSpot    int64
	standbyStopLoss int64

	// Pending sells decided but deferred to a later tick.
	turnoverSellPending bool
	turnoverSellPrice   int64

	// Win/loss streak for size adaptation.
	consecutiveWins   int
	consecutiveLosses int
	strongEntrySignal bool

	pendingSwitchOn bool

	scratchIv bucket.Interval
}

// NewSignalHandler wires the automaton for one warrant.
func NewSignalHandler(
	sec *market.Security,
	p *params.WrtParams,
	undParams *params.UndParams,
	issuerUndP *params.IssuerUndParams,
	bridge scale.Bridge,
	wrtGen *WrtSignalGenerator,
	undGen *UnderlyingSignalGenerator,
	orderSvc orders.Service,
	sender info.Sender,
	triggers *trigger.Controller,
	bus statemachine.EventBus,
	comparisonMode bool,
) *SignalHandler {
	h := &SignalHandler{
		sec:            sec,
		p:              p,
		undParams:      undParams,
		issuerUndP:     issuerUndP,
		bridge:         bridge,
		wrtGen:         wrtGen,
		undGen:         undGen,
		orderSvc:       orderSvc,
		sender:         sender,
		triggers:       triggers,
		bus:            bus,
		explain:        newExplainRecord(sec),
		exit:           behaviorFor(params.ExitModeNormal),
		comparisonMode: comparisonMode,
	}
	if sec.Side() == market.SidePut {
		h.ops = putOps{}
	} else {
		h.ops = callOps{}
	}
	h.machine = h.buildMachine()
	if err := h.machine.Start(StateOff); err != nil {
		logs.Errorf("[Handler] Failed to start machine for %s: %v", sec.Code(), err)
	}
	bus.Subscribe(h.machine)
	sec.RegisterOrderStatusHandler(h)
	return h
}

// Security satisfies the trigger and delta-limit handler contracts.
func (h *SignalHandler) Security() *market.Security { return h.sec }

// Ops exposes the side asymmetry for the signal generator construction.
func (h *SignalHandler) Ops() sideOps { return h.ops }

// CurrentStateID returns the automaton state.
func (h *SignalHandler) CurrentStateID() int { return h.machine.CurrentStateID() }

// IsOn reports whether the automaton is in any active state.
func (h *SignalHandler) IsOn() bool { return h.machine.CurrentStateID() != StateOff }

// ExitMode returns the liquidation policy in force.
func (h *SignalHandler) ExitMode() params.ExitMode { return h.exit.mode }

// StopLossSpot returns the effective stop, in spot units.
func (h *SignalHandler) StopLossSpot() int64 { return h.stopLossSpot }

func (h *SignalHandler) buildMachine() *statemachine.StateMachine {
	b := statemachine.NewBuilder("handler:" + h.sec.Code())
	b.RegisterState(StateOff, h.onEnterOff)
	b.RegisterState(StateNoPositionHeld, h.onEnterNoPosition)
	b.RegisterState(StateBuyingPosition, h.onEnterBuying)
	b.RegisterState(StatePositionHeld, h.onEnterPositionHeld)
	b.RegisterState(StateSellingPosition, h.onEnterSelling)

	b.LinkStates(StateOff, TransitionEnterWithoutPosition, StateNoPositionHeld)
	b.LinkStates(StateOff, TransitionEnterWithPosition, StatePositionHeld)
	b.LinkStates(StateNoPositionHeld, TransitionBuyPosition, StateBuyingPosition)
	b.LinkStates(StateNoPositionHeld, TransitionExitStrategy, StateOff)
	b.LinkStates(StateBuyingPosition, TransitionOrderFilled, StatePositionHeld)
	b.LinkStates(StateBuyingPosition, TransitionOrderNotFilled, StateNoPositionHeld)
	b.LinkStates(StatePositionHeld, TransitionSellPosition, StateSellingPosition)
	b.LinkStates(StatePositionHeld, TransitionExitStrategy, StateOff)
	b.LinkStates(StateSellingPosition, TransitionOrderFilled, StateNoPositionHeld)
	b.LinkStates(StateSellingPosition, TransitionOrderNotFilled, StatePositionHeld)
	b.LinkStates(StateSellingPosition, TransitionSellPosition, StateSellingPosition)

	// Flat: every market event is an entry opportunity, down-vol arms a ban.
	entryCheck := func(int) int {
		if h.detectEntry() {
			return TransitionBuyPosition
		}
		return statemachine.NoTransition
	}
	b.TranslateEvent(StateNoPositionHeld, EventStockSpotUpdated, entryCheck)
	b.TranslateEvent(StateNoPositionHeld, EventWarrantTickReceived, entryCheck)
	downVolFlat := func(int) int {
		h.onDownVolWhileFlat()
		return statemachine.NoTransition
	}
	b.TranslateEvent(StateNoPositionHeld, EventIssuerDownVolFromUnderlyingTick, downVolFlat)
	b.TranslateEvent(StateNoPositionHeld, EventIssuerDownVolFromWarrantTick, downVolFlat)
	b.TranslateEvent(StateNoPositionHeld, EventMarketTradeReceived, func(int) int {
		h.observeOutstandingVolume()
		return statemachine.NoTransition
	})
	b.TranslateEvent(StateNoPositionHeld, EventDeltaLimitAlertReceived, func(int) int {
		h.armBuyBan(h.nanoOfDay + deltaLimitEffectTimeNs)
		return statemachine.NoTransition
	})
	b.TranslateEvent(StateNoPositionHeld, EventSwitchedOff, func(int) int {
		return TransitionExitStrategy
	})

	// Awaiting the buy acknowledgement.
	b.TranslateEvent(StateBuyingPosition, EventOrderStatusUpdated, func(int) int {
		return h.onBuyAck()
	})

	// Holding: every event may warrant a sell.
	sellCheck := func(int) int {
		if h.detectSell() {
			return TransitionSellPosition
		}
		return statemachine.NoTransition
	}
	b.TranslateEvent(StatePositionHeld, EventStockSpotUpdated, sellCheck)
	b.TranslateEvent(StatePositionHeld, EventWarrantTickReceived, func(int) int {
		h.reviseStopLossAndProfitRun()
		if h.detectSell() {
			return TransitionSellPosition
		}
		return statemachine.NoTransition
	})
	b.TranslateEvent(StatePositionHeld, EventMarketTradeReceived, func(int) int {
		h.observeOutstandingVolume()
		return statemachine.NoTransition
	})
	downVolHeld := func(int) int {
		if h.onDownVolWhilePosition() {
			return TransitionSellPosition
		}
		return statemachine.NoTransition
	}
	b.TranslateEvent(StatePositionHeld, EventIssuerDownVolFromUnderlyingTick, downVolHeld)
	b.TranslateEvent(StatePositionHeld, EventIssuerDownVolFromWarrantTick, downVolHeld)
	b.TranslateEvent(StatePositionHeld, EventPricingModeUpdated, func(int) int {
		h.onPricingModeSwitched()
		return statemachine.NoTransition
	})
	b.TranslateEvent(StatePositionHeld, EventCaptureProfit, func(int) int {
		if h.prepareCaptureProfit() {
			return TransitionSellPosition
		}
		return statemachine.NoTransition
	})
	b.TranslateEvent(StatePositionHeld, EventPlaceSellOrder, func(int) int {
		if h.prepareExitSell() {
			return TransitionSellPosition
		}
		return statemachine.NoTransition
	})
	b.TranslateEvent(StatePositionHeld, EventTurnoverMaking, func(int) int {
		if h.prepareTurnoverSell() {
			return TransitionSellPosition
		}
		return statemachine.NoTransition
	})
	b.TranslateEvent(StatePositionHeld, EventDeltaLimitAlertReceived, func(int) int {
		h.armBuyBan(h.nanoOfDay + deltaLimitEffectTimeNs)
		return statemachine.NoTransition
	})
	b.TranslateEvent(StatePositionHeld, EventSwitchedOff, func(int) int {
		if h.exit.sellPosition && h.sec.Position() > 0 {
			if h.prepareExitSell() {
				return TransitionSellPosition
			}
			return statemachine.NoTransition
		}
		// No-exit style policies turn off holding the position.
		return TransitionExitStrategy
	})

	// Awaiting the sell acknowledgement.
	b.TranslateEvent(StateSellingPosition, EventOrderStatusUpdated, func(int) int {
		return h.onSellAck()
	})

	return b.Build()
}

// --- state entry actions ---

func (h *SignalHandler) onEnterOff(prevStateID, _ int) error {
	h.p.Status = params.StatusOff
	h.wrtGen.EnableCollectBuckets(false)
	if h.triggers != nil {
		h.triggers.Unsubscribe(h)
	}
	if prevStateID != StateOff {
		h.undParams.DecNumActiveWarrants()
	}
	h.sender.SendEvent(h.sec.Sid(), h.nanoOfDay, info.EventStrategySwitchedOff, int64(h.exit.mode))
	logs.Infof("[Handler] Switched off: secCode %s, exitMode %s, position %d", h.sec.Code(), h.exit.mode, h.sec.Position())
	h.sender.BroadcastBatchedPersist(h.p)
	return nil
}

func (h *SignalHandler) onEnterNoPosition(prevStateID, transitionID int) error {
	if prevStateID == StateSellingPosition && transitionID == TransitionOrderFilled {
		h.onPositionFullySold()
	}
	if prevStateID == StateBuyingPosition && transitionID == TransitionOrderNotFilled {
		h.onPositionNotBought()
	}
	if h.p.Status == params.StatusExiting && h.exit.offWhenExitPosition {
		// The exit policy wanted the strategy off once flat.
		return h.machine.OnEventReceived(EventSwitchedOff)
	}
	return nil
}

func (h *SignalHandler) onEnterBuying(_, _ int) error {
	price := h.pendingBuyPrice
	qty := h.pendingBuyQty
	h.fillExplain(explainSideBuy, price, qty)
	h.explain.logBuy()
	if _, err := h.orderSvc.Buy(h.sec, price, qty, h.explain); err != nil {
		logs.Errorf("[Handler] Buy failed: secCode %s, price %d, quantity %d: %v", h.sec.Code(), price, qty, err)
		return h.enterErrorMode(err)
	}
	h.issuerUndP.PendingUndDeltaShares += h.pendingBuyDeltaShares
	h.sender.BroadcastBatched(h.issuerUndP)
	h.explain.flags = 0
	return nil
}

func (h *SignalHandler) onEnterPositionHeld(prevStateID, transitionID int) error {
	if prevStateID == StateBuyingPosition && transitionID == TransitionOrderFilled {
		h.onPositionBought()
		if h.p.Status == params.StatusExiting && h.exit.sellPosition {
			// An exit arrived while the buy was in flight.
			return h.machine.OnEventReceived(EventPlaceSellOrder)
		}
	}
	if prevStateID == StateSellingPosition && transitionID == TransitionOrderNotFilled {
		h.onPositionNotFullySold()
	}
	return nil
}

func (h *SignalHandler) onEnterSelling(_, _ int) error {
	price := h.sellPrice()
	qty := h.sec.AvailablePosition()
	if qty <= 0 || price <= 0 {
		// Nothing sellable after all; bounce back as an unfilled sell.
		h.ackStatus = market.OrderStatusFailed
		h.ackQuantity = 0
		h.ackReject = market.RejectNone
		return h.machine.OnEventReceived(EventOrderStatusUpdated)
	}
	h.pendingSellQty = qty
	h.fillExplain(explainSideSell, price, qty)
	h.explain.logSell()
	var err error
	if h.p.Status == params.StatusExiting {
		_, err = h.orderSvc.SellToExit(h.sec, price, qty, h.explain)
	} else {
		_, err = h.orderSvc.Sell(h.sec, price, qty, h.explain)
	}
	if err != nil {
		logs.Errorf("[Handler] Sell failed: secCode %s, price %d, quantity %d: %v", h.sec.Code(), price, qty, err)
		return h.enterErrorMode(err)
	}
	h.explain.flags = 0
	return nil
}

// --- entry detection ---

// detectEntry runs the three-path mispricing test plus the risk gates.
func (h *SignalHandler) detectEntry() bool {
	if h.p.Status != params.StatusActive || h.exit.mode != params.ExitModeNormal {
		return false
	}
	if h.p.MarketOutlook == params.OutlookUndesirable {
		return false
	}
	if !h.orderSvc.CanTrade() {
		return false
	}
	if h.nanoOfDay < h.buyBanUntil || h.nanoOfDay < h.largeOutstandingBanUntil {
		return false
	}
	g := h.activeTrigger
	if g == nil || !h.ops.IsTriggered(g) {
		return false
	}
	mmBid := h.wrtGen.MmBid()
	mmAsk := h.wrtGen.MmAsk()
	if mmBid.Price == 0 || mmAsk.Price == 0 {
		return false
	}
	spread := h.wrtGen.MmSpread()
	if h.p.AllowedMaxSpread != 0 && spread > h.p.AllowedMaxSpread {
		return false
	}
	if !h.wrtGen.IsAtTargetSpread() {
		return false
	}
	if h.p.TickSensitivityThreshold != 0 && h.p.TickSensitivity < h.p.TickSensitivityThreshold {
		return false
	}
	if h.wrtGen.IsHoldBidBanned(mmBid.Price) {
		return false
	}
	ask := h.wrtGen.BestAskNotOurs()
	if ask.Price == 0 {
		ask = mmAsk
	}
	spot := h.wrtGen.SpotForActiveMode()
	if spot == 0 || h.wrtGen.PricePerUndTick() <= 0 {
		return false
	}

	greeks := h.sec.Greeks()
	adjDelta := h.bridge.CalcAdjustedDelta(greeks.Delta, greeks.Gamma, spot-greeks.RefSpot*market.WeightedAverageScale)
	if adjDelta == 0 {
		return false
	}
	if utils.AbsInt64(adjDelta) > utils.AbsInt64(greeks.Delta)*deltaAllowancePerMille/1000 {
		// Gamma correction drifted too far from the published delta.
		return false
	}

	if !h.detectMispricing(spot, adjDelta, greeks.Gamma, mmBid, ask) {
		return false
	}

	size := h.computeOrderSize(ask.Price)
	if size <= 0 {
		return false
	}
	if !h.comparisonMode {
		size = h.applyRiskGates(ask.Price, size, adjDelta)
		if size <= 0 {
			return false
		}
	}

	h.pendingBuyPrice = ask.Price
	h.pendingBuyQty = size
	h.pendingBuyDeltaShares = h.orderDeltaShares(size, adjDelta)
	h.p.OrderSize = size
	return true
}

// detectMispricing tries the three prediction paths in order.
func (h *SignalHandler) detectMispricing(spot, adjDelta, gamma int64, mmBid, ask market.BookLevel) bool {
	warrantTickSize := h.sec.SpreadTable().PriceToTickSize(ask.Price)
	spotBuffer := h.bridge.CalcSpotBufferFromTickBuffer(h.p.TickBuffer, warrantTickSize, adjDelta)

	// Path 1: the bucket holding the buffered spot already anchors at or
	// above the live ask.
	pricer := h.activePricerFor()
	if pricer.GetIntervalByUndSpot(h.ops.ShiftAdverse(spot, spotBuffer), &h.scratchIv) {
		if h.scratchIv.Data >= ask.Price {
			h.strongEntrySignal = true
			return true
		}
	}

	gap := ask.Price - mmBid.Price
	if gap <= 0 {
		return false
	}
	requiredMove := h.ops.SpotChangeMagnitude(h.bridge, gap, adjDelta, gamma) + spotBuffer

	// Path 2: extrapolate the bucket for the qualified bid and demand the
	// spot to have moved past it by the gap-implied amount.
	if pricer.GetIntervalByDerivPriceWithExtrapolation(mmBid.Price, &h.scratchIv) {
		threshold := h.ops.ShiftFavorable(h.ops.FavorableEdge(&h.scratchIv), requiredMove)
		if h.ops.IsFavorableOrEqual(spot, threshold) {
			h.strongEntrySignal = false
			return true
		}
	}

	// Path 3: previous spot as the anchor.
	prevSpot := h.wrtGen.PrevSpot()
	if prevSpot != 0 {
		threshold := h.ops.ShiftFavorable(prevSpot, requiredMove)
		if h.ops.IsFavorableOrEqual(spot, threshold) {
			h.strongEntrySignal = false
			return true
		}
	}
	return false
}

func (h *SignalHandler) activePricerFor() bucket.Predictor {
	return h.wrtGen.activePricer().pricer
}

// applyRiskGates runs the volume and delta-notional gates, possibly shrinking
// the order; zero means suppressed.
func (h *SignalHandler) applyRiskGates(askPrice, size, adjDelta int64) int64 {
	if h.p.TradesVolumeThreshold != 0 {
		threshold := h.tierScale(askPrice, h.p.TradesVolumeThreshold)
		if h.wrtGen.NetTradedQuantity(h.nanoOfDay)+size > threshold {
			logs.Infof("[Handler] Entry suppressed by volume gate: secCode %s, size %d", h.sec.Code(), size)
			return 0
		}
	}
	maxShares := h.issuerUndP.MaxUndDeltaShares
	if maxShares == 0 {
		return size
	}
	current := h.issuerUndP.UndDeltaShares + h.issuerUndP.PendingUndDeltaShares
	available := h.ops.AvailableDeltaShares(current, maxShares)
	if available <= 0 {
		logs.Infof("[Handler] Entry suppressed by delta gate: secCode %s, available %d", h.sec.Code(), available)
		return 0
	}
	needed := h.orderDeltaShares(size, adjDelta)
	if needed <= available {
		return size
	}
	// Shrink to the lot-rounded remaining capacity.
	absDelta := utils.AbsInt64(adjDelta)
	shrunk := utils.RoundDownToLotSize(available*100*h.sec.ConvRatio()/absDelta, h.sec.LotSize())
	if shrunk <= 0 {
		logs.Infof("[Handler] Entry suppressed by delta gate: secCode %s, needed %d, available %d", h.sec.Code(), needed, available)
		return 0
	}
	return shrunk
}

func (h *SignalHandler) orderDeltaShares(quantity, delta int64) int64 {
	convRatio := h.sec.ConvRatio()
	if convRatio == 0 {
		return 0
	}
	return quantity * utils.AbsInt64(delta) / (100 * convRatio)
}

// tierScale shrinks a size-like threshold for the higher price tiers.
func (h *SignalHandler) tierScale(price, value int64) int64 {
	switch {
	case price < largeWarrantPrice:
		return value
	case price < veryLargeWarrantPrice:
		return value / 2
	default:
		return value / 4
	}
}

// computeOrderSize applies the price tier, the percent multiplier, the lot
// rounding and the tier cap.
func (h *SignalHandler) computeOrderSize(askPrice int64) int64 {
	base := h.p.CurrentOrderSize
	if base == 0 {
		base = h.p.BaseOrderSize
	}
	size := h.tierScale(askPrice, base)
	size = utils.ApplyPercent(size, h.p.OrderSizeMultiplier)
	size = utils.RoundDownToLotSize(size, h.sec.LotSize())
	maxSize := utils.RoundDownToLotSize(h.tierScale(askPrice, h.p.MaxOrderSize), h.sec.LotSize())
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return size
}

// --- position lifecycle ---

func (h *SignalHandler) onPositionBought() {
	fillPrice := h.ackPrice
	if fillPrice == 0 {
		fillPrice = h.pendingBuyPrice
	}
	table := h.sec.SpreadTable()
	h.enterNanoOfDay = h.ackNanoOfDay
	h.p.EnterPrice = fillPrice
	h.p.EnterLevel = table.PriceToTick(fillPrice)
	h.p.EnterQuantity = h.ackQuantity
	h.p.ExitLevel = h.p.EnterLevel
	h.p.ProfitRun = 0
	h.p.EnterMMSpread = h.wrtGen.MmSpread()
	h.p.EnterSpotPrice = h.wrtGen.SpotForActiveMode()
	mmBid := h.wrtGen.MmBid()
	h.p.EnterMMBidPrice = mmBid.Price
	h.p.EnterBidLevel = mmBid.TickLevel

	safeLevel := h.p.EnterBidLevel - int(h.p.SafeBidLevelBuffer)
	if safeLevel < market.MinTickLevel {
		safeLevel = market.MinTickLevel
	}
	h.p.SafeBidPrice = table.TickToPrice(safeLevel)

	h.initStopLoss()

	h.issuerUndP.PendingUndDeltaShares -= h.pendingBuyDeltaShares
	if h.issuerUndP.PendingUndDeltaShares < 0 {
		h.issuerUndP.PendingUndDeltaShares = 0
	}
	h.pendingBuyDeltaShares = 0

	logs.Infof("[Handler] Position bought: secCode %s, enterPrice %d, quantity %d, stopLoss %d",
		h.sec.Code(), h.p.EnterPrice, h.p.EnterQuantity, h.stopLossSpot)
	h.sender.BroadcastBatchedPersist(h.p)
}

func (h *SignalHandler) onPositionNotBought() {
	h.armBuyBan(h.nanoOfDay + banPeriodOnBuyRejectNs)
	h.issuerUndP.PendingUndDeltaShares -= h.pendingBuyDeltaShares
	if h.issuerUndP.PendingUndDeltaShares < 0 {
		h.issuerUndP.PendingUndDeltaShares = 0
	}
	h.pendingBuyDeltaShares = 0
	logs.Infof("[Handler] Position not bought: secCode %s, rejectType %s", h.sec.Code(), h.ackReject)
}

func (h *SignalHandler) onPositionFullySold() {
	won := h.ackPrice > h.p.EnterPrice
	h.adaptOrderSize(won)
	h.p.ResetPositionOutputs()
	h.stopLossSpot = 0
	h.standbyStopLoss = 0
	h.turnoverSellPending = false
	h.turnoverSellPrice = 0
	h.pendingSellQty = 0
	h.enterNanoOfDay = 0
	if h.p.SellingBanPeriod > 0 {
		h.buyBanUntil = utils.MaxInt64(h.buyBanUntil, h.nanoOfDay+h.p.SellingBanPeriod)
	}
	logs.Infof("[Handler] Position fully sold: secCode %s, exitPrice %d, won %t, currentOrderSize %d",
		h.sec.Code(), h.ackPrice, won, h.p.CurrentOrderSize)
	h.sender.BroadcastBatchedPersist(h.p)
}

func (h *SignalHandler) onPositionNotFullySold() {
	h.pendingSellQty = 0
	logs.Infof("[Handler] Sell not filled: secCode %s, rejectType %s, position %d", h.sec.Code(), h.ackReject, h.sec.Position())
}

// adaptOrderSize nudges the adaptive size after a full exit: up after enough
// consecutive wins or a strong entry signal, down toward the base on a loss,
// halved on a losing streak.
func (h *SignalHandler) adaptOrderSize(won bool) {
	size := h.p.CurrentOrderSize
	if size == 0 {
		size = h.p.BaseOrderSize
	}
	if won {
		h.consecutiveWins++
		h.consecutiveLosses = 0
		if h.consecutiveWins >= consecutiveWinsForSizeUp || h.strongEntrySignal {
			size += h.p.OrderSizeIncrement
			h.consecutiveWins = 0
		}
	} else {
		h.consecutiveLosses++
		h.consecutiveWins = 0
		size -= h.p.OrderSizeIncrement
		if h.consecutiveLosses >= 2 {
			size /= 2
		}
		if size < h.p.BaseOrderSize {
			size = h.p.BaseOrderSize
		}
	}
	if size > h.p.MaxOrderSize {
		size = h.p.MaxOrderSize
	}
	size = utils.RoundDownToLotSize(size, h.sec.LotSize())
	h.p.CurrentOrderSize = size
	h.strongEntrySignal = false
}

// --- stop loss and profit ---

// initStopLoss derives the entry stop from the bucket holding the qualified
// bid, for both the active and the standby pricing mode.
func (h *SignalHandler) initStopLoss() {
	h.stopLossSpot = h.stopLossFromPricer(h.wrtGen.activePricer().pricer)
	h.standbyStopLoss = h.stopLossFromPricer(h.wrtGen.standbyPricer().pricer)
	if h.p.StopLoss != 0 {
		// An externally seeded stop survives if tighter.
		h.stopLossSpot = h.ops.TighterStopLoss(h.stopLossSpot, h.p.StopLoss)
	}
	h.p.StopLoss = h.stopLossSpot
}

func (h *SignalHandler) stopLossFromPricer(pricer bucket.Predictor) int64 {
	mmBid := h.wrtGen.MmBid()
	if mmBid.Price == 0 {
		return 0
	}
	if !pricer.GetIntervalByDerivPriceWithExtrapolation(mmBid.Price, &h.scratchIv) {
		return 0
	}
	greeks := h.sec.Greeks()
	warrantTickSize := h.sec.SpreadTable().PriceToTickSize(mmBid.Price)
	buffer := h.bridge.CalcSpotBufferFromTickBuffer(h.p.StopLossTickBuffer, warrantTickSize, greeks.Delta)
	return h.ops.ShiftAdverse(h.ops.AdverseEdge(&h.scratchIv), buffer)
}

// reviseStopLossAndProfitRun runs on each warrant tick while holding.
func (h *SignalHandler) reviseStopLossAndProfitRun() {
	bid := h.wrtGen.BestBid()
	if bid.Price == 0 {
		return
	}
	run := int64(bid.TickLevel - h.p.EnterLevel)
	if run > h.p.ProfitRun {
		h.p.ProfitRun = run
	}
	if run > 0 {
		level := bid.TickLevel
		if level > h.p.ExitLevel+exitLevelAllowance {
			h.p.ExitLevel = level - exitLevelAllowance
		}
	}

	mmBid := h.wrtGen.MmBid()
	if mmBid.Price != 0 && bid.Price == mmBid.Price && h.exit.canReviseStopLoss {
		candidate := h.stopLossFromPricer(h.wrtGen.activePricer().pricer)
		if h.ops.CanTightenStopLoss(candidate, h.stopLossSpot) {
			h.stopLossSpot = h.ops.TighterStopLoss(h.stopLossSpot, candidate)
			h.p.StopLoss = h.stopLossSpot
		}
		standby := h.stopLossFromPricer(h.wrtGen.standbyPricer().pricer)
		if h.ops.CanTightenStopLoss(standby, h.standbyStopLoss) {
			h.standbyStopLoss = h.ops.TighterStopLoss(h.standbyStopLoss, standby)
		}
	}
}

// onPricingModeSwitched keeps stop-loss continuity across a mode switch.
func (h *SignalHandler) onPricingModeSwitched() {
	if h.standbyStopLoss == 0 {
		return
	}
	h.stopLossSpot, h.standbyStopLoss = h.ops.TighterStopLoss(h.stopLossSpot, h.standbyStopLoss), h.stopLossSpot
	h.p.StopLoss = h.stopLossSpot
	logs.Infof("[Handler] Stop loss carried over mode switch: secCode %s, stopLoss %d", h.sec.Code(), h.stopLossSpot)
}

// detectSell evaluates every sell trigger while holding.
func (h *SignalHandler) detectSell() bool {
	if h.p.DoNotSell || h.sec.AvailablePosition() <= 0 {
		return false
	}
	if h.nanoOfDay < h.sellBanUntil {
		return false
	}
	bid := h.wrtGen.BestBid()

	// A deferred turnover sell fires once the bid recovers to the churn
	// price.
	if h.turnoverSellPending && bid.Price >= h.turnoverSellPrice {
		h.turnoverSellPending = false
		h.explain.setFlag(ExplainFlagTurnoverMaking)
		return true
	}

	// Stop loss, gated by the wide-spread policy.
	spot := h.wrtGen.SpotForActiveMode()
	if h.ops.IsStopLossHit(spot, h.stopLossSpot) {
		if h.p.SpreadState == params.SpreadStateNormal ||
			h.p.AllowStopLossOnWideSpread || h.exit.allowStopLossOnWideSpread ||
			h.p.CanSellOnWide || h.wrtGen.IsLooselyTight() {
			return true
		}
		// First hit on a wide spread defers; a repeat hit sells regardless.
		h.p.CanSellOnWide = true
	}

	if bid.Price == 0 {
		return false
	}

	// Profit targets: run ticks, dollar stop-profit, quick-profit window.
	if h.p.RunTicksThreshold > 0 && h.p.ProfitRun >= h.p.RunTicksThreshold {
		return true
	}
	if h.p.StopProfit > 0 && h.p.EnterPrice != 0 && bid.Price-h.p.EnterPrice >= h.p.StopProfit {
		return true
	}
	if h.p.SellAtQuickProfit && h.enterNanoOfDay != 0 &&
		h.nanoOfDay-h.enterNanoOfDay <= quickProfitTimeNs && bid.Price > h.p.EnterPrice {
		return true
	}
	if h.p.HoldingPeriod > 0 && h.enterNanoOfDay != 0 && h.nanoOfDay-h.enterNanoOfDay >= h.p.HoldingPeriod {
		return true
	}

	// Exit policies that sell on reaching the computed exit level.
	if h.exit.sellOnHitExitLevel && h.p.ExitLevel != 0 && bid.TickLevel >= h.p.ExitLevel {
		return true
	}
	return false
}

func (h *SignalHandler) prepareCaptureProfit() bool {
	if h.p.DoNotSell || h.sec.AvailablePosition() <= 0 || h.nanoOfDay < h.sellBanUntil {
		return false
	}
	return h.wrtGen.BestBid().Price != 0
}

func (h *SignalHandler) prepareExitSell() bool {
	if h.sec.AvailablePosition() <= 0 {
		return false
	}
	if h.p.DoNotSell && h.exit.mode != params.ExitModeError {
		return false
	}
	return true
}

func (h *SignalHandler) prepareTurnoverSell() bool {
	if h.p.DoNotSell || h.sec.AvailablePosition() <= 0 || h.nanoOfDay < h.sellBanUntil {
		return false
	}
	if h.turnoverSellPrice == 0 {
		return false
	}
	bid := h.wrtGen.BestBid()
	if bid.Price >= h.turnoverSellPrice {
		h.turnoverSellPending = false
		h.explain.setFlag(ExplainFlagTurnoverMaking)
		return true
	}
	// Bid below the churn price: defer until it recovers.
	h.turnoverSellPending = true
	return false
}

// sellPrice applies the exit policy's price discipline.
func (h *SignalHandler) sellPrice() int64 {
	table := h.sec.SpreadTable()
	bid := h.wrtGen.BestBid()
	if !h.p.IgnoreMmSizeOnSell && h.wrtGen.MmBid().Price != 0 {
		// Anchor on the issuer's qualified bid; a better non-issuer bid is
		// kept only when selling to non-issuers is allowed.
		if !h.p.SellToNonIssuer || bid.Price <= h.wrtGen.MmBid().Price {
			bid = h.wrtGen.MmBid()
		}
	}
	if h.turnoverSellPrice != 0 && !h.turnoverSellPending && bid.Price >= h.turnoverSellPrice {
		price := h.turnoverSellPrice
		h.turnoverSellPrice = 0
		return h.floorAtBreakEven(price)
	}
	var price int64
	switch h.exit.style {
	case sellStyleAtBid:
		price = bid.Price
	case sellStyleAtEnterPrice:
		price = h.p.EnterPrice
	case sellStyleNoCheck:
		price = h.p.SafeBidPrice
		if price == 0 {
			price = bid.Price
		}
	default:
		// One tick below bid with the safety floor.
		if bid.TickLevel > market.MinTickLevel {
			price = table.TickToPrice(bid.TickLevel - 1)
		} else {
			price = bid.Price
		}
		if h.p.SafeBidPrice != 0 && price < h.p.SafeBidPrice {
			price = h.p.SafeBidPrice
		}
	}
	return h.floorAtBreakEven(price)
}

func (h *SignalHandler) floorAtBreakEven(price int64) int64 {
	if h.p.SellAtBreakEvenOnly && h.p.EnterPrice != 0 && price < h.p.EnterPrice {
		return h.p.EnterPrice
	}
	return price
}

// --- down-vol, volume, turnover, delta, lag callbacks ---

func (h *SignalHandler) onDownVolWhileFlat() {
	if h.p.BanPeriodToDownVol > 0 {
		h.armBuyBan(h.nanoOfDay + h.p.BanPeriodToDownVol)
	}
	// No position: any stale adverse adjustment is noise now.
	h.p.StopLossAdjustment = 0
}

// onDownVolWhilePosition returns true when the policy is to sell into the
// down-vol immediately.
func (h *SignalHandler) onDownVolWhilePosition() bool {
	if h.p.BanPeriodToDownVol > 0 {
		h.armBuyBan(h.nanoOfDay + h.p.BanPeriodToDownVol)
	}
	if h.p.SellOnVolDown && h.sec.AvailablePosition() > 0 && !h.p.DoNotSell {
		if h.p.SellOnVolDownBanPeriod > 0 {
			h.armBuyBan(h.nanoOfDay + h.p.SellOnVolDownBanPeriod)
		}
		h.explain.setFlag(ExplainFlagVolDown)
		return true
	}
	if h.p.ResetStopLossOnVolDown {
		spot := h.wrtGen.SpotForActiveMode()
		if spot != 0 && h.exit.canReviseStopLoss {
			// Adverse-volume tightening, bounded by the live spot.
			adjusted := h.ops.TighterStopLoss(h.stopLossSpot, spot)
			if adjusted != h.stopLossSpot {
				h.p.StopLossAdjustment = adjusted - h.stopLossSpot
				h.stopLossSpot = adjusted
				h.p.StopLoss = adjusted
			}
		}
	}
	return false
}

func (h *SignalHandler) observeOutstandingVolume() {
	if h.p.TradesVolumeThreshold == 0 {
		return
	}
	net := h.wrtGen.NetTradedQuantity(h.nanoOfDay)
	if utils.AbsInt64(net) > h.p.TradesVolumeThreshold {
		h.largeOutstandingBanUntil = h.nanoOfDay + largeOutstandingEffectTimeNs
	}
}

// OnTurnoverMakingDetected satisfies trigger.TurnoverMakingHandler.
func (h *SignalHandler) OnTurnoverMakingDetected(nanoOfDay, price int64) error {
	h.nanoOfDay = nanoOfDay
	if h.p.BanPeriodToTurnoverMaking > 0 {
		h.armBuyBan(nanoOfDay + h.p.BanPeriodToTurnoverMaking)
	}
	h.turnoverSellPrice = price
	h.sender.SendEvent(h.sec.Sid(), nanoOfDay, info.EventTurnoverMaking, price)
	logs.Infof("[Handler] Turnover making detected: secCode %s, price %d", h.sec.Code(), price)
	return h.bus.FireEvent(EventTurnoverMaking)
}

// OnDeltaLimitExceeded satisfies risk.DeltaLimitHandler.
func (h *SignalHandler) OnDeltaLimitExceeded(_, nanoOfDay, _ int64) error {
	h.nanoOfDay = nanoOfDay
	return h.bus.FireEvent(EventDeltaLimitAlertReceived)
}

// OnIssuerLagUpdated satisfies trigger.IssuerLagHandler: measured refresh
// latencies feed the predictors' staleness horizon, floored and capped.
func (h *SignalHandler) OnIssuerLagUpdated(lagNs int64) error {
	lag := utils.MaxInt64(lagNs, minIssuerMaxLagNs)
	if h.p.IssuerMaxLagCap > 0 {
		lag = utils.MinInt64(lag, h.p.IssuerMaxLagCap)
	}
	h.p.IssuerLag = lag
	h.wrtGen.wa.pricer.SetIssuerMaxLag(lag)
	h.wrtGen.mp.pricer.SetIssuerMaxLag(lag)
	h.sender.SendEvent(h.sec.Sid(), h.nanoOfDay, info.EventIssuerLag, lag)
	return nil
}

// OnIssuerSmoothingUpdated satisfies trigger.IssuerLagHandler.
func (h *SignalHandler) OnIssuerSmoothingUpdated(timeInWideSpreadNs int64) error {
	h.p.IssuerSmoothing = utils.MaxInt64(timeInWideSpreadNs, minIssuerWideTimeNs)
	return nil
}

// OnTriggerGeneratorSubscribed satisfies trigger.Handler.
func (h *SignalHandler) OnTriggerGeneratorSubscribed(g trigger.Generator) { h.activeTrigger = g }

// OnTriggerGeneratorUnsubscribed satisfies trigger.Handler.
func (h *SignalHandler) OnTriggerGeneratorUnsubscribed(g trigger.Generator) {
	if h.activeTrigger == g {
		h.activeTrigger = nil
	}
}

// --- order acknowledgements ---

// OnOrderStatusReceived satisfies market.OrderStatusHandler; it stores the
// acknowledgement and lets the machine translate it in its current state.
func (h *SignalHandler) OnOrderStatusReceived(nanoOfDay, price, quantity int64, status market.OrderStatus, rejectType market.OrderRejectType) error {
	h.ackNanoOfDay = nanoOfDay
	h.ackPrice = price
	h.ackQuantity = quantity
	h.ackStatus = status
	h.ackReject = rejectType
	h.nanoOfDay = nanoOfDay
	return h.bus.FireEvent(EventOrderStatusUpdated)
}

func (h *SignalHandler) onBuyAck() int {
	switch h.ackStatus {
	case market.OrderStatusFilled, market.OrderStatusPartiallyFilled:
		if h.ackQuantity > 0 {
			h.sec.UpdatePosition(h.ackQuantity)
			return TransitionOrderFilled
		}
		return statemachine.NoTransition
	case market.OrderStatusRejected, market.OrderStatusCancelled, market.OrderStatusExpired, market.OrderStatusFailed:
		return TransitionOrderNotFilled
	}
	return statemachine.NoTransition
}

func (h *SignalHandler) onSellAck() int {
	switch h.ackStatus {
	case market.OrderStatusFilled, market.OrderStatusPartiallyFilled:
		if h.ackQuantity > 0 {
			h.sec.UpdatePosition(-h.ackQuantity)
		}
		if h.sec.Position() <= 0 {
			return TransitionOrderFilled
		}
		if h.ackStatus == market.OrderStatusFilled {
			// Fill smaller than the position: keep holding the rest.
			return TransitionOrderNotFilled
		}
		return statemachine.NoTransition
	case market.OrderStatusRejected:
		switch h.ackReject {
		case market.RejectThrottled, market.RejectTimeout:
			h.sellBanUntil = h.nanoOfDay + banPeriodOnSellRejectNs
		case market.RejectInsufficientPosition:
			// Stale position view; re-check against what the book says is
			// ours and replace the sell while the exit still holds.
			logs.Warnf("[Handler] Sell rejected for insufficient position: secCode %s, position %d, pendingSell %d",
				h.sec.Code(), h.sec.Position(), h.sec.PendingSell())
			if h.sec.AvailablePosition() > 0 &&
				((h.p.Status == params.StatusExiting && h.exit.sellPosition) || h.detectSell()) {
				return TransitionSellPosition
			}
			h.sellBanUntil = h.nanoOfDay + banPeriodOnSellRejectNs
		default:
			h.sellBanUntil = h.nanoOfDay + banPeriodOnSellRejectNs
		}
		return TransitionOrderNotFilled
	case market.OrderStatusCancelled, market.OrderStatusExpired, market.OrderStatusFailed:
		return TransitionOrderNotFilled
	}
	return statemachine.NoTransition
}

// --- control surface ---

// SwitchOn brings the automaton out of OFF, honoring any live position.
func (h *SignalHandler) SwitchOn(nanoOfDay int64) error {
	if h.machine.CurrentStateID() != StateOff {
		return nil
	}
	h.nanoOfDay = nanoOfDay
	h.pendingSwitchOn = false
	h.exit = behaviorFor(params.ExitModeNormal)
	h.p.Status = params.StatusActive
	h.wrtGen.EnableCollectBuckets(true)
	if h.triggers != nil {
		if err := h.triggers.Subscribe(h, h.p.StrategyTriggerType); err != nil {
			logs.Errorf("[Handler] Trigger subscription failed: secCode %s: %v", h.sec.Code(), err)
		}
	}
	h.undParams.IncNumActiveWarrants()
	h.sender.SendEvent(h.sec.Sid(), nanoOfDay, info.EventStrategySwitchedOn, 0)
	logs.Infof("[Handler] Switched on: secCode %s, position %d", h.sec.Code(), h.sec.Position())
	if h.sec.Position() > 0 {
		return h.proceed(TransitionEnterWithPosition)
	}
	return h.proceed(TransitionEnterWithoutPosition)
}

func (h *SignalHandler) proceed(transitionID int) error {
	// Re-enter through the machine so the target state's entry action runs.
	switch transitionID {
	case TransitionEnterWithPosition:
		if err := h.machine.Start(StatePositionHeld); err != nil {
			return err
		}
		return h.onEnterPositionHeld(StateOff, transitionID)
	case TransitionEnterWithoutPosition:
		if err := h.machine.Start(StateNoPositionHeld); err != nil {
			return err
		}
		return h.onEnterNoPosition(StateOff, transitionID)
	}
	return fmt.Errorf("handler %s: unsupported manual transition %d", h.sec.Code(), transitionID)
}

// SwitchOff requests a transition to OFF under the given exit mode; the
// request is ignored when a higher or equal priority mode is already active.
func (h *SignalHandler) SwitchOff(nanoOfDay int64, mode params.ExitMode) error {
	nb := behaviorFor(mode)
	if h.machine.CurrentStateID() != StateOff && !h.exit.canBeReplacedBy(nb) {
		logs.Infof("[Handler] Switch-off ignored: secCode %s, activeExitMode %s, requestedExitMode %s",
			h.sec.Code(), h.exit.mode, mode)
		return nil
	}
	h.nanoOfDay = nanoOfDay
	h.exit = nb
	h.p.Status = nb.defaultStatus
	h.p.CanSellOnWide = nb.allowStopLossOnWideSpread
	return h.bus.FireEvent(EventSwitchedOff)
}

// PendingSwitchOn marks a deferred switch-on that a later ProceedSwitchOn
// will act upon.
func (h *SignalHandler) PendingSwitchOn() { h.pendingSwitchOn = true }

// CancelSwitchOn abandons a pending switch-on before it is acted upon.
func (h *SignalHandler) CancelSwitchOn() { h.pendingSwitchOn = false }

// HasPendingSwitchOn reports whether a deferred switch-on is waiting.
func (h *SignalHandler) HasPendingSwitchOn() bool { return h.pendingSwitchOn }

// ProceedSwitchOn executes a pending switch-on, if still pending.
func (h *SignalHandler) ProceedSwitchOn(nanoOfDay int64) error {
	if !h.pendingSwitchOn {
		return nil
	}
	return h.SwitchOn(nanoOfDay)
}

// CaptureProfit requests an immediate profit-taking sell.
func (h *SignalHandler) CaptureProfit(nanoOfDay int64) error {
	h.nanoOfDay = nanoOfDay
	return h.bus.FireEvent(EventCaptureProfit)
}

// PlaceSellOrder requests a manual sell under the active exit discipline.
func (h *SignalHandler) PlaceSellOrder(nanoOfDay int64) error {
	h.nanoOfDay = nanoOfDay
	if h.p.ManualOrderTicksFromEnter > 0 && h.p.EnterLevel != 0 && h.sec.AvailablePosition() > 0 {
		price := h.sec.SpreadTable().TickToPrice(h.p.EnterLevel + int(h.p.ManualOrderTicksFromEnter))
		qty := h.sec.AvailablePosition()
		h.fillExplain(explainSideSell, price, qty)
		h.explain.logSell()
		if _, err := h.orderSvc.SellLimit(h.sec, price, qty, h.explain); err != nil {
			return err
		}
		h.sec.UpdatePendingSell(qty)
		return nil
	}
	return h.bus.FireEvent(EventPlaceSellOrder)
}

// Reset returns all transient decision state to neutral; inputs survive.
func (h *SignalHandler) Reset(nanoOfDay int64) {
	h.nanoOfDay = nanoOfDay
	h.buyBanUntil = 0
	h.sellBanUntil = 0
	h.largeOutstandingBanUntil = 0
	h.stopLossSpot = 0
	h.standbyStopLoss = 0
	h.turnoverSellPending = false
	h.turnoverSellPrice = 0
	h.pendingSellQty = 0
	h.pendingBuyDeltaShares = 0
	h.consecutiveWins = 0
	h.consecutiveLosses = 0
	h.strongEntrySignal = false
	h.pendingSwitchOn = false
	h.p.ResetPositionOutputs()
	h.exit = behaviorFor(params.ExitModeNormal)
	if h.triggers != nil {
		h.triggers.ResetAllTriggers(h.undGen.Security().Sid())
	}
	h.wrtGen.Reset()
	logs.Infof("[Handler] Reset: secCode %s", h.sec.Code())
}

// --- misc ---

func (h *SignalHandler) armBuyBan(until int64) {
	h.buyBanUntil = utils.MaxInt64(h.buyBanUntil, until)
}

func (h *SignalHandler) enterErrorMode(err error) error {
	h.sender.SendEvent(h.sec.Sid(), h.nanoOfDay, info.EventStrategyErrorHandled, 0)
	logs.Errorf("[Handler] Entering error exit mode: secCode %s: %v", h.sec.Code(), err)
	return h.SwitchOff(h.nanoOfDay, params.ExitModeError)
}

func (h *SignalHandler) fillExplain(side int64, price, qty int64) {
	e := h.explain
	flags := e.flags
	e.clear()
	e.flags = flags
	if h.p.SpreadState != params.SpreadStateNormal {
		e.setFlag(ExplainFlagWideSpread)
	}
	e.set(explainSlotNanoOfDay, h.nanoOfDay)
	e.set(explainSlotSide, side)
	e.set(explainSlotPrice, price)
	e.set(explainSlotQuantity, qty)
	e.set(explainSlotBestBid, h.wrtGen.BestBid().Price)
	e.set(explainSlotBestAsk, h.wrtGen.BestAsk().Price)
	e.set(explainSlotMmBid, h.wrtGen.MmBid().Price)
	e.set(explainSlotMmAsk, h.wrtGen.MmAsk().Price)
	e.set(explainSlotMmSpread, int64(h.wrtGen.MmSpread()))
	e.set(explainSlotTargetSpread, int64(h.wrtGen.TargetSpread()))
	e.set(explainSlotWavgSpot, h.undGen.WeightedAverageSpot())
	e.set(explainSlotMidSpot, h.undGen.MidSpot())
	e.set(explainSlotPrevSpot, h.wrtGen.PrevSpot())
	e.set(explainSlotDelta, h.sec.Greeks().Delta)
	e.set(explainSlotTickSensitivity, h.p.TickSensitivity)
	e.set(explainSlotPricePerUndTick, h.wrtGen.PricePerUndTick())
	e.set(explainSlotStopLoss, h.stopLossSpot)
	e.set(explainSlotExitLevel, int64(h.p.ExitLevel))
	e.set(explainSlotOrderSize, h.p.OrderSize)
	e.set(explainSlotTriggerSeq, int64(h.p.LastTriggerSeq))
	e.set(explainSlotSpreadState, int64(h.p.SpreadState))
	e.set(explainSlotPricingMode, int64(h.p.PricingMode))
}
