package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonvincal/lunar-sub006/info"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/orders"
	"github.com/wonvincal/lunar-sub006/params"
)

type handlerFixture struct {
	ctx *Context
	sim *orders.Simulated
	rec *info.Recorder
	und *market.Security
	wrt *market.Security
	wc  *warrantContext
	uc  *underlyingContext
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	stp := params.NewStrategyTypeParams()
	d := stp.DefaultWrtParams
	d.MmBidSize = 200_000
	d.MmAskSize = 200_000
	d.BaseOrderSize = 50_000
	d.MaxOrderSize = 200_000
	d.TickSensitivityThreshold = 500
	d.SpreadObservationPeriod = 0

	sim := orders.NewSimulated()
	rec := &info.Recorder{}
	ctx := NewContext(6, stp, sim, rec, false)

	und := market.NewSecurity(700, "700", market.SecurityTypeStock,
		market.SideNone, market.NewFixedSpreadTable(100), 100, 0, 0, nil)
	wrt := market.NewSecurity(5001, "18888", market.SecurityTypeWarrant,
		market.SideCall, market.NewFixedSpreadTable(1), 10_000, 8_000, 3, und)
	require.NoError(t, ctx.InitializeContextForSecurity(wrt))

	f := &handlerFixture{
		ctx: ctx,
		sim: sim,
		rec: rec,
		und: und,
		wrt: wrt,
		wc:  ctx.warrant(5001),
		uc:  ctx.underlying(700),
	}
	f.uc.gen.Start()
	f.wc.wrtGen.Start()
	return f
}

func (f *handlerFixture) feedWarrantBook(t *testing.T, nano, bid, ask int64) {
	t.Helper()
	book := market.NewOrderBook()
	book.SetBids(market.BookLevel{Price: bid, TickLevel: int(bid), Qty: 300_000})
	book.SetAsks(market.BookLevel{Price: ask, TickLevel: int(ask), Qty: 300_000})
	require.NoError(t, f.wrt.OnOrderBookUpdated(nano, book))
}

func (f *handlerFixture) feedUndBook(t *testing.T, nano, bid, ask int64) {
	t.Helper()
	book := market.NewOrderBook()
	book.SetBids(market.BookLevel{Price: bid, Qty: 1_000})
	book.SetAsks(market.BookLevel{Price: ask, Qty: 1_000})
	require.NoError(t, f.und.OnOrderBookUpdated(nano, book))
}

func (f *handlerFixture) feedGreeks(t *testing.T) {
	t.Helper()
	require.NoError(t, f.wrt.OnGreeksUpdated(&market.Greeks{
		Delta: 50_000, Gamma: 0, RefSpot: 100_000, Ask: 105,
	}))
}

func hasEvent(rec *info.Recorder, event info.EventType) bool {
	for _, e := range rec.Events {
		if e.Event == event {
			return true
		}
	}
	return false
}

func TestSwitchOnAndOffWhileFlat(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	assert.False(t, h.IsOn())
	require.NoError(t, h.SwitchOn(1_000))
	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())
	assert.Equal(t, params.StatusActive, f.wc.p.Status)
	assert.Equal(t, 1, f.uc.p.NumActiveWarrants)
	assert.True(t, hasEvent(f.rec, info.EventStrategySwitchedOn))

	// Already on: a second switch-on is a no-op.
	require.NoError(t, h.SwitchOn(1_500))
	assert.Equal(t, 1, f.uc.p.NumActiveWarrants)

	require.NoError(t, h.SwitchOff(2_000, params.ExitModeStrategyExit))
	assert.Equal(t, StateOff, h.CurrentStateID())
	assert.False(t, h.IsOn())
	assert.Equal(t, params.StatusOff, f.wc.p.Status)
	assert.Equal(t, 0, f.uc.p.NumActiveWarrants)
	assert.True(t, hasEvent(f.rec, info.EventStrategySwitchedOff))
}

func TestSwitchOnWithExistingPosition(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	f.wrt.UpdatePosition(30_000)
	require.NoError(t, h.SwitchOn(1_000))
	assert.Equal(t, StatePositionHeld, h.CurrentStateID())
}

func TestPendingSwitchOnLifecycle(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	h.PendingSwitchOn()
	require.True(t, h.HasPendingSwitchOn())
	h.CancelSwitchOn()
	require.NoError(t, h.ProceedSwitchOn(1_000))
	assert.Equal(t, StateOff, h.CurrentStateID())

	h.PendingSwitchOn()
	require.NoError(t, h.ProceedSwitchOn(2_000))
	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())
	assert.False(t, h.HasPendingSwitchOn())
}

func TestEntryBuyAndStopLossRoundTrip(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	require.NoError(t, h.SwitchOn(1_000))
	f.feedGreeks(t)
	assert.Equal(t, int64(6_250), f.wc.p.TickSensitivity)

	// A one-tick qualified book; with no observation period configured the
	// spread is adopted as target on the first walk.
	f.feedWarrantBook(t, 2_000, 104, 105)
	require.True(t, f.wc.wrtGen.IsAtTargetSpread())
	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())

	// The first spot estimate lands in a bucket anchored at the live ask,
	// which authorizes an entry at that ask.
	f.feedUndBook(t, 3_000, 100_000, 100_100)
	require.Equal(t, StateBuyingPosition, h.CurrentStateID())

	order, ok := f.sim.LastOrder()
	require.True(t, ok)
	assert.Equal(t, orders.KindBuy, order.Kind)
	assert.Equal(t, int64(105), order.Price)
	assert.Equal(t, int64(50_000), order.Quantity)
	ic := f.ctx.issuerUnd(3, 700)
	assert.Equal(t, int64(3_125), ic.p.PendingUndDeltaShares)

	require.NoError(t, f.sim.AckLast(4_000, market.OrderStatusFilled, 105, 50_000, market.RejectNone))
	require.Equal(t, StatePositionHeld, h.CurrentStateID())
	assert.Equal(t, int64(50_000), f.wrt.Position())
	assert.Equal(t, int64(105), f.wc.p.EnterPrice)
	assert.Equal(t, f.wc.p.EnterLevel, f.wc.p.ExitLevel)
	assert.Equal(t, int64(100_048_000), h.StopLossSpot())
	assert.Equal(t, h.StopLossSpot(), f.wc.p.StopLoss)
	assert.Equal(t, int64(0), ic.p.PendingUndDeltaShares)

	// The spot falls through the stop; the position is sold one tick below
	// the qualified bid.
	f.feedUndBook(t, 5_000, 99_900, 100_000)
	require.Equal(t, StateSellingPosition, h.CurrentStateID())
	order, _ = f.sim.LastOrder()
	assert.Equal(t, orders.KindSell, order.Kind)
	assert.Equal(t, int64(103), order.Price)

	require.NoError(t, f.sim.AckLast(6_000, market.OrderStatusFilled, 103, 50_000, market.RejectNone))
	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())
	assert.Equal(t, int64(0), f.wrt.Position())
	assert.Equal(t, int64(0), f.wc.p.EnterPrice)
	assert.Equal(t, int64(50_000), f.wc.p.CurrentOrderSize)
}

func TestProfitRunRevisionNeverLoosensStopLoss(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	require.NoError(t, h.SwitchOn(1_000))
	f.feedGreeks(t)
	f.feedWarrantBook(t, 2_000, 104, 105)
	f.feedUndBook(t, 3_000, 100_000, 100_100)
	require.Equal(t, StateBuyingPosition, h.CurrentStateID())
	require.NoError(t, f.sim.AckLast(4_000, market.OrderStatusFilled, 105, 50_000, market.RejectNone))
	require.Equal(t, StatePositionHeld, h.CurrentStateID())
	stopBefore := f.wc.p.StopLoss
	require.NotZero(t, stopBefore)

	// Bid up three ticks: the run grows but the exit level stays within its
	// allowance.
	f.feedWarrantBook(t, 5_000, 108, 109)
	require.Equal(t, StatePositionHeld, h.CurrentStateID())
	assert.Equal(t, int64(3), f.wc.p.ProfitRun)
	assert.Equal(t, f.wc.p.EnterLevel, f.wc.p.ExitLevel)
	assert.GreaterOrEqual(t, f.wc.p.StopLoss, stopBefore)

	// One more tick drags the exit level along behind the bid.
	f.feedWarrantBook(t, 6_000, 109, 110)
	assert.Equal(t, int64(4), f.wc.p.ProfitRun)
	assert.Equal(t, 106, f.wc.p.ExitLevel)
	assert.GreaterOrEqual(t, f.wc.p.StopLoss, stopBefore)

	// A pullback keeps the recorded run and never loosens the stop.
	f.feedWarrantBook(t, 7_000, 106, 107)
	assert.Equal(t, int64(4), f.wc.p.ProfitRun)
	assert.Equal(t, 106, f.wc.p.ExitLevel)
	assert.GreaterOrEqual(t, f.wc.p.StopLoss, stopBefore)
	assert.Equal(t, StatePositionHeld, h.CurrentStateID())
}

func TestStrategyExitSellsPositionAndTurnsOff(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	f.wrt.UpdatePosition(30_000)
	require.NoError(t, h.SwitchOn(1_000))
	f.feedWarrantBook(t, 2_000, 104, 105)
	require.Equal(t, StatePositionHeld, h.CurrentStateID())

	require.NoError(t, h.SwitchOff(3_000, params.ExitModeStrategyExit))
	require.Equal(t, StateSellingPosition, h.CurrentStateID())
	assert.Equal(t, params.ExitModeStrategyExit, h.ExitMode())

	order, ok := f.sim.LastOrder()
	require.True(t, ok)
	assert.Equal(t, orders.KindSellToExit, order.Kind)
	assert.Equal(t, int64(103), order.Price)
	assert.Equal(t, int64(30_000), order.Quantity)

	// Once flat, the exit policy turns the strategy off by itself.
	require.NoError(t, f.sim.AckLast(4_000, market.OrderStatusFilled, 103, 30_000, market.RejectNone))
	assert.Equal(t, StateOff, h.CurrentStateID())
	assert.Equal(t, params.StatusOff, f.wc.p.Status)
	assert.Equal(t, int64(0), f.wrt.Position())
}

func TestExitModePreemptionWhileHolding(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	// No book: sells bounce and the position is kept, so the exit mode in
	// force can be observed across requests.
	f.wrt.UpdatePosition(20_000)
	require.NoError(t, h.SwitchOn(1_000))

	require.NoError(t, h.SwitchOff(2_000, params.ExitModeStrategyExit))
	require.Equal(t, StatePositionHeld, h.CurrentStateID())
	assert.Equal(t, params.ExitModeStrategyExit, h.ExitMode())

	// Equal priority never preempts.
	require.NoError(t, h.SwitchOff(3_000, params.ExitModePriceCheckExit))
	assert.Equal(t, params.ExitModeStrategyExit, h.ExitMode())

	// Error mode outranks everything.
	require.NoError(t, h.SwitchOff(4_000, params.ExitModeError))
	assert.Equal(t, params.ExitModeError, h.ExitMode())
	assert.Empty(t, f.sim.Orders())
}

func TestUndesirableOutlookBlocksEntry(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	require.NoError(t, h.SwitchOn(1_000))
	f.wc.p.MarketOutlook = params.OutlookUndesirable
	f.feedGreeks(t)
	f.feedWarrantBook(t, 2_000, 104, 105)
	f.feedUndBook(t, 3_000, 100_000, 100_100)

	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())
	assert.Empty(t, f.sim.Orders())
}

func TestSellToNonIssuerKeepsBetterOutsideBid(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	f.wrt.UpdatePosition(30_000)
	f.wc.p.SellToNonIssuer = true
	require.NoError(t, h.SwitchOn(1_000))

	// Best bid 105 is too small to qualify; the issuer sits at 104.
	book := market.NewOrderBook()
	book.SetBids(
		market.BookLevel{Price: 105, TickLevel: 105, Qty: 50_000},
		market.BookLevel{Price: 104, TickLevel: 104, Qty: 300_000},
	)
	book.SetAsks(market.BookLevel{Price: 106, TickLevel: 106, Qty: 300_000})
	require.NoError(t, f.wrt.OnOrderBookUpdated(2_000, book))

	require.NoError(t, h.SwitchOff(3_000, params.ExitModeStrategyExit))
	order, ok := f.sim.LastOrder()
	require.True(t, ok)
	assert.Equal(t, int64(104), order.Price)
}

func TestInsufficientPositionRejectReplacesExitSell(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	f.wrt.UpdatePosition(30_000)
	require.NoError(t, h.SwitchOn(1_000))
	f.feedWarrantBook(t, 2_000, 104, 105)
	require.NoError(t, h.SwitchOff(3_000, params.ExitModeStrategyExit))
	require.Equal(t, StateSellingPosition, h.CurrentStateID())
	require.Len(t, f.sim.Orders(), 1)

	// A stale position view bounces the sell; the exit is still warranted,
	// so a replacement goes out in the same dispatch.
	require.NoError(t, f.sim.AckLast(4_000, market.OrderStatusRejected, 0, 0, market.RejectInsufficientPosition))
	require.Equal(t, StateSellingPosition, h.CurrentStateID())
	require.Len(t, f.sim.Orders(), 2)
	order, _ := f.sim.LastOrder()
	assert.Equal(t, orders.KindSellToExit, order.Kind)
	assert.Equal(t, int64(103), order.Price)
	assert.Equal(t, int64(30_000), order.Quantity)

	require.NoError(t, f.sim.AckLast(5_000, market.OrderStatusFilled, 103, 30_000, market.RejectNone))
	assert.Equal(t, StateOff, h.CurrentStateID())
	assert.Equal(t, int64(0), f.wrt.Position())
}

func TestTurnoverBanSuppressesEntryUntilDeadline(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	require.NoError(t, h.SwitchOn(1_000))
	f.feedGreeks(t)
	f.feedWarrantBook(t, 2_000, 104, 105)
	f.wc.p.BanPeriodToTurnoverMaking = 2_000

	// Churn detected while flat: nothing to sell, but buying is banned
	// until the deadline.
	require.NoError(t, h.OnTurnoverMakingDetected(3_000, 104))
	require.Equal(t, StateNoPositionHeld, h.CurrentStateID())

	f.feedUndBook(t, 4_000, 100_000, 100_100)
	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())
	assert.Empty(t, f.sim.Orders())

	// Past the deadline the same conditions authorize the entry.
	f.feedUndBook(t, 6_000, 100_000, 100_100)
	require.Equal(t, StateBuyingPosition, h.CurrentStateID())
	order, ok := f.sim.LastOrder()
	require.True(t, ok)
	assert.Equal(t, orders.KindBuy, order.Kind)
	assert.Equal(t, int64(105), order.Price)
}

func TestBuyRejectBansReentryUntilDeadline(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	require.NoError(t, h.SwitchOn(1_000))
	f.feedGreeks(t)
	f.feedWarrantBook(t, 2_000, 104, 105)
	f.feedUndBook(t, 3_000, 100_000, 100_100)
	require.Equal(t, StateBuyingPosition, h.CurrentStateID())
	require.Len(t, f.sim.Orders(), 1)

	// The reject sends the automaton back flat and arms the re-entry ban.
	require.NoError(t, f.sim.AckLast(4_000, market.OrderStatusRejected, 0, 0, market.RejectThrottled))
	require.Equal(t, StateNoPositionHeld, h.CurrentStateID())

	f.feedUndBook(t, 5_000, 100_000, 100_100)
	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())
	assert.Len(t, f.sim.Orders(), 1)

	// The ban lapses ten milliseconds after the reject.
	f.feedWarrantBook(t, 10_004_500, 104, 105)
	f.feedUndBook(t, 10_005_000, 100_000, 100_100)
	require.Equal(t, StateBuyingPosition, h.CurrentStateID())
	assert.Len(t, f.sim.Orders(), 2)
}

func TestStopLossDeferredOnWideSpreadSellsOnRepeatHit(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	require.NoError(t, h.SwitchOn(1_000))
	f.feedGreeks(t)
	f.feedWarrantBook(t, 2_000, 104, 105)
	f.feedUndBook(t, 3_000, 100_000, 100_100)
	require.Equal(t, StateBuyingPosition, h.CurrentStateID())
	require.NoError(t, f.sim.AckLast(4_000, market.OrderStatusFilled, 105, 50_000, market.RejectNone))
	require.Equal(t, StatePositionHeld, h.CurrentStateID())

	// The spread blows out well past the adopted target.
	f.feedWarrantBook(t, 5_000, 103, 112)
	require.NotEqual(t, params.SpreadStateNormal, f.wc.p.SpreadState)
	require.False(t, f.wc.wrtGen.IsLooselyTight())

	// First stop hit on the wide spread is deferred.
	f.feedUndBook(t, 6_000, 99_900, 100_000)
	assert.Equal(t, StatePositionHeld, h.CurrentStateID())
	assert.True(t, f.wc.p.CanSellOnWide)
	assert.Len(t, f.sim.Orders(), 1)

	// A repeat hit sells even though the spread is still wide.
	f.feedWarrantBook(t, 7_000, 103, 112)
	require.Equal(t, StateSellingPosition, h.CurrentStateID())
	order, _ := f.sim.LastOrder()
	assert.Equal(t, orders.KindSell, order.Kind)
	assert.Equal(t, int64(102), order.Price)

	// A full sale clears the deferral with the other position outputs.
	require.NoError(t, f.sim.AckLast(8_000, market.OrderStatusFilled, 102, 50_000, market.RejectNone))
	assert.Equal(t, StateNoPositionHeld, h.CurrentStateID())
	assert.False(t, f.wc.p.CanSellOnWide)
}

func TestTurnoverSellAtChurnPrice(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	f.wrt.UpdatePosition(50_000)
	require.NoError(t, h.SwitchOn(1_000))
	f.feedWarrantBook(t, 2_000, 104, 105)

	require.NoError(t, h.OnTurnoverMakingDetected(3_000, 104))
	require.Equal(t, StateSellingPosition, h.CurrentStateID())
	order, _ := f.sim.LastOrder()
	assert.Equal(t, orders.KindSell, order.Kind)
	assert.Equal(t, int64(104), order.Price)
	assert.True(t, hasEvent(f.rec, info.EventTurnoverMaking))
}

func TestTurnoverSellDeferredUntilBidRecovers(t *testing.T) {
	f := newHandlerFixture(t)
	h := f.wc.handler

	f.wrt.UpdatePosition(50_000)
	require.NoError(t, h.SwitchOn(1_000))
	f.feedWarrantBook(t, 2_000, 104, 105)

	// Churn detected above the current bid: the sell is deferred.
	require.NoError(t, h.OnTurnoverMakingDetected(3_000, 106))
	assert.Equal(t, StatePositionHeld, h.CurrentStateID())
	assert.Empty(t, f.sim.Orders())

	// The bid recovers to the churn price and the deferred sell fires.
	f.feedWarrantBook(t, 4_000, 106, 107)
	require.Equal(t, StateSellingPosition, h.CurrentStateID())
	order, _ := f.sim.LastOrder()
	assert.Equal(t, int64(106), order.Price)
}
