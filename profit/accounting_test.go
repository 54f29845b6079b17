package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/orders"
)

func TestWeightedAverageCost(t *testing.T) {
	a := NewAccountant(5001)

	a.RecordBuy(100, 300_000)
	a.RecordBuy(110, 100_000)

	pos := a.GetPositionState()
	assert.Equal(t, int64(400_000), pos.TotalQuantity)
	assert.Equal(t, int64(102), pos.AverageCost)
}

func TestSellRealizesAgainstAverageCost(t *testing.T) {
	a := NewAccountant(5001)
	a.RecordBuy(100, 400_000)

	pnl := a.RecordSell(103, 400_000)
	assert.Equal(t, int64(3*400_000), pnl)

	pos := a.GetPositionState()
	assert.Equal(t, int64(0), pos.TotalQuantity)
	assert.Equal(t, int64(0), pos.AverageCost)
	assert.Equal(t, pnl, pos.RealizedProfit)
	assert.Equal(t, int64(1), pos.NumRoundTrips)
}

func TestPartialSellKeepsAverageCost(t *testing.T) {
	a := NewAccountant(5001)
	a.RecordBuy(100, 400_000)

	a.RecordSell(98, 100_000)
	pos := a.GetPositionState()
	assert.Equal(t, int64(300_000), pos.TotalQuantity)
	assert.Equal(t, int64(100), pos.AverageCost)
	assert.Equal(t, int64(-2*100_000), pos.RealizedProfit)
	assert.Equal(t, int64(0), pos.NumRoundTrips)
}

func TestSellBeyondPositionIsClamped(t *testing.T) {
	a := NewAccountant(5001)
	a.RecordBuy(100, 100_000)

	pnl := a.RecordSell(105, 250_000)
	assert.Equal(t, int64(5*100_000), pnl)
	assert.Equal(t, int64(0), a.GetPositionState().TotalQuantity)
}

func TestUnrealizedMarksOpenPosition(t *testing.T) {
	a := NewAccountant(5001)
	a.RecordBuy(100, 200_000)

	a.UpdateUnrealizedProfit(104)
	assert.Equal(t, int64(4*200_000), a.GetPositionState().UnrealizedProfit)

	a.RecordSell(104, 200_000)
	a.UpdateUnrealizedProfit(104)
	assert.Equal(t, int64(0), a.GetPositionState().UnrealizedProfit)
}

func newWarrant(sid int64) *market.Security {
	return market.NewSecurity(sid, "18888", market.SecurityTypeWarrant,
		market.SideCall, market.NewWarrantSpreadTable(), 10_000, 8_000, 3, nil)
}

func TestTrackingServiceRecordsFills(t *testing.T) {
	sim := orders.NewSimulated()
	svc := NewTrackingService(sim, nil)
	sec := newWarrant(5001)
	acct := svc.Track(sec)

	_, err := svc.Buy(sec, 100, 300_000, nil)
	require.NoError(t, err)
	require.NoError(t, sim.AckLast(1_000, market.OrderStatusFilled, 100, 300_000, market.RejectNone))

	assert.Equal(t, int64(300_000), acct.GetPositionState().TotalQuantity)

	_, err = svc.Sell(sec, 104, 300_000, nil)
	require.NoError(t, err)
	require.NoError(t, sim.AckLast(2_000, market.OrderStatusFilled, 104, 300_000, market.RejectNone))

	pos := acct.GetPositionState()
	assert.Equal(t, int64(0), pos.TotalQuantity)
	assert.Equal(t, int64(4*300_000), pos.RealizedProfit)
}

func TestTrackingServiceIgnoresRejects(t *testing.T) {
	sim := orders.NewSimulated()
	svc := NewTrackingService(sim, nil)
	sec := newWarrant(5001)
	acct := svc.Track(sec)

	_, err := svc.Buy(sec, 100, 300_000, nil)
	require.NoError(t, err)
	require.NoError(t, sim.AckLast(1_000, market.OrderStatusRejected, 0, 0, market.RejectNone))

	assert.Equal(t, int64(0), acct.GetPositionState().TotalQuantity)
}

func TestTrackingServiceHandlesPartialFills(t *testing.T) {
	sim := orders.NewSimulated()
	svc := NewTrackingService(sim, nil)
	sec := newWarrant(5001)
	acct := svc.Track(sec)

	_, err := svc.Buy(sec, 100, 300_000, nil)
	require.NoError(t, err)
	require.NoError(t, sim.AckLast(1_000, market.OrderStatusPartiallyFilled, 100, 100_000, market.RejectNone))
	require.NoError(t, sim.AckLast(1_500, market.OrderStatusFilled, 100, 200_000, market.RejectNone))

	assert.Equal(t, int64(300_000), acct.GetPositionState().TotalQuantity)
}
