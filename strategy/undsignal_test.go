package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
)

type spotRecorder struct {
	name  string
	order *[]string

	wavg    int64
	mid     int64
	isTight bool
	count   int
}

func (r *spotRecorder) ObserveUndSpot(_ int64, wavgSpot, midSpot int64, isTight bool, _ market.TriggerInfo) error {
	if r.order != nil {
		*r.order = append(*r.order, r.name)
	}
	r.wavg = wavgSpot
	r.mid = midSpot
	r.isTight = isTight
	r.count++
	return nil
}

func newUndFixture() (*market.Security, *UnderlyingSignalGenerator) {
	sec := market.NewSecurity(700, "700", market.SecurityTypeStock,
		market.SideNone, market.NewFixedSpreadTable(100), 100, 0, 0, nil)
	g := NewUnderlyingSignalGenerator(sec, params.NewUndParams())
	g.Start()
	return sec, g
}

func tightBook(bidQty, askQty int64) *market.OrderBook {
	book := market.NewOrderBook()
	book.SetBids(market.BookLevel{Price: 100_000, Qty: bidQty})
	book.SetAsks(market.BookLevel{Price: 100_100, Qty: askQty})
	return book
}

func TestTightBookYieldsWeightedAverage(t *testing.T) {
	sec, g := newUndFixture()
	r := &spotRecorder{}
	g.RegisterCallObserver(r)

	require.NoError(t, sec.OnOrderBookUpdated(1_000, tightBook(3_000, 1_000)))

	// One tick wide, each side weighted by the size resting against it.
	assert.True(t, r.isTight)
	assert.Equal(t, int64(100_075_000), r.wavg)
	assert.Equal(t, int64(100_050_000), r.mid)
	assert.Equal(t, r.wavg, g.WeightedAverageSpot())
}

func TestWideBookFallsBackToMid(t *testing.T) {
	sec, g := newUndFixture()
	r := &spotRecorder{}
	g.RegisterCallObserver(r)

	book := market.NewOrderBook()
	book.SetBids(market.BookLevel{Price: 100_000, Qty: 1_000})
	book.SetAsks(market.BookLevel{Price: 100_200, Qty: 1_000})
	require.NoError(t, sec.OnOrderBookUpdated(1_000, book))

	assert.False(t, r.isTight)
	assert.Equal(t, int64(100_100_000), r.wavg)
	assert.Equal(t, r.mid, r.wavg)
	assert.False(t, g.IsTight())
}

func TestOneSidedBookIsIgnored(t *testing.T) {
	sec, g := newUndFixture()
	r := &spotRecorder{}
	g.RegisterCallObserver(r)

	book := market.NewOrderBook()
	book.SetBids(market.BookLevel{Price: 100_000, Qty: 1_000})
	require.NoError(t, sec.OnOrderBookUpdated(1_000, book))

	assert.Zero(t, r.count)
	assert.Zero(t, g.WeightedAverageSpot())
}

func TestNotificationOrderFollowsSpotDirection(t *testing.T) {
	sec, g := newUndFixture()
	var order []string
	call := &spotRecorder{name: "call", order: &order}
	put := &spotRecorder{name: "put", order: &order}
	g.RegisterCallObserver(call)
	g.RegisterPutObserver(put)

	// First update rises from zero, so the puts hear first.
	require.NoError(t, sec.OnOrderBookUpdated(1_000, tightBook(1_000, 1_000)))
	assert.Equal(t, []string{"put", "call"}, order)

	// Falling spot flips the order.
	order = nil
	book := market.NewOrderBook()
	book.SetBids(market.BookLevel{Price: 99_900, Qty: 1_000})
	book.SetAsks(market.BookLevel{Price: 100_000, Qty: 1_000})
	require.NoError(t, sec.OnOrderBookUpdated(2_000, book))
	assert.Equal(t, []string{"call", "put"}, order)
}

func TestUnregisterObserverStopsNotifications(t *testing.T) {
	sec, g := newUndFixture()
	call := &spotRecorder{}
	put := &spotRecorder{}
	g.RegisterCallObserver(call)
	g.RegisterPutObserver(put)

	require.NoError(t, sec.OnOrderBookUpdated(1_000, tightBook(1_000, 1_000)))
	g.UnregisterObserver(put)
	require.NoError(t, sec.OnOrderBookUpdated(2_000, tightBook(1_000, 2_000)))

	assert.Equal(t, 2, call.count)
	assert.Equal(t, 1, put.count)
}

func TestStopDetachesFromMarketData(t *testing.T) {
	sec, g := newUndFixture()
	r := &spotRecorder{}
	g.RegisterCallObserver(r)

	g.Stop()
	require.NoError(t, sec.OnOrderBookUpdated(1_000, tightBook(1_000, 1_000)))
	assert.Zero(t, r.count)
}
