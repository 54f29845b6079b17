package market

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	books  int
	trades int
	greeks int
	acks   int
	err    error
}

func (h *countingHandler) OnOrderBookUpdated(int64, *OrderBook) error {
	h.books++
	return h.err
}

func (h *countingHandler) OnTradeReceived(int64, Trade) error {
	h.trades++
	return h.err
}

func (h *countingHandler) OnGreeksUpdated(*Greeks) error {
	h.greeks++
	return h.err
}

func (h *countingHandler) OnOrderStatusReceived(int64, int64, int64, OrderStatus, OrderRejectType) error {
	h.acks++
	return h.err
}

func newTestWarrant() *Security {
	und := NewSecurity(700, "700", SecurityTypeStock, SideNone, NewFixedSpreadTable(100), 100, 0, 0, nil)
	return NewSecurity(5001, "18888", SecurityTypeWarrant, SideCall, NewWarrantSpreadTable(), 10_000, 8_000, 3, und)
}

func TestPositionAndPendingSellAccounting(t *testing.T) {
	sec := newTestWarrant()

	sec.UpdatePosition(50_000)
	sec.UpdatePendingSell(20_000)
	assert.Equal(t, int64(50_000), sec.Position())
	assert.Equal(t, int64(30_000), sec.AvailablePosition())

	sec.UpdatePendingSell(-20_000)
	sec.UpdatePosition(-50_000)
	assert.Zero(t, sec.Position())
	assert.Zero(t, sec.AvailablePosition())
}

func TestMarketDataFanOutAndUnregister(t *testing.T) {
	sec := newTestWarrant()
	a := &countingHandler{}
	b := &countingHandler{}
	sec.RegisterMdHandler(a)
	sec.RegisterMdHandler(b)

	book := NewOrderBook()
	book.SetBids(BookLevel{Price: 104, TickLevel: 104, Qty: 100_000})
	require.NoError(t, sec.OnOrderBookUpdated(1_000, book))
	require.NoError(t, sec.OnTradeReceived(2_000, Trade{SecSid: 5001, Price: 104, Quantity: 10_000, Side: AggressorBid}))
	assert.Equal(t, 1, a.books)
	assert.Equal(t, 1, b.trades)
	assert.Equal(t, int64(104), sec.LastTrade().Price)

	sec.UnregisterMdHandler(a)
	require.NoError(t, sec.OnOrderBookUpdated(3_000, book))
	assert.Equal(t, 1, a.books)
	assert.Equal(t, 2, b.books)
}

func TestFanOutStopsAtFirstError(t *testing.T) {
	sec := newTestWarrant()
	failing := &countingHandler{err: errors.New("boom")}
	after := &countingHandler{}
	sec.RegisterMdHandler(failing)
	sec.RegisterMdHandler(after)

	err := sec.OnOrderBookUpdated(1_000, NewOrderBook())
	require.Error(t, err)
	assert.Equal(t, 1, failing.books)
	assert.Zero(t, after.books)
}

func TestGreeksStoredBeforeFanOut(t *testing.T) {
	sec := newTestWarrant()
	h := &countingHandler{}
	sec.RegisterGreeksHandler(h)

	require.NoError(t, sec.OnGreeksUpdated(&Greeks{Delta: 50_000, RefSpot: 100_000}))
	assert.Equal(t, 1, h.greeks)
	assert.Equal(t, int64(50_000), sec.Greeks().Delta)
}

func TestOrderStatusFanOut(t *testing.T) {
	sec := newTestWarrant()
	h := &countingHandler{}
	sec.RegisterOrderStatusHandler(h)

	require.NoError(t, sec.OnOrderStatusReceived(1_000, 105, 50_000, OrderStatusFilled, RejectNone))
	assert.Equal(t, 1, h.acks)
}
