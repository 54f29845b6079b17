package market

// BookLevel is one price level of an order book side.
type BookLevel struct {
	Price     int64
	TickLevel int
	Qty       int64
}

// OrderBook holds the visible depth for one security. Levels are kept best
// first. The book is rebuilt by the market-data feed and read in place by
// the signal generators; nothing here retains level slices across ticks.
type OrderBook struct {
	Bids []BookLevel
	Asks []BookLevel
}

// NewOrderBook returns an empty book with pre-sized level slices.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		Bids: make([]BookLevel, 0, 10),
		Asks: make([]BookLevel, 0, 10),
	}
}

// BestBid returns the top bid level, false when the side is empty.
func (b *OrderBook) BestBid() (BookLevel, bool) {
	if len(b.Bids) == 0 {
		return BookLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the top ask level, false when the side is empty.
func (b *OrderBook) BestAsk() (BookLevel, bool) {
	if len(b.Asks) == 0 {
		return BookLevel{}, false
	}
	return b.Asks[0], true
}

// BidAt returns the i-th bid level (0 is best).
func (b *OrderBook) BidAt(i int) (BookLevel, bool) {
	if i < 0 || i >= len(b.Bids) {
		return BookLevel{}, false
	}
	return b.Bids[i], true
}

// AskAt returns the i-th ask level (0 is best).
func (b *OrderBook) AskAt(i int) (BookLevel, bool) {
	if i < 0 || i >= len(b.Asks) {
		return BookLevel{}, false
	}
	return b.Asks[i], true
}

// SetBids replaces the bid side, best first.
func (b *OrderBook) SetBids(levels ...BookLevel) {
	b.Bids = append(b.Bids[:0], levels...)
}

// SetAsks replaces the ask side, best first.
func (b *OrderBook) SetAsks(levels ...BookLevel) {
	b.Asks = append(b.Asks[:0], levels...)
}
