package market

// MarketDataHandler receives order-book and trade updates for one security.
type MarketDataHandler interface {
	OnOrderBookUpdated(nanoOfDay int64, book *OrderBook) error
	OnTradeReceived(nanoOfDay int64, trade Trade) error
}

// GreeksHandler receives greeks updates for one security.
type GreeksHandler interface {
	OnGreeksUpdated(greeks *Greeks) error
}

// OrderStatusHandler receives order acknowledgements for one security.
type OrderStatusHandler interface {
	OnOrderStatusReceived(nanoOfDay int64, price int64, quantity int64, status OrderStatus, rejectType OrderRejectType) error
}

// Security is the per-instrument reference-data record. The surrounding
// reference-data subsystem owns it; the strategy core holds a non-owning
// reference and the live position bookkeeping.
type Security struct {
	sid         int64
	code        string
	secType     SecurityType
	side        OptionSide
	spreadTable SpreadTable
	lotSize     int64
	convRatio   int64 // scaled by 1000
	issuerSid   int64
	underlying  *Security

	orderBook *OrderBook
	lastTrade Trade
	greeks    Greeks

	position    int64
	pendingSell int64

	limitOrderSid      int64
	limitOrderPrice    int64
	limitOrderQuantity int64

	mdHandlers          []MarketDataHandler
	greeksHandlers      []GreeksHandler
	orderStatusHandlers []OrderStatusHandler
}

// NewSecurity builds a security record.
func NewSecurity(sid int64, code string, secType SecurityType, side OptionSide, spreadTable SpreadTable, lotSize, convRatio, issuerSid int64, underlying *Security) *Security {
	return &Security{
		sid:         sid,
		code:        code,
		secType:     secType,
		side:        side,
		spreadTable: spreadTable,
		lotSize:     lotSize,
		convRatio:   convRatio,
		issuerSid:   issuerSid,
		underlying:  underlying,
		orderBook:   NewOrderBook(),
	}
}

func (s *Security) Sid() int64               { return s.sid }
func (s *Security) Code() string             { return s.code }
func (s *Security) SecurityType() SecurityType { return s.secType }
func (s *Security) Side() OptionSide         { return s.side }
func (s *Security) SpreadTable() SpreadTable { return s.spreadTable }
func (s *Security) LotSize() int64           { return s.lotSize }
func (s *Security) ConvRatio() int64         { return s.convRatio }
func (s *Security) IssuerSid() int64         { return s.issuerSid }
func (s *Security) Underlying() *Security    { return s.underlying }
func (s *Security) OrderBook() *OrderBook    { return s.orderBook }
func (s *Security) LastTrade() Trade         { return s.lastTrade }
func (s *Security) Greeks() *Greeks          { return &s.greeks }

func (s *Security) Position() int64 { return s.position }

// UpdatePosition adjusts the live position by delta (signed).
func (s *Security) UpdatePosition(delta int64) { s.position += delta }

func (s *Security) PendingSell() int64 { return s.pendingSell }

// UpdatePendingSell adjusts the quantity locked in outstanding sell orders.
func (s *Security) UpdatePendingSell(delta int64) { s.pendingSell += delta }

// AvailablePosition is the quantity free to be sold.
func (s *Security) AvailablePosition() int64 { return s.position - s.pendingSell }

func (s *Security) LimitOrderSid() int64      { return s.limitOrderSid }
func (s *Security) LimitOrderPrice() int64    { return s.limitOrderPrice }
func (s *Security) LimitOrderQuantity() int64 { return s.limitOrderQuantity }

// SetLimitOrder records the single resting limit sell tracked per security.
func (s *Security) SetLimitOrder(sid, price, quantity int64) {
	s.limitOrderSid = sid
	s.limitOrderPrice = price
	s.limitOrderQuantity = quantity
}

// ClearLimitOrder drops the resting limit order bookkeeping.
func (s *Security) ClearLimitOrder() {
	s.limitOrderSid = 0
	s.limitOrderPrice = 0
	s.limitOrderQuantity = 0
}

// RegisterMdHandler subscribes a handler to book and trade updates.
func (s *Security) RegisterMdHandler(h MarketDataHandler) {
	s.mdHandlers = append(s.mdHandlers, h)
}

// UnregisterMdHandler removes a previously registered handler.
func (s *Security) UnregisterMdHandler(h MarketDataHandler) {
	for i, r := range s.mdHandlers {
		if r == h {
			s.mdHandlers = append(s.mdHandlers[:i], s.mdHandlers[i+1:]...)
			return
		}
	}
}

// RegisterGreeksHandler subscribes a handler to greeks updates.
func (s *Security) RegisterGreeksHandler(h GreeksHandler) {
	s.greeksHandlers = append(s.greeksHandlers, h)
}

// RegisterOrderStatusHandler subscribes a handler to order acknowledgements.
func (s *Security) RegisterOrderStatusHandler(h OrderStatusHandler) {
	s.orderStatusHandlers = append(s.orderStatusHandlers, h)
}

// OnOrderBookUpdated fans an order-book tick out to all handlers. The first
// error stops the fan-out and is returned.
func (s *Security) OnOrderBookUpdated(nanoOfDay int64, book *OrderBook) error {
	s.orderBook = book
	for _, h := range s.mdHandlers {
		if err := h.OnOrderBookUpdated(nanoOfDay, book); err != nil {
			return err
		}
	}
	return nil
}

// OnTradeReceived fans a market print out to all handlers.
func (s *Security) OnTradeReceived(nanoOfDay int64, trade Trade) error {
	s.lastTrade = trade
	for _, h := range s.mdHandlers {
		if err := h.OnTradeReceived(nanoOfDay, trade); err != nil {
			return err
		}
	}
	return nil
}

// OnGreeksUpdated stores the greeks and fans the update out.
func (s *Security) OnGreeksUpdated(greeks *Greeks) error {
	s.greeks = *greeks
	for _, h := range s.greeksHandlers {
		if err := h.OnGreeksUpdated(greeks); err != nil {
			return err
		}
	}
	return nil
}

// OnOrderStatusReceived fans an order acknowledgement out.
func (s *Security) OnOrderStatusReceived(nanoOfDay, price, quantity int64, status OrderStatus, rejectType OrderRejectType) error {
	for _, h := range s.orderStatusHandlers {
		if err := h.OnOrderStatusReceived(nanoOfDay, price, quantity, status, rejectType); err != nil {
			return err
		}
	}
	return nil
}
