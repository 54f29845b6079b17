package orders

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
)

// OrderKind distinguishes the service entry point that produced an order.
type OrderKind int8

const (
	KindBuy OrderKind = iota
	KindSell
	KindSellToExit
	KindSellLimit
	KindCancelAndSell
)

// SimOrder is one order captured by the simulated service.
type SimOrder struct {
	Sid           int64
	ClientOrderID string
	SecSid        int64
	Kind          OrderKind
	Price         int64
	Quantity      int64
	Flags         uint8
}

// Simulated is a deterministic in-process order service. Orders are captured
// and acknowledged only when the caller (a test or the simulation
// orchestrator) asks for it, so the dispatch thread never blocks and replay
// stays reproducible.
type Simulated struct {
	nextSid    int64
	orders     []SimOrder
	securities map[int64]*market.Security
	canTrade   bool
}

// NewSimulated returns an empty simulated service that accepts orders.
func NewSimulated() *Simulated {
	return &Simulated{
		nextSid:    1,
		securities: make(map[int64]*market.Security),
		canTrade:   true,
	}
}

// SetCanTrade toggles order acceptance.
func (s *Simulated) SetCanTrade(v bool) { s.canTrade = v }

func (s *Simulated) CanTrade() bool { return s.canTrade }

// Orders returns everything captured so far.
func (s *Simulated) Orders() []SimOrder { return s.orders }

// LastOrder returns the most recent order, false when none was placed.
func (s *Simulated) LastOrder() (SimOrder, bool) {
	if len(s.orders) == 0 {
		return SimOrder{}, false
	}
	return s.orders[len(s.orders)-1], true
}

func (s *Simulated) place(sec *market.Security, kind OrderKind, price, quantity int64, explain Explain) (int64, error) {
	if !s.canTrade {
		return 0, fmt.Errorf("order service: trading disabled")
	}
	sid := s.nextSid
	s.nextSid++
	var flags uint8
	if explain != nil {
		flags = explain.ExplainFlags()
	}
	order := SimOrder{
		Sid:           sid,
		ClientOrderID: uuid.New().String(),
		SecSid:        sec.Sid(),
		Kind:          kind,
		Price:         price,
		Quantity:      quantity,
		Flags:         flags,
	}
	s.orders = append(s.orders, order)
	s.securities[sec.Sid()] = sec
	logs.Debugf("[SimOrders] Captured order: sid %d, sec %s, kind %d, price %d, qty %d", sid, sec.Code(), kind, price, quantity)
	return sid, nil
}

func (s *Simulated) Buy(sec *market.Security, price, quantity int64, explain Explain) (int64, error) {
	return s.place(sec, KindBuy, price, quantity, explain)
}

func (s *Simulated) Sell(sec *market.Security, price, quantity int64, explain Explain) (int64, error) {
	return s.place(sec, KindSell, price, quantity, explain)
}

func (s *Simulated) SellToExit(sec *market.Security, price, quantity int64, explain Explain) (int64, error) {
	return s.place(sec, KindSellToExit, price, quantity, explain)
}

func (s *Simulated) SellLimit(sec *market.Security, price, quantity int64, explain Explain) (int64, error) {
	sid, err := s.place(sec, KindSellLimit, price, quantity, explain)
	if err == nil {
		sec.SetLimitOrder(sid, price, quantity)
	}
	return sid, err
}

func (s *Simulated) CancelAndSellOutstandingSell(sec *market.Security, price int64, explain Explain) (int64, error) {
	quantity := sec.PendingSell()
	sec.ClearLimitOrder()
	return s.place(sec, KindCancelAndSell, price, quantity, explain)
}

// AckLast delivers an acknowledgement for the most recent order back through
// the security's order-status fan-out.
func (s *Simulated) AckLast(nanoOfDay int64, status market.OrderStatus, fillPrice, fillQuantity int64, rejectType market.OrderRejectType) error {
	order, ok := s.LastOrder()
	if !ok {
		return fmt.Errorf("order service: no order to acknowledge")
	}
	sec := s.securities[order.SecSid]
	if sec == nil {
		return fmt.Errorf("order service: unknown security %d", order.SecSid)
	}
	return sec.OnOrderStatusReceived(nanoOfDay, fillPrice, fillQuantity, status, rejectType)
}
