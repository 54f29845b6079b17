// profit/tracking.go
package profit

import (
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/orders"
	"github.com/wonvincal/lunar-sub006/state"
)

// TrackingService decorates an order service with fill accounting. It
// remembers the direction of the in-flight order per security and folds the
// acknowledged fills into that warrant's accountant. Realized results flow
// through to the state store on every completed sell.
type TrackingService struct {
	inner    orders.Service
	stateMgr state.ManagerInterface
	trackers map[int64]*fillTracker
}

// fillTracker is the per-security order-status observer.
type fillTracker struct {
	svc        *TrackingService
	sec        *market.Security
	accountant *Accountant
	lastIsBuy  bool
	hasOrder   bool
}

// NewTrackingService wraps an order service. The state manager may be nil
// when persistence is not wanted.
func NewTrackingService(inner orders.Service, stateMgr state.ManagerInterface) *TrackingService {
	return &TrackingService{
		inner:    inner,
		stateMgr: stateMgr,
		trackers: make(map[int64]*fillTracker),
	}
}

// Track attaches fill accounting to one security. The returned accountant is
// also reachable later through AccountantFor.
func (s *TrackingService) Track(sec *market.Security) *Accountant {
	if t, ok := s.trackers[sec.Sid()]; ok {
		return t.accountant
	}
	t := &fillTracker{
		svc:        s,
		sec:        sec,
		accountant: NewAccountant(sec.Sid()),
	}
	s.trackers[sec.Sid()] = t
	sec.RegisterOrderStatusHandler(t)
	return t.accountant
}

// AccountantFor returns the accountant for one security, nil when untracked.
func (s *TrackingService) AccountantFor(secSid int64) *Accountant {
	if t, ok := s.trackers[secSid]; ok {
		return t.accountant
	}
	return nil
}

func (s *TrackingService) noteOrder(sec *market.Security, isBuy bool) {
	if t, ok := s.trackers[sec.Sid()]; ok {
		t.lastIsBuy = isBuy
		t.hasOrder = true
	}
}

func (s *TrackingService) Buy(sec *market.Security, price, quantity int64, explain orders.Explain) (int64, error) {
	sid, err := s.inner.Buy(sec, price, quantity, explain)
	if err == nil {
		s.noteOrder(sec, true)
	}
	return sid, err
}

func (s *TrackingService) Sell(sec *market.Security, price, quantity int64, explain orders.Explain) (int64, error) {
	sid, err := s.inner.Sell(sec, price, quantity, explain)
	if err == nil {
		s.noteOrder(sec, false)
	}
	return sid, err
}

func (s *TrackingService) SellToExit(sec *market.Security, price, quantity int64, explain orders.Explain) (int64, error) {
	sid, err := s.inner.SellToExit(sec, price, quantity, explain)
	if err == nil {
		s.noteOrder(sec, false)
	}
	return sid, err
}

func (s *TrackingService) SellLimit(sec *market.Security, price, quantity int64, explain orders.Explain) (int64, error) {
	sid, err := s.inner.SellLimit(sec, price, quantity, explain)
	if err == nil {
		s.noteOrder(sec, false)
	}
	return sid, err
}

func (s *TrackingService) CancelAndSellOutstandingSell(sec *market.Security, price int64, explain orders.Explain) (int64, error) {
	sid, err := s.inner.CancelAndSellOutstandingSell(sec, price, explain)
	if err == nil {
		s.noteOrder(sec, false)
	}
	return sid, err
}

func (s *TrackingService) CanTrade() bool { return s.inner.CanTrade() }

// OnOrderStatusReceived folds fills into the accountant. Rejects and
// cancellations only clear the in-flight marker.
func (t *fillTracker) OnOrderStatusReceived(nanoOfDay, price, quantity int64, status market.OrderStatus, rejectType market.OrderRejectType) error {
	if !t.hasOrder {
		return nil
	}
	switch status {
	case market.OrderStatusFilled, market.OrderStatusPartiallyFilled:
		if quantity <= 0 {
			return nil
		}
		if t.lastIsBuy {
			t.accountant.RecordBuy(price, quantity)
		} else {
			pnl := t.accountant.RecordSell(price, quantity)
			logs.Infof("[Profit] Realized: secCode %s, price %d, qty %d, pnl %d",
				t.sec.Code(), price, quantity, pnl)
			if t.svc.stateMgr != nil && pnl != 0 {
				if err := t.svc.stateMgr.UpdateRealizedPNL(t.sec.Sid(), pnl); err != nil {
					logs.Errorf("[Profit] Failed to persist realized result: secCode %s: %v", t.sec.Code(), err)
				}
			}
		}
		if status == market.OrderStatusFilled {
			t.hasOrder = false
		}
	case market.OrderStatusCancelled, market.OrderStatusExpired,
		market.OrderStatusRejected, market.OrderStatusFailed:
		t.hasOrder = false
	}
	return nil
}
