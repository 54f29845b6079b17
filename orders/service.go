// Package orders defines the order-service surface the strategy core fires
// instructions into. Calls are fire-and-forget: acknowledgements come back
// asynchronously through each security's order-status fan-out.
package orders

import "github.com/wonvincal/lunar-sub006/market"

// Explain is the audit snapshot attached to every order sent. The service
// only carries it; it is never read back by the automaton.
type Explain interface {
	ExplainFlags() uint8
	ExplainValues() []int64
}

// Service is the strategy-facing order API.
type Service interface {
	// Buy places an aggressive buy at price for quantity.
	Buy(sec *market.Security, price, quantity int64, explain Explain) (int64, error)
	// Sell places an aggressive sell at price for quantity.
	Sell(sec *market.Security, price, quantity int64, explain Explain) (int64, error)
	// SellToExit liquidates with exit semantics (ignores size qualification).
	SellToExit(sec *market.Security, price, quantity int64, explain Explain) (int64, error)
	// SellLimit rests a limit sell at price.
	SellLimit(sec *market.Security, price, quantity int64, explain Explain) (int64, error)
	// CancelAndSellOutstandingSell pulls the resting sell and replaces it at
	// price for the still-open quantity.
	CancelAndSellOutstandingSell(sec *market.Security, price int64, explain Explain) (int64, error)
	// CanTrade reports whether the service currently accepts orders.
	CanTrade() bool
}
