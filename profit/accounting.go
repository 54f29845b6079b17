// profit/accounting.go
package profit

import (
	"sync"

	"github.com/wonvincal/lunar-sub006/market"
)

// PositionState represents the accounting view of one warrant's position.
// Prices carry the standard fixed-point price scale; CostScaled and the
// profit figures carry price times quantity, so dividing by the price scale
// yields currency units.
type PositionState struct {
	TotalQuantity    int64
	AverageCost      int64
	RealizedProfit   int64
	UnrealizedProfit int64
	NumRoundTrips    int64
}

// Accountant tracks one warrant's fills and derives realized and floating
// results using the weighted average cost method. Positions here are long
// only; a sell never exceeds the held quantity because the automaton sizes
// sells off its own position.
type Accountant struct {
	mu         sync.Mutex
	secSid     int64
	position   PositionState
	costScaled int64
}

// NewAccountant creates the accounting core for one warrant.
func NewAccountant(secSid int64) *Accountant {
	return &Accountant{secSid: secSid}
}

// SecSid returns the warrant this accountant tracks.
func (a *Accountant) SecSid() int64 { return a.secSid }

// RecordBuy folds a buy fill into the weighted average cost.
func (a *Accountant) RecordBuy(price, quantity int64) {
	if quantity <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.costScaled += price * quantity
	a.position.TotalQuantity += quantity
	a.position.AverageCost = a.costScaled / a.position.TotalQuantity
}

// RecordSell realizes the result of a sell fill against the average cost and
// returns the realized delta. Quantity beyond the held position is ignored.
func (a *Accountant) RecordSell(price, quantity int64) int64 {
	if quantity <= 0 {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if quantity > a.position.TotalQuantity {
		quantity = a.position.TotalQuantity
	}
	if quantity == 0 {
		return 0
	}
	pnl := (price - a.position.AverageCost) * quantity
	a.position.RealizedProfit += pnl
	a.position.TotalQuantity -= quantity
	a.costScaled -= a.position.AverageCost * quantity
	if a.position.TotalQuantity == 0 {
		a.position.AverageCost = 0
		a.costScaled = 0
		a.position.NumRoundTrips++
	}
	return pnl
}

// UpdateUnrealizedProfit marks the open position against the given price.
func (a *Accountant) UpdateUnrealizedProfit(currentPrice int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.position.TotalQuantity == 0 || currentPrice == 0 {
		a.position.UnrealizedProfit = 0
		return
	}
	a.position.UnrealizedProfit = (currentPrice - a.position.AverageCost) * a.position.TotalQuantity
}

// GetPositionState returns a copy of the current accounting view.
func (a *Accountant) GetPositionState() PositionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

// GetRealizedPNL returns the cumulative realized result.
func (a *Accountant) GetRealizedPNL() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position.RealizedProfit
}

// Restore recovers the realized result from persistent state.
func (a *Accountant) Restore(realizedProfit, numRoundTrips int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position.RealizedProfit = realizedProfit
	a.position.NumRoundTrips = numRoundTrips
}

// CurrencyPNL converts a scaled result to whole currency units, truncating
// the sub-unit remainder.
func CurrencyPNL(scaled int64) int64 {
	return scaled / market.PriceScale
}
