// Package strategy is the per-security decision core: the buy/hold/sell
// automaton, the two signal generators feeding it, and the wiring that
// builds one of each per warrant.
package strategy

// Automaton states.
const (
	StateNoPositionHeld = 0
	StateBuyingPosition = 1
	StatePositionHeld   = 2
	StateSellingPosition = 3
	StateOff            = 4
)

// Automaton transitions.
const (
	TransitionBuyPosition = iota
	TransitionSellPosition
	TransitionProfitRun
	TransitionOrderFilled
	TransitionOrderNotFilled
	TransitionEnterWithPosition
	TransitionEnterWithoutPosition
	TransitionExitStrategy
)

// Events fed to the automaton. Underlying-level events arrive through the
// per-side static buses, warrant-level events through the per-warrant bus.
const (
	EventWarrantTickReceived = iota
	EventStockSpotUpdated
	EventOrderStatusUpdated
	EventMarketTradeReceived
	EventIssuerDownVolFromUnderlyingTick
	EventIssuerDownVolFromWarrantTick
	EventIssuerDownVolForStandbyPricer
	EventNonDownVolViolation
	EventPricingModeUpdated
	EventCaptureProfit
	EventPlaceSellOrder
	EventTurnoverMaking
	EventDeltaLimitAlertReceived
	EventSwitchedOn
	EventSwitchedOff
)

func stateName(id int) string {
	switch id {
	case StateNoPositionHeld:
		return "NO_POSITION_HELD"
	case StateBuyingPosition:
		return "BUYING_POSITION"
	case StatePositionHeld:
		return "POSITION_HELD"
	case StateSellingPosition:
		return "SELLING_POSITION"
	case StateOff:
		return "OFF"
	}
	return "UNKNOWN"
}
