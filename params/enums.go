package params

import "math"

// UnsetSpread marks an unknown spread in ticks.
const UnsetSpread = math.MaxInt32

// PricingMode selects how the underlying spot estimate is computed.
type PricingMode int8

const (
	PricingModeUnknown PricingMode = iota
	PricingModeWeightedAverage
	PricingModeMidPrice
)

func (m PricingMode) String() string {
	switch m {
	case PricingModeWeightedAverage:
		return "WEIGHTED"
	case PricingModeMidPrice:
		return "MID"
	}
	return "UNKNOWN"
}

// TriggerType selects the entry-authorization source for a warrant.
type TriggerType int8

const (
	TriggerTypeAllowAll TriggerType = iota
	TriggerTypeVelocity5ms
	TriggerTypeVelocity10ms
)

func (t TriggerType) String() string {
	switch t {
	case TriggerTypeVelocity5ms:
		return "VELOCITY_5MS"
	case TriggerTypeVelocity10ms:
		return "VELOCITY_10MS"
	}
	return "ALLOW_ALL"
}

// MarketOutlook biases entry aggressiveness per warrant.
type MarketOutlook int8

const (
	OutlookNormal MarketOutlook = iota
	OutlookDesirable
	OutlookUndesirable
)

// StrategyStatus is the outward-visible lifecycle state of one warrant's
// strategy.
type StrategyStatus int8

const (
	StatusOff StrategyStatus = iota
	StatusActive
	StatusExiting
)

func (s StrategyStatus) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusExiting:
		return "EXITING"
	}
	return "OFF"
}

// SpreadState classifies the live market-maker spread against its recent
// sustained minimum.
type SpreadState int8

const (
	SpreadStateNormal SpreadState = iota
	SpreadStateWide
	SpreadStateTooWide
)

func (s SpreadState) String() string {
	switch s {
	case SpreadStateWide:
		return "WIDE"
	case SpreadStateTooWide:
		return "TOO_WIDE"
	}
	return "NORMAL"
}

// ExitMode identifies the liquidation policy in force when the strategy is
// switched off. Behaviors live with the strategy; the identifier lives here
// so every tier can carry it.
type ExitMode int8

const (
	ExitModeNormal ExitMode = iota
	ExitModeError
	ExitModeNoExit
	ExitModeStrategyExit
	ExitModePriceCheckExit
	ExitModeNoCheckExit
	ExitModeSemiManualExit
	ExitModeClosingStrategyExit
	ExitModeClosingPriceCheckExit
	ExitModeScoreBoardExit
)

func (m ExitMode) String() string {
	switch m {
	case ExitModeError:
		return "ERROR"
	case ExitModeNoExit:
		return "NO_EXIT"
	case ExitModeStrategyExit:
		return "STRATEGY_EXIT"
	case ExitModePriceCheckExit:
		return "PRICE_CHECK_EXIT"
	case ExitModeNoCheckExit:
		return "NO_CHECK_EXIT"
	case ExitModeSemiManualExit:
		return "SEMI_MANUAL_EXIT"
	case ExitModeClosingStrategyExit:
		return "CLOSING_STRATEGY_EXIT"
	case ExitModeClosingPriceCheckExit:
		return "CLOSING_PRICE_CHECK_EXIT"
	case ExitModeScoreBoardExit:
		return "SCOREBOARD_EXIT"
	}
	return "NORMAL"
}
