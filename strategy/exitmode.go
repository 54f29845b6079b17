package strategy

import "github.com/wonvincal/lunar-sub006/params"

// sellStyle is the price discipline a liquidation uses.
type sellStyle int8

const (
	sellStyleNone sellStyle = iota
	sellStyleAtBid
	sellStyleBelowBidSafe
	sellStyleAtEnterPrice
	sellStyleNoCheck
)

const normalPriority = -1

// exitBehavior is one liquidation policy. A policy differs from the others
// along a handful of axes: whether it sells at all, at what price discipline,
// whether it waits for the computed exit level, whether the strategy turns
// off once flat, whether stop loss may fire on a wide spread, and whether the
// stop may still be revised while exiting.
type exitBehavior struct {
	mode     params.ExitMode
	priority int

	defaultStatus             params.StrategyStatus
	sellPosition              bool
	style                     sellStyle
	sellOnHitExitLevel        bool
	offWhenExitPosition       bool
	allowStopLossOnWideSpread bool
	canReviseStopLoss         bool
}

// canBeReplacedBy implements the preemption rule: the running normal mode
// yields to anything, otherwise only a strictly higher priority takes over.
func (b exitBehavior) canBeReplacedBy(nb exitBehavior) bool {
	return b.priority == normalPriority || nb.priority > b.priority
}

var exitBehaviors = map[params.ExitMode]exitBehavior{
	params.ExitModeNormal: {
		mode:                params.ExitModeNormal,
		priority:            normalPriority,
		defaultStatus:       params.StatusActive,
		sellPosition:        true,
		style:               sellStyleBelowBidSafe,
		canReviseStopLoss:   true,
		offWhenExitPosition: false,
	},
	params.ExitModeNoExit: {
		mode:                params.ExitModeNoExit,
		priority:            1,
		defaultStatus:       params.StatusOff,
		sellPosition:        false,
		style:               sellStyleNone,
		offWhenExitPosition: true,
	},
	params.ExitModeStrategyExit: {
		mode:                params.ExitModeStrategyExit,
		priority:            2,
		defaultStatus:       params.StatusExiting,
		sellPosition:        true,
		style:               sellStyleBelowBidSafe,
		offWhenExitPosition: true,
		canReviseStopLoss:   true,
	},
	params.ExitModePriceCheckExit: {
		mode:                params.ExitModePriceCheckExit,
		priority:            2,
		defaultStatus:       params.StatusExiting,
		sellPosition:        true,
		style:               sellStyleAtBid,
		sellOnHitExitLevel:  true,
		offWhenExitPosition: true,
		canReviseStopLoss:   true,
	},
	params.ExitModeNoCheckExit: {
		mode:                      params.ExitModeNoCheckExit,
		priority:                  2,
		defaultStatus:             params.StatusExiting,
		sellPosition:              true,
		style:                     sellStyleNoCheck,
		offWhenExitPosition:       true,
		allowStopLossOnWideSpread: true,
	},
	params.ExitModeSemiManualExit: {
		mode:                params.ExitModeSemiManualExit,
		priority:            2,
		defaultStatus:       params.StatusExiting,
		sellPosition:        true,
		style:               sellStyleAtEnterPrice,
		sellOnHitExitLevel:  true,
		offWhenExitPosition: true,
		canReviseStopLoss:   false,
	},
	params.ExitModeClosingStrategyExit: {
		mode:                params.ExitModeClosingStrategyExit,
		priority:            3,
		defaultStatus:       params.StatusExiting,
		sellPosition:        true,
		style:               sellStyleBelowBidSafe,
		offWhenExitPosition: true,
		canReviseStopLoss:   true,
	},
	params.ExitModeClosingPriceCheckExit: {
		mode:                params.ExitModeClosingPriceCheckExit,
		priority:            3,
		defaultStatus:       params.StatusExiting,
		sellPosition:        true,
		style:               sellStyleAtBid,
		sellOnHitExitLevel:  true,
		offWhenExitPosition: true,
		canReviseStopLoss:   true,
	},
	params.ExitModeScoreBoardExit: {
		mode:                      params.ExitModeScoreBoardExit,
		priority:                  4,
		defaultStatus:             params.StatusExiting,
		sellPosition:              true,
		style:                     sellStyleAtBid,
		offWhenExitPosition:       true,
		allowStopLossOnWideSpread: true,
	},
	params.ExitModeError: {
		mode:                      params.ExitModeError,
		priority:                  5,
		defaultStatus:             params.StatusExiting,
		sellPosition:              true,
		style:                     sellStyleNoCheck,
		offWhenExitPosition:       true,
		allowStopLossOnWideSpread: true,
		canReviseStopLoss:         false,
	},
}

// behaviorFor looks up the policy for a mode; unknown modes collapse to the
// strategy-exit policy.
func behaviorFor(mode params.ExitMode) exitBehavior {
	if b, ok := exitBehaviors[mode]; ok {
		return b
	}
	return exitBehaviors[params.ExitModeStrategyExit]
}
