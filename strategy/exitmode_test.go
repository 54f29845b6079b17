package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonvincal/lunar-sub006/params"
)

func TestNormalModeYieldsToAnything(t *testing.T) {
	normal := behaviorFor(params.ExitModeNormal)

	for mode := range exitBehaviors {
		if mode == params.ExitModeNormal {
			continue
		}
		assert.True(t, normal.canBeReplacedBy(behaviorFor(mode)), "mode %s", mode)
	}
}

func TestEqualPriorityDoesNotPreempt(t *testing.T) {
	strategyExit := behaviorFor(params.ExitModeStrategyExit)
	priceCheck := behaviorFor(params.ExitModePriceCheckExit)

	assert.False(t, strategyExit.canBeReplacedBy(priceCheck))
	assert.False(t, priceCheck.canBeReplacedBy(strategyExit))
	assert.False(t, strategyExit.canBeReplacedBy(strategyExit))
}

func TestHigherPriorityPreempts(t *testing.T) {
	strategyExit := behaviorFor(params.ExitModeStrategyExit)
	closing := behaviorFor(params.ExitModeClosingStrategyExit)
	scoreBoard := behaviorFor(params.ExitModeScoreBoardExit)
	errMode := behaviorFor(params.ExitModeError)

	assert.True(t, strategyExit.canBeReplacedBy(closing))
	assert.True(t, closing.canBeReplacedBy(scoreBoard))
	assert.True(t, scoreBoard.canBeReplacedBy(errMode))
	assert.False(t, errMode.canBeReplacedBy(scoreBoard))
}

func TestUnknownModeCollapsesToStrategyExit(t *testing.T) {
	b := behaviorFor(params.ExitMode(99))
	assert.Equal(t, params.ExitModeStrategyExit, b.mode)
}

func TestExitPolicyAxes(t *testing.T) {
	noExit := behaviorFor(params.ExitModeNoExit)
	assert.False(t, noExit.sellPosition)
	assert.Equal(t, params.StatusOff, noExit.defaultStatus)

	normal := behaviorFor(params.ExitModeNormal)
	assert.True(t, normal.sellPosition)
	assert.False(t, normal.offWhenExitPosition)
	assert.True(t, normal.canReviseStopLoss)

	semiManual := behaviorFor(params.ExitModeSemiManualExit)
	assert.Equal(t, sellStyleAtEnterPrice, semiManual.style)
	assert.True(t, semiManual.sellOnHitExitLevel)
	assert.False(t, semiManual.canReviseStopLoss)

	errMode := behaviorFor(params.ExitModeError)
	assert.Equal(t, sellStyleNoCheck, errMode.style)
	assert.True(t, errMode.allowStopLossOnWideSpread)
}
