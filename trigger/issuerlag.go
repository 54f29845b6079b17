package trigger

import (
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/statemachine"
)

// Issuer response-lag machine identifiers.
const (
	lagStateError       = 0
	lagStateTight       = 1
	lagStateWaitingAsk  = 2
	lagStateWaitingTight = 3

	lagEventBookUpdated = 0
	lagEventTimeOut     = 1
	lagEventTriggerUp   = 2

	lagTransitionError    = 0
	lagTransitionToTight  = 1
	lagTransitionWaitResp = 2
)

const (
	initialResponseTimeoutNs = 10_000_000_000
	fullResponseTimeoutNs    = 3_600_000_000_000
)

// IssuerLagHandler consumes measured issuer quote-refresh latencies.
type IssuerLagHandler interface {
	OnIssuerLagUpdated(lagNs int64) error
	OnIssuerSmoothingUpdated(timeInWideSpreadNs int64) error
}

// IssuerResponseTimeGenerator measures how quickly the issuer lifts its ask
// after an upward trigger, and how long it then sits wide before tightening.
// It runs its own four-state machine off warrant book updates and scheduled
// timeouts; all deadlines are tick-clock absolute.
type IssuerResponseTimeGenerator struct {
	sec       *market.Security
	scheduler Scheduler
	handler   IssuerLagHandler
	machine   *statemachine.StateMachine

	// Last book observation, stored before the event is fired.
	nanoOfDay      int64
	mmBidLevel     int
	mmAskLevel     int
	prevMmAskLevel int
	targetSpread   int
	isTight        bool

	triggerNanoOfDay    int64
	triggerTargetSpread int
	initialResponseNano int64

	scheduleID    int64
	scheduledNano int64
	timeoutID     int64
	timeoutNano   int64

	numberOfTriggers  int64
	numberOfResponses int64
	lastResponseTime  int64
}

// NewIssuerResponseTimeGenerator builds the monitor for one warrant.
func NewIssuerResponseTimeGenerator(sec *market.Security, scheduler Scheduler) *IssuerResponseTimeGenerator {
	g := &IssuerResponseTimeGenerator{sec: sec, scheduler: scheduler}
	g.machine = g.buildMachine()
	if err := g.machine.Start(lagStateError); err != nil {
		logs.Errorf("[IssuerLag] Failed to start machine for %s: %v", sec.Code(), err)
	}
	return g
}

// SetHandler wires the latency consumer.
func (g *IssuerResponseTimeGenerator) SetHandler(h IssuerLagHandler) { g.handler = h }

func (g *IssuerResponseTimeGenerator) buildMachine() *statemachine.StateMachine {
	b := statemachine.NewBuilder("issuer-lag:" + g.sec.Code())
	b.RegisterState(lagStateError, nil)
	b.RegisterState(lagStateTight, nil)
	b.RegisterState(lagStateWaitingAsk, nil)
	b.RegisterState(lagStateWaitingTight, nil)

	b.LinkStates(lagStateError, lagTransitionError, lagStateError)
	b.LinkStates(lagStateError, lagTransitionToTight, lagStateTight)
	b.LinkStates(lagStateError, lagTransitionWaitResp, lagStateWaitingAsk)
	b.LinkStates(lagStateTight, lagTransitionError, lagStateError)
	b.LinkStates(lagStateTight, lagTransitionWaitResp, lagStateWaitingAsk)
	b.LinkStates(lagStateWaitingAsk, lagTransitionError, lagStateError)
	b.LinkStates(lagStateWaitingAsk, lagTransitionWaitResp, lagStateWaitingTight)
	b.LinkStates(lagStateWaitingTight, lagTransitionError, lagStateError)
	b.LinkStates(lagStateWaitingTight, lagTransitionToTight, lagStateTight)

	b.TranslateEvent(lagStateError, lagEventBookUpdated, func(int) int {
		return g.transitionBySpread()
	})
	b.TranslateEvent(lagStateTight, lagEventBookUpdated, func(int) int {
		if g.mmBidLevel < market.MinTickLevel || g.mmAskLevel < g.mmBidLevel {
			return lagTransitionError
		}
		return statemachine.NoTransition
	})
	onTriggerUp := func(int) int {
		g.triggerNanoOfDay = g.nanoOfDay
		g.triggerTargetSpread = g.targetSpread
		g.numberOfTriggers++
		g.scheduledNano = g.nanoOfDay + initialResponseTimeoutNs
		g.scheduleID = g.scheduler.ScheduleAt(g.scheduledNano, g.onTimeout)
		return lagTransitionWaitResp
	}
	b.TranslateEvent(lagStateError, lagEventTriggerUp, onTriggerUp)
	b.TranslateEvent(lagStateTight, lagEventTriggerUp, onTriggerUp)

	b.TranslateEvent(lagStateWaitingAsk, lagEventBookUpdated, func(int) int {
		if g.prevMmAskLevel >= market.MinTickLevel && (g.mmAskLevel == 0 || g.mmAskLevel > g.prevMmAskLevel) {
			g.lastResponseTime = g.nanoOfDay - g.triggerNanoOfDay
			g.numberOfResponses++
			g.scheduler.Cancel(g.scheduleID)
			if g.handler != nil {
				if err := g.handler.OnIssuerLagUpdated(g.lastResponseTime); err != nil {
					logs.Errorf("[IssuerLag] Lag handler failed for %s: %v", g.sec.Code(), err)
				}
			}
			g.initialResponseNano = g.nanoOfDay
			g.scheduledNano = g.nanoOfDay + fullResponseTimeoutNs
			g.scheduleID = g.scheduler.ScheduleAt(g.scheduledNano, g.onTimeout)
			return lagTransitionWaitResp
		}
		return statemachine.NoTransition
	})
	b.TranslateEvent(lagStateWaitingTight, lagEventBookUpdated, func(int) int {
		if g.targetSpread == g.triggerTargetSpread {
			if !g.isTight {
				return statemachine.NoTransition
			}
			g.scheduler.Cancel(g.scheduleID)
			timeInWide := g.nanoOfDay - g.initialResponseNano
			if g.handler != nil {
				if err := g.handler.OnIssuerSmoothingUpdated(timeInWide); err != nil {
					logs.Errorf("[IssuerLag] Smoothing handler failed for %s: %v", g.sec.Code(), err)
				}
			}
			return lagTransitionToTight
		}
		// Target spread moved under us; abandon the measurement.
		g.scheduler.Cancel(g.scheduleID)
		return g.transitionBySpread()
	})
	onTimeout := func(int) int {
		if g.timeoutID == g.scheduleID && g.timeoutNano == g.scheduledNano {
			return lagTransitionError
		}
		return statemachine.NoTransition
	}
	b.TranslateEvent(lagStateWaitingAsk, lagEventTimeOut, onTimeout)
	b.TranslateEvent(lagStateWaitingTight, lagEventTimeOut, onTimeout)

	return b.Build()
}

func (g *IssuerResponseTimeGenerator) transitionBySpread() int {
	if g.mmBidLevel >= market.MinTickLevel && g.mmAskLevel >= g.mmBidLevel {
		if g.isTight {
			return lagTransitionToTight
		}
	}
	return lagTransitionError
}

func (g *IssuerResponseTimeGenerator) onTimeout(scheduleID, nanoOfDay int64) {
	g.timeoutID = scheduleID
	g.timeoutNano = nanoOfDay
	if err := g.machine.OnEventReceived(lagEventTimeOut); err != nil {
		logs.Errorf("[IssuerLag] Timeout dispatch failed for %s: %v", g.sec.Code(), err)
	}
}

// OnTriggerUp marks the moment the issuer is expected to lift its ask.
func (g *IssuerResponseTimeGenerator) OnTriggerUp(nanoOfDay int64, targetSpread int) error {
	g.nanoOfDay = nanoOfDay
	g.targetSpread = targetSpread
	return g.machine.OnEventReceived(lagEventTriggerUp)
}

// OnMmOrderBookUpdated feeds one qualified-quote observation.
func (g *IssuerResponseTimeGenerator) OnMmOrderBookUpdated(nanoOfDay int64, mmBidLevel, mmAskLevel, targetSpread int, isTight bool) error {
	g.nanoOfDay = nanoOfDay
	g.mmBidLevel = mmBidLevel
	g.mmAskLevel = mmAskLevel
	g.targetSpread = targetSpread
	g.isTight = isTight
	err := g.machine.OnEventReceived(lagEventBookUpdated)
	g.prevMmAskLevel = mmAskLevel
	return err
}

// CurrentStateID exposes the machine state for tests and stats.
func (g *IssuerResponseTimeGenerator) CurrentStateID() int { return g.machine.CurrentStateID() }

// PrintStats logs the lifetime counters.
func (g *IssuerResponseTimeGenerator) PrintStats() {
	logs.Infof("[IssuerLag] Stats: secCode %s, triggers %d, responses %d, lastResponseTime %d",
		g.sec.Code(), g.numberOfTriggers, g.numberOfResponses, g.lastResponseTime)
}

// Reset abandons any in-flight measurement.
func (g *IssuerResponseTimeGenerator) Reset() {
	g.scheduler.Cancel(g.scheduleID)
	g.prevMmAskLevel = 0
	if err := g.machine.Start(lagStateError); err != nil {
		logs.Errorf("[IssuerLag] Failed to reset machine for %s: %v", g.sec.Code(), err)
	}
}
