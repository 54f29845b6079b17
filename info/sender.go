// Package info carries parameter snapshots and discrete strategy events out
// of the decision core. Implementations must not block the dispatch thread.
package info

import "github.com/wonvincal/lunar-sub006/params"

// EventType tags a discrete audit event.
type EventType string

const (
	EventVolDownSignal        EventType = "VOL_DOWN_SIGNAL"
	EventDeltaLimitExceeded   EventType = "DELTA_LIMIT_EXCEEDED"
	EventTurnoverMaking       EventType = "TURNOVER_MAKING"
	EventIssuerLag            EventType = "ISSUER_LAG"
	EventPricingModeChanged   EventType = "PRICING_MODE_CHANGED"
	EventTargetSpreadReset    EventType = "TARGET_SPREAD_RESET"
	EventStrategySwitchedOn   EventType = "STRATEGY_SWITCHED_ON"
	EventStrategySwitchedOff  EventType = "STRATEGY_SWITCHED_OFF"
	EventStrategyErrorHandled EventType = "STRATEGY_ERROR_HANDLED"
)

// Sender broadcasts parameter snapshots and events. The throttled and
// batched variants let hot paths coalesce updates; the persist variant also
// writes the snapshot through the state store.
type Sender interface {
	Broadcast(p params.Broadcastable)
	BroadcastThrottled(p params.Broadcastable)
	BroadcastBatched(p params.Broadcastable)
	BroadcastBatchedPersist(p params.Broadcastable)
	SendEvent(secSid, nanoOfDay int64, event EventType, value int64)
}

// Noop discards everything; used in tests.
type Noop struct{}

func (Noop) Broadcast(params.Broadcastable)                {}
func (Noop) BroadcastThrottled(params.Broadcastable)       {}
func (Noop) BroadcastBatched(params.Broadcastable)         {}
func (Noop) BroadcastBatchedPersist(params.Broadcastable)  {}
func (Noop) SendEvent(int64, int64, EventType, int64)      {}

// Recorder captures events for assertions in tests.
type Recorder struct {
	Noop
	Events []RecordedEvent
}

// RecordedEvent is one captured SendEvent call.
type RecordedEvent struct {
	SecSid    int64
	NanoOfDay int64
	Event     EventType
	Value     int64
}

func (r *Recorder) SendEvent(secSid, nanoOfDay int64, event EventType, value int64) {
	r.Events = append(r.Events, RecordedEvent{SecSid: secSid, NanoOfDay: nanoOfDay, Event: event, Value: value})
}
