package strategy

import (
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
)

// Explain flag bits carried with every order.
const (
	ExplainFlagVolDown       uint8 = 1
	ExplainFlagTurnoverMaking uint8 = 2
	ExplainFlagWideSpread    uint8 = 4
)

// Slots of the explain value array. The array is a flat audit snapshot of the
// decision inputs at order time; it travels with the order and is logged, but
// nothing reads it back.
const (
	explainSlotNanoOfDay = iota
	explainSlotSide
	explainSlotPrice
	explainSlotQuantity
	explainSlotBestBid
	explainSlotBestAsk
	explainSlotMmBid
	explainSlotMmAsk
	explainSlotMmSpread
	explainSlotTargetSpread
	explainSlotWavgSpot
	explainSlotMidSpot
	explainSlotPrevSpot
	explainSlotDelta
	explainSlotTickSensitivity
	explainSlotPricePerUndTick
	explainSlotStopLoss
	explainSlotExitLevel
	explainSlotOrderSize
	explainSlotTriggerSeq
	explainSlotSpreadState
	explainSlotPricingMode

	explainNumSlots
)

const (
	explainSideBuy  = 1
	explainSideSell = -1
)

// explainRecord is the reusable per-warrant audit snapshot.
type explainRecord struct {
	sec    *market.Security
	flags  uint8
	values [explainNumSlots]int64
}

func newExplainRecord(sec *market.Security) *explainRecord {
	return &explainRecord{sec: sec}
}

func (e *explainRecord) ExplainFlags() uint8     { return e.flags }
func (e *explainRecord) ExplainValues() []int64  { return e.values[:] }

func (e *explainRecord) clear() {
	e.flags = 0
	for i := range e.values {
		e.values[i] = 0
	}
}

func (e *explainRecord) set(slot int, v int64) { e.values[slot] = v }

func (e *explainRecord) setFlag(flag uint8) { e.flags |= flag }

// logBuy and logSell emit the one-line audit trail for an order just sent.
func (e *explainRecord) logBuy() {
	logs.Infof("[Explain] Buy: secCode %s, flags %d, values %v", e.sec.Code(), e.flags, e.values)
}

func (e *explainRecord) logSell() {
	logs.Infof("[Explain] Sell: secCode %s, flags %d, values %v", e.sec.Code(), e.flags, e.values)
}
