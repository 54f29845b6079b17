package strategy

import (
	"github.com/wonvincal/lunar-sub006/bucket"
	"github.com/wonvincal/lunar-sub006/scale"
	"github.com/wonvincal/lunar-sub006/trigger"
	"github.com/wonvincal/lunar-sub006/utils"
)

// sideOps concentrates every call/put sign asymmetry behind one interface,
// selected once at construction. Everything else in the package is written in
// favorable/adverse terms: favorable is up-spot for a call and down-spot for
// a put.
type sideOps interface {
	// IsTriggered asks the entry-authorization source for this side.
	IsTriggered(g trigger.Generator) bool
	TriggerStrength(g trigger.Generator) trigger.Strength

	// FavorableEdge is the interval edge the spot crosses when it moves in
	// the favorable direction.
	FavorableEdge(iv *bucket.Interval) int64
	// AdverseEdge is the opposite edge.
	AdverseEdge(iv *bucket.Interval) int64

	// IsFavorable reports whether a sits further in the favorable direction
	// than b. Zero values are never favorable.
	IsFavorable(a, b int64) bool
	IsFavorableOrEqual(a, b int64) bool

	// BestSpot keeps the more favorable of the two spots, ignoring zeros.
	BestSpot(current, candidate int64) int64

	// ShiftFavorable moves a spot by the given magnitude in the favorable
	// direction; ShiftAdverse moves it the other way.
	ShiftFavorable(spot, magnitude int64) int64
	ShiftAdverse(spot, magnitude int64) int64

	// SpotChangeMagnitude is the unsigned spot move needed for the given
	// warrant price change, gamma-adjusted.
	SpotChangeMagnitude(br scale.Bridge, priceChange, delta, gamma int64) int64

	// TighterStopLoss picks the stop closer to the live spot; LooserStopLoss
	// the one further away. Zero means unset and always loses to a set value
	// in TighterStopLoss, and wins in LooserStopLoss.
	TighterStopLoss(a, b int64) int64
	LooserStopLoss(a, b int64) int64
	// CanTightenStopLoss reports whether candidate improves on current.
	CanTightenStopLoss(candidate, current int64) bool
	// IsStopLossHit reports whether the live spot has reached the stop.
	IsStopLossHit(spot, stopLoss int64) bool

	// AvailableDeltaShares is the remaining issuer exposure headroom for this
	// side given the current signed exposure.
	AvailableDeltaShares(currentDeltaShares, threshold int64) int64
}

type callOps struct{}

func (callOps) IsTriggered(g trigger.Generator) bool { return g.IsTriggeredForCall() }
func (callOps) TriggerStrength(g trigger.Generator) trigger.Strength {
	return g.StrengthForCall()
}

func (callOps) FavorableEdge(iv *bucket.Interval) int64 { return iv.EndExclusive }
func (callOps) AdverseEdge(iv *bucket.Interval) int64   { return iv.Begin }

func (callOps) IsFavorable(a, b int64) bool        { return a != 0 && a > b }
func (callOps) IsFavorableOrEqual(a, b int64) bool { return a != 0 && a >= b }

func (callOps) BestSpot(current, candidate int64) int64 {
	if candidate == 0 {
		return current
	}
	return utils.MaxInt64(current, candidate)
}

func (callOps) ShiftFavorable(spot, magnitude int64) int64 { return spot + magnitude }
func (callOps) ShiftAdverse(spot, magnitude int64) int64   { return spot - magnitude }

func (callOps) SpotChangeMagnitude(br scale.Bridge, priceChange, delta, gamma int64) int64 {
	return utils.AbsInt64(br.CalcSpotChangeRequiredForCall(priceChange, delta, gamma))
}

func (callOps) TighterStopLoss(a, b int64) int64 { return utils.MaxInt64(a, b) }

func (callOps) LooserStopLoss(a, b int64) int64 {
	if a == 0 || b == 0 {
		return utils.MaxInt64(a, b)
	}
	return utils.MinInt64(a, b)
}

func (callOps) CanTightenStopLoss(candidate, current int64) bool {
	return candidate != 0 && candidate >= current
}

func (callOps) IsStopLossHit(spot, stopLoss int64) bool {
	return stopLoss != 0 && spot != 0 && spot <= stopLoss
}

func (callOps) AvailableDeltaShares(currentDeltaShares, threshold int64) int64 {
	return threshold - currentDeltaShares
}

type putOps struct{}

func (putOps) IsTriggered(g trigger.Generator) bool { return g.IsTriggeredForPut() }
func (putOps) TriggerStrength(g trigger.Generator) trigger.Strength {
	return g.StrengthForPut()
}

func (putOps) FavorableEdge(iv *bucket.Interval) int64 { return iv.Begin }
func (putOps) AdverseEdge(iv *bucket.Interval) int64   { return iv.EndExclusive }

func (putOps) IsFavorable(a, b int64) bool        { return a != 0 && (b == 0 || a < b) }
func (putOps) IsFavorableOrEqual(a, b int64) bool { return a != 0 && (b == 0 || a <= b) }

func (putOps) BestSpot(current, candidate int64) int64 {
	if candidate == 0 {
		return current
	}
	if current == 0 {
		return candidate
	}
	return utils.MinInt64(current, candidate)
}

func (putOps) ShiftFavorable(spot, magnitude int64) int64 { return spot - magnitude }
func (putOps) ShiftAdverse(spot, magnitude int64) int64   { return spot + magnitude }

func (putOps) SpotChangeMagnitude(br scale.Bridge, priceChange, delta, gamma int64) int64 {
	return utils.AbsInt64(br.CalcSpotChangeRequiredForPut(priceChange, delta, gamma))
}

func (putOps) TighterStopLoss(a, b int64) int64 {
	if a == 0 || b == 0 {
		return utils.MaxInt64(a, b)
	}
	return utils.MinInt64(a, b)
}

func (putOps) LooserStopLoss(a, b int64) int64 { return utils.MaxInt64(a, b) }

func (putOps) CanTightenStopLoss(candidate, current int64) bool {
	return candidate != 0 && (current == 0 || candidate <= current)
}

func (putOps) IsStopLossHit(spot, stopLoss int64) bool {
	return stopLoss != 0 && spot != 0 && spot >= stopLoss
}

func (putOps) AvailableDeltaShares(currentDeltaShares, threshold int64) int64 {
	return threshold + currentDeltaShares
}
