// Package scale holds the pure numeric conversions between warrant price
// ticks and underlying spot moves. All functions are stateless; the only
// construction-time input is the conversion ratio.
//
// Unit conventions: prices at 1e3, spots at 1e6 (price scale times the
// weighted-average scale), delta/gamma at 1e5, conversion ratio at 1e3.
package scale

import "math"

const (
	// DeltaScale is the fixed-point scale of delta and gamma.
	DeltaScale = 100_000
	// ConvRatioScale is the fixed-point scale of the conversion ratio.
	ConvRatioScale = 1000
	// SpotScale is the fixed-point scale of spot estimates.
	SpotScale = 1_000_000
)

// Bridge converts between warrant price moves and underlying spot moves.
type Bridge interface {
	// CalcPricePerUnderlyingTick returns the warrant price change implied by
	// one underlying tick, at spot precision (1e6).
	CalcPricePerUnderlyingTick(undTickSize, delta int64) int64
	// CalcAdjustedDelta corrects delta for gamma over the drift between the
	// current spot and the greeks' reference spot (spotDiff at SpotScale).
	CalcAdjustedDelta(delta, gamma, spotDiff int64) int64
	// CalcSpotChangeRequired returns the spot move needed for the given
	// warrant price change, linear in delta.
	CalcSpotChangeRequired(priceChange, delta int64) int64
	// CalcSpotChangeRequiredForCall solves the gamma-adjusted quadratic with
	// the positive root.
	CalcSpotChangeRequiredForCall(priceChange, delta, gamma int64) int64
	// CalcSpotChangeRequiredForPut solves the gamma-adjusted quadratic with
	// the opposite root.
	CalcSpotChangeRequiredForPut(priceChange, delta, gamma int64) int64
	// CalcPriceChangeForSpotChange is the inverse of CalcSpotChangeRequired.
	CalcPriceChangeForSpotChange(spotChange, delta int64) int64
	// CalcSpotBufferFromTickBuffer converts a per-mille tick buffer into a
	// spot buffer given the warrant tick size in force.
	CalcSpotBufferFromTickBuffer(tickBufferPerMille, warrantTickSize, delta int64) int64
}

type bridge struct {
	convRatio int64
}

// NewGenericBridge builds a bridge for arbitrary-scale instruments.
func NewGenericBridge(convRatio int64) Bridge {
	if convRatio <= 0 {
		convRatio = ConvRatioScale
	}
	return &bridge{convRatio: convRatio}
}

// NewEquityBridge builds the variant used when the underlying is an index
// quoted at point scale rather than dollar scale.
func NewEquityBridge(convRatio int64) Bridge {
	adjusted := convRatio / ConvRatioScale
	if adjusted <= 0 {
		adjusted = 1
	}
	return &bridge{convRatio: adjusted}
}

func (b *bridge) CalcPricePerUnderlyingTick(undTickSize, delta int64) int64 {
	if delta < 0 {
		delta = -delta
	}
	return undTickSize * delta * 10 / b.convRatio
}

func (b *bridge) CalcAdjustedDelta(delta, gamma, spotDiff int64) int64 {
	return delta + gamma*spotDiff/SpotScale
}

func (b *bridge) CalcSpotChangeRequired(priceChange, delta int64) int64 {
	if delta == 0 {
		return 0
	}
	if delta < 0 {
		delta = -delta
	}
	return priceChange * b.convRatio * DeltaScale / delta
}

// quadratic solves priceChange = delta*ds + gamma*ds^2/2 for ds in real
// units, returning the chosen root at SpotScale. Falls back to the linear
// form when gamma vanishes or the discriminant is negative.
func (b *bridge) quadratic(priceChange, delta, gamma int64, positiveRoot bool) int64 {
	if gamma == 0 {
		return b.CalcSpotChangeRequired(priceChange, delta)
	}
	dp := float64(priceChange) / 1000.0 * float64(b.convRatio) / float64(ConvRatioScale)
	d := float64(delta) / float64(DeltaScale)
	g := float64(gamma) / float64(DeltaScale)
	disc := d*d + 2.0*g*dp
	if disc < 0 {
		return b.CalcSpotChangeRequired(priceChange, delta)
	}
	root := math.Sqrt(disc)
	var ds float64
	if positiveRoot {
		ds = (-d + root) / g
	} else {
		ds = (-d - root) / g
	}
	return int64(ds * SpotScale)
}

func (b *bridge) CalcSpotChangeRequiredForCall(priceChange, delta, gamma int64) int64 {
	return b.quadratic(priceChange, delta, gamma, true)
}

func (b *bridge) CalcSpotChangeRequiredForPut(priceChange, delta, gamma int64) int64 {
	return b.quadratic(priceChange, -delta, gamma, false)
}

func (b *bridge) CalcPriceChangeForSpotChange(spotChange, delta int64) int64 {
	if delta < 0 {
		delta = -delta
	}
	return spotChange * delta / (DeltaScale * b.convRatio)
}

func (b *bridge) CalcSpotBufferFromTickBuffer(tickBufferPerMille, warrantTickSize, delta int64) int64 {
	return b.CalcSpotChangeRequired(warrantTickSize, delta) * tickBufferPerMille / 1000
}
