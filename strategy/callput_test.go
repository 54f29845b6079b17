package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonvincal/lunar-sub006/bucket"
	"github.com/wonvincal/lunar-sub006/scale"
)

func TestSideOpsFavorableEdges(t *testing.T) {
	iv := &bucket.Interval{Begin: 100_000_000, EndExclusive: 100_500_000}

	assert.Equal(t, int64(100_500_000), callOps{}.FavorableEdge(iv))
	assert.Equal(t, int64(100_000_000), callOps{}.AdverseEdge(iv))
	assert.Equal(t, int64(100_000_000), putOps{}.FavorableEdge(iv))
	assert.Equal(t, int64(100_500_000), putOps{}.AdverseEdge(iv))
}

func TestSideOpsFavorableComparisons(t *testing.T) {
	assert.True(t, callOps{}.IsFavorable(101, 100))
	assert.False(t, callOps{}.IsFavorable(100, 100))
	assert.False(t, callOps{}.IsFavorable(0, 100))
	assert.True(t, callOps{}.IsFavorableOrEqual(100, 100))

	assert.True(t, putOps{}.IsFavorable(99, 100))
	assert.False(t, putOps{}.IsFavorable(100, 100))
	assert.False(t, putOps{}.IsFavorable(0, 100))
	// Against an unset reference, any set value is favorable for a put.
	assert.True(t, putOps{}.IsFavorable(99, 0))
	assert.True(t, putOps{}.IsFavorableOrEqual(100, 100))
}

func TestSideOpsBestSpotIgnoresZeros(t *testing.T) {
	assert.Equal(t, int64(105), callOps{}.BestSpot(100, 105))
	assert.Equal(t, int64(100), callOps{}.BestSpot(100, 0))
	assert.Equal(t, int64(100), callOps{}.BestSpot(0, 100))

	assert.Equal(t, int64(95), putOps{}.BestSpot(100, 95))
	assert.Equal(t, int64(100), putOps{}.BestSpot(100, 0))
	assert.Equal(t, int64(100), putOps{}.BestSpot(0, 100))
}

func TestSideOpsShiftDirections(t *testing.T) {
	assert.Equal(t, int64(110), callOps{}.ShiftFavorable(100, 10))
	assert.Equal(t, int64(90), callOps{}.ShiftAdverse(100, 10))
	assert.Equal(t, int64(90), putOps{}.ShiftFavorable(100, 10))
	assert.Equal(t, int64(110), putOps{}.ShiftAdverse(100, 10))
}

func TestSideOpsStopLossSelection(t *testing.T) {
	// A call stop below the spot: tighter means higher.
	assert.Equal(t, int64(98), callOps{}.TighterStopLoss(95, 98))
	assert.Equal(t, int64(95), callOps{}.LooserStopLoss(95, 98))
	assert.Equal(t, int64(95), callOps{}.LooserStopLoss(95, 0))

	// A put stop above the spot: tighter means lower.
	assert.Equal(t, int64(102), putOps{}.TighterStopLoss(102, 105))
	assert.Equal(t, int64(102), putOps{}.TighterStopLoss(102, 0))
	assert.Equal(t, int64(105), putOps{}.LooserStopLoss(102, 105))
}

func TestSideOpsCanTightenStopLoss(t *testing.T) {
	assert.True(t, callOps{}.CanTightenStopLoss(98, 95))
	assert.False(t, callOps{}.CanTightenStopLoss(90, 95))
	assert.False(t, callOps{}.CanTightenStopLoss(0, 95))

	assert.True(t, putOps{}.CanTightenStopLoss(102, 105))
	assert.True(t, putOps{}.CanTightenStopLoss(102, 0))
	assert.False(t, putOps{}.CanTightenStopLoss(110, 105))
}

func TestSideOpsStopLossHit(t *testing.T) {
	assert.True(t, callOps{}.IsStopLossHit(95, 95))
	assert.True(t, callOps{}.IsStopLossHit(94, 95))
	assert.False(t, callOps{}.IsStopLossHit(96, 95))
	assert.False(t, callOps{}.IsStopLossHit(0, 95))
	assert.False(t, callOps{}.IsStopLossHit(94, 0))

	assert.True(t, putOps{}.IsStopLossHit(105, 105))
	assert.True(t, putOps{}.IsStopLossHit(106, 105))
	assert.False(t, putOps{}.IsStopLossHit(104, 105))
}

func TestSideOpsDeltaHeadroom(t *testing.T) {
	// Long calls push exposure positive, long puts push it negative.
	assert.Equal(t, int64(300_000), callOps{}.AvailableDeltaShares(200_000, 500_000))
	assert.Equal(t, int64(700_000), callOps{}.AvailableDeltaShares(-200_000, 500_000))
	assert.Equal(t, int64(300_000), putOps{}.AvailableDeltaShares(-200_000, 500_000))
	assert.Equal(t, int64(700_000), putOps{}.AvailableDeltaShares(200_000, 500_000))
}

func TestSideOpsSpotChangeMagnitudesMirror(t *testing.T) {
	br := scale.NewEquityBridge(8_000)

	callMove := callOps{}.SpotChangeMagnitude(br, 1_000, 50_000, 0)
	putMove := putOps{}.SpotChangeMagnitude(br, 1_000, -50_000, 0)
	assert.Equal(t, callMove, putMove)
	assert.Greater(t, callMove, int64(0))
}
