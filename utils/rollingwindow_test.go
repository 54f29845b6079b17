package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingWindowAccumulatesWithinWindow(t *testing.T) {
	w := NewRollingWindow(20_000_000, 8)

	w.Record(1_000_000, 100)
	w.Record(5_000_000, -40)
	w.Record(10_000_000, 25)

	assert.Equal(t, int64(85), w.Accumulated())
	assert.Equal(t, 3, w.Count())
}

func TestRollingWindowEvictsAgedEntries(t *testing.T) {
	w := NewRollingWindow(20_000_000, 8)

	w.Record(1_000_000, 100)
	w.Record(5_000_000, 50)

	// 1ms entry ages out exactly at 21ms (cutoff is inclusive).
	w.Update(21_000_000)
	assert.Equal(t, int64(50), w.Accumulated())
	assert.Equal(t, 1, w.Count())

	w.Update(25_000_000)
	assert.Equal(t, int64(0), w.Accumulated())
	assert.Equal(t, 0, w.Count())
}

func TestRollingWindowEvictsOldestWhenFull(t *testing.T) {
	w := NewRollingWindow(1_000_000_000, 4)

	for i := int64(1); i <= 5; i++ {
		w.Record(i, i*10)
	}

	// Capacity 4: the first entry was pushed out early.
	assert.Equal(t, 4, w.Count())
	assert.Equal(t, int64(20+30+40+50), w.Accumulated())
}

func TestRollingWindowClear(t *testing.T) {
	w := NewRollingWindow(1_000_000, 4)
	w.Record(10, 7)
	w.Clear()

	assert.Equal(t, 0, w.Count())
	assert.Equal(t, int64(0), w.Accumulated())

	w.Record(20, 3)
	assert.Equal(t, int64(3), w.Accumulated())
}

func TestLotSizeRounding(t *testing.T) {
	assert.Equal(t, int64(10_000), RoundDownToLotSize(14_999, 5000))
	assert.Equal(t, int64(15_000), RoundUpToLotSize(10_001, 5000))
	assert.Equal(t, int64(123), RoundDownToLotSize(123, 0))
}

func TestApplyPercent(t *testing.T) {
	assert.Equal(t, int64(150), ApplyPercent(100, 1500))
	assert.Equal(t, int64(50), ApplyPercent(100, 500))
	assert.Equal(t, int64(100), ApplyPercent(100, PercentScale))
}
