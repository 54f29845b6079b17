package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedTableUniformGrid(t *testing.T) {
	tab := NewFixedSpreadTable(100)

	assert.Equal(t, 0, tab.PriceToTick(0))
	assert.Equal(t, 1, tab.PriceToTick(100))
	assert.Equal(t, 1000, tab.PriceToTick(100_000))
	assert.Equal(t, int64(100_000), tab.TickToPrice(1000))
	assert.Equal(t, int64(100), tab.PriceToTickSize(123_456))
	assert.Equal(t, int64(100), tab.TickSizeAt(42))
}

func TestWarrantTableBandBoundaries(t *testing.T) {
	tab := NewWarrantSpreadTable()

	// First band starts at 0.010 with level 1.
	assert.Equal(t, MinTickLevel, tab.PriceToTick(10))
	assert.Equal(t, int64(10), tab.TickToPrice(MinTickLevel))

	// 0.249 is the last level of the 0.001 band; 0.250 opens the 0.005 band.
	assert.Equal(t, 240, tab.PriceToTick(249))
	assert.Equal(t, 241, tab.PriceToTick(250))
	assert.Equal(t, int64(250), tab.TickToPrice(241))
	assert.Equal(t, int64(1), tab.PriceToTickSize(249))
	assert.Equal(t, int64(5), tab.PriceToTickSize(250))

	// 0.500 opens the 0.010 band at level 291.
	assert.Equal(t, 291, tab.PriceToTick(500))
	assert.Equal(t, int64(500), tab.TickToPrice(291))
	assert.Equal(t, int64(10), tab.TickSizeAt(291))
	assert.Equal(t, int64(5), tab.TickSizeAt(290))
}

func TestWarrantTableRoundTripsWithinBands(t *testing.T) {
	tab := NewWarrantSpreadTable()

	for _, price := range []int64{10, 105, 249, 255, 490, 510, 10_020, 25_050, 150_100, 5_005_000} {
		level := tab.PriceToTick(price)
		assert.Equal(t, price, tab.TickToPrice(level), "price %d", price)
	}
}

func TestWarrantTableOffGridPriceFloorsToLevel(t *testing.T) {
	tab := NewWarrantSpreadTable()

	// 0.252 sits between 0.250 and 0.255 in the 0.005 band.
	level := tab.PriceToTick(252)
	assert.Equal(t, 241, level)
	assert.Equal(t, int64(250), tab.TickToPrice(level))
}
