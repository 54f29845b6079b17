package market

// PriceScale is the fixed-point scale for all prices (3 decimal places).
const PriceScale = 1000

// WeightedAverageScale is the extra scale carried by spot estimates on top
// of PriceScale, so weighted averages keep sub-tick resolution.
const WeightedAverageScale = 1000

// MinTickLevel is the lowest valid tick level in any spread table.
const MinTickLevel = 1

// SpreadTable maps between scaled prices and discrete tick levels.
type SpreadTable interface {
	PriceToTick(price int64) int
	TickToPrice(level int) int64
	// TickSizeAt returns the tick size at the given level.
	TickSizeAt(level int) int64
	// PriceToTickSize returns the tick size in force at the given price.
	PriceToTickSize(price int64) int64
	Scale() int64
	MaxLevel() int
}

// fixedSpreadTable uses one tick size across the whole price range.
type fixedSpreadTable struct {
	tick     int64
	maxLevel int
}

// NewFixedSpreadTable builds a table with a single tick size, used for
// index-style underlyings quoted on a uniform grid.
func NewFixedSpreadTable(tick int64) SpreadTable {
	return &fixedSpreadTable{tick: tick, maxLevel: 1 << 21}
}

func (t *fixedSpreadTable) PriceToTick(price int64) int {
	if price <= 0 {
		return 0
	}
	return int(price / t.tick)
}

func (t *fixedSpreadTable) TickToPrice(level int) int64 {
	return int64(level) * t.tick
}

func (t *fixedSpreadTable) TickSizeAt(int) int64        { return t.tick }
func (t *fixedSpreadTable) PriceToTickSize(int64) int64 { return t.tick }
func (t *fixedSpreadTable) Scale() int64                { return PriceScale }
func (t *fixedSpreadTable) MaxLevel() int               { return t.maxLevel }

type band struct {
	begin      int64 // first price in the band, inclusive
	tick       int64
	beginLevel int
}

// bandedSpreadTable follows the exchange's price-banded tick schedule.
type bandedSpreadTable struct {
	bands    []band
	maxPrice int64
	maxLevel int
}

// NewWarrantSpreadTable builds the banded tick schedule used by listed
// structured products (prices at PriceScale).
func NewWarrantSpreadTable() SpreadTable {
	specs := []struct {
		begin int64
		tick  int64
	}{
		{10, 1},           // 0.010 - 0.250 @ 0.001
		{250, 5},          // 0.250 - 0.500 @ 0.005
		{500, 10},         // 0.500 - 10.00 @ 0.010
		{10_000, 20},      // 10.00 - 20.00 @ 0.020
		{20_000, 50},      // 20.00 - 100.0 @ 0.050
		{100_000, 100},    // 100.0 - 200.0 @ 0.100
		{200_000, 200},    // 200.0 - 500.0 @ 0.200
		{500_000, 500},    // 500.0 - 1000  @ 0.500
		{1_000_000, 1000}, // 1000 - 2000 @ 1.000
		{2_000_000, 2000}, // 2000 - 5000 @ 2.000
		{5_000_000, 5000}, // 5000 - 9995 @ 5.000
	}
	bands := make([]band, len(specs))
	level := MinTickLevel
	for i, s := range specs {
		bands[i] = band{begin: s.begin, tick: s.tick, beginLevel: level}
		var end int64
		if i+1 < len(specs) {
			end = specs[i+1].begin
		} else {
			end = 9_995_000
		}
		level += int((end - s.begin) / s.tick)
	}
	return &bandedSpreadTable{bands: bands, maxPrice: 9_995_000, maxLevel: level}
}

func (t *bandedSpreadTable) bandForPrice(price int64) *band {
	for i := len(t.bands) - 1; i >= 0; i-- {
		if price >= t.bands[i].begin {
			return &t.bands[i]
		}
	}
	return nil
}

func (t *bandedSpreadTable) bandForLevel(level int) *band {
	for i := len(t.bands) - 1; i >= 0; i-- {
		if level >= t.bands[i].beginLevel {
			return &t.bands[i]
		}
	}
	return nil
}

func (t *bandedSpreadTable) PriceToTick(price int64) int {
	b := t.bandForPrice(price)
	if b == nil {
		return 0
	}
	return b.beginLevel + int((price-b.begin)/b.tick)
}

func (t *bandedSpreadTable) TickToPrice(level int) int64 {
	b := t.bandForLevel(level)
	if b == nil {
		return 0
	}
	return b.begin + int64(level-b.beginLevel)*b.tick
}

func (t *bandedSpreadTable) TickSizeAt(level int) int64 {
	b := t.bandForLevel(level)
	if b == nil {
		return t.bands[0].tick
	}
	return b.tick
}

func (t *bandedSpreadTable) PriceToTickSize(price int64) int64 {
	b := t.bandForPrice(price)
	if b == nil {
		return t.bands[0].tick
	}
	return b.tick
}

func (t *bandedSpreadTable) Scale() int64  { return PriceScale }
func (t *bandedSpreadTable) MaxLevel() int { return t.maxLevel }
