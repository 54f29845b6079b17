// utils/math.go
package utils

// PercentScale is the fixed-point scale used for percentage-style tunables
// (an order size multiplier of 1000 means 100%).
const PercentScale = 1000

// AbsInt64 returns the absolute value of v.
func AbsInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// MaxInt64 returns the larger of a and b.
func MaxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// MinInt64 returns the smaller of a and b.
func MinInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// RoundDownToLotSize rounds quantity down to a multiple of lotSize.
// A non-positive lotSize leaves the quantity unchanged.
func RoundDownToLotSize(quantity, lotSize int64) int64 {
	if lotSize <= 0 {
		return quantity
	}
	return (quantity / lotSize) * lotSize
}

// RoundUpToLotSize rounds quantity up to a multiple of lotSize.
func RoundUpToLotSize(quantity, lotSize int64) int64 {
	if lotSize <= 0 {
		return quantity
	}
	return ((quantity + lotSize - 1) / lotSize) * lotSize
}

// ApplyPercent scales value by a PercentScale-scaled percentage.
func ApplyPercent(value, percent int64) int64 {
	return value * percent / PercentScale
}
