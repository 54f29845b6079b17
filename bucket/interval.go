package bucket

import "math"

// Null marker values for an unset interval.
const (
	NullIntervalBegin int64 = math.MaxInt64
	NullIntervalEnd   int64 = math.MaxInt64
	NullData          int64 = 0
)

// Interval is a half-open spot range [Begin, EndExclusive) with an associated
// derivative-price anchor (Data) and the nano-of-day it was last refreshed.
type Interval struct {
	Begin        int64
	EndExclusive int64
	Data         int64
	Last         int64
}

// NewEmptyInterval returns an interval carrying the null marker values.
func NewEmptyInterval() *Interval {
	iv := &Interval{}
	iv.Clear()
	return iv
}

// IsEmpty reports whether the interval carries no range.
func (iv *Interval) IsEmpty() bool { return iv.Begin == NullIntervalBegin }

// Clear resets the interval to the null marker values.
func (iv *Interval) Clear() {
	iv.Begin = NullIntervalBegin
	iv.EndExclusive = NullIntervalEnd
	iv.Data = NullData
	iv.Last = 0
}

// Set overwrites all fields.
func (iv *Interval) Set(begin, endExclusive, data, last int64) {
	iv.Begin = begin
	iv.EndExclusive = endExclusive
	iv.Data = data
	iv.Last = last
}

// CopyFrom copies all fields from other.
func (iv *Interval) CopyFrom(other *Interval) {
	*iv = *other
}

// Contains reports whether spot falls inside the half-open range.
func (iv *Interval) Contains(spot int64) bool {
	return !iv.IsEmpty() && spot >= iv.Begin && spot < iv.EndExclusive
}

// Violation classifies an observation that falls outside the learned range.
type Violation int8

const (
	NoViolation Violation = iota
	DownVol
	UpVol
	PriceOverlapped
	Inconsistent
	BucketTooBig
	ErrorViolation
)

func (v Violation) String() string {
	switch v {
	case NoViolation:
		return "NO_VIOLATION"
	case DownVol:
		return "DOWN_VOL"
	case UpVol:
		return "UP_VOL"
	case PriceOverlapped:
		return "PRICE_OVERLAPPED"
	case Inconsistent:
		return "INCONSISTENT"
	case BucketTooBig:
		return "BUCKET_TOO_BIG"
	}
	return "ERROR"
}
