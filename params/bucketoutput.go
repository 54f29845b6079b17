package params

import "github.com/wonvincal/lunar-sub006/bucket"

// BucketOutputParams is the broadcast snapshot of the active and next learned
// buckets for one warrant.
type BucketOutputParams struct {
	strategyID int64
	secSid     int64

	ActiveBucketData    int64
	ActiveBucketBegin   int64
	ActiveBucketEndExcl int64
	NextBucketData      int64
	NextBucketBegin     int64
	NextBucketEndExcl   int64
}

// NewBucketOutputParams returns a reset snapshot.
func NewBucketOutputParams() *BucketOutputParams {
	p := &BucketOutputParams{}
	p.Reset()
	return p
}

func (p *BucketOutputParams) ParamsKind() string     { return "bucketOutput" }
func (p *BucketOutputParams) StrategyID() int64      { return p.strategyID }
func (p *BucketOutputParams) SetStrategyID(id int64) { p.strategyID = id }
func (p *BucketOutputParams) SecSid() int64          { return p.secSid }
func (p *BucketOutputParams) SetSecSid(sid int64)    { p.secSid = sid }

// SetActiveBucketInfo copies the interval into the active slots.
func (p *BucketOutputParams) SetActiveBucketInfo(iv *bucket.Interval) {
	p.ActiveBucketBegin = iv.Begin
	p.ActiveBucketEndExcl = iv.EndExclusive
	p.ActiveBucketData = iv.Data
}

// SetNextBucketInfo copies the interval into the next slots.
func (p *BucketOutputParams) SetNextBucketInfo(iv *bucket.Interval) {
	p.NextBucketBegin = iv.Begin
	p.NextBucketEndExcl = iv.EndExclusive
	p.NextBucketData = iv.Data
}

// Reset returns both buckets to the null interval values.
func (p *BucketOutputParams) Reset() {
	p.ActiveBucketBegin = bucket.NullIntervalBegin
	p.ActiveBucketEndExcl = bucket.NullIntervalEnd
	p.ActiveBucketData = bucket.NullData
	p.NextBucketBegin = bucket.NullIntervalBegin
	p.NextBucketEndExcl = bucket.NullIntervalEnd
	p.NextBucketData = bucket.NullData
}
