package bucket

import (
	"math"

	"github.com/wonvincal/lunar-sub006/market"
)

// Predictor learns, from recent joint observations, the derivative price
// associated with each underlying spot range, and flags violations when live
// quotes fall outside the learned association. One instance serves one
// (warrant, pricing mode) pair.
type Predictor interface {
	ObserveUndTick(nanoOfDay int64, spot int64, isTight bool, ti market.TriggerInfo, outInterval *Interval) Violation
	ObserveDerivTick(nanoOfDay int64, bid, ask, mmBid, mmAsk int64, mmSpread int, ti market.TriggerInfo) Violation
	ObserveGreeks(nanoOfDay int64, greeks *market.Greeks)

	GetIntervalByUndSpot(spot int64, out *Interval) bool
	GetOverlapAndNextIntervalByUndSpot(spot int64, outActive, outNext *Interval) bool
	GetIntervalByDerivPrice(price int64, out *Interval) bool
	GetIntervalByDerivPriceWithExtrapolation(price int64, out *Interval) bool

	TargetSpreadInTick() int
	ResetTargetSpread()
	ResetAndSetTargetSpreadInTick(spread int)
	HasTargetSpreadInTickBeenChanged() bool
	HasTargetSpreadInTickBeenChangedAndRegisterUndInterval(nanoOfDay, mmBid, mmAsk int64, mmSpread int) bool

	Reset()
	ResetAndRegister(nanoOfDay int64, interval *Interval)
	SetBucketSize(size int64)
	SetIssuerMaxLag(lagNs int64)
	IssuerMaxLag() int64
	Clear()
}

// UnsetSpread marks an unknown target spread.
const UnsetSpread = math.MaxInt32

const defaultBucketSize = 5000

// histogramPredictor is the reference Predictor: a sorted list of learned
// spot buckets, each anchored to the market-maker ask observed inside it.
type histogramPredictor struct {
	intervals []Interval

	bucketSize     int64
	issuerMaxLagNs int64

	lastSpot      int64
	lastSpotNano  int64
	lastMmBid     int64
	lastMmAsk     int64
	lastMmSpread  int

	targetSpreadInTick int
	targetChanged      bool
}

// NewPredictor builds an empty histogram predictor.
func NewPredictor(issuerMaxLagNs int64) Predictor {
	return &histogramPredictor{
		intervals:          make([]Interval, 0, 64),
		bucketSize:         defaultBucketSize,
		issuerMaxLagNs:     issuerMaxLagNs,
		targetSpreadInTick: UnsetSpread,
	}
}

func (p *histogramPredictor) SetBucketSize(size int64) {
	if size > 0 {
		p.bucketSize = size
	}
}

func (p *histogramPredictor) SetIssuerMaxLag(lagNs int64) { p.issuerMaxLagNs = lagNs }
func (p *histogramPredictor) IssuerMaxLag() int64         { return p.issuerMaxLagNs }

func (p *histogramPredictor) indexFor(spot int64) int {
	lo, hi := 0, len(p.intervals)
	for lo < hi {
		mid := (lo + hi) / 2
		if p.intervals[mid].Begin <= spot {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

func (p *histogramPredictor) findContaining(spot int64) int {
	i := p.indexFor(spot)
	if i >= 0 && p.intervals[i].Contains(spot) {
		return i
	}
	return -1
}

func (p *histogramPredictor) insert(nanoOfDay, spot, anchor int64) int {
	begin := (spot / p.bucketSize) * p.bucketSize
	iv := Interval{Begin: begin, EndExclusive: begin + p.bucketSize, Data: anchor, Last: nanoOfDay}
	i := p.indexFor(spot) + 1
	p.intervals = append(p.intervals, Interval{})
	copy(p.intervals[i+1:], p.intervals[i:])
	p.intervals[i] = iv
	return i
}

func (p *histogramPredictor) classify(learned, observed int64) Violation {
	if observed == learned {
		return NoViolation
	}
	if observed < learned {
		return DownVol
	}
	return UpVol
}

func (p *histogramPredictor) ObserveUndTick(nanoOfDay int64, spot int64, isTight bool, ti market.TriggerInfo, outInterval *Interval) Violation {
	p.lastSpot = spot
	p.lastSpotNano = nanoOfDay
	if outInterval != nil {
		outInterval.Clear()
	}
	if p.lastMmAsk <= 0 || spot <= 0 {
		return NoViolation
	}
	i := p.findContaining(spot)
	if i < 0 {
		i = p.insert(nanoOfDay, spot, p.lastMmAsk)
		if outInterval != nil {
			outInterval.CopyFrom(&p.intervals[i])
		}
		return NoViolation
	}
	iv := &p.intervals[i]
	if outInterval != nil {
		outInterval.CopyFrom(iv)
	}
	// A stale association is refreshed quietly once the issuer has had long
	// enough to move its quote.
	if nanoOfDay-iv.Last > p.issuerMaxLagNs {
		v := p.classify(iv.Data, p.lastMmAsk)
		iv.Data = p.lastMmAsk
		iv.Last = nanoOfDay
		if v != NoViolation && !isTight {
			return NoViolation
		}
		return v
	}
	return NoViolation
}

func (p *histogramPredictor) ObserveDerivTick(nanoOfDay int64, bid, ask, mmBid, mmAsk int64, mmSpread int, ti market.TriggerInfo) Violation {
	p.lastMmBid = mmBid
	p.lastMmAsk = mmAsk
	p.lastMmSpread = mmSpread
	if mmAsk <= 0 || mmBid <= 0 {
		return NoViolation
	}
	if mmSpread != UnsetSpread && mmSpread < p.targetSpreadInTick {
		p.targetSpreadInTick = mmSpread
		p.targetChanged = true
	}
	if p.lastSpot <= 0 {
		return NoViolation
	}
	i := p.findContaining(p.lastSpot)
	if i < 0 {
		p.insert(nanoOfDay, p.lastSpot, mmAsk)
		return NoViolation
	}
	iv := &p.intervals[i]
	v := p.classify(iv.Data, mmAsk)
	if v != NoViolation {
		iv.Data = mmAsk
		iv.Last = nanoOfDay
	}
	return v
}

func (p *histogramPredictor) ObserveGreeks(nanoOfDay int64, greeks *market.Greeks) {
	// Greeks shifts invalidate the learned association wholesale.
	if greeks != nil && greeks.Delta != 0 {
		p.intervals = p.intervals[:0]
	}
}

func (p *histogramPredictor) GetIntervalByUndSpot(spot int64, out *Interval) bool {
	i := p.findContaining(spot)
	if i < 0 {
		out.Clear()
		return false
	}
	out.CopyFrom(&p.intervals[i])
	return true
}

func (p *histogramPredictor) GetOverlapAndNextIntervalByUndSpot(spot int64, outActive, outNext *Interval) bool {
	outActive.Clear()
	outNext.Clear()
	i := p.findContaining(spot)
	if i < 0 {
		return false
	}
	outActive.CopyFrom(&p.intervals[i])
	if i+1 < len(p.intervals) && p.intervals[i+1].Begin == p.intervals[i].EndExclusive {
		outNext.CopyFrom(&p.intervals[i+1])
	}
	return true
}

func (p *histogramPredictor) GetIntervalByDerivPrice(price int64, out *Interval) bool {
	for i := range p.intervals {
		if p.intervals[i].Data == price {
			out.CopyFrom(&p.intervals[i])
			return true
		}
	}
	out.Clear()
	return false
}

func (p *histogramPredictor) GetIntervalByDerivPriceWithExtrapolation(price int64, out *Interval) bool {
	best := -1
	var bestDiff int64 = math.MaxInt64
	for i := range p.intervals {
		diff := p.intervals[i].Data - price
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	if best < 0 {
		out.Clear()
		return false
	}
	out.CopyFrom(&p.intervals[best])
	return true
}

func (p *histogramPredictor) TargetSpreadInTick() int { return p.targetSpreadInTick }

func (p *histogramPredictor) ResetTargetSpread() {
	p.targetSpreadInTick = UnsetSpread
	p.targetChanged = false
}

func (p *histogramPredictor) ResetAndSetTargetSpreadInTick(spread int) {
	p.Reset()
	p.targetSpreadInTick = spread
	p.targetChanged = false
}

func (p *histogramPredictor) HasTargetSpreadInTickBeenChanged() bool {
	changed := p.targetChanged
	p.targetChanged = false
	return changed
}

func (p *histogramPredictor) HasTargetSpreadInTickBeenChangedAndRegisterUndInterval(nanoOfDay, mmBid, mmAsk int64, mmSpread int) bool {
	changed := p.HasTargetSpreadInTickBeenChanged()
	p.lastMmBid = mmBid
	p.lastMmAsk = mmAsk
	p.lastMmSpread = mmSpread
	if p.lastSpot > 0 && mmAsk > 0 && p.findContaining(p.lastSpot) < 0 {
		p.insert(nanoOfDay, p.lastSpot, mmAsk)
	}
	return changed
}

func (p *histogramPredictor) Reset() {
	p.intervals = p.intervals[:0]
	p.targetChanged = false
}

func (p *histogramPredictor) ResetAndRegister(nanoOfDay int64, interval *Interval) {
	p.Reset()
	if interval != nil && !interval.IsEmpty() {
		p.intervals = append(p.intervals, *interval)
	}
}

func (p *histogramPredictor) Clear() {
	p.Reset()
	p.targetSpreadInTick = UnsetSpread
	p.lastSpot = 0
	p.lastMmBid = 0
	p.lastMmAsk = 0
	p.lastMmSpread = 0
}
