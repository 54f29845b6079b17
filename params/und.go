package params

// Per-underlying tunable fields.
const (
	FieldSizeThreshold     Field = "sizeThreshold"
	FieldVelocityThreshold Field = "velocityThreshold"
)

// UndParams is the per-underlying tier shared by every warrant on the same
// underlying.
type UndParams struct {
	guards

	strategyID int64
	undSid     int64

	SizeThreshold     int64 `yaml:"size_threshold"`
	VelocityThreshold int64 `yaml:"velocity_threshold"`
	// Derived medium/strong thresholds, recomputed on every velocity write.
	VelocityThreshold2 int64 `yaml:"-"`
	VelocityThreshold3 int64 `yaml:"-"`

	NumActiveWarrants int `yaml:"-"`
	NumTotalWarrants  int `yaml:"-"`

	LastTriggerSeq uint32 `yaml:"-"`
}

// NewUndParams returns an empty per-underlying tier.
func NewUndParams() *UndParams {
	return &UndParams{guards: newGuards()}
}

func (p *UndParams) ParamsKind() string { return "und" }
func (p *UndParams) StrategyID() int64  { return p.strategyID }
func (p *UndParams) SetStrategyID(id int64) { p.strategyID = id }
func (p *UndParams) UndSid() int64          { return p.undSid }
func (p *UndParams) SetUndSid(sid int64)    { p.undSid = sid }

// SetVelocityThreshold keeps the tiered thresholds in lockstep.
func (p *UndParams) SetVelocityThreshold(v int64) {
	p.VelocityThreshold = v
	p.VelocityThreshold2 = v * 2
	p.VelocityThreshold3 = v * 3
}

// UserSetSizeThreshold is the guarded write path.
func (p *UndParams) UserSetSizeThreshold(v int64) bool {
	return p.userSet(FieldSizeThreshold, v, func(nv int64) { p.SizeThreshold = nv })
}

// UserSetVelocityThreshold is the guarded write path.
func (p *UndParams) UserSetVelocityThreshold(v int64) bool {
	return p.userSet(FieldVelocityThreshold, v, func(nv int64) { p.SetVelocityThreshold(nv) })
}

// IncNumActiveWarrants bumps the count of switched-on warrants.
func (p *UndParams) IncNumActiveWarrants() { p.NumActiveWarrants++ }

// DecNumActiveWarrants drops the count of switched-on warrants.
func (p *UndParams) DecNumActiveWarrants() {
	if p.NumActiveWarrants > 0 {
		p.NumActiveWarrants--
	}
}

// IncNumTotalWarrants bumps the count of initialized warrants.
func (p *UndParams) IncNumTotalWarrants() { p.NumTotalWarrants++ }

// CopyInputsTo copies the user-writable fields onto another tier instance.
func (p *UndParams) CopyInputsTo(o *UndParams) {
	o.SizeThreshold = p.SizeThreshold
	o.SetVelocityThreshold(p.VelocityThreshold)
}
