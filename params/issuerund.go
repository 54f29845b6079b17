package params

// Per-issuer-underlying tunable fields.
const (
	FieldUndTradeVolThreshold Field = "undTradeVolThreshold"
	FieldMaxUndDeltaShares    Field = "maxUndDeltaShares"
)

// IssuerUndParams is the per-(issuer, underlying) tier carrying the
// delta-exposure and trade-volume gate state shared by all of one issuer's
// warrants on one underlying.
type IssuerUndParams struct {
	guards

	strategyID   int64
	issuerSid    int64
	undSid       int64
	issuerUndSid int64

	UndTradeVolThreshold int64 `yaml:"und_trade_vol_threshold"`
	MaxUndDeltaShares    int64 `yaml:"max_und_delta_shares"`

	// Outputs written by the delta-limit generator.
	UndTradeVol           int64 `yaml:"-"`
	UndDeltaShares        int64 `yaml:"-"`
	PendingUndDeltaShares int64 `yaml:"-"`

	LastTriggerSeq uint32 `yaml:"-"`
}

// NewIssuerUndParams returns an empty tier.
func NewIssuerUndParams() *IssuerUndParams {
	return &IssuerUndParams{guards: newGuards()}
}

func (p *IssuerUndParams) ParamsKind() string     { return "issuerUnd" }
func (p *IssuerUndParams) StrategyID() int64      { return p.strategyID }
func (p *IssuerUndParams) SetStrategyID(id int64) { p.strategyID = id }
func (p *IssuerUndParams) IssuerSid() int64       { return p.issuerSid }
func (p *IssuerUndParams) UndSid() int64          { return p.undSid }
func (p *IssuerUndParams) IssuerUndSid() int64    { return p.issuerUndSid }

// SetSids fixes all identity fields at creation.
func (p *IssuerUndParams) SetSids(issuerSid, undSid int64) {
	p.issuerSid = issuerSid
	p.undSid = undSid
	p.issuerUndSid = ConvertToIssuerUndSid(issuerSid, undSid)
}

func (p *IssuerUndParams) UserSetUndTradeVolThreshold(v int64) bool {
	return p.userSet(FieldUndTradeVolThreshold, v, func(nv int64) { p.UndTradeVolThreshold = nv })
}

func (p *IssuerUndParams) UserSetMaxUndDeltaShares(v int64) bool {
	return p.userSet(FieldMaxUndDeltaShares, v, func(nv int64) { p.MaxUndDeltaShares = nv })
}

// CopyInputsTo copies the user-writable fields onto another tier instance.
func (p *IssuerUndParams) CopyInputsTo(o *IssuerUndParams) {
	o.UndTradeVolThreshold = p.UndTradeVolThreshold
	o.MaxUndDeltaShares = p.MaxUndDeltaShares
}

const lowerOrderMask = 0x00000000FFFFFFFF

// ConvertToIssuerUndSid packs an (issuer, underlying) pair into one key.
func ConvertToIssuerUndSid(issuerSid, undSid int64) int64 {
	return (issuerSid << 32) | (undSid & lowerOrderMask)
}
