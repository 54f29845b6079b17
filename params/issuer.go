package params

// Per-issuer tunable fields.
const (
	FieldIssuerLagOverride Field = "issuerLagOverride"
)

// IssuerParams is the per-issuer tier; its inputs overlay the warrant tier
// for every warrant of that issuer when the warrant tier is first created.
type IssuerParams struct {
	guards

	strategyID int64
	issuerSid  int64

	IssuerMaxLag    int64 `yaml:"issuer_max_lag"`
	IssuerMaxLagCap int64 `yaml:"issuer_max_lag_cap"`
	SellToNonIssuer bool  `yaml:"sell_to_non_issuer"`

	LastTriggerSeq uint32 `yaml:"-"`
}

// NewIssuerParams returns an empty per-issuer tier.
func NewIssuerParams() *IssuerParams {
	return &IssuerParams{guards: newGuards()}
}

func (p *IssuerParams) ParamsKind() string        { return "issuer" }
func (p *IssuerParams) StrategyID() int64         { return p.strategyID }
func (p *IssuerParams) SetStrategyID(id int64)    { p.strategyID = id }
func (p *IssuerParams) IssuerSid() int64          { return p.issuerSid }
func (p *IssuerParams) SetIssuerSid(sid int64)    { p.issuerSid = sid }

func (p *IssuerParams) UserSetIssuerMaxLag(v int64) bool {
	return p.userSet(FieldIssuerMaxLag, v, func(nv int64) { p.IssuerMaxLag = nv })
}

func (p *IssuerParams) UserSetIssuerMaxLagCap(v int64) bool {
	return p.userSet(FieldIssuerMaxLagCap, v, func(nv int64) { p.IssuerMaxLagCap = nv })
}

func (p *IssuerParams) UserSetSellToNonIssuer(v bool) bool {
	return p.userSet(FieldSellToNonIssuer, boolToInt64(v), func(nv int64) { p.SellToNonIssuer = nv != 0 })
}

// CopyTo overlays the issuer-tier inputs onto a warrant tier. Fields the
// issuer tier leaves unset keep the warrant's own value.
func (p *IssuerParams) CopyTo(w *WrtParams) {
	if p.IssuerMaxLag != 0 {
		w.IssuerMaxLag = p.IssuerMaxLag
	}
	if p.IssuerMaxLagCap != 0 {
		w.IssuerMaxLagCap = p.IssuerMaxLagCap
	}
	if p.SellToNonIssuer {
		w.SellToNonIssuer = true
	}
}

// CopyInputsTo copies the user-writable fields onto another tier instance.
func (p *IssuerParams) CopyInputsTo(o *IssuerParams) {
	o.IssuerMaxLag = p.IssuerMaxLag
	o.IssuerMaxLagCap = p.IssuerMaxLagCap
	o.SellToNonIssuer = p.SellToNonIssuer
}
