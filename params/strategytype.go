package params

// Strategy-type tier field names.
const (
	FieldExitMode Field = "exitMode"
)

// StrategyTypeParams is the top tier: one per strategy type. It carries the
// strategy-wide exit mode plus the default input sets copied onto every
// lazily created lower tier.
type StrategyTypeParams struct {
	guards

	strategyID int64

	ExitMode ExitMode `yaml:"exit_mode"`

	DefaultWrtParams       *WrtParams
	DefaultUndParams       *UndParams
	DefaultIssuerParams    *IssuerParams
	DefaultIssuerUndParams *IssuerUndParams

	LastTriggerSeq uint32 `yaml:"-"`
}

// NewStrategyTypeParams returns the tier with a strategy-exit default.
func NewStrategyTypeParams() *StrategyTypeParams {
	return &StrategyTypeParams{
		guards:                 newGuards(),
		ExitMode:               ExitModeStrategyExit,
		DefaultWrtParams:       NewWrtParams(),
		DefaultUndParams:       NewUndParams(),
		DefaultIssuerParams:    NewIssuerParams(),
		DefaultIssuerUndParams: NewIssuerUndParams(),
	}
}

func (p *StrategyTypeParams) ParamsKind() string     { return "strategyType" }
func (p *StrategyTypeParams) StrategyID() int64      { return p.strategyID }
func (p *StrategyTypeParams) SetStrategyID(id int64) { p.strategyID = id }

// UserSetExitMode is the guarded write path for the strategy-wide exit mode.
func (p *StrategyTypeParams) UserSetExitMode(v ExitMode) bool {
	return p.userSet(FieldExitMode, int64(v), func(nv int64) { p.ExitMode = ExitMode(nv) })
}
