package params

// Per-warrant tunable fields.
const (
	FieldMmBidSize                  Field = "mmBidSize"
	FieldMmAskSize                  Field = "mmAskSize"
	FieldBaseOrderSize              Field = "baseOrderSize"
	FieldMaxOrderSize               Field = "maxOrderSize"
	FieldOrderSizeIncrement         Field = "orderSizeIncrement"
	FieldCurrentOrderSize           Field = "currentOrderSize"
	FieldOrderSizeMultiplier        Field = "orderSizeMultiplier"
	FieldOrderSizeRemainder         Field = "orderSizeRemainder"
	FieldRunTicksThreshold          Field = "runTicksThreshold"
	FieldTickSensitivityThreshold   Field = "tickSensitivityThreshold"
	FieldStopLoss                   Field = "stopLoss"
	FieldStopLossTrigger            Field = "stopLossTrigger"
	FieldStopProfit                 Field = "stopProfit"
	FieldAllowedMaxSpread           Field = "allowedMaxSpread"
	FieldTurnoverMakingSize         Field = "turnoverMakingSize"
	FieldTurnoverMakingPeriod       Field = "turnoverMakingPeriod"
	FieldBanPeriodToDownVol         Field = "banPeriodToDownVol"
	FieldBanPeriodToTurnoverMaking  Field = "banPeriodToTurnoverMaking"
	FieldSellingBanPeriod           Field = "sellingBanPeriod"
	FieldHoldingPeriod              Field = "holdingPeriod"
	FieldSpreadObservationPeriod    Field = "spreadObservationPeriod"
	FieldMarketOutlook              Field = "marketOutlook"
	FieldSellOnVolDown              Field = "sellOnVolDown"
	FieldSellOnVolDownBanPeriod     Field = "sellOnVolDownBanPeriod"
	FieldIssuerMaxLag               Field = "issuerMaxLag"
	FieldIssuerMaxLagCap            Field = "issuerMaxLagCap"
	FieldAllowStopLossOnFlashingBid Field = "allowStopLossOnFlashingBid"
	FieldResetStopLossOnVolDown     Field = "resetStopLossOnVolDown"
	FieldDefaultPricingMode         Field = "defaultPricingMode"
	FieldStrategyTriggerType        Field = "strategyTriggerType"
	FieldSellToNonIssuer            Field = "sellToNonIssuer"
	FieldTickBuffer                 Field = "tickBuffer"
	FieldSellAtQuickProfit          Field = "sellAtQuickProfit"
	FieldStopLossTickBuffer         Field = "stopLossTickBuffer"
	FieldManualOrderTicksFromEnter  Field = "manualOrderTicksFromEnterPrice"
	FieldSafeBidLevelBuffer         Field = "safeBidLevelBuffer"
	FieldWideSpreadBuffer           Field = "wideSpreadBuffer"
	FieldAllowAdditionalBuy         Field = "allowAdditionalBuy"
	FieldUseHoldBidBan              Field = "useHoldBidBan"
	FieldAllowStopLossOnWideSpread  Field = "allowStopLossOnWideSpread"
	FieldTradesVolumeThreshold      Field = "tradesVolumeThreshold"
	FieldDoNotSell                  Field = "doNotSell"
	FieldSellAtBreakEvenOnly        Field = "sellAtBreakEvenOnly"
	FieldIgnoreMmSizeOnSell         Field = "ignoreMmSizeOnSell"
)

const (
	defaultOrderSizeMultiplier = 1000
	defaultSafeBidLevelBuffer  = 20
)

// WrtParams is the per-warrant tier: the full tunable surface of one
// warrant's automaton plus its derived outputs and stats.
type WrtParams struct {
	guards

	strategyID int64
	secSid     int64

	// User inputs.
	MmBidSize                  int64 `yaml:"mm_bid_size"`
	MmAskSize                  int64 `yaml:"mm_ask_size"`
	BaseOrderSize              int64 `yaml:"base_order_size"`
	MaxOrderSize               int64 `yaml:"max_order_size"`
	OrderSizeIncrement         int64 `yaml:"order_size_increment"`
	CurrentOrderSize           int64 `yaml:"current_order_size"`
	OrderSizeMultiplier        int64 `yaml:"order_size_multiplier"`
	OrderSizeRemainder         int64 `yaml:"order_size_remainder"`
	RunTicksThreshold          int64 `yaml:"run_ticks_threshold"`
	TickSensitivityThreshold   int64 `yaml:"tick_sensitivity_threshold"`
	StopLoss                   int64 `yaml:"stop_loss"`
	StopLossTrigger            int64 `yaml:"stop_loss_trigger"`
	StopProfit                 int64 `yaml:"stop_profit"`
	AllowedMaxSpread           int   `yaml:"allowed_max_spread"`
	TurnoverMakingSize         int64 `yaml:"turnover_making_size"`
	TurnoverMakingPeriod       int64 `yaml:"turnover_making_period"`
	BanPeriodToDownVol         int64 `yaml:"ban_period_to_down_vol"`
	BanPeriodToTurnoverMaking  int64 `yaml:"ban_period_to_turnover_making"`
	SellingBanPeriod           int64 `yaml:"selling_ban_period"`
	HoldingPeriod              int64 `yaml:"holding_period"`
	SpreadObservationPeriod    int64 `yaml:"spread_observation_period"`
	MarketOutlook              MarketOutlook `yaml:"market_outlook"`
	SellOnVolDown              bool  `yaml:"sell_on_vol_down"`
	SellOnVolDownBanPeriod     int64 `yaml:"sell_on_vol_down_ban_period"`
	IssuerMaxLag               int64 `yaml:"issuer_max_lag"`
	IssuerMaxLagCap            int64 `yaml:"issuer_max_lag_cap"`
	AllowStopLossOnFlashingBid bool  `yaml:"allow_stop_loss_on_flashing_bid"`
	ResetStopLossOnVolDown     bool  `yaml:"reset_stop_loss_on_vol_down"`
	DefaultPricingMode         PricingMode `yaml:"default_pricing_mode"`
	StrategyTriggerType        TriggerType `yaml:"strategy_trigger_type"`
	SellToNonIssuer            bool  `yaml:"sell_to_non_issuer"`
	TickBuffer                 int64 `yaml:"tick_buffer"`
	SellAtQuickProfit          bool  `yaml:"sell_at_quick_profit"`
	StopLossTickBuffer         int64 `yaml:"stop_loss_tick_buffer"`
	ManualOrderTicksFromEnter  int64 `yaml:"manual_order_ticks_from_enter_price"`
	SafeBidLevelBuffer         int64 `yaml:"safe_bid_level_buffer"`
	WideSpreadBuffer           int64 `yaml:"wide_spread_buffer"`
	AllowAdditionalBuy         bool  `yaml:"allow_additional_buy"`
	UseHoldBidBan              bool  `yaml:"use_hold_bid_ban"`
	AllowStopLossOnWideSpread  bool  `yaml:"allow_stop_loss_on_wide_spread"`
	TradesVolumeThreshold      int64 `yaml:"trades_volume_threshold"`
	DoNotSell                  bool  `yaml:"do_not_sell"`
	SellAtBreakEvenOnly        bool  `yaml:"sell_at_break_even_only"`
	IgnoreMmSizeOnSell         bool  `yaml:"ignore_mm_size_on_sell"`

	// Derived from TickBuffer on every write.
	TickBufferInt      int64 `yaml:"-"`
	TickBufferFraction int64 `yaml:"-"`

	// Derived outputs (owned by the signal generators / handler).
	TickSensitivity int64 `yaml:"-"`
	WarrantSpread   int   `yaml:"-"`
	PricingMode     PricingMode `yaml:"-"`
	OrderSize       int64 `yaml:"-"`
	CanSellOnWide   bool  `yaml:"-"`
	Status          StrategyStatus `yaml:"-"`

	// Position outputs.
	EnterMMSpread      int   `yaml:"-"`
	EnterPrice         int64 `yaml:"-"`
	EnterLevel         int   `yaml:"-"`
	EnterQuantity      int64 `yaml:"-"`
	ExitLevel          int   `yaml:"-"`
	ProfitRun          int64 `yaml:"-"`
	EnterMMBidPrice    int64 `yaml:"-"`
	EnterBidLevel      int   `yaml:"-"`
	EnterSpotPrice     int64 `yaml:"-"`
	StopLossAdjustment int64 `yaml:"-"`
	SafeBidPrice       int64 `yaml:"-"`

	// Stats outputs.
	SpreadState     SpreadState `yaml:"-"`
	IssuerLag       int64       `yaml:"-"`
	IssuerSmoothing int64       `yaml:"-"`
	NumSpreadResets int64       `yaml:"-"`
	NumWAvgDownVols int64       `yaml:"-"`
	NumWAvgUpVols   int64       `yaml:"-"`
	NumMPrcDownVols int64       `yaml:"-"`
	NumMPrcUpVols   int64       `yaml:"-"`

	LastTriggerSeq uint32 `yaml:"-"`
}

// NewWrtParams returns a per-warrant tier with neutral defaults.
func NewWrtParams() *WrtParams {
	return &WrtParams{
		guards:              newGuards(),
		OrderSizeMultiplier: defaultOrderSizeMultiplier,
		SafeBidLevelBuffer:  defaultSafeBidLevelBuffer,
		WarrantSpread:       UnsetSpread,
		EnterMMSpread:       UnsetSpread,
	}
}

func (p *WrtParams) ParamsKind() string     { return "wrt" }
func (p *WrtParams) StrategyID() int64      { return p.strategyID }
func (p *WrtParams) SetStrategyID(id int64) { p.strategyID = id }
func (p *WrtParams) SecSid() int64          { return p.secSid }
func (p *WrtParams) SetSecSid(sid int64)    { p.secSid = sid }

// SetTickBuffer keeps the split integer/fraction representation in lockstep.
func (p *WrtParams) SetTickBuffer(v int64) {
	p.TickBuffer = v
	p.TickBufferInt = v / 1000
	p.TickBufferFraction = v % 1000
}

// ResetPositionOutputs returns the entry-scoped fields to neutral after a
// position is fully unwound.
func (p *WrtParams) ResetPositionOutputs() {
	p.EnterMMSpread = UnsetSpread
	p.EnterPrice = 0
	p.EnterLevel = 0
	p.EnterQuantity = 0
	p.ExitLevel = 0
	p.ProfitRun = 0
	p.EnterMMBidPrice = 0
	p.EnterBidLevel = 0
	p.EnterSpotPrice = 0
	p.StopLossAdjustment = 0
	p.SafeBidPrice = 0
	p.StopLoss = 0
	p.StopLossTrigger = 0
	p.CanSellOnWide = false
}

// Guarded write paths. Each validates, assigns, then fires hooks; a rejected
// write leaves the previous value and fires nothing.

func (p *WrtParams) UserSetMmBidSize(v int64) bool {
	return p.userSet(FieldMmBidSize, v, func(nv int64) { p.MmBidSize = nv })
}

func (p *WrtParams) UserSetMmAskSize(v int64) bool {
	return p.userSet(FieldMmAskSize, v, func(nv int64) { p.MmAskSize = nv })
}

func (p *WrtParams) UserSetBaseOrderSize(v int64) bool {
	return p.userSet(FieldBaseOrderSize, v, func(nv int64) { p.BaseOrderSize = nv })
}

func (p *WrtParams) UserSetMaxOrderSize(v int64) bool {
	return p.userSet(FieldMaxOrderSize, v, func(nv int64) { p.MaxOrderSize = nv })
}

func (p *WrtParams) UserSetOrderSizeIncrement(v int64) bool {
	return p.userSet(FieldOrderSizeIncrement, v, func(nv int64) { p.OrderSizeIncrement = nv })
}

func (p *WrtParams) UserSetCurrentOrderSize(v int64) bool {
	return p.userSet(FieldCurrentOrderSize, v, func(nv int64) { p.CurrentOrderSize = nv })
}

func (p *WrtParams) UserSetOrderSizeMultiplier(v int64) bool {
	return p.userSet(FieldOrderSizeMultiplier, v, func(nv int64) { p.OrderSizeMultiplier = nv })
}

func (p *WrtParams) UserSetOrderSizeRemainder(v int64) bool {
	return p.userSet(FieldOrderSizeRemainder, v, func(nv int64) { p.OrderSizeRemainder = nv })
}

func (p *WrtParams) UserSetRunTicksThreshold(v int64) bool {
	return p.userSet(FieldRunTicksThreshold, v, func(nv int64) { p.RunTicksThreshold = nv })
}

func (p *WrtParams) UserSetTickSensitivityThreshold(v int64) bool {
	return p.userSet(FieldTickSensitivityThreshold, v, func(nv int64) { p.TickSensitivityThreshold = nv })
}

func (p *WrtParams) UserSetStopLoss(v int64) bool {
	return p.userSet(FieldStopLoss, v, func(nv int64) { p.StopLoss = nv })
}

func (p *WrtParams) UserSetStopLossTrigger(v int64) bool {
	return p.userSet(FieldStopLossTrigger, v, func(nv int64) { p.StopLossTrigger = nv })
}

func (p *WrtParams) UserSetStopProfit(v int64) bool {
	return p.userSet(FieldStopProfit, v, func(nv int64) { p.StopProfit = nv })
}

func (p *WrtParams) UserSetAllowedMaxSpread(v int) bool {
	return p.userSet(FieldAllowedMaxSpread, int64(v), func(nv int64) { p.AllowedMaxSpread = int(nv) })
}

func (p *WrtParams) UserSetTurnoverMakingSize(v int64) bool {
	return p.userSet(FieldTurnoverMakingSize, v, func(nv int64) { p.TurnoverMakingSize = nv })
}

func (p *WrtParams) UserSetTurnoverMakingPeriod(v int64) bool {
	return p.userSet(FieldTurnoverMakingPeriod, v, func(nv int64) { p.TurnoverMakingPeriod = nv })
}

func (p *WrtParams) UserSetBanPeriodToDownVol(v int64) bool {
	return p.userSet(FieldBanPeriodToDownVol, v, func(nv int64) { p.BanPeriodToDownVol = nv })
}

func (p *WrtParams) UserSetBanPeriodToTurnoverMaking(v int64) bool {
	return p.userSet(FieldBanPeriodToTurnoverMaking, v, func(nv int64) { p.BanPeriodToTurnoverMaking = nv })
}

func (p *WrtParams) UserSetSellingBanPeriod(v int64) bool {
	return p.userSet(FieldSellingBanPeriod, v, func(nv int64) { p.SellingBanPeriod = nv })
}

func (p *WrtParams) UserSetHoldingPeriod(v int64) bool {
	return p.userSet(FieldHoldingPeriod, v, func(nv int64) { p.HoldingPeriod = nv })
}

func (p *WrtParams) UserSetSpreadObservationPeriod(v int64) bool {
	return p.userSet(FieldSpreadObservationPeriod, v, func(nv int64) { p.SpreadObservationPeriod = nv })
}

func (p *WrtParams) UserSetMarketOutlook(v MarketOutlook) bool {
	return p.userSet(FieldMarketOutlook, int64(v), func(nv int64) { p.MarketOutlook = MarketOutlook(nv) })
}

func (p *WrtParams) UserSetSellOnVolDown(v bool) bool {
	return p.userSet(FieldSellOnVolDown, boolToInt64(v), func(nv int64) { p.SellOnVolDown = nv != 0 })
}

func (p *WrtParams) UserSetSellOnVolDownBanPeriod(v int64) bool {
	return p.userSet(FieldSellOnVolDownBanPeriod, v, func(nv int64) { p.SellOnVolDownBanPeriod = nv })
}

func (p *WrtParams) UserSetIssuerMaxLag(v int64) bool {
	return p.userSet(FieldIssuerMaxLag, v, func(nv int64) { p.IssuerMaxLag = nv })
}

func (p *WrtParams) UserSetIssuerMaxLagCap(v int64) bool {
	return p.userSet(FieldIssuerMaxLagCap, v, func(nv int64) { p.IssuerMaxLagCap = nv })
}

func (p *WrtParams) UserSetAllowStopLossOnFlashingBid(v bool) bool {
	return p.userSet(FieldAllowStopLossOnFlashingBid, boolToInt64(v), func(nv int64) { p.AllowStopLossOnFlashingBid = nv != 0 })
}

func (p *WrtParams) UserSetResetStopLossOnVolDown(v bool) bool {
	return p.userSet(FieldResetStopLossOnVolDown, boolToInt64(v), func(nv int64) { p.ResetStopLossOnVolDown = nv != 0 })
}

func (p *WrtParams) UserSetDefaultPricingMode(v PricingMode) bool {
	return p.userSet(FieldDefaultPricingMode, int64(v), func(nv int64) { p.DefaultPricingMode = PricingMode(nv) })
}

func (p *WrtParams) UserSetStrategyTriggerType(v TriggerType) bool {
	return p.userSet(FieldStrategyTriggerType, int64(v), func(nv int64) { p.StrategyTriggerType = TriggerType(nv) })
}

func (p *WrtParams) UserSetSellToNonIssuer(v bool) bool {
	return p.userSet(FieldSellToNonIssuer, boolToInt64(v), func(nv int64) { p.SellToNonIssuer = nv != 0 })
}

func (p *WrtParams) UserSetTickBuffer(v int64) bool {
	return p.userSet(FieldTickBuffer, v, func(nv int64) { p.SetTickBuffer(nv) })
}

func (p *WrtParams) UserSetSellAtQuickProfit(v bool) bool {
	return p.userSet(FieldSellAtQuickProfit, boolToInt64(v), func(nv int64) { p.SellAtQuickProfit = nv != 0 })
}

func (p *WrtParams) UserSetStopLossTickBuffer(v int64) bool {
	return p.userSet(FieldStopLossTickBuffer, v, func(nv int64) { p.StopLossTickBuffer = nv })
}

func (p *WrtParams) UserSetManualOrderTicksFromEnter(v int64) bool {
	return p.userSet(FieldManualOrderTicksFromEnter, v, func(nv int64) { p.ManualOrderTicksFromEnter = nv })
}

func (p *WrtParams) UserSetSafeBidLevelBuffer(v int64) bool {
	return p.userSet(FieldSafeBidLevelBuffer, v, func(nv int64) { p.SafeBidLevelBuffer = nv })
}

func (p *WrtParams) UserSetWideSpreadBuffer(v int64) bool {
	return p.userSet(FieldWideSpreadBuffer, v, func(nv int64) { p.WideSpreadBuffer = nv })
}

func (p *WrtParams) UserSetAllowAdditionalBuy(v bool) bool {
	return p.userSet(FieldAllowAdditionalBuy, boolToInt64(v), func(nv int64) { p.AllowAdditionalBuy = nv != 0 })
}

func (p *WrtParams) UserSetUseHoldBidBan(v bool) bool {
	return p.userSet(FieldUseHoldBidBan, boolToInt64(v), func(nv int64) { p.UseHoldBidBan = nv != 0 })
}

func (p *WrtParams) UserSetAllowStopLossOnWideSpread(v bool) bool {
	return p.userSet(FieldAllowStopLossOnWideSpread, boolToInt64(v), func(nv int64) { p.AllowStopLossOnWideSpread = nv != 0 })
}

func (p *WrtParams) UserSetTradesVolumeThreshold(v int64) bool {
	return p.userSet(FieldTradesVolumeThreshold, v, func(nv int64) { p.TradesVolumeThreshold = nv })
}

func (p *WrtParams) UserSetDoNotSell(v bool) bool {
	return p.userSet(FieldDoNotSell, boolToInt64(v), func(nv int64) { p.DoNotSell = nv != 0 })
}

func (p *WrtParams) UserSetSellAtBreakEvenOnly(v bool) bool {
	return p.userSet(FieldSellAtBreakEvenOnly, boolToInt64(v), func(nv int64) { p.SellAtBreakEvenOnly = nv != 0 })
}

func (p *WrtParams) UserSetIgnoreMmSizeOnSell(v bool) bool {
	return p.userSet(FieldIgnoreMmSizeOnSell, boolToInt64(v), func(nv int64) { p.IgnoreMmSizeOnSell = nv != 0 })
}

// IncNumWAvgDownVols and friends keep the per-mode violation stats.
func (p *WrtParams) IncNumWAvgDownVols() { p.NumWAvgDownVols++ }
func (p *WrtParams) IncNumWAvgUpVols()   { p.NumWAvgUpVols++ }
func (p *WrtParams) IncNumMPrcDownVols() { p.NumMPrcDownVols++ }
func (p *WrtParams) IncNumMPrcUpVols()   { p.NumMPrcUpVols++ }
func (p *WrtParams) IncNumSpreadResets() { p.NumSpreadResets++ }

// CopyInputsTo copies the user-writable fields onto another tier instance,
// leaving outputs untouched.
func (p *WrtParams) CopyInputsTo(o *WrtParams) {
	o.MmBidSize = p.MmBidSize
	o.MmAskSize = p.MmAskSize
	o.BaseOrderSize = p.BaseOrderSize
	o.MaxOrderSize = p.MaxOrderSize
	o.OrderSizeIncrement = p.OrderSizeIncrement
	o.CurrentOrderSize = p.CurrentOrderSize
	o.OrderSizeMultiplier = p.OrderSizeMultiplier
	o.OrderSizeRemainder = p.OrderSizeRemainder
	o.RunTicksThreshold = p.RunTicksThreshold
	o.TickSensitivityThreshold = p.TickSensitivityThreshold
	o.StopProfit = p.StopProfit
	o.AllowedMaxSpread = p.AllowedMaxSpread
	o.TurnoverMakingSize = p.TurnoverMakingSize
	o.TurnoverMakingPeriod = p.TurnoverMakingPeriod
	o.BanPeriodToDownVol = p.BanPeriodToDownVol
	o.BanPeriodToTurnoverMaking = p.BanPeriodToTurnoverMaking
	o.SellingBanPeriod = p.SellingBanPeriod
	o.HoldingPeriod = p.HoldingPeriod
	o.SpreadObservationPeriod = p.SpreadObservationPeriod
	o.MarketOutlook = p.MarketOutlook
	o.SellOnVolDown = p.SellOnVolDown
	o.SellOnVolDownBanPeriod = p.SellOnVolDownBanPeriod
	o.IssuerMaxLag = p.IssuerMaxLag
	o.IssuerMaxLagCap = p.IssuerMaxLagCap
	o.AllowStopLossOnFlashingBid = p.AllowStopLossOnFlashingBid
	o.ResetStopLossOnVolDown = p.ResetStopLossOnVolDown
	o.DefaultPricingMode = p.DefaultPricingMode
	o.StrategyTriggerType = p.StrategyTriggerType
	o.SellToNonIssuer = p.SellToNonIssuer
	o.SetTickBuffer(p.TickBuffer)
	o.SellAtQuickProfit = p.SellAtQuickProfit
	o.StopLossTickBuffer = p.StopLossTickBuffer
	o.ManualOrderTicksFromEnter = p.ManualOrderTicksFromEnter
	o.SafeBidLevelBuffer = p.SafeBidLevelBuffer
	o.WideSpreadBuffer = p.WideSpreadBuffer
	o.AllowAdditionalBuy = p.AllowAdditionalBuy
	o.UseHoldBidBan = p.UseHoldBidBan
	o.AllowStopLossOnWideSpread = p.AllowStopLossOnWideSpread
	o.TradesVolumeThreshold = p.TradesVolumeThreshold
	o.DoNotSell = p.DoNotSell
	o.SellAtBreakEvenOnly = p.SellAtBreakEvenOnly
	o.IgnoreMmSizeOnSell = p.IgnoreMmSizeOnSell
}
