package strategy

import (
	"fmt"

	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
)

const (
	maxOrderSizeCeiling    = 1_000_000
	maxOrderSizeMultiplier = 4000
)

// Strategy is the outward-facing facade over one strategy type: it owns the
// context registry, installs the per-field validators and post-update hooks,
// and exposes the lifecycle and user-update surface.
type Strategy struct {
	name string
	ctx  *Context
}

// NewStrategy wraps a context registry.
func NewStrategy(name string, ctx *Context) *Strategy {
	return &Strategy{name: name, ctx: ctx}
}

// Name returns the strategy-type label.
func (s *Strategy) Name() string { return s.name }

// Context returns the underlying registry.
func (s *Strategy) Context() *Context { return s.ctx }

// AddWarrant initializes the decision stack for one warrant and installs its
// parameter guards.
func (s *Strategy) AddWarrant(sec *market.Security) error {
	if err := s.ctx.InitializeContextForSecurity(sec); err != nil {
		return err
	}
	wc := s.ctx.warrant(sec.Sid())
	s.installWrtGuards(wc)
	s.installSharedGuards(wc)
	return nil
}

// installWrtGuards wires the per-warrant validators and hooks.
func (s *Strategy) installWrtGuards(wc *warrantContext) {
	p := wc.p
	sec := wc.sec
	isPut := sec.Side() == market.SidePut

	p.SetValidator(params.FieldBaseOrderSize, func(v int64) bool {
		return v >= 0 && (p.MaxOrderSize == 0 || v <= p.MaxOrderSize)
	})
	p.SetValidator(params.FieldMaxOrderSize, func(v int64) bool {
		return v >= 0 && v <= maxOrderSizeCeiling
	})
	p.SetValidator(params.FieldOrderSizeIncrement, func(v int64) bool { return v >= 0 })
	p.SetValidator(params.FieldCurrentOrderSize, func(v int64) bool { return v >= 0 })
	p.SetValidator(params.FieldOrderSizeMultiplier, func(v int64) bool {
		return v >= 0 && v <= maxOrderSizeMultiplier
	})
	p.SetValidator(params.FieldRunTicksThreshold, func(v int64) bool { return v >= 0 })
	p.SetValidator(params.FieldTickBuffer, func(v int64) bool {
		return v >= 0 && v >= p.StopLossTickBuffer
	})
	p.SetValidator(params.FieldStopLossTickBuffer, func(v int64) bool {
		return v >= 0 && v <= p.TickBuffer
	})
	p.SetValidator(params.FieldWideSpreadBuffer, func(v int64) bool { return v >= 0 })
	p.SetValidator(params.FieldTradesVolumeThreshold, func(v int64) bool { return v >= 0 })
	p.SetValidator(params.FieldStopLoss, func(v int64) bool {
		spot := wc.wrtGen.SpotForActiveMode()
		if v == 0 || spot == 0 {
			return true
		}
		if isPut {
			return v >= spot
		}
		return v <= spot
	})
	p.SetValidator(params.FieldStopLossTrigger, func(v int64) bool {
		spot := wc.wrtGen.SpotForActiveMode()
		if v == 0 || spot == 0 {
			return true
		}
		if isPut {
			return v < spot
		}
		return v > spot
	})

	logUpdate := func(f params.Field, value func() int64) params.PostUpdateHook {
		return func() {
			logs.Infof("User updated %s: secCode %s, value %d, trigger seqNum %d",
				f, sec.Code(), value(), p.LastTriggerSeq)
		}
	}
	p.AddPostUpdateHook(params.FieldBaseOrderSize, logUpdate(params.FieldBaseOrderSize, func() int64 { return p.BaseOrderSize }))
	p.AddPostUpdateHook(params.FieldMaxOrderSize, logUpdate(params.FieldMaxOrderSize, func() int64 { return p.MaxOrderSize }))
	p.AddPostUpdateHook(params.FieldOrderSizeIncrement, logUpdate(params.FieldOrderSizeIncrement, func() int64 { return p.OrderSizeIncrement }))
	p.AddPostUpdateHook(params.FieldCurrentOrderSize, logUpdate(params.FieldCurrentOrderSize, func() int64 { return p.CurrentOrderSize }))
	p.AddPostUpdateHook(params.FieldOrderSizeMultiplier, logUpdate(params.FieldOrderSizeMultiplier, func() int64 { return p.OrderSizeMultiplier }))
	p.AddPostUpdateHook(params.FieldRunTicksThreshold, logUpdate(params.FieldRunTicksThreshold, func() int64 { return p.RunTicksThreshold }))
	p.AddPostUpdateHook(params.FieldStopLoss, logUpdate(params.FieldStopLoss, func() int64 { return p.StopLoss }))
	p.AddPostUpdateHook(params.FieldStopLossTrigger, logUpdate(params.FieldStopLossTrigger, func() int64 { return p.StopLossTrigger }))
	p.AddPostUpdateHook(params.FieldTickBuffer, logUpdate(params.FieldTickBuffer, func() int64 { return p.TickBuffer }))
	p.AddPostUpdateHook(params.FieldStopLossTickBuffer, logUpdate(params.FieldStopLossTickBuffer, func() int64 { return p.StopLossTickBuffer }))
	p.AddPostUpdateHook(params.FieldIssuerMaxLag, logUpdate(params.FieldIssuerMaxLag, func() int64 { return p.IssuerMaxLag }))

	// Size-affecting writes recompute the live adaptive size.
	resize := func() {
		if p.CurrentOrderSize > p.MaxOrderSize && p.MaxOrderSize > 0 {
			p.CurrentOrderSize = p.MaxOrderSize
		}
		if p.CurrentOrderSize == 0 {
			p.CurrentOrderSize = p.BaseOrderSize
		}
	}
	p.AddPostUpdateHook(params.FieldBaseOrderSize, resize)
	p.AddPostUpdateHook(params.FieldMaxOrderSize, resize)

	// An externally written stop-loss takes effect immediately.
	p.AddPostUpdateHook(params.FieldStopLoss, func() {
		wc.handler.stopLossSpot = p.StopLoss
	})
	// A lag override feeds straight into the predictors.
	p.AddPostUpdateHook(params.FieldIssuerMaxLag, func() {
		wc.wrtGen.wa.pricer.SetIssuerMaxLag(p.IssuerMaxLag)
		wc.wrtGen.mp.pricer.SetIssuerMaxLag(p.IssuerMaxLag)
	})
	// A trigger-type change resubscribes when the strategy is on.
	p.AddPostUpdateHook(params.FieldStrategyTriggerType, func() {
		if wc.handler.IsOn() {
			if err := s.ctx.triggers.Subscribe(wc.handler, p.StrategyTriggerType); err != nil {
				logs.Errorf("[Strategy] Trigger resubscription failed: secCode %s: %v", sec.Code(), err)
			}
		}
	})
}

// installSharedGuards wires the validators on the shared tiers; installing
// twice is harmless since SetValidator replaces.
func (s *Strategy) installSharedGuards(wc *warrantContext) {
	uc := s.ctx.underlying(wc.sec.Underlying().Sid())
	uc.p.SetValidator(params.FieldSizeThreshold, func(v int64) bool { return v >= 0 })
	uc.p.SetValidator(params.FieldVelocityThreshold, func(v int64) bool { return v >= 0 })

	ic := s.ctx.issuerUnd(wc.sec.IssuerSid(), wc.sec.Underlying().Sid())
	ic.p.SetValidator(params.FieldUndTradeVolThreshold, func(v int64) bool { return v >= 0 })
	ic.p.SetValidator(params.FieldMaxUndDeltaShares, func(v int64) bool { return v >= 0 })
}

// Start logs the initial parameter snapshot of every warrant and starts the
// generators: underlying first, then warrant. Automatons stay off until
// switched on.
func (s *Strategy) Start() {
	for _, wc := range s.ctx.warrants {
		s.logInitialParams(wc)
	}
	for _, uc := range s.ctx.underlyings {
		uc.gen.Start()
	}
	for _, wc := range s.ctx.warrants {
		wc.wrtGen.Start()
	}
	logs.Infof("[Strategy] Started: name %s, warrants %d, underlyings %d",
		s.name, len(s.ctx.warrants), len(s.ctx.underlyings))
}

func (s *Strategy) logInitialParams(wc *warrantContext) {
	p := wc.p
	code := wc.sec.Code()
	initial := func(f params.Field, v int64) {
		logs.Infof("Initial %s: secCode %s, value %d", f, code, v)
	}
	initial(params.FieldMmBidSize, p.MmBidSize)
	initial(params.FieldMmAskSize, p.MmAskSize)
	initial(params.FieldBaseOrderSize, p.BaseOrderSize)
	initial(params.FieldMaxOrderSize, p.MaxOrderSize)
	initial(params.FieldOrderSizeIncrement, p.OrderSizeIncrement)
	initial(params.FieldCurrentOrderSize, p.CurrentOrderSize)
	initial(params.FieldOrderSizeMultiplier, p.OrderSizeMultiplier)
	initial(params.FieldRunTicksThreshold, p.RunTicksThreshold)
	initial(params.FieldTickSensitivityThreshold, p.TickSensitivityThreshold)
	initial(params.FieldStopProfit, p.StopProfit)
	initial(params.FieldAllowedMaxSpread, int64(p.AllowedMaxSpread))
	initial(params.FieldTurnoverMakingSize, p.TurnoverMakingSize)
	initial(params.FieldTurnoverMakingPeriod, p.TurnoverMakingPeriod)
	initial(params.FieldBanPeriodToDownVol, p.BanPeriodToDownVol)
	initial(params.FieldBanPeriodToTurnoverMaking, p.BanPeriodToTurnoverMaking)
	initial(params.FieldSellingBanPeriod, p.SellingBanPeriod)
	initial(params.FieldHoldingPeriod, p.HoldingPeriod)
	initial(params.FieldSpreadObservationPeriod, p.SpreadObservationPeriod)
	initial(params.FieldMarketOutlook, int64(p.MarketOutlook))
	initial(params.FieldSellOnVolDown, boolValue(p.SellOnVolDown))
	initial(params.FieldSellOnVolDownBanPeriod, p.SellOnVolDownBanPeriod)
	initial(params.FieldIssuerMaxLag, p.IssuerMaxLag)
	initial(params.FieldIssuerMaxLagCap, p.IssuerMaxLagCap)
	initial(params.FieldAllowStopLossOnFlashingBid, boolValue(p.AllowStopLossOnFlashingBid))
	initial(params.FieldResetStopLossOnVolDown, boolValue(p.ResetStopLossOnVolDown))
	initial(params.FieldDefaultPricingMode, int64(p.DefaultPricingMode))
	initial(params.FieldStrategyTriggerType, int64(p.StrategyTriggerType))
	initial(params.FieldSellToNonIssuer, boolValue(p.SellToNonIssuer))
	initial(params.FieldTickBuffer, p.TickBuffer)
	initial(params.FieldSellAtQuickProfit, boolValue(p.SellAtQuickProfit))
	initial(params.FieldStopLossTickBuffer, p.StopLossTickBuffer)
	initial(params.FieldManualOrderTicksFromEnter, p.ManualOrderTicksFromEnter)
	initial(params.FieldSafeBidLevelBuffer, p.SafeBidLevelBuffer)
	initial(params.FieldWideSpreadBuffer, p.WideSpreadBuffer)
	initial(params.FieldAllowAdditionalBuy, boolValue(p.AllowAdditionalBuy))
	initial(params.FieldUseHoldBidBan, boolValue(p.UseHoldBidBan))
	initial(params.FieldAllowStopLossOnWideSpread, boolValue(p.AllowStopLossOnWideSpread))
	initial(params.FieldTradesVolumeThreshold, p.TradesVolumeThreshold)
	initial(params.FieldDoNotSell, boolValue(p.DoNotSell))
	initial(params.FieldSellAtBreakEvenOnly, boolValue(p.SellAtBreakEvenOnly))
	initial(params.FieldIgnoreMmSizeOnSell, boolValue(p.IgnoreMmSizeOnSell))
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (s *Strategy) handlerFor(secSid int64) (*SignalHandler, error) {
	wc := s.ctx.warrant(secSid)
	if wc == nil {
		return nil, fmt.Errorf("strategy %s: unknown warrant sid %d", s.name, secSid)
	}
	return wc.handler, nil
}

// SwitchOn activates one warrant's automaton.
func (s *Strategy) SwitchOn(nanoOfDay, secSid int64) error {
	h, err := s.handlerFor(secSid)
	if err != nil {
		return err
	}
	return h.SwitchOn(nanoOfDay)
}

// SwitchOff deactivates one warrant's automaton under the given exit mode.
func (s *Strategy) SwitchOff(nanoOfDay, secSid int64, mode params.ExitMode) error {
	h, err := s.handlerFor(secSid)
	if err != nil {
		return err
	}
	return h.SwitchOff(nanoOfDay, mode)
}

// SwitchOffAll requests a switch-off of every warrant.
func (s *Strategy) SwitchOffAll(nanoOfDay int64, mode params.ExitMode) {
	for _, wc := range s.ctx.warrants {
		if err := wc.handler.SwitchOff(nanoOfDay, mode); err != nil {
			logs.Errorf("[Strategy] Switch-off failed: secCode %s: %v", wc.sec.Code(), err)
		}
	}
}

// PendingSwitchOn defers a switch-on for one warrant.
func (s *Strategy) PendingSwitchOn(secSid int64) error {
	h, err := s.handlerFor(secSid)
	if err != nil {
		return err
	}
	h.PendingSwitchOn()
	return nil
}

// CancelSwitchOn abandons a deferred switch-on.
func (s *Strategy) CancelSwitchOn(secSid int64) error {
	h, err := s.handlerFor(secSid)
	if err != nil {
		return err
	}
	h.CancelSwitchOn()
	return nil
}

// ProceedSwitchOn executes a deferred switch-on.
func (s *Strategy) ProceedSwitchOn(nanoOfDay, secSid int64) error {
	h, err := s.handlerFor(secSid)
	if err != nil {
		return err
	}
	return h.ProceedSwitchOn(nanoOfDay)
}

// CaptureProfit requests an immediate profit-taking sell on one warrant.
func (s *Strategy) CaptureProfit(nanoOfDay, secSid int64) error {
	h, err := s.handlerFor(secSid)
	if err != nil {
		return err
	}
	return h.CaptureProfit(nanoOfDay)
}

// PlaceSellOrder requests a manual sell on one warrant.
func (s *Strategy) PlaceSellOrder(nanoOfDay, secSid int64) error {
	h, err := s.handlerFor(secSid)
	if err != nil {
		return err
	}
	return h.PlaceSellOrder(nanoOfDay)
}

// IsOn reports whether the warrant's automaton is active.
func (s *Strategy) IsOn(secSid int64) bool {
	if wc := s.ctx.warrant(secSid); wc != nil {
		return wc.handler.IsOn()
	}
	return false
}

// Status returns the warrant's lifecycle status.
func (s *Strategy) Status(secSid int64) params.StrategyStatus {
	if wc := s.ctx.warrant(secSid); wc != nil {
		return wc.p.Status
	}
	return params.StatusOff
}

// Reset returns every warrant's transient decision state to neutral.
func (s *Strategy) Reset(nanoOfDay int64) {
	for _, wc := range s.ctx.warrants {
		wc.handler.Reset(nanoOfDay)
		wc.turnoverGen.Reset()
	}
	for _, uc := range s.ctx.underlyings {
		uc.gen.Reset()
	}
	for _, ic := range s.ctx.issuerUnds {
		ic.deltaGen.Reset()
	}
	logs.Infof("[Strategy] Reset: name %s", s.name)
}

// UpdateWrtParam is the user-update entry for the per-warrant tier. The write
// goes through the field's guarded path; a rejected write returns an error
// and leaves the previous value.
func (s *Strategy) UpdateWrtParam(secSid int64, field params.Field, value int64, triggerSeq uint32) error {
	wc := s.ctx.warrant(secSid)
	if wc == nil {
		return fmt.Errorf("strategy %s: unknown warrant sid %d", s.name, secSid)
	}
	p := wc.p
	p.LastTriggerSeq = triggerSeq
	ok := false
	switch field {
	case params.FieldMmBidSize:
		ok = p.UserSetMmBidSize(value)
	case params.FieldMmAskSize:
		ok = p.UserSetMmAskSize(value)
	case params.FieldBaseOrderSize:
		ok = p.UserSetBaseOrderSize(value)
	case params.FieldMaxOrderSize:
		ok = p.UserSetMaxOrderSize(value)
	case params.FieldOrderSizeIncrement:
		ok = p.UserSetOrderSizeIncrement(value)
	case params.FieldCurrentOrderSize:
		ok = p.UserSetCurrentOrderSize(value)
	case params.FieldOrderSizeMultiplier:
		ok = p.UserSetOrderSizeMultiplier(value)
	case params.FieldRunTicksThreshold:
		ok = p.UserSetRunTicksThreshold(value)
	case params.FieldTickSensitivityThreshold:
		ok = p.UserSetTickSensitivityThreshold(value)
	case params.FieldStopLoss:
		ok = p.UserSetStopLoss(value)
	case params.FieldStopLossTrigger:
		ok = p.UserSetStopLossTrigger(value)
	case params.FieldStopProfit:
		ok = p.UserSetStopProfit(value)
	case params.FieldAllowedMaxSpread:
		ok = p.UserSetAllowedMaxSpread(int(value))
	case params.FieldTurnoverMakingSize:
		ok = p.UserSetTurnoverMakingSize(value)
	case params.FieldTurnoverMakingPeriod:
		ok = p.UserSetTurnoverMakingPeriod(value)
	case params.FieldBanPeriodToDownVol:
		ok = p.UserSetBanPeriodToDownVol(value)
	case params.FieldBanPeriodToTurnoverMaking:
		ok = p.UserSetBanPeriodToTurnoverMaking(value)
	case params.FieldSellingBanPeriod:
		ok = p.UserSetSellingBanPeriod(value)
	case params.FieldHoldingPeriod:
		ok = p.UserSetHoldingPeriod(value)
	case params.FieldSpreadObservationPeriod:
		ok = p.UserSetSpreadObservationPeriod(value)
	case params.FieldMarketOutlook:
		ok = p.UserSetMarketOutlook(params.MarketOutlook(value))
	case params.FieldSellOnVolDown:
		ok = p.UserSetSellOnVolDown(value != 0)
	case params.FieldSellOnVolDownBanPeriod:
		ok = p.UserSetSellOnVolDownBanPeriod(value)
	case params.FieldIssuerMaxLag:
		ok = p.UserSetIssuerMaxLag(value)
	case params.FieldIssuerMaxLagCap:
		ok = p.UserSetIssuerMaxLagCap(value)
	case params.FieldAllowStopLossOnFlashingBid:
		ok = p.UserSetAllowStopLossOnFlashingBid(value != 0)
	case params.FieldResetStopLossOnVolDown:
		ok = p.UserSetResetStopLossOnVolDown(value != 0)
	case params.FieldDefaultPricingMode:
		ok = p.UserSetDefaultPricingMode(params.PricingMode(value))
	case params.FieldStrategyTriggerType:
		ok = p.UserSetStrategyTriggerType(params.TriggerType(value))
	case params.FieldSellToNonIssuer:
		ok = p.UserSetSellToNonIssuer(value != 0)
	case params.FieldTickBuffer:
		ok = p.UserSetTickBuffer(value)
	case params.FieldSellAtQuickProfit:
		ok = p.UserSetSellAtQuickProfit(value != 0)
	case params.FieldStopLossTickBuffer:
		ok = p.UserSetStopLossTickBuffer(value)
	case params.FieldManualOrderTicksFromEnter:
		ok = p.UserSetManualOrderTicksFromEnter(value)
	case params.FieldSafeBidLevelBuffer:
		ok = p.UserSetSafeBidLevelBuffer(value)
	case params.FieldWideSpreadBuffer:
		ok = p.UserSetWideSpreadBuffer(value)
	case params.FieldAllowAdditionalBuy:
		ok = p.UserSetAllowAdditionalBuy(value != 0)
	case params.FieldUseHoldBidBan:
		ok = p.UserSetUseHoldBidBan(value != 0)
	case params.FieldAllowStopLossOnWideSpread:
		ok = p.UserSetAllowStopLossOnWideSpread(value != 0)
	case params.FieldTradesVolumeThreshold:
		ok = p.UserSetTradesVolumeThreshold(value)
	case params.FieldDoNotSell:
		ok = p.UserSetDoNotSell(value != 0)
	case params.FieldSellAtBreakEvenOnly:
		ok = p.UserSetSellAtBreakEvenOnly(value != 0)
	case params.FieldIgnoreMmSizeOnSell:
		ok = p.UserSetIgnoreMmSizeOnSell(value != 0)
	default:
		return fmt.Errorf("strategy %s: unknown warrant field %s", s.name, field)
	}
	if !ok {
		return fmt.Errorf("strategy %s: rejected value %d for %s on %s", s.name, value, field, wc.sec.Code())
	}
	return nil
}

// UpdateUndParam is the user-update entry for the per-underlying tier.
func (s *Strategy) UpdateUndParam(undSid int64, field params.Field, value int64, triggerSeq uint32) error {
	uc := s.ctx.underlying(undSid)
	if uc == nil {
		return fmt.Errorf("strategy %s: unknown underlying sid %d", s.name, undSid)
	}
	uc.p.LastTriggerSeq = triggerSeq
	ok := false
	switch field {
	case params.FieldSizeThreshold:
		ok = uc.p.UserSetSizeThreshold(value)
	case params.FieldVelocityThreshold:
		ok = uc.p.UserSetVelocityThreshold(value)
	default:
		return fmt.Errorf("strategy %s: unknown underlying field %s", s.name, field)
	}
	if !ok {
		return fmt.Errorf("strategy %s: rejected value %d for %s on underlying %d", s.name, value, field, undSid)
	}
	logs.Infof("User updated %s: secCode %s, value %d, trigger seqNum %d",
		field, uc.sec.Code(), value, triggerSeq)
	return nil
}

// UpdateIssuerParam is the user-update entry for the per-issuer tier. An
// accepted write also propagates to the live warrants of that issuer through
// their own guarded paths, so per-warrant hooks still fire.
func (s *Strategy) UpdateIssuerParam(issuerSid int64, field params.Field, value int64, triggerSeq uint32) error {
	ip := s.ctx.IssuerParams(issuerSid)
	if ip == nil {
		return fmt.Errorf("strategy %s: unknown issuer sid %d", s.name, issuerSid)
	}
	ip.LastTriggerSeq = triggerSeq
	ok := false
	switch field {
	case params.FieldIssuerMaxLag:
		ok = ip.UserSetIssuerMaxLag(value)
	case params.FieldIssuerMaxLagCap:
		ok = ip.UserSetIssuerMaxLagCap(value)
	case params.FieldSellToNonIssuer:
		ok = ip.UserSetSellToNonIssuer(value != 0)
	default:
		return fmt.Errorf("strategy %s: unknown issuer field %s", s.name, field)
	}
	if !ok {
		return fmt.Errorf("strategy %s: rejected value %d for %s on issuer %d", s.name, value, field, issuerSid)
	}
	for _, wc := range s.ctx.warrants {
		if wc.sec.IssuerSid() != issuerSid {
			continue
		}
		wc.p.LastTriggerSeq = triggerSeq
		switch field {
		case params.FieldIssuerMaxLag:
			wc.p.UserSetIssuerMaxLag(value)
		case params.FieldIssuerMaxLagCap:
			wc.p.UserSetIssuerMaxLagCap(value)
		case params.FieldSellToNonIssuer:
			wc.p.UserSetSellToNonIssuer(value != 0)
		}
	}
	logs.Infof("User updated %s: issuerSid %d, value %d, trigger seqNum %d",
		field, issuerSid, value, triggerSeq)
	return nil
}

// UpdateIssuerUndParam is the user-update entry for the issuer-underlying
// tier.
func (s *Strategy) UpdateIssuerUndParam(issuerSid, undSid int64, field params.Field, value int64, triggerSeq uint32) error {
	ic := s.ctx.issuerUnd(issuerSid, undSid)
	if ic == nil {
		return fmt.Errorf("strategy %s: unknown issuer-underlying pair (%d, %d)", s.name, issuerSid, undSid)
	}
	ic.p.LastTriggerSeq = triggerSeq
	ok := false
	switch field {
	case params.FieldUndTradeVolThreshold:
		ok = ic.p.UserSetUndTradeVolThreshold(value)
	case params.FieldMaxUndDeltaShares:
		ok = ic.p.UserSetMaxUndDeltaShares(value)
	default:
		return fmt.Errorf("strategy %s: unknown issuer-underlying field %s", s.name, field)
	}
	if !ok {
		return fmt.Errorf("strategy %s: rejected value %d for %s", s.name, value, field)
	}
	logs.Infof("User updated %s: issuerSid %d, undSid %d, value %d, trigger seqNum %d",
		field, issuerSid, undSid, value, triggerSeq)
	return nil
}

// UpdateExitMode is the user-update entry for the strategy-wide exit mode.
func (s *Strategy) UpdateExitMode(mode params.ExitMode, triggerSeq uint32) error {
	stp := s.ctx.stp
	stp.LastTriggerSeq = triggerSeq
	if !stp.UserSetExitMode(mode) {
		return fmt.Errorf("strategy %s: rejected exit mode %s", s.name, mode)
	}
	logs.Infof("User updated %s: strategy %s, value %d, trigger seqNum %d",
		params.FieldExitMode, s.name, int64(mode), triggerSeq)
	return nil
}
