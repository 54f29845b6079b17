package strategy

import (
	"fmt"

	"github.com/wonvincal/lunar-sub006/info"
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/orders"
	"github.com/wonvincal/lunar-sub006/params"
	"github.com/wonvincal/lunar-sub006/risk"
	"github.com/wonvincal/lunar-sub006/scale"
	"github.com/wonvincal/lunar-sub006/statemachine"
	"github.com/wonvincal/lunar-sub006/trigger"
)

// Velocity trigger windows.
const (
	velocity5msWindowNs  = 5_000_000
	velocity5msCapacity  = 8192
	velocity10msWindowNs = 10_000_000
	velocity10msCapacity = 16384
)

// underlyingContext is the state shared by every warrant on one underlying.
type underlyingContext struct {
	sec *market.Security
	p   *params.UndParams
	gen *UnderlyingSignalGenerator
}

// issuerUndContext is the state shared by one issuer's warrants on one
// underlying.
type issuerUndContext struct {
	p        *params.IssuerUndParams
	deltaGen *risk.DeltaLimitAlertGenerator
}

// warrantContext owns everything built fresh per warrant.
type warrantContext struct {
	sec         *market.Security
	p           *params.WrtParams
	bus         *statemachine.SingleEventBus
	bridge      scale.Bridge
	scheduler   *trigger.TickScheduler
	lagGen      *trigger.IssuerResponseTimeGenerator
	turnoverGen *trigger.TurnoverMakingSignalGenerator
	wrtGen      *WrtSignalGenerator
	handler     *SignalHandler
}

// Context is the per-strategy-type registry. It lazily builds one shared
// context per underlying and per (issuer, underlying), and a fresh context
// per warrant, wiring them together on first reference.
type Context struct {
	stp            *params.StrategyTypeParams
	strategyID     int64
	orderSvc       orders.Service
	sender         info.Sender
	triggers       *trigger.Controller
	comparisonMode bool

	underlyings map[int64]*underlyingContext
	issuers     map[int64]*params.IssuerParams
	issuerUnds  map[int64]*issuerUndContext
	warrants    map[int64]*warrantContext
}

// NewContext builds an empty registry for one strategy type.
func NewContext(strategyID int64, stp *params.StrategyTypeParams, orderSvc orders.Service, sender info.Sender, comparisonMode bool) *Context {
	stp.SetStrategyID(strategyID)
	return &Context{
		stp:            stp,
		strategyID:     strategyID,
		orderSvc:       orderSvc,
		sender:         sender,
		triggers:       trigger.NewController(),
		comparisonMode: comparisonMode,
		underlyings:    make(map[int64]*underlyingContext),
		issuers:        make(map[int64]*params.IssuerParams),
		issuerUnds:     make(map[int64]*issuerUndContext),
		warrants:       make(map[int64]*warrantContext),
	}
}

// Triggers exposes the controller for test wiring.
func (c *Context) Triggers() *trigger.Controller { return c.triggers }

// StrategyTypeParams returns the top parameter tier.
func (c *Context) StrategyTypeParams() *params.StrategyTypeParams { return c.stp }

func (c *Context) warrant(secSid int64) *warrantContext { return c.warrants[secSid] }

// WrtParams exposes one warrant's parameter tier for persistence and
// restoration; nil when the warrant is unknown.
func (c *Context) WrtParams(secSid int64) *params.WrtParams {
	if wc, ok := c.warrants[secSid]; ok {
		return wc.p
	}
	return nil
}

// WarrantSids lists the initialized warrants.
func (c *Context) WarrantSids() []int64 {
	sids := make([]int64, 0, len(c.warrants))
	for sid := range c.warrants {
		sids = append(sids, sid)
	}
	return sids
}

func (c *Context) underlying(undSid int64) *underlyingContext { return c.underlyings[undSid] }

// IssuerParams exposes one issuer's parameter tier; nil when no warrant of
// that issuer has been initialized.
func (c *Context) IssuerParams(issuerSid int64) *params.IssuerParams { return c.issuers[issuerSid] }

func (c *Context) issuerFor(issuerSid int64) *params.IssuerParams {
	if ip, ok := c.issuers[issuerSid]; ok {
		return ip
	}
	ip := params.NewIssuerParams()
	c.stp.DefaultIssuerParams.CopyInputsTo(ip)
	ip.SetStrategyID(c.strategyID)
	ip.SetIssuerSid(issuerSid)
	c.issuers[issuerSid] = ip
	logs.Infof("[Context] Issuer context created: issuerSid %d", issuerSid)
	return ip
}

func (c *Context) issuerUnd(issuerSid, undSid int64) *issuerUndContext {
	return c.issuerUnds[params.ConvertToIssuerUndSid(issuerSid, undSid)]
}

func (c *Context) underlyingFor(und *market.Security) *underlyingContext {
	if uc, ok := c.underlyings[und.Sid()]; ok {
		return uc
	}
	p := params.NewUndParams()
	c.stp.DefaultUndParams.CopyInputsTo(p)
	p.SetStrategyID(c.strategyID)
	p.SetUndSid(und.Sid())
	uc := &underlyingContext{
		sec: und,
		p:   p,
		gen: NewUnderlyingSignalGenerator(und, p),
	}
	c.underlyings[und.Sid()] = uc
	c.triggers.RegisterGenerator(und.Sid(), trigger.NewVelocityTriggerGenerator(
		params.TriggerTypeVelocity5ms, und, p, velocity5msWindowNs, velocity5msCapacity))
	c.triggers.RegisterGenerator(und.Sid(), trigger.NewVelocityTriggerGenerator(
		params.TriggerTypeVelocity10ms, und, p, velocity10msWindowNs, velocity10msCapacity))
	logs.Infof("[Context] Underlying context created: secCode %s", und.Code())
	return uc
}

func (c *Context) issuerUndFor(issuerSid int64, uc *underlyingContext) *issuerUndContext {
	key := params.ConvertToIssuerUndSid(issuerSid, uc.sec.Sid())
	if ic, ok := c.issuerUnds[key]; ok {
		return ic
	}
	p := params.NewIssuerUndParams()
	c.stp.DefaultIssuerUndParams.CopyInputsTo(p)
	p.SetStrategyID(c.strategyID)
	p.SetSids(issuerSid, uc.sec.Sid())
	ic := &issuerUndContext{
		p:        p,
		deltaGen: risk.NewDeltaLimitAlertGenerator(uc.sec.Sid(), issuerSid, uc.gen, p, c.sender),
	}
	c.issuerUnds[key] = ic
	logs.Infof("[Context] Issuer-underlying context created: issuerSid %d, undCode %s", issuerSid, uc.sec.Code())
	return ic
}

// InitializeContextForSecurity builds the full decision stack for one
// warrant, reusing the shared underlying and issuer-underlying contexts.
// Calling it again for an initialized warrant is a no-op.
func (c *Context) InitializeContextForSecurity(sec *market.Security) error {
	if sec.SecurityType() != market.SecurityTypeWarrant {
		return fmt.Errorf("strategy: %s is not a warrant", sec.Code())
	}
	if sec.Underlying() == nil {
		return fmt.Errorf("strategy: warrant %s has no underlying", sec.Code())
	}
	if _, ok := c.warrants[sec.Sid()]; ok {
		return nil
	}

	uc := c.underlyingFor(sec.Underlying())
	ic := c.issuerUndFor(sec.IssuerSid(), uc)

	p := params.NewWrtParams()
	c.stp.DefaultWrtParams.CopyInputsTo(p)
	// The issuer tier overlays the warrant defaults for its own fields.
	c.issuerFor(sec.IssuerSid()).CopyTo(p)
	p.SetStrategyID(c.strategyID)
	p.SetSecSid(sec.Sid())

	var bridge scale.Bridge
	if sec.Underlying().SecurityType() == market.SecurityTypeIndex {
		bridge = scale.NewEquityBridge(sec.ConvRatio())
	} else {
		bridge = scale.NewGenericBridge(sec.ConvRatio())
	}

	wc := &warrantContext{
		sec:       sec,
		p:         p,
		bus:       statemachine.NewSingleEventBus(),
		bridge:    bridge,
		scheduler: trigger.NewTickScheduler(),
	}
	wc.lagGen = trigger.NewIssuerResponseTimeGenerator(sec, wc.scheduler)
	wc.wrtGen = NewWrtSignalGenerator(sec, uc.gen, p, bridge, sideOpsFor(sec), wc.bus, c.sender, wc.lagGen)
	wc.handler = NewSignalHandler(sec, p, uc.p, ic.p, bridge, wc.wrtGen, uc.gen, c.orderSvc, c.sender, c.triggers, wc.bus, c.comparisonMode)
	wc.turnoverGen = trigger.NewTurnoverMakingSignalGenerator(sec, p)
	wc.turnoverGen.SetHandler(wc.handler)
	wc.lagGen.SetHandler(wc.handler)
	ic.deltaGen.RegisterHandler(wc.handler)

	c.warrants[sec.Sid()] = wc
	uc.p.IncNumTotalWarrants()
	logs.Infof("[Context] Warrant context created: secCode %s, undCode %s, side %s",
		sec.Code(), sec.Underlying().Code(), sec.Side())
	return nil
}

func sideOpsFor(sec *market.Security) sideOps {
	if sec.Side() == market.SidePut {
		return putOps{}
	}
	return callOps{}
}

// AdvanceClock drives every warrant's tick scheduler to the given timestamp.
func (c *Context) AdvanceClock(nanoOfDay int64) {
	for _, wc := range c.warrants {
		wc.scheduler.Advance(nanoOfDay)
	}
}
