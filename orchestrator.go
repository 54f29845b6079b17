// orchestrator.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonvincal/lunar-sub006/config"
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/monitor"
	"github.com/wonvincal/lunar-sub006/orders"
	"github.com/wonvincal/lunar-sub006/profit"
	"github.com/wonvincal/lunar-sub006/state"
	"github.com/wonvincal/lunar-sub006/strategy"
	"github.com/wonvincal/lunar-sub006/utils"
)

// Orchestrator wires the configuration into a running decision core: the
// instrument universe, the strategy facade, the order service with fill
// accounting, the state store and the metrics exporter.
type Orchestrator struct {
	cfg        *config.Config
	stateMgr   *state.Manager
	sender     *monitor.Sender
	metricsSrv *http.Server
	sim        *orders.Simulated
	orderSvc   *profit.TrackingService
	strat      *strategy.Strategy

	underlyings map[string]*market.Security
	warrants    map[int64]*market.Security
	monitorAddr string
}

func NewOrchestrator(cfg *config.Config, envCfg *config.EnvConfig, stateFilePath string) (*Orchestrator, error) {
	stateMgr, err := state.NewManager(stateFilePath, cfg.StrategyID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state manager: %w", err)
	}
	logs.Infof("State manager initialized successfully, state will be persisted to: %s", stateFilePath)

	sender := monitor.NewSender(stateMgr)
	sim := orders.NewSimulated()
	orderSvc := profit.NewTrackingService(sim, stateMgr)

	stp, err := cfg.BuildStrategyTypeParams()
	if err != nil {
		return nil, err
	}

	comparisonMode := cfg.ComparisonMode || envCfg.ComparisonMode
	if comparisonMode {
		logs.Warnf("<<<<<<<<<< WARNING: Running in comparison mode, risk gates disabled >>>>>>>>>>")
	}
	if cfg.UseSimulation {
		logs.Warnf("<<<<<<<<<< WARNING: Running in simulation mode >>>>>>>>>>")
	}

	ctx := strategy.NewContext(cfg.StrategyID, stp, orderSvc, sender, comparisonMode)
	strat := strategy.NewStrategy(cfg.StrategyName, ctx)

	underlyings, warrants, err := cfg.BuildSecurities()
	if err != nil {
		return nil, err
	}

	for _, sec := range warrants {
		if err := strat.AddWarrant(sec); err != nil {
			return nil, fmt.Errorf("failed to add warrant %s: %w", sec.Code(), err)
		}
		acct := orderSvc.Track(sec)
		if ws, ok := stateMgr.WarrantSnapshot(sec.Sid()); ok {
			acct.Restore(ws.RealizedPNL, ws.NumTrades)
			stateMgr.RestoreWrtParams(ctx.WrtParams(sec.Sid()))
			logs.Infof("[Orchestrator] Restored warrant state: secCode %s, orderSize %d, realizedPnl %d",
				sec.Code(), ws.CurrentOrderSize, ws.RealizedPNL)
		}
	}

	monitorAddr := cfg.Normal.MonitorListenAddr
	if envCfg.MonitorAddr != "" {
		monitorAddr = envCfg.MonitorAddr
	}

	return &Orchestrator{
		cfg:         cfg,
		stateMgr:    stateMgr,
		sender:      sender,
		sim:         sim,
		orderSvc:    orderSvc,
		strat:       strat,
		underlyings: underlyings,
		warrants:    warrants,
		monitorAddr: monitorAddr,
	}, nil
}

// Start brings up the exporter, the flush loop and the signal generators.
// Warrants stay off until switched on through the control surface.
func (o *Orchestrator) Start() {
	o.metricsSrv = monitor.Serve(o.monitorAddr)
	o.sender.Start(time.Duration(o.cfg.Normal.PersistIntervalSeconds) * time.Second)
	o.strat.Start()
	logs.Infof("Strategy %s started, press Ctrl+C to exit.", o.cfg.StrategyName)
}

// SwitchOnAll activates every warrant; used by simulation runs that want the
// whole universe live immediately.
func (o *Orchestrator) SwitchOnAll() {
	nanoOfDay := utils.NanoOfDay(time.Now())
	for sid, sec := range o.warrants {
		if err := o.strat.SwitchOn(nanoOfDay, sid); err != nil {
			logs.Errorf("[Orchestrator] Switch-on failed: secCode %s: %v", sec.Code(), err)
		}
	}
}

// Stop performs a graceful shutdown: switch everything off, persist the
// final snapshots and stop the exporter.
func (o *Orchestrator) Stop() {
	logs.Info("Received close signal, starting graceful shutdown...")

	nanoOfDay := utils.NanoOfDay(time.Now())
	o.strat.SwitchOffAll(nanoOfDay, o.strat.Context().StrategyTypeParams().ExitMode)

	o.printFinalSummary()

	for _, sid := range o.strat.Context().WarrantSids() {
		if p := o.strat.Context().WrtParams(sid); p != nil {
			if err := o.stateMgr.SaveWrtParams(p); err != nil {
				logs.Errorf("Failed to save final warrant snapshot: secSid %d: %v", sid, err)
			}
		}
	}

	o.sender.Stop()
	if o.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.metricsSrv.Shutdown(shutdownCtx); err != nil {
			logs.Errorf("Failed to shut down metrics server: %v", err)
		}
	}
	logs.Info("All services stopped successfully.")
}

func (o *Orchestrator) printFinalSummary() {
	logs.Info("\n--- Final PnL Summary ---")
	var total int64
	for _, sec := range o.warrants {
		acct := o.orderSvc.AccountantFor(sec.Sid())
		if acct == nil {
			continue
		}
		pos := acct.GetPositionState()
		total += pos.RealizedProfit
		logs.Infof("Warrant %s: realized %d, open qty %d, round trips %d",
			sec.Code(), profit.CurrencyPNL(pos.RealizedProfit), pos.TotalQuantity, pos.NumRoundTrips)
	}
	logs.Info("--------------------")
	logs.Infof("Final total realized PnL: %d", profit.CurrencyPNL(total))
	logs.Info("--------------------")
}

// Strategy exposes the facade for the control surface.
func (o *Orchestrator) Strategy() *strategy.Strategy { return o.strat }

// OrderService exposes the simulated service for replay drivers.
func (o *Orchestrator) OrderService() *orders.Simulated { return o.sim }

// SecurityByCode finds an instrument by its listing code.
func (o *Orchestrator) SecurityByCode(code string) (*market.Security, bool) {
	if sec, ok := o.underlyings[code]; ok {
		return sec, true
	}
	for _, sec := range o.warrants {
		if sec.Code() == code {
			return sec, true
		}
	}
	return nil, false
}
