// monitor/metrics.go
package monitor

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonvincal/lunar-sub006/info"
	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/params"
	"github.com/wonvincal/lunar-sub006/state"
)

const throttleInterval = 500 * time.Millisecond

// pendingKey identifies one parameter tier instance in the batch queue.
type pendingKey struct {
	kind string
	id   int64
}

// Sender is the prometheus-backed info.Sender. Hot-path calls only stage
// snapshots; the flush loop owns the exporter updates and the persist writes
// so the dispatch thread never touches the state file.
type Sender struct {
	stateMgr state.ManagerInterface

	mu        sync.Mutex
	pending   map[pendingKey]params.Broadcastable
	persist   map[pendingKey]bool
	lastSent  map[pendingKey]time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
	flushDone chan struct{}

	broadcasts       *prometheus.CounterVec
	events           *prometheus.CounterVec
	persistErrors    prometheus.Counter
	currentOrderSize *prometheus.GaugeVec
	warrantStatus    *prometheus.GaugeVec
	pricingMode      *prometheus.GaugeVec
	tickSensitivity  *prometheus.GaugeVec
}

// NewSender builds the sender and registers its collectors on the default
// registry.
func NewSender(stateMgr state.ManagerInterface) *Sender {
	return &Sender{
		stateMgr:  stateMgr,
		pending:   make(map[pendingKey]params.Broadcastable),
		persist:   make(map[pendingKey]bool),
		lastSent:  make(map[pendingKey]time.Time),
		stopChan:  make(chan struct{}),
		flushDone: make(chan struct{}),
		broadcasts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warrant_param_broadcasts_total",
			Help: "Parameter snapshot broadcasts by tier kind.",
		}, []string{"kind"}),
		events: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warrant_strategy_events_total",
			Help: "Discrete strategy events by type.",
		}, []string{"event"}),
		persistErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warrant_state_persist_errors_total",
			Help: "Failed snapshot writes to the state store.",
		}),
		currentOrderSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "warrant_current_order_size",
			Help: "Adaptive order size per warrant.",
		}, []string{"sec_sid"}),
		warrantStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "warrant_strategy_status",
			Help: "Lifecycle status per warrant (0 off, 1 active, 2 exiting).",
		}, []string{"sec_sid"}),
		pricingMode: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "warrant_pricing_mode",
			Help: "Active pricing mode per warrant (1 weighted, 2 mid).",
		}, []string{"sec_sid"}),
		tickSensitivity: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "warrant_tick_sensitivity",
			Help: "Warrant price move per underlying tick, in per-mille of a warrant tick.",
		}, []string{"sec_sid"}),
	}
}

func keyFor(p params.Broadcastable) pendingKey {
	switch t := p.(type) {
	case *params.WrtParams:
		return pendingKey{kind: t.ParamsKind(), id: t.SecSid()}
	case *params.UndParams:
		return pendingKey{kind: t.ParamsKind(), id: t.UndSid()}
	case *params.IssuerUndParams:
		return pendingKey{kind: t.ParamsKind(), id: t.IssuerUndSid()}
	case *params.IssuerParams:
		return pendingKey{kind: t.ParamsKind(), id: t.IssuerSid()}
	}
	return pendingKey{kind: p.ParamsKind(), id: p.StrategyID()}
}

// Broadcast exports the snapshot immediately.
func (s *Sender) Broadcast(p params.Broadcastable) {
	s.export(p)
	s.broadcasts.WithLabelValues(p.ParamsKind()).Inc()
}

// BroadcastThrottled drops the snapshot if one went out for the same tier
// instance within the throttle interval.
func (s *Sender) BroadcastThrottled(p params.Broadcastable) {
	key := keyFor(p)
	s.mu.Lock()
	last := s.lastSent[key]
	now := time.Now()
	if now.Sub(last) < throttleInterval {
		s.mu.Unlock()
		return
	}
	s.lastSent[key] = now
	s.mu.Unlock()
	s.Broadcast(p)
}

// BroadcastBatched stages the snapshot for the next flush.
func (s *Sender) BroadcastBatched(p params.Broadcastable) {
	key := keyFor(p)
	s.mu.Lock()
	s.pending[key] = p
	s.mu.Unlock()
}

// BroadcastBatchedPersist stages the snapshot and marks it for a state-store
// write on flush.
func (s *Sender) BroadcastBatchedPersist(p params.Broadcastable) {
	key := keyFor(p)
	s.mu.Lock()
	s.pending[key] = p
	s.persist[key] = true
	s.mu.Unlock()
}

// SendEvent counts the event and logs it for the audit trail.
func (s *Sender) SendEvent(secSid, nanoOfDay int64, event info.EventType, value int64) {
	s.events.WithLabelValues(string(event)).Inc()
	logs.Infof("[Monitor] Event %s: secSid %d, nanoOfDay %d, value %d", event, secSid, nanoOfDay, value)
}

func (s *Sender) export(p params.Broadcastable) {
	w, ok := p.(*params.WrtParams)
	if !ok {
		return
	}
	sid := sidLabel(w.SecSid())
	s.currentOrderSize.WithLabelValues(sid).Set(float64(w.CurrentOrderSize))
	s.warrantStatus.WithLabelValues(sid).Set(float64(w.Status))
	s.pricingMode.WithLabelValues(sid).Set(float64(w.PricingMode))
	s.tickSensitivity.WithLabelValues(sid).Set(float64(w.TickSensitivity))
}

func sidLabel(sid int64) string {
	return strconv.FormatInt(sid, 10)
}

// Flush drains the batch queue, exporting every staged snapshot and writing
// the persist-marked ones through the state store.
func (s *Sender) Flush() {
	s.mu.Lock()
	pending := s.pending
	persist := s.persist
	s.pending = make(map[pendingKey]params.Broadcastable)
	s.persist = make(map[pendingKey]bool)
	s.mu.Unlock()

	for key, p := range pending {
		s.Broadcast(p)
		if !persist[key] {
			continue
		}
		w, ok := p.(*params.WrtParams)
		if !ok {
			continue
		}
		if err := s.stateMgr.SaveWrtParams(w); err != nil {
			s.persistErrors.Inc()
			logs.Errorf("[Monitor] Failed to persist warrant snapshot: secSid %d: %v", w.SecSid(), err)
		}
	}
}

// Start runs the flush loop until Stop is called.
func (s *Sender) Start(interval time.Duration) {
	go func() {
		defer close(s.flushDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopChan:
				s.Flush()
				logs.Info("Monitor received stop signal, exiting.")
				return
			case <-ticker.C:
				s.Flush()
			}
		}
	}()
}

// Stop ends the flush loop after a final flush.
func (s *Sender) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.flushDone
}

// Serve exposes the metrics endpoint. The returned server is already
// listening; the caller owns its shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Errorf("[Monitor] Metrics server stopped: %v", err)
		}
	}()
	logs.Infof("[Monitor] Metrics endpoint listening on %s", addr)
	return srv
}
