// state/state.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/wonvincal/lunar-sub006/params"
)

// ManagerInterface defines the capabilities of the state manager for
// upper-level modules (such as the orchestrator and the info sender). The
// interface decouples callers from the file storage implementation.
type ManagerInterface interface {
	// GetFullState returns a deep copy of all current state for startup
	// reconciliation use.
	GetFullState() AppState
	// SaveWrtParams persists the adaptive outputs of one warrant tier.
	SaveWrtParams(p *params.WrtParams) error
	// UpdateRealizedPNL adds a realized trade result for one warrant.
	UpdateRealizedPNL(secSid, pnl int64) error
	// WarrantSnapshot returns the stored snapshot for one warrant.
	WarrantSnapshot(secSid int64) (WarrantState, bool)
}

// WarrantState is the per-warrant metadata that survives a restart: the
// adaptive order size, the externally seeded stops and the realized result.
// Everything else is rebuilt from market data.
type WarrantState struct {
	SecSid           int64 `json:"sec_sid"`
	CurrentOrderSize int64 `json:"current_order_size"`
	StopLoss         int64 `json:"stop_loss"`
	StopLossTrigger  int64 `json:"stop_loss_trigger"`
	IssuerMaxLag     int64 `json:"issuer_max_lag"`
	RealizedPNL      int64 `json:"realized_pnl"`
	NumTrades        int64 `json:"num_trades"`
}

// AppState is the top-level structure persisted to state.json.
type AppState struct {
	StrategyID int64                   `json:"strategy_id"`
	Warrants   map[int64]*WarrantState `json:"warrants"`
}

// Manager is the concrete file implementation of ManagerInterface.
type Manager struct {
	mu       sync.RWMutex
	filePath string
	state    *AppState
}

// NewManager creates and initializes a new state manager. It loads existing
// state, or creates a new empty state if none exists.
func NewManager(filePath string, strategyID int64) (*Manager, error) {
	m := &Manager{
		filePath: filePath,
		state: &AppState{
			StrategyID: strategyID,
			Warrants:   make(map[int64]*WarrantState),
		},
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Info: State file not found at %s. Starting with a fresh state.\n", filePath)
			if err := m.save(); err != nil {
				return nil, fmt.Errorf("failed to create initial empty state file: %w", err)
			}
			return m, nil
		}
		return nil, fmt.Errorf("failed to load initial state: %w", err)
	}
	if m.state.StrategyID != strategyID {
		return nil, fmt.Errorf("state file %s belongs to strategy %d, not %d", filePath, m.state.StrategyID, strategyID)
	}

	return m, nil
}

// save performs an atomic write while holding the lock.
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state for saving: %w", err)
	}

	tmpFilePath := m.filePath + ".tmp"
	if err := os.WriteFile(tmpFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to temporary state file: %w", err)
	}

	return os.Rename(tmpFilePath, m.filePath)
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, m.state); err != nil {
		return err
	}
	if m.state.Warrants == nil {
		m.state.Warrants = make(map[int64]*WarrantState)
	}
	return nil
}

func (m *Manager) GetFullState() AppState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := AppState{
		StrategyID: m.state.StrategyID,
		Warrants:   make(map[int64]*WarrantState, len(m.state.Warrants)),
	}
	for sid, w := range m.state.Warrants {
		ws := *w
		copied.Warrants[sid] = &ws
	}
	return copied
}

func (m *Manager) warrantLocked(secSid int64) *WarrantState {
	w, ok := m.state.Warrants[secSid]
	if !ok {
		w = &WarrantState{SecSid: secSid}
		m.state.Warrants[secSid] = w
	}
	return w
}

func (m *Manager) SaveWrtParams(p *params.WrtParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.warrantLocked(p.SecSid())
	w.CurrentOrderSize = p.CurrentOrderSize
	w.StopLoss = p.StopLoss
	w.StopLossTrigger = p.StopLossTrigger
	w.IssuerMaxLag = p.IssuerMaxLag
	return m.save()
}

func (m *Manager) UpdateRealizedPNL(secSid, pnl int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.warrantLocked(secSid)
	w.RealizedPNL += pnl
	w.NumTrades++
	return m.save()
}

func (m *Manager) WarrantSnapshot(secSid int64) (WarrantState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.state.Warrants[secSid]; ok {
		return *w, true
	}
	return WarrantState{}, false
}

// RestoreWrtParams seeds a warrant tier from the stored snapshot. A zero
// value in the snapshot leaves the configured default in place.
func (m *Manager) RestoreWrtParams(p *params.WrtParams) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.state.Warrants[p.SecSid()]
	if !ok {
		return
	}
	if w.CurrentOrderSize > 0 {
		p.CurrentOrderSize = w.CurrentOrderSize
	}
	if w.StopLoss != 0 {
		p.StopLoss = w.StopLoss
	}
	if w.StopLossTrigger != 0 {
		p.StopLossTrigger = w.StopLossTrigger
	}
	if w.IssuerMaxLag > 0 {
		p.IssuerMaxLag = w.IssuerMaxLag
	}
}
