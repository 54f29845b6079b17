package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonvincal/lunar-sub006/params"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	m, err := NewManager(path, 6)
	require.NoError(t, err)
	return m, path
}

func TestFreshStartCreatesStateFile(t *testing.T) {
	m, path := newTestManager(t)

	_, err := os.Stat(path)
	assert.NoError(t, err)

	full := m.GetFullState()
	assert.Equal(t, int64(6), full.StrategyID)
	assert.Empty(t, full.Warrants)
}

func TestSaveAndReloadWarrantSnapshot(t *testing.T) {
	m, path := newTestManager(t)

	p := params.NewWrtParams()
	p.SetSecSid(5001)
	p.CurrentOrderSize = 80_000
	p.StopLoss = 95_500_000
	p.StopLossTrigger = 96_000_000
	p.IssuerMaxLag = 12_000_000
	require.NoError(t, m.SaveWrtParams(p))
	require.NoError(t, m.UpdateRealizedPNL(5001, 4_200))

	reloaded, err := NewManager(path, 6)
	require.NoError(t, err)

	ws, ok := reloaded.WarrantSnapshot(5001)
	require.True(t, ok)
	assert.Equal(t, int64(80_000), ws.CurrentOrderSize)
	assert.Equal(t, int64(95_500_000), ws.StopLoss)
	assert.Equal(t, int64(4_200), ws.RealizedPNL)
	assert.Equal(t, int64(1), ws.NumTrades)
}

func TestRestoreWrtParamsLeavesDefaultsWhenUnset(t *testing.T) {
	m, _ := newTestManager(t)

	saved := params.NewWrtParams()
	saved.SetSecSid(5001)
	saved.CurrentOrderSize = 120_000
	require.NoError(t, m.SaveWrtParams(saved))

	fresh := params.NewWrtParams()
	fresh.SetSecSid(5001)
	fresh.CurrentOrderSize = 40_000
	fresh.StopLoss = 77_000_000
	m.RestoreWrtParams(fresh)

	assert.Equal(t, int64(120_000), fresh.CurrentOrderSize)
	// No stored stop, the configured one stays.
	assert.Equal(t, int64(77_000_000), fresh.StopLoss)

	unknown := params.NewWrtParams()
	unknown.SetSecSid(9999)
	unknown.CurrentOrderSize = 40_000
	m.RestoreWrtParams(unknown)
	assert.Equal(t, int64(40_000), unknown.CurrentOrderSize)
}

func TestMismatchedStrategyIDRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	_, err := NewManager(path, 6)
	require.NoError(t, err)

	_, err = NewManager(path, 7)
	assert.Error(t, err)
}

func TestGetFullStateReturnsCopy(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.UpdateRealizedPNL(5001, 100))

	full := m.GetFullState()
	full.Warrants[5001].RealizedPNL = 999_999

	ws, ok := m.WarrantSnapshot(5001)
	assert.True(t, ok)
	assert.Equal(t, int64(100), ws.RealizedPNL)
}
