package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
)

const validYaml = `
strategy_name: warrant_mm
strategy_id: 6
use_simulation: true
normal_config:
  log_directory: logs
  state_directory: state
  monitor_listen_addr: ":9102"
  persist_interval_seconds: 5
logs:
  log_level: info
  max_size_mb: 100
  max_backups: 3
  max_age_days: 7
securities:
  - code: "700"
    sid: 700
    type: stock
    lot_size: 100
    tick_size: "0.2"
  - code: "18888"
    sid: 5001
    type: warrant
    side: call
    issuer_sid: 3
    underlying: "700"
    conv_ratio: "8"
    lot_size: 10000
  - code: "28888"
    sid: 5002
    type: warrant
    side: put
    issuer_sid: 3
    underlying: "700"
    conv_ratio: "12.5"
    lot_size: 10000
defaults:
  exit_mode: STRATEGY_EXIT
  warrant:
    mm_bid_size: 200000
    mm_ask_size: 200000
    base_order_size: 50000
    max_order_size: 200000
    tick_sensitivity_threshold: 500
    spread_observation_period: 30000000000
  underlying:
    size_threshold: 100000
  issuer_underlying:
    und_trade_vol_threshold: 500000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYaml))
	require.NoError(t, err)

	assert.Equal(t, "warrant_mm", cfg.StrategyName)
	assert.Equal(t, int64(6), cfg.StrategyID)
	assert.True(t, cfg.UseSimulation)
	assert.Equal(t, int64(50_000), cfg.Defaults.Wrt.BaseOrderSize)
	assert.Equal(t, int64(100_000), cfg.Defaults.Und.SizeThreshold)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "not found")
}

func TestBuildSecurities(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYaml))
	require.NoError(t, err)

	underlyings, warrants, err := cfg.BuildSecurities()
	require.NoError(t, err)
	require.Len(t, underlyings, 1)
	require.Len(t, warrants, 2)

	und := underlyings["700"]
	assert.Equal(t, int64(700), und.Sid())
	assert.Equal(t, int64(200), und.SpreadTable().TickSizeAt(0))

	call := warrants[5001]
	require.NotNil(t, call)
	assert.Equal(t, market.SideCall, call.Side())
	assert.Equal(t, int64(8_000), call.ConvRatio())
	assert.Same(t, und, call.Underlying())

	put := warrants[5002]
	require.NotNil(t, put)
	assert.Equal(t, market.SidePut, put.Side())
	assert.Equal(t, int64(12_500), put.ConvRatio())
}

func TestBuildStrategyTypeParams(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYaml))
	require.NoError(t, err)

	stp, err := cfg.BuildStrategyTypeParams()
	require.NoError(t, err)
	assert.Equal(t, params.ExitModeStrategyExit, stp.ExitMode)
	assert.Equal(t, int64(50_000), stp.DefaultWrtParams.BaseOrderSize)
	assert.Equal(t, int64(500_000), stp.DefaultIssuerUndParams.UndTradeVolThreshold)
}

func TestValidateCatchesMissingCriticalFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"no name", func(c *Config) { c.StrategyName = "" }, "strategy_name"},
		{"no warrants", func(c *Config) { c.Securities = c.Securities[:1] }, "at least one warrant"},
		{"no mm bid size", func(c *Config) { c.Defaults.Wrt.MmBidSize = 0 }, "mm_bid_size"},
		{"max below base", func(c *Config) { c.Defaults.Wrt.MaxOrderSize = 1 }, "max_order_size"},
		{"dup sid", func(c *Config) { c.Securities[2].Sid = 5001 }, "already used"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, validYaml))
			require.NoError(t, err)
			tc.mutate(cfg)
			err = cfg.Validate()
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestScaledConvRatioRejectsSubScaleValues(t *testing.T) {
	sc := &SecurityConfig{Code: "x", ConvRatio: "0.00001"}
	_, err := sc.ScaledConvRatio()
	assert.Error(t, err)

	sc.ConvRatio = "12.5"
	v, err := sc.ScaledConvRatio()
	require.NoError(t, err)
	assert.Equal(t, int64(12_500), v)
}

func TestParseExitMode(t *testing.T) {
	m, err := ParseExitMode("SEMI_MANUAL_EXIT")
	require.NoError(t, err)
	assert.Equal(t, params.ExitModeSemiManualExit, m)

	m, err = ParseExitMode("")
	require.NoError(t, err)
	assert.Equal(t, params.ExitModeNormal, m)

	_, err = ParseExitMode("bogus")
	assert.Error(t, err)
}
