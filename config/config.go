// config/config.go
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
	"github.com/wonvincal/lunar-sub006/scale"
)

// LogConfig holds the configuration for logging.
type LogConfig struct {
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// NormalConfig holds all general, non-strategy-specific configuration.
type NormalConfig struct {
	LogDirectory           string `yaml:"log_directory"`
	StateDirectory         string `yaml:"state_directory"`
	MonitorListenAddr      string `yaml:"monitor_listen_addr"`
	PersistIntervalSeconds int    `yaml:"persist_interval_seconds"`
	ReplayIntervalMillis   int    `yaml:"replay_interval_millis"`
}

// SecurityConfig describes one instrument in the universe. Prices and ratios
// come in as decimal strings and are parsed into scaled integers.
type SecurityConfig struct {
	Code       string `yaml:"code"`
	Sid        int64  `yaml:"sid"`
	Type       string `yaml:"type"`
	Side       string `yaml:"side"`
	IssuerSid  int64  `yaml:"issuer_sid"`
	Underlying string `yaml:"underlying"`
	ConvRatio  string `yaml:"conv_ratio"`
	LotSize    int64  `yaml:"lot_size"`
	TickSize   string `yaml:"tick_size"`
}

// DefaultsConfig carries the default input set copied onto every lazily
// created parameter tier.
type DefaultsConfig struct {
	ExitMode  string                  `yaml:"exit_mode"`
	Wrt       *params.WrtParams       `yaml:"warrant"`
	Und       *params.UndParams       `yaml:"underlying"`
	Issuer    *params.IssuerParams    `yaml:"issuer"`
	IssuerUnd *params.IssuerUndParams `yaml:"issuer_underlying"`
}

// Config is the top-level configuration structure.
type Config struct {
	StrategyName   string            `yaml:"strategy_name"`
	StrategyID     int64             `yaml:"strategy_id"`
	ComparisonMode bool              `yaml:"comparison_mode"`
	UseSimulation  bool              `yaml:"use_simulation"`
	Securities     []*SecurityConfig `yaml:"securities"`
	Defaults       *DefaultsConfig   `yaml:"defaults"`
	Normal         *NormalConfig     `yaml:"normal_config"`
	Logs           *LogConfig        `yaml:"logs"`
}

// NewConfig creates a new Config struct with essential allocations but no
// magic numbers. All critical parameters MUST be provided in the config.yaml
// file.
func NewConfig() *Config {
	return &Config{
		UseSimulation: false,
		Logs:          &LogConfig{},
		Normal:        &NormalConfig{},
		Defaults: &DefaultsConfig{
			Wrt:       params.NewWrtParams(),
			Und:       params.NewUndParams(),
			Issuer:    params.NewIssuerParams(),
			IssuerUnd: params.NewIssuerUndParams(),
		},
	}
}

// LoadConfig loads configuration from a given path and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Error: Config file config.yaml not found at %s. Program cannot run without a config file", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// scaledInt parses a decimal string into a fixed-point integer at the given
// scale. The value must be exactly representable at that scale.
func scaledInt(s string, sc int64) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	scaled := d.Mul(decimal.NewFromInt(sc))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("value %s is not representable at scale %d", s, sc)
	}
	return scaled.IntPart(), nil
}

// ScaledConvRatio returns the conversion ratio as a fixed-point integer.
func (s *SecurityConfig) ScaledConvRatio() (int64, error) {
	return scaledInt(s.ConvRatio, scale.ConvRatioScale)
}

// ScaledTickSize returns the fixed tick size as a scaled price, or 0 when the
// instrument follows the exchange's banded tick schedule.
func (s *SecurityConfig) ScaledTickSize() (int64, error) {
	if s.TickSize == "" {
		return 0, nil
	}
	return scaledInt(s.TickSize, market.PriceScale)
}

// SecurityType maps the config label onto the market enum.
func (s *SecurityConfig) SecurityType() (market.SecurityType, error) {
	switch s.Type {
	case "stock":
		return market.SecurityTypeStock, nil
	case "index":
		return market.SecurityTypeIndex, nil
	case "warrant":
		return market.SecurityTypeWarrant, nil
	}
	return 0, fmt.Errorf("Config error: securities[%s].type must be 'stock', 'index' or 'warrant', got %q", s.Code, s.Type)
}

// OptionSide maps the config label onto the market enum.
func (s *SecurityConfig) OptionSide() (market.OptionSide, error) {
	switch s.Side {
	case "", "none":
		return market.SideNone, nil
	case "call":
		return market.SideCall, nil
	case "put":
		return market.SidePut, nil
	}
	return 0, fmt.Errorf("Config error: securities[%s].side must be 'call' or 'put', got %q", s.Code, s.Side)
}

// ParseExitMode maps the config label onto the exit-mode enum.
func ParseExitMode(s string) (params.ExitMode, error) {
	switch s {
	case "", "NORMAL":
		return params.ExitModeNormal, nil
	case "NO_EXIT":
		return params.ExitModeNoExit, nil
	case "STRATEGY_EXIT":
		return params.ExitModeStrategyExit, nil
	case "PRICE_CHECK_EXIT":
		return params.ExitModePriceCheckExit, nil
	case "NO_CHECK_EXIT":
		return params.ExitModeNoCheckExit, nil
	case "SEMI_MANUAL_EXIT":
		return params.ExitModeSemiManualExit, nil
	case "CLOSING_STRATEGY_EXIT":
		return params.ExitModeClosingStrategyExit, nil
	case "CLOSING_PRICE_CHECK_EXIT":
		return params.ExitModeClosingPriceCheckExit, nil
	case "SCOREBOARD_EXIT":
		return params.ExitModeScoreBoardExit, nil
	}
	return 0, fmt.Errorf("Config error: unknown exit mode %q", s)
}

// BuildStrategyTypeParams assembles the top parameter tier from the defaults
// block.
func (c *Config) BuildStrategyTypeParams() (*params.StrategyTypeParams, error) {
	stp := params.NewStrategyTypeParams()
	mode, err := ParseExitMode(c.Defaults.ExitMode)
	if err != nil {
		return nil, err
	}
	if c.Defaults.ExitMode != "" {
		stp.ExitMode = mode
	}
	c.Defaults.Wrt.CopyInputsTo(stp.DefaultWrtParams)
	c.Defaults.Und.CopyInputsTo(stp.DefaultUndParams)
	c.Defaults.Issuer.CopyInputsTo(stp.DefaultIssuerParams)
	c.Defaults.IssuerUnd.CopyInputsTo(stp.DefaultIssuerUndParams)
	return stp, nil
}

// BuildSecurities materializes the instrument universe. Underlyings come out
// keyed by code in the first map; warrants in the second, wired to their
// underlying.
func (c *Config) BuildSecurities() (map[string]*market.Security, map[int64]*market.Security, error) {
	underlyings := make(map[string]*market.Security)
	warrants := make(map[int64]*market.Security)

	for _, sc := range c.Securities {
		t, err := sc.SecurityType()
		if err != nil {
			return nil, nil, err
		}
		if t == market.SecurityTypeWarrant {
			continue
		}
		tick, err := sc.ScaledTickSize()
		if err != nil {
			return nil, nil, fmt.Errorf("Config error: securities[%s].tick_size: %w", sc.Code, err)
		}
		if tick <= 0 {
			return nil, nil, fmt.Errorf("Critical config missing: securities[%s].tick_size must be explicitly specified for an underlying", sc.Code)
		}
		table := market.NewFixedSpreadTable(tick)
		underlyings[sc.Code] = market.NewSecurity(sc.Sid, sc.Code, t, market.SideNone, table, sc.LotSize, 0, 0, nil)
	}

	for _, sc := range c.Securities {
		t, err := sc.SecurityType()
		if err != nil {
			return nil, nil, err
		}
		if t != market.SecurityTypeWarrant {
			continue
		}
		und, ok := underlyings[sc.Underlying]
		if !ok {
			return nil, nil, fmt.Errorf("Config error: securities[%s].underlying %q is not defined", sc.Code, sc.Underlying)
		}
		side, err := sc.OptionSide()
		if err != nil {
			return nil, nil, err
		}
		convRatio, err := sc.ScaledConvRatio()
		if err != nil {
			return nil, nil, fmt.Errorf("Config error: securities[%s].conv_ratio: %w", sc.Code, err)
		}
		var table market.SpreadTable
		if tick, err := sc.ScaledTickSize(); err != nil {
			return nil, nil, fmt.Errorf("Config error: securities[%s].tick_size: %w", sc.Code, err)
		} else if tick > 0 {
			table = market.NewFixedSpreadTable(tick)
		} else {
			table = market.NewWarrantSpreadTable()
		}
		warrants[sc.Sid] = market.NewSecurity(sc.Sid, sc.Code, t, side, table, sc.LotSize, convRatio, sc.IssuerSid, und)
	}

	return underlyings, warrants, nil
}

// Validate checks the logical consistency and completeness of the entire
// configuration.
func (c *Config) Validate() error {
	if c.StrategyName == "" {
		return fmt.Errorf("Critical config missing: 'strategy_name' must be explicitly specified in config.yaml")
	}
	if c.StrategyID <= 0 {
		return fmt.Errorf("Critical config missing: 'strategy_id' must be explicitly specified in config.yaml and be positive")
	}

	if c.Normal == nil {
		return fmt.Errorf("Critical config missing: 'normal_config' configuration block must be provided in config.yaml")
	}
	if c.Normal.LogDirectory == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.log_directory' must be explicitly specified in config.yaml (e.g., 'logs')")
	}
	if c.Normal.StateDirectory == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.state_directory' must be explicitly specified in config.yaml (e.g., 'state')")
	}
	if c.Normal.MonitorListenAddr == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.monitor_listen_addr' must be explicitly specified in config.yaml (e.g., ':9102')")
	}
	if c.Normal.PersistIntervalSeconds <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.persist_interval_seconds' must be explicitly specified in config.yaml and be positive")
	}

	if c.Logs == nil {
		return fmt.Errorf("Critical config missing: 'logs' configuration block must be provided in config.yaml")
	}
	if c.Logs.LogLevel == "" {
		return fmt.Errorf("Critical config missing: 'logs.log_level' must be explicitly specified in config.yaml (e.g., 'info', 'debug', 'warn', 'error')")
	}
	if c.Logs.MaxSizeMB <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_size_mb' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxBackups <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_backups' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxAgeDays <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_age_days' must be explicitly specified in config.yaml and be positive")
	}

	if len(c.Securities) == 0 {
		return fmt.Errorf("Critical config missing: 'securities' must list at least one instrument in config.yaml")
	}
	seenSids := make(map[int64]string)
	seenCodes := make(map[string]bool)
	numWarrants := 0
	for i, sc := range c.Securities {
		if sc.Code == "" {
			return fmt.Errorf("Critical config missing: 'securities[%d].code' must be explicitly specified in config.yaml", i)
		}
		if sc.Sid <= 0 {
			return fmt.Errorf("Critical config missing: 'securities[%s].sid' must be explicitly specified in config.yaml and be positive", sc.Code)
		}
		if prev, dup := seenSids[sc.Sid]; dup {
			return fmt.Errorf("Config error: securities[%s].sid %d already used by %s", sc.Code, sc.Sid, prev)
		}
		seenSids[sc.Sid] = sc.Code
		if seenCodes[sc.Code] {
			return fmt.Errorf("Config error: securities[%s] is defined twice", sc.Code)
		}
		seenCodes[sc.Code] = true

		t, err := sc.SecurityType()
		if err != nil {
			return err
		}
		if sc.LotSize <= 0 {
			return fmt.Errorf("Critical config missing: 'securities[%s].lot_size' must be explicitly specified in config.yaml and be positive", sc.Code)
		}
		if t != market.SecurityTypeWarrant {
			continue
		}
		numWarrants++
		side, err := sc.OptionSide()
		if err != nil {
			return err
		}
		if side == market.SideNone {
			return fmt.Errorf("Critical config missing: 'securities[%s].side' must be 'call' or 'put' for a warrant", sc.Code)
		}
		if sc.IssuerSid <= 0 {
			return fmt.Errorf("Critical config missing: 'securities[%s].issuer_sid' must be explicitly specified in config.yaml and be positive", sc.Code)
		}
		if sc.Underlying == "" {
			return fmt.Errorf("Critical config missing: 'securities[%s].underlying' must be explicitly specified in config.yaml", sc.Code)
		}
		cr, err := sc.ScaledConvRatio()
		if err != nil {
			return fmt.Errorf("Config error: securities[%s].conv_ratio: %v", sc.Code, err)
		}
		if cr <= 0 {
			return fmt.Errorf("Critical config missing: 'securities[%s].conv_ratio' must be explicitly specified in config.yaml and be positive", sc.Code)
		}
	}
	if numWarrants == 0 {
		return fmt.Errorf("Critical config missing: 'securities' must list at least one warrant in config.yaml")
	}

	if c.Defaults == nil {
		return fmt.Errorf("Critical config missing: 'defaults' configuration block must be provided in config.yaml")
	}
	if _, err := ParseExitMode(c.Defaults.ExitMode); err != nil {
		return err
	}
	if c.Defaults.Wrt == nil {
		return fmt.Errorf("Critical config missing: 'defaults.warrant' block must be provided in config.yaml")
	}
	if c.Defaults.Wrt.MmBidSize <= 0 {
		return fmt.Errorf("Critical config missing: 'defaults.warrant.mm_bid_size' must be explicitly specified in config.yaml and be positive")
	}
	if c.Defaults.Wrt.MmAskSize <= 0 {
		return fmt.Errorf("Critical config missing: 'defaults.warrant.mm_ask_size' must be explicitly specified in config.yaml and be positive")
	}
	if c.Defaults.Wrt.BaseOrderSize <= 0 {
		return fmt.Errorf("Critical config missing: 'defaults.warrant.base_order_size' must be explicitly specified in config.yaml and be positive")
	}
	if c.Defaults.Wrt.MaxOrderSize < c.Defaults.Wrt.BaseOrderSize {
		return fmt.Errorf("Config error: defaults.warrant.max_order_size must be at least base_order_size")
	}
	if c.Defaults.Wrt.TickSensitivityThreshold <= 0 {
		return fmt.Errorf("Critical config missing: 'defaults.warrant.tick_sensitivity_threshold' must be explicitly specified in config.yaml and be positive")
	}
	if c.Defaults.Wrt.SpreadObservationPeriod <= 0 {
		return fmt.Errorf("Critical config missing: 'defaults.warrant.spread_observation_period' must be explicitly specified in config.yaml and be positive")
	}

	return nil
}

type EnvConfig struct {
	ComparisonMode bool
	MonitorAddr    string
}

// LoadEnvConfig reads the environment overlay. Values here win over the yaml
// file.
func LoadEnvConfig() *EnvConfig {
	cm := os.Getenv("BT_COMPARISON_MODE")
	return &EnvConfig{
		ComparisonMode: cm == "1" || cm == "true",
		MonitorAddr:    os.Getenv("MONITOR_LISTEN_ADDR"),
	}
}
