package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/intraday/market"
	"github.com/rustyeddy/intraday/risk"
	"github.com/rustyeddy/intraday/sim"
)

// Config is the complete run configuration.
type Config struct {
	Capital    CapitalConfig             `json:"capital" yaml:"capital"`
	Exits      ExitConfig                `json:"exits" yaml:"exits"`
	Entry      EntryConfig               `json:"entry" yaml:"entry"`
	Strategies map[string]StrategyConfig `json:"strategies" yaml:"strategies"`
	Journal    JournalConfig             `json:"journal" yaml:"journal"`
}

// CapitalConfig holds account and risk parameters.
type CapitalConfig struct {
	Initial           float64 `json:"initial" yaml:"initial"`
	TickSize          float64 `json:"tick_size" yaml:"tick_size"`
	TickValue         float64 `json:"tick_value" yaml:"tick_value"`
	MaintenanceMargin float64 `json:"maintenance_margin" yaml:"maintenance_margin"`
	MaxLossPerTrade   float64 `json:"max_loss_per_trade" yaml:"max_loss_per_trade"`
	MonthlyLossCutoff float64 `json:"monthly_loss_cutoff,omitempty" yaml:"monthly_loss_cutoff,omitempty"`
}

// ExitConfig holds the session-wide exit parameters.
type ExitConfig struct {
	Final           string  `json:"final" yaml:"final"`                                   // "16:00:00"
	Preferred       string  `json:"preferred,omitempty" yaml:"preferred,omitempty"`       // optional earlier exit
	BreakEvenOffset float64 `json:"break_even_offset" yaml:"break_even_offset"`           // points, >= 0
	MinStopATR      float64 `json:"min_stop_atr" yaml:"min_stop_atr"`                     // 0 disables
}

// EntryConfig holds fill and admission variants.
type EntryConfig struct {
	Interpolate  bool `json:"interpolate" yaml:"interpolate"`
	VWAPFilter   bool `json:"vwap_filter" yaml:"vwap_filter"`
	StopAsPoints bool `json:"stop_as_points" yaml:"stop_as_points"`
}

// StrategyConfig is the per-strategy rule parameter row.
type StrategyConfig struct {
	Disabled          bool    `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	BreakEvenATR      float64 `json:"break_even_atr" yaml:"break_even_atr"`
	TakeProfitATR     float64 `json:"take_profit_atr,omitempty" yaml:"take_profit_atr,omitempty"`
	LastEntry         string  `json:"last_entry,omitempty" yaml:"last_entry,omitempty"`
	BreakEvenAfterMin int     `json:"break_even_after_min,omitempty" yaml:"break_even_after_min,omitempty"`
}

// JournalConfig selects the journaling backend.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
	SessionsFile  string `json:"sessions_file,omitempty" yaml:"sessions_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration, as YAML for .yaml/.yml and JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Capital.Initial <= 0 {
		return fmt.Errorf("capital.initial must be positive")
	}
	if c.Capital.TickSize <= 0 {
		return fmt.Errorf("capital.tick_size must be positive")
	}
	if c.Capital.TickValue <= 0 {
		return fmt.Errorf("capital.tick_value must be positive")
	}
	if c.Capital.MaintenanceMargin <= 0 || c.Capital.MaintenanceMargin > 1 {
		return fmt.Errorf("capital.maintenance_margin must be in (0, 1]")
	}
	if c.Capital.MaxLossPerTrade <= 0 || c.Capital.MaxLossPerTrade > 1 {
		return fmt.Errorf("capital.max_loss_per_trade must be in (0, 1]")
	}
	if c.Exits.Final == "" {
		return fmt.Errorf("exits.final is required")
	}
	if _, err := market.ParseTimeOfDay(c.Exits.Final); err != nil {
		return fmt.Errorf("exits.final: %w", err)
	}
	if c.Exits.Preferred != "" {
		if _, err := market.ParseTimeOfDay(c.Exits.Preferred); err != nil {
			return fmt.Errorf("exits.preferred: %w", err)
		}
	}
	if c.Exits.BreakEvenOffset < 0 {
		return fmt.Errorf("exits.break_even_offset must be >= 0")
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for name, sc := range c.Strategies {
		if sc.BreakEvenATR <= 0 {
			return fmt.Errorf("strategy %q: break_even_atr must be positive", name)
		}
		if sc.LastEntry != "" {
			if _, err := market.ParseTimeOfDay(sc.LastEntry); err != nil {
				return fmt.Errorf("strategy %q: last_entry: %w", name, err)
			}
		}
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.PositionsFile == "" || c.Journal.SessionsFile == "" {
			return fmt.Errorf("journal positions_file and sessions_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Engine converts the file config into the engine rule set. Validate must
// have passed; time strings are re-parsed here.
func (c *Config) Engine() (sim.Config, error) {
	ec := sim.Config{
		Costing: risk.Costing{
			TickSize:          c.Capital.TickSize,
			TickValue:         c.Capital.TickValue,
			MaintenanceMargin: c.Capital.MaintenanceMargin,
			MaxLossPerTrade:   c.Capital.MaxLossPerTrade,
		},
		BreakEvenOffset:  c.Exits.BreakEvenOffset,
		MinStopATR:       c.Exits.MinStopATR,
		InterpolateEntry: c.Entry.Interpolate,
		VWAPFilter:       c.Entry.VWAPFilter,
		Strategies:       make(map[string]sim.StrategyParams, len(c.Strategies)),
	}

	final, err := market.ParseTimeOfDay(c.Exits.Final)
	if err != nil {
		return sim.Config{}, err
	}
	ec.ExitFinal = final

	if c.Exits.Preferred != "" {
		pref, err := market.ParseTimeOfDay(c.Exits.Preferred)
		if err != nil {
			return sim.Config{}, err
		}
		ec.ExitPreferred = &pref
	}

	for name, sc := range c.Strategies {
		params := sim.StrategyParams{
			Enabled:        !sc.Disabled,
			BreakEvenATR:   sc.BreakEvenATR,
			TakeProfitATR:  sc.TakeProfitATR,
			BreakEvenAfter: time.Duration(sc.BreakEvenAfterMin) * time.Minute,
		}
		if sc.LastEntry != "" {
			le, err := market.ParseTimeOfDay(sc.LastEntry)
			if err != nil {
				return sim.Config{}, err
			}
			params.LastEntry = &le
		}
		ec.Strategies[name] = params
	}

	return ec, nil
}

// Default returns the stock MES futures configuration.
func Default() *Config {
	return &Config{
		Capital: CapitalConfig{
			Initial:           8000,
			TickSize:          0.25,
			TickValue:         1.25,
			MaintenanceMargin: 0.25,
			MaxLossPerTrade:   0.06,
		},
		Exits: ExitConfig{
			Final:      "16:00:00",
			MinStopATR: 1.0,
		},
		Strategies: map[string]StrategyConfig{
			"pivot": {BreakEvenATR: 5},
			"rsi":   {BreakEvenATR: 1},
			"ret":   {BreakEvenATR: 2},
			"retw":  {BreakEvenATR: 2},
			"brk":   {BreakEvenATR: 1},
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
