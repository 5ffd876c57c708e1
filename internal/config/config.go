package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/theirongolddev/runway/internal/forecast"
)

// Config holds all runway configuration.
type Config struct {
	General    GeneralConfig           `toml:"general"`
	Forecast   ForecastSection         `toml:"forecast"`
	Scenarios  []forecast.ScenarioSpec `toml:"scenarios,omitempty"`
	Appearance AppearanceConfig        `toml:"appearance"`
	TUI        TUIConfig               `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir        string `toml:"data_dir,omitempty"`
	DefaultHorizon int    `toml:"default_horizon"`
	Cadence        string `toml:"cadence"`
	Seasonality    string `toml:"seasonality"`
	HistoryPeriods int    `toml:"history_periods"`
}

// ForecastSection holds the engine constants.
type ForecastSection struct {
	StartingBalance  float64        `toml:"starting_balance"`
	WeeksPerMonth    float64        `toml:"weeks_per_month"`
	Z90              float64        `toml:"z90"`
	Z95              float64        `toml:"z95"`
	GrowthMode       string         `toml:"growth_mode"`
	DriverPolicy     string         `toml:"driver_policy"`
	MaxCategories    int            `toml:"max_categories"`
	MaxSubcategories int            `toml:"max_subcategories"`
	Seed             *uint64        `toml:"seed,omitempty"`
	Short            VariantSection `toml:"short"`
	Long             VariantSection `toml:"long"`
}

// VariantSection tunes one forecast horizon.
type VariantSection struct {
	Volatility    float64 `toml:"volatility"`
	Band          string  `toml:"band"`
	Perturb       bool    `toml:"perturb"`
	BreakEvenUnit string  `toml:"break_even_unit"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// envOverrides are applied on top of the file. Unset variables leave the
// pointer nil.
type envOverrides struct {
	StartingBalance *float64 `env:"RUNWAY_STARTING_BALANCE"`
	Seed            *uint64  `env:"RUNWAY_SEED"`
	DataDir         *string  `env:"RUNWAY_DATA_DIR"`
	Theme           *string  `env:"RUNWAY_THEME"`
	Horizon         *int     `env:"RUNWAY_HORIZON"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	fc := forecast.DefaultConfig()
	return Config{
		General: GeneralConfig{
			DefaultHorizon: forecast.ShortTerm.Horizon,
			Cadence:        string(forecast.Weekly),
			Seasonality:    "flat",
			HistoryPeriods: 12,
		},
		Forecast: ForecastSection{
			StartingBalance:  fc.StartingBalance,
			WeeksPerMonth:    fc.WeeksPerMonth,
			Z90:              fc.Z90,
			Z95:              fc.Z95,
			GrowthMode:       string(fc.GrowthMode),
			DriverPolicy:     string(fc.DriverPolicy),
			MaxCategories:    fc.MaxCategories,
			MaxSubcategories: fc.MaxSubcategories,
			Short:            variantSection(forecast.ShortTerm),
			Long:             variantSection(forecast.LongTerm),
		},
		Appearance: AppearanceConfig{
			Theme: "ledger",
		},
		TUI: TUIConfig{
			RefreshIntervalSec: 60,
		},
	}
}

func variantSection(v forecast.Variant) VariantSection {
	return VariantSection{
		Volatility:    v.Volatility,
		Band:          string(v.Band),
		Perturb:       v.PerturbInputs,
		BreakEvenUnit: string(v.BreakEvenUnit),
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "runway")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the ledger directory, defaulting to ~/.local/share/runway.
func (c Config) DataDir() string {
	if c.General.DataDir != "" {
		return c.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "runway")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied either way.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing env: %w", err)
	}
	if o.StartingBalance != nil {
		cfg.Forecast.StartingBalance = *o.StartingBalance
	}
	if o.Seed != nil {
		cfg.Forecast.Seed = o.Seed
	}
	if o.DataDir != nil {
		cfg.General.DataDir = *o.DataDir
	}
	if o.Theme != nil {
		cfg.Appearance.Theme = *o.Theme
	}
	if o.Horizon != nil {
		cfg.General.DefaultHorizon = *o.Horizon
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// ForecastConfig converts the file settings into engine configuration.
func (c Config) ForecastConfig() forecast.Config {
	fs := c.Forecast
	fc := forecast.DefaultConfig()
	fc.StartingBalance = fs.StartingBalance
	fc.WeeksPerMonth = fs.WeeksPerMonth
	fc.Z90 = fs.Z90
	fc.Z95 = fs.Z95
	fc.GrowthMode = forecast.GrowthMode(fs.GrowthMode)
	fc.DriverPolicy = forecast.DriverPolicy(fs.DriverPolicy)
	fc.MaxCategories = fs.MaxCategories
	fc.MaxSubcategories = fs.MaxSubcategories
	fc.Variants = []forecast.Variant{
		fs.Short.variant(forecast.ShortTerm),
		fs.Long.variant(forecast.LongTerm),
	}
	return fc
}

func (s VariantSection) variant(base forecast.Variant) forecast.Variant {
	v := base
	if s.Volatility > 0 {
		v.Volatility = s.Volatility
	}
	if s.Band != "" {
		v.Band = forecast.Band(s.Band)
	}
	v.PerturbInputs = s.Perturb
	if s.BreakEvenUnit != "" {
		v.BreakEvenUnit = forecast.BreakEvenUnit(s.BreakEvenUnit)
	}
	return v
}

// ScenarioSpecs returns the configured scenarios, or the defaults when none
// are set.
func (c Config) ScenarioSpecs() []forecast.ScenarioSpec {
	if len(c.Scenarios) == 0 {
		return forecast.DefaultScenarios()
	}
	return c.Scenarios
}
