package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	StartingBalance string
	Horizon         int
	Cadence         string
	Seasonality     string
	DataDir         string
	Theme           string
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		StartingBalance: strconv.FormatFloat(cfg.Forecast.StartingBalance, 'f', -1, 64),
		Horizon:         cfg.General.DefaultHorizon,
		Cadence:         cfg.General.Cadence,
		Seasonality:     config.NormalizeProfileName(cfg.General.Seasonality),
		DataDir:         cfg.DataDir(),
		Theme:           cfg.Appearance.Theme,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	balance, err := parseAmount(v.StartingBalance)
	if err != nil {
		return err
	}
	cfg.Forecast.StartingBalance = balance
	cfg.General.DefaultHorizon = v.Horizon
	cfg.General.Cadence = v.Cadence
	cfg.General.Seasonality = v.Seasonality
	cfg.General.DataDir = strings.TrimSpace(v.DataDir)
	cfg.Appearance.Theme = v.Theme
	return nil
}

// NewSetupForm builds the first-run wizard. txCount and dataDir describe the
// ledger that was found.
func NewSetupForm(txCount int, dataDir string, vals *SetupValues) *huh.Form {
	welcome := "No ledger files found yet. Drop CSV or JSONL exports into the data directory."
	if txCount > 0 {
		welcome = fmt.Sprintf("Found %s transactions in %s.", cli.FormatNumber(int64(txCount)), dataDir)
	}

	horizons := []huh.Option[int]{
		huh.NewOption("13 weeks (short term)", forecast.ShortTerm.Horizon),
		huh.NewOption("52 weeks (long term)", forecast.LongTerm.Horizon),
	}
	cadences := []huh.Option[string]{
		huh.NewOption("Weekly", string(forecast.Weekly)),
		huh.NewOption("Monthly", string(forecast.Monthly)),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to runway").
				Description(welcome+"\n\nA few questions and the forecast is ready."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Starting cash balance").
				Description("Cash on hand at the start of the forecast.").
				Placeholder("100000").
				Value(&vals.StartingBalance).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewSelect[int]().
				Title("Forecast horizon").
				Options(horizons...).
				Value(&vals.Horizon),
			huh.NewSelect[string]().
				Title("Period cadence").
				Options(cadences...).
				Value(&vals.Cadence),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Seasonality profile").
				Description("Applied to every category built from the ledger.").
				Options(huh.NewOptions(config.ProfileNames()...)...).
				Value(&vals.Seasonality),
			huh.NewInput().
				Title("Ledger directory").
				Value(&vals.DataDir),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
	).WithShowHelp(true)
}

// saveSetupConfig persists the wizard answers and applies them to the app.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	if a.setupVals.DataDir != "" {
		a.dataDir = cfg.DataDir()
	}
	a.horizon = cfg.General.DefaultHorizon
	if c, err := forecast.ParseCadence(cfg.General.Cadence); err == nil {
		a.cadence = c
	}
	if a.balanceOverride == nil {
		a.startingBalance = cfg.Forecast.StartingBalance
	}
	return config.Save(cfg)
}

// parseAmount accepts plain or formatted amounts such as "$25,000.50".
func parseAmount(s string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "", "_", "", " ", "").Replace(s)
	if clean == "" {
		return 0, errors.New("amount is required")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
