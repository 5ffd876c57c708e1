// Package cmd implements the runway CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/request"
	"github.com/theirongolddev/runway/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagRequest         string
	flagDataDir         string
	flagHorizon         int
	flagCadence         string
	flagStartingBalance float64
	flagStartDate       string
	flagSeed            uint64
	flagNoCache         bool
	flagQuiet           bool
)

var rootCmd = &cobra.Command{
	Use:   "runway",
	Short: "Rolling cash-flow forecast CLI",
	Long: "Project 13-week and 52-week cash flow from a transaction ledger or a request file:\n" +
		"running balance, confidence bands, burn rate, runway and liquidity risk.",
	SilenceUsage: true,
	RunE:         runForecast,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagRequest, "request", "r", "", "Forecast request file (.json, .yaml); skips the ledger")
	pf.StringVarP(&flagDataDir, "data-dir", "d", "", "Ledger directory of .csv/.jsonl files (default from config)")
	pf.IntVarP(&flagHorizon, "horizon", "H", 0, "Forecast horizon in periods: 13 or 52 (default from config)")
	pf.StringVar(&flagCadence, "cadence", "", "Period cadence: weekly or monthly (default from config)")
	pf.Float64Var(&flagStartingBalance, "starting-balance", 0, "Opening cash balance")
	pf.StringVar(&flagStartDate, "start-date", "", "First forecast period, YYYY-MM-DD")
	pf.Uint64Var(&flagSeed, "seed", 0, "Seed for volatility perturbation, for reproducible runs")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite ledger, reparse every file")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig returns the effective config. A broken config file is reported
// and replaced by defaults so read-only commands still work.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderWarning(fmt.Sprintf("config: %v (using defaults)", err)))
	}
	return cfg
}

func dataDir(cfg config.Config) string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return cfg.DataDir()
}

// loadData is the shared ledger loading path used by all commands.
// Uses the SQLite ledger when available for fast subsequent runs.
func loadData(dir string) (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache {
		ledger, err := store.Open(pipeline.LedgerPath())
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Ledger unavailable, doing full parse\n")
			}
		} else {
			defer func() { _ = ledger.Close() }()

			cr, err := pipeline.LoadWithCache(dir, ledger, progressFn)
			if err != nil {
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "\n  Ledger error (%v), falling back to full parse\n", err)
				}
			} else {
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %s transactions from ledger (%d accounts)    \n",
							cli.FormatNumber(int64(len(cr.Transactions))),
							cr.AccountCount,
						)
					} else {
						fmt.Fprintf(os.Stderr, "\r  %d cached + %d reparsed files (%d accounts)    \n",
							cr.CacheHits,
							cr.Reparsed,
							cr.AccountCount,
						)
					}
				}
				return &cr.LoadResult, nil
			}
		}
	}

	result, err := pipeline.Load(dir, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s transactions across %d files    \n",
			cli.FormatNumber(int64(len(result.Transactions))),
			result.ParsedFiles,
		)
	}
	return result, nil
}

func reportLoadWarnings(result *pipeline.LoadResult) {
	if flagQuiet {
		return
	}
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be read\n", result.FileErrors)
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed rows skipped\n", result.ParseErrors)
	}
}

// newEngine builds the forecast engine. --seed (or forecast.seed in the
// config) makes perturbation reproducible.
func newEngine(cmd *cobra.Command, cfg config.Config) *forecast.Engine {
	level := slog.LevelWarn
	if flagQuiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts := []forecast.Option{forecast.WithLogger(logger)}

	if seed, ok := seedOption(cmd, cfg); ok {
		opts = append(opts, forecast.WithSource(forecast.NewSeededSource(seed)))
	}
	return forecast.New(cfg.ForecastConfig(), opts...)
}

func seedOption(cmd *cobra.Command, cfg config.Config) (uint64, bool) {
	if cmd.Flags().Changed("seed") {
		return flagSeed, true
	}
	if cfg.Forecast.Seed != nil {
		return *cfg.Forecast.Seed, true
	}
	return 0, false
}

func startingBalanceOverride(cmd *cobra.Command) *float64 {
	if cmd.Flags().Changed("starting-balance") {
		v := flagStartingBalance
		return &v
	}
	return nil
}

// resolveCadence picks --cadence, then the config default.
func resolveCadence(cfg config.Config) (forecast.Cadence, error) {
	if flagCadence != "" {
		return forecast.ParseCadence(flagCadence)
	}
	return forecast.ParseCadence(cfg.General.Cadence)
}

func resolveHorizon(cfg config.Config) int {
	if flagHorizon != 0 {
		return flagHorizon
	}
	return cfg.General.DefaultHorizon
}

// buildRequest assembles the forecast request from --request when given and
// from the ledger otherwise. Command-line flags override both.
func buildRequest(cmd *cobra.Command, cfg config.Config) (forecast.Request, error) {
	cadence, err := resolveCadence(cfg)
	if err != nil {
		return forecast.Request{}, err
	}

	var start time.Time
	if flagStartDate != "" {
		start, err = time.Parse(time.DateOnly, flagStartDate)
		if err != nil {
			return forecast.Request{}, fmt.Errorf("--start-date: %w", err)
		}
	}

	if flagRequest != "" {
		payload, err := request.Load(flagRequest)
		if err != nil {
			return forecast.Request{}, err
		}
		o := request.Overrides{
			Horizon:         flagHorizon,
			StartDate:       start,
			StartingBalance: startingBalanceOverride(cmd),
		}
		if flagCadence != "" {
			o.Cadence = cadence
		}
		return payload.ToRequest(request.Defaults{
			Horizon:     cfg.General.DefaultHorizon,
			Cadence:     cadence,
			Seasonality: cfg.General.Seasonality,
		}, o)
	}

	result, err := loadData(dataDir(cfg))
	if err != nil {
		return forecast.Request{}, err
	}
	reportLoadWarnings(result)
	if len(result.Transactions) == 0 {
		return forecast.Request{}, fmt.Errorf("no transactions found in %s (use --request or add ledger files)", dataDir(cfg))
	}

	// History ends at --start-date; the forecast starts at the period
	// containing it.
	return pipeline.ForecastRequest(result.Transactions, pipeline.RequestOptions{
		Build: pipeline.BuildOptions{
			Cadence:            cadence,
			Periods:            cfg.General.HistoryPeriods,
			End:                start,
			EstimateVolatility: true,
		},
		Horizon:         resolveHorizon(cfg),
		StartingBalance: startingBalanceOverride(cmd),
		Seasonality:     cfg.General.Seasonality,
	})
}

// runEngine builds the request, runs the forecast and the risk analysis.
func runEngine(cmd *cobra.Command) (*forecast.Engine, *forecastRun, error) {
	cfg := loadConfig()
	req, err := buildRequest(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	engine := newEngine(cmd, cfg)
	res, err := engine.Run(req)
	if err != nil {
		return nil, nil, err
	}
	return engine, &forecastRun{cfg: cfg, result: res, risk: forecast.AnalyzeRisk(res)}, nil
}
