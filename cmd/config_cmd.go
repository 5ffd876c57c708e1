package cmd

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Ledger directory:  %s\n", dataDir(cfg))
	fmt.Printf("    Ledger database:   %s\n", pipeline.LedgerPath())
	fmt.Printf("    Default horizon:   %d\n", cfg.General.DefaultHorizon)
	fmt.Printf("    Cadence:           %s\n", cfg.General.Cadence)
	fmt.Printf("    Seasonality:       %s\n", cfg.General.Seasonality)
	fmt.Printf("    History periods:   %d\n", cfg.General.HistoryPeriods)
	fmt.Println()

	fs := cfg.Forecast
	fmt.Println("  [Forecast]")
	fmt.Printf("    Starting balance:  %s\n", cli.FormatMoney(fs.StartingBalance))
	fmt.Printf("    Weeks per month:   %.2f\n", fs.WeeksPerMonth)
	fmt.Printf("    z90 / z95:         %.3f / %.3f\n", fs.Z90, fs.Z95)
	fmt.Printf("    Growth mode:       %s\n", fs.GrowthMode)
	fmt.Printf("    Driver policy:     %s\n", fs.DriverPolicy)
	fmt.Printf("    Category limits:   %d categories, %d subcategories each\n", fs.MaxCategories, fs.MaxSubcategories)
	if fs.Seed != nil {
		fmt.Printf("    Seed:              %d\n", *fs.Seed)
	} else {
		fmt.Println("    Seed:              random")
	}
	for _, v := range []struct {
		name string
		sec  config.VariantSection
	}{{"short", fs.Short}, {"long", fs.Long}} {
		fmt.Printf("    [%s] volatility %.2f, band %s, perturb %v, break-even in %ss\n",
			v.name, v.sec.Volatility, v.sec.Band, v.sec.Perturb, v.sec.BreakEvenUnit)
	}
	fmt.Println()

	fmt.Println("  [Scenarios]")
	for _, sc := range cfg.ScenarioSpecs() {
		fmt.Printf("    %-14s inflows x%.2f, outflows x%.2f", sc.Name, sc.InflowMultiplier, sc.OutflowMultiplier)
		if sc.OneTimeInjection != 0 {
			fmt.Printf(", injection %s", cli.FormatMoney(sc.OneTimeInjection))
		}
		fmt.Println()
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh:      %v every %ds\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  Run `runway setup` to reconfigure.")
	return nil
}
