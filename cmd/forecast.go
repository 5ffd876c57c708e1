package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/report"

	"github.com/spf13/cobra"
)

var flagJSON bool

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run the rolling forecast and print the report",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result and risk analysis as JSON")
	rootCmd.AddCommand(forecastCmd)
}

// forecastRun is one engine run plus what the renderers need alongside it.
type forecastRun struct {
	cfg    config.Config
	result *model.RollingForecastResult
	risk   forecast.RiskAnalysis
}

func runForecast(cmd *cobra.Command, _ []string) error {
	_, run, err := runEngine(cmd)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Result *model.RollingForecastResult `json:"result"`
			Risk   forecast.RiskAnalysis        `json:"risk"`
		}{run.result, run.risk})
	}

	res := run.result
	rep := report.Build(res, run.risk)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", rep.Title, res.StartDate.Format("2006-01-02"))))
	fmt.Println()

	for _, sec := range rep.Sections {
		fmt.Print(renderSection(sec))
		fmt.Println()
	}

	fmt.Printf("  Running balance  %s\n", cli.RenderSparkline(res.Statistics.RunningBalance))
	if n := len(res.Statistics.RunningBalance); n > 0 {
		ending := res.Statistics.RunningBalance[n-1]
		fmt.Printf("  Ending balance   %s\n", cli.RenderSigned(ending, cli.FormatMoney(ending)))
	}
	if len(run.risk.NegativePeriods) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.RenderWarning(fmt.Sprintf("Balance goes negative in %d of %d periods (first: %s)",
			len(run.risk.NegativePeriods), res.Horizon, run.risk.NegativePeriods[0])))
	}
	fmt.Println()
	fmt.Println("  " + cli.RenderMuted("run "+res.RunID))
	return nil
}

// renderSection prints a report section as a bordered table.
func renderSection(sec report.Section) string {
	rows := sec.Strings(cli.FormatMoney)
	if len(rows) == 0 {
		rows = [][]string{{"(no data)"}}
	}
	return cli.RenderTable(cli.Table{
		Title:   sec.Title,
		Headers: sec.Headers(),
		Rows:    rows,
	})
}
