package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/report"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the bucketed ledger history the forecast is built from",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	cadence, err := resolveCadence(cfg)
	if err != nil {
		return err
	}

	result, err := loadData(dataDir(cfg))
	if err != nil {
		return err
	}
	reportLoadWarnings(result)
	if len(result.Transactions) == 0 {
		fmt.Println("\n  No transactions found.")
		fmt.Printf("  Add .csv or .jsonl files to %s, then run `runway import`.\n", dataDir(cfg))
		return nil
	}

	end := time.Now()
	if flagStartDate != "" {
		if end, err = time.Parse(time.DateOnly, flagStartDate); err != nil {
			return fmt.Errorf("--start-date: %w", err)
		}
	}
	periods := cfg.General.HistoryPeriods

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER HISTORY  %d %s periods", periods, cadence)))
	fmt.Println()

	totals := pipeline.AggregatePeriods(result.Transactions, cadence, end, periods)
	rows := make([][]string, 0, len(totals))
	nets := make([]float64, len(totals))
	for i, pt := range totals {
		nets[i] = pt.Net
		rows = append(rows, []string{
			periodLabel(pt.Start, cadence),
			cli.FormatNumber(int64(pt.Count)),
			cli.FormatMoney(pt.Inflows),
			cli.FormatMoney(pt.Outflows),
			cli.RenderSigned(pt.Net, cli.FormatMoney(pt.Net)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Totals",
		Headers: []string{"Period", "Txns", "Inflows", "Outflows", "Net"},
		Rows:    rows,
	}))
	fmt.Printf("\n  Net flow  %s\n\n", cli.RenderSparkline(nets))

	st := pipeline.CashFlowStatement(result.Transactions, cadence, end, periods)
	stRows := make([][]string, 0, len(model.FlowTypes)+2)
	for _, ft := range model.FlowTypes {
		stRows = append(stRows, []string{
			flowTitle(ft),
			cli.RenderSigned(st.Net[ft], cli.FormatMoney(st.Net[ft])),
			cli.FormatMoney(st.PerPeriod(ft)),
		})
	}
	stRows = append(stRows, cli.SeparatorRow, []string{
		"Net change in cash",
		cli.RenderSigned(st.Total(), cli.FormatMoney(st.Total())),
		cli.FormatMoney(st.Total() / float64(max(1, st.Periods))),
	})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Cash Flow Statement",
		Headers: []string{"Activity", "Net", "Per period"},
		Rows:    stRows,
	}))
	fmt.Println()

	opening := cfg.Forecast.StartingBalance
	if bal := startingBalanceOverride(cmd); bal != nil {
		opening = *bal
	}
	burn := pipeline.SummarizeBurn(totals, opening, cadence)
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Burn",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Mean burn per period", cli.FormatMoney(burn.MeanBurn)},
			{"Burn trend", burn.Trend},
			{"Burn volatility", cli.FormatMoney(burn.Volatility)},
			{"Cash after history", cli.RenderSigned(burn.Cash, cli.FormatMoney(burn.Cash))},
			{"Days cash on hand", report.DaysText(burn.DaysCashOnHand)},
		},
	}))
	fmt.Println()

	series := pipeline.BucketSeries(result.Transactions, cadence, end, periods)
	keys := make([]pipeline.SeriesKey, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Direction != keys[j].Direction {
			return keys[i].Direction == model.Inflow
		}
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].Subcategory < keys[j].Subcategory
	})

	seriesRows := make([][]string, 0, len(keys))
	for _, k := range keys {
		values := series[k]
		var sum float64
		for _, v := range values {
			sum += v
		}
		seriesRows = append(seriesRows, []string{
			k.Category,
			k.Subcategory,
			string(k.Direction),
			cli.FormatMoney(sum / float64(len(values))),
			cli.RenderSparkline(values),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Series",
		Headers:  []string{"Category", "Subcategory", "Direction", "Mean", "Trend"},
		Rows:     seriesRows,
		LeftCols: 3,
	}))
	return nil
}

func flowTitle(ft model.FlowType) string {
	switch ft {
	case model.Investing:
		return "Investing activities"
	case model.Financing:
		return "Financing activities"
	default:
		return "Operating activities"
	}
}

// periodLabel names a history bucket by its first day, or its month.
func periodLabel(start time.Time, cadence forecast.Cadence) string {
	if cadence == forecast.Monthly {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}
