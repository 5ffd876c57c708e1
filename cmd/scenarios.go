package cmd

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/report"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Compare the forecast under the configured scenarios",
	Long: "Rescale projected inflows and outflows per scenario (see [[scenarios]] in the\n" +
		"config file; base, conservative and optimistic by default) and compare outcomes.",
	RunE: runScenarios,
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	engine, run, err := runEngine(cmd)
	if err != nil {
		return err
	}

	results, err := engine.RunScenarios(run.result, run.cfg.ScenarioSpecs())
	if err != nil {
		return err
	}

	var rep report.Report
	rep.AddScenarios(results)
	sec, _ := rep.Section(report.Scenarios)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIOS  %d %s periods", run.result.Horizon, run.result.Cadence)))
	fmt.Println()
	fmt.Print(renderSection(sec))
	fmt.Println()

	nameW := 0
	for _, sr := range results {
		nameW = max(nameW, len(sr.Name))
	}
	for _, sr := range results {
		fmt.Printf("  %-*s  %s  break-even %s\n", nameW, sr.Name,
			cli.RenderSparkline(sr.Statistics.RunningBalance),
			report.BreakEvenText(sr.Metrics))
	}
	return nil
}
