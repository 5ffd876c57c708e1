package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/runway/internal/report"

	"github.com/spf13/cobra"
)

var flagNoScenarios bool

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Write the forecast report to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&flagNoScenarios, "no-scenarios", false, "Leave out the scenario comparison sheet")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("export path must end in .xlsx, got %q", path)
	}

	engine, run, err := runEngine(cmd)
	if err != nil {
		return err
	}

	rep := report.Build(run.result, run.risk)
	if !flagNoScenarios {
		results, err := engine.RunScenarios(run.result, run.cfg.ScenarioSpecs())
		if err != nil {
			return err
		}
		rep.AddScenarios(results)
	}

	if err := report.WriteXLSX(rep, path); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s (%d sheets)\n", path, len(rep.Sections))
	return nil
}
