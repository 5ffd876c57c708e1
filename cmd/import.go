package cmd

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest ledger files into the SQLite ledger",
	Long:  "Parse new or changed .csv/.jsonl files under the data directory and store their transactions.",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	dir := dataDir(cfg)

	ledger, err := store.Open(pipeline.LedgerPath())
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	progressFn := func(current, total int) {
		if !flagQuiet {
			fmt.Printf("\r  Importing [%d/%d]", current, total)
		}
	}
	cr, err := pipeline.LoadWithCache(dir, ledger, progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet && cr.TotalFiles > 0 {
		fmt.Println()
	}

	stored, err := ledger.TransactionCount()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LEDGER IMPORT"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Count"},
		Rows: [][]string{
			{"Files found", cli.FormatNumber(int64(cr.TotalFiles))},
			{"Unchanged", cli.FormatNumber(int64(cr.CacheHits))},
			{"Imported", cli.FormatNumber(int64(cr.Reparsed))},
			{"Removed", cli.FormatNumber(int64(cr.Removed))},
			{"Unreadable", cli.FormatNumber(int64(cr.FileErrors))},
			{"Malformed rows", cli.FormatNumber(int64(cr.ParseErrors))},
			cli.SeparatorRow,
			{"Transactions stored", cli.FormatNumber(int64(stored))},
		},
	}))

	cats, err := ledger.Categories()
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Printf("\n  No transactions yet. Drop .csv or .jsonl files into %s\n", dir)
		return nil
	}

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		total := c.Total
		if c.Direction == model.Outflow {
			total = -total
		}
		rows = append(rows, []string{
			c.Category,
			c.Subcategory,
			cli.FormatNumber(int64(c.Count)),
			cli.RenderSigned(total, cli.FormatMoney(total)),
			c.First.Format("2006-01-02"),
			c.Last.Format("2006-01-02"),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Categories",
		Headers:  []string{"Category", "Subcategory", "Count", "Total", "First", "Last"},
		Rows:     rows,
		LeftCols: 2,
	}))
	return nil
}
