package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/source"
)

// writeBenchLedger generates files*rows synthetic transactions.
func writeBenchLedger(b *testing.B, files, rows int) string {
	b.Helper()
	dir := b.TempDir()
	cats := []string{"Revenue,Sales,inflow", "Revenue,Services,inflow", "Operating,Rent,outflow", "Operating,Payroll,outflow"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for f := 0; f < files; f++ {
		var sb strings.Builder
		sb.WriteString("date,category,subcategory,direction,amount\n")
		for r := 0; r < rows; r++ {
			d := start.AddDate(0, 0, r%730)
			fmt.Fprintf(&sb, "%s,%s,%d.%02d\n", d.Format(time.DateOnly), cats[r%len(cats)], 10+r%900, r%100)
		}
		path := filepath.Join(dir, fmt.Sprintf("acct%02d", f%4), fmt.Sprintf("ledger%03d.csv", f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkLoad(b *testing.B) {
	dir := writeBenchLedger(b, 32, 2000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load(dir, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := writeBenchLedger(b, 1, 20000)

	files, err := source.ScanDir(dir)
	if err != nil {
		b.Fatal(err)
	}
	if len(files) != 1 {
		b.Fatalf("found %d files, want 1", len(files))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := source.ParseFile(files[0])
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkBucketSeries(b *testing.B) {
	dir := writeBenchLedger(b, 8, 5000)
	result, err := Load(dir, nil)
	if err != nil {
		b.Fatal(err)
	}
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BucketSeries(result.Transactions, forecast.Weekly, end, 104)
	}
}
