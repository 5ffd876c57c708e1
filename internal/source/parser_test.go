package source

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

// writeLedger creates a temp ledger file and returns a DiscoveredFile for it.
func writeLedger(t *testing.T, name string, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	format, ok := formatOf(name)
	if !ok {
		t.Fatalf("unsupported ledger name %q", name)
	}
	return DiscoveredFile{Path: path, RelPath: name, Format: format}
}

func TestParseFile_CSV(t *testing.T) {
	df := writeLedger(t, "bank.csv",
		`date,category,subcategory,amount,direction,description`,
		`2026-01-05,Revenue,Subscriptions,1200.50,inflow,January MRR`,
		`2026-01-06,Operating,Rent,"2,000",outflow,Office`,
		`2026-01-07,Operating,Travel,-150,,Flights`,
		`2026-01-08,Operating,Refund,(40),,Chargeback`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 0 {
		t.Fatalf("ParseErrors = %d, want 0", result.ParseErrors)
	}
	if len(result.Transactions) != 4 {
		t.Fatalf("len(Transactions) = %d, want 4", len(result.Transactions))
	}

	first := result.Transactions[0]
	if first.Direction != model.Inflow || first.Amount != 1200.50 {
		t.Errorf("first = %+v, want inflow 1200.50", first)
	}
	if !first.Date.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want 2026-01-05", first.Date)
	}
	if first.SourceFile != df.Path || first.ID == "" {
		t.Errorf("SourceFile = %q, ID = %q", first.SourceFile, first.ID)
	}

	if got := result.Transactions[1].Amount; got != 2000 {
		t.Errorf("thousands separator: Amount = %v, want 2000", got)
	}
	travel := result.Transactions[2]
	if travel.Direction != model.Outflow || travel.Amount != 150 {
		t.Errorf("signed amount: got %s %v, want outflow 150", travel.Direction, travel.Amount)
	}
	if got := result.Transactions[3].Signed(); got != -40 {
		t.Errorf("accounting negative: Signed() = %v, want -40", got)
	}
}

func TestParseFile_CSVColumnOrderAndOptionalColumns(t *testing.T) {
	df := writeLedger(t, "min.csv",
		`Amount, Date, Category`,
		`99, 2026-02-01, Revenue`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Transactions) != 1 {
		t.Fatalf("len(Transactions) = %d, want 1", len(result.Transactions))
	}
	tx := result.Transactions[0]
	if tx.Amount != 99 || tx.Category != "Revenue" || tx.Subcategory != "" {
		t.Errorf("tx = %+v", tx)
	}
}

func TestParseFile_CSVMissingColumn(t *testing.T) {
	df := writeLedger(t, "bad.csv",
		`date,subcategory,amount`,
		`2026-01-05,Rent,10`,
	)
	result := ParseFile(df)
	if result.Err == nil {
		t.Fatal("expected error for missing category column")
	}
}

func TestParseFile_CSVMalformedRows(t *testing.T) {
	df := writeLedger(t, "mixed.csv",
		`date,category,amount,direction`,
		`2026-01-05,Revenue,100,inflow`,
		`yesterday,Revenue,100,inflow`,
		`2026-01-06,,100,inflow`,
		`2026-01-07,Revenue,lots,inflow`,
		`2026-01-08,Revenue,100,sideways`,
		`# a comment line`,
		`2026-01-09,Revenue,100,in`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	// Malformed rows should be counted, not cause a fatal error.
	if result.ParseErrors != 4 {
		t.Errorf("ParseErrors = %d, want 4", result.ParseErrors)
	}
	if len(result.Transactions) != 2 {
		t.Errorf("len(Transactions) = %d, want 2", len(result.Transactions))
	}
}

func TestParseFile_JSONL(t *testing.T) {
	df := writeLedger(t, "card.jsonl",
		`{"date":"2026-01-05","category":"Operating","subcategory":"SaaS","amount":49.99,"direction":"outflow"}`,
		``,
		`not json at all`,
		`{"date":"2026-01-06T09:30:00Z","category":"Revenue","amount":"250"}`,
		`{"date":"2026-01-07","category":"Revenue","amount":-12.5}`,
		`{"date":"2026-01-08","amount":5}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", result.ParseErrors)
	}
	if len(result.Transactions) != 3 {
		t.Fatalf("len(Transactions) = %d, want 3", len(result.Transactions))
	}
	if got := result.Transactions[0].Signed(); got != -49.99 {
		t.Errorf("Signed() = %v, want -49.99", got)
	}
	if got := result.Transactions[1].Amount; got != 250 {
		t.Errorf("quoted amount = %v, want 250", got)
	}
	if got := result.Transactions[2].Direction; got != model.Outflow {
		t.Errorf("negative amount direction = %s, want outflow", got)
	}
}

func TestParseFile_StableIDs(t *testing.T) {
	df := writeLedger(t, "a.csv",
		`date,category,amount`,
		`2026-01-05,Revenue,1`,
		`2026-01-05,Revenue,1`,
	)
	first := ParseFile(df)
	second := ParseFile(df)
	if len(first.Transactions) != 2 {
		t.Fatalf("len(Transactions) = %d, want 2", len(first.Transactions))
	}
	if first.Transactions[0].ID == first.Transactions[1].ID {
		t.Error("identical rows should still get distinct IDs")
	}
	if first.Transactions[0].ID != second.Transactions[0].ID {
		t.Error("re-parsing should yield the same IDs")
	}
}

func TestParseFile_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	result := ParseFile(DiscoveredFile{Path: path, Format: FormatCSV})
	if result.Err != nil {
		t.Fatalf("unexpected error on empty file: %v", result.Err)
	}
	if len(result.Transactions) != 0 || result.ParseErrors != 0 {
		t.Error("expected nothing from an empty file")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"12.5", 12.5, true},
		{"$1,234.00", 1234, true},
		{"(300)", -300, true},
		{"-7", -7, true},
		{"1_000", 1000, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"twelve", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("parseAmount(%q) err = %v, want ok=%v", tt.input, err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// FuzzParseAmount checks the amount parser never panics and never returns a
// non-finite value, since it processes untrusted files.
func FuzzParseAmount(f *testing.F) {
	f.Add("12.5")
	f.Add("$1,234.00")
	f.Add("(300)")
	f.Add("()")
	f.Add("(")
	f.Add("1e400")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		v, err := parseAmount(s)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			t.Errorf("parseAmount(%q) = %v, want finite", s, v)
		}
	})
}

func TestParseFile_FlowType(t *testing.T) {
	df := writeLedger(t, "bank.csv",
		`date,category,amount,flow_type`,
		`2026-01-05,Revenue,100,`,
		`2026-01-06,Equipment,-900,capex`,
		`2026-01-07,Loan,5000,Financing`,
		`2026-01-08,Other,10,sideways`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", result.ParseErrors)
	}
	want := []model.FlowType{model.Operating, model.Investing, model.Financing}
	if len(result.Transactions) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(result.Transactions), len(want))
	}
	for i, w := range want {
		if got := result.Transactions[i].FlowType; got != w {
			t.Errorf("tx %d FlowType = %q, want %q", i, got, w)
		}
	}
}

func TestParseFile_JSONLFlowType(t *testing.T) {
	df := writeLedger(t, "bank.jsonl",
		`{"date":"2026-01-05","category":"Equity","amount":25000,"flowType":"financing"}`,
	)
	result := ParseFile(df)
	if len(result.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1 (err %v)", len(result.Transactions), result.Err)
	}
	if got := result.Transactions[0].FlowType; got != model.Financing {
		t.Errorf("FlowType = %q, want financing", got)
	}
}
