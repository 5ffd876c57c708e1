package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/store"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func seedLedgerDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "checking", "jan.csv"),
		"date,category,subcategory,amount,direction\n"+
			"2026-01-05,Revenue,Sales,100,inflow\n"+
			"2026-01-06,Operating,Rent,60,outflow\n"+
			"garbage,Revenue,Sales,1,inflow\n")
	writeFile(t, filepath.Join(dir, "card", "jan.jsonl"),
		`{"date":"2026-01-07","category":"Operating","subcategory":"SaaS","amount":-20}`+"\n")
	writeFile(t, filepath.Join(dir, "broken.csv"), "date,amount\n2026-01-05,1\n")
	return dir
}

func TestLoad(t *testing.T) {
	dir := seedLedgerDir(t)

	var calls atomic.Int64
	result, err := Load(dir, func(current, total int) {
		calls.Add(1)
		assert.LessOrEqual(t, current, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, 2, result.ParsedFiles)
	assert.Equal(t, 1, result.FileErrors)
	assert.Equal(t, 1, result.ParseErrors)
	assert.Equal(t, 3, result.AccountCount)
	assert.Len(t, result.Transactions, 3)
	assert.Equal(t, int64(3), calls.Load())
}

func TestLoad_MissingDir(t *testing.T) {
	result, err := Load(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	assert.Zero(t, result.TotalFiles)
	assert.Empty(t, result.Transactions)
}

func TestLoadWithCache(t *testing.T) {
	dir := seedLedgerDir(t)
	ledger, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer func() { _ = ledger.Close() }()

	first, err := LoadWithCache(dir, ledger, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)
	assert.Equal(t, 3, first.Reparsed)
	assert.Len(t, first.Transactions, 3)

	n, err := ledger.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	second, err := LoadWithCache(dir, ledger, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, 1, second.Reparsed) // the broken file is never tracked
	assert.Len(t, second.Transactions, 3)

	// Modify one file, delete another.
	jan := filepath.Join(dir, "checking", "jan.csv")
	writeFile(t, jan, "date,category,amount\n2026-01-05,Revenue,100\n2026-01-12,Revenue,110\n2026-01-19,Revenue,120\n")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(jan, future, future))
	require.NoError(t, os.Remove(filepath.Join(dir, "card", "jan.jsonl")))

	third, err := LoadWithCache(dir, ledger, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, third.CacheHits)
	assert.Equal(t, 1, third.Removed)
	assert.Len(t, third.Transactions, 3)

	n, err = ledger.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWithinDir(t *testing.T) {
	assert.True(t, withinDir("/data", "/data/a.csv"))
	assert.True(t, withinDir("/data", "/data/x/..b.csv"))
	assert.False(t, withinDir("/data", "/other/a.csv"))
	assert.False(t, withinDir("/data", "/data2/a.csv"))
}
