package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/store"
)

// CachedLoadResult extends LoadResult with ledger metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Removed   int // tracked files no longer on disk
}

// LoadWithCache discovers ledger files, diffs them against the ledger's file
// tracker, parses only changed files and stores their transactions.
func LoadWithCache(dir string, ledger *store.Ledger, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles:   len(files),
			AccountCount: source.CountAccounts(files),
		},
	}

	tracked, err := ledger.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	// Diff: partition into changed and unchanged
	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})
	seen := make(map[string]struct{}, len(files))

	for _, f := range files {
		seen[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	for path := range tracked {
		if _, ok := seen[path]; ok || !withinDir(dir, path) {
			continue
		}
		if err := ledger.DeleteFile(path); err == nil {
			result.Removed++
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	if len(unchanged) > 0 {
		cached, err := ledger.LoadTransactions(time.Time{}, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("loading ledger transactions: %w", err)
		}
		for _, tx := range cached {
			if _, ok := unchanged[tx.SourceFile]; ok {
				result.Transactions = append(result.Transactions, tx)
			}
		}
		result.ParsedFiles += len(unchanged)
	}

	if len(toReparse) > 0 {
		results := parseAll(toReparse, result.CacheHits, result.TotalFiles, progressFn)

		for i, pr := range results {
			if pr.Err != nil {
				result.FileErrors++
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += pr.ParseErrors
			result.Transactions = append(result.Transactions, pr.Transactions...)

			info, err := os.Stat(toReparse[i].Path)
			if err == nil {
				_ = ledger.SaveFile(toReparse[i].Path, pr.Transactions, info.ModTime().UnixNano(), info.Size())
			}
		}
	}

	return result, nil
}

func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && (len(rel) < 3 || rel[:3] != ".."+string(filepath.Separator))
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "runway")
}

// LedgerPath returns the full path to the ledger database.
func LedgerPath() string {
	return filepath.Join(CacheDir(), "ledger.db")
}
