// Package store provides a SQLite-backed ledger of imported transactions.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// dateLayout keeps stored dates lexically ordered.
const dateLayout = "2006-01-02T15:04:05Z"

// Ledger provides SQLite-backed transaction storage.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := ensureFlowTypeColumn(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// ensureFlowTypeColumn adds transactions.flow_type to older ledgers.
func ensureFlowTypeColumn(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(transactions)")
	if err != nil {
		return fmt.Errorf("inspect transactions table: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			defaultValue     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return fmt.Errorf("scan transactions table info: %w", err)
		}
		if name == "flow_type" {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read transactions table info: %w", err)
	}
	_ = rows.Close()

	_, err = db.Exec(flowTypeColumnSQL)
	return err
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (l *Ledger) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := l.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces every transaction previously imported from path with txs
// and records the file's mtime and size, in one transaction.
func (l *Ledger) SaveFile(path string, txs []model.Transaction, mtimeNs, sizeBytes int64) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
		mtime_ns = excluded.mtime_ns, size_bytes = excluded.size_bytes, parsed_at = excluded.parsed_at`,
		path, mtimeNs, sizeBytes, now)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM transactions WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO transactions
		(id, file_path, tx_date, category, subcategory, amount, direction, flow_type, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range txs {
		_, err = stmt.Exec(t.ID, path, t.Date.UTC().Format(dateLayout), t.Category, t.Subcategory,
			t.Amount, string(t.Direction), string(t.Flow()), t.Description)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// LoadTransactions reads transactions dated in [since, until), oldest first.
// A zero bound is open.
func (l *Ledger) LoadTransactions(since, until time.Time) ([]model.Transaction, error) {
	var where []string
	var args []any
	if !since.IsZero() {
		where = append(where, "tx_date >= ?")
		args = append(args, since.UTC().Format(dateLayout))
	}
	if !until.IsZero() {
		where = append(where, "tx_date < ?")
		args = append(args, until.UTC().Format(dateLayout))
	}

	q := `SELECT id, file_path, tx_date, category, subcategory, amount, direction, flow_type, description
		FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY tx_date, id"

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date, direction, flow string
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.SourceFile, &date, &t.Category, &t.Subcategory,
			&t.Amount, &direction, &flow, &description); err != nil {
			return nil, err
		}
		t.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: bad date %q: %w", t.ID, date, err)
		}
		t.Direction = model.Direction(direction)
		t.FlowType = model.FlowType(flow)
		if description.Valid {
			t.Description = description.String
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteFile removes a tracked file and the transactions imported from it.
func (l *Ledger) DeleteFile(path string) error {
	_, err := l.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// TransactionCount returns the number of stored transactions.
func (l *Ledger) TransactionCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// CategoryInfo summarizes the stored transactions of one category line.
type CategoryInfo struct {
	Category    string
	Subcategory string
	Direction   model.Direction
	Count       int
	Total       float64
	First, Last time.Time
}

// Categories lists every (category, subcategory, direction) seen in the ledger.
func (l *Ledger) Categories() ([]CategoryInfo, error) {
	rows, err := l.db.Query(`SELECT category, subcategory, direction,
		COUNT(*), SUM(amount), MIN(tx_date), MAX(tx_date)
		FROM transactions
		GROUP BY category, subcategory, direction
		ORDER BY category, subcategory, direction`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []CategoryInfo
	for rows.Next() {
		var ci CategoryInfo
		var direction, first, last string
		if err := rows.Scan(&ci.Category, &ci.Subcategory, &direction,
			&ci.Count, &ci.Total, &first, &last); err != nil {
			return nil, err
		}
		ci.Direction = model.Direction(direction)
		ci.First, _ = time.Parse(dateLayout, first)
		ci.Last, _ = time.Parse(dateLayout, last)
		out = append(out, ci)
	}
	return out, rows.Err()
}
