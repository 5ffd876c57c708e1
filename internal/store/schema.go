package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    tx_date              TEXT NOT NULL,
    category             TEXT NOT NULL,
    subcategory          TEXT NOT NULL DEFAULT '',
    amount               REAL NOT NULL,
    direction            TEXT NOT NULL CHECK (direction IN ('inflow', 'outflow')),
    flow_type            TEXT NOT NULL DEFAULT 'operating',
    description          TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(tx_date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category, subcategory);
CREATE INDEX IF NOT EXISTS idx_transactions_file ON transactions(file_path);
`

// flowTypeColumnSQL backfills ledgers created before flow types existed.
const flowTypeColumnSQL = `ALTER TABLE transactions ADD COLUMN flow_type TEXT NOT NULL DEFAULT 'operating'`
