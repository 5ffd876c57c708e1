package source

import "encoding/json"

// Format is the encoding of a ledger file.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// rawRow is one ledger record before normalization. CSV columns and JSONL
// keys share these names.
type rawRow struct {
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory,omitempty"`
	Amount      json.Number `json:"amount"`
	Direction   string      `json:"direction,omitempty"`
	FlowType    string      `json:"flowType,omitempty"`
	Description string      `json:"description,omitempty"`
}

// DiscoveredFile represents a ledger file found during directory scanning.
type DiscoveredFile struct {
	Path    string
	RelPath string // relative to the scanned root
	Account string // first directory under the root, "" for top-level files
	Format  Format
}
