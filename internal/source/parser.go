// Package source discovers and parses CSV and JSONL ledger files.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/runway/internal/model"
)

// ParseResult holds the output of parsing a single ledger file.
type ParseResult struct {
	Transactions []model.Transaction
	ParseErrors  int
	Err          error
}

// Columns every CSV ledger must carry. subcategory, direction, flow_type and
// description are optional.
var requiredColumns = []string{"date", "category", "amount"}

// idNamespace scopes transaction IDs so re-importing a file yields the same IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("runway/ledger"))

var amountCleaner = strings.NewReplacer("$", "", ",", "", "_", "", " ", "")

// ParseFile reads a ledger file. Rows that fail to parse are counted in
// ParseErrors and skipped; only I/O and header problems set Err.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	switch df.Format {
	case FormatCSV:
		return parseCSV(f, df.Path)
	case FormatJSONL:
		return parseJSONL(f, df.Path)
	default:
		return ParseResult{Err: fmt.Errorf("unsupported ledger format %q", df.Format)}
	}
}

func parseCSV(r io.Reader, path string) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}
		}
		return ParseResult{Err: fmt.Errorf("reading header: %w", err)}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return ParseResult{Err: fmt.Errorf("missing column %q in %s", c, path)}
		}
	}
	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var res ParseResult
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.ParseErrors++
				continue
			}
			res.Err = err
			return res
		}

		row := rawRow{
			Date:        get(rec, "date"),
			Category:    get(rec, "category"),
			Subcategory: get(rec, "subcategory"),
			Amount:      json.Number(get(rec, "amount")),
			Direction:   get(rec, "direction"),
			FlowType:    get(rec, "flow_type"),
			Description: get(rec, "description"),
		}
		tx, err := normalize(row, path, line)
		if err != nil {
			res.ParseErrors++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func parseJSONL(r io.Reader, path string) ParseResult {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}

		var row rawRow
		if err := json.Unmarshal(raw, &row); err != nil {
			res.ParseErrors++
			continue
		}
		tx, err := normalize(row, path, line)
		if err != nil {
			res.ParseErrors++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

// normalize validates a row and turns it into a transaction. A blank
// direction takes the sign of the amount; the stored amount is always
// positive.
func normalize(row rawRow, path string, line int) (model.Transaction, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	category := strings.TrimSpace(row.Category)
	if category == "" {
		return model.Transaction{}, errors.New("missing category")
	}
	amount, err := parseAmount(string(row.Amount))
	if err != nil {
		return model.Transaction{}, err
	}

	dir, err := parseDirection(row.Direction, amount)
	if err != nil {
		return model.Transaction{}, err
	}
	flow, err := parseFlowType(row.FlowType)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		ID:          uuid.NewSHA1(idNamespace, []byte(path+":"+strconv.Itoa(line))).String(),
		Date:        date,
		Category:    category,
		Subcategory: strings.TrimSpace(row.Subcategory),
		Amount:      math.Abs(amount),
		Direction:   dir,
		FlowType:    flow,
		Description: row.Description,
		SourceFile:  path,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

func parseAmount(s string) (float64, error) {
	s = amountCleaner.Replace(strings.TrimSpace(s))
	negative := false
	// accounting style: (1200.00)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	if negative {
		v = -v
	}
	return v, nil
}

func parseDirection(s string, amount float64) (model.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inflow", "in", "credit", "income":
		return model.Inflow, nil
	case "outflow", "out", "debit", "expense":
		return model.Outflow, nil
	case "":
		if amount < 0 {
			return model.Outflow, nil
		}
		return model.Inflow, nil
	default:
		return "", fmt.Errorf("bad direction %q", s)
	}
}

func parseFlowType(s string) (model.FlowType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "operating", "operations", "op":
		return model.Operating, nil
	case "investing", "investment", "capex", "inv":
		return model.Investing, nil
	case "financing", "finance", "fin":
		return model.Financing, nil
	default:
		return "", fmt.Errorf("bad flow type %q", s)
	}
}
