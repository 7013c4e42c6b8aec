// Package parser matches candidate invoice lines against the fixed record
// pattern and normalizes the captured fields.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// linePattern captures, in order: source id, DD-MM-YYYY date, category token,
// $-prefixed amount with optional "." thousands separators, status token from
// the closed set, and the free-text description.
var linePattern = regexp.MustCompile(
	`(?i)(INV-\d{4}-\d{3})\s*(\d{2}-\d{2}-\d{4})\s*(\w+)\s*(\$[\d.]+)\s*(pendiente|activo|cancelado|completado)\s*(.+)`,
)

// Drop reasons reported in Result.Drops.
const (
	DropPatternMismatch = "pattern_mismatch"
	DropNormalization   = "normalization"
)

// Record is a normalized invoice record, valid for auditing and loading.
type Record struct {
	SourceID    string
	Date        string // YYYY-MM-DD
	Category    string
	Amount      decimal.Decimal
	Status      string
	Description string
}

// Drop describes a candidate line excluded from the output set.
type Drop struct {
	Line   string
	Reason string
	Err    error
}

// Result holds the outcome of parsing one candidate line set.
type Result struct {
	Records []Record
	Drops   []Drop
}

// Parse attempts to match every candidate line. Lines that do not fit the
// pattern or whose fields fail normalization are reported in Drops, never as
// an error: a bad line must not abort the run.
func Parse(lines []string) Result {
	var result Result

	for _, line := range lines {
		clean := strings.TrimSpace(line)

		match := linePattern.FindStringSubmatch(clean)
		if match == nil {
			result.Drops = append(result.Drops, Drop{Line: clean, Reason: DropPatternMismatch})
			continue
		}

		rec, err := normalize(match)
		if err != nil {
			result.Drops = append(result.Drops, Drop{Line: clean, Reason: DropNormalization, Err: err})
			continue
		}

		result.Records = append(result.Records, rec)
	}

	return result
}

func normalize(match []string) (Record, error) {
	date, err := normalizeDate(match[2])
	if err != nil {
		return Record{}, err
	}

	amount, err := normalizeAmount(match[4])
	if err != nil {
		return Record{}, err
	}

	return Record{
		SourceID:    match[1],
		Date:        date,
		Category:    strings.TrimSpace(match[3]),
		Amount:      amount,
		Status:      normalizeStatus(match[5]),
		Description: strings.TrimSpace(match[6]),
	}, nil
}

// normalizeDate rewrites DD-MM-YYYY to YYYY-MM-DD. The reordered value must
// be a real calendar date: an out-of-range day or month would otherwise fail
// only later, at the database, turning one bad line into a fatal run error.
func normalizeDate(raw string) (string, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid date %q", raw)
	}

	iso := fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0])
	if _, err := time.Parse("2006-01-02", iso); err != nil {
		return "", fmt.Errorf("invalid calendar date %q: %w", raw, err)
	}
	return iso, nil
}

// normalizeAmount strips the currency symbol and "." thousands separators.
// The source format never uses "." as a decimal point.
func normalizeAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimPrefix(raw, "$")
	s = strings.ReplaceAll(s, ".", "")

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

// normalizeStatus lower-cases the status and strips a single trailing period.
func normalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimSuffix(s, ".")
}
