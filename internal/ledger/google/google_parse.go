package google

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finchat/internal/core"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006",
}

// parseBudgets builds the profile of userID from rows shaped
// user_id | category | amount. A blank category row is the monthly budget.
// The returned count is the number of rows for userID that could not be read.
func parseBudgets(values [][]interface{}, userID string) (core.UserProfile, int) {
	p := core.UserProfile{UserID: userID, CategoryBudgets: map[string]decimal.Decimal{}}
	skipped := 0
	for i, raw := range values {
		row := toStrings(raw)
		if i == 0 && isHeader(row) {
			continue
		}
		if safeGet(row, 0) != userID {
			continue
		}
		amount, ok := cellAmount(raw, 2)
		if !ok {
			skipped++
			continue
		}
		category := safeGet(row, 1)
		if category == "" {
			p.MonthlyBudget = amount
			continue
		}
		p.CategoryBudgets[category] = amount
	}
	return p, skipped
}

// parseTransactions reads rows shaped user_id | date | amount | category and
// keeps those of userID dated inside w.
func parseTransactions(values [][]interface{}, userID string, w core.Window, loc *time.Location) ([]core.Transaction, int) {
	var out []core.Transaction
	skipped := 0
	for i, raw := range values {
		row := toStrings(raw)
		if i == 0 && isHeader(row) {
			continue
		}
		if safeGet(row, 0) != userID {
			continue
		}
		date, err := cellDate(raw, 1, loc)
		if err != nil {
			skipped++
			continue
		}
		amount, ok := cellAmount(raw, 2)
		if !ok {
			skipped++
			continue
		}
		if !w.Contains(date) {
			continue
		}
		out = append(out, core.Transaction{Amount: amount, Date: date, Category: safeGet(row, 3)})
	}
	return out, skipped
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// cellDate reads a date cell. SERIAL_NUMBER renders real dates as float64
// day counts, which do not depend on the spreadsheet locale; text cells go
// through parseDate.
func cellDate(row []interface{}, idx int, loc *time.Location) (time.Time, error) {
	if idx >= len(row) {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if serial, ok := row[idx].(float64); ok {
		return serialDate(serial, loc), nil
	}
	return parseDate(fmt.Sprint(row[idx]), loc)
}

// serialDate converts a serial day count into the same wall-clock time in loc.
func serialDate(serial float64, loc *time.Location) time.Time {
	t := sheetsEpoch.Add(time.Duration(math.Round(serial*86400)) * time.Second)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// cellAmount reads a numeric cell. UNFORMATTED_VALUE renders numbers as
// float64; text cells go through the lenient money parser.
func cellAmount(row []interface{}, idx int) (decimal.Decimal, bool) {
	if idx >= len(row) {
		return decimal.Zero, false
	}
	switch v := row[idx].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := core.ParseAmount(v)
		return d, err == nil
	default:
		d, err := core.ParseAmount(fmt.Sprint(v))
		return d, err == nil
	}
}

func isHeader(row []string) bool {
	return strings.EqualFold(safeGet(row, 0), "user_id") || strings.EqualFold(safeGet(row, 0), "userid")
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
