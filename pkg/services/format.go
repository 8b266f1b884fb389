package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
)

// formatNumber renders n with thousands separators and at most two
// fraction digits.
func formatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return humanize.Commaf(math.Round(n*100) / 100)
}

// formatScalar renders one result value for chat display.
func formatScalar(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case int64:
		return humanize.Comma(n)
	case int:
		return humanize.Comma(int64(n))
	case int32:
		return humanize.Comma(int64(n))
	case float64:
		return formatNumber(n)
	case float32:
		return formatNumber(float64(n))
	case string:
		return n
	case time.Time:
		return n.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// renderRow flattens a row into "**COL**: value" pairs in column order.
// Columns missing from the declared list follow in name order.
func renderRow(columns []string, row warehouse.Row) string {
	seen := make(map[string]bool, len(columns))
	parts := make([]string, 0, len(row))

	for _, col := range columns {
		v, ok := row[col]
		if !ok {
			continue
		}
		seen[col] = true
		parts = append(parts, fmt.Sprintf("**%s**: %s", col, formatScalar(v)))
	}
	var extra []string
	for col := range row {
		if !seen[col] {
			extra = append(extra, col)
		}
	}
	sort.Strings(extra)
	for _, col := range extra {
		parts = append(parts, fmt.Sprintf("**%s**: %s", col, formatScalar(row[col])))
	}

	return strings.Join(parts, ", ")
}

// foundResults is the default answer text when the model gave none.
func foundResults(n int) string {
	word := "result"
	if n != 1 {
		word = inflection.Plural(word)
	}
	return fmt.Sprintf("Found %d %s.", n, word)
}
