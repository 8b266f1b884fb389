package snowflake

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// isoTimestamp matches the millisecond UTC rendering dashboards already parse.
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

var numericTypes = map[string]bool{
	"FIXED":   true,
	"NUMBER":  true,
	"DECIMAL": true,
	"REAL":    true,
	"FLOAT":   true,
	"DOUBLE":  true,
}

// normalizeValue maps a scanned driver value onto the JSON-friendly scalars the
// API serves: string, int64, float64, bool, nil. NUMBER columns arrive as text
// from the driver and are parsed; timestamps become ISO-8601 strings.
func normalizeValue(v any, dbType string) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeString(string(val), dbType)
	case string:
		return normalizeString(val, dbType)
	case time.Time:
		if strings.EqualFold(dbType, "DATE") {
			return val.Format("2006-01-02")
		}
		return val.UTC().Format(isoTimestamp)
	case bool, int64, float64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int16:
		return int64(val)
	case int8:
		return int64(val)
	case float32:
		return float64(val)
	case *big.Int:
		if val.IsInt64() {
			return val.Int64()
		}
		f, _ := new(big.Float).SetInt(val).Float64()
		return f
	case *big.Float:
		if val.IsInt() {
			if i, acc := val.Int64(); acc == big.Exact {
				return i
			}
		}
		f, _ := val.Float64()
		return f
	default:
		return fmt.Sprint(val)
	}
}

func normalizeString(s, dbType string) any {
	if !numericTypes[strings.ToUpper(dbType)] {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
