// Package coerce converts loosely-typed spreadsheet scalars into the
// native types the database driver can bind. It is the last step before
// any value reaches a query parameter.
package coerce

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stockflow-importer/internal/util"

	"go.uber.org/zap"
)

// DefaultPrecision is the decimal precision applied to floats.
const DefaultPrecision = 2

// Error reports a value that cannot be represented as a native scalar.
// It carries the original value and its Go type for diagnosis.
type Error struct {
	Value  any
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("coerce: %s (value=%v, type=%T)", e.Reason, e.Value, e.Value)
}

var integerPattern = regexp.MustCompile(`^[+-]?\d+$`)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"01-02-06",
	"2-Jan-2006",
	"02-Jan-2006",
	time.RFC3339,
}

// Round rounds half away from zero at prec decimals and normalizes a
// resulting negative zero to 0.0.
func Round(f float64, prec int) float64 {
	shift := math.Pow(10, float64(prec))
	r := math.Round(f*shift) / shift
	if r == 0 {
		return 0
	}
	return r
}

// Native converts v into one of {nil, int64, float64, string, time.Time}.
//
// Missing forms (nil, NaN, "", "none", "nan" case-insensitively) map to
// nil. Integers stay exact integers. Floats are rounded at prec. A string
// that fails numeric parsing degrades to its string form; that event is
// logged and counted rather than swallowed. Only a value whose Go type
// has no native representation at all returns an *Error.
func Native(v any, prec int) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return int64(val), nil
	case float32:
		return Native(float64(val), prec)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, nil
		}
		return Round(val, prec), nil
	case bool:
		return strconv.FormatBool(val), nil
	case time.Time:
		return val, nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return *val, nil
	case string:
		return nativeString(val, prec), nil
	default:
		return nil, &Error{Value: v, Reason: "unsupported source type"}
	}
}

func nativeString(s string, prec int) any {
	trimmed := strings.TrimSpace(s)
	if IsMissing(trimmed) {
		return nil
	}
	// Spreadsheet exports use comma decimals; normalize before parsing.
	numeric := strings.ReplaceAll(trimmed, ",", ".")
	if integerPattern.MatchString(numeric) {
		if n, err := strconv.ParseInt(numeric, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(numeric, 64); err == nil {
		return Round(f, prec)
	}
	if t, ok := parseDate(trimmed); ok {
		return t
	}
	// Numeric conversion failed; degrade to string and count it so the
	// data-quality signal is not lost.
	util.CoercionStringFallbacksTotal.Inc()
	util.GetLogger().Debug("coercion degraded to string", zap.String("value", trimmed))
	return trimmed
}

// IsMissing reports whether a trimmed string is one of the textual
// missing-value markers.
func IsMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "none", "nan":
		return true
	}
	return false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Float converts v to a float64, nil when missing. A value that cannot
// become a number is a fatal coercion error for the caller's batch.
func Float(v any) (*float64, error) {
	n, err := Native(v, DefaultPrecision)
	if err != nil {
		return nil, err
	}
	switch val := n.(type) {
	case nil:
		return nil, nil
	case int64:
		f := float64(val)
		return &f, nil
	case float64:
		return &val, nil
	default:
		return nil, &Error{Value: v, Reason: "not convertible to float"}
	}
}

// FloatOr is Float with a default for missing values.
func FloatOr(v any, def float64) (float64, error) {
	f, err := Float(v)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return def, nil
	}
	return *f, nil
}

// Int converts v to an int64, nil when missing. Integral floats are
// accepted; anything else is a fatal coercion error.
func Int(v any) (*int64, error) {
	n, err := Native(v, DefaultPrecision)
	if err != nil {
		return nil, err
	}
	switch val := n.(type) {
	case nil:
		return nil, nil
	case int64:
		return &val, nil
	case float64:
		i := int64(val)
		return &i, nil
	default:
		return nil, &Error{Value: v, Reason: "not convertible to int"}
	}
}

// IntOr is Int with a default for missing values.
func IntOr(v any, def int64) (int64, error) {
	i, err := Int(v)
	if err != nil {
		return 0, err
	}
	if i == nil {
		return def, nil
	}
	return *i, nil
}

// Date converts v to a time.Time, nil when missing.
func Date(v any) (*time.Time, error) {
	n, err := Native(v, DefaultPrecision)
	if err != nil {
		return nil, err
	}
	switch val := n.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &val, nil
	case string:
		if t, ok := parseDate(val); ok {
			return &t, nil
		}
		return nil, &Error{Value: v, Reason: "not convertible to date"}
	default:
		return nil, &Error{Value: v, Reason: "not convertible to date"}
	}
}

// String converts v to its string form, empty when missing.
func String(v any) (string, error) {
	n, err := Native(v, DefaultPrecision)
	if err != nil {
		return "", err
	}
	switch val := n.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case time.Time:
		return val.Format("2006-01-02"), nil
	default:
		return "", &Error{Value: v, Reason: "not convertible to string"}
	}
}
