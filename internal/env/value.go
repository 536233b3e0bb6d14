package env

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a compile-time variable value: bool, float64, string, Null or
// Undefined. Numbers are always float64 so NaN and Infinity behave like the
// dynamic host language the preprocessed sources are written in.
type Value interface{}

type nullValue struct{}
type undefinedValue struct{}

// Null and Undefined are the two non-scalar sentinel values.
var (
	Null      Value = nullValue{}
	Undefined Value = undefinedValue{}
)

// IsNull reports whether v is the null value.
func IsNull(v Value) bool {
	_, ok := v.(nullValue)
	return ok
}

// IsUndefined reports whether v is the undefined value.
func IsUndefined(v Value) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// Truthy applies standard dynamic-language truthiness: false, 0, NaN, the
// empty string, null and undefined are falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return false
	}
}

// Number converts v to a float64 the way the host language does:
// booleans become 0/1, null becomes 0, undefined becomes NaN and strings are
// parsed (empty string is 0, unparsable is NaN).
func Number(v Value) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case nullValue:
		return 0
	default:
		return math.NaN()
	}
}

// Text renders v the way string concatenation sees it: strings stay bare,
// everything else matches Render.
func Text(v Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Render(v)
}

// Render returns the literal source rendering of v: true/false, a numeric
// literal, a quoted string, null, undefined, NaN or Infinity. This is the
// text substituted into output code.
func Render(v Value) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return renderNumber(t)
	case string:
		return strconv.Quote(t)
	case nullValue:
		return "null"
	default:
		return "undefined"
	}
}

func renderNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// Normalize converts an arbitrary configuration value (as produced by YAML or
// a literal Go map) into a Value. Integers widen to float64, nil maps to Null
// and unsupported types collapse to their string form.
func Normalize(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case bool, float64, string:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case nullValue, undefinedValue:
		return t
	default:
		return fmt.Sprint(t)
	}
}
