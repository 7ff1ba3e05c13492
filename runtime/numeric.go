package runtime

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type numberKind int

const (
	numberInteger numberKind = iota
	numberFloat
)

type numberValue struct {
	kind       numberKind
	intValue   int64
	floatValue float64
}

// classifyNumber recognises Go numeric types and json.Number. Booleans are
// not numbers here; finalize prints them as true/false.
func classifyNumber(value interface{}) (numberValue, bool) {
	switch v := value.(type) {
	case int:
		return numberValue{kind: numberInteger, intValue: int64(v), floatValue: float64(v)}, true
	case int8:
		return numberValue{kind: numberInteger, intValue: int64(v), floatValue: float64(v)}, true
	case int16:
		return numberValue{kind: numberInteger, intValue: int64(v), floatValue: float64(v)}, true
	case int32:
		return numberValue{kind: numberInteger, intValue: int64(v), floatValue: float64(v)}, true
	case int64:
		return numberValue{kind: numberInteger, intValue: v, floatValue: float64(v)}, true
	case uint:
		return classifyUnsigned(uint64(v))
	case uint8:
		return classifyUnsigned(uint64(v))
	case uint16:
		return classifyUnsigned(uint64(v))
	case uint32:
		return classifyUnsigned(uint64(v))
	case uint64:
		return classifyUnsigned(v)
	case float32:
		return numberValue{kind: numberFloat, floatValue: float64(v)}, true
	case float64:
		return numberValue{kind: numberFloat, floatValue: v}, true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return numberValue{kind: numberInteger, intValue: i, floatValue: float64(i)}, true
		}
		if f, err := v.Float64(); err == nil {
			return numberValue{kind: numberFloat, floatValue: f}, true
		}
		return numberValue{}, false
	default:
		return numberValue{}, false
	}
}

func classifyUnsigned(v uint64) (numberValue, bool) {
	if v <= uint64(math.MaxInt64) {
		i := int64(v)
		return numberValue{kind: numberInteger, intValue: i, floatValue: float64(i)}, true
	}
	return numberValue{kind: numberFloat, floatValue: float64(v)}, true
}

// String formats the number the way it prints in template output: integers
// without a fraction, floats in their shortest round-trip form.
func (n numberValue) String() string {
	if n.kind == numberInteger {
		return strconv.FormatInt(n.intValue, 10)
	}
	f := n.floatValue
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs >= 1e21 || (abs < 1e-6 && f != 0) {
		return formatExponent(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatExponent prints f in shortest exponent form with an unpadded
// exponent, 1e-7 rather than 1e-07.
func formatExponent(f float64) string {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return s[:i+2] + digits
}

// ToFloat converts numbers, booleans and numeric strings to float64.
func ToFloat(val interface{}) (float64, bool) {
	if n, ok := classifyNumber(val); ok {
		return n.floatValue, true
	}
	switch v := val.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	case Markup:
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ToInt converts numbers, booleans and numeric strings to int, truncating floats.
func ToInt(val interface{}) (int, bool) {
	if n, ok := classifyNumber(val); ok {
		if n.kind == numberInteger {
			return int(n.intValue), true
		}
		return int(n.floatValue), true
	}
	switch v := val.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
