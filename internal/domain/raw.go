package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawMarket is an untyped market record as emitted by the CLI. Field names
// vary between CLI versions and upstream APIs.
type RawMarket map[string]any

// First returns the value of the first key that is present and non-nil.
func (r RawMarket) First(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Clone returns a shallow copy of r.
func (r RawMarket) Clone() RawMarket {
	out := make(RawMarket, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToNumber coerces v into a finite float64. Nil, empty and whitespace-only
// strings, unparsable values and non-finite results all yield fallback.
func ToNumber(v any, fallback float64) float64 {
	f, ok := ParseNumber(v)
	if !ok {
		return fallback
	}
	return f
}

// ParseNumber is ToNumber without a fallback; ok is false when v has no
// finite numeric reading.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	case bool:
		if x {
			f = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToString renders scalar values as text. Objects and arrays are rejected.
func ToString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// ToBool coerces v into a bool. Strings accept "true"/"false"/"1"/"0" in any
// case; numbers are true when non-zero.
func ToBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		switch {
		case strings.EqualFold(s, "true") || s == "1":
			return true, true
		case strings.EqualFold(s, "false") || s == "0" || s == "":
			return false, true
		}
		return false, false
	default:
		f, ok := ParseNumber(v)
		if !ok {
			return false, false
		}
		return f != 0, true
	}
}
