package brine

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Get returns the value stored under a text key. Lookup is linear; map
// entries live in an ordered slice, not a hash table.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMap {
		return Value{}, false
	}
	for i := range v.Entries {
		e := &v.Entries[i]
		if e.Key.Kind == KindText && string(e.Key.Bytes) == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// AsInt64 returns the value as int64 when it can be reasonably converted.
// Numeric and text values are converted using best-effort parsing.
func (v Value) AsInt64() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int64()
	case KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			return 0, false
		}
		if v.F64 < math.MinInt64 || v.F64 > math.MaxInt64 {
			return 0, false
		}
		return int64(v.F64), true
	case KindText:
		return parseInt64(string(v.Bytes))
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsUint64 returns the value as uint64 when it can be reasonably converted.
func (v Value) AsUint64() (uint64, bool) {
	switch v.Kind {
	case KindInt:
		if v.Big != nil {
			if v.Big.Sign() >= 0 && v.Big.IsUint64() {
				return v.Big.Uint64(), true
			}
			return 0, false
		}
		if v.I64 < 0 {
			return 0, false
		}
		return uint64(v.I64), true
	case KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			return 0, false
		}
		if v.F64 < 0 || v.F64 > math.MaxUint64 {
			return 0, false
		}
		return uint64(v.F64), true
	case KindText:
		s := strings.TrimSpace(string(v.Bytes))
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, true
		}
		return 0, false
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsFloat64 returns the value as float64 when it can be reasonably converted.
// Numeric and text values are converted using best-effort parsing.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.F64, true
	case KindInt:
		if v.Big != nil {
			f, _ := new(big.Float).SetInt(v.Big).Float64()
			return f, true
		}
		return float64(v.I64), true
	case KindText:
		return parseFloat64(string(v.Bytes))
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsString returns the value as string when it can be reasonably converted.
// Numeric and boolean values are formatted as their scalar representations.
func (v Value) AsString() (string, bool) {
	switch v.Kind {
	case KindText:
		return string(v.Bytes), true
	case KindBytes:
		return string(v.Bytes), true
	case KindInt:
		if v.Big != nil {
			return v.Big.String(), true
		}
		return strconv.FormatInt(v.I64, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64), true
	case KindBool:
		if v.Bool {
			return "1", true
		}
		return "0", true
	default:
		return "", false
	}
}

// AsBytes returns the value as bytes when it can be reasonably converted.
// Text and binary values are returned directly; other scalars are formatted.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.Kind {
	case KindBytes, KindText:
		return v.Bytes, true
	default:
		str, ok := v.AsString()
		if !ok {
			return nil, false
		}
		return []byte(str), true
	}
}

func parseInt64(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		if f < math.MinInt64 || f > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func parseFloat64(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	return 0, false
}
