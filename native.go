package brine

import (
	"fmt"
	"math"
	"math/big"
	"sort"
)

// FromNative converts a plain Go value to a Value. Matching is by exact
// type; derived types do not convert, which keeps the boundary predictable.
// Map entries are emitted in sorted key order so the same map always
// produces the same record bytes.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return uintValue(uint64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return uintValue(t), nil
	case *big.Int:
		return BigInt(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Text(t), nil
	case []byte:
		return BytesValue(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{Kind: KindList, Items: items}, nil
	case []Value:
		return List(t...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			v, err := FromNative(t[k])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, MapEntry{Key: Text(k), Value: v})
		}
		return Map(entries...), nil
	case []MapEntry:
		return Map(t...), nil
	default:
		return Value{}, unsupportedTypeError(fmt.Sprintf("%T", x))
	}
}

func uintValue(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Value{Kind: KindInt, Big: new(big.Int).SetUint64(u)}
}

// Native converts v back to plain Go values: nil, bool, int64 (or *big.Int
// past 64 bits), float64, string, []byte, []any for sequences and sets, and
// map[string]any for text-keyed maps. A map with non-text keys comes back as
// []MapEntry, since Go map keys cannot hold arbitrary Values.
func (v Value) Native() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		if i, ok := v.Int64(); ok {
			return i
		}
		return v.BigInt()
	case KindFloat:
		return v.F64
	case KindBytes:
		return v.Bytes
	case KindText:
		return string(v.Bytes)
	case KindList, KindTuple, KindSet, KindFrozenSet:
		out := make([]any, len(v.Items))
		for i := range v.Items {
			out[i] = v.Items[i].Native()
		}
		return out
	case KindMap:
		for i := range v.Entries {
			if v.Entries[i].Key.Kind != KindText {
				out := make([]MapEntry, len(v.Entries))
				copy(out, v.Entries)
				return out
			}
		}
		out := make(map[string]any, len(v.Entries))
		for i := range v.Entries {
			out[v.Entries[i].Key.Text()] = v.Entries[i].Value.Native()
		}
		return out
	default:
		return nil
	}
}
