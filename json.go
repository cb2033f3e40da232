package brine

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/minio/simdjson-go"
)

// FromJSON parses JSON into a Value. Arrays become lists, objects become
// maps with text keys in member order, and strings of the form "b64:..."
// become byte strings. Integer-looking numbers of any magnitude decode as
// integers; numbers written with a fraction or exponent decode as float64.
//
// Parsing uses simdjson-go, with encoding/json taking over for scalar roots
// and for CPUs simdjson does not support.
func FromJSON(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Value{}, fmt.Errorf("json input is empty")
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return fromJSONStdlib(trimmed)
	}
	if !simdjson.SupportedCPU() {
		return fromJSONStdlib(trimmed)
	}
	parsed, err := simdjson.Parse(data, nil)
	if err != nil {
		return Value{}, err
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return Value{}, fmt.Errorf("json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return Value{}, err
	}
	return valueFromJSONIter(typ, root)
}

// fromJSONStdlib decodes via encoding/json tokens. Walking tokens rather
// than unmarshalling into map[string]any keeps object member order.
func fromJSONStdlib(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := valueFromJSONTokens(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err == nil || err != io.EOF {
		return Value{}, fmt.Errorf("invalid character after top-level value")
	}
	return v, nil
}

func valueFromJSONTokens(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return numberValue(t)
	case string:
		return textOrBinary([]byte(t)), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				child, err := valueFromJSONTokens(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, child)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{Kind: KindList, Items: items}, nil
		case '{':
			var entries []MapEntry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("json object key is not a string: %v", keyTok)
				}
				val, err := valueFromJSONTokens(dec)
				if err != nil {
					return Value{}, err
				}
				entries = append(entries, MapEntry{Key: Text(key), Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{Kind: KindMap, Entries: entries}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected json token %v", tok)
}

// numberValue keeps the lexical shape of a JSON number: no fraction and no
// exponent means integer, at any magnitude.
func numberValue(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if bi, ok := new(big.Int).SetString(s, 10); ok {
			return BigInt(bi), nil
		}
	}
	if f, err := n.Float64(); err == nil {
		return Float(f), nil
	}
	return Value{}, fmt.Errorf("invalid json number: %s", n)
}

func textOrBinary(b []byte) Value {
	if len(b) >= 4 && string(b[:4]) == "b64:" {
		if decoded, err := base64.StdEncoding.DecodeString(string(b[4:])); err == nil {
			return BytesValue(decoded)
		}
	}
	cpy := append([]byte{}, b...)
	return Value{Kind: KindText, Bytes: cpy}
}

func valueFromJSONIter(typ simdjson.Type, it *simdjson.Iter) (Value, error) {
	switch typ {
	case simdjson.TypeNull:
		return Null(), nil
	case simdjson.TypeBool:
		v, err := it.Bool()
		if err != nil {
			return Value{}, err
		}
		return Bool(v), nil
	case simdjson.TypeInt:
		v, err := it.Int()
		if err != nil {
			return Value{}, err
		}
		return Int(v), nil
	case simdjson.TypeUint:
		v, err := it.Uint()
		if err != nil {
			return Value{}, err
		}
		return uintValue(v), nil
	case simdjson.TypeFloat:
		v, err := it.Float()
		if err != nil {
			return Value{}, err
		}
		return Float(v), nil
	case simdjson.TypeString:
		b, err := it.StringBytes()
		if err != nil {
			return Value{}, err
		}
		return textOrBinary(b), nil
	case simdjson.TypeObject:
		obj, err := it.Object(nil)
		if err != nil {
			return Value{}, err
		}
		var entries []MapEntry
		var parseErr error
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			if parseErr != nil {
				return
			}
			val, err := valueFromJSONIter(elem.Type(), &elem)
			if err != nil {
				parseErr = err
				return
			}
			entries = append(entries, MapEntry{Key: Text(string(key)), Value: val})
		}, nil)
		if err != nil {
			return Value{}, err
		}
		if parseErr != nil {
			return Value{}, parseErr
		}
		return Value{Kind: KindMap, Entries: entries}, nil
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return Value{}, err
		}
		var items []Value
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			val, err := valueFromJSONIter(t, &elem)
			if err != nil {
				return Value{}, err
			}
			items = append(items, val)
		}
		return Value{Kind: KindList, Items: items}, nil
	default:
		return Value{}, fmt.Errorf("unsupported json type: %v", typ)
	}
}

// ToJSON renders v as a JSON string. Byte strings become "b64:..." strings,
// tuples and sets lower to arrays, and big integers print as plain decimal
// numbers. Map keys must be text, and NaN or infinite floats have no JSON
// form; both fail.
func ToJSON(v Value) (string, error) {
	var sb strings.Builder
	if err := WriteJSON(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// AppendJSON appends the JSON rendering of v to dst.
func AppendJSON(dst []byte, v Value) ([]byte, error) {
	var sb strings.Builder
	if err := WriteJSON(&sb, v); err != nil {
		return dst, err
	}
	return append(dst, sb.String()...), nil
}

// WriteJSON writes JSON for v to sb.
func WriteJSON(sb *strings.Builder, v Value) error {
	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		if v.Big != nil {
			sb.WriteString(v.Big.String())
		} else {
			sb.WriteString(strconv.FormatInt(v.I64, 10))
		}
	case KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			return fmt.Errorf("float64 %v has no json form", v.F64)
		}
		sb.WriteString(strconv.FormatFloat(v.F64, 'g', -1, 64))
	case KindText:
		writeJSONStringBytes(sb, v.Bytes)
	case KindBytes:
		sb.WriteByte('"')
		sb.WriteString("b64:")
		sb.WriteString(base64.StdEncoding.EncodeToString(v.Bytes))
		sb.WriteByte('"')
	case KindList, KindTuple, KindSet, KindFrozenSet:
		sb.WriteByte('[')
		for i := range v.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := WriteJSON(sb, v.Items[i]); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i := range v.Entries {
			if i > 0 {
				sb.WriteByte(',')
			}
			key := v.Entries[i].Key
			if key.Kind != KindText {
				return fmt.Errorf("map key must be text for json, got %s", key.Kind)
			}
			writeJSONStringBytes(sb, key.Bytes)
			sb.WriteByte(':')
			if err := WriteJSON(sb, v.Entries[i].Value); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", v.Kind)
	}
	return nil
}

func writeJSONStringBytes(sb *strings.Builder, b []byte) {
	sb.WriteByte('"')
	for _, c := range b {
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigit(c >> 4))
				sb.WriteByte(hexDigit(c & 0xF))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
