package brine

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"math/big"
	"testing"
)

func FuzzUnmarshal(f *testing.F) {
	seeds := [][]byte{
		{},
		{0x00},
		{0x01, 0, 0, 0, 0, 0, 0, 0, 0},
		{0x01, 0, 0, 0, 0, 0, 0, 0, 1, 0x2A},
		{0x02, 0, 0, 0, 0, 0, 0, 0, 2, 0x01, 0x2C},
		{0x05, 0, 0, 0, 0, 0, 0, 0, 8, 0x3F, 0xF0, 0, 0, 0, 0, 0, 0},
		{0x07, 0, 0, 0, 0, 0, 0, 0, 2, 'h', 'i'},
		{0x0F, 0, 0, 0, 0, 0, 0, 0, 0},
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	}
	for _, v := range []Value{
		List(Int(1), Text("ab"), List(Bool(true), Null())),
		Map(MapEntry{Key: Text("k"), Value: BytesValue([]byte{1, 2})}),
		Set(Int(-300), FrozenSet(Float(0.5))),
		BigInt(new(big.Int).Lsh(big.NewInt(1), 100)),
	} {
		enc, err := Marshal(v)
		if err != nil {
			f.Fatalf("seed marshal: %v", err)
		}
		seeds = append(seeds, enc)
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Unmarshal(data)
		if err != nil {
			return
		}
		// Anything that decodes must re-encode, and the re-encoding must
		// decode back to an equal value. Byte equality is not required:
		// non-minimal magnitudes re-encode shorter.
		enc, err := Marshal(v)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		back, err := Unmarshal(enc)
		if err != nil {
			t.Fatalf("re-decode: %v", err)
		}
		if !back.Equal(v) {
			t.Fatalf("roundtrip mismatch: %#v != %#v", v, back)
		}
	})
}

func FuzzValueRoundTrip(f *testing.F) {
	seeds := [][]byte{
		{0x00},
		{0x01, 0x01},
		{0x02, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		{0x03, 0x3F, 0xF0, 0, 0, 0, 0, 0, 0},
		{0x04, 'h', 'i'},
		{0x05, 0xDE, 0xAD, 0xBE, 0xEF},
		{0x06, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A},
		{0x07, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) == 0 {
			return
		}
		v := valueFromFuzzBytes(data)
		enc, err := Marshal(v)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		dec, n, err := DecodeValue(enc)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if n != len(enc) {
			t.Fatalf("decoded length %d != encoded length %d", n, len(enc))
		}
		if !dec.Equal(v) {
			t.Fatalf("roundtrip mismatch: %#v != %#v", v, dec)
		}
	})
}

func FuzzJSONRoundTrip(f *testing.F) {
	seeds := [][]byte{
		[]byte("null"),
		[]byte("true"),
		[]byte("false"),
		[]byte("1"),
		[]byte("1.5"),
		[]byte("123456789012345678901234567890"),
		[]byte(`"hi"`),
		[]byte(`"b64:AA=="`),
		[]byte("[]"),
		[]byte("{}"),
		[]byte(`{"a":1,"b":[true,false],"c":{"d":"x"}}`),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) == 0 {
			return
		}
		v, err := FromJSON(data)
		if err != nil {
			return
		}
		out, err := ToJSON(v)
		if err != nil {
			return
		}
		var sink any
		if err := json.Unmarshal([]byte(out), &sink); err != nil {
			t.Fatalf("json unmarshal: %v", err)
		}
		if _, err := FromJSON([]byte(out)); err != nil {
			t.Fatalf("fromjson roundtrip: %v", err)
		}
	})
}

// valueFromFuzzBytes derives a deterministic Value from raw bytes: the first
// byte selects the shape, the rest becomes the payload.
func valueFromFuzzBytes(data []byte) Value {
	selector := data[0] & 0x0F
	payload := data[1:]
	switch selector {
	case 0:
		return Null()
	case 1:
		return Bool(len(payload) > 0 && payload[0]&1 == 1)
	case 2:
		return Int(int64(readUint64(payload)))
	case 3:
		return Float(math.Float64frombits(readUint64(payload)))
	case 4:
		return Text(string(sanitizeUTF8(payload)))
	case 5:
		return BytesValue(payload)
	case 6:
		return List(scalarsFromBytes(payload)...)
	case 7:
		return BigInt(new(big.Int).SetBytes(payload))
	case 8:
		return BigInt(new(big.Int).Neg(new(big.Int).SetBytes(payload)))
	case 9:
		return Tuple(scalarsFromBytes(payload)...)
	case 10:
		return Set(scalarsFromBytes(payload)...)
	case 11:
		return FrozenSet(scalarsFromBytes(payload)...)
	case 12:
		items := scalarsFromBytes(payload)
		entries := make([]MapEntry, 0, (len(items)+1)/2)
		for i := 0; i < len(items); i += 2 {
			e := MapEntry{Key: items[i]}
			if i+1 < len(items) {
				e.Value = items[i+1]
			}
			entries = append(entries, e)
		}
		return Map(entries...)
	case 13:
		return List(valueFromFuzzBytes(append([]byte{selector - 1}, payload...)))
	default:
		return Int(-int64(readUint64(payload) >> 1))
	}
}

// scalarsFromBytes turns each payload byte into a small scalar element.
func scalarsFromBytes(payload []byte) []Value {
	if len(payload) > 32 {
		payload = payload[:32]
	}
	items := make([]Value, len(payload))
	for i, b := range payload {
		items[i] = Int(int64(b) - 128)
	}
	return items
}

// sanitizeUTF8 replaces invalid bytes so the text constructor gets a legal
// payload; encoding rejects invalid UTF-8 by contract.
func sanitizeUTF8(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x80 {
			out[i] = c
		} else {
			out[i] = '?'
		}
	}
	return out
}

func readUint64(b []byte) uint64 {
	var tmp [8]byte
	copy(tmp[:], b)
	return binary.LittleEndian.Uint64(tmp[:])
}
