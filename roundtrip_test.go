package brine

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"
)

func mustMarshal(t *testing.T, v Value) []byte {
	t.Helper()
	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", v.Kind, err)
	}
	return data
}

// rawRecord builds header+body bytes directly, bypassing the encoder, for
// wire-level fixtures.
func rawRecord(tag Tag, body ...byte) []byte {
	out := make([]byte, HeaderSize+len(body))
	putHeader(out, tag, uint64(len(body)))
	copy(out[HeaderSize:], body)
	return out
}

func TestWireFormatScalars(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want []byte
	}{
		{"null", Null(), rawRecord(TagNull)},
		{"true", Bool(true), rawRecord(TagTrue)},
		{"false", Bool(false), rawRecord(TagFalse)},
		{"zero", Int(0), rawRecord(TagInt)},
		{"one", Int(1), rawRecord(TagInt, 0x01)},
		{"minus one", Int(-1), rawRecord(TagNegInt, 0x01)},
		{"300", Int(300), rawRecord(TagInt, 0x01, 0x2C)},
		{"-300", Int(-300), rawRecord(TagNegInt, 0x01, 0x2C)},
		{"max int64", Int(math.MaxInt64), rawRecord(TagInt, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)},
		{"min int64", Int(math.MinInt64), rawRecord(TagNegInt, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)},
		{"float 1.0", Float(1.0), rawRecord(TagFloat64, 0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)},
		{"empty bytes", BytesValue(nil), rawRecord(TagBytes)},
		{"bytes", BytesValue([]byte{0xDE, 0xAD}), rawRecord(TagBytes, 0xDE, 0xAD)},
		{"empty text", Text(""), rawRecord(TagText)},
		{"text", Text("ab"), rawRecord(TagText, 'a', 'b')},
		{"empty list", List(), rawRecord(TagList)},
		{"empty tuple", Tuple(), rawRecord(TagTuple)},
		{"empty map", Map(), rawRecord(TagMap)},
		{"empty set", Set(), rawRecord(TagSet)},
		{"empty frozenset", FrozenSet(), rawRecord(TagFrozenSet)},
	}
	for _, tc := range cases {
		got := mustMarshal(t, tc.v)
		if !bytes.Equal(got, tc.want) {
			t.Errorf("%s: encoded % x, want % x", tc.name, got, tc.want)
		}
		back, err := Unmarshal(tc.want)
		if err != nil {
			t.Errorf("%s: unmarshal: %v", tc.name, err)
			continue
		}
		if !back.Equal(tc.v) {
			t.Errorf("%s: decoded %+v, want %+v", tc.name, back, tc.v)
		}
	}
}

func TestWireFormatNested(t *testing.T) {
	v := List(Int(1), Text("ab"), List(Bool(true), Null()))
	enc := mustMarshal(t, v)

	if len(enc) != 57 {
		t.Fatalf("encoded length %d, want 57", len(enc))
	}
	h, err := ReadHeader(enc)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.Tag != TagList || h.Length != 48 {
		t.Fatalf("outer header %s/%d, want list/48", h.Tag, h.Length)
	}

	// Walk the three children by header arithmetic alone.
	wantChildren := []struct {
		tag Tag
		len uint64
	}{{TagInt, 1}, {TagText, 2}, {TagList, 18}}
	off := HeaderSize
	for i, want := range wantChildren {
		ch, err := ReadHeader(enc[off:])
		if err != nil {
			t.Fatalf("child %d header: %v", i, err)
		}
		if ch.Tag != want.tag || ch.Length != want.len {
			t.Fatalf("child %d header %s/%d, want %s/%d", i, ch.Tag, ch.Length, want.tag, want.len)
		}
		off += HeaderSize + int(ch.Length)
	}
	if off != len(enc) {
		t.Fatalf("walk consumed %d bytes, want %d", off, len(enc))
	}

	back, err := Unmarshal(enc)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(v) {
		t.Fatalf("decoded %+v, want %+v", back, v)
	}
}

func TestWireFormatMapBody(t *testing.T) {
	v := Map(
		MapEntry{Key: Text("k"), Value: Int(7)},
		MapEntry{Key: Int(-2), Value: List()},
	)
	enc := mustMarshal(t, v)

	// Bodies are key and value records back to back, in entry order.
	want := rawRecord(TagMap)
	want = append(want, rawRecord(TagText, 'k')...)
	want = append(want, rawRecord(TagInt, 0x07)...)
	want = append(want, rawRecord(TagNegInt, 0x02)...)
	want = append(want, rawRecord(TagList)...)
	putHeader(want, TagMap, uint64(len(want)-HeaderSize))
	if !bytes.Equal(enc, want) {
		t.Fatalf("encoded % x\nwant % x", enc, want)
	}

	back, err := Unmarshal(enc)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("decoded %d entries, want 2", back.Len())
	}
	if !back.Entries[0].Key.Equal(Text("k")) || !back.Entries[1].Key.Equal(Int(-2)) {
		t.Fatalf("pair order not preserved: %+v", back.Entries)
	}
}

func TestRoundTripEveryKind(t *testing.T) {
	big20 := new(big.Int).Lsh(big.NewInt(1), 159)
	big20neg := new(big.Int).Neg(big20)
	big30 := new(big.Int).Lsh(big.NewInt(0x7A), 232)

	values := []Value{
		Null(),
		Bool(true),
		Bool(false),
		Int(0),
		Int(42),
		Int(-42),
		Int(math.MaxInt64),
		Int(math.MinInt64),
		BigInt(new(big.Int).Lsh(big.NewInt(1), 64)),
		BigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 64))),
		BigInt(big20),
		BigInt(big20neg),
		BigInt(big30),
		Float(0),
		Float(math.Copysign(0, -1)),
		Float(1.5),
		Float(-math.MaxFloat64),
		Float(math.SmallestNonzeroFloat64),
		Float(math.Inf(1)),
		Float(math.NaN()),
		BytesValue([]byte{}),
		BytesValue([]byte{0x00, 0xFF, 0x80}),
		Text(""),
		Text("plain ascii"),
		Text("héllo, 世界 🌊"),
		List(),
		List(Int(1), Int(2), Int(3)),
		Tuple(Text("fixed"), Bool(false)),
		Set(Int(1), Int(2)),
		FrozenSet(Text("a"), Text("b")),
		Map(),
		Map(MapEntry{Key: Text("n"), Value: Int(9)}),
		Map(MapEntry{Key: Tuple(Int(1), Int(2)), Value: Text("tuple key")}),
		List(Map(MapEntry{Key: Text("deep"), Value: Set(Null(), Tuple())}), BytesValue([]byte("x"))),
	}
	for _, v := range values {
		enc := mustMarshal(t, v)
		back, err := Unmarshal(enc)
		if err != nil {
			t.Errorf("%s: unmarshal: %v", v.Kind, err)
			continue
		}
		if !back.Equal(v) {
			t.Errorf("%s: round trip mismatch: got %+v, want %+v", v.Kind, back, v)
		}
	}
}

func TestBigMagnitudeBodies(t *testing.T) {
	big20 := new(big.Int).Lsh(big.NewInt(1), 159)

	enc := mustMarshal(t, BigInt(big20))
	h, err := ReadHeader(enc)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.Tag != TagBigInt || h.Length != 20 {
		t.Fatalf("header %s/%d, want bigint/20", h.Tag, h.Length)
	}

	enc = mustMarshal(t, BigInt(new(big.Int).Neg(big20)))
	h, err = ReadHeader(enc)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.Tag != TagNegBigInt || h.Length != 20 {
		t.Fatalf("header %s/%d, want -bigint/20", h.Tag, h.Length)
	}
}

func TestIntTagBoundaries(t *testing.T) {
	// 2^63 does not fit int64, so the positive side promotes one value
	// earlier than the negative side.
	cases := []struct {
		v       Value
		wantTag Tag
		wantLen uint64
	}{
		{Int(math.MaxInt64), TagInt, 8},
		{BigInt(new(big.Int).Lsh(big.NewInt(1), 63)), TagBigInt, 8},
		{Int(math.MinInt64), TagNegInt, 8},
		{BigInt(new(big.Int).Sub(big.NewInt(math.MinInt64), big.NewInt(1))), TagNegBigInt, 8},
	}
	for _, tc := range cases {
		enc := mustMarshal(t, tc.v)
		h, err := ReadHeader(enc)
		if err != nil {
			t.Fatalf("read header: %v", err)
		}
		if h.Tag != tc.wantTag || h.Length != tc.wantLen {
			t.Errorf("%v: header %s/%d, want %s/%d", tc.v, h.Tag, h.Length, tc.wantTag, tc.wantLen)
		}
		back, err := Unmarshal(enc)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !back.Equal(tc.v) {
			t.Errorf("round trip mismatch: got %+v, want %+v", back, tc.v)
		}
	}
}

func TestMagnitudesAreMinimalWidth(t *testing.T) {
	cases := []struct {
		i       int64
		wantLen uint64
	}{
		{0, 0}, {1, 1}, {255, 1}, {256, 2}, {-256, 2}, {65535, 2}, {65536, 3}, {1 << 56, 8},
	}
	for _, tc := range cases {
		enc := mustMarshal(t, Int(tc.i))
		h, err := ReadHeader(enc)
		if err != nil {
			t.Fatalf("read header: %v", err)
		}
		if h.Length != tc.wantLen {
			t.Errorf("%d: body %d bytes, want %d", tc.i, h.Length, tc.wantLen)
		}
	}
}

func TestDecodeToleratesNonMinimalMagnitude(t *testing.T) {
	v, err := Unmarshal(rawRecord(TagInt, 0x00, 0x01, 0x2C))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.Equal(Int(300)) {
		t.Fatalf("got %+v, want 300", v)
	}
}

func TestDecodePromotesOversizedSmallTag(t *testing.T) {
	// A small int tag carrying a magnitude past int64 is not an error; the
	// value lands in big storage.
	v, err := Unmarshal(rawRecord(TagInt, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := BigInt(new(big.Int).SetUint64(math.MaxUint64))
	if !v.Equal(want) {
		t.Fatalf("got %+v, want %s", v, want.BigInt())
	}

	// Nine magnitude bytes under the small tag decode the same way.
	v, err = Unmarshal(rawRecord(TagInt, 0x01, 0, 0, 0, 0, 0, 0, 0, 0))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.Equal(BigInt(new(big.Int).Lsh(big.NewInt(1), 64))) {
		t.Fatalf("got %+v, want 2^64", v)
	}

	// The 2^63 magnitude decodes exact on both sides of the sign.
	v, err = Unmarshal(rawRecord(TagNegInt, 0x80, 0, 0, 0, 0, 0, 0, 0))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if i, ok := v.Int64(); !ok || i != math.MinInt64 {
		t.Fatalf("got %+v, want MinInt64", v)
	}
	v, err = Unmarshal(rawRecord(TagInt, 0x80, 0, 0, 0, 0, 0, 0, 0))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.Equal(BigInt(new(big.Int).Lsh(big.NewInt(1), 63))) {
		t.Fatalf("got %+v, want 2^63", v)
	}
}

func TestNegativeZeroFloatDistinct(t *testing.T) {
	pos := mustMarshal(t, Float(0))
	neg := mustMarshal(t, Float(math.Copysign(0, -1)))
	if bytes.Equal(pos, neg) {
		t.Fatal("0.0 and -0.0 encoded identically")
	}
	back, err := Unmarshal(neg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if math.Signbit(back.F64) != true {
		t.Fatal("sign of -0.0 lost in round trip")
	}
	if back.Equal(Float(0)) {
		t.Fatal("-0.0 compared equal to 0.0")
	}
}

func TestMarshalAppendKeepsPrefix(t *testing.T) {
	prefix := []byte("prefix")
	out, err := MarshalAppend(append([]byte(nil), prefix...), Int(7))
	if err != nil {
		t.Fatalf("marshal append: %v", err)
	}
	if !bytes.Equal(out[:len(prefix)], prefix) {
		t.Fatalf("prefix clobbered: % x", out[:len(prefix)])
	}
	v, n, err := DecodeValue(out[len(prefix):])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(out)-len(prefix) || !v.Equal(Int(7)) {
		t.Fatalf("decoded %+v over %d bytes", v, n)
	}
}

func TestDecodeValueWalksConcatenatedRecords(t *testing.T) {
	want := []Value{Int(1), Text("two"), List(Bool(true))}
	var stream []byte
	for _, v := range want {
		var err error
		stream, err = MarshalAppend(stream, v)
		if err != nil {
			t.Fatalf("marshal append: %v", err)
		}
	}
	var got []Value
	for off := 0; off < len(stream); {
		v, n, err := DecodeValue(stream[off:])
		if err != nil {
			t.Fatalf("decode at %d: %v", off, err)
		}
		got = append(got, v)
		off += n
	}
	if len(got) != len(want) {
		t.Fatalf("decoded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSequenceKindsStayDistinct(t *testing.T) {
	items := []Value{Int(1), Int(2)}
	encodings := map[Tag][]byte{
		TagList:      mustMarshal(t, List(items...)),
		TagTuple:     mustMarshal(t, Tuple(items...)),
		TagSet:       mustMarshal(t, Set(items...)),
		TagFrozenSet: mustMarshal(t, FrozenSet(items...)),
	}
	for tag, enc := range encodings {
		h, err := ReadHeader(enc)
		if err != nil {
			t.Fatalf("read header: %v", err)
		}
		if h.Tag != tag {
			t.Errorf("got tag %s, want %s", h.Tag, tag)
		}
	}
	if List(items...).Equal(Tuple(items...)) {
		t.Error("list compared equal to tuple")
	}
	if Set(items...).Equal(FrozenSet(items...)) {
		t.Error("set compared equal to frozenset")
	}
}

func TestEncodeRejectsInvalidUTF8Text(t *testing.T) {
	v := Value{Kind: KindText, Bytes: []byte{0xFF, 0xFE}}
	if _, err := Marshal(v); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("got %v, want ErrInvalidEncoding", err)
	}
	// The same payload is fine as a byte string.
	if _, err := Marshal(BytesValue([]byte{0xFF, 0xFE})); err != nil {
		t.Fatalf("bytes payload rejected: %v", err)
	}
}

func TestEncodeRejectsUnknownKind(t *testing.T) {
	if _, err := Marshal(Value{Kind: Kind(99)}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("got %v, want ErrUnsupportedType", err)
	}
}
