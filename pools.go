package brine

import "github.com/delaneyj/toolbelt"

// Composite bodies carry a byte length, not an element count, so the decoder
// cannot size result slices up front. Children accumulate in pooled scratch
// slices and are copied to exact-size results once the body is consumed.
var (
	valuePool = toolbelt.New(func() []Value { return make([]Value, 0, 16) })
	entryPool = toolbelt.New(func() []MapEntry { return make([]MapEntry, 0, 8) })
)

func getValueScratch() []Value {
	return valuePool.Get()[:0]
}

func putValueScratch(s []Value) {
	if s == nil {
		return
	}
	for i := range s {
		s[i] = Value{}
	}
	s = s[:0]
	valuePool.Put(s)
}

func getEntryScratch() []MapEntry {
	return entryPool.Get()[:0]
}

func putEntryScratch(s []MapEntry) {
	if s == nil {
		return
	}
	for i := range s {
		s[i] = MapEntry{}
	}
	s = s[:0]
	entryPool.Put(s)
}
