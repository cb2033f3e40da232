package brine

import "math/big"

// Clone returns a deep copy of v. Payload bytes, sequence items, map entries
// and big integers share no storage with the original, so either side can be
// mutated freely afterwards.
func (v Value) Clone() Value {
	out := v
	if v.Big != nil {
		out.Big = new(big.Int).Set(v.Big)
	}
	if v.Bytes != nil {
		out.Bytes = append([]byte(nil), v.Bytes...)
	}
	if v.Items != nil {
		out.Items = make([]Value, len(v.Items))
		for i := range v.Items {
			out.Items[i] = v.Items[i].Clone()
		}
	}
	if v.Entries != nil {
		out.Entries = make([]MapEntry, len(v.Entries))
		for i := range v.Entries {
			out.Entries[i] = MapEntry{
				Key:   v.Entries[i].Key.Clone(),
				Value: v.Entries[i].Value.Clone(),
			}
		}
	}
	return out
}
