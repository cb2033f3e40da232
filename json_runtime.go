package brine

import (
	stdjson "encoding/json"
	"fmt"
)

// MarshalAny encodes an arbitrary Go value into a record using JSON
// semantics. Struct fields follow their json tags, maps become mappings,
// slices become lists. Values that encoding/json rejects are rejected here
// too.
func MarshalAny(v any) ([]byte, error) {
	data, err := stdjson.Marshal(v)
	if err != nil {
		return nil, err
	}
	val, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	return Marshal(val)
}

// UnmarshalAny decodes a record into out using JSON semantics, so out can
// be anything encoding/json can populate. Binary payloads surface as
// "b64:"-prefixed strings.
func UnmarshalAny(data []byte, out any) error {
	if out == nil {
		return fmt.Errorf("brine: unmarshal target is nil")
	}
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	s, err := ToJSON(v)
	if err != nil {
		return err
	}
	return stdjson.Unmarshal([]byte(s), out)
}
