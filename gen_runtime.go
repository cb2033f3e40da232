package brine

import "errors"

// Errors reported by code that brinegen emits.
var (
	ErrGenValueNotMap  = errors.New("brinegen: value is not a map")
	ErrGenMissingField = errors.New("brinegen: required field missing")
	ErrGenFieldType    = errors.New("brinegen: field has wrong kind")
)
