package brine

import (
	"errors"
	"fmt"
)

// Decode and encode failures wrap one of these sentinels, so callers can
// classify outcomes with errors.Is while messages carry the specifics.
// Malformed input is an ordinary, deterministic error: nothing here is
// retried or treated as fatal.
var (
	// ErrUnsupportedType reports a value whose kind has no encoding rule.
	// The message names the offending type.
	ErrUnsupportedType = errors.New("brine: unsupported type")

	// ErrMalformedHeader reports fewer than 9 bytes where a record header
	// was expected.
	ErrMalformedHeader = errors.New("brine: malformed header")

	// ErrUnknownTag reports a header tag byte outside the assigned set.
	ErrUnknownTag = errors.New("brine: unknown tag")

	// ErrBodyOverrun reports a record body running past its declared
	// length: a composite child crossing the parent's budget, or a
	// fixed-size body declared longer than its tag permits.
	ErrBodyOverrun = errors.New("brine: body overrun")

	// ErrBodyUnderrun reports a composite body whose children end before
	// the declared length is spent.
	ErrBodyUnderrun = errors.New("brine: body underrun")

	// ErrInvalidEncoding reports text bytes that are not valid UTF-8.
	ErrInvalidEncoding = errors.New("brine: invalid text encoding")

	// ErrTruncatedBody reports a body shorter than its declared or
	// required length.
	ErrTruncatedBody = errors.New("brine: truncated body")

	// ErrTrailingData reports leftover bytes after the single record a
	// one-shot decode expects.
	ErrTrailingData = errors.New("brine: trailing data after record")

	// ErrMaxDepth reports nesting beyond the decoder's depth bound.
	ErrMaxDepth = errors.New("brine: max nesting depth exceeded")

	// ErrRecordTooLarge reports a stream record whose declared length
	// exceeds the decoder's size limit.
	ErrRecordTooLarge = errors.New("brine: record exceeds size limit")
)

func unsupportedTypeError(name string) error {
	return fmt.Errorf("%w %q", ErrUnsupportedType, name)
}
