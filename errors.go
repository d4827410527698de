package copilotdb

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedVarint means the buffer ended in the middle of a varint.
	ErrTruncatedVarint = errors.New("truncated varint")
	// ErrVarintTooLong means a varint ran past the 10-byte 64-bit ceiling.
	ErrVarintTooLong = errors.New("varint too long")
	// ErrUnsupportedWireType means a field used the deprecated group wire
	// types, which this format never produces.
	ErrUnsupportedWireType = errors.New("unsupported wire type")
)

// DataError wraps a decoding failure with the buffer and offset it occurred
// at, so a skipped entry can be logged with enough context to debug.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s @%d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s @%d: (%d) %x", e.Msg, e.Off, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s @%d: %v: (%d) %x...%x", e.Msg, e.Off, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s @%d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
		}
	}
}

// WireTypeMismatchError reports a known field number framed with the wrong
// wire type. Fatal for the entry being parsed only; the access layer skips
// the entry and continues.
type WireTypeMismatchError struct {
	FieldNumber int
	Want, Got   WireType
}

func wireTypeErr(field int, want, got WireType) error {
	return &WireTypeMismatchError{FieldNumber: field, Want: want, Got: got}
}

func (e *WireTypeMismatchError) Error() string {
	return fmt.Sprintf("field %d: wire type mismatch: want %s, got %s", e.FieldNumber, e.Want, e.Got)
}
