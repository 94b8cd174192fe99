// Package decode provides bounded, filtered JSON deserialization for API
// responses. The concrete type passed to Filtered acts as the field
// filter: keys absent from the target struct are skipped during parse and
// never materialized, so large excluded fields (alert descriptions, the
// minutely forecast block) cost nothing. A byte limit bounds total input
// regardless of payload size.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Error codes. They map into the -256 status range reported by the
// collector, so logs can tell decode failures apart from HTTP failures.
const (
	CodeSyntax   = 1 // malformed or truncated JSON
	CodeOverflow = 2 // payload exceeded the byte limit
	CodeMissing  = 3 // a required field was absent or zero
)

// Error is a decode-layer failure.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeOverflow:
		return fmt.Sprintf("decode: payload exceeded limit: %v", e.Err)
	case CodeMissing:
		return fmt.Sprintf("decode: %v", e.Err)
	default:
		return fmt.Sprintf("decode: invalid payload: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Missing builds a CodeMissing error for a required field the mapper
// could not find in the parsed document.
func Missing(field string) *Error {
	return &Error{Code: CodeMissing, Err: errors.New("missing required field " + field)}
}

// Code extracts the decode error code from err, or 0 if err is not a
// decode error.
func Code(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return 0
}

// Filtered reads at most limit bytes from r and unmarshals them into v.
// Reading past the limit or failing to parse is reported as an *Error;
// the target record must then be treated as unpopulated.
func Filtered(r io.Reader, limit int64, v any) error {
	// One sentinel byte past the limit distinguishes "exactly limit bytes"
	// from "cut off at the limit".
	lr := &io.LimitedReader{R: r, N: limit + 1}
	dec := json.NewDecoder(lr)
	if err := dec.Decode(v); err != nil {
		if lr.N <= 0 {
			// The parse failed because the reader was cut off at the
			// limit, not because the source JSON was malformed.
			return &Error{Code: CodeOverflow, Err: err}
		}
		return &Error{Code: CodeSyntax, Err: err}
	}
	if lr.N <= 0 {
		// Parsed, but only by consuming the sentinel byte; the payload
		// exceeded the limit.
		return &Error{Code: CodeOverflow, Err: errors.New("payload exceeded byte limit")}
	}
	return nil
}
