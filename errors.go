package ebml

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the failure modes a reader or writer can surface.
//
// Only KindIncomplete is recoverable by refilling the input buffer and
// re-invoking the same operation; every other kind is fatal for the
// document currently being parsed or written.
type ErrorKind int

const (
	// KindIncomplete means the input buffer ended mid-construct. The
	// caller should append more bytes and retry the same call.
	KindIncomplete ErrorKind = iota
	// KindMalformedPrimitive means a VINT violated §3.1's wire rules
	// (reserved value, non-minimal length, bad width).
	KindMalformedPrimitive
	// KindStructuralViolation means an element appeared where the
	// schema does not allow it, or an occurrence bound was exceeded.
	KindStructuralViolation
	// KindConstraintViolation means a declared length or value range
	// was violated by an otherwise well-formed element.
	KindConstraintViolation
	// KindEncodingError means a string payload contained a byte
	// sequence illegal for its declared string kind.
	KindEncodingError
	// KindResourceExhausted means a writer's output buffer was too
	// small to hold the requested bytes.
	KindResourceExhausted
	// KindInternal marks a broken invariant; these indicate a bug in
	// this package rather than bad input, and callers may choose to
	// treat them as panics.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindIncomplete:
		return "incomplete"
	case KindMalformedPrimitive:
		return "malformed_primitive"
	case KindStructuralViolation:
		return "structural_violation"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindEncodingError:
		return "encoding_error"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every fallible operation in this
// package. It carries a Kind so callers can type-switch on failure
// category, plus a wrapped cause for %+v stack-trace formatting.
type Error struct {
	Kind   ErrorKind
	Reason string
	// Needed holds the number of additional bytes required before a
	// KindIncomplete operation can be retried. Zero for other kinds.
	Needed int
	cause  error
}

func (e *Error) Error() string {
	if e.Kind == KindIncomplete {
		return fmt.Sprintf("ebml: incomplete input, need %d more byte(s): %s", e.Needed, e.Reason)
	}
	return fmt.Sprintf("ebml: %s: %s", e.Kind, e.Reason)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Cause returns the innermost wrapped error, mirroring
// github.com/pkg/errors.Cause for callers that prefer that idiom.
func (e *Error) Cause() error {
	if e.cause == nil {
		return e
	}
	return errors.Cause(e.cause)
}

func newErr(kind ErrorKind, reason string) error {
	return &Error{Kind: kind, Reason: reason}
}

func wrapErr(kind ErrorKind, reason string, cause error) error {
	return &Error{Kind: kind, Reason: reason, cause: errors.Wrap(cause, reason)}
}

func incomplete(need int, reason string) error {
	return &Error{Kind: KindIncomplete, Reason: reason, Needed: need}
}

// IsIncomplete reports whether err is a recoverable KindIncomplete
// error, and if so how many additional bytes the caller should supply
// before retrying.
func IsIncomplete(err error) (needed int, ok bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindIncomplete {
		return e.Needed, true
	}
	return 0, false
}
