package store

import (
	"errors"
	"fmt"
)

// Kind classifies store errors. Every error returned by this package
// carries exactly one kind.
type Kind int

const (
	// KindNotFound: a key or result set is empty where the operation
	// demands presence.
	KindNotFound Kind = iota
	// KindAlreadyExists: inserting would violate key uniqueness.
	KindAlreadyExists
	// KindEmptyInput: a bulk operation was called with an empty input.
	KindEmptyInput
	// KindCorruptTable: on open, the table file's bytes do not decode.
	KindCorruptTable
	// KindIOFatal: a filesystem operation failed. The table's on-disk state
	// may no longer match its in-memory state; it is poisoned and must be
	// reopened.
	KindIOFatal
	// KindWarn: a soft, purely informational advisory.
	KindWarn
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindEmptyInput:
		return "empty input"
	case KindCorruptTable:
		return "corrupt table"
	case KindIOFatal:
		return "io fatal"
	case KindWarn:
		return "warn"
	default:
		return "unknown"
	}
}

// Error is the kind-tagged error returned by every store operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapIO tags an underlying filesystem error as IOFatal.
func wrapIO(err error, format string, args ...any) *Error {
	return &Error{Kind: KindIOFatal, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is a store error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsAlreadyExists reports whether err is an AlreadyExists error.
func IsAlreadyExists(err error) bool { return IsKind(err, KindAlreadyExists) }

// IsEmptyInput reports whether err is an EmptyInput error.
func IsEmptyInput(err error) bool { return IsKind(err, KindEmptyInput) }

// IsCorruptTable reports whether err is a CorruptTable error.
func IsCorruptTable(err error) bool { return IsKind(err, KindCorruptTable) }

// IsIOFatal reports whether err is an IOFatal error.
func IsIOFatal(err error) bool { return IsKind(err, KindIOFatal) }

// IsWarn reports whether err is a Warn advisory.
func IsWarn(err error) bool { return IsKind(err, KindWarn) }
