package tcerr

import (
	"errors"
	"fmt"
)

// Kind is a one-word, language-neutral error category (spec §7).
type Kind string

const (
	NotFound         Kind = "NotFound"
	BadRequest       Kind = "BadRequest"
	Conflict         Kind = "Conflict"
	Unsupported      Kind = "Unsupported"
	Internal         Kind = "Internal"
	NotImplemented   Kind = "NotImplemented"
	MethodNotAllowed Kind = "MethodNotAllowed"
	Unauthorized     Kind = "Unauthorized"
	Forbidden        Kind = "Forbidden"
	Timeout          Kind = "Timeout"

	// BadData marks a block that failed to decode (spec §4.1). It is
	// distinct from Internal, which is reserved for filesystem
	// failures: a BadData block is bytes tinychain can read but not
	// make sense of.
	BadData Kind = "BadData"
)

// Error pairs a Kind with a human-readable message and an optional
// wrapped cause, so that errors.Is/errors.As keep working across the
// core's call stack.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match err against another *Error by comparing
// their Kinds; to test for a bare Kind, use the package-level Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func NotFoundf(format string, args ...any) error   { return New(NotFound, format, args...) }
func BadRequestf(format string, args ...any) error { return New(BadRequest, format, args...) }
func Conflictf(format string, args ...any) error   { return New(Conflict, format, args...) }
func Unsupportedf(format string, args ...any) error { return New(Unsupported, format, args...) }
func Internalf(format string, args ...any) error   { return New(Internal, format, args...) }
func BadDataf(format string, args ...any) error    { return New(BadData, format, args...) }

// Of classifies an arbitrary error, returning Internal for errors
// that were never tagged with a Kind (e.g. raw I/O errors that slipped
// through without being wrapped).
func Of(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return Of(err) == kind
}
