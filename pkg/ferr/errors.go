// Package ferr defines the tagged-kind error type shared by every Foundry
// subsystem. Library code never logs-and-swallows; every failure mode is
// one of these kinds flowing through a future's reject path.
package ferr

import "errors"

// Kind tags the category of an Error so callers can branch on it without
// string-matching messages.
type Kind int

const (
	// Unknown is the zero value; never constructed directly.
	Unknown Kind = iota
	NotFound
	NotSupported
	Cancelled
	InShutdown
	Disposed
	InvalidArgument
	InvalidData
	Io
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case NotSupported:
		return "not-supported"
	case Cancelled:
		return "cancelled"
	case InShutdown:
		return "in-shutdown"
	case Disposed:
		return "disposed"
	case InvalidArgument:
		return "invalid-argument"
	case InvalidData:
		return "invalid-data"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a kinded error value carrying an optional wrapped cause.
type Error struct {
	cause   error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting, avoided here to keep
// this package dependency-free; callers format with fmt before calling New.

// Wrap constructs an Error of the given kind that wraps cause, inheriting
// cause's message when message is empty.
func Wrap(kind Kind, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Of reports the Kind of err, or Unknown if err is not a *Error (and not
// wrapping one).
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is, or wraps, a *Error of the given kind.
func Is(err error, kind Kind) bool {
	return Of(err) == kind
}
