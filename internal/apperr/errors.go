// Package apperr holds the error taxonomy shared by every collabeat surface.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidIdentifier = errors.New("invalid content identifier")
)

// Kind classifies a call failure.
type Kind string

const (
	KindVolumeExceeded Kind = "VOLUME_EXCEEDED"
	KindDecode         Kind = "DECODE_FAILURE"
	KindFetch          Kind = "FETCH_FAILURE"
	KindParse          Kind = "PARSE_FAILURE"
)

// Error is a call failure. Message is the exact text reported to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf reports the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
