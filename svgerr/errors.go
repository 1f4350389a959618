// Package svgerr defines the error kinds reported by the conversion pipeline.
//
// Every failure surfaced by svg2jpeg carries exactly one Kind, so callers
// can branch on the failing stage without parsing messages:
//
//	if svgerr.Is(err, svgerr.ParseFailure) {
//	    // the input was not a usable SVG document
//	}
//
// IoFailure errors always name the offending file path or stream.
package svgerr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	InvalidColorFormat  Kind = "INVALID_COLOR_FORMAT"
	InvalidDocumentSize Kind = "INVALID_DOCUMENT_SIZE"
	InvalidConfig       Kind = "INVALID_CONFIG"
	ParseFailure        Kind = "PARSE_FAILURE"
	RenderFailure       Kind = "RENDER_FAILURE"
	EncodeFailure       Kind = "ENCODE_FAILURE"
	IoFailure           Kind = "IO_FAILURE"
)

// Error is a categorized error with an optional path and cause.
type Error struct {
	Kind    Kind
	Message string
	Path    string // file path or stream name, set for IoFailure
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IO reports an IoFailure on path.
func IO(path string, cause error, action string) *Error {
	return &Error{Kind: IoFailure, Message: action, Path: path, Cause: cause}
}

// Is reports whether the first *Error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf extracts the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
