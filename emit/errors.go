package emit

import (
	"errors"
	"fmt"

	"github.com/gogpu/translator/ir"
)

// ErrorKind categorizes emission errors.
type ErrorKind uint8

const (
	// ErrUnsupportedFeature indicates a construct the target dialect cannot express.
	ErrUnsupportedFeature ErrorKind = iota

	// ErrUnsupportedType indicates a type with no spelling in the target.
	ErrUnsupportedType

	// ErrInvalidUnit indicates the tree handed to the emitter is malformed.
	ErrInvalidUnit

	// ErrInvalidVersion indicates a target version the emitter does not know.
	ErrInvalidVersion
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrInvalidUnit:
		return "InvalidUnit"
	case ErrInvalidVersion:
		return "InvalidVersion"
	default:
		return "Unknown"
	}
}

// Error is an emission failure.
type Error struct {
	// Dialect names the emitter that failed, e.g. "hlsl".
	Dialect string

	Kind    ErrorKind
	Message string

	// Pos is the source position of the offending node, if known.
	Pos ir.Pos
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s %s at %d:%d: %s", e.Dialect, e.Kind, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Dialect, e.Kind, e.Message)
}

// NewError returns an error without position information.
func NewError(dialect string, kind ErrorKind, format string, args ...any) *Error {
	return &Error{Dialect: dialect, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewErrorAt returns an error located at n.
func NewErrorAt(dialect string, kind ErrorKind, n ir.Node, format string, args ...any) *Error {
	return &Error{Dialect: dialect, Kind: kind, Message: fmt.Sprintf(format, args...), Pos: n.Pos()}
}

// IsUnsupported reports whether err is or wraps an Error of kind
// ErrUnsupportedFeature or ErrUnsupportedType.
func IsUnsupported(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == ErrUnsupportedFeature || e.Kind == ErrUnsupportedType
}
