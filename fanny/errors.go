// errors.go - Fehlerarten des Bindings und Uebersetzung nativer Fehlercodes
package fanny

import (
	"errors"
	"fmt"

	"github.com/fanny/fanny/engine"
)

var (
	// ErrInvalidArgument is returned synchronously for requests with the wrong
	// shape. Nothing was scheduled or executed.
	ErrInvalidArgument = errors.New("fanny: invalid argument")

	// ErrUnsupportedOperation is returned for training on a fixed point network.
	ErrUnsupportedOperation = errors.New("fanny: operation not supported on a fixed point network")

	// ErrNativeCompute matches every error reported by the engine.
	ErrNativeCompute = errors.New("fanny: native compute error")

	// ErrIO matches engine errors caused by opening or writing a file.
	ErrIO = errors.New("fanny: i/o error")

	// ErrParse matches engine errors caused by a malformed file.
	ErrParse = errors.New("fanny: parse error")

	// ErrClosed is returned for any use of a closed network.
	ErrClosed = errors.New("fanny: network closed")
)

// ErrorKind classifies a NativeError.
type ErrorKind int

const (
	KindNativeCompute ErrorKind = iota
	KindIO
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	default:
		return "compute"
	}
}

// NativeError is an error drained from the engine's error register. Message is the
// engine's error string, unchanged.
type NativeError struct {
	Kind    ErrorKind
	Code    engine.ErrorCode
	Message string
}

func newNativeError(code engine.ErrorCode, msg string) *NativeError {
	kind := KindNativeCompute
	switch {
	case code.IsIO():
		kind = KindIO
	case code.IsParse():
		kind = KindParse
	}
	return &NativeError{Kind: kind, Code: code, Message: msg}
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("fanny: native %s error %d: %s", e.Kind, int(e.Code), e.Message)
}

// Is matches ErrNativeCompute for every native error, and ErrIO or ErrParse
// according to Kind.
func (e *NativeError) Is(target error) bool {
	switch target {
	case ErrNativeCompute:
		return true
	case ErrIO:
		return e.Kind == KindIO
	case ErrParse:
		return e.Kind == KindParse
	}
	return false
}

// translate wandelt Fehler der Engine-Konstruktoren in NativeError.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var ee *engine.Error
	if errors.As(err, &ee) {
		return newNativeError(ee.Code, ee.Message)
	}
	return fmt.Errorf("%w: %w", ErrNativeCompute, err)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
