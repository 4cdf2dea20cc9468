package definition

import (
	"errors"
	"fmt"
)

// ProtocolErrorCode categorizes lifecycle misuse.
type ProtocolErrorCode string

const (
	ErrCodeNotAttached     ProtocolErrorCode = "NOT_ATTACHED"
	ErrCodeNotCompiled     ProtocolErrorCode = "NOT_COMPILED"
	ErrCodeUnknownProperty ProtocolErrorCode = "UNKNOWN_PROPERTY"
	ErrCodeUnknownKey      ProtocolErrorCode = "UNKNOWN_KEY"
	ErrCodeCycle           ProtocolErrorCode = "CYCLE"
	ErrCodeNotFound        ProtocolErrorCode = "NOT_FOUND"
)

// ProtocolError reports a definition used out of lifecycle order or
// addressed by a name it does not have.
type ProtocolError struct {
	Code     ProtocolErrorCode
	Path     string
	Property string
	Key      string
	Message  string
}

func (e *ProtocolError) Error() string {
	target := e.Path
	if e.Property != "" {
		target += "." + e.Property
	}
	if e.Key != "" {
		target += "[" + e.Key + "]"
	}
	if target == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, target, e.Message)
}

// PropertyError attributes a compile or evaluation failure to the property
// that raised it. Err is the underlying parse, bind or runtime error.
type PropertyError struct {
	Path     string
	Property string
	Key      string
	Err      error
}

func (e *PropertyError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s.%s[%s]: %v", e.Path, e.Property, e.Key, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Path, e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error { return e.Err }

func protocolCode(err error) ProtocolErrorCode {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsNotAttached returns true if err reports evaluation of an unattached definition.
func IsNotAttached(err error) bool { return protocolCode(err) == ErrCodeNotAttached }

// IsNotCompiled returns true if err reports evaluation before Compile.
func IsNotCompiled(err error) bool { return protocolCode(err) == ErrCodeNotCompiled }

// IsCycle returns true if err reports a definition that is its own ancestor.
func IsCycle(err error) bool { return protocolCode(err) == ErrCodeCycle }

// IsProtocolError returns true if err is or wraps a *ProtocolError.
func IsProtocolError(err error) bool { return protocolCode(err) != "" }

// PropertyErrors flattens err (including errors.Join trees) into the
// property errors it contains, in order.
func PropertyErrors(err error) []*PropertyError {
	var out []*PropertyError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if pe, ok := err.(*PropertyError); ok {
			out = append(out, pe)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
