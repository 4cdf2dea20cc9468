package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// BindErrorCode categorizes bind errors.
type BindErrorCode string

const (
	// ErrCodeUnknownVariable indicates a name that is neither a scope
	// parameter, a global, nor the Random dice thing.
	ErrCodeUnknownVariable BindErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeTypeMismatch indicates an operand or result of the wrong kind.
	ErrCodeTypeMismatch BindErrorCode = "TYPE_MISMATCH"

	// ErrCodeNotAThing indicates '->' applied to a scalar global.
	ErrCodeNotAThing BindErrorCode = "NOT_A_THING"

	// ErrCodeDuplicateParameter indicates one scope level declared a name twice.
	ErrCodeDuplicateParameter BindErrorCode = "DUPLICATE_PARAMETER"

	// ErrCodeMissingResult indicates a complex condition path with no return.
	ErrCodeMissingResult BindErrorCode = "MISSING_RESULT"

	// ErrCodeAmbiguousResult indicates statements after a path already returned.
	ErrCodeAmbiguousResult BindErrorCode = "AMBIGUOUS_RESULT"

	// ErrCodeThingValue indicates a thing used as a value outside a
	// whole formatted-text span.
	ErrCodeThingValue BindErrorCode = "THING_VALUE"

	// ErrCodeInvalidDie indicates a Random attribute other than D<n> or Percent.
	ErrCodeInvalidDie BindErrorCode = "INVALID_DIE"
)

// BindError reports a well-formed expression that does not type-check
// against its scope and expected result kind.
type BindError struct {
	Code    BindErrorCode
	Source  string
	Pos     int
	Message string
}

func (e *BindError) Error() string {
	line, col := lineColumn(e.Source, e.Pos)
	return fmt.Sprintf("%s at %d:%d: %s", e.Code, line, col, e.Message)
}

// RuntimeErrorCode categorizes evaluation failures.
type RuntimeErrorCode string

const (
	// ErrCodeUnboundVariable indicates a scope name missing from the bindings.
	ErrCodeUnboundVariable RuntimeErrorCode = "UNBOUND_VARIABLE"

	// ErrCodeUnknownAttribute indicates a thing without the requested attribute.
	ErrCodeUnknownAttribute RuntimeErrorCode = "UNKNOWN_ATTRIBUTE"

	// ErrCodeDivisionByZero indicates integer division by zero.
	ErrCodeDivisionByZero RuntimeErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeOverflow indicates integer arithmetic outside the int64 range.
	ErrCodeOverflow RuntimeErrorCode = "OVERFLOW"

	// ErrCodeNoResult indicates a complex condition finished without a
	// result. Binding rejects such programs, so this is an internal fault.
	ErrCodeNoResult RuntimeErrorCode = "NO_RESULT"

	// ErrCodeMissingRNG indicates a dice roll with no random source.
	ErrCodeMissingRNG RuntimeErrorCode = "MISSING_RNG"

	// ErrCodeWrongKind indicates a binding whose value is not a thing.
	ErrCodeWrongKind RuntimeErrorCode = "WRONG_KIND"
)

// RuntimeError is raised by Evaluate.
type RuntimeError struct {
	Code      RuntimeErrorCode
	Message   string
	Variable  string
	Attribute string
	Pos       int
}

func (e *RuntimeError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %s (variable=%s)", e.Code, e.Message, e.Variable)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsBindError returns true if err is or wraps a *BindError.
func IsBindError(err error) bool {
	var be *BindError
	return errors.As(err, &be)
}

// BindCode returns the code of a wrapped *BindError, or "".
func BindCode(err error) BindErrorCode {
	var be *BindError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsRuntimeError returns true if err is or wraps a *RuntimeError.
func IsRuntimeError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

// RuntimeCode returns the code of a wrapped *RuntimeError, or "".
func RuntimeCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsUnboundVariable returns true if err reports a missing binding.
func IsUnboundVariable(err error) bool {
	return RuntimeCode(err) == ErrCodeUnboundVariable
}

// IsUnknownAttribute returns true if err reports a missing thing attribute.
func IsUnknownAttribute(err error) bool {
	return RuntimeCode(err) == ErrCodeUnknownAttribute
}

func lineColumn(src string, pos int) (int, int) {
	pos = min(max(pos, 0), len(src))
	before := src[:pos]
	line := strings.Count(before, "\n") + 1
	col := pos - strings.LastIndex(before, "\n")
	return line, col
}
