package loader

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// File-level error codes.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no pack files found
	ErrCodeLoadFailed  = "E004" // CUE load or YAML parse failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
)

// Validation error codes (E200-E299).
const (
	ErrDuplicateName     = "E201" // two definitions share a top-level name
	ErrMissingName       = "E202" // definition has no usable name
	ErrEmptyKey          = "E203" // empty object or attribute key
	ErrMissingMagnitude  = "E204" // effect without magnitude
	ErrMissingSpawnName  = "E205" // spawn without definitionNameToSpawn
	ErrReservedKey       = "E206" // object key shadowed by a fixed variable
	ErrInvalidIdentifier = "E207" // object key is not a valid variable name
	ErrUnknownTarget     = "E208" // effect appliedTo names no subject or object
	ErrMultipleDefaults  = "E209" // more than one default result
	ErrNameMismatch      = "E210" // definitionName differs from its label
	ErrUnknownField      = "E211" // field not part of the definition type
	ErrWrongType         = "E212" // field has the wrong CUE/YAML type
)

// Pos is a location in a pack file. The zero value is unknown.
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position is known.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

func fromToken(p token.Pos) Pos {
	if !p.IsValid() {
		return Pos{}
	}
	return Pos{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// LoadError is a file-level failure: a missing directory, an unreadable
// file, or CUE that does not build.
type LoadError struct {
	Code    string
	Message string
	Pos     Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError is a structural problem in a definition.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Pos     Pos    `json:"-"`
}

func (e ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: [%s] %s: %s", e.Pos, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// CompileError is a CUE evaluation error with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors. CUE may report
// several errors at once; the first one with a position wins.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   field,
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return &CompileError{Field: field, Message: first.Error()}
}
