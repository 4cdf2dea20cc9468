package expr

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports malformed source text with the offending fragment.
type ParseError struct {
	Source   string
	Pos      int    // byte offset into Source
	Fragment string // offending substring, empty at end of input
	Reason   string
}

func (e *ParseError) Error() string {
	line, col := e.LineColumn()
	if e.Fragment == "" {
		return fmt.Sprintf("parse error at %d:%d: %s", line, col, e.Reason)
	}
	return fmt.Sprintf("parse error at %d:%d near %q: %s", line, col, e.Fragment, e.Reason)
}

// LineColumn converts Pos into 1-based line and column numbers.
func (e *ParseError) LineColumn() (int, int) {
	pos := min(max(e.Pos, 0), len(e.Source))
	before := e.Source[:pos]
	line := strings.Count(before, "\n") + 1
	col := pos - strings.LastIndex(before, "\n")
	return line, col
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func newParseError(src string, tok Token, reason string) *ParseError {
	end := min(tok.End, len(src))
	start := min(tok.Pos, end)
	return &ParseError{
		Source:   src,
		Pos:      tok.Pos,
		Fragment: src[start:end],
		Reason:   reason,
	}
}
