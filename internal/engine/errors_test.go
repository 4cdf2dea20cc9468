package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/expr"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"runtime", &compiler.RuntimeError{Code: compiler.ErrCodeDivisionByZero}, "DIVISION_BY_ZERO"},
		{"wrapped runtime", &definition.PropertyError{Property: "Chance", Err: &compiler.RuntimeError{Code: compiler.ErrCodeNoResult}}, "NO_RESULT"},
		{"bind", &compiler.BindError{Code: compiler.ErrCodeTypeMismatch}, "TYPE_MISMATCH"},
		{"parse", fmt.Errorf("compile: %w", &expr.ParseError{Reason: "x"}), CodeParseError},
		{"protocol", &definition.ProtocolError{Code: definition.ErrCodeNotCompiled}, "NOT_COMPILED"},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), CodeCanceled},
		{"other", errors.New("disk on fire"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestDivergence_Error(t *testing.T) {
	d := &Divergence{Seq: 3, Path: "site:Keep", Property: "Attributes", Key: "Gold", Field: "value", Recorded: "7", Replayed: "9"}
	assert.Equal(t, "DIVERGED: seq 3 site:Keep.Attributes[Gold]: value recorded 7, replayed 9", d.Error())
	assert.True(t, IsDivergence(fmt.Errorf("wrapped: %w", d)))
	assert.False(t, IsDivergence(errors.New("nope")))
}
