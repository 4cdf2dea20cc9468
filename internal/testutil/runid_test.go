package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunID(t *testing.T) {
	gen := NewFixedRunID("run-golden-1")
	for i := 0; i < 3; i++ {
		assert.Equal(t, "run-golden-1", gen.Generate())
	}
	assert.Equal(t, "test-run-default", NewFixedRunID("").Generate())
}
