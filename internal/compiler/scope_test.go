package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScope_Order(t *testing.T) {
	s, err := BuildScope(ScopeLevels{
		Fixed:     []string{"Subject", "Object"},
		Property:  []string{"Target"},
		Class:     []string{"Weapon", "Target"},
		Inherited: []string{"Ally", "Subject", "Weapon"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject", "Object", "Target", "Weapon", "Ally"}, s.Names())
	assert.True(t, s.Contains("Ally"))
	assert.False(t, s.Contains("Enemy"))
	assert.Equal(t, 5, s.Len())
}

func TestBuildScope_DuplicateWithinLevel(t *testing.T) {
	tests := []struct {
		name   string
		levels ScopeLevels
	}{
		{"fixed", ScopeLevels{Fixed: []string{"Subject", "Subject"}}},
		{"property", ScopeLevels{Property: []string{"Target", "Target"}}},
		{"class", ScopeLevels{Class: []string{"A", "B", "A"}}},
		{"inherited", ScopeLevels{Inherited: []string{"X", "X"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildScope(tt.levels)
			assert.Equal(t, ErrCodeDuplicateParameter, BindCode(err))
		})
	}
}

func TestScope_NamesIsACopy(t *testing.T) {
	s := MustScope("Subject")
	names := s.Names()
	names[0] = "Mutated"
	assert.Equal(t, []string{"Subject"}, s.Names())
}

func TestMustScope_Panics(t *testing.T) {
	assert.Panics(t, func() { MustScope("A", "A") })
}
