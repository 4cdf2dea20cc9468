package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate_Segments(t *testing.T) {
	tmpl, err := ParseTemplate("{Subject} loses {Subject->Health - 1} health")
	require.NoError(t, err)
	require.Len(t, tmpl.Segments, 4)

	assert.Equal(t, "Subject", render(tmpl.Segments[0].Expr))
	assert.Equal(t, 0, tmpl.Segments[0].Offset)
	assert.Equal(t, " loses ", tmpl.Segments[1].Text)
	assert.Nil(t, tmpl.Segments[1].Expr)
	assert.Equal(t, 9, tmpl.Segments[1].Offset)
	assert.Equal(t, "(Subject->Health - 1)", render(tmpl.Segments[2].Expr))
	assert.Equal(t, " health", tmpl.Segments[3].Text)
}

func TestParseTemplate_LiteralOnly(t *testing.T) {
	tmpl, err := ParseTemplate("nothing happens")
	require.NoError(t, err)
	require.Len(t, tmpl.Segments, 1)
	assert.Equal(t, "nothing happens", tmpl.Segments[0].Text)

	tmpl, err = ParseTemplate("")
	require.NoError(t, err)
	assert.Empty(t, tmpl.Segments)
}

func TestParseTemplate_EscapedBraces(t *testing.T) {
	tmpl, err := ParseTemplate("{{literal}} and {1 + 1}")
	require.NoError(t, err)
	require.Len(t, tmpl.Segments, 2)
	assert.Equal(t, "{literal} and ", tmpl.Segments[0].Text)
	assert.Equal(t, "(1 + 1)", render(tmpl.Segments[1].Expr))
}

func TestParseTemplate_BracesInsideStrings(t *testing.T) {
	tmpl, err := ParseTemplate(`{Name == "}{"}`)
	require.NoError(t, err)
	require.Len(t, tmpl.Segments, 1)
	assert.Equal(t, `(Name == "}{")`, render(tmpl.Segments[0].Expr))
}

func TestParseTemplate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		reason string
		pos    int
	}{
		{"unterminated", "hello {Subject", "unterminated '{' in formatted text", 6},
		{"nested", "{a {b}}", "nested '{' in formatted text", 3},
		{"unmatched close", "a } b", "unmatched '}' in formatted text", 2},
		{"empty span", "x { } y", "empty expression in formatted text", 2},
		{"bad expression", "value {1 +} here", "unexpected end of input, expected an expression", 10},
		{"bad character", "value {a # b}", "unexpected character '#'", 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate(tt.src)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.reason, pe.Reason)
			assert.Equal(t, tt.pos, pe.Pos)
			assert.Equal(t, tt.src, pe.Source)
		})
	}
}
