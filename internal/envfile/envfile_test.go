package envfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"plain assignment", "FOO=bar\n"},
		{"double quoted", "FOO=\"bar baz\"\n"},
		{"single quoted", "FOO='bar baz'\n"},
		{"empty value", "FOO=\n"},
		{"empty quoted value", "FOO=\"\"\n"},
		{"value with equals", "URL=postgres://u:p@host/db?sslmode=require\n"},
		{"comments and blanks", "# header\n\nFOO=1\n\n# trailing comment\nBAR=2\n"},
		{"comment with leading whitespace", "  # indented comment\nFOO=1\n"},
		{"whitespace-only line", "FOO=1\n   \nBAR=2\n"},
		{"no trailing newline", "FOO=1\nBAR=2"},
		{"duplicate keys", "FOO=first\nFOO=second\n"},
		{"trailing space in value", "FOO=bar \n"},
		{"empty file", ""},
		{"single blank line", "\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := Parse(".env", tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.text, f.Serialize(), "serialize(parse(text)) must equal text")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		line int
	}{
		{"missing equals", "FOO=1\nNOVALUE\n", 2},
		{"invalid key", "1BAD=x\n", 1},
		{"key with dash", "BAD-KEY=x\n", 1},
		{"key with space", "BAD KEY=x\n", 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(".env", tt.text)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, ".env", parseErr.Path)
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}

func TestParse_QuoteStyles(t *testing.T) {
	t.Parallel()

	f, err := Parse(".env", "A=plain\nB=\"double\"\nC='single'\n")
	require.NoError(t, err)
	require.Len(t, f.Lines, 3)

	assert.Equal(t, QuoteNone, f.Lines[0].Quote)
	assert.Equal(t, "plain", f.Lines[0].Value)
	assert.Equal(t, QuoteDouble, f.Lines[1].Quote)
	assert.Equal(t, "double", f.Lines[1].Value)
	assert.Equal(t, QuoteSingle, f.Lines[2].Quote)
	assert.Equal(t, "single", f.Lines[2].Value)
}

func TestLookup_LastWins(t *testing.T) {
	t.Parallel()

	f, err := Parse(".env", "FOO=first\nBAR=only\nFOO=second\n")
	require.NoError(t, err)

	v, ok := f.Lookup("FOO")
	require.True(t, ok)
	assert.Equal(t, "second", v, "later duplicates shadow earlier ones")

	v, ok = f.Lookup("BAR")
	require.True(t, ok)
	assert.Equal(t, "only", v)

	_, ok = f.Lookup("MISSING")
	assert.False(t, ok)
}

func TestAssignments_SkipsCommentsAndBlanks(t *testing.T) {
	t.Parallel()

	f, err := Parse(".env", "# comment\n\nFOO=1\nBAR=2\n")
	require.NoError(t, err)

	assigns := f.Assignments()
	require.Len(t, assigns, 2)
	assert.Equal(t, "FOO", assigns[0].Key)
	assert.Equal(t, "BAR", assigns[1].Key)
}
