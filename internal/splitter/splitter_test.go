package splitter

import (
	"testing"

	"github.com/grafana/regexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSkipsLeadingWhitespace(t *testing.T) {
	s := New("   ti:foo")
	assert.Equal(t, 3, s.Pos)
	assert.False(t, s.IsEmpty())
	assert.Equal(t, "ti:foo", s.Rest())
}

func TestShiftKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  string
		rest  string
	}{
		{"ti:foo", "ti:", "foo"},
		{"re:any", "re:", "any"},
		{`"au":smith`, `"au":`, "smith"},
		{`"au:"x`, "", `"au:"x`},
		{"foo bar", "", "foo bar"},
		{"-x:1", "", "-x:1"},
		{"tag.x-y:z", "tag.x-y:", "z"},
		{"ti: foo", "ti:", "foo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			assert.Equal(t, tt.want, s.ShiftKeyword())
			assert.Equal(t, tt.rest, s.Rest())
		})
	}
}

func TestShift(t *testing.T) {
	s := New(`foo "bar baz"qux (x) end)`)
	assert.Equal(t, "foo", s.Shift("()"))
	assert.Equal(t, 3, s.LastPos)
	assert.Equal(t, `"bar baz"qux`, s.Shift("()"))
	assert.Equal(t, "", s.Shift("()"))
	assert.True(t, s.StartsWith("(x)"))
	s.ShiftPast("(")
	assert.Equal(t, "x", s.Shift("()"))
	s.ShiftPast(")")
	assert.Equal(t, "end", s.Shift("()"))
	s.ShiftPast(")")
	assert.True(t, s.IsEmpty())
}

func TestShiftUnterminatedQuote(t *testing.T) {
	s := New(`"open phrase`)
	assert.Equal(t, `"open phrase`, s.Shift(""))
	assert.True(t, s.IsEmpty())
}

func TestShiftBalancedParens(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		endchars   string
		allowEmpty bool
		want       string
	}{
		{"simple word", "abc def", "", false, "abc"},
		{"parenthesized", "(a OR b) c", "", false, "(a OR b)"},
		{"nested", "f(a (b c)) d", "", false, "f(a (b c))"},
		{"quoted paren", `("a)" b) c`, "", false, `("a)" b)`},
		{"brackets", "x[1 2] y", "", false, "x[1 2]"},
		{"stops at closer", "abc) d", "", false, "abc"},
		{"leading closer consumed", ") d", "", false, ")"},
		{"leading closer empty", ") d", "", true, ""},
		{"endchars", "a,b c", ",", false, "a"},
		{"unbalanced runs to end", "(a b", "", false, "(a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.input)
			assert.Equal(t, tt.want, s.ShiftBalancedParens(tt.endchars, tt.allowEmpty))
		})
	}
}

func TestSpanBalancedParensMismatchedCloser(t *testing.T) {
	assert.Equal(t, 5, SpanBalancedParens("(a]b) c", 0, "", false))
}

func TestSaveRestore(t *testing.T) {
	s := New("ovemer>2 rest")
	m := s.Save()
	assert.Equal(t, "ovemer>2", s.Shift("()"))
	s.Restore(m)
	assert.Equal(t, 0, s.Pos)
	assert.Equal(t, "ovemer>2", s.Shift("()"))
	assert.Equal(t, "rest", s.Rest())
}

func TestMatch(t *testing.T) {
	re := regexp.MustCompile(`^(AND|OR)`)
	s := New("  OR x")
	m := s.Match(re)
	require.NotNil(t, m)
	assert.Equal(t, "OR", m[1])
	assert.Equal(t, 2, s.Pos, "Match does not consume")
	assert.Nil(t, New("x OR").Match(re))
}

func TestSkipSpan(t *testing.T) {
	s := New("a, ,b")
	assert.Equal(t, "a", s.ShiftBalancedParens(" ,", false))
	assert.True(t, s.SkipSpan(" ,"))
	assert.Equal(t, "b", s.ShiftBalancedParens(" ,", false))
	assert.False(t, s.SkipSpan(" ,"))
}

func TestShiftPastPanicsOnMismatch(t *testing.T) {
	s := New("abc")
	assert.Panics(t, func() { s.ShiftPast("x") })
}

func TestMakeKwarg(t *testing.T) {
	w := MakeKwarg(`"foo bar"`, 0, 3, 12)
	assert.Equal(t, "foo bar", w.Word)
	assert.Equal(t, `"foo bar"`, w.QWord)
	assert.True(t, w.Quoted)
	assert.Equal(t, 0, w.Pos1w)

	w = MakeKwarg("plain", 1, 1, 6)
	assert.False(t, w.Quoted)
	assert.Equal(t, "plain", w.Word)

	w = MakeSimple("s")
	assert.Equal(t, -1, w.Pos1)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "abc", Unquote(`"abc"`))
	assert.Equal(t, "abc", Unquote(`"abc`))
	assert.Equal(t, "abc", Unquote("abc"))
	assert.Equal(t, "", Unquote(`""`))
	assert.Equal(t, "", Unquote(""))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "abc", Quote("abc"))
	assert.Equal(t, "f(a b)", Quote("f(a b)"))
	assert.Equal(t, `"a b"`, Quote("a b"))
	assert.Equal(t, `"say \"hi\" now"`, Quote(`say "hi" now`))
	assert.Equal(t, `""`, Quote(""))
}
