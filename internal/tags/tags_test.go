package tags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/papersearch/internal/ir"
)

type fakeResolver map[string][]int

func (f fakeResolver) MatchPC(word string) []int {
	return f[strings.ToLower(word)]
}

func TestParseCountMatcher(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		match []float64
		miss  []float64
	}{
		{"3", "=3", []float64{3}, []float64{2, 4}},
		{">=10", ">=10", []float64{10, 11}, []float64{9}},
		{"≥10", ">=10", []float64{10}, []float64{9.5}},
		{"≤ 2", "<=2", []float64{2, -1}, []float64{3}},
		{"≠0", "!=0", []float64{1, -1}, []float64{0}},
		{"!=.5", "!=0.5", []float64{1}, []float64{0.5}},
		{"<-1", "<-1", []float64{-2}, []float64{-1}},
		{"==4", "=4", []float64{4}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, ok := ParseCountMatcher(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.String())
			for _, x := range tt.match {
				assert.True(t, m.Test(x), "%v", x)
			}
			for _, x := range tt.miss {
				assert.False(t, m.Test(x), "%v", x)
			}
		})
	}

	for _, bad := range []string{"", ">", "abc", "=>3", "3x"} {
		_, ok := ParseCountMatcher(bad)
		assert.False(t, ok, bad)
	}
}

func TestCountMatcherUnsatisfiable(t *testing.T) {
	assert.True(t, MustCountMatcher("<0").Unsatisfiable())
	assert.True(t, MustCountMatcher("=-1").Unsatisfiable())
	assert.False(t, MustCountMatcher("=0").Unsatisfiable())
	assert.False(t, MustCountMatcher(">-1").Unsatisfiable())
	assert.Panics(t, func() { MustCountMatcher("nope") })
}

func TestCountMatcherSQLExpr(t *testing.T) {
	e := MustCountMatcher(">=2").SQLExpr("Paper.outcome")
	assert.Equal(t, "Paper.outcome>=?", e.SQL)
	assert.Equal(t, []any{2.0}, e.Args)
}

func TestCheckTag(t *testing.T) {
	assert.True(t, CheckTag("green", false))
	assert.True(t, CheckTag("12~vote", false))
	assert.True(t, CheckTag("~~late", false))
	assert.True(t, CheckTag("g*", true))
	assert.False(t, CheckTag("g*", false))
	assert.False(t, CheckTag("9lives", false))
	assert.False(t, CheckTag("bob~vote", false))
	assert.False(t, CheckTag("", false))
}

func TestSplit(t *testing.T) {
	tag, v, ok := Split("fart#3")
	assert.Equal(t, "fart", tag)
	assert.Equal(t, 3.0, v)
	assert.True(t, ok)

	tag, _, ok = Split("fart")
	assert.Equal(t, "fart", tag)
	assert.False(t, ok)

	tag, _, ok = Split("#x")
	assert.Equal(t, "#x", tag)
	assert.False(t, ok)
}

func TestMatcherValues(t *testing.T) {
	entries := []ir.TagEntry{{Tag: "x", Value: 10}, {Tag: "other", Value: 1}}

	tests := []struct {
		name   string
		values []string
		want   bool
	}{
		{"bare", nil, true},
		{"equal", []string{"=10"}, true},
		{"greater", []string{">10"}, false},
		{"less", []string{"<10"}, false},
		{"at least", []string{">=10"}, true},
		{"range", []string{">=5", "<=10"}, true},
		{"range below", []string{">=11", "<=20"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(1, nil)
			require.True(t, m.AddCheckTag("X", true))
			for _, v := range tt.values {
				m.AddValueMatcher(MustCountMatcher(v))
			}
			assert.Equal(t, tt.want, m.Test(entries))
		})
	}
}

func TestMatcherTwiddle(t *testing.T) {
	entries := []ir.TagEntry{{Tag: "7~vote", Value: 2}, {Tag: "9~vote", Value: 12}}
	res := fakeResolver{"marina": {9}, "red": {7, 9}}

	m := NewMatcher(7, res)
	require.True(t, m.AddCheckTag("~vote", true))
	assert.Equal(t, []string{"7~vote"}, m.TagPatterns())
	assert.Equal(t, "7~vote", m.SingleTag())
	assert.True(t, m.Test(entries))

	m = NewMatcher(1, res)
	require.True(t, m.AddCheckTag("marina~vote", true))
	m.AddValueMatcher(MustCountMatcher(">=10"))
	assert.True(t, m.Test(entries))

	m = NewMatcher(1, res)
	require.True(t, m.AddCheckTag("red~vote", true))
	assert.Equal(t, []string{"7~vote", "9~vote"}, m.TagPatterns())
	assert.Equal(t, "", m.SingleTag())

	m = NewMatcher(1, res)
	require.True(t, m.AddCheckTag("any~vote", true))
	assert.Equal(t, []string{"*~vote"}, m.TagPatterns())
	assert.True(t, m.Test(entries))
	assert.False(t, m.Test([]ir.TagEntry{{Tag: "vote"}}))

	m = NewMatcher(1, res)
	assert.False(t, m.AddCheckTag("nobody~vote", true))
	assert.Equal(t, []string{"No such PC member “nobody”."}, m.Errors())
	assert.False(t, m.Test(entries))
}

func TestMatcherWildcard(t *testing.T) {
	m := NewMatcher(1, nil)
	require.True(t, m.AddCheckTag("g*", true))
	assert.True(t, m.Test([]ir.TagEntry{{Tag: "Green"}}))
	assert.False(t, m.Test([]ir.TagEntry{{Tag: "red"}}))
	assert.Equal(t, "", m.SingleTag())

	sql := m.SQLExpr("PaperTag.tag")
	assert.Equal(t, `PaperTag.tag like ? escape '\'`, sql.SQL)
	assert.Equal(t, []any{"g%"}, sql.Args)
}

func TestMatcherInvalid(t *testing.T) {
	m := NewMatcher(1, nil)
	assert.False(t, m.AddCheckTag("", true))
	assert.False(t, m.AddCheckTag("9bad", true))
	assert.Equal(t, []string{"Tag missing.", "Invalid tag “9bad”."}, m.Errors())
	assert.True(t, m.IsEmptyAfterExclusion())
	assert.False(t, m.Test([]ir.TagEntry{{Tag: "9bad"}}))
}

func TestMatcherExclusion(t *testing.T) {
	m := NewMatcher(1, nil)
	require.True(t, m.AddCheckTag("auto", true))
	require.True(t, m.AddCheckTag("green", true))
	m.SetExclusion([]string{"AUTO"})

	assert.True(t, m.TestIgnoreValue("auto"))
	assert.False(t, m.Test([]ir.TagEntry{{Tag: "auto"}}))
	assert.True(t, m.Test([]ir.TagEntry{{Tag: "green"}}))
	assert.False(t, m.IsEmptyAfterExclusion())

	sql := m.SQLExpr("tag")
	assert.Equal(t, "tag in (?)", sql.SQL)
	assert.Equal(t, []any{"green"}, sql.Args)

	m = NewMatcher(1, nil)
	require.True(t, m.AddCheckTag("auto", true))
	m.SetExclusion([]string{"auto"})
	assert.True(t, m.IsEmptyAfterExclusion())
}

func TestMatcherSQLMixed(t *testing.T) {
	m := NewMatcher(3, nil)
	require.True(t, m.AddCheckTag("green", true))
	require.True(t, m.AddCheckTag("any~vote", true))
	sql := m.SQLExpr("t.tag")
	assert.Equal(t, `((t.tag in (?)) or (t.tag like ? escape '\'))`, sql.SQL)
	assert.Equal(t, []any{"green", "%~vote"}, sql.Args)
}
