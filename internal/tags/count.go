// Package tags matches paper tags and their values.
//
// Tags are case-insensitive names with an optional numeric value
// ("vote#3"). Private tags carry their owner's contact id before a twiddle
// ("12~vote"); chair tags start with two twiddles ("~~late"). A Matcher
// combines tag-name patterns with value comparisons and can be asked for
// both an exact in-memory test and a liberal SQL condition.
package tags

import (
	"strconv"
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/querysql"
)

// Relation is a comparison encoded as a mask over the outcomes
// less-than (1), equal (2) and greater-than (4).
type Relation uint8

const (
	RelLT Relation = 1
	RelEQ Relation = 2
	RelGT Relation = 4
	RelLE          = RelLT | RelEQ
	RelGE          = RelGT | RelEQ
	RelNE          = RelLT | RelGT
)

var relationNames = map[string]Relation{
	"":   RelEQ,
	"#":  RelEQ,
	"=":  RelEQ,
	"==": RelEQ,
	"!":  RelNE,
	"!=": RelNE,
	"≠":  RelNE,
	"<":  RelLT,
	"<=": RelLE,
	"≤":  RelLE,
	">":  RelGT,
	">=": RelGE,
	"≥":  RelGE,
}

// ParseRelation parses a comparison operator, including the Unicode
// glyphs. The empty string means equality.
func ParseRelation(op string) (Relation, bool) {
	r, ok := relationNames[op]
	return r, ok
}

// String returns the ASCII operator.
func (r Relation) String() string {
	switch r {
	case RelLT:
		return "<"
	case RelLE:
		return "<="
	case RelGT:
		return ">"
	case RelGE:
		return ">="
	case RelNE:
		return "!="
	default:
		return "="
	}
}

// Compare reports whether x r y holds.
func (r Relation) Compare(x, y float64) bool {
	switch {
	case x < y:
		return r&RelLT != 0
	case x > y:
		return r&RelGT != 0
	default:
		return r&RelEQ != 0
	}
}

// CountMatcher compares a number against a fixed value.
type CountMatcher struct {
	Rel   Relation
	Value float64
}

var countRe = regexp.MustCompile(`^(==?|!=?|≠|<=?|≤|>=?|≥|)\s*(-?(?:\.\d+|\d+\.?\d*))$`)

// ParseCountMatcher parses "op value" such as ">=2", "≤ 3" or "4".
func ParseCountMatcher(s string) (CountMatcher, bool) {
	m := countRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return CountMatcher{}, false
	}
	rel, ok := ParseRelation(m[1])
	if !ok {
		return CountMatcher{}, false
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return CountMatcher{}, false
	}
	return CountMatcher{Rel: rel, Value: v}, true
}

// MustCountMatcher is ParseCountMatcher for constant input.
func MustCountMatcher(s string) CountMatcher {
	m, ok := ParseCountMatcher(s)
	if !ok {
		panic("tags: bad count matcher " + strconv.Quote(s))
	}
	return m
}

// Test reports whether x satisfies the matcher.
func (m CountMatcher) Test(x float64) bool {
	return m.Rel.Compare(x, m.Value)
}

// TestInt is Test for counts.
func (m CountMatcher) TestInt(n int) bool {
	return m.Test(float64(n))
}

// String returns the canonical "op value" form.
func (m CountMatcher) String() string {
	return m.Rel.String() + strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// Unsatisfiable reports whether no count (a non-negative integer) can
// satisfy the matcher.
func (m CountMatcher) Unsatisfiable() bool {
	return m.Value < 0 && (m.Rel == RelLT || m.Rel == RelLE || m.Rel == RelEQ) ||
		m.Value == 0 && m.Rel == RelLT
}

// SQLExpr returns the condition "column op ?".
func (m CountMatcher) SQLExpr(column string) querysql.Expr {
	return querysql.Raw(column+m.Rel.String()+"?", m.Value)
}
