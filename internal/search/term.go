package search

import (
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// Term is a node of a compiled search.
//
// CRITICAL: SQLExpr is liberal. For every row, Test returning true implies
// the row satisfies SQLExpr; the converse need not hold.
//
// Term is sealed: only this package implements it.
type Term interface {
	// Type names the term kind, such as "and", "tag" or "pn".
	Type() string
	// SQLExpr returns the WHERE fragment for the term and registers the
	// joins and columns Test will need.
	SQLExpr(q *querysql.QueryInfo) querysql.Expr
	// Test is the exact in-memory check. review is non-nil when testing a
	// single review of the paper.
	Test(row *ir.PaperRow, review *ir.ReviewInfo) bool
	// Floats holds out-of-band annotations: legend, view, tags.
	Floats() *ir.Floats
	// Span returns the part of the query the term was parsed from.
	Span() (Span, bool)
	// Children returns the operands of an operator term.
	Children() []Term

	base() *termBase
	// precise reports whether SQLExpr is exact, so that its negation is
	// still liberal.
	precise() bool
	prepareVisit(p *prepareParam)
	debug() ir.IRObject
}

// Span is a half-open byte range of Source.
type Span struct {
	Pos1, Pos2 int
	// Source is the string the positions refer to: the query itself, or
	// the definition of a named search.
	Source string
}

// Text returns the spanned source text.
func (s Span) Text() string {
	p1, p2 := s.Pos1, s.Pos2
	if p1 < 0 {
		p1 = 0
	}
	if p2 > len(s.Source) {
		p2 = len(s.Source)
	}
	if p1 >= p2 {
		return ""
	}
	return s.Source[p1:p2]
}

type termBase struct {
	typ     string
	floats  ir.Floats
	span    Span
	hasSpan bool
}

func (t *termBase) Type() string               { return t.typ }
func (t *termBase) Floats() *ir.Floats         { return &t.floats }
func (t *termBase) Children() []Term           { return nil }
func (t *termBase) base() *termBase            { return t }
func (t *termBase) precise() bool              { return false }
func (t *termBase) prepareVisit(*prepareParam) {}

func (t *termBase) Span() (Span, bool) {
	return t.span, t.hasSpan
}

func (t *termBase) setSpan(pos1, pos2 int, source string) {
	t.span = Span{Pos1: pos1, Pos2: pos2, Source: source}
	t.hasSpan = true
}

// applySpan widens the span to cover [pos1, pos2) of source.
func (t *termBase) applySpan(pos1, pos2 int, source string) {
	if !t.hasSpan || t.span.Source != source {
		t.setSpan(pos1, pos2, source)
		return
	}
	if pos1 < t.span.Pos1 {
		t.span.Pos1 = pos1
	}
	if pos2 > t.span.Pos2 {
		t.span.Pos2 = pos2
	}
}

func (t *termBase) debugBase() ir.IRObject {
	obj := ir.IRObject{"type": ir.IRString(t.typ)}
	if t.floats.Len() > 0 {
		obj["float"] = t.floats.Object()
	}
	return obj
}

// mergeFloats copies src's annotations into dst. "tags" and "view" lists
// concatenate; other keys are overwritten.
func mergeFloats(dst, src *ir.Floats) {
	for _, k := range src.Keys() {
		v := src.Get(k)
		if k == "tags" || k == "view" {
			if old, ok := dst.Get(k).(ir.IRArray); ok {
				if add, ok := v.(ir.IRArray); ok {
					merged := append(append(ir.IRArray{}, old...), add...)
					dst.Set(k, merged)
					continue
				}
			}
		}
		dst.Set(k, v)
	}
}

// TrueTerm matches every paper.
type TrueTerm struct{ termBase }

// FalseTerm matches no paper.
type FalseTerm struct{ termBase }

// NewTrue returns a fresh true term.
func NewTrue() *TrueTerm { return &TrueTerm{termBase{typ: "t"}} }

// NewFalse returns a fresh false term.
func NewFalse() *FalseTerm { return &FalseTerm{termBase{typ: "f"}} }

func (t *TrueTerm) SQLExpr(*querysql.QueryInfo) querysql.Expr  { return querysql.True }
func (t *TrueTerm) Test(*ir.PaperRow, *ir.ReviewInfo) bool      { return true }
func (t *TrueTerm) precise() bool                               { return true }
func (t *TrueTerm) debug() ir.IRObject                          { return t.debugBase() }
func (t *FalseTerm) SQLExpr(*querysql.QueryInfo) querysql.Expr { return querysql.False }
func (t *FalseTerm) Test(*ir.PaperRow, *ir.ReviewInfo) bool     { return false }
func (t *FalseTerm) precise() bool                              { return true }
func (t *FalseTerm) debug() ir.IRObject                         { return t.debugBase() }

func isTrue(t Term) bool {
	_, ok := t.(*TrueTerm)
	return ok
}

func isFalse(t Term) bool {
	_, ok := t.(*FalseTerm)
	return ok
}

// isUninteresting reports whether a term is a bare constant carrying no
// annotations; such terms keep no source span.
func isUninteresting(t Term) bool {
	return isTrue(t) && t.Floats().Len() == 0
}

// Negate returns the negation of t.
func Negate(t Term) Term {
	return Combine("not", t)
}

// negateIf negates t when neg is set.
func negateIf(t Term, neg bool) Term {
	if neg {
		return Negate(t)
	}
	return t
}
