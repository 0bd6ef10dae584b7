package search

import (
	"fmt"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// OpTerm combines its children with "and", "space", "or", "xor" or "not".
// "space" is adjacency; it behaves as "and" except that adjacent paper
// numbers are unioned.
type OpTerm struct {
	termBase
	child []Term
}

// Combine joins terms with op, which names an operator of the operator
// table ("not", "and", "space", "or", "xor", "then" or "highlight").
// Constant children are folded away: an "and" containing False is False,
// an "or" containing True is True. Children's annotations move to the
// result.
func Combine(op string, terms ...Term) Term {
	return combine(op, "", terms)
}

// CombineOperator is Combine for a parsed operator, which may carry an
// argument such as a highlight color.
func CombineOperator(op *Operator, terms ...Term) Term {
	return combine(op.Op, op.Opinfo, terms)
}

func combine(op, opinfo string, terms []Term) Term {
	var live []Term
	for _, t := range terms {
		if t != nil {
			live = append(live, t)
		}
	}
	if op == "not" {
		return finishNot(live)
	}
	switch len(live) {
	case 0:
		if op == "and" || op == "space" {
			return NewTrue()
		}
		return NewFalse()
	case 1:
		return live[0]
	}
	switch op {
	case "and", "space":
		return finishAnd(op, live)
	case "or":
		return finishOr(live)
	case "xor":
		return finishXor(live)
	case "then", "highlight":
		return newThen(op, opinfo, live)
	}
	panic(fmt.Sprintf("search: unknown operator %q", op))
}

func newOp(typ string, terms []Term) *OpTerm {
	t := &OpTerm{termBase: termBase{typ: typ}}
	for _, c := range terms {
		mergeFloats(&t.floats, c.Floats())
		t.child = append(t.child, c)
	}
	return t
}

// flatten splices in the children of same-typed children.
func (t *OpTerm) flatten() []Term {
	var out []Term
	for _, c := range t.child {
		if o, ok := c.(*OpTerm); ok && o.typ == t.typ {
			out = append(out, o.child...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

// finish installs the surviving children. An empty list becomes the
// constant empty, a single child stands for the operator.
func (t *OpTerm) finish(children []Term, empty bool) Term {
	switch len(children) {
	case 0:
		var r Term = NewFalse()
		if empty {
			r = NewTrue()
		}
		r.base().floats = t.floats
		return r
	case 1:
		c := children[0]
		c.base().floats = t.floats
		return c
	}
	t.child = children
	for _, c := range children {
		if sp, ok := c.Span(); ok {
			t.applySpan(sp.Pos1, sp.Pos2, sp.Source)
		}
	}
	return t
}

func finishAnd(typ string, terms []Term) Term {
	t := newOp(typ, terms)
	var children []Term
	var pn *PaperIDTerm
	for _, c := range t.flatten() {
		switch {
		case isFalse(c):
			f := NewFalse()
			f.floats = t.floats
			return f
		case isTrue(c):
		case typ == "space" && c.Type() == "pn":
			if pn == nil {
				pn = c.(*PaperIDTerm).clone()
			} else {
				pn.merge(c.(*PaperIDTerm))
			}
		default:
			children = append(children, c)
		}
	}
	if pn != nil {
		children = append(children, pn)
	}
	return t.finish(children, true)
}

func finishOr(terms []Term) Term {
	t := newOp("or", terms)
	var children []Term
	var pn *PaperIDTerm
	for _, c := range t.flatten() {
		switch {
		case isTrue(c):
			r := NewTrue()
			r.floats = t.floats
			return r
		case isFalse(c):
		case c.Type() == "pn":
			if pn == nil {
				pn = c.(*PaperIDTerm).clone()
			} else {
				pn.merge(c.(*PaperIDTerm))
			}
		default:
			children = append(children, c)
		}
	}
	if pn != nil {
		children = append(children, pn)
	}
	return t.finish(children, false)
}

func finishXor(terms []Term) Term {
	t := newOp("xor", terms)
	var children []Term
	neg := false
	for _, c := range t.flatten() {
		switch {
		case isTrue(c):
			neg = !neg
		case isFalse(c):
		default:
			children = append(children, c)
		}
	}
	floats := t.floats
	r := t.finish(children, false)
	if neg {
		r = Negate(r)
		r.base().floats = floats
	}
	return r
}

func finishNot(terms []Term) Term {
	var qv Term
	if len(terms) > 0 {
		qv = terms[0]
	}
	var qr Term
	switch {
	case qv == nil || isFalse(qv):
		qr = NewTrue()
	case isTrue(qv):
		qr = NewFalse()
	case qv.Type() == "not":
		qr = qv.Children()[0]
	}
	if qr != nil {
		if qv != nil {
			var f ir.Floats
			mergeFloats(&f, qv.Floats())
			qr.base().floats = f
		}
		return qr
	}
	t := newOp("not", []Term{qv})
	t.floats.Delete("tags")
	if sp, ok := qv.Span(); ok {
		t.setSpan(sp.Pos1, sp.Pos2, sp.Source)
	}
	return t
}

// Children returns the operands.
func (t *OpTerm) Children() []Term {
	return t.child
}

func (t *OpTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	exprs := make([]querysql.Expr, len(t.child))
	for i, c := range t.child {
		exprs[i] = c.SQLExpr(q)
	}
	switch t.typ {
	case "and", "space":
		return querysql.And(exprs...)
	case "or":
		return querysql.Or(exprs...)
	case "not":
		if t.child[0].precise() {
			return querysql.Not(exprs[0])
		}
	}
	return querysql.True
}

func (t *OpTerm) Test(row *ir.PaperRow, review *ir.ReviewInfo) bool {
	switch t.typ {
	case "and", "space":
		for _, c := range t.child {
			if !c.Test(row, review) {
				return false
			}
		}
		return true
	case "or":
		for _, c := range t.child {
			if c.Test(row, review) {
				return true
			}
		}
		return false
	case "xor":
		x := false
		for _, c := range t.child {
			if c.Test(row, review) {
				x = !x
			}
		}
		return x
	case "not":
		return !t.child[0].Test(row, review)
	}
	return false
}

func (t *OpTerm) precise() bool {
	if t.typ == "xor" {
		return false
	}
	for _, c := range t.child {
		if !c.precise() {
			return false
		}
	}
	return true
}

func (t *OpTerm) prepareVisit(p *prepareParam) {
	p = p.nest(t.typ)
	for _, c := range t.child {
		c.prepareVisit(p)
	}
}

func (t *OpTerm) debug() ir.IRObject {
	obj := t.debugBase()
	var arr ir.IRArray
	for _, c := range t.child {
		arr = append(arr, c.debug())
	}
	obj["child"] = arr
	return obj
}
