package search

import (
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// DefaultHighlightColor is the color of a HIGHLIGHT without an argument.
const DefaultHighlightColor = "highlightmark"

// ThenTerm partitions matches into ordered groups. A paper belongs to the
// first group it matches. Highlights mark papers in some groups with a
// color without affecting membership.
type ThenTerm struct {
	termBase
	groups     []Term
	highlights []highlight
}

type highlight struct {
	term Term
	// mask holds the indexes of the groups the highlight applies to.
	mask  *bitset.BitSet
	color string
}

func newThen(op, opinfo string, terms []Term) *ThenTerm {
	t := &ThenTerm{termBase: termBase{typ: "then"}}
	isHighlight := op == "highlight"
	color := strings.ToLower(opinfo)
	if color == "" {
		color = DefaultHighlightColor
	}
	for i, c := range terms {
		mergeFloats(&t.floats, c.Floats())
		sub, isThen := c.(*ThenTerm)
		switch {
		case i > 0 && isHighlight:
			mask := bitset.New(uint(len(t.groups)))
			for g := range t.groups {
				mask.Set(uint(g))
			}
			if isThen {
				for _, g := range sub.groups {
					t.highlights = append(t.highlights, highlight{term: g, mask: mask.Clone(), color: color})
				}
			} else {
				t.highlights = append(t.highlights, highlight{term: c, mask: mask, color: color})
			}
		case isThen:
			pos := uint(len(t.groups))
			t.groups = append(t.groups, sub.groups...)
			for _, h := range sub.highlights {
				shifted := bitset.New(h.mask.Len() + pos)
				for g, ok := h.mask.NextSet(0); ok; g, ok = h.mask.NextSet(g + 1) {
					shifted.Set(g + pos)
				}
				t.highlights = append(t.highlights, highlight{term: h.term, mask: shifted, color: h.color})
			}
		default:
			t.groups = append(t.groups, c)
		}
		if sp, ok := c.Span(); ok {
			t.applySpan(sp.Pos1, sp.Pos2, sp.Source)
		}
	}
	return t
}

// NThen returns the number of groups.
func (t *ThenTerm) NThen() int {
	return len(t.groups)
}

// Group returns group i.
func (t *ThenTerm) Group(i int) Term {
	return t.groups[i]
}

// HasHighlight reports whether any HIGHLIGHT applies.
func (t *ThenTerm) HasHighlight() bool {
	return len(t.highlights) > 0
}

// Children returns the groups followed by the highlight terms.
func (t *ThenTerm) Children() []Term {
	out := append([]Term(nil), t.groups...)
	for _, h := range t.highlights {
		out = append(out, h.term)
	}
	return out
}

// SQLExpr matches any group. Highlight terms contribute columns only.
func (t *ThenTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	exprs := make([]querysql.Expr, len(t.groups))
	for i, g := range t.groups {
		exprs[i] = g.SQLExpr(q)
	}
	for _, h := range t.highlights {
		h.term.SQLExpr(q)
	}
	return querysql.Or(exprs...)
}

func (t *ThenTerm) Test(row *ir.PaperRow, review *ir.ReviewInfo) bool {
	for _, g := range t.groups {
		if g.Test(row, review) {
			return true
		}
	}
	return false
}

// Match returns the index of the first group row matches, or -1, and the
// colors of the highlights that apply to it.
func (t *ThenTerm) Match(row *ir.PaperRow) (int, []string) {
	group := -1
	for i, g := range t.groups {
		if g.Test(row, nil) {
			group = i
			break
		}
	}
	if group < 0 {
		return -1, nil
	}
	var colors []string
	for _, h := range t.highlights {
		if h.mask.Test(uint(group)) && h.term.Test(row, nil) {
			colors = append(colors, h.color)
		}
	}
	return group, colors
}

func (t *ThenTerm) precise() bool {
	for _, g := range t.groups {
		if !g.precise() {
			return false
		}
	}
	return true
}

func (t *ThenTerm) prepareVisit(p *prepareParam) {
	p.setThenTerm(t)
	p = p.nest("then")
	for _, c := range t.Children() {
		c.prepareVisit(p)
	}
}

func (t *ThenTerm) debug() ir.IRObject {
	obj := t.debugBase()
	var groups ir.IRArray
	for _, g := range t.groups {
		groups = append(groups, g.debug())
	}
	obj["child"] = groups
	if len(t.highlights) > 0 {
		var hl ir.IRArray
		for _, h := range t.highlights {
			var idx ir.IRArray
			for g, ok := h.mask.NextSet(0); ok; g, ok = h.mask.NextSet(g + 1) {
				idx = append(idx, ir.IRInt(g))
			}
			hl = append(hl, ir.IRObject{
				"term":   h.term.debug(),
				"groups": idx,
				"color":  ir.IRString(h.color),
			})
		}
		obj["highlights"] = hl
	}
	return obj
}
