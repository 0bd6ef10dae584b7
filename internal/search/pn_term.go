package search

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// maxListedIDs bounds how many ids of a range are listed explicitly; wider
// ranges become BETWEEN conditions.
const maxListedIDs = 64

// maxPaperID is the largest paper number a query may name.
const maxPaperID = math.MaxInt32

var pnRangeRe = regexp.MustCompile(`^#?(\d+)(?:(?:-|–|—)#?(\d+))?$`)

type idRange struct {
	lo, hi int
	// rev is set for a range written high to low, as in "9-3".
	rev bool
}

// PaperIDTerm matches papers by number. The written order of the ranges is
// kept for sorting.
type PaperIDTerm struct {
	termBase
	ranges []idRange
}

// parsePaperIDs parses "3-5", "#3,#7" and the like. ok is false when any
// part is not a number or range, or names a paper above maxPaperID.
func parsePaperIDs(word string) (*PaperIDTerm, bool) {
	t := &PaperIDTerm{termBase: termBase{typ: "pn"}}
	for _, part := range strings.Split(word, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := pnRangeRe.FindStringSubmatch(part)
		if m == nil {
			return nil, false
		}
		lo, err := strconv.Atoi(m[1])
		if err != nil || lo > maxPaperID {
			return nil, false
		}
		hi := lo
		if m[2] != "" {
			if hi, err = strconv.Atoi(m[2]); err != nil || hi > maxPaperID {
				return nil, false
			}
		}
		r := idRange{lo: lo, hi: hi}
		if hi < lo {
			r = idRange{lo: hi, hi: lo, rev: true}
		}
		t.ranges = append(t.ranges, r)
	}
	return t, len(t.ranges) > 0
}

// NewPaperIDTerm matches exactly ids, in order.
func NewPaperIDTerm(ids ...int) *PaperIDTerm {
	t := &PaperIDTerm{termBase: termBase{typ: "pn"}}
	for _, id := range ids {
		t.ranges = append(t.ranges, idRange{lo: id, hi: id})
	}
	return t
}

func parsePaperIDKeyword(word string, sw *SearchWord, srch *PaperSearch) []Term {
	if t, ok := parsePaperIDs(word); ok {
		return one(t)
	}
	srch.lwarning(sw, fmt.Sprintf("“%s” is not a paper number or range.", word))
	return nil
}

func (t *PaperIDTerm) clone() *PaperIDTerm {
	c := &PaperIDTerm{termBase: t.termBase}
	c.ranges = append([]idRange(nil), t.ranges...)
	return c
}

func (t *PaperIDTerm) merge(o *PaperIDTerm) {
	t.ranges = append(t.ranges, o.ranges...)
	if sp, ok := o.Span(); ok {
		t.applySpan(sp.Pos1, sp.Pos2, sp.Source)
	}
}

// Contains reports whether pid is named.
func (t *PaperIDTerm) Contains(pid int) bool {
	for _, r := range t.ranges {
		if pid >= r.lo && pid <= r.hi {
			return true
		}
	}
	return false
}

// Position returns the rank of pid in the written order, or -1.
func (t *PaperIDTerm) Position(pid int) int {
	pos := 0
	for _, r := range t.ranges {
		if pid >= r.lo && pid <= r.hi {
			if r.rev {
				return pos + r.hi - pid
			}
			return pos + pid - r.lo
		}
		pos += r.hi - r.lo + 1
	}
	return -1
}

// IsSorted reports whether the written order is ascending.
func (t *PaperIDTerm) IsSorted() bool {
	last := -1
	for _, r := range t.ranges {
		if r.rev && r.hi > r.lo || r.lo <= last {
			return false
		}
		last = r.hi
	}
	return true
}

// IDs lists the named papers in ascending order. Ranges wider than
// maxIDs in total are truncated.
func (t *PaperIDTerm) IDs(maxIDs int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range t.ranges {
		for i := 0; i <= r.hi-r.lo && len(out) < maxIDs; i++ {
			pid := r.lo + i
			if !seen[pid] {
				seen[pid] = true
				out = append(out, pid)
			}
		}
	}
	sort.Ints(out)
	return out
}

// listedIDs returns the ids of the ranges narrow enough to list, in
// written order.
func (t *PaperIDTerm) listedIDs() []int {
	var out []int
	for _, r := range t.ranges {
		if r.hi-r.lo >= maxListedIDs {
			continue
		}
		for i := 0; i <= r.hi-r.lo; i++ {
			out = append(out, r.lo+i)
		}
	}
	return out
}

func (t *PaperIDTerm) SQLExpr(*querysql.QueryInfo) querysql.Expr {
	var listed []int
	var ors []querysql.Expr
	for _, r := range t.ranges {
		if r.hi-r.lo < maxListedIDs {
			for i := 0; i <= r.hi-r.lo; i++ {
				listed = append(listed, r.lo+i)
			}
		} else {
			ors = append(ors, querysql.Raw("Paper.paperId between ? and ?", r.lo, r.hi))
		}
	}
	if len(listed) > 0 {
		sort.Ints(listed)
		ors = append([]querysql.Expr{querysql.InInts("Paper.paperId", dedupe(listed))}, ors...)
	}
	return querysql.Or(ors...)
}

func dedupe(sorted []int) []int {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func (t *PaperIDTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	return t.Contains(row.PaperID)
}

func (t *PaperIDTerm) precise() bool { return true }

func (t *PaperIDTerm) debug() ir.IRObject {
	obj := t.debugBase()
	var arr ir.IRArray
	for _, r := range t.ranges {
		s := strconv.Itoa(r.lo)
		if r.rev {
			s = strconv.Itoa(r.hi) + "-" + s
		} else if r.hi != r.lo {
			s += "-" + strconv.Itoa(r.hi)
		}
		arr = append(arr, ir.IRString(s))
	}
	obj["ranges"] = arr
	return obj
}
