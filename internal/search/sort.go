package search

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// paperOrder compares two matching papers.
type paperOrder func(a, b int) int

// SortedPaperIDs returns the matches in display order: by THEN group,
// then by the query's "sort:" directives followed by the default sort,
// then by paper number. Without any sort, a list of paper numbers keeps
// its written order and a single ordered tag sorts by value.
func (s *PaperSearch) SortedPaperIDs(ctx context.Context) ([]int, error) {
	if err := s.evaluate(ctx); err != nil {
		return nil, err
	}
	orders := s.sortOrders()
	out := slices.Clone(s.matches)
	slices.SortStableFunc(out, func(a, b int) int {
		if c := cmp.Compare(s.thenMap[a], s.thenMap[b]); c != 0 {
			return c
		}
		for _, o := range orders {
			if c := o(a, b); c != 0 {
				return c
			}
		}
		return cmp.Compare(a, b)
	})
	return out, nil
}

func (s *PaperSearch) sortOrders() []paperOrder {
	elts := s.View()
	if s.defaultSort != "" {
		elts = append(elts, ParseView([]string{"sort:" + s.defaultSort})...)
	}
	var orders []paperOrder
	for _, e := range elts {
		if !e.IsSort() {
			continue
		}
		if o := s.sortOrder(e.Keyword, e.Reversed()); o != nil {
			orders = append(orders, o)
		}
	}
	if len(orders) > 0 {
		return orders
	}

	switch qe := s.MainTerm().(type) {
	case *PaperIDTerm:
		if !qe.IsSorted() {
			return []paperOrder{func(a, b int) int {
				return comparePresent(qe.Position(a), qe.Position(b), false)
			}}
		}
	case *TagTerm:
		if tag, rev, ok := qe.DefaultSortTag(); ok {
			return []paperOrder{s.tagOrder(tag, rev)}
		}
	}
	return nil
}

// sortOrder returns the order named by keyword, or nil if none is known.
func (s *PaperSearch) sortOrder(keyword string, rev bool) paperOrder {
	switch strings.ToLower(keyword) {
	case "id", "pid", "paper", "number", "pn":
		return func(a, b int) int {
			return flip(cmp.Compare(a, b), rev)
		}
	case "title", "ti":
		col := collate.New(language.Und, collate.IgnoreCase)
		return func(a, b int) int {
			var ta, tb string
			if r := s.matchRows[a]; r != nil {
				ta = r.Title
			}
			if r := s.matchRows[b]; r != nil {
				tb = r.Title
			}
			return flip(col.CompareString(ta, tb), rev)
		}
	}
	if m := sortTagRe.FindStringSubmatch(keyword); m != nil {
		return s.tagOrder(m[1], rev)
	}
	return nil
}

// tagOrder sorts by the value of tag. Papers without the tag, or whose
// tag the user cannot see, sort last in either direction.
func (s *PaperSearch) tagOrder(tag string, rev bool) paperOrder {
	if strings.HasPrefix(tag, "~") && !strings.HasPrefix(tag, "~~") {
		tag = strconv.Itoa(s.userID()) + tag
	}
	value := func(pid int) (float64, bool) {
		r := s.matchRows[pid]
		if r == nil || !s.viewer.CanViewTag(r, tag) {
			return 0, false
		}
		return r.TagValue(tag)
	}
	return func(a, b int) int {
		va, oka := value(a)
		vb, okb := value(b)
		switch {
		case oka && okb:
			return flip(cmp.Compare(va, vb), rev)
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	}
}

// comparePresent compares positions, with -1 (absent) last.
func comparePresent(a, b int, rev bool) int {
	switch {
	case a >= 0 && b >= 0:
		return flip(cmp.Compare(a, b), rev)
	case a >= 0:
		return -1
	case b >= 0:
		return 1
	}
	return 0
}

func flip(c int, rev bool) int {
	if rev {
		return -c
	}
	return c
}
