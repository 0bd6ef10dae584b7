package search

import (
	"strings"

	"github.com/roach88/papersearch/internal/splitter"
)

// ViewElement is one display directive, such as "sort:-title" or
// "show:abstract".
type ViewElement struct {
	Action  string
	Keyword string
	// Decorations qualify the keyword; "reverse" reverses a sort.
	Decorations []string
	// Positions in the query, or -1.
	Pos1w, Pos1, Pos2 int
}

// IsSort reports whether the directive orders results.
func (e ViewElement) IsSort() bool {
	switch e.Action {
	case "sort", "showsort", "editsort":
		return true
	}
	return false
}

// IsShow reports whether the directive displays a field.
func (e ViewElement) IsShow() bool {
	switch e.Action {
	case "show", "edit", "showsort", "editsort":
		return true
	}
	return false
}

// Reversed reports whether a "reverse" or "down" decoration is present.
func (e ViewElement) Reversed() bool {
	rev := false
	for _, d := range e.Decorations {
		switch d {
		case "reverse", "down":
			rev = !rev
		case "up", "forward":
			rev = false
		}
	}
	return rev
}

var viewActions = []string{"show", "sort", "edit", "hide", "showsort", "editsort"}

const viewSpace = " \n\r\t\v\f,"

func isViewAction(s string) bool {
	for _, a := range viewActions {
		if a == s {
			return true
		}
	}
	return false
}

// ParseView parses display directives. A word without an action is a
// "show:". Decorations follow the keyword, either as extra words or in
// brackets: "sort:title[reverse]" and "sort:title reverse" are the same.
// A leading "-" on the keyword adds "reverse".
func ParseView(words []string) []ViewElement {
	var out []ViewElement
	for _, w := range words {
		if e, ok := parseViewWord(w, -1, -1, -1); ok {
			out = append(out, e)
		}
	}
	return out
}

func parseViewWord(w string, pos1w, pos1, pos2 int) (ViewElement, bool) {
	e := ViewElement{Pos1w: pos1w, Pos1: pos1, Pos2: pos2}
	action, d, found := strings.Cut(w, ":")
	if !found || !isViewAction(action) {
		action, d = "show", w
	}
	e.Action = action

	keyword, hasKeyword := "", false
	if strings.HasPrefix(d, "[") {
		// Old form: "show:[title abstract]".
		inner := strings.TrimLeft(d[1:], " \t\n\r\v\f")
		ltrim := len(d) - len(inner)
		inner = strings.TrimSuffix(inner, "]")
		inner = strings.TrimRight(inner, " \t\n\r\v\f")
		if e.Pos1 >= 0 {
			e.Pos1 += ltrim
			e.Pos2 -= len(d) - ltrim - len(inner)
		}
		d = inner
	} else if strings.HasSuffix(d, "]") {
		if lb := strings.LastIndexByte(d, '['); lb >= 0 {
			keyword, hasKeyword = d[:lb], true
			d = d[lb+1 : len(d)-1]
		}
	}

	if d != "" {
		sp := splitter.New(d)
		for sp.SkipSpan(viewSpace) {
			e.Decorations = append(e.Decorations, sp.ShiftBalancedParens(viewSpace, false))
		}
	}
	if !hasKeyword && len(e.Decorations) > 0 {
		keyword = e.Decorations[0]
		e.Decorations = e.Decorations[1:]
		if len(e.Decorations) == 0 {
			e.Decorations = nil
		}
	}
	if keyword == "" {
		return e, false
	}
	if keyword[0] == '-' {
		e.Decorations = append([]string{"reverse"}, e.Decorations...)
	}
	if keyword[0] == '-' || keyword[0] == '+' {
		keyword = keyword[1:]
		if e.Pos1 >= 0 {
			e.Pos1++
		}
	}
	e.Keyword = keyword
	return e, keyword != ""
}

// UnparseView renders a directive so that ParseView reads it back.
func UnparseView(action, keyword string, decorations []string) string {
	if !isAlnum(keyword) && splitter.SpanBalancedParens(keyword, 0, "", true) != len(keyword) {
		keyword = `"` + keyword + `"`
	}
	if len(decorations) > 0 {
		return action + ":" + keyword + "[" + strings.Join(decorations, " ") + "]"
	}
	return action + ":" + keyword
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}

// View returns the display directives written in the query, in order.
func (s *PaperSearch) View() []ViewElement {
	return ParseView(s.MainTerm().Floats().StringList("view"))
}

// sortFieldList returns the sort keywords of the query's directives.
func (s *PaperSearch) sortFieldList() []string {
	var out []string
	for _, e := range s.View() {
		if e.IsSort() {
			out = append(out, e.Keyword)
		}
	}
	return out
}
