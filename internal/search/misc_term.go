package search

import (
	"fmt"
	"strings"

	"github.com/roach88/papersearch/internal/ir"
)

// maxNamedSearchDepth bounds named-search expansion; deeper nesting is
// reported as a cycle.
const maxNamedSearchDepth = 10

// savedSearch is one frame of named-search expansion.
type savedSearch struct {
	name string
	sw   *SearchWord
	text string
}

// parseHas handles "has:KEYWORD", which stands for the keyword's own
// "has" argument, so "has:dec" means "dec:any".
func parseHas(word string, sw *SearchWord, srch *PaperSearch) []Term {
	if def := LookupKeyword(word, srch.conf); def != nil && def.Has != "" && def.Parser != nil {
		sw2 := makeKwarg(def.Has, sw.Pos1w, sw.Pos1, sw.Pos2)
		sw2.KwExplicit = true
		sw2.Kwdef = def
		if terms := def.Parser.Parse(def.Has, sw2, srch); len(terms) > 0 {
			return terms
		}
	}
	srch.lwarning(sw, fmt.Sprintf("Unknown search ‘has:%s’", word))
	return one(NewFalse())
}

// expandNamedSearch returns the query a named search stands for. A limit
// other than "s" is folded in as "in:".
func expandNamedSearch(ns *ir.NamedSearch) string {
	q := ns.Q
	if q != "" && ns.T != "" && ns.T != "s" {
		q = "(" + q + ") in:" + ns.T
	}
	return q
}

// parseNamedSearch expands "ss:NAME". Only PC members may use named
// searches.
func parseNamedSearch(word string, sw *SearchWord, srch *PaperSearch) []Term {
	if !srch.user.IsPC() {
		return nil
	}
	name := strings.ToLower(word)
	nextq, found := srch.namedSearchQuery(name)
	switch {
	case !found:
		srch.lwarning(sw, "Named search not found")
	case nextq == "":
		srch.lwarning(sw, "Named search defined incorrectly")
	case srch.expandingNamedSearch(name) || len(srch.ssStack) >= maxNamedSearchDepth:
		// A cycle is reported once per name; later references are false.
		if !srch.ssCircular[name] {
			if srch.ssCircular == nil {
				srch.ssCircular = make(map[string]bool)
			}
			srch.ssCircular[name] = true
			srch.lwarning(sw, "Circular reference in named search definitions")
		}
	default:
		srch.ssStack = append(srch.ssStack, savedSearch{name: name, sw: sw, text: nextq})
		t := srch.parseExpression(nextq)
		srch.ssStack = srch.ssStack[:len(srch.ssStack)-1]
		if t != nil {
			return one(t)
		}
	}
	return one(NewFalse())
}

// namedSearchQuery looks up and expands a named search once per search.
func (s *PaperSearch) namedSearchQuery(name string) (string, bool) {
	if q, ok := s.ssQueries[name]; ok {
		return q, true
	}
	ns := s.conf.FindNamedSearch(name)
	if ns == nil {
		return "", false
	}
	if s.ssQueries == nil {
		s.ssQueries = make(map[string]string)
	}
	q := expandNamedSearch(ns)
	s.ssQueries[name] = q
	return q, true
}

// expandingNamedSearch reports whether name is being expanded already.
func (s *PaperSearch) expandingNamedSearch(name string) bool {
	for _, frame := range s.ssStack {
		if frame.name == name {
			return true
		}
	}
	return false
}

// parseLegend sets the label of a THEN group.
func parseLegend(word string, _ *SearchWord, _ *PaperSearch) []Term {
	t := NewTrue()
	t.floats.Set("legend", ir.IRString(word))
	return one(t)
}

// parseView records a display directive such as "show:abstract" or
// "sort:-title". It matches every paper.
func parseView(_ string, sw *SearchWord, _ *PaperSearch) []Term {
	t := NewTrue()
	t.floats.Set("view", ir.StringArray(sw.Kwdef.Name+":"+sw.QWord))
	return one(t)
}

func parseSearchControl(word string, sw *SearchWord, srch *PaperSearch) []Term {
	if strings.EqualFold(word, "expand_automatic") {
		if srch.expandAutomatic == 0 {
			srch.expandAutomatic = 1
		}
		return one(NewTrue())
	}
	srch.lwarning(sw, fmt.Sprintf("Unknown search control option ‘%s’", word))
	return one(NewTrue())
}
