package search

import (
	"slices"
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/tags"
)

var sortTagRe = regexp.MustCompile(`^(?:#|tag:\s*|tagval:\s*)(\S+)$`)

func (s *PaperSearch) addFieldHighlighter(field, re string) {
	if s.highlightQuery != "" || re == "" {
		return
	}
	if s.highlighters == nil {
		s.highlighters = make(map[string][]string)
	}
	if !slices.Contains(s.highlighters[field], re) {
		s.highlighters[field] = append(s.highlighters[field], re)
	}
}

// FieldHighlighters returns, per field ("ti", "ab", "au", "co"), a regular
// expression matching the words the query looks for there. Words under a
// negation are not highlighted.
func (s *PaperSearch) FieldHighlighters() map[string]string {
	s.MainTerm()
	out := make(map[string]string, len(s.highlighters))
	for field, res := range s.highlighters {
		out[field] = strings.Join(res, "|")
	}
	return out
}

// FieldHighlighter returns the highlighter of one field, or "".
func (s *PaperSearch) FieldHighlighter(field string) string {
	return s.FieldHighlighters()[field]
}

// SetFieldHighlighterQuery takes the highlighters from query q instead of
// from this search's own query.
func (s *PaperSearch) SetFieldHighlighterQuery(q string) {
	hs := NewPaperSearch(s.user, Params{Q: q},
		WithConf(s.conf),
		WithContacts(s.contacts),
		WithViewer(s.viewer),
		WithLogger(s.logger),
		withToken(s.token))
	hs.MainTerm()
	s.MainTerm()
	s.highlighters = hs.highlighters
	s.highlightQuery = q
}

// HighlightTags returns the tags result lists should display: those the
// query searches for and those it sorts by.
func (s *PaperSearch) HighlightTags() []string {
	ht := s.MainTerm().Floats().StringList("tags")
	for _, f := range s.sortFieldList() {
		if m := sortTagRe.FindStringSubmatch(f); m != nil && tags.CheckTag(m[1], false) {
			ht = append(ht, m[1])
		}
	}
	var out []string
	for _, t := range ht {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
