// Package author matches search text against paper authors.
//
// A Matcher is built from a guessed "First Last <email> (Affiliation)"
// string. Names match word by word after deaccenting: every last-name word
// must appear in the author's last name, and when both sides have first
// names, some first-name word or initial must match. A matcher built from
// a bare affiliation compares affiliation words instead, where weak words
// such as "university" need a stronger companion to count.
package author

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/textmatch"
)

// Match says how an author matched.
type Match int

const (
	NoMatch Match = iota
	MatchName
	MatchAffiliation
)

type wordInfo struct {
	stop      bool
	weak      bool
	alternate []string
}

var affiliationWords = map[string]wordInfo{
	"of":           {stop: true},
	"the":          {stop: true},
	"and":          {stop: true},
	"at":           {stop: true},
	"for":          {stop: true},
	"in":           {stop: true},
	"de":           {stop: true},
	"university":   {weak: true, alternate: []string{"univ"}},
	"univ":         {weak: true, alternate: []string{"university"}},
	"institute":    {weak: true, alternate: []string{"inst"}},
	"inst":         {weak: true, alternate: []string{"institute"}},
	"college":      {weak: true},
	"school":       {weak: true},
	"department":   {weak: true, alternate: []string{"dept"}},
	"dept":         {weak: true, alternate: []string{"department"}},
	"laboratory":   {weak: true, alternate: []string{"lab", "labs"}},
	"lab":          {weak: true, alternate: []string{"laboratory"}},
	"labs":         {weak: true, alternate: []string{"laboratories"}},
	"laboratories": {weak: true, alternate: []string{"labs"}},
	"research":     {weak: true},
	"center":       {weak: true, alternate: []string{"centre"}},
	"centre":       {weak: true, alternate: []string{"center"}},
	"technology":   {weak: true, alternate: []string{"tech"}},
	"tech":         {weak: true, alternate: []string{"technology"}},
	"science":      {weak: true},
	"sciences":     {weak: true},
	"inc":          {weak: true},
	"corporation":  {weak: true, alternate: []string{"corp"}},
	"corp":         {weak: true, alternate: []string{"corporation"}},
}

var (
	nameWordRe = regexp.MustCompile(`[a-z0-9]+`)
	affWordRe  = regexp.MustCompile(`[a-z0-9&]+`)
	emailRe    = regexp.MustCompile(`<([^<>\s]*)>|(\S+@\S+)`)
	parenRe    = regexp.MustCompile(`\s*\(([^()]*)\)\s*$`)
)

// Matcher matches authors against one search string.
type Matcher struct {
	first   *regexp.Regexp
	last    []*regexp.Regexp
	aff     *affiliationMatcher
	general *regexp.Regexp
}

type affiliationMatcher struct {
	words   []string
	anyWeak bool
	re      *regexp.Regexp
}

// Guess splits a free-form author string into name, email and
// affiliation. "Last, First" and "First Last" are both understood.
func Guess(s string) ir.Author {
	var a ir.Author
	s = strings.TrimSpace(s)
	if m := parenRe.FindStringSubmatchIndex(s); m != nil {
		a.Affiliation = strings.TrimSpace(s[m[2]:m[3]])
		s = s[:m[0]]
	}
	if m := emailRe.FindStringSubmatchIndex(s); m != nil {
		if m[2] >= 0 {
			a.Email = s[m[2]:m[3]]
		} else {
			a.Email = s[m[4]:m[5]]
		}
		s = strings.TrimSpace(s[:m[0]] + " " + s[m[1]:])
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		a.LastName = strings.TrimSpace(s[:i])
		a.FirstName = strings.TrimSpace(s[i+1:])
		return a
	}
	words := strings.Fields(s)
	switch len(words) {
	case 0:
	case 1:
		a.LastName = words[0]
	default:
		a.FirstName = strings.Join(words[:len(words)-1], " ")
		a.LastName = words[len(words)-1]
	}
	return a
}

// NewMatcher builds a matcher for a guessed author string.
func NewMatcher(s string) *Matcher {
	return newMatcher(Guess(s))
}

// NewAffiliationMatcher builds a matcher that compares affiliations only.
func NewAffiliationMatcher(s string) *Matcher {
	return newMatcher(ir.Author{Affiliation: s})
}

func newMatcher(a ir.Author) *Matcher {
	m := &Matcher{}
	var words []string
	if a.FirstName != "" {
		var rr []string
		for _, w := range nameWordRe.FindAllString(textmatch.Fold(a.FirstName), -1) {
			words = append(words, w)
			rr = append(rr, w+`\b`)
			if w[0] >= 'a' && w[0] <= 'z' {
				if len(w) == 1 {
					rr = append(rr, w+`[a-z]*\b`)
				} else {
					// "eddie" also matches the initial "E."
					rr = append(rr, w[:1]+`\.`)
				}
			}
		}
		if len(rr) > 0 {
			m.first = regexp.MustCompile(`(?i)\b(?:` + strings.Join(rr, "|") + `)`)
		}
	}
	if a.LastName != "" {
		for _, w := range nameWordRe.FindAllString(textmatch.Fold(a.LastName), -1) {
			words = append(words, w)
			m.last = append(m.last, regexp.MustCompile(`(?i)\b`+w+`\b`))
		}
	}
	if a.Affiliation != "" && a.FirstName == "" && a.LastName == "" && a.Email == "" {
		am := &affiliationMatcher{}
		var rs []string
		for _, w := range affWordRe.FindAllString(textmatch.Fold(a.Affiliation), -1) {
			info := affiliationWords[w]
			if info.stop {
				continue
			}
			q := regexp.QuoteMeta(w)
			words = append(words, q)
			rs = append(rs, q)
			am.words = append(am.words, w)
			if info.weak {
				am.anyWeak = true
			}
			for _, alt := range info.alternate {
				rs = append(rs, regexp.QuoteMeta(alt))
				words = append(words, regexp.QuoteMeta(alt))
			}
		}
		if len(rs) > 0 {
			am.re = regexp.MustCompile(`\b(?:` + strings.Join(rs, "|") + `)\b`)
			m.aff = am
		}
	}
	if content := strings.Join(words, "|"); content != "" && content != "none" {
		m.general = regexp.MustCompile(`(?i)\b(?:` + content + `)\b`)
	}
	return m
}

// IsEmpty reports whether the matcher can match nothing.
func (m *Matcher) IsEmpty() bool {
	return m.general == nil
}

// Highlighter returns the expression that highlights any matched word.
func (m *Matcher) Highlighter() string {
	if m.general == nil {
		return ""
	}
	return m.general.String()
}

// Test matches one author.
func (m *Matcher) Test(a ir.Author) Match {
	if m.general == nil {
		return NoMatch
	}
	if len(m.last) > 0 && a.LastName != "" {
		last := textmatch.Deaccent(a.LastName)
		ok := true
		for _, re := range m.last {
			if !re.MatchString(last) {
				ok = false
				break
			}
		}
		if ok && (a.FirstName == "" || m.first == nil || m.first.MatchString(textmatch.Deaccent(a.FirstName))) {
			return MatchName
		}
	}
	if m.aff != nil && a.Affiliation != "" && m.aff.test(textmatch.Fold(a.Affiliation)) {
		return MatchAffiliation
	}
	return NoMatch
}

// test reports whether the subject affiliation text matches. Without weak
// words any shared word is enough. Otherwise a strong word must be seen,
// or every requested weak word must be.
func (am *affiliationMatcher) test(text string) bool {
	found := am.re.FindAllString(text, -1)
	if len(found) == 0 {
		return false
	}
	if !am.anyWeak {
		return true
	}
	seen := make(map[string]bool, len(found))
	for _, w := range found {
		seen[w] = true
	}
	result := true
	for _, w := range am.words {
		info := affiliationWords[w]
		saw := seen[w]
		if !saw {
			for _, alt := range info.alternate {
				if seen[alt] {
					saw = true
					break
				}
			}
		}
		switch {
		case saw && !info.weak:
			return true
		case !saw:
			result = false
		}
	}
	return result
}
