package tags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grafana/regexp"
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// ContactResolver finds the PC members named by a twiddle prefix such as
// "marina" in "marina~vote".
type ContactResolver interface {
	MatchPC(word string) []int
}

var (
	tagBaseRe     = regexp.MustCompile(`^[a-zA-Z@_:.][-a-zA-Z0-9!@_:.\/]*$`)
	tagBaseStarRe = regexp.MustCompile(`^[a-zA-Z@*_:.][-a-zA-Z0-9!@*_:.\/]*$`)
)

// CheckTag reports whether tag (without value) is a valid tag name.
// Wildcards are allowed only when allowStar is set.
func CheckTag(tag string, allowStar bool) bool {
	base := tag
	if strings.HasPrefix(base, "~~") {
		base = base[2:]
	} else if i := strings.IndexByte(base, '~'); i >= 0 {
		owner := base[:i]
		if owner != "" && !isDigits(owner) {
			return false
		}
		base = base[i+1:]
	}
	if allowStar {
		return tagBaseStarRe.MatchString(base)
	}
	return tagBaseRe.MatchString(base)
}

// Split separates "tag#value" into its parts.
func Split(s string) (tag string, value float64, hasValue bool) {
	i := strings.LastIndexAny(s, "#=")
	if i <= 0 {
		return s, 0, false
	}
	v, err := strconv.ParseFloat(s[i+1:], 64)
	if err != nil {
		return s, 0, false
	}
	return s[:i], v, true
}

type pattern struct {
	display string
	// literal is the exact lowercase tag name, or "" for a wildcard.
	literal string
	like    string
	re      string
}

// Matcher tests a paper's tags against tag-name patterns and value
// comparisons. A tag matches when its name matches any pattern and its
// value satisfies every value matcher.
type Matcher struct {
	userID   int
	resolver ContactResolver

	patterns []pattern
	values   []CountMatcher
	excluded map[string]bool
	errors   []string

	regex *regexp.Regexp
}

// NewMatcher returns an empty matcher for the acting user. resolver may be
// nil when named twiddle prefixes need not be supported.
func NewMatcher(userID int, resolver ContactResolver) *Matcher {
	return &Matcher{userID: userID, resolver: resolver}
}

// AddCheckTag adds a tag-name pattern. It validates tag, resolves twiddle
// prefixes and records an error message on failure.
func (m *Matcher) AddCheckTag(tag string, allowStar bool) bool {
	if tag == "" {
		m.errors = append(m.errors, "Tag missing.")
		return false
	}
	owners, ownerRe, base, ok := m.splitOwner(tag)
	if !ok {
		return false
	}
	if base == "" || !CheckTag(base, allowStar) {
		m.errors = append(m.errors, fmt.Sprintf("Invalid tag “%s”.", tag))
		return false
	}
	m.regex = nil

	baseRe := strings.ReplaceAll(regexp.QuoteMeta(base), `\*`, `[^\s#]*`)
	wild := strings.Contains(base, "*")
	switch {
	case ownerRe != "":
		m.patterns = append(m.patterns, pattern{
			display: "*~" + base,
			like:    "%~" + likePattern(base),
			re:      ownerRe + "~" + baseRe,
		})
	case owners != nil:
		for _, cid := range owners {
			prefix := strconv.Itoa(cid) + "~"
			p := pattern{display: prefix + base, re: prefix + baseRe}
			if wild {
				p.like = prefix + likePattern(base)
			} else {
				p.literal = strings.ToLower(prefix + base)
			}
			m.patterns = append(m.patterns, p)
		}
	default:
		p := pattern{display: base, re: baseRe}
		if wild {
			p.like = likePattern(base)
		} else {
			p.literal = strings.ToLower(base)
		}
		m.patterns = append(m.patterns, p)
	}
	return true
}

// splitOwner resolves the twiddle prefix of tag. owners lists explicit
// contact ids; ownerRe is set for "any~tag".
func (m *Matcher) splitOwner(tag string) (owners []int, ownerRe, base string, ok bool) {
	if strings.HasPrefix(tag, "~~") {
		return nil, "", tag, true
	}
	i := strings.IndexByte(tag, '~')
	if i < 0 {
		return nil, "", tag, true
	}
	owner, base := tag[:i], tag[i+1:]
	switch {
	case owner == "":
		return []int{m.userID}, "", base, true
	case isDigits(owner):
		n, _ := strconv.Atoi(owner)
		return []int{n}, "", base, true
	case owner == "any" || owner == "*":
		return nil, `\d+`, base, true
	}
	var cids []int
	if m.resolver != nil {
		cids = m.resolver.MatchPC(owner)
	}
	if len(cids) == 0 {
		m.errors = append(m.errors, fmt.Sprintf("No such PC member “%s”.", owner))
		return nil, "", "", false
	}
	return cids, "", base, true
}

// AddValueMatcher requires matching tags to have a value satisfying c.
func (m *Matcher) AddValueMatcher(c CountMatcher) {
	m.values = append(m.values, c)
}

// SetExclusion makes the named tags invisible to Test.
func (m *Matcher) SetExclusion(tags []string) {
	if len(tags) == 0 {
		return
	}
	if m.excluded == nil {
		m.excluded = make(map[string]bool)
	}
	for _, t := range tags {
		m.excluded[strings.ToLower(t)] = true
	}
}

// IsEmptyAfterExclusion reports whether nothing is left to match: there
// are no patterns, or every pattern names an excluded tag exactly.
func (m *Matcher) IsEmptyAfterExclusion() bool {
	for _, p := range m.patterns {
		if p.literal == "" || !m.excluded[p.literal] {
			return false
		}
	}
	return true
}

func (m *Matcher) compiled() *regexp.Regexp {
	if m.regex == nil {
		alts := make([]string, len(m.patterns))
		for i, p := range m.patterns {
			alts[i] = p.re
		}
		expr := `(?i)^(?:` + strings.Join(alts, "|") + `)$`
		if len(alts) == 0 {
			expr = `^\b\B$`
		}
		m.regex = regexp.MustCompile(expr)
	}
	return m.regex
}

// Regex returns the name-matching expression, for debugging.
func (m *Matcher) Regex() string {
	return m.compiled().String()
}

// TestIgnoreValue reports whether tag's name matches, whatever its value.
func (m *Matcher) TestIgnoreValue(tag string) bool {
	return m.compiled().MatchString(tag)
}

// TestValue reports whether v satisfies every value matcher.
func (m *Matcher) TestValue(v float64) bool {
	for _, c := range m.values {
		if !c.Test(v) {
			return false
		}
	}
	return true
}

// Test reports whether any of entries matches.
func (m *Matcher) Test(entries []ir.TagEntry) bool {
	re := m.compiled()
	for _, e := range entries {
		if m.excluded[strings.ToLower(e.Tag)] {
			continue
		}
		if re.MatchString(e.Tag) && m.TestValue(e.Value) {
			return true
		}
	}
	return false
}

// SQLExpr returns a liberal condition on column, a tag-name column with
// case-insensitive collation. Values are not checked.
func (m *Matcher) SQLExpr(column string) querysql.Expr {
	var lits []string
	var ors []querysql.Expr
	for _, p := range m.patterns {
		switch {
		case p.literal != "":
			if !m.excluded[p.literal] {
				lits = append(lits, p.literal)
			}
		default:
			ors = append(ors, querysql.Raw(column+` like ? escape '\'`, p.like))
		}
	}
	if len(lits) > 0 {
		ors = append([]querysql.Expr{querysql.InStrings(column, lits)}, ors...)
	}
	return querysql.Or(ors...)
}

// SingleTag returns the one literal tag the matcher names, or "".
func (m *Matcher) SingleTag() string {
	if len(m.patterns) != 1 || m.patterns[0].literal == "" {
		return ""
	}
	return m.patterns[0].display
}

// TagPatterns returns the patterns in display form; "*~vote" stands for
// every user's "vote".
func (m *Matcher) TagPatterns() []string {
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = p.display
	}
	return out
}

// Errors returns the messages recorded while adding patterns.
func (m *Matcher) Errors() []string {
	return m.errors
}

func likePattern(base string) string {
	return strings.ReplaceAll(querysql.LikeEscape(base), "*", "%")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
