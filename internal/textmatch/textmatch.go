// Package textmatch matches search words against free text.
//
// Matching is case-insensitive and accent-insensitive: both the word and
// the text are folded to NFD, stripped of combining marks and recomposed.
// A "*" in an unquoted word matches any run of non-blank characters.
// Word boundaries are enforced only at ends of the word that are
// themselves word characters, so "c++" still matches "c++ templates".
package textmatch

import (
	"strings"
	"unicode"

	"github.com/grafana/regexp"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Deaccent removes combining marks from s.
func Deaccent(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold deaccents and lowercases s.
func Fold(s string) string {
	return strings.ToLower(Deaccent(s))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

var spaceRun = regexp.MustCompile(`\s+`)

// Pattern is a compiled search word.
type Pattern struct {
	// Word is the word as searched for.
	Word string
	// Trivial is set for "*", which matches any non-empty text.
	Trivial bool
	re      *regexp.Regexp
}

// Compile builds the pattern for word. A literal word treats "*" as an
// ordinary character.
func Compile(word string, literal bool) *Pattern {
	p := &Pattern{Word: word}
	w := strings.TrimSpace(spaceRun.ReplaceAllString(Fold(word), " "))
	if !literal && strings.Trim(w, "*") == "" {
		p.Trivial = true
		return p
	}
	body := regexp.QuoteMeta(w)
	if !literal {
		body = strings.ReplaceAll(body, `\*`, `\S*`)
	}
	body = strings.ReplaceAll(body, " ", `\s+`)
	p.re = regexp.MustCompile(`(?i)` + WordRegex(w, body))
	return p
}

// WordRegex wraps body, the quoted form of word, in the word boundaries
// word's first and last characters call for.
func WordRegex(word, body string) string {
	if word == "" {
		return body
	}
	if isWordByte(word[0]) {
		body = `\b` + body
	}
	if isWordByte(word[len(word)-1]) {
		body += `\b`
	}
	return body
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Match reports whether text contains the pattern.
func (p *Pattern) Match(text string) bool {
	if p.Trivial {
		return text != ""
	}
	return p.re.MatchString(Deaccent(text))
}

// Regexp returns the expression matched against deaccented text, or ""
// for a trivial pattern.
func (p *Pattern) Regexp() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Highlighter returns an expression suitable for highlighting matches in
// deaccented text: Regexp, or "\S+" for a trivial pattern.
func (p *Pattern) Highlighter() string {
	if p.Trivial {
		return `\S+`
	}
	return p.Regexp()
}
