// Package splitter lexes search strings.
//
// A Splitter is a cursor over the input with explicit save and restore, not
// a one-pass stream: the parser looks ahead for operators and keywords and
// backs off when a prefix turns out to mean something else. Every shift
// skips the whitespace that follows the token, and LastPos remembers where
// the token itself ended so that source spans exclude trailing blanks.
//
// Positions are byte offsets into the original string.
package splitter

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/grafana/regexp"
)

// Splitter is a cursor over a search string.
type Splitter struct {
	str string
	// Pos is the position of the next token.
	Pos int
	// LastPos is the end of the most recently shifted token, before any
	// whitespace skipped after it.
	LastPos int
}

// Mark is a saved cursor position.
type Mark struct {
	pos, lastPos int
}

var keywordRe = regexp.MustCompile(`^(?:[_a-zA-Z0-9][-_.a-zA-Z0-9]*:|"[^"]+":)`)

// New returns a Splitter positioned at the first non-blank character of str.
func New(str string) *Splitter {
	s := &Splitter{str: str}
	s.skipWhitespace()
	s.LastPos = s.Pos
	return s
}

// String returns the whole input.
func (s *Splitter) String() string {
	return s.str
}

// Rest returns the unconsumed input.
func (s *Splitter) Rest() string {
	return s.str[s.Pos:]
}

// IsEmpty reports whether the input is exhausted.
func (s *Splitter) IsEmpty() bool {
	return s.Pos >= len(s.str)
}

// Save records the cursor.
func (s *Splitter) Save() Mark {
	return Mark{pos: s.Pos, lastPos: s.LastPos}
}

// Restore rewinds the cursor to m.
func (s *Splitter) Restore(m Mark) {
	s.Pos, s.LastPos = m.pos, m.lastPos
}

// StartsWith reports whether the unconsumed input begins with prefix.
func (s *Splitter) StartsWith(prefix string) bool {
	return strings.HasPrefix(s.str[s.Pos:], prefix)
}

// Match applies re at the cursor without consuming input. The expression
// must be anchored with ^. It returns the submatches, or nil.
func (s *Splitter) Match(re *regexp.Regexp) []string {
	return re.FindStringSubmatch(s.str[s.Pos:])
}

// ShiftKeyword consumes a keyword prefix such as "ti:" or "\"au\":" and
// returns it including the colon. It returns "" when none is present.
func (s *Splitter) ShiftKeyword() string {
	m := keywordRe.FindString(s.str[s.Pos:])
	if m == "" {
		return ""
	}
	// A quoted keyword must not be followed by another quote: `"a":"b"` is
	// a keyword, `"a:""` is a phrase.
	if m[0] == '"' {
		if next := s.Pos + len(m); next < len(s.str) && s.str[next] == '"' {
			return ""
		}
	}
	return s.advance(len(m))
}

// Shift consumes one word. A word runs until whitespace or any character
// in endchars; double-quoted stretches are taken whole, quotes included.
func (s *Splitter) Shift(endchars string) string {
	pos := s.Pos
	for pos < len(s.str) {
		ch := s.str[pos]
		if ch == '"' {
			pos = spanQuote(s.str, pos)
			continue
		}
		if isSpace(ch) || strings.IndexByte(endchars, ch) >= 0 {
			break
		}
		_, size := utf8.DecodeRuneInString(s.str[pos:])
		pos += size
	}
	return s.advance(pos - s.Pos)
}

// ShiftPast consumes str, which must be a prefix of the unconsumed input.
func (s *Splitter) ShiftPast(str string) {
	if !s.StartsWith(str) {
		panic("splitter: ShiftPast on non-prefix " + str)
	}
	s.advance(len(str))
}

// ShiftBalancedParens consumes a parenthesis-balanced run that ends at
// whitespace or a character in endchars outside any brackets. With
// allowEmpty false a leading closing bracket is consumed as a one-character
// word rather than producing an empty token.
func (s *Splitter) ShiftBalancedParens(endchars string, allowEmpty bool) string {
	end := SpanBalancedParens(s.str, s.Pos, endchars, allowEmpty)
	return s.advance(end - s.Pos)
}

// SkipSpan skips characters in chars and reports whether input remains.
func (s *Splitter) SkipSpan(chars string) bool {
	for s.Pos < len(s.str) && strings.IndexByte(chars, s.str[s.Pos]) >= 0 {
		s.Pos++
	}
	return s.Pos < len(s.str)
}

// advance consumes n bytes, records LastPos and skips following blanks.
func (s *Splitter) advance(n int) string {
	tok := s.str[s.Pos : s.Pos+n]
	s.Pos += n
	s.LastPos = s.Pos
	s.skipWhitespace()
	return tok
}

func (s *Splitter) skipWhitespace() {
	for s.Pos < len(s.str) && isSpace(s.str[s.Pos]) {
		s.Pos++
	}
}

// SpanBalancedParens returns the end of the balanced run starting at pos.
// Parentheses, brackets and braces nest; double-quoted stretches are
// opaque. Outside brackets the run stops at whitespace (or at a character
// in endchars, when endchars is not empty). An unmatched closing bracket
// ends the run, except that with allowEmpty false a run is never empty.
func SpanBalancedParens(str string, pos int, endchars string, allowEmpty bool) int {
	start := pos
	var stack []byte
	for pos < len(str) {
		ch := str[pos]
		switch {
		case ch == '"':
			pos = spanQuote(str, pos)
			continue
		case ch == '(' || ch == '[' || ch == '{':
			stack = append(stack, closerFor(ch))
		case ch == ')' || ch == ']' || ch == '}':
			if len(stack) == 0 {
				if pos == start && !allowEmpty {
					pos++
				}
				return pos
			}
			// A closer that matches nothing open is literal text.
			if i := bytes.LastIndexByte(stack, ch); i >= 0 {
				stack = stack[:i]
			}
		case len(stack) == 0 && isEnd(ch, endchars):
			return pos
		}
		pos++
	}
	return pos
}

func closerFor(ch byte) byte {
	switch ch {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

func isEnd(ch byte, endchars string) bool {
	if endchars == "" {
		return isSpace(ch)
	}
	return strings.IndexByte(endchars, ch) >= 0
}

// spanQuote returns the position after the double-quoted stretch starting
// at pos. Backslash escapes the next character. An unterminated quote runs
// to the end of input.
func spanQuote(str string, pos int) int {
	pos++
	for pos < len(str) {
		switch str[pos] {
		case '\\':
			if pos+1 < len(str) {
				pos++
			}
		case '"':
			return pos + 1
		}
		pos++
	}
	return pos
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
