package splitter

import (
	"strings"
)

// Word is one keyword argument as handed to a keyword parser.
type Word struct {
	// QWord is the argument as written, quotes included.
	QWord string
	// Word is the argument with surrounding quotes removed.
	Word string
	// Quoted is true when the argument was written in double quotes.
	Quoted bool
	// KwExplicit is true when the keyword was written by the user rather
	// than inferred or inherited as a default.
	KwExplicit bool
	// Pos1w is where the keyword (or the word, if none) starts; Pos1 and
	// Pos2 bracket the argument.
	Pos1w, Pos1, Pos2 int
}

// MakeKwarg builds a Word for argument kwarg spanning [pos1, pos2), whose
// keyword started at pos1w.
func MakeKwarg(kwarg string, pos1w, pos1, pos2 int) *Word {
	w := Unquote(kwarg)
	return &Word{
		QWord:  kwarg,
		Word:   w,
		Quoted: len(w) != len(kwarg),
		Pos1w:  pos1w,
		Pos1:   pos1,
		Pos2:   pos2,
	}
}

// MakeSimple builds a Word with no source position.
func MakeSimple(word string) *Word {
	return MakeKwarg(word, -1, -1, -1)
}

// Unquote removes one pair of surrounding double quotes. A missing closing
// quote is tolerated.
func Unquote(s string) string {
	if s == "" || s[0] != '"' {
		return s
	}
	s = s[1:]
	if strings.HasSuffix(s, `"`) && !strings.HasSuffix(s, `\"`) {
		s = s[:len(s)-1]
	}
	return s
}

// Quote returns s, double-quoted when it would not lex back as one word.
func Quote(s string) string {
	if s != "" && SpanBalancedParens(s, 0, "", true) == len(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
