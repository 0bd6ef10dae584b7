package search

import (
	"fmt"
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/splitter"
)

// scope is one frame of the parse stack: a pending operator, its left
// operand and the default keyword in force. Frames never point at each
// other; defkwOwner is the stack index of the frame that introduced the
// default keyword and holds its error flag.
type scope struct {
	op         *Operator
	leftqe     Term
	pos1, pos2 int

	defkw         string
	defkwPos1w    int
	defkwOwner    int
	defkwError    bool
	ignoreUnknown int
}

func (s *scope) pop(curqe Term, source string) Term {
	if curqe == nil {
		return s.leftqe
	}
	if s.leftqe != nil {
		curqe = CombineOperator(s.op, s.leftqe, curqe)
	} else if s.op.Op != "+" && s.op.Op != "(" {
		curqe = CombineOperator(s.op, curqe)
	}
	curqe.base().applySpan(s.pos1, s.pos2, source)
	return curqe
}

// exprParser parses one search expression. Named searches get parsers of
// their own.
type exprParser struct {
	srch  *PaperSearch
	str   string
	stack []scope
}

func (p *exprParser) top() *scope {
	return &p.stack[len(p.stack)-1]
}

func (p *exprParser) push(op *Operator, left Term, pos1, pos2 int) {
	s := scope{op: op, leftqe: left, pos1: pos1, pos2: pos2, defkwOwner: -1}
	if len(p.stack) > 0 {
		t := p.top()
		s.defkw, s.defkwPos1w, s.defkwOwner = t.defkw, t.defkwPos1w, t.defkwOwner
	}
	p.stack = append(p.stack, s)
}

func (p *exprParser) popScope(curqe Term) Term {
	curqe = p.top().pop(curqe, p.str)
	p.stack = p.stack[:len(p.stack)-1]
	return curqe
}

var (
	opWordRe = regexp.MustCompile(`^(?:AND|and|OR|or|NOT|not|XOR|xor|THEN|then|HIGHLIGHT(?::\w+)?|&&?|\|\|?)`)

	paperIDWordRe     = regexp.MustCompile(`^(?:#?\d+(?:(?:-|–|—)#?\d+)?(?:\s*,\s*|$))+$`)
	inferredKeywordRe = regexp.MustCompile(`^([-_.a-zA-Z0-9]+|"[^"]")(?:[=!<>]=?|≠|≤|≥)[^:]+$`)
)

// shiftOperator consumes an operator at the cursor. Word operators must be
// followed by whitespace or "(". Unary operators are refused while a term
// is pending, so that "a -b" reads as "a AND NOT b".
func shiftOperator(sp *splitter.Splitter, pending bool) *Operator {
	rest := sp.Rest()
	var m string
	if rest != "" && strings.IndexByte("-+!()^", rest[0]) >= 0 {
		m = rest[:1]
	} else if w := opWordRe.FindString(rest); w != "" && len(rest) > len(w) && isOpFollow(rest[len(w)]) {
		m = w
	} else {
		return nil
	}
	op := LookupOperator(strings.ToUpper(m))
	if op == nil {
		name, info, _ := strings.Cut(m, ":")
		base := LookupOperator(strings.ToUpper(name))
		if base == nil {
			return nil
		}
		c := *base
		c.Opinfo = info
		op = &c
	}
	if pending && op.Unary {
		return nil
	}
	sp.ShiftPast(m)
	return op
}

func isOpFollow(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f', '(':
		return true
	}
	return false
}

// shiftKwarg consumes a keyword's argument. Keywords that allow
// parentheses take a balanced run; others stop at a parenthesis.
func shiftKwarg(kw string, sp *splitter.Splitter, conf *ir.Conf) string {
	if kw != "" {
		var name string
		if kw[0] == '"' {
			name = kw[1 : len(kw)-2]
		} else {
			name = kw[:len(kw)-1]
		}
		if def := LookupKeyword(name, conf); def != nil && def.AllowParens {
			return sp.ShiftBalancedParens("", true)
		}
	}
	return sp.Shift("()")
}

// parseExpression parses str into a term, or nil when str is empty.
func (s *PaperSearch) parseExpression(str string) Term {
	p := &exprParser{srch: s, str: str}
	p.push(nil, nil, 0, len(str))
	var curqe Term
	var nextDefkw string
	nextDefkwPos := -1
	sp := splitter.New(str)

	for !sp.IsEmpty() {
		pos1 := sp.Pos
		op := shiftOperator(sp, curqe != nil)
		pos2 := sp.LastPos
		if curqe != nil && op == nil {
			op = LookupOperator("SPACE")
		}
		if curqe == nil && op != nil && op.Op == "highlight" {
			t := NewTrue()
			t.setSpan(pos1, pos1, str)
			curqe = t
		}

		switch {
		case op == nil:
			pos1w := sp.Pos
			kw := sp.ShiftKeyword()
			pos1 = sp.Pos
			kwarg := shiftKwarg(kw, sp, s.conf)
			pos2 = sp.LastPos
			if kw == "" && kwarg == "" {
				s.logger.Debug("search parse stalled", "query", s.q, "expr", str, "pos", pos1)
				return p.finish(curqe)
			}
			if kw != "" && kwarg == "" && sp.StartsWith("(") {
				// "ti:(a OR b)" makes ti the default keyword inside.
				nextDefkw, nextDefkwPos = kw[:len(kw)-1], pos1w
			} else {
				sw := makeKwarg(kwarg, pos1w, pos1, pos2)
				curqe = p.searchWord(kw, sw)
				if !isUninteresting(curqe) {
					curqe.base().setSpan(pos1w, pos2, str)
				}
			}
		case op.Op == ")":
			for len(p.stack) > 1 && p.top().op.Op != "(" {
				curqe = p.popScope(curqe)
			}
			if len(p.stack) > 1 {
				p.top().pos2 = pos1 + 1
				curqe = p.popScope(curqe)
			}
		case op.Op == "(":
			p.push(op, nil, pos1, pos2)
			if nextDefkw != "" {
				t := p.top()
				t.defkw, t.defkwPos1w, t.defkwOwner = nextDefkw, nextDefkwPos, len(p.stack)-1
				nextDefkw, nextDefkwPos = "", -1
			}
		case op.Unary || curqe != nil:
			end := op.Precedence
			if end <= 1 {
				end--
			}
			for len(p.stack) > 1 && p.top().op.Precedence > end {
				curqe = p.popScope(curqe)
			}
			p.push(op, curqe, pos1, pos2)
			curqe = nil
		}
	}
	return p.finish(curqe)
}

func (p *exprParser) finish(curqe Term) Term {
	for len(p.stack) > 1 {
		curqe = p.popScope(curqe)
	}
	return curqe
}

// searchWord interprets one word. In order: an explicit keyword, a paper
// number list, a "#tag", an inferred keyword such as "ovemer>2", the
// default keyword of the enclosing parentheses, the special words NONE,
// ANY and ALL, and finally a search of the query-type fields.
func (p *exprParser) searchWord(kw string, sw *SearchWord) Term {
	sc := p.top()
	if kw != "" {
		if t := p.searchKeyword(kw[:len(kw)-1], sw, sc, false); t != nil {
			return t
		}
		return NewFalse()
	}

	hasDefkw := sc.defkw != ""
	if !sw.Quoted && !hasDefkw && isPaperIDWord(sw.Word) {
		if t, ok := parsePaperIDs(sw.Word); ok {
			return t
		}
		p.srch.lwarning(sw, fmt.Sprintf("“%s” is not a valid paper number.", sw.Word))
		return NewFalse()
	}
	if !sw.Quoted && !hasDefkw && strings.HasPrefix(sw.Word, "#") {
		if t := p.searchKeyword("hashtag", sw, nil, false); t != nil {
			return t
		}
		return NewFalse()
	}
	if !sw.Quoted {
		if m := inferredKeywordRe.FindStringSubmatch(sw.Word); m != nil {
			ikw := m[1]
			sc.ignoreUnknown++
			swi := makeKwarg(sw.Word[len(ikw):], sw.Pos1, sw.Pos1+len(ikw), sw.Pos2)
			t := p.searchKeyword(ikw, swi, sc, false)
			sc.ignoreUnknown--
			if t != nil {
				return t
			}
		}
	}
	if hasDefkw {
		sw.Pos1w = sc.defkwPos1w
		if t := p.searchKeyword(sc.defkw, sw, sc, true); t != nil {
			return t
		}
		return NewFalse()
	}
	if len(sw.QWord) <= 4 {
		switch strings.ToUpper(sw.QWord) {
		case "NONE":
			return NewFalse()
		case "", "*", "ANY", "ALL":
			return NewTrue()
		}
	}
	var qt []Term
	for _, f := range p.srch.qtFields() {
		if t := p.searchKeyword(f, sw, nil, false); t != nil {
			qt = append(qt, t)
		}
	}
	return Combine("or", qt...)
}

// searchKeyword runs keyword kw on sw. An unknown keyword yields nil and,
// when sc is set, a warning; inside "kw:(...)" the warning is given once.
func (p *exprParser) searchKeyword(kw string, sw *SearchWord, sc *scope, isDefkw bool) Term {
	if len(kw) >= 2 && kw[0] == '"' {
		kw = strings.TrimSpace(kw[1 : len(kw)-1])
	}
	def := LookupKeyword(kw, p.srch.conf)
	if def == nil || def.Parser == nil {
		if sc != nil && sc.ignoreUnknown == 0 && (!isDefkw || !p.stack[sc.defkwOwner].defkwError) {
			xsw := makeKwarg(kw, sw.Pos1w, sw.Pos1w, sw.Pos1)
			p.srch.lwarning(xsw, fmt.Sprintf("Unknown search keyword ‘%s:’", kw))
			if isDefkw {
				p.stack[sc.defkwOwner].defkwError = true
			}
		}
		return nil
	}
	sw.KwExplicit = sc != nil
	sw.Kwdef = def
	terms := def.Parser.Parse(sw.Word, sw, p.srch)
	if len(terms) == 0 {
		return NewFalse()
	}
	return Combine("or", terms...)
}

func isPaperIDWord(s string) bool {
	if s == "" || (s[0] != '#' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return paperIDWordRe.MatchString(s)
}

// qtFields returns the keywords a bare word searches.
func (s *PaperSearch) qtFields() []string {
	switch s.qt {
	case "n":
	case "ac":
		return []string{"au", "co"}
	default:
		return []string{s.qt}
	}
	if s.viewer.CanViewSomeAuthors() {
		return []string{"ti", "ab", "au"}
	}
	return []string{"ti", "ab"}
}
