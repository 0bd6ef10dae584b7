package search

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/splitter"
)

var (
	wordBreakdownRe = regexp.MustCompile(`(?s)^([-_.a-zA-Z0-9]+|"[^"]")((?:[=!<>]=?|≠|≤|≥)[^:]+|:.*)$`)
	outerParensRe   = regexp.MustCompile(`(?s)^\((.*)\)$`)
	negatedTextRe   = regexp.MustCompile(`(?i)^(?:[(-]|NOT )`)
)

// CanonicalQuery combines the parts of an advanced search form into one
// query: all of qa, any of qo and none of qx. Bare words are qualified by
// the query type qt, and a limit t other than the default is written in as
// "in:". For example, qa "a b", qo "c d" and qx "e" give
//
//	(a b) AND (c OR d) AND -e
func CanonicalQuery(qa, qo, qx, qt, t string) string {
	qt = CanonicalQT(qt)
	if t != "" {
		if lt := LongCanonicalLimit(t); lt != "" {
			if qa != "" {
				qa = "(" + qa + ") in:" + lt
			} else {
				qa = "in:" + lt
			}
		}
	}
	var parts []string
	for _, e := range []struct{ str, typ string }{{qa, "all"}, {qo, "any"}, {qx, "none"}} {
		if x := canonicalExpression(e.str, e.typ, qt); x != "" {
			parts = append(parts, x)
		}
	}
	if len(parts) == 1 {
		return outerParensRe.ReplaceAllString(parts[0], "$1")
	}
	return strings.Join(parts, " AND ")
}

// wordBreakdown splits word into keyword and argument. Paper numbers
// report keyword "=" and tags "#"; a word without a keyword reports "".
func wordBreakdown(word string) (string, string) {
	if isPaperIDWord(word) && (word[0] != '#' || len(word) > 1 && word[1] >= '0' && word[1] <= '9') {
		return "=", word
	}
	if strings.HasPrefix(word, "#") {
		return "#", word[1:]
	}
	if m := wordBreakdownRe.FindStringSubmatch(word); m != nil {
		return m[1], m[2]
	}
	return "", word
}

type canonicalScope struct {
	op *Operator
	qe []string
}

func popCanonical(curqe string, stack *[]canonicalScope) string {
	n := len(*stack)
	x := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	if curqe != "" {
		x.qe = append(x.qe, curqe)
	}
	switch {
	case len(x.qe) == 0:
		return ""
	case x.op.Unary:
		qe := x.qe[0]
		if x.op.Op == "not" {
			if negatedTextRe.MatchString(qe) {
				qe = "NOT " + qe
			} else {
				qe = "-" + qe
			}
		}
		return qe
	case len(x.qe) == 1:
		return x.qe[0]
	case x.op.Op == "space":
		return "(" + strings.Join(x.qe, " ") + ")"
	}
	return "(" + strings.Join(x.qe, " "+x.op.Unparse()+" ") + ")"
}

// canonicalExpression rewrites str with explicit operators. typ "all"
// joins adjacent words with AND, "any" with OR, and "none" negates the
// result. Inside parentheses adjacency is always AND.
func canonicalExpression(str, typ, qt string) string {
	str = strings.TrimSpace(str)
	if str == "" {
		return ""
	}
	defaultOp := "SPACEOR"
	if typ == "all" {
		defaultOp = "SPACE"
	}
	var stack []canonicalScope
	parens := 0
	curqe := ""
	sp := splitter.New(str)

	for !sp.IsEmpty() {
		op := shiftOperator(sp, curqe != "")
		if curqe != "" && op == nil {
			if parens > 0 {
				op = LookupOperator("SPACE")
			} else {
				op = LookupOperator(defaultOp)
			}
		}
		switch {
		case op == nil:
			kw := sp.ShiftKeyword()
			curqe = kw + shiftKwarg(kw, sp, nil)
			if curqe == "" {
				// Guarantee progress.
				curqe = sp.ShiftBalancedParens("", false)
			}
			if qt != "n" {
				if k, arg := wordBreakdown(curqe); k == "" {
					if qt == "tag" {
						curqe = "#" + curqe
					} else {
						curqe = qt + ":" + curqe
					}
				} else if arg == ":" {
					curqe += sp.ShiftBalancedParens("", false)
				}
			}
		case op.Op == ")":
			for len(stack) > 0 && stack[len(stack)-1].op.Op != "(" {
				curqe = popCanonical(curqe, &stack)
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				parens--
			}
		case op.Op == "(":
			stack = append(stack, canonicalScope{op: op})
			parens++
		default:
			end := op.Precedence
			if end <= 1 {
				end--
			}
			for len(stack) > 0 && stack[len(stack)-1].op.Precedence > end {
				curqe = popCanonical(curqe, &stack)
			}
			if n := len(stack); !op.Unary && n > 0 && stack[n-1].op.Op == op.Op {
				stack[n-1].qe = append(stack[n-1].qe, curqe)
			} else {
				sc := canonicalScope{op: op}
				if curqe != "" {
					sc.qe = []string{curqe}
				}
				stack = append(stack, sc)
			}
			curqe = ""
		}
	}

	if typ == "none" {
		stack = append([]canonicalScope{{op: LookupOperator("NOT")}}, stack...)
	}
	for len(stack) > 0 {
		curqe = popCanonical(curqe, &stack)
	}
	return curqe
}
