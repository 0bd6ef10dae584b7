package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
	"github.com/roach88/papersearch/internal/tags"
)

// statusWords maps submission-state phrases to a state letter.
var statusWords = []struct {
	state string
	text  string
}{
	{"w", "withdrawn"},
	{"s", "submitted"},
	{"s", "ready"},
	{"s", "complete"},
	{"u", "in progress"},
	{"u", "unsubmitted"},
	{"u", "not ready"},
	{"u", "incomplete"},
	{"u", "draft"},
	{"a", "active"},
	{"x", "no submission"},
}

// statusCond is one column comparison.
type statusCond struct {
	column string
	cm     tags.CountMatcher
}

func conds(pairs ...string) []statusCond {
	var out []statusCond
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, statusCond{column: pairs[i], cm: tags.MustCountMatcher(pairs[i+1])})
	}
	return out
}

// simpleSearch returns the entries of texts word selects: exact matches if
// any, otherwise entries with a word starting with word.
func simpleSearch(word string, texts []string) []int {
	lword := strings.ToLower(strings.TrimSpace(word))
	var exact, prefix []int
	for i, t := range texts {
		lt := strings.ToLower(t)
		if lt == lword {
			exact = append(exact, i)
			continue
		}
		if strings.HasPrefix(lt, lword) {
			prefix = append(prefix, i)
			continue
		}
		for _, w := range strings.Fields(lt) {
			if strings.HasPrefix(w, lword) {
				prefix = append(prefix, i)
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return prefix
}

// statusConds recognizes submission states. ok is false when word names no
// single state.
func statusConds(word string) ([]statusCond, bool) {
	if len(word) < 3 {
		return nil, false
	}
	texts := make([]string, len(statusWords))
	for i, sw := range statusWords {
		texts[i] = sw.text
	}
	states := make(map[string]bool)
	var state string
	for _, i := range simpleSearch(word, texts) {
		state = statusWords[i].state
		states[state] = true
	}
	if len(states) != 1 {
		return nil, false
	}
	switch state {
	case "w":
		return conds("timeWithdrawn", ">0"), true
	case "s":
		return conds("timeSubmitted", ">0", "timeWithdrawn", "<=0"), true
	case "u":
		return conds("timeSubmitted", "<=0", "timeWithdrawn", "<=0"), true
	case "x":
		return conds("timeSubmitted", "<=0", "timeWithdrawn", "<=0", "paperStorageId", "<=1"), true
	default:
		return conds("timeWithdrawn", "<=0"), true
	}
}

// StatusTerm matches submission states such as "is:submitted".
type StatusTerm struct {
	termBase
	conds []statusCond
}

func parseStatus(word string, sw *SearchWord, srch *PaperSearch) []Term {
	if c, ok := statusConds(word); ok {
		return one(&StatusTerm{termBase: termBase{typ: "status"}, conds: c})
	}
	return parseDecision(word, sw, srch)
}

func (t *StatusTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	var ands []querysql.Expr
	for _, c := range t.conds {
		if c.column == "paperStorageId" {
			q.SetOption(querysql.OptPaperStorage)
		}
		ands = append(ands, c.cm.SQLExpr("Paper."+c.column))
	}
	return querysql.And(ands...)
}

func (t *StatusTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	for _, c := range t.conds {
		var v float64
		switch c.column {
		case "timeWithdrawn":
			v = float64(row.TimeWithdrawn)
		case "timeSubmitted":
			v = float64(row.TimeSubmitted)
		case "paperStorageId":
			v = float64(row.PaperStorageID)
		}
		if !c.cm.Test(v) {
			return false
		}
	}
	return true
}

func (t *StatusTerm) precise() bool { return true }

func (t *StatusTerm) debug() ir.IRObject {
	obj := t.debugBase()
	var arr ir.IRArray
	for _, c := range t.conds {
		arr = append(arr, ir.IRString(c.column+c.cm.String()))
	}
	obj["conds"] = arr
	return obj
}

// outcomeMatcher selects decisions by sign or by id.
type outcomeMatcher struct {
	cm  *tags.CountMatcher
	ids []int
}

func (m outcomeMatcher) test(outcome int) bool {
	if m.cm != nil {
		return m.cm.TestInt(outcome)
	}
	for _, id := range m.ids {
		if id == outcome {
			return true
		}
	}
	return false
}

func (m outcomeMatcher) sql() querysql.Expr {
	if m.cm != nil {
		return m.cm.SQLExpr("Paper.outcome")
	}
	return querysql.InInts("Paper.outcome", m.ids)
}

func (m outcomeMatcher) String() string {
	if m.cm != nil {
		return m.cm.String()
	}
	parts := make([]string, len(m.ids))
	for i, id := range m.ids {
		parts[i] = fmt.Sprint(id)
	}
	return "in(" + strings.Join(parts, ",") + ")"
}

// decisionMatcher interprets word as a decision class or decision names.
func decisionMatcher(conf *ir.Conf, word string) (outcomeMatcher, bool) {
	lword := strings.ToLower(strings.TrimSpace(word))
	sign := ""
	switch lword {
	case "yes", "accept", "accepted":
		sign = ">0"
	case "no", "reject", "rejected":
		sign = "<0"
	case "any":
		sign = "!=0"
	case "none", "unknown", "undecided", "?":
		sign = "=0"
	}
	if sign != "" {
		cm := tags.MustCountMatcher(sign)
		return outcomeMatcher{cm: &cm}, true
	}
	if cm, ok := tags.ParseCountMatcher(lword); ok {
		return outcomeMatcher{cm: &cm}, true
	}
	var texts []string
	var decs []ir.Decision
	if conf != nil {
		decs = conf.Decisions
	}
	for _, d := range decs {
		texts = append(texts, d.Name)
	}
	var ids []int
	for _, i := range simpleSearch(lword, texts) {
		ids = append(ids, decs[i].ID)
	}
	sort.Ints(ids)
	return outcomeMatcher{ids: ids}, len(ids) > 0
}

// DecisionTerm matches papers by decision. Decisions the user cannot see
// read as undecided.
type DecisionTerm struct {
	termBase
	srch  *PaperSearch
	match outcomeMatcher
}

func parseDecision(word string, sw *SearchWord, srch *PaperSearch) []Term {
	m, ok := decisionMatcher(srch.conf, word)
	if !ok {
		srch.lwarning(sw, fmt.Sprintf("“%s” matches no decision.", word))
		return nil
	}
	return one(&DecisionTerm{termBase: termBase{typ: "dec"}, srch: srch, match: m})
}

func (t *DecisionTerm) SQLExpr(*querysql.QueryInfo) querysql.Expr {
	if t.match.test(0) {
		return querysql.True
	}
	if !t.srch.viewer.CanViewSomeDecision() {
		return querysql.False
	}
	return t.match.sql()
}

func (t *DecisionTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	outcome := 0
	if t.srch.viewer.CanViewDecision(row) {
		outcome = row.Outcome
	}
	return t.match.test(outcome)
}

func (t *DecisionTerm) debug() ir.IRObject {
	obj := t.debugBase()
	obj["match"] = ir.IRString(t.match.String())
	return obj
}
