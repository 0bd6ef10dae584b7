package search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
	"github.com/roach88/papersearch/internal/tags"
)

type reviewKind int

const (
	reviewAny reviewKind = iota
	reviewComplete
	reviewIncomplete
	reviewPrimary
	reviewSecondary
	reviewExternal
	reviewMeta
)

// startsWithComparator reports whether word begins with a comparison
// operator, as in ">2" or "≤3".
func startsWithComparator(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return strings.ContainsRune("=!<>≠≤≥", r)
}

// reviewFilter selects reviews.
type reviewFilter struct {
	reviewType int
	// completeness is 0 for any, 1 for submitted, 2 for unsubmitted.
	completeness int
	round        int
	hasRound     bool
	// contacts is nil for any reviewer.
	contacts []int
	// pcType selects reviews by PC members (types above external).
	pcType bool
}

func (f *reviewFilter) applyKind(k reviewKind) {
	switch k {
	case reviewComplete:
		f.completeness = 1
	case reviewIncomplete:
		f.completeness = 2
	case reviewPrimary:
		f.reviewType = ir.ReviewPrimary
	case reviewSecondary:
		f.reviewType = ir.ReviewSecondary
	case reviewExternal:
		f.reviewType = ir.ReviewExternal
	case reviewMeta:
		f.reviewType = ir.ReviewMeta
	}
}

func (f *reviewFilter) test(r *ir.ReviewInfo) bool {
	switch {
	case f.reviewType != 0 && r.ReviewType != f.reviewType,
		f.pcType && r.ReviewType <= ir.ReviewExternal,
		f.completeness == 1 && !r.Submitted,
		f.completeness == 2 && r.Submitted,
		f.hasRound && r.Round != f.round:
		return false
	}
	if f.contacts == nil {
		return true
	}
	for _, cid := range f.contacts {
		if cid == r.ContactID {
			return true
		}
	}
	return false
}

func (f *reviewFilter) sqlConds(alias string) []querysql.Expr {
	var ands []querysql.Expr
	if f.reviewType != 0 {
		ands = append(ands, querysql.Raw(alias+".reviewType=?", f.reviewType))
	}
	if f.pcType {
		ands = append(ands, querysql.Raw(alias+".reviewType>?", ir.ReviewExternal))
	}
	switch f.completeness {
	case 1:
		ands = append(ands, querysql.Raw(alias+".reviewSubmitted>0"))
	case 2:
		ands = append(ands, querysql.Raw("coalesce("+alias+".reviewSubmitted, 0)<=0"))
	}
	if f.hasRound {
		ands = append(ands, querysql.Raw(alias+".reviewRound=?", f.round))
	}
	if f.contacts != nil {
		ands = append(ands, querysql.InInts(alias+".contactId", f.contacts))
	}
	return ands
}

func (f *reviewFilter) String() string {
	var parts []string
	if f.reviewType != 0 {
		parts = append(parts, "type="+strconv.Itoa(f.reviewType))
	}
	if f.pcType {
		parts = append(parts, "pc")
	}
	switch f.completeness {
	case 1:
		parts = append(parts, "complete")
	case 2:
		parts = append(parts, "incomplete")
	}
	if f.hasRound {
		parts = append(parts, "round="+strconv.Itoa(f.round))
	}
	if f.contacts != nil {
		ids := make([]string, len(f.contacts))
		for i, cid := range f.contacts {
			ids[i] = strconv.Itoa(cid)
		}
		parts = append(parts, "contacts="+strings.Join(ids, ","))
	}
	return strings.Join(parts, " ")
}

// ReviewTerm counts the reviews of a paper that pass a filter. "re:fred"
// means at least one review by fred; "re:>2" more than two reviews.
type ReviewTerm struct {
	termBase
	srch   *PaperSearch
	filter reviewFilter
	count  tags.CountMatcher
}

var reviewTypeWords = map[string]int{
	"pri": ir.ReviewPrimary, "primary": ir.ReviewPrimary,
	"sec": ir.ReviewSecondary, "secondary": ir.ReviewSecondary,
	"ext": ir.ReviewExternal, "external": ir.ReviewExternal,
	"meta": ir.ReviewMeta,
	"optional": ir.ReviewPC,
}

// parseReview handles "re:" and its relatives. The argument is a
// colon-separated list of parts: review types, completeness, round names,
// a count and a reviewer.
func parseReview(word string, sw *SearchWord, srch *PaperSearch) []Term {
	t := &ReviewTerm{termBase: termBase{typ: "re"}, srch: srch, count: tags.MustCountMatcher(">0")}
	t.filter.applyKind(sw.Kwdef.review)
	for _, part := range strings.Split(word, ":") {
		if part == "" && !sw.Quoted {
			continue
		}
		lpart := strings.ToLower(part)
		switch {
		case sw.Quoted:
			if !t.addContact(part, true, sw) {
				return one(NewFalse())
			}
		case lpart == "any":
			t.count = tags.MustCountMatcher(">0")
		case lpart == "none":
			t.count = tags.MustCountMatcher("=0")
		case lpart == "pc":
			t.filter.pcType = true
		case lpart == "complete" || lpart == "done" || lpart == "submitted":
			t.filter.completeness = 1
		case lpart == "incomplete" || lpart == "pending" || lpart == "outstanding":
			t.filter.completeness = 2
		case reviewTypeWords[lpart] != 0:
			t.filter.reviewType = reviewTypeWords[lpart]
		default:
			if cm, ok := tags.ParseCountMatcher(part); ok {
				t.count = cm
				continue
			}
			if n, ok := srch.conf.RoundNumber(part); ok && part != "" {
				t.filter.round, t.filter.hasRound = n, true
				continue
			}
			if !t.addContact(part, false, sw) {
				return one(NewFalse())
			}
		}
	}
	if t.count.Unsatisfiable() {
		srch.lwarning(sw, fmt.Sprintf("Review count “%s” can never match.", t.count.String()))
		return one(NewFalse())
	}
	return one(t)
}

func (t *ReviewTerm) addContact(word string, quoted bool, sw *SearchWord) bool {
	ids := t.srch.matchingUIDs(word, quoted, false)
	if len(ids) == 0 {
		return false
	}
	t.filter.contacts = append(t.filter.contacts, ids...)
	return true
}

func parseRound(word string, sw *SearchWord, srch *PaperSearch) []Term {
	n, ok := srch.conf.RoundNumber(word)
	if !ok {
		srch.lwarning(sw, fmt.Sprintf("“%s” is not a known review round.", word))
		return nil
	}
	t := &ReviewTerm{termBase: termBase{typ: "re"}, srch: srch, count: tags.MustCountMatcher(">0")}
	t.filter.round, t.filter.hasRound = n, true
	return one(t)
}

func (t *ReviewTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	q.AddReviewSignatureColumns()
	if t.count.TestInt(0) {
		return querysql.True
	}
	cond := querysql.And(t.filter.sqlConds("r")...)
	if cond.IsFalse() {
		return querysql.False
	}
	sql := "exists (select * from PaperReview r where r.paperId=Paper.paperId"
	if !cond.IsTrue() {
		sql += " and " + cond.SQL
	}
	return querysql.Raw(sql+")", cond.Args...)
}

func (t *ReviewTerm) visible(row *ir.PaperRow, r *ir.ReviewInfo) bool {
	if !t.srch.viewer.CanViewReview(row, r) {
		return false
	}
	return t.filter.contacts == nil || t.srch.viewer.CanViewReviewIdentity(row, r)
}

func (t *ReviewTerm) Test(row *ir.PaperRow, review *ir.ReviewInfo) bool {
	if review != nil {
		return t.visible(row, review) && t.filter.test(review) && !t.count.TestInt(0)
	}
	n := 0
	reviews := row.Reviews()
	for i := range reviews {
		if t.visible(row, &reviews[i]) && t.filter.test(&reviews[i]) {
			n++
		}
	}
	return t.count.TestInt(n)
}

func (t *ReviewTerm) debug() ir.IRObject {
	obj := t.debugBase()
	obj["count"] = ir.IRString(t.count.String())
	if f := t.filter.String(); f != "" {
		obj["filter"] = ir.IRString(f)
	}
	return obj
}

// ScoreTerm matches review scores, as in "ovemer:>3" or "ovemer:2-4".
type ScoreTerm struct {
	termBase
	srch   *PaperSearch
	field  *ir.ReviewField
	values []tags.CountMatcher
	count  tags.CountMatcher
}

func parseScore(word string, sw *SearchWord, srch *PaperSearch) []Term {
	f := sw.Kwdef.score
	t := &ScoreTerm{termBase: termBase{typ: "score"}, srch: srch, field: f, count: tags.MustCountMatcher(">0")}
	lword := strings.ToLower(strings.TrimSpace(word))
	switch {
	case lword == "any":
		t.values = []tags.CountMatcher{tags.MustCountMatcher(">0")}
	case lword == "none":
		t.values = []tags.CountMatcher{tags.MustCountMatcher(">0")}
		t.count = tags.MustCountMatcher("=0")
	default:
		if lo, hi, ok := strings.Cut(lword, "-"); ok && lo != "" {
			clo, ok1 := tags.ParseCountMatcher(">=" + lo)
			chi, ok2 := tags.ParseCountMatcher("<=" + hi)
			if ok1 && ok2 {
				t.values = []tags.CountMatcher{clo, chi}
				break
			}
		}
		cm, ok := tags.ParseCountMatcher(lword)
		if !ok {
			srch.lwarning(sw, fmt.Sprintf("Bad %s score “%s”.", f.Name, word))
			return nil
		}
		t.values = []tags.CountMatcher{cm}
	}
	return one(t)
}

func (t *ScoreTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	q.AddScoreColumn(t.field.ID)
	if t.count.TestInt(0) || !querysql.IsIdent(t.field.ID) {
		return querysql.True
	}
	var ands []querysql.Expr
	for _, v := range t.values {
		ands = append(ands, v.SQLExpr("r."+t.field.ID))
	}
	cond := querysql.And(ands...)
	return querysql.Raw("exists (select * from PaperReview r where r.paperId=Paper.paperId and r."+t.field.ID+">0 and "+cond.SQL+")", cond.Args...)
}

func (t *ScoreTerm) matches(r *ir.ReviewInfo) bool {
	v, ok := r.Scores[t.field.ID]
	if !ok || v == 0 {
		return false
	}
	for _, cm := range t.values {
		if !cm.TestInt(v) {
			return false
		}
	}
	return true
}

func (t *ScoreTerm) Test(row *ir.PaperRow, review *ir.ReviewInfo) bool {
	if review != nil {
		return t.srch.viewer.CanViewReview(row, review) && t.matches(review) && !t.count.TestInt(0)
	}
	n := 0
	reviews := row.Reviews()
	for i := range reviews {
		if t.srch.viewer.CanViewReview(row, &reviews[i]) && t.matches(&reviews[i]) {
			n++
		}
	}
	return t.count.TestInt(n)
}

func (t *ScoreTerm) debug() ir.IRObject {
	obj := t.debugBase()
	obj["field"] = ir.IRString(t.field.ID)
	var arr ir.IRArray
	for _, v := range t.values {
		arr = append(arr, ir.IRString(v.String()))
	}
	obj["values"] = arr
	obj["count"] = ir.IRString(t.count.String())
	return obj
}
