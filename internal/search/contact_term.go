package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// contactMatch is the parsed argument of a contact keyword: "any",
// "none", or a list of contact ids.
type contactMatch struct {
	any, none bool
	ids       []int
}

func (m contactMatch) test(cid int) bool {
	switch {
	case m.any:
		return cid > 0
	case m.none:
		return cid <= 0
	}
	for _, id := range m.ids {
		if id == cid {
			return true
		}
	}
	return false
}

func (m contactMatch) String() string {
	switch {
	case m.any:
		return "any"
	case m.none:
		return "none"
	}
	parts := make([]string, len(m.ids))
	for i, id := range m.ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// parseContactMatch resolves word. ok is false when word names nobody; the
// contact search has warned.
func (s *PaperSearch) parseContactMatch(word string, sw *SearchWord, pcOnly bool) (contactMatch, bool) {
	if !sw.Quoted {
		switch strings.ToLower(word) {
		case "any", "":
			return contactMatch{any: true}, true
		case "none":
			return contactMatch{none: true}, true
		}
	}
	ids := s.matchingUIDs(word, sw.Quoted, pcOnly)
	return contactMatch{ids: ids}, len(ids) > 0
}

var contactFieldColumns = map[string]string{
	"lead":     "leadContactId",
	"shepherd": "shepherdContactId",
	"manager":  "managerContactId",
}

// ContactFieldTerm matches the discussion lead, shepherd or manager.
type ContactFieldTerm struct {
	termBase
	srch  *PaperSearch
	field string
	match contactMatch
}

func parseContactField(word string, sw *SearchWord, srch *PaperSearch) []Term {
	m, ok := srch.parseContactMatch(word, sw, true)
	if !ok {
		return nil
	}
	field := sw.Kwdef.field
	return one(&ContactFieldTerm{termBase: termBase{typ: field}, srch: srch, field: field, match: m})
}

func (t *ContactFieldTerm) column() string {
	return contactFieldColumns[t.field]
}

func (t *ContactFieldTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	if t.field == "shepherd" {
		q.SetOption(querysql.OptShepherd)
	}
	col := "Paper." + t.column()
	switch {
	case t.match.none:
		return querysql.True
	case t.match.any:
		return querysql.Raw(col + "!=0")
	}
	return querysql.InInts(col, t.match.ids)
}

func (t *ContactFieldTerm) value(row *ir.PaperRow) int {
	if !t.srch.viewer.CanViewContactField(row, t.field) {
		return 0
	}
	switch t.field {
	case "lead":
		return row.LeadContactID
	case "shepherd":
		return row.ShepherdContactID
	default:
		return row.ManagerContactID
	}
}

func (t *ContactFieldTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	return t.match.test(t.value(row))
}

func (t *ContactFieldTerm) debug() ir.IRObject {
	obj := t.debugBase()
	obj["match"] = ir.IRString(t.match.String())
	return obj
}

// ConflictTerm matches papers on which some contact has a conflict.
// "conf:me" uses the acting user's own conflict.
type ConflictTerm struct {
	termBase
	srch  *PaperSearch
	me    bool
	match contactMatch
}

func parseConflict(word string, sw *SearchWord, srch *PaperSearch) []Term {
	t := &ConflictTerm{termBase: termBase{typ: "conflict"}, srch: srch}
	if !sw.Quoted && strings.EqualFold(word, "me") {
		t.me = true
		return one(t)
	}
	m, ok := srch.parseContactMatch(word, sw, false)
	if !ok {
		return nil
	}
	t.match = m
	return one(t)
}

func (t *ConflictTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	if t.me {
		ct := q.ConflictTable(t.srch.userID())
		if ct == "" {
			return querysql.False
		}
		return querysql.Raw(ct+".conflictType>0")
	}
	q.SetOption(querysql.OptAllConflictType)
	if t.match.none {
		return querysql.True
	}
	if expr, ok := t.joinConflicts(q); ok {
		return expr
	}
	sql := "exists (select * from PaperConflict c where c.paperId=Paper.paperId and c.conflictType>0"
	if t.match.any {
		return querysql.Raw(sql + ")")
	}
	in := querysql.InInts("c.contactId", t.match.ids)
	return querysql.Raw(sql+" and "+in.SQL+")", in.Args...)
}

// maxConflictJoins bounds the contacts a conflict term joins one by one;
// longer lists use a subquery.
const maxConflictJoins = 4

// joinConflicts joins each named contact's PaperConflict row as an
// optional table. It reports false when the planner refuses a join.
func (t *ConflictTerm) joinConflicts(q *querysql.QueryInfo) (querysql.Expr, bool) {
	if t.match.any || len(t.match.ids) == 0 || len(t.match.ids) > maxConflictJoins {
		return querysql.Expr{}, false
	}
	ors := make([]querysql.Expr, 0, len(t.match.ids))
	for _, cid := range t.match.ids {
		alias, ok := q.TryAddTable(fmt.Sprintf("PaperConflict%d", cid), querysql.Join{
			Type:  querysql.LeftJoin,
			Table: "PaperConflict",
			Conds: []querysql.Expr{querysql.Raw("{}.contactId=?", cid)},
		}, false)
		if !ok {
			return querysql.Expr{}, false
		}
		ors = append(ors, querysql.Raw("coalesce("+alias+".conflictType, 0)>0"))
	}
	return querysql.Or(ors...), true
}

func (t *ConflictTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	if t.me {
		return row.HasConflictView()
	}
	if !t.srch.viewer.CanViewConflicts(row) {
		return t.match.none
	}
	conflicts := row.Conflicts()
	switch {
	case t.match.any:
		return len(conflicts) > 0
	case t.match.none:
		return len(conflicts) == 0
	}
	for _, cid := range t.match.ids {
		if conflicts[cid] > ir.ConflictNone {
			return true
		}
	}
	return false
}

func (t *ConflictTerm) debug() ir.IRObject {
	obj := t.debugBase()
	if t.me {
		obj["match"] = ir.IRString("me")
	} else {
		obj["match"] = ir.IRString(t.match.String())
	}
	return obj
}
