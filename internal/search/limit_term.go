package search

import (
	"fmt"
	"strings"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// limitNames maps every accepted spelling of a limit to its short and long
// canonical names.
var limitNames = map[string][2]string{
	"a":           {"a", "author"},
	"author":      {"a", "author"},
	"ar":          {"ar", "ar"},
	"r":           {"r", "reviewer"},
	"reviewer":    {"r", "reviewer"},
	"rout":        {"rout", "rout"},
	"req":         {"req", "req"},
	"s":           {"s", "submitted"},
	"submitted":   {"s", "submitted"},
	"act":         {"active", "act"},
	"active":      {"active", "act"},
	"acc":         {"accepted", "acc"},
	"accepted":    {"accepted", "acc"},
	"und":         {"undecided", "und"},
	"undec":       {"undecided", "und"},
	"undecided":   {"undecided", "und"},
	"unsub":       {"unsub", "unsubmitted"},
	"unsubmitted": {"unsub", "unsubmitted"},
	"lead":        {"lead", "lead"},
	"admin":       {"admin", "administrator"},
	"manager":     {"admin", "administrator"},
	"alladmin":    {"alladmin", "alladmin"},
	"rable":       {"reviewable", "reviewable"},
	"reviewable":  {"reviewable", "reviewable"},
	"editpref":    {"reviewable", "reviewable"},
	"viewable":    {"viewable", "viewable"},
	"vis":         {"viewable", "viewable"},
	"visible":     {"viewable", "viewable"},
	"all":         {"all", "all"},
	"none":        {"none", "none"},
}

var limitDescriptions = map[string]string{
	"a":          "Your submissions",
	"accepted":   "Accepted",
	"active":     "Active",
	"admin":      "Submissions you administer",
	"all":        "All",
	"alladmin":   "Submissions you’re allowed to administer",
	"ar":         "Your submissions and reviews",
	"lead":       "Your discussion leads",
	"none":       "None",
	"r":          "Your reviews",
	"reviewable": "Reviewable",
	"req":        "Your review requests",
	"rout":       "Your incomplete reviews",
	"s":          "Submitted",
	"undecided":  "Undecided",
	"unsub":      "Unsubmitted",
	"viewable":   "Submissions you can view",
}

// CanonicalLimit returns the short name of limit t, or "" if t names no
// limit.
func CanonicalLimit(t string) string {
	return limitNames[strings.ToLower(strings.TrimSpace(t))][0]
}

// LongCanonicalLimit returns the long name of limit t, or "".
func LongCanonicalLimit(t string) string {
	return limitNames[strings.ToLower(strings.TrimSpace(t))][1]
}

// LimitDescription describes limit t for display.
func LimitDescription(t string) string {
	if d, ok := limitDescriptions[t]; ok {
		return d
	}
	return "Submitted"
}

// DefaultLimit picks the limit of a search that names none, by role.
func DefaultLimit(v Viewer, conf *ir.Conf) string {
	u := v.Contact()
	switch {
	case u.Root || u.PrivChair():
		return "all"
	case u.IsPC():
		if v.CanViewSomeIncomplete() && conf != nil && conf.PCSeeAll {
			return "active"
		}
		return "s"
	case !v.IsReviewer():
		return "a"
	case !v.IsAuthor():
		return "r"
	}
	return "ar"
}

// LimitTerm restricts a search to a collection such as "your reviews" or
// "submitted papers".
type LimitTerm struct {
	termBase
	srch *PaperSearch
	// named is the limit as requested; limit is the one in force, which
	// differs when a limit makes no sense for the user.
	named string
	limit string
	// fromKeyword marks terms written as "in:" in the query.
	fromKeyword bool
}

func newLimitTerm(srch *PaperSearch, named string) *LimitTerm {
	t := &LimitTerm{termBase: termBase{typ: "in"}, srch: srch}
	t.setLimit(named)
	return t
}

func (t *LimitTerm) setLimit(named string) {
	t.named = named
	t.limit = named
	u := t.srch.user
	if named == "reviewable" && !u.IsPC() {
		t.limit = "r"
	}
	if (named == "alladmin" || named == "admin") && !u.IsPC() {
		t.limit = "none"
	}
}

// Named returns the limit as requested.
func (t *LimitTerm) Named() string { return t.named }

// Limit returns the limit in force.
func (t *LimitTerm) Limit() string { return t.limit }

func parseLimit(word string, sw *SearchWord, srch *PaperSearch) []Term {
	named := CanonicalLimit(word)
	if named == "" {
		srch.lwarning(sw, fmt.Sprintf("Unknown search collection “%s”.", word))
		return nil
	}
	t := newLimitTerm(srch, named)
	t.fromKeyword = true
	return one(t)
}

func (t *LimitTerm) reviewerID() int {
	if r := t.srch.reviewer; r != nil {
		return r.ContactID
	}
	return t.srch.userID()
}

// usesSignatures reports whether review limits must read every review
// rather than the user's own review columns.
func (t *LimitTerm) usesSignatures() bool {
	return t.srch.reviewer != nil || t.limit == "req"
}

func (t *LimitTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	uid := t.srch.userID()
	submitted := querysql.Raw("Paper.timeSubmitted>0 and Paper.timeWithdrawn<=0")
	switch t.limit {
	case "none":
		return querysql.False
	case "all", "viewable":
		return querysql.True
	case "s", "undecided", "reviewable":
		return submitted
	case "active":
		return querysql.Raw("Paper.timeWithdrawn<=0")
	case "unsub":
		return querysql.Raw("Paper.timeSubmitted<=0 and Paper.timeWithdrawn<=0")
	case "accepted":
		return querysql.And(submitted, querysql.Raw("Paper.outcome>0"))
	case "a":
		if ct := q.ConflictTable(uid); ct != "" {
			return querysql.Raw("coalesce("+ct+".conflictType, 0)>=?", ir.ConflictAuthor)
		}
		return querysql.False
	case "ar":
		ct := q.ConflictTable(uid)
		if ct == "" {
			return querysql.False
		}
		return querysql.Raw("(coalesce("+ct+".conflictType, 0)>=? or exists (select * from PaperReview where paperId=Paper.paperId and contactId=?))", ir.ConflictAuthor, uid)
	case "r", "rout":
		if t.usesSignatures() {
			q.AddReviewSignatureColumns()
		}
		return querysql.Raw("exists (select * from PaperReview where paperId=Paper.paperId and contactId=?)", t.reviewerID())
	case "req":
		q.AddReviewSignatureColumns()
		return querysql.Raw("exists (select * from PaperReview where paperId=Paper.paperId and requestedBy=? and reviewType=?)", uid, ir.ReviewExternal)
	case "lead":
		return querysql.Raw("Paper.leadContactId=?", uid)
	case "admin":
		if t.srch.user.PrivChair() {
			return querysql.Raw("(Paper.managerContactId=? or Paper.managerContactId=0)", uid)
		}
		return querysql.Raw("Paper.managerContactId=?", uid)
	case "alladmin":
		if t.srch.user.PrivChair() {
			return querysql.True
		}
		return querysql.Raw("Paper.managerContactId=?", uid)
	}
	return querysql.True
}

// reviews returns the limit reviewer's reviews of row.
func (t *LimitTerm) reviews(row *ir.PaperRow) []ir.ReviewInfo {
	if !t.usesSignatures() {
		return row.MyReviewTypes()
	}
	rid := t.reviewerID()
	var out []ir.ReviewInfo
	for _, r := range row.Reviews() {
		if r.ContactID == rid {
			out = append(out, r)
		}
	}
	return out
}

func (t *LimitTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	v := t.srch.viewer
	uid := t.srch.userID()
	switch t.limit {
	case "none":
		return false
	case "all", "viewable":
		return true
	case "s":
		return row.IsSubmitted()
	case "active":
		return !row.IsWithdrawn()
	case "unsub":
		return row.TimeSubmitted <= 0 && !row.IsWithdrawn()
	case "accepted":
		return row.IsSubmitted() && row.Outcome > 0 && v.CanViewDecision(row)
	case "undecided":
		return row.IsSubmitted() && (row.Outcome == 0 || !v.CanViewDecision(row))
	case "reviewable":
		return row.IsSubmitted() && !row.HasConflictView()
	case "a":
		return row.IsAuthorView()
	case "ar":
		return row.IsAuthorView() || len(row.MyReviewTypes()) > 0
	case "r":
		return len(t.reviews(row)) > 0
	case "rout":
		for _, r := range t.reviews(row) {
			if !r.Submitted {
				return true
			}
		}
		return false
	case "req":
		for _, r := range row.Reviews() {
			if r.RequestedBy == uid && r.ReviewType == ir.ReviewExternal {
				return true
			}
		}
		return false
	case "lead":
		return uid > 0 && row.LeadContactID == uid
	case "admin":
		return (uid > 0 && row.ManagerContactID == uid) ||
			(t.srch.user.PrivChair() && row.ManagerContactID == 0)
	case "alladmin":
		return v.AllowAdminister(row)
	}
	return true
}

func (t *LimitTerm) precise() bool {
	switch t.limit {
	case "none", "all", "viewable", "s", "active", "unsub", "a", "admin":
		return true
	}
	return false
}

func (t *LimitTerm) prepareVisit(p *prepareParam) {
	if t.fromKeyword && p.toplevel() {
		p.srch.applyLimit(t)
	}
}

func (t *LimitTerm) debug() ir.IRObject {
	obj := t.debugBase()
	obj["limit"] = ir.IRString(t.limit)
	return obj
}
