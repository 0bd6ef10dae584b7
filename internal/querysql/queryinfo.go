// Package querysql plans the SQL statement behind a paper search.
//
// Leaf terms register the joins and columns they need on a QueryInfo while
// contributing their WHERE fragments; Compile then assembles one statement
// of the form
//
//	select <columns> from Paper <joins> where <filter>
//	group by Paper.paperId order by Paper.paperId
//
// Every joined table matches at most one row per paper, so GROUP BY is the
// only deduplication the statement needs.
//
// CRITICAL: All values are parameterized (never interpolated).
// CRITICAL: Every statement ends with a deterministic ORDER BY.
package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grafana/regexp"
)

// MaxOptionalTables bounds the optional joins one query may request.
// Further optional joins are refused rather than reported.
const MaxOptionalTables = 32

// JoinType is the SQL join keyword.
type JoinType string

const (
	InnerJoin JoinType = "join"
	LeftJoin  JoinType = "left join"
)

// Join describes one joined table. Conds may use "{}" for the table alias;
// the join on paperId is implicit.
type Join struct {
	Type  JoinType
	Table string
	Conds []Expr
}

// Query options raised by terms during compilation and resolved by the
// search before the statement is built.
const (
	OptTags               = "tags"
	OptReviewSignatures   = "reviewSignatures"
	OptReviewWordCounts   = "reviewWordCounts"
	OptAuthorInformation  = "authorInformation"
	OptPDFSize            = "pdfSize"
	OptAllConflictType    = "allConflictType"
	OptCollaborators      = "collaborators"
	OptShepherd           = "shepherd"
	OptPaperStorage       = "paperStorage"
	reviewSignatureColumn = "reviewSignatures"
)

// QueryUser is the part of the acting user the planner needs.
type QueryUser struct {
	ContactID int
	// AdministerAll skips the per-user reviewer columns.
	AdministerAll bool
}

type column struct {
	name string
	expr Expr
}

type table struct {
	alias    string
	join     *Join
	required bool
}

// QueryInfo accumulates the tables, columns and options one search needs.
// It is single-use and not safe for concurrent use.
type QueryInfo struct {
	user     QueryUser
	tables   []*table
	tableIdx map[string]*table
	columns  []column
	colIdx   map[string]int
	options  map[string]bool
	scores   []string
	optional int
	refused  []string

	hasMyReview         bool
	hasReviewSignatures bool
}

// NewQueryInfo returns a planner rooted at the Paper table.
func NewQueryInfo(user QueryUser) *QueryInfo {
	q := &QueryInfo{
		user:     user,
		tableIdx: make(map[string]*table),
		colIdx:   make(map[string]int),
		options:  make(map[string]bool),
	}
	root := &table{alias: "Paper", required: true}
	q.tables = append(q.tables, root)
	q.tableIdx["Paper"] = root
	if !user.AdministerAll {
		q.AddReviewerColumns()
	}
	return q
}

// User returns the acting user.
func (q *QueryInfo) User() QueryUser {
	return q.user
}

// TryAddTable registers a join under alias and returns the alias used.
// An alias ending in "_" is made unique by appending the table count.
// Registering an existing alias again is a no-op, except that an inner
// join upgrades a left join in place. An optional table beyond
// MaxOptionalTables is refused: ok is false and nothing is added.
func (q *QueryInfo) TryAddTable(alias string, join Join, required bool) (string, bool) {
	if strings.HasSuffix(alias, "_") {
		alias += strconv.Itoa(len(q.tables))
	}
	if t, ok := q.tableIdx[alias]; ok {
		if join.Type == InnerJoin && t.join != nil {
			t.join.Type = InnerJoin
		}
		if required && !t.required {
			t.required = true
			q.optional--
		}
		return alias, true
	}
	if !required && q.optional >= MaxOptionalTables {
		q.refused = append(q.refused, alias)
		return "", false
	}
	j := join
	t := &table{alias: alias, join: &j, required: required}
	q.tables = append(q.tables, t)
	q.tableIdx[alias] = t
	if !required {
		q.optional++
	}
	return alias, true
}

// AddTable registers a required join; required joins are never refused.
func (q *QueryInfo) AddTable(alias string, join Join) string {
	a, _ := q.TryAddTable(alias, join, true)
	return a
}

// HasTable reports whether alias is registered.
func (q *QueryInfo) HasTable(alias string) bool {
	_, ok := q.tableIdx[alias]
	return ok
}

// Refused returns the aliases whose optional joins were refused.
func (q *QueryInfo) Refused() []string {
	return q.refused
}

// AddColumn projects expr as name. Registering the same name with a
// different expression is a programming error and panics.
func (q *QueryInfo) AddColumn(name string, expr Expr) {
	if i, ok := q.colIdx[name]; ok {
		if !sameExpr(q.columns[i].expr, expr) {
			panic(fmt.Sprintf("querysql: column %q redefined: %q vs %q", name, q.columns[i].expr.SQL, expr.SQL))
		}
		return
	}
	q.colIdx[name] = len(q.columns)
	q.columns = append(q.columns, column{name: name, expr: expr})
}

// HasColumn reports whether name is projected.
func (q *QueryInfo) HasColumn(name string) bool {
	_, ok := q.colIdx[name]
	return ok
}

// Columns returns the projected column names in order.
func (q *QueryInfo) Columns() []string {
	out := make([]string, len(q.columns))
	for i, c := range q.columns {
		out[i] = c.name
	}
	return out
}

func sameExpr(a, b Expr) bool {
	if a.SQL != b.SQL || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != b.Args[i] {
			return false
		}
	}
	return true
}

// SetOption raises a query option.
func (q *QueryInfo) SetOption(name string) {
	q.options[name] = true
}

// Option reports whether a query option was raised.
func (q *QueryInfo) Option(name string) bool {
	return q.options[name]
}

// ConflictTable joins the acting user's PaperConflict row and returns its
// alias, or "" for a user without an account.
func (q *QueryInfo) ConflictTable(contactID int) string {
	if contactID <= 0 {
		return ""
	}
	return q.AddTable(fmt.Sprintf("PaperConflict%d", contactID), Join{
		Type:  LeftJoin,
		Table: "PaperConflict",
		Conds: []Expr{Raw("{}.contactId=?", contactID)},
	})
}

// AddReviewerColumns asks for the acting user's conflict and review
// permissions. Resolved by FinishReviewerColumns.
func (q *QueryInfo) AddReviewerColumns() {
	q.hasMyReview = true
}

// AddReviewSignatureColumns asks for every review's signature.
func (q *QueryInfo) AddReviewSignatureColumns() {
	q.hasReviewSignatures = true
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdent reports whether s may be used as a column name without quoting.
func IsIdent(s string) bool {
	return identRe.MatchString(s)
}

// AddScoreColumn adds review score field to the review signatures.
// Field ids that are not plain identifiers are ignored.
func (q *QueryInfo) AddScoreColumn(field string) {
	q.AddReviewSignatureColumns()
	if !identRe.MatchString(field) {
		return
	}
	for _, f := range q.scores {
		if f == field {
			return
		}
	}
	q.scores = append(q.scores, field)
}

// AddReviewWordCountColumns projects per-review word counts.
func (q *QueryInfo) AddReviewWordCountColumns() {
	q.AddReviewSignatureColumns()
	if !q.HasColumn("reviewWordCountSignature") {
		q.AddColumn("reviewWordCountSignature", Raw("coalesce((select group_concat(coalesce(reviewWordCount, '.'), ',') from PaperReview where PaperReview.paperId=Paper.paperId), '')"))
	}
}

// AddAllConflictTypeColumn projects every conflict on the paper.
func (q *QueryInfo) AddAllConflictTypeColumn() {
	if !q.HasColumn("allConflictType") {
		q.AddColumn("allConflictType", Raw("coalesce((select group_concat(contactId || ' ' || conflictType, ',') from PaperConflict where PaperConflict.paperId=Paper.paperId), '')"))
	}
}

// AddTagsColumn projects the paper's tags as " tag#value" pairs.
func (q *QueryInfo) AddTagsColumn() {
	if !q.HasColumn("paperTags") {
		q.AddColumn("paperTags", Raw("coalesce((select group_concat(' ' || tag || '#' || tagIndex, '') from PaperTag where PaperTag.paperId=Paper.paperId), '')"))
	}
}

// ResolveOptions turns raised query options into columns.
func (q *QueryInfo) ResolveOptions() {
	if q.Option(OptTags) {
		q.AddTagsColumn()
	}
	if q.Option(OptReviewSignatures) {
		q.AddReviewSignatureColumns()
	}
	if q.Option(OptReviewWordCounts) {
		q.AddReviewWordCountColumns()
	}
	if q.Option(OptAllConflictType) {
		q.AddAllConflictTypeColumn()
	}
	if q.Option(OptAuthorInformation) {
		q.AddColumn("authorInformation", Raw("Paper.authorInformation"))
	}
	if q.Option(OptCollaborators) {
		q.AddColumn("collaborators", Raw("Paper.collaborators"))
	}
	if q.Option(OptPDFSize) {
		q.AddColumn("size", Raw("Paper.size"))
	}
	if q.Option(OptShepherd) {
		q.AddColumn("shepherdContactId", Raw("Paper.shepherdContactId"))
	}
	if q.Option(OptPaperStorage) {
		q.AddColumn("paperStorageId", Raw("Paper.paperStorageId"))
	}
}

// FinishReviewerColumns resolves the deferred reviewer requests into
// columns. It runs once, after every term has contributed, so that the
// conflict join is added at most once however many terms asked for it.
func (q *QueryInfo) FinishReviewerColumns() {
	cid := q.user.ContactID
	if q.hasMyReview {
		if ct := q.ConflictTable(cid); ct != "" {
			q.AddColumn("conflictType", Raw("coalesce("+ct+".conflictType, 0)"))
		} else {
			q.AddColumn("conflictType", Raw("0"))
		}
	}
	if q.hasReviewSignatures {
		sig := "r.reviewId || ' ' || r.contactId || ' ' || r.reviewType || ' ' || coalesce(r.reviewSubmitted, 0) || ' ' || r.reviewRound || ' ' || coalesce(r.requestedBy, 0)"
		for _, f := range q.scores {
			sig += " || ' " + f + "=' || coalesce(r." + f + ", 0)"
		}
		q.AddColumn(reviewSignatureColumn, Raw("coalesce((select group_concat("+sig+", ',') from PaperReview r where r.paperId=Paper.paperId), '')"))
	}
	if !q.hasMyReview {
		return
	}
	switch {
	case cid <= 0:
		q.AddColumn("myReviewPermissions", Raw("''"))
	default:
		q.AddColumn("myReviewPermissions", Raw("coalesce((select group_concat(reviewType || ' ' || coalesce(reviewSubmitted, 0), ',') from PaperReview where PaperReview.paperId=Paper.paperId and PaperReview.contactId=?), '')", cid))
	}
}
