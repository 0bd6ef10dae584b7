package search

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// RowSource runs planned statements. The store package implements it over
// SQLite.
type RowSource interface {
	// QueryPapers returns the rows of stmt. Columns the statement did not
	// project stay zero.
	QueryPapers(ctx context.Context, stmt querysql.Statement) ([]*ir.PaperRow, error)
	// PapersExist reports whether any of ids names a paper, whatever its
	// status.
	PapersExist(ctx context.Context, ids []int) (bool, error)
	// TagExists reports whether any paper carries tag.
	TagExists(ctx context.Context, tag string) (bool, error)
}

// GroupLegend labels one group of results.
type GroupLegend struct {
	Legend string `json:"legend"`
	// Search is the query text of the group, when results are split by
	// THEN.
	Search string `json:"search,omitempty"`
}

// plan builds the candidate statement. ok is false when no row can match.
func (s *PaperSearch) plan() (querysql.Statement, bool) {
	q := querysql.NewQueryInfo(querysql.QueryUser{ContactID: s.userID()})
	for _, col := range []string{"paperId", "title", "timeSubmitted", "timeWithdrawn", "outcome", "leadContactId", "managerContactId"} {
		q.AddColumn(col, querysql.Raw("Paper."+col))
	}
	if s.conf != nil && s.conf.Blindness == ir.BlindOptional {
		q.AddColumn("blind", querysql.Raw("Paper.blind"))
	}

	filter := querysql.And(s.limitTerm.SQLExpr(q), s.MainTerm().SQLExpr(q))
	if filter.IsFalse() {
		return querysql.Statement{}, false
	}
	if s.viewer.CanViewTags() {
		q.SetOption(querysql.OptTags)
	}
	q.ResolveOptions()
	q.FinishReviewerColumns()

	if refused := q.Refused(); len(refused) > 0 {
		s.logger.Warn("search joins refused", "tables", refused)
		s.metrics.ObserveRefusedJoins(len(refused))
	}
	return q.Compile(filter), true
}

// evaluate fetches candidates and filters them exactly. It runs once per
// compilation.
func (s *PaperSearch) evaluate(ctx context.Context) error {
	qe := s.MainTerm()
	if s.evaluated {
		return nil
	}
	start := time.Now()
	s.matches = nil
	s.matchRows = make(map[int]*ir.PaperRow)
	s.thenMap = make(map[int]int)
	s.highlightMap = nil

	var rows []*ir.PaperRow
	if s.limitTerm.limit != "none" {
		if s.rows == nil {
			return &Error{Code: ErrCodeNoRowSource, Message: "search has no row source", Query: s.q}
		}
		if stmt, ok := s.plan(); ok {
			var err error
			if rows, err = s.rows.QueryPapers(ctx, stmt); err != nil {
				return rowSourceError(s.q, err)
			}
		}
	}

	then := s.thenTerm
	if then != nil && then.HasHighlight() {
		s.highlightMap = make(map[int][]string)
	}
	for _, row := range rows {
		if !s.viewer.CanViewPaper(row) || !s.limitTerm.Test(row, nil) || !qe.Test(row, nil) {
			continue
		}
		s.matches = append(s.matches, row.PaperID)
		s.matchRows[row.PaperID] = row
		group := 0
		if then != nil {
			g, colors := then.Match(row)
			group = max(g, 0)
			if len(colors) > 0 && s.highlightMap != nil {
				s.highlightMap[row.PaperID] = colors
			}
		}
		s.thenMap[row.PaperID] = group
	}

	if s.limitTerm.limit != "none" {
		if err := s.checkNamedPapers(ctx); err != nil {
			return err
		}
	}

	s.evaluated = true
	if s.parent == nil {
		s.metrics.ObserveEvaluation(len(rows), len(s.matches), time.Since(start))
	}
	s.logger.Debug("search evaluated",
		"q", s.q,
		"fetched", len(rows),
		"matched", len(s.matches),
		"duration", time.Since(start))
	return nil
}

// checkNamedPapers handles papers named by number that did not match.
// With deleted papers allowed they are added to the results; otherwise a
// chair is told when the submitted-only limit hid some of them.
func (s *PaperSearch) checkNamedPapers(ctx context.Context) error {
	var missing []int
	for _, pid := range namedPaperIDs(s.qe) {
		if _, ok := s.matchRows[pid]; !ok && !slices.Contains(missing, pid) {
			missing = append(missing, pid)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if s.allowDeleted {
		sort.Ints(missing)
		for _, pid := range missing {
			s.matches = append(s.matches, pid)
			s.thenMap[pid] = 0
		}
		return nil
	}
	if s.limitTerm.named != "s" || !s.user.PrivChair() || s.rows == nil {
		return nil
	}
	exist, err := s.rows.PapersExist(ctx, missing)
	if err != nil {
		return rowSourceError(s.q, err)
	}
	if exist {
		s.warning("Some incomplete or withdrawn submissions also match this search.")
	}
	return nil
}

// namedPaperIDs lists the paper numbers a query names outright: through
// paper-number terms joined only by OR and THEN.
func namedPaperIDs(t Term) []int {
	switch t := t.(type) {
	case *PaperIDTerm:
		return t.listedIDs()
	case *ThenTerm:
		var out []int
		for i := range t.NThen() {
			out = append(out, namedPaperIDs(t.Group(i))...)
		}
		return out
	case *OpTerm:
		if t.typ != "or" {
			return nil
		}
		var out []int
		for _, c := range t.child {
			out = append(out, namedPaperIDs(c)...)
		}
		return out
	}
	return nil
}

// PaperIDs returns the matching paper ids in ascending order.
func (s *PaperSearch) PaperIDs(ctx context.Context) ([]int, error) {
	if err := s.evaluate(ctx); err != nil {
		return nil, err
	}
	out := slices.Clone(s.matches)
	sort.Ints(out)
	return out, nil
}

// Rows returns the fetched rows of the matching papers, by id. Papers
// added because deleted papers are allowed have no row.
func (s *PaperSearch) Rows(ctx context.Context) (map[int]*ir.PaperRow, error) {
	if err := s.evaluate(ctx); err != nil {
		return nil, err
	}
	return s.matchRows, nil
}

// GroupsByPaperID maps each match to the index of its THEN group; without
// THEN every match is in group 0.
func (s *PaperSearch) GroupsByPaperID(ctx context.Context) (map[int]int, error) {
	if err := s.evaluate(ctx); err != nil {
		return nil, err
	}
	return s.thenMap, nil
}

// PaperGroupIndex returns the group of paper pid. ok is false when pid
// did not match.
func (s *PaperSearch) PaperGroupIndex(ctx context.Context, pid int) (int, bool, error) {
	if err := s.evaluate(ctx); err != nil {
		return 0, false, err
	}
	g, ok := s.thenMap[pid]
	return g, ok, nil
}

// HighlightsByPaperID maps matches to their highlight colors. It is nil
// when the query has no HIGHLIGHT.
func (s *PaperSearch) HighlightsByPaperID(ctx context.Context) (map[int][]string, error) {
	if err := s.evaluate(ctx); err != nil {
		return nil, err
	}
	return s.highlightMap, nil
}

// RestrictMatch drops the matches keep rejects.
func (s *PaperSearch) RestrictMatch(ctx context.Context, keep func(pid int) bool) error {
	if err := s.evaluate(ctx); err != nil {
		return err
	}
	out := s.matches[:0]
	for _, pid := range s.matches {
		if keep(pid) {
			out = append(out, pid)
			continue
		}
		delete(s.thenMap, pid)
		delete(s.matchRows, pid)
		delete(s.highlightMap, pid)
	}
	s.matches = out
	return nil
}

// Test reports whether row matches, limit included. The row must carry
// the columns the search plans.
func (s *PaperSearch) Test(row *ir.PaperRow) bool {
	qe := s.MainTerm()
	return s.viewer.CanViewPaper(row) && s.limitTerm.Test(row, nil) && qe.Test(row, nil)
}

// TestReview reports whether review r of row matches.
func (s *PaperSearch) TestReview(row *ir.PaperRow, r *ir.ReviewInfo) bool {
	qe := s.MainTerm()
	return s.viewer.CanViewPaper(row) && s.limitTerm.Test(row, r) && qe.Test(row, r)
}

// PaperGroups labels the result groups. With several THEN groups each
// gets its legend, or its query text; otherwise there is one group,
// labeled by "legend:", or nil if the query has no legend.
func (s *PaperSearch) PaperGroups() []GroupLegend {
	qe := s.MainTerm()
	if then := s.thenTerm; then != nil && then.NThen() > 1 {
		groups := make([]GroupLegend, then.NThen())
		for i := range groups {
			g := then.Group(i)
			var text string
			if sp, ok := g.Span(); ok {
				text = strings.TrimRight(sp.Text(), " \t\n\r\v\f")
			}
			legend := g.Floats().String("legend")
			if legend == "" {
				legend = text
			}
			groups[i] = GroupLegend{Legend: legend, Search: text}
		}
		return groups
	}
	if then := s.thenTerm; then != nil {
		qe = then.Group(0)
	}
	if legend := qe.Floats().String("legend"); legend != "" {
		return []GroupLegend{{Legend: legend}}
	}
	return nil
}
