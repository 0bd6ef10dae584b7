package search

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

var (
	chair      = &ir.Contact{ContactID: 1, Email: "chair@example.org", FirstName: "Carla", LastName: "Chair", Roles: ir.RoleChair}
	pcPat      = &ir.Contact{ContactID: 2, Email: "pat@example.org", FirstName: "Pat", LastName: "Member", Roles: ir.RolePC, ContactTags: "heavy"}
	pcDana     = &ir.Contact{ContactID: 3, Email: "dana@example.org", FirstName: "Dana", LastName: "Lee", Roles: ir.RolePC}
	authorUser = &ir.Contact{ContactID: 4, Email: "author@example.org", FirstName: "Ann", LastName: "Author"}
)

func testConf() *ir.Conf {
	return &ir.Conf{
		Name:      "Test",
		Decisions: []ir.Decision{{ID: 1, Name: "Accepted"}, {ID: -1, Name: "Rejected"}},
		NamedSearches: []ir.NamedSearch{
			{Name: "graphs", Q: "ti:graph"},
			{Name: "loop", Q: "ss:loop"},
			{Name: "broken", Q: ""},
			{Name: "everything", Q: "ti:graph", T: "all"},
			{Name: "ping", Q: "ss:pong"},
			{Name: "pong", Q: "ss:ping"},
			{Name: "fan", Q: "ss:fan ss:fan ss:fan ss:fan"},
		},
		Tags: []ir.TagAnnotation{
			{Tag: "order", Order: true},
			{Tag: "auto", Automatic: "ti:graph"},
		},
		Blindness: ir.BlindNever,
	}
}

func testContacts() *ContactList {
	return NewContactList([]*ir.Contact{chair, pcPat, pcDana, authorUser})
}

// testRows are seen by the chair, who has no conflicts.
func testRows() []*ir.PaperRow {
	return []*ir.PaperRow{
		{PaperID: 1, Title: "Graph algorithms", Abstract: "fast search", TimeSubmitted: 100,
			PaperTags: " green#0 order#2 x#5", ReviewSignatures: "1 2 4 1 0,2 3 3 0 0"},
		{PaperID: 2, Title: "Tree search", Abstract: "balanced trees", TimeSubmitted: 100,
			PaperTags: " green#3 red#0 x#10", ReviewSignatures: "3 2 2 1 0"},
		{PaperID: 3, Title: "Graph search", Abstract: "heuristic", TimeSubmitted: 100,
			PaperTags: " order#1 x#7"},
		{PaperID: 4, Title: "Compilers", Abstract: "parsing", TimeSubmitted: 100, Outcome: 1,
			PaperTags: " x#12"},
		{PaperID: 5, Title: "Unsubmitted draft", Abstract: "nothing yet"},
		{PaperID: 6, Title: "Withdrawn graph", Abstract: "gone", TimeSubmitted: 100, TimeWithdrawn: 200},
	}
}

// memRows answers every statement with all of its rows, the most liberal
// answer a row source may give.
type memRows struct {
	rows  []*ir.PaperRow
	stmts []querysql.Statement
	err   error
}

func newMemRows() *memRows {
	return &memRows{rows: testRows()}
}

func (m *memRows) QueryPapers(_ context.Context, stmt querysql.Statement) ([]*ir.PaperRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.stmts = append(m.stmts, stmt)
	out := make([]*ir.PaperRow, len(m.rows))
	for i, r := range m.rows {
		c := *r
		out[i] = &c
	}
	return out, nil
}

func (m *memRows) PapersExist(_ context.Context, ids []int) (bool, error) {
	for _, r := range m.rows {
		if slices.Contains(ids, r.PaperID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRows) TagExists(_ context.Context, tag string) (bool, error) {
	for _, r := range m.rows {
		if _, ok := r.TagValue(tag); ok {
			return true, nil
		}
	}
	return false, nil
}

func newTestSearch(user *ir.Contact, p Params, opts ...Option) *PaperSearch {
	base := []Option{WithConf(testConf()), WithContacts(testContacts()), WithRowSource(newMemRows())}
	return NewPaperSearch(user, p, append(base, opts...)...)
}

func searchIDs(t *testing.T, user *ir.Contact, q, limit string) []int {
	t.Helper()
	ids, err := newTestSearch(user, Params{Q: q, T: limit}).PaperIDs(context.Background())
	require.NoError(t, err)
	return ids
}

func warningTexts(s *PaperSearch) []string {
	var out []string
	for _, m := range s.Messages() {
		if m.Status == StatusWarning {
			out = append(out, m.Message)
		}
	}
	return out
}

func hasWarning(s *PaperSearch, substr string) bool {
	for _, w := range warningTexts(s) {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
