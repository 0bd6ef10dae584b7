package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/papersearch/internal/querysql"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestQueryPapers_ScansProjectedColumns(t *testing.T) {
	s, mock := newMockStore(t)
	stmt := querysql.Statement{SQL: "select Paper.paperId paperId from Paper where Paper.paperId in (?,?)", Args: []any{1, 2}}

	mock.ExpectQuery(stmt.SQL).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"paperId", "title", "paperTags", "unknownColumn"}).
			AddRow(1, "Graph algorithms", " green#0", "x").
			AddRow(2, "Tree search", "", "y"))

	rows, err := s.QueryPapers(context.Background(), stmt)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].PaperID)
	assert.Equal(t, "Graph algorithms", rows[0].Title)
	assert.Equal(t, " green#0", rows[0].PaperTags)
	assert.Zero(t, rows[0].TimeSubmitted)
	assert.Equal(t, 2, rows[1].PaperID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryPapers_Empty(t *testing.T) {
	s, mock := newMockStore(t)
	stmt := querysql.Statement{SQL: "select Paper.paperId paperId from Paper where false"}
	mock.ExpectQuery(stmt.SQL).WillReturnRows(sqlmock.NewRows([]string{"paperId"}))

	rows, err := s.QueryPapers(context.Background(), stmt)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQueryPapers_WrapsErrors(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("disk on fire")
	mock.ExpectQuery("select 1").WillReturnError(boom)

	_, err := s.QueryPapers(context.Background(), querysql.Statement{SQL: "select 1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "query papers")
}

func TestPapersExist_ExpandsIDs(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT EXISTS (SELECT 1 FROM Paper WHERE paperId IN (?, ?, ?))`).
		WithArgs(3, 5, 8).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.PapersExist(context.Background(), []int{3, 5, 8})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPapersExist_NoIDs(t *testing.T) {
	s, mock := newMockStore(t)
	ok, err := s.PapersExist(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagExists_WrapsErrors(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("locked")
	mock.ExpectQuery(`SELECT EXISTS (SELECT 1 FROM PaperTag WHERE tag = ?)`).
		WithArgs("green").
		WillReturnError(boom)

	_, err := s.TagExists(context.Background(), "green")
	assert.ErrorIs(t, err, boom)
}

func TestTagQueries(t *testing.T) {
	s := createFixtureStore(t)
	ctx := context.Background()

	ok, err := s.TagExists(ctx, "GREEN")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TagExists(ctx, "purple")
	require.NoError(t, err)
	assert.False(t, ok)

	values, err := s.TagValues(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 5, 2: 10, 3: 7, 4: 12}, values)
}

func TestPapersExist_SQLite(t *testing.T) {
	s := createFixtureStore(t)
	ctx := context.Background()

	ok, err := s.PapersExist(ctx, []int{5, 99})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.PapersExist(ctx, []int{98, 99})
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := s.PaperIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids)
}

func TestContacts(t *testing.T) {
	s := createFixtureStore(t)
	ctx := context.Background()

	all, err := s.LoadContacts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "chair@example.org", all[0].Email)
	assert.Equal(t, "heavy", all[1].ContactTags)
	assert.True(t, all[1].IsPC())

	c, ok, err := s.ContactByEmail(ctx, "DANA@example.org")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, c.ContactID)
	assert.Equal(t, "Example University", c.Affiliation)

	_, ok, err = s.ContactByEmail(ctx, "nobody@example.org")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchContacts(t *testing.T) {
	s := createFixtureStore(t)
	ctx := context.Background()

	ids := func(text string, pcOnly bool) []int {
		t.Helper()
		cs, err := s.MatchContacts(ctx, text, pcOnly)
		require.NoError(t, err)
		var out []int
		for _, c := range cs {
			out = append(out, c.ContactID)
		}
		return out
	}

	assert.Equal(t, []int{1, 2, 3, 4}, ids("example.org", false))
	assert.Equal(t, []int{1, 2, 3}, ids("example.org", true))
	assert.Equal(t, []int{4}, ids("ann", false))
	assert.Equal(t, []int{3}, ids("Dana Lee", true))
	assert.Empty(t, ids("50%", false))
}
