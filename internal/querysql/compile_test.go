package querysql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprCombinators(t *testing.T) {
	a := Raw("a=?", 1)
	b := Raw("b=?", 2)

	tests := []struct {
		name     string
		got      Expr
		wantSQL  string
		wantArgs []any
	}{
		{"and two", And(a, b), "((a=?) and (b=?))", []any{1, 2}},
		{"and drops true", And(True, a), "a=?", []any{1}},
		{"and absorbs false", And(a, False, b), "false", nil},
		{"and empty", And(), "true", nil},
		{"or two", Or(a, b), "((a=?) or (b=?))", []any{1, 2}},
		{"or drops false", Or(False, b), "b=?", []any{2}},
		{"or absorbs true", Or(a, True), "true", nil},
		{"or empty", Or(), "false", nil},
		{"not", Not(a), "not (a=?)", []any{1}},
		{"not true", Not(True), "false", nil},
		{"not false", Not(False), "true", nil},
		{"in ints", InInts("Paper.paperId", []int{3, 7}), "Paper.paperId in (?,?)", []any{3, 7}},
		{"in empty", InInts("Paper.paperId", nil), "false", nil},
		{"in strings", InStrings("tag", []string{"x"}), "tag in (?)", []any{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSQL, tt.got.SQL)
			assert.Equal(t, tt.wantArgs, tt.got.Args)
		})
	}
}

func TestExprPlaceholdersMatchArgs(t *testing.T) {
	e := And(Or(Raw("x=?", 1), Raw("y=?", 2)), Not(InInts("z", []int{3, 4, 5})))
	assert.Equal(t, strings.Count(e.SQL, "?"), len(e.Args))
	assert.Equal(t, []any{1, 2, 3, 4, 5}, e.Args)
}

func TestLikeEscape(t *testing.T) {
	assert.Equal(t, `50\% of a\_b \\ c`, LikeEscape(`50% of a_b \ c`))
}

func TestTryAddTableIdempotent(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	a1, ok := q.TryAddTable("PaperConflict2", Join{Type: LeftJoin, Table: "PaperConflict"}, false)
	require.True(t, ok)
	a2, ok := q.TryAddTable("PaperConflict2", Join{Type: LeftJoin, Table: "PaperConflict"}, false)
	require.True(t, ok)
	assert.Equal(t, a1, a2)

	stmt := q.Compile(True)
	assert.Equal(t, 1, strings.Count(stmt.SQL, "as PaperConflict2"))
}

func TestTryAddTableUpgradesJoin(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	q.TryAddTable("R", Join{Type: LeftJoin, Table: "PaperReview"}, false)
	q.TryAddTable("R", Join{Type: InnerJoin, Table: "PaperReview"}, false)

	stmt := q.Compile(True)
	assert.Contains(t, stmt.SQL, "\n    join PaperReview as R on")
	assert.NotContains(t, stmt.SQL, "left join")

	// A later left join does not downgrade.
	q.TryAddTable("R", Join{Type: LeftJoin, Table: "PaperReview"}, false)
	assert.NotContains(t, q.Compile(True).SQL, "left join")
}

func TestTryAddTableUniqueSuffix(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	a1, _ := q.TryAddTable("Tags_", Join{Type: LeftJoin, Table: "PaperTag"}, false)
	a2, _ := q.TryAddTable("Tags_", Join{Type: LeftJoin, Table: "PaperTag"}, false)
	assert.Equal(t, "Tags_1", a1)
	assert.Equal(t, "Tags_2", a2)
}

func TestTryAddTableCap(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	for i := 0; i < MaxOptionalTables; i++ {
		_, ok := q.TryAddTable(fmt.Sprintf("T%d", i), Join{Type: LeftJoin, Table: "PaperTag"}, false)
		require.True(t, ok, "table %d", i)
	}

	alias, ok := q.TryAddTable("Extra", Join{Type: LeftJoin, Table: "PaperTag"}, false)
	assert.False(t, ok)
	assert.Equal(t, "", alias)
	assert.Equal(t, []string{"Extra"}, q.Refused())
	assert.False(t, q.HasTable("Extra"))

	// Required tables are exempt from the cap.
	assert.Equal(t, "Needed", q.AddTable("Needed", Join{Type: LeftJoin, Table: "PaperTag"}))
	assert.True(t, q.HasTable("Needed"))

	// Existing optional tables are still returned.
	alias, ok = q.TryAddTable("T3", Join{Type: LeftJoin, Table: "PaperTag"}, false)
	assert.True(t, ok)
	assert.Equal(t, "T3", alias)
}

func TestAddColumnConflictPanics(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	q.AddColumn("title", Raw("Paper.title"))
	assert.NotPanics(t, func() { q.AddColumn("title", Raw("Paper.title")) })
	assert.Panics(t, func() { q.AddColumn("title", Raw("Paper.abstract")) })
	assert.Equal(t, []string{"title"}, q.Columns())
}

func TestConflictTable(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	assert.Equal(t, "", q.ConflictTable(0))
	assert.Equal(t, "PaperConflict9", q.ConflictTable(9))
	assert.Equal(t, "PaperConflict9", q.ConflictTable(9))
	stmt := q.Compile(True)
	assert.Equal(t, 1, strings.Count(stmt.SQL, "PaperConflict as PaperConflict9"))
	assert.Equal(t, []any{9}, stmt.Args)
}

func TestFinishReviewerColumnsAdministerAll(t *testing.T) {
	q := NewQueryInfo(QueryUser{ContactID: 1, AdministerAll: true})
	q.FinishReviewerColumns()
	assert.False(t, q.HasColumn("conflictType"))
	assert.False(t, q.HasColumn("myReviewPermissions"))
}

func TestFinishReviewerColumnsAnonymous(t *testing.T) {
	q := NewQueryInfo(QueryUser{})
	q.FinishReviewerColumns()
	assert.Equal(t, []string{"conflictType", "myReviewPermissions"}, q.Columns())
	stmt := q.Compile(True)
	assert.Contains(t, stmt.SQL, "0 conflictType")
	assert.Contains(t, stmt.SQL, "'' myReviewPermissions")
	assert.Empty(t, stmt.Args)
}

func TestReviewSignaturesWithScores(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	q.AddScoreColumn("overAllMerit")
	q.AddScoreColumn("overAllMerit")
	q.AddScoreColumn("bad column")
	q.FinishReviewerColumns()

	stmt := q.Compile(True)
	assert.Equal(t, 1, strings.Count(stmt.SQL, "overAllMerit="))
	assert.NotContains(t, stmt.SQL, "bad column")
	assert.True(t, q.HasColumn("reviewSignatures"))
}

func TestResolveOptions(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	q.SetOption(OptTags)
	q.SetOption(OptAuthorInformation)
	q.SetOption(OptPDFSize)
	q.SetOption(OptReviewWordCounts)
	q.SetOption(OptAllConflictType)
	q.ResolveOptions()
	q.FinishReviewerColumns()

	assert.Equal(t, []string{"paperTags", "reviewWordCountSignature", "allConflictType", "authorInformation", "size", "reviewSignatures"}, q.Columns())
}

func TestCompileGolden(t *testing.T) {
	q := NewQueryInfo(QueryUser{ContactID: 7})
	q.AddColumn("paperId", Raw("Paper.paperId"))
	q.AddColumn("timeSubmitted", Raw("Paper.timeSubmitted"))
	q.SetOption(OptTags)
	q.ResolveOptions()
	q.FinishReviewerColumns()

	stmt := q.Compile(InInts("Paper.paperId", []int{1, 2}))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "reviewer_statement", []byte(stmt.SQL))
	assert.Equal(t, []any{7, 7, 1, 2}, stmt.Args)
	assert.Equal(t, strings.Count(stmt.SQL, "?"), len(stmt.Args))
}

func TestCompileEmptyFilter(t *testing.T) {
	q := NewQueryInfo(QueryUser{AdministerAll: true})
	stmt := q.Compile(Expr{})
	assert.Equal(t, "select Paper.paperId paperId\n    from Paper\n    where true\n    group by Paper.paperId\n    order by Paper.paperId", stmt.SQL)
}
