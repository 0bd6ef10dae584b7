package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/store"
)

func TestFixedTokenGenerator(t *testing.T) {
	assert.Equal(t, "tok", NewFixedTokenGenerator("tok").Generate())
	g := NewFixedTokenGenerator("")
	assert.Equal(t, "test-search-default", g.Generate())
	assert.Equal(t, "test-search-default", g.Generate())
}

func TestPaperBuilder(t *testing.T) {
	p := Paper(3).
		Title("Graph search").
		AuthoredBy(Author).
		Tags("green", "x#7").
		Review(PCPat.ContactID, ir.ReviewPrimary, true, map[string]int{"overAllMerit": 2}).
		Review(PCDana.ContactID, ir.ReviewSecondary, false, nil).
		Build()

	assert.Equal(t, "Graph search", p.Title)
	assert.Equal(t, int64(100), p.Submitted)
	assert.Equal(t, map[int]int{4: ir.ConflictContact}, p.Conflicts)
	assert.Equal(t, "author@example.org", p.Authors[0].Email)
	require.Len(t, p.Reviews, 2)
	assert.Equal(t, 301, p.Reviews[0].ID)
	assert.Equal(t, 302, p.Reviews[1].ID)

	assert.Zero(t, Paper(1).Unsubmitted().Build().Submitted)
	assert.Equal(t, "Paper 1", Paper(1).Build().Title)
}

func TestConferenceLoads(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	f := Conference(Paper(1).AuthoredBy(Author), Paper(2).Withdrawn().Tags("red"))
	require.NoError(t, st.LoadFixture(ctx, f))

	ids, err := st.PaperIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	contacts, err := st.LoadContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 4)
}
