package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		word     string
		action   string
		keyword  string
		decor    []string
		reversed bool
	}{
		{"sort:title", "sort", "title", nil, false},
		{"sort:-title", "sort", "title", []string{"reverse"}, true},
		{"sort:+title", "sort", "title", nil, false},
		{"sort:title reverse", "sort", "title", []string{"reverse"}, true},
		{"sort:title[reverse]", "sort", "title", []string{"reverse"}, true},
		{"sort:title[reverse down]", "sort", "title", []string{"reverse", "down"}, false},
		{"sort:-title[up]", "sort", "title", []string{"reverse", "up"}, false},
		{"abstract", "show", "abstract", nil, false},
		{"hide:authors", "hide", "authors", nil, false},
		{"show:[abstract]", "show", "abstract", nil, false},
		{"showsort:#order", "showsort", "#order", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			elts := ParseView([]string{tt.word})
			require.Len(t, elts, 1)
			e := elts[0]
			assert.Equal(t, tt.action, e.Action)
			assert.Equal(t, tt.keyword, e.Keyword)
			assert.Equal(t, tt.decor, e.Decorations)
			assert.Equal(t, tt.reversed, e.Reversed())
			assert.Equal(t, -1, e.Pos1w)
		})
	}
}

func TestParseViewSkipsEmpty(t *testing.T) {
	assert.Empty(t, ParseView([]string{"sort:", "show:[]", "sort:-"}))
}

func TestViewElementKinds(t *testing.T) {
	for _, tt := range []struct {
		action     string
		sort, show bool
	}{
		{"sort", true, false},
		{"show", false, true},
		{"showsort", true, true},
		{"editsort", true, true},
		{"edit", false, true},
		{"hide", false, false},
	} {
		e := ViewElement{Action: tt.action}
		assert.Equal(t, tt.sort, e.IsSort(), tt.action)
		assert.Equal(t, tt.show, e.IsShow(), tt.action)
	}
}

func TestUnparseView(t *testing.T) {
	assert.Equal(t, "sort:title", UnparseView("sort", "title", nil))
	assert.Equal(t, "sort:title[reverse]", UnparseView("sort", "title", []string{"reverse"}))
	assert.Equal(t, "show:#order", UnparseView("show", "#order", nil))
	assert.Equal(t, `show:"two words"`, UnparseView("show", "two words", nil))
}

func TestUnparseViewRoundTrip(t *testing.T) {
	for _, kw := range []string{"title", "#order", "two words"} {
		elts := ParseView([]string{UnparseView("sort", kw, []string{"reverse"})})
		require.Len(t, elts, 1, kw)
		assert.True(t, elts[0].Reversed(), kw)
	}
}

func TestQueryView(t *testing.T) {
	s := newTestSearch(chair, Params{Q: "sort:-title show:abstract #green", T: "s"})
	view := s.View()
	require.Len(t, view, 2)
	assert.Equal(t, "sort", view[0].Action)
	assert.Equal(t, "title", view[0].Keyword)
	assert.True(t, view[0].Reversed())
	assert.Equal(t, "show", view[1].Action)
	assert.Equal(t, "abstract", view[1].Keyword)
	assert.Equal(t, []string{"title"}, s.sortFieldList())
}
