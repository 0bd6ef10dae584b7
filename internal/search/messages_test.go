package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	m := MessageItem{Status: StatusWarning, Message: "Unknown", Context: "ti:foo blurb:bar", Pos1: 7, Pos2: 16}
	line, marker := m.Excerpt()
	assert.Equal(t, "ti:foo blurb:bar", line)
	assert.Equal(t, "       ^~~~~~~~~", marker)
	assert.Equal(t, "warning: Unknown\n    ti:foo blurb:bar\n           ^~~~~~~~~", m.String())
}

func TestExcerptTrimsLongContext(t *testing.T) {
	ctx := strings.Repeat("a", 100) + "test"
	m := MessageItem{Status: StatusWarning, Message: "x", Context: ctx, Pos1: 100, Pos2: 104}
	line, marker := m.Excerpt()
	assert.Equal(t, "…"+strings.Repeat("a", 24)+"test", line)
	assert.Equal(t, strings.Repeat(" ", 25)+"^~~~", marker)
}

func TestExcerptFlattensWhitespace(t *testing.T) {
	m := MessageItem{Context: "a\tb\nc", Pos1: 2, Pos2: 3}
	line, marker := m.Excerpt()
	assert.Equal(t, "a b c", line)
	assert.Equal(t, "  ^", marker)
}

func TestExcerptWithoutSpan(t *testing.T) {
	m := MessageItem{Status: StatusInform, Message: "note", Pos1: -1, Pos2: -1}
	assert.False(t, m.HasSpan())
	line, marker := m.Excerpt()
	assert.Empty(t, line)
	assert.Empty(t, marker)
	assert.Equal(t, "inform: note", m.String())
}

func TestRenderMessages(t *testing.T) {
	items := []MessageItem{
		{Status: StatusWarning, Message: "one", Pos1: -1, Pos2: -1},
		{Status: StatusInform, Message: "two", Pos1: -1, Pos2: -1},
	}
	assert.Equal(t, "warning: one\ninform: two", RenderMessages(items))
	assert.Empty(t, RenderMessages(nil))
}

func TestMessagesAreCopies(t *testing.T) {
	s := newTestSearch(chair, Params{Q: "foo:bar"})
	msgs := s.Messages()
	msgs[0].Message = "changed"
	assert.Equal(t, "Unknown search keyword ‘foo:’", s.Messages()[0].Message)
}
