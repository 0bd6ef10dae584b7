package search

import (
	"strings"
	"unicode/utf8"
)

// MessageStatus ranks a message.
type MessageStatus int

const (
	StatusInform MessageStatus = iota
	StatusWarning
)

func (s MessageStatus) String() string {
	if s == StatusWarning {
		return "warning"
	}
	return "inform"
}

// MessageItem is one diagnostic attached to a search. When Context is set,
// Pos1 and Pos2 bracket the offending bytes of Context.
type MessageItem struct {
	Status  MessageStatus
	Message string
	Context string
	Pos1    int
	Pos2    int
}

// HasSpan reports whether the message points into its context.
func (m MessageItem) HasSpan() bool {
	return m.Context != "" && m.Pos1 >= 0 && m.Pos2 >= m.Pos1
}

// excerptWidth is the widest context shown before it is trimmed around the
// span.
const excerptWidth = 72

// Excerpt returns the context line and a marker line underlining the span,
// as in
//
//	ti:foo blurb:bar
//	       ^~~~~~
//
// Long contexts are trimmed around the span with ellipses.
func (m MessageItem) Excerpt() (line, marker string) {
	if !m.HasSpan() {
		return "", ""
	}
	ctx := flattenSpace(m.Context)
	p1 := min(m.Pos1, len(ctx))
	p2 := min(max(m.Pos2, p1), len(ctx))
	start, end := 0, len(ctx)
	var prefix, suffix string
	if utf8.RuneCountInString(ctx) > excerptWidth {
		start = max(p1-excerptWidth/3, 0)
		for start > 0 && !utf8.RuneStart(ctx[start]) {
			start--
		}
		end = min(max(p2, start+excerptWidth), len(ctx))
		for end < len(ctx) && !utf8.RuneStart(ctx[end]) {
			end++
		}
		if start > 0 {
			prefix = "…"
		}
		if end < len(ctx) {
			suffix = "…"
		}
	}
	line = prefix + ctx[start:end] + suffix
	lead := utf8.RuneCountInString(prefix + ctx[start:p1])
	width := utf8.RuneCountInString(ctx[p1:p2])
	marker = strings.Repeat(" ", lead) + "^" + strings.Repeat("~", max(width-1, 0))
	return line, marker
}

// String renders the message with its excerpt, if any.
func (m MessageItem) String() string {
	var b strings.Builder
	b.WriteString(m.Status.String())
	b.WriteString(": ")
	b.WriteString(m.Message)
	if line, marker := m.Excerpt(); line != "" {
		b.WriteString("\n    ")
		b.WriteString(line)
		b.WriteString("\n    ")
		b.WriteString(marker)
	}
	return b.String()
}

// RenderMessages renders messages one per paragraph.
func RenderMessages(items []MessageItem) string {
	parts := make([]string, len(items))
	for i, m := range items {
		parts[i] = m.String()
	}
	return strings.Join(parts, "\n")
}

// flattenSpace replaces control whitespace by blanks so that byte offsets
// survive and the excerpt stays on one line.
func flattenSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r', '\v', '\f':
			return ' '
		}
		return r
	}, s)
}
