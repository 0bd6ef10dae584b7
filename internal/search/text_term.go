package search

import (
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
	"github.com/roach88/papersearch/internal/textmatch"
)

var textColumns = map[string]string{
	"ti": "title",
	"ab": "abstract",
	"co": "collaborators",
}

// TextTerm matches a word in a free-text paper field.
type TextTerm struct {
	termBase
	srch    *PaperSearch
	field   string
	pattern *textmatch.Pattern
}

func parseTextField(word string, sw *SearchWord, srch *PaperSearch) []Term {
	t := &TextTerm{
		termBase: termBase{typ: sw.Kwdef.field},
		srch:     srch,
		field:    sw.Kwdef.field,
		pattern:  textmatch.Compile(word, sw.Quoted),
	}
	return one(t)
}

func (t *TextTerm) column() string {
	return textColumns[t.field]
}

func (t *TextTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	col := t.column()
	if t.field == "co" {
		q.SetOption(querysql.OptCollaborators)
	} else {
		q.AddColumn(col, querysql.Raw("Paper."+col))
	}
	if t.pattern.Trivial {
		return querysql.Raw("Paper." + col + "!=''")
	}
	return querysql.True
}

func (t *TextTerm) text(row *ir.PaperRow) string {
	switch t.field {
	case "ti":
		return row.Title
	case "ab":
		return row.Abstract
	default:
		if !t.srch.viewer.CanViewAuthors(row) {
			return ""
		}
		return row.Collaborators
	}
}

func (t *TextTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	return t.pattern.Match(t.text(row))
}

func (t *TextTerm) precise() bool {
	return t.pattern.Trivial && t.field != "co"
}

func (t *TextTerm) prepareVisit(p *prepareParam) {
	if p.wantFieldHighlighter() {
		p.srch.addFieldHighlighter(t.field, t.pattern.Highlighter())
	}
}

func (t *TextTerm) debug() ir.IRObject {
	obj := t.debugBase()
	obj["match"] = ir.IRString(t.pattern.Regexp())
	return obj
}
