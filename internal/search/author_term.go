package search

import (
	"strings"

	"github.com/roach88/papersearch/internal/author"
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
	"github.com/roach88/papersearch/internal/tags"
	"github.com/roach88/papersearch/internal/textmatch"
)

// AuthorTerm matches paper authors by name, affiliation or count. "me"
// matches the acting user's own papers.
type AuthorTerm struct {
	termBase
	srch    *PaperSearch
	me      bool
	count   *tags.CountMatcher
	matcher *author.Matcher
	aff     *author.Matcher
	pattern *textmatch.Pattern
}

func parseAuthor(word string, sw *SearchWord, srch *PaperSearch) []Term {
	t := &AuthorTerm{termBase: termBase{typ: "au"}, srch: srch}
	lword := strings.ToLower(word)
	switch {
	case !sw.Quoted && lword == "me":
		t.me = true
	case !sw.Quoted && lword == "any":
		cm := tags.MustCountMatcher(">0")
		t.count = &cm
	case !sw.Quoted && lword == "none":
		cm := tags.MustCountMatcher("=0")
		t.count = &cm
	default:
		if cm, ok := tags.ParseCountMatcher(word); ok && !sw.Quoted && startsWithComparator(word) {
			t.count = &cm
			break
		}
		t.matcher = author.NewMatcher(word)
		t.aff = author.NewAffiliationMatcher(word)
		t.pattern = textmatch.Compile(word, sw.Quoted)
	}
	return one(t)
}

func (t *AuthorTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	if t.me {
		u := t.srch.user
		if u == nil || u.ContactID <= 0 {
			return querysql.False
		}
		ct := q.ConflictTable(u.ContactID)
		return querysql.Raw(ct+".conflictType>=?", ir.ConflictAuthor)
	}
	q.SetOption(querysql.OptAuthorInformation)
	if t.count != nil && !t.count.TestInt(0) {
		return querysql.Raw("Paper.authorInformation!=''")
	}
	return querysql.True
}

func (t *AuthorTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	if t.me {
		return row.IsAuthorView()
	}
	if !t.srch.viewer.CanViewAuthors(row) {
		return t.count != nil && t.count.TestInt(0)
	}
	authors := row.Authors()
	if t.count != nil {
		return t.count.TestInt(len(authors))
	}
	for _, a := range authors {
		if t.matcher.Test(a) != author.NoMatch || t.aff.Test(a) != author.NoMatch {
			return true
		}
		if t.pattern.Match(strings.Join([]string{a.Name(), a.Email, a.Affiliation}, " ")) {
			return true
		}
	}
	return false
}

func (t *AuthorTerm) prepareVisit(p *prepareParam) {
	if t.matcher == nil || !p.wantFieldHighlighter() {
		return
	}
	if h := t.matcher.Highlighter(); h != "" {
		p.srch.addFieldHighlighter("au", h)
	} else if h := t.pattern.Highlighter(); h != "" {
		p.srch.addFieldHighlighter("au", h)
	}
}

func (t *AuthorTerm) debug() ir.IRObject {
	obj := t.debugBase()
	switch {
	case t.me:
		obj["match"] = ir.IRString("me")
	case t.count != nil:
		obj["count"] = ir.IRString(t.count.String())
	default:
		obj["match"] = ir.IRString(t.matcher.Highlighter())
	}
	return obj
}
