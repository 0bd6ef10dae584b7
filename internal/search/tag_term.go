package search

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
	"github.com/roach88/papersearch/internal/tags"
)

var (
	tagRangeRe = regexp.MustCompile(`^([^#=!<>\x{80}-\x{10FFFF}]+)(?:#|=)(-?(?:\.\d+|\d+\.?\d*))(?:\.\.\.?|-|–|—)(-?(?:\.\d+|\d+\.?\d*))$`)
	tagValueRe = regexp.MustCompile(`^([^#=!<>\x{80}-\x{10FFFF}]+)(#?)([=!<>]=?|≠|≤|≥|)(-?(?:\.\d+|\d+\.?\d*))$`)
)

// TagTerm matches papers carrying a tag, optionally with a value
// condition. The SQL form checks tag names only.
type TagTerm struct {
	termBase
	srch *PaperSearch
	tsm  *tags.Matcher
	// tag1 is the single tag of a "#tag" search; tag1nz records whether
	// any matching paper had a nonzero value for it.
	tag1   string
	tag1nz bool
}

func parseTag(word string, sw *SearchWord, srch *PaperSearch) []Term {
	def := sw.Kwdef
	negated := def.Negated
	revsort := def.Sorting && def.RevSort
	if strings.HasPrefix(word, "-") {
		if def.Sorting {
			revsort = !revsort
			word = word[1:]
		} else if !negated {
			negated = true
			word = word[1:]
		}
	}
	word = strings.TrimPrefix(word, "#")

	tsm := tags.NewMatcher(srch.userID(), srch.tagResolver())
	tagword := word
	if m := tagRangeRe.FindStringSubmatch(word); m != nil {
		tagword = m[1]
		tsm.AddValueMatcher(tags.MustCountMatcher(">=" + m[2]))
		tsm.AddValueMatcher(tags.MustCountMatcher("<=" + m[3]))
	} else if m := tagValueRe.FindStringSubmatch(word); m != nil && m[1] != "any" && m[1] != "none" && (m[2] != "" || m[3] != "") {
		tagword = m[1]
		op := m[3]
		if op == "" {
			op = "="
		}
		tsm.AddValueMatcher(tags.MustCountMatcher(op + m[4]))
	}

	// "any" and "none" are spelled as wildcards.
	switch strings.ToLower(tagword) {
	case "any":
		tagword = "*"
	case "none":
		tagword = "*"
		negated = !negated
	}
	tsm.AddCheckTag(tagword, !def.Sorting)

	var allterms []Term
	if srch.expandAutomatic > 0 {
		var excluded []string
		for _, at := range srch.conf.AutomaticTags() {
			if !tsm.TestIgnoreValue(at.Tag) || at.AutomaticFormula() != "0" {
				continue
			}
			excluded = append(excluded, at.Tag)
			if tsm.TestValue(0) {
				if t := srch.automaticTerm(at); t != nil {
					allterms = append(allterms, t)
				}
			}
		}
		tsm.SetExclusion(excluded)
	}

	if !tsm.IsEmptyAfterExclusion() {
		t := &TagTerm{termBase: termBase{typ: "tag"}, srch: srch, tsm: tsm}
		if pats := tsm.TagPatterns(); !negated && len(pats) > 0 {
			t.floats.Set("tags", ir.StringArray(pats...))
			if def.Sorting {
				prefix := "sort:#"
				if revsort {
					prefix = "sort:-#"
				}
				t.floats.Set("view", ir.StringArray(prefix+pats[0]))
			}
		}
		if !negated && def.IsHash {
			t.tag1 = tsm.SingleTag()
		}
		allterms = append(allterms, t)
	}

	for _, e := range tsm.Errors() {
		srch.lwarning(sw, e)
	}
	if len(allterms) == 0 {
		// Every named tag was automatic and none can have value 0.
		return one(negateIf(NewFalse(), negated))
	}
	return one(negateIf(Combine("or", allterms...), negated))
}

// automaticTerm compiles the search defining an automatic tag, as seen by
// the site contact. Recursive definitions yield nil.
func (s *PaperSearch) automaticTerm(at ir.TagAnnotation) Term {
	key := strings.ToLower(at.Tag)
	for _, k := range s.autoStack {
		if k == key {
			s.warning("Circular reference in automatic tag #" + at.Tag + ".")
			return nil
		}
	}
	sub := s.subSearch(ir.SiteContact(), Params{Q: at.Automatic, T: "all"})
	sub.autoStack = append(append([]string(nil), s.autoStack...), key)
	return sub.MainTerm()
}

func (t *TagTerm) SQLExpr(q *querysql.QueryInfo) querysql.Expr {
	q.SetOption(querysql.OptTags)
	if len(t.tsm.TagPatterns()) == 0 {
		return querysql.True
	}
	cond := t.tsm.SQLExpr("PaperTag.tag")
	if cond.IsFalse() {
		return querysql.False
	}
	sql := "exists (select * from PaperTag where PaperTag.paperId=Paper.paperId"
	if !cond.IsTrue() {
		sql += " and " + cond.SQL
	}
	return querysql.Raw(sql+")", cond.Args...)
}

// visibleTags returns the tags of row the searching user may see.
func (t *TagTerm) visibleTags(row *ir.PaperRow) []ir.TagEntry {
	all := row.Tags()
	out := all[:0:0]
	for _, e := range all {
		if t.srch.viewer.CanViewTag(row, e.Tag) {
			out = append(out, e)
		}
	}
	return out
}

func (t *TagTerm) Test(row *ir.PaperRow, _ *ir.ReviewInfo) bool {
	ok := t.tsm.Test(t.visibleTags(row))
	if ok && t.tag1 != "" && !t.tag1nz {
		v, _ := row.TagValue(t.tag1)
		t.tag1nz = v != 0
	}
	return ok
}

// DefaultSortTag returns the tag that should order the results when this
// term is the whole query: the single tag of a "#tag" search, if that tag
// is an ordered tag or some match carried a nonzero value. Vote-like tags
// sort in reverse.
func (t *TagTerm) DefaultSortTag() (tag string, reverse bool, ok bool) {
	if t.tag1 == "" {
		return "", false, false
	}
	base := t.tag1
	if i := strings.IndexByte(base, '~'); i >= 0 && !strings.HasPrefix(base, "~~") {
		base = base[i+1:]
	}
	anno := t.srch.conf.TagAnnotation(base)
	if (anno != nil && anno.Order) || t.tag1nz {
		return t.tag1, anno != nil && anno.Votish, true
	}
	return "", false, false
}

func (t *TagTerm) debug() ir.IRObject {
	obj := t.debugBase()
	obj["tag_regex"] = ir.IRString(t.tsm.Regex())
	return obj
}
