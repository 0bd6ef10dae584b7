package search

import (
	"strings"
	"sync"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/splitter"
)

// KeywordParser turns one keyword argument into terms. Several terms are
// OR'ed together; none means False, and the parser is expected to have
// reported why.
type KeywordParser interface {
	Parse(word string, sw *SearchWord, srch *PaperSearch) []Term
}

// KeywordFunc adapts a function to KeywordParser.
type KeywordFunc func(word string, sw *SearchWord, srch *PaperSearch) []Term

// Parse calls f.
func (f KeywordFunc) Parse(word string, sw *SearchWord, srch *PaperSearch) []Term {
	return f(word, sw, srch)
}

// one wraps a single term result.
func one(t Term) []Term {
	if t == nil {
		return nil
	}
	return []Term{t}
}

// KeywordDef describes a search keyword.
type KeywordDef struct {
	Name   string
	Parser KeywordParser
	// AllowParens lets the argument contain balanced parentheses, as in
	// "show:(title abstract)".
	AllowParens bool
	// Sorting marks keywords that also sort by their tag.
	Sorting bool
	// RevSort reverses the sort.
	RevSort bool
	// Negated inverts the term.
	Negated bool
	// IsHash marks the "#tag" shorthand.
	IsHash bool
	// Has is the argument "has:NAME" stands for, if any.
	Has string

	field  string
	review reviewKind
	score  *ir.ReviewField
}

// SearchWord is one keyword argument with its source position.
type SearchWord struct {
	// QWord is the argument as written, quotes included.
	QWord string
	// Word is the argument without surrounding quotes.
	Word   string
	Quoted bool
	// KwExplicit is set when the keyword was written rather than inferred
	// from the query type.
	KwExplicit bool
	// Pos1w is where the keyword starts; Pos1 and Pos2 bracket the
	// argument.
	Pos1w, Pos1, Pos2 int
	Kwdef             *KeywordDef
}

func newSearchWord(w *splitter.Word) *SearchWord {
	return &SearchWord{
		QWord:      w.QWord,
		Word:       w.Word,
		Quoted:     w.Quoted,
		KwExplicit: w.KwExplicit,
		Pos1w:      w.Pos1w,
		Pos1:       w.Pos1,
		Pos2:       w.Pos2,
	}
}

func makeKwarg(kwarg string, pos1w, pos1, pos2 int) *SearchWord {
	return newSearchWord(splitter.MakeKwarg(kwarg, pos1w, pos1, pos2))
}

var (
	keywordsOnce sync.Once
	keywords     map[string]*KeywordDef
)

func loadKeywords() {
	keywords = make(map[string]*KeywordDef)
	add := func(def *KeywordDef, names ...string) {
		if def.Name == "" {
			def.Name = names[0]
		}
		for _, n := range names {
			keywords[n] = def
		}
	}
	add(&KeywordDef{Parser: KeywordFunc(parseTextField), field: "ti", Has: "*"}, "ti", "title")
	add(&KeywordDef{Parser: KeywordFunc(parseTextField), field: "ab", Has: "*"}, "ab", "abstract")
	add(&KeywordDef{Parser: KeywordFunc(parseTextField), field: "co", Has: "*"}, "co", "collab", "collaborators")
	add(&KeywordDef{Parser: KeywordFunc(parseAuthor), Has: "any"}, "au", "author", "authors")
	add(&KeywordDef{Parser: KeywordFunc(parseTag)}, "tag")
	add(&KeywordDef{Parser: KeywordFunc(parseTag), IsHash: true}, "hashtag")
	add(&KeywordDef{Parser: KeywordFunc(parseTag), Negated: true}, "notag")
	add(&KeywordDef{Parser: KeywordFunc(parseTag), Sorting: true}, "order")
	add(&KeywordDef{Parser: KeywordFunc(parseTag), Sorting: true, RevSort: true}, "rorder")
	add(&KeywordDef{Parser: KeywordFunc(parsePaperIDKeyword)}, "pn", "paper")
	add(&KeywordDef{Parser: KeywordFunc(parseStatus)}, "is", "status")
	add(&KeywordDef{Parser: KeywordFunc(parseDecision), Has: "any"}, "dec", "decision")
	add(&KeywordDef{Parser: KeywordFunc(parseReview), review: reviewAny, Has: "any"}, "re", "rev", "review", "reviewer")
	add(&KeywordDef{Parser: KeywordFunc(parseReview), review: reviewComplete, Has: "any"}, "cre", "complete")
	add(&KeywordDef{Parser: KeywordFunc(parseReview), review: reviewIncomplete, Has: "any"}, "ire", "incomplete")
	add(&KeywordDef{Parser: KeywordFunc(parseReview), review: reviewPrimary, Has: "any"}, "pri", "primary")
	add(&KeywordDef{Parser: KeywordFunc(parseReview), review: reviewSecondary, Has: "any"}, "sec", "secondary")
	add(&KeywordDef{Parser: KeywordFunc(parseReview), review: reviewExternal, Has: "any"}, "ext", "external")
	add(&KeywordDef{Parser: KeywordFunc(parseReview), review: reviewMeta, Has: "any"}, "meta")
	add(&KeywordDef{Parser: KeywordFunc(parseRound)}, "round")
	add(&KeywordDef{Parser: KeywordFunc(parseConflict), Has: "any"}, "conf", "conflict")
	add(&KeywordDef{Parser: KeywordFunc(parseContactField), field: "lead", Has: "any"}, "lead")
	add(&KeywordDef{Parser: KeywordFunc(parseContactField), field: "shepherd", Has: "any"}, "shep", "shepherd")
	add(&KeywordDef{Parser: KeywordFunc(parseContactField), field: "manager", Has: "any"}, "admin", "manager")
	add(&KeywordDef{Parser: KeywordFunc(parseHas)}, "has")
	add(&KeywordDef{Parser: KeywordFunc(parseNamedSearch)}, "ss", "search")
	add(&KeywordDef{Parser: KeywordFunc(parseLimit)}, "in", "limit")
	add(&KeywordDef{Parser: KeywordFunc(parseLegend)}, "legend")
	for _, action := range []string{"show", "hide", "edit", "sort", "showsort", "editsort"} {
		add(&KeywordDef{Parser: KeywordFunc(parseView), AllowParens: true}, action)
	}
	add(&KeywordDef{Parser: KeywordFunc(parseSearchControl)}, "searchcontrol")
}

// LookupKeyword returns the keyword named name, or nil. Review score
// fields of conf are keywords too, under their search names.
func LookupKeyword(name string, conf *ir.Conf) *KeywordDef {
	keywordsOnce.Do(loadKeywords)
	if def := keywords[name]; def != nil {
		return def
	}
	if def := keywords[strings.ToLower(name)]; def != nil {
		return def
	}
	if f := conf.FindReviewField(name); f != nil {
		return &KeywordDef{Name: f.Search, Parser: KeywordFunc(parseScore), score: f, Has: "any"}
	}
	return nil
}
