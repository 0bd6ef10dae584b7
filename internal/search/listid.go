package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/tags"
)

var listIDRe = regexp.MustCompile(`^p/([^/]+)/([^/]*)(?:|/([^/]*))$`)

// ListArgs are the search parameters recovered from a list id.
type ListArgs struct {
	Q         string
	T         string
	QT        string
	Sort      string
	ForceShow string
}

// ListID names the result list, as in "p/s/ti%3Agraph/sort=title". sort
// overrides the search's default sort when not empty.
func (s *PaperSearch) ListID(sort string) string {
	id := "p/" + s.limitTerm.named + "/" + url.QueryEscape(s.q)
	var rest []string
	if s.qt != "n" {
		rest = append(rest, "qt="+s.qt)
	}
	if s.reviewer != nil {
		rest = append(rest, "reviewer="+url.QueryEscape(s.reviewer.Email))
	}
	if sort == "" {
		sort = s.defaultSort
	}
	if sort != "" {
		rest = append(rest, "sort="+url.QueryEscape(sort))
	}
	if len(rest) > 0 {
		id += "/" + strings.Join(rest, "&")
	}
	return id
}

// ParseListID recovers the parameters of a list id. ok is false for ids
// that do not name a search list. Unknown arguments are ignored.
func ParseListID(listID string) (ListArgs, bool) {
	m := listIDRe.FindStringSubmatch(listID)
	if m == nil {
		return ListArgs{}, false
	}
	args := ListArgs{Q: queryUnescape(m[2]), T: m[1]}
	if m[3] == "" {
		return args, true
	}
	for _, arg := range strings.Split(m[3], "&") {
		switch {
		case strings.HasPrefix(arg, "sort="):
			args.Sort = queryUnescape(arg[5:])
		case strings.HasPrefix(arg, "qt="):
			args.QT = queryUnescape(arg[3:])
		case strings.HasPrefix(arg, "forceShow="):
			args.ForceShow = queryUnescape(arg[10:])
		}
	}
	return args, true
}

func queryUnescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// EncodedQueryParams returns the URL parameters that reproduce the search.
func (s *PaperSearch) EncodedQueryParams() string {
	x := "q=" + url.QueryEscape(s.q) + "&t=" + s.limitTerm.named
	if s.qt != "n" {
		x += "&qt=" + s.qt
	}
	if s.reviewer != nil {
		x += "&reviewer=" + url.QueryEscape(s.reviewer.Email)
	}
	return x
}

// DefaultLimitedQuery returns the query with its limit written in, for PC
// members searching outside their usual collection; otherwise the query.
func (s *PaperSearch) DefaultLimitedQuery() string {
	if !s.user.IsPC() || s.LimitExplicit() {
		return s.q
	}
	usual := "s"
	if s.viewer.CanViewSomeIncomplete() {
		usual = "active"
	}
	if s.Limit() == usual {
		return s.q
	}
	return CanonicalQuery(s.q, "", "", s.qt, s.Limit())
}

// AlternateQuery suggests "#q" when a bare query looks like a tag that
// exists. It returns "" when there is no suggestion.
func (s *PaperSearch) AlternateQuery(ctx context.Context) (string, error) {
	q := s.q
	if q == "" || q[0] == '#' || !tags.CheckTag(q, false) || !s.viewer.CanViewTags() {
		return "", nil
	}
	switch s.Limit() {
	case "s", "all", "r":
	default:
		return "", nil
	}
	if q[0] == '~' {
		return "#" + q, nil
	}
	if s.rows == nil {
		return "", nil
	}
	exists, err := s.rows.TagExists(ctx, q)
	if err != nil {
		return "", rowSourceError(q, err)
	}
	if exists {
		return "#" + q, nil
	}
	return "", nil
}

// Description summarizes the search for a list heading, as in
// "graph in Submitted". listName, when set, replaces the limit
// description.
func (s *PaperSearch) Description(listName string) string {
	limit := s.Limit()
	lx := listName
	if lx == "" {
		l := limit
		if s.q == "re:me" && (l == "r" || l == "s" || l == "active") {
			l = "r"
		}
		lx = LimitDescription(l)
	}
	qe := s.MainTerm()
	_, isAuthor := qe.(*AuthorTerm)
	_, isTag := qe.(*TagTerm)
	switch {
	case s.q == "" || s.q == "re:me" && (limit == "s" || limit == "active"):
		return lx
	case strings.HasPrefix(s.q, "au:") && len(s.q) <= 36 && isAuthor:
		return lx + " by " + strings.TrimLeft(s.q[3:], " \t\n\r\v\f")
	case len(s.q) <= 24 || isTag:
		return s.q + " in " + lx
	}
	return lx + " search"
}
