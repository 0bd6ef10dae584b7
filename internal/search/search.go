// Package search compiles paper search queries.
//
// A query such as
//
//	#green OR (ti:graph -au:smith) THEN re:>2
//
// is parsed into a tree of Terms. Each term knows two things: a liberal SQL
// predicate, used to fetch candidate rows, and an exact in-memory test,
// used to narrow the candidates. A PaperSearch ties the tree to an acting
// user, a limit such as "submitted papers" and a row source, and evaluates
// it.
//
// CRITICAL: Parsing never fails. Problems become warnings on the search and
// the offending clause matches nothing.
package search

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/papersearch/internal/access"
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/metrics"
)

// Params are the request parameters of a search.
type Params struct {
	// Q is the query text.
	Q string
	// T names the limit; empty selects a default for the user.
	T string
	// QT names the fields a bare word searches: "ti", "ab", "au", "ac",
	// "co", "re" or "tag". Anything else searches title, abstract and,
	// where visible, authors.
	QT string
	// Reviewer is the email of the PC member whose reviews the "r"
	// limits consult in place of the acting user's.
	Reviewer string
	// QA, QO and QX build the query when Q is empty: all of QA, any of
	// QO and none of QX.
	QA, QO, QX string
	// Sort is the default sort, as in "title" or "-#order".
	Sort string
}

// PaperSearch is one search by one user. It compiles on first use and
// evaluates once; results are cached.
//
// A PaperSearch is not safe for concurrent use.
type PaperSearch struct {
	user     *ir.Contact
	conf     *ir.Conf
	viewer   Viewer
	contacts *ContactList
	rows     RowSource
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tokens   TokenGenerator
	token    string
	// parent is set on sub-searches; their messages go to the root.
	parent *PaperSearch

	q             string
	qt            string
	defaultSort   string
	reviewer      *ir.Contact
	limitTerm     *LimitTerm
	limitExplicit bool

	expandAutomatic int
	allowDeleted    bool

	// Compilation state.
	qe             Term
	thenTerm       *ThenTerm
	messages       []MessageItem
	ssStack        []savedSearch
	ssQueries      map[string]string
	ssCircular     map[string]bool
	autoStack      []string
	contactCache   map[ContactQuery][]int
	highlighters   map[string][]string
	highlightQuery string

	// Evaluation state.
	evaluated    bool
	matches      []int
	matchRows    map[int]*ir.PaperRow
	thenMap      map[int]int
	highlightMap map[int][]string
}

// Option configures a PaperSearch.
type Option func(*PaperSearch)

// WithConf supplies the conference settings: decisions, named searches,
// tag annotations, rounds and review fields.
func WithConf(conf *ir.Conf) Option {
	return func(s *PaperSearch) {
		s.conf = conf
	}
}

// WithContacts supplies the user directory used by contact searches.
func WithContacts(contacts *ContactList) Option {
	return func(s *PaperSearch) {
		s.contacts = contacts
	}
}

// WithViewer replaces the default authorization policy.
func WithViewer(v Viewer) Option {
	return func(s *PaperSearch) {
		s.viewer = v
	}
}

// WithRowSource supplies the database the search runs against.
func WithRowSource(rows RowSource) Option {
	return func(s *PaperSearch) {
		s.rows = rows
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *PaperSearch) {
		s.logger = logger
	}
}

// WithMetrics enables instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PaperSearch) {
		s.metrics = m
	}
}

// WithTokenGenerator sets the generator of the search's log token.
// Default: UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(s *PaperSearch) {
		s.tokens = g
	}
}

// withToken reuses an existing token and tagged logger, for sub-searches.
func withToken(token string) Option {
	return func(s *PaperSearch) {
		s.token = token
	}
}

// NewPaperSearch prepares a search by user. A nil user is an anonymous
// visitor.
func NewPaperSearch(user *ir.Contact, p Params, opts ...Option) *PaperSearch {
	if user == nil {
		user = &ir.Contact{}
	}
	s := &PaperSearch{user: user, logger: slog.Default(), tokens: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.viewer == nil {
		s.viewer = access.NewPolicy(user, s.conf)
	}
	if s.token == "" {
		s.token = s.tokens.Generate()
		s.logger = s.logger.With("search", s.token)
	}

	s.qt = CanonicalQT(p.QT)
	s.q = strings.TrimSpace(p.Q)
	if s.q == "" && (p.QA != "" || p.QO != "" || p.QX != "") {
		s.q = CanonicalQuery(p.QA, p.QO, p.QX, p.QT, "")
	}
	s.defaultSort = p.Sort
	s.reviewer = s.resolveReviewer(p.Reviewer)

	limit := CanonicalLimit(p.T)
	if limit == "" {
		limit = DefaultLimit(s.viewer, s.conf)
	}
	s.limitTerm = newLimitTerm(s, limit)
	return s
}

// CanonicalQT returns qt if it names a query type, else "n".
func CanonicalQT(qt string) string {
	switch qt {
	case "ti", "ab", "au", "ac", "co", "re", "tag":
		return qt
	}
	return "n"
}

// resolveReviewer finds the reviewer override. Users may name themselves;
// PC members may name other PC members.
func (s *PaperSearch) resolveReviewer(email string) *ir.Contact {
	if email == "" {
		return nil
	}
	var r *ir.Contact
	if strings.EqualFold(email, s.user.Email) {
		r = s.user
	} else if s.user.IsPC() {
		if c := s.contacts.ByEmail(email); c != nil && c.IsPC() {
			r = c
		}
	}
	if r == nil || r.ContactID <= 0 || r.ContactID == s.user.ContactID {
		return nil
	}
	return r
}

// subSearch starts a search that shares this search's settings, contact
// directory and log token. Its messages are reported here.
func (s *PaperSearch) subSearch(user *ir.Contact, p Params) *PaperSearch {
	sub := NewPaperSearch(user, p,
		WithConf(s.conf),
		WithContacts(s.contacts),
		WithRowSource(s.rows),
		WithLogger(s.logger),
		withToken(s.token))
	sub.parent = s
	sub.expandAutomatic = s.expandAutomatic
	return sub
}

// User returns the acting user.
func (s *PaperSearch) User() *ir.Contact { return s.user }

// Conf returns the conference settings, possibly nil.
func (s *PaperSearch) Conf() *ir.Conf { return s.conf }

// Q returns the query text.
func (s *PaperSearch) Q() string { return s.q }

// QT returns the canonical query type.
func (s *PaperSearch) QT() string { return s.qt }

// Token returns the log token.
func (s *PaperSearch) Token() string { return s.token }

// Reviewer returns the user whose reviews the "r" limits consult.
func (s *PaperSearch) Reviewer() *ir.Contact {
	if s.reviewer != nil {
		return s.reviewer
	}
	return s.user
}

func (s *PaperSearch) userID() int {
	return s.user.ContactID
}

// LimitTerm returns the limit in force.
func (s *PaperSearch) LimitTerm() *LimitTerm { return s.limitTerm }

// Limit returns the short name of the limit in force. A top-level "in:"
// in the query replaces the requested limit once the search compiles.
func (s *PaperSearch) Limit() string {
	s.MainTerm()
	return s.limitTerm.limit
}

// LimitExplicit reports whether the query chose its own limit.
func (s *PaperSearch) LimitExplicit() bool {
	s.MainTerm()
	return s.limitExplicit
}

// ShowSubmittedStatus reports whether result lists should mark which
// papers are submitted.
func (s *PaperSearch) ShowSubmittedStatus() bool {
	switch s.Limit() {
	case "a", "active", "all":
		return s.q != "re:me"
	}
	return false
}

func (s *PaperSearch) applyLimit(t *LimitTerm) {
	if s.limitExplicit {
		return
	}
	s.limitTerm.setLimit(t.named)
	s.limitExplicit = true
}

// SetExpandAutomatic turns live evaluation of automatic tags on or off.
// Unlike other parameters it may change after compilation; the search then
// compiles again.
func (s *PaperSearch) SetExpandAutomatic(on bool) {
	n := 0
	if on {
		n = 1
	}
	if s.qe != nil && (s.expandAutomatic > 0) != on {
		s.clearCompilation()
	}
	s.expandAutomatic = n
}

// SetAllowDeleted makes papers named by number match even if they no
// longer exist or are hidden, as when listing the papers of a log.
func (s *PaperSearch) SetAllowDeleted(allow bool) error {
	if s.qe != nil {
		return ErrSearchCompiled
	}
	s.allowDeleted = allow
	return nil
}

func (s *PaperSearch) clearCompilation() {
	s.qe = nil
	s.thenTerm = nil
	s.messages = nil
	s.contactCache = nil
	s.ssQueries = nil
	s.ssCircular = nil
	s.highlighters = nil
	s.highlightQuery = ""
	s.evaluated = false
	s.matches = nil
	s.matchRows = nil
	s.thenMap = nil
	s.highlightMap = nil
}

// MainTerm returns the compiled query, without the limit.
func (s *PaperSearch) MainTerm() Term {
	if s.qe == nil {
		s.compile()
	}
	return s.qe
}

func (s *PaperSearch) compile() {
	var qe Term
	if s.q == "re:me" {
		lt := newLimitTerm(s, "r")
		lt.fromKeyword = true
		qe = lt
	} else if qe = s.parseExpression(s.q); qe == nil {
		qe = NewTrue()
	}
	s.qe = qe

	param := &prepareParam{srch: s}
	qe.prepareVisit(param)
	s.thenTerm = param.thenTerm

	if s.parent == nil {
		s.metrics.ObserveCompile(s.limitTerm.limit, s.warningCount())
	}
	s.logger.Debug("search compiled",
		"q", s.q,
		"limit", s.limitTerm.limit,
		"type", qe.Type(),
		"warnings", s.warningCount())
}

// FullTerm returns the compiled query combined with the limit.
func (s *PaperSearch) FullTerm() Term {
	qe := s.MainTerm()
	if s.limitTerm.limit == "all" {
		return qe
	}
	return Combine("and", s.limitTerm, qe)
}

// ThenTerm returns the term that partitions results into groups, if any.
func (s *PaperSearch) ThenTerm() *ThenTerm {
	s.MainTerm()
	return s.thenTerm
}

// Messages returns the warnings and notes produced by compilation and
// evaluation.
func (s *PaperSearch) Messages() []MessageItem {
	s.MainTerm()
	return slices.Clone(s.messages)
}

// HasProblem reports whether any warning was recorded.
func (s *PaperSearch) HasProblem() bool {
	return s.warningCount() > 0
}

func (s *PaperSearch) warningCount() int {
	if s.qe == nil && s.parent == nil {
		s.MainTerm()
	}
	n := 0
	for _, m := range s.messages {
		if m.Status == StatusWarning {
			n++
		}
	}
	return n
}

func (s *PaperSearch) addMessage(m MessageItem) {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	root.messages = append(root.messages, m)
}

// warning records a message not tied to a place in the query.
func (s *PaperSearch) warning(msg string) {
	s.addMessage(MessageItem{Status: StatusWarning, Message: msg, Pos1: -1, Pos2: -1})
}

// lwarning records a message about sw. Inside named searches, each
// enclosing expansion adds a note pointing at its own reference, so the
// chain can be followed back to the query.
func (s *PaperSearch) lwarning(sw *SearchWord, msg string) {
	items := []MessageItem{{Status: StatusWarning, Message: msg, Pos1: sw.Pos1, Pos2: sw.Pos2}}
	for i := len(s.ssStack) - 1; i >= 0; i-- {
		frame := s.ssStack[i]
		items[len(items)-1].Context = frame.text
		items = append(items, MessageItem{
			Status:  StatusInform,
			Message: "…while evaluating saved search",
			Pos1:    frame.sw.Pos1,
			Pos2:    frame.sw.Pos2,
		})
	}
	items[len(items)-1].Context = s.q
	for _, m := range items {
		s.addMessage(m)
	}
}
