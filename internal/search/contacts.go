package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grafana/regexp"

	"github.com/roach88/papersearch/internal/author"
	"github.com/roach88/papersearch/internal/ir"
)

// ContactList is the directory of users that contact searches run over,
// such as "re:fred" or "lead:pc".
type ContactList struct {
	all  []*ir.Contact
	byID map[int]*ir.Contact
}

// NewContactList indexes contacts. Contacts without an id are ignored.
func NewContactList(contacts []*ir.Contact) *ContactList {
	l := &ContactList{byID: make(map[int]*ir.Contact)}
	for _, c := range contacts {
		if c == nil || c.ContactID <= 0 {
			continue
		}
		l.all = append(l.all, c)
		l.byID[c.ContactID] = c
	}
	sort.Slice(l.all, func(i, j int) bool { return l.all[i].ContactID < l.all[j].ContactID })
	return l
}

// ByID returns the contact with id cid, or nil.
func (l *ContactList) ByID(cid int) *ir.Contact {
	if l == nil {
		return nil
	}
	return l.byID[cid]
}

// ByEmail returns the contact with email, compared case-insensitively.
func (l *ContactList) ByEmail(email string) *ir.Contact {
	if l == nil {
		return nil
	}
	for _, c := range l.all {
		if strings.EqualFold(c.Email, email) {
			return c
		}
	}
	return nil
}

// PC returns the PC members in id order.
func (l *ContactList) PC() []*ir.Contact {
	if l == nil {
		return nil
	}
	var out []*ir.Contact
	for _, c := range l.all {
		if c.IsPC() {
			out = append(out, c)
		}
	}
	return out
}

// ContactQuery is one contact search.
type ContactQuery struct {
	Word   string
	Quoted bool
	PCOnly bool
	// AllowTag lets an unquoted word name a PC tag, as in "re:heavy".
	AllowTag bool
}

// Match returns the ids of the contacts word names, in id order, and a
// warning when nobody matches. Unquoted "me" names the acting user and
// "pc" every PC member.
func (l *ContactList) Match(q ContactQuery, me *ir.Contact) ([]int, string) {
	if l == nil {
		l = &ContactList{}
	}
	word := q.Word
	lword := strings.ToLower(word)
	var ids []int
	switch {
	case !q.Quoted && lword == "me":
		if me != nil && me.ContactID > 0 {
			ids = []int{me.ContactID}
		}
		return ids, ""
	case !q.Quoted && lword == "pc":
		for _, c := range l.PC() {
			ids = append(ids, c.ContactID)
		}
		return ids, ""
	}

	candidates := l.all
	if q.PCOnly {
		candidates = l.PC()
	}
	if !q.Quoted && q.AllowTag {
		tag := strings.TrimPrefix(word, "#")
		for _, c := range l.PC() {
			if c.HasTag(tag) {
				ids = append(ids, c.ContactID)
			}
		}
		if len(ids) > 0 || strings.HasPrefix(word, "#") {
			if len(ids) == 0 {
				return nil, fmt.Sprintf("No PC members have tag “%s”.", tag)
			}
			return ids, ""
		}
	}

	switch {
	case strings.Contains(word, "*"):
		re := wildcardRegexp(word)
		for _, c := range candidates {
			if re.MatchString(c.Email) || re.MatchString(c.Name()) {
				ids = append(ids, c.ContactID)
			}
		}
	case strings.Contains(word, "@"):
		for _, c := range candidates {
			if strings.EqualFold(c.Email, word) {
				ids = append(ids, c.ContactID)
			}
		}
		if len(ids) == 0 {
			for _, c := range candidates {
				if strings.HasPrefix(strings.ToLower(c.Email), lword) {
					ids = append(ids, c.ContactID)
				}
			}
		}
	default:
		m := author.NewMatcher(word)
		for _, c := range candidates {
			a := ir.Author{FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, Affiliation: c.Affiliation}
			if m.Test(a) == author.MatchName || strings.HasPrefix(strings.ToLower(c.Email), lword+"@") {
				ids = append(ids, c.ContactID)
			}
		}
	}

	if len(ids) == 0 {
		if q.PCOnly {
			return nil, fmt.Sprintf("No PC members match “%s”.", word)
		}
		return nil, fmt.Sprintf("No users match “%s”.", word)
	}
	return ids, ""
}

func wildcardRegexp(word string) *regexp.Regexp {
	body := strings.ReplaceAll(regexp.QuoteMeta(word), `\*`, `.*`)
	return regexp.MustCompile(`(?i)^` + body + `$`)
}

// matchingUIDs runs a contact search, memoized for the life of the search.
// Warnings are reported once per distinct search.
func (s *PaperSearch) matchingUIDs(word string, quoted, pcOnly bool) []int {
	q := ContactQuery{Word: word, Quoted: quoted, PCOnly: pcOnly, AllowTag: !quoted && s.user.IsPC()}
	if ids, ok := s.contactCache[q]; ok {
		return ids
	}
	ids, warn := s.contacts.Match(q, s.user)
	if warn != "" {
		s.warning(warn)
	}
	if s.contactCache == nil {
		s.contactCache = make(map[ContactQuery][]int)
	}
	s.contactCache[q] = ids
	return ids
}

// tagResolver resolves twiddle prefixes to PC members.
type tagResolver struct {
	srch *PaperSearch
}

func (r tagResolver) MatchPC(word string) []int {
	return r.srch.matchingUIDs(word, false, true)
}

func (s *PaperSearch) tagResolver() tagResolver {
	return tagResolver{srch: s}
}
