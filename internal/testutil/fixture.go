package testutil

import (
	"fmt"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/store"
)

// Standard contacts of Conference fixtures.
var (
	Chair  = ir.Contact{ContactID: 1, Email: "chair@example.org", FirstName: "Carla", LastName: "Chair", Roles: ir.RoleChair}
	PCPat  = ir.Contact{ContactID: 2, Email: "pat@example.org", FirstName: "Pat", LastName: "Member", Roles: ir.RolePC, ContactTags: "heavy"}
	PCDana = ir.Contact{ContactID: 3, Email: "dana@example.org", FirstName: "Dana", LastName: "Lee", Affiliation: "Example University", Roles: ir.RolePC}
	Author = ir.Contact{ContactID: 4, Email: "author@example.org", FirstName: "Ann", LastName: "Author"}
)

// Contacts returns the standard contacts.
func Contacts() []ir.Contact {
	return []ir.Contact{Chair, PCPat, PCDana, Author}
}

// PaperBuilder builds a fixture paper. Papers start submitted at time 100.
type PaperBuilder struct {
	p store.FixturePaper
}

// Paper starts a paper with the given number, titled "Paper N".
func Paper(id int) *PaperBuilder {
	return &PaperBuilder{p: store.FixturePaper{ID: id, Title: fmt.Sprintf("Paper %d", id), Submitted: 100}}
}

func (b *PaperBuilder) Title(title string) *PaperBuilder {
	b.p.Title = title
	return b
}

func (b *PaperBuilder) Abstract(abstract string) *PaperBuilder {
	b.p.Abstract = abstract
	return b
}

// AuthoredBy lists c as an author and gives c an author conflict.
func (b *PaperBuilder) AuthoredBy(c ir.Contact) *PaperBuilder {
	b.p.Authors = append(b.p.Authors, ir.Author{FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, Affiliation: c.Affiliation})
	return b.Conflict(c.ContactID, ir.ConflictContact)
}

// Author lists a named author without an account.
func (b *PaperBuilder) Author(first, last, affiliation string) *PaperBuilder {
	b.p.Authors = append(b.p.Authors, ir.Author{FirstName: first, LastName: last, Affiliation: affiliation})
	return b
}

func (b *PaperBuilder) Unsubmitted() *PaperBuilder {
	b.p.Submitted = 0
	return b
}

func (b *PaperBuilder) Withdrawn() *PaperBuilder {
	b.p.Withdrawn = 200
	return b
}

func (b *PaperBuilder) Outcome(outcome int) *PaperBuilder {
	b.p.Outcome = outcome
	return b
}

func (b *PaperBuilder) Lead(cid int) *PaperBuilder {
	b.p.Lead = cid
	return b
}

func (b *PaperBuilder) Blind(blind bool) *PaperBuilder {
	b.p.Blind = &blind
	return b
}

// Tags adds tags written "tag" or "tag#value".
func (b *PaperBuilder) Tags(tags ...string) *PaperBuilder {
	b.p.Tags = append(b.p.Tags, tags...)
	return b
}

func (b *PaperBuilder) Conflict(cid, conflictType int) *PaperBuilder {
	if b.p.Conflicts == nil {
		b.p.Conflicts = make(map[int]int)
	}
	b.p.Conflicts[cid] = conflictType
	return b
}

// Review adds a review by cid. Review ids are numbered by paper: review
// k of paper p has id 100p+k.
func (b *PaperBuilder) Review(cid, reviewType int, submitted bool, scores map[string]int) *PaperBuilder {
	b.p.Reviews = append(b.p.Reviews, store.FixtureReview{
		ID:        100*b.p.ID + len(b.p.Reviews) + 1,
		Contact:   cid,
		Type:      reviewType,
		Submitted: submitted,
		Scores:    scores,
	})
	return b
}

// Build returns the paper.
func (b *PaperBuilder) Build() store.FixturePaper {
	return b.p
}

// Conference returns a fixture with the standard contacts and papers.
func Conference(papers ...*PaperBuilder) *store.Fixture {
	f := &store.Fixture{Contacts: Contacts()}
	for _, p := range papers {
		f.Papers = append(f.Papers, p.Build())
	}
	return f
}
