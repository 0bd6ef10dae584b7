// Package access provides the default authorization policy consulted by
// paper search.
//
// The rules are a compact rendition of a conference's usual visibility
// model:
//   - chairs and the site contact administer every paper
//   - authors see their own papers, PC members see submitted papers, and
//     reviewers see the papers they review
//   - blind submissions hide author lists from non-administrators
//   - conflicted PC members lose sight of tags, decisions and reviews
//   - "N~tag" tags belong to user N and "~~tag" tags to chairs
//
// Policy reads the acting user's conflict and review columns from each row,
// so rows must come from a query planned for the same user.
package access

import (
	"strconv"
	"strings"

	"github.com/roach88/papersearch/internal/ir"
)

// Policy answers visibility questions for one user.
type Policy struct {
	user     *ir.Contact
	conf     *ir.Conf
	author   bool
	reviewer bool
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithAuthor records that the user authored at least one paper.
func WithAuthor(author bool) PolicyOption {
	return func(p *Policy) {
		p.author = author
	}
}

// WithReviewer records that the user holds at least one review.
func WithReviewer(reviewer bool) PolicyOption {
	return func(p *Policy) {
		p.reviewer = reviewer
	}
}

// NewPolicy returns the policy for user. A nil user is an anonymous
// visitor who sees nothing.
func NewPolicy(user *ir.Contact, conf *ir.Conf, opts ...PolicyOption) *Policy {
	if user == nil {
		user = &ir.Contact{}
	}
	p := &Policy{user: user, conf: conf}
	for _, opt := range opts {
		opt(p)
	}
	if user.IsPC() {
		p.reviewer = true
	}
	return p
}

func (p *Policy) Contact() *ir.Contact {
	return p.user
}

func (p *Policy) IsAuthor() bool {
	return p.author
}

func (p *Policy) IsReviewer() bool {
	return p.reviewer
}

// AllowAdminister reports whether the user manages row. Chairs administer
// every paper, conflicted or not, while searching.
func (p *Policy) AllowAdminister(row *ir.PaperRow) bool {
	if p.user.PrivChair() {
		return true
	}
	return p.user.ContactID > 0 && row.ManagerContactID == p.user.ContactID
}

func (p *Policy) hasReview(row *ir.PaperRow) bool {
	return len(row.MyReviewTypes()) > 0
}

func (p *Policy) conflicted(row *ir.PaperRow) bool {
	return row.HasConflictView() && !p.AllowAdminister(row)
}

func (p *Policy) CanViewPaper(row *ir.PaperRow) bool {
	switch {
	case p.AllowAdminister(row), row.IsAuthorView(), p.hasReview(row):
		return true
	case p.user.IsPC():
		return row.TimeSubmitted > 0 || row.IsWithdrawn() || p.pcSeeAll()
	}
	return false
}

func (p *Policy) pcSeeAll() bool {
	return p.conf != nil && p.conf.PCSeeAll
}

func (p *Policy) CanViewSomeIncomplete() bool {
	return p.user.PrivChair() || p.author || (p.user.IsPC() && p.pcSeeAll())
}

func (p *Policy) blindness() ir.Blindness {
	if p.conf == nil || p.conf.Blindness == "" {
		return ir.BlindAlways
	}
	return p.conf.Blindness
}

func (p *Policy) blind(row *ir.PaperRow) bool {
	switch p.blindness() {
	case ir.BlindNever:
		return false
	case ir.BlindOptional:
		return row.Blind
	}
	return true
}

func (p *Policy) CanViewAuthors(row *ir.PaperRow) bool {
	return p.AllowAdminister(row) || row.IsAuthorView() ||
		(p.CanViewPaper(row) && !p.blind(row))
}

func (p *Policy) CanViewSomeAuthors() bool {
	return p.user.PrivChair() || p.author || p.blindness() != ir.BlindAlways
}

func (p *Policy) CanViewConflicts(row *ir.PaperRow) bool {
	return p.AllowAdminister(row) || row.IsAuthorView() ||
		(p.user.IsPC() && p.CanViewAuthors(row))
}

func (p *Policy) CanViewTags() bool {
	return p.user.IsPC()
}

// CanViewTag reports whether the user sees tag on row.
func (p *Policy) CanViewTag(row *ir.PaperRow, tag string) bool {
	if p.user.Root {
		return true
	}
	if !p.user.IsPC() || p.conflicted(row) {
		return false
	}
	if strings.HasPrefix(tag, "~~") {
		return p.user.PrivChair()
	}
	if i := strings.IndexByte(tag, '~'); i > 0 {
		owner, err := strconv.Atoi(tag[:i])
		return err == nil && owner == p.user.ContactID
	}
	return true
}

func (p *Policy) CanViewDecision(row *ir.PaperRow) bool {
	return p.AllowAdminister(row) || (p.user.IsPC() && !p.conflicted(row))
}

func (p *Policy) CanViewSomeDecision() bool {
	return p.user.IsPC()
}

func (p *Policy) CanViewReview(row *ir.PaperRow, r *ir.ReviewInfo) bool {
	if p.AllowAdminister(row) || (p.user.ContactID > 0 && r.ContactID == p.user.ContactID) {
		return true
	}
	return r.Submitted && p.user.IsPC() && !p.conflicted(row)
}

func (p *Policy) CanViewReviewIdentity(row *ir.PaperRow, r *ir.ReviewInfo) bool {
	if p.AllowAdminister(row) || (p.user.ContactID > 0 && r.ContactID == p.user.ContactID) {
		return true
	}
	return p.user.IsPC() && !p.conflicted(row)
}

// CanViewContactField covers "lead", "shepherd" and "manager".
func (p *Policy) CanViewContactField(row *ir.PaperRow, field string) bool {
	if p.AllowAdminister(row) {
		return true
	}
	if field == "manager" {
		return p.user.ContactID > 0 && row.ManagerContactID == p.user.ContactID
	}
	return p.user.IsPC() && !p.conflicted(row)
}
