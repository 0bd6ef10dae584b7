package search

import (
	"github.com/roach88/papersearch/internal/ir"
)

// Viewer is the authorization predicate consulted during evaluation. It
// answers for one acting user; rows carry that user's conflict and review
// columns.
//
// The default implementation is access.Policy.
type Viewer interface {
	Contact() *ir.Contact

	// CanViewPaper is applied to every candidate row before any term.
	CanViewPaper(row *ir.PaperRow) bool
	AllowAdminister(row *ir.PaperRow) bool
	// CanViewSomeIncomplete reports whether unsubmitted papers may ever
	// be visible.
	CanViewSomeIncomplete() bool

	CanViewAuthors(row *ir.PaperRow) bool
	CanViewSomeAuthors() bool
	CanViewConflicts(row *ir.PaperRow) bool

	CanViewTags() bool
	CanViewTag(row *ir.PaperRow, tag string) bool

	CanViewDecision(row *ir.PaperRow) bool
	CanViewSomeDecision() bool

	CanViewReview(row *ir.PaperRow, r *ir.ReviewInfo) bool
	CanViewReviewIdentity(row *ir.PaperRow, r *ir.ReviewInfo) bool

	// CanViewContactField covers the lead, shepherd and manager fields.
	CanViewContactField(row *ir.PaperRow, field string) bool

	IsAuthor() bool
	IsReviewer() bool
}
