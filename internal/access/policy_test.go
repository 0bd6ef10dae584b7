package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/papersearch/internal/ir"
)

var (
	chair  = &ir.Contact{ContactID: 1, Roles: ir.RoleChair}
	pc     = &ir.Contact{ContactID: 2, Roles: ir.RolePC}
	author = &ir.Contact{ContactID: 4}
)

func submitted(conflict int) *ir.PaperRow {
	return &ir.PaperRow{PaperID: 1, TimeSubmitted: 100, ConflictType: conflict, Blind: true}
}

func TestCanViewPaper(t *testing.T) {
	tests := []struct {
		name string
		user *ir.Contact
		row  *ir.PaperRow
		want bool
	}{
		{"chair sees everything", chair, &ir.PaperRow{PaperID: 1}, true},
		{"pc sees submitted", pc, submitted(0), true},
		{"pc misses drafts", pc, &ir.PaperRow{PaperID: 1}, false},
		{"pc sees withdrawn", pc, &ir.PaperRow{PaperID: 1, TimeWithdrawn: 200}, true},
		{"author sees own draft", author, &ir.PaperRow{PaperID: 1, ConflictType: ir.ConflictContact}, true},
		{"author misses others", author, submitted(0), false},
		{"reviewer sees assigned draft", author, &ir.PaperRow{PaperID: 1, MyReviewPermissions: "1 0"}, true},
		{"anonymous sees nothing", nil, submitted(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPolicy(tt.user, &ir.Conf{}).CanViewPaper(tt.row))
		})
	}
}

func TestPCSeeAll(t *testing.T) {
	p := NewPolicy(pc, &ir.Conf{PCSeeAll: true})
	assert.True(t, p.CanViewPaper(&ir.PaperRow{PaperID: 1}))
	assert.True(t, p.CanViewSomeIncomplete())
	assert.False(t, NewPolicy(pc, &ir.Conf{}).CanViewSomeIncomplete())
}

func TestCanViewAuthors_Blindness(t *testing.T) {
	row := submitted(0)
	tests := []struct {
		blindness ir.Blindness
		user      *ir.Contact
		want      bool
	}{
		{ir.BlindAlways, pc, false},
		{ir.BlindAlways, chair, true},
		{ir.BlindNever, pc, true},
		{ir.BlindOptional, pc, false},
		{"", pc, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.blindness), func(t *testing.T) {
			p := NewPolicy(tt.user, &ir.Conf{Blindness: tt.blindness})
			assert.Equal(t, tt.want, p.CanViewAuthors(row))
		})
	}

	open := &ir.PaperRow{PaperID: 2, TimeSubmitted: 100}
	assert.True(t, NewPolicy(pc, &ir.Conf{Blindness: ir.BlindOptional}).CanViewAuthors(open))
	assert.True(t, NewPolicy(author, &ir.Conf{}).CanViewAuthors(submitted(ir.ConflictAuthor)))
}

func TestCanViewTag(t *testing.T) {
	row := submitted(0)
	conflicted := submitted(ir.ConflictGeneral)

	p := NewPolicy(pc, &ir.Conf{})
	assert.True(t, p.CanViewTag(row, "green"))
	assert.True(t, p.CanViewTag(row, "2~mine"))
	assert.False(t, p.CanViewTag(row, "3~theirs"))
	assert.False(t, p.CanViewTag(row, "~~chairs"))
	assert.False(t, p.CanViewTag(conflicted, "green"), "conflicted PC members lose tags")

	c := NewPolicy(chair, &ir.Conf{})
	assert.True(t, c.CanViewTag(row, "~~chairs"))
	assert.True(t, c.CanViewTag(conflicted, "green"), "chairs administer conflicted papers")

	assert.False(t, NewPolicy(author, &ir.Conf{}).CanViewTag(row, "green"))
	assert.True(t, NewPolicy(ir.SiteContact(), nil).CanViewTag(row, "5~private"))
}

func TestCanViewReview(t *testing.T) {
	row := submitted(0)
	mine := &ir.ReviewInfo{ContactID: 4, Submitted: false}
	other := &ir.ReviewInfo{ContactID: 3, Submitted: true}
	draft := &ir.ReviewInfo{ContactID: 3, Submitted: false}

	assert.True(t, NewPolicy(author, &ir.Conf{}).CanViewReview(row, mine))
	assert.False(t, NewPolicy(author, &ir.Conf{}).CanViewReview(row, other))
	assert.True(t, NewPolicy(pc, &ir.Conf{}).CanViewReview(row, other))
	assert.False(t, NewPolicy(pc, &ir.Conf{}).CanViewReview(row, draft))
	assert.False(t, NewPolicy(pc, &ir.Conf{}).CanViewReview(submitted(ir.ConflictGeneral), other))
	assert.True(t, NewPolicy(chair, &ir.Conf{}).CanViewReview(row, draft))
}

func TestCanViewContactField(t *testing.T) {
	row := &ir.PaperRow{PaperID: 1, TimeSubmitted: 100, ManagerContactID: 2}

	p := NewPolicy(pc, &ir.Conf{})
	assert.True(t, p.CanViewContactField(row, "lead"))
	assert.True(t, p.CanViewContactField(row, "manager"))
	assert.True(t, p.AllowAdminister(row), "managers administer their papers")

	other := NewPolicy(&ir.Contact{ContactID: 3, Roles: ir.RolePC}, &ir.Conf{})
	assert.False(t, other.CanViewContactField(row, "manager"))
	assert.True(t, other.CanViewContactField(row, "shepherd"))
}

func TestPolicyOptions(t *testing.T) {
	p := NewPolicy(author, &ir.Conf{}, WithAuthor(true))
	assert.True(t, p.IsAuthor())
	assert.False(t, p.IsReviewer())
	assert.True(t, p.CanViewSomeIncomplete())

	assert.True(t, NewPolicy(author, nil, WithReviewer(true)).IsReviewer())
	assert.True(t, NewPolicy(pc, nil).IsReviewer(), "PC members are reviewers")
	assert.Equal(t, author, NewPolicy(author, nil).Contact())
}
