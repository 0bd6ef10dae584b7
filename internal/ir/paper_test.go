package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tags := ParseTags(" green#0 12~vote#10.0 fart#4.5 bare")
	require.Len(t, tags, 4)
	assert.Equal(t, TagEntry{Tag: "green", Value: 0}, tags[0])
	assert.Equal(t, TagEntry{Tag: "12~vote", Value: 10}, tags[1])
	assert.Equal(t, TagEntry{Tag: "fart", Value: 4.5}, tags[2])
	assert.Equal(t, TagEntry{Tag: "bare"}, tags[3])
}

func TestFormatTagsRoundTrip(t *testing.T) {
	in := []TagEntry{{Tag: "green", Value: 0}, {Tag: "order", Value: 3}}
	s := FormatTags(in)
	assert.Equal(t, " green#0 order#3", s)
	assert.Equal(t, in, ParseTags(s))
}

func TestPaperRowTagValue(t *testing.T) {
	row := PaperRow{PaperTags: " Green#0 x#10"}
	v, ok := row.TagValue("green")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = row.TagValue("X")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	_, ok = row.TagValue("red")
	assert.False(t, ok)
}

func TestPaperRowConflicts(t *testing.T) {
	row := PaperRow{AllConflictType: "3 2,7 32"}
	assert.Equal(t, ConflictGeneral, row.ConflictFor(3))
	assert.Equal(t, ConflictAuthor, row.ConflictFor(7))
	assert.Equal(t, ConflictNone, row.ConflictFor(9))
	assert.Equal(t, map[int]int{3: 2, 7: 32}, row.Conflicts())
}

func TestPaperRowStatus(t *testing.T) {
	assert.True(t, (&PaperRow{TimeSubmitted: 10}).IsSubmitted())
	assert.False(t, (&PaperRow{TimeSubmitted: 10, TimeWithdrawn: 11}).IsSubmitted())
	assert.True(t, (&PaperRow{TimeWithdrawn: 11}).IsWithdrawn())
	assert.True(t, (&PaperRow{ConflictType: ConflictAuthor}).IsAuthorView())
	assert.False(t, (&PaperRow{ConflictType: ConflictGeneral}).IsAuthorView())
}

func TestParseReviewSignatures(t *testing.T) {
	reviews := ParseReviewSignatures("1 5 2 100 0 overAllMerit=4,2 6 4 0 1")
	require.Len(t, reviews, 2)
	assert.Equal(t, ReviewInfo{ReviewID: 1, ContactID: 5, ReviewType: ReviewPC, Submitted: true, Round: 0,
		Scores: map[string]int{"overAllMerit": 4}}, reviews[0])
	assert.Equal(t, ReviewInfo{ReviewID: 2, ContactID: 6, ReviewType: ReviewPrimary, Submitted: false, Round: 1}, reviews[1])
	assert.Empty(t, ParseReviewSignatures(""))

	reviews = ParseReviewSignatures("3 8 1 0 0 5 overAllMerit=0")
	require.Len(t, reviews, 1)
	assert.Equal(t, ReviewInfo{ReviewID: 3, ContactID: 8, ReviewType: ReviewExternal, RequestedBy: 5}, reviews[0])
}

func TestMyReviewTypes(t *testing.T) {
	row := PaperRow{MyReviewPermissions: "2 1,1 0"}
	got := row.MyReviewTypes()
	require.Len(t, got, 2)
	assert.True(t, got[0].Submitted)
	assert.Equal(t, ReviewExternal, got[1].ReviewType)
}

func TestReviewWordCounts(t *testing.T) {
	row := PaperRow{ReviewWordCountSignature: "120,.,40"}
	assert.Equal(t, []int{120, -1, 40}, row.ReviewWordCounts())
	assert.Nil(t, (&PaperRow{}).ReviewWordCounts())
}

func TestAuthorsRoundTrip(t *testing.T) {
	authors := []Author{
		{FirstName: "Deborah", LastName: "Estrin", Email: "estrin@usc.edu", Affiliation: "USC"},
		{FirstName: "Scott", LastName: "Shenker", Affiliation: "UC Berkeley"},
	}
	info := FormatAuthors(authors)
	assert.Equal(t, authors, ParseAuthors(info))
	assert.Equal(t, "Scott Shenker", authors[1].Name())
}

func TestConfLookups(t *testing.T) {
	conf := &Conf{
		NamedSearches: []NamedSearch{{Name: "Mine", Q: "re:me"}},
		Tags:          []TagAnnotation{{Tag: "fart", Order: true}, {Tag: "late", Automatic: "is:unsubmitted"}},
		Rounds:        []string{"R1", "R2"},
		ReviewFields:  []ReviewField{{ID: "overAllMerit", Search: "ovemer"}},
		Decisions:     []Decision{{ID: 1, Name: "Accepted"}, {ID: -1, Name: "Rejected"}},
	}
	assert.NotNil(t, conf.FindNamedSearch("mine"))
	assert.Nil(t, conf.FindNamedSearch("other"))
	assert.True(t, conf.TagAnnotation("FART").Order)
	assert.Len(t, conf.AutomaticTags(), 1)
	assert.Equal(t, "0", conf.AutomaticTags()[0].AutomaticFormula())

	n, ok := conf.RoundNumber("r2")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	n, ok = conf.RoundNumber("unnamed")
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	_, ok = conf.RoundNumber("R9")
	assert.False(t, ok)

	assert.Equal(t, "overAllMerit", conf.FindReviewField("OVEMER").ID)
	assert.True(t, conf.HasAnyAccepted())
}

func TestContactRoles(t *testing.T) {
	pc := &Contact{Roles: RolePC, ContactTags: "red heavy"}
	assert.True(t, pc.IsPC())
	assert.False(t, pc.PrivChair())
	assert.True(t, pc.HasTag("RED"))

	chair := &Contact{Roles: RolePC | RoleChair}
	assert.True(t, chair.PrivChair())

	author := &Contact{Email: "van@ee.lbl.gov"}
	assert.False(t, author.IsPC())
	assert.Equal(t, "van@ee.lbl.gov", author.Name())

	assert.True(t, SiteContact().PrivChair())
}
