package ir

import (
	"strconv"
	"strings"
)

// Conflict types stored in PaperConflict.conflictType.
const (
	ConflictNone    = 0
	ConflictGeneral = 2
	ConflictPinned  = 8
	ConflictAuthor  = 32
	ConflictContact = 64
)

// Review types stored in PaperReview.reviewType.
const (
	ReviewExternal  = 1
	ReviewPC        = 2
	ReviewSecondary = 3
	ReviewPrimary   = 4
	ReviewMeta      = 5
)

// PaperRow is one row of the planned search query. Only the columns the
// query projected are populated; the rest keep their zero values.
type PaperRow struct {
	PaperID                  int    `db:"paperId" json:"paper_id"`
	Title                    string `db:"title" json:"title,omitempty"`
	Abstract                 string `db:"abstract" json:"abstract,omitempty"`
	AuthorInformation        string `db:"authorInformation" json:"author_information,omitempty"`
	Collaborators            string `db:"collaborators" json:"collaborators,omitempty"`
	TimeSubmitted            int64  `db:"timeSubmitted" json:"time_submitted"`
	TimeWithdrawn            int64  `db:"timeWithdrawn" json:"time_withdrawn"`
	Outcome                  int    `db:"outcome" json:"outcome"`
	LeadContactID            int    `db:"leadContactId" json:"lead_contact_id,omitempty"`
	ShepherdContactID        int    `db:"shepherdContactId" json:"shepherd_contact_id,omitempty"`
	ManagerContactID         int    `db:"managerContactId" json:"manager_contact_id,omitempty"`
	PaperStorageID           int    `db:"paperStorageId" json:"paper_storage_id,omitempty"`
	Size                     int64  `db:"size" json:"size,omitempty"`
	Blind                    bool   `db:"blind" json:"blind,omitempty"`
	PaperTags                string `db:"paperTags" json:"paper_tags,omitempty"`
	ConflictType             int    `db:"conflictType" json:"conflict_type,omitempty"`
	AllConflictType          string `db:"allConflictType" json:"all_conflict_type,omitempty"`
	MyReviewPermissions      string `db:"myReviewPermissions" json:"my_review_permissions,omitempty"`
	ReviewSignatures         string `db:"reviewSignatures" json:"review_signatures,omitempty"`
	ReviewWordCountSignature string `db:"reviewWordCountSignature" json:"review_word_count_signature,omitempty"`
}

// IsSubmitted reports whether the paper has been submitted and not withdrawn.
func (r *PaperRow) IsSubmitted() bool {
	return r.TimeSubmitted > 0 && r.TimeWithdrawn <= 0
}

// IsWithdrawn reports whether the paper has been withdrawn.
func (r *PaperRow) IsWithdrawn() bool {
	return r.TimeWithdrawn > 0
}

// IsAuthorView reports whether the viewer whose conflict was projected is
// an author of the paper.
func (r *PaperRow) IsAuthorView() bool {
	return r.ConflictType >= ConflictAuthor
}

// HasConflictView reports whether the projected viewer has any conflict.
func (r *PaperRow) HasConflictView() bool {
	return r.ConflictType > ConflictNone
}

// TagEntry is one tag with its value.
type TagEntry struct {
	Tag   string  `json:"tag"`
	Value float64 `json:"value"`
}

// ParseTags decodes a tag string of the form " tag#1 other#0".
func ParseTags(s string) []TagEntry {
	fields := strings.Fields(s)
	out := make([]TagEntry, 0, len(fields))
	for _, f := range fields {
		hash := strings.LastIndexByte(f, '#')
		if hash <= 0 {
			out = append(out, TagEntry{Tag: f})
			continue
		}
		v, err := strconv.ParseFloat(f[hash+1:], 64)
		if err != nil {
			v = 0
		}
		out = append(out, TagEntry{Tag: f[:hash], Value: v})
	}
	return out
}

// FormatTags encodes entries in the form ParseTags accepts.
func FormatTags(entries []TagEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteByte(' ')
		b.WriteString(e.Tag)
		b.WriteByte('#')
		b.WriteString(FormatTagValue(e.Value))
	}
	return b.String()
}

// FormatTagValue prints a tag value the shortest way, "4" rather than "4.0".
func FormatTagValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Tags returns the row's tags.
func (r *PaperRow) Tags() []TagEntry {
	return ParseTags(r.PaperTags)
}

// TagValue returns the value of tag on the row. Tag names compare
// case-insensitively.
func (r *PaperRow) TagValue(tag string) (float64, bool) {
	for _, e := range r.Tags() {
		if strings.EqualFold(e.Tag, tag) {
			return e.Value, true
		}
	}
	return 0, false
}

// ConflictFor returns the conflict type of contact cid, using the
// allConflictType column.
func (r *PaperRow) ConflictFor(cid int) int {
	for _, part := range strings.Split(r.AllConflictType, ",") {
		f := strings.Fields(part)
		if len(f) != 2 {
			continue
		}
		if id, err := strconv.Atoi(f[0]); err == nil && id == cid {
			ct, _ := strconv.Atoi(f[1])
			return ct
		}
	}
	return ConflictNone
}

// Conflicts returns every contact with a conflict on the paper.
func (r *PaperRow) Conflicts() map[int]int {
	out := make(map[int]int)
	for _, part := range strings.Split(r.AllConflictType, ",") {
		f := strings.Fields(part)
		if len(f) != 2 {
			continue
		}
		id, err1 := strconv.Atoi(f[0])
		ct, err2 := strconv.Atoi(f[1])
		if err1 == nil && err2 == nil {
			out[id] = ct
		}
	}
	return out
}

// MyReviewTypes decodes the myReviewPermissions column: one
// "reviewType submitted" pair per review the viewer holds.
func (r *PaperRow) MyReviewTypes() []ReviewInfo {
	var out []ReviewInfo
	for _, part := range strings.Split(r.MyReviewPermissions, ",") {
		f := strings.Fields(part)
		if len(f) < 2 {
			continue
		}
		rt, _ := strconv.Atoi(f[0])
		sub, _ := strconv.Atoi(f[1])
		out = append(out, ReviewInfo{ReviewType: rt, Submitted: sub > 0})
	}
	return out
}

// Author is one line of a paper's author information.
type Author struct {
	FirstName   string `json:"first_name" yaml:"first"`
	LastName    string `json:"last_name" yaml:"last"`
	Email       string `json:"email,omitempty" yaml:"email"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation"`
}

// Name returns "First Last".
func (a Author) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// ParseAuthors decodes author information: one author per line, fields
// separated by tabs (first, last, email, affiliation).
func ParseAuthors(info string) []Author {
	var out []Author
	for _, line := range strings.Split(info, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.Split(line, "\t")
		for len(f) < 4 {
			f = append(f, "")
		}
		out = append(out, Author{FirstName: f[0], LastName: f[1], Email: f[2], Affiliation: f[3]})
	}
	return out
}

// FormatAuthors is the inverse of ParseAuthors.
func FormatAuthors(authors []Author) string {
	var b strings.Builder
	for _, a := range authors {
		b.WriteString(strings.Join([]string{a.FirstName, a.LastName, a.Email, a.Affiliation}, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// Authors returns the row's authors.
func (r *PaperRow) Authors() []Author {
	return ParseAuthors(r.AuthorInformation)
}
