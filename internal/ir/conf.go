package ir

import (
	"strings"
)

// Blindness is the conference's submission anonymity policy.
type Blindness string

const (
	BlindNever    Blindness = "never"
	BlindOptional Blindness = "optional"
	BlindAlways   Blindness = "always"
)

// Decision is one outcome. Positive ids accept, negative ids reject and
// zero means undecided.
type Decision struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NamedSearch is a saved search. T, when set, overrides the search limit.
type NamedSearch struct {
	Name string `json:"name"`
	Q    string `json:"q"`
	T    string `json:"t,omitempty"`
}

// TagAnnotation carries the conference-wide settings of one tag.
type TagAnnotation struct {
	Tag string `json:"tag"`
	// Order marks tags whose values define a display order.
	Order bool `json:"order,omitempty"`
	// Votish marks allotment or approval vote tags; they sort descending.
	Votish bool `json:"votish,omitempty"`
	// Automatic is the search that defines an automatic tag.
	Automatic string `json:"automatic,omitempty"`
	// AutomaticValue is the value formula; "0" when the tag is plain
	// membership.
	AutomaticValue string `json:"automatic_value,omitempty"`
	Sitewide       bool   `json:"sitewide,omitempty"`
}

// IsAutomatic reports whether the tag is defined by a search.
func (t *TagAnnotation) IsAutomatic() bool {
	return t.Automatic != ""
}

// AutomaticFormula returns the value formula, defaulting to "0".
func (t *TagAnnotation) AutomaticFormula() string {
	if t.AutomaticValue == "" {
		return "0"
	}
	return t.AutomaticValue
}

// ReviewField is a numeric review score stored in its own PaperReview
// column.
type ReviewField struct {
	// ID is the PaperReview column, such as "overAllMerit".
	ID string `json:"id"`
	// Search is the short search keyword, such as "ovemer".
	Search string `json:"search"`
	Name   string `json:"name"`
	Max    int    `json:"max,omitempty"`
}

// Conf is a read-only snapshot of the conference settings consulted by
// search.
type Conf struct {
	Name          string          `json:"name"`
	Decisions     []Decision      `json:"decisions,omitempty"`
	NamedSearches []NamedSearch   `json:"named_searches,omitempty"`
	Tags          []TagAnnotation `json:"tags,omitempty"`
	// Rounds lists named review rounds; round n is Rounds[n-1] and round 0
	// is the unnamed round.
	Rounds       []string      `json:"rounds,omitempty"`
	ReviewFields []ReviewField `json:"review_fields,omitempty"`
	Blindness    Blindness     `json:"blindness,omitempty"`
	// PCSeeAll lets PC members view incomplete submissions.
	PCSeeAll bool `json:"pc_see_all,omitempty"`
}

// TagAnnotation returns the settings for tag, or nil.
func (c *Conf) TagAnnotation(tag string) *TagAnnotation {
	if c == nil {
		return nil
	}
	for i := range c.Tags {
		if strings.EqualFold(c.Tags[i].Tag, tag) {
			return &c.Tags[i]
		}
	}
	return nil
}

// AutomaticTags returns the tags defined by a search.
func (c *Conf) AutomaticTags() []TagAnnotation {
	if c == nil {
		return nil
	}
	var out []TagAnnotation
	for _, t := range c.Tags {
		if t.IsAutomatic() {
			out = append(out, t)
		}
	}
	return out
}

// FindNamedSearch looks up a saved search case-insensitively.
func (c *Conf) FindNamedSearch(name string) *NamedSearch {
	if c == nil {
		return nil
	}
	for i := range c.NamedSearches {
		if strings.EqualFold(c.NamedSearches[i].Name, name) {
			return &c.NamedSearches[i]
		}
	}
	return nil
}

// RoundNumber maps a round name to its number.
func (c *Conf) RoundNumber(name string) (int, bool) {
	if strings.EqualFold(name, "unnamed") || name == "" {
		return 0, true
	}
	if c == nil {
		return 0, false
	}
	for i, r := range c.Rounds {
		if strings.EqualFold(r, name) {
			return i + 1, true
		}
	}
	return 0, false
}

// FindReviewField looks up a score field by search keyword or column id.
func (c *Conf) FindReviewField(word string) *ReviewField {
	if c == nil {
		return nil
	}
	for i := range c.ReviewFields {
		f := &c.ReviewFields[i]
		if strings.EqualFold(f.Search, word) || strings.EqualFold(f.ID, word) {
			return f
		}
	}
	return nil
}

// HasAnyAccepted reports whether an accepting decision exists.
func (c *Conf) HasAnyAccepted() bool {
	if c == nil {
		return false
	}
	for _, d := range c.Decisions {
		if d.ID > 0 {
			return true
		}
	}
	return false
}
