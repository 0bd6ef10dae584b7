package ir

import (
	"strings"
)

// Role bits stored in ContactInfo.roles.
const (
	RolePC    = 1
	RoleAdmin = 2
	RoleChair = 4
)

// Contact is a conference user.
type Contact struct {
	ContactID   int    `db:"contactId" json:"contact_id" yaml:"id"`
	Email       string `db:"email" json:"email" yaml:"email"`
	FirstName   string `db:"firstName" json:"first_name,omitempty" yaml:"first"`
	LastName    string `db:"lastName" json:"last_name,omitempty" yaml:"last"`
	Affiliation string `db:"affiliation" json:"affiliation,omitempty" yaml:"affiliation"`
	Roles       int    `db:"roles" json:"roles,omitempty" yaml:"roles"`
	// ContactTags is a space-separated list of PC tags, such as "red heavy".
	ContactTags string `db:"contactTags" json:"contact_tags,omitempty" yaml:"tags"`
	// Root marks the site contact, which may do anything.
	Root bool `db:"-" json:"root,omitempty" yaml:"-"`
}

// SiteContact returns the root user used to evaluate automatic tags.
func SiteContact() *Contact {
	return &Contact{Email: "root", Roles: RolePC | RoleAdmin | RoleChair, Root: true}
}

// IsPC reports whether the contact is a PC member (chairs included).
func (c *Contact) IsPC() bool {
	return c != nil && (c.Roles&(RolePC|RoleChair|RoleAdmin) != 0 || c.Root)
}

// PrivChair reports whether the contact administers the whole conference.
func (c *Contact) PrivChair() bool {
	return c != nil && (c.Roles&(RoleAdmin|RoleChair) != 0 || c.Root)
}

// Name returns "First Last", or the email when no name is known.
func (c *Contact) Name() string {
	n := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if n == "" {
		return c.Email
	}
	return n
}

// HasTag reports whether the contact carries PC tag tag.
func (c *Contact) HasTag(tag string) bool {
	for _, t := range strings.Fields(c.ContactTags) {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
