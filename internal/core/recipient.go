package core

import "strings"

// Status is the campaign-engagement stage of a recipient.
// The zero value means the status is absent.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSent         Status = "sent"
	StatusOpened       Status = "opened"
	StatusClicked      Status = "clicked"
	StatusRSVP         Status = "rsvp"
	StatusUnsubscribed Status = "unsubscribed"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusSent,
	StatusOpened,
	StatusClicked,
	StatusRSVP,
	StatusUnsubscribed,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrPending returns s, or StatusPending when s is absent.
func (s Status) OrPending() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// ParseStatus converts a raw string to a Status.
// Matching ignores case and surrounding whitespace.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// Recipient is a single campaign contact.
type Recipient struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Organization string            `json:"organization"`
	Role         string            `json:"role"`
	Achievement  string            `json:"achievement"`
	Status       Status            `json:"status,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Column names understood by the decoder and written by the encoder.
const (
	ColName         = "name"
	ColEmail        = "email"
	ColOrganization = "organization"
	ColRole         = "role"
	ColAchievement  = "achievement"
	ColStatus       = "status"
)

// RequiredHeaders are the columns every recipient CSV must carry, in reporting order.
var RequiredHeaders = []string{ColName, ColEmail, ColOrganization, ColRole, ColAchievement}

// ExportColumns is the fixed column order of encoded output.
var ExportColumns = []string{ColName, ColEmail, ColOrganization, ColRole, ColAchievement, ColStatus}

// Field returns the textual value of a named column.
// Unknown names fall back to Extra.
func (r Recipient) Field(name string) string {
	switch name {
	case ColName:
		return r.Name
	case ColEmail:
		return r.Email
	case ColOrganization:
		return r.Organization
	case ColRole:
		return r.Role
	case ColAchievement:
		return r.Achievement
	case ColStatus:
		return string(r.Status)
	}
	return r.Extra[name]
}

// clone returns a copy that shares no maps with r.
func (r Recipient) clone() Recipient {
	if r.Extra != nil {
		extra := make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
		r.Extra = extra
	}
	return r
}
