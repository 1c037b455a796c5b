package core

import "strings"

// DefaultPageSize is the number of recipients shown per table page.
const DefaultPageSize = 10

// RecipientPage is one page of a filtered recipient list.
type RecipientPage struct {
	Recipients []Recipient `json:"recipients"`
	Search     string      `json:"search,omitempty"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
	TotalRows  int         `json:"totalRows"`
}

// HasPrev reports whether a previous page exists.
func (p RecipientPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p RecipientPage) HasNext() bool { return p.Page < p.TotalPages }

// FilterRecipients keeps recipients whose name, email or organization
// contains search, ignoring case. An empty search keeps everything.
func FilterRecipients(recipients []Recipient, search string) []Recipient {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return recipients
	}

	out := make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		if strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Email), term) ||
			strings.Contains(strings.ToLower(r.Organization), term) {
			out = append(out, r)
		}
	}
	return out
}

// Paginate filters recipients and returns the requested page.
// Page numbers are 1-indexed and clamped to the valid range.
func Paginate(recipients []Recipient, search string, page, pageSize int) RecipientPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	filtered := FilterRecipients(recipients, search)
	totalPages := (len(filtered) + pageSize - 1) / pageSize

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return RecipientPage{
		Recipients: filtered[start:end],
		Search:     search,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalRows:  len(filtered),
	}
}
