package core

import (
	"math"
	"sort"
)

// TopOrganizationsLimit caps the organization breakdown.
const TopOrganizationsLimit = 5

// Slice is one labelled count in a chart series.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color,omitempty"`
}

// Rate is a percentage with the counts it was derived from.
type Rate struct {
	Label       string  `json:"label"`
	Value       float64 `json:"value"` // percent, one decimal
	Numerator   int     `json:"numerator"`
	Denominator int     `json:"denominator"`
	Negative    bool    `json:"negative,omitempty"`
}

// Stats aggregates recipient statuses for the analytics view.
type Stats struct {
	Total        int `json:"total"`
	Sent         int `json:"sent"`
	Opened       int `json:"opened"`
	Clicked      int `json:"clicked"`
	RSVP         int `json:"rsvp"`
	Unsubscribed int `json:"unsubscribed"`

	Breakdown     []Slice `json:"breakdown"`
	Funnel        []Slice `json:"funnel"`
	Rates         []Rate  `json:"rates"`
	Organizations []Slice `json:"organizations"`
}

// ComputeStats derives campaign metrics from recipient statuses.
// An absent status counts as pending.
func ComputeStats(recipients []Recipient) Stats {
	st := Stats{Total: len(recipients)}

	orgCounts := make(map[string]int)
	var orgOrder []string

	for _, r := range recipients {
		switch r.Status.OrPending() {
		case StatusSent:
			st.Sent++
		case StatusOpened:
			st.Sent++
			st.Opened++
		case StatusClicked:
			st.Sent++
			st.Opened++
			st.Clicked++
		case StatusRSVP:
			st.Sent++
			st.Opened++
			st.Clicked++
			st.RSVP++
		case StatusUnsubscribed:
			st.Sent++
			st.Unsubscribed++
		}

		org := r.Organization
		if org == "" {
			org = "Unknown"
		}
		if _, seen := orgCounts[org]; !seen {
			orgOrder = append(orgOrder, org)
		}
		orgCounts[org]++
	}

	// Slices partition Total; unsubscribed recipients are not also "sent, no open".
	breakdown := []Slice{
		{Name: "Unsubscribed", Value: st.Unsubscribed, Color: "#ef4444"},
		{Name: "Pending", Value: st.Total - st.Sent, Color: "#9ca3af"},
		{Name: "Sent (No Open)", Value: st.Sent - st.Opened - st.Unsubscribed, Color: "#60a5fa"},
		{Name: "Opened (No Click)", Value: st.Opened - st.Clicked, Color: "#a855f7"},
		{Name: "Clicked (No RSVP)", Value: st.Clicked - st.RSVP, Color: "#f59e0b"},
		{Name: "RSVP", Value: st.RSVP, Color: "#10b981"},
	}
	for _, s := range breakdown {
		if s.Value > 0 {
			st.Breakdown = append(st.Breakdown, s)
		}
	}

	st.Funnel = []Slice{
		{Name: "Sent", Value: st.Sent, Color: "#3b82f6"},
		{Name: "Opened", Value: st.Opened, Color: "#8b5cf6"},
		{Name: "Clicked", Value: st.Clicked, Color: "#f59e0b"},
		{Name: "RSVP", Value: st.RSVP, Color: "#10b981"},
	}

	st.Rates = []Rate{
		newRate("Open Rate", st.Opened, st.Sent, false),
		newRate("Click Rate", st.Clicked, st.Opened, false),
		newRate("RSVP Rate", st.RSVP, st.Clicked, false),
		newRate("Unsubscribe Rate", st.Unsubscribed, st.Sent, true),
	}

	orgs := make([]Slice, 0, len(orgOrder))
	for _, name := range orgOrder {
		orgs = append(orgs, Slice{Name: name, Value: orgCounts[name]})
	}
	sort.SliceStable(orgs, func(i, j int) bool { return orgs[i].Value > orgs[j].Value })
	if len(orgs) > TopOrganizationsLimit {
		orgs = orgs[:TopOrganizationsLimit]
	}
	st.Organizations = orgs

	return st
}

func newRate(label string, num, den int, negative bool) Rate {
	r := Rate{Label: label, Numerator: num, Denominator: den, Negative: negative}
	if den > 0 {
		r.Value = math.Round(float64(num)/float64(den)*1000) / 10
	}
	return r
}

// SampleRecipients returns the demonstration data shown on the analytics
// page before a campaign has been uploaded.
func SampleRecipients() []Recipient {
	return []Recipient{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Organization: "Acme Corp", Role: "CTO", Achievement: "Led digital transformation", Status: StatusRSVP},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Organization: "Tech Innovators", Role: "Research Director", Achievement: "Published groundbreaking AI research", Status: StatusOpened},
		{ID: "3", Name: "Michael Johnson", Email: "michael@example.com", Organization: "Global Solutions", Role: "VP Marketing", Achievement: "Increased market share by 35%", Status: StatusClicked},
		{ID: "4", Name: "Sarah Brown", Email: "sarah@example.com", Organization: "Future Institute", Role: "Professor", Achievement: "Awarded prestigious fellowship", Status: StatusSent},
		{ID: "5", Name: "David Wilson", Email: "david@example.com", Organization: "Tech Innovators", Role: "Senior Developer", Achievement: "Created patent-pending algorithm", Status: StatusPending},
		{ID: "6", Name: "Emily Garcia", Email: "emily@example.com", Organization: "Global Solutions", Role: "Design Lead", Achievement: "Won industry design award", Status: StatusUnsubscribed},
		{ID: "7", Name: "Robert Chen", Email: "robert@example.com", Organization: "Acme Corp", Role: "Project Manager", Achievement: "Delivered $2M project under budget", Status: StatusRSVP},
		{ID: "8", Name: "Lisa Taylor", Email: "lisa@example.com", Organization: "Future Institute", Role: "Department Head", Achievement: "Secured $5M in research grants", Status: StatusOpened},
	}
}
