// Package templates renders the HTML views of the invitation UI.
//
// Views are written as .templ files and compiled with `templ generate`;
// this file holds the view models and small formatting helpers they share.
package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/invitespark/internal/core"
)

// Nav identifiers for highlighting the active section.
const (
	NavHome      = "home"
	NavUpload    = "upload"
	NavTemplate  = "template"
	NavAnalytics = "analytics"
)

type navItem struct {
	key, href, label string
}

var navItems = []navItem{
	{NavHome, "/", "Campaigns"},
	{NavUpload, "/upload", "Upload"},
	{NavTemplate, "/template", "Template"},
	{NavAnalytics, "/analytics", "Analytics"},
}

// CampaignView is the data for the campaign page.
type CampaignView struct {
	Campaign *core.Campaign
	Page     core.RecipientPage
	CanSend  bool
}

// EditorView is the data for the template editor.
type EditorView struct {
	// CampaignID is empty for the standalone editor, which only previews.
	CampaignID string
	Template   core.Template
	Recipients []core.Recipient
	SelectedID string
	Preview    core.Preview
	Saved      bool
}

func (v EditorView) action() string {
	if v.CampaignID == "" {
		return "/template"
	}
	return campaignPath(v.CampaignID, "/template")
}

func (v EditorView) method() string {
	if v.CampaignID == "" {
		return "get"
	}
	return "post"
}

// AnalyticsView is the data for the analytics page.
type AnalyticsView struct {
	// CampaignID is empty when the page shows sample data.
	CampaignID string
	Stats      core.Stats
}

func (v AnalyticsView) exportHref() string {
	if v.CampaignID == "" {
		return "/analytics/export"
	}
	return campaignPath(v.CampaignID, "/analytics/export")
}

type total struct {
	Label string
	Value int
}

func totals(st core.Stats) []total {
	return []total{
		{"Total Recipients", st.Total},
		{"Emails Sent", st.Sent},
		{"Opened", st.Opened},
		{"Clicked", st.Clicked},
		{"RSVPs", st.RSVP},
		{"Unsubscribed", st.Unsubscribed},
	}
}

// campaignPath joins a campaign id and optional suffix into a URL path.
func campaignPath(id string, suffix string) string {
	return "/campaigns/" + url.PathEscape(id) + suffix
}

func pageHref(campaignID, search string, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if search != "" {
		q.Set("search", search)
	}
	return campaignPath(campaignID, "") + "?" + q.Encode()
}

func barPercent(value, total int) string {
	if total <= 0 {
		return "0"
	}
	return strconv.Itoa(value * 100 / total)
}

func sendSummary(res *core.SendResult) string {
	return fmt.Sprintf("%d invitations sent, %d skipped, %d failed.", res.Sent, res.Skipped, len(res.Failed))
}

func formatRate(r core.Rate) string {
	return strconv.FormatFloat(r.Value, 'f', 1, 64) + "%"
}

func rateDetail(r core.Rate) string {
	return fmt.Sprintf("%d of %d", r.Numerator, r.Denominator)
}

func placeholderToken(p string) string {
	return "{" + p + "}"
}

func megabytes(n int64) string {
	return strconv.FormatInt(n/(1024*1024), 10)
}
