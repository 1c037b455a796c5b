package core

import (
	"fmt"
	"strings"
)

// Placeholder tokens understood by Render, without braces.
const (
	TokenName             = "name"
	TokenEmail            = "email"
	TokenOrganization     = "organization"
	TokenRole             = "role"
	TokenAchievement      = "achievement"
	TokenPersonalizedHook = "personalized_hook"
	TokenRSVPLink         = "rsvp_link"
	TokenUnsubscribeLink  = "unsubscribe_link"
)

// Placeholders lists the recognized tokens in the order the editor offers them.
var Placeholders = []string{
	TokenName,
	TokenEmail,
	TokenOrganization,
	TokenRole,
	TokenAchievement,
	TokenPersonalizedHook,
	TokenRSVPLink,
	TokenUnsubscribeLink,
}

// Text substituted for link tokens when no real link exists yet.
const (
	RSVPLinkPlaceholder        = "[RSVP Link]"
	UnsubscribeLinkPlaceholder = "[Unsubscribe Link]"
)

// Links carries the per-recipient URLs substituted for the link tokens.
// Empty fields render as the static placeholder text.
type Links struct {
	RSVP        string
	Unsubscribe string
}

// Render substitutes every recognized {token} in tmpl with values from r.
// Unknown tokens are left as they are. A nil r returns tmpl unchanged.
func Render(tmpl string, r *Recipient) string {
	return RenderWithLinks(tmpl, r, Links{})
}

// RenderWithLinks is Render with real RSVP and unsubscribe URLs.
//
// Substitution is a single left-to-right pass, so a value that itself looks
// like a token is never expanded again.
func RenderWithLinks(tmpl string, r *Recipient, links Links) string {
	if r == nil {
		return tmpl
	}

	rsvp := links.RSVP
	if rsvp == "" {
		rsvp = RSVPLinkPlaceholder
	}
	unsub := links.Unsubscribe
	if unsub == "" {
		unsub = UnsubscribeLinkPlaceholder
	}

	return strings.NewReplacer(
		marker(TokenName), r.Name,
		marker(TokenEmail), r.Email,
		marker(TokenOrganization), r.Organization,
		marker(TokenRole), r.Role,
		marker(TokenAchievement), r.Achievement,
		marker(TokenPersonalizedHook), PersonalizedHook(*r),
		marker(TokenRSVPLink), rsvp,
		marker(TokenUnsubscribeLink), unsub,
	).Replace(tmpl)
}

// PersonalizedHook builds the derived {personalized_hook} sentence.
func PersonalizedHook(r Recipient) string {
	return fmt.Sprintf(
		"Your %s position at %s and your achievement in %s make you an ideal participant for this prestigious event.",
		r.Role, r.Organization, r.Achievement,
	)
}

func marker(token string) string {
	return "{" + token + "}"
}

// Template is an email subject and body containing placeholder tokens.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DefaultTemplate returns the invitation every new campaign starts with.
func DefaultTemplate() Template {
	return Template{
		Subject: "Invitation to VBDA 2025",
		Body: `Dear {name},

We are pleased to invite you to the Virtual Business Development Awards (VBDA) 2025.

{personalized_hook}

The event will be held on June 15th, 2025, from 7:00 PM to 10:00 PM EST.

Please RSVP by clicking the link below:
{rsvp_link}

We look forward to your participation.

Best regards,
The VBDA Team

{unsubscribe_link}`,
	}
}

// Preview is a rendered template addressed to one recipient.
type Preview struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Preview sender and fallback addressee shown in the editor.
const (
	PreviewFrom      = "VBDA Team <invites@vbda2025.com>"
	PreviewDefaultTo = "recipient@example.com"
)

// Preview renders t for r. A nil r produces the raw template.
func (t Template) Preview(r *Recipient) Preview {
	p := Preview{
		From:    PreviewFrom,
		To:      PreviewDefaultTo,
		Subject: Render(t.Subject, r),
		Body:    Render(t.Body, r),
	}
	if r != nil && r.Email != "" {
		p.To = r.Email
	}
	return p
}
