package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRecipient() *Recipient {
	return &Recipient{
		Name:         "Jane Smith",
		Email:        "jane@example.com",
		Organization: "Tech Innovators",
		Role:         "Research Director",
		Achievement:  "Published groundbreaking AI research",
	}
}

func TestRender_ReplacesEveryOccurrence(t *testing.T) {
	tmpl := "{name} {name} | {email} {email} | {organization} {organization} | " +
		"{role} {role} | {achievement} {achievement} | {rsvp_link} {rsvp_link} | " +
		"{unsubscribe_link} {unsubscribe_link}"

	got := Render(tmpl, sampleRecipient())

	assert.Equal(t,
		"Jane Smith Jane Smith | jane@example.com jane@example.com | "+
			"Tech Innovators Tech Innovators | Research Director Research Director | "+
			"Published groundbreaking AI research Published groundbreaking AI research | "+
			"[RSVP Link] [RSVP Link] | [Unsubscribe Link] [Unsubscribe Link]",
		got)
}

func TestRender_UnknownTokensKept(t *testing.T) {
	got := Render("Hi {name}, see {foo} and {Name} and {name", sampleRecipient())
	assert.Equal(t, "Hi Jane Smith, see {foo} and {Name} and {name", got)
}

func TestRender_NilRecipientPassthrough(t *testing.T) {
	tmpl := "Dear {name},\n{personalized_hook}\n{rsvp_link}"
	assert.Equal(t, tmpl, Render(tmpl, nil))
}

func TestRender_PersonalizedHook(t *testing.T) {
	got := Render("{personalized_hook}", sampleRecipient())
	assert.Equal(t,
		"Your Research Director position at Tech Innovators and your achievement in "+
			"Published groundbreaking AI research make you an ideal participant for this prestigious event.",
		got)
}

func TestRender_ValuesAreNotReexpanded(t *testing.T) {
	r := sampleRecipient()
	r.Name = "{email}"
	assert.Equal(t, "{email} jane@example.com", Render("{name} {email}", r))
}

func TestRenderWithLinks(t *testing.T) {
	links := Links{RSVP: "https://x.io/r/c/1/rsvp", Unsubscribe: "https://x.io/r/c/1/unsubscribe"}
	got := RenderWithLinks("{rsvp_link} {unsubscribe_link}", sampleRecipient(), links)
	assert.Equal(t, "https://x.io/r/c/1/rsvp https://x.io/r/c/1/unsubscribe", got)

	partial := RenderWithLinks("{rsvp_link} {unsubscribe_link}", sampleRecipient(), Links{RSVP: "u"})
	assert.Equal(t, "u [Unsubscribe Link]", partial)
}

func TestTemplatePreview(t *testing.T) {
	tmpl := Template{Subject: "For {name}", Body: "Hello {name} at {organization}"}

	p := tmpl.Preview(sampleRecipient())
	assert.Equal(t, Preview{
		From:    PreviewFrom,
		To:      "jane@example.com",
		Subject: "For Jane Smith",
		Body:    "Hello Jane Smith at Tech Innovators",
	}, p)

	empty := tmpl.Preview(nil)
	assert.Equal(t, PreviewDefaultTo, empty.To)
	assert.Equal(t, tmpl.Body, empty.Body)
	assert.Equal(t, tmpl.Subject, empty.Subject)
}

func TestTemplatePreview_SubjectRendersAllTokens(t *testing.T) {
	tmpl := Template{Subject: "{name} of {organization}, {role}", Body: "x"}
	assert.Equal(t, "Jane Smith of Tech Innovators, Research Director", tmpl.Preview(sampleRecipient()).Subject)
}

func TestDefaultTemplateUsesKnownTokens(t *testing.T) {
	out := Render(DefaultTemplate().Body, sampleRecipient())
	assert.NotContains(t, out, "{")
	assert.Contains(t, out, "Dear Jane Smith,")
	assert.Contains(t, out, RSVPLinkPlaceholder)
}
