package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/invitespark/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMessage() Message {
	return Message{
		To:       "ada@example.com",
		Subject:  "Invitation",
		TextBody: "Dear Ada",
		Tag:      "invitation",
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := map[string]bool{
		"ada@example.com":      true,
		"first.last+x@a.co.uk": true,
		"":                     false,
		"ada":                  false,
		"ada@localhost":        false,
		"a b@example.com":      false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsValidEmail(in), in)
	}
}

func TestMessageValidate(t *testing.T) {
	require.NoError(t, validMessage().Validate())

	msg := validMessage()
	msg.To = "nobody"
	msg.Subject = " "
	msg.TextBody = ""

	err := msg.Validate()
	require.ErrorIs(t, err, ErrInvalidParams)
	assert.Contains(t, err.Error(), "not a valid email address")
	assert.Contains(t, err.Error(), "subject is required")
	assert.Contains(t, err.Error(), "body is required")
}

func TestNew(t *testing.T) {
	sender, err := New(config.MailConfig{Provider: config.MailProviderNone})
	require.NoError(t, err)
	assert.Nil(t, sender)

	sender, err = New(config.MailConfig{Provider: config.MailProviderDev, DevDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &DevSender{}, sender)

	sender, err = New(config.MailConfig{
		Provider:            config.MailProviderPostmark,
		PostmarkServerToken: "token",
		Sender:              "events@example.com",
	})
	require.NoError(t, err)
	assert.IsType(t, &PostmarkSender{}, sender)

	_, err = New(config.MailConfig{Provider: "smtp"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewPostmarkSender_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  PostmarkConfig
	}{
		{"missing token", PostmarkConfig{SenderEmail: "events@example.com"}},
		{"bad sender", PostmarkConfig{ServerToken: "t", SenderEmail: "events"}},
		{"bad support", PostmarkConfig{ServerToken: "t", SenderEmail: "events@example.com", SupportEmail: "help"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPostmarkSender(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestPostmarkSender_RejectsInvalidMessage(t *testing.T) {
	p, err := NewPostmarkSender(PostmarkConfig{ServerToken: "t", SenderEmail: "events@example.com"})
	require.NoError(t, err)

	err = p.Send(context.Background(), Message{To: "nobody"})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

// postmarkStub records the email payloads posted to it.
func postmarkStub(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = append(got, body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ErrorCode":0,"Message":"OK","MessageID":"m-1"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestPostmarkSender_TrackingOnlyForHTML(t *testing.T) {
	srv, got := postmarkStub(t)
	p, err := NewPostmarkSender(PostmarkConfig{ServerToken: "t", SenderEmail: "events@example.com", SupportEmail: "help@example.com"})
	require.NoError(t, err)
	p.client.BaseURL = srv.URL

	require.NoError(t, p.Send(context.Background(), validMessage()))

	html := validMessage()
	html.HTMLBody = "<p>Dear Ada</p>"
	require.NoError(t, p.Send(context.Background(), html))

	require.Len(t, *got, 2)
	text := (*got)[0]
	assert.Equal(t, "Dear Ada", text["TextBody"])
	assert.Equal(t, "help@example.com", text["ReplyTo"])
	assert.NotContains(t, text, "TrackOpens")
	assert.NotContains(t, text, "TrackLinks")

	rich := (*got)[1]
	assert.Equal(t, true, rich["TrackOpens"])
	assert.Equal(t, "HtmlOnly", rich["TrackLinks"])
}

func TestPostmarkSender_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	}))
	t.Cleanup(srv.Close)

	p, err := NewPostmarkSender(PostmarkConfig{ServerToken: "t", SenderEmail: "events@example.com"})
	require.NoError(t, err)
	p.client.BaseURL = srv.URL

	err = p.Send(context.Background(), validMessage())
	assert.ErrorIs(t, err, ErrFailedToSend)
	assert.Contains(t, err.Error(), "300")
}

func TestDevSender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	d, err := NewDevSender(dir)
	require.NoError(t, err)

	require.NoError(t, d.Send(context.Background(), validMessage()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var txt, meta string
	for _, e := range entries {
		assert.Contains(t, e.Name(), "ada_at_example.com")
		switch filepath.Ext(e.Name()) {
		case ".txt":
			txt = filepath.Join(dir, e.Name())
		case ".json":
			meta = filepath.Join(dir, e.Name())
		}
	}

	body, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, "Dear Ada", string(body))

	raw, err := os.ReadFile(meta)
	require.NoError(t, err)
	var m devMetadata
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "ada@example.com", m.To)
	assert.Equal(t, "Invitation", m.Subject)
	assert.Equal(t, "invitation", m.Tag)
}

func TestDevSender_CanceledContext(t *testing.T) {
	d, err := NewDevSender(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = d.Send(ctx, validMessage())
	assert.ErrorIs(t, err, ErrFailedToSend)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "ada_at_example.com", sanitizeFilename("Ada@Example.com"))
	assert.Equal(t, "email", sanitizeFilename("!!!"))
	assert.Len(t, sanitizeFilename(strings.Repeat("a", 150)), 100)
}
