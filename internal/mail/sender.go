// Package mail delivers rendered campaign emails.
//
// Two providers exist: DevSender writes every message to a local directory
// for inspection, and PostmarkSender delivers through Postmark's
// transactional API. New selects one from configuration; the "none"
// provider yields a nil Sender, which callers treat as "no backend".
package mail

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/invitespark/internal/config"
)

var (
	ErrFailedToSend  = errors.New("failed to send email")
	ErrInvalidConfig = errors.New("invalid mail configuration")
	ErrInvalidParams = errors.New("invalid email parameters")
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outgoing email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Tag      string
}

// Validate checks that the message can be delivered.
func (m Message) Validate() error {
	var errs []string
	if !IsValidEmail(m.To) {
		errs = append(errs, fmt.Sprintf("recipient %q is not a valid email address", m.To))
	}
	if strings.TrimSpace(m.Subject) == "" {
		errs = append(errs, "subject is required")
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		errs = append(errs, "body is required")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(errs, "; "))
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether s looks like a deliverable address.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// New builds the Sender selected by cfg.Provider.
// It returns (nil, nil) for the "none" provider.
func New(cfg config.MailConfig) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", config.MailProviderNone:
		return nil, nil
	case config.MailProviderDev:
		return NewDevSender(cfg.DevDir)
	case config.MailProviderPostmark:
		return NewPostmarkSender(PostmarkConfig{
			ServerToken:  cfg.PostmarkServerToken,
			AccountToken: cfg.PostmarkAccountToken,
			SenderEmail:  cfg.Sender,
			SupportEmail: cfg.Support,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
