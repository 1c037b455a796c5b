package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkConfig holds the credentials and identities used for delivery.
type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	SenderEmail  string
	SupportEmail string
}

// PostmarkSender delivers through Postmark's transactional API.
type PostmarkSender struct {
	client *postmark.Client
	cfg    PostmarkConfig
}

// NewPostmarkSender validates cfg and creates a client.
func NewPostmarkSender(cfg PostmarkConfig) (*PostmarkSender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
	}
	if !IsValidEmail(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: MAIL_SENDER must be a valid email address", ErrInvalidConfig)
	}
	if cfg.SupportEmail != "" && !IsValidEmail(cfg.SupportEmail) {
		return nil, fmt.Errorf("%w: MAIL_SUPPORT must be a valid email address", ErrInvalidConfig)
	}

	return &PostmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
	}, nil
}

// Send delivers msg. Postmark only tracks opens and clicks in HTML bodies,
// so tracking is requested only when msg has one. The results stay in
// Postmark; recipient statuses change through the emailed links.
func (p *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	email := postmark.Email{
		From:     p.cfg.SenderEmail,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	}
	if msg.HTMLBody != "" {
		email.TrackOpens = true
		email.TrackLinks = "HtmlOnly"
	}
	if p.cfg.SupportEmail != "" {
		email.ReplyTo = p.cfg.SupportEmail
	}

	resp, err := p.client.SendEmail(ctx, email)
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
