package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/invitespark/internal/logging"
	"github.com/JonMunkholm/invitespark/internal/mail"
	"golang.org/x/sync/errgroup"
)

// SendFailure records a recipient whose email could not be delivered.
type SendFailure struct {
	RecipientID string `json:"recipientId"`
	Email       string `json:"email"`
	Reason      string `json:"reason"`
}

// SendResult summarizes a campaign send.
type SendResult struct {
	CampaignID string        `json:"campaignId"`
	Sent       int           `json:"sent"`
	Skipped    int           `json:"skipped"`
	Failed     []SendFailure `json:"failed,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// SendCampaign emails every pending recipient of a campaign and marks the
// delivered ones as sent. Recipients past pending, unsubscribed included,
// are skipped, so repeating a send only retries what has not gone out.
//
// Without a mail backend it fails with ErrNoBackend. A delivery failure
// for one recipient is recorded in the result and does not stop the rest.
func (s *Service) SendCampaign(ctx context.Context, id string) (*SendResult, error) {
	if s.mailer == nil {
		return nil, ErrNoBackend
	}

	c, err := s.Campaign(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger := logging.WithFields(ctx, "campaign_id", id)
	result := &SendResult{CampaignID: id}

	var (
		mu     sync.Mutex
		sentTo []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxSendWorkers)

	for i := range c.Recipients {
		r := c.Recipients[i]
		if r.Status.OrPending() != StatusPending {
			result.Skipped++
			continue
		}

		g.Go(func() error {
			msg := s.buildMessage(c, &r)
			if err := s.mailer.Send(gctx, msg); err != nil {
				logger.Warn("email delivery failed", "recipient_id", r.ID, "error", err)
				mu.Lock()
				result.Failed = append(result.Failed, SendFailure{
					RecipientID: r.ID,
					Email:       r.Email,
					Reason:      err.Error(),
				})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			sentTo = append(sentTo, r.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result.Sent = len(sentTo)
	result.Duration = time.Since(start)

	if err := s.markSent(id, sentTo); err != nil {
		return result, err
	}

	logger.Info("campaign sent",
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", len(result.Failed),
		"duration_ms", result.Duration.Milliseconds(),
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("send interrupted: %w", err)
	}
	return result, nil
}

func (s *Service) buildMessage(c *Campaign, r *Recipient) mail.Message {
	links := s.Links(c.ID, r.ID)
	return mail.Message{
		To:       r.Email,
		Subject:  RenderWithLinks(c.Template.Subject, r, links),
		TextBody: RenderWithLinks(c.Template.Body, r, links),
		Tag:      "invitation",
	}
}

// markSent moves the given recipients from pending to sent. Recipients
// whose status changed while the send was running keep their new status.
func (s *Service) markSent(id string, recipientIDs []string) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	sent := make(map[string]bool, len(recipientIDs))
	for _, rid := range recipientIDs {
		sent[rid] = true
	}

	return s.update(id, func(c *Campaign) error {
		for i := range c.Recipients {
			r := &c.Recipients[i]
			if sent[r.ID] && r.Status.OrPending() == StatusPending {
				r.Status = StatusSent
			}
		}
		return nil
	})
}
