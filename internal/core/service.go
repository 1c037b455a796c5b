package core

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/invitespark/internal/config"
	"github.com/JonMunkholm/invitespark/internal/logging"
	"github.com/JonMunkholm/invitespark/internal/mail"
)

// Campaign is a snapshot of one uploaded recipient list and its template.
type Campaign struct {
	ID         string      `json:"id"`
	FileName   string      `json:"fileName"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Template   Template    `json:"template"`
	Recipients []Recipient `json:"recipients"`
}

// Recipient returns the recipient with the given id.
func (c *Campaign) Recipient(id string) (*Recipient, bool) {
	for i := range c.Recipients {
		if c.Recipients[i].ID == id {
			return &c.Recipients[i], true
		}
	}
	return nil, false
}

func (c *Campaign) clone() *Campaign {
	out := *c
	out.Recipients = make([]Recipient, len(c.Recipients))
	for i, r := range c.Recipients {
		out.Recipients[i] = r.clone()
	}
	return &out
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	MaxFileSize    int64
	MaxConcurrent  int
	MaxUploadWait  time.Duration
	PageSize       int
	PublicBaseURL  string
	MaxSendWorkers int
	IdleTTL        time.Duration
}

// OptionsFromConfig maps application configuration onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxFileSize:    cfg.Upload.MaxFileSize,
		MaxConcurrent:  cfg.Upload.MaxConcurrent,
		MaxUploadWait:  cfg.Upload.MaxWaitTime,
		PageSize:       cfg.Campaign.PageSize,
		PublicBaseURL:  cfg.Server.PublicBaseURL,
		MaxSendWorkers: cfg.Mail.MaxParallel,
		IdleTTL:        cfg.Campaign.IdleTTL,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxSendWorkers <= 0 {
		o.MaxSendWorkers = 4
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = 24 * time.Hour
	}
	return o
}

// Service owns the in-memory campaigns and is the entry point for every
// operation the web layer performs.
type Service struct {
	opts    Options
	mailer  mail.Sender
	limiter *UploadLimiter
	now     func() time.Time

	mu        sync.RWMutex
	campaigns map[string]*Campaign
}

// NewService creates a Service. A nil mailer disables sending.
func NewService(opts Options, mailer mail.Sender) *Service {
	opts = opts.withDefaults()
	return &Service{
		opts:      opts,
		mailer:    mailer,
		limiter:   NewUploadLimiter(opts.MaxConcurrent, opts.MaxUploadWait),
		now:       time.Now,
		campaigns: make(map[string]*Campaign),
	}
}

// CanSend reports whether a mail backend is configured.
func (s *Service) CanSend() bool {
	return s.mailer != nil
}

// Campaign returns a copy of the campaign with the given id.
func (s *Service) Campaign(id string) (*Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, id)
	}
	return c.clone(), nil
}

// Campaigns returns copies of all campaigns, newest first.
func (s *Service) Campaigns() []*Campaign {
	s.mu.RLock()
	out := make([]*Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c.clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ListRecipients returns one filtered page of a campaign's recipients.
func (s *Service) ListRecipients(id, search string, page int) (RecipientPage, error) {
	c, err := s.Campaign(id)
	if err != nil {
		return RecipientPage{}, err
	}
	return Paginate(c.Recipients, search, page, s.opts.PageSize), nil
}

// Export encodes a campaign's recipients as CSV.
func (s *Service) Export(id string) (string, error) {
	c, err := s.Campaign(id)
	if err != nil {
		return "", err
	}
	return Encode(c.Recipients), nil
}

// Stats computes analytics for a campaign.
func (s *Service) Stats(id string) (Stats, error) {
	c, err := s.Campaign(id)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(c.Recipients), nil
}

// SaveTemplate replaces a campaign's email template.
func (s *Service) SaveTemplate(ctx context.Context, id string, t Template) error {
	err := s.update(id, func(c *Campaign) error {
		c.Template = t
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("template saved", "campaign_id", id, "subject_len", len(t.Subject), "body_len", len(t.Body))
	return nil
}

// Preview renders a campaign's template for one recipient. An empty
// recipientID previews the first recipient.
func (s *Service) Preview(id, recipientID string) (Preview, error) {
	c, err := s.Campaign(id)
	if err != nil {
		return Preview{}, err
	}

	var r *Recipient
	switch {
	case recipientID != "":
		var ok bool
		if r, ok = c.Recipient(recipientID); !ok {
			return Preview{}, fmt.Errorf("%w: %s", ErrRecipientNotFound, recipientID)
		}
	case len(c.Recipients) > 0:
		r = &c.Recipients[0]
	}

	return c.Template.Preview(r), nil
}

// UpdateStatus moves one recipient to a new status.
func (s *Service) UpdateStatus(ctx context.Context, id, recipientID string, status Status) error {
	return s.setStatus(ctx, id, recipientID, status, nil)
}

// RecordResponse applies a recipient's own answer from an emailed link.
// Only rsvp and unsubscribed are accepted, and an unsubscribed recipient
// cannot be moved back to rsvp.
func (s *Service) RecordResponse(ctx context.Context, id, recipientID string, status Status) error {
	if status != StatusRSVP && status != StatusUnsubscribed {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.setStatus(ctx, id, recipientID, status, func(current Status) error {
		if current == StatusUnsubscribed && status == StatusRSVP {
			return fmt.Errorf("%w: %s", ErrUnsubscribed, recipientID)
		}
		return nil
	})
}

func (s *Service) setStatus(ctx context.Context, id, recipientID string, status Status, allow func(current Status) error) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var previous Status
	err := s.update(id, func(c *Campaign) error {
		r, ok := c.Recipient(recipientID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrRecipientNotFound, recipientID)
		}
		if allow != nil {
			if err := allow(r.Status); err != nil {
				return err
			}
		}
		previous = r.Status
		r.Status = status
		return nil
	})
	if err != nil {
		return err
	}

	client := ClientFromContext(ctx)
	logging.WithFields(ctx,
		"campaign_id", id,
		"recipient_id", recipientID,
		"ip", client.IP,
		"user_agent", client.UserAgent,
	).Info("recipient status changed", "from", previous.OrPending(), "to", status)
	return nil
}

// Links builds the tracking URLs embedded in a recipient's email.
func (s *Service) Links(campaignID, recipientID string) Links {
	base := s.opts.PublicBaseURL
	if base == "" {
		return Links{}
	}
	prefix := base + "/r/" + url.PathEscape(campaignID) + "/" + url.PathEscape(recipientID)
	return Links{
		RSVP:        prefix + "/rsvp",
		Unsubscribe: prefix + "/unsubscribe",
	}
}

// PruneIdle drops campaigns untouched for longer than the idle TTL and
// returns how many were removed.
func (s *Service) PruneIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.campaigns {
		if now.Sub(c.UpdatedAt) > s.opts.IdleTTL {
			delete(s.campaigns, id)
			removed++
		}
	}
	return removed
}

// CampaignCount returns the number of campaigns held in memory.
func (s *Service) CampaignCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.campaigns)
}

// UploadLimiterStatus returns the current upload limiter state.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight imports finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// update applies fn to a stored campaign under the write lock and bumps
// its UpdatedAt on success.
func (s *Service) update(id string, fn func(*Campaign) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCampaignNotFound, id)
	}
	if err := fn(c); err != nil {
		return err
	}
	c.UpdatedAt = s.now()
	return nil
}

func (s *Service) store(c *Campaign) {
	s.mu.Lock()
	s.campaigns[c.ID] = c
	s.mu.Unlock()
}
