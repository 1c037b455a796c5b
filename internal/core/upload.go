package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/invitespark/internal/logging"
	"github.com/google/uuid"
)

// DefaultMaxFileSize is the upload size limit used when none is configured (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// utf8BOM is stripped from the start of uploaded files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportResult summarizes a recipient upload.
type ImportResult struct {
	CampaignID string        `json:"campaignId"`
	FileName   string        `json:"fileName"`
	Loaded     int           `json:"loaded"`
	Skipped    []RowSkipped  `json:"skipped,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ImportRecipients reads an uploaded CSV file, decodes it and stores the
// recipients as a new campaign.
//
// The file name must end in .csv; content is not sniffed. Failures are
// ErrNoFile, ErrNotCSV, ErrFileTooLarge, *FileReadError,
// *MissingHeadersError, ErrNoRecipients, or an upload limiter error.
func (s *Service) ImportRecipients(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	start := time.Now()

	if r == nil || fileName == "" {
		return nil, ErrNoFile
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".csv") {
		return nil, ErrNotCSV
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	data, err := readLimited(r, s.opts.MaxFileSize)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, fmt.Errorf("%w: %s exceeds %dMB limit", ErrFileTooLarge, fileName, s.opts.MaxFileSize/(1024*1024))
		}
		return nil, &FileReadError{FileName: fileName, Err: err}
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	res, err := DecodeReport(string(data))
	if err != nil {
		return nil, err
	}
	if len(res.Recipients) == 0 {
		return nil, ErrNoRecipients
	}

	now := s.now()
	c := &Campaign{
		ID:         uuid.NewString(),
		FileName:   fileName,
		CreatedAt:  now,
		UpdatedAt:  now,
		Template:   DefaultTemplate(),
		Recipients: res.Recipients,
	}
	s.store(c)

	result := &ImportResult{
		CampaignID: c.ID,
		FileName:   fileName,
		Loaded:     len(res.Recipients),
		Skipped:    res.Skipped,
		Duration:   time.Since(start),
	}

	logging.WithFields(ctx, "campaign_id", c.ID, "file", fileName).Info("recipients imported",
		"loaded", result.Loaded,
		"skipped", len(result.Skipped),
		"bytes", len(data),
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// readLimited reads all of r, failing with ErrFileTooLarge past max bytes.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
		} else {
			buf.WriteRune(r)
		}
		data = data[size:]
	}

	return buf.Bytes()
}
