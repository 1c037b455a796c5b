package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the service. Messages are phrased so that
// MapError can classify them.
var (
	ErrNoRecipients      = errors.New("no valid recipients found in the CSV file")
	ErrNotCSV            = errors.New("invalid csv: please upload a .csv file")
	ErrNoFile            = errors.New("no file provided")
	ErrFileTooLarge      = errors.New("file too large")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrUnsubscribed      = errors.New("recipient already unsubscribed")
	ErrNoBackend         = errors.New("backend functionality required: no mail provider configured")
)

// MissingHeadersError is returned when a CSV header row lacks required columns.
// Decoding is aborted and no partial result is produced.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return "missing required headers: " + strings.Join(e.Missing, ", ")
}

// FileReadError wraps an I/O failure while reading an uploaded file.
type FileReadError struct {
	FileName string
	Err      error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("error reading the file %q: %v", e.FileName, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// RowSkipped describes a data row the decoder excluded from its result.
// It is a diagnostic, never returned as the decode error.
type RowSkipped struct {
	Line   int    `json:"line"` // 1-indexed line in the source text
	Got    int    `json:"got"`  // number of fields found
	Want   int    `json:"want"` // number of header columns
	Reason string `json:"reason"`
}

func (r RowSkipped) Error() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
}
