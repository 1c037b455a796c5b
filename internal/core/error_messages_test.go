package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/invitespark/internal/mail"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing headers",
			err:         &MissingHeadersError{Missing: []string{"email", "role"}},
			wantCode:    "VAL004",
			wantMessage: "The CSV is missing required columns: email, role",
		},
		{
			name:        "wrapped missing headers names the columns",
			err:         fmt.Errorf("decode: %w", &MissingHeadersError{Missing: []string{"achievement"}}),
			wantCode:    "VAL004",
			wantMessage: "The CSV is missing required columns: achievement",
		},
		{
			name:        "missing headers text without columns",
			err:         errors.New("missing required headers"),
			wantCode:    "VAL004",
			wantMessage: "The CSV is missing required columns",
		},
		{
			name:        "no recipients",
			err:         ErrNoRecipients,
			wantCode:    "VAL007",
			wantMessage: "No valid recipients were found in the file",
		},
		{
			name:        "wrapped file too large",
			err:         fmt.Errorf("%w: big.csv exceeds 10MB limit", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "not a csv",
			err:         ErrNotCSV,
			wantCode:    "FILE002",
			wantMessage: "Please upload a CSV file",
		},
		{
			name:        "read failure",
			err:         &FileReadError{FileName: "a.csv", Err: errors.New("unexpected EOF")},
			wantCode:    "FILE003",
			wantMessage: "The file could not be read",
		},
		{
			name:        "no file",
			err:         ErrNoFile,
			wantCode:    "FILE004",
			wantMessage: "No file was selected",
		},
		{
			name:        "campaign not found",
			err:         fmt.Errorf("%w: abc", ErrCampaignNotFound),
			wantCode:    "CMP001",
			wantMessage: "Campaign not found",
		},
		{
			name:        "recipient not found",
			err:         fmt.Errorf("%w: rec_1", ErrRecipientNotFound),
			wantCode:    "CMP002",
			wantMessage: "Recipient not found in this campaign",
		},
		{
			name:        "invalid status",
			err:         fmt.Errorf("%w: %q", ErrInvalidStatus, "bounced"),
			wantCode:    "CMP003",
			wantMessage: "Unknown recipient status",
		},
		{
			name:        "unsubscribed recipient",
			err:         fmt.Errorf("%w: rec_1", ErrUnsubscribed),
			wantCode:    "CMP004",
			wantMessage: "This address has unsubscribed from invitations",
		},
		{
			name:        "no mail backend",
			err:         ErrNoBackend,
			wantCode:    "MAIL001",
			wantMessage: "Sending email requires a mail backend",
		},
		{
			name:        "delivery failure",
			err:         errors.Join(mail.ErrFailedToSend, errors.New("dial tcp: refused")),
			wantCode:    "MAIL002",
			wantMessage: "Some invitations could not be delivered",
		},
		{
			name:        "upload limiter busy",
			err:         ErrTooManyUploads,
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other uploads",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("CAMPAIGN NOT FOUND"),
			wantCode:    "CMP001",
			wantMessage: "Campaign not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNoFile)

	expected := "No file was selected (Code: FILE004). Please select a CSV file to upload"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrCampaignNotFound, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
