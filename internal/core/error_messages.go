package core

// error_messages.go turns technical errors into messages for the people
// uploading recipient lists and sending invitations.
//
// Codes by category:
//
//	VAL001-VAL099  recipient data problems (missing headers, bad rows)
//	FILE001-FILE099 uploaded file problems
//	CMP001-CMP099  campaign and recipient lookups, status changes
//	MAIL001-MAIL099 email delivery
//	UPL001-UPL099  upload throttling and request lifetime
//	RATE001        request throttling
//	ERR000         fallback; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns precede general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var missingHeadersMessage = UserMessage{
	Message: "The CSV is missing required columns",
	Action:  "Include name, email, organization, role and achievement columns. Download the sample CSV for the exact layout",
	Code:    "VAL004",
}

var errorPatterns = []errorPattern{
	// Recipient data
	{pattern: "missing required headers", msg: missingHeadersMessage},
	{
		pattern: "no valid recipients",
		msg: UserMessage{
			Message: "No valid recipients were found in the file",
			Action:  "Check that each row has a value for every column",
			Code:    "VAL007",
		},
	},
	{
		pattern: "empty required field",
		msg: UserMessage{
			Message: "A recipient row has an empty required field",
			Action:  "Fill in every required column for each recipient",
			Code:    "VAL003",
		},
	},

	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body and parameters",
			Code:    "VAL008",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the recipient list into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "Please upload a CSV file",
			Action:  "Save the recipient list as .csv and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "error reading the file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Try uploading the file again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},

	// Campaigns
	{
		pattern: "campaign not found",
		msg: UserMessage{
			Message: "Campaign not found",
			Action:  "The campaign may have expired. Upload the recipient list again",
			Code:    "CMP001",
		},
	},
	{
		pattern: "recipient not found",
		msg: UserMessage{
			Message: "Recipient not found in this campaign",
			Action:  "Refresh the recipient list and try again",
			Code:    "CMP002",
		},
	},
	{
		pattern: "invalid status",
		msg: UserMessage{
			Message: "Unknown recipient status",
			Action:  "Use one of: pending, sent, opened, clicked, rsvp, unsubscribed",
			Code:    "CMP003",
		},
	},
	{
		pattern: "already unsubscribed",
		msg: UserMessage{
			Message: "This address has unsubscribed from invitations",
			Action:  "Contact the organizers if you would like to attend",
			Code:    "CMP004",
		},
	},

	// Mail
	{
		pattern: "backend functionality required",
		msg: UserMessage{
			Message: "Sending email requires a mail backend",
			Action:  "Set MAIL_PROVIDER to dev or postmark and restart the server",
			Code:    "MAIL001",
		},
	},
	{
		pattern: "failed to send email",
		msg: UserMessage{
			Message: "Some invitations could not be delivered",
			Action:  "Check the mail provider status and send again; delivered recipients are not emailed twice",
			Code:    "MAIL002",
		},
	},

	// Uploads and request lifetime
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000; nil maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var missing *MissingHeadersError
	if errors.As(err, &missing) && len(missing.Missing) > 0 {
		msg := missingHeadersMessage
		msg.Message += ": " + strings.Join(missing.Missing, ", ")
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
