package web

// errors.go turns service errors into responses.
//
// Every error is logged with its technical detail and request id, then
// mapped through core.MapError and rendered as an HTMX fragment, JSON, or
// plain text depending on the request.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/invitespark/internal/core"
	"github.com/JonMunkholm/invitespark/internal/logging"
	"github.com/JonMunkholm/invitespark/internal/mail"
	"github.com/JonMunkholm/invitespark/internal/web/templates"
)

// errBadRequest marks undecodable request bodies and parameters.
var errBadRequest = errors.New("invalid request body")

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// fail responds with the status code that fits err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, err, statusFor(err))
}

// respondError logs err and writes the user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"user_facing", core.IsUserFacing(err),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		respondErrorHTML(w, err, statusCode)
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		missing *core.MissingHeadersError
		readErr *core.FileReadError
	)
	switch {
	case errors.Is(err, core.ErrCampaignNotFound), errors.Is(err, core.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &missing), errors.Is(err, core.ErrNoRecipients):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotCSV), errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidStatus), errors.Is(err, errBadRequest),
		errors.As(err, &readErr):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnsubscribed):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNoBackend):
		return http.StatusNotImplemented
	case errors.Is(err, mail.ErrFailedToSend):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func respondErrorHTML(w http.ResponseWriter, err error, statusCode int) {
	http.Error(w, core.FormatUserError(err), statusCode)
}

// renderErrorPartial writes an HTMX error fragment. The layout configures
// htmx to swap error responses into the target.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error partial", "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client expects a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
