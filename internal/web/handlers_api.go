package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/invitespark/internal/core"
	"github.com/go-chi/chi/v5"
)

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Campaigns int                      `json:"campaigns"`
	CanSend   bool                     `json:"canSend"`
	Uploads   core.UploadLimiterStatus `json:"uploads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Campaigns: s.service.CampaignCount(),
		CanSend:   s.service.CanSend(),
		Uploads:   s.service.UploadLimiterStatus(),
	})
}

func (s *Server) handleAPIPlaceholders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"placeholders":    core.Placeholders,
		"statuses":        core.Statuses,
		"requiredHeaders": core.RequiredHeaders,
		"defaultTemplate": core.DefaultTemplate(),
	})
}

// DecodeResponse is the JSON form of a decoded CSV.
type DecodeResponse struct {
	Headers    []string          `json:"headers"`
	Recipients []core.Recipient  `json:"recipients"`
	Skipped    []core.RowSkipped `json:"skipped"`
}

// handleAPIDecode decodes a raw CSV request body without storing it.
func (s *Server) handleAPIDecode(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Upload.MaxFileSize
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, fmt.Errorf("%w: body exceeds %d bytes", core.ErrFileTooLarge, limit))
			return
		}
		s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	res, err := core.DecodeReport(string(data))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DecodeResponse{
		Headers:    res.Headers,
		Recipients: res.Recipients,
		Skipped:    res.Skipped,
	})
}

// EncodeRequest carries recipients to serialize.
type EncodeRequest struct {
	Recipients []core.Recipient `json:"recipients"`
}

func (s *Server) handleAPIEncode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sendCSV(w, exportFileName, core.Encode(req.Recipients))
}

// RenderRequest is a template plus optional recipient data.
type RenderRequest struct {
	Template  string          `json:"template"`
	Recipient *core.Recipient `json:"recipient,omitempty"`
}

// RenderResponse holds rendered output.
type RenderResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleAPIRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Output: core.Render(req.Template, req.Recipient)})
}

// ImportResponse is returned after a campaign upload.
type ImportResponse struct {
	CampaignID string            `json:"campaignId"`
	FileName   string            `json:"fileName"`
	Loaded     int               `json:"loaded"`
	Skipped    []core.RowSkipped `json:"skipped,omitempty"`
	Duration   string            `json:"duration"`
}

func (s *Server) handleAPICreateCampaign(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.uploadedFile(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer file.Close()

	res, err := s.service.ImportRecipients(WithRequestMetadata(r.Context(), r), name, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/campaigns/"+res.CampaignID)
	writeJSON(w, http.StatusCreated, ImportResponse{
		CampaignID: res.CampaignID,
		FileName:   res.FileName,
		Loaded:     res.Loaded,
		Skipped:    res.Skipped,
		Duration:   res.Duration.String(),
	})
}

func (s *Server) handleAPICampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.Campaign(campaignID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleAPIRecipients(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListRecipients(campaignID(r), r.URL.Query().Get("search"), parseIntParam(r, "page", 1))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Stats(campaignID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAPISaveTemplate(w http.ResponseWriter, r *http.Request) {
	var t core.Template
	if err := decodeJSON(w, r, &t); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.service.SaveTemplate(r.Context(), campaignID(r), t); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleAPIPreview(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.Preview(campaignID(r), r.URL.Query().Get("recipient"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAPISend(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.SendCampaign(r.Context(), campaignID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// StatusRequest sets a recipient's status.
type StatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleAPIUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	status, ok := core.ParseStatus(req.Status)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %q", core.ErrInvalidStatus, req.Status))
		return
	}

	rid := chi.URLParam(r, "recipientID")
	if err := s.service.UpdateStatus(WithRequestMetadata(r.Context(), r), campaignID(r), rid, status); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"recipientId": rid, "status": string(status)})
}
