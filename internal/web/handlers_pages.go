package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/invitespark/internal/core"
	"github.com/JonMunkholm/invitespark/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.Layout("Campaigns", templates.NavHome, templates.Home(s.service.Campaigns())))
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.Layout("Upload Recipients", templates.NavUpload,
		templates.UploadPage(s.cfg.Upload.MaxFileSize)))
}

// handleUpload imports a recipient CSV. HTMX requests get the result
// fragment; plain form posts are redirected to the new campaign.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
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

	if isHTMX(r) {
		render(w, r, http.StatusOK, templates.UploadResult(res))
		return
	}
	http.Redirect(w, r, "/campaigns/"+res.CampaignID, http.StatusSeeOther)
}

// handleCampaign shows the recipient table. HTMX search and paging
// requests receive only the table.
func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	search := r.URL.Query().Get("search")

	page, err := s.service.ListRecipients(id, search, parseIntParam(r, "page", 1))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if isHTMX(r) {
		render(w, r, http.StatusOK, templates.RecipientTable(id, page))
		return
	}

	c, err := s.service.Campaign(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render(w, r, http.StatusOK, templates.Layout("Campaign", templates.NavHome, templates.CampaignPage(templates.CampaignView{
		Campaign: c,
		Page:     page,
		CanSend:  s.service.CanSend(),
	})))
}

func (s *Server) handleTemplateEditor(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, r, r.URL.Query().Get("recipient"), false)
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, errBadRequest)
		return
	}

	t := core.Template{
		Subject: r.PostFormValue("subject"),
		Body:    r.PostFormValue("body"),
	}
	if err := s.service.SaveTemplate(r.Context(), campaignID(r), t); err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderEditor(w, r, r.PostFormValue("recipient"), true)
}

func (s *Server) renderEditor(w http.ResponseWriter, r *http.Request, recipientID string, saved bool) {
	id := campaignID(r)
	c, err := s.service.Campaign(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	preview, err := s.service.Preview(id, recipientID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	selected := recipientID
	if selected == "" && len(c.Recipients) > 0 {
		selected = c.Recipients[0].ID
	}

	render(w, r, http.StatusOK, templates.Layout("Email Template", templates.NavTemplate, templates.TemplateEditor(templates.EditorView{
		CampaignID: id,
		Template:   c.Template,
		Recipients: c.Recipients,
		SelectedID: selected,
		Preview:    preview,
		Saved:      saved,
	})))
}

// handleStandaloneTemplate previews a template without recipient data.
// Subject and body may be supplied as query parameters.
func (s *Server) handleStandaloneTemplate(w http.ResponseWriter, r *http.Request) {
	t := core.DefaultTemplate()
	q := r.URL.Query()
	if q.Has("subject") {
		t.Subject = q.Get("subject")
	}
	if q.Has("body") {
		t.Body = q.Get("body")
	}

	render(w, r, http.StatusOK, templates.Layout("Email Template", templates.NavTemplate, templates.TemplateEditor(templates.EditorView{
		Template: t,
		Preview:  t.Preview(nil),
	})))
}

func (s *Server) handleSampleAnalytics(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.Layout("Campaign Analytics", templates.NavAnalytics, templates.AnalyticsPage(templates.AnalyticsView{
		Stats: core.ComputeStats(core.SampleRecipients()),
	})))
}

func (s *Server) handleCampaignAnalytics(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	st, err := s.service.Stats(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render(w, r, http.StatusOK, templates.Layout("Campaign Analytics", templates.NavAnalytics, templates.AnalyticsPage(templates.AnalyticsView{
		CampaignID: id,
		Stats:      st,
	})))
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.SendCampaign(r.Context(), campaignID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if isHTMX(r) {
		render(w, r, http.StatusOK, templates.SendResult(res))
		return
	}
	render(w, r, http.StatusOK, templates.Layout("Send Campaign", templates.NavHome, templates.SendResult(res)))
}

// handleTrackPrompt shows the confirmation form for an emailed link. Link
// scanners that prefetch the URL do not change the recipient's status.
func (s *Server) handleTrackPrompt(status core.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.service.Campaign(campaignID(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		rid := chi.URLParam(r, "recipientID")
		if _, ok := c.Recipient(rid); !ok {
			s.fail(w, r, fmt.Errorf("%w: %s", core.ErrRecipientNotFound, rid))
			return
		}

		rsvp := status == core.StatusRSVP
		title := "Unsubscribe"
		if rsvp {
			title = "Confirm RSVP"
		}
		render(w, r, http.StatusOK, templates.Layout(title, "", templates.TrackingPrompt(rsvp, r.URL.Path)))
	}
}

// handleTrack records the recipient's confirmed answer.
func (s *Server) handleTrack(status core.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := WithRequestMetadata(r.Context(), r)
		err := s.service.RecordResponse(ctx, campaignID(r), chi.URLParam(r, "recipientID"), status)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		title := "Unsubscribed"
		if status == core.StatusRSVP {
			title = "RSVP Confirmed"
		}
		render(w, r, http.StatusOK, templates.Layout(title, "", templates.TrackingConfirmation(status == core.StatusRSVP)))
	}
}

func (s *Server) handleSampleCSV(w http.ResponseWriter, r *http.Request) {
	sendCSV(w, sampleFileName, core.SampleCSV())
}

func (s *Server) handleExportRecipients(w http.ResponseWriter, r *http.Request) {
	body, err := s.service.Export(campaignID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendCSV(w, exportFileName, body)
}

func (s *Server) handleExportCampaignData(w http.ResponseWriter, r *http.Request) {
	body, err := s.service.Export(campaignID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendCSV(w, campaignDataName, body)
}

func (s *Server) handleExportSampleData(w http.ResponseWriter, r *http.Request) {
	sendCSV(w, campaignDataName, core.Encode(core.SampleRecipients()))
}
