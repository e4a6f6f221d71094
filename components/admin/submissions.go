package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/postfields"
	"github.com/yanizio/venuedesk/internal/sheet"
	"github.com/yanizio/venuedesk/internal/submission"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

/*──────────────────────────── inbox ────────────────────────────────────────*/

func (c *Component) handleList(w http.ResponseWriter, r *http.Request) {
	f := submission.ParseFilter(r.URL.Query())
	rows, err := c.subs.List(r.Context(), f)
	if err != nil {
		c.serverError(w, r, "list submissions", err)
		return
	}
	venues, err := c.venues.List(r.Context())
	if err != nil {
		c.serverError(w, r, "list venues", err)
		return
	}

	export := "/admin/submissions/export.xlsx"
	if q := f.Values().Encode(); q != "" {
		export += "?" + q
	}

	c.render(w, r, http.StatusOK, "submissions", "Submissions", map[string]any{
		"Rows":      rows,
		"Filter":    f,
		"Statuses":  submission.Statuses,
		"Types":     postfields.Types,
		"Venues":    venues,
		"ExportURL": template.URL(export),
	})
}

func (c *Component) handleDetail(w http.ResponseWriter, r *http.Request) {
	d, err := c.subs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, submission.ErrNotFound) {
		c.notFound(w, r)
		return
	}
	if err != nil {
		c.serverError(w, r, "load submission", err)
		return
	}

	c.render(w, r, http.StatusOK, "detail", d.Headline(), map[string]any{
		"S":        d,
		"Statuses": submission.Statuses,
	})
}

// handleStatus changes one submission's status and returns to its page.
// Any canonical status may follow any other.
func (c *Component) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !form.VerifyToken(r.PostFormValue("csrf_token")) {
		http.Error(w, "Security token invalid.  Please refresh and try again.", http.StatusForbidden)
		return
	}

	status := submission.Status(strings.TrimSpace(r.PostFormValue("status")))
	err := c.subs.UpdateStatus(r.Context(), id, status)
	switch {
	case errors.Is(err, submission.ErrInvalidStatus):
		http.Error(w, submission.ErrInvalidStatus.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, submission.ErrNotFound):
		c.notFound(w, r)
		return
	case err != nil:
		c.serverError(w, r, "update status", err)
		return
	}

	logger.FromContext(r.Context()).Infow("submission status changed", "id", id, "status", status)
	http.Redirect(w, r, "/admin/submissions/"+id, http.StatusSeeOther)
}

/*──────────────────────────── export & API ─────────────────────────────────*/

func (c *Component) handleExport(w http.ResponseWriter, r *http.Request) {
	rows, err := c.subs.List(r.Context(), submission.ParseFilter(r.URL.Query()))
	if err != nil {
		c.serverError(w, r, "export submissions", err)
		return
	}

	var buf bytes.Buffer
	if err := sheet.WriteSubmissions(&buf, rows, c.baseURL); err != nil {
		c.serverError(w, r, "write workbook", err)
		return
	}

	name := "submissions-" + time.Now().Format(submission.InputDate) + ".xlsx"
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// apiSubmission is the JSON shape of one inbox row.
type apiSubmission struct {
	ID           string              `json:"id"`
	VenueID      string              `json:"venue_id"`
	VenueName    string              `json:"venue_name"`
	PostType     postfields.PostType `json:"post_type"`
	Status       submission.Status   `json:"status"`
	Headline     string              `json:"headline"`
	RunStartDate string              `json:"run_start_date"`
	RunEndDate   *string             `json:"run_end_date"`
	UntilSoldOut bool                `json:"until_sold_out"`
	Frequency    string              `json:"frequency"`
	CTA          string              `json:"cta"`
	Fields       json.RawMessage     `json:"fields"`
	Notes        string              `json:"notes,omitempty"`
	Attachments  int                 `json:"attachments"`
	CreatedAt    time.Time           `json:"created_at"`
	URL          string              `json:"url"`
}

func (c *Component) handleAPIList(w http.ResponseWriter, r *http.Request) {
	rows, err := c.subs.List(r.Context(), submission.ParseFilter(r.URL.Query()))
	if err != nil {
		logger.FromContext(r.Context()).Errorw("api list submissions failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list submissions"})
		return
	}

	base := strings.TrimRight(c.baseURL, "/")
	out := make([]apiSubmission, 0, len(rows))
	for i := range rows {
		s := &rows[i]
		item := apiSubmission{
			ID:           s.ID,
			VenueID:      s.VenueID,
			VenueName:    s.VenueName,
			PostType:     s.PostType,
			Status:       s.Status,
			Headline:     s.Headline(),
			RunStartDate: s.RunStartDate.Format(submission.InputDate),
			UntilSoldOut: s.UntilSoldOut,
			Frequency:    s.FrequencyText(),
			CTA:          s.CTAText(),
			Fields:       s.FieldsJSON,
			Notes:        s.Notes.String,
			Attachments:  s.AttachmentCount,
			CreatedAt:    s.CreatedAt,
			URL:          base + "/admin/submissions/" + s.ID,
		}
		if s.RunEndDate.Valid {
			end := s.RunEndDate.Time.Format(submission.InputDate)
			item.RunEndDate = &end
		}
		if len(item.Fields) == 0 {
			item.Fields = json.RawMessage(`{}`)
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
