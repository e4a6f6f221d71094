package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/venue"
)

const venueForm = "admin/venue"

// venueRow is one line of the venue table.
type venueRow struct {
	venue.Venue
	Link string
}

func (c *Component) handleVenues(w http.ResponseWriter, r *http.Request) {
	c.renderVenues(w, r, http.StatusOK, nil, nil)
}

// handleCreateVenue validates the form, then lets the service derive the
// slug and key.  Service-level rejections come back as field errors.
func (c *Component) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	data, err := form.HandleSubmit(venueForm, r)
	if err == nil {
		var v *venue.Venue
		v, err = c.venues.Create(r.Context(), venue.CreateInput{
			Name: form.String(data, "name"),
			Slug: form.String(data, "slug"),
			PIN:  form.String(data, "pin"),
		})
		if err == nil {
			http.Redirect(w, r, "/admin/venues?created="+v.ID, http.StatusSeeOther)
			return
		}
		err = asFormError(err)
	}

	if !form.IsValidationError(err) {
		c.serverError(w, r, "create venue", err)
		return
	}
	c.renderVenues(w, r, http.StatusUnprocessableEntity, form.FieldErrors(err), form.Prefill(r))
}

// asFormError turns the service's input errors into form errors so the
// page shows them next to the right field.
func asFormError(err error) error {
	var ie *venue.InputError
	switch {
	case errors.As(err, &ie):
		return form.Invalid(ie.Field, ie.Message)
	case errors.Is(err, venue.ErrSlugTaken):
		return form.Invalid("slug", venue.ErrSlugTaken.Error())
	}
	return err
}

func (c *Component) handleDeleteVenue(w http.ResponseWriter, r *http.Request) {
	if !form.VerifyToken(r.PostFormValue("csrf_token")) {
		http.Error(w, "Security token invalid.  Please refresh and try again.", http.StatusForbidden)
		return
	}

	id := chi.URLParam(r, "id")
	err := c.venues.Delete(r.Context(), id)
	if errors.Is(err, venue.ErrNotFound) {
		c.notFound(w, r)
		return
	}
	if err != nil {
		c.serverError(w, r, "delete venue", err)
		return
	}

	http.Redirect(w, r, "/admin/venues", http.StatusSeeOther)
}

func (c *Component) renderVenues(w http.ResponseWriter, r *http.Request, status int, errs []form.ErrorField, prefill map[string]string) {
	list, err := c.venues.List(r.Context())
	if err != nil {
		c.serverError(w, r, "list venues", err)
		return
	}
	html, err := form.RenderForm(venueForm, form.RenderOptions{Errors: errs, Prefill: prefill})
	if err != nil {
		c.serverError(w, r, "render venue form", err)
		return
	}

	created := r.URL.Query().Get("created")
	rows := make([]venueRow, 0, len(list))
	var fresh *venueRow
	for i := range list {
		rows = append(rows, venueRow{Venue: list[i], Link: list[i].Link(c.baseURL)})
	}
	for i := range rows {
		if rows[i].ID == created {
			fresh = &rows[i]
		}
	}

	c.render(w, r, status, "venues", "Venues", map[string]any{
		"Rows":    rows,
		"Created": fresh,
		"Form":    html,
	})
}
