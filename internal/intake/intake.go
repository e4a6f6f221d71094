// internal/intake/intake.go
//
// Submission intake pipeline.
//
// Context
// -------
// A venue user posts one multipart form.  Only the primary submission row
// is all-or-nothing; everything after it degrades per item and is reported
// back precisely instead of being dropped silently.
//
// Workflow
// --------
//  1. Check required fields, post type, dates, frequency, CTA, and the
//     length of the free-text fields.  Any failure is a 400 with nothing
//     written.
//  2. Resolve the venue; unknown → 400 "Invalid venue".
//  3. Check fields_json against its post-type variant.  Problems become
//     warnings; the stored bag is the variant's canonical encoding.
//  4. Insert the submission (status forced to "new").  Failure → 500.
//  5. Upload valid files one at a time under `<submission id>/…`.  Invalid
//     or failed files are listed in Result.Rejected.
//  6. Record attachment rows in one batch.  Names are clipped to the
//     column width.  If the batch fails, the uploaded objects are deleted.
//  7. Notify staff by e-mail.  Failures are logged and counted, never
//     returned.
//
// Notes
// -----
//   - Every I/O call is attempted exactly once; there are no retries.
//   - The submission row is never rolled back.  A cancelled request may
//     leave a submission with fewer attachments than were sent.
package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanizio/venuedesk/internal/attachment"
	"github.com/yanizio/venuedesk/internal/blob"
	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/message"
	"github.com/yanizio/venuedesk/internal/metrics"
	"github.com/yanizio/venuedesk/internal/postfields"
	"github.com/yanizio/venuedesk/internal/submission"
	"github.com/yanizio/venuedesk/internal/venue"
)

// Column limits for free text.  Custom texts are counted in characters,
// notes in bytes.
const (
	MaxCustomText = 255
	MaxNotesBytes = 65535
)

// Reasons reported for files that passed validation but were not kept.
const (
	ReasonUploadFailed = "Upload failed"
	ReasonNotRecorded  = "Could not record attachment"
)

/*──────────────────────────── collaborators ───────────────────────────────*/

// Venues resolves the venue named in the form.
type Venues interface {
	ByID(ctx context.Context, id string) (*venue.Venue, error)
}

// Submissions persists the primary row and its attachments.
type Submissions interface {
	Create(ctx context.Context, s *submission.Submission) error
	AddAttachments(ctx context.Context, rows []submission.Attachment) error
}

// Notify configures the staff e-mail.  A zero To disables it.
type Notify struct {
	From    string
	To      string
	BaseURL string
	Timeout time.Duration
}

/*──────────────────────────── request / result ────────────────────────────*/

// File is one uploaded part.
type File struct {
	Name string
	Type string
	Size int64
	Open func() (io.ReadSeekCloser, error)
}

// Request is the decoded intake form.
type Request struct {
	VenueID         string
	PostType        string
	RunStartDate    string
	RunEndDate      string
	UntilSoldOut    bool
	PostFrequency   string
	FrequencyCustom string
	CTA             string
	CTACustom       string
	FieldsJSON      string
	Notes           string
	Files           []File
}

// Rejection names one file that was not stored.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the success payload.
type Result struct {
	ID          string      `json:"id"`
	Attachments int         `json:"attachments"`
	Rejected    []Rejection `json:"rejected"`
	Warnings    []string    `json:"warnings"`
}

// Error is a request-level failure with the status the handler returns.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(msg string) *Error { return &Error{Status: http.StatusBadRequest, Message: msg} }

/*──────────────────────────── service ─────────────────────────────────────*/

// Service runs the pipeline.
type Service struct {
	venues Venues
	subs   Submissions
	blobs  blob.Store
	mail   message.Sender
	notify Notify

	newID func() string
	now   func() time.Time
}

func New(venues Venues, subs Submissions, blobs blob.Store, mail message.Sender, notify Notify) *Service {
	if mail == nil {
		mail = message.Disabled{}
	}
	if notify.Timeout <= 0 {
		notify.Timeout = 10 * time.Second
	}
	return &Service{
		venues: venues,
		subs:   subs,
		blobs:  blobs,
		mail:   mail,
		notify: notify,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Submit runs the whole pipeline for req.  Errors are always *Error.
func (s *Service) Submit(ctx context.Context, req *Request) (*Result, error) {
	log := logger.FromContext(ctx)

	// 1. Request shape
	sub, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	// 2. Venue
	ven, err := s.venues.ByID(ctx, sub.VenueID)
	if errors.Is(err, venue.ErrNotFound) {
		return nil, badRequest("Invalid venue")
	}
	if err != nil {
		log.Errorw("venue lookup failed", "venue_id", sub.VenueID, "err", err)
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to create submission", Err: err}
	}

	// 3. Fields
	res := &Result{Rejected: []Rejection{}, Warnings: []string{}}
	fields := s.checkFields(sub, req.FieldsJSON, res)

	// 4. Primary row
	if err := s.subs.Create(ctx, sub); err != nil {
		log.Errorw("submission insert failed", "venue_id", sub.VenueID, "err", err)
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to create submission", Err: err}
	}
	res.ID = sub.ID
	metrics.SubmissionsTotal.WithLabelValues(string(sub.PostType)).Inc()
	log.Infow("submission created", "id", sub.ID, "venue", ven.Slug, "post_type", sub.PostType, "files", len(req.Files))

	// 5–6. Attachments
	res.Attachments = s.storeFiles(ctx, sub.ID, req.Files, res)

	// 7. Notification
	s.sendNotice(ctx, sub, ven, fields, res)

	return res, nil
}

// prepare validates the scalar fields and builds the row to insert.
func (s *Service) prepare(req *Request) (*submission.Submission, error) {
	venueID := strings.TrimSpace(req.VenueID)
	postType := strings.TrimSpace(req.PostType)
	start := strings.TrimSpace(req.RunStartDate)
	if venueID == "" || postType == "" || start == "" {
		return nil, badRequest("Missing required fields")
	}

	pt := postfields.PostType(postType)
	if !pt.Valid() {
		return nil, badRequest(postfields.ErrUnknownPostType.Error())
	}

	startDate, err := time.Parse(submission.InputDate, start)
	if err != nil {
		return nil, badRequest("Invalid run start date")
	}
	var endDate sql.NullTime
	if end := strings.TrimSpace(req.RunEndDate); end != "" {
		t, err := time.Parse(submission.InputDate, end)
		if err != nil {
			return nil, badRequest("Invalid run end date")
		}
		if t.Before(startDate) {
			return nil, badRequest("Run end date is before the start date")
		}
		endDate = sql.NullTime{Time: t, Valid: true}
	}

	freq := submission.Frequency(strings.TrimSpace(req.PostFrequency))
	if freq == "" {
		freq = submission.FrequencyOnce
	}
	if !freq.Valid() {
		return nil, badRequest("Invalid post frequency")
	}
	cta := submission.CTA(strings.TrimSpace(req.CTA))
	if cta == "" {
		cta = submission.CTAWalkIns
	}
	if !cta.Valid() {
		return nil, badRequest("Invalid call to action")
	}

	switch {
	case utf8.RuneCountInString(strings.TrimSpace(req.FrequencyCustom)) > MaxCustomText:
		return nil, badRequest(fmt.Sprintf("Custom frequency must be %d characters or fewer", MaxCustomText))
	case utf8.RuneCountInString(strings.TrimSpace(req.CTACustom)) > MaxCustomText:
		return nil, badRequest(fmt.Sprintf("Custom call to action must be %d characters or fewer", MaxCustomText))
	case len(strings.TrimSpace(req.Notes)) > MaxNotesBytes:
		return nil, badRequest("Notes must be 64 KB or fewer")
	}

	return &submission.Submission{
		ID:              s.newID(),
		VenueID:         venueID,
		PostType:        pt,
		Status:          submission.StatusNew,
		RunStartDate:    startDate,
		RunEndDate:      endDate,
		UntilSoldOut:    req.UntilSoldOut,
		PostFrequency:   freq,
		FrequencyCustom: optional(req.FrequencyCustom),
		CTA:             cta,
		CTACustom:       optional(req.CTACustom),
		Notes:           optional(req.Notes),
		CreatedAt:       s.now().UTC(),
	}, nil
}

// checkFields fills sub.FieldsJSON and appends warnings to res.
func (s *Service) checkFields(sub *submission.Submission, raw string, res *Result) postfields.Fields {
	chk, err := postfields.Check(sub.PostType, []byte(raw))
	if err != nil {
		// Only ErrNotObject reaches here; the post type is already known.
		res.Warnings = append(res.Warnings, "Post details could not be read and were saved empty")
		chk, _ = postfields.Check(sub.PostType, nil)
	}
	res.Warnings = append(res.Warnings, chk.Problems...)
	for _, k := range chk.Unknown {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Ignored unknown field %q", k))
	}

	enc, err := json.Marshal(chk.Fields)
	if err != nil {
		enc = []byte("{}")
	}
	sub.FieldsJSON = enc
	return chk.Fields
}

// storeFiles uploads every acceptable file and records the rows.  It
// returns how many attachments were stored and recorded.  When the rows
// cannot be recorded the uploaded objects are removed again.
func (s *Service) storeFiles(ctx context.Context, submissionID string, files []File, res *Result) int {
	log := logger.FromContext(ctx)
	var (
		rows []submission.Attachment
		keys []string
	)

	for _, f := range files {
		if err := attachment.Check(f.Name, f.Type, f.Size); err != nil {
			var re *attachment.RejectError
			errors.As(err, &re)
			res.Rejected = append(res.Rejected, Rejection{Name: f.Name, Reason: re.Reason})
			metrics.AttachmentsRejectedTotal.WithLabelValues("validate").Inc()
			continue
		}

		key, url, err := s.upload(ctx, submissionID, f)
		if err != nil {
			log.Errorw("attachment upload failed", "submission", submissionID, "file", f.Name, "err", err)
			res.Rejected = append(res.Rejected, Rejection{Name: f.Name, Reason: ReasonUploadFailed})
			metrics.AttachmentsRejectedTotal.WithLabelValues("upload").Inc()
			continue
		}

		keys = append(keys, key)
		rows = append(rows, submission.Attachment{
			ID:           s.newID(),
			SubmissionID: submissionID,
			FileURL:      url,
			FileType:     attachment.ContentType(f.Type),
			FileSize:     f.Size,
			OriginalName: attachment.ClipName(f.Name),
			CreatedAt:    s.now().UTC(),
		})
	}

	if len(rows) == 0 {
		return 0
	}
	if err := s.subs.AddAttachments(ctx, rows); err != nil {
		log.Errorw("attachment rows not recorded", "submission", submissionID, "count", len(rows), "err", err)
		for _, r := range rows {
			res.Rejected = append(res.Rejected, Rejection{Name: r.OriginalName, Reason: ReasonNotRecorded})
		}
		metrics.AttachmentsRejectedTotal.WithLabelValues("record").Add(float64(len(rows)))
		s.discard(ctx, keys)
		return 0
	}
	metrics.AttachmentsStoredTotal.Add(float64(len(rows)))
	return len(rows)
}

// discard deletes objects whose rows were never written.  Failures are
// logged; the request has already been answered from the caller's view.
func (s *Service) discard(ctx context.Context, keys []string) {
	log := logger.FromContext(ctx)
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			log.Warnw("orphaned attachment not deleted", "key", key, "err", err)
		}
	}
}

func (s *Service) upload(ctx context.Context, submissionID string, f File) (key, url string, err error) {
	body, err := f.Open()
	if err != nil {
		return "", "", err
	}
	defer body.Close()
	key = attachment.StorageKey(submissionID, f.Name, f.Type)
	url, err = s.blobs.Put(ctx, key, attachment.ContentType(f.Type), body)
	return key, url, err
}

// sendNotice e-mails staff.  It never fails the request.
func (s *Service) sendNotice(ctx context.Context, sub *submission.Submission, ven *venue.Venue, fields postfields.Fields, res *Result) {
	log := logger.FromContext(ctx)
	if s.notify.To == "" {
		metrics.NotificationsTotal.WithLabelValues("disabled").Inc()
		return
	}

	n := message.SubmissionNotice{
		SubmissionID: sub.ID,
		VenueName:    ven.Name,
		PostType:     sub.PostType,
		RunStart:     sub.RunStartDate,
		UntilSoldOut: sub.UntilSoldOut,
		Frequency:    sub.FrequencyText(),
		Attachments:  res.Attachments,
		Rejected:     len(res.Rejected),
		BaseURL:      s.notify.BaseURL,
	}
	if fields != nil {
		n.Details = fields.Summary()
	}
	if sub.RunEndDate.Valid {
		end := sub.RunEndDate.Time
		n.RunEnd = &end
	}

	msg, err := n.Render(s.notify.From, s.notify.To)
	if err != nil {
		log.Errorw("notification render failed", "submission", sub.ID, "err", err)
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		return
	}

	// Own budget, still cancelled with the request.
	sendCtx, cancel := context.WithTimeout(ctx, s.notify.Timeout)
	defer cancel()

	switch err := s.mail.Send(sendCtx, msg); {
	case errors.Is(err, message.ErrDisabled):
		metrics.NotificationsTotal.WithLabelValues("disabled").Inc()
	case err != nil:
		log.Errorw("notification failed", "submission", sub.ID, "err", err)
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
	default:
		log.Debugw("notification sent", "submission", sub.ID, "to", s.notify.To)
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	}
}

func optional(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
