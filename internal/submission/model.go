// internal/submission/model.go
//
// Submission aggregate and its enums.
//
// Context
// -------
// A submission is one post request from a venue: a post type, a run window,
// a posting frequency, a call to action, the post-type fields bag, free
// notes, and zero or more attachments.  Staff triage submissions by moving
// them through Status.
//
// Notes
// -----
//   - Status has one canonical vocabulary.  Any status may follow any other.
//   - fields_json is stored in the canonical encoding of its postfields
//     variant; Fields() decodes it back into that variant.
package submission

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/yanizio/venuedesk/internal/attachment"
	"github.com/yanizio/venuedesk/internal/postfields"
)

var (
	ErrNotFound      = errors.New("submission not found")
	ErrInvalidStatus = errors.New("Invalid status")
)

/*──────────────────────────── status ──────────────────────────────────────*/

// Status is the triage state.
type Status string

const (
	StatusNew       Status = "new"
	StatusNeedsInfo Status = "needs_info"
	StatusReady     Status = "ready"
	StatusArchived  Status = "archived"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusNew, StatusNeedsInfo, StatusReady, StatusArchived}

var statusLabels = map[Status]string{
	StatusNew:       "New",
	StatusNeedsInfo: "Needs Info",
	StatusReady:     "Ready",
	StatusArchived:  "Archived",
}

func (s Status) Valid() bool { _, ok := statusLabels[s]; return ok }

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

/*──────────────────────────── frequency ───────────────────────────────────*/

type Frequency string

const (
	FrequencyOnce   Frequency = "once"
	FrequencyTwice  Frequency = "twice"
	FrequencyDaily  Frequency = "daily"
	FrequencyCustom Frequency = "custom"
)

var Frequencies = []Frequency{FrequencyOnce, FrequencyTwice, FrequencyDaily, FrequencyCustom}

var frequencyLabels = map[Frequency]string{
	FrequencyOnce:   "Post once",
	FrequencyTwice:  "Post twice",
	FrequencyDaily:  "Post daily",
	FrequencyCustom: "Custom schedule",
}

func (f Frequency) Valid() bool { _, ok := frequencyLabels[f]; return ok }

func (f Frequency) Label() string {
	if l, ok := frequencyLabels[f]; ok {
		return l
	}
	return string(f)
}

/*──────────────────────────── call to action ──────────────────────────────*/

type CTA string

const (
	CTABook       CTA = "book"
	CTAWalkIns    CTA = "walk_ins"
	CTAOrderAtBar CTA = "order_at_bar"
	CTACall       CTA = "call"
	CTABuyTickets CTA = "buy_tickets"
	CTAOther      CTA = "other"
)

var CTAs = []CTA{CTABook, CTAWalkIns, CTAOrderAtBar, CTACall, CTABuyTickets, CTAOther}

var ctaLabels = map[CTA]string{
	CTABook:       "Book a table",
	CTAWalkIns:    "Walk-ins welcome",
	CTAOrderAtBar: "Order at bar",
	CTACall:       "Call to enquire",
	CTABuyTickets: "Buy tickets",
	CTAOther:      "Other",
}

func (c CTA) Valid() bool { _, ok := ctaLabels[c]; return ok }

func (c CTA) Label() string {
	if l, ok := ctaLabels[c]; ok {
		return l
	}
	return string(c)
}

/*──────────────────────────── rows ────────────────────────────────────────*/

// Submission mirrors one `submission` row.
type Submission struct {
	ID              string              `db:"id"`
	VenueID         string              `db:"venue_id"`
	PostType        postfields.PostType `db:"post_type"`
	Status          Status              `db:"status"`
	RunStartDate    time.Time           `db:"run_start_date"`
	RunEndDate      sql.NullTime        `db:"run_end_date"`
	UntilSoldOut    bool                `db:"until_sold_out"`
	PostFrequency   Frequency           `db:"post_frequency"`
	FrequencyCustom sql.NullString      `db:"frequency_custom"`
	CTA             CTA                 `db:"cta"`
	CTACustom       sql.NullString      `db:"cta_custom"`
	FieldsJSON      json.RawMessage     `db:"fields_json"`
	Notes           sql.NullString      `db:"notes"`
	CreatedAt       time.Time           `db:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at"`
}

// FrequencyText is the schedule line staff read: the custom text for a
// custom frequency, the label otherwise.
func (s *Submission) FrequencyText() string {
	if s.PostFrequency == FrequencyCustom {
		if t := strings.TrimSpace(s.FrequencyCustom.String); t != "" {
			return t
		}
		return "Custom"
	}
	return s.PostFrequency.Label()
}

// CTAText mirrors FrequencyText for the call to action.
func (s *Submission) CTAText() string {
	if s.CTA == CTAOther {
		if t := strings.TrimSpace(s.CTACustom.String); t != "" {
			return t
		}
		return "Other"
	}
	return s.CTA.Label()
}

// EndText is "Until sold out", the end date, or "".
func (s *Submission) EndText() string {
	switch {
	case s.UntilSoldOut:
		return "Until sold out"
	case s.RunEndDate.Valid:
		return s.RunEndDate.Time.Format(DateFormat)
	}
	return ""
}

// Fields decodes the stored bag into its post-type variant.
func (s *Submission) Fields() (postfields.Fields, error) {
	return postfields.Decode(s.PostType, s.FieldsJSON)
}

// Entries is the labelled field list for the detail view.  A bag that no
// longer decodes yields nil.
func (s *Submission) Entries() []postfields.Entry {
	f, err := s.Fields()
	if err != nil {
		return nil
	}
	return postfields.Entries(f)
}

// Headline is the variant's primary name, or the post-type label.
func (s *Submission) Headline() string {
	if f, err := s.Fields(); err == nil && f.Headline() != "" {
		return f.Headline()
	}
	return s.PostType.Label()
}

// Summary is a list row: the submission plus its venue name and
// attachment count.
type Summary struct {
	Submission
	VenueName       string `db:"venue_name"`
	AttachmentCount int    `db:"attachment_count"`
}

// Attachment mirrors one `attachment` row.
type Attachment struct {
	ID           string    `db:"id"            json:"id"`
	SubmissionID string    `db:"submission_id" json:"submission_id"`
	FileURL      string    `db:"file_url"      json:"file_url"`
	FileType     string    `db:"file_type"     json:"file_type"`
	FileSize     int64     `db:"file_size"     json:"file_size"`
	OriginalName string    `db:"original_name" json:"original_name"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

func (a Attachment) IsImage() bool     { return attachment.IsImage(a.FileType) }
func (a Attachment) IsVideo() bool     { return attachment.IsVideo(a.FileType) }
func (a Attachment) HumanSize() string { return attachment.HumanSize(a.FileSize) }

// Detail is one submission with its venue and attachments joined.
type Detail struct {
	Submission
	VenueName   string `db:"venue_name"`
	VenueSlug   string `db:"venue_slug"`
	Attachments []Attachment
}

// Counts feeds the dashboard tiles.
type Counts struct {
	Total int `db:"total"`
	New   int `db:"new_count"`
	Ready int `db:"ready_count"`
}

// Display formats shared by views, e-mail, and export.
const (
	DateFormat     = "2 Jan 2006"
	DateTimeFormat = "2 Jan 2006, 3:04 pm"
	InputDate      = "2006-01-02"
)
