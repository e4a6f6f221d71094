package message

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yanizio/venuedesk/internal/postfields"
)

// SubmissionNotice is everything the staff e-mail shows.
type SubmissionNotice struct {
	SubmissionID string
	VenueName    string
	PostType     postfields.PostType
	Details      []postfields.Line
	RunStart     time.Time
	RunEnd       *time.Time
	UntilSoldOut bool
	Frequency    string
	Attachments  int
	Rejected     int
	BaseURL      string
}

// Link is the admin detail URL for the submission.
func (n SubmissionNotice) Link() string {
	return strings.TrimRight(n.BaseURL, "/") + "/admin/submissions/" + n.SubmissionID
}

// Subject reads "[The Royal Hotel] New Drink Special Request".
func (n SubmissionNotice) Subject() string {
	return fmt.Sprintf("[%s] New %s Request", n.VenueName, n.PostType.Label())
}

var noticeTmpl = template.Must(template.New("notice").Funcs(template.FuncMap{
	"date":   func(t time.Time) string { return t.Format("2 Jan 2006") },
	"plural": func(n int) string { return map[bool]string{true: "", false: "s"}[n == 1] },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"></head>
<body style="font-family:-apple-system,Segoe UI,Roboto,sans-serif;line-height:1.6;color:#1a1a1a">
<div style="max-width:600px;margin:0 auto;padding:20px">
  <h1 style="font-size:20px;margin:0">New Submission Received</h1>
  <p style="margin:4px 0 16px">{{.VenueName}} &middot; <strong>{{.PostType.Label}}</strong></p>
  <h3 style="font-size:14px;color:#64748b;text-transform:uppercase">Details</h3>
  {{range .Details}}<p style="margin:4px 0"><strong>{{.Label}}:</strong> {{.Value}}</p>
  {{end}}
  <h3 style="font-size:14px;color:#64748b;text-transform:uppercase">Schedule</h3>
  <p style="margin:4px 0"><strong>Start Date:</strong> {{date .RunStart}}</p>
  {{if .UntilSoldOut}}<p style="margin:4px 0"><strong>End Date:</strong> Until sold out</p>
  {{else if .RunEnd}}<p style="margin:4px 0"><strong>End Date:</strong> {{date .RunEnd}}</p>
  {{end}}<p style="margin:4px 0"><strong>Frequency:</strong> {{.Frequency}}</p>
  <p style="margin:4px 0"><strong>Attachments:</strong> {{.Attachments}} file{{plural .Attachments}}{{if .Rejected}} ({{.Rejected}} rejected){{end}}</p>
  <p style="margin-top:24px"><a href="{{.Link}}" style="background:#0f172a;color:#fff;padding:12px 24px;border-radius:8px;text-decoration:none">View Submission</a></p>
  <p style="font-size:12px;color:#64748b;border-top:1px solid #e2e8f0;padding-top:16px">This email was sent from your Social Media Request system.</p>
</div>
</body></html>`))

// Render builds the Email for n addressed to the given recipients.
func (n SubmissionNotice) Render(from string, to ...string) (Email, error) {
	var buf bytes.Buffer
	if err := noticeTmpl.Execute(&buf, n); err != nil {
		return Email{}, err
	}

	var txt strings.Builder
	fmt.Fprintf(&txt, "New %s request from %s\n\n", n.PostType.Label(), n.VenueName)
	for _, l := range n.Details {
		fmt.Fprintf(&txt, "%s: %s\n", l.Label, l.Value)
	}
	fmt.Fprintf(&txt, "\nStart: %s\nAttachments: %d\n\n%s\n", n.RunStart.Format("2 Jan 2006"), n.Attachments, n.Link())

	return Email{
		From:    from,
		To:      to,
		Subject: n.Subject(),
		HTML:    buf.String(),
		Text:    txt.String(),
	}, nil
}
