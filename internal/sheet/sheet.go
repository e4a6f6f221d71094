// Package sheet moves venue-desk data in and out of XLSX workbooks: the
// inbox export staff download from the admin list, and the venue roster
// intakectl imports.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yanizio/venuedesk/internal/submission"
	"github.com/yanizio/venuedesk/internal/venue"
)

const submissionsSheet = "Submissions"

var submissionHeader = []any{
	"Received", "Venue", "Post type", "Headline", "Status", "Run start",
	"Run end", "Frequency", "Call to action", "Attachments", "Notes", "Link",
}

// WriteSubmissions renders rows as a single-sheet workbook.  Links point at
// the admin detail page under baseURL.
func WriteSubmissions(w io.Writer, rows []submission.Summary, baseURL string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", submissionsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(submissionsSheet, "A1", &submissionHeader); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(submissionsSheet, 1, 1, bold); err != nil {
		return err
	}

	base := strings.TrimRight(baseURL, "/")
	for i := range rows {
		s := &rows[i]
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			s.CreatedAt.Format(submission.DateTimeFormat),
			s.VenueName,
			s.PostType.Label(),
			s.Headline(),
			s.Status.Label(),
			s.RunStartDate.Format(submission.DateFormat),
			s.EndText(),
			s.FrequencyText(),
			s.CTAText(),
			s.AttachmentCount,
			s.Notes.String,
			base + "/admin/submissions/" + s.ID,
		}
		if err := f.SetSheetRow(submissionsSheet, cell, &row); err != nil {
			return err
		}
	}

	for col, width := range map[string]float64{"A": 20, "B": 24, "C": 22, "D": 30, "K": 40, "L": 50} {
		if err := f.SetColWidth(submissionsSheet, col, col, width); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(submissionHeader), len(rows)+1)
	if err := f.AutoFilter(submissionsSheet, "A1:"+last, nil); err != nil {
		return err
	}
	return f.Write(w)
}

// ErrNoVenueColumn is returned when the roster has no "name" header.
var ErrNoVenueColumn = errors.New(`roster needs a "name" column`)

// ReadVenues reads a roster from the first sheet.  The header row names
// the columns (name, slug, pin; case-insensitive, any order).  Blank rows
// are skipped.  PIN cells formatted as numbers lose leading zeros, so
// short numeric PINs are padded back to four digits.
func ReadVenues(r io.Reader) ([]venue.CreateInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoVenueColumn
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoVenueColumn
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, ok := col["name"]
	if !ok {
		return nil, ErrNoVenueColumn
	}

	cell := func(row []string, key string) string {
		i, ok := col[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []venue.CreateInput
	for _, row := range rows[1:] {
		if nameIdx >= len(row) || strings.TrimSpace(row[nameIdx]) == "" {
			continue
		}
		pin := cell(row, "pin")
		if pin != "" && len(pin) < 4 && isDigits(pin) {
			pin = strings.Repeat("0", 4-len(pin)) + pin
		}
		out = append(out, venue.CreateInput{
			Name: cell(row, "name"),
			Slug: cell(row, "slug"),
			PIN:  pin,
		})
	}
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
