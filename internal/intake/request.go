package intake

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
)

// FilePrefix marks multipart parts that carry attachments.
const FilePrefix = "file_"

// ParseRequest decodes the multipart intake form.  memLimit bounds the
// bytes held in memory; larger parts spill to temporary files that the
// caller removes with r.MultipartForm.RemoveAll.
func ParseRequest(r *http.Request, memLimit int64) (*Request, error) {
	if err := r.ParseMultipartForm(memLimit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, &Error{Status: http.StatusRequestEntityTooLarge, Message: "Request too large", Err: err}
		}
		return nil, &Error{Status: http.StatusBadRequest, Message: "Invalid form data", Err: err}
	}

	form := r.MultipartForm
	return &Request{
		VenueID:         formValue(form, "venue_id"),
		PostType:        formValue(form, "post_type"),
		RunStartDate:    formValue(form, "run_start_date"),
		RunEndDate:      formValue(form, "run_end_date"),
		UntilSoldOut:    formValue(form, "until_sold_out") == "true",
		PostFrequency:   formValue(form, "post_frequency"),
		FrequencyCustom: formValue(form, "frequency_custom"),
		CTA:             formValue(form, "cta"),
		CTACustom:       formValue(form, "cta_custom"),
		FieldsJSON:      formValue(form, "fields_json"),
		Notes:           formValue(form, "notes"),
		Files:           files(form),
	}, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// files lists every file_ part in key order, with "file_2" before
// "file_10".
func files(form *multipart.Form) []File {
	keys := make([]string, 0, len(form.File))
	for k := range form.File {
		if strings.HasPrefix(k, FilePrefix) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	var out []File
	for _, k := range keys {
		for _, fh := range form.File[k] {
			fh := fh
			out = append(out, File{
				Name: fh.Filename,
				Type: fh.Header.Get("Content-Type"),
				Size: fh.Size,
				Open: func() (io.ReadSeekCloser, error) { return fh.Open() },
			})
		}
	}
	return out
}
