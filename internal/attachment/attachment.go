// internal/attachment/attachment.go
//
// Attachment allow-list and size policy.
//
// Context
// -------
// Each uploaded file is checked before it reaches blob storage.  Images
// (JPEG, PNG, WebP) are capped at 50MB and videos (MP4, MOV) at 100MB.
// Violations come back as *RejectError whose Reason is shown to the venue
// user verbatim; the intake pipeline skips rejected files and keeps going.
//
// Storage keys are `<submission id>/<random>.<ext>` so every submission
// owns its own prefix in the bucket.

package attachment

import (
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	MB            = 1 << 20
	MaxImageBytes = 50 * MB
	MaxVideoBytes = 100 * MB

	// MaxNameRunes matches attachment.original_name.
	MaxNameRunes = 255
)

// allowed maps MIME type → default extension.
var allowed = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
}

const allowedList = "JPG, PNG, WebP, MP4, MOV"

// RejectError explains why one file was refused.
type RejectError struct {
	Name   string
	Reason string
}

func (e *RejectError) Error() string { return e.Name + ": " + e.Reason }

// IsReject reports whether err is a *RejectError.
func IsReject(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// Check validates one candidate by declared MIME type and byte size.
func Check(name, mimeType string, size int64) error {
	mimeType = normalise(mimeType)
	if _, ok := allowed[mimeType]; !ok {
		shown := mimeType
		if shown == "" {
			shown = "unknown"
		}
		return &RejectError{Name: name, Reason: fmt.Sprintf("Invalid file type: %s. Allowed: %s", shown, allowedList)}
	}
	if size <= 0 {
		return &RejectError{Name: name, Reason: "File is empty"}
	}
	if limit := Limit(mimeType); size > limit {
		return &RejectError{Name: name, Reason: fmt.Sprintf("File too large: %s. Max: %s", HumanSize(size), HumanSize(limit))}
	}
	return nil
}

// Limit returns the byte ceiling for mimeType.
func Limit(mimeType string) int64 {
	if IsVideo(mimeType) {
		return MaxVideoBytes
	}
	return MaxImageBytes
}

// Allowed reports whether mimeType is on the allow-list.
func Allowed(mimeType string) bool {
	_, ok := allowed[normalise(mimeType)]
	return ok
}

// AcceptAttr is the value for an <input type="file" accept="…">.
func AcceptAttr() string {
	return "image/jpeg,image/png,image/webp,video/mp4,video/quicktime"
}

func IsImage(mimeType string) bool { return strings.HasPrefix(normalise(mimeType), "image/") }
func IsVideo(mimeType string) bool { return strings.HasPrefix(normalise(mimeType), "video/") }

// StorageKey returns `<submissionID>/<random>.<ext>`.  The original
// extension is kept when it is plain alphanumeric; otherwise the MIME
// type's default is used.
func StorageKey(submissionID, originalName, mimeType string) string {
	return submissionID + "/" + uuid.NewString() + "." + extension(originalName, mimeType)
}

func extension(name, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext != "" && len(ext) <= 8 && isAlnum(ext) {
		return ext
	}
	if def, ok := allowed[normalise(mimeType)]; ok {
		return def
	}
	return "bin"
}

// HumanSize formats bytes as "0 Bytes", "12.5 KB", "50 MB".
func HumanSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	val := float64(n) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(val*100)/100, 'f', -1, 64) + " " + units[i]
}

// ContentType returns mimeType without parameters, lower-cased.  Files
// that passed Check always come back as one of the allow-listed types.
func ContentType(mimeType string) string { return normalise(mimeType) }

// ClipName shortens name to MaxNameRunes, keeping a short extension.
func ClipName(name string) string {
	r := []rune(name)
	if len(r) <= MaxNameRunes {
		return name
	}
	ext := []rune(path.Ext(name))
	if len(ext) > 16 {
		ext = nil
	}
	return string(r[:MaxNameRunes-len(ext)]) + string(ext)
}

func normalise(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
