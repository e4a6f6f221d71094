package attachment

import (
	"regexp"
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name   string
		mime   string
		size   int64
		reason string
	}{
		{"a.jpg", "image/jpeg", 1024, ""},
		{"a.png", "image/png", MaxImageBytes, ""},
		{"a.webp", "image/webp; charset=binary", 10, ""},
		{"clip.mov", "video/quicktime", MaxVideoBytes, ""},
		{"a.gif", "image/gif", 10, "Invalid file type: image/gif. Allowed: JPG, PNG, WebP, MP4, MOV"},
		{"x", "", 10, "Invalid file type: unknown. Allowed: JPG, PNG, WebP, MP4, MOV"},
		{"big.jpg", "image/jpeg", MaxImageBytes + 1, "File too large: 50 MB. Max: 50 MB"},
		{"big.mp4", "video/mp4", 150 * MB, "File too large: 150 MB. Max: 100 MB"},
		{"empty.png", "image/png", 0, "File is empty"},
	}
	for _, tc := range cases {
		err := Check(tc.name, tc.mime, tc.size)
		if tc.reason == "" {
			if err != nil {
				t.Errorf("%s: unexpected %v", tc.name, err)
			}
			continue
		}
		re, ok := err.(*RejectError)
		if !ok {
			t.Errorf("%s: expected *RejectError, got %v", tc.name, err)
			continue
		}
		if re.Reason != tc.reason {
			t.Errorf("%s: reason = %q, want %q", tc.name, re.Reason, tc.reason)
		}
		if !IsReject(err) {
			t.Errorf("%s: IsReject false", tc.name)
		}
	}
}

func TestStorageKey(t *testing.T) {
	pat := regexp.MustCompile(`^sub-1/[0-9a-f-]{36}\.(jpg|mov|png)$`)
	for _, in := range [][2]string{
		{"Photo.JPG", "image/jpeg"},
		{"clip", "video/quicktime"},
		{"weird.p?g", "image/png"},
	} {
		k := StorageKey("sub-1", in[0], in[1])
		if !pat.MatchString(k) {
			t.Errorf("StorageKey(%q) = %q", in[0], k)
		}
	}
	if StorageKey("s", "a.jpg", "image/jpeg") == StorageKey("s", "a.jpg", "image/jpeg") {
		t.Errorf("keys must be unique per call")
	}
}

func TestHumanSize(t *testing.T) {
	cases := map[int64]string{
		0:          "0 Bytes",
		512:        "512 Bytes",
		1536:       "1.5 KB",
		50 * MB:    "50 MB",
		3 << 30:    "3 GB",
		12_345_678: "11.77 MB",
	}
	for in, want := range cases {
		if got := HumanSize(in); got != want {
			t.Errorf("HumanSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestClipName(t *testing.T) {
	if got := ClipName("poster.jpg"); got != "poster.jpg" {
		t.Fatalf("short name changed: %q", got)
	}

	long := strings.Repeat("é", 300) + ".jpeg"
	got := ClipName(long)
	if n := len([]rune(got)); n != MaxNameRunes {
		t.Fatalf("clipped to %d runes, want %d", n, MaxNameRunes)
	}
	if !strings.HasSuffix(got, ".jpeg") {
		t.Fatalf("extension lost: %q", got[len(got)-10:])
	}

	if got := ClipName(strings.Repeat("a", 260) + "." + strings.Repeat("b", 40)); len([]rune(got)) != MaxNameRunes {
		t.Fatalf("long extension not clipped: %d", len([]rune(got)))
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType(" Image/JPEG; name=x"); got != "image/jpeg" {
		t.Fatalf("ContentType = %q", got)
	}
}
