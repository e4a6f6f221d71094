package venue

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"The Royal Hotel!!":     "the-royal-hotel",
		"  Joe's   Bar & Grill": "joe-s-bar-grill",
		"Café 88":               "caf-88",
		"!!!":                   "",
		"already-a-slug":        "already-a-slug",
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMakeSlugTruncates(t *testing.T) {
	got := MakeSlug(strings.Repeat("ab ", 40))
	if len(got) > MaxSlugLen {
		t.Fatalf("slug too long: %d", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("trailing dash left after cut: %q", got)
	}
}

func TestValidSlug(t *testing.T) {
	for _, s := range []string{"royal", "the-royal-hotel", "bar-42"} {
		if !ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = false", s)
		}
	}
	for _, s := range []string{"", "Royal", "the royal", "bar_42", strings.Repeat("a", 51)} {
		if ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = true", s)
		}
	}
}
