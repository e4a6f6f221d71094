package vault

import (
	"testing"
	"time"
)

func TestSplitMount(t *testing.T) {
	cases := map[string][2]string{
		"kv/venuedesk":      {"kv", "venuedesk"},
		"kv/venuedesk/prod": {"kv", "venuedesk/prod"},
		"secret":            {"secret", ""},
	}
	for in, want := range cases {
		m, r := splitMount(in)
		if m != want[0] || r != want[1] {
			t.Errorf("splitMount(%q) = %q, %q", in, m, r)
		}
	}
}

func TestLookupHonoursExpiry(t *testing.T) {
	c := &Client{cache: map[string]cached{
		"kv/a#live":  {val: "x", exp: time.Now().Add(time.Minute)},
		"kv/a#stale": {val: "y", exp: time.Now().Add(-time.Minute)},
	}}
	if v, ok := c.lookup("kv/a#live"); !ok || v != "x" {
		t.Errorf("live entry = %q, %v", v, ok)
	}
	if _, ok := c.lookup("kv/a#stale"); ok {
		t.Errorf("stale entry should miss")
	}
}
