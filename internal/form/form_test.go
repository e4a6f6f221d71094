package form

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

const venueYAML = `
id: test/venue
submit: Create
fields:
  - name: name
    label: Venue name
    type: text
    required: true
    maxlength: 10
  - name: slug
    label: Slug
    type: text
    pattern: "[a-z0-9-]+"
    error: Lowercase letters, numbers, and hyphens only
  - name: email
    label: Contact
    type: email
  - name: tags
    label: Tags
    type: tags
  - name: pin
    label: PIN
    type: password
  - name: ok
    label: Subject to availability
    type: checkbox
`

func registerTestForms(t *testing.T) {
	t.Helper()
	fsys := fstest.MapFS{
		"forms/venue.yaml": {Data: []byte(venueYAML)},
		"forms/README.md":  {Data: []byte("ignored")},
	}
	if err := RegisterFS(fsys, "forms"); err != nil {
		t.Fatalf("RegisterFS: %v", err)
	}
}

func token(t *testing.T) string {
	t.Helper()
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func TestCSRFRoundTrip(t *testing.T) {
	tok := token(t)
	if !VerifyToken(tok) {
		t.Fatal("fresh token rejected")
	}
	tampered := []byte(tok)
	tampered[len(tampered)-2] ^= 1
	if VerifyToken(string(tampered)) {
		t.Fatal("tampered token accepted")
	}
	if VerifyToken("short") {
		t.Fatal("garbage accepted")
	}
}

func TestCSRFExpires(t *testing.T) {
	tok := token(t)
	defer func() { now = time.Now }()
	now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	if VerifyToken(tok) {
		t.Fatal("expired token accepted")
	}
}

func TestSetSecretRejectsWeakKey(t *testing.T) {
	if err := SetSecret("c2hvcnQ"); err != ErrWeakKey {
		t.Fatalf("want ErrWeakKey, got %v", err)
	}
	strong := strings.Repeat("A", 43) // 32 zero bytes
	if err := SetSecret(strong); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	if !VerifyToken(token(t)) {
		t.Fatal("token under installed key rejected")
	}
}

func TestParseFormDefRejectsBadFields(t *testing.T) {
	cases := map[string]string{
		"no id":     "fields: [{name: a, label: A, type: text}]",
		"no fields": "id: x",
		"bad type":  "id: x\nfields: [{name: a, label: A, type: colour}]",
		"dup":       "id: x\nfields: [{name: a, label: A, type: text}, {name: a, label: B, type: text}]",
		"regex":     "id: x\nfields: [{name: a, label: A, type: text, pattern: '('}]",
		"select":    "id: x\nfields: [{name: a, label: A, type: select}]",
	}
	for name, doc := range cases {
		if _, err := ParseFormDef([]byte(doc), name); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestValidateForm(t *testing.T) {
	registerTestForms(t)

	clean, errs := ValidateForm("test/venue", url.Values{
		"csrf_token": {token(t)},
		"name":       {"  Royal  "},
		"slug":       {"the-royal"},
		"tags":       {"gf, vegan,,"},
		"ok":         {"true"},
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if String(clean, "name") != "Royal" {
		t.Fatalf("name not trimmed: %q", clean["name"])
	}
	if tags := clean["tags"].([]string); len(tags) != 2 || tags[1] != "vegan" {
		t.Fatalf("tags = %v", tags)
	}
	if clean["ok"] != true {
		t.Fatal("checkbox lost")
	}

	_, errs = ValidateForm("test/venue", url.Values{
		"csrf_token": {token(t)},
		"name":       {"far too long a name"},
		"slug":       {"Bad Slug"},
		"email":      {"not-an-email"},
	})
	got := map[string]string{}
	for _, e := range errs {
		got[e.Name] = e.Message
	}
	if got["slug"] != "Lowercase letters, numbers, and hyphens only" {
		t.Errorf("slug msg = %q", got["slug"])
	}
	if got["name"] == "" || got["email"] == "" {
		t.Errorf("missing errors: %+v", errs)
	}
}

func TestValidateFormNeedsToken(t *testing.T) {
	registerTestForms(t)
	_, errs := ValidateForm("test/venue", url.Values{"name": {"Royal"}})
	if len(errs) != 1 || errs[0].Name != "" {
		t.Fatalf("expected one form-level error, got %+v", errs)
	}
}

func TestRenderForm(t *testing.T) {
	registerTestForms(t)
	out, err := RenderForm("test/venue", RenderOptions{
		Prefill: map[string]string{"name": `<b>Royal</b>`, "pin": "1234"},
		Errors:  []ErrorField{{"slug", "Slug taken"}, {"", "Try again"}},
	})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`value="&lt;b&gt;Royal&lt;/b&gt;"`,
		`maxlength="10"`,
		`Slug taken`,
		`<p class="form-error" role="alert">Try again</p>`,
		`name="csrf_token"`,
		`data-list="true"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(html, `value="1234"`) {
		t.Error("password was prefilled")
	}

	out, _ = RenderForm("test/venue", RenderOptions{Prefix: "x-", OmitToken: true})
	if strings.Contains(string(out), "csrf_token") || !strings.Contains(string(out), `id="fld-x-name"`) {
		t.Error("prefix / omit token not honoured")
	}
}

func TestHandleSubmit(t *testing.T) {
	registerTestForms(t)
	body := url.Values{"csrf_token": {token(t)}, "slug": {"ok"}, "pin": {"9999"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := HandleSubmit("test/venue", r)
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fe := FieldErrors(err); len(fe) != 1 || fe[0].Name != "name" {
		t.Fatalf("field errors = %+v", fe)
	}
	pre := Prefill(r)
	if pre["slug"] != "ok" || pre["pin"] != "" || pre["csrf_token"] != "" {
		t.Fatalf("prefill = %v", pre)
	}
	if FieldErrors(Invalid("slug", "taken"))[0].Message != "taken" {
		t.Fatal("Invalid lost its message")
	}
}
