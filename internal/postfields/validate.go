package postfields

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownPostType is returned for a tag outside Types.
	ErrUnknownPostType = errors.New("Invalid post type")
	// ErrNotObject is returned when the bag is not a JSON object.
	ErrNotObject = errors.New("fields must be a JSON object")
)

var v = validator.New()

// ValidationError carries one message per offending field, in declaration
// order.  Error joins them with ", ".
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, ", ") }

// Result is the outcome of checking one bag against its variant.
type Result struct {
	Fields   Fields   // populated record, best effort
	Problems []string // per-field messages
	Unknown  []string // keys that are not part of the variant, sorted
}

// Err returns nil or a *ValidationError built from Problems.
func (r *Result) Err() error {
	if len(r.Problems) == 0 {
		return nil
	}
	return &ValidationError{Messages: r.Problems}
}

// Validate decodes raw into the variant for t and applies its rules.  The
// returned Fields is usable only when err is nil.
func Validate(t PostType, raw []byte) (Fields, error) {
	res, err := Check(t, raw)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Fields, nil
}

// Check decodes raw into the variant for t, collecting type mismatches and
// rule failures instead of stopping at the first one.  Empty input counts
// as an empty object.  The only hard errors are ErrUnknownPostType and
// ErrNotObject.
func Check(t PostType, raw []byte) (*Result, error) {
	rec := newRecord(t)
	if rec == nil {
		return nil, ErrUnknownPostType
	}

	bag := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &bag); err != nil {
			return nil, ErrNotObject
		}
	}

	rv := reflect.ValueOf(rec).Elem()
	rt := rv.Type()
	msgs := make(map[string]string, rt.NumField())
	known := make(map[string]struct{}, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		key := jsonKey(sf)
		known[key] = struct{}{}

		val, ok := bag[key]
		if !ok || bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(val, rv.Field(i).Addr().Interface()); err != nil {
			rv.Field(i).Set(reflect.Zero(sf.Type))
			msgs[sf.Name] = typeMessage(key, sf.Type)
		}
	}

	if err := v.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			if _, dup := msgs[fe.StructField()]; dup {
				continue
			}
			sf, _ := rt.FieldByName(fe.StructField())
			msgs[fe.StructField()] = ruleMessage(sf)
		}
	}

	res := &Result{Fields: deref(rec)}
	for i := 0; i < rt.NumField(); i++ {
		if m, ok := msgs[rt.Field(i).Name]; ok {
			res.Problems = append(res.Problems, m)
		}
	}
	for k := range bag {
		if _, ok := known[k]; !ok {
			res.Unknown = append(res.Unknown, k)
		}
	}
	sort.Strings(res.Unknown)
	return res, nil
}

// Decode is Check without the rule verdict, for rendering stored bags.
func Decode(t PostType, raw []byte) (Fields, error) {
	res, err := Check(t, raw)
	if err != nil {
		return nil, err
	}
	return res.Fields, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func jsonKey(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func ruleMessage(sf reflect.StructField) string {
	if m := sf.Tag.Get("msg"); m != "" {
		return m
	}
	return "Invalid " + strings.ToLower(FieldLabel(jsonKey(sf)))
}

func typeMessage(key string, t reflect.Type) string {
	label := FieldLabel(key)
	switch t.Kind() {
	case reflect.Bool:
		return label + " must be true or false"
	case reflect.Slice:
		return label + " must be a list of text values"
	default:
		return label + " must be text"
	}
}

// deref turns the *Variant from newRecord into the value form so callers
// can type-switch on BlackboardFields, EventFields, and so on.
func deref(f Fields) Fields {
	switch r := f.(type) {
	case *BlackboardFields:
		return *r
	case *DrinkFields:
		return *r
	case *EventFields:
		return *r
	case *PromotionFields:
		return *r
	case *OtherFields:
		return *r
	}
	return f
}
