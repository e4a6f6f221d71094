package postfields

import (
	"reflect"
	"strings"
)

var fieldLabels = map[string]string{
	"item_name":               "Item Name",
	"drink_name":              "Drink Name",
	"event_name":              "Event Name",
	"promotion_name":          "Promotion Name",
	"title":                   "Title",
	"price":                   "Price",
	"short_description":       "Description",
	"description":             "Description",
	"ingredients":             "Ingredients",
	"dietary_tags":            "Dietary Info",
	"sides":                   "Sides",
	"sauces_options":          "Sauces/Options",
	"subject_to_availability": "Subject to Availability",
	"conditions":              "Conditions",
	"event_date":              "Event Date",
	"event_time":              "Event Time",
	"location":                "Location",
	"entertainment":           "Entertainment",
	"entry_fee":               "Entry Fee",
	"ticket_link":             "Ticket Link",
	"rules":                   "Rules",
	"terms":                   "Terms & Conditions",
	"valid_until":             "Valid Until",
}

// FieldLabel returns the display label for a fields_json key.  Unknown
// keys are title-cased with underscores turned into spaces.
func FieldLabel(key string) string {
	if l, ok := fieldLabels[key]; ok {
		return l
	}
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Entry is one labelled, rendered field of a record.
type Entry struct {
	Key   string
	Label string
	Value string
}

// Entries flattens f into display rows in declaration order, skipping
// empty values.  Lists are joined with ", " and booleans read Yes / No.
func Entries(f Fields) []Entry {
	if f == nil {
		return nil
	}
	rv := reflect.Indirect(reflect.ValueOf(f))
	rt := rv.Type()

	var out []Entry
	for i := 0; i < rt.NumField(); i++ {
		key := jsonKey(rt.Field(i))
		var val string
		switch fv := rv.Field(i); fv.Kind() {
		case reflect.Bool:
			val = "No"
			if fv.Bool() {
				val = "Yes"
			}
		case reflect.Slice:
			parts := make([]string, fv.Len())
			for j := range parts {
				parts[j] = fv.Index(j).String()
			}
			val = strings.Join(parts, ", ")
		default:
			val = fv.String()
		}
		if val == "" {
			continue
		}
		out = append(out, Entry{Key: key, Label: FieldLabel(key), Value: val})
	}
	return out
}
