// internal/postfields/types.go
//
// Post types and their field records.
//
// Context
// -------
// Every submission carries a JSON bag of post-type-specific fields.  The
// bag is modelled as a tagged union: PostType is the tag and each variant
// is a concrete struct implementing Fields.  Struct tags carry the JSON
// key, the go-playground/validator rules, and the user-facing message
// shown when a rule fails.
//
// Notes
// -----
//   • Required means non-empty.  Optional strings may be omitted or null.
//   • `msg` is the whole message for that field, whatever rule tripped.

package postfields

import "strings"

// PostType is the tag of the fields union.
type PostType string

const (
	BlackboardSpecial PostType = "blackboard_special"
	DrinkSpecial      PostType = "drink_special"
	Event             PostType = "event"
	Promotion         PostType = "promotion"
	Other             PostType = "other"
)

// Types lists every post type in display order.
var Types = []PostType{BlackboardSpecial, DrinkSpecial, Event, Promotion, Other}

var typeLabels = map[PostType]string{
	BlackboardSpecial: "Blackboard Special",
	DrinkSpecial:      "Drink Special",
	Event:             "Event / Entertainment",
	Promotion:         "Promotion / Giveaway",
	Other:             "Other",
}

// Valid reports whether t is one of Types.
func (t PostType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the display name, or the raw value for unknown types.
func (t PostType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Line is one row of a human summary (e-mail body, inbox preview).
type Line struct {
	Label string
	Value string
}

// Fields is implemented by every variant record.
type Fields interface {
	Type() PostType
	// Headline is the record's primary name (item, drink, event, …).
	Headline() string
	// Summary returns the rows staff need at a glance.
	Summary() []Line
}

/*──────────────────────────── variants ────────────────────────────────────*/

// BlackboardFields describes a food special chalked on the board.
type BlackboardFields struct {
	ItemName              string   `json:"item_name"                   validate:"required" msg:"Item name is required"`
	Price                 string   `json:"price"                       validate:"required" msg:"Price is required"`
	ShortDescription      string   `json:"short_description,omitempty"`
	Ingredients           []string `json:"ingredients,omitempty"`
	DietaryTags           []string `json:"dietary_tags,omitempty"`
	Sides                 string   `json:"sides,omitempty"`
	SaucesOptions         string   `json:"sauces_options,omitempty"`
	SubjectToAvailability bool     `json:"subject_to_availability"`
}

func (BlackboardFields) Type() PostType     { return BlackboardSpecial }
func (f BlackboardFields) Headline() string { return f.ItemName }
func (f BlackboardFields) Summary() []Line {
	return compact(
		Line{"Item", orNA(f.ItemName)},
		Line{"Price", orNA(f.Price)},
		Line{"Description", f.ShortDescription},
		Line{"Dietary Info", strings.Join(f.DietaryTags, ", ")},
	)
}

// DrinkFields describes a drink special.
type DrinkFields struct {
	DrinkName   string `json:"drink_name"            validate:"required" msg:"Drink name is required"`
	Price       string `json:"price"                 validate:"required" msg:"Price is required"`
	Ingredients string `json:"ingredients,omitempty"`
	Conditions  string `json:"conditions,omitempty"`
}

func (DrinkFields) Type() PostType     { return DrinkSpecial }
func (f DrinkFields) Headline() string { return f.DrinkName }
func (f DrinkFields) Summary() []Line {
	return compact(
		Line{"Drink", orNA(f.DrinkName)},
		Line{"Price", orNA(f.Price)},
		Line{"Conditions", f.Conditions},
	)
}

// EventFields describes an event or entertainment night.
type EventFields struct {
	EventName     string `json:"event_name"              validate:"required"      msg:"Event name is required"`
	EventDate     string `json:"event_date"              validate:"required"      msg:"Event date is required"`
	EventTime     string `json:"event_time,omitempty"`
	Location      string `json:"location,omitempty"`
	Entertainment string `json:"entertainment,omitempty"`
	EntryFee      string `json:"entry_fee,omitempty"`
	TicketLink    string `json:"ticket_link,omitempty"   validate:"omitempty,url" msg:"Ticket link must be a valid URL"`
	Rules         string `json:"rules,omitempty"`
}

func (EventFields) Type() PostType     { return Event }
func (f EventFields) Headline() string { return f.EventName }
func (f EventFields) Summary() []Line {
	return compact(
		Line{"Event", orNA(f.EventName)},
		Line{"Date", orNA(f.EventDate)},
		Line{"Time", f.EventTime},
		Line{"Tickets", f.TicketLink},
	)
}

// PromotionFields describes a promotion or giveaway.
type PromotionFields struct {
	PromotionName string `json:"promotion_name"        validate:"required" msg:"Promotion name is required"`
	Description   string `json:"description"           validate:"required" msg:"Description is required"`
	Terms         string `json:"terms,omitempty"`
	ValidUntil    string `json:"valid_until,omitempty"`
}

func (PromotionFields) Type() PostType     { return Promotion }
func (f PromotionFields) Headline() string { return f.PromotionName }
func (f PromotionFields) Summary() []Line {
	return compact(
		Line{"Promotion", orNA(f.PromotionName)},
		Line{"Description", f.Description},
		Line{"Valid Until", f.ValidUntil},
	)
}

// OtherFields is the catch-all request.
type OtherFields struct {
	Title       string `json:"title"       validate:"required" msg:"Title is required"`
	Description string `json:"description" validate:"required" msg:"Description is required"`
}

func (OtherFields) Type() PostType     { return Other }
func (f OtherFields) Headline() string { return f.Title }
func (f OtherFields) Summary() []Line {
	return compact(Line{"Title", orNA(f.Title)})
}

// newRecord returns a pointer to a zero record for t, or nil.
func newRecord(t PostType) Fields {
	switch t {
	case BlackboardSpecial:
		return &BlackboardFields{}
	case DrinkSpecial:
		return &DrinkFields{}
	case Event:
		return &EventFields{}
	case Promotion:
		return &PromotionFields{}
	case Other:
		return &OtherFields{}
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func compact(lines ...Line) []Line {
	out := lines[:0]
	for _, l := range lines {
		if l.Value != "" {
			out = append(out, l)
		}
	}
	return out
}
