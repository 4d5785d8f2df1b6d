package validate

import "github.com/ppiankov/marketpulse/internal/model"

// Kind is the primitive shape a field must have
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindEnum
	KindStringList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindEnum:
		return "enum"
	case KindStringList:
		return "list of strings"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field describes one key of a JSON object
type Field struct {
	Name     string
	Kind     Kind
	Required bool

	Enum []string // KindEnum variants, matched case-insensitively

	// Integer range. Out-of-range values are clamped when Clamp is set, otherwise
	// an optional field becomes null and a required one fails.
	Min, Max int
	Clamp    bool

	Fields []Field // KindObject members
}

// Schema is a named descriptor for a top-level document
type Schema struct {
	Name string
	// Collection is the key holding the item list ("" for a single object schema)
	Collection string
	Fields     []Field
}

func eventTypeNames() []string {
	types := model.EventTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func optionalString(name string) Field {
	return Field{Name: name, Kind: KindString}
}

// EventListSchema describes {"events": [Event...]}
var EventListSchema = Schema{
	Name:       "events",
	Collection: "events",
	Fields: []Field{
		{Name: "type", Kind: KindEnum, Required: true, Enum: eventTypeNames()},
		{Name: "title", Kind: KindString, Required: true},
		{Name: "summary", Kind: KindString, Required: true},
		optionalString("date"),
		optionalString("partners"),
		optionalString("deal_value"),
		optionalString("product_name"),
		optionalString("indication"),
		optionalString("development_stage"),
		optionalString("status"),
		optionalString("mechanism_of_action"),
		optionalString("competitors"),
		{Name: "opportunity_score", Kind: KindInt, Min: 0, Max: 5},
		optionalString("source_url"),
	},
}

// ReportSchema describes a single AdvisorReport object
var ReportSchema = Schema{
	Name: "report",
	Fields: []Field{
		{Name: "google_trends", Kind: KindInt, Required: true, Min: 0, Max: 100, Clamp: true},
		{Name: "key_insights", Kind: KindString, Required: true},
		{Name: "key_takeaways", Kind: KindStringList, Required: true},
		{Name: "risks_and_opportunities", Kind: KindObject, Required: true, Fields: []Field{
			{Name: "risks", Kind: KindString, Required: true},
			{Name: "opportunities", Kind: KindString, Required: true},
		}},
		{Name: "recommendations", Kind: KindStringList, Required: true},
		{Name: "conclusion", Kind: KindString, Required: true},
	},
}
