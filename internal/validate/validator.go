// Package validate parses repaired model output against explicit schema descriptors and
// degrades to the fallback policy when the output cannot be trusted.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/marketpulse/internal/model"
	"github.com/ppiankov/marketpulse/internal/repair"
)

// OutcomeKind tells how a value was obtained
type OutcomeKind int

const (
	OutcomeOK       OutcomeKind = iota // Parsed and valid without any repair
	OutcomeRepaired                    // Valid after the repair filter changed the text
	OutcomeFallback                    // Unusable; the value comes from the fallback policy
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Outcome is the result of validating one model response. Value is always schema-valid.
type Outcome[T any] struct {
	Kind    OutcomeKind
	Value   T
	Reason  string   // Why the fallback was used
	Notes   []string // Non-fatal coercions (placeholder nulls, clamps, wrong-kind optionals)
	Repairs []string // Repair rules that changed the text
}

// IsFallback reports whether Value came from the fallback policy
func (o Outcome[T]) IsFallback() bool {
	return o.Kind == OutcomeFallback
}

// FieldError names the path of the first schema violation
type FieldError struct {
	Path    string
	Problem string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Problem
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Problem)
}

var placeholders = map[string]bool{
	"":     true,
	"none": true,
	"null": true,
	"n/a":  true,
	"na":   true,
}

// Events validates a repaired response against EventListSchema
func Events(res repair.Result, policy Policy) Outcome[[]model.Event] {
	out := Outcome[[]model.Event]{Repairs: res.Applied}

	tree, err := parse(res.Text)
	if err != nil {
		return fallbackEvents(out, policy, err.Error())
	}

	items, err := collection(tree, EventListSchema)
	if err != nil {
		return fallbackEvents(out, policy, err.Error())
	}

	w := &walker{}
	events := make([]model.Event, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", EventListSchema.Collection, i)
		obj, ok := item.(map[string]any)
		if !ok {
			return fallbackEvents(out, policy, (&FieldError{Path: path, Problem: "expected object"}).Error())
		}
		fields, err := w.object(path, obj, EventListSchema.Fields)
		if err != nil {
			return fallbackEvents(out, policy, err.Error())
		}
		events = append(events, eventFromFields(fields))
	}

	out.Kind = kindFor(res)
	out.Value = events
	out.Notes = w.notes
	return out
}

// Report validates a repaired response against ReportSchema
func Report(res repair.Result, policy Policy) Outcome[model.AdvisorReport] {
	out := Outcome[model.AdvisorReport]{Repairs: res.Applied}

	tree, err := parse(res.Text)
	if err != nil {
		return fallbackReport(out, policy, err.Error())
	}

	obj, ok := tree.(map[string]any)
	if !ok {
		return fallbackReport(out, policy, "expected a report object")
	}

	w := &walker{}
	fields, err := w.object("", obj, ReportSchema.Fields)
	if err != nil {
		return fallbackReport(out, policy, err.Error())
	}

	out.Kind = kindFor(res)
	out.Value = reportFromFields(fields)
	out.Notes = w.notes
	return out
}

func kindFor(res repair.Result) OutcomeKind {
	if res.Changed() {
		return OutcomeRepaired
	}
	return OutcomeOK
}

func fallbackEvents(out Outcome[[]model.Event], policy Policy, reason string) Outcome[[]model.Event] {
	out.Kind = OutcomeFallback
	out.Value = policy.Events()
	out.Reason = reason
	out.Notes = nil
	return out
}

func fallbackReport(out Outcome[model.AdvisorReport], policy Policy, reason string) Outcome[model.AdvisorReport] {
	out.Kind = OutcomeFallback
	out.Value = policy.Report()
	out.Reason = reason
	out.Notes = nil
	return out
}

// parse decodes exactly one JSON value, keeping numbers as json.Number
func parse(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unparseable: empty response")
		}
		return nil, fmt.Errorf("unparseable: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unparseable: trailing data after JSON value")
	}
	return tree, nil
}

// collection returns the item list of a collection schema; a bare array is accepted as the list
func collection(tree any, schema Schema) ([]any, error) {
	switch root := tree.(type) {
	case []any:
		return root, nil
	case map[string]any:
		raw, present := root[schema.Collection]
		if !present || raw == nil {
			return nil, &FieldError{Path: schema.Collection, Problem: "missing required field"}
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, &FieldError{Path: schema.Collection, Problem: "expected list"}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected an object with a %q list", schema.Collection)
	}
}

// walker checks values against field descriptors and collects coercion notes
type walker struct {
	notes []string
}

func (w *walker) note(path, format string, args ...any) {
	w.notes = append(w.notes, path+": "+fmt.Sprintf(format, args...))
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// object validates obj against fields and returns the coerced members. Absent optionals map to nil.
func (w *walker) object(path string, obj map[string]any, fields []Field) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		raw, present := obj[f.Name]
		v, err := w.value(joinPath(path, f.Name), f, raw, present)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func (w *walker) value(path string, f Field, raw any, present bool) (any, error) {
	if !present || raw == nil || isPlaceholder(raw) {
		if f.Required {
			return nil, &FieldError{Path: path, Problem: "missing required field"}
		}
		if present && raw != nil {
			w.note(path, "placeholder %q treated as null", raw)
		}
		return nil, nil
	}

	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return w.mismatch(path, f, raw)
		}
		return strings.TrimSpace(s), nil

	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return w.mismatch(path, f, raw)
		}
		folded := strings.ToLower(strings.TrimSpace(s))
		for _, variant := range f.Enum {
			if folded == variant {
				return variant, nil
			}
		}
		if !f.Required {
			w.note(path, "unknown value %q treated as null", s)
			return nil, nil
		}
		return nil, &FieldError{Path: path, Problem: fmt.Sprintf("invalid value %q (want one of %s)", s, strings.Join(f.Enum, ", "))}

	case KindInt:
		n, ok := toInt(raw)
		if !ok {
			return w.mismatch(path, f, raw)
		}
		if n < f.Min || n > f.Max {
			switch {
			case f.Clamp:
				clamped := min(max(n, f.Min), f.Max)
				w.note(path, "%d clamped to %d", n, clamped)
				return clamped, nil
			case f.Required:
				return nil, &FieldError{Path: path, Problem: fmt.Sprintf("%d out of range %d..%d", n, f.Min, f.Max)}
			default:
				w.note(path, "%d out of range %d..%d treated as null", n, f.Min, f.Max)
				return nil, nil
			}
		}
		return n, nil

	case KindStringList:
		list, ok := raw.([]any)
		if !ok {
			return w.mismatch(path, f, raw)
		}
		out := make([]string, 0, len(list))
		for i, el := range list {
			s, ok := el.(string)
			if !ok {
				elemPath := fmt.Sprintf("%s[%d]", path, i)
				if f.Required {
					return nil, &FieldError{Path: elemPath, Problem: "expected string"}
				}
				w.note(elemPath, "non-string entry dropped")
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil

	case KindObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return w.mismatch(path, f, raw)
		}
		return w.object(path, obj, f.Fields)
	}

	return nil, &FieldError{Path: path, Problem: "unsupported field kind"}
}

// mismatch fails a required field of the wrong kind and nulls an optional one
func (w *walker) mismatch(path string, f Field, raw any) (any, error) {
	if f.Required {
		return nil, &FieldError{Path: path, Problem: fmt.Sprintf("expected %s, got %s", f.Kind, jsonKind(raw))}
	}
	w.note(path, "expected %s, got %s; treated as null", f.Kind, jsonKind(raw))
	return nil, nil
}

func isPlaceholder(raw any) bool {
	s, ok := raw.(string)
	if !ok {
		return false
	}
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}

// toInt accepts integral JSON numbers and numeric strings
func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func jsonKind(raw any) string {
	switch raw.(type) {
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return "null"
	}
}

func optString(fields map[string]any, name string) *string {
	if s, ok := fields[name].(string); ok {
		return &s
	}
	return nil
}

func optInt(fields map[string]any, name string) *int {
	if n, ok := fields[name].(int); ok {
		return &n
	}
	return nil
}

func eventFromFields(fields map[string]any) model.Event {
	eventType, _ := model.ParseEventType(fields["type"].(string))
	return model.Event{
		Type:              eventType,
		Title:             fields["title"].(string),
		Summary:           fields["summary"].(string),
		Date:              optString(fields, "date"),
		Partners:          optString(fields, "partners"),
		DealValue:         optString(fields, "deal_value"),
		ProductName:       optString(fields, "product_name"),
		Indication:        optString(fields, "indication"),
		DevelopmentStage:  optString(fields, "development_stage"),
		Status:            optString(fields, "status"),
		MechanismOfAction: optString(fields, "mechanism_of_action"),
		Competitors:       optString(fields, "competitors"),
		OpportunityScore:  optInt(fields, "opportunity_score"),
		SourceURL:         optString(fields, "source_url"),
	}
}

func reportFromFields(fields map[string]any) model.AdvisorReport {
	ro := fields["risks_and_opportunities"].(map[string]any)
	return model.AdvisorReport{
		GoogleTrends: fields["google_trends"].(int),
		KeyInsights:  fields["key_insights"].(string),
		KeyTakeaways: fields["key_takeaways"].([]string),
		RisksAndOpportunities: model.RisksAndOpportunities{
			Risks:         ro["risks"].(string),
			Opportunities: ro["opportunities"].(string),
		},
		Recommendations: fields["recommendations"].([]string),
		Conclusion:      fields["conclusion"].(string),
	}.Normalize()
}
