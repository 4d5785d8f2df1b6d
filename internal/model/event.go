package model

import "strings"

// EventType classifies an extracted event
type EventType string

const (
	EventTypeDeal     EventType = "deal"     // Licensing, acquisition, financing, partnership
	EventTypePipeline EventType = "pipeline" // Clinical or product pipeline update
	EventTypeOther    EventType = "other"    // Any other relevant company news
)

// EventTypes lists the declared variants in prompt order
func EventTypes() []EventType {
	return []EventType{EventTypeDeal, EventTypePipeline, EventTypeOther}
}

// ParseEventType folds case and matches one of the declared variants
func ParseEventType(s string) (EventType, bool) {
	folded := strings.ToLower(strings.TrimSpace(s))
	for _, t := range EventTypes() {
		if string(t) == folded {
			return t, true
		}
	}
	return "", false
}

// Event is one structured business, pipeline or other occurrence extracted from documents.
// Optional fields are nil when the model reported nothing for them.
type Event struct {
	Type    EventType `json:"type"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`

	Date              *string `json:"date"`
	Partners          *string `json:"partners"`
	DealValue         *string `json:"deal_value"`
	ProductName       *string `json:"product_name"`
	Indication        *string `json:"indication"`
	DevelopmentStage  *string `json:"development_stage"`
	Status            *string `json:"status"`
	MechanismOfAction *string `json:"mechanism_of_action"`
	Competitors       *string `json:"competitors"` // Always a single comma-joined string
	OpportunityScore  *int    `json:"opportunity_score"` // 0-5
	SourceURL         *string `json:"source_url"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}
