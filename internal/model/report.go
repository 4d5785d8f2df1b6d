package model

// AdvisorReport is the structured business-advisory summary synthesized from a set of events.
// All six top-level fields are always present, including when built by the fallback policy.
type AdvisorReport struct {
	GoogleTrends          int                   `json:"google_trends"` // 0-100
	KeyInsights           string                `json:"key_insights"`
	KeyTakeaways          []string              `json:"key_takeaways"` // 3-5 recommended, may be empty
	RisksAndOpportunities RisksAndOpportunities `json:"risks_and_opportunities"`
	Recommendations       []string              `json:"recommendations"`
	Conclusion            string                `json:"conclusion"`
}

// RisksAndOpportunities holds the two short narrative paragraphs of a report
type RisksAndOpportunities struct {
	Risks         string `json:"risks"`
	Opportunities string `json:"opportunities"`
}

// Normalize replaces nil lists with empty ones so the report never serializes a null field
func (r AdvisorReport) Normalize() AdvisorReport {
	if r.KeyTakeaways == nil {
		r.KeyTakeaways = []string{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	return r
}
