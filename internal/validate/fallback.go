package validate

import "github.com/ppiankov/marketpulse/internal/model"

const (
	defaultNeutralTrends = 50
	defaultNoDataText    = "No data available."
)

// Policy supplies schema-valid substitute values when model output cannot be used
type Policy struct {
	NeutralTrends int    // google_trends value for a fallback report
	NoDataText    string // Narrative used for every text field of a fallback report
}

// DefaultPolicy returns the built-in fallback values
func DefaultPolicy() Policy {
	return Policy{
		NeutralTrends: defaultNeutralTrends,
		NoDataText:    defaultNoDataText,
	}
}

// PolicyFromConfig builds a policy from the fallback config section
func PolicyFromConfig(cfg model.FallbackConfig) Policy {
	p := Policy{
		NeutralTrends: min(max(cfg.NeutralTrends, 0), 100),
		NoDataText:    cfg.NoDataText,
	}
	if p.NoDataText == "" {
		p.NoDataText = defaultNoDataText
	}
	return p
}

// Events returns the fallback event list: always empty
func (p Policy) Events() []model.Event {
	return []model.Event{}
}

// Report returns the fallback report
func (p Policy) Report() model.AdvisorReport {
	text := p.NoDataText
	if text == "" {
		text = defaultNoDataText
	}
	return model.AdvisorReport{
		GoogleTrends: p.NeutralTrends,
		KeyInsights:  text,
		KeyTakeaways: []string{},
		RisksAndOpportunities: model.RisksAndOpportunities{
			Risks:         text,
			Opportunities: text,
		},
		Recommendations: []string{},
		Conclusion:      text,
	}
}
