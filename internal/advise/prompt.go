package advise

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/marketpulse/internal/model"
)

// SystemPrompt frames every advisory call
const SystemPrompt = "You are a senior biotech business advisor. You answer with a single valid JSON object and nothing else."

const promptTemplate = `Here are the validated events extracted from recent news about %s:

%s

Write a business advisory report as a JSON object with exactly these keys:
- "google_trends": integer from 0 to 100 estimating current search interest
- "key_insights": string, a short business summary of the recent news
- "key_takeaways": list of 3 to 5 short strings (facts or trends)
- "risks_and_opportunities": {"risks": string, "opportunities": string}, two short paragraphs
- "recommendations": list of 2 to 3 concrete recommendations
- "conclusion": string, overall assessment of the company's momentum

Do not invent deals or events that are not in the list above. The narrative sections may be synthesized from them.
Output only valid JSON: no comments, no explanations, no trailing commas.`

// EventsJSON renders events as indented JSON for the prompt
func EventsJSON(events []model.Event) (string, error) {
	if events == nil {
		events = []model.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal events: %w", err)
	}
	return string(data), nil
}

// BuildPrompt renders the advisory prompt
func BuildPrompt(company, eventsJSON string) string {
	return fmt.Sprintf(promptTemplate, company, eventsJSON)
}
