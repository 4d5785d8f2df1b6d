package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/marketpulse/internal/model"
)

const truncationMarker = " [...]"

// SystemPrompt frames every extraction call
const SystemPrompt = "You are a professional biotech business analyst. You answer with a single valid JSON object and nothing else."

const promptTemplate = `Analyze the following news articles about %s and extract significant events related to business deals, pipeline updates, or other relevant news.

Return a JSON object with one key, "events", holding a list. Each event has:
- type: "deal", "pipeline" or "other" (required)
- title: headline for the event (required)
- summary: short summary of the event (required)
- date: event date, if any
- partners: deal partners, if any
- deal_value: deal value, if any
- product_name: product or asset name, if any
- indication: disease or indication, if any
- development_stage: e.g. "Phase II", if any
- status: pipeline status, if any
- mechanism_of_action: if any
- competitors: main competitors as ONE comma-separated string, if any
- opportunity_score: integer from 0 to 5, if you can judge it
- source_url: the Source of the article the event comes from

If a field is not found, use JSON null (not the string "null" or "none").
Only report events that appear in the articles. If there are none, return {"events": []}.
Output only valid JSON: no comments, no explanations, no trailing commas.

Articles:
%s`

// BuildContext renders documents as Title/Date/Content/Source blocks.
// Content longer than maxChars runes is truncated (0 = unlimited).
func BuildContext(docs []model.Document, maxChars int) string {
	var b strings.Builder
	for _, doc := range docs {
		fmt.Fprintf(&b, "Title: %s\n", doc.Title)
		fmt.Fprintf(&b, "Date: %s\n", doc.Date)
		fmt.Fprintf(&b, "Content: %s\n", truncate(strings.TrimSpace(doc.Content), maxChars))
		fmt.Fprintf(&b, "Source: %s\n\n", doc.URL)
	}
	return b.String()
}

// BuildPrompt renders the extraction prompt for a company and context block
func BuildPrompt(company, context string) string {
	return fmt.Sprintf(promptTemplate, company, context)
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + truncationMarker
}
