// Package repair normalizes near-JSON text emitted by a generative model so it is more likely to parse.
//
// Every rule is a pure string transform that never fails. Rules that find nothing to fix return
// their input unchanged, so valid JSON passes through untouched.
package repair

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Rule names recorded in Result.Applied
const (
	RuleUnfence        = "unfence"
	RuleLineComments   = "line_comments"
	RuleBlockComments  = "block_comments"
	RuleTrailingCommas = "trailing_commas"
	RuleCompetitors    = "competitors_joined"
)

// Rule is a single named text transform
type Rule struct {
	Name  string
	Apply func(string) string
}

// TextRules are applied in this order before the structural pass
var TextRules = []Rule{
	{Name: RuleUnfence, Apply: Unfence},
	{Name: RuleLineComments, Apply: StripLineComments},
	{Name: RuleBlockComments, Apply: StripBlockComments},
	{Name: RuleTrailingCommas, Apply: StripTrailingCommas},
}

// competitorCollections are the keys whose items may carry a list-valued competitors field
var competitorCollections = []string{"events", "deals", "pipeline_updates"}

// Result is the outcome of running the filter over one model response
type Result struct {
	Original string   // Text as received
	Text     string   // Best-effort repaired text
	Applied  []string // Names of the rules that changed something, in order
}

// Changed reports whether any rule modified the text
func (r Result) Changed() bool {
	return len(r.Applied) > 0
}

// Repair runs every text rule and then the structural normalization
func Repair(raw string) Result {
	res := Result{Original: raw, Text: raw}

	for _, rule := range TextRules {
		out := rule.Apply(res.Text)
		if out != res.Text {
			res.Text = out
			res.Applied = append(res.Applied, rule.Name)
		}
	}

	if out, changed := NormalizeCompetitors(res.Text); changed {
		res.Text = out
		res.Applied = append(res.Applied, RuleCompetitors)
	}

	return res
}

// Unfence removes a surrounding markdown code fence and, when the text is not JSON-shaped,
// cuts the outermost object or array out of surrounding prose. Text without braces is returned as is.
func Unfence(s string) string {
	trimmed := strings.TrimSpace(s)
	if looksLikeJSON(trimmed) {
		return s
	}

	body := trimmed
	if strings.HasPrefix(body, "```") {
		// Drop the opening fence line (``` or ```json)
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		} else {
			body = strings.TrimPrefix(body, "```")
		}
		if end := strings.LastIndex(body, "```"); end >= 0 {
			body = body[:end]
		}
		body = strings.TrimSpace(body)
		if looksLikeJSON(body) {
			return body
		}
	}

	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return s
	}
	closer := "}"
	if body[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(body, closer)
	if end <= start {
		return s
	}
	return body[start : end+1]
}

func looksLikeJSON(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}

// StripLineComments removes // comments that are outside string literals.
// Block comments are copied through untouched so a URL inside one cannot unbalance it.
func StripLineComments(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	var t stringTracker

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !t.inString && ch == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i < len(s) && s[i] != '\n' {
					i++
				}
				if i < len(s) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					b.WriteString(s[i:])
					return b.String()
				}
				b.WriteString(s[i : i+2+end+2])
				i += 2 + end + 1
				continue
			}
		}
		t.advance(ch)
		b.WriteByte(ch)
	}
	return b.String()
}

// StripBlockComments removes /* ... */ comments outside string literals, across newlines.
// An unterminated comment swallows the rest of the text.
func StripBlockComments(s string) string {
	if !strings.Contains(s, "/*") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	var t stringTracker

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !t.inString && ch == '/' && i+1 < len(s) && s[i+1] == '*' {
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 1
			continue
		}
		t.advance(ch)
		b.WriteByte(ch)
	}
	return b.String()
}

// StripTrailingCommas removes a comma that is followed only by whitespace and then } or ]
func StripTrailingCommas(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	var t stringTracker

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !t.inString && ch == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		t.advance(ch)
		b.WriteByte(ch)
	}
	return b.String()
}

// NormalizeCompetitors joins list-valued competitors fields with ", " inside the known event
// collections (or a bare top-level array). It reports false when the text does not parse or
// nothing needed joining.
func NormalizeCompetitors(s string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return s, false
	}
	if dec.More() {
		return s, false
	}

	changed := false
	switch root := tree.(type) {
	case map[string]any:
		for _, key := range competitorCollections {
			if items, ok := root[key].([]any); ok {
				if joinCompetitors(items) {
					changed = true
				}
			}
		}
	case []any:
		changed = joinCompetitors(root)
	}
	if !changed {
		return s, false
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tree); err != nil {
		return s, false
	}
	return strings.TrimSuffix(buf.String(), "\n"), true
}

func joinCompetitors(items []any) bool {
	changed := false
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		list, ok := obj["competitors"].([]any)
		if !ok {
			continue
		}
		names := make([]string, 0, len(list))
		allStrings := true
		for _, v := range list {
			name, ok := v.(string)
			if !ok {
				allStrings = false
				break
			}
			names = append(names, strings.TrimSpace(name))
		}
		if !allStrings {
			continue
		}
		obj["competitors"] = strings.Join(names, ", ")
		changed = true
	}
	return changed
}

// stringTracker follows JSON string literal boundaries one byte at a time
type stringTracker struct {
	inString bool
	escaped  bool
}

func (t *stringTracker) advance(ch byte) {
	if t.inString {
		switch {
		case t.escaped:
			t.escaped = false
		case ch == '\\':
			t.escaped = true
		case ch == '"':
			t.inString = false
		}
		return
	}
	if ch == '"' {
		t.inString = true
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
