package summarize

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// StructuredSummary is the shared output contract all model-backed
// engines are instructed to produce. Keeping one schema means the
// coordinator can swap engines without callers noticing.
type StructuredSummary struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyInsights []string `json:"key_insights"`
	Themes      []string `json:"themes"`
	ActionItems []string `json:"action_items"`
}

const schemaInstruction = `Respond with ONLY a JSON object, no prose before or after, matching:
{"title": string, "summary": string, "key_insights": [string], "themes": [string], "action_items": [string]}
Keep "title" under 8 words. "summary" is 2-4 sentences. Lists hold at most 5 short items each.`

const sessionSystemPrompt = `You summarize personal audio journal entries. Be concrete and faithful to the transcript; never invent events. ` + schemaInstruction

const periodSystemPrompt = `You write retrospective rollups of personal journal summaries. Identify recurring threads across entries rather than repeating them. ` + schemaInstruction

func buildSessionPrompt(in SessionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Journal entry recorded %s (category: %s).\n\nTranscript:\n%s\n",
		in.Session.StartTime.Format("Monday, January 2 2006 15:04"), in.Session.Category, in.Transcript)
	return b.String()
}

func buildPeriodPrompt(in PeriodInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Journal summaries from %s to %s (%s rollup):\n\n",
		in.Start.Format("2006-01-02"), in.End.Format("2006-01-02"), in.PeriodType)
	for i, s := range in.Sessions {
		fmt.Fprintf(&b, "Entry %d [%s] %s\n%s\n\n", i+1, s.Category, s.Title, s.Text)
	}
	return b.String()
}

// ParseStructured extracts the schema JSON from a model response. Models
// occasionally wrap the object in markdown fences or commentary, so the
// outermost braces are located before decoding.
func ParseStructured(response string) (*StructuredSummary, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var out StructuredSummary
	if err := json.Unmarshal([]byte(response[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("malformed summary JSON: %w", err)
	}
	if out.Summary == "" {
		return nil, fmt.Errorf("summary field missing from response")
	}
	return &out, nil
}
