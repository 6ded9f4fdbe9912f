package summarize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifewrapped/internal/models"
)

func TestParseStructuredPlainJSON(t *testing.T) {
	out, err := ParseStructured(`{"title": "Busy day", "summary": "Lots happened.", "themes": ["work"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Busy day", out.Title)
	assert.Equal(t, "Lots happened.", out.Summary)
	assert.Equal(t, []string{"work"}, out.Themes)
}

func TestParseStructuredSalvagesFencedJSON(t *testing.T) {
	response := "Here is your summary:\n```json\n" +
		`{"title": "Quiet day", "summary": "Not much happened."}` +
		"\n```\nLet me know if you need anything else."

	out, err := ParseStructured(response)
	require.NoError(t, err)
	assert.Equal(t, "Quiet day", out.Title)
}

func TestParseStructuredRejectsMissingSummary(t *testing.T) {
	_, err := ParseStructured(`{"title": "No body"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary field missing")
}

func TestParseStructuredRejectsProseOnly(t *testing.T) {
	_, err := ParseStructured("I could not summarize this entry.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestBuildPeriodPromptListsEntries(t *testing.T) {
	in := PeriodInput{
		PeriodType: models.PeriodWeek,
		Start:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		Sessions: []SessionSummary{
			{Category: models.CategoryWork, Title: "Standup", Text: "Planning sprint goals."},
			{Category: models.CategoryPersonal, Title: "Evening", Text: "Cooked dinner with friends."},
		},
	}

	prompt := buildPeriodPrompt(in)
	assert.Contains(t, prompt, "2025-06-02")
	assert.Contains(t, prompt, "Entry 1 [work] Standup")
	assert.Contains(t, prompt, "Entry 2 [personal] Evening")
}
