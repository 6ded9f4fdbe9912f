package summarize

import (
	"lifewrapped/internal/models"
	"strings"
)

// sessionFromStructured maps a model's structured output onto the
// session intelligence record. Sentiment is always lexicon-scored from
// the transcript so engines stay comparable on that axis.
func sessionFromStructured(s *StructuredSummary, in SessionInput, tier Tier) *models.SessionIntelligence {
	return &models.SessionIntelligence{
		Title:       s.Title,
		Summary:     s.Summary,
		KeyInsights: s.KeyInsights,
		Themes:      s.Themes,
		ActionItems: s.ActionItems,
		Sentiment:   ScoreSentiment(in.Transcript),
		Engine:      string(tier),
	}
}

// periodFromStructured maps structured output onto a period record.
// Year-wrap classification always derives from the categories the
// sessions were recorded under; model output is never trusted for it.
func periodFromStructured(s *StructuredSummary, in PeriodInput, tier Tier) *models.PeriodIntelligence {
	out := &models.PeriodIntelligence{
		Title:       s.Title,
		Summary:     s.Summary,
		KeyInsights: s.KeyInsights,
		Themes:      s.Themes,
		ActionItems: s.ActionItems,
		Engine:      string(tier),
	}
	if isYearWrap(in.PeriodType) {
		themeCategories := make(map[string]map[models.Category]struct{})
		for _, sess := range in.Sessions {
			for _, theme := range sess.Themes {
				key := strings.ToLower(theme)
				if themeCategories[key] == nil {
					themeCategories[key] = make(map[models.Category]struct{})
				}
				themeCategories[key][sess.Category] = struct{}{}
			}
		}
		out.MajorArcs = classifyThemes(s.Themes, themeCategories)

		var sentences []string
		for _, sess := range in.Sessions {
			sentences = append(sentences, SplitSentences(sess.Text)...)
		}
		out.BiggestWins = classifyWins(sentences, in.Sessions)
	}
	return out
}
