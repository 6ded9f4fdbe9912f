package summarize

import (
	"context"
	"fmt"
	"lifewrapped/internal/models"
	"sort"
	"strings"
	"unicode"
)

// BasicEngine is the rule-based extractive fallback. It ranks sentences
// by word frequency and never fails, guaranteeing a floor for the
// fallback chain.
type BasicEngine struct {
	excluded map[string]struct{}
}

func NewBasicEngine(excludedWords []string) *BasicEngine {
	excluded := make(map[string]struct{}, len(excludedWords)+len(stopwords))
	for w := range stopwords {
		excluded[w] = struct{}{}
	}
	for _, w := range excludedWords {
		excluded[strings.ToLower(w)] = struct{}{}
	}
	return &BasicEngine{excluded: excluded}
}

func (e *BasicEngine) Tier() Tier { return TierBasic }

func (e *BasicEngine) IsAvailable(_ context.Context) bool { return true }

func (e *BasicEngine) SummarizeSession(_ context.Context, in SessionInput) (*models.SessionIntelligence, error) {
	sentences := SplitSentences(in.Transcript)
	freq := e.wordFrequencies(in.Transcript)
	ranked := rankSentences(sentences, freq)

	top := takeSentences(ranked, 3)
	themes := topWords(freq, 5)

	title := fmt.Sprintf("Journal, %s", in.Session.StartTime.Format("Jan 2, 2006"))
	if len(themes) > 0 {
		title = fmt.Sprintf("%s, %s", capitalize(themes[0]), in.Session.StartTime.Format("Jan 2"))
	}

	return &models.SessionIntelligence{
		Title:       title,
		Summary:     strings.Join(top, " "),
		KeyInsights: top,
		Themes:      themes,
		ActionItems: extractActionItems(sentences),
		Sentiment:   ScoreSentiment(in.Transcript),
		Engine:      string(TierBasic),
	}, nil
}

func (e *BasicEngine) SummarizePeriod(_ context.Context, in PeriodInput) (*models.PeriodIntelligence, error) {
	var combined strings.Builder
	themeCategories := make(map[string]map[models.Category]struct{})

	for _, s := range in.Sessions {
		combined.WriteString(s.Text)
		combined.WriteString(" ")
		for _, theme := range s.Themes {
			key := strings.ToLower(theme)
			if themeCategories[key] == nil {
				themeCategories[key] = make(map[models.Category]struct{})
			}
			themeCategories[key][s.Category] = struct{}{}
		}
	}

	text := combined.String()
	sentences := SplitSentences(text)
	freq := e.wordFrequencies(text)
	top := takeSentences(rankSentences(sentences, freq), 4)
	themes := topWords(freq, 6)

	out := &models.PeriodIntelligence{
		Title:       fmt.Sprintf("%s in review, %s", periodLabel(in.PeriodType), in.Start.Format("Jan 2, 2006")),
		Summary:     strings.Join(top, " "),
		KeyInsights: top,
		Themes:      themes,
		ActionItems: extractActionItems(sentences),
		Engine:      string(TierBasic),
	}

	if isYearWrap(in.PeriodType) {
		out.MajorArcs = classifyThemes(themes, themeCategories)
		out.BiggestWins = classifyWins(sentences, in.Sessions)
	}
	return out, nil
}

func isYearWrap(pt models.PeriodType) bool {
	switch pt {
	case models.PeriodYearWrap, models.PeriodYearWrapWork, models.PeriodYearWrapPersonal:
		return true
	}
	return false
}

func periodLabel(pt models.PeriodType) string {
	switch pt {
	case models.PeriodDay:
		return "Day"
	case models.PeriodWeek:
		return "Week"
	case models.PeriodMonth:
		return "Month"
	default:
		return "Year"
	}
}

// classifyThemes derives year-wrap arcs from the categories of the
// sessions each theme occurred in, never from AI content analysis.
func classifyThemes(themes []string, themeCategories map[string]map[models.Category]struct{}) []models.ClassifiedItem {
	items := make([]models.ClassifiedItem, 0, len(themes))
	for _, theme := range themes {
		items = append(items, models.ClassifiedItem{
			Text:     theme,
			Category: deriveCategory(themeCategories[strings.ToLower(theme)]),
		})
	}
	return items
}

func deriveCategory(cats map[models.Category]struct{}) models.Category {
	_, work := cats[models.CategoryWork]
	_, personal := cats[models.CategoryPersonal]
	switch {
	case work && personal:
		return models.CategoryBoth
	case work:
		return models.CategoryWork
	case personal:
		return models.CategoryPersonal
	default:
		return models.CategoryUncategorized
	}
}

var winMarkers = []string{"finished", "shipped", "completed", "achieved", "won", "finally", "proud", "landed"}

func classifyWins(sentences []string, sessions []SessionSummary) []models.ClassifiedItem {
	category := models.CategoryUncategorized
	cats := make(map[models.Category]struct{})
	for _, s := range sessions {
		cats[s.Category] = struct{}{}
	}
	category = deriveCategory(cats)

	var wins []models.ClassifiedItem
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, marker := range winMarkers {
			if strings.Contains(lower, marker) {
				wins = append(wins, models.ClassifiedItem{Text: sentence, Category: category})
				break
			}
		}
		if len(wins) >= 5 {
			break
		}
	}
	return wins
}

func (e *BasicEngine) wordFrequencies(text string) map[string]int {
	freq := make(map[string]int)
	for _, word := range strings.Fields(text) {
		word = normalizeWord(word)
		if len(word) < 3 {
			continue
		}
		if _, skip := e.excluded[word]; skip {
			continue
		}
		freq[word]++
	}
	return freq
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}))
}

type scoredSentence struct {
	index int
	text  string
	score float64
}

func rankSentences(sentences []string, freq map[string]int) []scoredSentence {
	ranked := make([]scoredSentence, 0, len(sentences))
	for i, sentence := range sentences {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		var score float64
		for _, word := range words {
			score += float64(freq[normalizeWord(word)])
		}
		ranked = append(ranked, scoredSentence{index: i, text: sentence, score: score / float64(len(words))})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return ranked
}

// takeSentences picks the n best sentences and restores source order so
// the extract reads naturally.
func takeSentences(ranked []scoredSentence, n int) []string {
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	picked := make([]scoredSentence, len(ranked))
	copy(picked, ranked)
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	out := make([]string, 0, len(picked))
	for _, s := range picked {
		out = append(out, s.text)
	}
	return out
}

func topWords(freq map[string]int, n int) []string {
	type wc struct {
		word  string
		count int
	}
	all := make([]wc, 0, len(freq))
	for word, count := range freq {
		all = append(all, wc{word, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].word < all[j].word
	})
	if len(all) > n {
		all = all[:n]
	}
	words := make([]string, 0, len(all))
	for _, w := range all {
		words = append(words, w.word)
	}
	return words
}

var actionMarkers = []string{"need to", "have to", "should", "must", "remember to", "don't forget"}

func extractActionItems(sentences []string) []string {
	var items []string
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, marker := range actionMarkers {
			if strings.Contains(lower, marker) {
				items = append(items, sentence)
				break
			}
		}
		if len(items) >= 5 {
			break
		}
	}
	return items
}

// SplitSentences splits text on terminal punctuation.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
