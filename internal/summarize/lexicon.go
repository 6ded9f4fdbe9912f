package summarize

import "strings"

// stopwords excluded from frequency scoring and word clouds.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the and for that this with was were are you your have has had but not
		they them then than what when where which while will would could should
		about after before because been being just like also very really into
		out from over under again there here his her she him its it's i'm im
		don't didn't can't won't isn't aren't wasn't did does doing got get
		going gonna yeah okay know think want said say says one two all some
		any more most other such only own same too can now day today
	`) {
		stopwords[w] = struct{}{}
	}
}

// Small valence lexicon for sentiment scoring. Scores are normalized to
// [-1, 1] by word count, so long neutral entries stay near zero.
var positiveWords = map[string]struct{}{}
var negativeWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		good great happy love loved excited proud wonderful amazing excellent
		fantastic enjoyed fun calm peaceful grateful thankful progress success
		win won accomplished finished relaxed energized hopeful inspired
	`) {
		positiveWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(`
		bad sad angry hate hated tired exhausted stressed anxious worried
		frustrated annoyed awful terrible horrible failed failure lost lonely
		sick pain hurt difficult hard struggle struggling overwhelmed afraid
	`) {
		negativeWords[w] = struct{}{}
	}
}

// ScoreSentiment returns a lexicon sentiment score in [-1, 1].
func ScoreSentiment(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	var score int
	for _, word := range words {
		w := normalizeWord(word)
		if _, ok := positiveWords[w]; ok {
			score++
		} else if _, ok := negativeWords[w]; ok {
			score--
		}
	}
	norm := float64(score) / float64(len(words)) * 10
	if norm > 1 {
		norm = 1
	}
	if norm < -1 {
		norm = -1
	}
	return norm
}

// IsStopword reports whether a word is in the built-in exclusion list.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}
