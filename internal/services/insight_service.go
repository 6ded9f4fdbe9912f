package services

import (
	"lifewrapped/internal/models"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/summarize"
	"sort"
	"strings"
	"time"
	"unicode"
)

// InsightService derives word clouds, mention reports and sentiment
// timelines from raw transcripts. Everything here is computed locally;
// no AI engine is involved.
type InsightService struct {
	store     *storage.Store
	excluded  map[string]struct{}
	limit     int
	minLength int
}

func NewInsightService(store *storage.Store, excludedWords []string, limit, minWordLength int) *InsightService {
	if limit <= 0 {
		limit = 50
	}
	if minWordLength <= 0 {
		minWordLength = 3
	}
	excluded := make(map[string]struct{}, len(excludedWords))
	for _, w := range excludedWords {
		excluded[strings.ToLower(w)] = struct{}{}
	}
	return &InsightService{
		store:     store,
		excluded:  excluded,
		limit:     limit,
		minLength: minWordLength,
	}
}

// WordCloud returns the most frequent transcript words in [from, to),
// skipping stopwords and user-excluded words.
func (s *InsightService) WordCloud(from, to time.Time) ([]models.WordCount, error) {
	transcripts, err := s.transcriptsInRange(from, to)
	if err != nil {
		return nil, err
	}

	freq := make(map[string]int)
	for _, text := range transcripts {
		for _, word := range strings.Fields(text) {
			w := normalizeInsightWord(word)
			if len(w) < s.minLength || summarize.IsStopword(w) {
				continue
			}
			if _, skip := s.excluded[w]; skip {
				continue
			}
			freq[w]++
		}
	}

	cloud := make([]models.WordCount, 0, len(freq))
	for word, count := range freq {
		cloud = append(cloud, models.WordCount{Word: word, Count: count})
	}
	sort.Slice(cloud, func(i, j int) bool {
		if cloud[i].Count != cloud[j].Count {
			return cloud[i].Count > cloud[j].Count
		}
		return cloud[i].Word < cloud[j].Word
	})
	if len(cloud) > s.limit {
		cloud = cloud[:s.limit]
	}
	return cloud, nil
}

// placeMarkers are prepositions that suggest the following proper noun
// is a location rather than a person.
var placeMarkers = map[string]struct{}{
	"at": {}, "in": {}, "near": {}, "from": {}, "to": {},
}

// Mentions detects people and places by capitalization: a capitalized
// word that is not sentence-initial counts as a proper noun, and the
// preceding word decides person versus place.
func (s *InsightService) Mentions(from, to time.Time) (*models.MentionReport, error) {
	transcripts, err := s.transcriptsInRange(from, to)
	if err != nil {
		return nil, err
	}

	people := make(map[string]int)
	places := make(map[string]int)

	for _, text := range transcripts {
		for _, sentence := range summarize.SplitSentences(text) {
			words := strings.Fields(sentence)
			for i := 1; i < len(words); i++ {
				name := strings.TrimFunc(words[i], func(r rune) bool {
					return !unicode.IsLetter(r)
				})
				if name == "" || !unicode.IsUpper([]rune(name)[0]) {
					continue
				}
				if summarize.IsStopword(name) || name == "I" {
					continue
				}
				prev := strings.ToLower(strings.Trim(words[i-1], ".,!?"))
				if _, isPlace := placeMarkers[prev]; isPlace {
					places[name]++
				} else {
					people[name]++
				}
			}
		}
	}

	return &models.MentionReport{
		From:   from,
		To:     to,
		People: sortMentions(people),
		Places: sortMentions(places),
	}, nil
}

// SentimentTimeline scores each day's combined transcript text.
func (s *InsightService) SentimentTimeline(from, to time.Time) ([]models.SentimentPoint, error) {
	sessions, err := s.store.SessionsInRange(from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time][]string)
	for _, sess := range sessions {
		text, err := s.sessionText(sess)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		day := time.Date(sess.StartTime.Year(), sess.StartTime.Month(), sess.StartTime.Day(),
			0, 0, 0, 0, sess.StartTime.Location())
		byDay[day] = append(byDay[day], text)
	}

	points := make([]models.SentimentPoint, 0, len(byDay))
	for day, texts := range byDay {
		points = append(points, models.SentimentPoint{
			Day:   day,
			Score: summarize.ScoreSentiment(strings.Join(texts, " ")),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })
	return points, nil
}

func (s *InsightService) transcriptsInRange(from, to time.Time) ([]string, error) {
	sessions, err := s.store.SessionsInRange(from, to)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		text, err := s.sessionText(sess)
		if err != nil {
			return nil, err
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

func (s *InsightService) sessionText(sess models.RecordingSession) (string, error) {
	segments, err := s.store.SegmentsForSession(sess.ID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " "), nil
}

func sortMentions(counts map[string]int) []models.Mention {
	mentions := make([]models.Mention, 0, len(counts))
	for name, count := range counts {
		mentions = append(mentions, models.Mention{Name: name, Count: count})
	}
	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Count != mentions[j].Count {
			return mentions[i].Count > mentions[j].Count
		}
		return mentions[i].Name < mentions[j].Name
	})
	return mentions
}

func normalizeInsightWord(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}))
}
