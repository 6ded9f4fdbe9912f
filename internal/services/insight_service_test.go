package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifewrapped/internal/models"
)

var insightRangeFrom = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
var insightRangeTo = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func TestWordCloudExcludesStopwordsAndConfiguredWords(t *testing.T) {
	store := newTestStore(t)
	seedTranscribedSession(t, store, insightRangeFrom.Add(24*time.Hour), models.CategoryWork,
		"The garden garden garden needs water. Um um the weather was nice.")

	insights := NewInsightService(store, []string{"um"}, 50, 3)

	cloud, err := insights.WordCloud(insightRangeFrom, insightRangeTo)
	require.NoError(t, err)
	require.NotEmpty(t, cloud)
	assert.Equal(t, models.WordCount{Word: "garden", Count: 3}, cloud[0])

	for _, wc := range cloud {
		assert.NotEqual(t, "the", wc.Word)
		assert.NotEqual(t, "um", wc.Word)
	}
}

func TestWordCloudHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	seedTranscribedSession(t, store, insightRangeFrom.Add(24*time.Hour), models.CategoryWork,
		"apple apple banana banana cherry cherry dates eggs figs grapes")

	insights := NewInsightService(store, nil, 2, 3)

	cloud, err := insights.WordCloud(insightRangeFrom, insightRangeTo)
	require.NoError(t, err)
	assert.Len(t, cloud, 2)
}

func TestMentionsSplitsPeopleAndPlaces(t *testing.T) {
	store := newTestStore(t)
	seedTranscribedSession(t, store, insightRangeFrom.Add(24*time.Hour), models.CategoryPersonal,
		"I had coffee with Marcus today. We met at Brookfield before noon. Later Marcus called again.")

	insights := NewInsightService(store, nil, 50, 3)

	report, err := insights.Mentions(insightRangeFrom, insightRangeTo)
	require.NoError(t, err)

	require.NotEmpty(t, report.People)
	assert.Equal(t, models.Mention{Name: "Marcus", Count: 2}, report.People[0])

	require.Len(t, report.Places, 1)
	assert.Equal(t, models.Mention{Name: "Brookfield", Count: 1}, report.Places[0])
}

func TestMentionsIgnoreSentenceInitialCapitals(t *testing.T) {
	store := newTestStore(t)
	seedTranscribedSession(t, store, insightRangeFrom.Add(24*time.Hour), models.CategoryPersonal,
		"Breakfast was quiet. Nothing else happened.")

	insights := NewInsightService(store, nil, 50, 3)

	report, err := insights.Mentions(insightRangeFrom, insightRangeTo)
	require.NoError(t, err)
	assert.Empty(t, report.People)
	assert.Empty(t, report.Places)
}

func TestSentimentTimelineGroupsByDay(t *testing.T) {
	store := newTestStore(t)
	day1 := insightRangeFrom.Add(24 * time.Hour)
	day2 := insightRangeFrom.Add(72 * time.Hour)
	seedTranscribedSession(t, store, day1, models.CategoryPersonal,
		"What a wonderful happy amazing day.")
	seedTranscribedSession(t, store, day2, models.CategoryPersonal,
		"Terrible awful stressful day, everything failed.")

	insights := NewInsightService(store, nil, 50, 3)

	points, err := insights.SentimentTimeline(insightRangeFrom, insightRangeTo)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.True(t, points[0].Day.Before(points[1].Day))
	assert.Positive(t, points[0].Score)
	assert.Negative(t, points[1].Score)
}
