package transcription

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w"
	}
	return strings.Join(parts, " ")
}

func TestAccumulatorGrowingPartials(t *testing.T) {
	acc := NewAccumulator()
	acc.Partial("hello")
	acc.Partial("hello there")
	acc.Final("hello there friend")

	assert.Equal(t, "hello there friend", acc.Transcript())
}

func TestAccumulatorCommitsAbandonedUtteranceOnWordCountDrop(t *testing.T) {
	acc := NewAccumulator()

	// Growing 5 -> 12 -> 20 words, then the engine resets to a short
	// hypothesis after a pause. The 20-word text must be committed
	// before the 3-word partial is tracked.
	w5, w12, w20 := words(5), words(12), words(20)
	acc.Partial(w5)
	acc.Partial(w12)
	acc.Partial(w20)
	acc.Partial(words(3))
	acc.Final(words(8))

	got := acc.Transcript()
	assert.Equal(t, w20+" "+words(8), got)
	assert.NotContains(t, got, w12+" "+w20)
}

func TestAccumulatorFlushKeepsPendingPartial(t *testing.T) {
	acc := NewAccumulator()
	acc.Partial("still talking about the")
	acc.Flush()

	assert.Equal(t, "still talking about the", acc.Transcript())
}

func TestAccumulatorEmptyFinalDoesNotErasePartial(t *testing.T) {
	acc := NewAccumulator()
	acc.Partial("something was said")
	acc.Final("")
	acc.Flush()

	assert.Equal(t, "something was said", acc.Transcript())
}

func TestAccumulatorJoinsUtterancesWithSingleSpaces(t *testing.T) {
	acc := NewAccumulator()
	acc.Final("first thought")
	acc.Partial("second longer thought here")
	acc.Partial("and") // word count drop commits the previous partial
	acc.Flush()

	assert.Equal(t, "first thought second longer thought here and", acc.Transcript())
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 3, CountWords("  one  two three "))
}
