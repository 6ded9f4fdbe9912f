package transcription

import "strings"

// Accumulator reconciles streaming hypotheses into a full transcript.
//
// Speech engines treat pauses as utterance boundaries and do not reliably
// finalize text spoken before a long pause: the next partial simply starts
// over with the new utterance. Waiting for finals alone would drop that
// speech. The accumulator detects the restart by comparing word counts:
// a partial with fewer words than the previous one means the engine
// abandoned the prior utterance, which is committed before the new
// partial is tracked.
type Accumulator struct {
	current      string
	currentWords int
	utterances   []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Partial feeds one streaming hypothesis.
func (a *Accumulator) Partial(text string) {
	words := CountWords(text)
	if words < a.currentWords && a.current != "" {
		a.utterances = append(a.utterances, a.current)
	}
	a.current = text
	a.currentWords = words
}

// Final commits the engine-finalized text for the current utterance. An
// empty final keeps the last partial instead.
func (a *Accumulator) Final(text string) {
	if text != "" {
		a.current = text
	}
	a.commit()
}

// Flush commits whatever partial is pending. Called on engine timeout,
// where no final result will arrive.
func (a *Accumulator) Flush() {
	a.commit()
}

func (a *Accumulator) commit() {
	if a.current != "" {
		a.utterances = append(a.utterances, a.current)
	}
	a.current = ""
	a.currentWords = 0
}

// Utterances returns the committed utterances in order.
func (a *Accumulator) Utterances() []string {
	return a.utterances
}

// Transcript joins all committed utterances with single spaces.
func (a *Accumulator) Transcript() string {
	return strings.Join(a.utterances, " ")
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
