// Package transcription turns finalized audio chunks into transcript
// segments. The speech engine itself is a black box behind the Engine
// interface; this package owns the pause-tolerant reconciliation of its
// partial hypotheses.
package transcription

import "context"

// Result is one hypothesis emitted by a speech engine. Engines emit any
// number of partials followed by zero or one final result per utterance.
type Result struct {
	Text  string
	Final bool
}

// Engine transcribes one audio file, streaming hypotheses to onResult.
// Transcribe returns once the engine has finished the file or ctx is
// cancelled. Engines may silently start a new utterance after a pause
// without finalizing the previous one; the accumulator compensates.
type Engine interface {
	Transcribe(ctx context.Context, audioPath, language string, onResult func(Result)) error
}
