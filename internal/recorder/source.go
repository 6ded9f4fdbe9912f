package recorder

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/atomic"
)

// PCMFileSource reads raw 16-bit mono PCM from a file or FIFO written
// by an external capture process. Close turns subsequent reads into a
// clean end of stream so the capture loop finalizes its trailing chunk.
type PCMFileSource struct {
	f          *os.File
	sampleRate int
	closed     atomic.Bool
}

func OpenPCMFileSource(path string, sampleRate int) (*PCMFileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open capture device %s: %w", path, err)
	}
	return &PCMFileSource{f: f, sampleRate: sampleRate}, nil
}

func (s *PCMFileSource) Read(p []byte) (int, error) {
	n, err := s.f.Read(p)
	if err != nil && s.closed.Load() {
		return n, io.EOF
	}
	return n, err
}

func (s *PCMFileSource) SampleRate() int { return s.sampleRate }

// Close ends the stream. The in-flight Read unblocks with io.EOF.
func (s *PCMFileSource) Close() error {
	s.closed.Store(true)
	return s.f.Close()
}
