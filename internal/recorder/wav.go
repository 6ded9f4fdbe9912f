package recorder

import (
	"encoding/binary"
	"fmt"
	"os"
)

// wavWriter streams 16-bit mono PCM into a WAV file. The RIFF and data
// sizes are patched on close once the payload length is known.
type wavWriter struct {
	file       *os.File
	sampleRate int
	dataBytes  int64
}

const wavHeaderSize = 44

func newWavWriter(path string, sampleRate int) (*wavWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav file: %w", err)
	}

	w := &wavWriter{file: file, sampleRate: sampleRate}
	if err := w.writeHeader(0); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *wavWriter) writeHeader(dataLen uint32) error {
	var header [wavHeaderSize]byte
	byteRate := uint32(w.sampleRate * 2) // mono, 16-bit

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataLen)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(header[34:36], 16) // bits per sample
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataLen)

	if _, err := w.file.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

func (w *wavWriter) Write(p []byte) (int, error) {
	n, err := w.file.WriteAt(p, wavHeaderSize+w.dataBytes)
	w.dataBytes += int64(n)
	return n, err
}

// Close patches the header sizes and syncs the file. Returns the total
// file size.
func (w *wavWriter) Close() (int64, error) {
	if err := w.writeHeader(uint32(w.dataBytes)); err != nil {
		w.file.Close()
		return 0, err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return 0, err
	}
	if err := w.file.Close(); err != nil {
		return 0, err
	}
	return wavHeaderSize + w.dataBytes, nil
}
