package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// WAVWriter records interleaved stereo 16-bit samples to a WAV file.
type WAVWriter struct {
	f   *os.File
	enc *wav.Encoder
	buf goaudio.IntBuffer
}

// CreateWAV creates the file at path for samples at the given rate.
func CreateWAV(path string, rate int) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav: %w", err)
	}
	return &WAVWriter{
		f:   f,
		enc: wav.NewEncoder(f, rate, 16, 2, wavFormatPCM),
		buf: goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
			SourceBitDepth: 16,
		},
	}, nil
}

// Write appends interleaved stereo samples.
func (w *WAVWriter) Write(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	w.buf.Data = w.buf.Data[:0]
	for _, s := range samples {
		w.buf.Data = append(w.buf.Data, int(s))
	}
	return w.enc.Write(&w.buf)
}

// Close finalizes the WAV header and closes the file.
func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return w.f.Close()
}
