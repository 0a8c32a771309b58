package audio

import (
	"bytes"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"voice-shapes/internal/application"
	"voice-shapes/internal/domain"
)

// ValidateWAV accepts RIFF/WAVE data with at least one channel and a
// non-empty data chunk.
func ValidateWAV(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty recording: %w", domain.ErrUnsupportedAudio)
	}
	if !wav.NewDecoder(bytes.NewReader(data)).IsValidFile() {
		return fmt.Errorf("not a WAV recording: %w", domain.ErrUnsupportedAudio)
	}
	return nil
}

// EncodeWAV wraps PCM samples in a WAV container. The encoder needs to seek
// back to patch chunk sizes, so it goes through a temp file.
func EncodeWAV(samples []int, format application.AudioFormat) ([]byte, error) {
	f, err := os.CreateTemp("", "capture-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, format.SampleRate, format.BitDepth, format.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: format.BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encoding samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalizing wav: %w", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return nil, fmt.Errorf("reading encoded wav: %w", err)
	}
	return data, nil
}
