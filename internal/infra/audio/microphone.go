//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"

	"voice-shapes/internal/application"
)

const (
	framesPerBuffer  = 1024
	silenceThreshold = 500
	maxRecording     = 30 * time.Second
)

// MicrophoneSource records from the default input device. A recording starts
// at the first loud frame and ends after pauseThreshold of silence.
type MicrophoneSource struct {
	stream         *portaudio.Stream
	frame          []int16
	format         application.AudioFormat
	pauseThreshold time.Duration
	logger         *slog.Logger
}

func NewMicrophoneSource(sampleRate int, pauseThreshold time.Duration, logger *slog.Logger) *MicrophoneSource {
	format := application.DefaultAudioFormat()
	format.SampleRate = sampleRate
	return &MicrophoneSource{
		frame:          make([]int16, framesPerBuffer),
		format:         format,
		pauseThreshold: pauseThreshold,
		logger:         logger,
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(
		m.format.Channels,
		0,
		float64(m.format.SampleRate),
		len(m.frame),
		m.frame,
	)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}

	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Info("microphone started", "sample_rate", m.format.SampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	return portaudio.Terminate()
}

func (m *MicrophoneSource) NextRecording(ctx context.Context) ([]byte, error) {
	m.logger.Info("waiting for speech")

	maxSamples := int(maxRecording.Seconds()) * m.format.SampleRate
	pauseSamples := int(m.pauseThreshold.Seconds() * float64(m.format.SampleRate))

	var samples []int
	silent := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		loud := isLoud(m.frame)
		if samples == nil && !loud {
			continue
		}

		for _, s := range m.frame {
			samples = append(samples, int(s))
		}

		if loud {
			silent = 0
		} else {
			silent += len(m.frame)
		}

		if silent >= pauseSamples || len(samples) >= maxSamples {
			break
		}
	}

	m.logger.Info("recording captured", "seconds", float64(len(samples))/float64(m.format.SampleRate))
	return EncodeWAV(samples, m.format)
}

func isLoud(frame []int16) bool {
	for _, s := range frame {
		if s > silenceThreshold || s < -silenceThreshold {
			return true
		}
	}
	return false
}
