package openai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-shapes/internal/domain"
)

type WhisperClient struct {
	client            *goopenai.Client
	model             string
	language          string
	denylist          Denylist
	noSpeechThreshold float64
	tempDir           string
	logger            *slog.Logger
}

type WhisperOption func(*WhisperClient)

func WithTranscriptionModel(model string) WhisperOption {
	return func(c *WhisperClient) {
		if model != "" {
			c.model = model
		}
	}
}

func WithDenylist(words []string) WhisperOption {
	return func(c *WhisperClient) {
		c.denylist = Denylist(words)
	}
}

// WithNoSpeechThreshold switches to verbose responses and rejects results
// whose segments all have a no-speech probability above threshold.
func WithNoSpeechThreshold(threshold float64) WhisperOption {
	return func(c *WhisperClient) {
		c.noSpeechThreshold = threshold
	}
}

// WithTempDir sets where recordings are staged for upload.
func WithTempDir(dir string) WhisperOption {
	return func(c *WhisperClient) {
		c.tempDir = dir
	}
}

func NewWhisperClient(client *goopenai.Client, language string, logger *slog.Logger, opts ...WhisperOption) *WhisperClient {
	c := &WhisperClient{
		client:   client,
		model:    goopenai.Whisper1,
		language: language,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transcribe makes a single attempt. Every failure, including a transport
// error, is reported as domain.ErrTranscriptionRejected.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	f, err := os.CreateTemp(c.tempDir, "recording-*.wav")
	if err != nil {
		return "", c.reject("creating temp file", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if _, err = f.Write(audio); err != nil {
		return "", c.reject("writing temp file", err)
	}

	req := goopenai.AudioRequest{
		Model:    c.model,
		FilePath: f.Name(),
		Prompt:   "",
		Language: c.language,
		Format:   goopenai.AudioResponseFormatText,
	}
	if c.noSpeechThreshold > 0 {
		req.Format = goopenai.AudioResponseFormatVerboseJSON
	}

	resp, err := c.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", c.reject("whisper request", err)
	}

	if c.noSpeechThreshold > 0 && len(resp.Segments) > 0 {
		silent := true
		for _, seg := range resp.Segments {
			if seg.NoSpeechProb <= c.noSpeechThreshold {
				silent = false
				break
			}
		}
		if silent {
			return "", c.reject("no speech detected", nil)
		}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", c.reject("empty transcript", nil)
	}

	if word, ok := c.denylist.Match(text); ok {
		c.logger.Debug("denylisted transcript", "text", text, "match", word)
		return "", c.reject("denylisted transcript", nil)
	}

	return text, nil
}

func (c *WhisperClient) reject(reason string, cause error) error {
	if cause != nil {
		c.logger.Warn("transcription failed", "reason", reason, "error", cause)
	} else {
		c.logger.Info("transcription rejected", "reason", reason)
	}
	return fmt.Errorf("%s: %w", reason, domain.ErrTranscriptionRejected)
}
