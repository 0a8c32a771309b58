// Package openai implements the transcription and shape extraction stages on
// top of the OpenAI API.
package openai

import (
	goopenai "github.com/sashabaranov/go-openai"
)

// NewClient builds the process-wide API client. An empty baseURL keeps the
// public endpoint.
func NewClient(apiKey, baseURL string) *goopenai.Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return goopenai.NewClientWithConfig(cfg)
}
