package openai

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-shapes/internal/domain"
)

const systemPrompt = `Extract the geometric shapes mentioned by the user and answer with JSON only.
Ignore anything that is not about shapes. The user may speak any language.

Output format:
{"shapes": [{"type": "rectangle", "width": <number>, "height": <number>}, {"type": "circle", "radius": <number>}]}

Rules:
- Treat a square as a rectangle with equal width and height.
- Convert a diameter into a radius before answering.
- Keep the order in which the shapes were mentioned.
- If no shape is mentioned, answer {"shapes": []}`

type ShapeExtractor struct {
	client *goopenai.Client
	model  string
	logger *slog.Logger
}

func NewShapeExtractor(client *goopenai.Client, model string, logger *slog.Logger) *ShapeExtractor {
	if model == "" {
		model = goopenai.GPT3Dot5Turbo1106
	}
	return &ShapeExtractor{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (e *ShapeExtractor) Extract(ctx context.Context, transcript string) (*domain.Extraction, error) {
	req := goopenai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: transcript},
		},
		// A literal 0 is dropped by omitempty and the API would fall back to 1.
		Temperature: math.SmallestNonzeroFloat32,
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, &domain.ExtractionError{Reason: "empty response from model"}
	}

	raw := resp.Choices[0].Message.Content
	e.logger.Debug("model reply", "raw", raw, "model", resp.Model)

	shapes, err := ParseShapes(raw)
	if err != nil {
		return nil, err
	}

	return &domain.Extraction{Raw: raw, Shapes: shapes}, nil
}
