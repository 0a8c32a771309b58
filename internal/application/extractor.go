package application

import (
	"context"

	"voice-shapes/internal/domain"
)

// ShapeExtractor turns free text into shape descriptors. Replies that do not
// match the schema fail with *domain.ExtractionError.
type ShapeExtractor interface {
	Extract(ctx context.Context, transcript string) (*domain.Extraction, error)
}
