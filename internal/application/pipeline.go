package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voice-shapes/internal/domain"
	"voice-shapes/internal/render"
)

const tracerName = "voice-shapes/internal/application"

// Processor runs one recording through all stages.
type Processor interface {
	Process(ctx context.Context, audio []byte) (*Result, error)
}

// Result holds whatever the run produced before it stopped. Extraction and
// Scene are nil when an earlier stage did not succeed.
type Result struct {
	RunID      string             `json:"run_id"`
	Transcript string             `json:"transcript"`
	Rejected   bool               `json:"rejected"`
	Extraction *domain.Extraction `json:"extraction,omitempty"`
	Scene      *domain.Scene      `json:"scene,omitempty"`
}

type Pipeline struct {
	stt       SpeechToText
	extractor ShapeExtractor
	metrics   Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewPipeline(
	stt SpeechToText,
	extractor ShapeExtractor,
	metrics Metrics,
	logger *slog.Logger,
) *Pipeline {
	if metrics == nil {
		metrics = &NoopMetrics{}
	}
	return &Pipeline{
		stt:       stt,
		extractor: extractor,
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// Process transcribes, extracts and renders. A rejected transcription is a
// normal outcome (Rejected is set, err is nil); any other failure stops the
// run and is returned together with the partial result.
func (p *Pipeline) Process(ctx context.Context, audio []byte) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", res.RunID)

	ctx, span := p.tracer.Start(ctx, "pipeline.process", trace.WithAttributes(
		attribute.String("run.id", res.RunID),
		attribute.Int("audio.bytes", len(audio)),
	))
	defer span.End()

	if len(audio) == 0 {
		p.metrics.ObserveRun(OutcomeFailed)
		return res, fmt.Errorf("empty recording: %w", domain.ErrUnsupportedAudio)
	}

	logger.Info("transcribing", "bytes", len(audio))
	err := p.stage(ctx, StageTranscribe, func(ctx context.Context) error {
		text, err := p.stt.Transcribe(ctx, audio)
		res.Transcript = text
		return err
	})
	if errors.Is(err, domain.ErrTranscriptionRejected) {
		logger.Info("transcription rejected")
		res.Rejected = true
		res.Transcript = ""
		span.SetAttributes(attribute.Bool("run.rejected", true))
		p.metrics.ObserveRun(OutcomeRejected)
		return res, nil
	}
	if err != nil {
		p.metrics.ObserveRun(OutcomeFailed)
		return res, fmt.Errorf("transcribing: %w", err)
	}
	logger.Info("transcribed", "text", res.Transcript)

	err = p.stage(ctx, StageExtract, func(ctx context.Context) error {
		extraction, err := p.extractor.Extract(ctx, res.Transcript)
		res.Extraction = extraction
		return err
	})
	if err != nil {
		p.metrics.ObserveRun(OutcomeFailed)
		return res, fmt.Errorf("extracting: %w", err)
	}
	logger.Info("extracted shapes", "count", len(res.Extraction.Shapes), "raw", res.Extraction.Raw)

	_ = p.stage(ctx, StageRender, func(context.Context) error {
		scene := render.Render(res.Extraction.Shapes)
		res.Scene = &scene
		return nil
	})
	logger.Info("rendered scene", "primitives", len(res.Scene.Primitives))

	p.metrics.ObserveRun(OutcomeRendered)
	return res, nil
}

func (p *Pipeline) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+string(stage))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.ObserveStage(stage, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
