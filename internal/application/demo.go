package application

import (
	"context"
	"fmt"
	"log/slog"
)

// Demo feeds recordings from an audio source through the pipeline until the
// context is cancelled. It is the headless counterpart of the web page.
type Demo struct {
	audio     AudioSource
	pipeline  Processor
	presenter Presenter
	logger    *slog.Logger
}

func NewDemo(
	audio AudioSource,
	pipeline Processor,
	presenter Presenter,
	logger *slog.Logger,
) *Demo {
	return &Demo{
		audio:     audio,
		pipeline:  pipeline,
		presenter: presenter,
		logger:    logger,
	}
}

func (d *Demo) Run(ctx context.Context) error {
	d.logger.Info("starting audio source", "source", d.audio.Name())
	if err := d.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer d.audio.Stop()

	d.logger.Info("demo ready, waiting for recordings")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := d.processOneRecording(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				d.logger.Error("processing recording", "error", err)
			}
		}
	}
}

func (d *Demo) processOneRecording(ctx context.Context) error {
	audioData, err := d.audio.NextRecording(ctx)
	if err != nil {
		return fmt.Errorf("getting audio: %w", err)
	}

	if len(audioData) == 0 {
		return nil
	}

	d.logger.Info("received recording", "bytes", len(audioData))

	res, err := d.pipeline.Process(ctx, audioData)
	if err != nil {
		if failErr := d.presenter.Fail(ctx, res, err); failErr != nil {
			d.logger.Error("presenting failure", "error", failErr)
		}
		return fmt.Errorf("processing: %w", err)
	}

	if err := d.presenter.Present(ctx, res); err != nil {
		d.logger.Error("presenting result", "error", err)
	}

	return nil
}
