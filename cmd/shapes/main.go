package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"voice-shapes/config"
	"voice-shapes/internal/application"
	"voice-shapes/internal/infra/audio"
	"voice-shapes/internal/infra/metrics"
	"voice-shapes/internal/infra/openai"
	"voice-shapes/internal/infra/presenter"
	"voice-shapes/internal/infra/tracing"
	"voice-shapes/internal/infra/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("loading .env", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	err = run(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("voice shapes demo stopped", "error", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup, so it returns instead of exiting.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.OpenAI.APIKey == "" {
		return errors.New("missing OpenAI API key: set openai.api_key or OPENAI_API_KEY")
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, tracing.Config{
			ServiceName: "voice-shapes",
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRate:  cfg.Tracing.SampleRate,
		}, logger)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("flushing traces", "error", err)
			}
		}()
	}

	var m *metrics.Metrics
	var pipelineMetrics application.Metrics = &application.NoopMetrics{}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		pipelineMetrics = m
	}

	client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	transcriber := openai.NewWhisperClient(client, cfg.OpenAI.Language, logger,
		openai.WithTranscriptionModel(cfg.OpenAI.TranscriptionModel),
		openai.WithDenylist(cfg.Transcriber.Denylist),
		openai.WithNoSpeechThreshold(cfg.Transcriber.NoSpeechThreshold),
	)
	extractor := openai.NewShapeExtractor(client, cfg.OpenAI.ChatModel, logger)

	pipeline := application.NewPipeline(transcriber, extractor, pipelineMetrics, logger)

	logger.Info("starting voice shapes demo",
		"audio_source", cfg.Audio.Source,
		"flow", cfg.Captions.Overview(),
	)

	if cfg.Audio.Source == "file" || cfg.Audio.Source == "microphone" {
		return runHeadless(ctx, cfg, pipeline, logger)
	}
	if cfg.Audio.Source != "http" {
		logger.Warn("unknown audio source, using http", "source", cfg.Audio.Source)
	}
	return serve(ctx, cfg, pipeline, m, logger)
}

func serve(ctx context.Context, cfg *config.Config, pipeline application.Processor, m *metrics.Metrics, logger *slog.Logger) error {
	opts := []web.Option{web.WithRateLimit(*cfg.HTTP.RateLimit)}
	if m != nil {
		opts = append(opts, web.WithMetrics(m))
	}

	server := web.NewServer(cfg.HTTP.Addr, pipeline, cfg.Captions, logger, opts...)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting web server: %w", err)
	}

	<-ctx.Done()
	if err := server.Stop(); err != nil {
		return fmt.Errorf("stopping web server: %w", err)
	}
	return nil
}

func runHeadless(ctx context.Context, cfg *config.Config, pipeline application.Processor, logger *slog.Logger) error {
	demo := application.NewDemo(
		createAudioSource(cfg.Audio, logger),
		pipeline,
		presenter.NewFilePresenter(cfg.Output.Dir, cfg.Captions, logger),
		logger,
	)

	if err := demo.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("running demo: %w", err)
	}
	return nil
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	if cfg.Source == "file" {
		return audio.NewFileSource(cfg.FileDir, logger)
	}

	pause, err := time.ParseDuration(cfg.PauseThreshold)
	if err != nil {
		logger.Warn("invalid pause threshold, using default", "error", err, "value", cfg.PauseThreshold)
		pause = 10 * time.Second
	}
	return audio.NewMicrophoneSource(cfg.SampleRate, pause, logger)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
