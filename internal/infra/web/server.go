// Package web serves the browser front end: a page that records speech and a
// JSON endpoint that runs one recording through the pipeline.
package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"voice-shapes/config"
	"voice-shapes/internal/application"
	"voice-shapes/internal/domain"
	"voice-shapes/internal/infra/audio"
	"voice-shapes/internal/infra/svg"
)

const maxAudioBytes = 10 << 20

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type Server struct {
	addr      string
	engine    *gin.Engine
	server    *http.Server
	pipeline  application.Processor
	captions  config.CaptionsConfig
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
	rateLimit int
	metrics   MetricsHandler
}

// MetricsHandler is implemented by the Prometheus metrics set.
type MetricsHandler interface {
	HTTPObserver
	Handler() http.Handler
}

type Option func(*Server)

// WithMetrics records request metrics and serves them on GET /metrics.
func WithMetrics(m MetricsHandler) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRateLimit caps recordings per client IP per minute. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		s.rateLimit = perMinute
	}
}

func NewServer(addr string, pipeline application.Processor, captions config.CaptionsConfig, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		addr:      addr,
		pipeline:  pipeline,
		captions:  captions,
		logger:    logger,
		rateLimit: 30,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger, s.metrics))
	engine.SetHTMLTemplate(indexTemplate)

	engine.GET("/", s.handleIndex)
	engine.GET("/health", s.handleHealth)

	api := engine.Group("/api")
	if s.rateLimit > 0 {
		api.Use(NewRateLimiter(s.rateLimit, time.Minute).Middleware())
	}
	api.POST("/recordings", s.handleRecording)

	if s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.running = false
	return nil
}

type indexPage struct {
	Title      string
	Overview   string
	Record     string
	Retry      string
	Transcribe string
	Extract    string
	Render     string
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index", indexPage{
		Title:      s.captions.Title,
		Overview:   s.captions.Overview(),
		Record:     s.captions.Record,
		Retry:      s.captions.Retry,
		Transcribe: s.captions.Transcribe.String(),
		Extract:    s.captions.Extract.String(),
		Render:     s.captions.Render.String(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type recordingResponse struct {
	RunID      string           `json:"run_id,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
	Rejected   bool             `json:"rejected"`
	Message    string           `json:"message,omitempty"`
	RawJSON    string           `json:"raw_json,omitempty"`
	Shapes     domain.ShapeList `json:"shapes,omitempty"`
	Scene      *domain.Scene    `json:"scene,omitempty"`
	SVG        string           `json:"svg,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func (s *Server) handleRecording(c *gin.Context) {
	data, status, err := readRecording(c)
	if err != nil {
		c.JSON(status, recordingResponse{Error: err.Error()})
		return
	}

	if err := audio.ValidateWAV(data); err != nil {
		c.JSON(http.StatusUnsupportedMediaType, recordingResponse{Error: err.Error()})
		return
	}

	res, err := s.pipeline.Process(c.Request.Context(), data)
	resp := recordingResponse{}
	if res != nil {
		resp.RunID = res.RunID
		resp.Transcript = res.Transcript
		resp.Rejected = res.Rejected
	}

	if err != nil {
		resp.Error = err.Error()
		var extractionErr *domain.ExtractionError
		switch {
		case errors.As(err, &extractionErr):
			resp.RawJSON = extractionErr.Raw
			c.JSON(http.StatusUnprocessableEntity, resp)
		case errors.Is(err, domain.ErrUnsupportedAudio):
			c.JSON(http.StatusUnsupportedMediaType, resp)
		default:
			s.logger.Error("pipeline failed", "run_id", resp.RunID, "error", err)
			c.JSON(http.StatusBadGateway, resp)
		}
		return
	}

	if res.Rejected {
		resp.Message = s.captions.Retry
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.RawJSON = res.Extraction.Raw
	resp.Shapes = res.Extraction.Shapes
	resp.Scene = res.Scene

	doc, err := svg.String(*res.Scene)
	if err != nil {
		s.logger.Error("encoding svg", "run_id", res.RunID, "error", err)
		resp.Error = err.Error()
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	resp.SVG = doc

	c.JSON(http.StatusOK, resp)
}

// readRecording accepts either a raw request body or a multipart "audio" field.
func readRecording(c *gin.Context) ([]byte, int, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAudioBytes+1<<20)

	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("audio")
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("missing audio field: %w", err)
		}
		f, err := header.Open()
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("opening upload: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxAudioBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("recording too large")
		}
		return nil, http.StatusBadRequest, fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxAudioBytes {
		return nil, http.StatusRequestEntityTooLarge, errors.New("recording too large")
	}
	if len(data) == 0 {
		return nil, http.StatusBadRequest, errors.New("empty recording")
	}

	return data, http.StatusOK, nil
}
