// Package presenter shows pipeline outcomes without a browser: stage captions
// go to the log and each run leaves a JSON and an SVG file behind.
package presenter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"voice-shapes/config"
	"voice-shapes/internal/application"
	"voice-shapes/internal/infra/svg"
)

type FilePresenter struct {
	dir      string
	captions config.CaptionsConfig
	logger   *slog.Logger
}

func NewFilePresenter(dir string, captions config.CaptionsConfig, logger *slog.Logger) *FilePresenter {
	return &FilePresenter{
		dir:      dir,
		captions: captions,
		logger:   logger,
	}
}

func (p *FilePresenter) Present(_ context.Context, res *application.Result) error {
	logger := p.logger.With("run_id", res.RunID)
	logger.Info(p.captions.Transcribe.String())

	if res.Rejected {
		logger.Warn(p.captions.Retry)
		return nil
	}
	logger.Info("transcript", "text", res.Transcript)

	if res.Extraction != nil {
		logger.Info(p.captions.Extract.String())
		logger.Info("shapes", "json", res.Extraction.Raw)
	}

	if res.Scene == nil {
		return nil
	}
	logger.Info(p.captions.Render.String())

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	doc, err := svg.String(*res.Scene)
	if err != nil {
		return fmt.Errorf("encoding svg: %w", err)
	}
	svgPath := filepath.Join(p.dir, res.RunID+".svg")
	if err := os.WriteFile(svgPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}

	if err := p.writeJSON(res); err != nil {
		return err
	}

	logger.Info("scene written", "path", svgPath)
	return nil
}

func (p *FilePresenter) Fail(_ context.Context, res *application.Result, err error) error {
	runID := ""
	if res != nil {
		runID = res.RunID
	}
	p.logger.Error("run failed", "run_id", runID, "error", err)
	return nil
}

func (p *FilePresenter) writeJSON(res *application.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.dir, res.RunID+".json"), data, 0644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}
