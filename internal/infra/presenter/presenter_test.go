package presenter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voice-shapes/config"
	"voice-shapes/internal/application"
	"voice-shapes/internal/domain"
	"voice-shapes/internal/infra/presenter"
	"voice-shapes/internal/render"
)

func testCaptions(t *testing.T) config.CaptionsConfig {
	t.Helper()
	cfg, err := config.Parse([]byte("captions:\n  retry: please record again\n"))
	if err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	return cfg.Captions
}

func TestFilePresenter_WritesSceneFiles(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	p := presenter.NewFilePresenter(dir, testCaptions(t), slog.New(slog.NewTextHandler(&logs, nil)))

	shapes := domain.ShapeList{domain.Rectangle(4, 2)}
	scene := render.Render(shapes)
	res := &application.Result{
		RunID:      "run-1",
		Transcript: "横4縦2の長方形",
		Extraction: &domain.Extraction{Raw: `{"shapes":[{"type":"rectangle","width":4,"height":2}]}`, Shapes: shapes},
		Scene:      &scene,
	}

	if err := p.Present(context.Background(), res); err != nil {
		t.Fatalf("Present error: %v", err)
	}

	doc, err := os.ReadFile(filepath.Join(dir, "run-1.svg"))
	if err != nil {
		t.Fatalf("reading svg: %v", err)
	}
	if !strings.Contains(string(doc), "fill:orange") {
		t.Error("svg should contain the rectangle")
	}

	data, err := os.ReadFile(filepath.Join(dir, "run-1.json"))
	if err != nil {
		t.Fatalf("reading json: %v", err)
	}
	var decoded application.Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding json: %v", err)
	}
	if decoded.Transcript != res.Transcript {
		t.Errorf("Transcript: got %q", decoded.Transcript)
	}

	if !strings.Contains(logs.String(), "横4縦2の長方形") {
		t.Error("transcript should be logged")
	}
}

func TestFilePresenter_RejectedShowsRetryPrompt(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	p := presenter.NewFilePresenter(dir, testCaptions(t), slog.New(slog.NewTextHandler(&logs, nil)))

	if err := p.Present(context.Background(), &application.Result{RunID: "run-2", Rejected: true}); err != nil {
		t.Fatalf("Present error: %v", err)
	}

	if !strings.Contains(logs.String(), "please record again") {
		t.Errorf("retry caption missing from logs:\n%s", logs.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected runs should not write files, found %d", len(entries))
	}
}

func TestFilePresenter_Fail(t *testing.T) {
	var logs bytes.Buffer
	p := presenter.NewFilePresenter(t.TempDir(), testCaptions(t), slog.New(slog.NewTextHandler(&logs, nil)))

	err := p.Fail(context.Background(), nil, errors.New("model returned garbage"))
	if err != nil {
		t.Fatalf("Fail error: %v", err)
	}
	if !strings.Contains(logs.String(), "model returned garbage") {
		t.Error("failure should be logged")
	}
}
