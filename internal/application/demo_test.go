package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"voice-shapes/internal/application"
	"voice-shapes/internal/domain"
)

type mockAudioSource struct {
	recordings [][]byte
	index      int
}

func (m *mockAudioSource) Start(_ context.Context) error { return nil }
func (m *mockAudioSource) Stop() error                   { return nil }
func (m *mockAudioSource) Name() string                  { return "mock" }

func (m *mockAudioSource) NextRecording(ctx context.Context) ([]byte, error) {
	if m.index >= len(m.recordings) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	audio := m.recordings[m.index]
	m.index++
	return audio, nil
}

type mockPresenter struct {
	mu        sync.Mutex
	presented []*application.Result
	failures  []error
	done      chan struct{}
	expected  int
}

func (m *mockPresenter) Present(_ context.Context, res *application.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presented = append(m.presented, res)
	m.check()
	return nil
}

func (m *mockPresenter) Fail(_ context.Context, _ *application.Result, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, err)
	m.check()
	return nil
}

func (m *mockPresenter) check() {
	if len(m.presented)+len(m.failures) == m.expected {
		close(m.done)
	}
}

func TestDemo_ProcessesRecordings(t *testing.T) {
	audioSource := &mockAudioSource{
		recordings: [][]byte{
			[]byte("rect"),
			[]byte("silence"),
			[]byte("bad"),
		},
	}

	stt := &mockSTT{transcriptions: map[string]string{
		"rect": "4と2の長方形",
		"bad":  "壊れた返答",
	}}

	extractor := &mockExtractor{extractions: map[string]*domain.Extraction{
		"4と2の長方形": {
			Raw:    `{"shapes":[{"type":"rectangle","width":4,"height":2}]}`,
			Shapes: domain.ShapeList{domain.Rectangle(4, 2)},
		},
	}}

	presenter := &mockPresenter{done: make(chan struct{}), expected: 3}
	pipeline := application.NewPipeline(stt, &failingExtractor{
		next: extractor,
		fail: "壊れた返答",
	}, nil, discardLogger())

	demo := application.NewDemo(audioSource, pipeline, presenter, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- demo.Run(ctx)
	}()

	select {
	case <-presenter.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for recordings to be processed")
	}

	cancel()
	if err := <-errCh; err != context.Canceled {
		t.Errorf("Run: got %v, want context.Canceled", err)
	}

	presenter.mu.Lock()
	defer presenter.mu.Unlock()

	if len(presenter.presented) != 2 {
		t.Fatalf("presented: got %d, want 2", len(presenter.presented))
	}
	if presenter.presented[0].Scene == nil {
		t.Error("first run should have a scene")
	}
	if !presenter.presented[1].Rejected {
		t.Error("second run should be rejected")
	}
	if len(presenter.failures) != 1 {
		t.Errorf("failures: got %d, want 1", len(presenter.failures))
	}
}

type failingExtractor struct {
	next *mockExtractor
	fail string
}

func (f *failingExtractor) Extract(ctx context.Context, transcript string) (*domain.Extraction, error) {
	if transcript == f.fail {
		return nil, &domain.ExtractionError{Raw: "not json", Reason: "invalid JSON"}
	}
	return f.next.Extract(ctx, transcript)
}
