package application

import "time"

type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageExtract    Stage = "extract"
	StageRender     Stage = "render"
)

type Outcome string

const (
	OutcomeRendered Outcome = "rendered"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

type Metrics interface {
	ObserveStage(stage Stage, elapsed time.Duration, err error)
	ObserveRun(outcome Outcome)
}

type NoopMetrics struct{}

func (n *NoopMetrics) ObserveStage(_ Stage, _ time.Duration, _ error) {}

func (n *NoopMetrics) ObserveRun(_ Outcome) {}
