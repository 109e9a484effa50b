// Package telemetry carries the ambient observability stack: a
// structured, per-job step logger (grounded on the teacher's
// internal/log.StepLogger/ProgressIndicator) and a Prometheus metrics
// registry (grounded on internal/interfaces/http.MetricsRegistry),
// generalized from the teacher's trading pipeline to the forensic
// engine's five stages.
package telemetry

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Stages names the pipeline's five stages in order. The orchestrator logs
// ingest, forensic and risk as its steps; compliance runs inside the risk
// step, and no report step is logged.
var Stages = []string{"ingest", "forensic", "risk", "compliance", "report"}

// StepLogger logs structured start/complete/fail events for one job's
// stage progression, mirroring the teacher's StepLogger without the
// terminal spinner (the engine runs headless, behind the CLI/HTTP API).
type StepLogger struct {
	jobID       string
	currentStep string
	startedAt   time.Time
	stepStarted time.Time
}

// NewStepLogger begins tracking one job's stage timings.
func NewStepLogger(jobID string) *StepLogger {
	return &StepLogger{jobID: jobID, startedAt: time.Now()}
}

// StartStep begins timing a named stage.
func (sl *StepLogger) StartStep(step string) {
	sl.currentStep = step
	sl.stepStarted = time.Now()
	log.Info().Str("job_id", sl.jobID).Str("step", step).Msg("stage started")
}

// CompleteStep records the current stage's duration and logs success.
func (sl *StepLogger) CompleteStep() {
	if sl.currentStep == "" {
		return
	}
	log.Info().
		Str("job_id", sl.jobID).
		Str("step", sl.currentStep).
		Dur("duration", time.Since(sl.stepStarted)).
		Msg("stage completed")
}

// Fail logs the current stage's failure with its reason.
func (sl *StepLogger) Fail(reason string) {
	log.Error().
		Str("job_id", sl.jobID).
		Str("step", sl.currentStep).
		Str("reason", reason).
		Dur("elapsed", time.Since(sl.startedAt)).
		Msg("job failed")
}

// Finish logs total job duration once every stage has completed.
func (sl *StepLogger) Finish() {
	log.Info().
		Str("job_id", sl.jobID).
		Dur("total_duration", time.Since(sl.startedAt)).
		Msg("job completed")
}
