// Package orchestrator implements C7: job submission, stage sequencing
// (ingest -> analyze -> score/compliance -> report), progress tracking,
// caching, retries, timeouts, and cancellation. Grounded on the
// teacher's application/pipeline.PipelineExecutor for the timed,
// step-logged stage-execution shape, and on original_source's
// agent6_orchestrator.py (OrchestratorAgent, AnalysisJob, active_jobs /
// job_history split, JobStatus/JobPriority) for the job lifecycle
// itself.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Rishikoli/IRIS1-sub001/internal/anomaly"
	"github.com/Rishikoli/IRIS1-sub001/internal/compliance"
	"github.com/Rishikoli/IRIS1-sub001/internal/config"
	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
	"github.com/Rishikoli/IRIS1-sub001/internal/eventbus"
	"github.com/Rishikoli/IRIS1-sub001/internal/forensics"
	"github.com/Rishikoli/IRIS1-sub001/internal/normalize"
	"github.com/Rishikoli/IRIS1-sub001/internal/ratios"
	"github.com/Rishikoli/IRIS1-sub001/internal/risk"
	"github.com/Rishikoli/IRIS1-sub001/internal/telemetry"
)

// Deps bundles everything the orchestrator needs from its environment.
// RulePack and Metrics are optional; a nil RulePack skips the compliance
// stage, leaving its stage status NOT_RUN and the bundle's Compliance
// nil. HistoryStore is optional; nil keeps history in-memory only.
type Deps struct {
	Ingest       IngestClient
	RulePack     *compliance.RulePack
	Metrics      *telemetry.MetricsRegistry
	HistoryStore HistoryStore
	Now          func() time.Time
}

// Orchestrator owns job, queue, and cache state. Every change to the job
// table and queue, including the status and progress updates made from
// each job's goroutine, happens while holding mu; the analytical stages
// compute into function-local results.
type Orchestrator struct {
	cfg     config.EngineConfig
	deps    Deps
	bus     *eventbus.Bus
	ingest  *guardedIngest
	cache   ResultCache
	history HistoryStore

	mu         sync.Mutex
	jobs       map[string]*domain.Job
	cancelFns  map[string]context.CancelFunc
	queue      *jobQueue
	running    int
	nowFn      func() time.Time
}

// New constructs an Orchestrator from config and dependencies.
func New(cfg config.EngineConfig, deps Deps) *Orchestrator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	var cache ResultCache
	if cfg.Cache.Backend == "redis" {
		cache = newRedisCache(cfg.Cache.RedisAddr)
	} else {
		cache = newMemoryCache()
	}

	history := deps.HistoryStore
	if history == nil {
		history = newMemoryHistoryStore()
	}

	return &Orchestrator{
		cfg:       cfg,
		deps:      deps,
		bus:       eventbus.New(),
		ingest:    newGuardedIngest(deps.Ingest, cfg.Ingest),
		cache:     cache,
		history:   history,
		jobs:      make(map[string]*domain.Job),
		cancelFns: make(map[string]context.CancelFunc),
		queue:     newJobQueue(cfg.Orchestrator.QueueCapacity),
		nowFn:     now,
	}
}

// Bus exposes the event bus for external subscribers, per spec.md §4.8.
func (o *Orchestrator) Bus() *eventbus.Bus { return o.bus }

// Submit creates a PENDING job, checks the cache, and enqueues it.
// Returns errQueueFull (QUEUE_FULL) if the priority queue is at
// capacity. analysis_types/source/periods/priority defaults follow
// spec.md §6's Job API defaults when zero-valued.
func (o *Orchestrator) Submit(ctx context.Context, symbol string, analysisTypes []string, source string, periods int, priority domain.JobPriority) (string, error) {
	if len(analysisTypes) == 0 {
		analysisTypes = []string{"forensic", "risk", "compliance"}
	}
	if source == "" {
		source = "yahoo"
	}
	if periods == 0 {
		periods = 2
	}

	jobID := fmt.Sprintf("job_%s_%d", symbol, o.nowFn().UnixNano())
	job := &domain.Job{
		JobID:         jobID,
		CompanySymbol: symbol,
		AnalysisTypes: analysisTypes,
		Source:        source,
		Periods:       periods,
		Priority:      priority,
		Status:        domain.JobPending,
		CreatedAt:     o.nowFn(),
	}

	key := cacheKey(symbol, analysisTypes, source, periods)
	if cached, ok := o.cache.Get(ctx, key); ok {
		if o.deps.Metrics != nil {
			o.deps.Metrics.CacheHits.Inc()
		}
		now := o.nowFn()
		job.Status = domain.JobCompleted
		job.Progress = 100
		job.StartedAt = &now
		job.CompletedAt = &now
		job.Results = cached
		o.storeJob(job)
		o.history.Append(job.Snapshot())
		log.Info().Str("job_id", jobID).Msg("cache hit; job completed immediately")
		return jobID, nil
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.CacheMisses.Inc()
	}

	o.storeJob(job)

	o.mu.Lock()
	err := o.queue.push(jobID, priority)
	if o.deps.Metrics != nil {
		o.deps.Metrics.QueueDepth.Set(float64(o.queue.len()))
	}
	o.mu.Unlock()
	if err != nil {
		o.mu.Lock()
		delete(o.jobs, jobID)
		o.mu.Unlock()
		return "", err
	}

	o.bus.Publish(eventbus.Event{
		Type:          eventbus.OrchestratorPipelineStarted,
		SourceAgent:   "orchestrator",
		CompanySymbol: symbol,
		Data:          map[string]interface{}{"job_id": jobID},
	})

	o.tryStartNext()
	return jobID, nil
}

func (o *Orchestrator) storeJob(job *domain.Job) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs[job.JobID] = job
}

// tryStartNext pops jobs off the queue while under max_concurrent_jobs
// and launches them on their own goroutine.
func (o *Orchestrator) tryStartNext() {
	o.mu.Lock()
	var toStart []string
	for o.running < o.cfg.Orchestrator.MaxConcurrentJobs {
		jobID, ok := o.queue.pop()
		if !ok {
			break
		}
		o.running++
		toStart = append(toStart, jobID)
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.QueueDepth.Set(float64(o.queue.len()))
		o.deps.Metrics.ActiveJobs.Set(float64(o.running))
	}
	o.mu.Unlock()

	for _, jobID := range toStart {
		go o.runJob(jobID)
	}
}

func (o *Orchestrator) finishRun() {
	o.mu.Lock()
	o.running--
	if o.deps.Metrics != nil {
		o.deps.Metrics.ActiveJobs.Set(float64(o.running))
	}
	o.mu.Unlock()
	o.tryStartNext()
}

// GetStatus returns a defensive snapshot of the job, or false if unknown.
func (o *Orchestrator) GetStatus(jobID string) (domain.Job, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.jobs[jobID]
	if !ok {
		return domain.Job{}, false
	}
	return job.Snapshot(), true
}

// GetResults returns the job's result bundle, or nil if not COMPLETED.
func (o *Orchestrator) GetResults(jobID string) (*domain.ResultBundle, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.jobs[jobID]
	if !ok || job.Status != domain.JobCompleted {
		return nil, false
	}
	return job.Results, true
}

// Cancel transitions a non-terminal job to CANCELLED. The in-flight
// stage (if any) is allowed to complete; its result is discarded per
// spec.md §5's cooperative-cancellation rule.
func (o *Orchestrator) Cancel(jobID string) error {
	o.mu.Lock()
	job, ok := o.jobs[jobID]
	if !ok {
		o.mu.Unlock()
		return domain.NewStageError(domain.InputMissing, "job not found: "+jobID, nil)
	}
	if job.Status.Terminal() {
		o.mu.Unlock()
		return domain.NewStageError(domain.Internal, "job already terminal", nil)
	}
	cancel := o.cancelFns[jobID]
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	} else {
		// Job was never started (still PENDING in queue): cancel directly.
		o.mu.Lock()
		now := o.nowFn()
		job.Status = domain.JobCancelled
		job.CompletedAt = &now
		o.mu.Unlock()
		o.history.Append(job.Snapshot())
		if o.deps.Metrics != nil {
			o.deps.Metrics.RecordJobTerminal(string(domain.JobCancelled))
		}
	}

	o.bus.Publish(eventbus.Event{
		Type:          eventbus.OrchestratorJobCancelled,
		SourceAgent:   "orchestrator",
		CompanySymbol: job.CompanySymbol,
		Data:          map[string]interface{}{"job_id": jobID},
	})
	return nil
}

// runJob drives one job through ingest -> forensic -> risk/compliance,
// honoring the job's wall-clock timeout and cooperative cancellation at
// each stage boundary.
func (o *Orchestrator) runJob(jobID string) {
	defer o.finishRun()

	o.mu.Lock()
	job := o.jobs[jobID]
	o.mu.Unlock()
	if job == nil {
		return
	}

	timeout := time.Duration(o.cfg.Orchestrator.JobTimeoutMinutes) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	o.mu.Lock()
	o.cancelFns[jobID] = cancel
	o.mu.Unlock()
	defer cancel()

	stepLog := telemetry.NewStepLogger(jobID)

	now := o.nowFn()
	o.mu.Lock()
	job.Status = domain.JobRunning
	job.StartedAt = &now
	o.mu.Unlock()

	bundle, stageErr := o.execute(ctx, job, stepLog)

	o.mu.Lock()
	defer o.mu.Unlock()
	completed := o.nowFn()
	job.CompletedAt = &completed

	switch {
	case ctx.Err() == context.Canceled && stageErr == nil:
		job.Status = domain.JobCancelled
		stepLog.Fail("cancelled")
	case ctx.Err() == context.DeadlineExceeded:
		job.Status = domain.JobFailed
		job.Error = (&domain.StageError{Kind: domain.Timeout, Message: "job exceeded wall-clock timeout"}).Error()
		stepLog.Fail(job.Error)
		o.bus.Publish(eventbus.Event{Type: eventbus.OrchestratorPipelineFailed, SourceAgent: "orchestrator", CompanySymbol: job.CompanySymbol, Data: map[string]interface{}{"job_id": jobID, "reason": job.Error}})
	case stageErr != nil:
		job.Status = domain.JobFailed
		job.Error = stageErr.Error()
		stepLog.Fail(job.Error)
		o.bus.Publish(eventbus.Event{Type: eventbus.OrchestratorPipelineFailed, SourceAgent: "orchestrator", CompanySymbol: job.CompanySymbol, Data: map[string]interface{}{"job_id": jobID, "reason": job.Error}})
	default:
		job.Status = domain.JobCompleted
		job.Progress = 100
		job.Results = bundle
		stepLog.Finish()

		key := cacheKey(job.CompanySymbol, job.AnalysisTypes, job.Source, job.Periods)
		o.cache.Set(ctx, key, bundle, time.Duration(o.cfg.Cache.TTLHours)*time.Hour)

		o.bus.Publish(eventbus.Event{
			Type:          eventbus.OrchestratorPipelineCompleted,
			SourceAgent:   "orchestrator",
			CompanySymbol: job.CompanySymbol,
			Data:          map[string]interface{}{"job_id": jobID},
		})
	}

	if job.Status.Terminal() && o.deps.Metrics != nil {
		o.deps.Metrics.RecordJobTerminal(string(job.Status))
	}
	o.history.Append(job.Snapshot())
	delete(o.cancelFns, jobID)
}

// execute runs the ingest -> {C2,C3,C4} -> {C5,C6} flow for one job,
// retrying transient DEPENDENCY_FAILURE stage errors up to
// max_retries_per_stage times with exponential backoff.
func (o *Orchestrator) execute(ctx context.Context, job *domain.Job, stepLog *telemetry.StepLogger) (*domain.ResultBundle, error) {
	var statementsSnapshot []domain.FinancialStatement
	err := o.runWithRetry(ctx, "ingest", stepLog, func() error {
		result, ferr := o.ingest.Fetch(ctx, job.CompanySymbol, job.Source, job.Periods)
		if ferr != nil {
			return ferr
		}
		o.mu.Lock()
		job.Progress = 25
		o.mu.Unlock()
		normalized := normalize.Normalize(result.Statements, normalize.SourceTag(job.Source))
		if len(normalized) == 0 {
			return domain.NewStageError(domain.InputMissing, "no statements survived normalization", nil)
		}
		statementsSnapshot = normalized
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, nil
	}

	o.bus.Publish(eventbus.Event{Type: eventbus.DataIngestionCompleted, SourceAgent: "ingest", CompanySymbol: job.CompanySymbol, Data: map[string]interface{}{"job_id": job.JobID}})
	stageStatus := map[string]domain.StageStatus{
		"ingest": domain.StageSucceeded, "forensic": domain.StageNotRun,
		"risk": domain.StageNotRun, "compliance": domain.StageNotRun,
	}

	var vertical map[string]domain.VerticalAnalysis
	var horizontal map[string]domain.HorizontalAnalysis
	var ratioSet domain.RatioSet
	var altman domain.AltmanResult
	var beneish domain.BeneishResult
	var benford domain.BenfordResult
	var anomalyResult anomaly.Result

	stepLog.StartStep("forensic")
	var forensicTimer *telemetry.StageTimer
	if o.deps.Metrics != nil {
		forensicTimer = o.deps.Metrics.StartStageTimer("forensic")
	}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		vertical = ratios.VerticalAll(statementsSnapshot)
		horizontal = ratios.Horizontal(statementsSnapshot)
		ratioSet = ratios.Compute(statementsSnapshot)
		return nil
	})
	g.Go(func() error {
		altman = forensics.Altman(statementsSnapshot)
		beneish = forensics.Beneish(statementsSnapshot)
		benford = forensics.Benford(statementsSnapshot)
		return nil
	})
	g.Go(func() error {
		anomalyResult = anomaly.Detect(statementsSnapshot, nil)
		return nil
	})
	if err := g.Wait(); err != nil {
		stepLog.Fail(err.Error())
		if forensicTimer != nil {
			forensicTimer.Stop("failure")
		}
		if o.deps.Metrics != nil {
			o.deps.Metrics.RecordStageError("forensic", string(domain.Internal))
		}
		return nil, domain.NewStageError(domain.Internal, "forensic stage failed", err)
	}
	if forensicTimer != nil {
		forensicTimer.Stop("success")
	}
	// Benford's chi-square result is only known once the forensics
	// goroutine above finishes, so the resulting anomaly is appended
	// here rather than inside the parallel group.
	anomalyResult = anomaly.AppendBenfordAnomaly(anomalyResult, benford.ChiSquare, benford.CriticalValue, benford.IsAnomalous)
	stepLog.CompleteStep()
	stageStatus["forensic"] = domain.StageSucceeded

	forensicResult := &domain.ForensicResult{
		CompanyID:    job.CompanySymbol,
		AnalysisDate: o.nowFn(),
		Vertical:     vertical,
		Horizontal:   horizontal,
		Ratios:       ratioSet,
		Altman:       altman,
		Beneish:      beneish,
		Benford:      benford,
		Anomalies:    anomalyResult.Anomalies,
	}

	o.mu.Lock()
	job.Progress = 75
	o.mu.Unlock()
	o.bus.Publish(eventbus.Event{Type: eventbus.ForensicAnalysisCompleted, SourceAgent: "forensic", CompanySymbol: job.CompanySymbol, Data: map[string]interface{}{"job_id": job.JobID}})

	if ctx.Err() != nil {
		return nil, nil
	}

	var latestPeriod string
	for _, s := range statementsSnapshot {
		if s.StatementType == domain.Income {
			latestPeriod = s.PeriodKey()
		}
	}

	var riskAssessment *domain.RiskAssessment
	var complianceAssessment *domain.ComplianceAssessment

	stepLog.StartStep("risk")
	var riskTimer *telemetry.StageTimer
	if o.deps.Metrics != nil {
		riskTimer = o.deps.Metrics.StartStageTimer("risk")
	}
	g2, _ := errgroup.WithContext(ctx)
	g2.Go(func() error {
		// C5 and C6 run side by side with no ordering guarantee between
		// them, so risk scoring never reads C6's output here; with
		// Inputs.ComplianceScore left unset the compliance category uses
		// its placeholder per the degraded-but-success policy.
		scorer := risk.NewScorer()
		result := scorer.Score(job.CompanySymbol, risk.Inputs{
			Ratios:     ratioSet,
			Horizontal: horizontal,
			Altman:     altman,
			Beneish:    beneish,
			Periods:    periodsAscending(ratioSet),
		})
		riskAssessment = &result
		return nil
	})
	g2.Go(func() error {
		if o.deps.RulePack == nil {
			return nil
		}
		facts := compliance.BuildFacts(forensicResult, latestPeriod)
		ev := compliance.NewEvaluator(o.deps.RulePack)
		result := ev.Evaluate(job.CompanySymbol, facts, nil, o.nowFn())
		complianceAssessment = &result
		return nil
	})
	if err := g2.Wait(); err != nil {
		stepLog.Fail(err.Error())
		if riskTimer != nil {
			riskTimer.Stop("failure")
		}
		if o.deps.Metrics != nil {
			o.deps.Metrics.RecordStageError("risk", string(domain.Internal))
		}
		return nil, domain.NewStageError(domain.Internal, "risk/compliance stage failed", err)
	}
	if riskTimer != nil {
		riskTimer.Stop("success")
	}
	stepLog.CompleteStep()
	stageStatus["risk"] = domain.StageSucceeded
	if complianceAssessment != nil {
		stageStatus["compliance"] = domain.StageSucceeded
	}

	if ctx.Err() != nil {
		// Cancellation arrived while the last stage was in flight; let it
		// finish computing but discard the result, per the cooperative
		// cancellation rule.
		return nil, nil
	}

	o.mu.Lock()
	job.Progress = 100
	o.mu.Unlock()

	if complianceAssessment != nil {
		o.bus.Publish(eventbus.Event{Type: eventbus.ComplianceValidationCompleted, SourceAgent: "compliance", CompanySymbol: job.CompanySymbol, Data: map[string]interface{}{"job_id": job.JobID}})
	}
	o.bus.Publish(eventbus.Event{Type: eventbus.RiskScoringCompleted, SourceAgent: "risk", CompanySymbol: job.CompanySymbol, Data: map[string]interface{}{"job_id": job.JobID}})

	return &domain.ResultBundle{
		CompanySymbol:  job.CompanySymbol,
		AssessmentDate: o.nowFn(),
		Forensic:       forensicResult,
		Risk:           riskAssessment,
		Compliance:     complianceAssessment,
		StageStatus:    stageStatus,
	}, nil
}

// runWithRetry retries fn up to max_retries_per_stage times on
// DEPENDENCY_FAILURE, with exponential backoff starting at
// ingest.backoff.base_seconds.
func (o *Orchestrator) runWithRetry(ctx context.Context, stage string, stepLog *telemetry.StepLogger, fn func() error) error {
	stepLog.StartStep(stage)
	var timer *telemetry.StageTimer
	if o.deps.Metrics != nil {
		timer = o.deps.Metrics.StartStageTimer(stage)
	}

	var lastErr error
	attempts := o.cfg.Orchestrator.MaxRetriesPerStage + 1
	backoff := time.Duration(o.cfg.Ingest.Backoff.BaseSeconds) * time.Second

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}
		err := fn()
		if err == nil {
			stepLog.CompleteStep()
			if timer != nil {
				timer.Stop("success")
			}
			return nil
		}
		lastErr = err
		var stageErr *domain.StageError
		if se, ok := err.(*domain.StageError); ok {
			stageErr = se
		}
		if stageErr == nil || !stageErr.Retryable() || attempt == attempts-1 {
			break
		}
		log.Warn().Str("stage", stage).Int("attempt", attempt+1).Msg("retrying after dependency failure")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	stepLog.Fail(lastErr.Error())
	if timer != nil {
		timer.Stop("failure")
	}
	if o.deps.Metrics != nil {
		kind := string(domain.Internal)
		if stageErr, ok := lastErr.(*domain.StageError); ok {
			kind = string(stageErr.Kind)
		}
		o.deps.Metrics.RecordStageError(stage, kind)
	}
	return lastErr
}

func periodsAscending(rs domain.RatioSet) []string {
	var periods []string
	for p := range rs {
		periods = append(periods, p)
	}
	// RatioSet periods are already canonical "YYYY-MM-DD" keys; sort
	// lexicographically, which is chronological for that format.
	for i := 1; i < len(periods); i++ {
		for j := i; j > 0 && periods[j-1] > periods[j]; j-- {
			periods[j-1], periods[j] = periods[j], periods[j-1]
		}
	}
	return periods
}

// uuidJobID is kept for components that want a collision-proof
// alternative job id scheme; Submit uses the spec's job_<symbol>_<ts>
// format for readability, matching original_source's convention.
func uuidJobID() string { return uuid.NewString() }
