package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishikoli/IRIS1-sub001/internal/config"
	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// fakeIngestClient is a scripted IngestClient: each call pops the next
// canned response/error off its queue, and counts attempts per symbol.
type fakeIngestClient struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     int
	delay     time.Duration
}

type fakeResponse struct {
	result IngestResult
	err    error
}

func (f *fakeIngestClient) Fetch(ctx context.Context, symbol, source string, periods int) (IngestResult, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return IngestResult{}, ctx.Err()
		}
	}

	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	return resp.result, resp.err
}

func twoPeriodStatements() []domain.SourceStatement {
	mk := func(end time.Time, stype domain.StatementType, fields map[string]float64) domain.SourceStatement {
		return domain.SourceStatement{StatementType: stype, PeriodEnd: end, Currency: "INR", Fields: fields}
	}
	p1 := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	p2 := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	return []domain.SourceStatement{
		mk(p1, domain.Income, map[string]float64{
			"total_revenue": 1000, "net_profit": 80, "cost_of_revenue": 600,
			"interest_expense": 20, "operating_income": 120,
		}),
		mk(p1, domain.Balance, map[string]float64{
			"total_assets": 2000, "total_liabilities": 1200, "total_equity": 800,
			"current_assets": 900, "current_liabilities": 500,
			"cash_and_equivalents": 150, "inventory": 200, "accounts_receivable": 180,
		}),
		mk(p2, domain.Income, map[string]float64{
			"total_revenue": 1100, "net_profit": 90, "cost_of_revenue": 650,
			"interest_expense": 22, "operating_income": 130,
		}),
		mk(p2, domain.Balance, map[string]float64{
			"total_assets": 2100, "total_liabilities": 1250, "total_equity": 850,
			"current_assets": 950, "current_liabilities": 520,
			"cash_and_equivalents": 160, "inventory": 210, "accounts_receivable": 190,
		}),
	}
}

func testConfig() config.EngineConfig {
	cfg := config.DefaultEngineConfig()
	cfg.Orchestrator.JobTimeoutMinutes = 1
	return cfg
}

func newTestOrchestrator(t *testing.T, client IngestClient) *Orchestrator {
	t.Helper()
	return New(testConfig(), Deps{Ingest: client})
}

func waitForTerminal(t *testing.T, o *Orchestrator, jobID string, timeout time.Duration) domain.Job {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		job, ok := o.GetStatus(jobID)
		require.True(t, ok)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal state within %s", jobID, timeout)
	return domain.Job{}
}

func TestSubmitRunsJobToCompletion(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	o := newTestOrchestrator(t, client)

	jobID, err := o.Submit(context.Background(), "TCS", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job := waitForTerminal(t, o, jobID, 2*time.Second)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, float64(100), job.Progress)

	bundle, ok := o.GetResults(jobID)
	require.True(t, ok)
	require.NotNil(t, bundle.Forensic)
	require.NotNil(t, bundle.Risk)
	assert.Equal(t, domain.StageSucceeded, bundle.StageStatus["forensic"])
	assert.Equal(t, domain.StageSucceeded, bundle.StageStatus["risk"])
}

func TestSubmitDefaultsWhenFieldsOmitted(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	o := newTestOrchestrator(t, client)

	jobID, err := o.Submit(context.Background(), "INFY", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job, ok := o.GetStatus(jobID)
	require.True(t, ok)
	assert.Equal(t, "yahoo", job.Source)
	assert.Equal(t, 2, job.Periods)
	assert.ElementsMatch(t, []string{"forensic", "risk", "compliance"}, job.AnalysisTypes)
}

func TestCacheHitCompletesImmediately(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	o := newTestOrchestrator(t, client)

	firstID, err := o.Submit(context.Background(), "WIPRO", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)
	waitForTerminal(t, o, firstID, 2*time.Second)

	secondID, err := o.Submit(context.Background(), "WIPRO", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job, ok := o.GetStatus(secondID)
	require.True(t, ok)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 1, client.calls, "second submission should not re-invoke ingest")
}

func TestDependencyFailureRetriesThenSucceeds(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{err: domain.NewStageError(domain.DependencyFailure, "upstream hiccup", nil)},
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	cfg := testConfig()
	cfg.Ingest.Backoff.BaseSeconds = 0
	o := New(cfg, Deps{Ingest: client})

	jobID, err := o.Submit(context.Background(), "HDFC", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job := waitForTerminal(t, o, jobID, 2*time.Second)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 2, client.calls)
}

func TestDependencyFailureExhaustsRetriesAndFails(t *testing.T) {
	persistentErr := domain.NewStageError(domain.DependencyFailure, "upstream down", nil)
	client := &fakeIngestClient{responses: []fakeResponse{
		{err: persistentErr}, {err: persistentErr}, {err: persistentErr},
	}}
	cfg := testConfig()
	cfg.Ingest.Backoff.BaseSeconds = 0
	cfg.Orchestrator.MaxRetriesPerStage = 2
	o := New(cfg, Deps{Ingest: client})

	jobID, err := o.Submit(context.Background(), "ITC", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job := waitForTerminal(t, o, jobID, 2*time.Second)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Equal(t, 3, client.calls) // 1 initial + 2 retries
	assert.Contains(t, job.Error, "DEPENDENCY_FAILURE")
}

func TestNonRetryableFailureFailsImmediately(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{err: domain.NewStageError(domain.InputMalformed, "bad payload", nil)},
	}}
	o := newTestOrchestrator(t, client)

	jobID, err := o.Submit(context.Background(), "RELI", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job := waitForTerminal(t, o, jobID, 2*time.Second)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Equal(t, 1, client.calls)
}

func TestJobTimeoutForcesFailed(t *testing.T) {
	client := &fakeIngestClient{
		responses: []fakeResponse{{result: IngestResult{Success: true, Statements: twoPeriodStatements()}}},
		delay:     100 * time.Millisecond,
	}
	cfg := testConfig()
	cfg.Orchestrator.JobTimeoutMinutes = 0 // deadline already past at job start
	o := New(cfg, Deps{Ingest: client})

	jobID, err := o.Submit(context.Background(), "SLOW", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)
	job := waitForTerminal(t, o, jobID, 2*time.Second)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Contains(t, job.Error, "TIMEOUT")
}

func TestJobCompletesWithinGenerousTimeout(t *testing.T) {
	client := &fakeIngestClient{
		responses: []fakeResponse{{result: IngestResult{Success: true, Statements: twoPeriodStatements()}}},
		delay:     50 * time.Millisecond,
	}
	o := newTestOrchestrator(t, client)

	jobID, err := o.Submit(context.Background(), "SLOW2", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)
	job := waitForTerminal(t, o, jobID, 2*time.Second)
	assert.Equal(t, domain.JobCompleted, job.Status)
}

func TestCancelPendingJobBeforeItStarts(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	o := newTestOrchestrator(t, client)
	o.cfg.Orchestrator.MaxConcurrentJobs = 0 // nothing will be dequeued

	jobID, err := o.Submit(context.Background(), "QUEUE1", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job, ok := o.GetStatus(jobID)
	require.True(t, ok)
	assert.Equal(t, domain.JobPending, job.Status)

	require.NoError(t, o.Cancel(jobID))
	job, ok = o.GetStatus(jobID)
	require.True(t, ok)
	assert.Equal(t, domain.JobCancelled, job.Status)
}

func TestCancelUnknownJobReturnsError(t *testing.T) {
	o := newTestOrchestrator(t, &fakeIngestClient{responses: []fakeResponse{{result: IngestResult{Success: true}}}})
	err := o.Cancel("does-not-exist")
	require.Error(t, err)
}

func TestCancelTerminalJobIsRejected(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	o := newTestOrchestrator(t, client)

	jobID, err := o.Submit(context.Background(), "DONE", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)
	waitForTerminal(t, o, jobID, 2*time.Second)

	err = o.Cancel(jobID)
	assert.Error(t, err)
}

func TestQueueFullReturnsQueueFullError(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	cfg := testConfig()
	cfg.Orchestrator.QueueCapacity = 1
	cfg.Orchestrator.MaxConcurrentJobs = 0
	o := New(cfg, Deps{Ingest: client})

	_, err := o.Submit(context.Background(), "A", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	_, err = o.Submit(context.Background(), "B", nil, "", 0, domain.PriorityNormal)
	require.Error(t, err)
	var stageErr *domain.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Contains(t, stageErr.Message, "QUEUE_FULL")
}

func TestGetStatusUnknownJob(t *testing.T) {
	o := newTestOrchestrator(t, &fakeIngestClient{})
	_, ok := o.GetStatus("nope")
	assert.False(t, ok)
}

func TestGetResultsOnIncompleteJobIsFalse(t *testing.T) {
	client := &fakeIngestClient{delay: time.Second, responses: []fakeResponse{
		{result: IngestResult{Success: true, Statements: twoPeriodStatements()}},
	}}
	o := newTestOrchestrator(t, client)

	jobID, err := o.Submit(context.Background(), "PENDING1", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	_, ok := o.GetResults(jobID)
	assert.False(t, ok)
}

func TestIngestFailureReportedAsDependencyFailure(t *testing.T) {
	client := &fakeIngestClient{responses: []fakeResponse{
		{result: IngestResult{Success: false, Error: "source unreachable"}},
	}}
	cfg := testConfig()
	cfg.Orchestrator.MaxRetriesPerStage = 0
	o := New(cfg, Deps{Ingest: client})

	jobID, err := o.Submit(context.Background(), "FAIL1", nil, "", 0, domain.PriorityNormal)
	require.NoError(t, err)

	job := waitForTerminal(t, o, jobID, 2*time.Second)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Contains(t, job.Error, "source unreachable")
}
