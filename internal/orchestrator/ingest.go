package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Rishikoli/IRIS1-sub001/internal/config"
	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// IngestResult is the external ingest contract's response shape, per
// spec.md §6: `{success, financial_statements, company_id?, error?}`.
type IngestResult struct {
	Success        bool
	Statements     []domain.SourceStatement
	SourceTag      string
	CompanyID      string
	Error          string
}

// IngestClient is the async fetch contract C7 consumes. Implementations
// talk to whatever upstream (Yahoo/NSE/BSE/FMP) source is configured.
type IngestClient interface {
	Fetch(ctx context.Context, symbol, source string, periods int) (IngestResult, error)
}

// guardedIngest wraps an IngestClient with the rate limiter and circuit
// breaker spec.md §4.7/§5 requires in front of the ingest dependency.
type guardedIngest struct {
	inner   IngestClient
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[IngestResult]
}

func newGuardedIngest(inner IngestClient, cfg config.IngestConfig) *guardedIngest {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	settings := gobreaker.Settings{
		Name:        "ingest",
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.Circuit.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Circuit.FailureThreshold
		},
	}

	return &guardedIngest{
		inner:   inner,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[IngestResult](settings),
	}
}

// Fetch rate-limits and circuit-breaks calls to the underlying client.
// Breaker rejections, untyped fetch errors and unsuccessful responses
// become DEPENDENCY_FAILURE, which the orchestrator retries; a StageError
// returned by the underlying client keeps its kind, and a limiter wait
// cut short by the job's context becomes TIMEOUT.
func (g *guardedIngest) Fetch(ctx context.Context, symbol, source string, periods int) (IngestResult, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return IngestResult{}, domain.NewStageError(domain.Timeout, "rate limiter wait", err)
	}

	result, err := g.breaker.Execute(func() (IngestResult, error) {
		return g.inner.Fetch(ctx, symbol, source, periods)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return IngestResult{}, domain.NewStageError(domain.DependencyFailure, fmt.Sprintf("ingest circuit %s", err), nil)
		}
		if se, ok := err.(*domain.StageError); ok {
			return IngestResult{}, se
		}
		return IngestResult{}, domain.NewStageError(domain.DependencyFailure, "ingest fetch failed", err)
	}
	if !result.Success {
		return IngestResult{}, domain.NewStageError(domain.DependencyFailure, "ingest reported failure: "+result.Error, nil)
	}
	return result, nil
}
