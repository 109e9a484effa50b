package orchestrator

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// HistoryStore records terminal jobs for audit and replay, mirroring the
// active_jobs/job_history split of the originating orchestrator: once a
// job reaches a terminal JobStatus a snapshot of it is appended here. The
// job also stays in the orchestrator's live job table, so status and
// result lookups keep finding it.
type HistoryStore interface {
	Append(job domain.Job)
	Get(jobID string) (domain.Job, bool)
	Recent(companySymbol string, limit int) []domain.Job
}

// memoryHistoryStore is the default, process-local history store used
// when no Postgres DSN is configured.
type memoryHistoryStore struct {
	mu   sync.Mutex
	byID map[string]domain.Job
}

func newMemoryHistoryStore() *memoryHistoryStore {
	return &memoryHistoryStore{byID: make(map[string]domain.Job)}
}

func (s *memoryHistoryStore) Append(job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[job.JobID] = job
}

func (s *memoryHistoryStore) Get(jobID string) (domain.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.byID[jobID]
	return job, ok
}

func (s *memoryHistoryStore) Recent(companySymbol string, limit int) []domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Job
	for _, job := range s.byID {
		if job.CompanySymbol == companySymbol {
			out = append(out, job)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// postgresHistoryStore persists terminal jobs to a job_history table for
// deployments that want durable audit trails across restarts, grounded
// on the teacher's sqlx-over-lib/pq repository pattern. Append failures
// are logged and swallowed: history is a convenience audit trail, not a
// dependency the pipeline blocks on.
type postgresHistoryStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresHistoryStore opens a connection pool against dsn and
// verifies the job_history table is reachable. Schema is expected to be
// provisioned out of band (a `job_history(job_id, company_symbol,
// status, payload jsonb, created_at, completed_at)` table).
func NewPostgresHistoryStore(dsn string, timeout time.Duration) (HistoryStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres history store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres history store: %w", err)
	}
	return &postgresHistoryStore{db: db, timeout: timeout}, nil
}

func (s *postgresHistoryStore) Append(job domain.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	payload, err := json.Marshal(job)
	if err != nil {
		log.Warn().Err(err).Str("job_id", job.JobID).Msg("marshal job history payload failed")
		return
	}

	const query = `
		INSERT INTO job_history (job_id, company_symbol, status, payload, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			completed_at = EXCLUDED.completed_at`

	var completedAt sql.NullTime
	if job.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *job.CompletedAt, Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, query, job.JobID, job.CompanySymbol, string(job.Status), payload, job.CreatedAt, completedAt); err != nil {
		log.Warn().Err(err).Str("job_id", job.JobID).Msg("append job history failed")
	}
}

func (s *postgresHistoryStore) Get(jobID string) (domain.Job, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var payload []byte
	if err := s.db.GetContext(ctx, &payload, `SELECT payload FROM job_history WHERE job_id = $1`, jobID); err != nil {
		if err != sql.ErrNoRows {
			log.Warn().Err(err).Str("job_id", jobID).Msg("get job history failed")
		}
		return domain.Job{}, false
	}
	var job domain.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("unmarshal job history payload failed")
		return domain.Job{}, false
	}
	return job, true
}

func (s *postgresHistoryStore) Recent(companySymbol string, limit int) []domain.Job {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, `
		SELECT payload FROM job_history
		WHERE company_symbol = $1
		ORDER BY created_at DESC
		LIMIT $2`, companySymbol, limit)
	if err != nil {
		log.Warn().Err(err).Str("company_symbol", companySymbol).Msg("query job history failed")
		return nil
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			log.Warn().Err(err).Msg("scan job history row failed")
			continue
		}
		var job domain.Job
		if err := json.Unmarshal(payload, &job); err != nil {
			log.Warn().Err(err).Msg("unmarshal job history row failed")
			continue
		}
		out = append(out, job)
	}
	return out
}
