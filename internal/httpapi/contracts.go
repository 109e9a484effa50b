// Package httpapi exposes the representative Job API of spec.md §6 over
// HTTP, translating orchestrator state into the wire shapes external
// renderers consume. It never implements analytical logic itself — every
// handler is a thin adapter over internal/orchestrator.
package httpapi

import "time"

// SubmitJobRequest is the POST /jobs request body.
type SubmitJobRequest struct {
	CompanySymbol string   `json:"company_symbol"`
	AnalysisTypes []string `json:"analysis_types,omitempty"`
	Source        string   `json:"source,omitempty"`
	Periods       int      `json:"periods,omitempty"`
	Priority      string   `json:"priority,omitempty"`
}

// SubmitJobResponse is the POST /jobs response body.
type SubmitJobResponse struct {
	JobID string `json:"job_id"`
}

// JobResponse is the GET /jobs/{job_id} response body — a wire-shaped
// snapshot of domain.Job.
type JobResponse struct {
	JobID         string     `json:"job_id"`
	CompanySymbol string     `json:"company_symbol"`
	AnalysisTypes []string   `json:"analysis_types"`
	Source        string     `json:"source"`
	Periods       int        `json:"periods"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	Progress      float64    `json:"progress"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// CancelJobResponse is the DELETE /jobs/{job_id} response body.
type CancelJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// ErrorResponse is the standardized error body for every non-2xx response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
