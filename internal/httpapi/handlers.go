package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
	"github.com/Rishikoli/IRIS1-sub001/internal/orchestrator"
)

// Handlers wires the Job API to a running Orchestrator.
type Handlers struct {
	orch *orchestrator.Orchestrator
}

// NewHandlers constructs the handler set over orch.
func NewHandlers(orch *orchestrator.Orchestrator) *Handlers {
	return &Handlers{orch: orch}
}

// defaultAnalysisTypes mirrors spec.md §6's "analysis_types = all" default.
var defaultAnalysisTypes = []string{"forensic", "risk", "compliance"}

var priorityByName = map[string]domain.JobPriority{
	"LOW":      domain.PriorityLow,
	"NORMAL":   domain.PriorityNormal,
	"HIGH":     domain.PriorityHigh,
	"CRITICAL": domain.PriorityCritical,
}

// SubmitJob handles POST /jobs.
func (h *Handlers) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if req.CompanySymbol == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_company_symbol", "company_symbol is required")
		return
	}

	analysisTypes := req.AnalysisTypes
	if len(analysisTypes) == 0 {
		analysisTypes = defaultAnalysisTypes
	}

	priority := domain.PriorityNormal
	if req.Priority != "" {
		p, ok := priorityByName[req.Priority]
		if !ok {
			h.writeError(w, r, http.StatusBadRequest, "invalid_priority", "priority must be one of LOW, NORMAL, HIGH, CRITICAL")
			return
		}
		priority = p
	}

	jobID, err := h.orch.Submit(r.Context(), req.CompanySymbol, analysisTypes, req.Source, req.Periods, priority)
	if err != nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "submit_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusAccepted, SubmitJobResponse{JobID: jobID})
}

// GetJob handles GET /jobs/{job_id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]
	job, ok := h.orch.GetStatus(jobID)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "job_not_found", "no job with that id")
		return
	}
	h.writeJSON(w, http.StatusOK, jobToResponse(job))
}

// CancelJob handles DELETE /jobs/{job_id}.
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]
	if err := h.orch.Cancel(jobID); err != nil {
		stageErr, ok := err.(*domain.StageError)
		switch {
		case !ok:
			h.writeError(w, r, http.StatusInternalServerError, "cancel_failed", err.Error())
		case stageErr.Kind == domain.InputMissing:
			h.writeError(w, r, http.StatusNotFound, "job_not_found", "no job with that id")
		default:
			h.writeError(w, r, http.StatusConflict, "job_terminal", "job already reached a terminal state")
		}
		return
	}
	job, _ := h.orch.GetStatus(jobID)
	h.writeJSON(w, http.StatusOK, CancelJobResponse{JobID: jobID, Status: string(job.Status)})
}

// GetJobResult handles GET /jobs/{job_id}/result.
func (h *Handlers) GetJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]
	if _, ok := h.orch.GetStatus(jobID); !ok {
		h.writeError(w, r, http.StatusNotFound, "job_not_found", "no job with that id")
		return
	}
	bundle, ok := h.orch.GetResults(jobID)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "result_not_ready", "job has not completed yet")
		return
	}
	h.writeJSON(w, http.StatusOK, bundle)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found", "the requested endpoint does not exist")
}

func jobToResponse(job domain.Job) JobResponse {
	return JobResponse{
		JobID:         job.JobID,
		CompanySymbol: job.CompanySymbol,
		AnalysisTypes: job.AnalysisTypes,
		Source:        job.Source,
		Periods:       job.Periods,
		Priority:      job.Priority.String(),
		Status:        string(job.Status),
		Progress:      job.Progress,
		CreatedAt:     job.CreatedAt,
		StartedAt:     job.StartedAt,
		CompletedAt:   job.CompletedAt,
		Error:         job.Error,
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value(requestIDKey).(string)
	if requestID == "" {
		requestID = "unknown"
	}
	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	})
}
