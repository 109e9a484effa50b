package domain

import "time"

// JobStatus is the job lifecycle state. Terminal states (COMPLETED,
// FAILED, CANCELLED) are immutable once reached.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
)

// Terminal reports whether s is one of the immutable end states.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// JobPriority orders the priority queue: CRITICAL > HIGH > NORMAL > LOW.
type JobPriority int

const (
	PriorityLow JobPriority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p JobPriority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityNormal:
		return "NORMAL"
	default:
		return "LOW"
	}
}

// StageStatus records success/failure of one pipeline stage within a
// job's result bundle, so a partial bundle can still say what is known.
type StageStatus string

const (
	StageNotRun    StageStatus = "NOT_RUN"
	StageSucceeded StageStatus = "SUCCEEDED"
	StageFailed    StageStatus = "FAILED"
)

// ResultBundle is the per-job artifact handed to the report contract.
type ResultBundle struct {
	CompanySymbol  string
	AssessmentDate time.Time
	Forensic       *ForensicResult
	Risk           *RiskAssessment
	Compliance     *ComplianceAssessment
	StageStatus    map[string]StageStatus
}

// Job is C7's exclusively-owned unit of work.
type Job struct {
	JobID         string
	CompanySymbol string
	AnalysisTypes []string
	Source        string
	Periods       int
	Priority      JobPriority
	Status        JobStatus
	Progress      float64
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	Error         string
	Results       *ResultBundle
}

// Snapshot returns a value copy safe to hand to callers outside the
// orchestrator's goroutine, so they can't mutate owned state.
func (j Job) Snapshot() Job {
	cp := j
	cp.AnalysisTypes = append([]string(nil), j.AnalysisTypes...)
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return cp
}
