package model

import "time"

// Job represents one unit of offloaded computation tracked by the system
type Job struct {
	ID          string     `json:"id"`
	Kind        JobKind    `json:"kind"`
	Status      JobStatus  `json:"status"`
	Progress    float64    `json:"progress"` // 0..1
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"payload,omitempty"` // JSON blob, never exposed to clients
	Result      []byte     `json:"result,omitempty"`  // JSON blob, served verbatim by the result endpoint
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// JobKind identifies the computation a job performs
type JobKind string

const (
	JobKindDecode    JobKind = "decode"
	JobKindHistogram JobKind = "histogram"
	JobKindMix       JobKind = "mix"
	JobKindBeam      JobKind = "beam"
)

var ValidJobKinds = []JobKind{JobKindDecode, JobKindHistogram, JobKindMix, JobKindBeam}

// JobStatus represents job lifecycle states
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed || s == JobStatusCanceled
}

// SubmitResponse is returned when a job is accepted into the queue
type SubmitResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusResponse reports the current state of a job
type StatusResponse struct {
	JobID       string     `json:"jobId"`
	Kind        JobKind    `json:"kind"`
	Status      JobStatus  `json:"status"`
	Progress    float64    `json:"progress"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CancelResponse acknowledges a cancellation request
type CancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}
