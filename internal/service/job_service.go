package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pool"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/store"
	ws "github.com/AhmedShehab1/computational-wave-lab-sub001/internal/websocket"
)

var (
	ErrNotCompleted     = errors.New("job not completed")
	ErrAlreadyCompleted = errors.New("job already completed")
)

// JobService admits compute jobs into the pool and mirrors their
// envelope stream into the job store and the WebSocket hub.
type JobService struct {
	store store.JobStore
	pool  *pool.Pool
	hub   *ws.Hub
}

func NewJobService(st store.JobStore, p *pool.Pool, hub *ws.Hub) *JobService {
	return &JobService{store: st, pool: p, hub: hub}
}

// Submit creates a job record and admits the task. The payload must
// already be validated by the handler; admission failures surface
// immediately and are never queued.
func (s *JobService) Submit(ctx context.Context, kind model.JobKind, payload interface{}) (*model.SubmitResponse, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	jobID := uuid.New().String()
	now := time.Now()
	job := &model.Job{
		ID:        jobID,
		Kind:      kind,
		Status:    model.JobStatusQueued,
		Payload:   payloadBytes,
		CreatedAt: now,
	}
	if err := s.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	handle, err := s.pool.Submit(pool.Task{JobID: jobID, Kind: kind, Payload: payloadBytes})
	if err != nil {
		msg := err.Error()
		job.Status = model.JobStatusFailed
		job.Error = &msg
		job.CompletedAt = &now
		if saveErr := s.store.Save(ctx, job); saveErr != nil {
			log.Printf("Failed to mark rejected job %s: %v", jobID, saveErr)
		}
		return nil, err
	}

	go s.watch(handle)

	return &model.SubmitResponse{JobID: jobID, Status: model.JobStatusQueued, CreatedAt: now}, nil
}

// Status reports the stored state of a job.
func (s *JobService) Status(ctx context.Context, jobID string) (*model.StatusResponse, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &model.StatusResponse{
		JobID:       job.ID,
		Kind:        job.Kind,
		Status:      job.Status,
		Progress:    job.Progress,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}, nil
}

// Result returns the terminal payload of a succeeded job.
func (s *JobService) Result(ctx context.Context, jobID string) (json.RawMessage, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusSucceeded {
		return nil, ErrNotCompleted
	}
	return json.RawMessage(job.Result), nil
}

// Cancel marks the job's cancellation token. The terminal Cancelled
// envelope arrives asynchronously; the record is updated here as well
// so polling clients see the cancellation immediately.
func (s *JobService) Cancel(ctx context.Context, jobID string) (*model.CancelResponse, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, ErrAlreadyCompleted
	}

	if !s.pool.Cancel(jobID) {
		// The pool no longer tracks the job: it just reached a
		// terminal state and the envelope is in flight.
		return nil, ErrAlreadyCompleted
	}

	job.Status = model.JobStatusCanceled
	now := time.Now()
	job.CompletedAt = &now
	if err := s.store.Save(ctx, job); err != nil {
		return nil, err
	}
	return &model.CancelResponse{Success: true, JobID: jobID, Status: model.JobStatusCanceled}, nil
}

// watch drains one job's envelope stream, persisting every transition
// and broadcasting it to WS subscribers.
func (s *JobService) watch(handle *pool.Handle) {
	ctx := context.Background()
	for env := range handle.Events {
		if err := s.applyEnvelope(ctx, env); err != nil {
			log.Printf("Failed to persist %s for job %s: %v", env.Kind, env.JobID, err)
		}
		s.hub.BroadcastEnvelope(env)
	}
}

func (s *JobService) applyEnvelope(ctx context.Context, env model.Envelope) error {
	job, err := s.store.Get(ctx, env.JobID)
	if err != nil {
		return err
	}

	now := time.Now()
	switch env.Kind {
	case model.EnvelopeStart:
		job.Status = model.JobStatusRunning
		job.StartedAt = &now
	case model.EnvelopeProgress:
		job.Progress = env.Progress
	case model.EnvelopeComplete:
		result, err := json.Marshal(env.Payload)
		if err != nil {
			// The job finished but its result cannot be serialized;
			// fail it rather than leaving the record running forever.
			msg := fmt.Sprintf("result not serializable: %v", err)
			job.Status = model.JobStatusFailed
			job.Error = &msg
			job.CompletedAt = &now
			break
		}
		job.Status = model.JobStatusSucceeded
		job.Progress = 1
		job.Result = result
		job.CompletedAt = &now
	case model.EnvelopeError:
		msg := env.Error
		job.Status = model.JobStatusFailed
		job.Error = &msg
		job.CompletedAt = &now
	case model.EnvelopeCancelled:
		job.Status = model.JobStatusCanceled
		job.CompletedAt = &now
	}
	return s.store.Save(ctx, job)
}
