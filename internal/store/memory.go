package store

import (
	"context"
	"sync"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
)

// Memory is an in-process JobStore used when Redis is unreachable and
// in tests. Records are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]model.Job)}
}

func (s *Memory) Save(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *Memory) Get(_ context.Context, jobID string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}
