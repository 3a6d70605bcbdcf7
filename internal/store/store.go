// Package store persists job records so status and results survive
// between the asynchronous completion and the client's polling.
package store

import (
	"context"
	"errors"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
)

var ErrNotFound = errors.New("job not found")

// JobStore saves and loads job records by id.
type JobStore interface {
	Save(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, jobID string) (*model.Job, error)
}
