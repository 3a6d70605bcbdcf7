package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pool"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/store"
	ws "github.com/AhmedShehab1/computational-wave-lab-sub001/internal/websocket"
)

type runnerFunc func(ctx context.Context, task pool.Task, progress func(float64)) (interface{}, error)

func (f runnerFunc) Run(ctx context.Context, task pool.Task, progress func(float64)) (interface{}, error) {
	return f(ctx, task, progress)
}

func setupService(t *testing.T, runner pool.Runner) *JobService {
	t.Helper()
	p := pool.New(pool.Config{PoolSize: 1, MaxQueueDepth: 8}, runner)
	t.Cleanup(p.Close)
	hub := ws.NewHub()
	go hub.Run()
	return NewJobService(store.NewMemory(), p, hub)
}

// pollTerminal waits until the job record reaches a terminal status.
func pollTerminal(t *testing.T, svc *JobService, jobID string) *model.StatusResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := svc.Status(context.Background(), jobID)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if status.Status.Terminal() {
			return status
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal status", jobID)
	return nil
}

func TestSubmitAndResult(t *testing.T) {
	svc := setupService(t, runnerFunc(func(ctx context.Context, task pool.Task, progress func(float64)) (interface{}, error) {
		return map[string]int{"answer": 42}, nil
	}))

	resp, err := svc.Submit(context.Background(), model.JobKindBeam, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	status := pollTerminal(t, svc, resp.JobID)
	if status.Status != model.JobStatusSucceeded {
		t.Fatalf("status = %s, want succeeded", status.Status)
	}
	if status.Progress != 1 {
		t.Errorf("progress = %g, want 1", status.Progress)
	}

	result, err := svc.Result(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if string(result) != `{"answer":42}` {
		t.Errorf("result = %s", result)
	}
}

func TestUnserializableResultFailsJob(t *testing.T) {
	// NaN cannot be marshalled to JSON; the record must still reach a
	// terminal status instead of staying running forever.
	svc := setupService(t, runnerFunc(func(ctx context.Context, task pool.Task, progress func(float64)) (interface{}, error) {
		return map[string]float64{"peak": math.NaN()}, nil
	}))

	resp, err := svc.Submit(context.Background(), model.JobKindBeam, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	status := pollTerminal(t, svc, resp.JobID)
	if status.Status != model.JobStatusFailed {
		t.Fatalf("status = %s, want failed", status.Status)
	}
	if status.Error == nil || *status.Error == "" {
		t.Error("expected a stored error message")
	}

	if _, err := svc.Result(context.Background(), resp.JobID); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("expected ErrNotCompleted for a failed job, got %v", err)
	}
}

func TestCancelCompletedJob(t *testing.T) {
	svc := setupService(t, runnerFunc(func(ctx context.Context, task pool.Task, progress func(float64)) (interface{}, error) {
		return "ok", nil
	}))

	resp, err := svc.Submit(context.Background(), model.JobKindBeam, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	pollTerminal(t, svc, resp.JobID)

	if _, err := svc.Cancel(context.Background(), resp.JobID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
}
