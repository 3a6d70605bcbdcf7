// Package pool implements the bounded job scheduler: admission with an
// immediate capacity error, FIFO dispatch onto a capped set of
// execution units, cooperative per-job cancellation and idle unit
// reclamation.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
)

var (
	ErrQueueFull    = errors.New("job queue is full")
	ErrClosed       = errors.New("pool is closed")
	ErrDuplicateJob = errors.New("job id already submitted")
)

// Task is one admitted unit of work.
type Task struct {
	JobID   string
	Kind    model.JobKind
	Payload []byte
}

// Runner executes a task's computation. ctx is the job's cancellation
// token; progress reports completion in [0,1]. Run returning
// ctx.Err(), or ctx being cancelled regardless of the return values,
// makes the terminal event Cancelled and suppresses any result.
type Runner interface {
	Run(ctx context.Context, task Task, progress func(float64)) (interface{}, error)
}

// Config is the pool tuning surface.
type Config struct {
	PoolSize      int // max concurrent units
	MaxQueueDepth int // bounded admission
	IdleTimeout   time.Duration
	WarmupOnLoad  bool
}

// Defaults for zero-valued config fields
const (
	DefaultMaxQueueDepth = 32
	DefaultIdleTimeout   = 30 * time.Second
)

// Handle is the submitter's view of an admitted job. Events carries a
// Start, zero or more Progress events, and exactly one terminal event,
// after which the channel is closed.
type Handle struct {
	JobID  string
	Events <-chan model.Envelope
}

type jobState struct {
	task   Task
	events chan model.Envelope
	ctx    context.Context
	cancel context.CancelFunc
}

// Pool schedules tasks onto execution units. The queue and the busy
// counter are the only state shared across jobs; both mutate under one
// mutex.
type Pool struct {
	cfg    Config
	runner Runner

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wake       chan struct{}

	mu     sync.Mutex
	queue  []*jobState
	active map[string]*jobState // queued and running jobs
	busy   int
	units  int
	closed bool
}

// New builds a pool. PoolSize and MaxQueueDepth are floored at 1;
// IdleTimeout defaults to DefaultIdleTimeout. With WarmupOnLoad the
// full unit set spins up immediately instead of on first submit.
func New(cfg Config, runner Runner) *Pool {
	if cfg.PoolSize < 1 {
		cfg.PoolSize = 1
	}
	if cfg.MaxQueueDepth < 1 {
		cfg.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		runner: runner,

		baseCtx:    ctx,
		baseCancel: cancel,
		// One buffered token per admissible task, so a burst of submits
		// can never drop a wakeup while a unit is between its queue
		// check and parking on the channel.
		wake:   make(chan struct{}, cfg.MaxQueueDepth),
		active: make(map[string]*jobState),
	}
	if cfg.WarmupOnLoad {
		p.mu.Lock()
		for p.units < cfg.PoolSize {
			p.units++
			go p.unit()
		}
		p.mu.Unlock()
	}
	return p
}

// Submit admits a task. It never blocks: the return is either a handle
// for a queued job or an immediate ErrQueueFull/ErrClosed.
func (p *Pool) Submit(task Task) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if len(p.queue) >= p.cfg.MaxQueueDepth {
		return nil, ErrQueueFull
	}
	if _, ok := p.active[task.JobID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, task.JobID)
	}

	ctx, cancel := context.WithCancel(p.baseCtx)
	js := &jobState{
		task:   task,
		events: make(chan model.Envelope, 32),
		ctx:    ctx,
		cancel: cancel,
	}
	p.queue = append(p.queue, js)
	p.active[task.JobID] = js
	p.provisionLocked()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return &Handle{JobID: task.JobID, Events: js.events}, nil
}

// Cancel marks the job's cancellation token. A still-queued job is
// removed and terminates Cancelled without running; a running job
// observes the token at its next cooperative point. Returns false when
// the job is unknown or already terminal.
func (p *Pool) Cancel(jobID string) bool {
	p.mu.Lock()
	js, ok := p.active[jobID]
	if !ok {
		p.mu.Unlock()
		return false
	}
	js.cancel()

	queued := false
	for i, q := range p.queue {
		if q == js {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			queued = true
			break
		}
	}
	if queued {
		delete(p.active, jobID)
	}
	p.mu.Unlock()

	if queued {
		js.events <- model.Envelope{Kind: model.EnvelopeCancelled, JobID: jobID}
		close(js.events)
	}
	return true
}

// Stats reports queue depth, busy units and provisioned units.
func (p *Pool) Stats() (queued, busy, units int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue), p.busy, p.units
}

// Close stops admission, cancels running jobs and terminates queued
// jobs as Cancelled.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	pending := p.queue
	p.queue = nil
	for _, js := range pending {
		delete(p.active, js.task.JobID)
	}
	p.mu.Unlock()

	p.baseCancel()
	for _, js := range pending {
		js.events <- model.Envelope{Kind: model.EnvelopeCancelled, JobID: js.task.JobID}
		close(js.events)
	}
}

// provisionLocked lazily spawns units: one per pending task beyond the
// currently free units, never exceeding PoolSize.
func (p *Pool) provisionLocked() {
	free := p.units - p.busy
	for p.units < p.cfg.PoolSize && len(p.queue) > free {
		p.units++
		free++
		go p.unit()
	}
}

// unit is one execution unit. It processes one job to completion at a
// time and exits after IdleTimeout without work.
func (p *Pool) unit() {
	idle := time.NewTimer(p.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		if js := p.dequeue(); js != nil {
			p.execute(js)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(p.cfg.IdleTimeout)
			continue
		}

		select {
		case <-p.wake:
		case <-idle.C:
			p.mu.Lock()
			if len(p.queue) > 0 {
				// Work raced the timer; keep the unit alive.
				p.mu.Unlock()
				idle.Reset(p.cfg.IdleTimeout)
				continue
			}
			p.units--
			p.mu.Unlock()
			return
		case <-p.baseCtx.Done():
			p.mu.Lock()
			p.units--
			p.mu.Unlock()
			return
		}
	}
}

func (p *Pool) dequeue() *jobState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	js := p.queue[0]
	p.queue = p.queue[1:]
	p.busy++
	return js
}

// execute runs one job and delivers its terminal envelope. Panics in
// the runner are contained here so the unit stays reusable.
func (p *Pool) execute(js *jobState) {
	jobID := js.task.JobID
	p.trySend(js, model.Envelope{Kind: model.EnvelopeStart, JobID: jobID})

	progress := func(frac float64) {
		if js.ctx.Err() != nil {
			return
		}
		p.trySend(js, model.Envelope{Kind: model.EnvelopeProgress, JobID: jobID, Progress: frac})
	}

	result, err := p.runSafely(js, progress)

	// Deciding the terminal kind and retiring the job from the active
	// set happen under one lock so a Cancel can never land between the
	// token check and the Complete delivery.
	p.mu.Lock()
	delete(p.active, jobID)
	p.busy--
	cancelled := js.ctx.Err() != nil || errors.Is(err, context.Canceled)
	p.mu.Unlock()

	var terminal model.Envelope
	switch {
	case cancelled:
		// A result that raced the cancel token is suppressed.
		terminal = model.Envelope{Kind: model.EnvelopeCancelled, JobID: jobID}
	case err != nil:
		terminal = model.Envelope{Kind: model.EnvelopeError, JobID: jobID, Error: err.Error()}
	default:
		terminal = model.Envelope{Kind: model.EnvelopeComplete, JobID: jobID, Payload: result}
	}

	p.sendTerminal(js, terminal)
	close(js.events)
	js.cancel()
}

func (p *Pool) runSafely(js *jobState, progress func(float64)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s panicked: %v", js.task.JobID, r)
			result = nil
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return p.runner.Run(js.ctx, js.task, progress)
}

// sendTerminal always delivers the terminal envelope without blocking
// the unit: when an absent consumer let the buffer fill with progress
// events, the oldest unread event is discarded to make room.
func (p *Pool) sendTerminal(js *jobState, terminal model.Envelope) {
	for {
		select {
		case js.events <- terminal:
			return
		default:
			select {
			case <-js.events:
			default:
			}
		}
	}
}

// trySend delivers a non-terminal envelope without ever blocking the
// execution unit; a slow consumer loses progress events, never the
// terminal one.
func (p *Pool) trySend(js *jobState, env model.Envelope) {
	select {
	case js.events <- env:
	default:
	}
}
