package keeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Promise.
// Transitions are monotonic: Pending -> Running -> {Completed | Failed}.
type Status int32

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task is a unit of work. Arguments are bound by the caller (usually via a
// closure). A task signals failure by returning a non-nil error or by
// panicking; either way the failure is captured on the Promise and never
// reaches the worker goroutine.
type Task func(ctx context.Context) (interface{}, error)

// Notify is an optional callback invoked exactly once, on the worker
// goroutine, after the Promise reaches a terminal state.
type Notify func(*Promise)

// Promise is the handle returned on task submission. It tracks
// pending/running/completed/failed state and holds the eventual result or
// failure. A Promise is written by exactly one worker; after the terminal
// transition it is read-only from every goroutine's perspective.
type Promise struct {
	id     string
	task   Task
	notify Notify

	mu            sync.Mutex
	status        Status
	result        interface{}
	err           error
	startedAt     time.Time
	completedAt   time.Time
	continuations []*Promise
	keeper        *PromiseKeeper

	done chan struct{}
}

// NewPromise creates a Promise bound to a task, ready to be handed to
// PromiseKeeper.SubmitPromise.
func NewPromise(task Task) *Promise {
	return &Promise{
		id:   uuid.New().String(),
		task: task,
		done: make(chan struct{}),
	}
}

// NewPromiseWithNotify creates a Promise with a notify callback registered.
func NewPromiseWithNotify(task Task, notify Notify) *Promise {
	p := NewPromise(task)
	p.notify = notify
	return p
}

// ID returns the unique identifier of this Promise.
func (p *Promise) ID() string {
	return p.id
}

// Status returns the current lifecycle state.
func (p *Promise) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// IsReady reports whether the Promise reached a terminal state. It never
// blocks and, once true, never reverts.
func (p *Promise) IsReady() bool {
	s := p.Status()
	return s == StatusCompleted || s == StatusFailed
}

// HasStarted reports whether a worker began executing the task.
func (p *Promise) HasStarted() bool {
	return p.Status() >= StatusRunning
}

// Result returns the task's return value, or nil if the Promise is not
// completed. It never blocks.
func (p *Promise) Result() interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusCompleted {
		return nil
	}
	return p.result
}

// Err returns the captured failure, or nil if the Promise did not fail. It
// never blocks.
func (p *Promise) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusFailed {
		return nil
	}
	return p.err
}

// StartedAt returns when the task began executing, or the zero time if it is
// still waiting.
func (p *Promise) StartedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startedAt
}

// CompletedAt returns when the task finished, or the zero time if it is
// still waiting or running.
func (p *Promise) CompletedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completedAt
}

// ExecutionTime returns how long the task ran, or zero if it has not
// finished.
func (p *Promise) ExecutionTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completedAt.IsZero() {
		return 0
	}
	return p.completedAt.Sub(p.startedAt)
}

// Done returns a channel that is closed when the Promise reaches a terminal
// state.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the Promise reaches a terminal state or the context is
// cancelled, then returns the result or the captured failure.
func (p *Promise) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusFailed {
		return nil, p.err
	}
	return p.result, nil
}

// ThenDo registers a continuation that runs after this Promise reaches a
// terminal state. The continuation receives this Promise and its own result
// is tracked by the returned Promise. If the parent is already terminal the
// continuation is submitted immediately.
func (p *Promise) ThenDo(fn func(*Promise) (interface{}, error)) *Promise {
	child := NewPromise(func(ctx context.Context) (interface{}, error) {
		return fn(p)
	})

	p.mu.Lock()
	if p.status == StatusCompleted || p.status == StatusFailed {
		k := p.keeper
		p.mu.Unlock()
		if k != nil {
			_ = k.SubmitPromise(child)
		}
		return child
	}
	p.continuations = append(p.continuations, child)
	p.mu.Unlock()
	return child
}

func (p *Promise) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.status {
	case StatusCompleted, StatusFailed:
		return fmt.Sprintf("<Promise %s: result=%v err=%v>", p.id, p.result, p.err)
	case StatusRunning:
		return fmt.Sprintf("<Promise %s: running since %s>", p.id, p.startedAt.Format(time.RFC3339))
	default:
		return fmt.Sprintf("<Promise %s: waiting>", p.id)
	}
}

// bind attaches the owning keeper so continuations registered via ThenDo can
// be submitted back to it.
func (p *Promise) bind(k *PromiseKeeper) {
	p.mu.Lock()
	p.keeper = k
	p.mu.Unlock()
}

// markRunning transitions Pending -> Running. Worker-only.
func (p *Promise) markRunning() {
	p.mu.Lock()
	if p.status == StatusPending {
		p.status = StatusRunning
		p.startedAt = time.Now()
	}
	p.mu.Unlock()
}

// complete transitions to Completed and publishes the result atomically with
// the status. Worker-only.
func (p *Promise) complete(result interface{}) {
	p.terminate(StatusCompleted, result, nil)
}

// fail transitions to Failed and publishes the captured failure atomically
// with the status. Worker-only.
func (p *Promise) fail(err error) {
	p.terminate(StatusFailed, nil, err)
}

func (p *Promise) terminate(status Status, result interface{}, err error) {
	p.mu.Lock()
	if p.status == StatusCompleted || p.status == StatusFailed {
		p.mu.Unlock()
		return
	}
	p.status = status
	p.result = result
	p.err = err
	p.completedAt = time.Now()
	p.mu.Unlock()

	close(p.done)
}

// drainContinuations removes and returns continuations registered before the
// terminal transition. Worker-only, called after terminate.
func (p *Promise) drainContinuations() []*Promise {
	p.mu.Lock()
	defer p.mu.Unlock()
	cs := p.continuations
	p.continuations = nil
	return cs
}
