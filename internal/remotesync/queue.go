// Package remotesync runs remote pushes in mutation order on a single worker
// and hands callers an Intent that resolves when the push settles.
package remotesync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/logger"
)

// ErrQueueClosed resolves intents enqueued after Close
var ErrQueueClosed = errors.New("remotesync: queue closed")

// Task is one remote push
type Task struct {
	Label  string
	Fields map[string]interface{}
	Run    func(ctx context.Context) error
}

type job struct {
	ctx    context.Context
	task   Task
	intent *Intent
}

// Queue is an unbounded FIFO drained by one goroutine
type Queue struct {
	log logger.Logger

	mu      sync.Mutex
	pending []job
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func NewQueue(log logger.Logger) *Queue {
	if log == nil {
		log = logger.Nop()
	}
	q := &Queue{
		log:  log,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue schedules t after every previously enqueued task. The push runs
// with a context detached from ctx's cancellation so a finished request
// does not abort it.
func (q *Queue) Enqueue(ctx context.Context, t Task) *Intent {
	in := newIntent(t.Label)
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		in.resolve(StatusFailed, ErrQueueClosed)
		return in
	}
	q.pending = append(q.pending, job{ctx: context.WithoutCancel(ctx), task: t, intent: in})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return in
}

// Len reports tasks not yet started
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to end
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		j := q.pending[0]
		q.pending[0] = job{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.execute(j)
	}
}

func (q *Queue) execute(j job) {
	err := safeRun(j.ctx, j.task.Run)
	if err != nil {
		q.log.WithFields(j.task.Fields).Warn("remote sync failed", "label", j.task.Label, "error", err)
		j.intent.resolve(StatusFailed, err)
		return
	}
	q.log.WithFields(j.task.Fields).Debug("remote sync done", "label", j.task.Label)
	j.intent.resolve(StatusSucceeded, nil)
}

func safeRun(ctx context.Context, fn func(context.Context) error) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("remotesync: task panicked: %v", r)
		}
	}()
	return fn(ctx)
}
