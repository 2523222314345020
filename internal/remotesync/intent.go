package remotesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Status of a sync intent
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Intent is the observable outcome of one remote push
type Intent struct {
	label string
	done  chan struct{}

	mu     sync.Mutex
	status Status
	err    error
}

func newIntent(label string) *Intent {
	return &Intent{label: label, done: make(chan struct{}), status: StatusPending}
}

// Skipped returns an intent that resolved without any remote call
func Skipped(label string) *Intent {
	in := newIntent(label)
	in.resolve(StatusSkipped, nil)
	return in
}

func (i *Intent) resolve(s Status, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.status != StatusPending {
		return
	}
	i.status = s
	i.err = err
	close(i.done)
}

func (i *Intent) Label() string { return i.label }

// Done is closed once the intent leaves pending
func (i *Intent) Done() <-chan struct{} { return i.done }

func (i *Intent) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

// Err is the push error of a failed intent
func (i *Intent) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

// Wait blocks until the intent resolves and returns its error, or ctx's
func (i *Intent) Wait(ctx context.Context) error {
	select {
	case <-i.done:
		return i.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitAll waits for every non-nil intent and joins their errors
func WaitAll(ctx context.Context, intents ...*Intent) error {
	var errs []error
	for _, in := range intents {
		if in == nil {
			continue
		}
		if err := in.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", in.Label(), err))
		}
	}
	return errors.Join(errs...)
}
