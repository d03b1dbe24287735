// Package runner guards long-running actors so each one runs at most once.
package runner

import (
	"errors"
	"sync"
)

// ErrAlreadyRun is returned when running a Runner that is running or has finished.
var ErrAlreadyRun = errors.New("already running or has finished running, it can only be run once")

// Runner is a thread-safe structure that can be run, finished, and queried.
// The zero value is ready to run.
type Runner struct {
	mu       sync.Mutex
	running  bool
	finished bool
	done     chan struct{}
}

// Run marks the runner as running.  It fails if the runner was already run.
func (r *Runner) Run() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.finished {
		return ErrAlreadyRun
	}
	r.running = true
	return nil
}

// Finish marks the runner as done, regardless if it ran, and closes the Done channel.
func (r *Runner) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.running = false
	r.finished = true
	close(r.doneLocked())
}

// IsRunning determines if the runner is running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Done is closed when the runner finishes.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doneLocked()
}

func (r *Runner) doneLocked() chan struct{} {
	if r.done == nil {
		r.done = make(chan struct{})
	}
	return r.done
}
