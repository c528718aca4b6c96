// Package task provides the single-worker event loop that serializes all
// application-level work. Everything that touches key behavior state runs
// through one Runner, so handlers and widget ticks never race each other.
package task

import (
	"sync"
	"time"
)

// Task is one unit of work executed on the runner's worker.
type Task func()

// Runner executes tasks one at a time, in wake order, on a dedicated
// goroutine. Delayed tasks are submitted with After and must reschedule
// themselves for periodic work; sleeping inside a task stalls everyone.
type Runner struct {
	mu      sync.Mutex
	queue   []Task
	wake    chan struct{}
	done    chan struct{}
	started bool
	wg      sync.WaitGroup
}

// NewRunner returns an idle runner. Tasks may be submitted before Start;
// they are held in the queue until the worker begins.
func NewRunner() *Runner {
	return &Runner{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start launches the worker goroutine. Starting a started runner is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true

	r.wg.Add(1)
	go r.run(r.wake, r.done)
	signal(r.wake)
}

func (r *Runner) run(wake, done chan struct{}) {
	defer r.wg.Done()
	for {
		select {
		case <-done:
			return
		case <-wake:
		}

		for {
			r.mu.Lock()
			if len(r.queue) == 0 {
				r.mu.Unlock()
				break
			}
			task := r.queue[0]
			r.queue = r.queue[1:]
			r.mu.Unlock()

			select {
			case <-done:
				return
			default:
			}
			task()
		}
	}
}

// Stop halts the worker and joins it, then resets the runner so it can be
// started again. Queued work and tasks still waiting on a delay are
// abandoned, not run.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	r.queue = nil
	r.wake = make(chan struct{}, 1)
	r.done = make(chan struct{})
	r.started = false
	r.mu.Unlock()
}

// Now enqueues a task for the next loop turn. Safe to call from any
// goroutine, including driver callbacks; it never blocks.
func (r *Runner) Now(task Task) {
	r.mu.Lock()
	r.queue = append(r.queue, task)
	wake := r.wake
	r.mu.Unlock()
	signal(wake)
}

func signal(wake chan<- struct{}) {
	select {
	case wake <- struct{}{}:
	default:
	}
}

// After runs a task on the worker no earlier than delay from now. Relative
// order among tasks due at the same instant is best effort.
func (r *Runner) After(delay time.Duration, task Task) {
	if delay <= 0 {
		r.Now(task)
		return
	}

	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	time.AfterFunc(delay, func() {
		// A stop during the delay abandons the task for good, even if the
		// runner has been restarted since.
		select {
		case <-done:
		default:
			r.Now(task)
		}
	})
}

// At runs a task on the worker no earlier than the given wall-clock time.
func (r *Runner) At(when time.Time, task Task) {
	r.After(time.Until(when), task)
}
