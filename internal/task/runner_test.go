package task

import (
	"sync"
	"testing"
	"time"
)

func TestNowRunsSubmittedTasks(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	r.Start()
	defer r.Stop()

	ran := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		r.Now(func() { ran <- i })
	}

	for want := 0; want < 3; want++ {
		select {
		case got := <-ran:
			if got != want {
				t.Errorf("task order: got %d, want %d", got, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for task")
		}
	}
}

func TestTasksNeverOverlap(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	r.Start()
	defer r.Stop()

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		r.Now(func() {
			defer wg.Done()
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		})
	}
	wg.Wait()

	if maxRunning != 1 {
		t.Errorf("observed %d concurrent tasks, want 1", maxRunning)
	}
}

func TestAfterWaitsAtLeastDelay(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	r.Start()
	defer r.Stop()

	const delay = 50 * time.Millisecond
	start := time.Now()
	done := make(chan time.Duration, 1)
	r.After(delay, func() { done <- time.Since(start) })

	select {
	case elapsed := <-done:
		if elapsed < delay {
			t.Errorf("task ran after %v, want at least %v", elapsed, delay)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delayed task")
	}
}

func TestAtSchedulesByWallClock(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	r.Start()
	defer r.Stop()

	done := make(chan struct{})
	r.At(time.Now().Add(20*time.Millisecond), func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduled task")
	}
}

func TestStopAbandonsPendingDelays(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	r.Start()

	ran := make(chan struct{}, 1)
	r.After(30*time.Millisecond, func() { ran <- struct{}{} })
	r.Stop()

	// Restart and make sure the abandoned task never resurfaces.
	r.Start()
	defer r.Stop()

	select {
	case <-ran:
		t.Error("task scheduled before Stop ran after restart")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopAllowsRestart(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	r.Start()
	r.Stop()
	r.Start()
	defer r.Stop()

	done := make(chan struct{})
	r.Now(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("restarted runner did not execute tasks")
	}
}

func TestNowAfterStopDoesNotBlock(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	r.Start()
	r.Stop()

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			r.Now(func() {})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Now blocked on a stopped runner")
	}
}
