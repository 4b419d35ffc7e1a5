package voip

import (
	"sort"
	"sync"
	"time"
)

// Scheduler defers work by a fixed delay. The indirection exists so tests can
// drive timers with a manual scheduler instead of wall-clock waits.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

// Task is a handle to scheduled work.
type Task interface {
	// Stop cancels the task. It reports whether the cancellation prevented
	// the task from running. Safe to call more than once.
	Stop() bool
}

// NewScheduler returns the wall-clock scheduler used in production.
func NewScheduler() Scheduler { return timerScheduler{} }

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) Task {
	return timerTask{t: time.AfterFunc(d, fn)}
}

type timerTask struct{ t *time.Timer }

func (tt timerTask) Stop() bool { return tt.t.Stop() }

// ManualScheduler is a virtual-clock scheduler for tests. Scheduled work
// only runs when Advance moves the virtual clock past its deadline; nothing
// ever waits on the wall clock.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTask
}

func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

func (m *ManualScheduler) Schedule(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{at: m.now + d, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the virtual clock forward and runs every task that came due,
// in deadline order.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due, rest []*manualTask
	for _, t := range m.pending {
		if t.at <= m.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	m.pending = rest
	m.mu.Unlock()

	for _, t := range due {
		t.run()
	}
}

// PendingCount reports how many tasks are scheduled and not yet fired or
// stopped.
func (m *ManualScheduler) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.stopped() {
			n++
		}
	}
	return n
}

type manualTask struct {
	at time.Duration
	fn func()

	mu       sync.Mutex
	done     bool
	canceled bool
}

func (t *manualTask) run() {
	t.mu.Lock()
	if t.done || t.canceled {
		t.mu.Unlock()
		return
	}
	t.done = true
	t.mu.Unlock()
	t.fn()
}

func (t *manualTask) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.canceled {
		return false
	}
	t.canceled = true
	return true
}

func (t *manualTask) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}
