package app

import (
	"slices"
	"sync"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay. The feed uses it for the commit,
// undo and settle animations so tests can step time deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemScheduler schedules on the runtime timer.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Serialized wraps s so every callback runs while holding mu.
func Serialized(s Scheduler, mu sync.Locker) Scheduler {
	return serialized{inner: s, mu: mu}
}

type serialized struct {
	inner Scheduler
	mu    sync.Locker
}

func (s serialized) AfterFunc(d time.Duration, fn func()) Timer {
	return s.inner.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		fn()
	})
}

// ManualScheduler is a Scheduler driven by Advance. Callbacks run on the
// goroutine calling Advance.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{s: m, due: m.now + max(d, 0), seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)

	return t
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped {
		return false
	}

	t.stopped = true

	return true
}

// Advance moves virtual time forward by d and runs every callback due by
// then in deadline order, ties in scheduling order. Callbacks scheduled while
// advancing run too if they fall inside the window. It returns the number of
// callbacks run.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	ran := 0

	for {
		t := m.next(target)
		if t == nil {
			break
		}

		t.fn()
		ran++
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()

	return ran
}

// Flush runs callbacks until none are pending, however far in the future.
func (m *ManualScheduler) Flush() int {
	ran := 0

	for {
		m.mu.Lock()
		if len(m.tasks) == 0 {
			m.mu.Unlock()
			return ran
		}

		latest := m.tasks[0].due
		for _, t := range m.tasks {
			latest = max(latest, t.due)
		}

		d := latest - m.now
		m.mu.Unlock()

		ran += m.Advance(d)
	}
}

// Pending returns the number of callbacks not yet run or stopped.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0

	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}

	return n
}

// next pops the earliest live task due by target, advancing virtual time to
// its deadline.
func (m *ManualScheduler) next(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = slices.DeleteFunc(m.tasks, func(t *manualTask) bool { return t.stopped })
	if len(m.tasks) == 0 {
		return nil
	}

	i := 0

	for j, t := range m.tasks {
		if t.due < m.tasks[i].due || (t.due == m.tasks[i].due && t.seq < m.tasks[i].seq) {
			i = j
		}
	}

	t := m.tasks[i]
	if t.due > target {
		return nil
	}

	m.tasks = slices.Delete(m.tasks, i, i+1)
	t.stopped = true
	m.now = max(m.now, t.due)

	return t
}
