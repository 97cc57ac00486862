package layout

import (
	"sync"
	"time"
)

// Scheduler schedules one unit of work at a time. The physics engine asks
// for one step per Schedule call and schedules the next step from within the
// previous one, so steps execute strictly in sequence and never overlap.
type Scheduler interface {
	// Schedule arranges for fn to run once and returns a cancel function.
	// Cancel prevents a not-yet-started fn from running; it never interrupts
	// an fn that has already begun.
	Schedule(fn func()) (cancel func())
}

// =============================================================================
// Immediate Scheduler
// =============================================================================

// ImmediateScheduler drives scheduled work synchronously through a trampoline
// queue: work scheduled from within running work is appended and drained in
// order rather than executed recursively. A full simulation therefore runs to
// completion inside the first Schedule call, which is what tests and the CLI
// want.
type ImmediateScheduler struct {
	queue    []*immediateTask
	draining bool
}

type immediateTask struct {
	fn        func()
	cancelled bool
}

// NewImmediateScheduler returns a synchronous scheduler.
// Not safe for concurrent use; it is meant for single-goroutine drivers.
func NewImmediateScheduler() *ImmediateScheduler {
	return &ImmediateScheduler{}
}

// Schedule enqueues fn and, unless a drain is already in progress higher up
// the stack, drains the queue until empty.
func (s *ImmediateScheduler) Schedule(fn func()) (cancel func()) {
	task := &immediateTask{fn: fn}
	s.queue = append(s.queue, task)

	if !s.draining {
		s.draining = true
		for len(s.queue) > 0 {
			next := s.queue[0]
			s.queue = s.queue[1:]
			if !next.cancelled {
				next.fn()
			}
		}
		s.draining = false
	}

	return func() { task.cancelled = true }
}

// =============================================================================
// Timer Scheduler
// =============================================================================

// TimerScheduler defers each unit of work to a timer, keeping the caller's
// goroutine free between steps. A zero delay still yields to the runtime
// before the work runs, mirroring a recurring zero-delay callback.
type TimerScheduler struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewTimerScheduler returns a scheduler that runs work after the given delay.
func NewTimerScheduler(delay time.Duration) *TimerScheduler {
	return &TimerScheduler{
		delay:  delay,
		timers: make(map[*time.Timer]struct{}),
	}
}

// Schedule arranges fn to run on a timer goroutine after the configured delay.
func (s *TimerScheduler) Schedule(fn func()) (cancel func()) {
	var timer *time.Timer
	timer = time.AfterFunc(s.delay, func() {
		s.forget(timer)
		fn()
	})

	s.mu.Lock()
	s.timers[timer] = struct{}{}
	s.mu.Unlock()

	return func() {
		if timer.Stop() {
			s.forget(timer)
		}
	}
}

// Pending reports how many scheduled units have not started yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *TimerScheduler) forget(t *time.Timer) {
	s.mu.Lock()
	delete(s.timers, t)
	s.mu.Unlock()
}
