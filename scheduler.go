package pirates

import (
	"container/heap"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a handle to a function scheduled with Scheduler.After.
type Task struct {
	executeAt time.Time
	fn        func()
	cancelled atomic.Bool

	// index is the heap index for efficient removal
	index int
}

// Cancel prevents the task from running. Cancelling a task that already ran is a no-op.
func (t *Task) Cancel() {
	if t != nil {
		t.cancelled.Store(true)
	}
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// taskQueue is a min-heap of tasks ordered by execution time.
type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool { return q[i].executeAt.Before(q[j].executeAt) }

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler runs delayed functions through Manager.Do, so they never overlap
// with commands, joins or rule handlers.
type Scheduler struct {
	manager *Manager

	mu    sync.Mutex
	queue taskQueue
	notif chan struct{}

	// now is replaceable so the queue can be driven by a fake clock
	now func() time.Time

	running      atomic.Bool
	stopCh       chan struct{}
	doneCh       chan struct{}
	shutdownOnce sync.Once

	tickRate time.Duration
}

// newScheduler creates a new scheduler. It does nothing until Start is called.
func newScheduler(m *Manager) *Scheduler {
	return &Scheduler{
		manager:  m,
		notif:    make(chan struct{}, 1),
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		tickRate: 50 * time.Millisecond,
	}
}

// After schedules fn to run once delay has elapsed.
func (s *Scheduler) After(delay time.Duration, fn func()) *Task {
	t := &Task{executeAt: s.now().Add(delay), fn: fn}

	s.mu.Lock()
	heap.Push(&s.queue, t)
	s.mu.Unlock()

	select {
	case s.notif <- struct{}{}:
	default:
	}
	return t
}

// Pending returns the number of queued tasks, cancelled ones included.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Start begins executing due tasks in a background goroutine.
func (s *Scheduler) Start() {
	if s.running.Swap(true) {
		return
	}
	go s.run()
}

// Stop halts the scheduler and waits for the running task, if any, to finish.
func (s *Scheduler) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCh)
		if s.running.Load() {
			<-s.doneCh
		}
	})
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		case <-s.notif:
		}
		s.tick(s.now())
	}
}

// tick runs every task due at now.
func (s *Scheduler) tick(now time.Time) {
	for _, t := range s.due(now) {
		s.execute(t)
	}
}

func (s *Scheduler) due(now time.Time) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Task
	for s.queue.Len() > 0 && !s.queue[0].executeAt.After(now) {
		t := heap.Pop(&s.queue).(*Task)
		if !t.cancelled.Load() {
			out = append(out, t)
		}
	}
	return out
}

func (s *Scheduler) execute(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pirates: scheduled task panicked",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	s.manager.Do(func() {
		if !t.cancelled.Load() {
			t.fn()
		}
	})
}
