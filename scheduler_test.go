package pirates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newIdleScheduler returns a scheduler whose loop is not running, so tests
// drive it with tick alone.
func newIdleScheduler(t *testing.T) *Scheduler {
	m := newManager(testSettings(), discardLogger())
	t.Cleanup(m.sched.Stop)
	return m.sched
}

func TestSchedulerRunsDueTasksInOrder(t *testing.T) {
	s := newIdleScheduler(t)
	now := time.Now()
	s.now = func() time.Time { return now }

	var order []int
	s.After(3*time.Second, func() { order = append(order, 3) })
	s.After(time.Second, func() { order = append(order, 1) })
	s.After(2*time.Second, func() { order = append(order, 2) })
	assert.Equal(t, 3, s.Pending())

	s.tick(now.Add(2 * time.Second))
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 1, s.Pending())

	s.tick(now.Add(time.Hour))
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Zero(t, s.Pending())
}

func TestSchedulerCancel(t *testing.T) {
	s := newIdleScheduler(t)
	ran := false
	task := s.After(time.Millisecond, func() { ran = true })
	task.Cancel()
	assert.True(t, task.Cancelled())

	s.tick(time.Now().Add(time.Second))
	assert.False(t, ran)

	var nilTask *Task
	assert.NotPanics(t, nilTask.Cancel)
	assert.False(t, nilTask.Cancelled())
}

func TestSchedulerRecoversFromPanics(t *testing.T) {
	s := newIdleScheduler(t)
	ran := false
	s.After(0, func() { panic("boom") })
	s.After(0, func() { ran = true })

	assert.NotPanics(t, func() { s.tick(time.Now().Add(time.Second)) })
	assert.True(t, ran)
}

func TestSchedulerBackgroundLoop(t *testing.T) {
	m := newTestManager(t)
	done := make(chan struct{})
	m.sched.After(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task did not run")
	}
}
