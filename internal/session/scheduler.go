package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a cancelable deferred callback. Cancel is a no-op once the task
// has fired or the scheduler is closed.
type Task struct {
	scheduler *scheduler
	id        int64
}

// Cancel - stops the task if it has not fired yet.
func (that *Task) Cancel() {
	if that == nil || that.scheduler == nil {
		return
	}
	that.scheduler.cancel(that.id)
}

// scheduler owns every pending deferred callback of a session (display
// holds, notice auto-clears, the reconnect retry) so teardown can cancel
// them all at once.
type scheduler struct {
	clock clockwork.Clock

	mutex  sync.Mutex
	timers map[int64]clockwork.Timer
	nextID int64
	closed bool
}

func newScheduler(clock clockwork.Clock) *scheduler {
	return &scheduler{
		clock:  clock,
		timers: make(map[int64]clockwork.Timer),
	}
}

// After - schedules fn to run once after the delay and returns a handle for
// cancellation. After a Close the returned task is inert.
func (that *scheduler) After(delay time.Duration, fn func()) *Task {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if that.closed {
		return &Task{}
	}

	that.nextID++
	id := that.nextID

	that.timers[id] = that.clock.AfterFunc(delay, func() {
		if !that.remove(id) {
			return
		}
		fn()
	})

	return &Task{scheduler: that, id: id}
}

func (that *scheduler) cancel(id int64) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if timer, ok := that.timers[id]; ok {
		timer.Stop()
		delete(that.timers, id)
	}
}

// remove reports whether the timer was still registered; a fired timer that
// lost the race against Cancel or Close must not run its callback.
func (that *scheduler) remove(id int64) bool {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if _, ok := that.timers[id]; !ok {
		return false
	}
	delete(that.timers, id)

	return true
}

// Close - cancels every pending task; later After calls are inert.
func (that *scheduler) Close() {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	that.closed = true
	for id, timer := range that.timers {
		timer.Stop()
		delete(that.timers, id)
	}
}
