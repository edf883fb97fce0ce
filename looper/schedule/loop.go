package schedule

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("schedule: loop stopped")

// Loop is a Scheduler backed by wall-clock timers. Callbacks, posted
// functions and timer expiries are all executed by Run, one at a time.
type Loop struct {
	start time.Time
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop returns a Loop whose clock starts at zero now.
func NewLoop() *Loop {
	return &Loop{
		start: time.Now(),
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Now returns the seconds elapsed since the loop was created.
func (l *Loop) Now() float64 {
	return time.Since(l.start).Seconds()
}

// Post queues fn for execution on the control goroutine.
func (l *Loop) Post(fn func()) {
	if l.stopped() {
		return
	}

	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Call runs fn on the control goroutine and waits for it to return.
func (l *Loop) Call(fn func()) error {
	if l.stopped() {
		return ErrStopped
	}

	finished := make(chan struct{})

	select {
	case l.queue <- func() { fn(); close(finished) }:
	case <-l.done:
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

func (l *Loop) stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// After implements Scheduler.
func (l *Loop) After(delay float64, fn func()) Task {
	t := &loopTask{fn: fn}
	d := time.Duration(delay * float64(time.Second))

	if d < 0 {
		d = 0
	}

	t.timer = time.AfterFunc(d, func() {
		l.Post(t.fire)
	})

	return t
}

type loopTask struct {
	mu        sync.Mutex
	timer     *time.Timer
	fn        func()
	cancelled bool
	fired     bool
}

// fire runs on the control goroutine, so a Cancel issued there before the
// posted closure is dequeued still wins.
func (t *loopTask) fire() {
	t.mu.Lock()
	if t.cancelled || t.fired {
		t.mu.Unlock()
		return
	}

	t.fired = true
	fn := t.fn
	t.mu.Unlock()

	fn()
}

func (t *loopTask) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled || t.fired {
		return false
	}

	t.cancelled = true
	t.timer.Stop()

	return true
}
