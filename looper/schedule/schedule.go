// Package schedule provides deferred callbacks keyed to a seconds clock.
//
// All callbacks of a Scheduler run on one control goroutine, so state
// machines driven by it never need their own locking. Every scheduled Task
// can be cancelled; a cancelled task never fires.
package schedule

// Task is a pending deferred callback.
type Task interface {
	// Cancel prevents the callback from running. It reports whether the
	// task was still pending. Cancelling twice is a no-op.
	Cancel() bool
}

// Scheduler runs callbacks after a delay measured in seconds.
type Scheduler interface {
	// Now returns the current time in seconds.
	Now() float64
	// After runs fn once delay seconds have elapsed. A non-positive delay
	// runs fn on the next turn of the control loop.
	After(delay float64, fn func()) Task
}

// Cancel cancels t if it is non-nil and returns nil, for use as
// `t.pending = schedule.Cancel(t.pending)`.
func Cancel(t Task) Task {
	if t != nil {
		t.Cancel()
	}

	return nil
}
