package schedule

import "slices"

// Manual is a deterministic Scheduler whose clock only moves when Advance
// is called. Tasks fire in due-time order; ties fire in scheduling order.
type Manual struct {
	now   float64
	seq   int
	tasks []*manualTask
}

// NewManual returns a Manual scheduler starting at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now implements Scheduler.
func (m *Manual) Now() float64 {
	return m.now
}

// After implements Scheduler.
func (m *Manual) After(delay float64, fn func()) Task {
	if delay < 0 {
		delay = 0
	}

	t := &manualTask{due: m.now + delay, seq: m.seq, fn: fn}
	m.seq++
	m.tasks = append(m.tasks, t)

	return t
}

// Pending returns the number of tasks that have neither fired nor been
// cancelled.
func (m *Manual) Pending() int {
	n := 0

	for _, t := range m.tasks {
		if !t.done {
			n++
		}
	}

	return n
}

// Advance moves the clock forward by d seconds, firing every task that
// becomes due. The clock is set to each task's due time before it fires,
// so callbacks observe the exact time they were scheduled for.
func (m *Manual) Advance(d float64) {
	m.AdvanceTo(m.now + d)
}

// AdvanceTo moves the clock to the absolute time target.
func (m *Manual) AdvanceTo(target float64) {
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}

		m.now = max(m.now, next.due)
		next.done = true
		next.fn()
	}

	m.now = max(m.now, target)
	m.compact()
}

func (m *Manual) nextDue(target float64) *manualTask {
	var best *manualTask

	for _, t := range m.tasks {
		if t.done || t.due > target {
			continue
		}

		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}

	return best
}

func (m *Manual) compact() {
	m.tasks = slices.DeleteFunc(m.tasks, func(t *manualTask) bool { return t.done })
}

type manualTask struct {
	due  float64
	seq  int
	fn   func()
	done bool
}

func (t *manualTask) Cancel() bool {
	if t.done {
		return false
	}

	t.done = true

	return true
}
