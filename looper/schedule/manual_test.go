package schedule

import (
	"slices"
	"testing"
)

func TestManualFiresInOrder(t *testing.T) {
	t.Parallel()

	m := NewManual()

	var got []string
	m.After(2, func() { got = append(got, "b") })
	m.After(1, func() { got = append(got, "a") })
	m.After(2, func() { got = append(got, "c") })
	m.After(5, func() { got = append(got, "late") })

	m.Advance(3)

	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Fatalf("fired %v, want %v", got, want)
	}

	if m.Now() != 3 {
		t.Fatalf("Now() = %v, want 3", m.Now())
	}

	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}
}

func TestManualCallbackSeesDueTime(t *testing.T) {
	t.Parallel()

	m := NewManual()

	var at float64
	m.After(1.5, func() { at = m.Now() })
	m.Advance(10)

	if at != 1.5 {
		t.Fatalf("callback saw Now() = %v, want 1.5", at)
	}
}

func TestManualNestedSchedule(t *testing.T) {
	t.Parallel()

	m := NewManual()

	var fired []float64
	m.After(1, func() {
		fired = append(fired, m.Now())
		m.After(1, func() { fired = append(fired, m.Now()) })
	})

	m.Advance(5)

	if want := []float64{1, 2}; !slices.Equal(fired, want) {
		t.Fatalf("fired at %v, want %v", fired, want)
	}
}

func TestManualCancel(t *testing.T) {
	t.Parallel()

	m := NewManual()
	fired := false
	task := m.After(1, func() { fired = true })

	if !task.Cancel() {
		t.Fatal("first Cancel should report pending")
	}

	if task.Cancel() {
		t.Fatal("second Cancel should be a no-op")
	}

	m.Advance(2)

	if fired {
		t.Fatal("cancelled task fired")
	}

	if m.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", m.Pending())
	}
}

func TestCancelHelper(t *testing.T) {
	t.Parallel()

	m := NewManual()
	fired := false
	task := m.After(1, func() { fired = true })

	task = Cancel(task)
	if task != nil {
		t.Fatal("Cancel should return nil")
	}

	if Cancel(nil) != nil {
		t.Fatal("Cancel(nil) should return nil")
	}

	m.Advance(1)

	if fired {
		t.Fatal("task fired after Cancel")
	}
}
