package track

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/looper/capture"
	"github.com/cwbudde/algo-looper/looper/clock"
	"github.com/cwbudde/algo-looper/looper/loopbuf"
	"github.com/cwbudde/algo-looper/looper/schedule"
)

// Record starts capturing immediately and commits the raw take. A positive
// maxLength stops the recording automatically after that many seconds.
func (t *Track) Record(maxLength float64) bool {
	if t.state != Ready {
		return t.reject("record")
	}

	t.target = 0
	t.beginCapture(maxLength)

	return true
}

// Wait parks a ready track until a record start is scheduled with RecordAt.
func (t *Track) Wait() bool {
	if t.state != Ready {
		return t.reject("wait")
	}

	t.setState(Waiting)

	return true
}

// RecordAt schedules a capture of exactly length seconds to begin after
// delay seconds. The committed buffer is truncated or zero-padded to length.
func (t *Track) RecordAt(delay, length float64) bool {
	if t.state != Ready && t.state != Waiting {
		return t.reject("record-at")
	}

	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return t.reject("record-at")
	}

	t.target = length
	t.start = schedule.Cancel(t.start)

	if delay <= 0 {
		t.beginCapture(length)
		return true
	}

	t.setState(Waiting)
	t.log.WithFields(logrus.Fields{"delay": delay, "length": length}).Debug("record start scheduled")

	t.start = t.sched.After(delay, func() {
		t.start = nil
		if t.state == Waiting {
			t.beginCapture(t.target)
		}
	})

	return true
}

// StopRecording ends the capture and commits it. A failed or empty capture
// returns the track to ready without a buffer.
func (t *Track) StopRecording() bool {
	if t.state != Recording {
		return t.reject("stop-recording")
	}

	t.end = schedule.Cancel(t.end)

	take, ok := t.finishCapture()
	target := t.target
	t.target = 0

	if !ok {
		t.log.Warn("recording produced no audio, no loop committed")
		t.setState(Ready)

		return true
	}

	buf := loopbuf.New(take.Channels, take.SampleRate)
	if target > 0 {
		frames := loopbuf.FramesFor(target, take.SampleRate)
		if frames != buf.Frames() {
			t.log.WithError(loopbuf.ErrLengthMismatch).
				WithFields(logrus.Fields{"captured": buf.Frames(), "target": frames}).
				Debug("fitting take to loop length")
		}

		buf = buf.Fit(frames)
	}

	t.buf = buf
	t.loopStart = t.sched.Now()
	t.player = loopbuf.NewPlayer(buf)
	t.setState(Playing)
	t.connect()

	t.log.WithFields(logrus.Fields{
		"duration": buf.Duration(),
		"frames":   buf.Frames(),
		"channels": buf.NumChannels(),
	}).Info("loop committed")

	t.committed(false)

	return true
}

// Abort cancels a pending or running recording without committing. On an
// armed overdub it cancels the overdub and keeps playing.
func (t *Track) Abort() bool {
	switch t.state {
	case Waiting, Recording:
		t.cancelTasks()
		t.discardCapture()
		t.target = 0
		t.setState(Ready)
	case Overdub:
		t.cancelTasks()
		t.discardCapture()
		t.setState(Playing)
	default:
		return t.reject("abort")
	}

	t.log.Info("recording aborted")

	return true
}

// ArmOverdub schedules a one-loop capture starting at the next loop
// boundary. The take is summed into the loop at the boundary after that.
func (t *Track) ArmOverdub() bool {
	if t.state != Playing {
		return t.reject("overdub")
	}

	t.setState(Overdub)

	wait := clock.UntilBoundary(t.sched.Now(), t.loopStart, t.buf.Duration())
	if wait <= 0 {
		t.beginOverdub()
		return true
	}

	t.start = t.sched.After(wait, func() {
		t.start = nil
		if t.state == Overdub {
			t.beginOverdub()
		}
	})

	return true
}

// Stop halts playback and keeps the buffer and chain. Stopping a stopped
// track does nothing.
func (t *Track) Stop() bool {
	switch t.state {
	case Playing, Overdub:
	case Stopped:
		return false
	default:
		return t.reject("stop")
	}

	t.cancelTasks()
	t.discardCapture()
	t.chain.Detach()
	t.player = nil
	t.setState(Stopped)

	return true
}

// Resume restarts a stopped track at phase seconds into its loop.
func (t *Track) Resume(phase float64) bool {
	if t.state != Stopped {
		return t.reject("resume")
	}

	phase = clock.PhaseOffset(phase, 0, t.buf.Duration())

	t.player = loopbuf.NewPlayer(t.buf)
	if frames := t.buf.Frames(); frames > 0 {
		err := t.player.Seek(loopbuf.FramesFor(phase, t.buf.SampleRate()) % frames)
		if err != nil {
			t.log.WithError(err).Warn("resume seek failed, starting at phase 0")

			phase = 0
		}
	}

	t.loopStart = t.sched.Now() - phase
	t.setState(Playing)
	t.connect()

	return true
}

// Clear discards the buffer and any pending work and returns to ready. The
// effect chain is kept.
func (t *Track) Clear() bool {
	if t.state == Ready && t.buf == nil && t.src == nil && t.start == nil && t.end == nil {
		return false
	}

	t.cancelTasks()
	t.discardCapture()
	t.chain.Detach()

	t.buf = nil
	t.player = nil
	t.loopStart = 0
	t.target = 0
	t.setState(Ready)
	t.log.Info("track cleared")

	return true
}

// Close clears the track and disposes every realized effect stage. The
// chain keeps its nodes, so the track can record again.
func (t *Track) Close() {
	t.Clear()
	t.chain.Teardown()
}

func (t *Track) beginCapture(length float64) {
	t.src = t.openSource()
	t.setState(Recording)

	if length > 0 {
		t.end = t.sched.After(length, func() {
			t.end = nil
			t.StopRecording()
		})
	}
}

func (t *Track) beginOverdub() {
	t.src = t.openSource()
	t.end = t.sched.After(t.buf.Duration(), func() {
		t.end = nil
		t.finishOverdub()
	})

	t.log.Debug("overdub capture started")
}

func (t *Track) finishOverdub() {
	take, ok := t.finishCapture()
	t.setState(Playing)

	if !ok {
		t.log.Warn("overdub produced no audio, loop unchanged")
		return
	}

	merged := t.buf.Overdub(loopbuf.New(take.Channels, take.SampleRate))
	t.buf = merged
	t.player.Swap(merged)

	t.log.WithField("channels", merged.NumChannels()).Info("overdub merged")
	t.committed(true)
}

// openSource opens and starts a capture source. A failure is logged and
// yields nil; the caller's timers still run so the state machine completes.
func (t *Track) openSource() capture.Source {
	src, err := t.dev.Open()
	if err != nil {
		t.log.WithError(err).Warn("capture unavailable")
		return nil
	}

	err = src.Start()
	if err != nil {
		_ = src.Close()

		t.log.WithError(err).Warn("capture failed to start")

		return nil
	}

	return src
}

func (t *Track) finishCapture() (capture.Take, bool) {
	src := t.src
	t.src = nil

	if src == nil {
		return capture.Take{}, false
	}

	take, err := src.Stop()
	_ = src.Close()

	if err != nil {
		t.log.WithError(err).Warn("capture stop failed")
		return capture.Take{}, false
	}

	if take.Empty() {
		return capture.Take{}, false
	}

	return take, true
}

func (t *Track) discardCapture() {
	if t.src == nil {
		return
	}

	_ = t.src.Close()
	t.src = nil
}

func (t *Track) cancelTasks() {
	t.start = schedule.Cancel(t.start)
	t.end = schedule.Cancel(t.end)
}

// connect routes the player through the effect chain into the output gain.
func (t *Track) connect() {
	var source beep.Streamer = t.player

	if sr := t.buf.SampleRate(); sr > 0 && math.Abs(sr-t.sampleRate) >= 0.5 {
		source = beep.Resample(resampleQuality,
			beep.SampleRate(math.Round(sr)), beep.SampleRate(math.Round(t.sampleRate)), source)
	}

	t.chain.Rewire(source, t.gain)
}

func (t *Track) committed(overdub bool) {
	if t.onCommit == nil {
		return
	}

	t.onCommit(Commit{
		Track:    t.index,
		Duration: t.buf.Duration(),
		Frames:   t.buf.Frames(),
		Channels: t.buf.NumChannels(),
		Overdub:  overdub,
	})
}
