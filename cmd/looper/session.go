package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-looper/looper/bus"
	"github.com/cwbudde/algo-looper/looper/transport"
)

var errQuit = errors.New("quit")

// session executes commands against a running looper. exec must run on the
// control loop.
type session struct {
	m      *transport.Manager
	bus    *bus.Bus
	export string
}

// exec runs c and returns the reply to print.
//
//nolint:cyclop
func (s *session) exec(c command) (string, error) {
	switch c.verb {
	case "":
		return "", nil
	case "quit":
		return "", errQuit
	case "help":
		return helpText, nil
	case "tempo":
		return s.tempo(), nil
	case "status":
		return s.status(), nil
	case "rec":
		return reply(s.m.Record(c.track)), nil
	case "stop":
		return reply(s.m.Stop(c.track)), nil
	case "dub":
		return reply(s.m.Overdub(c.track)), nil
	case "abort":
		return reply(s.m.Abort(c.track)), nil
	case "play":
		return reply(s.m.Resume(c.track)), nil
	case "clear":
		return reply(s.m.Clear(c.track)), nil
	case "div":
		return reply(s.m.SetDivider(c.track, c.div)), nil
	case "level":
		return reply(s.m.SetLevel(c.track, c.value)), nil
	case "master":
		s.bus.SetLevel(c.value)
		return "ok", nil
	case "tap":
		return s.tap(c.op), nil
	case "export":
		return s.exportTo(c.path)
	case "fx":
		return s.fx(c), nil
	}

	return "", fmt.Errorf("%w: unknown command %q", errUsage, c.verb)
}

func (s *session) fx(c command) string {
	switch c.op {
	case "add":
		id, ok := s.m.AddEffect(c.track, c.typ)
		if !ok {
			return reply(false)
		}

		return fmt.Sprintf("added %s as %d", c.typ, id)
	case "rm":
		return reply(s.m.RemoveEffect(c.track, c.id))
	case "up", "down":
		return reply(s.m.MoveEffect(c.track, c.id, c.direction()))
	case "bypass":
		return reply(s.m.ToggleBypass(c.track, c.id))
	case "set":
		return reply(s.m.SetParam(c.track, c.id, c.param, c.value))
	}

	return reply(false)
}

func (s *session) tempo() string {
	snap := s.m.Clock().Snapshot()
	if !snap.Valid {
		return "no master loop"
	}

	return fmt.Sprintf("tempo %d bpm (%.3f s loop)", snap.Tempo, snap.Duration)
}

func (s *session) tap(op string) string {
	if op == "start" {
		return reply(s.bus.StartTap())
	}

	buf := s.bus.StopTap()
	if buf == nil {
		return reply(false)
	}

	return fmt.Sprintf("recorded %.3f s", buf.Duration())
}

func (s *session) exportTo(path string) (string, error) {
	if path == "" {
		path = s.export
	}

	if path == "" {
		return "", fmt.Errorf("%w: export needs a path", errUsage)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	err = s.bus.Export(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("export: %w", err)
	}

	return "wrote " + path, nil
}

func (s *session) status() string {
	var b strings.Builder

	st := s.m.Status()

	fmt.Fprintln(&b, s.tempo())
	writeTracks(&b, st)

	return strings.TrimRight(b.String(), "\n")
}

func writeTracks(w io.Writer, st transport.Status) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Track\tState\tDivider\tLength [s]\tLevel\tRate\tEffects\n")

	for _, tr := range st.Tracks {
		fx := make([]string, 0, len(tr.Effects))
		for _, n := range tr.Effects {
			label := fmt.Sprintf("%d:%s", n.ID, n.Type)
			if n.Bypass {
				label += "(off)"
			}

			fx = append(fx, label)
		}

		div := tr.Divider.String()
		if tr.Index == 1 {
			div = "master"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f\t%.2f\t%.3f\t%s\n",
			tr.Index, tr.State, div, tr.Duration, tr.Level, tr.Rate, strings.Join(fx, " "))
	}

	_ = tw.Flush()
}

func reply(ok bool) string {
	if ok {
		return "ok"
	}

	return "ignored"
}
