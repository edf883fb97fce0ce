package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-looper/looper/chain"
	"github.com/cwbudde/algo-looper/looper/effect"
	"github.com/cwbudde/algo-looper/looper/track"
)

var errUsage = errors.New("usage")

// command is one parsed control line.
type command struct {
	verb  string
	track int

	// fx sub-command
	op    string
	typ   effect.Type
	id    int
	param string
	value float64

	div  track.Divider
	path string
}

var trackVerbs = map[string]string{
	"rec":    "rec",
	"record": "rec",
	"stop":   "stop",
	"dub":    "dub",
	"abort":  "abort",
	"play":   "play",
	"resume": "play",
	"clear":  "clear",
}

const helpText = `commands:
  rec N | stop N | dub N | abort N | play N | clear N
  div N RATIO          set the divider of a ready subordinate (2, 1/2)
  level N GAIN         set a track's output gain
  master GAIN          set the master level
  fx N add TYPE        append pitch|lowpass|highpass|pan|delay|compressor
  fx N rm|up|down|bypass ID
  fx N set ID PARAM VALUE
  tap start|stop       record the master output
  export [PATH]        write the last tap recording as WAV
  tempo | status | help | quit`

//nolint:cyclop
func parseCommand(line string) (command, error) {
	f := strings.Fields(strings.ToLower(line))
	if len(f) == 0 {
		return command{}, nil
	}

	c := command{verb: f[0]}

	if verb, ok := trackVerbs[c.verb]; ok {
		c.verb = verb
		return c, parseArgs(f[1:], &c.track)
	}

	switch c.verb {
	case "tempo", "status", "help", "quit", "exit":
		if len(f) != 1 {
			return command{}, fmt.Errorf("%w: %s takes no arguments", errUsage, c.verb)
		}

		if c.verb == "exit" {
			c.verb = "quit"
		}

		return c, nil
	case "div":
		if len(f) != 3 {
			return command{}, fmt.Errorf("%w: div N RATIO", errUsage)
		}

		d, err := track.ParseDivider(f[2])
		if err != nil {
			return command{}, err
		}

		c.div = d

		return c, parseArgs(f[1:2], &c.track)
	case "level":
		if len(f) != 3 {
			return command{}, fmt.Errorf("%w: level N GAIN", errUsage)
		}

		return c, parseArgs(f[1:3], &c.track, &c.value)
	case "master":
		if len(f) != 2 {
			return command{}, fmt.Errorf("%w: master GAIN", errUsage)
		}

		return c, parseFloat(f[1], &c.value)
	case "tap":
		if len(f) != 2 || (f[1] != "start" && f[1] != "stop") {
			return command{}, fmt.Errorf("%w: tap start|stop", errUsage)
		}

		c.op = f[1]

		return c, nil
	case "export":
		if len(f) > 2 {
			return command{}, fmt.Errorf("%w: export [PATH]", errUsage)
		}

		if len(f) == 2 {
			// keep the path's original case
			c.path = strings.Fields(line)[1]
		}

		return c, nil
	case "fx":
		return parseFx(f, c)
	}

	return command{}, fmt.Errorf("%w: unknown command %q (try help)", errUsage, c.verb)
}

func parseFx(f []string, c command) (command, error) {
	if len(f) < 4 {
		return command{}, fmt.Errorf("%w: fx N OP ...", errUsage)
	}

	c.op = f[2]

	err := parseArgs(f[1:2], &c.track)
	if err != nil {
		return command{}, err
	}

	switch c.op {
	case "add":
		if len(f) != 4 {
			return command{}, fmt.Errorf("%w: fx N add TYPE", errUsage)
		}

		c.typ, err = effect.ParseType(f[3])
		if err != nil {
			return command{}, err
		}

		return c, nil
	case "rm", "remove", "up", "down", "bypass":
		if len(f) != 4 {
			return command{}, fmt.Errorf("%w: fx N %s ID", errUsage, c.op)
		}

		if c.op == "remove" {
			c.op = "rm"
		}

		return c, parseArgs(f[3:4], &c.id)
	case "set":
		if len(f) != 6 {
			return command{}, fmt.Errorf("%w: fx N set ID PARAM VALUE", errUsage)
		}

		c.param = f[4]

		err = parseArgs(f[3:4], &c.id)
		if err != nil {
			return command{}, err
		}

		return c, parseFloat(f[5], &c.value)
	}

	return command{}, fmt.Errorf("%w: unknown fx op %q", errUsage, c.op)
}

func (c command) direction() chain.Direction {
	if c.op == "up" {
		return chain.Up
	}

	return chain.Down
}

// parseArgs parses positional fields into ints and floats.
func parseArgs(fields []string, dst ...any) error {
	if len(fields) != len(dst) {
		return fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, len(dst), len(fields))
	}

	for i, d := range dst {
		switch v := d.(type) {
		case *int:
			n, err := strconv.Atoi(fields[i])
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", errUsage, fields[i])
			}

			*v = n
		case *float64:
			err := parseFloat(fields[i], v)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func parseFloat(s string, dst *float64) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", errUsage, s)
	}

	*dst = v

	return nil
}
