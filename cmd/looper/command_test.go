package main

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-looper/looper/chain"
	"github.com/cwbudde/algo-looper/looper/effect"
	"github.com/cwbudde/algo-looper/looper/track"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want command
	}{
		{"", command{}},
		{"rec 2", command{verb: "rec", track: 2}},
		{"Record 1", command{verb: "rec", track: 1}},
		{"resume 3", command{verb: "play", track: 3}},
		{"stop 1", command{verb: "stop", track: 1}},
		{"div 3 1/2", command{verb: "div", track: 3, div: track.Divider{Num: 1, Den: 2}}},
		{"level 2 0.5", command{verb: "level", track: 2, value: 0.5}},
		{"master 0.8", command{verb: "master", value: 0.8}},
		{"fx 1 add Low-Pass", command{verb: "fx", track: 1, op: "add", typ: effect.TypeLowPass}},
		{"fx 2 remove 4", command{verb: "fx", track: 2, op: "rm", id: 4}},
		{"fx 2 up 4", command{verb: "fx", track: 2, op: "up", id: 4}},
		{"fx 1 set 3 mix 0.5", command{verb: "fx", track: 1, op: "set", id: 3, param: "mix", value: 0.5}},
		{"tap start", command{verb: "tap", op: "start"}},
		{"export Mix.wav", command{verb: "export", path: "Mix.wav"}},
		{"exit", command{verb: "quit"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			got, err := parseCommand(tt.line)
			if err != nil {
				t.Fatalf("parseCommand(%q): %v", tt.line, err)
			}

			if got != tt.want {
				t.Fatalf("parseCommand(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	t.Parallel()

	for _, line := range []string{
		"rec",
		"rec x",
		"rec 1 2",
		"tempo now",
		"div 2 0",
		"level 2",
		"fx 1 add reverb",
		"fx 1 set 2 mix",
		"fx 1 spin 2",
		"tap pause",
		"dance",
	} {
		if _, err := parseCommand(line); err == nil {
			t.Errorf("parseCommand(%q) accepted", line)
		}
	}

	_, err := parseCommand("dance")
	if !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want errUsage", err)
	}
}

func TestCommandDirection(t *testing.T) {
	t.Parallel()

	if (command{op: "up"}).direction() != chain.Up || (command{op: "down"}).direction() != chain.Down {
		t.Fatal("direction mapping")
	}
}
