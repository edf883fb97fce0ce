// Package track implements the state machine and loop buffer of one looper
// track.
//
// A Track moves through ready, waiting, recording, playing, overdub and
// stopped. It owns its committed loop buffer, its effect chain and its
// output gain. Timing decisions that involve other tracks (phase-locked
// record starts, resume phase) are made by the caller and passed in as
// delays and phases; the Track schedules its own deferred work on the
// injected scheduler and cancels it on abort, stop and clear.
package track
