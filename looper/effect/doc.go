// Package effect defines the fixed catalog of per-track effect types, their
// parameter sets, and the realizable processing stages behind them.
//
// A Node is a logical entry in a track's effect chain. Its Stage, the
// realized processing sub-graph, is created lazily the first time the node
// is wired into a live signal path, and disposed when the node is removed
// or the chain torn down. Stages are built by a Registry; DefaultRegistry
// realizes the catalog with algo-dsp processors and beep effects.
//
// Pitch is special: it has no stage and is never wired. Its semitone
// setting is applied by the owning track as a playback-rate multiplier.
package effect
