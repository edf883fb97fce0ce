// Package clock derives the session tempo and the authoritative loop
// duration from the master track's committed recording.
//
// The master duration is unset until the master track commits its first
// loop. Every change, including a clear, is broadcast to subscribed
// listeners so that tempo-synced parameters can re-derive themselves or
// fall back to their own time-based defaults.
package clock
