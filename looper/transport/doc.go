// Package transport owns the looper's tracks and clock and mediates all
// cross-track timing.
//
// Track 1 is the master. Its first committed recording sets the clock's
// master loop duration; subordinate tracks requesting a recording before
// that are gated and start phase-locked once the master commits. Every
// subordinate recording starts on a master loop boundary and lasts the
// master duration times the track's divider. Clearing the master clears
// the clock and every subordinate.
package transport
