// Package loopbuf provides the committed loop buffer of a track and the
// looping player that renders it.
//
// A Buffer is immutable once built: fitting it to a target length or
// merging an overdub returns a new Buffer. The render path may therefore
// keep reading an old Buffer while the control path prepares its
// replacement.
package loopbuf
