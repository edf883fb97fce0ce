// Package paudio captures live input through PortAudio. It is only built
// with the portaudio build tag, since it needs the PortAudio C library.
package paudio
