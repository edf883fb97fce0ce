// Package chain holds the ordered effect chain of one track and rebuilds its
// signal path.
//
// Every structural edit (add, remove, move, bypass) on an attached chain
// tears the whole path down and builds it again from the source through each
// wired node into the output Gain. The rebuild runs under the Gain's render
// lock, so the audio path only ever streams a complete chain.
package chain
