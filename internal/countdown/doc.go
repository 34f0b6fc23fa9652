// Package countdown provides the drift-resistant countdown engine and the
// asynchronous control channel that owns it. The engine derives remaining
// time from the wall clock on every tick instead of counting ticks, so late
// or irregular scheduling never accumulates error. A Channel runs one engine
// on its own goroutine: commands go in through Send, events come out of
// Events, and neither side ever blocks the other.
package countdown
