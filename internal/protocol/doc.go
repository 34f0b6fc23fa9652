// Package protocol defines the message shapes exchanged with a countdown
// engine across a process or network boundary, their validation, and the
// length-prefixed framing used on stream transports.
package protocol
