// Package agent serves countdown engines over a framed socket. Every accepted
// connection gets its own engine: inbound frames carry commands, outbound
// frames carry the engine's events, and closing the connection discards the
// engine. Listeners and dialers understand unix:, tcp: and vsock: addresses.
package agent
