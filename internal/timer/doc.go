// Package timer manages named countdowns for the HTTP API. Each timer owns a
// countdown.Channel; a consumer goroutine folds the channel's events into a
// controller-side view, records focus sessions in the store, and fans the
// events out to subscribers through a Broker.
package timer
