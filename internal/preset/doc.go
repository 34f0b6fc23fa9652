// Package preset holds the named countdown durations (Pomodoro, short and
// long break by default) that timers can be started from.
package preset
