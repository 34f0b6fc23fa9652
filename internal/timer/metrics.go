package timer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/model"
)

var (
	timersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "timerd_timers_active",
			Help: "Number of timers currently registered with the manager.",
		},
	)

	countdownEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timerd_countdown_events_total",
			Help: "Total number of events emitted by countdown engines, by type.",
		},
		[]string{"type"},
	)

	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timerd_sessions_total",
			Help: "Total number of focus sessions recorded, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(timersActive)
	prometheus.MustRegister(countdownEventsTotal)
	prometheus.MustRegister(sessionsTotal)

	// Pre-initialize label combinations so they appear in /metrics with
	// value 0 from startup.
	for _, typ := range []countdown.EventType{
		countdown.EventTick,
		countdown.EventFinished,
		countdown.EventPaused,
		countdown.EventStopped,
		countdown.EventState,
	} {
		countdownEventsTotal.WithLabelValues(string(typ))
	}
	sessionsTotal.WithLabelValues(model.OutcomeCompleted)
	sessionsTotal.WithLabelValues(model.OutcomeStopped)
}
