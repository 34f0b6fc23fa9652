package agent

import "github.com/prometheus/client_golang/prometheus"

var connectionsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "timerd_agent_connections_active",
		Help: "Number of open control socket connections, each owning one countdown engine.",
	},
)

func init() {
	prometheus.MustRegister(connectionsActive)
}
