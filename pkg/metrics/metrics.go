package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors for the session server. Registered on the default registry
// so the promhttp handler picks them up without extra wiring.
var (
	ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treasures_connections_total",
		Help: "WebSocket connections accepted since start.",
	})
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "treasures_connections_active",
		Help: "WebSocket connections currently open.",
	})
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "treasures_rooms_active",
		Help: "Rooms currently held by the registry.",
	})
	EventsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treasures_events_applied_total",
		Help: "Events applied to some room's state.",
	})
	EventsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treasures_events_rejected_total",
		Help: "Inbound frames dropped because they did not decode as events.",
	})
	BroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treasures_broadcast_dropped_total",
		Help: "Outbound events dropped because a peer's send buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
